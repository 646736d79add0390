package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/buildcalc/internal/export"
)

// ErrReportNotFound is returned when a report lookup yields no results.
var ErrReportNotFound = errors.New("report not found")

// ErrReportExists is returned when saving a report whose ID is already stored.
var ErrReportExists = errors.New("report already exists")

// StoredReport is a persisted build report with its indexed columns.
type StoredReport struct {
	ID        uuid.UUID
	BuildName string
	Character string
	Level     int
	TotalCost int
	// DPS is nil when the report had no target.
	DPS       *float64
	CreatedAt time.Time
	Report    *export.Report
}

// ReportRepository persists build reports.
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a ReportRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save inserts r.
//
// Precondition: r must be non-nil with a non-nil ID.
// Postcondition: the report is stored, or ErrReportExists on a duplicate ID.
func (r *ReportRepository) Save(ctx context.Context, rep *export.Report) error {
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, rep); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	var dps *float64
	if rep.Attack != nil {
		v := float64(rep.Attack.DPS)
		dps = &v
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO build_reports
			(id, build_name, character_name, level, total_cost, dps, created_at, payload)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rep.ID, rep.Build.Name, rep.Build.Character, rep.Build.Level,
		rep.Build.TotalCost, dps, rep.CreatedAt, buf.Bytes(),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrReportExists
		}
		return fmt.Errorf("inserting report: %w", err)
	}
	return nil
}

// Get retrieves a report by ID.
//
// Postcondition: returns the StoredReport or ErrReportNotFound.
func (r *ReportRepository) Get(ctx context.Context, id uuid.UUID) (*StoredReport, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, build_name, character_name, level, total_cost, dps, created_at, payload
		FROM build_reports WHERE id = $1`,
		id,
	)
	sr, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}
	return sr, nil
}

// ListByCharacter returns every report for character, newest first.
//
// Postcondition: returns a slice (may be empty) or a non-nil error.
func (r *ReportRepository) ListByCharacter(ctx context.Context, character string, limit int) ([]*StoredReport, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, build_name, character_name, level, total_cost, dps, created_at, payload
		FROM build_reports WHERE character_name = $1
		ORDER BY created_at DESC LIMIT $2`,
		character, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	out := make([]*StoredReport, 0)
	for rows.Next() {
		sr, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// Delete removes a report by ID.
//
// Postcondition: returns ErrReportNotFound when no row was deleted.
func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM build_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

func scanReport(row pgx.Row) (*StoredReport, error) {
	var (
		sr      StoredReport
		payload []byte
	)
	if err := row.Scan(
		&sr.ID, &sr.BuildName, &sr.Character, &sr.Level,
		&sr.TotalCost, &sr.DPS, &sr.CreatedAt, &payload,
	); err != nil {
		return nil, err
	}
	var rep export.Report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, fmt.Errorf("decoding report payload: %w", err)
	}
	sr.Report = &rep
	return &sr, nil
}

func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
