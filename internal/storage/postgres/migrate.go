package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migration directions accepted by Migrate.
const (
	Up      = "up"
	Down    = "down"
	Version = "version"
)

// MigrationResult describes the schema after Migrate.
type MigrationResult struct {
	Version uint
	Dirty   bool
	// Changed is false when there was nothing to apply.
	Changed bool
}

// Migrate applies the migrations in dir to the database at dsn. steps <= 0
// migrates all the way in direction; Version only reports the current state.
//
// Postcondition: returns the resulting schema version, or a non-nil error.
func Migrate(dsn, dir, direction string, steps int) (MigrationResult, error) {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("postgres: creating migrator: %w", err)
	}
	defer m.Close()

	switch direction {
	case Up:
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case Down:
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case Version:
		err = migrate.ErrNoChange
	default:
		return MigrationResult{}, fmt.Errorf("postgres: invalid migration direction %q", direction)
	}
	res := MigrationResult{Changed: err == nil}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return res, fmt.Errorf("postgres: migrating %s: %w", direction, err)
	}

	res.Version, res.Dirty, err = m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return res, fmt.Errorf("postgres: reading schema version: %w", err)
	}
	return res, nil
}
