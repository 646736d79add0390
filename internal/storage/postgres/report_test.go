package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/buildcalc/internal/export"
	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/resolve"
	"github.com/cory-johannsen/buildcalc/internal/game/stat"
	"github.com/cory-johannsen/buildcalc/internal/storage/postgres"
	"github.com/cory-johannsen/buildcalc/internal/testutil"
)

func setupRepo(t *testing.T) *postgres.ReportRepository {
	t.Helper()
	return testutil.NewPostgresContainer(t).OpenStore(t).Reports
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func makeReport(t testing.TB, character string, level int, at time.Time) *export.Report {
	p := &build.CharacterProfile{Name: character, BaseAD: 60, BaseAS: 0.7, BaseHP: 600, GrowthAD: 3}
	sword := &build.EquipmentItem{Name: "B. F. Sword", Cost: 1300,
		Modifiers: []stat.Modifier{{Attribute: stat.AttackDamage, Value: 40, Kind: stat.Flat}}}
	cfg, err := build.New(character+" build", p, level, []*build.EquipmentItem{sword}, build.WithTarget(build.DummyTarget()))
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := resolve.NewResolver(zap.NewNop()).ResolveInto(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return export.NewReport(resolved, 3, at)
}

func TestReportRepository_SaveAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	rep := makeReport(t, "Vale", 11, at)
	require.NoError(t, repo.Save(ctx, rep))

	got, err := repo.Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, got.ID)
	assert.Equal(t, "Vale build", got.BuildName)
	assert.Equal(t, "Vale", got.Character)
	assert.Equal(t, 11, got.Level)
	assert.Equal(t, 1300, got.TotalCost)
	require.NotNil(t, got.DPS)
	assert.Equal(t, float64(rep.Attack.DPS), *got.DPS)
	assert.True(t, at.Equal(got.CreatedAt))

	require.NotNil(t, got.Report)
	assert.Equal(t, rep.Build, got.Report.Build)
	assert.Equal(t, rep.Stats, got.Report.Stats)
}

func TestReportRepository_SaveDuplicate(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	rep := makeReport(t, "Vale", 1, time.Now().UTC().Truncate(time.Second))
	require.NoError(t, repo.Save(ctx, rep))
	assert.ErrorIs(t, repo.Save(ctx, rep), postgres.ErrReportExists)
}

func TestReportRepository_GetNotFound(t *testing.T) {
	repo := setupRepo(t)
	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, postgres.ErrReportNotFound)
}

func TestReportRepository_ListByCharacter(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	name := uniqueName("brom")
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, makeReport(t, name, i+1, base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, repo.Save(ctx, makeReport(t, uniqueName("other"), 1, base)))

	list, err := repo.ListByCharacter(ctx, name, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 3, list[0].Level, "newest first")
	assert.Equal(t, 1, list[2].Level)

	list, err = repo.ListByCharacter(ctx, name, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = repo.ListByCharacter(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReportRepository_Delete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	rep := makeReport(t, "Iria", 6, time.Now().UTC().Truncate(time.Second))
	require.NoError(t, repo.Save(ctx, rep))
	require.NoError(t, repo.Delete(ctx, rep.ID))

	_, err := repo.Get(ctx, rep.ID)
	assert.ErrorIs(t, err, postgres.ErrReportNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, rep.ID), postgres.ErrReportNotFound)
}

func TestPropertyReportRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(build.MinLevel, build.MaxLevel).Draw(rt, "level")
		rep := makeReport(t, uniqueName("prop"), level, time.Now().UTC().Truncate(time.Second))
		if err := repo.Save(ctx, rep); err != nil {
			rt.Fatalf("Save: %v", err)
		}
		got, err := repo.Get(ctx, rep.ID)
		if err != nil {
			rt.Fatalf("Get: %v", err)
		}
		if got.Level != level || got.Report.Build.Level != level {
			rt.Fatalf("level mismatch: want %d, got %d / %d", level, got.Level, got.Report.Build.Level)
		}
	})
}
