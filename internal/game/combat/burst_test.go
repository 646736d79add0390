package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/buildcalc/internal/game/combat"
)

func TestIsBurstCrit(t *testing.T) {
	// Hit i crits iff i/n < chance.
	assert.True(t, combat.IsBurstCrit(0, 3, 0.5))
	assert.True(t, combat.IsBurstCrit(1, 3, 0.5))
	assert.False(t, combat.IsBurstCrit(2, 3, 0.5))
	assert.False(t, combat.IsBurstCrit(0, 3, 0))
	assert.True(t, combat.IsBurstCrit(2, 3, 1))
}

func TestBurst(t *testing.T) {
	r := combat.Burst(attacker(100, 1, 50), target(1000, 0), 3)
	assert.Equal(t, 3, r.Hits)
	assert.Equal(t, 2, r.CriticalHits)
	assert.Equal(t, 500.0, r.TotalDamage)
	assert.InDelta(t, 166.67, r.AverageDamage, 1e-9)
	assert.Equal(t, 3.0, r.Duration)
	assert.Equal(t, 500.0, r.RemainingHP)
}

func TestBurst_DefaultHits(t *testing.T) {
	r := combat.Burst(attacker(100, 1, 0), target(1000, 0), 0)
	assert.Equal(t, combat.DefaultBurstHits, r.Hits)
	assert.Equal(t, 0, r.CriticalHits)
}

func TestBurst_OverkillLeavesZero(t *testing.T) {
	r := combat.Burst(attacker(1000, 2, 100), target(500, 0), 3)
	assert.Equal(t, 3, r.CriticalHits)
	assert.Equal(t, 0.0, r.RemainingHP)
	assert.Equal(t, 1.5, r.Duration)
}

func TestBurst_IsReproducible(t *testing.T) {
	s := attacker(180, 1.4, 60)
	tg := target(2000, 70)
	assert.Equal(t, combat.Burst(s, tg, 5), combat.Burst(s, tg, 5))
}

func TestPropertyBurstCritCount(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "n")
		crit := rapid.Float64Range(0, 100).Draw(t, "crit")
		r := combat.Burst(attacker(100, 1, crit), target(1e6, 0), n)
		if r.CriticalHits < 0 || r.CriticalHits > n {
			t.Fatalf("crit count %d out of [0, %d]", r.CriticalHits, n)
		}
		if crit == 0 && r.CriticalHits != 0 {
			t.Fatalf("0%% crit produced %d crits", r.CriticalHits)
		}
		if crit == 100 && r.CriticalHits != n {
			t.Fatalf("100%% crit produced %d of %d crits", r.CriticalHits, n)
		}
	})
}
