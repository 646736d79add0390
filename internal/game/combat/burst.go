package combat

import (
	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/stat"
)

// DefaultBurstHits is the number of attacks in a burst when none is given.
const DefaultBurstHits = 3

// BurstReport summarizes the damage of the opening attacks against a target.
type BurstReport struct {
	Hits          int     `json:"hits" yaml:"hits"`
	TotalDamage   float64 `json:"total_burst_damage" yaml:"total_burst_damage"`
	AverageDamage float64 `json:"average_damage_per_attack" yaml:"average_damage_per_attack"`
	CriticalHits  int     `json:"critical_attacks" yaml:"critical_attacks"`
	Duration      float64 `json:"time_for_burst" yaml:"time_for_burst"`
	RemainingHP   float64 `json:"remaining_target_hp" yaml:"remaining_target_hp"`
}

// IsBurstCrit reports whether hit i of n counts as a critical strike.
//
// Crit frequency is spread by position rather than drawn at random: hit i
// crits iff i/n < chance, where chance is a fraction in [0, 1]. Reports built
// on it are reproducible.
func IsBurstCrit(i, n int, chance float64) bool {
	return float64(i)/float64(n) < chance
}

// Burst computes the damage of the first n basic attacks of s against t.
// n <= 0 uses DefaultBurstHits.
//
// Precondition: t must be non-nil.
// Postcondition: RemainingHP >= 0.
func Burst(s build.ResolvedStats, t *build.Target, n int) BurstReport {
	if n <= 0 {
		n = DefaultBurstHits
	}
	chance := s.CritChance / 100
	mult := s.CritDamage / 100
	reduction := DamageReduction(t.Armor)

	total := 0.0
	crits := 0
	for i := 0; i < n; i++ {
		dmg := s.AD
		if IsBurstCrit(i, n, chance) {
			dmg *= mult
			crits++
		}
		total += dmg * (1 - reduction)
	}

	duration := Infinite
	if s.AS > 0 {
		duration = stat.RoundTo(float64(n)/s.AS, Precision)
	}
	return BurstReport{
		Hits:          n,
		TotalDamage:   stat.RoundTo(total, Precision),
		AverageDamage: stat.RoundTo(total/float64(n), Precision),
		CriticalHits:  crits,
		Duration:      duration,
		RemainingHP:   max(0, t.HP-total),
	}
}
