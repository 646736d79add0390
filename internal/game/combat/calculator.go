// Package combat derives offensive and defensive combat metrics from a
// resolved stat sheet. Every function is total: zero or negative throughput
// yields +Inf times and counts rather than a division fault.
package combat

import (
	"math"

	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/stat"
)

// MaxDamageReduction caps the reduction granted by non-negative resistance.
const MaxDamageReduction = 0.99

// Precision is the number of decimal places reported values are rounded to.
const Precision = 2

// Infinite is the sentinel for an unreachable kill.
var Infinite = math.Inf(1)

// DamageReduction returns the fraction of incoming damage removed by resistance r.
//
// r >= 0: min(r/(100+r), MaxDamageReduction).
// r < 0: -|r|/(100-|r|), a negative reduction that amplifies damage.
func DamageReduction(r float64) float64 {
	if r < 0 {
		a := math.Abs(r)
		return -a / (100 - a)
	}
	return min(r/(100+r), MaxDamageReduction)
}

// EffectiveHP returns hp scaled by the damage reduction of resistance r.
func EffectiveHP(hp, r float64) float64 {
	return hp / (1 - DamageReduction(r))
}

// AverageHitDamage returns the expected damage of one basic attack, folding
// crit chance and crit damage into a single expectation.
func AverageHitDamage(s build.ResolvedStats) float64 {
	chance := s.CritChance / 100
	mult := s.CritDamage / 100
	return s.AD * (1 + chance*(mult-1))
}

// EffectiveHitDamage returns the average hit damage after t's armor.
func EffectiveHitDamage(s build.ResolvedStats, t *build.Target) float64 {
	return AverageHitDamage(s) * (1 - DamageReduction(t.Armor))
}

// DPS returns basic-attack damage per second against t, rounded to Precision.
//
// Precondition: t must be non-nil.
func DPS(s build.ResolvedStats, t *build.Target) float64 {
	return stat.RoundTo(EffectiveHitDamage(s, t)*s.AS, Precision)
}

// TimeToKill returns the seconds needed to kill t, rounded to Precision.
//
// Postcondition: returns Infinite when DPS(s, t) <= 0.
func TimeToKill(s build.ResolvedStats, t *build.Target) float64 {
	return KillTime(t.HP, DPS(s, t))
}

// KillTime returns hp/dps rounded to Precision, or Infinite when dps <= 0.
func KillTime(hp, dps float64) float64 {
	if dps <= 0 {
		return Infinite
	}
	return stat.RoundTo(hp/dps, Precision)
}

// AttacksToKill returns ceil(hp/perHit), or Infinite when perHit <= 0.
func AttacksToKill(hp, perHit float64) float64 {
	if perHit <= 0 {
		return Infinite
	}
	return math.Ceil(hp / perHit)
}

// AttackReport breaks down basic-attack throughput against one target.
type AttackReport struct {
	Target          string  `json:"target" yaml:"target"`
	BaseDamage      float64 `json:"base_damage" yaml:"base_damage"`
	AverageDamage   float64 `json:"avg_damage_per_attack" yaml:"avg_damage_per_attack"`
	EffectiveDamage float64 `json:"effective_damage" yaml:"effective_damage"`
	// ArmorReduction is in percent.
	ArmorReduction float64 `json:"armor_reduction" yaml:"armor_reduction"`
	DPS            float64 `json:"dps" yaml:"dps"`
	TTK            float64 `json:"ttk" yaml:"ttk"`
	AttacksToKill  float64 `json:"attacks_to_kill" yaml:"attacks_to_kill"`
}

// BasicAttack computes the full basic-attack breakdown of s against t.
//
// Precondition: t must be non-nil.
// Postcondition: TTK and AttacksToKill are Infinite when throughput is not positive.
func BasicAttack(s build.ResolvedStats, t *build.Target) AttackReport {
	avg := AverageHitDamage(s)
	reduction := DamageReduction(t.Armor)
	effective := avg * (1 - reduction)
	dps := effective * s.AS

	ttk := Infinite
	if dps > 0 {
		ttk = t.HP / dps
	}
	return AttackReport{
		Target:          t.Name,
		BaseDamage:      stat.RoundTo(s.AD, Precision),
		AverageDamage:   stat.RoundTo(avg, Precision),
		EffectiveDamage: stat.RoundTo(effective, Precision),
		ArmorReduction:  stat.RoundTo(reduction*100, Precision),
		DPS:             stat.RoundTo(dps, Precision),
		TTK:             stat.RoundTo(ttk, Precision),
		AttacksToKill:   AttacksToKill(t.HP, effective),
	}
}

// AgainstTargets computes a BasicAttack report for every target, keyed by
// target ID. A target without an ID is keyed by its name.
func AgainstTargets(s build.ResolvedStats, targets []*build.Target) map[string]AttackReport {
	out := make(map[string]AttackReport, len(targets))
	for _, t := range targets {
		key := t.ID
		if key == "" {
			key = t.Name
		}
		out[key] = BasicAttack(s, t)
	}
	return out
}
