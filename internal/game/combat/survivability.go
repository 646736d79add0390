package combat

import (
	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/stat"
)

// SurvivabilityReport combines a stat sheet's physical and magical durability.
type SurvivabilityReport struct {
	RawHP       float64 `json:"raw_hp" yaml:"raw_hp"`
	EHPPhysical float64 `json:"effective_hp_physical" yaml:"effective_hp_physical"`
	EHPMagical  float64 `json:"effective_hp_magical" yaml:"effective_hp_magical"`
	// PhysicalReduction and MagicalReduction are in percent.
	PhysicalReduction float64 `json:"physical_damage_reduction" yaml:"physical_damage_reduction"`
	MagicalReduction  float64 `json:"magical_damage_reduction" yaml:"magical_damage_reduction"`
	Armor             float64 `json:"armor" yaml:"armor"`
	MR                float64 `json:"mr" yaml:"mr"`
	// Score is the mean of the two effective HP values.
	Score float64 `json:"survivability_score" yaml:"survivability_score"`
}

// Survivability computes the durability summary of s.
func Survivability(s build.ResolvedStats) SurvivabilityReport {
	phys := EffectiveHP(s.HP, s.Armor)
	mag := EffectiveHP(s.HP, s.MR)
	return SurvivabilityReport{
		RawHP:             s.HP,
		EHPPhysical:       stat.RoundTo(phys, Precision),
		EHPMagical:        stat.RoundTo(mag, Precision),
		PhysicalReduction: stat.RoundTo(DamageReduction(s.Armor)*100, Precision),
		MagicalReduction:  stat.RoundTo(DamageReduction(s.MR)*100, Precision),
		Armor:             s.Armor,
		MR:                s.MR,
		Score:             stat.RoundTo((phys+mag)/2, Precision),
	}
}
