// Package formula implements the stat pipeline stages that precede combat
// math: level scaling, modifier aggregation, and game-rule caps.
package formula

import (
	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/stat"
)

// ScaleToLevel projects p's base stats to the given level.
//
// Additive stats grow by growth*(level-1). Attack speed grows
// multiplicatively: base*(1 + growth*(level-1)/100). Crit chance starts at 0
// and crit damage at build.DefaultCritDamage.
//
// Precondition: p must be non-nil.
// Postcondition: returns a fresh Block, or a *build.LevelError naming level
// when it falls outside [build.MinLevel, build.MaxLevel].
func ScaleToLevel(p *build.CharacterProfile, level int) (stat.Block, error) {
	if err := build.CheckLevel(level); err != nil {
		return nil, err
	}
	steps := float64(level - 1)
	return stat.Block{
		stat.AttackDamage: p.BaseAD + p.GrowthAD*steps,
		stat.AbilityPower: p.BaseAP + p.GrowthAP*steps,
		stat.AttackSpeed:  p.BaseAS * (1 + p.GrowthAS*steps/100),
		stat.Health:       p.BaseHP + p.GrowthHP*steps,
		stat.Mana:         p.BaseMana + p.GrowthMana*steps,
		stat.Armor:        p.BaseArmor + p.GrowthArmor*steps,
		stat.MagicResist:  p.BaseMR + p.GrowthMR*steps,
		stat.MoveSpeed:    p.BaseMS + p.GrowthMS*steps,
		stat.CritChance:   0,
		stat.CritDamage:   build.DefaultCritDamage,
	}, nil
}
