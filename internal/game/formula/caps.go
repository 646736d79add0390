package formula

import "github.com/cory-johannsen/buildcalc/internal/game/stat"

// Game-rule stat limits.
const (
	MaxAttackSpeed = 2.5
	MaxCritChance  = 100.0
	MinCritChance  = 0.0
	// StatFloor is the minimum for health, attack damage and attack speed.
	StatFloor = 1.0
)

var flooredStats = []stat.Attribute{stat.Health, stat.AttackDamage, stat.AttackSpeed}

// EnforceCaps clamps b to the legal stat ranges. Only attributes present in b
// are touched.
//
// Postcondition: b is not modified; EnforceCaps(EnforceCaps(b)) equals EnforceCaps(b).
func EnforceCaps(b stat.Block) stat.Block {
	out := b.Clone()
	if v, ok := out[stat.AttackSpeed]; ok {
		out[stat.AttackSpeed] = min(v, MaxAttackSpeed)
	}
	if v, ok := out[stat.CritChance]; ok {
		out[stat.CritChance] = max(min(v, MaxCritChance), MinCritChance)
	}
	for _, a := range flooredStats {
		if v, ok := out[a]; ok {
			out[a] = max(v, StatFloor)
		}
	}
	return out
}
