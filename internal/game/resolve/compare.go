package resolve

import (
	"math"

	"github.com/cory-johannsen/buildcalc/internal/game/build"
)

// CompareStats returns b minus a for every core attribute, keyed by short
// stat name. "dps" and "ttk" are included only when both sides carry a
// finite non-zero value.
func CompareStats(a, b build.ResolvedStats) map[string]float64 {
	diff := map[string]float64{
		"ad":          b.AD - a.AD,
		"ap":          b.AP - a.AP,
		"as":          b.AS - a.AS,
		"crit_chance": b.CritChance - a.CritChance,
		"hp":          b.HP - a.HP,
		"armor":       b.Armor - a.Armor,
		"mr":          b.MR - a.MR,
		"ms":          b.MS - a.MS,
	}
	if av, bv, ok := both(a.DPS, b.DPS); ok {
		diff["dps"] = bv - av
	}
	if av, bv, ok := both(a.TTK, b.TTK); ok {
		diff["ttk"] = bv - av
	}
	return diff
}

func both(a, b *float64) (float64, float64, bool) {
	av, aok := build.Value(a)
	bv, bok := build.Value(b)
	if !aok || !bok || av == 0 || bv == 0 || math.IsInf(av, 0) || math.IsInf(bv, 0) {
		return 0, 0, false
	}
	return av, bv, true
}
