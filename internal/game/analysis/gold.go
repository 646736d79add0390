package analysis

import (
	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/stat"
)

// GoldValues is the gold worth of one point of each stat. Attack speed is
// priced per percentage point.
var GoldValues = map[string]float64{
	"ad":          35,
	"ap":          21.75,
	"as":          25,
	"hp":          2.67,
	"armor":       20,
	"mr":          18,
	"crit_chance": 40,
}

// goldStatOrder fixes the iteration order of the gold table so that sums are
// reproducible.
var goldStatOrder = []string{"ad", "ap", "as", "hp", "armor", "mr", "crit_chance"}

// Efficiency is the gold value of an item's stat gains relative to its cost.
type Efficiency struct {
	TotalValue float64 `json:"total_gold_value" yaml:"total_gold_value"`
	Cost       int     `json:"item_cost" yaml:"item_cost"`
	// Percent is TotalValue/Cost*100, or 0 for a free item.
	Percent float64 `json:"efficiency_percent" yaml:"efficiency_percent"`
	// PerStat holds the gold value of every positive gain.
	PerStat map[string]float64 `json:"gold_per_stat" yaml:"gold_per_stat"`
}

// GoldEfficiency prices the stat gains from before to after.
//
// Only positive deltas contribute; losses never subtract value.
func GoldEfficiency(before, after build.ResolvedStats, cost int) Efficiency {
	gains := map[string]float64{
		"ad":          after.AD - before.AD,
		"ap":          after.AP - before.AP,
		"as":          (after.AS - before.AS) * 100,
		"hp":          after.HP - before.HP,
		"armor":       after.Armor - before.Armor,
		"mr":          after.MR - before.MR,
		"crit_chance": after.CritChance - before.CritChance,
	}

	total := 0.0
	perStat := make(map[string]float64)
	for _, name := range goldStatOrder {
		gain := gains[name]
		if gain <= 0 {
			continue
		}
		value := gain * GoldValues[name]
		total += value
		perStat[name] = stat.RoundTo(value, 2)
	}

	percent := 0.0
	if cost > 0 {
		percent = total / float64(cost) * 100
	}
	return Efficiency{
		TotalValue: stat.RoundTo(total, 2),
		Cost:       cost,
		Percent:    stat.RoundTo(percent, 2),
		PerStat:    perStat,
	}
}
