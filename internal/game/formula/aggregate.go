package formula

import (
	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/stat"
)

// ApplyModifiers runs one aggregation cycle over sources and returns the result.
//
// FlatThenPercent ordering:
//  1. every flat modifier of every source is added, sources in order and
//     modifiers in source order;
//  2. every percent modifier is then applied in that same order, each one
//     multiplying the running value by (1 + value/100).
//
// Percent modifiers therefore compound: +10% twice is x1.21. Attributes absent
// from base start at 0. Unique modifiers are skipped.
//
// Postcondition: base is not modified.
func ApplyModifiers(base stat.Block, sources ...[]stat.Modifier) stat.Block {
	out := base.Clone()
	for _, src := range sources {
		for _, m := range src {
			if m.Kind == stat.Flat {
				out[m.Attribute] = out.Get(m.Attribute) + m.Value
			}
		}
	}
	for _, src := range sources {
		for _, m := range src {
			if m.Kind == stat.Percent {
				out[m.Attribute] = out.Get(m.Attribute) * (1 + m.Value/100)
			}
		}
	}
	return out
}

// ApplyItems runs the item aggregation cycle over items in equip order.
//
// Postcondition: base is not modified.
func ApplyItems(base stat.Block, items []*build.EquipmentItem) stat.Block {
	sources := make([][]stat.Modifier, 0, len(items))
	for _, it := range items {
		sources = append(sources, it.Modifiers)
	}
	return ApplyModifiers(base, sources...)
}

// ApplyPreset runs the preset aggregation cycle. A nil preset returns a copy of base.
//
// Postcondition: base is not modified.
func ApplyPreset(base stat.Block, p *build.PassivePreset) stat.Block {
	if p == nil {
		return base.Clone()
	}
	return ApplyModifiers(base, p.Modifiers)
}
