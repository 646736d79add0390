// Package stat defines character attributes, attribute blocks, and stat modifiers.
package stat

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Attribute identifies a single character stat.
type Attribute string

// Attribute constants. The string values are the catalog spelling.
const (
	AttackDamage     Attribute = "attack_damage"
	AbilityPower     Attribute = "ability_power"
	AttackSpeed      Attribute = "attack_speed"
	CritChance       Attribute = "critical_chance"
	CritDamage       Attribute = "critical_damage"
	Health           Attribute = "health"
	Mana             Attribute = "mana"
	Armor            Attribute = "armor"
	MagicResist      Attribute = "magic_resistance"
	MoveSpeed        Attribute = "movement_speed"
	Lethality        Attribute = "lethality"
	MagicPenetration Attribute = "magic_penetration"
)

var knownAttributes = map[Attribute]bool{
	AttackDamage:     true,
	AbilityPower:     true,
	AttackSpeed:      true,
	CritChance:       true,
	CritDamage:       true,
	Health:           true,
	Mana:             true,
	Armor:            true,
	MagicResist:      true,
	MoveSpeed:        true,
	Lethality:        true,
	MagicPenetration: true,
}

// Valid reports whether a is a known attribute.
func (a Attribute) Valid() bool {
	return knownAttributes[a]
}

// Kind is the application mode of a Modifier.
type Kind string

// Modifier kinds.
const (
	Flat    Kind = "flat"
	Percent Kind = "percent"
	// Unique modifiers are carried for catalog fidelity; aggregation skips them.
	Unique Kind = "unique"
)

// Valid reports whether k is a known modifier kind.
func (k Kind) Valid() bool {
	switch k {
	case Flat, Percent, Unique:
		return true
	}
	return false
}

// Modifier is a single stat change contributed by an item or a passive preset.
type Modifier struct {
	Attribute Attribute `yaml:"stat" json:"stat"`
	Value     float64   `yaml:"value" json:"value"`
	Kind      Kind      `yaml:"modifier_type" json:"modifier_type"`
}

// Validate checks that the Modifier satisfies its invariants.
//
// Postcondition: returns nil iff Attribute and Kind are known and Value is
// non-negative (movement speed modifiers may be negative).
func (m Modifier) Validate() error {
	var errs []error
	if !m.Attribute.Valid() {
		errs = append(errs, fmt.Errorf("unknown stat %q", m.Attribute))
	}
	if !m.Kind.Valid() {
		errs = append(errs, fmt.Errorf("unknown modifier_type %q", m.Kind))
	}
	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		errs = append(errs, fmt.Errorf("value for %s must be finite", m.Attribute))
	} else if m.Value < 0 && m.Attribute != MoveSpeed {
		errs = append(errs, fmt.Errorf("value for %s must be >= 0, got %g", m.Attribute, m.Value))
	}
	return errors.Join(errs...)
}

// Block maps attributes to their current numeric values.
type Block map[Attribute]float64

// Get returns the value of a, or 0 when a is absent.
func (b Block) Get(a Attribute) float64 {
	return b[a]
}

// Clone returns an independent copy of b.
//
// Postcondition: mutating the result never affects b.
func (b Block) Clone() Block {
	out := make(Block, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Attributes returns the attributes present in b in lexical order.
func (b Block) Attributes() []Attribute {
	out := make([]Attribute, 0, len(b))
	for k := range b {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Round returns a copy of b with every value rounded to places decimal places.
func (b Block) Round(places int) Block {
	out := make(Block, len(b))
	for k, v := range b {
		out[k] = RoundTo(v, places)
	}
	return out
}

// RoundTo rounds v half away from zero to places decimal places.
// Infinities and NaN are returned unchanged.
func RoundTo(v float64, places int) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
