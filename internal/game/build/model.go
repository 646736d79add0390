// Package build defines the build domain model: character profiles, equipment,
// passive presets, targets, resolved stats, and validated build configurations.
package build

import (
	"math"
	"strconv"
	"strings"

	"github.com/cory-johannsen/buildcalc/internal/game/stat"
)

// MaxBaseAttackSpeed is the highest base attack speed a profile may declare.
const MaxBaseAttackSpeed = 3.0

// DefaultCritDamage is the crit damage multiplier, in percent, every character starts with.
const DefaultCritDamage = 200.0

// CharacterProfile holds a character's level-1 base stats and per-level growth.
//
// Growth for attack speed is expressed in percent per level; every other
// growth value is additive per level.
type CharacterProfile struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	BaseAD    float64 `yaml:"base_ad"`
	BaseAP    float64 `yaml:"base_ap"`
	BaseAS    float64 `yaml:"base_as"`
	BaseHP    float64 `yaml:"base_hp"`
	BaseMana  float64 `yaml:"base_mana"`
	BaseArmor float64 `yaml:"base_armor"`
	BaseMR    float64 `yaml:"base_mr"`
	BaseMS    float64 `yaml:"base_ms"`

	GrowthAD    float64 `yaml:"growth_ad"`
	GrowthAP    float64 `yaml:"growth_ap"`
	GrowthAS    float64 `yaml:"growth_as"`
	GrowthHP    float64 `yaml:"growth_hp"`
	GrowthMana  float64 `yaml:"growth_mana"`
	GrowthArmor float64 `yaml:"growth_armor"`
	GrowthMR    float64 `yaml:"growth_mr"`
	GrowthMS    float64 `yaml:"growth_ms"`

	Class string `yaml:"champion_class"`
	Patch string `yaml:"patch"`
}

// Validate checks that the profile satisfies its invariants.
//
// Postcondition: returns nil iff Name is non-blank, every base and growth
// value is finite and non-negative, and BaseAS <= MaxBaseAttackSpeed.
func (p *CharacterProfile) Validate() error {
	errs := &problems{subject: "character profile"}
	if strings.TrimSpace(p.Name) == "" {
		errs.add("name must not be empty")
	}
	fields := []struct {
		name string
		v    float64
	}{
		{"base_ad", p.BaseAD}, {"base_ap", p.BaseAP}, {"base_as", p.BaseAS},
		{"base_hp", p.BaseHP}, {"base_mana", p.BaseMana}, {"base_armor", p.BaseArmor},
		{"base_mr", p.BaseMR}, {"base_ms", p.BaseMS},
		{"growth_ad", p.GrowthAD}, {"growth_ap", p.GrowthAP}, {"growth_as", p.GrowthAS},
		{"growth_hp", p.GrowthHP}, {"growth_mana", p.GrowthMana}, {"growth_armor", p.GrowthArmor},
		{"growth_mr", p.GrowthMR}, {"growth_ms", p.GrowthMS},
	}
	for _, f := range fields {
		if !finite(f.v) {
			errs.add("%s must be finite, got %g", f.name, f.v)
		} else if f.v < 0 {
			errs.add("%s must be >= 0, got %g", f.name, f.v)
		}
	}
	if p.BaseAS > MaxBaseAttackSpeed {
		errs.add("base_as must be <= %g, got %g", MaxBaseAttackSpeed, p.BaseAS)
	}
	return errs.err()
}

// EquipmentItem is a purchasable item contributing an ordered list of modifiers.
type EquipmentItem struct {
	ID        string          `yaml:"id"`
	Name      string          `yaml:"name"`
	Modifiers []stat.Modifier `yaml:"modifiers"`
	Cost      int             `yaml:"cost"`
	Unique    bool            `yaml:"unique"`
	Mythic    bool            `yaml:"mythic"`
}

// Validate checks that the item satisfies its invariants.
//
// Postcondition: returns nil iff Name is non-blank, Cost >= 0, and every modifier is valid.
func (it *EquipmentItem) Validate() error {
	errs := &problems{subject: "item " + quote(it.Name)}
	if strings.TrimSpace(it.Name) == "" {
		errs.add("name must not be empty")
	}
	if it.Cost < 0 {
		errs.add("cost must be >= 0, got %d", it.Cost)
	}
	for i, m := range it.Modifiers {
		if err := m.Validate(); err != nil {
			errs.addErr(modifierLabel(i), err)
		}
	}
	return errs.err()
}

// PassivePreset is a named bundle of modifiers applied after all items.
type PassivePreset struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Modifiers   []stat.Modifier `yaml:"modifiers"`
	Description string          `yaml:"description"`
}

// Validate checks that the preset satisfies its invariants.
func (p *PassivePreset) Validate() error {
	errs := &problems{subject: "preset " + quote(p.Name)}
	if strings.TrimSpace(p.Name) == "" {
		errs.add("name must not be empty")
	}
	for i, m := range p.Modifiers {
		if err := m.Validate(); err != nil {
			errs.addErr(modifierLabel(i), err)
		}
	}
	return errs.err()
}

// Target is the defender a build's damage output is measured against.
type Target struct {
	ID    string  `yaml:"id"`
	Name  string  `yaml:"name"`
	HP    float64 `yaml:"hp"`
	Armor float64 `yaml:"armor"`
	MR    float64 `yaml:"mr"`
}

// Validate checks that the target satisfies its invariants.
//
// Postcondition: returns nil iff Name is non-blank, HP >= 1, Armor >= 0 and
// MR >= 0, all finite.
func (t *Target) Validate() error {
	errs := &problems{subject: "target " + quote(t.Name)}
	if strings.TrimSpace(t.Name) == "" {
		errs.add("name must not be empty")
	}
	for _, f := range []struct {
		name string
		v    float64
		min  float64
	}{
		{"hp", t.HP, 1}, {"armor", t.Armor, 0}, {"mr", t.MR, 0},
	} {
		if !finite(f.v) {
			errs.add("%s must be finite, got %g", f.name, f.v)
		} else if f.v < f.min {
			errs.add("%s must be >= %g, got %g", f.name, f.min, f.v)
		}
	}
	return errs.err()
}

// ResolvedStats is the final stat sheet of a build. It is produced only by
// the resolver; the derived fields are nil when they were not computed.
type ResolvedStats struct {
	Level      int     `json:"level" yaml:"level"`
	AD         float64 `json:"ad" yaml:"ad"`
	AP         float64 `json:"ap" yaml:"ap"`
	AS         float64 `json:"as" yaml:"as"`
	CritChance float64 `json:"crit_chance" yaml:"crit_chance"`
	CritDamage float64 `json:"crit_damage" yaml:"crit_damage"`
	HP         float64 `json:"hp" yaml:"hp"`
	Mana       float64 `json:"mana" yaml:"mana"`
	Armor      float64 `json:"armor" yaml:"armor"`
	MR         float64 `json:"mr" yaml:"mr"`
	MS         float64 `json:"ms" yaml:"ms"`

	DPS         *float64 `json:"dps,omitempty" yaml:"dps,omitempty"`
	TTK         *float64 `json:"ttk,omitempty" yaml:"ttk,omitempty"`
	EHPPhysical *float64 `json:"effective_hp_physical,omitempty" yaml:"effective_hp_physical,omitempty"`
	EHPMagical  *float64 `json:"effective_hp_magical,omitempty" yaml:"effective_hp_magical,omitempty"`
}

// Float returns a pointer to v, for populating the optional ResolvedStats fields.
func Float(v float64) *float64 {
	return &v
}

// Value dereferences an optional field, reporting whether it was set.
func Value(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Config is a complete build: character, level, items, optional preset and target.
//
// Config values must be created with New so that the construction-time
// invariants hold; Resolved is populated only by the resolver.
type Config struct {
	Name      string
	Character *CharacterProfile
	Level     int
	Items     []*EquipmentItem
	Preset    *PassivePreset
	Target    *Target
	Resolved  *ResolvedStats
}

// Option customizes a Config during New.
type Option func(*Config)

// WithPreset attaches a passive preset.
func WithPreset(p *PassivePreset) Option {
	return func(c *Config) { c.Preset = p }
}

// WithTarget attaches a target.
func WithTarget(t *Target) Option {
	return func(c *Config) { c.Target = t }
}

// New validates and returns a Config.
//
// Precondition: character must be non-nil.
// Postcondition: returns a Config with a trimmed name, or a *LevelError when
// level is out of range, or a *ValidationError listing every other violation
// (blank name, more than one mythic item, invalid profile, item, preset or target).
func New(name string, character *CharacterProfile, level int, items []*EquipmentItem, opts ...Option) (*Config, error) {
	if err := CheckLevel(level); err != nil {
		return nil, err
	}
	c := &Config{
		Name:      strings.TrimSpace(name),
		Character: character,
		Level:     level,
		Items:     append([]*EquipmentItem(nil), items...),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every construction-time invariant of c.
func (c *Config) Validate() error {
	if err := CheckLevel(c.Level); err != nil {
		return err
	}
	errs := &problems{subject: "build " + quote(c.Name)}
	if c.Name == "" {
		errs.add("name must not be empty")
	}
	if c.Character == nil {
		errs.add("character must not be nil")
	} else {
		errs.addErr("character", c.Character.Validate())
	}
	mythics := 0
	for i, it := range c.Items {
		if it == nil {
			errs.add("item %d must not be nil", i)
			continue
		}
		errs.addErr("items", it.Validate())
		if it.Mythic {
			mythics++
		}
	}
	if mythics > 1 {
		errs.add("at most one mythic item is allowed, got %d", mythics)
	}
	if c.Preset != nil {
		errs.addErr("preset", c.Preset.Validate())
	}
	if c.Target != nil {
		errs.addErr("target", c.Target.Validate())
	}
	return errs.err()
}

// TotalCost returns the summed gold cost of every equipped item.
func (c *Config) TotalCost() int {
	total := 0
	for _, it := range c.Items {
		total += it.Cost
	}
	return total
}

// WithItem returns a copy of c with it appended to the item list and the
// resolved stats cleared.
//
// Postcondition: c is unchanged; the copy has been re-validated.
func (c *Config) WithItem(name string, it *EquipmentItem) (*Config, error) {
	items := make([]*EquipmentItem, 0, len(c.Items)+1)
	items = append(items, c.Items...)
	items = append(items, it)
	return New(name, c.Character, c.Level, items, WithPreset(c.Preset), WithTarget(c.Target))
}

// Comparison pairs two builds with their computed differences.
type Comparison struct {
	A, B            *Config
	StatDifferences map[string]float64
	// DPSDifference is nil unless both builds have a DPS value.
	DPSDifference  *float64
	CostDifference int
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func quote(s string) string {
	return strconv.Quote(s)
}

func modifierLabel(i int) string {
	return "modifier " + strconv.Itoa(i)
}
