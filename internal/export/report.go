// Package export turns resolved builds and analyses into reports and writes
// them as JSON, YAML or CSV.
package export

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/combat"
)

// Number is a float that survives JSON encoding when infinite: +Inf is
// written as the string "Infinity".
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(f):
		return []byte(`null`), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"Infinity"`:
		*n = Number(math.Inf(1))
		return nil
	case `"-Infinity"`:
		*n = Number(math.Inf(-1))
		return nil
	case `null`:
		*n = Number(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// String formats n for CSV cells.
func (n Number) String() string {
	f := float64(n)
	if math.IsInf(f, 1) {
		return "inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// BuildSummary identifies the build a report describes.
type BuildSummary struct {
	Name      string   `json:"name" yaml:"name"`
	Character string   `json:"character" yaml:"character"`
	Class     string   `json:"class,omitempty" yaml:"class,omitempty"`
	Level     int      `json:"level" yaml:"level"`
	Items     []string `json:"items" yaml:"items"`
	Preset    string   `json:"preset,omitempty" yaml:"preset,omitempty"`
	Target    string   `json:"target,omitempty" yaml:"target,omitempty"`
	TotalCost int      `json:"total_cost" yaml:"total_cost"`
}

// StatLine is one named value of a stat sheet.
type StatLine struct {
	Stat  string `json:"stat" yaml:"stat"`
	Value Number `json:"value" yaml:"value"`
}

// AttackView is the export form of combat.AttackReport.
type AttackView struct {
	Target          string `json:"target" yaml:"target"`
	AverageDamage   Number `json:"avg_damage_per_attack" yaml:"avg_damage_per_attack"`
	EffectiveDamage Number `json:"effective_damage" yaml:"effective_damage"`
	ArmorReduction  Number `json:"armor_reduction" yaml:"armor_reduction"`
	DPS             Number `json:"dps" yaml:"dps"`
	TTK             Number `json:"ttk" yaml:"ttk"`
	AttacksToKill   Number `json:"attacks_to_kill" yaml:"attacks_to_kill"`
}

// Report is a self-contained, exportable description of one resolved build.
type Report struct {
	ID            uuid.UUID                  `json:"id" yaml:"id"`
	CreatedAt     time.Time                  `json:"export_timestamp" yaml:"export_timestamp"`
	Build         BuildSummary               `json:"build" yaml:"build"`
	Stats         []StatLine                 `json:"final_stats" yaml:"final_stats"`
	Survivability combat.SurvivabilityReport `json:"survivability" yaml:"survivability"`
	Attack        *AttackView                `json:"attack,omitempty" yaml:"attack,omitempty"`
	Burst         *combat.BurstReport        `json:"burst,omitempty" yaml:"burst,omitempty"`
}

// Stat returns the value of the named stat line and whether it exists.
func (r *Report) Stat(name string) (float64, bool) {
	for _, l := range r.Stats {
		if l.Stat == name {
			return float64(l.Value), true
		}
	}
	return 0, false
}

// NewReport builds a Report for cfg, which must already be resolved.
// burstHits <= 0 uses combat.DefaultBurstHits.
//
// Precondition: cfg.Resolved must be non-nil.
// Postcondition: the report has a fresh random ID and the given timestamp;
// Attack and Burst are set only when cfg has a target.
func NewReport(cfg *build.Config, burstHits int, now time.Time) *Report {
	s := *cfg.Resolved
	r := &Report{
		ID:            uuid.New(),
		CreatedAt:     now.UTC(),
		Build:         summarize(cfg),
		Stats:         StatLines(s),
		Survivability: combat.Survivability(s),
	}
	if cfg.Target != nil {
		a := combat.BasicAttack(s, cfg.Target)
		r.Attack = &AttackView{
			Target:          a.Target,
			AverageDamage:   Number(a.AverageDamage),
			EffectiveDamage: Number(a.EffectiveDamage),
			ArmorReduction:  Number(a.ArmorReduction),
			DPS:             Number(a.DPS),
			TTK:             Number(a.TTK),
			AttacksToKill:   Number(a.AttacksToKill),
		}
		b := combat.Burst(s, cfg.Target, burstHits)
		r.Burst = &b
	}
	return r
}

// StatLines flattens s into ordered stat lines. Optional derived values are
// included only when set.
func StatLines(s build.ResolvedStats) []StatLine {
	lines := []StatLine{
		{"level", Number(s.Level)},
		{"ad", Number(s.AD)},
		{"ap", Number(s.AP)},
		{"as", Number(s.AS)},
		{"crit_chance", Number(s.CritChance)},
		{"crit_damage", Number(s.CritDamage)},
		{"hp", Number(s.HP)},
		{"mana", Number(s.Mana)},
		{"armor", Number(s.Armor)},
		{"mr", Number(s.MR)},
		{"ms", Number(s.MS)},
	}
	optional := []struct {
		name string
		v    *float64
	}{
		{"dps", s.DPS},
		{"ttk", s.TTK},
		{"effective_hp_physical", s.EHPPhysical},
		{"effective_hp_magical", s.EHPMagical},
	}
	for _, o := range optional {
		if v, ok := build.Value(o.v); ok {
			lines = append(lines, StatLine{o.name, Number(v)})
		}
	}
	return lines
}

func summarize(cfg *build.Config) BuildSummary {
	sum := BuildSummary{
		Name:      cfg.Name,
		Character: cfg.Character.Name,
		Class:     cfg.Character.Class,
		Level:     cfg.Level,
		Items:     make([]string, 0, len(cfg.Items)),
		TotalCost: cfg.TotalCost(),
	}
	for _, it := range cfg.Items {
		sum.Items = append(sum.Items, it.Name)
	}
	if cfg.Preset != nil {
		sum.Preset = cfg.Preset.Name
	}
	if cfg.Target != nil {
		sum.Target = cfg.Target.Name
	}
	return sum
}
