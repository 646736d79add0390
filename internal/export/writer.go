package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/buildcalc/internal/game/analysis"
	"github.com/cory-johannsen/buildcalc/internal/game/build"
)

// Supported export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("export: encoding json: %w", err)
	}
	return nil
}

// WriteYAML writes r as YAML.
func WriteYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("export: encoding yaml: %w", err)
	}
	return enc.Close()
}

// WriteCSV writes r as "section,stat,value" rows.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"section", "stat", "value"},
		{"build", "name", r.Build.Name},
		{"build", "character", r.Build.Character},
		{"build", "level", strconv.Itoa(r.Build.Level)},
		{"build", "items", strings.Join(r.Build.Items, "; ")},
		{"build", "total_cost", strconv.Itoa(r.Build.TotalCost)},
	}
	for _, l := range r.Stats {
		rows = append(rows, []string{"stats", l.Stat, l.Value.String()})
	}
	sv := r.Survivability
	rows = append(rows,
		[]string{"survivability", "effective_hp_physical", Number(sv.EHPPhysical).String()},
		[]string{"survivability", "effective_hp_magical", Number(sv.EHPMagical).String()},
		[]string{"survivability", "physical_damage_reduction", Number(sv.PhysicalReduction).String()},
		[]string{"survivability", "magical_damage_reduction", Number(sv.MagicalReduction).String()},
		[]string{"survivability", "survivability_score", Number(sv.Score).String()},
	)
	if a := r.Attack; a != nil {
		rows = append(rows,
			[]string{"attack", "target", a.Target},
			[]string{"attack", "dps", a.DPS.String()},
			[]string{"attack", "ttk", a.TTK.String()},
			[]string{"attack", "attacks_to_kill", a.AttacksToKill.String()},
		)
	}
	return writeAll(cw, rows)
}

// WriteComparisonCSV writes the stat differences of cmp as
// "stat,a,b,difference" rows, sorted by stat name.
func WriteComparisonCSV(w io.Writer, cmp *build.Comparison) error {
	if cmp.A.Resolved == nil || cmp.B.Resolved == nil {
		return fmt.Errorf("export: comparison builds must be resolved")
	}
	a := lineMap(StatLines(*cmp.A.Resolved))
	b := lineMap(StatLines(*cmp.B.Resolved))

	names := make([]string, 0, len(cmp.StatDifferences))
	for name := range cmp.StatDifferences {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := [][]string{{"stat", cmp.A.Name, cmp.B.Name, "difference"}}
	for _, name := range names {
		rows = append(rows, []string{
			name,
			a[name].String(),
			b[name].String(),
			Number(cmp.StatDifferences[name]).String(),
		})
	}
	rows = append(rows, []string{"cost", strconv.Itoa(cmp.A.TotalCost()), strconv.Itoa(cmp.B.TotalCost()), strconv.Itoa(cmp.CostDifference)})
	return writeAll(csv.NewWriter(w), rows)
}

// WriteLevelTableCSV writes a power curve as one row per level, ascending.
func WriteLevelTableCSV(w io.Writer, curve map[int]analysis.CurvePoint) error {
	levels := make([]int, 0, len(curve))
	for l := range curve {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	rows := [][]string{{"level", "ad", "as", "hp", "dps", "effective_damage"}}
	for _, l := range levels {
		p := curve[l]
		rows = append(rows, []string{
			strconv.Itoa(l),
			Number(p.AD).String(),
			Number(p.AS).String(),
			Number(p.HP).String(),
			Number(p.DPS).String(),
			Number(p.EffectiveDamage).String(),
		})
	}
	return writeAll(csv.NewWriter(w), rows)
}

// Write dispatches to the writer for format.
func Write(w io.Writer, format string, r *Report) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	default:
		return fmt.Errorf("export: unknown format %q", format)
	}
}

// SaveToDir writes r to a new file in dir named after the build and the
// report timestamp, creating dir when needed.
//
// Postcondition: returns the written file path or a non-nil error; on error
// no report file is left behind.
func SaveToDir(dir, format string, r *Report) (string, error) {
	switch format {
	case FormatJSON, FormatYAML, FormatCSV:
	default:
		return "", fmt.Errorf("export: unknown format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: creating %q: %w", dir, err)
	}
	name := fmt.Sprintf("%s_%s.%s", slug(r.Build.Name), r.CreatedAt.Format("20060102_150405"), format)
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: creating %q: %w", path, err)
	}
	if err := Write(f, format, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("export: closing %q: %w", path, err)
	}
	return path, nil
}

func writeAll(cw *csv.Writer, rows [][]string) error {
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("export: writing csv: %w", err)
	}
	return nil
}

func lineMap(lines []StatLine) map[string]Number {
	m := make(map[string]Number, len(lines))
	for _, l := range lines {
		m[l.Stat] = l.Value
	}
	return m
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "build"
	}
	return b.String()
}
