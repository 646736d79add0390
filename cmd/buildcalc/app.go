package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/buildcalc/internal/catalog"
	"github.com/cory-johannsen/buildcalc/internal/config"
	"github.com/cory-johannsen/buildcalc/internal/export"
	"github.com/cory-johannsen/buildcalc/internal/game/analysis"
	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/combat"
	"github.com/cory-johannsen/buildcalc/internal/game/resolve"
	"github.com/cory-johannsen/buildcalc/internal/storage/postgres"
)

// app holds the collaborators shared by every subcommand.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	catalog  *catalog.Registry
	resolver *resolve.Resolver
	analyzer *analysis.Analyzer
	reports  *postgres.ReportRepository
	out      io.Writer
	now      func() time.Time
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "resolve":
		return a.resolveCmd(ctx, args)
	case "compare":
		return a.compareCmd(ctx, args)
	case "curve":
		return a.curveCmd(ctx, args)
	case "recommend":
		return a.recommendCmd(ctx, args)
	case "targets":
		return a.targetsCmd(args)
	case "list":
		return a.listCmd()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// buildFlags are the flags shared by every command that assembles a build.
type buildFlags struct {
	name      *string
	character *string
	level     *int
	items     *string
	preset    *string
	target    *string
}

func addBuildFlags(fs *flag.FlagSet) buildFlags {
	return buildFlags{
		name:      fs.String("name", "", "build name (default: character name)"),
		character: fs.String("character", "", "character id"),
		level:     fs.Int("level", 1, "character level (1-18)"),
		items:     fs.String("items", "", "comma-separated item ids, in equip order"),
		preset:    fs.String("preset", "", "passive preset id"),
		target:    fs.String("target", "", "target id"),
	}
}

// assemble looks up every referenced catalog entry and validates the build.
func (a *app) assemble(f buildFlags, items string) (*build.Config, error) {
	if *f.character == "" {
		return nil, errors.New("-character is required")
	}
	profile, ok := a.catalog.Character(*f.character)
	if !ok {
		return nil, fmt.Errorf("unknown character %q", *f.character)
	}
	equipped, err := a.catalog.Items(splitList(items))
	if err != nil {
		return nil, err
	}
	var opts []build.Option
	if *f.preset != "" {
		p, ok := a.catalog.Preset(*f.preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", *f.preset)
		}
		opts = append(opts, build.WithPreset(p))
	}
	if *f.target != "" {
		t, ok := a.catalog.Target(*f.target)
		if !ok {
			return nil, fmt.Errorf("unknown target %q", *f.target)
		}
		opts = append(opts, build.WithTarget(t))
	}
	name := *f.name
	if name == "" {
		name = profile.Name
	}
	return build.New(name, profile, *f.level, equipped, opts...)
}

func (a *app) resolveCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	bf := addBuildFlags(fs)
	format := fs.String("format", a.cfg.Export.Format, "output format: json, yaml or csv")
	save := fs.Bool("save", false, "write the report to the export directory")
	store := fs.Bool("store", false, "persist the report in the report store")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := a.assemble(bf, *bf.items)
	if err != nil {
		return err
	}
	resolved, err := a.resolver.ResolveInto(cfg)
	if err != nil {
		return err
	}
	rep := export.NewReport(resolved, a.cfg.Analysis.BurstHits, a.clock())

	if *store {
		if a.reports == nil {
			return errors.New("-store requires database.enabled")
		}
		if err := a.reports.Save(ctx, rep); err != nil {
			return err
		}
		a.logger.Info("report stored", zap.String("id", rep.ID.String()))
	}
	if *save {
		path, err := export.SaveToDir(a.cfg.Export.Dir, *format, rep)
		if err != nil {
			return err
		}
		a.logger.Info("report exported", zap.String("path", path))
		fmt.Fprintln(a.out, path)
		return nil
	}
	return export.Write(a.out, *format, rep)
}

func (a *app) compareCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	bf := addBuildFlags(fs)
	other := fs.String("vs", "", "comma-separated item ids of the second build")
	if err := fs.Parse(args); err != nil {
		return err
	}

	x, err := a.assemble(bf, *bf.items)
	if err != nil {
		return fmt.Errorf("build A: %w", err)
	}
	x.Name += " (A)"
	y, err := a.assemble(bf, *other)
	if err != nil {
		return fmt.Errorf("build B: %w", err)
	}
	y.Name += " (B)"

	cmp, err := a.analyzer.Compare(ctx, x, y)
	if err != nil {
		return err
	}
	return export.WriteComparisonCSV(a.out, cmp)
}

func (a *app) curveCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("curve", flag.ContinueOnError)
	bf := addBuildFlags(fs)
	levels := fs.String("levels", "", "comma-separated levels (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := a.assemble(bf, *bf.items)
	if err != nil {
		return err
	}
	lv := a.cfg.Analysis.Levels
	if *levels != "" {
		lv, err = parseLevels(*levels)
		if err != nil {
			return err
		}
	}
	curve, err := a.analyzer.PowerCurve(ctx, cfg.Character, cfg.Items, lv)
	if err != nil {
		return err
	}
	return export.WriteLevelTableCSV(a.out, curve)
}

func (a *app) recommendCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	bf := addBuildFlags(fs)
	candidates := fs.String("candidates", "", "comma-separated candidate item ids (default: every catalog item)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	base, err := a.assemble(bf, *bf.items)
	if err != nil {
		return err
	}
	ids := splitList(*candidates)
	if len(ids) == 0 {
		ids = a.catalog.ItemIDs()
	}
	items, err := a.catalog.Items(ids)
	if err != nil {
		return err
	}

	opt, err := a.analyzer.Recommend(ctx, base, items)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "base dps\t%.2f\ttotal cost\t%d\n\n", opt.BaseDPS, opt.TotalCost)
	fmt.Fprintln(tw, "item\tcost\tdps +\tdps +%\tgold eff %\tdps/gold")
	for _, r := range opt.Recommendations {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.4f\n",
			r.Item, r.Cost, r.DPSDelta, r.DPSDeltaPercent, r.GoldEfficiency, r.DPSPerGold)
	}
	if len(opt.Skipped) > 0 {
		fmt.Fprintf(tw, "\nskipped: %s\n", strings.Join(opt.Skipped, ", "))
	}
	return tw.Flush()
}

func (a *app) targetsCmd(args []string) error {
	fs := flag.NewFlagSet("targets", flag.ContinueOnError)
	bf := addBuildFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := a.assemble(bf, *bf.items)
	if err != nil {
		return err
	}
	s, err := a.resolver.Resolve(cfg)
	if err != nil {
		return err
	}
	reports := combat.AgainstTargets(s, a.catalog.AllTargets())

	ids := make([]string, 0, len(reports))
	for id := range reports {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "id\ttarget\tarmor red %\teffective dmg\tdps\tttk\tattacks")
	for _, id := range ids {
		r := reports[id]
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%s\t%s\n",
			id, r.Target, r.ArmorReduction, r.EffectiveDamage, r.DPS, formatInf(r.TTK), formatInf(r.AttacksToKill))
	}
	return tw.Flush()
}

func (a *app) listCmd() error {
	sections := []struct {
		title string
		ids   []string
	}{
		{"characters", a.catalog.CharacterIDs()},
		{"items", a.catalog.ItemIDs()},
		{"presets", a.catalog.PresetIDs()},
		{"targets", a.catalog.TargetIDs()},
	}
	for _, s := range sections {
		fmt.Fprintf(a.out, "%s: %s\n", s.title, strings.Join(s.ids, ", "))
	}
	return nil
}

func (a *app) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLevels(s string) ([]int, error) {
	var out []int
	for _, p := range splitList(s) {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid level %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func formatInf(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
