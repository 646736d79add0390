// Package main provides the buildcalc command: resolve, compare, analyze and
// export character builds from the YAML catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/buildcalc/internal/catalog"
	"github.com/cory-johannsen/buildcalc/internal/config"
	"github.com/cory-johannsen/buildcalc/internal/game/analysis"
	"github.com/cory-johannsen/buildcalc/internal/game/resolve"
	"github.com/cory-johannsen/buildcalc/internal/observability"
	"github.com/cory-johannsen/buildcalc/internal/scripting"
	"github.com/cory-johannsen/buildcalc/internal/storage/postgres"
)

const usage = `usage: buildcalc [-config path] <command> [flags]

commands:
  resolve    resolve one build and print or export its report
  compare    compare two item sets on the same character
  curve      power curve of a build across levels
  recommend  rank candidate items by DPS gained per gold
  targets    DPS of a build against every catalog target
  list       list catalog characters, items, presets and targets
`

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	start := time.Now()
	reg, err := catalog.LoadDir(cfg.Catalog.Dir)
	if err != nil {
		logger.Fatal("loading catalog", zap.Error(err))
	}
	logger.Info("catalog loaded",
		zap.String("dir", cfg.Catalog.Dir),
		zap.Int("characters", len(reg.CharacterIDs())),
		zap.Int("items", len(reg.ItemIDs())),
		zap.Int("presets", len(reg.PresetIDs())),
		zap.Int("targets", len(reg.TargetIDs())),
		zap.Duration("elapsed", time.Since(start)),
	)

	opts := []analysis.Option{
		analysis.WithWorkers(cfg.Analysis.Workers),
		analysis.WithTopN(cfg.Analysis.TopN),
	}
	if cfg.Scripting.ScorerScript != "" {
		scorer, err := scripting.LoadScorer(cfg.Scripting.ScorerScript, cfg.Scripting.InstructionLimit, logger)
		if err != nil {
			logger.Fatal("loading scorer script", zap.Error(err))
		}
		defer scorer.Close()
		opts = append(opts, analysis.WithRanker(scorer))
		logger.Info("scripted ranking enabled", zap.String("script", cfg.Scripting.ScorerScript))
	}

	ctx := context.Background()
	resolver := resolve.NewResolver(logger)
	a := &app{
		cfg:      cfg,
		logger:   logger,
		catalog:  reg,
		resolver: resolver,
		analyzer: analysis.NewAnalyzer(resolver, logger, opts...),
		out:      os.Stdout,
	}

	if cfg.Database.Enabled {
		store, err := postgres.Open(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("opening report store", zap.Error(err))
		}
		defer store.Close()
		a.reports = store.Reports
	}

	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		logger.Error("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
