// Package analysis builds reports on top of the resolver: level power curves,
// gold efficiency, item recommendations, and build comparisons.
package analysis

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/combat"
	"github.com/cory-johannsen/buildcalc/internal/game/resolve"
)

// DefaultLevels are the levels sampled by PowerCurve when none are given.
var DefaultLevels = []int{1, 6, 11, 16, 18}

// DefaultTopN is the number of recommendations returned by Recommend.
const DefaultTopN = 5

// Analyzer runs multi-build reports. Independent resolutions run concurrently,
// bounded by the configured worker count.
type Analyzer struct {
	resolver *resolve.Resolver
	logger   *zap.Logger
	workers  int
	topN     int
	ranker   Ranker
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithWorkers bounds the number of concurrent resolutions. n <= 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(a *Analyzer) { a.workers = n }
}

// WithTopN sets how many recommendations Recommend keeps. n <= 0 uses DefaultTopN.
func WithTopN(n int) Option {
	return func(a *Analyzer) { a.topN = n }
}

// WithRanker replaces the default DPS-per-gold ranking.
func WithRanker(r Ranker) Option {
	return func(a *Analyzer) { a.ranker = r }
}

// NewAnalyzer creates an Analyzer.
//
// Precondition: resolver and logger must be non-nil.
func NewAnalyzer(resolver *resolve.Resolver, logger *zap.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{resolver: resolver, logger: logger, ranker: DPSPerGold{}}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers <= 0 {
		a.workers = runtime.GOMAXPROCS(0)
	}
	if a.topN <= 0 {
		a.topN = DefaultTopN
	}
	if a.ranker == nil {
		a.ranker = DPSPerGold{}
	}
	return a
}

// CurvePoint is one level sample of a power curve.
type CurvePoint struct {
	Level           int     `json:"level" yaml:"level"`
	AD              float64 `json:"ad" yaml:"ad"`
	AS              float64 `json:"as" yaml:"as"`
	HP              float64 `json:"hp" yaml:"hp"`
	DPS             float64 `json:"dps" yaml:"dps"`
	EffectiveDamage float64 `json:"effective_damage" yaml:"effective_damage"`
}

// PowerCurve resolves profile with items at every level in levels against
// the training dummy. A nil or empty levels uses DefaultLevels.
//
// Precondition: profile must be non-nil.
// Postcondition: returns one CurvePoint per distinct level, or the first
// error encountered (e.g. *build.LevelError).
func (a *Analyzer) PowerCurve(ctx context.Context, profile *build.CharacterProfile, items []*build.EquipmentItem, levels []int) (map[int]CurvePoint, error) {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	dummy := build.DummyTarget()
	points := make([]CurvePoint, len(levels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, level := range levels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cfg, err := build.New(fmt.Sprintf("Power Curve Level %d", level), profile, level, items, build.WithTarget(dummy))
			if err != nil {
				return fmt.Errorf("power curve level %d: %w", level, err)
			}
			s, err := a.resolver.Resolve(cfg)
			if err != nil {
				return fmt.Errorf("power curve level %d: %w", level, err)
			}
			rep := combat.BasicAttack(s, dummy)
			points[i] = CurvePoint{
				Level:           level,
				AD:              s.AD,
				AS:              s.AS,
				HP:              s.HP,
				DPS:             rep.DPS,
				EffectiveDamage: rep.EffectiveDamage,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	curve := make(map[int]CurvePoint, len(points))
	for _, p := range points {
		curve[p.Level] = p
	}
	a.logger.Debug("power curve computed",
		zap.String("character", profile.Name),
		zap.Ints("levels", levels),
	)
	return curve, nil
}

// Compare resolves both builds and returns their differences (y minus x).
//
// Precondition: x and y must be non-nil.
func (a *Analyzer) Compare(ctx context.Context, x, y *build.Config) (*build.Comparison, error) {
	resolved := make([]*build.Config, 2)
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, cfg := range []*build.Config{x, y} {
		g.Go(func() error {
			out, err := a.resolver.ResolveInto(cfg)
			if err != nil {
				return err
			}
			resolved[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("comparing builds: %w", err)
	}

	ra, rb := resolved[0], resolved[1]
	cmp := &build.Comparison{
		A:               ra,
		B:               rb,
		StatDifferences: resolve.CompareStats(*ra.Resolved, *rb.Resolved),
		CostDifference:  rb.TotalCost() - ra.TotalCost(),
	}
	if d, ok := cmp.StatDifferences["dps"]; ok {
		cmp.DPSDifference = build.Float(d)
	}
	return cmp, nil
}
