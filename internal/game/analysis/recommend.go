package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/combat"
	"github.com/cory-johannsen/buildcalc/internal/game/stat"
)

// Recommendation is the measured effect of adding one candidate item to a build.
type Recommendation struct {
	Item            string  `json:"item_name" yaml:"item_name"`
	DPSDelta        float64 `json:"dps_improvement" yaml:"dps_improvement"`
	DPSDeltaPercent float64 `json:"dps_improvement_percent" yaml:"dps_improvement_percent"`
	GoldEfficiency  float64 `json:"gold_efficiency" yaml:"gold_efficiency"`
	Cost            int     `json:"cost" yaml:"cost"`
	DPSPerGold      float64 `json:"dps_per_gold" yaml:"dps_per_gold"`
}

// Optimization is the ranked outcome of Recommend.
type Optimization struct {
	BaseDPS         float64          `json:"base_dps" yaml:"base_dps"`
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
	TotalCost       int              `json:"total_cost" yaml:"total_cost"`
	// Skipped names candidates that could not legally join the build.
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Ranker scores a recommendation; higher scores rank first.
type Ranker interface {
	Score(r Recommendation) float64
}

// DPSPerGold ranks recommendations by DPS gained per gold spent.
type DPSPerGold struct{}

// Score returns r.DPSPerGold.
func (DPSPerGold) Score(r Recommendation) float64 { return r.DPSPerGold }

// Recommend measures each candidate added on top of base and returns the
// best ones, ranked descending by the analyzer's Ranker (DPS per gold by
// default). Ties keep candidate order. Measurement uses base's target, or
// the training dummy when base has none. Candidates that would make the
// build invalid (a second mythic item) are listed in Skipped.
//
// Precondition: base must be non-nil.
// Postcondition: len(Recommendations) <= the configured top N.
func (a *Analyzer) Recommend(ctx context.Context, base *build.Config, candidates []*build.EquipmentItem) (Optimization, error) {
	target := base.Target
	if target == nil {
		target = build.DummyTarget()
	}
	baseStats, err := a.resolver.Resolve(base)
	if err != nil {
		return Optimization{}, fmt.Errorf("resolving base build: %w", err)
	}
	baseDPS := combat.BasicAttack(baseStats, target).DPS

	recs := make([]*Recommendation, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, item := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cfg, err := base.WithItem("With "+item.Name, item)
			if errors.Is(err, build.ErrInvalidBuildConfig) {
				a.logger.Warn("skipping candidate item",
					zap.String("item", item.Name),
					zap.Error(err),
				)
				return nil
			}
			if err != nil {
				return err
			}
			s, err := a.resolver.Resolve(cfg)
			if err != nil {
				return fmt.Errorf("resolving candidate %q: %w", item.Name, err)
			}
			recs[i] = measure(baseStats, baseDPS, s, combat.BasicAttack(s, target).DPS, item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Optimization{}, err
	}

	opt := Optimization{BaseDPS: baseDPS, TotalCost: base.TotalCost()}
	ranked := make([]Recommendation, 0, len(recs))
	scores := make([]float64, 0, len(recs))
	for i, r := range recs {
		if r == nil {
			opt.Skipped = append(opt.Skipped, candidates[i].Name)
			continue
		}
		ranked = append(ranked, *r)
		scores = append(scores, a.ranker.Score(*r))
	}
	sort.Stable(byScore{recs: ranked, scores: scores})
	if len(ranked) > a.topN {
		ranked = ranked[:a.topN]
	}
	opt.Recommendations = ranked

	a.logger.Debug("recommendations ranked",
		zap.String("build", base.Name),
		zap.Int("candidates", len(candidates)),
		zap.Int("skipped", len(opt.Skipped)),
	)
	return opt, nil
}

func measure(before build.ResolvedStats, baseDPS float64, after build.ResolvedStats, newDPS float64, item *build.EquipmentItem) *Recommendation {
	delta := newDPS - baseDPS
	percent := 0.0
	if baseDPS > 0 {
		percent = delta / baseDPS * 100
	}
	perGold := 0.0
	if item.Cost > 0 {
		perGold = stat.RoundTo(delta/float64(item.Cost), 4)
	}
	return &Recommendation{
		Item:            item.Name,
		DPSDelta:        stat.RoundTo(delta, 2),
		DPSDeltaPercent: stat.RoundTo(percent, 2),
		GoldEfficiency:  GoldEfficiency(before, after, item.Cost).Percent,
		Cost:            item.Cost,
		DPSPerGold:      perGold,
	}
}

// byScore sorts recommendations descending by their precomputed scores.
type byScore struct {
	recs   []Recommendation
	scores []float64
}

func (b byScore) Len() int           { return len(b.recs) }
func (b byScore) Less(i, j int) bool { return b.scores[i] > b.scores[j] }
func (b byScore) Swap(i, j int) {
	b.recs[i], b.recs[j] = b.recs[j], b.recs[i]
	b.scores[i], b.scores[j] = b.scores[j], b.scores[i]
}
