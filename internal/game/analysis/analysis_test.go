package analysis_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/buildcalc/internal/game/analysis"
	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/resolve"
	"github.com/cory-johannsen/buildcalc/internal/game/stat"
)

func vale() *build.CharacterProfile {
	return &build.CharacterProfile{
		ID: "vale", Name: "Vale",
		BaseAD: 59, BaseAS: 0.658, BaseHP: 630, BaseArmor: 26, BaseMR: 30, BaseMS: 330,
		GrowthAD: 2, GrowthAS: 3, GrowthHP: 100, GrowthArmor: 4.2, GrowthMR: 1.3,
	}
}

func flatItem(name string, cost int, a stat.Attribute, v float64) *build.EquipmentItem {
	return &build.EquipmentItem{ID: name, Name: name, Cost: cost, Modifiers: []stat.Modifier{{Attribute: a, Value: v, Kind: stat.Flat}}}
}

var (
	longSword = flatItem("Long Sword", 350, stat.AttackDamage, 10)
	bfSword   = flatItem("B. F. Sword", 1300, stat.AttackDamage, 40)
	cloth     = flatItem("Cloth Armor", 300, stat.Armor, 15)
	galeforce = &build.EquipmentItem{Name: "Galeforce", Cost: 3400, Mythic: true,
		Modifiers: []stat.Modifier{{Attribute: stat.AttackDamage, Value: 60, Kind: stat.Flat}}}
	kraken = &build.EquipmentItem{Name: "Kraken Slayer", Cost: 3400, Mythic: true,
		Modifiers: []stat.Modifier{{Attribute: stat.AttackDamage, Value: 65, Kind: stat.Flat}}}
)

func newAnalyzer(t *testing.T, opts ...analysis.Option) *analysis.Analyzer {
	logger := zaptest.NewLogger(t)
	return analysis.NewAnalyzer(resolve.NewResolver(logger), logger, opts...)
}

func TestGoldEfficiency(t *testing.T) {
	before := build.ResolvedStats{AD: 79}
	after := build.ResolvedStats{AD: 119}
	eff := analysis.GoldEfficiency(before, after, 1000)
	assert.Equal(t, 1400.0, eff.TotalValue)
	assert.Equal(t, 140.0, eff.Percent)
	assert.Equal(t, map[string]float64{"ad": 1400}, eff.PerStat)
}

func TestGoldEfficiency_IgnoresLosses(t *testing.T) {
	before := build.ResolvedStats{AD: 100, AS: 1.0, Armor: 50, MS: 300}
	after := build.ResolvedStats{AD: 80, AS: 1.12, Armor: 50, MS: 280}
	eff := analysis.GoldEfficiency(before, after, 300)
	assert.Equal(t, 300.0, eff.TotalValue, "12 attack speed points at 25 gold, AD loss ignored")
	assert.Equal(t, 100.0, eff.Percent)
	assert.NotContains(t, eff.PerStat, "ad")
}

func TestGoldEfficiency_FreeItem(t *testing.T) {
	eff := analysis.GoldEfficiency(build.ResolvedStats{}, build.ResolvedStats{HP: 100}, 0)
	assert.Equal(t, 267.0, eff.TotalValue)
	assert.Equal(t, 0.0, eff.Percent)
}

func TestRecommend_RanksByDPSPerGold(t *testing.T) {
	base, err := build.New("base", vale(), 11, nil)
	require.NoError(t, err)

	opt, err := newAnalyzer(t).Recommend(context.Background(), base, []*build.EquipmentItem{cloth, longSword, bfSword})
	require.NoError(t, err)

	assert.Equal(t, 79.0, opt.BaseDPS)
	require.Len(t, opt.Recommendations, 3)
	assert.Equal(t, "B. F. Sword", opt.Recommendations[0].Item)
	assert.Equal(t, 40.0, opt.Recommendations[0].DPSDelta)
	assert.Equal(t, 0.0308, opt.Recommendations[0].DPSPerGold)
	assert.Equal(t, "Long Sword", opt.Recommendations[1].Item)
	assert.Equal(t, "Cloth Armor", opt.Recommendations[2].Item)
	assert.Equal(t, 0.0, opt.Recommendations[2].DPSDelta)
	assert.Empty(t, opt.Skipped)
}

func TestRecommend_TopN(t *testing.T) {
	base, err := build.New("base", vale(), 11, nil)
	require.NoError(t, err)

	var candidates []*build.EquipmentItem
	for i := 1; i <= 8; i++ {
		candidates = append(candidates, flatItem(string(rune('A'+i)), 100*i, stat.AttackDamage, 10))
	}
	opt, err := newAnalyzer(t).Recommend(context.Background(), base, candidates)
	require.NoError(t, err)
	assert.Len(t, opt.Recommendations, analysis.DefaultTopN)

	opt, err = newAnalyzer(t, analysis.WithTopN(2)).Recommend(context.Background(), base, candidates)
	require.NoError(t, err)
	assert.Len(t, opt.Recommendations, 2)
	assert.Equal(t, "B", opt.Recommendations[0].Item, "cheapest item gives the most dps per gold")
}

func TestRecommend_SkipsSecondMythic(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)
	a := analysis.NewAnalyzer(resolve.NewResolver(logger), logger)

	base, err := build.New("base", vale(), 18, []*build.EquipmentItem{galeforce})
	require.NoError(t, err)

	opt, err := a.Recommend(context.Background(), base, []*build.EquipmentItem{kraken, longSword})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kraken Slayer"}, opt.Skipped)
	require.Len(t, opt.Recommendations, 1)
	assert.Equal(t, "Long Sword", opt.Recommendations[0].Item)
	assert.Equal(t, 3400, opt.TotalCost)
	assert.Equal(t, 1, logs.FilterMessage("skipping candidate item").Len())
}

type byCost struct{}

func (byCost) Score(r analysis.Recommendation) float64 { return float64(r.Cost) }

func TestRecommend_CustomRanker(t *testing.T) {
	base, err := build.New("base", vale(), 11, nil)
	require.NoError(t, err)

	opt, err := newAnalyzer(t, analysis.WithRanker(byCost{})).Recommend(context.Background(), base, []*build.EquipmentItem{longSword, cloth, bfSword})
	require.NoError(t, err)
	require.Len(t, opt.Recommendations, 3)
	assert.Equal(t, "B. F. Sword", opt.Recommendations[0].Item)
	assert.Equal(t, "Long Sword", opt.Recommendations[1].Item)
	assert.Equal(t, "Cloth Armor", opt.Recommendations[2].Item)
}

func TestRecommend_InvalidBase(t *testing.T) {
	base := &build.Config{Name: "bad", Character: vale(), Level: 30}
	_, err := newAnalyzer(t).Recommend(context.Background(), base, []*build.EquipmentItem{longSword})
	assert.True(t, errors.Is(err, build.ErrInvalidLevel))
}

func TestRecommend_CancelledContext(t *testing.T) {
	base, err := build.New("base", vale(), 11, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = newAnalyzer(t).Recommend(ctx, base, []*build.EquipmentItem{longSword, bfSword})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPowerCurve(t *testing.T) {
	curve, err := newAnalyzer(t).PowerCurve(context.Background(), vale(), []*build.EquipmentItem{bfSword}, nil)
	require.NoError(t, err)

	levels := make([]int, 0, len(curve))
	for l := range curve {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	assert.Equal(t, analysis.DefaultLevels, levels)

	assert.Equal(t, 99.0, curve[1].AD)
	assert.Equal(t, 99.0, curve[1].DPS, "the dummy has no armor")
	for i := 1; i < len(levels); i++ {
		assert.GreaterOrEqual(t, curve[levels[i]].DPS, curve[levels[i-1]].DPS)
	}
}

func TestPowerCurve_InvalidLevel(t *testing.T) {
	_, err := newAnalyzer(t).PowerCurve(context.Background(), vale(), nil, []int{1, 19})
	var le *build.LevelError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 19, le.Level)
}

func TestCompare(t *testing.T) {
	x, err := build.New("x", vale(), 11, []*build.EquipmentItem{longSword}, build.WithTarget(build.DummyTarget()))
	require.NoError(t, err)
	y, err := build.New("y", vale(), 11, []*build.EquipmentItem{bfSword}, build.WithTarget(build.DummyTarget()))
	require.NoError(t, err)

	cmp, err := newAnalyzer(t).Compare(context.Background(), x, y)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cmp.StatDifferences["ad"])
	assert.Equal(t, 950, cmp.CostDifference)
	require.NotNil(t, cmp.DPSDifference)
	assert.Equal(t, 30.0, *cmp.DPSDifference)
	require.NotNil(t, cmp.A.Resolved)
	require.NotNil(t, cmp.B.Resolved)
	assert.Nil(t, x.Resolved, "inputs are not modified")
}

func TestCompare_NoTargetNoDPSDifference(t *testing.T) {
	x, err := build.New("x", vale(), 5, nil)
	require.NoError(t, err)
	cmp, err := newAnalyzer(t).Compare(context.Background(), x, x)
	require.NoError(t, err)
	assert.Nil(t, cmp.DPSDifference)
}

func TestPropertyRecommendOrderedAndBounded(t *testing.T) {
	logger := zap.NewNop()
	a := analysis.NewAnalyzer(resolve.NewResolver(logger), logger, analysis.WithWorkers(3))
	base, err := build.New("base", vale(), 9, nil)
	require.NoError(t, err)

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(t, "n")
		candidates := make([]*build.EquipmentItem, n)
		for i := range candidates {
			candidates[i] = flatItem(
				rapid.StringMatching(`[a-z]{4,8}`).Draw(t, "name"),
				rapid.IntRange(0, 4000).Draw(t, "cost"),
				stat.AttackDamage,
				rapid.Float64Range(0, 80).Draw(t, "ad"),
			)
		}
		opt, err := a.Recommend(context.Background(), base, candidates)
		if err != nil {
			t.Fatal(err)
		}
		if len(opt.Recommendations) > analysis.DefaultTopN {
			t.Fatalf("got %d recommendations", len(opt.Recommendations))
		}
		for i := 1; i < len(opt.Recommendations); i++ {
			if opt.Recommendations[i].DPSPerGold > opt.Recommendations[i-1].DPSPerGold {
				t.Fatalf("not sorted: %+v", opt.Recommendations)
			}
		}
	})
}
