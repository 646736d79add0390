// Package resolve turns a build configuration into its final stat sheet by
// composing level scaling, modifier aggregation, caps, and combat metrics.
package resolve

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/combat"
	"github.com/cory-johannsen/buildcalc/internal/game/formula"
	"github.com/cory-johannsen/buildcalc/internal/game/stat"
)

// Precision is the number of decimal places resolved stats are rounded to.
const Precision = 2

// Resolver computes ResolvedStats for build configurations. It holds no
// per-call state and is safe for concurrent use.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: logger must be non-nil.
func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve computes the final stats of cfg.
//
// Stages: scale to level, item modifiers, preset modifiers, caps, rounding.
// When cfg has a target, DPS and TTK are filled against it. Effective HP
// against physical and magical damage is always filled from the build's own
// armor and magic resistance.
//
// Precondition: cfg must be non-nil.
// Postcondition: identical inputs yield identical output; returns a
// *build.LevelError or *build.ValidationError when cfg is invalid.
func (r *Resolver) Resolve(cfg *build.Config) (build.ResolvedStats, error) {
	if cfg == nil {
		return build.ResolvedStats{}, errors.New("resolve: build config must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return build.ResolvedStats{}, fmt.Errorf("resolve: %w", err)
	}

	base, err := formula.ScaleToLevel(cfg.Character, cfg.Level)
	if err != nil {
		return build.ResolvedStats{}, fmt.Errorf("resolve: %w", err)
	}
	withItems := formula.ApplyItems(base, cfg.Items)
	withPreset := formula.ApplyPreset(withItems, cfg.Preset)
	final := formula.EnforceCaps(withPreset).Round(Precision)

	out := fromBlock(cfg.Level, final)
	if cfg.Target != nil {
		dps := combat.DPS(out, cfg.Target)
		out.DPS = build.Float(dps)
		out.TTK = build.Float(combat.KillTime(cfg.Target.HP, dps))
	}
	out.EHPPhysical = build.Float(stat.RoundTo(combat.EffectiveHP(out.HP, out.Armor), Precision))
	out.EHPMagical = build.Float(stat.RoundTo(combat.EffectiveHP(out.HP, out.MR), Precision))

	r.logger.Debug("resolved build",
		zap.String("build", cfg.Name),
		zap.String("character", cfg.Character.Name),
		zap.Int("level", cfg.Level),
		zap.Int("items", len(cfg.Items)),
		zap.Bool("preset", cfg.Preset != nil),
		zap.Float64("ad", out.AD),
		zap.Float64("as", out.AS),
		zap.Float64("hp", out.HP),
	)
	return out, nil
}

// ResolveInto returns a copy of cfg with Resolved populated.
//
// Postcondition: cfg is not modified.
func (r *Resolver) ResolveInto(cfg *build.Config) (*build.Config, error) {
	s, err := r.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	cp := *cfg
	cp.Resolved = &s
	return &cp, nil
}

// fromBlock copies a final stat block into a ResolvedStats. Absent crit
// damage reads as the default multiplier and absent health as the floor.
func fromBlock(level int, b stat.Block) build.ResolvedStats {
	critDamage, ok := b[stat.CritDamage]
	if !ok {
		critDamage = build.DefaultCritDamage
	}
	hp, ok := b[stat.Health]
	if !ok {
		hp = formula.StatFloor
	}
	return build.ResolvedStats{
		Level:      level,
		AD:         b.Get(stat.AttackDamage),
		AP:         b.Get(stat.AbilityPower),
		AS:         b.Get(stat.AttackSpeed),
		CritChance: b.Get(stat.CritChance),
		CritDamage: critDamage,
		HP:         hp,
		Mana:       b.Get(stat.Mana),
		Armor:      b.Get(stat.Armor),
		MR:         b.Get(stat.MagicResist),
		MS:         b.Get(stat.MoveSpeed),
	}
}
