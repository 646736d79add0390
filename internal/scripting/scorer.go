package scripting

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/buildcalc/internal/game/analysis"
)

// ScoreHook is the Lua global a scorer script must define.
const ScoreHook = "score"

// Scorer ranks recommendations with a Lua score(rec) function. It implements
// analysis.Ranker; calls are serialized because an LState is single-threaded.
type Scorer struct {
	mu       sync.Mutex
	L        *lua.LState
	limit    int
	logger   *zap.Logger
	fallback analysis.Ranker
}

// LoadScorer compiles the script at path in a sandboxed state.
//
// The script sees an engine table with engine.gold_value(stat) and
// engine.log.{debug,info,warn}(msg). Script errors during Score are logged
// at Warn and the default DPS-per-gold score is used instead.
//
// Precondition: logger must be non-nil.
// Postcondition: returns a Scorer, or an error if the script fails to load or
// does not define score.
func LoadScorer(path string, limit int, logger *zap.Logger) (*Scorer, error) {
	L := NewSandboxedState()
	s := &Scorer{L: L, limit: limit, logger: logger, fallback: analysis.DPSPerGold{}}
	s.registerModules()

	if err := limited(L, limit, func() error { return L.DoFile(path) }); err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading scorer %q: %w", path, err)
	}
	if fn, ok := L.GetGlobal(ScoreHook).(*lua.LFunction); !ok || fn == nil {
		L.Close()
		return nil, fmt.Errorf("scripting: scorer %q does not define function %q", path, ScoreHook)
	}
	return s, nil
}

// Score calls the script's score function with r as a table.
//
// Postcondition: returns the script's numeric result, or the DPS-per-gold
// score when the script errors or returns a non-number.
func (s *Scorer) Score(r analysis.Recommendation) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	L := s.L
	rec := L.NewTable()
	rec.RawSetString("item", lua.LString(r.Item))
	rec.RawSetString("cost", lua.LNumber(r.Cost))
	rec.RawSetString("dps_delta", lua.LNumber(r.DPSDelta))
	rec.RawSetString("dps_delta_percent", lua.LNumber(r.DPSDeltaPercent))
	rec.RawSetString("gold_efficiency", lua.LNumber(r.GoldEfficiency))
	rec.RawSetString("dps_per_gold", lua.LNumber(r.DPSPerGold))

	var ret lua.LValue = lua.LNil
	err := limited(L, s.limit, func() error {
		if err := L.CallByParam(lua.P{
			Fn:      L.GetGlobal(ScoreHook),
			NRet:    1,
			Protect: true,
		}, rec); err != nil {
			return err
		}
		ret = L.Get(-1)
		L.Pop(1)
		return nil
	})
	if err != nil {
		s.logger.Warn("scripting: score hook failed",
			zap.String("item", r.Item),
			zap.Error(err),
		)
		return s.fallback.Score(r)
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		s.logger.Warn("scripting: score hook returned a non-number",
			zap.String("item", r.Item),
			zap.String("type", ret.Type().String()),
		)
		return s.fallback.Score(r)
	}
	return float64(n)
}

// Close releases the Lua state.
func (s *Scorer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.L.Close()
}
