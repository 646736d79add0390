package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/buildcalc/internal/game/analysis"
)

// registerModules installs the engine table into the scorer's state.
func (s *Scorer) registerModules() {
	L := s.L
	engine := L.NewTable()

	engine.RawSetString("gold_value", L.NewFunction(func(L *lua.LState) int {
		v, ok := analysis.GoldValues[L.CheckString(1)]
		if !ok {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(v))
		return 1
	}))

	logTbl := L.NewTable()
	logFn := func(emit func(string, ...zap.Field)) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			emit(L.CheckString(1), zap.String("source", "lua"))
			return 0
		})
	}
	logTbl.RawSetString("debug", logFn(s.logger.Debug))
	logTbl.RawSetString("info", logFn(s.logger.Info))
	logTbl.RawSetString("warn", logFn(s.logger.Warn))
	engine.RawSetString("log", logTbl)

	L.SetGlobal("engine", engine)
}
