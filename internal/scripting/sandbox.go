// Package scripting evaluates Lua ruleset scripts. A script only tabulates the
// six face rules; it runs once while rulesets load and never during
// enumeration.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit caps the opcodes a ruleset script may run when
// ruleset.script_instruction_limit is 0.
const DefaultInstructionLimit = 100_000

// safeLibs are the only libraries a ruleset script can see.
var safeLibs = []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath}

// blockedGlobals are base functions that load code or touch the collector.
var blockedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"}

// opcodeBudget cancels itself once Done has been polled limit times. The VM
// polls Done before each instruction, so limit bounds executed opcodes.
type opcodeBudget struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func (b *opcodeBudget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// Sandbox is a Lua state restricted to safeLibs and an opcode budget shared by
// everything it runs.
type Sandbox struct {
	*lua.LState
	budget *opcodeBudget
}

// NewSandbox returns a Sandbox allowed limit opcodes; limit <= 0 uses
// DefaultInstructionLimit. The caller must Close it.
func NewSandbox(limit int) *Sandbox {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range safeLibs {
		open(L)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &opcodeBudget{Context: ctx, cancel: cancel}
	b.left.Store(int64(limit))
	L.SetContext(b)

	return &Sandbox{LState: L, budget: b}
}

// Close releases the budget and the Lua state.
func (s *Sandbox) Close() {
	s.budget.cancel()
	s.LState.Close()
}
