package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/risus/internal/game/ruleset"
)

// ErrMissingFunction is returned when a ruleset script omits is_success or consumes.
var ErrMissingFunction = errors.New("ruleset script must define is_success and consumes")

// LoadPolicy runs the Lua ruleset script at path and tabulates its face rules.
//
// The script sets the globals id, name and optionally description,
// pool_term and target_term, and defines is_success(face) and
// consumes(face); both are called once per face 1..6.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a validated Policy or a non-nil error.
func LoadPolicy(path string, instLimit int) (ruleset.Policy, error) {
	sb := NewSandbox(instLimit)
	defer sb.Close()
	L := sb.LState

	if err := L.DoFile(path); err != nil {
		return ruleset.Policy{}, fmt.Errorf("scripting: loading %q: %w", path, err)
	}

	isSuccess, consumes := L.GetGlobal("is_success"), L.GetGlobal("consumes")
	if isSuccess.Type() != lua.LTFunction || consumes.Type() != lua.LTFunction {
		return ruleset.Policy{}, fmt.Errorf("scripting: %q: %w", path, ErrMissingFunction)
	}

	p := ruleset.Policy{
		ID:          lua.LVAsString(L.GetGlobal("id")),
		Name:        lua.LVAsString(L.GetGlobal("name")),
		Description: lua.LVAsString(L.GetGlobal("description")),
		Terms: ruleset.Terms{
			Pool:   lua.LVAsString(L.GetGlobal("pool_term")),
			Target: lua.LVAsString(L.GetGlobal("target_term")),
		},
	}
	for face := 1; face <= ruleset.Sides; face++ {
		success, err := callFace(L, isSuccess, face)
		if err != nil {
			return ruleset.Policy{}, fmt.Errorf("scripting: %q is_success(%d): %w", path, face, err)
		}
		consume, err := callFace(L, consumes, face)
		if err != nil {
			return ruleset.Policy{}, fmt.Errorf("scripting: %q consumes(%d): %w", path, face, err)
		}
		p.Faces[face-1] = ruleset.FaceRule{Success: success, Consumes: consume}
	}
	if err := p.Validate(); err != nil {
		return ruleset.Policy{}, fmt.Errorf("scripting: %q: %w", path, err)
	}
	return p, nil
}

// LoadPolicies loads every *.lua file in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the policies (may be empty) or the first load error.
func LoadPolicies(dir string, instLimit int) ([]ruleset.Policy, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	policies := make([]ruleset.Policy, 0, len(luaFiles))
	for _, path := range luaFiles {
		p, err := LoadPolicy(path, instLimit)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, nil
}

func callFace(L *lua.LState, fn lua.LValue, face int) (bool, error) {
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(face)); err != nil {
		return false, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret), nil
}
