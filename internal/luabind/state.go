// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package luabind exposes reflected properties to sandboxed Lua scripts.
//
//nolint:gocritic // captLocal: L is the idiomatic name for lua.LState
package luabind

import (
	"context"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
)

// openers lists the libraries a sandbox loads: base, table, string and
// math. os, io, debug and package stay closed.
var openers = map[string]lua.LGFunction{
	lua.BaseLibName:   lua.OpenBase,
	lua.TabLibName:    lua.OpenTable,
	lua.StringLibName: lua.OpenString,
	lua.MathLibName:   lua.OpenMath,
}

// openOrder keeps base first; the other libraries register into its globals.
var openOrder = []string{lua.BaseLibName, lua.TabLibName, lua.StringLibName, lua.MathLibName}

// blockedGlobals are base functions that reach the filesystem or compile
// arbitrary chunks.
var blockedGlobals = []string{"dofile", "loadfile", "loadstring", "load", "require"}

// SandboxOption configures a StateFactory.
type SandboxOption func(*StateFactory)

// WithCallStackSize limits Lua call depth.
func WithCallStackSize(n int) SandboxOption {
	return func(f *StateFactory) { f.opts.CallStackSize = n }
}

// WithRegistryLimit caps the Lua registry (value stack) size.
func WithRegistryLimit(n int) SandboxOption {
	return func(f *StateFactory) {
		f.opts.RegistrySize = min(f.opts.RegistrySize, n)
		f.opts.RegistryMaxSize = n
	}
}

// StateFactory creates sandboxed Lua states.
type StateFactory struct {
	opts lua.Options
}

// NewStateFactory creates a factory with default limits.
func NewStateFactory(opts ...SandboxOption) *StateFactory {
	f := &StateFactory{opts: lua.Options{
		SkipOpenLibs:        true,
		CallStackSize:       256,
		RegistrySize:        1024 * 4,
		RegistryMaxSize:     1024 * 256,
		MinimizeStackMemory: true,
	}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewState returns a sandboxed state. Execution stops with an error once
// ctx is done.
func (f *StateFactory) NewState(ctx context.Context) (*lua.LState, error) {
	L := lua.NewState(f.opts)

	for _, name := range openOrder {
		err := L.CallByParam(lua.P{Fn: L.NewFunction(openers[name]), Protect: true}, lua.LString(name))
		if err != nil {
			L.Close()
			return nil, oops.In("lua").Code("LUA_STATE_FAILED").With("library", name).Wrap(err)
		}
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	if ctx != nil {
		L.SetContext(ctx)
	}
	return L, nil
}
