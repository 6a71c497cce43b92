// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package luabind

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/metaprop/pkg/meta"
	"github.com/holomush/metaprop/pkg/propdata"
)

// ModuleName is the global the bindings are installed under.
const ModuleName = "prop"

// Bindings connects Lua scripts to the data behind one handle. Every call
// takes and releases its own lock.
type Bindings struct {
	handle propdata.PropertyHandle
	logger *slog.Logger
}

// New returns bindings for h.
func New(h propdata.PropertyHandle, logger *slog.Logger) *Bindings {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bindings{handle: h, logger: logger}
}

// Register installs the prop table into L.
//
//	prop.get(path)        -> value | nil, err
//	prop.set(path, value) -> true | nil, err
//	prop.paths([pattern]) -> {path...} | nil, err
//	prop.log(level, msg)
func (b *Bindings) Register(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(b.get))
	L.SetField(mod, "set", L.NewFunction(b.set))
	L.SetField(mod, "paths", L.NewFunction(b.paths))
	L.SetField(mod, "log", L.NewFunction(b.log))
	L.SetGlobal(ModuleName, mod)
}

// Run executes src in a fresh sandboxed state bound to h.
func Run(ctx context.Context, h propdata.PropertyHandle, name, src string, logger *slog.Logger) error {
	L, err := NewStateFactory().NewState(ctx)
	if err != nil {
		return err
	}
	defer L.Close()

	New(h, logger).Register(L)

	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		return oops.In("lua").Code("LUA_SYNTAX").With("chunk", name).Wrap(err)
	}
	L.Push(fn)
	if err := L.PCall(0, 0, nil); err != nil {
		if ctx != nil && ctx.Err() != nil {
			return oops.In("lua").Code("LUA_CANCELED").With("chunk", name).Wrap(ctx.Err())
		}
		return oops.In("lua").Code("LUA_RUNTIME").With("chunk", name).Wrap(err)
	}
	return nil
}

func pushError(L *lua.LState, format string, args ...any) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(fmt.Sprintf(format, args...)))
	return 2
}

func (b *Bindings) get(L *lua.LState) int {
	path := L.CheckString(1)

	var pd propdata.PropertyData
	res := pd.RLockPath(b.handle, path)
	if !res.OK() {
		return pushError(L, "no property %s", path)
	}
	v := pd.At(res).Interface()
	pd.Close()

	L.Push(toLua(L, reflect.ValueOf(v)))
	return 1
}

func (b *Bindings) set(L *lua.LState) int {
	path := L.CheckString(1)
	x, ok := fromLua(L.CheckAny(2))
	if !ok {
		L.ArgError(2, "number, string or boolean expected")
		return 0
	}

	var pd propdata.PropertyData
	res := pd.WLockPath(b.handle, path)
	if !res.OK() {
		return pushError(L, "no property %s", path)
	}
	defer pd.Close()

	if res.Property.Flags&meta.FlagReadOnly != 0 {
		return pushError(L, "property %s is read-only", path)
	}
	if r := pd.At(res).SetInterface(x); !r.OK() {
		b.logger.Debug("lua set rejected", "path", path, "result", r.String())
		return pushError(L, "cannot store %v in %s", x, path)
	}
	L.Push(lua.LTrue)
	return 1
}

func (b *Bindings) paths(L *lua.LState) int {
	pattern := L.OptString(1, "")

	var pd propdata.PropertyData
	if !pd.RLock(b.handle) {
		return pushError(L, "cannot lock properties")
	}
	props := b.handle.Owner().MetaData()

	var paths []string
	if pattern == "" {
		paths = meta.Paths(props, pd.Data())
	} else {
		matches, err := meta.Match(props, pattern, pd.Data())
		if err != nil {
			pd.Close()
			return pushError(L, "bad pattern %q: %v", pattern, err)
		}
		for _, m := range matches {
			paths = append(paths, m.PropertyPath)
		}
	}
	pd.Close()

	t := L.CreateTable(len(paths), 0)
	for _, p := range paths {
		t.Append(lua.LString(p))
	}
	L.Push(t)
	return 1
}

func (b *Bindings) log(L *lua.LState) int {
	level := L.CheckString(1)
	msg := L.CheckString(2)

	logger := b.logger.With("source", "lua")
	switch level {
	case "debug":
		logger.Debug(msg)
	case "info":
		logger.Info(msg)
	case "warn":
		logger.Warn(msg)
	case "error":
		logger.Error(msg)
	default:
		L.ArgError(1, "unknown level "+level)
	}
	return 0
}

func fromLua(v lua.LValue) (any, bool) {
	switch x := v.(type) {
	case lua.LNumber:
		return float64(x), true
	case lua.LString:
		return string(x), true
	case lua.LBool:
		return bool(x), true
	}
	return nil, false
}

// toLua converts a Go value read from a property. Containers become
// sequences and structs become tables keyed by member name.
func toLua(L *lua.LState, rv reflect.Value) lua.LValue {
	if !rv.IsValid() {
		return lua.LNil
	}
	switch rv.Kind() {
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Array, reflect.Slice:
		t := L.CreateTable(rv.Len(), 0)
		for i := 0; i < rv.Len(); i++ {
			t.Append(toLua(L, rv.Index(i)))
		}
		return t
	case reflect.Struct:
		t := L.NewTable()
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			name, _, skip := meta.ParseTag(f)
			if skip {
				continue
			}
			L.SetField(t, name, toLua(L, rv.Field(i)))
		}
		return t
	}
	return lua.LString(fmt.Sprint(rv.Interface()))
}
