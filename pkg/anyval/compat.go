// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package anyval

import (
	"reflect"
	"sort"
	"sync"

	"github.com/jinzhu/copier"

	"github.com/holomush/metaprop/pkg/iface"
)

var known = struct {
	mu    sync.RWMutex
	types map[reflect.Type]struct{}
}{types: make(map[reflect.Type]struct{})}

// Register makes T visible to the pointer compatibility protocol, in
// addition to every interface registered with iface.RegisterUID.
func Register[T any]() {
	known.mu.Lock()
	defer known.mu.Unlock()
	known.types[reflect.TypeFor[T]()] = struct{}{}
}

func knownTypes() []reflect.Type {
	known.mu.RLock()
	out := make([]reflect.Type, 0, len(known.types))
	for t := range known.types {
		out = append(out, t)
	}
	known.mu.RUnlock()

	seen := make(map[reflect.Type]struct{}, len(out))
	for _, t := range out {
		seen[t] = struct{}{}
	}
	for _, t := range iface.RegisteredTypes() {
		if _, dup := seen[t]; !dup {
			out = append(out, t)
		}
	}
	return out
}

// pointerLike types take part in interface compatibility.
func pointerLike(rt reflect.Type) bool {
	k := rt.Kind()
	return k == reflect.Pointer || k == reflect.Interface
}

func compatibleTypes(rt reflect.Type, dir CompatibilityDirection) []TypeID {
	out := []TypeID{{rt: rt}}
	if !pointerLike(rt) {
		return out
	}
	var extra []TypeID
	for _, t := range knownTypes() {
		if t == rt || !pointerLike(t) {
			continue
		}
		if acceptsType(rt, t, dir) {
			extra = append(extra, TypeID{rt: t})
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].String() < extra[j].String() })
	return append(out, extra...)
}

// acceptsType reports whether a box of type held statically exchanges values
// of type other in every direction of dir. Run-time interface casts are not
// advertised here; GetData and SetData still attempt them.
func acceptsType(held, other reflect.Type, dir CompatibilityDirection) bool {
	if held == other {
		return true
	}
	if !pointerLike(held) || !pointerLike(other) {
		return false
	}
	// readable as any interface the held type satisfies
	if dir&CompatGet != 0 && (other.Kind() != reflect.Interface || !held.Implements(other)) {
		return false
	}
	// writable from anything assignable to the held type
	if dir&CompatSet != 0 && !other.AssignableTo(held) {
		return false
	}
	return true
}

// viaInterfaceCast reports whether target can be reached by a GetInterface
// query at run time.
func viaInterfaceCast(target reflect.Type) bool {
	if target.Kind() != reflect.Interface {
		return false
	}
	_, ok := iface.UIDOfType(target)
	return ok
}

// convertTo converts v to target, by plain assignment when the static types
// allow it, otherwise through an interface cast. A nil v converts to the
// zero value of target.
func convertTo(v any, target reflect.Type) (reflect.Value, bool) {
	if v == nil {
		return reflect.Zero(target), true
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(target) {
		return rv, true
	}
	if !viaInterfaceCast(target) {
		return reflect.Value{}, false
	}
	obj, ok := v.(iface.Interface)
	if !ok {
		return reflect.Value{}, false
	}
	uid, _ := iface.UIDOfType(target)
	got := obj.GetInterface(uid)
	if got == nil {
		return reflect.Value{}, false
	}
	gv := reflect.ValueOf(got)
	if !gv.Type().AssignableTo(target) {
		return reflect.Value{}, false
	}
	return gv, true
}

func equal[T any](a, b T) bool {
	va := reflect.ValueOf(&a).Elem()
	vb := reflect.ValueOf(&b).Elem()
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return va.Equal(vb)
}

func deepCopy[T any](v T) T {
	rt := reflect.TypeFor[T]()
	if pointerLike(rt) {
		return v
	}
	switch rt.Kind() {
	case reflect.Struct, reflect.Slice, reflect.Map, reflect.Array:
		var out T
		if err := copier.CopyWithOption(&out, &v, copier.Option{DeepCopy: true}); err != nil {
			return v
		}
		return out
	default:
		return v
	}
}
