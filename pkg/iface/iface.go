// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package iface provides capability queries over objects that introduce
// several interfaces.
//
// Each concrete type owns a Table built once from its introduced entries.
// The table maps an interface UID to a thunk that converts the concrete
// value to that interface. Nested groups are flattened and duplicate UIDs
// are dropped (first occurrence wins), so diamond-shaped interface sets
// never produce ambiguous entries.
package iface

import (
	"reflect"
	"sync"

	"github.com/oklog/ulid/v2"
)

// UID identifies an interface.
type UID = ulid.ULID

// Interface is the root capability interface. GetInterface returns nil when
// the object does not support uid; that is a normal outcome, not an error.
type Interface interface {
	GetInterface(uid UID) Interface
}

// InterfaceUID is the UID of Interface itself. Every object matches it.
var InterfaceUID = ulid.MustParse("00000000000000000000000001")

// MustUID parses a UID literal, panicking on malformed input.
// It is intended for package-level UID declarations.
func MustUID(s string) UID {
	return ulid.MustParse(s)
}

var uidRegistry = struct {
	mu     sync.RWMutex
	byType map[reflect.Type]UID
	byUID  map[UID]reflect.Type
}{
	byType: map[reflect.Type]UID{reflect.TypeFor[Interface](): InterfaceUID},
	byUID:  map[UID]reflect.Type{InterfaceUID: reflect.TypeFor[Interface]()},
}

// RegisterUID associates the interface type T with uid. Registering the same
// pair twice is a no-op; registering a conflicting pair panics.
func RegisterUID[T Interface](uid UID) {
	t := reflect.TypeFor[T]()

	uidRegistry.mu.Lock()
	defer uidRegistry.mu.Unlock()

	if prev, ok := uidRegistry.byType[t]; ok {
		if prev != uid {
			panic("iface: conflicting UID registration for " + t.String())
		}
		return
	}
	if prev, ok := uidRegistry.byUID[uid]; ok && prev != t {
		panic("iface: UID " + uid.String() + " already registered for " + prev.String())
	}
	uidRegistry.byType[t] = uid
	uidRegistry.byUID[uid] = t
}

// UIDOf returns the UID registered for T.
func UIDOf[T any]() (UID, bool) {
	return UIDOfType(reflect.TypeFor[T]())
}

// UIDOfType returns the UID registered for t.
func UIDOfType(t reflect.Type) (UID, bool) {
	uidRegistry.mu.RLock()
	defer uidRegistry.mu.RUnlock()
	uid, ok := uidRegistry.byType[t]
	return uid, ok
}

// TypeOfUID returns the interface type registered for uid.
func TypeOfUID(uid UID) (reflect.Type, bool) {
	uidRegistry.mu.RLock()
	defer uidRegistry.mu.RUnlock()
	t, ok := uidRegistry.byUID[uid]
	return t, ok
}

// RegisteredTypes returns every registered interface type, in no particular order.
func RegisteredTypes() []reflect.Type {
	uidRegistry.mu.RLock()
	defer uidRegistry.mu.RUnlock()
	out := make([]reflect.Type, 0, len(uidRegistry.byType))
	for t := range uidRegistry.byType {
		out = append(out, t)
	}
	return out
}

// Cast queries obj for the interface T using T's registered UID. When T has
// no registered UID a plain type assertion is used instead.
func Cast[T any](obj Interface) (T, bool) {
	var zero T
	if obj == nil {
		return zero, false
	}
	uid, ok := UIDOf[T]()
	if !ok {
		out, ok := obj.(T)
		return out, ok
	}
	got := obj.GetInterface(uid)
	if got == nil {
		return zero, false
	}
	out, ok := got.(T)
	return out, ok
}
