// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package anyval provides type-erased value boxes.
//
// A box holds exactly one value of a concrete type (Value) or a slice of them
// (Array). Reads and writes go through a type id plus raw memory, so callers
// that only know a TypeID and an address can move data in and out without
// knowing the Go type statically. Mismatches are reported through Result,
// never by panicking.
package anyval

import (
	"fmt"
	"reflect"
	"unsafe"
)

// TypeID identifies the concrete type held by a box.
type TypeID struct {
	rt reflect.Type
}

// TypeIDOf returns the TypeID of T.
func TypeIDOf[T any]() TypeID {
	return TypeID{rt: reflect.TypeFor[T]()}
}

// TypeIDFor returns the TypeID of t.
func TypeIDFor(t reflect.Type) TypeID {
	return TypeID{rt: t}
}

// Type returns the underlying reflect.Type (nil for the zero TypeID).
func (id TypeID) Type() reflect.Type {
	return id.rt
}

// IsValid reports whether id names a type.
func (id TypeID) IsValid() bool {
	return id.rt != nil
}

// Size returns the in-memory size of values of this type.
func (id TypeID) Size() uintptr {
	if id.rt == nil {
		return 0
	}
	return id.rt.Size()
}

func (id TypeID) String() string {
	if id.rt == nil {
		return "<invalid>"
	}
	return id.rt.String()
}

// Result is the outcome of a box operation.
type Result int

const (
	// Success means the operation changed or produced a value.
	Success Result = iota
	// NothingToDo means the new value equals the old one; nothing changed.
	NothingToDo
	// Fail means the types are incompatible.
	Fail
	// InvalidArgument means a bad index, size or nil address.
	InvalidArgument
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case NothingToDo:
		return "nothing_to_do"
	case Fail:
		return "fail"
	case InvalidArgument:
		return "invalid_argument"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// OK reports whether r is Success or NothingToDo.
func (r Result) OK() bool {
	return r == Success || r == NothingToDo
}

// CompatibilityDirection selects which side of the compatibility protocol is
// queried: types a box can produce (CompatGet) or accept (CompatSet).
type CompatibilityDirection int

const (
	// CompatGet lists types the box can be read as.
	CompatGet CompatibilityDirection = 1 << iota
	// CompatSet lists types the box can be written from.
	CompatSet
	// CompatBoth requires compatibility in both directions.
	CompatBoth = CompatGet | CompatSet
)

// CloneValue selects what a clone carries.
type CloneValue int

const (
	// CopyValue copies the current value.
	CopyValue CloneValue = iota
	// DefaultValue leaves the clone at the type's zero value.
	DefaultValue
)

// CloneRole selects the type of the clone relative to the source.
type CloneRole int

const (
	// SameType clones into the same kind of box.
	SameType CloneRole = iota
	// ArrayType clones a scalar box into its array sibling.
	ArrayType
	// ItemType clones an array box into its item sibling.
	ItemType
)

// CloneOptions controls Clone.
type CloneOptions struct {
	Value CloneValue
	Role  CloneRole
}

// Any is a type-erased value.
type Any interface {
	// TypeID returns the id of the held type.
	TypeID() TypeID
	// GetCompatibleTypes lists the ids accepted in the given direction.
	GetCompatibleTypes(dir CompatibilityDirection) []TypeID
	// IsCompatible reports whether id is accepted in every direction in dir.
	IsCompatible(id TypeID, dir CompatibilityDirection) bool
	// GetData copies the value into dst, which must hold a value of type id.
	GetData(id TypeID, dst unsafe.Pointer, size uintptr) Result
	// SetData replaces the value from src, which must hold a value of type id.
	SetData(id TypeID, src unsafe.Pointer, size uintptr) Result
	// CopyFrom replaces the value with other's value.
	CopyFrom(other Any) Result
	// Clone creates an independently owned box.
	Clone(opts CloneOptions) Any
	// ResetValue restores the zero value.
	ResetValue() Result
	// Interface returns the held value boxed in an interface.
	Interface() any
	String() string
}

// ArrayAny is an Any holding a slice, with positional access.
type ArrayAny interface {
	Any
	// ItemTypeID returns the id of the element type.
	ItemTypeID() TypeID
	GetSize() int
	GetDataAt(index int, id TypeID, dst unsafe.Pointer, size uintptr) Result
	SetDataAt(index int, id TypeID, src unsafe.Pointer, size uintptr) Result
	GetAnyAt(index int, dst Any) Result
	SetAnyAt(index int, src Any) Result
	// InsertAnyAt inserts before index; an index past the end appends.
	InsertAnyAt(index int, src Any) Result
	RemoveAt(index int) Result
	RemoveAll() Result
}

// Get reads a T out of a.
func Get[T any](a Any) (T, Result) {
	var out T
	if a == nil {
		return out, InvalidArgument
	}
	r := a.GetData(TypeIDOf[T](), unsafe.Pointer(&out), unsafe.Sizeof(out))
	return out, r
}

// Set writes v into a.
func Set[T any](a Any, v T) Result {
	if a == nil {
		return InvalidArgument
	}
	return a.SetData(TypeIDOf[T](), unsafe.Pointer(&v), unsafe.Sizeof(v))
}
