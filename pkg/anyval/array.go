// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package anyval

import (
	"fmt"
	"reflect"
	"slices"
	"unsafe"
)

// Array is the ArrayAny implementation holding a []T.
// It is not safe for concurrent mutation; owners serialize access.
type Array[T any] struct {
	vals []T
}

// NewArray returns an array box holding a copy of vals.
func NewArray[T any](vals ...T) *Array[T] {
	return &Array[T]{vals: slices.Clone(vals)}
}

// Get returns the held slice. The caller must not modify it.
func (a *Array[T]) Get() []T {
	return a.vals
}

// SetValue replaces the whole slice. It reports NothingToDo when every element
// compares equal; element types that cannot be compared always report Success.
func (a *Array[T]) SetValue(vals []T) Result {
	if len(vals) == len(a.vals) && slices.EqualFunc(a.vals, vals, equal[T]) {
		return NothingToDo
	}
	a.vals = slices.Clone(vals)
	return Success
}

// TypeID implements Any.
func (a *Array[T]) TypeID() TypeID {
	return TypeIDOf[[]T]()
}

// ItemTypeID implements ArrayAny.
func (a *Array[T]) ItemTypeID() TypeID {
	return TypeIDOf[T]()
}

// GetCompatibleTypes implements Any.
func (a *Array[T]) GetCompatibleTypes(CompatibilityDirection) []TypeID {
	return []TypeID{a.TypeID()}
}

// IsCompatible implements Any.
func (a *Array[T]) IsCompatible(id TypeID, _ CompatibilityDirection) bool {
	return id == a.TypeID()
}

// GetData implements Any.
func (a *Array[T]) GetData(id TypeID, dst unsafe.Pointer, size uintptr) Result {
	if dst == nil {
		return InvalidArgument
	}
	if id != a.TypeID() {
		return Fail
	}
	if size != unsafe.Sizeof(a.vals) {
		return InvalidArgument
	}
	*(*[]T)(dst) = slices.Clone(a.vals)
	return Success
}

// SetData implements Any.
func (a *Array[T]) SetData(id TypeID, src unsafe.Pointer, size uintptr) Result {
	if src == nil {
		return InvalidArgument
	}
	if id != a.TypeID() {
		return Fail
	}
	if size != unsafe.Sizeof(a.vals) {
		return InvalidArgument
	}
	return a.SetValue(*(*[]T)(src))
}

// CopyFrom implements Any.
func (a *Array[T]) CopyFrom(other Any) Result {
	if other == nil {
		return InvalidArgument
	}
	if typed, ok := other.(*Array[T]); ok {
		return a.SetValue(typed.vals)
	}
	var vals []T
	if r := other.GetData(a.TypeID(), unsafe.Pointer(&vals), unsafe.Sizeof(vals)); r != Success {
		return Fail
	}
	return a.SetValue(vals)
}

// Clone implements Any.
func (a *Array[T]) Clone(opts CloneOptions) Any {
	if opts.Role == ItemType {
		var v T
		if opts.Value == CopyValue && len(a.vals) > 0 {
			v = deepCopy(a.vals[0])
		}
		return New(v)
	}
	if opts.Value == DefaultValue {
		return NewArray[T]()
	}
	if pointerLike(reflect.TypeFor[T]()) {
		return NewArray(a.vals...)
	}
	return &Array[T]{vals: deepCopy(a.vals)}
}

// ResetValue implements Any.
func (a *Array[T]) ResetValue() Result {
	return a.RemoveAll()
}

// Interface implements Any.
func (a *Array[T]) Interface() any {
	return a.vals
}

func (a *Array[T]) String() string {
	return fmt.Sprint(a.vals)
}

// GetSize implements ArrayAny.
func (a *Array[T]) GetSize() int {
	return len(a.vals)
}

func (a *Array[T]) inRange(index int) bool {
	return index >= 0 && index < len(a.vals)
}

// GetDataAt implements ArrayAny.
func (a *Array[T]) GetDataAt(index int, id TypeID, dst unsafe.Pointer, size uintptr) Result {
	if !a.inRange(index) {
		return InvalidArgument
	}
	return getItem(a.vals[index], id, dst, size)
}

// SetDataAt implements ArrayAny.
func (a *Array[T]) SetDataAt(index int, id TypeID, src unsafe.Pointer, size uintptr) Result {
	if !a.inRange(index) {
		return InvalidArgument
	}
	v, r := readItem[T](id, src, size)
	if r != Success {
		return r
	}
	return a.setAt(index, v)
}

// GetAnyAt implements ArrayAny.
func (a *Array[T]) GetAnyAt(index int, dst Any) Result {
	if !a.inRange(index) || dst == nil {
		return InvalidArgument
	}
	return dst.CopyFrom(New(a.vals[index]))
}

// SetAnyAt implements ArrayAny.
func (a *Array[T]) SetAnyAt(index int, src Any) Result {
	if !a.inRange(index) {
		return InvalidArgument
	}
	v, r := itemFrom[T](src)
	if r != Success {
		return r
	}
	return a.setAt(index, v)
}

// InsertAnyAt implements ArrayAny.
func (a *Array[T]) InsertAnyAt(index int, src Any) Result {
	if index < 0 {
		return InvalidArgument
	}
	v, r := itemFrom[T](src)
	if r != Success {
		return r
	}
	index = min(index, len(a.vals))
	a.vals = slices.Insert(a.vals, index, v)
	return Success
}

// RemoveAt implements ArrayAny.
func (a *Array[T]) RemoveAt(index int) Result {
	if !a.inRange(index) {
		return InvalidArgument
	}
	a.vals = slices.Delete(a.vals, index, index+1)
	return Success
}

// RemoveAll implements ArrayAny.
func (a *Array[T]) RemoveAll() Result {
	if len(a.vals) == 0 {
		return NothingToDo
	}
	a.vals = nil
	return Success
}

func (a *Array[T]) setAt(index int, v T) Result {
	if equal(a.vals[index], v) {
		return NothingToDo
	}
	a.vals[index] = v
	return Success
}

var _ ArrayAny = (*Array[int])(nil)
var _ Any = (*Value[int])(nil)
