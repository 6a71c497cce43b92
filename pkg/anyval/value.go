// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package anyval

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Value is the Any implementation for a single T.
// It is not safe for concurrent mutation; owners serialize access.
type Value[T any] struct {
	v T
}

// New returns a box holding v.
func New[T any](v T) *Value[T] {
	return &Value[T]{v: v}
}

// Get returns the held value.
func (a *Value[T]) Get() T {
	return a.v
}

// SetValue replaces the held value. It reports NothingToDo when v equals the
// current value; types that cannot be compared always report Success.
func (a *Value[T]) SetValue(v T) Result {
	if equal(a.v, v) {
		return NothingToDo
	}
	a.v = v
	return Success
}

// GetValue copies the held value into out.
func (a *Value[T]) GetValue(out *T) Result {
	if out == nil {
		return InvalidArgument
	}
	*out = a.v
	return Success
}

// TypeID implements Any.
func (a *Value[T]) TypeID() TypeID {
	return TypeIDOf[T]()
}

// GetCompatibleTypes implements Any.
func (a *Value[T]) GetCompatibleTypes(dir CompatibilityDirection) []TypeID {
	return compatibleTypes(reflect.TypeFor[T](), dir)
}

// IsCompatible implements Any.
func (a *Value[T]) IsCompatible(id TypeID, dir CompatibilityDirection) bool {
	if !id.IsValid() {
		return false
	}
	return acceptsType(reflect.TypeFor[T](), id.rt, dir)
}

// GetData implements Any.
func (a *Value[T]) GetData(id TypeID, dst unsafe.Pointer, size uintptr) Result {
	return getItem(a.v, id, dst, size)
}

// SetData implements Any.
func (a *Value[T]) SetData(id TypeID, src unsafe.Pointer, size uintptr) Result {
	v, r := readItem[T](id, src, size)
	if r != Success {
		return r
	}
	return a.SetValue(v)
}

// CopyFrom implements Any.
func (a *Value[T]) CopyFrom(other Any) Result {
	v, r := itemFrom[T](other)
	if r != Success {
		return r
	}
	return a.SetValue(v)
}

// Clone implements Any.
func (a *Value[T]) Clone(opts CloneOptions) Any {
	var v T
	if opts.Value == CopyValue {
		v = deepCopy(a.v)
	}
	if opts.Role == ArrayType {
		if opts.Value == CopyValue {
			return NewArray(v)
		}
		return NewArray[T]()
	}
	return New(v)
}

// ResetValue implements Any.
func (a *Value[T]) ResetValue() Result {
	var zero T
	return a.SetValue(zero)
}

// Interface implements Any.
func (a *Value[T]) Interface() any {
	return a.v
}

func (a *Value[T]) String() string {
	return fmt.Sprint(a.v)
}

// getItem writes v into dst as type id, converting pointer-like values to a
// compatible interface when id differs from T.
func getItem[T any](v T, id TypeID, dst unsafe.Pointer, size uintptr) Result {
	if dst == nil || !id.IsValid() {
		return InvalidArgument
	}
	rt := reflect.TypeFor[T]()
	if id.rt == rt {
		if size != rt.Size() {
			return InvalidArgument
		}
		*(*T)(dst) = v
		return Success
	}
	if !pointerLike(rt) || !pointerLike(id.rt) {
		return Fail
	}
	if size != id.rt.Size() {
		return InvalidArgument
	}
	cv, ok := convertTo(any(v), id.rt)
	if !ok {
		return Fail
	}
	reflect.NewAt(id.rt, dst).Elem().Set(cv)
	return Success
}

// readItem reads a T out of src holding a value of type id.
func readItem[T any](id TypeID, src unsafe.Pointer, size uintptr) (T, Result) {
	var out T
	if src == nil || !id.IsValid() {
		return out, InvalidArgument
	}
	rt := reflect.TypeFor[T]()
	if id.rt == rt {
		if size != rt.Size() {
			return out, InvalidArgument
		}
		return *(*T)(src), Success
	}
	if !pointerLike(rt) || !pointerLike(id.rt) {
		return out, Fail
	}
	if size != id.rt.Size() {
		return out, InvalidArgument
	}
	in := reflect.NewAt(id.rt, src).Elem().Interface()
	cv, ok := convertTo(in, rt)
	if !ok {
		return out, Fail
	}
	reflect.ValueOf(&out).Elem().Set(cv)
	return out, Success
}

// itemFrom extracts a T from another box.
func itemFrom[T any](other Any) (T, Result) {
	var out T
	if other == nil {
		return out, InvalidArgument
	}
	if typed, ok := other.(*Value[T]); ok {
		return typed.v, Success
	}
	if r := other.GetData(TypeIDOf[T](), unsafe.Pointer(&out), unsafe.Sizeof(out)); r == Success {
		return out, Success
	}
	if !pointerLike(reflect.TypeFor[T]()) {
		return out, Fail
	}
	cv, ok := convertTo(other.Interface(), reflect.TypeFor[T]())
	if !ok {
		return out, Fail
	}
	reflect.ValueOf(&out).Elem().Set(cv)
	return out, Success
}
