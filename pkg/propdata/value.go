// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package propdata

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/holomush/metaprop/pkg/anyval"
	"github.com/holomush/metaprop/pkg/meta"
)

// Value is a view of one member inside a locked buffer. It is valid only
// while the PropertyData that produced it stays locked.
type Value struct {
	Property *meta.Property
	Ptr      unsafe.Pointer
	Writable bool
}

// OK reports whether v addresses a member.
func (v Value) OK() bool {
	return v.Property != nil && v.Ptr != nil
}

// Len returns the element count of a container member, or 0.
func (v Value) Len() int {
	if !v.OK() || v.Property.ContainerMethods == nil {
		return 0
	}
	if v.Property.Type.IsArray {
		return v.Property.Count
	}
	if v.Property.ContainerMethods.Size == nil {
		return 0
	}
	return v.Property.ContainerMethods.Size(v.Ptr)
}

// Index returns a view of element i of a container member.
func (v Value) Index(i int) Value {
	if i < 0 || i >= v.Len() {
		return Value{}
	}
	cm := v.Property.ContainerMethods
	elem := Value{Property: &cm.Property, Writable: v.Writable}
	if v.Property.Type.IsArray {
		elem.Ptr = unsafe.Add(v.Ptr, uintptr(i)*cm.Property.Size)
	} else {
		elem.Ptr = cm.Get(v.Ptr, i)
	}
	return elem
}

// Resize sets the length of a slice member to n, keeping existing elements
// and zeroing new ones. It fails for anything but a writable slice.
func (v Value) Resize(n int) bool {
	if !v.Writable || n < 0 || !v.OK() || !v.Property.IsDynamic() {
		return false
	}
	rv, ok := v.reflectValue()
	if !ok || rv.Kind() != reflect.Slice {
		return false
	}
	if n == rv.Len() {
		return true
	}
	grown := reflect.MakeSlice(rv.Type(), n, n)
	reflect.Copy(grown, rv)
	rv.Set(grown)
	return true
}

// Field returns a view of the struct member called name.
func (v Value) Field(name string) Value {
	if !v.OK() {
		return Value{}
	}
	members := v.Property.MetaData.MemberProperties
	i := meta.Lookup(members, name)
	if i < 0 {
		return Value{}
	}
	p := &members[i]
	return Value{Property: p, Ptr: unsafe.Add(v.Ptr, p.Offset), Writable: v.Writable}
}

func (v Value) reflectValue() (reflect.Value, bool) {
	if !v.OK() {
		return reflect.Value{}, false
	}
	rt := v.Property.Type.ID.Type()
	if rt == nil {
		return reflect.Value{}, false
	}
	return reflect.NewAt(rt, v.Ptr).Elem(), true
}

// Interface returns a copy of the member as an interface value, or nil.
func (v Value) Interface() any {
	rv, ok := v.reflectValue()
	if !ok {
		return nil
	}
	return rv.Interface()
}

// String formats the member for display.
func (v Value) String() string {
	if !v.OK() {
		return "<invalid>"
	}
	return fmt.Sprint(v.Interface())
}

// SetInterface stores x into the member. Numeric values convert between
// numeric kinds; anything else must be assignable.
func (v Value) SetInterface(x any) anyval.Result {
	if !v.Writable {
		return anyval.Fail
	}
	rv, ok := v.reflectValue()
	if !ok || x == nil {
		return anyval.InvalidArgument
	}
	src := reflect.ValueOf(x)
	switch {
	case src.Type().AssignableTo(rv.Type()):
	case numeric(src.Kind()) && numeric(rv.Kind()):
		src = src.Convert(rv.Type())
	default:
		return anyval.Fail
	}
	// interface members may hold slices or maps, so compare values, not types
	if rv.Comparable() && src.Comparable() && rv.Equal(src) {
		return anyval.NothingToDo
	}
	rv.Set(src)
	return anyval.Success
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Load reads the member as T. It fails when T is not the member's type.
func Load[T any](v Value) (T, bool) {
	var zero T
	if !v.OK() || v.Property.Type.ID != anyval.TypeIDOf[T]() {
		return zero, false
	}
	return *(*T)(v.Ptr), true
}

// Store writes x into the member. It fails when T is not the member's type
// or v was not obtained under a write lock.
func Store[T any](v Value, x T) bool {
	if !v.OK() || !v.Writable || v.Property.Type.ID != anyval.TypeIDOf[T]() {
		return false
	}
	*(*T)(v.Ptr) = x
	return true
}
