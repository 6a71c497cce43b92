// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package meta describes the memory layout of reflected structs and resolves
// property paths against it.
//
// A struct is described by a []Property, one entry per reflected member.
// Nested structs carry their members in MetaData.MemberProperties; fixed
// arrays and slices carry an element descriptor in ContainerMethods, and
// slices additionally carry Size and Get functions because their elements
// live outside the struct.
package meta

import (
	"reflect"
	"unsafe"

	"github.com/cespare/xxhash/v2"

	"github.com/holomush/metaprop/pkg/anyval"
)

// Flags carry optional per-property hints.
type Flags uint32

const (
	// FlagReadOnly marks a property that editors and scripts must not write.
	FlagReadOnly Flags = 1 << iota
	// FlagHidden marks a property excluded from listings.
	FlagHidden
)

// TypeInfo describes a member's type.
type TypeInfo struct {
	ID      anyval.TypeID
	Kind    reflect.Kind
	IsArray bool
}

// MetaData holds the reflected members of a struct-typed property.
type MetaData struct {
	MemberProperties []Property
}

// ContainerMethods describe the elements of an array or slice member.
// Size and Get are nil for fixed arrays, whose elements are laid out
// contiguously inside the struct.
type ContainerMethods struct {
	// Property describes one element.
	Property Property
	// Size returns the element count of the container at addr.
	Size func(addr unsafe.Pointer) int
	// Get returns the address of element index of the container at addr.
	Get func(addr unsafe.Pointer, index int) unsafe.Pointer
}

// Property describes one reflected member.
type Property struct {
	Name             string
	Hash             uint64
	DisplayName      string
	Offset           uintptr
	Size             uintptr
	Count            int
	Type             TypeInfo
	Flags            Flags
	ContainerMethods *ContainerMethods
	MetaData         MetaData
}

// HashName returns the hash stored in Property.Hash for name.
func HashName(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Scalar describes a member of type T at offset.
func Scalar[T any](name string, offset uintptr) Property {
	rt := reflect.TypeFor[T]()
	p := Property{
		Name:   name,
		Hash:   HashName(name),
		Offset: offset,
		Size:   rt.Size(),
		Count:  1,
		Type:   TypeInfo{ID: anyval.TypeIDOf[T](), Kind: rt.Kind()},
	}
	if name == "" {
		p.Hash = 0
	}
	return p
}

// Struct describes a struct member of type T at offset with the given members.
func Struct[T any](name string, offset uintptr, members []Property) Property {
	p := Scalar[T](name, offset)
	p.MetaData.MemberProperties = members
	return p
}

// Element describes one element of type E of a container. members are the
// element's own reflected members, if it is a struct.
func Element[E any](members []Property) Property {
	return Struct[E]("", 0, members)
}

// FixedArray describes a member of array type A (for example [4]Vec2)
// at offset. elem describes one element.
func FixedArray[A any](name string, offset uintptr, elem Property) Property {
	p := Scalar[A](name, offset)
	rt := reflect.TypeFor[A]()
	if rt.Kind() != reflect.Array {
		panic("meta: FixedArray requires an array type, got " + rt.String())
	}
	p.Count = rt.Len()
	p.Type.IsArray = true
	p.ContainerMethods = &ContainerMethods{Property: elem}
	return p
}

// Slice describes a member of type []E at offset. elem describes one element.
func Slice[E any](name string, offset uintptr, elem Property) Property {
	p := Scalar[[]E](name, offset)
	p.ContainerMethods = &ContainerMethods{
		Property: elem,
		Size: func(addr unsafe.Pointer) int {
			return len(*(*[]E)(addr))
		},
		Get: func(addr unsafe.Pointer, index int) unsafe.Pointer {
			s := *(*[]E)(addr)
			return unsafe.Pointer(&s[index])
		},
	}
	return p
}

// WithFlags returns p with flags added.
func (p Property) WithFlags(flags Flags) Property {
	p.Flags |= flags
	return p
}

// WithDisplayName returns p with a display name.
func (p Property) WithDisplayName(name string) Property {
	p.DisplayName = name
	return p
}

// IsContainer reports whether p is an array or slice member.
func (p *Property) IsContainer() bool {
	return p.ContainerMethods != nil
}

// IsDynamic reports whether p is a slice member.
func (p *Property) IsDynamic() bool {
	return p.ContainerMethods != nil && !p.Type.IsArray
}

// Lookup returns the index of the member named name, comparing the
// precomputed hash before the name.
func Lookup(props []Property, name string) int {
	h := HashName(name)
	for i := range props {
		if props[i].Hash != 0 && props[i].Hash != h {
			continue
		}
		if props[i].Name == name {
			return i
		}
	}
	return -1
}
