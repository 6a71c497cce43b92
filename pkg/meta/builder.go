// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package meta

import (
	"reflect"
	"strings"
	"sync"
	"unsafe"

	"github.com/holomush/metaprop/pkg/anyval"
)

// TagName is the struct tag read by For. `meta:"name"` renames a member,
// `meta:"-"` skips it and `meta:",readonly"` / `meta:",hidden"` set flags.
const TagName = "meta"

var cache sync.Map // map[reflect.Type][]Property

// Of returns the reflected members of the struct type T.
func Of[T any]() []Property {
	return For(reflect.TypeFor[T]())
}

// For returns the reflected members of struct type t, building and caching
// them on first use. Pointer types are dereferenced; non-struct types have
// no members. A struct reachable from itself through a container stops
// describing its members at the point of recursion.
func For(t reflect.Type) []Property {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	if cached, ok := cache.Load(t); ok {
		return cached.([]Property)
	}
	props := buildStruct(t, map[reflect.Type]bool{})
	actual, _ := cache.LoadOrStore(t, props)
	return actual.([]Property)
}

func buildStruct(t reflect.Type, building map[reflect.Type]bool) []Property {
	if building[t] {
		return nil
	}
	building[t] = true
	defer delete(building, t)

	props := make([]Property, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, flags, skip := ParseTag(f)
		if skip {
			continue
		}
		p := buildMember(name, f.Offset, f.Type, building)
		p.Flags |= flags
		props = append(props, p)
	}
	return props
}

// ParseTag reads the member name and flags of f from its meta tag. skip
// reports a `meta:"-"` field.
func ParseTag(f reflect.StructField) (name string, flags Flags, skip bool) {
	name = f.Name
	tag, ok := f.Tag.Lookup(TagName)
	if !ok {
		return name, 0, false
	}
	if tag == "-" {
		return "", 0, true
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		switch opt {
		case "readonly":
			flags |= FlagReadOnly
		case "hidden":
			flags |= FlagHidden
		}
	}
	return name, flags, false
}

func buildMember(name string, offset uintptr, t reflect.Type, building map[reflect.Type]bool) Property {
	p := Property{
		Name:   name,
		Hash:   HashName(name),
		Offset: offset,
		Size:   t.Size(),
		Count:  1,
		Type:   TypeInfo{ID: anyval.TypeIDFor(t), Kind: t.Kind()},
	}
	if name == "" {
		p.Hash = 0
	}

	switch t.Kind() {
	case reflect.Struct:
		p.MetaData.MemberProperties = buildStruct(t, building)
	case reflect.Array:
		p.Count = t.Len()
		p.Type.IsArray = true
		p.ContainerMethods = &ContainerMethods{
			Property: buildMember("", 0, t.Elem(), building),
		}
	case reflect.Slice:
		p.ContainerMethods = sliceMethods(t, buildMember("", 0, t.Elem(), building))
	}
	return p
}

func sliceMethods(t reflect.Type, elem Property) *ContainerMethods {
	return &ContainerMethods{
		Property: elem,
		Size: func(addr unsafe.Pointer) int {
			return reflect.NewAt(t, addr).Elem().Len()
		},
		Get: func(addr unsafe.Pointer, index int) unsafe.Pointer {
			return reflect.NewAt(t, addr).Elem().Index(index).Addr().UnsafePointer()
		},
	}
}
