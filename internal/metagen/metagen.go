// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package metagen writes reflected metadata tables as Go source, so a type
// can be described without reflection at start-up.
//
// The generated table uses the same member names, flags and layout that
// meta.For builds, with offsets spelled as unsafe.Offsetof expressions.
package metagen

import (
	"bytes"
	"go/token"
	"reflect"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/samber/oops"

	"github.com/holomush/metaprop/pkg/meta"
)

const metaPkg = "github.com/holomush/metaprop/pkg/meta"

// Header is written at the top of every generated file.
var Header = []string{
	"SPDX-License-Identifier: Apache-2.0",
	"Copyright 2026 HoloMUSH Contributors",
}

// Generator emits metadata tables for types of one package.
type Generator struct {
	pkgPath string
	file    *jen.File
	err     error
}

// NewGenerator returns a generator for package pkgName at import path pkgPath.
func NewGenerator(pkgPath, pkgName string) *Generator {
	f := jen.NewFilePathName(pkgPath, pkgName)
	for _, line := range Header {
		f.HeaderComment(line)
	}
	f.HeaderComment("Code generated by metaprop gen. DO NOT EDIT.")
	f.ImportName(metaPkg, "meta")
	f.ImportName("unsafe", "unsafe")
	return &Generator{pkgPath: pkgPath, file: f}
}

// Add emits `var varName = []meta.Property{...}` describing struct type t.
func (g *Generator) Add(varName string, t reflect.Type) error {
	if g.err != nil {
		return g.err
	}
	if t == nil || t.Kind() != reflect.Struct || t.Name() == "" {
		return oops.Code("UNSUPPORTED_TYPE").With("type", typeName(t)).
			Errorf("metadata tables need a named struct type")
	}
	members, err := g.members(t, map[reflect.Type]bool{})
	if err != nil {
		g.err = err
		return err
	}
	g.file.Commentf("%s describes %s.", varName, t.Name())
	g.file.Var().Id(varName).Op("=").Add(members)
	return nil
}

// Bytes renders the file. Rendering runs gofmt over the result.
func (g *Generator) Bytes() ([]byte, error) {
	if g.err != nil {
		return nil, g.err
	}
	var buf bytes.Buffer
	if err := g.file.Render(&buf); err != nil {
		return nil, oops.Code("RENDER_FAILED").Wrap(err)
	}
	return buf.Bytes(), nil
}

// Generate renders a file holding one table for t.
func Generate(pkgPath, pkgName, varName string, t reflect.Type) ([]byte, error) {
	g := NewGenerator(pkgPath, pkgName)
	if err := g.Add(varName, t); err != nil {
		return nil, err
	}
	return g.Bytes()
}

// VarName returns the conventional table name for t.
func VarName(t reflect.Type) string {
	return t.Name() + "Meta"
}

// FileName returns the conventional file name for the table of t.
func FileName(t reflect.Type) string {
	var b strings.Builder
	for i, r := range t.Name() {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String() + "_meta.go"
}

func (g *Generator) members(t reflect.Type, building map[reflect.Type]bool) (*jen.Statement, error) {
	if building[t] {
		return jen.Nil(), nil
	}
	building[t] = true
	defer delete(building, t)

	owner, err := g.typeCode(t)
	if err != nil {
		return nil, err
	}

	var items []jen.Code
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, flags, skip := meta.ParseTag(f)
		if skip {
			continue
		}
		offset := jen.Qual("unsafe", "Offsetof").Call(jen.Add(owner).Values().Dot(f.Name))
		member, err := g.member(name, offset, f.Type, building)
		if err != nil {
			return nil, oops.With("field", t.Name()+"."+f.Name).Wrap(err)
		}
		if flags != 0 {
			member = member.Dot("WithFlags").Call(flagsCode(flags))
		}
		items = append(items, member)
	}

	return jen.Index().Qual(metaPkg, "Property").ValuesFunc(func(grp *jen.Group) {
		for _, item := range items {
			grp.Line().Add(item)
		}
		if len(items) > 0 {
			grp.Line()
		}
	}), nil
}

func (g *Generator) member(name string, offset *jen.Statement, t reflect.Type, building map[reflect.Type]bool) (*jen.Statement, error) {
	tc, err := g.typeCode(t)
	if err != nil {
		return nil, err
	}
	switch t.Kind() {
	case reflect.Struct:
		members, err := g.members(t, building)
		if err != nil {
			return nil, err
		}
		return jen.Qual(metaPkg, "Struct").Types(tc).Call(jen.Lit(name), offset, members), nil
	case reflect.Array:
		elem, err := g.element(t.Elem(), building)
		if err != nil {
			return nil, err
		}
		return jen.Qual(metaPkg, "FixedArray").Types(tc).Call(jen.Lit(name), offset, elem), nil
	case reflect.Slice:
		ec, err := g.typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		elem, err := g.element(t.Elem(), building)
		if err != nil {
			return nil, err
		}
		return jen.Qual(metaPkg, "Slice").Types(ec).Call(jen.Lit(name), offset, elem), nil
	}
	return jen.Qual(metaPkg, "Scalar").Types(tc).Call(jen.Lit(name), offset), nil
}

// element describes one container element the way meta.For does: no name,
// offset zero.
func (g *Generator) element(t reflect.Type, building map[reflect.Type]bool) (*jen.Statement, error) {
	switch t.Kind() {
	case reflect.Array, reflect.Slice:
		return g.member("", jen.Lit(0), t, building)
	}
	tc, err := g.typeCode(t)
	if err != nil {
		return nil, err
	}
	members := jen.Nil()
	if t.Kind() == reflect.Struct {
		if members, err = g.members(t, building); err != nil {
			return nil, err
		}
	}
	return jen.Qual(metaPkg, "Element").Types(tc).Call(members), nil
}

// typeCode spells t as a type expression valid inside the generated package.
func (g *Generator) typeCode(t reflect.Type) (*jen.Statement, error) {
	if t.Name() != "" {
		switch t.PkgPath() {
		case "":
			return jen.Id(t.Name()), nil
		case g.pkgPath:
			return jen.Id(t.Name()), nil
		}
		if !token.IsExported(t.Name()) {
			return nil, oops.Code("UNSUPPORTED_TYPE").With("type", t.String()).
				Errorf("unexported type %s is not visible from %s", t, g.pkgPath)
		}
		return jen.Qual(t.PkgPath(), t.Name()), nil
	}
	switch t.Kind() {
	case reflect.Array:
		elem, err := g.typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Index(jen.Lit(t.Len())).Add(elem), nil
	case reflect.Slice:
		elem, err := g.typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Index().Add(elem), nil
	case reflect.Pointer:
		elem, err := g.typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(elem), nil
	case reflect.Map:
		key, err := g.typeCode(t.Key())
		if err != nil {
			return nil, err
		}
		val, err := g.typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Map(key).Add(val), nil
	}
	return nil, oops.Code("UNSUPPORTED_TYPE").With("type", t.String()).
		Errorf("cannot spell anonymous type %s", t)
}

func flagsCode(flags meta.Flags) *jen.Statement {
	var parts []jen.Code
	if flags&meta.FlagReadOnly != 0 {
		parts = append(parts, jen.Qual(metaPkg, "FlagReadOnly"))
	}
	if flags&meta.FlagHidden != 0 {
		parts = append(parts, jen.Qual(metaPkg, "FlagHidden"))
	}
	if len(parts) == 0 {
		return jen.Lit(int(flags))
	}
	s := jen.Add(parts[0])
	for _, p := range parts[1:] {
		s.Op("|").Add(p)
	}
	return s
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
