// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package meta

import (
	"strconv"
	"strings"
	"unsafe"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Walk calls fn for every path resolvable against props, parents before
// children, in declaration order. Fixed arrays are expanded element by
// element; slices are expanded only when base is non-nil. Offsets are
// relative to base, as with FindPropertyFrom. Walk stops when fn returns
// false.
func Walk(props []Property, base unsafe.Pointer, fn func(res PropertyOffset) bool) {
	walkMembers(props, "", cursor{base: base, cur: base}, fn)
}

func walkMembers(props []Property, prefix string, c cursor, fn func(PropertyOffset) bool) bool {
	for i := range props {
		p := &props[i]
		path := p.Name
		if prefix != "" {
			path = prefix + "." + p.Name
		}
		mc := c
		mc.local += p.Offset
		if !fn(mc.result(p, i, path)) {
			return false
		}
		if !walkChildren(p, path, mc, fn) {
			return false
		}
	}
	return true
}

func walkChildren(p *Property, path string, c cursor, fn func(PropertyOffset) bool) bool {
	if len(p.MetaData.MemberProperties) > 0 {
		return walkMembers(p.MetaData.MemberProperties, path, c, fn)
	}
	cm := p.ContainerMethods
	if cm == nil {
		return true
	}
	n := 0
	switch {
	case p.Type.IsArray:
		n = p.Count
	case c.cur != nil && cm.Size != nil && cm.Get != nil:
		n = cm.Size(c.ptr())
	}
	for i := range n {
		ec := c
		if p.Type.IsArray {
			ec.local += uintptr(i) * cm.Property.Size
		} else {
			ec.enter(cm.Get(c.ptr(), i))
		}
		elemPath := path + "[" + strconv.Itoa(i) + "]"
		if !fn(ec.result(p, i, elemPath)) {
			return false
		}
		if !walkMembers(cm.Property.MetaData.MemberProperties, elemPath, ec, fn) {
			return false
		}
	}
	return true
}

// Match returns every walked path matching pattern, in walk order.
//
// Patterns use gobwas/glob with '.' as the segment separator, and
// subscripts are matched as their own segment:
//   - "vec4.*" matches "vec4.x" and "vec4.y"
//   - "vec2Array.*.x" matches "vec2Array[0].x" through "vec2Array[3].x"
//   - "**" matches every path
func Match(props []Property, pattern string, base unsafe.Pointer) ([]PropertyOffset, error) {
	if pattern == "" {
		return nil, oops.Code("INVALID_PATTERN").Errorf("empty property pattern")
	}
	if err := checkBalanced(pattern); err != nil {
		return nil, oops.Code("INVALID_PATTERN").With("pattern", pattern).Wrap(err)
	}
	g, err := glob.Compile(segmentKey(pattern), '.')
	if err != nil {
		return nil, oops.Code("INVALID_PATTERN").With("pattern", pattern).Wrap(err)
	}
	var out []PropertyOffset
	Walk(props, base, func(res PropertyOffset) bool {
		if g.Match(segmentKey(res.PropertyPath)) {
			out = append(out, res)
		}
		return true
	})
	return out, nil
}

// Paths returns every walked path.
func Paths(props []Property, base unsafe.Pointer) []string {
	var out []string
	Walk(props, base, func(res PropertyOffset) bool {
		out = append(out, res.PropertyPath)
		return true
	})
	return out
}

// checkBalanced rejects unclosed alternation braces and subscripts, which
// glob.Compile lets through as literals.
func checkBalanced(pattern string) error {
	braces, subscript := 0, false
	for i, r := range pattern {
		switch r {
		case '{':
			braces++
		case '}':
			braces--
			if braces < 0 {
				return oops.Errorf("unexpected '}' at %d", i)
			}
		case '[':
			if subscript {
				return oops.Errorf("nested '[' at %d", i)
			}
			subscript = true
		case ']':
			if !subscript {
				return oops.Errorf("unexpected ']' at %d", i)
			}
			subscript = false
		}
	}
	if braces != 0 {
		return oops.Errorf("unclosed '{'")
	}
	if subscript {
		return oops.Errorf("unclosed '['")
	}
	return nil
}

var segmentReplacer = strings.NewReplacer("[", ".", "]", "")

// segmentKey rewrites "a[2].b" as "a.2.b" so subscripts form segments.
// Glob character classes are therefore unavailable in patterns.
func segmentKey(path string) string {
	return segmentReplacer.Replace(path)
}
