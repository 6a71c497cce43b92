// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package meta

import (
	"strconv"
	"strings"
	"sync/atomic"
	"unsafe"
)

// PropertyOffset is the result of resolving a property path.
// The zero value means resolution failed.
type PropertyOffset struct {
	// Property is the descriptor of the last member named in the path.
	Property *Property
	// Offset is relative to the base passed to FindPropertyFrom, or the
	// absolute address for FindPropertyAt.
	Offset uintptr
	// Index is the position of Property in its parent's member list, or
	// the element index when the path ends in a subscript.
	Index int
	// PropertyPath is the part of the path consumed so far.
	PropertyPath string
	// Ptr addresses the resolved member. It is nil when no base was given.
	Ptr unsafe.Pointer
}

// OK reports whether resolution succeeded.
func (o PropertyOffset) OK() bool {
	return o.Property != nil
}

// Element reports whether the path ended in a subscript, in which case
// Property is the container and Index the element.
func (o PropertyOffset) Element() bool {
	return o.Property != nil && o.Property.ContainerMethods != nil &&
		strings.HasSuffix(o.PropertyPath, "]")
}

// Target returns the descriptor of the addressed data: the element
// descriptor after a subscript, Property otherwise.
func (o PropertyOffset) Target() *Property {
	if o.Element() {
		return &o.Property.ContainerMethods.Property
	}
	return o.Property
}

var resolveObserver atomic.Pointer[func(ok bool)]

// SetResolveObserver installs fn to be called after every FindProperty*
// call with its outcome. A nil fn removes the observer.
func SetResolveObserver(fn func(ok bool)) {
	if fn == nil {
		resolveObserver.Store(nil)
		return
	}
	resolveObserver.Store(&fn)
}

func observe(res PropertyOffset) PropertyOffset {
	if fn := resolveObserver.Load(); fn != nil {
		(*fn)(res.OK())
	}
	return res
}

// FindProperty resolves path against props using static offsets only.
// Slice members cannot be indexed.
func FindProperty(props []Property, path string) PropertyOffset {
	return observe(resolve(props, path, nil))
}

// FindPropertyFrom resolves path against props. base addresses the struct
// the metadata describes, or is nil for static offsets. Slice elements can
// only be reached with a non-nil base. The returned offset is relative to
// base and may wrap when the element lives below it.
func FindPropertyFrom(props []Property, path string, base unsafe.Pointer) PropertyOffset {
	return observe(resolve(props, path, base))
}

// FindPropertyAt is FindPropertyFrom with base added to the resulting offset
// on success, yielding the member's absolute address.
func FindPropertyAt(props []Property, path string, base unsafe.Pointer) PropertyOffset {
	res := resolve(props, path, base)
	if res.OK() {
		res.Offset += uintptr(base)
	}
	return observe(res)
}

// cursor tracks the allocation the walk is currently inside. Offsets into
// slice storage are expressed relative to base, but pointers are only ever
// derived from the allocation they point into.
type cursor struct {
	base  unsafe.Pointer
	cur   unsafe.Pointer // nil for static resolution
	shift uintptr        // uintptr(cur) - uintptr(base)
	local uintptr        // offset within cur
}

func (c *cursor) offset() uintptr {
	return c.shift + c.local
}

func (c *cursor) ptr() unsafe.Pointer {
	if c.cur == nil {
		return nil
	}
	return unsafe.Add(c.cur, c.local)
}

func (c *cursor) enter(elem unsafe.Pointer) {
	c.cur = elem
	c.shift = uintptr(elem) - uintptr(c.base)
	c.local = 0
}

func (c *cursor) result(p *Property, index int, path string) PropertyOffset {
	return PropertyOffset{Property: p, Offset: c.offset(), Index: index, PropertyPath: path, Ptr: c.ptr()}
}

func resolve(props []Property, path string, base unsafe.Pointer) PropertyOffset {
	var (
		res PropertyOffset
		pos int
	)
	c := cursor{base: base, cur: base}
	for pos < len(path) {
		if len(props) == 0 {
			// Past the last reflected level: the partial match stands.
			break
		}

		end := len(path)
		if i := strings.IndexAny(path[pos:], ".["); i >= 0 {
			end = pos + i
		}
		name := path[pos:end]
		if name == "" {
			return PropertyOffset{}
		}
		idx := Lookup(props, name)
		if idx < 0 {
			return PropertyOffset{}
		}
		prop := &props[idx]
		c.local += prop.Offset
		res = c.result(prop, idx, path[:end])

		if end == len(path) {
			break
		}

		if path[end] == '[' {
			n, next, ok := parseIndex(path, end+1)
			if !ok || !indexInto(&c, prop, n) {
				return PropertyOffset{}
			}
			res = c.result(prop, n, path[:next])

			if next == len(path) {
				break
			}
			if path[next] != '.' || next+1 == len(path) {
				return PropertyOffset{}
			}
			props = prop.ContainerMethods.Property.MetaData.MemberProperties
			pos = next + 1
			continue
		}

		// path[end] == '.'
		if end+1 == len(path) {
			return PropertyOffset{}
		}
		props = prop.MetaData.MemberProperties
		pos = end + 1
	}
	return res
}

// parseIndex scans the decimal digits starting at start and requires a ']'
// right after them. It returns the index and the position after the ']'.
func parseIndex(path string, start int) (n, next int, ok bool) {
	j := start
	for j < len(path) && path[j] >= '0' && path[j] <= '9' {
		j++
	}
	if j == start || j >= len(path) || path[j] != ']' {
		return 0, 0, false
	}
	n, err := strconv.Atoi(path[start:j])
	if err != nil {
		return 0, 0, false
	}
	return n, j + 1, true
}

// indexInto moves c to element n of the container prop at c. Fixed arrays
// are indexed arithmetically; slices need a live base to reach their
// backing storage.
func indexInto(c *cursor, prop *Property, n int) bool {
	cm := prop.ContainerMethods
	if cm == nil {
		return false
	}
	if prop.Type.IsArray {
		if n >= prop.Count {
			return false
		}
		c.local += uintptr(n) * cm.Property.Size
		return true
	}
	if c.cur == nil || cm.Size == nil || cm.Get == nil {
		return false
	}
	addr := c.ptr()
	if n >= cm.Size(addr) {
		return false
	}
	c.enter(cm.Get(addr, n))
	return true
}
