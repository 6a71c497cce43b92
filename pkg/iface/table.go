// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package iface

import (
	"slices"
	"sort"
)

// LinearSearchThreshold is the table size at or below which Lookup scans
// linearly instead of binary searching.
const LinearSearchThreshold = 8

// Entry introduces one interface (or a group of interfaces) on the concrete
// type O.
type Entry[O any] struct {
	uid   UID
	cast  func(O) Interface
	group []Entry[O]
}

// Introduce declares that O provides the interface I under uid. conv performs
// the conversion; it is usually just `func(o *T) I { return o }`.
// The UID is registered for I as a side effect.
func Introduce[O any, I Interface](uid UID, conv func(O) I) Entry[O] {
	RegisterUID[I](uid)
	return Entry[O]{
		uid: uid,
		cast: func(o O) Interface {
			return conv(o)
		},
	}
}

// Group bundles entries that are introduced together, such as the interface
// set of an embedded base. Groups may nest.
func Group[O any](entries ...Entry[O]) Entry[O] {
	return Entry[O]{group: entries}
}

type tableEntry[O any] struct {
	uid  UID
	cast func(O) Interface
}

// Table is the sorted, de-duplicated interface table of the concrete type O.
// It is immutable once built and safe for concurrent use.
type Table[O any] struct {
	entries []tableEntry[O]
}

// NewTable flattens entries (depth first, in declaration order), drops
// duplicate UIDs keeping the first occurrence and sorts the result by UID.
func NewTable[O any](entries ...Entry[O]) *Table[O] {
	seen := make(map[UID]struct{})
	var flat []tableEntry[O]

	var walk func([]Entry[O])
	walk = func(list []Entry[O]) {
		for _, e := range list {
			if e.group != nil || e.cast == nil {
				walk(e.group)
				continue
			}
			if e.uid == InterfaceUID {
				continue
			}
			if _, dup := seen[e.uid]; dup {
				continue
			}
			seen[e.uid] = struct{}{}
			flat = append(flat, tableEntry[O]{uid: e.uid, cast: e.cast})
		}
	}
	walk(entries)

	sort.SliceStable(flat, func(i, j int) bool {
		return flat[i].uid.Compare(flat[j].uid) < 0
	})
	return &Table[O]{entries: flat}
}

// Len returns the number of distinct introduced interfaces.
func (t *Table[O]) Len() int {
	return len(t.entries)
}

// UIDs returns the introduced UIDs in table (sorted) order.
func (t *Table[O]) UIDs() []UID {
	out := make([]UID, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.uid
	}
	return out
}

// Lookup returns obj viewed as the interface registered under uid, or nil.
// InterfaceUID matches any obj that implements Interface.
func (t *Table[O]) Lookup(obj O, uid UID) Interface {
	if uid == InterfaceUID {
		if root, ok := any(obj).(Interface); ok {
			return root
		}
		return nil
	}
	idx := t.find(uid)
	if idx < 0 {
		return nil
	}
	return t.entries[idx].cast(obj)
}

func (t *Table[O]) find(uid UID) int {
	if len(t.entries) > LinearSearchThreshold {
		idx, found := slices.BinarySearchFunc(t.entries, uid, func(e tableEntry[O], target UID) int {
			return e.uid.Compare(target)
		})
		if !found {
			return -1
		}
		return idx
	}
	for i, e := range t.entries {
		switch c := e.uid.Compare(uid); {
		case c == 0:
			return i
		case c > 0:
			// sorted: nothing further can match
			return -1
		}
	}
	return -1
}
