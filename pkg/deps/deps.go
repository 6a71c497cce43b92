// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package deps records which values an evaluation read, so that the result
// can be recomputed when any of them changes.
//
// A tracker travels in a context.Context. Evaluations running on different
// goroutines use different contexts and never see each other's records.
package deps

import (
	"context"
	"sync"
)

// Dependency is one recorded read. Depth is the nesting level of the
// scope that recorded it, starting at 1.
type Dependency struct {
	Target any
	Depth  int
}

// Tracker collects the dependencies of one evaluation scope.
// It is safe for concurrent use.
type Tracker struct {
	parent *Tracker
	depth  int

	mu    sync.Mutex
	order []any
	seen  map[any]int
	ended bool
}

type trackerKey struct{}

// Begin starts a scope nested in any scope already carried by ctx.
// Records made in the new scope are also reported to its parents.
func Begin(ctx context.Context) (context.Context, *Tracker) {
	parent := FromContext(ctx)
	t := &Tracker{parent: parent, depth: 1, seen: make(map[any]int)}
	if parent != nil {
		t.depth = parent.depth + 1
	}
	return context.WithValue(ctx, trackerKey{}, t), t
}

// FromContext returns the innermost tracker carried by ctx, or nil.
func FromContext(ctx context.Context) *Tracker {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}

// Record adds target to the tracker carried by ctx. It does nothing
// without a tracker. target must be comparable.
func Record(ctx context.Context, target any) {
	if t := FromContext(ctx); t != nil {
		t.Record(target)
	}
}

// Record adds target to t and every enclosing scope that is still open.
func (t *Tracker) Record(target any) {
	t.record(target, t.depth)
}

func (t *Tracker) record(target any, depth int) {
	for cur := t; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		if !cur.ended {
			if d, ok := cur.seen[target]; !ok {
				cur.seen[target] = depth
				cur.order = append(cur.order, target)
			} else if depth < d {
				cur.seen[target] = depth
			}
		}
		cur.mu.Unlock()
	}
}

// Depth returns the nesting level of t.
func (t *Tracker) Depth() int { return t.depth }

// Deps returns the recorded dependencies in first-read order, each with
// the shallowest depth it was read at.
func (t *Tracker) Deps() []Dependency {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Dependency, len(t.order))
	for i, target := range t.order {
		out[i] = Dependency{Target: target, Depth: t.seen[target]}
	}
	return out
}

// Len returns the number of distinct dependencies recorded.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}

// End closes the scope. Later records are ignored. The recorded
// dependencies stay readable.
func (t *Tracker) End() {
	t.mu.Lock()
	t.ended = true
	t.mu.Unlock()
}
