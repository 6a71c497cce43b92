// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package property

import (
	"context"
	"sync"

	"github.com/holomush/metaprop/pkg/anyval"
	"github.com/holomush/metaprop/pkg/deps"
)

// EvalFunc produces a computed value. Properties it reads through Read or
// ReadAs with the given context become dependencies.
type EvalFunc func(ctx context.Context) anyval.Any

type subscription struct {
	p   Property
	tok Token
}

// Computed is a read-only property whose value is derived from other
// properties. It re-evaluates whenever one of the properties read by the
// last evaluation announces a change.
type Computed struct {
	*Generic
	eval EvalFunc

	evalMu sync.Mutex
	subs   []subscription
	closed bool
}

// NewComputed evaluates eval once and returns the property.
func NewComputed(name string, eval EvalFunc, opts ...Option) *Computed {
	c := &Computed{Generic: New(name, opts...), eval: eval}
	c.self = c
	c.Recompute()
	return c
}

// SetValue implements Property. Computed values cannot be set.
func (c *Computed) SetValue(anyval.Any) anyval.Result {
	return anyval.Fail
}

// Dependencies returns the properties read by the last evaluation.
func (c *Computed) Dependencies() []Property {
	c.evalMu.Lock()
	defer c.evalMu.Unlock()
	out := make([]Property, len(c.subs))
	for i, s := range c.subs {
		out[i] = s.p
	}
	return out
}

// Recompute evaluates again and announces a change if the value differs.
func (c *Computed) Recompute() {
	c.evalMu.Lock()
	if c.closed {
		c.evalMu.Unlock()
		return
	}
	ctx, tr := deps.Begin(context.Background())
	v := c.eval(ctx)
	tr.End()
	c.resubscribe(tr.Deps())
	c.evalMu.Unlock()

	if v == nil {
		return
	}
	depth := c.mu.lock()
	if c.value == nil {
		c.value = v.Clone(anyval.CloneOptions{Value: anyval.CopyValue})
	} else if c.value.CopyFrom(v) == anyval.Success {
		c.markPending(depth, NotifyImmediate)
	}
	c.Unlock()
}

func (c *Computed) resubscribe(found []deps.Dependency) {
	for _, s := range c.subs {
		if ev := s.p.EventOnChanged(NoConstruct); ev != nil {
			ev.RemoveHandler(s.tok)
		}
	}
	c.subs = c.subs[:0]
	for _, d := range found {
		p, ok := d.Target.(Property)
		if !ok || p == Property(c) {
			continue
		}
		tok := p.EventOnChanged(ConstructIfMissing).AddHandler(func(Property) { c.Recompute() })
		c.subs = append(c.subs, subscription{p: p, tok: tok})
	}
}

// Close unsubscribes from all dependencies. The last value stays readable.
func (c *Computed) Close() {
	c.evalMu.Lock()
	defer c.evalMu.Unlock()
	c.resubscribe(nil)
	c.closed = true
}
