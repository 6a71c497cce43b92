// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package ref

import "sync/atomic"

// control is the block shared by every Ptr and Weak referring to one object.
//
// Strong holders collectively count as a single weak holder, so weak reaches
// zero only after the object has been destroyed and every Weak is gone.
type control struct {
	strong  atomic.Int64
	weak    atomic.Int64
	deleter func()
	release func()
}

func newControl(deleter, release func()) *control {
	c := &control{deleter: deleter, release: release}
	c.strong.Store(1)
	c.weak.Store(1)
	return c
}

func (c *control) addStrong() {
	c.strong.Add(1)
}

func (c *control) releaseStrong() {
	n := c.strong.Add(-1)
	switch {
	case n == 0:
		if c.deleter != nil {
			c.deleter()
		}
		c.releaseWeak()
	case n < 0:
		panic("ref: strong count underflow")
	}
}

func (c *control) addWeak() {
	c.weak.Add(1)
}

func (c *control) releaseWeak() {
	n := c.weak.Add(-1)
	switch {
	case n == 0:
		if c.release != nil {
			c.release()
		}
	case n < 0:
		panic("ref: weak count underflow")
	}
}

// tryAddStrong promotes a weak reference. It never resurrects an object whose
// strong count already reached zero.
func (c *control) tryAddStrong() bool {
	for {
		n := c.strong.Load()
		if n == 0 {
			return false
		}
		if c.strong.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (c *control) useCount() int64 {
	return c.strong.Load()
}

func (c *control) weakCount() int64 {
	w := c.weak.Load()
	if c.strong.Load() > 0 {
		w--
	}
	if w < 0 {
		return 0
	}
	return w
}
