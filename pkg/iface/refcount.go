// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package iface

import "sync/atomic"

// RefCounted is an Interface with an intrusive reference count.
type RefCounted interface {
	Interface
	Ref()
	Unref()
}

// RefCount is an embeddable intrusive reference counter. The destroy
// callback set with OnDestroy runs once, when Unref drops the count to zero.
type RefCount struct {
	count   atomic.Int32
	destroy func()
}

// OnDestroy sets the callback invoked when the count reaches zero.
func (r *RefCount) OnDestroy(fn func()) {
	r.destroy = fn
}

// Ref increments the reference count.
func (r *RefCount) Ref() {
	r.count.Add(1)
}

// Unref decrements the reference count and destroys the object at zero.
func (r *RefCount) Unref() {
	n := r.count.Add(-1)
	if n == 0 && r.destroy != nil {
		r.destroy()
	}
	if n < 0 {
		panic("iface: Unref without matching Ref")
	}
}

// RefCountValue returns the current count.
func (r *RefCount) RefCountValue() int32 {
	return r.count.Load()
}
