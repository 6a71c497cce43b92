// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package ref

// Weak observes an object owned by Ptr references without keeping it alive.
type Weak[T any] struct {
	ptr T
	cb  *control
}

// MakeWeak creates a weak observer of p.
func MakeWeak[T any](p Ptr[T]) Weak[T] {
	if p.cb == nil {
		return Weak[T]{}
	}
	p.cb.addWeak()
	return Weak[T]{ptr: p.ptr, cb: p.cb}
}

// Lock promotes w to a strong reference. It returns an empty Ptr when the
// object has already been destroyed.
func (w Weak[T]) Lock() Ptr[T] {
	if w.cb == nil || !w.cb.tryAddStrong() {
		return Ptr[T]{}
	}
	return Ptr[T]{ptr: w.ptr, cb: w.cb}
}

// Expired reports whether the observed object is gone.
func (w Weak[T]) Expired() bool {
	return w.cb == nil || w.cb.useCount() == 0
}

// Clone returns another weak observer of the same object.
func (w Weak[T]) Clone() Weak[T] {
	if w.cb == nil {
		return Weak[T]{}
	}
	w.cb.addWeak()
	return w
}

// Reset drops this observer and empties w.
func (w *Weak[T]) Reset() {
	if w.cb == nil {
		return
	}
	cb := w.cb
	*w = Weak[T]{}
	cb.releaseWeak()
}

// UseCount returns the number of strong references to the observed object.
func (w Weak[T]) UseCount() int64 {
	if w.cb == nil {
		return 0
	}
	return w.cb.useCount()
}

func (w Weak[T]) block() *control { return w.cb }
