// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package ref provides strong and weak reference-counted handles with
// aliasing and interface-aware casts.
//
// Memory itself belongs to the garbage collector; the counts decide when an
// object is destroyed, meaning when its deleter runs. Handles are plain
// values: copying a Ptr with assignment does not add a reference, use Clone.
// Every Clone, New, Cast or Lock must be balanced by a Reset.
package ref

import (
	"io"
	"reflect"

	"github.com/holomush/metaprop/pkg/iface"
)

// Ptr is a strong reference to a value of type T.
type Ptr[T any] struct {
	ptr T
	cb  *control
}

// Option configures a newly created Ptr.
type Option[T any] func(*options[T])

type options[T any] struct {
	deleter func(T)
	release func()
}

// WithDeleter replaces the default destruction step. The deleter runs exactly
// once, when the last strong reference is reset.
func WithDeleter[T any](fn func(T)) Option[T] {
	return func(o *options[T]) { o.deleter = fn }
}

// WithRelease registers fn to run when the control block is released, which
// happens once both strong and weak references are gone.
func WithRelease[T any](fn func()) Option[T] {
	return func(o *options[T]) { o.release = fn }
}

// New takes ownership of v. By default a value implementing io.Closer is
// closed on destruction. A nil v yields an empty Ptr.
func New[T any](v T, opts ...Option[T]) Ptr[T] {
	if isNil(v) {
		return Ptr[T]{}
	}
	o := options[T]{deleter: defaultDeleter[T]}
	for _, opt := range opts {
		opt(&o)
	}
	deleter := o.deleter
	var del func()
	if deleter != nil {
		del = func() { deleter(v) }
	}
	return Ptr[T]{ptr: v, cb: newControl(del, o.release)}
}

// NewWithDeleter is shorthand for New(v, WithDeleter(deleter)).
func NewWithDeleter[T any](v T, deleter func(T)) Ptr[T] {
	return New(v, WithDeleter(deleter))
}

func defaultDeleter[T any](v T) {
	if c, ok := any(v).(io.Closer); ok {
		_ = c.Close()
	}
}

// Get returns the stored value (the zero T for an empty Ptr).
func (p Ptr[T]) Get() T {
	return p.ptr
}

// IsNil reports whether p is empty.
func (p Ptr[T]) IsNil() bool {
	return p.cb == nil
}

// Clone returns a new strong reference to the same object.
func (p Ptr[T]) Clone() Ptr[T] {
	if p.cb == nil {
		return Ptr[T]{}
	}
	p.cb.addStrong()
	return p
}

// Reset drops this reference and empties p.
func (p *Ptr[T]) Reset() {
	if p.cb == nil {
		return
	}
	cb := p.cb
	*p = Ptr[T]{}
	cb.releaseStrong()
}

// UseCount returns the number of strong references.
func (p Ptr[T]) UseCount() int64 {
	if p.cb == nil {
		return 0
	}
	return p.cb.useCount()
}

// WeakCount returns the number of outstanding Weak observers.
func (p Ptr[T]) WeakCount() int64 {
	if p.cb == nil {
		return 0
	}
	return p.cb.weakCount()
}

// Owner is implemented by Ptr and Weak of any element type.
type Owner interface {
	block() *control
}

func (p Ptr[T]) block() *control { return p.cb }

// SharesOwnership reports whether p and o use the same control block.
func (p Ptr[T]) SharesOwnership(o Owner) bool {
	return p.cb != nil && p.cb == o.block()
}

// Alias returns a Ptr sharing src's lifetime but pointing at p, typically a
// sub-object or another view of src. A nil p, or an empty src, gives an empty
// result.
func Alias[T, Y any](src Ptr[Y], p T) Ptr[T] {
	if src.cb == nil || isNil(p) {
		return Ptr[T]{}
	}
	src.cb.addStrong()
	return Ptr[T]{ptr: p, cb: src.cb}
}

// Cast converts src to a Ptr[T] sharing its control block. A value that
// already satisfies T is aliased directly; otherwise, when src holds an
// iface.Interface and T has a registered UID, GetInterface decides. A failed
// cast yields an empty Ptr and leaves src untouched.
func Cast[T, U any](src Ptr[U]) Ptr[T] {
	if src.cb == nil {
		return Ptr[T]{}
	}
	v := any(src.ptr)
	if direct, ok := v.(T); ok {
		return Alias(src, direct)
	}
	obj, ok := v.(iface.Interface)
	if !ok {
		return Ptr[T]{}
	}
	uid, ok := iface.UIDOf[T]()
	if !ok {
		return Ptr[T]{}
	}
	got := obj.GetInterface(uid)
	if got == nil {
		return Ptr[T]{}
	}
	cast, ok := got.(T)
	if !ok {
		return Ptr[T]{}
	}
	return Alias(src, cast)
}

// CastMove is Cast followed by resetting src: ownership moves into the
// result on success, and on failure src is cleared as well.
func CastMove[T, U any](src *Ptr[U]) Ptr[T] {
	out := Cast[T](*src)
	src.Reset()
	return out
}

func isNil[T any](v T) bool {
	a := any(v)
	if a == nil {
		return true
	}
	rv := reflect.ValueOf(a)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
