// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package propdata

import (
	"sync"
	"unsafe"

	"github.com/holomush/metaprop/pkg/anyval"
	"github.com/holomush/metaprop/pkg/meta"
)

// Buffer is a PropertyHandle owning one T.
//
// Buffer is safe for concurrent use. The zero value is not usable; call
// NewBuffer.
type Buffer[T any] struct {
	mu    sync.RWMutex
	value *T
	props []meta.Property
}

// NewBuffer returns a handle holding v, described by meta.Of[T].
func NewBuffer[T any](v T) *Buffer[T] {
	p := new(T)
	*p = v
	return &Buffer[T]{value: p, props: meta.Of[T]()}
}

// NewBufferWithMeta returns a handle holding v, described by props.
// Use it with generated metadata tables.
func NewBufferWithMeta[T any](v T, props []meta.Property) *Buffer[T] {
	b := NewBuffer(v)
	b.props = props
	return b
}

// Snapshot returns a copy of the held value taken under the read lock.
func (b *Buffer[T]) Snapshot() T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return *b.value
}

// Update runs fn with the held value under the write lock.
func (b *Buffer[T]) Update(fn func(*T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.value)
}

// Owner implements PropertyHandle.
func (b *Buffer[T]) Owner() PropertyAPI { return b }

// Size implements PropertyHandle.
func (b *Buffer[T]) Size() uintptr { return unsafe.Sizeof(*b.value) }

// WLock implements PropertyHandle.
func (b *Buffer[T]) WLock() unsafe.Pointer {
	b.mu.Lock()
	return unsafe.Pointer(b.value)
}

// WUnlock implements PropertyHandle.
func (b *Buffer[T]) WUnlock() { b.mu.Unlock() }

// RLock implements PropertyHandle.
func (b *Buffer[T]) RLock() unsafe.Pointer {
	b.mu.RLock()
	return unsafe.Pointer(b.value)
}

// RUnlock implements PropertyHandle.
func (b *Buffer[T]) RUnlock() { b.mu.RUnlock() }

// MetaData implements PropertyAPI.
func (b *Buffer[T]) MetaData() []meta.Property { return b.props }

// Type implements PropertyAPI.
func (b *Buffer[T]) Type() anyval.TypeID { return anyval.TypeIDOf[T]() }

var _ PropertyHandle = (*Buffer[struct{}])(nil)
