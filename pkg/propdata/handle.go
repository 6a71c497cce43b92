// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package propdata gives locked, metadata-driven access to the raw storage
// behind a property handle.
package propdata

import (
	"unsafe"

	"github.com/holomush/metaprop/pkg/anyval"
	"github.com/holomush/metaprop/pkg/meta"
)

// PropertyAPI describes the layout of the data behind a handle.
type PropertyAPI interface {
	// MetaData returns the reflected members of the stored struct.
	MetaData() []meta.Property
	// Type returns the type of the stored struct.
	Type() anyval.TypeID
}

// PropertyHandle is raw, lockable storage for one reflected struct.
// Implementations provide the cross-goroutine exclusion: WLock is
// exclusive, RLock is shared.
type PropertyHandle interface {
	Owner() PropertyAPI
	Size() uintptr
	WLock() unsafe.Pointer
	WUnlock()
	RLock() unsafe.Pointer
	RUnlock()
}
