// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package propdata

import (
	"unsafe"

	"github.com/holomush/metaprop/pkg/meta"
)

type lockMode uint8

const (
	unlocked lockMode = iota
	readLocked
	writeLocked
)

// PropertyData binds to one PropertyHandle at a time and gives access to
// the members of the locked buffer.
//
// A PropertyData is not safe for concurrent use; the handle provides the
// exclusion between goroutines. Binding a PropertyData that is already
// bound is a programming error and panics.
//
//	var pd propdata.PropertyData
//	defer pd.Close()
//	if res := pd.WLockPath(h, "transform.position.x"); res.OK() {
//		...
//	}
type PropertyData struct {
	handle PropertyHandle
	owner  PropertyAPI
	size   uintptr
	data   unsafe.Pointer
	mode   lockMode
}

func (pd *PropertyData) bind(h PropertyHandle, mode lockMode) bool {
	if pd.mode != unlocked {
		panic("propdata: PropertyData is already locked")
	}
	if h == nil {
		return false
	}
	pd.handle = h
	pd.owner = h.Owner()
	pd.size = h.Size()
	pd.mode = mode
	if mode == writeLocked {
		pd.data = h.WLock()
	} else {
		pd.data = h.RLock()
	}
	return true
}

func (pd *PropertyData) resolve(path string) meta.PropertyOffset {
	if pd.owner == nil || pd.data == nil {
		return meta.PropertyOffset{}
	}
	return meta.FindPropertyAt(pd.owner.MetaData(), path, pd.data)
}

// WLock binds pd to h and takes its exclusive lock.
func (pd *PropertyData) WLock(h PropertyHandle) bool {
	return pd.bind(h, writeLocked)
}

// WLockPath is WLock followed by resolving path against the locked buffer.
// The returned offset is the member's absolute address. When the path does
// not resolve, the lock is released again and the zero PropertyOffset is
// returned.
func (pd *PropertyData) WLockPath(h PropertyHandle, path string) meta.PropertyOffset {
	if !pd.WLock(h) {
		return meta.PropertyOffset{}
	}
	res := pd.resolve(path)
	if !res.OK() {
		pd.WUnlock(h)
	}
	return res
}

// RLock binds pd to h and takes its shared lock.
func (pd *PropertyData) RLock(h PropertyHandle) bool {
	return pd.bind(h, readLocked)
}

// RLockPath is the shared counterpart of WLockPath.
func (pd *PropertyData) RLockPath(h PropertyHandle, path string) meta.PropertyOffset {
	if !pd.RLock(h) {
		return meta.PropertyOffset{}
	}
	res := pd.resolve(path)
	if !res.OK() {
		pd.RUnlock(h)
	}
	return res
}

// WUnlock releases the exclusive lock taken on h. It reports false and does
// nothing when pd is not write-locked on h.
func (pd *PropertyData) WUnlock(h PropertyHandle) bool {
	if pd.mode != writeLocked || h == nil || pd.handle != h {
		return false
	}
	pd.handle.WUnlock()
	pd.reset()
	return true
}

// RUnlock releases the shared lock taken on h. It reports false and does
// nothing when pd is not read-locked on h.
func (pd *PropertyData) RUnlock(h PropertyHandle) bool {
	if pd.mode != readLocked || h == nil || pd.handle != h {
		return false
	}
	pd.handle.RUnlock()
	pd.reset()
	return true
}

// Close releases whichever lock is still held. It is safe to call on an
// unbound PropertyData.
func (pd *PropertyData) Close() {
	switch pd.mode {
	case writeLocked:
		pd.WUnlock(pd.handle)
	case readLocked:
		pd.RUnlock(pd.handle)
	}
}

func (pd *PropertyData) reset() {
	*pd = PropertyData{}
}

// Locked reports whether pd is bound to a handle.
func (pd *PropertyData) Locked() bool { return pd.mode != unlocked }

// Writable reports whether pd holds an exclusive lock.
func (pd *PropertyData) Writable() bool { return pd.mode == writeLocked }

// Owner returns the API of the bound handle, or nil.
func (pd *PropertyData) Owner() PropertyAPI { return pd.owner }

// Size returns the byte size of the bound buffer.
func (pd *PropertyData) Size() uintptr { return pd.size }

// Data returns the locked buffer, or nil.
func (pd *PropertyData) Data() unsafe.Pointer { return pd.data }

// Get returns a view of the top-level member at index, or an invalid view
// when pd is not locked or index is out of range.
func (pd *PropertyData) Get(index int) Value {
	if pd.mode == unlocked || pd.owner == nil {
		return Value{}
	}
	props := pd.owner.MetaData()
	if index < 0 || index >= len(props) {
		return Value{}
	}
	return pd.member(&props[index])
}

// GetByName returns a view of the top-level member called name.
func (pd *PropertyData) GetByName(name string) Value {
	if pd.mode == unlocked || pd.owner == nil {
		return Value{}
	}
	props := pd.owner.MetaData()
	i := meta.Lookup(props, name)
	if i < 0 {
		return Value{}
	}
	return pd.member(&props[i])
}

// At returns a view of a member resolved on the locked buffer, for example
// by WLockPath.
func (pd *PropertyData) At(res meta.PropertyOffset) Value {
	if pd.mode == unlocked || !res.OK() || res.Ptr == nil {
		return Value{}
	}
	return Value{Property: res.Target(), Ptr: res.Ptr, Writable: pd.Writable()}
}

// Path resolves path on the locked buffer and returns a view of it.
func (pd *PropertyData) Path(path string) Value {
	if pd.mode == unlocked {
		return Value{}
	}
	return pd.At(pd.resolve(path))
}

func (pd *PropertyData) member(p *meta.Property) Value {
	return Value{Property: p, Ptr: unsafe.Add(pd.data, p.Offset), Writable: pd.Writable()}
}
