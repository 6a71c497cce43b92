// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package property

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// recursiveMutex is a mutex the holding goroutine may lock again.
// depth is only touched by the holder.
type recursiveMutex struct {
	mu    sync.Mutex
	owner atomic.Int64
	depth int
}

// lock acquires m and returns the new depth.
func (m *recursiveMutex) lock() int {
	id := goid.Get()
	if m.owner.Load() == id {
		m.depth++
		return m.depth
	}
	m.mu.Lock()
	m.owner.Store(id)
	m.depth = 1
	return 1
}

// held reports whether the calling goroutine holds m.
func (m *recursiveMutex) held() bool {
	return m.owner.Load() == goid.Get()
}

// unlock releases one level and returns the remaining depth. The caller
// must hold m.
func (m *recursiveMutex) unlock() int {
	if !m.held() {
		panic("property: unlock of a property not locked by this goroutine")
	}
	m.depth--
	d := m.depth
	if d == 0 {
		m.owner.Store(0)
		m.mu.Unlock()
	}
	return d
}
