// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package property

import "sync/atomic"

// NotifyMode says why a change notification fired.
type NotifyMode int

const (
	// NotifyImmediate is a SetValue on an unlocked property.
	NotifyImmediate NotifyMode = iota
	// NotifyDeferred is a change held back until the outermost Unlock.
	NotifyDeferred
	// NotifyForced is an explicit NotifyChange.
	NotifyForced
)

func (m NotifyMode) String() string {
	switch m {
	case NotifyImmediate:
		return "immediate"
	case NotifyDeferred:
		return "deferred"
	case NotifyForced:
		return "forced"
	default:
		return "unknown"
	}
}

var notifyObserver atomic.Pointer[func(NotifyMode)]

// SetNotifyObserver installs fn to be called for every fired notification,
// whether or not anyone subscribed. A nil fn removes the observer.
func SetNotifyObserver(fn func(NotifyMode)) {
	if fn == nil {
		notifyObserver.Store(nil)
		return
	}
	notifyObserver.Store(&fn)
}

func observeNotify(mode NotifyMode) {
	if fn := notifyObserver.Load(); fn != nil {
		(*fn)(mode)
	}
}
