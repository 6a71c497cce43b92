// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package property implements observable, lockable properties backed by an
// anyval.Any.
//
// Locking is re-entrant per goroutine. A change made while the property is
// locked is remembered and announced once, after the outermost Unlock has
// released the lock, so handlers may freely lock the property again.
package property

import (
	"log/slog"
	"sync"

	"github.com/holomush/metaprop/pkg/anyval"
	"github.com/holomush/metaprop/pkg/iface"
	"github.com/holomush/metaprop/pkg/ref"
)

// PropertyUID identifies the Property interface.
var PropertyUID = iface.MustUID("01J0PR0PERTY000000000000P1")

// Property is the contract other subsystems use to read, write and observe
// reflected data.
type Property interface {
	iface.Interface

	Name() string
	// GetValue returns the held value. Callers must not modify it; use
	// SetValue.
	GetValue() anyval.Any
	SetValue(v anyval.Any) anyval.Result
	EventOnChanged(q EventQuery) *Event

	Lock()
	Unlock()
	LockShared()
	UnlockShared()

	// NotifyChange announces a change even though the value did not change.
	NotifyChange()

	// Owner returns a strong reference to the container the property is
	// attached to, or an empty Ptr. The caller must Reset it.
	Owner() ref.Ptr[iface.Interface]
	Attaching(owner ref.Weak[iface.Interface], dataContext any) bool
	Detaching(owner ref.Weak[iface.Interface]) bool
}

// Option configures a Generic.
type Option func(*Generic)

// WithLogger sets the logger used for notification tracing.
func WithLogger(l *slog.Logger) Option {
	return func(p *Generic) { p.logger = l }
}

// Generic is the standard Property implementation.
type Generic struct {
	name   string
	logger *slog.Logger

	mu      recursiveMutex
	value   anyval.Any // guarded by mu
	pending bool       // guarded by mu
	mode    NotifyMode // guarded by mu

	evMu  sync.Mutex
	event *Event

	ownerMu     sync.Mutex
	owner       ref.Weak[iface.Interface]
	dataContext any

	self Property
}

var propertyTable = iface.NewTable(
	iface.Introduce(PropertyUID, func(p Property) Property { return p }),
)

// New returns a property with no value storage. Attach storage with
// SetInternalAny before use.
func New(name string, opts ...Option) *Generic {
	p := &Generic{name: name, logger: slog.Default()}
	p.self = p
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewWithValue returns a property holding v.
func NewWithValue(name string, v anyval.Any, opts ...Option) *Generic {
	p := New(name, opts...)
	p.value = v
	return p
}

// GetInterface implements iface.Interface.
func (p *Generic) GetInterface(uid iface.UID) iface.Interface {
	return propertyTable.Lookup(p.self, uid)
}

// Name implements Property.
func (p *Generic) Name() string { return p.name }

// SetInternalAny replaces the value storage without notifying.
// It reports false for a nil v.
func (p *Generic) SetInternalAny(v anyval.Any) bool {
	if v == nil {
		return false
	}
	p.mu.lock()
	p.value = v
	p.mu.unlock()
	return true
}

// GetValue implements Property. It panics when no storage is attached.
func (p *Generic) GetValue() anyval.Any {
	p.mu.lock()
	defer p.mu.unlock()
	return p.mustValue()
}

func (p *Generic) mustValue() anyval.Any {
	if p.value == nil {
		panic("property: " + p.name + " used before value storage was attached")
	}
	return p.value
}

// SetValue implements Property. The held value copies from v; only an
// actual change is announced.
func (p *Generic) SetValue(v anyval.Any) anyval.Result {
	depth := p.mu.lock()
	r := p.mustValue().CopyFrom(v)
	if r == anyval.Success {
		p.markPending(depth, NotifyImmediate)
	}
	p.Unlock()
	return r
}

// markPending records a change. depth is the lock depth including the
// caller's own lock; anything deeper is an outer Lock held by the caller.
func (p *Generic) markPending(depth int, mode NotifyMode) {
	if depth > 1 && mode == NotifyImmediate {
		mode = NotifyDeferred
	}
	if !p.pending || mode == NotifyForced {
		p.mode = mode
	}
	p.pending = true
}

// NotifyChange implements Property.
func (p *Generic) NotifyChange() {
	depth := p.mu.lock()
	p.markPending(depth, NotifyForced)
	p.Unlock()
}

// Lock implements Property. The calling goroutine may lock again; other
// goroutines block until the outermost Unlock.
func (p *Generic) Lock() {
	p.mu.lock()
}

// Unlock implements Property. A change recorded while locked is announced
// after the outermost Unlock has released the lock.
func (p *Generic) Unlock() {
	var (
		fire bool
		mode NotifyMode
	)
	if p.mu.held() && p.mu.depth == 1 && p.pending {
		fire, mode = true, p.mode
		p.pending = false
	}
	p.mu.unlock()
	if fire {
		p.invoke(mode)
	}
}

// LockShared implements Property. Shared and exclusive locking are the same
// for Generic.
func (p *Generic) LockShared() { p.Lock() }

// UnlockShared implements Property.
func (p *Generic) UnlockShared() { p.Unlock() }

func (p *Generic) invoke(mode NotifyMode) {
	observeNotify(mode)
	ev := p.EventOnChanged(NoConstruct)
	if ev == nil {
		return
	}
	if mode != NotifyImmediate {
		p.logger.Debug("property change notification", "property", p.name, "mode", mode.String())
	}
	ev.Invoke(p.self)
}

// EventOnChanged implements Property.
func (p *Generic) EventOnChanged(q EventQuery) *Event {
	p.evMu.Lock()
	defer p.evMu.Unlock()
	if p.event == nil && q == ConstructIfMissing {
		p.event = &Event{}
	}
	return p.event
}

// Owner implements Property.
func (p *Generic) Owner() ref.Ptr[iface.Interface] {
	p.ownerMu.Lock()
	defer p.ownerMu.Unlock()
	return p.owner.Lock()
}

// DataContext returns the context passed to Attaching.
func (p *Generic) DataContext() any {
	p.ownerMu.Lock()
	defer p.ownerMu.Unlock()
	return p.dataContext
}

// Attaching implements Property. It always succeeds.
func (p *Generic) Attaching(owner ref.Weak[iface.Interface], dataContext any) bool {
	p.ownerMu.Lock()
	defer p.ownerMu.Unlock()
	p.owner.Reset()
	p.owner = owner.Clone()
	p.dataContext = dataContext
	return true
}

// Detaching implements Property. It always succeeds.
func (p *Generic) Detaching(ref.Weak[iface.Interface]) bool {
	p.ownerMu.Lock()
	defer p.ownerMu.Unlock()
	p.owner.Reset()
	p.dataContext = nil
	return true
}

var _ Property = (*Generic)(nil)
