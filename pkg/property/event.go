// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package property

import (
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Token identifies a registered handler.
type Token = ulid.ULID

// Handler is called with the property that changed.
type Handler func(p Property)

// EventQuery selects whether EventOnChanged creates the event.
type EventQuery int

const (
	// NoConstruct returns nil when nobody has subscribed yet.
	NoConstruct EventQuery = iota
	// ConstructIfMissing creates the event on first use.
	ConstructIfMissing
)

type handlerEntry struct {
	token Token
	fn    Handler
}

// Event is a list of change handlers.
// It is safe for concurrent use.
type Event struct {
	mu       sync.Mutex
	handlers []handlerEntry
}

// AddHandler registers fn and returns a token for RemoveHandler.
// Handlers run in registration order.
func (e *Event) AddHandler(fn Handler) Token {
	tok := ulid.Make()
	e.mu.Lock()
	e.handlers = append(e.handlers, handlerEntry{token: tok, fn: fn})
	e.mu.Unlock()
	return tok
}

// RemoveHandler unregisters the handler registered under tok.
func (e *Event) RemoveHandler(tok Token) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := slices.IndexFunc(e.handlers, func(h handlerEntry) bool { return h.token == tok })
	if i < 0 {
		return false
	}
	e.handlers = slices.Delete(e.handlers, i, i+1)
	return true
}

// HandlerCount returns the number of registered handlers.
func (e *Event) HandlerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers)
}

// Invoke calls every handler with p. Handlers registered or removed while
// Invoke runs take effect on the next call.
func (e *Event) Invoke(p Property) {
	e.mu.Lock()
	hs := slices.Clone(e.handlers)
	e.mu.Unlock()
	for _, h := range hs {
		h.fn(p)
	}
}
