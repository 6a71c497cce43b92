// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package scene

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/holomush/metaprop/pkg/meta"
	"github.com/holomush/metaprop/pkg/propdata"
	"github.com/holomush/metaprop/pkg/serial"
)

// ErrInvalidTypeName indicates the type name is empty.
var ErrInvalidTypeName = errors.New("type name cannot be empty")

// ErrDuplicateType indicates a type with the same name already exists.
var ErrDuplicateType = errors.New("type already registered")

// ErrTypeNotFound indicates no type matched a name or prefix.
var ErrTypeNotFound = errors.New("type not found")

// AmbiguousTypeError indicates multiple types match a prefix.
type AmbiguousTypeError struct {
	Prefix  string
	Matches []string
}

func (e *AmbiguousTypeError) Error() string {
	sorted := make([]string, len(e.Matches))
	copy(sorted, e.Matches)
	sort.Strings(sorted)
	return fmt.Sprintf("ambiguous type '%s' - matches: %s", e.Prefix, strings.Join(sorted, ", "))
}

// Factory creates an empty document of one type.
type Factory func(opts ...serial.Option) serial.Persistent

// Entry ties a type name to its document factory.
type Entry struct {
	Name        string
	Description string
	Type        reflect.Type
	New         Factory
}

// Registry maps type names to document factories.
// It is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

var sharedRegistryOnce sync.Once
var sharedRegistry *Registry

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds an entry. Returns ErrInvalidTypeName for empty names and
// ErrDuplicateType on duplicates.
func (r *Registry) Register(e Entry) error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrInvalidTypeName
	}
	if e.New == nil {
		return errors.New("document factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[e.Name]; exists {
		return ErrDuplicateType
	}
	r.entries[e.Name] = e
	return nil
}

// MustRegister is Register, panicking on error. Use it during package
// initialization only.
func (r *Registry) MustRegister(e Entry) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Lookup returns the entry registered as name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Resolve finds an entry by exact name or unique prefix.
func (r *Registry) Resolve(nameOrPrefix string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.entries[nameOrPrefix]; ok {
		return e, nil
	}

	var matches []string
	for name := range r.entries {
		if strings.HasPrefix(name, nameOrPrefix) {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return Entry{}, ErrTypeNotFound
	case 1:
		return r.entries[matches[0]], nil
	default:
		return Entry{}, &AmbiguousTypeError{Prefix: nameOrPrefix, Matches: matches}
	}
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EntryFor builds an entry for T whose documents start as zero() and are
// described by props, or by reflection when props is nil.
func EntryFor[T any](name, description string, props []meta.Property, zero func() T) Entry {
	return Entry{
		Name:        name,
		Description: description,
		Type:        reflect.TypeFor[T](),
		New: func(opts ...serial.Option) serial.Persistent {
			if props == nil {
				return serial.NewDocument(zero(), opts...)
			}
			return serial.Wrap(propdata.NewBufferWithMeta(zero(), props), opts...)
		},
	}
}

// DefaultRegistry returns a registry holding the sample types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(EntryFor("Test", "reference layout with nested, fixed and dynamic arrays", TestMeta,
		func() Test { return Test{} }))
	r.MustRegister(EntryFor("Transform", "position, rotation and scale", nil,
		func() Transform { return Transform{Scale: Vec2{1, 1}} }))
	r.MustRegister(EntryFor("Light", "point light", nil,
		func() Light { return Light{Color: Vec4{1, 1, 1, 1}, Intensity: 1, Range: 10, Enabled: true} }))
	return r
}

// SharedRegistry returns a shared default registry instance.
func SharedRegistry() *Registry {
	sharedRegistryOnce.Do(func() {
		sharedRegistry = DefaultRegistry()
	})
	return sharedRegistry
}
