// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package property

import (
	"slices"
	"sync"

	"github.com/holomush/metaprop/pkg/iface"
	"github.com/holomush/metaprop/pkg/ref"
)

// ContainerUID identifies *Container.
var ContainerUID = iface.MustUID("01J0C0NTA1NER00000000000C1")

// Container is a named collection of properties that owns their
// attachment. Properties hold only a weak reference back to it.
type Container struct {
	mu    sync.RWMutex
	props []Property
	self  ref.Weak[iface.Interface]
}

var containerTable = iface.NewTable(
	iface.Introduce(ContainerUID, func(c *Container) *Container { return c }),
)

// NewContainer returns an empty container. Properties are detached when
// the last strong reference is reset.
func NewContainer() ref.Ptr[*Container] {
	c := &Container{}
	p := ref.NewWithDeleter(c, (*Container).detachAll)
	asIface := ref.Cast[iface.Interface](p)
	c.self = ref.MakeWeak(asIface)
	asIface.Reset()
	return p
}

// GetInterface implements iface.Interface.
func (c *Container) GetInterface(uid iface.UID) iface.Interface {
	return containerTable.Lookup(c, uid)
}

// Add attaches p. It reports false when a property with the same name is
// already present.
func (c *Container) Add(p Property) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(p.Name()) >= 0 {
		return false
	}
	if !p.Attaching(c.self, c) {
		return false
	}
	c.props = append(c.props, p)
	return true
}

// Remove detaches the property called name.
func (c *Container) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(name)
	if i < 0 {
		return false
	}
	c.props[i].Detaching(c.self)
	c.props = slices.Delete(c.props, i, i+1)
	return true
}

// Find returns the property called name, or nil.
func (c *Container) Find(name string) Property {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(name); i >= 0 {
		return c.props[i]
	}
	return nil
}

// Properties returns the attached properties in insertion order.
func (c *Container) Properties() []Property {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.props)
}

func (c *Container) indexOf(name string) int {
	return slices.IndexFunc(c.props, func(p Property) bool { return p.Name() == name })
}

func (c *Container) detachAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.props {
		p.Detaching(c.self)
	}
	c.props = nil
	c.self.Reset()
}
