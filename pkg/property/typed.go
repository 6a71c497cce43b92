// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package property

import (
	"context"

	"github.com/holomush/metaprop/pkg/anyval"
	"github.com/holomush/metaprop/pkg/deps"
)

// Typed is a Generic holding a T, with typed accessors.
type Typed[T any] struct {
	*Generic
}

// NewTyped returns a property holding v.
func NewTyped[T any](name string, v T, opts ...Option) *Typed[T] {
	t := &Typed[T]{Generic: NewWithValue(name, anyval.New(v), opts...)}
	t.self = t
	return t
}

// Get returns the held value.
func (t *Typed[T]) Get() T {
	v, _ := anyval.Get[T](t.GetValue())
	return v
}

// Set stores v, announcing the change if there was one.
func (t *Typed[T]) Set(v T) anyval.Result {
	return t.SetValue(anyval.New(v))
}

// Read returns p's value and records p as a dependency of the evaluation
// carried by ctx.
func Read(ctx context.Context, p Property) anyval.Any {
	deps.Record(ctx, p)
	return p.GetValue()
}

// ReadAs is Read followed by a typed get.
func ReadAs[T any](ctx context.Context, p Property) (T, anyval.Result) {
	return anyval.Get[T](Read(ctx, p))
}
