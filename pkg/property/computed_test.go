// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package property_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/metaprop/pkg/anyval"
	"github.com/holomush/metaprop/pkg/deps"
	"github.com/holomush/metaprop/pkg/iface"
	"github.com/holomush/metaprop/pkg/property"
	"github.com/holomush/metaprop/pkg/ref"
)

func TestRead_RecordsDependency(t *testing.T) {
	p := property.NewTyped("width", 4)

	ctx, tr := deps.Begin(context.Background())
	got, r := property.ReadAs[int](ctx, p)
	tr.End()

	require.Equal(t, anyval.Success, r)
	assert.Equal(t, 4, got)
	require.Len(t, tr.Deps(), 1)
	assert.Same(t, p, tr.Deps()[0].Target.(*property.Typed[int]))

	// without a tracker Read is a plain GetValue
	got, _ = property.ReadAs[int](context.Background(), p)
	assert.Equal(t, 4, got)
}

func TestComputed_Recomputes(t *testing.T) {
	width := property.NewTyped("width", 4)
	height := property.NewTyped("height", 3)
	var evals int

	area := property.NewComputed("area", func(ctx context.Context) anyval.Any {
		evals++
		w, _ := property.ReadAs[int](ctx, width)
		h, _ := property.ReadAs[int](ctx, height)
		return anyval.New(w * h)
	})
	defer area.Close()
	n := counter(t, area)

	got, _ := anyval.Get[int](area.GetValue())
	assert.Equal(t, 12, got)
	assert.Len(t, area.Dependencies(), 2)

	width.Set(5)
	got, _ = anyval.Get[int](area.GetValue())
	assert.Equal(t, 15, got)
	assert.Equal(t, int32(1), n.Load())

	// a change that leaves the result equal is not announced
	width.Lock()
	width.Set(3)
	height.Set(5)
	width.Unlock()
	got, _ = anyval.Get[int](area.GetValue())
	assert.Equal(t, 15, got)
	assert.Equal(t, int32(1), n.Load())
	assert.Equal(t, 4, evals)

	assert.Equal(t, anyval.Fail, area.SetValue(anyval.New(1)))
}

func TestComputed_TracksChangingDependencies(t *testing.T) {
	useA := property.NewTyped("useA", true)
	a := property.NewTyped("a", "A")
	b := property.NewTyped("b", "B")

	pick := property.NewComputed("pick", func(ctx context.Context) anyval.Any {
		if v, _ := property.ReadAs[bool](ctx, useA); v {
			return property.Read(ctx, a)
		}
		return property.Read(ctx, b)
	})
	defer pick.Close()

	assert.Nil(t, b.EventOnChanged(property.NoConstruct), "b not read yet")
	useA.Set(false)
	got, _ := anyval.Get[string](pick.GetValue())
	assert.Equal(t, "B", got)
	assert.Equal(t, 0, a.EventOnChanged(property.NoConstruct).HandlerCount())

	b.Set("B2")
	got, _ = anyval.Get[string](pick.GetValue())
	assert.Equal(t, "B2", got)
}

func TestComputed_Close(t *testing.T) {
	src := property.NewTyped("src", 1)
	double := property.NewComputed("double", func(ctx context.Context) anyval.Any {
		v, _ := property.ReadAs[int](ctx, src)
		return anyval.New(v * 2)
	})

	double.Close()
	assert.Equal(t, 0, src.EventOnChanged(property.ConstructIfMissing).HandlerCount())
	assert.Empty(t, double.Dependencies())

	src.Set(10)
	got, _ := anyval.Get[int](double.GetValue())
	assert.Equal(t, 2, got)
}

func TestContainer_AttachDetach(t *testing.T) {
	c := property.NewContainer()
	require.False(t, c.IsNil())

	speed := property.NewTyped("speed", 1.0)
	require.True(t, c.Get().Add(speed))
	assert.False(t, c.Get().Add(property.NewTyped("speed", 2.0)), "duplicate name")

	owner := speed.Owner()
	require.False(t, owner.IsNil())
	assert.True(t, owner.SharesOwnership(c))
	assert.Same(t, c.Get(), speed.DataContext())
	owner.Reset()

	assert.Same(t, speed, c.Get().Find("speed").(*property.Typed[float64]))
	assert.Nil(t, c.Get().Find("missing"))
	assert.Len(t, c.Get().Properties(), 1)

	require.True(t, c.Get().Remove("speed"))
	assert.False(t, c.Get().Remove("speed"))
	assert.True(t, speed.Owner().IsNil())
	c.Reset()
}

func TestContainer_DestroyDetaches(t *testing.T) {
	c := property.NewContainer()
	p := property.NewTyped("size", 3)
	require.True(t, c.Get().Add(p))

	c.Reset()
	assert.True(t, p.Owner().IsNil())
	assert.Nil(t, p.DataContext())
}

func TestContainer_GetInterface(t *testing.T) {
	c := property.NewContainer()
	defer c.Reset()

	asIface := ref.Cast[iface.Interface](c)
	defer asIface.Reset()

	back := ref.Cast[*property.Container](asIface)
	defer back.Reset()
	require.False(t, back.IsNil())
	assert.Same(t, c.Get(), back.Get())

	assert.Nil(t, c.Get().GetInterface(property.PropertyUID))
}
