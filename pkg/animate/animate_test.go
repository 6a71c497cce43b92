// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package animate_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"

	"github.com/holomush/metaprop/pkg/animate"
	"github.com/holomush/metaprop/pkg/anyval"
	"github.com/holomush/metaprop/pkg/errutil"
	"github.com/holomush/metaprop/pkg/propdata"
	"github.com/holomush/metaprop/pkg/property"
)

type light struct {
	Intensity float32   `meta:"intensity"`
	Range     float64   `meta:"range"`
	Name      string    `meta:"name"`
	Flicker   []float32 `meta:"flicker"`
}

func TestTween_ReachesTarget(t *testing.T) {
	p := property.NewTyped[float32]("alpha", 0)
	var changes atomic.Int32
	p.EventOnChanged(property.ConstructIfMissing).AddHandler(func(property.Property) { changes.Add(1) })

	tw, err := animate.NewTween(p, 10, 1, ease.Linear)
	require.NoError(t, err)

	assert.False(t, tw.Update(0.5))
	assert.InDelta(t, 5, p.Get(), 0.01)
	assert.True(t, tw.Update(0.5))
	assert.InDelta(t, 10, p.Get(), 0.01)
	assert.True(t, tw.Update(0.5), "stays finished")
	assert.NoError(t, tw.Err())
	assert.Equal(t, int32(2), changes.Load())
}

func TestTween_Float64AndNegativeStep(t *testing.T) {
	p := property.NewTyped("scale", 2.0)
	tw, err := animate.NewTween(p, 4, 2, nil)
	require.NoError(t, err)

	assert.False(t, tw.Update(-1), "negative steps do not rewind")
	assert.InDelta(t, 2.0, p.Get(), 0.001)
	tw.Update(1)
	assert.InDelta(t, 3.0, p.Get(), 0.001)
}

type meters float32

func TestTween_RejectsNonFloat(t *testing.T) {
	_, err := animate.NewTween(property.NewTyped("count", 3), 1, 1, ease.Linear)
	errutil.AssertErrorCode(t, err, "NOT_FLOAT")

	_, err = animate.NewTween(property.NewTyped[meters]("depth", 2), 1, 1, ease.Linear)
	errutil.AssertErrorCode(t, err, "NOT_FLOAT")
}

func TestTween_WriteRejected(t *testing.T) {
	src := property.NewTyped[float32]("src", 1)
	derived := property.NewComputed("derived", func(ctx context.Context) anyval.Any {
		v, _ := property.ReadAs[float32](ctx, src)
		return anyval.New(v * 2)
	})
	defer derived.Close()

	tw, err := animate.NewTween(derived, 10, 1, ease.Linear)
	require.NoError(t, err)
	assert.True(t, tw.Update(0.1))
	errutil.AssertErrorCode(t, tw.Err(), "WRITE_REJECTED")
}

func TestPathTween(t *testing.T) {
	h := propdata.NewBuffer(light{Intensity: 1, Range: 10, Flicker: []float32{0, 0}})

	intensity, err := animate.NewPathTween(h, "intensity", 3, 1, ease.Linear)
	require.NoError(t, err)
	rng, err := animate.NewPathTween(h, "range", 0, 0.5, ease.Linear)
	require.NoError(t, err)
	flicker, err := animate.NewPathTween(h, "flicker[1]", 1, 1, ease.Linear)
	require.NoError(t, err)

	var player animate.Player
	player.Add(intensity)
	player.Add(rng)
	player.Add(flicker)

	assert.Equal(t, 2, player.Advance(0.5), "range finished")
	got := h.Snapshot()
	assert.InDelta(t, 2, got.Intensity, 0.01)
	assert.InDelta(t, 0, got.Range, 0.01)
	assert.InDelta(t, 0.5, got.Flicker[1], 0.01)

	h.Update(func(l *light) { l.Flicker = nil })
	assert.Equal(t, 0, player.Advance(0.5))
	errutil.AssertErrorCode(t, flicker.Err(), "PATH_NOT_FOUND")
	assert.NoError(t, intensity.Err())
	assert.InDelta(t, 3, h.Snapshot().Intensity, 0.01)
}

func TestNewPathTween_Rejects(t *testing.T) {
	h := propdata.NewBuffer(light{})

	_, err := animate.NewPathTween(h, "missing", 1, 1, ease.Linear)
	errutil.AssertErrorCode(t, err, "PATH_NOT_FOUND")
	_, err = animate.NewPathTween(h, "name", 1, 1, ease.Linear)
	errutil.AssertErrorCode(t, err, "NOT_FLOAT")
	_, err = animate.NewPathTween(h, "flicker[0]", 1, 1, ease.Linear)
	errutil.AssertErrorCode(t, err, "PATH_NOT_FOUND")

	// the read lock is released on every path
	h.Update(func(l *light) { l.Name = "unlocked" })
}

type addOnUpdate struct {
	player *animate.Player
	added  bool
}

func (a *addOnUpdate) Update(float32) bool {
	if !a.added {
		a.added = true
		a.player.Add(&addOnUpdate{player: a.player, added: true})
	}
	return false
}

func TestPlayer_AddDuringAdvance(t *testing.T) {
	var player animate.Player
	player.Add(&addOnUpdate{player: &player})

	assert.Equal(t, 2, player.Advance(0.1))
	assert.Equal(t, 2, player.Len())
}

func TestEasing(t *testing.T) {
	fn, ok := animate.Easing("out-bounce")
	require.True(t, ok)
	assert.InDelta(t, 1, fn(1, 0, 1, 1), 0.001)

	_, ok = animate.Easing("sideways")
	assert.False(t, ok)
	assert.Contains(t, animate.Easings(), "linear")
	assert.IsIncreasing(t, animate.Easings())
}
