// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package animate drives float properties over time with easing tweens.
//
// A Tween animates a property.Property; a PathTween animates one float leaf
// inside a property handle, addressed by path. Neither runs on its own:
// call Update with the elapsed time, or add them to a Player.
package animate

import (
	"reflect"
	"sort"

	"github.com/chewxy/math32"
	"github.com/samber/oops"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/holomush/metaprop/pkg/anyval"
	"github.com/holomush/metaprop/pkg/property"
	"github.com/holomush/metaprop/pkg/propdata"
)

// Animation is anything a Player can advance.
type Animation interface {
	// Update advances by dt seconds and reports whether the animation
	// has finished.
	Update(dt float32) bool
}

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
	"in-bounce":    ease.InBounce,
	"out-bounce":   ease.OutBounce,
	"out-elastic":  ease.OutElastic,
}

// Easing returns the easing function called name.
func Easing(name string) (ease.TweenFunc, bool) {
	fn, ok := easings[name]
	return fn, ok
}

// Easings lists the known easing names in order.
func Easings() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// step clamps dt so a tween never runs backwards.
func step(dt float32) float32 {
	return math32.Max(dt, 0)
}

func floatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// Tween animates a float32 or float64 property.
type Tween struct {
	prop  property.Property
	kind  reflect.Kind
	tween *gween.Tween
	done  bool
	err   error
}

// NewTween starts a tween from the current value of p to to over duration
// seconds. It fails unless p holds a float32 or float64.
func NewTween(p property.Property, to, duration float32, fn ease.TweenFunc) (*Tween, error) {
	v := p.GetValue()
	kind := v.TypeID().Type().Kind()
	from, r := float32(0), anyval.Fail
	switch kind {
	case reflect.Float32:
		from, r = anyval.Get[float32](v)
	case reflect.Float64:
		var f float64
		f, r = anyval.Get[float64](v)
		from = float32(f)
	}
	// named float types fail the read and are rejected with the rest
	if r != anyval.Success {
		return nil, oops.Code("NOT_FLOAT").With("property", p.Name()).With("type", v.TypeID().String()).
			Errorf("property %s is not a float32 or float64", p.Name())
	}
	if fn == nil {
		fn = ease.Linear
	}
	return &Tween{prop: p, kind: kind, tween: gween.New(from, to, duration, fn)}, nil
}

// Update implements Animation. A write the property rejects finishes the
// tween; Err reports it.
func (t *Tween) Update(dt float32) bool {
	if t.done {
		return true
	}
	val, finished := t.tween.Update(step(dt))
	var box anyval.Any
	if t.kind == reflect.Float64 {
		box = anyval.New(float64(val))
	} else {
		box = anyval.New(val)
	}
	if r := t.prop.SetValue(box); !r.OK() {
		t.err = oops.Code("WRITE_REJECTED").With("property", t.prop.Name()).With("result", r.String()).
			Errorf("property %s rejected tween value", t.prop.Name())
		finished = true
	}
	t.done = finished
	return finished
}

// Err returns the write failure that stopped the tween, if any.
func (t *Tween) Err() error { return t.err }

// PathTween animates a float leaf of a property handle.
type PathTween struct {
	handle propdata.PropertyHandle
	path   string
	tween  *gween.Tween
	done   bool
	err    error
}

// NewPathTween starts a tween of the leaf at path inside h, from its current
// value to to over duration seconds.
func NewPathTween(h propdata.PropertyHandle, path string, to, duration float32, fn ease.TweenFunc) (*PathTween, error) {
	var pd propdata.PropertyData
	res := pd.RLockPath(h, path)
	if !res.OK() {
		return nil, oops.Code("PATH_NOT_FOUND").With("path", path).Errorf("no property %s", path)
	}
	v := pd.At(res)
	from, ok := readFloat(v)
	pd.Close()
	if !ok {
		return nil, oops.Code("NOT_FLOAT").With("path", path).Errorf("property %s is not a float", path)
	}
	if fn == nil {
		fn = ease.Linear
	}
	return &PathTween{handle: h, path: path, tween: gween.New(from, to, duration, fn)}, nil
}

func readFloat(v propdata.Value) (float32, bool) {
	if !v.OK() || !floatKind(v.Property.Type.Kind) {
		return 0, false
	}
	if f, ok := propdata.Load[float32](v); ok {
		return f, true
	}
	f, ok := propdata.Load[float64](v)
	return float32(f), ok
}

// Update implements Animation. The path is resolved again on every update,
// so a tween into a slice element finishes with an error once the element
// is gone.
func (t *PathTween) Update(dt float32) bool {
	if t.done {
		return true
	}
	val, finished := t.tween.Update(step(dt))

	var pd propdata.PropertyData
	res := pd.WLockPath(t.handle, t.path)
	if !res.OK() {
		t.err = oops.Code("PATH_NOT_FOUND").With("path", t.path).Errorf("no property %s", t.path)
		t.done = true
		return true
	}
	r := pd.At(res).SetInterface(val)
	pd.Close()
	if !r.OK() {
		t.err = oops.Code("WRITE_REJECTED").With("path", t.path).With("result", r.String()).
			Errorf("property %s rejected tween value", t.path)
		finished = true
	}
	t.done = finished
	return finished
}

// Err returns the failure that stopped the tween, if any.
func (t *PathTween) Err() error { return t.err }
