// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package scene holds the reflected sample types the CLI and scripts work
// on, and a registry that creates documents of them by name.
package scene

import "github.com/chewxy/math32"

//go:generate go run ../../cmd/metaprop gen --document-type Test -o test_meta.go

// Vec2 is a 2D vector.
type Vec2 struct {
	X float32 `meta:"x"`
	Y float32 `meta:"y"`
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Scale returns v*s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the length of v.
func (v Vec2) Len() float32 { return math32.Sqrt(v.X*v.X + v.Y*v.Y) }

// Vec4 is a 4D vector, also used for RGBA colors.
type Vec4 struct {
	X float32 `meta:"x"`
	Y float32 `meta:"y"`
	Z float32 `meta:"z"`
	W float32 `meta:"w"`
}

// Clamp returns v with every component limited to [lo, hi].
func (v Vec4) Clamp(lo, hi float32) Vec4 {
	c := func(f float32) float32 { return math32.Min(math32.Max(f, lo), hi) }
	return Vec4{c(v.X), c(v.Y), c(v.Z), c(v.W)}
}

// Test is the reference layout for path resolution: a scalar, a nested
// struct, a fixed array of structs and a dynamic array.
type Test struct {
	FValue    float32   `meta:"fValue"`
	Vec4      Vec4      `meta:"vec4"`
	Vec2Array [4]Vec2   `meta:"vec2Array"`
	FVector   []float32 `meta:"fVector"`
}

// Transform places an object in the plane.
type Transform struct {
	Position Vec2    `meta:"position"`
	Rotation float32 `meta:"rotation"`
	Scale    Vec2    `meta:"scale"`
}

// Forward returns the unit vector the transform faces.
func (t Transform) Forward() Vec2 {
	sin, cos := math32.Sin(t.Rotation), math32.Cos(t.Rotation)
	return Vec2{X: cos, Y: sin}
}

// Apply maps a local point to world coordinates.
func (t Transform) Apply(p Vec2) Vec2 {
	sin, cos := math32.Sin(t.Rotation), math32.Cos(t.Rotation)
	s := Vec2{p.X * t.Scale.X, p.Y * t.Scale.Y}
	return Vec2{s.X*cos - s.Y*sin, s.X*sin + s.Y*cos}.Add(t.Position)
}

// Light is a point light.
type Light struct {
	Color     Vec4       `meta:"color"`
	Intensity float32    `meta:"intensity"`
	Range     float32    `meta:"range"`
	Enabled   bool       `meta:"enabled"`
	Flicker   [4]float32 `meta:"flicker"`
	Serial    uint32     `meta:"serial,readonly"`
}

// Radiance returns the light color scaled by its intensity, or black when
// the light is off.
func (l Light) Radiance() Vec4 {
	if !l.Enabled {
		return Vec4{}
	}
	return Vec4{l.Color.X * l.Intensity, l.Color.Y * l.Intensity, l.Color.Z * l.Intensity, l.Color.W}
}
