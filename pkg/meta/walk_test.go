// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package meta

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/metaprop/pkg/anyval"
	"github.com/holomush/metaprop/pkg/errutil"
)

func TestOf_ReflectsLayout(t *testing.T) {
	props := Of[testStruct]()
	require.Len(t, props, 4)

	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"fValue", "vec4", "vec2Array", "fVector"}, names)

	assert.Equal(t, anyval.TypeIDOf[float32](), props[0].Type.ID)
	assert.Len(t, props[1].MetaData.MemberProperties, 4)

	arr := props[2]
	assert.True(t, arr.Type.IsArray)
	assert.Equal(t, 4, arr.Count)
	require.NotNil(t, arr.ContainerMethods)
	assert.Nil(t, arr.ContainerMethods.Size)
	assert.Len(t, arr.ContainerMethods.Property.MetaData.MemberProperties, 2)

	vec := props[3]
	assert.False(t, vec.Type.IsArray)
	assert.True(t, vec.IsDynamic())
	require.NotNil(t, vec.ContainerMethods.Size)
	assert.Equal(t, reflect.Slice, vec.Type.Kind)
}

func TestOf_Cached(t *testing.T) {
	a := Of[testStruct]()
	b := For(reflect.TypeFor[*testStruct]())
	require.NotEmpty(t, a)
	assert.Same(t, &a[0], &b[0])
}

func TestFor_Tags(t *testing.T) {
	type tagged struct {
		Plain    int
		Renamed  int    `meta:"other"`
		Skipped  int    `meta:"-"`
		Locked   string `meta:"locked,readonly"`
		Secret   string `meta:",hidden"`
		internal int
	}
	_ = tagged{}.internal

	props := For(reflect.TypeFor[tagged]())
	require.Len(t, props, 4)
	assert.Equal(t, "Plain", props[0].Name)
	assert.Equal(t, "other", props[1].Name)
	assert.Equal(t, HashName("other"), props[1].Hash)
	assert.Equal(t, "locked", props[2].Name)
	assert.Equal(t, FlagReadOnly, props[2].Flags)
	assert.Equal(t, "Secret", props[3].Name)
	assert.Equal(t, FlagHidden, props[3].Flags)

	assert.Equal(t, -1, Lookup(props, "Skipped"))
	assert.Equal(t, -1, Lookup(props, "internal"))
	assert.Equal(t, 1, Lookup(props, "other"))
}

type treeNode struct {
	Value    int        `meta:"value"`
	Children []treeNode `meta:"children"`
}

func TestFor_RecursiveType(t *testing.T) {
	props := Of[treeNode]()
	require.Len(t, props, 2)
	elem := props[1].ContainerMethods.Property
	assert.Empty(t, elem.MetaData.MemberProperties)

	assert.Nil(t, For(reflect.TypeFor[int]()))
	assert.Nil(t, For(nil))
}

func TestWalk_StaticPaths(t *testing.T) {
	paths := Paths(handBuilt(), nil)
	assert.Equal(t, []string{
		"fValue",
		"vec4", "vec4.x", "vec4.y", "vec4.z", "vec4.w",
		"vec2Array",
		"vec2Array[0]", "vec2Array[0].x", "vec2Array[0].y",
		"vec2Array[1]", "vec2Array[1].x", "vec2Array[1].y",
		"vec2Array[2]", "vec2Array[2].x", "vec2Array[2].y",
		"vec2Array[3]", "vec2Array[3].x", "vec2Array[3].y",
		"fVector",
	}, paths)
}

func TestWalk_AgreesWithFindProperty(t *testing.T) {
	obj := onHeap(testStruct{FVector: []float32{1, 2}})
	base := unsafe.Pointer(obj)
	props := Of[testStruct]()

	var seen int
	Walk(props, base, func(res PropertyOffset) bool {
		seen++
		found := FindPropertyFrom(props, res.PropertyPath, base)
		require.True(t, found.OK(), res.PropertyPath)
		assert.Equal(t, found.Offset, res.Offset, res.PropertyPath)
		assert.Equal(t, found.Ptr, res.Ptr, res.PropertyPath)
		return true
	})
	assert.Equal(t, 22, seen)
}

func TestWalk_Stops(t *testing.T) {
	var seen []string
	Walk(handBuilt(), nil, func(res PropertyOffset) bool {
		seen = append(seen, res.PropertyPath)
		return len(seen) < 3
	})
	assert.Equal(t, []string{"fValue", "vec4", "vec4.x"}, seen)
}

func TestMatch(t *testing.T) {
	props := handBuilt()

	tests := []struct {
		pattern string
		want    []string
	}{
		{"vec4.*", []string{"vec4.x", "vec4.y", "vec4.z", "vec4.w"}},
		{"vec2Array.*.x", []string{"vec2Array[0].x", "vec2Array[1].x", "vec2Array[2].x", "vec2Array[3].x"}},
		{"vec2Array.2", []string{"vec2Array[2]"}},
		{"f*", []string{"fValue", "fVector"}},
		{"*.y", []string{"vec4.y"}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := Match(props, tt.pattern, nil)
			require.NoError(t, err)
			var paths []string
			for _, r := range got {
				paths = append(paths, r.PropertyPath)
			}
			assert.Equal(t, tt.want, paths)
		})
	}

	all, err := Match(props, "**", nil)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestMatch_InvalidPattern(t *testing.T) {
	_, err := Match(handBuilt(), "", nil)
	require.Error(t, err)

	for _, pattern := range []string{"vec4.{x", "vec4.x}", "vec2Array[0.x", "vec2Array0].x", "vec2Array[[0]].x"} {
		_, err = Match(handBuilt(), pattern, nil)
		require.Error(t, err, pattern)
		errutil.AssertErrorCode(t, err, "INVALID_PATTERN")
	}

	got, err := Match(handBuilt(), "vec4.{x,y}", nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
