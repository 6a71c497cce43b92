// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package anyval

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArray_WholeValue(t *testing.T) {
	a := NewArray[float32](1, 2, 3)
	assert.Equal(t, TypeIDOf[[]float32](), a.TypeID())
	assert.Equal(t, TypeIDOf[float32](), a.ItemTypeID())

	got, r := Get[[]float32](a)
	require.Equal(t, Success, r)
	assert.Equal(t, []float32{1, 2, 3}, got)

	assert.Equal(t, NothingToDo, Set(a, []float32{1, 2, 3}))
	assert.Equal(t, Success, Set(a, []float32{4}))
	assert.Equal(t, 1, a.GetSize())

	_, r = Get[float32](a)
	assert.Equal(t, Fail, r)
}

func TestArray_IndexAccess(t *testing.T) {
	a := NewArray("a", "b", "c")

	var out string
	require.Equal(t, Success, a.GetDataAt(1, TypeIDOf[string](), unsafe.Pointer(&out), unsafe.Sizeof(out)))
	assert.Equal(t, "b", out)

	in := "B"
	assert.Equal(t, Success, a.SetDataAt(1, TypeIDOf[string](), unsafe.Pointer(&in), unsafe.Sizeof(in)))
	assert.Equal(t, NothingToDo, a.SetDataAt(1, TypeIDOf[string](), unsafe.Pointer(&in), unsafe.Sizeof(in)))

	tests := []struct {
		name  string
		index int
	}{
		{"negative", -1},
		{"past end", 3},
		{"far past end", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, InvalidArgument, a.GetDataAt(tt.index, TypeIDOf[string](), unsafe.Pointer(&out), unsafe.Sizeof(out)))
			assert.Equal(t, InvalidArgument, a.SetDataAt(tt.index, TypeIDOf[string](), unsafe.Pointer(&in), unsafe.Sizeof(in)))
			assert.Equal(t, InvalidArgument, a.GetAnyAt(tt.index, New("")))
			assert.Equal(t, InvalidArgument, a.SetAnyAt(tt.index, New("")))
			assert.Equal(t, InvalidArgument, a.RemoveAt(tt.index))
		})
	}
}

func TestArray_AnyAt(t *testing.T) {
	a := NewArray(10, 20)

	dst := New(0)
	require.Equal(t, Success, a.GetAnyAt(1, dst))
	assert.Equal(t, 20, dst.Get())

	require.Equal(t, Success, a.SetAnyAt(0, New(11)))
	assert.Equal(t, []int{11, 20}, a.Get())

	assert.Equal(t, Fail, a.SetAnyAt(0, New("eleven")))
}

func TestArray_InsertClampsIndex(t *testing.T) {
	a := NewArray(1, 2)

	require.Equal(t, Success, a.InsertAnyAt(0, New(0)))
	require.Equal(t, Success, a.InsertAnyAt(99, New(3)))
	assert.Equal(t, []int{0, 1, 2, 3}, a.Get())

	assert.Equal(t, InvalidArgument, a.InsertAnyAt(-1, New(5)))
	assert.Equal(t, Fail, a.InsertAnyAt(0, New(1.5)))
}

func TestArray_Remove(t *testing.T) {
	a := NewArray(1, 2, 3)

	require.Equal(t, Success, a.RemoveAt(1))
	assert.Equal(t, []int{1, 3}, a.Get())

	require.Equal(t, Success, a.RemoveAll())
	assert.Equal(t, 0, a.GetSize())
	assert.Equal(t, NothingToDo, a.RemoveAll())
}

func TestArray_Clone(t *testing.T) {
	a := NewArray(vec3{1, 2, 3}, vec3{4, 5, 6})

	c := a.Clone(CloneOptions{Value: CopyValue}).(*Array[vec3])
	assert.Equal(t, a.Get(), c.Get())
	c.Get()[0].X = 100
	assert.InDelta(t, 1.0, a.Get()[0].X, 1e-6)

	d := a.Clone(CloneOptions{Value: DefaultValue})
	assert.Equal(t, 0, d.(ArrayAny).GetSize())

	item := a.Clone(CloneOptions{Value: CopyValue, Role: ItemType})
	got, r := Get[vec3](item)
	require.Equal(t, Success, r)
	assert.Equal(t, vec3{1, 2, 3}, got)

	zero := a.Clone(CloneOptions{Value: DefaultValue, Role: ItemType})
	got, _ = Get[vec3](zero)
	assert.Equal(t, vec3{}, got)
}

func TestArray_CopyFrom(t *testing.T) {
	a := NewArray[int]()
	require.Equal(t, Success, a.CopyFrom(NewArray(1, 2)))
	assert.Equal(t, []int{1, 2}, a.Get())
	assert.Equal(t, Fail, a.CopyFrom(New(3)))
}
