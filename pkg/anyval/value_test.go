// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package anyval

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/metaprop/pkg/iface"
)

type vec3 struct {
	X, Y, Z float32
}

type mesh struct {
	Name     string
	Vertices []vec3
}

func TestValue_RoundTrip(t *testing.T) {
	t.Run("float32", func(t *testing.T) {
		a := New[float32](1.5)
		var out float32
		require.Equal(t, Success, a.GetValue(&out))
		assert.InDelta(t, 1.5, out, 1e-6)
	})
	t.Run("string", func(t *testing.T) {
		got, r := Get[string](New("hello"))
		require.Equal(t, Success, r)
		assert.Equal(t, "hello", got)
	})
	t.Run("struct", func(t *testing.T) {
		v := vec3{1, 2, 3}
		got, r := Get[vec3](New(v))
		require.Equal(t, Success, r)
		assert.Equal(t, v, got)
	})
}

func TestValue_SetValueReportsNothingToDo(t *testing.T) {
	a := New[int32](0)
	assert.Equal(t, Success, a.SetValue(7))
	assert.Equal(t, NothingToDo, a.SetValue(7))
	assert.Equal(t, NothingToDo, Set[int32](a, 7))
	assert.Equal(t, Success, Set[int32](a, 8))
	assert.Equal(t, int32(8), a.Get())
}

func TestValue_NonComparableAlwaysChanges(t *testing.T) {
	a := New(mesh{Name: "m"})
	assert.Equal(t, Success, a.SetValue(mesh{Name: "m"}))
	assert.Equal(t, Success, a.SetValue(mesh{Name: "m"}))
}

func TestValue_TypeMismatch(t *testing.T) {
	a := New[float32](2)

	_, r := Get[float64](a)
	assert.Equal(t, Fail, r)
	assert.Equal(t, Fail, Set[int](a, 3))

	var out float32
	assert.Equal(t, InvalidArgument, a.GetData(TypeIDOf[float32](), unsafe.Pointer(&out), 8))
	assert.Equal(t, InvalidArgument, a.GetData(TypeIDOf[float32](), nil, 4))
	assert.Equal(t, InvalidArgument, a.CopyFrom(nil))
	assert.Equal(t, Fail, a.CopyFrom(New("x")))
}

func TestValue_Clone(t *testing.T) {
	src := New(mesh{Name: "cube", Vertices: []vec3{{1, 0, 0}}})

	copied := src.Clone(CloneOptions{Value: CopyValue})
	got, r := Get[mesh](copied)
	require.Equal(t, Success, r)
	assert.Equal(t, src.Get(), got)

	// deep copy: mutating the clone leaves the source alone
	got.Vertices[0].X = 42
	stored := copied.(*Value[mesh]).Get()
	stored.Vertices[0].X = 99
	assert.InDelta(t, 1.0, src.Get().Vertices[0].X, 1e-6)

	def := src.Clone(CloneOptions{Value: DefaultValue})
	got, r = Get[mesh](def)
	require.Equal(t, Success, r)
	assert.Equal(t, mesh{}, got)

	arr := New[float32](3).Clone(CloneOptions{Value: CopyValue, Role: ArrayType})
	require.IsType(t, &Array[float32]{}, arr)
	assert.Equal(t, []float32{3}, arr.(*Array[float32]).Get())

	empty := New[float32](3).Clone(CloneOptions{Value: DefaultValue, Role: ArrayType})
	assert.Equal(t, 0, empty.(ArrayAny).GetSize())
}

func TestValue_ResetValue(t *testing.T) {
	a := New(5)
	assert.Equal(t, Success, a.ResetValue())
	assert.Equal(t, 0, a.Get())
	assert.Equal(t, NothingToDo, a.ResetValue())
}

type node interface {
	iface.Interface
	ID() int
}

type drawable interface {
	iface.Interface
	Draw() string
}

type visual interface {
	iface.Interface
	Visible() bool
}

var (
	nodeUID     = iface.MustUID("01HZY000000000000000000N0D")
	drawableUID = iface.MustUID("01HZY0000000000000000DRAW0")
	visualUID   = iface.MustUID("01HZY0000000000000000V1SVA")
)

// sprite implements node and drawable directly and exposes visual through
// a separate component.
type sprite struct {
	id  int
	vis *visibility
}

type visibility struct{ on bool }

var visibilityTable = iface.NewTable(
	iface.Introduce(visualUID, func(v *visibility) visual { return v }),
)

func (v *visibility) GetInterface(uid iface.UID) iface.Interface {
	return visibilityTable.Lookup(v, uid)
}
func (v *visibility) Visible() bool { return v.on }

var spriteTable = iface.NewTable(
	iface.Introduce(nodeUID, func(s *sprite) node { return s }),
	iface.Introduce(drawableUID, func(s *sprite) drawable { return s }),
	iface.Introduce(visualUID, func(s *sprite) visual { return s.vis }),
)

func (s *sprite) GetInterface(uid iface.UID) iface.Interface { return spriteTable.Lookup(s, uid) }
func (s *sprite) ID() int                                   { return s.id }
func (s *sprite) Draw() string                              { return "sprite" }

func newSprite(id int) *sprite {
	return &sprite{id: id, vis: &visibility{on: true}}
}

func TestValue_PointerCompatibility(t *testing.T) {
	s := newSprite(1)
	a := New[node](s)

	t.Run("get as implemented interface", func(t *testing.T) {
		d, r := Get[drawable](a)
		require.Equal(t, Success, r)
		assert.Equal(t, "sprite", d.Draw())
	})

	t.Run("get through interface cast", func(t *testing.T) {
		v, r := Get[visual](a)
		require.Equal(t, Success, r)
		assert.Same(t, s.vis, v.(*visibility))
	})

	t.Run("get as dynamic concrete type", func(t *testing.T) {
		got, r := Get[*sprite](a)
		require.Equal(t, Success, r)
		assert.Same(t, s, got)
	})

	t.Run("get as unrelated type", func(t *testing.T) {
		_, r := Get[*visibility](a)
		assert.Equal(t, Fail, r)
	})

	t.Run("set from concrete subtype", func(t *testing.T) {
		other := newSprite(2)
		require.Equal(t, Success, Set(a, other))
		assert.Equal(t, 2, a.Get().ID())
		assert.Equal(t, NothingToDo, Set(a, other))
	})

	t.Run("set nil interface", func(t *testing.T) {
		var none drawable
		require.Equal(t, Success, Set(a, none))
		assert.Nil(t, a.Get())
	})
}

func TestValue_GetCompatibleTypes(t *testing.T) {
	Register[*sprite]()

	a := New[node](newSprite(1))

	get := a.GetCompatibleTypes(CompatGet)
	require.NotEmpty(t, get)
	assert.Equal(t, TypeIDOf[node](), get[0])
	assert.Contains(t, get, TypeIDOf[iface.Interface]())
	assert.NotContains(t, get, TypeIDOf[*sprite]())

	set := a.GetCompatibleTypes(CompatSet)
	assert.Contains(t, set, TypeIDOf[*sprite]())
	assert.NotContains(t, set, TypeIDOf[iface.Interface]())

	assert.True(t, a.IsCompatible(TypeIDOf[*sprite](), CompatSet))
	assert.False(t, a.IsCompatible(TypeIDOf[*sprite](), CompatGet))
	assert.False(t, a.IsCompatible(TypeIDOf[*sprite](), CompatBoth))

	scalar := New[float32](0)
	assert.Equal(t, []TypeID{TypeIDOf[float32]()}, scalar.GetCompatibleTypes(CompatBoth))
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "nothing_to_do", NothingToDo.String())
	assert.Equal(t, "fail", Fail.String())
	assert.Equal(t, "invalid_argument", InvalidArgument.String())
	assert.True(t, NothingToDo.OK())
	assert.False(t, Fail.OK())
}
