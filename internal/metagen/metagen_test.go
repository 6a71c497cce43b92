// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package metagen_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/metaprop/internal/metagen"
	"github.com/holomush/metaprop/internal/scene"
)

const scenePkg = "github.com/holomush/metaprop/internal/scene"

func TestGenerate_Test(t *testing.T) {
	out, err := metagen.Generate(scenePkg, "scene", "TestMeta", reflect.TypeFor[scene.Test]())
	require.NoError(t, err)
	src := string(out)

	assert.True(t, strings.HasPrefix(src, "// SPDX-License-Identifier: Apache-2.0\n"))
	assert.Contains(t, src, "// Code generated by metaprop gen. DO NOT EDIT.")
	assert.Contains(t, src, "package scene\n")
	assert.Contains(t, src, `"github.com/holomush/metaprop/pkg/meta"`)
	assert.Contains(t, src, `"unsafe"`)
	assert.Contains(t, src, `meta.Scalar[float32]("fValue", unsafe.Offsetof(Test{}.FValue)),`)
	assert.Contains(t, src, `meta.Struct[Vec4]("vec4", unsafe.Offsetof(Test{}.Vec4), []meta.Property{`)
	assert.Contains(t, src, `meta.FixedArray[[4]Vec2]("vec2Array", unsafe.Offsetof(Test{}.Vec2Array), meta.Element[Vec2]([]meta.Property{`)
	assert.Contains(t, src, `meta.Slice[float32]("fVector", unsafe.Offsetof(Test{}.FVector), meta.Element[float32](nil)),`)
	assert.NotContains(t, src, "scene.Vec2", "local types stay unqualified")
}

func TestGenerate_MatchesCheckedInTable(t *testing.T) {
	out, err := metagen.Generate(scenePkg, "scene", "TestMeta", reflect.TypeFor[scene.Test]())
	require.NoError(t, err)

	checkedIn, err := os.ReadFile(filepath.Join("..", "scene", "test_meta.go"))
	require.NoError(t, err)

	body := func(src string) string {
		i := strings.Index(src, "// TestMeta describes Test.")
		require.GreaterOrEqual(t, i, 0)
		return src[i:]
	}
	assert.Equal(t, body(string(checkedIn)), body(string(out)), "run go generate ./internal/scene")
}

func TestGenerate_Flags(t *testing.T) {
	out, err := metagen.Generate(scenePkg, "scene", "LightMeta", reflect.TypeFor[scene.Light]())
	require.NoError(t, err)
	assert.Contains(t, string(out),
		`meta.Scalar[uint32]("serial", unsafe.Offsetof(Light{}.Serial)).WithFlags(meta.FlagReadOnly),`)
	assert.Contains(t, string(out), `meta.FixedArray[[4]float32]("flicker", unsafe.Offsetof(Light{}.Flicker), meta.Element[float32](nil)),`)
}

type node struct {
	Label    string        `meta:"label"`
	Children []node        `meta:"children"`
	Grid     [2][3]int16   `meta:"grid,hidden"`
	Timeout  time.Duration `meta:"timeout,readonly,hidden"`
	Skipped  int           `meta:"-"`
	private  int
}

// Tree is exported but its members are not reachable from example.com/x.
type Tree struct {
	Root node `meta:"root"`
}

type anonymous struct {
	Inner struct{ A int }
}

func TestGenerate_Shapes(t *testing.T) {
	typ := reflect.TypeFor[node]()
	out, err := metagen.Generate(typ.PkgPath(), "metagen_test", "NodeMeta", typ)
	require.NoError(t, err)
	src := string(out)

	assert.Contains(t, src, `meta.Slice[node]("children", unsafe.Offsetof(node{}.Children), meta.Element[node](nil)),`)
	assert.Contains(t, src, `meta.FixedArray[[2][3]int16]("grid", unsafe.Offsetof(node{}.Grid), meta.FixedArray[[3]int16]("", 0, meta.Element[int16](nil))).WithFlags(meta.FlagHidden),`)
	assert.Contains(t, src, `meta.Scalar[time.Duration]("timeout", unsafe.Offsetof(node{}.Timeout)).WithFlags(meta.FlagReadOnly | meta.FlagHidden),`)
	assert.NotContains(t, src, "Skipped")
	assert.NotContains(t, src, "private")
	assert.NotContains(t, src, "metagentest", "the package's own types stay unqualified")
}

func TestGenerate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
	}{
		{"nil", nil},
		{"not a struct", reflect.TypeFor[int]()},
		{"anonymous struct", reflect.TypeFor[struct{ A int }]()},
		{"anonymous member", reflect.TypeFor[anonymous]()},
		{"unexported type from another package", reflect.TypeFor[node]()},
		{"unexported member type from another package", reflect.TypeFor[Tree]()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := metagen.Generate("example.com/x", "x", "XMeta", tt.typ)
			require.Error(t, err)
			oopsErr, ok := oops.AsOops(err)
			require.True(t, ok)
			assert.Equal(t, "UNSUPPORTED_TYPE", oopsErr.Code())
		})
	}
}

func TestGenerator_MultipleTables(t *testing.T) {
	g := metagen.NewGenerator(scenePkg, "scene")
	require.NoError(t, g.Add("TransformMeta", reflect.TypeFor[scene.Transform]()))
	require.NoError(t, g.Add("LightMeta", reflect.TypeFor[scene.Light]()))

	out, err := g.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(out), "var TransformMeta = []meta.Property{")
	assert.Contains(t, string(out), "var LightMeta = []meta.Property{")
	assert.Equal(t, 1, strings.Count(string(out), "package scene"))
}

func TestNames(t *testing.T) {
	assert.Equal(t, "TestMeta", metagen.VarName(reflect.TypeFor[scene.Test]()))
	assert.Equal(t, "test_meta.go", metagen.FileName(reflect.TypeFor[scene.Test]()))
	assert.Equal(t, "point_light_meta.go", metagen.FileName(reflect.TypeFor[PointLight]()))
}

type PointLight struct{}
