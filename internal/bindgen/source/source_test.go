package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webbridge/internal/bindgen/meta"
)

func loadCalc(t *testing.T) meta.Window {
	t.Helper()
	snap, err := New(Config{Dir: "testdata/calc"}, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Windows, 1)
	return snap.Windows[0]
}

func methodByName(t *testing.T, w meta.Window, name string) meta.Method {
	t.Helper()
	for _, m := range w.Methods {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("method %s not found", name)
	return meta.Method{}
}

func TestLoadWindow(t *testing.T) {
	w := loadCalc(t)
	assert.Equal(t, "CalcWindow", w.Name)
	assert.Equal(t, "calc", w.Package)
	assert.True(t, filepath.IsAbs(w.Dir))
	assert.Equal(t, "context", w.Imports["context"])
	assert.Equal(t, "github.com/GriffinCanCode/webbridge/internal/domain/window", w.Imports["window"])

	var names []string
	for _, m := range w.Methods {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Add", "Points", "Transform", "Chain", "Now", "Reset"}, names)
}

func TestMethodShapes(t *testing.T) {
	w := loadCalc(t)

	add := methodByName(t, w, "Add")
	assert.Equal(t, "add", add.Exposed())
	assert.Equal(t, "Add sums two numbers.", add.Doc)
	require.Len(t, add.Params, 2)
	assert.Equal(t, "a", add.Params[0].Name)
	assert.Equal(t, "float64", add.Params[0].GoType)
	assert.Equal(t, meta.NumberType, add.Params[1].Type)
	assert.Equal(t, meta.NumberType, add.Result)
	assert.False(t, add.HasError)

	points := methodByName(t, w, "Points")
	assert.True(t, points.HasContext)
	assert.True(t, points.Async())
	require.Len(t, points.Params, 1)
	assert.Equal(t, "n", points.Params[0].Name)
	assert.Equal(t, "[]Point", points.ResultGoType)
	seq := points.Result.(meta.Async).Elem.(meta.Sequence)
	assert.Equal(t, "Point", seq.Elem.(*meta.Composite).Name)

	scale := methodByName(t, w, "Transform")
	assert.Equal(t, "scale", scale.Exposed())
	assert.True(t, scale.HasError)
	assert.Equal(t, meta.NumberType, scale.Params[1].Type, "named scalar resolves to its underlying type")

	now := methodByName(t, w, "Now")
	assert.True(t, now.Global)

	reset := methodByName(t, w, "Reset")
	assert.Equal(t, meta.VoidType, reset.Result)
	assert.True(t, reset.HasError)
}

func TestCompositeFields(t *testing.T) {
	w := loadCalc(t)

	point := methodByName(t, w, "Transform").Params[0].Type.(meta.Sequence).Elem.(*meta.Composite)
	assert.Equal(t, "calc.Point", point.ID)

	visible := map[string]bool{}
	for _, f := range point.Fields {
		visible[f.Name] = f.Serializable()
	}
	assert.Equal(t, map[string]bool{"x": true, "y": true, "label": true, "Ignored": false, "secret": false}, visible)

	t.Run("same identity everywhere", func(t *testing.T) {
		fromAsync := methodByName(t, w, "Points").Result.(meta.Async).Elem.(meta.Sequence).Elem
		assert.Same(t, point, fromAsync)
	})

	t.Run("self reference", func(t *testing.T) {
		node := methodByName(t, w, "Chain").Result.(*meta.Composite)
		require.Len(t, node.Fields, 3)
		assert.Same(t, node, node.Fields[1].Type)
		assert.Same(t, node, node.Fields[2].Type.(meta.Sequence).Elem)
	})

	t.Run("foreign and embedded", func(t *testing.T) {
		stamp := methodByName(t, w, "Now").Result.(*meta.Composite)
		types := map[string]meta.Type{}
		for _, f := range stamp.Fields {
			types[f.Name] = f.Type
		}
		assert.Equal(t, meta.StringType, types["by"], "embedded struct is inlined")
		assert.Equal(t, meta.StringType, types["at"])
		assert.Equal(t, meta.StringType, types["bytes"])
		assert.IsType(t, meta.Unknown{}, types["tags"])
		assert.IsType(t, meta.Unknown{}, types["raw"])
	})
}

func writeSource(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	src := "package demo\n\nimport \"github.com/GriffinCanCode/webbridge/internal/domain/window\"\n\n" +
		"type DemoWindow struct {\n\t*window.Base\n}\n\n" + body
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.go"), []byte(src), 0o644))
	return dir
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown option", "//bridge:bind async\nfunc (d *DemoWindow) F() {}\n", "unknown //bridge:bind option"},
		{"bad name", "//bridge:bind name=new\nfunc (d *DemoWindow) F() {}\n", "not a valid script identifier"},
		{"param shadows window", "//bridge:bind\nfunc (d *DemoWindow) F(window int) {}\n", "shadows a page global"},
		{"variadic", "//bridge:bind\nfunc (d *DemoWindow) F(xs ...int) {}\n", "variadic"},
		{"send only", "//bridge:bind\nfunc (d *DemoWindow) F() chan<- int { return nil }\n", "receive channel"},
		{"bad results", "//bridge:bind\nfunc (d *DemoWindow) F() (int, int) { return 0, 0 }\n", "second result must be error"},
		{"unexported", "//bridge:bind\nfunc (d *DemoWindow) f() {}\n", "must be exported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeSource(t, tt.body)
			_, err := New(Config{Dir: dir}, nil).Load(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFilters(t *testing.T) {
	dir := writeSource(t, "//bridge:bind\nfunc (d *DemoWindow) Ping(string, int) {}\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, GeneratedFile), []byte("package demo\n\nbroken"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo_test.go"), []byte("package demo\n\nbroken"), 0o644))

	snap, err := New(Config{Dir: dir}, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Windows, 1)
	ping := snap.Windows[0].Methods[0]
	require.Len(t, ping.Params, 2)
	assert.Equal(t, "arg0", ping.Params[0].Name)
	assert.Equal(t, "arg1", ping.Params[1].Name)

	_, err = New(Config{Dir: dir, Include: []string{"**/*.tmpl.go"}}, nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestImportName(t *testing.T) {
	assert.Equal(t, "ulid", importName("github.com/oklog/ulid/v2"))
	assert.Equal(t, "yaml", importName("github.com/goccy/go-yaml"))
	assert.Equal(t, "time", importName("time"))
}
