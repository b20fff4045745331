package manifest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webbridge/internal/bindgen/meta"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"a.yaml", YAML, false},
		{"a.YML", YAML, false},
		{"dir/a.toml", TOML, false},
		{"a.json", JSON, false},
		{"a.xml", "", true},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if tt.err {
			assert.ErrorIs(t, err, ErrFormat)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestProviderFormats(t *testing.T) {
	for _, name := range []string{"calc.yaml", "calc.toml", "calc.json"} {
		t.Run(name, func(t *testing.T) {
			snap, err := Provider{Path: filepath.Join("testdata", name)}.Load(context.Background())
			require.NoError(t, err)
			require.Len(t, snap.Windows, 1)

			w := snap.Windows[0]
			assert.Equal(t, "CalcWindow", w.Name)
			assert.Empty(t, w.Package)
			require.Len(t, w.Methods, 5)

			add := w.Methods[0]
			assert.Equal(t, "add", add.Exposed())
			assert.Equal(t, []meta.Param{{Name: "a", Type: meta.NumberType}, {Name: "b", Type: meta.NumberType}}, add.Params)

			points := w.Methods[1]
			assert.True(t, points.Async())
			point := points.Result.(meta.Async).Elem.(meta.Sequence).Elem.(*meta.Composite)
			assert.Equal(t, "Point", point.Name)
			assert.True(t, point.Fields[2].Static)
			assert.Same(t, point, point.Fields[2].Type)

			node := w.Methods[2].Result.(*meta.Composite)
			assert.Same(t, node, node.Fields[1].Type)
			assert.Same(t, node, w.Methods[2].Params[0].Type)

			rand := w.Methods[3]
			assert.Equal(t, "rand", rand.Exposed())
			assert.True(t, rand.Global)

			assert.Equal(t, meta.VoidType, w.Methods[4].Result)
		})
	}
}

func TestParseType(t *testing.T) {
	point := &meta.Composite{ID: "Point", Name: "Point"}
	records := map[string]*meta.Composite{"Point": point}

	assert.Equal(t, meta.StringType, ParseType("string", records))
	assert.Equal(t, meta.BooleanType, ParseType(" boolean ", records))
	assert.Equal(t, meta.Sequence{Elem: meta.Sequence{Elem: meta.NumberType}}, ParseType("number[][]", records))
	assert.Equal(t, meta.Async{Elem: meta.Sequence{Elem: point}}, ParseType("async<Point[]>", records))
	assert.Equal(t, meta.Unknown{}, ParseType("any", records))
	assert.Equal(t, meta.Unknown{Hint: "Widget"}, ParseType("Widget", records))
}

func TestRoundTrip(t *testing.T) {
	snap, err := Provider{Path: "testdata/calc.yaml"}.Load(context.Background())
	require.NoError(t, err)

	m := FromSnapshot(snap)
	require.Len(t, m.Types, 2)
	assert.Equal(t, "Point", m.Types[0].Name)
	assert.Equal(t, "Node", m.Types[1].Name)
	assert.Equal(t, "async<Point[]>", m.Windows[0].Methods[1].Returns)
	assert.Equal(t, "void", m.Windows[0].Methods[4].Returns)

	for _, format := range []Format{YAML, TOML, JSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(m, format)
			require.NoError(t, err)
			decoded, err := Decode(data, format)
			require.NoError(t, err)
			assert.Equal(t, m, decoded)
		})
	}

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.toml")
		require.NoError(t, WriteFile(path, m))
		decoded, err := ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, m, decoded)
	})
}

func TestSnapshotRejects(t *testing.T) {
	_, err := (&Manifest{Types: []Record{{Name: "A"}, {Name: "A"}}}).Snapshot()
	assert.ErrorContains(t, err, "declared twice")

	_, err = (&Manifest{Windows: []Window{{}}}).Snapshot()
	assert.ErrorContains(t, err, "window without name")

	_, err = (&Manifest{Windows: []Window{{
		Name:    "CalcWindow",
		Methods: []Method{{Name: "Add", Params: []Param{{Name: "window", Type: "number"}}}},
	}}}).Snapshot()
	assert.ErrorContains(t, err, "shadows a page global")
}
