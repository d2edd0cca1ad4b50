package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/planeclip/pkg/export"
	"github.com/chazu/planeclip/pkg/geom"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	squareA = `{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`
	squareB = `{"type":"Polygon","coordinates":[[[5,5],[15,5],[15,15],[5,15],[5,5]]]}`
	line    = `{"type":"LineString","coordinates":[[0,0],[10,0]]}`
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func features(t *testing.T, out string) *geojson.FeatureCollection {
	t.Helper()
	fc, err := geojson.UnmarshalFeatureCollection([]byte(out))
	require.NoError(t, err, out)
	return fc
}

func TestConfigCommand(t *testing.T) {
	out, _, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "absolute_tolerance")
	assert.Contains(t, out, "closed_fillet")
}

func TestConfigFlagLoadsFile(t *testing.T) {
	cfg := writeFile(t, "planeclip.toml", "tolerance = 0.5\nfill_rule = \"nonzero\"\n")
	out, _, err := execute(t, "--config", cfg, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "nonzero")
}

func TestConfigFlagRejectsBadFile(t *testing.T) {
	cfg := writeFile(t, "planeclip.toml", "tolerance = -1\n")
	_, _, err := execute(t, "--config", cfg, "config")
	assert.Error(t, err)

	cfg = writeFile(t, "planeclip.toml", "bogus = 1\n")
	_, _, err = execute(t, "--config", cfg, "config")
	assert.Error(t, err)
}

func TestOffsetCommand(t *testing.T) {
	in := writeFile(t, "a.geojson", squareA)
	out, _, err := execute(t, "offset", in, "-d", "1", "-d", "2")
	require.NoError(t, err)

	fc := features(t, out)
	layers := map[string]int{}
	for _, f := range fc.Features {
		layers[f.Properties["layer"].(string)]++
	}
	assert.Equal(t, map[string]int{"offset 1": 2, "offset 2": 2}, layers)
}

func TestOffsetCommandSide(t *testing.T) {
	in := writeFile(t, "a.geojson", squareA)
	out, _, err := execute(t, "offset", in, "-d", "1", "--side", "outside")
	require.NoError(t, err)
	fc := features(t, out)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "contour", fc.Features[0].Properties["role"])

	_, _, err = execute(t, "offset", in, "-d", "1", "--side", "sideways")
	assert.Error(t, err)
}

func TestOffsetCommandRequiresDistance(t *testing.T) {
	in := writeFile(t, "a.geojson", squareA)
	_, _, err := execute(t, "offset", in)
	assert.Error(t, err)
}

func TestOffsetCommandDXF(t *testing.T) {
	in := writeFile(t, "a.geojson", squareA)
	_, _, err := execute(t, "offset", in, "-d", "1", "--format", "dxf")
	assert.Error(t, err, "dxf without --out should fail")

	path := filepath.Join(t.TempDir(), "out.dxf")
	_, _, err = execute(t, "offset", in, "-d", "1", "--format", "dxf", "--out", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "offset_1_contour")
}

func TestOffsetCommandUnknownFormat(t *testing.T) {
	in := writeFile(t, "a.geojson", squareA)
	_, _, err := execute(t, "offset", in, "-d", "1", "--format", "svg")
	assert.Error(t, err)
}

func TestBooleanCommand(t *testing.T) {
	a := writeFile(t, "a.geojson", squareA)
	b := writeFile(t, "b.geojson", squareB)

	tests := []struct {
		op   string
		want float64
	}{
		{"intersection", 25},
		{"union", 175},
		{"difference", 75},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			out, _, err := execute(t, "boolean", tt.op, "-s", a, "-k", b)
			require.NoError(t, err)
			pls, err := export.ReadGeoJSON(strings.NewReader(out), geom.WorldXY())
			require.NoError(t, err)
			require.Len(t, pls, 1)
			assert.InDelta(t, tt.want, export.Area(pls[0], geom.WorldXY()), 0.1)
		})
	}
}

func TestBooleanCommandRejectsOperation(t *testing.T) {
	a := writeFile(t, "a.geojson", squareA)
	_, _, err := execute(t, "boolean", "merge", "-s", a)
	assert.Error(t, err)
}

func TestMinkowskiCommand(t *testing.T) {
	pattern := writeFile(t, "p.geojson", `{"type":"Polygon","coordinates":[[[-1,-1],[1,-1],[1,1],[-1,1],[-1,-1]]]}`)
	path := writeFile(t, "l.geojson", line)

	out, _, err := execute(t, "minkowski", pattern, path)
	require.NoError(t, err)
	assert.NotEmpty(t, features(t, out).Features)

	a := writeFile(t, "a.geojson", squareA)
	b := writeFile(t, "b.geojson", squareB)
	out, _, err = execute(t, "minkowski", "--diff", a, b)
	require.NoError(t, err)
	fc := features(t, out)
	require.NotEmpty(t, fc.Features)
	assert.Equal(t, "minkowski difference", fc.Features[0].Properties["layer"])
}

func TestInsideCommand(t *testing.T) {
	a := writeFile(t, "a.geojson", squareA)

	out, _, err := execute(t, "inside", "5", "5", a)
	require.NoError(t, err)
	assert.Equal(t, "0\tinside\n", out)

	out, _, err = execute(t, "inside", "20", "5", a)
	require.NoError(t, err)
	assert.Equal(t, "0\toutside\n", out)

	_, _, err = execute(t, "inside", "x", "5", a)
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	out, _, err := execute(t, "run", "testdata/plate.lisp")
	require.NoError(t, err)

	fc := features(t, out)
	layers := map[string]bool{}
	for _, f := range fc.Features {
		layers[f.Properties["layer"].(string)] = true
	}
	assert.True(t, layers["plate"])
	assert.True(t, layers["toolpath"])
}

func TestRunCommandFromStdin(t *testing.T) {
	cmd := newRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(`(emit "l" (polyline (pt 0 0) (pt 3 4)))`))
	cmd.SetArgs([]string{"run", "-"})
	require.NoError(t, cmd.Execute())

	fc := features(t, stdout.String())
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "open", fc.Features[0].Properties["role"])
}

func TestRunCommandReportsErrors(t *testing.T) {
	script := writeFile(t, "bad.lisp", "(offset (polyline (pt 0 0) (pt 1 0)))")
	_, stderr, err := execute(t, "run", script)
	assert.Error(t, err)
	assert.Contains(t, stderr, "error:")
}

func TestPreviewCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshes.json")
	_, _, err := execute(t, "preview", "testdata/plate.lisp", "--out", path, "--thickness", "2", "--stack")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var result struct {
		Meshes []MeshData      `json:"meshes"`
		Errors []EvalErrorData `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Empty(t, result.Errors)
	require.Len(t, result.Meshes, 2)
	assert.Equal(t, "plate", result.Meshes[0].Layer)
	assert.NotEmpty(t, result.Meshes[0].Indices)
}

func TestPreviewCommandRejectsResolution(t *testing.T) {
	_, _, err := execute(t, "preview", "testdata/plate.lisp", "--resolution", "2")
	assert.Error(t, err)
}
