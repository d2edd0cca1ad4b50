package main

import (
	"math"
	"os"
	"testing"

	"github.com/chazu/planeclip/pkg/config"
	"github.com/chazu/planeclip/pkg/export"
	"github.com/chazu/planeclip/pkg/geom"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	settings, err := config.Default().Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return NewApp(settings)
}

// TestE2EPlateExample exercises the full path: Lisp source -> engine ->
// clip pipelines -> tessellate -> meshes.
func TestE2EPlateExample(t *testing.T) {
	app := newTestApp(t)

	source, err := os.ReadFile("testdata/plate.lisp")
	if err != nil {
		t.Fatalf("failed to read plate.lisp: %v", err)
	}

	result := app.Evaluate(string(source), true)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	if len(result.Layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(result.Layers))
	}
	if result.Layers[0].Name != "plate" || result.Layers[1].Name != "toolpath" {
		t.Errorf("layer names = %q, %q", result.Layers[0].Name, result.Layers[1].Name)
	}

	// The plate is the outline with two 2x2 holes.
	plate := result.Layers[0].Polylines
	if len(plate) != 3 {
		t.Fatalf("expected 3 plate polylines, got %d", len(plate))
	}
	var contours, holes int
	var area float64
	for _, pl := range plate {
		switch export.Classify(pl, geom.WorldXY()) {
		case export.RoleContour:
			contours++
			area += export.Area(pl, geom.WorldXY())
		case export.RoleHole:
			holes++
			area -= export.Area(pl, geom.WorldXY())
		}
	}
	if contours != 1 || holes != 2 {
		t.Errorf("plate has %d contours and %d holes, want 1 and 2", contours, holes)
	}
	if math.Abs(area-192) > 0.1 {
		t.Errorf("plate area = %f, want 192", area)
	}

	if len(result.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(result.Meshes))
	}
	for _, m := range result.Meshes {
		if len(m.Vertices) == 0 {
			t.Errorf("layer %q: no vertices", m.Layer)
		}
		if len(m.Normals) == 0 {
			t.Errorf("layer %q: no normals", m.Layer)
		}
		if len(m.Indices) == 0 {
			t.Errorf("layer %q: no indices", m.Layer)
		}
		if m.Color == "" {
			t.Errorf("layer %q: no color assigned", m.Layer)
		}
	}
	if result.Meshes[0].Color == result.Meshes[1].Color {
		t.Error("layers should get distinct colors")
	}
}

func TestE2EEvaluateWithoutPreview(t *testing.T) {
	app := newTestApp(t)

	source, err := os.ReadFile("testdata/plate.lisp")
	if err != nil {
		t.Fatalf("failed to read plate.lisp: %v", err)
	}
	result := app.Evaluate(string(source), false)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(result.Layers))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected no meshes without preview, got %d", len(result.Meshes))
	}
}

func TestE2EEmptySource(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate("", true)

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Meshes == nil || result.Errors == nil || result.Warnings == nil {
		t.Error("result slices should be non-nil")
	}
}

func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp(t)

	result := app.Evaluate("(+ 1 2)\n(polyline (pt 0 0)", true)
	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(result.Meshes))
	}
	if result.Errors[0].Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
}

func TestE2EBuiltinError(t *testing.T) {
	app := newTestApp(t)

	result := app.Evaluate(`(offset (polyline (pt 0 0) (pt 1 0)))`, true)
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for an offset without distance")
	}
	if len(result.Layers) != 0 {
		t.Errorf("expected no layers on error, got %d", len(result.Layers))
	}
}

func TestE2EWarningsPassThrough(t *testing.T) {
	app := newTestApp(t)

	result := app.Evaluate(`(emit "w" (polyline (pt 0 0) (pt 0 0) (pt 3 0)))`, false)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(result.Warnings))
	}
}

func TestE2EOpenOutputHasNoMesh(t *testing.T) {
	app := newTestApp(t)

	// An open polyline has no area to extrude.
	result := app.Evaluate(`(emit "line" (polyline (pt 0 0) (pt 5 0) (pt 5 5)))`, true)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected no meshes for an open polyline, got %d", len(result.Meshes))
	}
}

func TestE2ERapidEvaluation(t *testing.T) {
	// Rapid sequential calls on the same App exercise the generation
	// counter. We verify no panics occur.
	app := newTestApp(t)

	sources := []string{
		`(polyline (pt 0 0) (pt 1 0))`,
		`(+ 1 2)`,
		``,
		`(offset (polyline (pt 0 0) (pt 4 0) (pt 4 4) :closed true) :distance 1)`,
		`(boolean :union`,
		`(inside (pt 1 1) (polyline (pt 0 0) (pt 4 0) (pt 4 4) (pt 0 4) :closed true))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked: %v", i, r)
				}
			}()
			_ = app.Evaluate(source, i%2 == 0)
		}()
	}
}

func TestInputPlaneDefaultsToWorldXY(t *testing.T) {
	app := newTestApp(t)
	if got := app.inputPlane(); got != geom.WorldXY() {
		t.Errorf("inputPlane() = %+v, want WorldXY", got)
	}
}
