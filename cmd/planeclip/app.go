package main

import (
	"github.com/chazu/planeclip/pkg/clip"
	"github.com/chazu/planeclip/pkg/clip/clipper"
	"github.com/chazu/planeclip/pkg/config"
	"github.com/chazu/planeclip/pkg/export"
	"github.com/chazu/planeclip/pkg/geom"
	"github.com/chazu/planeclip/pkg/kernel"
	"github.com/chazu/planeclip/pkg/kernel/sdfx"
	"github.com/chazu/planeclip/pkg/script"
	"github.com/chazu/planeclip/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to layers.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the pipelines, the script engine and the preview kernel to one
// set of resolved settings.
type App struct {
	settings config.Settings
	pipeline *clip.Pipeline
	engine   *script.Engine
	kernel   kernel.Kernel
}

// MeshData is the JSON-serializable preview mesh format.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Layer    string    `json:"layer"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of running a script.
type EvalResult struct {
	Layers   []export.Layer  `json:"-"`
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App backed by the clipper engine and the sdfx kernel.
func NewApp(settings config.Settings) *App {
	p := clip.New(clipper.New(), settings.PipelineOptions()...)
	return &App{
		settings: settings,
		pipeline: p,
		engine:   script.NewEngine(p, settings),
		kernel:   sdfx.New(),
	}
}

// Evaluate runs a script and returns its outputs as layers. With preview
// set, each output is also tessellated into a mesh.
func (a *App) Evaluate(source string, preview bool) EvalResult {
	result := EvalResult{
		Layers:   []export.Layer{},
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		clip.Logger().Error("evaluate failed", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}
	for _, o := range res.Outputs {
		result.Layers = append(result.Layers, export.Layer{Name: o.Name, Polylines: o.Polylines})
	}
	if !preview || len(result.Layers) == 0 {
		return result
	}

	meshes, err := a.Preview(result.Layers)
	if err != nil {
		clip.Logger().Error("tessellate failed", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}
	result.Meshes = meshes
	return result
}

// Preview extrudes every layer into a colored mesh. Contours and holes are
// told apart by winding in the working plane.
func (a *App) Preview(layers []export.Layer) ([]MeshData, error) {
	plane, err := a.plane(layers)
	if err != nil {
		return nil, err
	}
	tl := make([]tessellate.Layer, len(layers))
	for i, l := range layers {
		tl[i] = tessellate.FromBoolean(l.Name, l.Polylines, plane)
	}

	meshes, err := tessellate.Tessellate(a.pipeline, a.kernel, tl, tessellate.Options{
		Plane:     plane,
		Tolerance: a.settings.Tolerance,
		Thickness: a.settings.Preview.Thickness,
		Cells:     a.settings.Preview.Resolution,
		Stack:     a.settings.Preview.Stack,
	})
	if err != nil {
		return nil, err
	}

	out := make([]MeshData, 0, len(meshes))
	for i, m := range meshes {
		out = append(out, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Layer:    m.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return out, nil
}

// plane returns the configured working plane, or one fitted to the first
// polyline of the layers.
func (a *App) plane(layers []export.Layer) (geom.Plane, error) {
	for _, l := range layers {
		if len(l.Polylines) > 0 {
			return geom.ResolvePlane(a.settings.Plane, l.Polylines[0].Vertices())
		}
	}
	return geom.ResolvePlane(a.settings.Plane)
}

// inputPlane is the plane planar input files are lifted onto.
func (a *App) inputPlane() geom.Plane {
	if a.settings.Plane.IsValid() {
		return a.settings.Plane
	}
	return geom.WorldXY()
}
