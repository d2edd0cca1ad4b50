// Package tessellate turns planar clip results into triangle meshes for
// preview. Each layer (one offset distance, or one boolean result) is split
// into regions, every hole is assigned to the contour that contains it, and
// the regions are extruded through a kernel and mapped back into world
// space through the working plane.
package tessellate

import (
	"fmt"
	"math"

	"github.com/chazu/planeclip/pkg/clip"
	"github.com/chazu/planeclip/pkg/geom"
	"github.com/chazu/planeclip/pkg/kernel"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/spatial/r3"
)

// Layer is one set of planar results. Open polylines are ignored.
type Layer struct {
	Name     string
	Contours []geom.Polyline
	Holes    []geom.Polyline
}

// Options control extrusion and placement.
type Options struct {
	// Plane is the working plane. When invalid it is fitted to the first
	// contour of the first non-empty layer.
	Plane geom.Plane
	// Tolerance is the grid used for hole containment tests.
	Tolerance float64
	Thickness float64
	Cells     int
	// Stack raises layer i by i*Thickness along the plane normal so that
	// successive offsets do not overlap.
	Stack bool
}

// FromOffset builds one layer per offset distance.
func FromOffset(res *clip.OffsetResult, distances []float64) []Layer {
	if res == nil {
		return nil
	}
	layers := make([]Layer, len(res.Contours))
	for i := range res.Contours {
		name := fmt.Sprintf("offset[%d]", i)
		if i < len(distances) {
			name = fmt.Sprintf("offset %g", distances[i])
		}
		layers[i] = Layer{Name: name, Contours: res.Contours[i], Holes: res.Holes[i]}
	}
	return layers
}

// FromBoolean splits a flat boolean result into contours and holes by
// winding in plane: the engine emits outer boundaries counter-clockwise
// and holes clockwise.
func FromBoolean(name string, out []geom.Polyline, plane geom.Plane) Layer {
	layer := Layer{Name: name}
	for _, pl := range out {
		if !pl.IsClosed() {
			continue
		}
		if planar.Area(localRing(pl, plane)) < 0 {
			layer.Holes = append(layer.Holes, pl)
		} else {
			layer.Contours = append(layer.Contours, pl)
		}
	}
	return layer
}

// Regions groups the holes of a layer under the smallest contour that
// contains them. Holes that no contour contains are dropped.
func Regions(p *clip.Pipeline, layer Layer, plane geom.Plane, tol float64) ([]kernel.Region, error) {
	type candidate struct {
		pl   geom.Polyline
		area float64
	}
	var contours []candidate
	for _, pl := range layer.Contours {
		if !pl.IsClosed() {
			continue
		}
		contours = append(contours, candidate{pl, math.Abs(planar.Area(localRing(pl, plane)))})
	}

	regions := make([]kernel.Region, len(contours))
	for i, c := range contours {
		regions[i] = kernel.Region{
			Name:  fmt.Sprintf("%s/%d", layer.Name, i),
			Outer: localPoints(c.pl, plane),
		}
	}

	for h, hole := range layer.Holes {
		if !hole.IsClosed() {
			continue
		}
		owner := -1
		for i, c := range contours {
			inside, err := holeInside(p, hole, c.pl, plane, tol)
			if err != nil {
				return nil, fmt.Errorf("tessellate: layer %s hole %d: %w", layer.Name, h, err)
			}
			if !inside {
				continue
			}
			if owner < 0 || c.area < contours[owner].area {
				owner = i
			}
		}
		if owner < 0 {
			clip.Logger().Debug("tessellate: hole outside every contour", "layer", layer.Name, "hole", h)
			continue
		}
		regions[owner].Holes = append(regions[owner].Holes, localPoints(hole, plane))
	}
	return regions, nil
}

// Tessellate extrudes every layer into one mesh in world coordinates.
// Layers without closed contours produce no mesh.
func Tessellate(p *clip.Pipeline, k kernel.Kernel, layers []Layer, opts Options) ([]*kernel.Mesh, error) {
	plane, err := resolvePlane(opts.Plane, layers)
	if err != nil {
		return nil, err
	}

	var meshes []*kernel.Mesh
	for i, layer := range layers {
		regions, err := Regions(p, layer, plane, opts.Tolerance)
		if err != nil {
			return nil, err
		}
		if len(regions) == 0 {
			continue
		}

		var solid kernel.Solid
		for _, r := range regions {
			s, err := k.Extrude(r, opts.Thickness)
			if err != nil {
				return nil, fmt.Errorf("tessellate: layer %s: %w", layer.Name, err)
			}
			if solid == nil {
				solid = s
			} else {
				solid = k.Union(solid, s)
			}
		}
		if opts.Stack && i > 0 {
			solid = k.Translate(solid, 0, 0, float64(i)*opts.Thickness)
		}

		mesh, err := k.ToMesh(solid, opts.Cells)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for layer %s: %w", layer.Name, err)
		}
		toWorld(mesh, plane)
		mesh.Name = layer.Name
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// holeInside reports whether hole lies inside contour. Vertices on the
// contour's boundary say nothing, so the first vertex that is strictly
// inside or outside decides. A hole touching the contour everywhere is
// not inside it.
func holeInside(p *clip.Pipeline, hole, contour geom.Polyline, plane geom.Plane, tol float64) (bool, error) {
	for _, v := range hole.Vertices() {
		where, err := p.PointInPolygon(v, contour, plane, tol)
		if err != nil {
			return false, err
		}
		if where != clip.OnBoundary {
			return where == clip.Inside, nil
		}
	}
	return false, nil
}

func resolvePlane(pln geom.Plane, layers []Layer) (geom.Plane, error) {
	var candidates [][]r3.Vec
	for _, l := range layers {
		if len(l.Contours) > 0 {
			candidates = append(candidates, l.Contours[0].Vertices())
		}
	}
	resolved, err := geom.ResolvePlane(pln, candidates...)
	if err != nil {
		return geom.Plane{}, fmt.Errorf("tessellate: %w", err)
	}
	return resolved, nil
}

// toWorld maps a plane-local mesh into world space.
func toWorld(m *kernel.Mesh, plane geom.Plane) {
	n := plane.Normal()
	m.Transform(
		func(x, y, z float64) (float64, float64, float64) {
			w := r3.Add(plane.PointAt(x, y), r3.Scale(z, n))
			return w.X, w.Y, w.Z
		},
		func(x, y, z float64) (float64, float64, float64) {
			w := r3.Add(r3.Add(r3.Scale(x, plane.XAxis), r3.Scale(y, plane.YAxis)), r3.Scale(z, n))
			return w.X, w.Y, w.Z
		},
	)
}

// localPoints projects a closed polyline into plane coordinates, dropping
// the closing vertex.
func localPoints(pl geom.Polyline, plane geom.Plane) []kernel.Point2 {
	n := len(pl)
	if pl.IsClosed() {
		n--
	}
	out := make([]kernel.Point2, n)
	for i := 0; i < n; i++ {
		s, t := plane.ClosestParameter(pl[i])
		out[i] = kernel.Point2{s, t}
	}
	return out
}

func localRing(pl geom.Polyline, plane geom.Plane) orb.Ring {
	ring := make(orb.Ring, len(pl))
	for i, p := range pl {
		s, t := plane.ClosestParameter(p)
		ring[i] = orb.Point{s, t}
	}
	return ring
}
