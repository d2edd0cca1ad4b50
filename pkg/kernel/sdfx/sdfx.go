// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"

	"github.com/chazu/planeclip/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells is the marching cubes resolution used when the caller
// passes a non-positive cell count.
const defaultMeshCells = 64

// minTriangleArea is twice the smallest triangle area kept by ToMesh.
const minTriangleArea = 1e-12

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Extrude builds the region as a 2D SDF, subtracts the holes and extrudes
// it. sdf.Extrude3D centers the slab on z=0, so the result is shifted up by
// half the height to sit on the region's plane.
func (k *SdfxKernel) Extrude(r kernel.Region, height float64) (kernel.Solid, error) {
	if !(height > 0) {
		return nil, fmt.Errorf("sdfx: extrude %q: height must be positive, got %v", r.Name, height)
	}
	outer, err := polygon(r.Outer)
	if err != nil {
		return nil, fmt.Errorf("sdfx: extrude %q: outer: %w", r.Name, err)
	}

	area := outer
	if len(r.Holes) > 0 {
		holes := make([]sdf.SDF2, 0, len(r.Holes))
		for i, ring := range r.Holes {
			h, err := polygon(ring)
			if err != nil {
				return nil, fmt.Errorf("sdfx: extrude %q: hole %d: %w", r.Name, i, err)
			}
			holes = append(holes, h)
		}
		area = sdf.Difference2D(outer, sdf.Union2D(holes...))
	}

	slab := sdf.Extrude3D(area, height)
	m := sdf.Translate3d(v3.Vec{Z: height / 2})
	return wrap(sdf.Transform3D(slab, m)), nil
}

func polygon(ring []kernel.Point2) (sdf.SDF2, error) {
	if len(ring) < 3 {
		return nil, fmt.Errorf("ring has %d vertices, need at least 3", len(ring))
	}
	vertices := make([]v2.Vec, len(ring))
	for i, p := range ring {
		vertices[i] = v2.Vec{X: p[0], Y: p[1]}
	}
	return sdf.Polygon2D(vertices)
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh samples the solid on a uniform marching cubes grid. Thin slabs
// leave slivers along the faces; triangles with no area are dropped so
// every emitted normal is a unit vector.
func (k *SdfxKernel) ToMesh(s kernel.Solid, cells int) (*kernel.Mesh, error) {
	if cells <= 0 {
		cells = defaultMeshCells
	}
	tris := render.ToTriangles(unwrap(s), render.NewMarchingCubesUniform(cells))

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(tris)*9),
		Normals:  make([]float32, 0, len(tris)*9),
		Indices:  make([]uint32, 0, len(tris)*3),
	}
	var dropped int
	for _, tri := range tris {
		if tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0])).Length() < minTriangleArea {
			dropped++
			continue
		}
		n := tri.Normal()
		base := uint32(len(m.Vertices) / 3)
		for j, v := range tri {
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			m.Indices = append(m.Indices, base+uint32(j))
		}
	}
	if m.IsEmpty() {
		return nil, fmt.Errorf("sdfx: mesh has no triangles (%d degenerate) at %d cells", dropped, cells)
	}
	return m, nil
}
