// Package kernel defines the abstract solid kernel used for previews.
// Offset and boolean results are planar regions; a kernel extrudes them
// into thin solids so they can be meshed and inspected in 3D. Backends
// (sdfx) sit behind this interface so the preview path does not depend on
// a particular modeling library.
package kernel

// Point2 is a point in plane-local coordinates.
type Point2 [2]float64

// Region is a planar area in plane-local coordinates: one outer boundary
// and any number of holes. Rings are open, without a repeated closing
// vertex, and may wind either way.
type Region struct {
	Name  string
	Outer []Point2
	Holes [][]Point2
}

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract solid kernel.
type Kernel interface {
	// Extrude lifts a region from z=0 to z=height. Holes are cut through.
	Extrude(r Region, height float64) (Solid, error)

	Union(a, b Solid) Solid
	Translate(s Solid, x, y, z float64) Solid

	// ToMesh tessellates a solid into triangles. cells is the sampling
	// resolution along the longest bounding box axis.
	ToMesh(s Solid, cells int) (*Mesh, error)
}
