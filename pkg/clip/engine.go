package clip

// Engine is the integer polygon clipping engine the pipelines drive.
// Implementations (see package clipper) wrap a concrete library behind this
// interface; every call that runs the engine gets a fresh engine instance.
type Engine interface {
	// NewOffsetter returns an empty offsetter. miterLimit caps how far a
	// miter corner may extend, in multiples of the offset distance;
	// arcTolerance is the maximum deviation of round joins, in quantized
	// units.
	NewOffsetter(miterLimit, arcTolerance float64) Offsetter

	// NewClipper returns an empty boolean clipper.
	NewClipper() Clipper

	// MinkowskiSum sweeps pattern along path. closed treats path as a
	// closed loop.
	MinkowskiSum(pattern, path Path, closed bool) ([]Path, error)

	// MinkowskiDiff returns the Minkowski difference of a and b.
	MinkowskiDiff(a, b Path) ([]Path, error)

	// PointInPolygon classifies pt against the closed path.
	PointInPolygon(pt IntPoint, path Path) Containment
}

// Offsetter accumulates paths and offsets all of them together.
type Offsetter interface {
	AddPath(path Path, join JoinType, end EndType)
	// Execute offsets every added path by delta quantized units. It may be
	// called repeatedly with different deltas.
	Execute(delta float64) (*ResultTree, error)
}

// Clipper accumulates subject and clip paths for one boolean operation.
type Clipper interface {
	AddPath(path Path, role PathRole, closed bool) error
	Execute(op Operation, subjectFill, clipFill FillRule) (*ResultTree, error)
}
