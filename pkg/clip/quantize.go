package clip

import (
	"math"

	"github.com/chazu/planeclip/pkg/geom"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quantizer maps 3D points to integer plane coordinates and back. Points
// closer than the tolerance may land in the same cell; that loss is not
// recoverable.
type Quantizer struct {
	plane geom.Plane
	tol   float64
}

// ValidateTolerance returns ErrInvalidTolerance unless tol is a positive
// finite number.
func ValidateTolerance(tol float64) error {
	if !(tol > 0) || math.IsInf(tol, 0) {
		return errors.Wrapf(ErrInvalidTolerance, "got %v", tol)
	}
	return nil
}

// NewQuantizer returns a quantizer for plane and tol.
func NewQuantizer(plane geom.Plane, tol float64) (*Quantizer, error) {
	if err := ValidateTolerance(tol); err != nil {
		return nil, err
	}
	if !plane.IsValid() {
		return nil, errors.Wrap(geom.ErrInvalidPlane, "quantizer")
	}
	return &Quantizer{plane: plane, tol: tol}, nil
}

// Plane returns the working plane.
func (q *Quantizer) Plane() geom.Plane { return q.plane }

// Tolerance returns the cell size.
func (q *Quantizer) Tolerance() float64 { return q.tol }

// Quantize projects p onto the plane and truncates its parameters toward
// zero in units of the tolerance.
func (q *Quantizer) Quantize(p r3.Vec) IntPoint {
	s, t := q.plane.ClosestParameter(p)
	return IntPoint{X: int64(s / q.tol), Y: int64(t / q.tol)}
}

// Dequantize evaluates the plane at the cell's scaled coordinates.
func (q *Quantizer) Dequantize(ip IntPoint) r3.Vec {
	return q.plane.PointAt(float64(ip.X)*q.tol, float64(ip.Y)*q.tol)
}

// ToPath quantizes pl vertex by vertex. The closing vertex of a closed
// polyline is not emitted; engine paths never repeat their first point.
func (q *Quantizer) ToPath(pl geom.Polyline) Path {
	pts := pl
	if pl.IsClosed() {
		pts = pl[:len(pl)-1]
	}
	path := make(Path, len(pts))
	for i, p := range pts {
		path[i] = q.Quantize(p)
	}
	return path
}

// ToPaths quantizes every polyline in order.
func (q *Quantizer) ToPaths(pls []geom.Polyline) []Path {
	paths := make([]Path, len(pls))
	for i, pl := range pls {
		paths[i] = q.ToPath(pl)
	}
	return paths
}

// ToPolyline dequantizes path. When closed is set and the path is not
// empty, the first point is repeated at the end.
func (q *Quantizer) ToPolyline(path Path, closed bool) geom.Polyline {
	n := len(path)
	if closed && n > 0 {
		n++
	}
	pl := make(geom.Polyline, 0, n)
	for _, ip := range path {
		pl = append(pl, q.Dequantize(ip))
	}
	if closed && len(path) > 0 {
		pl = append(pl, pl[0])
	}
	return pl
}
