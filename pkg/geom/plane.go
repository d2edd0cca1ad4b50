// Package geom holds the 3D primitives the clipping pipeline works on:
// working planes, polylines and the least-squares plane fit used when the
// caller does not supply a plane.
package geom

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// ZeroTolerance is the distance below which two points are the same point.
const ZeroTolerance = 2.3283064365386963e-10

// axisTolerance bounds how far a plane's axes may drift from unit length
// and orthogonality before the plane is rejected.
const axisTolerance = 1e-9

var (
	// ErrInsufficientGeometry is returned when there are no points to fit a
	// plane to, or no input paths at all.
	ErrInsufficientGeometry = errors.New("insufficient geometry")

	// ErrInvalidPlane is returned for planes with degenerate or
	// non-orthonormal axes.
	ErrInvalidPlane = errors.New("invalid plane")
)

// Plane is an origin plus two orthonormal axes. It parameterizes 3D space
// as (s, t) coordinates along XAxis and YAxis. The zero Plane is invalid
// and stands for "no plane supplied".
type Plane struct {
	Origin r3.Vec
	XAxis  r3.Vec
	YAxis  r3.Vec
}

// WorldXY returns the XY plane through the world origin.
func WorldXY() Plane {
	return Plane{
		XAxis: r3.Vec{X: 1},
		YAxis: r3.Vec{Y: 1},
	}
}

// NewPlane builds a plane through origin whose X axis points along xDir and
// whose Y axis is yDir made orthogonal to it.
func NewPlane(origin, xDir, yDir r3.Vec) (Plane, error) {
	if r3.Norm(xDir) < ZeroTolerance {
		return Plane{}, errors.Wrap(ErrInvalidPlane, "x direction has zero length")
	}
	x := r3.Unit(xDir)
	y := r3.Sub(yDir, r3.Scale(r3.Dot(yDir, x), x))
	if r3.Norm(y) < ZeroTolerance {
		return Plane{}, errors.Wrap(ErrInvalidPlane, "y direction is parallel to x direction")
	}
	p := Plane{Origin: origin, XAxis: x, YAxis: r3.Unit(y)}
	if !p.IsValid() {
		return Plane{}, errors.Wrapf(ErrInvalidPlane, "origin %v", origin)
	}
	return p, nil
}

// IsValid reports whether the plane has a finite origin and orthonormal axes.
func (p Plane) IsValid() bool {
	if !finite(p.Origin) || !finite(p.XAxis) || !finite(p.YAxis) {
		return false
	}
	if math.Abs(r3.Norm(p.XAxis)-1) > axisTolerance || math.Abs(r3.Norm(p.YAxis)-1) > axisTolerance {
		return false
	}
	return math.Abs(r3.Dot(p.XAxis, p.YAxis)) <= axisTolerance
}

// Normal returns the unit Z axis of the plane (XAxis x YAxis).
func (p Plane) Normal() r3.Vec {
	return r3.Cross(p.XAxis, p.YAxis)
}

// ClosestParameter projects pt onto the plane and returns its (s, t)
// coordinates.
func (p Plane) ClosestParameter(pt r3.Vec) (s, t float64) {
	d := r3.Sub(pt, p.Origin)
	return r3.Dot(d, p.XAxis), r3.Dot(d, p.YAxis)
}

// PointAt evaluates the plane at parameters (s, t).
func (p Plane) PointAt(s, t float64) r3.Vec {
	return r3.Add(p.Origin, r3.Add(r3.Scale(s, p.XAxis), r3.Scale(t, p.YAxis)))
}

// DistanceTo returns the signed distance from pt to the plane along its
// normal.
func (p Plane) DistanceTo(pt r3.Vec) float64 {
	return r3.Dot(r3.Sub(pt, p.Origin), p.Normal())
}

func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
