package geom

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// FitPlane returns the least-squares plane through points. The origin is
// the centroid, the normal is the direction of least spread and the X axis
// the direction of greatest spread. When the in-plane spread has no
// preferred direction (a square, a regular polygon) the X axis follows the
// first segment instead. Axis signs are normalized so that the same point
// set always produces the same plane.
func FitPlane(points []r3.Vec) (Plane, error) {
	if len(points) == 0 {
		return Plane{}, errors.Wrap(ErrInsufficientGeometry, "fit plane")
	}

	var c r3.Vec
	for _, p := range points {
		c = r3.Add(c, p)
	}
	c = r3.Scale(1/float64(len(points)), c)

	// Scatter matrix, row-major upper triangle mirrored.
	var xx, xy, xz, yy, yz, zz float64
	for _, p := range points {
		d := r3.Sub(p, c)
		xx += d.X * d.X
		xy += d.X * d.Y
		xz += d.X * d.Z
		yy += d.Y * d.Y
		yz += d.Y * d.Z
		zz += d.Z * d.Z
	}
	if xx+yy+zz < ZeroTolerance*ZeroTolerance {
		// All points coincide: any plane through them fits, use world XY.
		pl := WorldXY()
		pl.Origin = c
		return pl, nil
	}

	scatter := mat.NewSymDense(3, []float64{
		xx, xy, xz,
		xy, yy, yz,
		xz, yz, zz,
	})
	var eig mat.EigenSym
	if ok := eig.Factorize(scatter, true); !ok {
		return Plane{}, errors.New("fit plane: eigen decomposition did not converge")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Eigenvalues come back ascending, so column 0 is the normal.
	normal := canonical(column(&vecs, 0))
	xAxis := column(&vecs, 2)
	if vals := eig.Values(nil); vals[2]-vals[1] <= isotropicSpread*vals[2] {
		if dir, ok := firstSegment(points, normal); ok {
			xAxis = dir
		}
	}
	// Project out any normal component left by round-off, then fix the sign.
	xAxis = r3.Unit(r3.Sub(xAxis, r3.Scale(r3.Dot(xAxis, normal), normal)))
	if dominant(xAxis) < 0 {
		xAxis = r3.Scale(-1, xAxis)
	}
	yAxis := r3.Unit(r3.Cross(normal, xAxis))

	pl := Plane{Origin: c, XAxis: xAxis, YAxis: yAxis}
	if !pl.IsValid() {
		return Plane{}, errors.Wrap(ErrInvalidPlane, "fit plane")
	}
	return pl, nil
}

// ResolvePlane returns pln when it is valid. Otherwise it fits a plane to
// the first non-empty candidate point set, trying candidates in order.
// ErrInsufficientGeometry is returned when every candidate is empty.
func ResolvePlane(pln Plane, candidates ...[]r3.Vec) (Plane, error) {
	if pln.IsValid() {
		return pln, nil
	}
	for _, pts := range candidates {
		if len(pts) > 0 {
			return FitPlane(pts)
		}
	}
	return Plane{}, ErrInsufficientGeometry
}

// isotropicSpread is the relative gap between the two largest eigenvalues
// below which the in-plane spread is treated as directionless.
const isotropicSpread = 1e-6

// firstSegment returns the direction from the first point to the next
// distinct one, projected into the plane with the given normal.
func firstSegment(points []r3.Vec, normal r3.Vec) (r3.Vec, bool) {
	for _, p := range points[1:] {
		d := r3.Sub(p, points[0])
		d = r3.Sub(d, r3.Scale(r3.Dot(d, normal), normal))
		if r3.Norm(d) > ZeroTolerance {
			return r3.Unit(d), true
		}
	}
	return r3.Vec{}, false
}

func column(m *mat.Dense, j int) r3.Vec {
	return r3.Unit(r3.Vec{X: m.At(0, j), Y: m.At(1, j), Z: m.At(2, j)})
}

// canonical flips n so that its first significant component, checked in
// Z, Y, X order, is positive.
func canonical(n r3.Vec) r3.Vec {
	for _, c := range [3]float64{n.Z, n.Y, n.X} {
		if math.Abs(c) > axisTolerance {
			if c < 0 {
				return r3.Scale(-1, n)
			}
			return n
		}
	}
	return n
}

// dominant returns the component of v with the largest magnitude.
func dominant(v r3.Vec) float64 {
	d := v.X
	if math.Abs(v.Y) > math.Abs(d) {
		d = v.Y
	}
	if math.Abs(v.Z) > math.Abs(d) {
		d = v.Z
	}
	return d
}
