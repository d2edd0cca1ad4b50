package geom

import "gonum.org/v1/gonum/spatial/r3"

// Polyline is an ordered sequence of 3D points. A closed polyline stores
// its first point again as its last point.
type Polyline []r3.Vec

// IsClosed reports whether the polyline has at least three points and ends
// where it starts.
func (pl Polyline) IsClosed() bool {
	if len(pl) < 3 {
		return false
	}
	return r3.Norm(r3.Sub(pl[0], pl[len(pl)-1])) <= ZeroTolerance
}

// Closed returns a copy of pl that ends on its first point. Polylines that
// are already closed, or have fewer than two points, are copied unchanged.
func (pl Polyline) Closed() Polyline {
	out := make(Polyline, len(pl), len(pl)+1)
	copy(out, pl)
	if len(pl) < 2 || pl.IsClosed() {
		return out
	}
	return append(out, pl[0])
}

// Length returns the sum of the segment lengths.
func (pl Polyline) Length() float64 {
	var l float64
	for i := 1; i < len(pl); i++ {
		l += r3.Norm(r3.Sub(pl[i], pl[i-1]))
	}
	return l
}

// First returns the first point, or the zero vector for an empty polyline.
func (pl Polyline) First() r3.Vec {
	if len(pl) == 0 {
		return r3.Vec{}
	}
	return pl[0]
}

// Translate returns a copy of pl moved by d.
func (pl Polyline) Translate(d r3.Vec) Polyline {
	out := make(Polyline, len(pl))
	for i, p := range pl {
		out[i] = r3.Add(p, d)
	}
	return out
}

// Points returns the vertex list of the first polyline in pls, the point
// set a plane is fitted to when a polyline batch has no explicit plane.
// The closing vertex of a closed polyline is left out so the start point
// is not weighted twice.
func Points(pls []Polyline) []r3.Vec {
	if len(pls) == 0 {
		return nil
	}
	return pls[0].Vertices()
}

// Vertices returns the distinct vertices of pl: a closed polyline without
// its closing point.
func (pl Polyline) Vertices() []r3.Vec {
	if pl.IsClosed() {
		return pl[:len(pl)-1]
	}
	return pl
}
