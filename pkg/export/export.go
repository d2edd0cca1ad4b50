// Package export writes clip results to DXF and GeoJSON and reads
// polylines back from GeoJSON.
//
// Both formats are planar: polylines are written in the (s, t)
// coordinates of a working plane and lifted back through the same plane on
// read.
package export

import (
	"fmt"

	"github.com/chazu/planeclip/pkg/geom"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Layer is one named group of result polylines.
type Layer struct {
	Name      string
	Polylines []geom.Polyline
}

// Role is the part a polyline plays in a result.
type Role int

const (
	RoleContour Role = iota
	RoleHole
	RoleOpen
)

func (r Role) String() string {
	switch r {
	case RoleContour:
		return "contour"
	case RoleHole:
		return "hole"
	case RoleOpen:
		return "open"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Classify returns the role of pl. Closed polylines wound clockwise in
// plane are holes.
func Classify(pl geom.Polyline, plane geom.Plane) Role {
	if !pl.IsClosed() {
		return RoleOpen
	}
	if planar.Area(ring(pl, plane)) < 0 {
		return RoleHole
	}
	return RoleContour
}

// Area returns the unsigned area pl encloses in plane, or 0 when it is
// open.
func Area(pl geom.Polyline, plane geom.Plane) float64 {
	if !pl.IsClosed() {
		return 0
	}
	a := planar.Area(ring(pl, plane))
	if a < 0 {
		return -a
	}
	return a
}

func local(pl geom.Polyline, plane geom.Plane) []orb.Point {
	pts := make([]orb.Point, len(pl))
	for i, p := range pl {
		s, t := plane.ClosestParameter(p)
		pts[i] = orb.Point{s, t}
	}
	return pts
}

func ring(pl geom.Polyline, plane geom.Plane) orb.Ring {
	return orb.Ring(local(pl, plane))
}

func lift(pts []orb.Point, plane geom.Plane) geom.Polyline {
	pl := make(geom.Polyline, len(pts))
	for i, p := range pts {
		pl[i] = plane.PointAt(p[0], p[1])
	}
	return pl
}
