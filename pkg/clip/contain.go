package clip

import (
	"github.com/chazu/planeclip/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// PointInPolygon classifies pt against the region bounded by pl, both
// projected onto plane. An empty polyline contains nothing.
func (p *Pipeline) PointInPolygon(pt r3.Vec, pl geom.Polyline, plane geom.Plane, tol float64) (Containment, error) {
	if err := ValidateTolerance(tol); err != nil {
		return Outside, err
	}
	q, err := p.quantizer(plane, tol, pl.Vertices())
	if err != nil {
		return Outside, p.noInput("point in polygon", err)
	}
	return p.engine.PointInPolygon(q.Quantize(pt), q.ToPath(pl)), nil
}
