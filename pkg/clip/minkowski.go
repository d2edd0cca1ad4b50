package clip

import (
	"github.com/chazu/planeclip/pkg/geom"
	"github.com/pkg/errors"
)

// MinkowskiSum sweeps a along b, treating b as a closed loop, and returns
// the resulting boundaries as closed polylines in engine order.
func (p *Pipeline) MinkowskiSum(a, b geom.Polyline, plane geom.Plane, tol float64) ([]geom.Polyline, error) {
	return p.minkowski("minkowski sum", a, b, plane, tol, func(pa, pb Path) ([]Path, error) {
		return p.engine.MinkowskiSum(pa, pb, true)
	})
}

// MinkowskiDiff returns the Minkowski difference of a and b as closed
// polylines in engine order.
func (p *Pipeline) MinkowskiDiff(a, b geom.Polyline, plane geom.Plane, tol float64) ([]geom.Polyline, error) {
	return p.minkowski("minkowski difference", a, b, plane, tol, p.engine.MinkowskiDiff)
}

func (p *Pipeline) minkowski(op string, a, b geom.Polyline, plane geom.Plane, tol float64,
	run func(a, b Path) ([]Path, error)) ([]geom.Polyline, error) {
	if err := ValidateTolerance(tol); err != nil {
		return nil, err
	}
	if len(a) == 0 || len(b) == 0 {
		return nil, p.noInput(op, geom.ErrInsufficientGeometry)
	}
	q, err := p.quantizer(plane, tol, a.Vertices(), b.Vertices())
	if err != nil {
		return nil, p.noInput(op, err)
	}

	paths, err := run(q.ToPath(a), q.ToPath(b))
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	out := make([]geom.Polyline, 0, len(paths))
	for _, path := range paths {
		out = append(out, q.ToPolyline(path, true))
	}
	Logger().Debug("clip: "+op, "results", len(out))
	return out, nil
}
