package clip

import (
	"github.com/chazu/planeclip/pkg/geom"
	"github.com/pkg/errors"
)

// OffsetOptions configures Pipeline.Offset.
type OffsetOptions struct {
	// OpenFillets gives the end treatment per open polyline, by input
	// index. The last entry repeats for any further polylines; an empty
	// list means ButtEnd.
	OpenFillets []OpenFillet
	// ClosedFillets gives the corner treatment per polyline, with the same
	// repeat rule; an empty list means SquareCorner.
	ClosedFillets []ClosedFillet

	// Plane is the working plane. The zero Plane means fit one to the
	// first polyline.
	Plane     geom.Plane
	Tolerance float64

	// Distances are processed independently, in order.
	Distances []float64

	MiterLimit   float64
	ArcTolerance float64

	// Side filters the output; SideBoth keeps contours and holes.
	Side Side
}

// OffsetResult holds one contour list and one hole list per requested
// distance, indexed like OffsetOptions.Distances.
type OffsetResult struct {
	Contours [][]geom.Polyline
	Holes    [][]geom.Polyline
	// Plane is the working plane the offsets were computed on.
	Plane geom.Plane
}

// Offset offsets every polyline by each distance in opts.Distances.
// Closed polylines are offset as bands on both sides of the line;
// open polylines get the end treatment from opts.OpenFillets.
func (p *Pipeline) Offset(polylines []geom.Polyline, opts OffsetOptions) (*OffsetResult, error) {
	if err := ValidateTolerance(opts.Tolerance); err != nil {
		return nil, err
	}
	if len(polylines) == 0 {
		return p.emptyOffset(geom.ErrInsufficientGeometry)
	}
	q, err := p.quantizer(opts.Plane, opts.Tolerance, geom.Points(polylines))
	if err != nil {
		return p.emptyOffset(err)
	}

	off := p.engine.NewOffsetter(opts.MiterLimit, opts.ArcTolerance)
	for k, pl := range polylines {
		off.AddPath(q.ToPath(pl), joinTypeFor(k, opts.ClosedFillets), endTypeFor(pl, k, opts.OpenFillets))
	}

	res := &OffsetResult{
		Contours: make([][]geom.Polyline, len(opts.Distances)),
		Holes:    make([][]geom.Polyline, len(opts.Distances)),
		Plane:    q.Plane(),
	}
	for d, dist := range opts.Distances {
		tree, err := off.Execute(dist / q.Tolerance())
		if err != nil {
			return nil, errors.Wrapf(err, "offset by %v", dist)
		}
		for node := range tree.Walk() {
			if len(node.Contour) == 0 {
				continue
			}
			pl := q.ToPolyline(node.Contour, !node.IsOpen)
			if node.IsHole {
				if opts.Side != SideOutside {
					res.Holes[d] = append(res.Holes[d], pl)
				}
			} else if opts.Side != SideInside {
				res.Contours[d] = append(res.Contours[d], pl)
			}
		}
		Logger().Debug("clip: offset",
			"distance", dist,
			"paths", len(polylines),
			"contours", len(res.Contours[d]),
			"holes", len(res.Holes[d]))
	}
	return res, nil
}

func (p *Pipeline) emptyOffset(err error) (*OffsetResult, error) {
	if err := p.noInput("offset", err); err != nil {
		return nil, err
	}
	return &OffsetResult{}, nil
}

// endTypeFor picks the end treatment for the k-th input polyline. Closed
// polylines always become closed lines.
func endTypeFor(pl geom.Polyline, k int, fillets []OpenFillet) EndType {
	if pl.IsClosed() {
		return ClosedLine
	}
	if len(fillets) == 0 {
		return OpenButt
	}
	switch fillets[min(k, len(fillets)-1)] {
	case RoundEnd:
		return OpenRound
	case SquareEnd:
		return OpenSquare
	default:
		return OpenButt
	}
}

// joinTypeFor picks the corner treatment for the k-th input polyline.
func joinTypeFor(k int, fillets []ClosedFillet) JoinType {
	if len(fillets) == 0 {
		return JoinSquare
	}
	switch fillets[min(k, len(fillets)-1)] {
	case RoundCorner:
		return JoinRound
	case MiterCorner:
		return JoinMiter
	default:
		return JoinSquare
	}
}
