package clip

import (
	"github.com/chazu/planeclip/pkg/geom"
	"github.com/pkg/errors"
)

// BooleanOptions configures Pipeline.Boolean.
type BooleanOptions struct {
	// Plane is the working plane. The zero Plane means fit one to the
	// first subject polyline, or the first clip polyline if there are no
	// subjects.
	Plane     geom.Plane
	Tolerance float64
	// FillRule applies to subjects and clips alike. MassUnion ignores it.
	FillRule FillRule
}

// enginePath is a quantized path together with its closedness.
type enginePath struct {
	path   Path
	closed bool
}

// Boolean combines subjects and clips with op and returns every resulting
// boundary, contours and holes alike, as one list in tree order.
//
// Subjects keep their own closedness. Clip polylines are always added as
// closed, so an open clip polyline acts as the polygon it would enclose.
func (p *Pipeline) Boolean(op Operation, subjects, clips []geom.Polyline, opts BooleanOptions) ([]geom.Polyline, error) {
	if err := ValidateTolerance(opts.Tolerance); err != nil {
		return nil, err
	}
	if len(subjects)+len(clips) == 0 {
		return nil, p.noInput("boolean", geom.ErrInsufficientGeometry)
	}
	q, err := p.quantizer(opts.Plane, opts.Tolerance, geom.Points(subjects), geom.Points(clips))
	if err != nil {
		return nil, p.noInput("boolean", err)
	}

	var paths []enginePath
	if op == MassUnion {
		paths, err = p.massUnion(q, append(append([]geom.Polyline{}, subjects...), clips...))
	} else {
		subj := make([]enginePath, len(subjects))
		for i, pl := range subjects {
			subj[i] = enginePath{path: q.ToPath(pl), closed: pl.IsClosed()}
		}
		clipPaths := make([]Path, len(clips))
		for i, pl := range clips {
			clipPaths[i] = q.ToPath(pl)
		}
		paths, err = p.execute(op, opts.FillRule, subj, clipPaths)
	}
	if err != nil {
		return nil, errors.Wrap(err, op.String())
	}

	out := make([]geom.Polyline, len(paths))
	for i, ep := range paths {
		out[i] = q.ToPolyline(ep.path, ep.closed)
	}
	Logger().Debug("clip: boolean",
		"op", op.String(),
		"subjects", len(subjects),
		"clips", len(clips),
		"results", len(out))
	return out, nil
}

// massUnion folds Union over all, one polyline at a time, starting from
// the first. Every step uses NonZero filling. The running result stays in
// engine coordinates so repeated steps do not re-quantize it.
func (p *Pipeline) massUnion(q *Quantizer, all []geom.Polyline) ([]enginePath, error) {
	acc := []enginePath{{path: q.ToPath(all[0]), closed: all[0].IsClosed()}}
	for i, pl := range all[1:] {
		next, err := p.execute(Union, NonZero, acc, []Path{q.ToPath(pl)})
		if err != nil {
			return nil, errors.Wrapf(err, "mass union step %d", i+1)
		}
		acc = next
	}
	return acc, nil
}

// execute runs one boolean operation and flattens the result tree, keeping
// every boundary with at least two points.
func (p *Pipeline) execute(op Operation, fill FillRule, subjects []enginePath, clips []Path) ([]enginePath, error) {
	c := p.engine.NewClipper()
	for _, s := range subjects {
		if err := c.AddPath(s.path, RoleSubject, s.closed); err != nil {
			return nil, err
		}
	}
	for _, path := range clips {
		if err := c.AddPath(path, RoleClip, true); err != nil {
			return nil, err
		}
	}
	tree, err := c.Execute(op, fill, fill)
	if err != nil {
		return nil, err
	}

	var out []enginePath
	for node := range tree.Walk() {
		if len(node.Contour) < 2 {
			continue
		}
		out = append(out, enginePath{path: node.Contour, closed: !node.IsOpen})
	}
	return out, nil
}
