// Package clipper implements the clip.Engine interface using the
// github.com/ctessum/go.clipper polygon clipping library.
package clipper

import (
	"github.com/chazu/planeclip/pkg/clip"
	gc "github.com/ctessum/go.clipper"
	"github.com/pkg/errors"
)

// Compile-time interface check.
var _ clip.Engine = (*Engine)(nil)

// Engine implements clip.Engine with go.clipper. It is stateless; every
// offsetter and clipper it hands out owns a fresh library instance.
type Engine struct{}

// New returns a new Engine.
func New() *Engine {
	return &Engine{}
}

// NewOffsetter returns an offsetter backed by a gc.ClipperOffset.
func (e *Engine) NewOffsetter(miterLimit, arcTolerance float64) clip.Offsetter {
	co := gc.NewClipperOffset()
	co.MiterLimit = miterLimit
	co.ArcTolerance = arcTolerance
	return &offsetter{co: co}
}

// NewClipper returns a boolean clipper backed by a gc.Clipper.
func (e *Engine) NewClipper() clip.Clipper {
	return &clipper{c: gc.NewClipper(gc.IoNone)}
}

// MinkowskiSum sweeps pattern along path.
func (e *Engine) MinkowskiSum(pattern, path clip.Path, closed bool) (paths []clip.Path, err error) {
	defer recoverEngine("minkowski sum", &err)
	c := gc.NewClipper(gc.IoNone)
	return fromPaths(c.MinkowskiSum(toPath(pattern, true), toPath(path, closed), closed)), nil
}

// MinkowskiDiff returns the Minkowski difference of a and b.
func (e *Engine) MinkowskiDiff(a, b clip.Path) (paths []clip.Path, err error) {
	defer recoverEngine("minkowski difference", &err)
	c := gc.NewClipper(gc.IoNone)
	return fromPaths(c.MinkowskiDiff(toPath(a, true), toPath(b, true))), nil
}

// PointInPolygon classifies pt against path.
func (e *Engine) PointInPolygon(pt clip.IntPoint, path clip.Path) clip.Containment {
	switch gc.PointInPolygon(toPoint(pt), toPath(path, true)) {
	case 1:
		return clip.Inside
	case -1:
		return clip.OnBoundary
	default:
		return clip.Outside
	}
}

// offsetter wraps a gc.ClipperOffset to implement clip.Offsetter.
type offsetter struct {
	co *gc.ClipperOffset
}

func (o *offsetter) AddPath(path clip.Path, join clip.JoinType, end clip.EndType) {
	closed := end == clip.ClosedLine || end == clip.ClosedPolygon
	o.co.AddPath(toPath(path, closed), joinType(join), endType(end))
}

func (o *offsetter) Execute(delta float64) (tree *clip.ResultTree, err error) {
	defer recoverEngine("offset", &err)
	return convertTree(o.co.Execute2(delta)), nil
}

// clipper wraps a gc.Clipper to implement clip.Clipper.
type clipper struct {
	c     *gc.Clipper
	added int
}

func (c *clipper) AddPath(path clip.Path, role clip.PathRole, closed bool) (err error) {
	if role == clip.RoleClip && !closed {
		return errors.Wrap(clip.ErrEngine, "open paths must be subject paths")
	}
	defer recoverEngine("add path", &err)
	polyType := gc.PtSubject
	if role == clip.RoleClip {
		polyType = gc.PtClip
	}
	// A false return means the path was degenerate and ignored.
	if c.c.AddPath(toPath(path, closed), polyType, closed) {
		c.added++
	}
	return nil
}

func (c *clipper) Execute(op clip.Operation, subjectFill, clipFill clip.FillRule) (tree *clip.ResultTree, err error) {
	ct, err := clipType(op)
	if err != nil {
		return nil, err
	}
	if c.added == 0 {
		return clip.NewResultTree(), nil
	}
	defer recoverEngine("execute "+op.String(), &err)
	pt, ok := c.c.Execute2(ct, fillType(subjectFill), fillType(clipFill))
	if !ok {
		return nil, errors.Wrapf(clip.ErrEngine, "%s did not succeed", op)
	}
	return convertTree(pt), nil
}

// recoverEngine turns a library panic into an ErrEngine error.
func recoverEngine(op string, err *error) {
	if r := recover(); r != nil {
		clip.Logger().Warn("clipper: recovered engine panic", "op", op, "panic", r)
		*err = errors.Wrapf(clip.ErrEngine, "%s: %v", op, r)
	}
}

func clipType(op clip.Operation) (gc.ClipType, error) {
	switch op {
	case clip.Intersection:
		return gc.CtIntersection, nil
	case clip.Union:
		return gc.CtUnion, nil
	case clip.Difference:
		return gc.CtDifference, nil
	case clip.Xor:
		return gc.CtXor, nil
	}
	return 0, errors.Wrapf(clip.ErrEngine, "operation %s is not a single engine pass", op)
}

func fillType(f clip.FillRule) gc.PolyFillType {
	if f == clip.NonZero {
		return gc.PftNonZero
	}
	return gc.PftEvenOdd
}

func joinType(j clip.JoinType) gc.JoinType {
	switch j {
	case clip.JoinRound:
		return gc.JtRound
	case clip.JoinMiter:
		return gc.JtMiter
	default:
		return gc.JtSquare
	}
}

func endType(e clip.EndType) gc.EndType {
	switch e {
	case clip.ClosedPolygon:
		return gc.EtClosedPolygon
	case clip.ClosedLine:
		return gc.EtClosedLine
	case clip.OpenSquare:
		return gc.EtOpenSquare
	case clip.OpenRound:
		return gc.EtOpenRound
	default:
		return gc.EtOpenButt
	}
}
