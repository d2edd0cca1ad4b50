package clip

// recordedPath is one AddPath call seen by a fake offsetter or clipper.
type recordedPath struct {
	path   Path
	join   JoinType
	end    EndType
	role   PathRole
	closed bool
}

// fakeEngine records how the pipeline drives the engine and answers with
// canned trees.
type fakeEngine struct {
	offsetters []*fakeOffsetter
	clippers   []*fakeClipper

	// offsetTree builds the result for one offset delta.
	offsetTree func(delta float64) *ResultTree
	// clipTree builds the result for one boolean execution. When nil the
	// clipper echoes every added path back as a top-level contour.
	clipTree func(c *fakeClipper) *ResultTree

	minkowskiCalls []string
	containment    Containment
	pointQueries   []IntPoint
}

func (e *fakeEngine) NewOffsetter(miterLimit, arcTolerance float64) Offsetter {
	o := &fakeOffsetter{engine: e, miter: miterLimit, arc: arcTolerance}
	e.offsetters = append(e.offsetters, o)
	return o
}

func (e *fakeEngine) NewClipper() Clipper {
	c := &fakeClipper{engine: e}
	e.clippers = append(e.clippers, c)
	return c
}

func (e *fakeEngine) MinkowskiSum(pattern, path Path, closed bool) ([]Path, error) {
	if closed {
		e.minkowskiCalls = append(e.minkowskiCalls, "sum-closed")
	} else {
		e.minkowskiCalls = append(e.minkowskiCalls, "sum-open")
	}
	return []Path{pattern, path}, nil
}

func (e *fakeEngine) MinkowskiDiff(a, b Path) ([]Path, error) {
	e.minkowskiCalls = append(e.minkowskiCalls, "diff")
	return []Path{b, a}, nil
}

func (e *fakeEngine) PointInPolygon(pt IntPoint, path Path) Containment {
	e.pointQueries = append(e.pointQueries, pt)
	return e.containment
}

type fakeOffsetter struct {
	engine     *fakeEngine
	miter, arc float64
	paths      []recordedPath
	deltas     []float64
}

func (o *fakeOffsetter) AddPath(path Path, join JoinType, end EndType) {
	o.paths = append(o.paths, recordedPath{path: path, join: join, end: end})
}

func (o *fakeOffsetter) Execute(delta float64) (*ResultTree, error) {
	o.deltas = append(o.deltas, delta)
	if o.engine.offsetTree == nil {
		return NewResultTree(), nil
	}
	return o.engine.offsetTree(delta), nil
}

type fakeClipper struct {
	engine      *fakeEngine
	paths       []recordedPath
	op          Operation
	subjectFill FillRule
	clipFill    FillRule
}

func (c *fakeClipper) AddPath(path Path, role PathRole, closed bool) error {
	c.paths = append(c.paths, recordedPath{path: path, role: role, closed: closed})
	return nil
}

func (c *fakeClipper) Execute(op Operation, subjectFill, clipFill FillRule) (*ResultTree, error) {
	c.op, c.subjectFill, c.clipFill = op, subjectFill, clipFill
	if c.engine.clipTree != nil {
		return c.engine.clipTree(c), nil
	}
	tree := NewResultTree()
	for _, p := range c.paths {
		tree.Add(Root, p.path, false, !p.closed)
	}
	return tree, nil
}

// Compile-time check that the fake satisfies the contract.
var _ Engine = (*fakeEngine)(nil)
