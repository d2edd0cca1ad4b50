package clipper_test

import (
	"math"
	"testing"

	"github.com/chazu/planeclip/pkg/clip"
	"github.com/chazu/planeclip/pkg/clip/clipper"
	"github.com/chazu/planeclip/pkg/geom"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// A power-of-two tolerance keeps quantization exact for these fixtures.
const tol = 0.125

func square(x0, y0, side float64) geom.Polyline {
	return geom.Polyline{
		{X: x0, Y: y0},
		{X: x0 + side, Y: y0},
		{X: x0 + side, Y: y0 + side},
		{X: x0, Y: y0 + side},
		{X: x0, Y: y0},
	}
}

func area(pl geom.Polyline) float64 {
	ring := make(orb.Ring, len(pl))
	for i, p := range pl {
		ring[i] = orb.Point{p.X, p.Y}
	}
	return math.Abs(planar.Area(ring))
}

func bounds(pl geom.Polyline) orb.Bound {
	b := orb.Bound{Min: orb.Point{pl[0].X, pl[0].Y}, Max: orb.Point{pl[0].X, pl[0].Y}}
	for _, p := range pl[1:] {
		b = b.Extend(orb.Point{p.X, p.Y})
	}
	return b
}

func pipeline() *clip.Pipeline {
	return clip.New(clipper.New())
}

func TestOffsetClosedSquareMiter(t *testing.T) {
	res, err := pipeline().Offset([]geom.Polyline{square(0, 0, 10)}, clip.OffsetOptions{
		ClosedFillets: []clip.ClosedFillet{clip.MiterCorner},
		Plane:         geom.WorldXY(),
		Tolerance:     tol,
		Distances:     []float64{2},
		MiterLimit:    2,
		ArcTolerance:  0.25,
	})
	require.NoError(t, err)
	require.Len(t, res.Contours, 1)
	require.Len(t, res.Contours[0], 1)
	require.Len(t, res.Holes[0], 1)

	outer := res.Contours[0][0]
	assert.True(t, outer.IsClosed())
	assert.InDelta(t, 196, area(outer), 1e-9)
	assert.Equal(t, orb.Bound{Min: orb.Point{-2, -2}, Max: orb.Point{12, 12}}, bounds(outer))

	hole := res.Holes[0][0]
	assert.True(t, hole.IsClosed())
	assert.InDelta(t, 36, area(hole), 1e-9)
	assert.Equal(t, orb.Bound{Min: orb.Point{2, 2}, Max: orb.Point{8, 8}}, bounds(hole))
}

func TestOffsetClosedSquareSquareJoin(t *testing.T) {
	res, err := pipeline().Offset([]geom.Polyline{square(0, 0, 10)}, clip.OffsetOptions{
		Plane:        geom.WorldXY(),
		Tolerance:    tol,
		Distances:    []float64{2},
		MiterLimit:   2,
		ArcTolerance: 0.25,
	})
	require.NoError(t, err)
	require.Len(t, res.Contours[0], 1)

	outer := res.Contours[0][0]
	assert.Equal(t, orb.Bound{Min: orb.Point{-2, -2}, Max: orb.Point{12, 12}}, bounds(outer))
	// Chamfered corners shave a little off the mitred 196. The chamfer sits
	// on the grid, so the area is exact for this tolerance.
	assert.InDelta(t, 193.46875, area(outer), 1e-9)
	assert.Greater(t, len(outer), 5)
}

func TestOffsetMultipleDistances(t *testing.T) {
	res, err := pipeline().Offset([]geom.Polyline{square(0, 0, 10)}, clip.OffsetOptions{
		ClosedFillets: []clip.ClosedFillet{clip.MiterCorner},
		Plane:         geom.WorldXY(),
		Tolerance:     tol,
		Distances:     []float64{1, 3},
		MiterLimit:    2,
		ArcTolerance:  0.25,
	})
	require.NoError(t, err)
	require.Len(t, res.Contours, 2)
	assert.InDelta(t, 144, area(res.Contours[0][0]), 1e-9)
	assert.InDelta(t, 256, area(res.Contours[1][0]), 1e-9)
	assert.InDelta(t, 64, area(res.Holes[0][0]), 1e-9)
	assert.InDelta(t, 16, area(res.Holes[1][0]), 1e-9)
}

func TestOffsetNegativeDistanceOnClosedLineIsEmpty(t *testing.T) {
	res, err := pipeline().Offset([]geom.Polyline{square(0, 0, 10)}, clip.OffsetOptions{
		Plane:        geom.WorldXY(),
		Tolerance:    tol,
		Distances:    []float64{-1},
		MiterLimit:   2,
		ArcTolerance: 0.25,
	})
	require.NoError(t, err)
	require.Len(t, res.Contours, 1)
	assert.Empty(t, res.Contours[0])
	assert.Empty(t, res.Holes[0])
}

func TestOffsetOpenLineButt(t *testing.T) {
	line := geom.Polyline{{}, {X: 10}}
	res, err := pipeline().Offset([]geom.Polyline{line}, clip.OffsetOptions{
		Plane:        geom.WorldXY(),
		Tolerance:    tol,
		Distances:    []float64{1},
		MiterLimit:   2,
		ArcTolerance: 0.25,
	})
	require.NoError(t, err)
	require.Len(t, res.Contours[0], 1)
	assert.Empty(t, res.Holes[0])

	outer := res.Contours[0][0]
	assert.InDelta(t, 20, area(outer), 1e-9)
	assert.Equal(t, orb.Bound{Min: orb.Point{0, -1}, Max: orb.Point{10, 1}}, bounds(outer))
}

func TestOffsetOnLiftedPlane(t *testing.T) {
	lifted := square(0, 0, 10).Translate(r3.Vec{Z: 4})
	pln, err := geom.NewPlane(r3.Vec{Z: 4}, r3.Vec{X: 1}, r3.Vec{Y: 1})
	require.NoError(t, err)

	res, err := pipeline().Offset([]geom.Polyline{lifted}, clip.OffsetOptions{
		ClosedFillets: []clip.ClosedFillet{clip.MiterCorner},
		Plane:         pln,
		Tolerance:     tol,
		Distances:     []float64{2},
		MiterLimit:    2,
		ArcTolerance:  0.25,
	})
	require.NoError(t, err)
	for _, p := range res.Contours[0][0] {
		assert.InDelta(t, 4, p.Z, 1e-12)
	}
}

func TestBooleanUnionOfIdenticalSquares(t *testing.T) {
	a := square(0, 0, 10)
	out, err := pipeline().Boolean(clip.Union, []geom.Polyline{a}, []geom.Polyline{a},
		clip.BooleanOptions{Plane: geom.WorldXY(), Tolerance: tol})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsClosed())
	assert.InDelta(t, 100, area(out[0]), 1e-9)
}

func TestBooleanXorOfIdenticalSquaresIsEmpty(t *testing.T) {
	a := square(0, 0, 10)
	out, err := pipeline().Boolean(clip.Xor, []geom.Polyline{a}, []geom.Polyline{a},
		clip.BooleanOptions{Plane: geom.WorldXY(), Tolerance: tol})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestBooleanIntersectionWithoutClipsIsEmpty(t *testing.T) {
	out, err := pipeline().Boolean(clip.Intersection, []geom.Polyline{square(0, 0, 10)}, nil,
		clip.BooleanOptions{Plane: geom.WorldXY(), Tolerance: tol})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestBooleanOverlappingSquares(t *testing.T) {
	a := square(0, 0, 10)
	b := square(5, 5, 10)
	opts := clip.BooleanOptions{Plane: geom.WorldXY(), Tolerance: tol}

	tests := []struct {
		op   clip.Operation
		area float64
	}{
		{clip.Intersection, 25},
		{clip.Union, 175},
		{clip.Difference, 75},
		{clip.Xor, 150},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			out, err := pipeline().Boolean(tt.op, []geom.Polyline{a}, []geom.Polyline{b}, opts)
			require.NoError(t, err)
			require.NotEmpty(t, out)
			total := 0.0
			for _, pl := range out {
				total += area(pl)
			}
			assert.InDelta(t, tt.area, total, 1e-9)
		})
	}
}

func TestBooleanOpenSubjectIsClipped(t *testing.T) {
	line := geom.Polyline{{X: 5, Y: -5}, {X: 5, Y: 15}}
	out, err := pipeline().Boolean(clip.Intersection, []geom.Polyline{line}, []geom.Polyline{square(0, 0, 10)},
		clip.BooleanOptions{Plane: geom.WorldXY(), Tolerance: tol})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.False(t, out[0].IsClosed())
	assert.InDelta(t, 10, out[0].Length(), 1e-9)
}

func TestMassUnion(t *testing.T) {
	subjects := []geom.Polyline{square(0, 0, 10), square(5, 0, 10)}
	clips := []geom.Polyline{square(10, 0, 10)}
	out, err := pipeline().Boolean(clip.MassUnion, subjects, clips,
		clip.BooleanOptions{Plane: geom.WorldXY(), Tolerance: tol})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 200, area(out[0]), 1e-9)
}

func TestMinkowskiSumAroundClosedSquare(t *testing.T) {
	out, err := pipeline().MinkowskiSum(square(0, 0, 1), square(0, 0, 10), geom.WorldXY(), tol)
	require.NoError(t, err)
	require.Len(t, out, 2)

	big, small := area(out[0]), area(out[1])
	if big < small {
		big, small = small, big
	}
	assert.InDelta(t, 121, big, 1e-9)
	assert.InDelta(t, 81, small, 1e-9)
	for _, pl := range out {
		assert.True(t, pl.IsClosed())
	}
}

func TestMinkowskiDiffProducesClosedRegions(t *testing.T) {
	out, err := pipeline().MinkowskiDiff(square(0, 0, 1), square(0, 0, 10), geom.WorldXY(), tol)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	for _, pl := range out {
		assert.True(t, pl.IsClosed())
	}
}

func TestPointInPolygon(t *testing.T) {
	sq := square(0, 0, 10)
	tests := []struct {
		name string
		pt   r3.Vec
		want clip.Containment
	}{
		{"inside", r3.Vec{X: 5, Y: 5}, clip.Inside},
		{"on edge", r3.Vec{X: 10, Y: 5}, clip.OnBoundary},
		{"on vertex", r3.Vec{}, clip.OnBoundary},
		{"outside", r3.Vec{X: 11, Y: 5}, clip.Outside},
		{"above plane projects inside", r3.Vec{X: 5, Y: 5, Z: 30}, clip.Inside},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pipeline().PointInPolygon(tt.pt, sq, geom.WorldXY(), tol)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPointInPolygonFittedPlane(t *testing.T) {
	// Without an explicit plane the square's own fit must keep its edges
	// on grid lines.
	sq := square(0, 0, 10)
	tests := []struct {
		pt   r3.Vec
		want clip.Containment
	}{
		{r3.Vec{X: 10, Y: 5}, clip.OnBoundary},
		{r3.Vec{X: 5, Y: 0}, clip.OnBoundary},
		{r3.Vec{X: 9.9, Y: 5}, clip.Inside},
		{r3.Vec{X: 10.1, Y: 5}, clip.Outside},
	}
	for _, tt := range tests {
		got, err := pipeline().PointInPolygon(tt.pt, sq, geom.Plane{}, 0.001)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "point %v", tt.pt)
	}
}

func TestEngineRejectsOpenClipPath(t *testing.T) {
	c := clipper.New().NewClipper()
	err := c.AddPath(clip.Path{{X: 0, Y: 0}, {X: 10, Y: 0}}, clip.RoleClip, false)
	require.ErrorIs(t, err, clip.ErrEngine)
}

func TestEngineRejectsMassUnionPass(t *testing.T) {
	c := clipper.New().NewClipper()
	require.NoError(t, c.AddPath(clip.Path{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}, clip.RoleSubject, true))
	_, err := c.Execute(clip.MassUnion, clip.NonZero, clip.NonZero)
	require.ErrorIs(t, err, clip.ErrEngine)
}

func TestEngineDropsDuplicateVertices(t *testing.T) {
	c := clipper.New().NewClipper()
	path := clip.Path{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}}
	require.NoError(t, c.AddPath(path, clip.RoleSubject, true))
	tree, err := c.Execute(clip.Union, clip.NonZero, clip.NonZero)
	require.NoError(t, err)
	require.Equal(t, 2, tree.Len())
	assert.Len(t, tree.Nodes[1].Contour, 4)
	assert.False(t, tree.Nodes[1].IsHole)
}

func TestEngineEmptyClipperYieldsEmptyTree(t *testing.T) {
	c := clipper.New().NewClipper()
	tree, err := c.Execute(clip.Union, clip.EvenOdd, clip.EvenOdd)
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Len())
}

func TestEngineHoleFlagsFollowNesting(t *testing.T) {
	c := clipper.New().NewClipper()
	outer := clip.Path{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}
	hole := clip.Path{{X: 20, Y: 20}, {X: 20, Y: 80}, {X: 80, Y: 80}, {X: 80, Y: 20}}
	island := clip.Path{{X: 40, Y: 40}, {X: 60, Y: 40}, {X: 60, Y: 60}, {X: 40, Y: 60}}
	for _, p := range []clip.Path{outer, hole, island} {
		require.NoError(t, c.AddPath(p, clip.RoleSubject, true))
	}
	tree, err := c.Execute(clip.Union, clip.EvenOdd, clip.EvenOdd)
	require.NoError(t, err)

	var holes, contours int
	for n := range tree.Walk() {
		if len(n.Contour) == 0 {
			continue
		}
		if n.IsHole {
			holes++
		} else {
			contours++
		}
	}
	assert.Equal(t, 1, holes)
	assert.Equal(t, 2, contours)
}
