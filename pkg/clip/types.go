// Package clip adapts planar 3D polylines to an integer polygon clipping
// engine and rebuilds 3D polylines from the engine's results.
//
// Every entry point takes its working plane and tolerance explicitly.
// Points are projected onto the plane, divided by the tolerance and
// truncated to integers; the engine (see Engine) offsets or clips the
// integer paths, and its result tree is walked back into polylines on the
// same plane.
package clip

import (
	"fmt"

	"github.com/pkg/errors"
)

// IntPoint is a quantized plane coordinate.
type IntPoint struct {
	X, Y int64
}

// Path is an integer polyline in engine form. A closed path never repeats
// its first point at the end.
type Path []IntPoint

// FillRule decides which regions of overlapping paths count as filled.
type FillRule int

const (
	EvenOdd FillRule = iota
	NonZero
)

func (f FillRule) String() string {
	switch f {
	case EvenOdd:
		return "evenodd"
	case NonZero:
		return "nonzero"
	default:
		return fmt.Sprintf("FillRule(%d)", int(f))
	}
}

// ParseFillRule converts "evenodd" or "nonzero" to a FillRule.
func ParseFillRule(s string) (FillRule, error) {
	switch s {
	case "evenodd", "even-odd":
		return EvenOdd, nil
	case "nonzero", "non-zero":
		return NonZero, nil
	}
	return 0, errors.Errorf("invalid fill rule %q, expected evenodd or nonzero", s)
}

// Operation is a boolean clip operation.
type Operation int

const (
	Intersection Operation = iota
	Union
	Difference
	Xor
	// MassUnion unions every subject and clip path one at a time.
	MassUnion
)

func (o Operation) String() string {
	switch o {
	case Intersection:
		return "intersection"
	case Union:
		return "union"
	case Difference:
		return "difference"
	case Xor:
		return "xor"
	case MassUnion:
		return "massunion"
	default:
		return fmt.Sprintf("Operation(%d)", int(o))
	}
}

// ParseOperation converts an operation name to an Operation.
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "intersection", "intersect":
		return Intersection, nil
	case "union":
		return Union, nil
	case "difference", "diff":
		return Difference, nil
	case "xor":
		return Xor, nil
	case "massunion", "mass-union":
		return MassUnion, nil
	}
	return 0, errors.Errorf("invalid boolean operation %q", s)
}

// JoinType is the engine's corner treatment.
type JoinType int

const (
	JoinSquare JoinType = iota
	JoinRound
	JoinMiter
)

func (j JoinType) String() string {
	switch j {
	case JoinSquare:
		return "square"
	case JoinRound:
		return "round"
	case JoinMiter:
		return "miter"
	default:
		return fmt.Sprintf("JoinType(%d)", int(j))
	}
}

// EndType is the engine's treatment of path ends.
type EndType int

const (
	ClosedPolygon EndType = iota
	ClosedLine
	OpenButt
	OpenSquare
	OpenRound
)

func (e EndType) String() string {
	switch e {
	case ClosedPolygon:
		return "closed-polygon"
	case ClosedLine:
		return "closed-line"
	case OpenButt:
		return "open-butt"
	case OpenSquare:
		return "open-square"
	case OpenRound:
		return "open-round"
	default:
		return fmt.Sprintf("EndType(%d)", int(e))
	}
}

// OpenFillet is the end treatment requested for an open polyline.
type OpenFillet int

const (
	ButtEnd OpenFillet = iota
	SquareEnd
	RoundEnd
)

// ClosedFillet is the corner treatment requested for a polyline.
type ClosedFillet int

const (
	SquareCorner ClosedFillet = iota
	RoundCorner
	MiterCorner
)

// ParseOpenFillet converts "butt", "square" or "round".
func ParseOpenFillet(s string) (OpenFillet, error) {
	switch s {
	case "butt":
		return ButtEnd, nil
	case "square":
		return SquareEnd, nil
	case "round":
		return RoundEnd, nil
	}
	return 0, errors.Errorf("invalid open fillet %q, expected butt, square or round", s)
}

// ParseClosedFillet converts "square", "round" or "miter".
func ParseClosedFillet(s string) (ClosedFillet, error) {
	switch s {
	case "square":
		return SquareCorner, nil
	case "round":
		return RoundCorner, nil
	case "miter":
		return MiterCorner, nil
	}
	return 0, errors.Errorf("invalid closed fillet %q, expected square, round or miter", s)
}

// PathRole says which operand set a path belongs to in a boolean operation.
type PathRole int

const (
	RoleSubject PathRole = iota
	RoleClip
)

// Containment is the result of a point-in-polygon test.
type Containment int

const (
	Outside Containment = iota
	Inside
	OnBoundary
)

func (c Containment) String() string {
	switch c {
	case Outside:
		return "outside"
	case Inside:
		return "inside"
	case OnBoundary:
		return "boundary"
	default:
		return fmt.Sprintf("Containment(%d)", int(c))
	}
}

// Side selects which offset results are kept.
type Side int

const (
	SideBoth Side = iota
	SideOutside
	SideInside
)

// ParseSide converts "both", "outside" or "inside".
func ParseSide(s string) (Side, error) {
	switch s {
	case "both", "":
		return SideBoth, nil
	case "outside":
		return SideOutside, nil
	case "inside":
		return SideInside, nil
	}
	return 0, errors.Errorf("invalid side %q, expected both, outside or inside", s)
}
