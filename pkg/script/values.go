package script

import (
	"fmt"
	"strings"

	"github.com/chazu/planeclip/pkg/clip"
	"github.com/chazu/planeclip/pkg/geom"
	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPoint wraps a world-space point.
type sexpPoint struct {
	p r3.Vec
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g %g)", p.p.X, p.p.Y, p.p.Z)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpPaths wraps a list of polylines. Every geometry builtin takes and
// returns this type, so results feed straight into further operations.
type sexpPaths struct {
	pls []geom.Polyline
}

func (p *sexpPaths) SexpString(ps *zygo.PrintState) string {
	var sb strings.Builder
	sb.WriteString("(paths")
	for _, pl := range p.pls {
		if pl.IsClosed() {
			fmt.Fprintf(&sb, " <closed %d>", len(pl))
		} else {
			fmt.Fprintf(&sb, " <open %d>", len(pl))
		}
	}
	sb.WriteString(")")
	return sb.String()
}
func (p *sexpPaths) Type() *zygo.RegisteredType { return nil }

// sexpPlane wraps a working plane.
type sexpPlane struct {
	plane geom.Plane
}

func (p *sexpPlane) SexpString(ps *zygo.PrintState) string {
	o := p.plane.Origin
	n := p.plane.Normal()
	return fmt.Sprintf("(plane :origin (pt %g %g %g) :normal (pt %g %g %g))", o.X, o.Y, o.Z, n.X, n.Y, n.Z)
}
func (p *sexpPlane) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toFloats accepts a single number or a list of numbers.
func toFloats(s zygo.Sexp) ([]float64, error) {
	if f, err := toFloat64(s); err == nil {
		return []float64{f}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected number or list of numbers: %w", err)
	}
	out := make([]float64, len(items))
	for i, item := range items {
		if out[i], err = toFloat64(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_round) and plain strings ("round").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toKeywordStrings accepts a single keyword or a list of them.
func toKeywordStrings(s zygo.Sexp) ([]string, error) {
	if name, err := toKeywordString(s); err == nil {
		return []string{name}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected keyword or list of keywords: %w", err)
	}
	out := make([]string, len(items))
	for i, item := range items {
		if out[i], err = toKeywordString(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

// toBool reads a boolean flag. A keyword given without a value counts as
// true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toPoint extracts a point from a sexpPoint.
func toPoint(s zygo.Sexp) (r3.Vec, error) {
	if p, ok := s.(*sexpPoint); ok {
		return p.p, nil
	}
	return r3.Vec{}, fmt.Errorf("expected point, got %T (%s)", s, s.SexpString(nil))
}

// toPoints accepts a point or a list of points.
func toPoints(s zygo.Sexp) ([]r3.Vec, error) {
	if p, err := toPoint(s); err == nil {
		return []r3.Vec{p}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected point or list of points: %w", err)
	}
	out := make([]r3.Vec, len(items))
	for i, item := range items {
		if out[i], err = toPoint(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

// toPaths extracts polylines from a sexpPaths or a list of them.
func toPaths(s zygo.Sexp) ([]geom.Polyline, error) {
	if p, ok := s.(*sexpPaths); ok {
		return p.pls, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected paths, got %T (%s)", s, s.SexpString(nil))
	}
	var out []geom.Polyline
	for i, item := range items {
		p, ok := item.(*sexpPaths)
		if !ok {
			return nil, fmt.Errorf("entry %d: expected paths, got %T", i, item)
		}
		out = append(out, p.pls...)
	}
	return out, nil
}

// toSinglePath extracts exactly one polyline.
func toSinglePath(s zygo.Sexp) (geom.Polyline, error) {
	pls, err := toPaths(s)
	if err != nil {
		return nil, err
	}
	if len(pls) != 1 {
		return nil, fmt.Errorf("expected a single polyline, got %d", len(pls))
	}
	return pls[0], nil
}

// toPlane extracts a plane from a sexpPlane.
func toPlane(s zygo.Sexp) (geom.Plane, error) {
	if p, ok := s.(*sexpPlane); ok {
		return p.plane, nil
	}
	return geom.Plane{}, fmt.Errorf("expected plane, got %T (%s)", s, s.SexpString(nil))
}

func toOpenFillets(s zygo.Sexp) ([]clip.OpenFillet, error) {
	names, err := toKeywordStrings(s)
	if err != nil {
		return nil, err
	}
	out := make([]clip.OpenFillet, len(names))
	for i, n := range names {
		if out[i], err = clip.ParseOpenFillet(n); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func toClosedFillets(s zygo.Sexp) ([]clip.ClosedFillet, error) {
	names, err := toKeywordStrings(s)
	if err != nil {
		return nil, err
	}
	out := make([]clip.ClosedFillet, len(names))
	for i, n := range names {
		if out[i], err = clip.ParseClosedFillet(n); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}
