package script

import (
	"fmt"
	"math"

	"github.com/chazu/planeclip/pkg/clip"
	"github.com/chazu/planeclip/pkg/config"
	"github.com/chazu/planeclip/pkg/geom"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms planeclip Lisp source code before passing it
// to zygomys. Besides rewriting ; comments to //, it performs two
// transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: minkowski-sum -> minkowski_sum
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only when the hyphen sits between identifier characters, so
		// (- a b) and -2 are untouched.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// session is the per-evaluation state shared by the builtins.
type session struct {
	pipeline *clip.Pipeline
	settings config.Settings

	outputs  []Output
	warnings []EvalWarning
}

func (s *session) warn(format string, args ...any) {
	s.warnings = append(s.warnings, EvalWarning{Message: fmt.Sprintf(format, args...)})
}

// planeArg returns the :plane keyword, or the configured plane.
func (s *session) planeArg(pa kwArgs) (geom.Plane, error) {
	if v, ok := pa.kw["plane"]; ok {
		return toPlane(v)
	}
	return s.settings.Plane, nil
}

// toleranceArg returns the :tolerance keyword, or the configured tolerance.
func (s *session) toleranceArg(pa kwArgs) (float64, error) {
	if v, ok := pa.kw["tolerance"]; ok {
		return toFloat64(v)
	}
	return s.settings.Tolerance, nil
}

// positionalPaths concatenates every positional argument from index from.
func positionalPaths(pa kwArgs, from int) ([]geom.Polyline, error) {
	var out []geom.Polyline
	for i := from; i < len(pa.positional); i++ {
		pls, err := toPaths(pa.positional[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out = append(out, pls...)
	}
	return out, nil
}

// registerBuiltins installs the planeclip builtins into a zygomys
// environment. Every geometry builtin runs through s.pipeline.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable string
// literals.
func registerBuiltins(env *zygo.Zlisp, s *session) {

	// -----------------------------------------------------------------------
	// (pt 1 2) (pt 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 && len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("pt requires 2 or 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pt: %s: %w", "xyz"[i:i+1], err)
			}
			c[i] = f
		}
		return &sexpPoint{p: r3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (polyline (pt 0 0) (pt 10 0) (pt 10 10) :closed true)
	// -----------------------------------------------------------------------
	env.AddFunction("polyline", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var pl geom.Polyline
		for i, a := range pa.positional {
			pts, err := toPoints(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polyline: argument %d: %w", i+1, err)
			}
			pl = append(pl, pts...)
		}
		if v, ok := pa.kw["closed"]; ok {
			closed, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polyline: closed: %w", err)
			}
			if closed {
				pl = pl.Closed()
			}
		}
		for _, f := range geom.Validate(pl) {
			if f.Severity == geom.SeverityError {
				return zygo.SexpNull, fmt.Errorf("polyline: %s", f.Message)
			}
			s.warn("polyline: %s", f.Message)
		}
		return &sexpPaths{pls: []geom.Polyline{pl}}, nil
	})

	// -----------------------------------------------------------------------
	// (paths a b ...)
	// -----------------------------------------------------------------------
	env.AddFunction("paths", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pls, err := positionalPaths(kwArgs{positional: args}, 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("paths: %w", err)
		}
		return &sexpPaths{pls: pls}, nil
	})

	// -----------------------------------------------------------------------
	// (plane :origin (pt 0 0 5) :x (pt 1 0 0) :y (pt 0 1 0))
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		world := geom.WorldXY()
		origin, xDir, yDir := world.Origin, world.XAxis, world.YAxis
		for key, dst := range map[string]*r3.Vec{"origin": &origin, "x": &xDir, "y": &yDir} {
			if v, ok := pa.kw[key]; ok {
				p, err := toPoint(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("plane: %s: %w", key, err)
				}
				*dst = p
			}
		}
		pln, err := geom.NewPlane(origin, xDir, yDir)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: %w", err)
		}
		return &sexpPlane{plane: pln}, nil
	})

	// -----------------------------------------------------------------------
	// (offset p :distance 2 :closed :round :open :butt :side :outside)
	// (offset p :distances (list 1 2 3))
	// -----------------------------------------------------------------------
	env.AddFunction("offset", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		pls, err := positionalPaths(pa, 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("offset: %w", err)
		}

		var distances []float64
		for _, key := range []string{"distance", "distances"} {
			if v, ok := pa.kw[key]; ok {
				d, err := toFloats(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("offset: %s: %w", key, err)
				}
				distances = append(distances, d...)
			}
		}
		if len(distances) == 0 {
			return zygo.SexpNull, fmt.Errorf("offset requires :distance or :distances")
		}

		opts := s.settings.OffsetOptions(distances)
		if opts.Plane, err = s.planeArg(pa); err != nil {
			return zygo.SexpNull, fmt.Errorf("offset: plane: %w", err)
		}
		if opts.Tolerance, err = s.toleranceArg(pa); err != nil {
			return zygo.SexpNull, fmt.Errorf("offset: tolerance: %w", err)
		}
		if v, ok := pa.kw["open"]; ok {
			if opts.OpenFillets, err = toOpenFillets(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("offset: open: %w", err)
			}
		}
		if v, ok := pa.kw["closed"]; ok {
			if opts.ClosedFillets, err = toClosedFillets(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("offset: closed: %w", err)
			}
		}
		if v, ok := pa.kw["side"]; ok {
			side, err := toKeywordString(v)
			if err == nil {
				opts.Side, err = clip.ParseSide(side)
			}
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("offset: side: %w", err)
			}
		}
		if v, ok := pa.kw["miter-limit"]; ok {
			if opts.MiterLimit, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("offset: miter-limit: %w", err)
			}
		}
		if v, ok := pa.kw["arc-tolerance"]; ok {
			if opts.ArcTolerance, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("offset: arc-tolerance: %w", err)
			}
		}

		res, err := s.pipeline.Offset(pls, opts)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("offset: %w", err)
		}
		var out []geom.Polyline
		for k := range res.Contours {
			out = append(out, res.Contours[k]...)
			out = append(out, res.Holes[k]...)
		}
		return &sexpPaths{pls: out}, nil
	})

	// -----------------------------------------------------------------------
	// (boolean :difference subjects clips :fill :nonzero)
	// -----------------------------------------------------------------------
	env.AddFunction("boolean", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("boolean requires an operation and subjects")
		}
		// The operation is a keyword, so it is read before parseArgs would
		// pair it with the subjects.
		opName, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("boolean: operation: %w", err)
		}
		op, err := clip.ParseOperation(opName)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("boolean: %w", err)
		}
		rest := parseArgs(args[1:])
		if len(rest.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("boolean requires subjects")
		}
		subjects, err := toPaths(rest.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("boolean: subjects: %w", err)
		}
		clips, err := positionalPaths(rest, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("boolean: clips: %w", err)
		}

		opts := s.settings.BooleanOptions()
		if opts.Plane, err = s.planeArg(rest); err != nil {
			return zygo.SexpNull, fmt.Errorf("boolean: plane: %w", err)
		}
		if opts.Tolerance, err = s.toleranceArg(rest); err != nil {
			return zygo.SexpNull, fmt.Errorf("boolean: tolerance: %w", err)
		}
		if v, ok := rest.kw["fill"]; ok {
			fill, err := toKeywordString(v)
			if err == nil {
				opts.FillRule, err = clip.ParseFillRule(fill)
			}
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("boolean: fill: %w", err)
			}
		}

		out, err := s.pipeline.Boolean(op, subjects, clips, opts)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("boolean: %w", err)
		}
		return &sexpPaths{pls: out}, nil
	})

	// -----------------------------------------------------------------------
	// (minkowski-sum pattern path) (minkowski-diff a b)
	//
	// Registered with underscores; the preprocessor rewrites the hyphens.
	// -----------------------------------------------------------------------
	type userFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)
	minkowski := func(label string, run func(a, b geom.Polyline, pln geom.Plane, tol float64) ([]geom.Polyline, error)) userFunc {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly 2 polylines, got %d", label, len(pa.positional))
			}
			a, err := toSinglePath(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: first: %w", label, err)
			}
			b, err := toSinglePath(pa.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: second: %w", label, err)
			}
			pln, err := s.planeArg(pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: plane: %w", label, err)
			}
			tol, err := s.toleranceArg(pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: tolerance: %w", label, err)
			}
			out, err := run(a, b, pln, tol)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
			}
			return &sexpPaths{pls: out}, nil
		}
	}
	env.AddFunction("minkowski_sum", minkowski("minkowski-sum", s.pipeline.MinkowskiSum))
	env.AddFunction("minkowski_diff", minkowski("minkowski-diff", s.pipeline.MinkowskiDiff))

	// -----------------------------------------------------------------------
	// (inside (pt 1 1) polygon) => "inside" | "outside" | "boundary"
	// -----------------------------------------------------------------------
	env.AddFunction("inside", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("inside requires a point and a polygon")
		}
		p, err := toPoint(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("inside: point: %w", err)
		}
		pl, err := toSinglePath(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("inside: polygon: %w", err)
		}
		pln, err := s.planeArg(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("inside: plane: %w", err)
		}
		tol, err := s.toleranceArg(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("inside: tolerance: %w", err)
		}
		where, err := s.pipeline.PointInPolygon(p, pl, pln, tol)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("inside: %w", err)
		}
		return &zygo.SexpStr{S: where.String()}, nil
	})

	// -----------------------------------------------------------------------
	// (area p) => summed unsigned area of the closed polylines in p
	// -----------------------------------------------------------------------
	env.AddFunction("area", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		pls, err := positionalPaths(pa, 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("area: %w", err)
		}
		var closed []geom.Polyline
		for _, pl := range pls {
			if pl.IsClosed() {
				closed = append(closed, pl)
			}
		}
		if len(closed) == 0 {
			return &zygo.SexpFloat{Val: 0}, nil
		}
		pln, err := s.planeArg(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("area: plane: %w", err)
		}
		if pln, err = geom.ResolvePlane(pln, closed[0].Vertices()); err != nil {
			return zygo.SexpNull, fmt.Errorf("area: %w", err)
		}
		total := 0.0
		for _, pl := range closed {
			ring := make(orb.Ring, len(pl))
			for i, p := range pl {
				u, v := pln.ClosestParameter(p)
				ring[i] = orb.Point{u, v}
			}
			total += math.Abs(planar.Area(ring))
		}
		return &zygo.SexpFloat{Val: total}, nil
	})

	// -----------------------------------------------------------------------
	// (emit "name" p)
	// -----------------------------------------------------------------------
	env.AddFunction("emit", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("emit requires a name and paths")
		}
		outName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("emit: name: %w", err)
		}
		pls, err := toPaths(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("emit: %w", err)
		}
		for _, o := range s.outputs {
			if o.Name == outName {
				return zygo.SexpNull, fmt.Errorf("emit: output %q already emitted", outName)
			}
		}
		s.outputs = append(s.outputs, Output{Name: outName, Polylines: pls})
		return args[1], nil
	})
}
