package clip

import (
	"github.com/chazu/planeclip/pkg/geom"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	requireInput bool
}

// WithRequireInput makes entry points report geom.ErrInsufficientGeometry
// instead of returning an empty result when there is nothing to work on.
func WithRequireInput() Option {
	return func(o *options) {
		o.requireInput = true
	}
}

// Pipeline runs offset, boolean, Minkowski and containment operations on
// planar polylines through an Engine. It holds no per-call state, so one
// Pipeline may be shared between goroutines as long as the Engine's
// constructors are safe to call concurrently.
type Pipeline struct {
	engine Engine
	opts   options
}

// New returns a Pipeline that drives engine.
func New(engine Engine, opts ...Option) *Pipeline {
	p := &Pipeline{engine: engine}
	for _, opt := range opts {
		opt(&p.opts)
	}
	return p
}

// quantizer validates tol, resolves the working plane from pln or the
// candidate point sets, and returns a quantizer for them.
func (p *Pipeline) quantizer(pln geom.Plane, tol float64, candidates ...[]r3.Vec) (*Quantizer, error) {
	if err := ValidateTolerance(tol); err != nil {
		return nil, err
	}
	resolved, err := geom.ResolvePlane(pln, candidates...)
	if err != nil {
		return nil, err
	}
	if resolved != pln {
		Logger().Debug("clip: fitted working plane",
			"origin", resolved.Origin, "normal", resolved.Normal())
	}
	return NewQuantizer(resolved, tol)
}

// noInput decides what an entry point returns when err says there was no
// geometry to work on. Any other error is passed through.
func (p *Pipeline) noInput(op string, err error) error {
	if !errors.Is(err, geom.ErrInsufficientGeometry) {
		return err
	}
	if p.opts.requireInput {
		return errors.Wrap(err, op)
	}
	Logger().Debug("clip: no input geometry, returning empty result", "op", op)
	return nil
}
