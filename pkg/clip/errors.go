package clip

import "github.com/pkg/errors"

var (
	// ErrInvalidTolerance is returned for a tolerance that is not a
	// positive finite number. It is reported before any point is quantized.
	ErrInvalidTolerance = errors.New("tolerance must be a positive finite number")

	// ErrEngine wraps failures reported by the clipping engine.
	ErrEngine = errors.New("clipping engine failure")
)
