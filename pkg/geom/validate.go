package geom

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ValidationSeverity indicates whether a finding excludes a polyline from
// the batch or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // polyline is dropped
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single finding for one input polyline.
type ValidationError struct {
	Index    int                // position of the polyline in its batch (-1 if standalone)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] polyline %d: %s", e.Severity, e.Index, e.Message)
}

// Validate checks a single polyline. Errors mean the polyline must not enter
// the pipeline; warnings are advisory.
func Validate(pl Polyline) []ValidationError {
	return validateAt(-1, pl)
}

// ValidateAll validates a batch. It returns the polylines without blocking
// errors, in input order, together with every finding. A bad polyline never
// aborts the rest of the batch.
func ValidateAll(pls []Polyline) ([]Polyline, []ValidationError) {
	var usable []Polyline
	var findings []ValidationError
	for i, pl := range pls {
		errs := validateAt(i, pl)
		findings = append(findings, errs...)
		if !hasErrors(errs) {
			usable = append(usable, pl)
		}
	}
	return usable, findings
}

func validateAt(index int, pl Polyline) []ValidationError {
	var errs []ValidationError
	if len(pl) == 0 {
		return append(errs, ValidationError{
			Index:    index,
			Message:  "polyline has no points",
			Severity: SeverityError,
		})
	}
	for j, p := range pl {
		if !finite(p) {
			errs = append(errs, ValidationError{
				Index:    index,
				Message:  fmt.Sprintf("point %d is not finite: %v", j, p),
				Severity: SeverityError,
			})
		}
	}
	if hasErrors(errs) {
		return errs
	}
	for j := 1; j < len(pl); j++ {
		if r3.Norm(r3.Sub(pl[j], pl[j-1])) <= ZeroTolerance {
			errs = append(errs, ValidationError{
				Index:    index,
				Message:  fmt.Sprintf("segment %d has zero length", j-1),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

func hasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
