package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidAspect is reported when a caller supplies a non-positive or
// non-finite video aspect.
var ErrInvalidAspect = errors.New("invalid video aspect")

// Violation describes an input or invariant problem that the math corrected
// on its own. Callers decide how loudly to log it.
type Violation struct {
	// Invariant is true for programming errors (e.g. a Keep fit that left
	// the screen); false for sanitized caller input.
	Invariant bool
	Err       error
}

func (v *Violation) Error() string {
	if v == nil || v.Err == nil {
		return "<nil>"
	}
	return v.Err.Error()
}

func (v *Violation) Unwrap() error {
	if v == nil {
		return nil
	}
	return v.Err
}

func violate(invariant bool, format string, args ...any) *Violation {
	err := fmt.Errorf(format, args...)
	if invariant && debugChecks {
		panic(err)
	}
	return &Violation{Invariant: invariant, Err: err}
}

// ValidAspect reports whether a is usable as a video aspect.
func ValidAspect(a float64) bool {
	return a > 0 && !math.IsInf(a, 0) && !math.IsNaN(a)
}

// SanitizeAspect returns a, or 1:1 with a Violation when a is unusable.
// Debug builds panic instead.
func SanitizeAspect(a float64) (float64, *Violation) {
	if ValidAspect(a) {
		return a, nil
	}
	if debugChecks {
		panic(fmt.Errorf("%w: %v", ErrInvalidAspect, a))
	}
	return 1, &Violation{Err: fmt.Errorf("%w: %v (substituting 1:1)", ErrInvalidAspect, a)}
}
