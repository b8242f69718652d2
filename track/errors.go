package track

import (
	"errors"
	"fmt"
)

// Construction errors.
var (
	// ErrNilCallable indicates New was given a nil callable.
	ErrNilCallable = errors.New("track: wrapped callable is required")

	// ErrSpecOrder indicates a positional-only spec appeared after a keyword spec.
	ErrSpecOrder = errors.New("track: positional-only specs must precede keyword specs")
)

// Reconfiguration errors.
var (
	// ErrPositionalLimit indicates SetPositionalLimit was given a value outside
	// [positional-only count, parameter count].
	ErrPositionalLimit = errors.New("track: positional limit out of range")
)

// Comparison errors.
var (
	// ErrComparisonFatal marks equality failures that must abort the in-flight
	// call instead of being treated as "not equal". Wrap an error with Fatal
	// to place it in this class.
	ErrComparisonFatal = errors.New("track: fatal comparison failure")

	// ErrComparisonPanic wraps a panic recovered from a value's Equal method.
	// Panics are reported to the comparison-error hook and the candidate is
	// treated as not equal.
	ErrComparisonPanic = errors.New("track: comparison panicked")
)

// Fatal wraps err so a failing watched-value comparison aborts the entire
// call. The caller of the wrapper receives the error instead of a forwarded
// result.
func Fatal(err error) error {
	return fmt.Errorf("%w: %w", ErrComparisonFatal, err)
}
