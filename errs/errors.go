// Package errs implements errors unique to tile coding, gradient-descent
// learning, and the Dyna environment model.
package errs

import "errors"

// Kind classifies the error conditions raised by this module.
type Kind int

const (
	// InvalidConfig reports a non-positive gridIdeal, hi <= lo, or an
	// out-of-range hyperparameter. Raised at construction; fatal.
	InvalidConfig Kind = iota

	// OutOfDomain reports a state coordinate outside [lo, hi]. Raised on
	// feature extraction; fatal to the episode.
	OutOfDomain

	// ModelEmpty reports getNextState called on an unpopulated transition.
	ModelEmpty

	// ModelMissingKey reports getReward called on an absent next state.
	ModelMissingKey

	// Numeric reports NaN or Inf detected in a TD error or a weight.
	// Fatal; indicates a diverging learning rate.
	Numeric
)

// Error implements errors unique to this module. Op names the operation
// that failed (e.g. "tilecode.NewCorrect",
// "transition.StateActionTransition.GetNextState").
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap allows errors.Is/errors.As to see through to the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an *Error of the given kind.
func New(op string, kind Kind, msg string) *Error {
	return &Error{Op: op, Kind: kind, Err: errors.New(msg)}
}

// Is reports whether err is an *Error of the argument kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// IsInvalidConfig reports whether err reports an invalid construction
// configuration.
func IsInvalidConfig(err error) bool { return Is(err, InvalidConfig) }

// IsOutOfDomain reports whether err reports a state coordinate outside
// the bounds a coder or dimension was constructed with.
func IsOutOfDomain(err error) bool { return Is(err, OutOfDomain) }

// IsModelEmpty reports whether err reports that a StateActionTransition
// has no recorded visits yet.
func IsModelEmpty(err error) bool { return Is(err, ModelEmpty) }

// IsModelMissingKey reports whether err reports a reward lookup for a
// next state that was never recorded.
func IsModelMissingKey(err error) bool { return Is(err, ModelMissingKey) }

// IsNumeric reports whether err reports a NaN or Inf in the learner's
// arithmetic.
func IsNumeric(err error) bool { return Is(err, Numeric) }
