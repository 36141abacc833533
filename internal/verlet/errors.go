package verlet

import (
	"errors"
	"fmt"
)

// Domain errors for store and simulation operations.
var (
	// ErrOutOfRange indicates an index beyond the current size of a store.
	ErrOutOfRange = errors.New("verlet: index out of range")

	// ErrStaleHandle indicates a handle whose particle has been removed.
	ErrStaleHandle = errors.New("verlet: stale particle handle")

	// ErrInvalidConstraint indicates a link or pair with no usable separation axis
	// (coincident centres) or with invalid parameters.
	ErrInvalidConstraint = errors.New("verlet: invalid constraint")

	// ErrCapacityExhausted indicates a store could not grow past its maximum.
	ErrCapacityExhausted = errors.New("verlet: capacity exhausted")

	// ErrInvalidConfig indicates a solver configuration outside valid bounds.
	ErrInvalidConfig = errors.New("verlet: invalid configuration")

	// ErrInvalidStep indicates a non-positive or non-finite time step.
	ErrInvalidStep = errors.New("verlet: invalid time step")
)

// ElementKind names the kind of element a per-element failure refers to.
type ElementKind string

const (
	KindParticle ElementKind = "particle"
	KindLink     ElementKind = "link"
	KindPair     ElementKind = "pair"
)

// ElementError wraps a failure of a single element during a bulk step.
// The element is skipped; the rest of the step proceeds. For pairs, Index
// and Other are the two particle indices.
type ElementError struct {
	Step    int
	Kind    ElementKind
	Index   int
	Other   int
	Wrapped error
}

func (e *ElementError) Error() string {
	if e.Kind == KindPair {
		return fmt.Sprintf("step %d: %s %d,%d: %v", e.Step, e.Kind, e.Index, e.Other, e.Wrapped)
	}
	return fmt.Sprintf("step %d: %s %d: %v", e.Step, e.Kind, e.Index, e.Wrapped)
}

func (e *ElementError) Unwrap() error {
	return e.Wrapped
}
