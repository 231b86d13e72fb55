package pddl

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checks via errors.Is(). Mirrors the
// typed-wrapper-over-sentinel shape used throughout this repo's ambient
// error handling: a small struct carries context, Unwrap exposes the
// sentinel for classification.
var (
	// ErrMalformedExternal indicates a shape mismatch in a stream, function
	// or predicate definition (duplicate output parameter, a certified
	// parameter absent from inputs/outputs, an unknown external name). This
	// class of error is fatal and must be raised before the solve loop.
	ErrMalformedExternal = errors.New("malformed external")

	// ErrGeneratorMisbehavior indicates a user generator produced a
	// non-sequence output or an output tuple of the wrong arity. Fatal for
	// the owning instance only.
	ErrGeneratorMisbehavior = errors.New("generator misbehavior")

	// ErrConflictingBinding indicates a skeleton branch tried to rebind an
	// already-bound optimistic object to a different concrete object. This
	// is a local failure: the branch is dropped, not the whole solve.
	ErrConflictingBinding = errors.New("conflicting binding")

	// ErrCyclicEffortOrder indicates the effort-order graph built for
	// reordering is not a DAG. Per the design notes this is treated as a
	// bug in the caller's statistics/ordering inputs, not a recoverable
	// planning outcome.
	ErrCyclicEffortOrder = errors.New("cyclic effort order")

	// ErrDuplicateExternal indicates two externals were registered under
	// the same name.
	ErrDuplicateExternal = errors.New("duplicate external name")
)

// MalformedExternalError reports why a stream/function/predicate definition
// was rejected.
type MalformedExternalError struct {
	Name string
	Msg  string
}

func (e *MalformedExternalError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrMalformedExternal, e.Name, e.Msg)
}

func (e *MalformedExternalError) Unwrap() error { return ErrMalformedExternal }

// GeneratorError reports a misbehaving user generator.
type GeneratorError struct {
	External string
	Msg      string
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("%s: stream %q: %s", ErrGeneratorMisbehavior, e.External, e.Msg)
}

func (e *GeneratorError) Unwrap() error { return ErrGeneratorMisbehavior }
