package registry

import (
	"errors"
	"fmt"
)

// Sentinel errors for definition loading, mirroring the shape used
// throughout this module: a sentinel classified via errors.Is, a typed
// wrapper carrying context via Unwrap.
var (
	// ErrManifestMalformed indicates the definitions file is not valid
	// JSON, or has unknown fields, or trailing data after the JSON value.
	ErrManifestMalformed = errors.New("malformed definitions file")
	// ErrManifestInvalid indicates a well-formed definition with missing
	// or inconsistent required fields (unknown kind, empty name).
	ErrManifestInvalid = errors.New("invalid definition")
	// ErrMissingCallable indicates a definition named a gen_fn/fn/test that
	// the caller did not supply in Callables.
	ErrMissingCallable = errors.New("missing callable for definition")
)

// DefinitionError reports why one Definition was rejected.
type DefinitionError struct {
	Name string
	Msg  string
	Err  error // one of the sentinels above
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Err, e.Name, e.Msg)
}

func (e *DefinitionError) Unwrap() error { return e.Err }
