package registry

import (
	"encoding/json"
	"io"
)

// AtomDef is the JSON shape of an unground fact template: a predicate
// applied to parameter names (conventionally "?"-prefixed, as in the
// Lisp-like form §6 of spec.md describes) or constant literals.
type AtomDef struct {
	Predicate string   `json:"predicate"`
	Args      []string `json:"args"`
}

// Definition is the isomorphic JSON encoding of one
// `(define (stream NAME) ...)` form (§6): this module's accepted stand-in
// for a Lisp reader (see SPEC_FULL.md §B — no example repo in the
// retrieval pack parses Lisp, so definitions are authored as JSON
// directly instead of translated from a text DSL).
type Definition struct {
	Kind      string    `json:"kind"` // "stream" | "function" | "predicate"
	Name      string    `json:"name"`
	Inputs    []string  `json:"inputs"`
	Domain    []AtomDef `json:"domain"`
	Outputs   []string  `json:"outputs,omitempty"`    // stream only
	Certified []AtomDef `json:"certified,omitempty"`  // stream only
	Asserts   *AtomDef  `json:"asserts,omitempty"`    // predicate only
	Negative  bool      `json:"negative,omitempty"`   // predicate only
	Eager     bool      `json:"eager,omitempty"`
	// GenFn/OptGenFn/Fn/Test name the Go callable this definition is wired
	// to at registration time (see Callables); the literal value "DEBUG"
	// for a stream's GenFn requests the built-in DebugValue fabricator
	// instead of a caller-supplied generator.
	GenFn    string `json:"gen_fn,omitempty"`
	OptGenFn string `json:"opt_gen_fn,omitempty"`
	Fn       string `json:"fn,omitempty"`
	Test     string `json:"test,omitempty"`
}

const debugGenFnName = "DEBUG"

// ParseDefinitions decodes a JSON array of Definitions, rejecting unknown
// fields and trailing data after the array (teacher convention: see
// internal/pluginengine/manifest.go's ParsePluginManifestJSON).
func ParseDefinitions(r io.Reader) ([]Definition, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var defs []Definition
	if err := dec.Decode(&defs); err != nil {
		return nil, &DefinitionError{Name: "<file>", Msg: err.Error(), Err: ErrManifestMalformed}
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return nil, &DefinitionError{Name: "<file>", Msg: "trailing data after definitions array", Err: ErrManifestMalformed}
		}
		return nil, &DefinitionError{Name: "<file>", Msg: err.Error(), Err: ErrManifestMalformed}
	}
	for _, d := range defs {
		if err := validateDefinition(d); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

func validateDefinition(d Definition) error {
	if d.Name == "" {
		return &DefinitionError{Name: "<unnamed>", Msg: "name is required", Err: ErrManifestInvalid}
	}
	switch d.Kind {
	case "stream":
		if d.GenFn == "" {
			return &DefinitionError{Name: d.Name, Msg: "stream requires gen_fn", Err: ErrManifestInvalid}
		}
	case "function":
		if d.Fn == "" {
			return &DefinitionError{Name: d.Name, Msg: "function requires fn", Err: ErrManifestInvalid}
		}
	case "predicate":
		if d.Test == "" {
			return &DefinitionError{Name: d.Name, Msg: "predicate requires test", Err: ErrManifestInvalid}
		}
		if d.Asserts == nil {
			return &DefinitionError{Name: d.Name, Msg: "predicate requires asserts", Err: ErrManifestInvalid}
		}
	default:
		return &DefinitionError{Name: d.Name, Msg: "kind must be stream, function or predicate, got " + d.Kind, Err: ErrManifestInvalid}
	}
	return nil
}
