package registry

import (
	"fmt"
	"sort"

	"github.com/m1sk/pddlstream/pddl"
)

// Callables supplies the Go-side gen_fn/opt_gen_fn/fn/test implementations
// that Definitions reference by name. A Definition's declarative shape
// (inputs, domain, outputs, certified) lives in JSON; its behavior is
// always wired from Go code, the same split the teacher's plugin manifests
// use between declared metadata and registered hook implementations.
type Callables struct {
	GenFns             map[string]pddl.GenFn
	OptGenFns          map[string]pddl.GenFn
	Functions          map[string]func(inputs []any) (float64, error)
	FunctionEstimators map[string]func(inputs []any) (float64, error)
	Tests              map[string]func(inputs []any) (bool, error)
}

// Registry is the External registry (component 2): every declared stream,
// function and predicate for one solve, keyed by name, plus the
// interning pool, instance table and instantiator built over them. A
// Registry is owned by a single solve — its DebugValue counters and Pool
// never leak across solves (§9 design note on DebugValue's global
// counter).
type Registry struct {
	pool         *pddl.Pool
	table        *pddl.InstanceTable
	externals    map[string]pddl.External
	eager        []pddl.External
	debugCounts  map[string]int
}

// New builds a Registry from defs, resolving each definition's callables
// from c and rejecting duplicate names.
func New(defs []Definition, c Callables) (*Registry, error) {
	pool := pddl.NewPool()
	reg := &Registry{
		pool:        pool,
		externals:   make(map[string]pddl.External, len(defs)),
		debugCounts: make(map[string]int),
	}
	for _, d := range defs {
		if _, exists := reg.externals[d.Name]; exists {
			return nil, &pddl.MalformedExternalError{Name: d.Name, Msg: pddl.ErrDuplicateExternal.Error()}
		}
		ext, err := reg.build(d, c)
		if err != nil {
			return nil, err
		}
		reg.externals[d.Name] = ext
		if ext.Info().Eager {
			reg.eager = append(reg.eager, ext)
		}
	}
	reg.table = pddl.NewInstanceTable(pool)
	return reg, nil
}

func (r *Registry) build(d Definition, c Callables) (pddl.External, error) {
	domain := toAtoms(d.Domain)
	info := &pddl.ExternalInfo{Eager: d.Eager}

	switch d.Kind {
	case "stream":
		genFn, err := r.resolveGenFn(d, c)
		if err != nil {
			return nil, err
		}
		optGenFn := c.OptGenFns[d.OptGenFn] // nil is fine: NewStream defaults it
		return pddl.NewStream(d.Name, d.Inputs, domain, d.Outputs, toAtoms(d.Certified), genFn, optGenFn, info)
	case "function":
		fn, ok := c.Functions[d.Fn]
		if !ok {
			return nil, &DefinitionError{Name: d.Name, Msg: "no Functions[" + d.Fn + "]", Err: ErrMissingCallable}
		}
		est := c.FunctionEstimators[d.Fn]
		return pddl.NewFunction(d.Name, d.Inputs, domain, fn, est, info), nil
	case "predicate":
		test, ok := c.Tests[d.Test]
		if !ok {
			return nil, &DefinitionError{Name: d.Name, Msg: "no Tests[" + d.Test + "]", Err: ErrMissingCallable}
		}
		certified := pddl.Atom{Predicate: d.Asserts.Predicate, Args: d.Asserts.Args}
		return pddl.NewPredicate(d.Name, d.Inputs, domain, certified, test, d.Negative, info), nil
	default:
		return nil, &DefinitionError{Name: d.Name, Msg: "unknown kind " + d.Kind, Err: ErrManifestInvalid}
	}
}

func (r *Registry) resolveGenFn(d Definition, c Callables) (pddl.GenFn, error) {
	if d.GenFn == debugGenFnName {
		return r.debugGenFn(d.Name, len(d.Outputs)), nil
	}
	fn, ok := c.GenFns[d.GenFn]
	if !ok {
		return nil, &DefinitionError{Name: d.Name, Msg: "no GenFns[" + d.GenFn + "]", Err: ErrMissingCallable}
	}
	return fn, nil
}

// debugGenFn fabricates one fresh placeholder tuple per instance (a
// single-shot FromFn generator), fed by a
// counter scoped to this Registry — the DebugValue feature (§9 design
// note, SPEC_FULL.md §C), for wiring a stream definition before its real
// sampler exists.
func (r *Registry) debugGenFn(name string, numOutputs int) pddl.GenFn {
	return pddl.FromFn(func(inputs []any) ([]any, bool, error) {
		r.debugCounts[name]++
		n := r.debugCounts[name]
		tuple := make([]any, numOutputs)
		for i := range tuple {
			tuple[i] = fmt.Sprintf("debug:%s:%d:%d", name, n, i)
		}
		return tuple, true, nil
	})
}

func toAtoms(defs []AtomDef) []pddl.Atom {
	out := make([]pddl.Atom, len(defs))
	for i, d := range defs {
		out[i] = pddl.Atom{Predicate: d.Predicate, Args: d.Args}
	}
	return out
}

// Pool returns the interning pool shared by every Instance this registry
// creates.
func (r *Registry) Pool() *pddl.Pool { return r.pool }

// Table returns the instance table shared by every Instance this registry
// creates.
func (r *Registry) Table() *pddl.InstanceTable { return r.table }

// All returns every registered external, sorted by name for deterministic
// iteration (the texture this module keeps throughout, per the teacher's
// sorted-directory-scan/sorted-node convention).
func (r *Registry) All() []pddl.External {
	names := make([]string, 0, len(r.externals))
	for n := range r.externals {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]pddl.External, len(names))
	for i, n := range names {
		out[i] = r.externals[n]
	}
	return out
}

// Eager returns the externals marked eager, sorted by name.
func (r *Registry) Eager() []pddl.External {
	names := make([]string, 0, len(r.eager))
	byName := make(map[string]pddl.External, len(r.eager))
	for _, e := range r.eager {
		names = append(names, e.Name())
		byName[e.Name()] = e
	}
	sort.Strings(names)
	out := make([]pddl.External, len(names))
	for i, n := range names {
		out[i] = byName[n]
	}
	return out
}

// Get returns the external registered under name, or false if none.
func (r *Registry) Get(name string) (pddl.External, bool) {
	e, ok := r.externals[name]
	return e, ok
}

// NewInstantiator builds a fresh Instantiator over every registered
// external, bound to this registry's pool and instance table.
func (r *Registry) NewInstantiator() *pddl.Instantiator {
	return pddl.NewInstantiator(r.pool, r.table, r.All())
}
