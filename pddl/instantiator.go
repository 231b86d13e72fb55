package pddl

import "sort"

// Instantiator incrementally discovers complete parameter bindings for a
// fixed set of externals as new evaluations arrive, and canonicalizes each
// complete binding into a single Instance via table. It is BFS-layered in
// the sense that each call to Ground only returns instances made newly
// groundable by evaluations added since the previous call — callers drive
// the outer fixed-point loop (pddl/optimistic.go).
type Instantiator struct {
	externals []External // stable order: caller sorts by name
	pool      *Pool
	table     *InstanceTable
	seen      map[string]bool
}

// NewInstantiator builds an Instantiator over a fixed external set.
func NewInstantiator(pool *Pool, table *InstanceTable, externals []External) *Instantiator {
	return &Instantiator{externals: externals, pool: pool, table: table, seen: make(map[string]bool)}
}

// Ground scans evals for every complete, not-yet-returned binding of every
// external's domain and returns the resulting Instances in deterministic
// order (by external name, then by input token tuple). Calling Ground
// again after evals has grown only returns instances not already returned
// by a prior call — the "layer" of newly enabled work.
func (in *Instantiator) Ground(evals *EvaluationSet) []*Instance {
	var fresh []*Instance
	for _, ext := range in.externals {
		bindings := joinDomain(ext.Domain(), evals, in.pool)
		for _, binding := range bindings {
			inputs := make([]Term, len(ext.Inputs()))
			complete := true
			for i, name := range ext.Inputs() {
				t, ok := binding[name]
				if !ok {
					// Input never appears in domain: only possible for a
					// nullary-domain external, which is ungroundable here;
					// skip rather than fabricate a binding.
					complete = false
					break
				}
				inputs[i] = t
			}
			if !complete {
				continue
			}
			inst := in.table.GetInstance(ext, inputs)
			if !in.seen[inst.Key()] {
				in.seen[inst.Key()] = true
				fresh = append(fresh, inst)
			}
		}
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].Key() < fresh[j].Key() })
	return fresh
}

// joinDomain returns every complete binding of an external's domain atoms'
// parameters against evals, via ordered backtracking: each atom in turn is
// unified against every known fact of its predicate, extending or
// rejecting the binding built so far. An empty domain trivially matches
// once (a single empty binding).
func joinDomain(domain []Atom, evals *EvaluationSet, pool *Pool) []map[string]Term {
	if len(domain) == 0 {
		return []map[string]Term{{}}
	}
	var results []map[string]Term
	var backtrack func(i int, binding map[string]Term)
	backtrack = func(i int, binding map[string]Term) {
		if i == len(domain) {
			cp := make(map[string]Term, len(binding))
			for k, v := range binding {
				cp[k] = v
			}
			results = append(results, cp)
			return
		}
		atom := domain[i]
		candidates := sortedFacts(evals.ByPredicate(atom.Predicate))
		for _, f := range candidates {
			if len(f.Args) != len(atom.Args) {
				continue
			}
			extended, ok := unify(atom, f, binding, pool)
			if !ok {
				continue
			}
			backtrack(i+1, extended)
		}
	}
	backtrack(0, map[string]Term{})
	return results
}

func sortedFacts(facts []Fact) []Fact {
	out := make([]Fact, len(facts))
	copy(out, facts)
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// unify tries to extend binding so atom matches f exactly, returning the
// extended copy and true on success. A parameter name ("?x") already bound
// must match the existing term's token; an unbound parameter binds to f's
// term; a non-parameter arg is a constant literal and must equal the
// interned constant's token.
func unify(atom Atom, f Fact, binding map[string]Term, pool *Pool) (map[string]Term, bool) {
	extended := make(map[string]Term, len(binding)+len(atom.Args))
	for k, v := range binding {
		extended[k] = v
	}
	for i, argName := range atom.Args {
		term := f.Args[i]
		if isParameter(argName) {
			if existing, ok := extended[argName]; ok {
				if existing.Token() != term.Token() {
					return nil, false
				}
			} else {
				extended[argName] = term
			}
			continue
		}
		if pool.Intern(argName).Token() != term.Token() {
			return nil, false
		}
	}
	return extended, true
}
