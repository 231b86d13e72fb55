package pddl

// OptimisticProcessStreams is the fixed-point optimistic expansion
// (§4.3, mode 1): starting from base, it repeatedly grounds a fresh
// Instantiator over instantiator's externals, pool and table (so every call
// re-grounds from scratch, including instances an earlier call returned)
// against a working optimistic evaluation set, calling NextOptimistic (not
// NextResults) on every newly-enabled instance, and feeds each result's
// certified facts back into the working set until no further instance is
// enabled. It returns every Result produced, in the deterministic order
// the instantiator discovered their instances.
//
// The invariant from §4.3 — a fact is in the optimistic evaluation set
// only if every fact in the domain of its producing instance is too — holds
// by construction: working only ever grows by adding a result's certified
// facts after its instance's domain was already satisfied by working.
func OptimisticProcessStreams(base *EvaluationSet, instantiator *Instantiator, pool *Pool) ([]Result, error) {
	working := base.Clone()
	grounder := NewInstantiator(instantiator.pool, instantiator.table, instantiator.externals)
	var all []Result
	batch := 0
	for {
		fresh := grounder.Ground(working)
		if len(fresh) == 0 {
			return all, nil
		}
		batch++
		var newFacts []Fact
		for _, inst := range fresh {
			if inst.Disabled || inst.Enumerated {
				continue
			}
			results, err := inst.External().NextOptimistic(inst, pool, batch)
			if err != nil {
				return nil, err
			}
			for _, r := range results {
				all = append(all, r)
				newFacts = append(newFacts, r.Certified()...)
			}
		}
		for _, f := range newFacts {
			working.Add(f)
		}
	}
}

// OptimisticProcessStreamPlan is the plan-guided re-grounding (§4.3, mode
// 2): given a stream plan (a sequence of optimistic Results chosen by a
// prior search), it walks the plan in order, substituting
// already-accumulated output bindings into each step's inputs, confirming
// the resulting instance's domain is satisfied by the facts certified so
// far, and — if so — re-calling NextOptimistic on it with its opt_index
// decremented by one. Steps whose domain is not yet satisfied (because an
// earlier step in the plan wasn't re-groundable) are passed through
// unchanged.
//
// optBindings is a multimap from an original optimistic output's Token to
// every Term it was rebound to across the walk; a key mapping to more than
// one distinct Token is a double binding (see DoubleBoundTokens), the
// trigger for forcing opt_index down in the driver's iterative refinement
// (§4.5).
func OptimisticProcessStreamPlan(base *EvaluationSet, streamPlan []Result, table *InstanceTable, pool *Pool) (refined []Result, optBindings map[string][]Term, err error) {
	working := base.Clone()
	optBindings = make(map[string][]Term)
	refined = make([]Result, 0, len(streamPlan))
	batch := 0

	for _, r := range streamPlan {
		inst := r.Instance()
		newInputs := substituteTerms(inst.Inputs(), optBindings)
		newInst := table.GetInstance(inst.External(), newInputs)

		if !domainSatisfied(newInst, working, pool) {
			refined = append(refined, r)
			continue
		}
		if newInst.OptIndex > 0 {
			newInst.OptIndex--
		}
		batch++
		results, e := newInst.External().NextOptimistic(newInst, pool, batch)
		if e != nil {
			return nil, nil, e
		}
		if len(results) == 0 {
			refined = append(refined, r)
			continue
		}
		chosen := results[0]
		refined = append(refined, chosen)
		recordOutputBindings(r, chosen, optBindings)
		for _, f := range chosen.Certified() {
			working.Add(f)
		}
	}
	return refined, optBindings, nil
}

// substituteTerms replaces each optimistic term whose Token is a key of
// bindings with the most recently recorded rebinding, leaving every other
// term (concrete, or optimistic but not yet rebound) unchanged.
func substituteTerms(terms []Term, bindings map[string][]Term) []Term {
	out := make([]Term, len(terms))
	for i, t := range terms {
		if chain, ok := bindings[t.Token()]; ok && len(chain) > 0 {
			out[i] = chain[len(chain)-1]
		} else {
			out[i] = t
		}
	}
	return out
}

// domainSatisfied reports whether every domain fact of inst's external,
// grounded against inst's own (already-substituted) inputs, is present in
// evals.
func domainSatisfied(inst *Instance, evals *EvaluationSet, pool *Pool) bool {
	ext := inst.External()
	mapping := make(map[string]Term, len(ext.Inputs()))
	for i, name := range ext.Inputs() {
		mapping[name] = inst.Inputs()[i]
	}
	for _, f := range Substitute(ext.Domain(), mapping, pool) {
		if !evals.Has(f) {
			return false
		}
	}
	return true
}

// recordOutputBindings appends, for each output term the original and
// re-grounded StreamResult share a position, old.Token() → new term into
// bindings. Non-StreamResults (Function, Predicate) carry no outputs and
// are a no-op.
func recordOutputBindings(old, fresh Result, bindings map[string][]Term) {
	oldSR, ok1 := old.(*StreamResult)
	freshSR, ok2 := fresh.(*StreamResult)
	if !ok1 || !ok2 {
		return
	}
	n := len(oldSR.outputs)
	if len(freshSR.outputs) < n {
		n = len(freshSR.outputs)
	}
	for i := 0; i < n; i++ {
		key := oldSR.outputs[i].Token()
		bindings[key] = append(bindings[key], freshSR.outputs[i])
	}
}

// DoubleBoundTokens returns the optimistic-object tokens in bindings that
// were rebound to more than one distinct Term across a plan-guided
// re-grounding pass — the condition §4.5 calls a double binding, requiring
// the owning instance(s) to have their opt_index forced down before the
// next recursion.
func DoubleBoundTokens(bindings map[string][]Term) []string {
	var out []string
	for key, chain := range bindings {
		distinct := map[string]bool{}
		for _, t := range chain {
			distinct[t.Token()] = true
		}
		if len(distinct) > 1 {
			out = append(out, key)
		}
	}
	return out
}
