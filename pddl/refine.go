package pddl

// IterativeRefine is the driver's convergence-by-recursion procedure
// (§4.5): optimistically ground every stream/function, search against the
// hypothesized state, and — unless the returned plan is already fully
// concrete — re-ground just the touched portion of the stream plan,
// forcing down the opt_index of any instance caught in a double binding,
// and recurse. Depth is bounded by maxDepth (the maximum initial opt_index
// across involved externals); exhausting it without reaching a concrete
// plan gives up at this depth, reported as found=false exactly like a
// real "no plan" outcome (§7: no exception ever signals an absent plan).
func IterativeRefine(
	evals *EvaluationSet,
	adapter *SearchAdapter,
	instantiator *Instantiator,
	table *InstanceTable,
	pool *Pool,
	goal []Fact,
	domainActions []Operator,
	unitCosts bool,
	maxDepth int,
) (streamPlan []Result, actionPlan []Operator, cost float64, found bool, err error) {
	return iterativeRefine(evals, adapter, instantiator, table, pool, goal, domainActions, unitCosts, maxDepth)
}

func iterativeRefine(
	evals *EvaluationSet,
	adapter *SearchAdapter,
	instantiator *Instantiator,
	table *InstanceTable,
	pool *Pool,
	goal []Fact,
	domainActions []Operator,
	unitCosts bool,
	depth int,
) ([]Result, []Operator, float64, bool, error) {
	optimisticResults, err := OptimisticProcessStreams(evals, instantiator, pool)
	if err != nil {
		return nil, nil, 0, false, err
	}

	streamPlan, actionPlan, cost, found, err := adapter.Solve(evals, goal, domainActions, optimisticResults, unitCosts)
	if err != nil {
		return nil, nil, 0, false, err
	}
	if !found {
		return nil, nil, 0, false, nil
	}
	if StreamPlanIndex(streamPlan) == 0 {
		return streamPlan, actionPlan, cost, true, nil
	}
	if depth <= 0 {
		return nil, nil, 0, false, nil
	}

	refined, bindings, err := OptimisticProcessStreamPlan(evals, streamPlan, table, pool)
	if err != nil {
		return nil, nil, 0, false, err
	}
	forceDownDoubleBindings(streamPlan, bindings)
	_ = refined // the re-grounded results themselves are discarded; only their
	// opt_index side effect on the owning instances feeds the next pass —
	// OptimisticProcessStreams re-grounds every external from scratch.

	return iterativeRefine(evals, adapter, instantiator, table, pool, goal, domainActions, unitCosts, depth-1)
}

// forceDownDoubleBindings zeroes the opt_index of every instance in
// streamPlan whose output was rebound to more than one distinct term
// during plan-guided re-grounding, so the next fixed-point pass mints a
// strongly-unique placeholder for it instead of a shared one (§4.5).
func forceDownDoubleBindings(streamPlan []Result, bindings map[string][]Term) {
	doubles := make(map[string]bool)
	for _, tok := range DoubleBoundTokens(bindings) {
		doubles[tok] = true
	}
	if len(doubles) == 0 {
		return
	}
	for _, r := range streamPlan {
		sr, ok := r.(*StreamResult)
		if !ok {
			continue
		}
		for _, out := range sr.outputs {
			if doubles[out.Token()] {
				sr.instance.OptIndex = 0
				break
			}
		}
	}
}

// MaxInitialOptIndex returns the maximum InitialOptIndex across externals,
// the depth bound IterativeRefine should be called with (§4.5).
func MaxInitialOptIndex(externals []External) int {
	max := 0
	for _, e := range externals {
		if idx := e.InitialOptIndex(); idx > max {
			max = idx
		}
	}
	return max
}
