package pddl

import (
	"github.com/m1sk/pddlstream/internal/graph"
)

// CostModel supplies the statistics the reordering DP needs per node:
// expected success probability and expected overhead. *StatsStore
// implements this against Results; actions are given a trivial CostModel
// (psuccess 1, overhead 0) by ReorderCombinedPlan since, once reached in a
// committed plan, a domain action always succeeds.
type CostModel interface {
	PSuccess(r Result) float64
	Overhead(r Result) float64
}

// dpSizeLimit bounds the bitmask DP's 2^N state space; plans longer than
// this always use the greedy heuristic regardless of the requested mode.
const dpSizeLimit = 20

// ReorderStreamPlan reorders a stream plan to (heuristically) minimize
// expected sampling cost, respecting the partial order "r1 ≺ r2 iff some
// fact certified by r1 is in the domain of r2's instance" (§4.6).
func ReorderStreamPlan(plan []Result, stats CostModel, pool *Pool, greedy bool) ([]Result, error) {
	n := len(plan)
	if n <= 1 {
		return append([]Result(nil), plan...), nil
	}

	domainSets := make([]map[string]bool, n)
	certifiedSets := make([]map[string]bool, n)
	for i, r := range plan {
		domainSets[i] = factKeySet(groundedDomain(r.Instance(), pool))
		certifiedSets[i] = factKeySet(r.Certified())
	}

	outNeighbors := make([][]int, n)
	for i := range plan {
		for j := range plan {
			if i == j {
				continue
			}
			if intersects(certifiedSets[i], domainSets[j]) {
				outNeighbors[i] = append(outNeighbors[i], j)
			}
		}
	}
	addDominanceEdges(n, outNeighbors, func(i int) float64 { return stats.PSuccess(plan[i]) }, func(i int) float64 { return stats.Overhead(plan[i]) })

	if err := checkAcyclic(n, outNeighbors); err != nil {
		return nil, err
	}

	overhead := make([]float64, n)
	psuccess := make([]float64, n)
	for i, r := range plan {
		overhead[i] = stats.Overhead(r)
		psuccess[i] = stats.PSuccess(r)
	}

	order, err := buildOrder(n, outNeighbors, overhead, psuccess, greedy || n > dpSizeLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Result, n)
	for i, idx := range order {
		out[i] = plan[idx]
	}
	return out, nil
}

// CombinedStep is one entry of a reordered combined plan: exactly one of
// Result or Action is set.
type CombinedStep struct {
	Result Result
	Action *Operator
}

// ReorderCombinedPlan reorders stream results together with the action
// plan's operators (§4.6), using causal links derived from certified
// facts feeding action preconditions and from action effects feeding
// later action preconditions. Axiom-derived preconditions are out of
// scope: replace_derived depends on planner-internal axiom rules and is
// gated behind the Solver boundary rather than modeled here (§9).
func ReorderCombinedPlan(streamPlan []Result, actionPlan []Operator, stats CostModel, pool *Pool, greedy bool) ([]CombinedStep, error) {
	n := len(streamPlan) + len(actionPlan)
	if n <= 1 {
		out := make([]CombinedStep, 0, n)
		for _, r := range streamPlan {
			out = append(out, CombinedStep{Result: r})
		}
		for i := range actionPlan {
			out = append(out, CombinedStep{Action: &actionPlan[i]})
		}
		return out, nil
	}

	pre := make([]map[string]bool, n)
	eff := make([]map[string]bool, n)
	psuccess := make([]float64, n)
	overhead := make([]float64, n)
	for i, r := range streamPlan {
		pre[i] = factKeySet(groundedDomain(r.Instance(), pool))
		eff[i] = factKeySet(r.Certified())
		psuccess[i] = stats.PSuccess(r)
		overhead[i] = stats.Overhead(r)
	}
	for j, op := range actionPlan {
		i := len(streamPlan) + j
		pre[i] = factKeySet(op.Preconditions)
		eff[i] = factKeySet(op.Effects)
		psuccess[i] = 1 // a reached domain action always succeeds
		overhead[i] = 0
	}

	outNeighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if intersects(eff[i], pre[j]) {
				outNeighbors[i] = append(outNeighbors[i], j)
			}
		}
	}
	addDominanceEdges(n, outNeighbors, func(i int) float64 { return psuccess[i] }, func(i int) float64 { return overhead[i] })

	if err := checkAcyclic(n, outNeighbors); err != nil {
		return nil, err
	}

	order, err := buildOrder(n, outNeighbors, overhead, psuccess, greedy || n > dpSizeLimit)
	if err != nil {
		return nil, err
	}

	out := make([]CombinedStep, n)
	for i, idx := range order {
		if idx < len(streamPlan) {
			out[i] = CombinedStep{Result: streamPlan[idx]}
		} else {
			op := actionPlan[idx-len(streamPlan)]
			out[i] = CombinedStep{Action: &op}
		}
	}
	return out, nil
}

// groundedDomain returns inst's external's domain atoms substituted with
// inst's own inputs.
func groundedDomain(inst *Instance, pool *Pool) []Fact {
	ext := inst.External()
	mapping := make(map[string]Term, len(ext.Inputs()))
	for i, name := range ext.Inputs() {
		mapping[name] = inst.Inputs()[i]
	}
	return Substitute(ext.Domain(), mapping, pool)
}

func factKeySet(facts []Fact) map[string]bool {
	out := make(map[string]bool, len(facts))
	for _, f := range facts {
		out[f.Key()] = true
	}
	return out
}

func intersects(a, b map[string]bool) bool {
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for k := range small {
		if big[k] {
			return true
		}
	}
	return false
}

// addDominanceEdges adds a synthetic i -> j edge whenever i statistically
// dominates j (psuccess(i) ≥ psuccess(j) and overhead(i) ≤ overhead(j)),
// forbidding the DP from ever delaying i behind j (§4.6 pruning rule). The
// edge is skipped when the edges so far already order j before i, so
// dominance never closes a cycle (ties add one direction only).
func addDominanceEdges(n int, outNeighbors [][]int, psuccess, overhead func(int) float64) {
	var reaches func(from, to int, seen map[int]bool) bool
	reaches = func(from, to int, seen map[int]bool) bool {
		if from == to {
			return true
		}
		seen[from] = true
		for _, m := range outNeighbors[from] {
			if !seen[m] && reaches(m, to, seen) {
				return true
			}
		}
		return false
	}
	has := make(map[[2]int]bool, n)
	for i := range outNeighbors {
		for _, j := range outNeighbors[i] {
			has[[2]int{i, j}] = true
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j || has[[2]int{i, j}] {
				continue
			}
			if psuccess(i) >= psuccess(j) && overhead(i) <= overhead(j) && !reaches(j, i, map[int]bool{}) {
				outNeighbors[i] = append(outNeighbors[i], j)
				has[[2]int{i, j}] = true
			}
		}
	}
}

// checkAcyclic validates the effort-order graph is a DAG, per the design
// note that cyclic orders are a bug in the caller's statistics, not a
// recoverable planning outcome.
func checkAcyclic(n int, outNeighbors [][]int) error {
	g := graph.NewDigraph()
	for i := 0; i < n; i++ {
		g.AddNode(i)
	}
	for i, neighbors := range outNeighbors {
		for _, j := range neighbors {
			g.AddEdge(i, j)
		}
	}
	if err := g.DetectCycle(); err != nil {
		return ErrCyclicEffortOrder
	}
	return nil
}

// buildOrder computes a reverse-topological-build schedule (§4.6): states
// are bitmasks of nodes already placed in the suffix, a node v may be
// added (prepended) once every node it points to (its out-neighbors,
// required to come after it) is already in the suffix. When useGreedy is
// false it runs the full bitmask dynamic program minimizing
// cost(T ∪ {v}) = overhead(v) + psuccess(v)·cost(T); when true it greedily
// takes the first (lowest-index) admissible node at each step.
func buildOrder(n int, outNeighbors [][]int, overhead, psuccess []float64, useGreedy bool) ([]int, error) {
	admissible := func(placedMask int, v int) bool {
		for _, m := range outNeighbors[v] {
			if placedMask&(1<<uint(m)) == 0 {
				return false
			}
		}
		return true
	}

	if useGreedy {
		var addOrder []int
		mask := 0
		for len(addOrder) < n {
			placed := false
			for v := 0; v < n; v++ {
				if mask&(1<<uint(v)) != 0 {
					continue
				}
				if admissible(mask, v) {
					addOrder = append(addOrder, v)
					mask |= 1 << uint(v)
					placed = true
					break
				}
			}
			if !placed {
				return nil, ErrCyclicEffortOrder
			}
		}
		order := make([]int, n)
		for i, v := range addOrder {
			order[n-1-i] = v
		}
		return order, nil
	}

	full := 1 << uint(n)
	const inf = 1e18
	dp := make([]float64, full)
	choice := make([]int, full)
	for i := range dp {
		dp[i] = inf
		choice[i] = -1
	}
	dp[0] = 0
	for mask := 0; mask < full; mask++ {
		if dp[mask] == inf {
			continue
		}
		for v := 0; v < n; v++ {
			if mask&(1<<uint(v)) != 0 {
				continue
			}
			if !admissible(mask, v) {
				continue
			}
			newMask := mask | (1 << uint(v))
			cost := overhead[v] + psuccess[v]*dp[mask]
			if cost < dp[newMask] {
				dp[newMask] = cost
				choice[newMask] = v
			}
		}
	}
	if dp[full-1] == inf {
		return nil, ErrCyclicEffortOrder
	}
	order := make([]int, 0, n)
	mask := full - 1
	for mask != 0 {
		v := choice[mask]
		order = append(order, v)
		mask &^= 1 << uint(v)
	}
	return order, nil
}
