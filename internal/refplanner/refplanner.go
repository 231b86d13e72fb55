// Package refplanner is a minimal reference implementation of pddl.Solver:
// uniform-cost forward search over the fully-ground action list a Task
// already carries (surrogate stream actions and real domain actions
// alike, per §4.4 — the solver never distinguishes them). It exists so the
// rest of this module is exercisable end-to-end without an external
// planner dependency; it is not part of the core design and a production
// deployment is expected to plug in a real classical planner via
// pddl.Solver instead.
package refplanner

import (
	"container/heap"
	"math"
	"sort"

	"github.com/m1sk/pddlstream/pddl"
)

// Planner is a uniform-cost forward search implementing pddl.Solver.
type Planner struct{}

// New constructs a Planner.
func New() *Planner { return &Planner{} }

type searchState struct {
	facts map[string]pddl.Fact
}

func (s searchState) satisfies(facts []pddl.Fact) bool {
	for _, f := range facts {
		if _, ok := s.facts[f.Key()]; !ok {
			return false
		}
	}
	return true
}

func (s searchState) apply(effects []pddl.Fact) searchState {
	next := make(map[string]pddl.Fact, len(s.facts)+len(effects))
	for k, f := range s.facts {
		next[k] = f
	}
	for _, f := range effects {
		next[f.Key()] = f
	}
	return searchState{facts: next}
}

// stateKey canonicalizes a state for visited-set membership: the sorted
// concatenation of its fact keys.
func stateKey(s searchState) string {
	keys := make([]string, 0, len(s.facts))
	for k := range s.facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out string
	for _, k := range keys {
		out += k + "|"
	}
	return out
}

type frontierNode struct {
	state    searchState
	cost     float64
	path     []pddl.PlanStep
	lastSeen int // heap index, maintained by container/heap
}

type frontier []*frontierNode

func (f frontier) Len() int            { return len(f) }
func (f frontier) Less(i, j int) bool  { return f[i].cost < f[j].cost }
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i]; f[i].lastSeen = i; f[j].lastSeen = j }
func (f *frontier) Push(x any)         { n := x.(*frontierNode); n.lastSeen = len(*f); *f = append(*f, n) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return item
}

// maxExpansions bounds the search: the action set for one Solve call is
// finite but can still be combinatorially explored; a solve that hasn't
// reached the goal within this many state expansions is treated as
// unsolvable at this optimism level rather than hanging the driver.
const maxExpansions = 200000

// Solve runs uniform-cost (Dijkstra) forward search over task.Actions,
// applying each action whose preconditions are satisfied by the current
// state (fact-key membership, ignoring argument types — surrogate stream
// actions and real domain actions are structurally identical here).
func (p *Planner) Solve(task *pddl.Task) (pddl.Plan, float64, error) {
	start := searchState{facts: make(map[string]pddl.Fact, len(task.Init))}
	for _, f := range task.Init {
		start.facts[f.Key()] = f
	}
	if start.satisfies(task.Goal) {
		return pddl.Plan{}, 0, nil
	}

	actions := make([]pddl.Operator, len(task.Actions))
	copy(actions, task.Actions)
	sort.Slice(actions, func(i, j int) bool { return actions[i].Name < actions[j].Name })

	visited := make(map[string]bool)
	q := &frontier{}
	heap.Init(q)
	heap.Push(q, &frontierNode{state: start, cost: 0})

	expansions := 0
	for q.Len() > 0 {
		if expansions >= maxExpansions {
			return nil, math.Inf(1), nil
		}
		node := heap.Pop(q).(*frontierNode)
		key := stateKey(node.state)
		if visited[key] {
			continue
		}
		visited[key] = true
		expansions++

		if node.state.satisfies(task.Goal) {
			return pddl.Plan(node.path), node.cost, nil
		}

		for _, op := range actions {
			if !node.state.satisfies(op.Preconditions) {
				continue
			}
			step := pddl.PlanStep{Name: op.Name, Args: op.Args}
			nextState := node.state.apply(op.Effects)
			if visited[stateKey(nextState)] {
				continue
			}
			stepCost := op.Cost
			if task.UnitCosts {
				stepCost = 1
			}
			path := make([]pddl.PlanStep, len(node.path)+1)
			copy(path, node.path)
			path[len(node.path)] = step
			heap.Push(q, &frontierNode{state: nextState, cost: node.cost + stepCost, path: path})
		}
	}
	return nil, math.Inf(1), nil
}
