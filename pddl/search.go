package pddl

import "fmt"

// Operator is one ground action available to the planner: either a real
// domain action or a surrogate stream action synthesized from an
// optimistic Result (§4.4 step 1). Cost is additive along a Plan.
type Operator struct {
	Name          string
	Args          []Term
	Preconditions []Fact
	Effects       []Fact
	Cost          float64
}

// Task is the planning problem handed to the external Solver: the known
// facts, the goal condition, and every available ground action — domain
// actions and stream surrogates alike, indistinguishable to the solver.
type Task struct {
	Init      []Fact
	Goal      []Fact
	Actions   []Operator
	UnitCosts bool
}

// PlanStep is one scheduled Operator in a Solver's returned Plan, named so
// the adapter can map it back to the Operator (and, for surrogates, the
// originating Result) that produced it.
type PlanStep struct {
	Name string
	Args []Term
}

// Plan is a linearized sequence of PlanSteps. A nil Plan means the solver
// found no plan — §7 requires this be represented as an explicit absent
// value, never an error.
type Plan []PlanStep

// Solver is the black-box external classical planner collaborator (§6):
// side-effect free, returns (nil, +Inf) when no plan exists.
type Solver interface {
	Solve(task *Task) (Plan, float64, error)
}

// SearchAdapter builds planning Tasks that interleave real domain actions
// with surrogate stream actions and separates a returned combined plan
// back into its stream and action components (§4.4).
type SearchAdapter struct {
	solver Solver
	pool   *Pool
}

// NewSearchAdapter constructs an adapter around a concrete Solver.
func NewSearchAdapter(solver Solver, pool *Pool) *SearchAdapter {
	return &SearchAdapter{solver: solver, pool: pool}
}

// Solve builds a combined task from evals, goal, the real domain actions
// and the given optimistic results, invokes the solver, and separates the
// result. found is false iff the solver returned no plan; that is not an
// error.
func (a *SearchAdapter) Solve(evals *EvaluationSet, goal []Fact, domainActions []Operator, optimisticResults []Result, unitCosts bool) (streamPlan []Result, actionPlan []Operator, cost float64, found bool, err error) {
	byName := make(map[string]Result, len(optimisticResults))
	actions := make([]Operator, 0, len(domainActions)+len(optimisticResults))
	actions = append(actions, domainActions...)
	for i, r := range optimisticResults {
		name := surrogateName(i, r)
		byName[name] = r
		actions = append(actions, surrogateOperator(name, r, a.pool))
	}

	task := &Task{Init: evals.All(), Goal: goal, Actions: actions, UnitCosts: unitCosts}
	plan, planCost, err := a.solver.Solve(task)
	if err != nil {
		return nil, nil, 0, false, err
	}
	if plan == nil {
		return nil, nil, 0, false, nil
	}

	byOperatorName := make(map[string]Operator, len(actions))
	for _, op := range actions {
		byOperatorName[op.Name] = op
	}
	for _, step := range plan {
		if r, ok := byName[step.Name]; ok {
			streamPlan = append(streamPlan, r)
			continue
		}
		actionPlan = append(actionPlan, byOperatorName[step.Name])
	}
	return streamPlan, actionPlan, planCost, true, nil
}

func surrogateName(index int, r Result) string {
	return fmt.Sprintf("~stream:%d:%s", index, r.Instance().External().Name())
}

// surrogateOperator translates one optimistic Result into a ground
// Operator whose precondition is the producing instance's grounded domain
// and whose effects are the result's certified facts.
func surrogateOperator(name string, r Result, pool *Pool) Operator {
	inst := r.Instance()
	ext := inst.External()
	mapping := make(map[string]Term, len(ext.Inputs()))
	for i, n := range ext.Inputs() {
		mapping[n] = inst.Inputs()[i]
	}
	pre := Substitute(ext.Domain(), mapping, pool)
	return Operator{
		Name:          name,
		Args:          inst.Inputs(),
		Preconditions: pre,
		Effects:       r.Certified(),
	}
}

// StreamPlanIndex is max(r.OptIndex() for r in streamPlan), or 0 for an
// empty plan (§4.4): when it reaches 0 every referenced Result is concrete
// and the combined plan is committable.
func StreamPlanIndex(streamPlan []Result) int {
	max := 0
	for _, r := range streamPlan {
		if r.OptIndex() > max {
			max = r.OptIndex()
		}
	}
	return max
}
