package pddl

import "strings"

// Instance is a single external bound to a specific input tuple — the unit
// of canonicalization: two requests for the same (external, inputs) pair
// always return the identical *Instance (testable property 2 of
// spec.md, "single-instance canonicalization").
type Instance struct {
	external External
	inputs   []Term
	key      string
	pool     *Pool

	generator Generator // lazily created on first real NextResults call

	// OptIndex only ever decreases across an instance's lifetime (testable
	// property 4, opt-index monotonicity): it starts at
	// external.InitialOptIndex() and is lowered by plan-guided re-grounding
	// (OptimisticProcessStreamPlan) and forced to zero for double-bound
	// outputs during iterative refinement (forceDownDoubleBindings).
	OptIndex int

	// Enumerated is true once the real generator/function/test has
	// signalled it has no more results.
	Enumerated bool
	// Disabled marks an instance that heads a skeleton pending in the
	// skeleton queue (set by Push, cleared again when processSkeleton gives
	// that skeleton up); a disabled instance is skipped by further
	// optimistic grounding.
	Disabled bool

	// Calls, Successes and History back Instance-level statistics (§9):
	// successes/calls estimates a per-instance success probability that
	// refines the external-wide prior as real calls accumulate.
	Calls     int
	Successes int
	History   []Result
}

// Key returns the canonical identity string for this instance, used both
// as the InstanceTable's map key and as the instanceKey fed to
// Pool.NewUniqueOptimistic.
func (inst *Instance) Key() string { return inst.key }

func (inst *Instance) External() External { return inst.external }
func (inst *Instance) Inputs() []Term     { return inst.inputs }

// InputValues returns the raw values of this instance's inputs, suitable
// for passing to a GenFn/fn/test. Concrete inputs yield their wrapped
// value; an optimistic input (only possible while still inside optimistic
// grounding) yields its display hint instead.
func (inst *Instance) InputValues() []any {
	out := make([]any, len(inst.inputs))
	for i, t := range inst.inputs {
		switch v := t.(type) {
		case *Object:
			out[i] = v.Value
		case *OptimisticObject:
			out[i] = v.Hint
		default:
			out[i] = t.String()
		}
	}
	return out
}

// RecordCall updates Calls/Successes/History after a real NextResults call
// produced results (success if len(results) > 0, matching the original's
// convention that an empty batch from a non-enumerated generator still
// counts as a call for overhead/success-probability statistics).
func (inst *Instance) RecordCall(results []Result) {
	inst.Calls++
	if len(results) > 0 {
		inst.Successes++
	}
	inst.History = append(inst.History, results...)
}

// InstanceTable canonicalizes (external, inputs) pairs to a single shared
// *Instance per solve.
type InstanceTable struct {
	byKey map[string]*Instance
	pool  *Pool
}

// NewInstanceTable creates an empty table backed by pool.
func NewInstanceTable(pool *Pool) *InstanceTable {
	return &InstanceTable{byKey: make(map[string]*Instance), pool: pool}
}

// GetInstance returns the canonical Instance for (external, inputs),
// creating it on first request.
func (t *InstanceTable) GetInstance(external External, inputs []Term) *Instance {
	key := instanceKey(external.Name(), inputs)
	if inst, ok := t.byKey[key]; ok {
		return inst
	}
	inst := &Instance{
		external: external,
		inputs:   inputs,
		key:      key,
		pool:     t.pool,
		OptIndex: external.InitialOptIndex(),
	}
	t.byKey[key] = inst
	return inst
}

// All returns every instance created so far. Order is unspecified; callers
// needing determinism should sort by Key.
func (t *InstanceTable) All() []*Instance {
	out := make([]*Instance, 0, len(t.byKey))
	for _, inst := range t.byKey {
		out = append(out, inst)
	}
	return out
}

func instanceKey(name string, inputs []Term) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, t := range inputs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.Token())
	}
	b.WriteByte(')')
	return b.String()
}

// ---- Result -------------------------------------------------------------

// Result is a single produced (real or hypothesized) outcome of calling an
// Instance: a new stream output tuple, a computed cost value, or a
// predicate's truth value.
type Result interface {
	Instance() *Instance
	// OptIndex is the opt_index this result was produced at; 0 means fully
	// concrete (no longer hypothetical), mirroring the instance's own field
	// at the moment of production.
	OptIndex() int
	// Certified returns the ground facts this result asserts once its
	// bindings are substituted in. A result that asserts nothing (a
	// Function, or a false Predicate) returns nil.
	Certified() []Fact
	IsOptimistic() bool
}

// StreamResult is a produced output tuple of a Stream instance.
type StreamResult struct {
	instance              *Instance
	outputs               []Term
	optIndex              int
	synthesizedComponents []Result
}

func newStreamResult(inst *Instance, outputs []Term, optIndex int) *StreamResult {
	return &StreamResult{instance: inst, outputs: outputs, optIndex: optIndex}
}

func (r *StreamResult) Instance() *Instance { return r.instance }
func (r *StreamResult) OptIndex() int       { return r.optIndex }
func (r *StreamResult) IsOptimistic() bool  { return r.optIndex != 0 }
func (r *StreamResult) Outputs() []Term     { return r.outputs }

func (r *StreamResult) Certified() []Fact {
	s, ok := r.instance.external.(*Stream)
	if !ok || len(s.certified) == 0 {
		return nil
	}
	mapping := bindingMap(s.inputs, r.instance.inputs, s.outputs, r.outputs)
	return Substitute(s.certified, mapping, r.instance.pool)
}

// synthesizedComponents, when non-nil, marks this result as a synthesized
// stream combining several underlying stream applications into one
// surrogate action for search efficiency (§4.8's "synthesize" step). The
// skeleton queue decomposes it back into its components on first sampling
// attempt (§4.7).
func (r *StreamResult) decompose() ([]Result, bool) {
	if r.synthesizedComponents == nil {
		return nil, false
	}
	return r.synthesizedComponents, true
}

// NewSynthesizedStreamResult wraps components (the individual Results a
// synthesizer combined) into one StreamResult bound to combinedInstance.
func NewSynthesizedStreamResult(combinedInstance *Instance, outputs []Term, optIndex int, components []Result) *StreamResult {
	r := newStreamResult(combinedInstance, outputs, optIndex)
	r.synthesizedComponents = components
	return r
}

// FunctionResult is the single computed value of a Function instance.
type FunctionResult struct {
	instance *Instance
	value    float64
	optIndex int
}

func (r *FunctionResult) Instance() *Instance { return r.instance }
func (r *FunctionResult) OptIndex() int       { return r.optIndex }
func (r *FunctionResult) IsOptimistic() bool  { return r.optIndex != 0 }
func (r *FunctionResult) Value() float64      { return r.value }
func (r *FunctionResult) Certified() []Fact   { return nil }

// PredicateResult is the boolean outcome of a Predicate instance.
type PredicateResult struct {
	instance *Instance
	value    bool
	optIndex int
}

func (r *PredicateResult) Instance() *Instance { return r.instance }
func (r *PredicateResult) OptIndex() int       { return r.optIndex }
func (r *PredicateResult) IsOptimistic() bool  { return r.optIndex != 0 }
func (r *PredicateResult) Value() bool         { return r.value }

func (r *PredicateResult) Certified() []Fact {
	if !r.value {
		return nil
	}
	p, ok := r.instance.external.(*Predicate)
	if !ok {
		return nil
	}
	mapping := bindingMap(p.inputs, r.instance.inputs, nil, nil)
	return Substitute([]Atom{p.certified}, mapping, r.instance.pool)
}

func bindingMap(inputNames []string, inputTerms []Term, outputNames []string, outputTerms []Term) map[string]Term {
	m := make(map[string]Term, len(inputNames)+len(outputNames))
	for i, n := range inputNames {
		m[n] = inputTerms[i]
	}
	for i, n := range outputNames {
		m[n] = outputTerms[i]
	}
	return m
}
