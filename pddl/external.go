package pddl

import (
	"fmt"
	"time"
)

// Atom is an unground fact template: a predicate applied to parameter
// names (as used in Inputs/Outputs) or constant literals. Substitute
// grounds an Atom slice against a binding from parameter name to Term.
type Atom struct {
	Predicate string
	Args      []string
}

// Substitute grounds atoms against mapping, turning each parameter name
// into the Term it is bound to. A name absent from mapping is treated as
// a constant literal object (interned via pool).
func Substitute(atoms []Atom, mapping map[string]Term, pool *Pool) []Fact {
	out := make([]Fact, 0, len(atoms))
	for _, a := range atoms {
		args := make([]Term, len(a.Args))
		for i, name := range a.Args {
			if t, ok := mapping[name]; ok {
				args[i] = t
			} else {
				args[i] = pool.Intern(name)
			}
		}
		out = append(out, Fact{Predicate: a.Predicate, Args: args})
	}
	return out
}

// ExternalInfo carries per-external configuration shared by streams,
// functions and predicates: whether it is processed eagerly (every layer,
// unconditionally) and optional priors seeding its statistics before any
// calls have been made.
type ExternalInfo struct {
	Eager bool
	// PSuccessPrior / OverheadPrior seed Instance statistics before any
	// real call has happened; nil means "use the registry-wide default."
	PSuccessPrior *float64
	OverheadPrior *time.Duration
}

// External is the common capability set of Stream, Function and Predicate,
// matching the design notes' tagged-sum model: a shared interface plus a
// per-kind next_results/next_optimistic implementation.
type External interface {
	Name() string
	Inputs() []string
	Domain() []Atom
	Info() *ExternalInfo
	// InitialOptIndex is the opt_index a fresh Instance of this external
	// starts with; Instance.OptIndex only ever decreases from here.
	InitialOptIndex() int

	// NextResults calls the real (non-optimistic) generator/function/test
	// for inst and returns the next batch of concrete Results. Must not be
	// called once inst.Enumerated is true.
	NextResults(inst *Instance) ([]Result, error)

	// NextOptimistic produces one-shot hypothetical Results for inst using
	// placeholder objects from pool, tagged with batch for uniqueness
	// bookkeeping (§4.3).
	NextOptimistic(inst *Instance, pool *Pool, batch int) ([]Result, error)
}

// ---- Stream ----------------------------------------------------------

// Stream is a declarative, possibly infinite generator of (output tuple,
// certified facts). Constructing one via NewStream validates the
// invariants from spec.md §3: output names unique and disjoint from
// inputs, every certified parameter is an input or output.
type Stream struct {
	name      string
	inputs    []string
	domain    []Atom
	outputs   []string
	certified []Atom
	genFn     GenFn
	optGenFn  GenFn
	info      *ExternalInfo
}

// NewStream validates and constructs a Stream. genFn is required;
// optGenFn may be nil, in which case the stream's optimistic behavior is
// the shared-placeholder default (get_shared_gen_fn in the original): one
// hypothesized output tuple of fresh/shared placeholders, regardless of
// input.
func NewStream(name string, inputs []string, domain []Atom, outputs []string, certified []Atom, genFn, optGenFn GenFn, info *ExternalInfo) (*Stream, error) {
	seen := map[string]bool{}
	for _, o := range outputs {
		if seen[o] {
			return nil, &MalformedExternalError{Name: name, Msg: fmt.Sprintf("output %q is not unique", o)}
		}
		seen[o] = true
	}
	inputSet := map[string]bool{}
	for _, i := range inputs {
		inputSet[i] = true
		if seen[i] {
			return nil, &MalformedExternalError{Name: name, Msg: fmt.Sprintf("parameter %q is both an input and output", i)}
		}
	}
	allowed := map[string]bool{}
	for k := range inputSet {
		allowed[k] = true
	}
	for k := range seen {
		allowed[k] = true
	}
	for _, c := range certified {
		for _, p := range c.Args {
			if isParameter(p) && !allowed[p] {
				return nil, &MalformedExternalError{Name: name, Msg: fmt.Sprintf("certified parameter %q is not within outputs", p)}
			}
		}
	}
	if info == nil {
		info = &ExternalInfo{}
	}
	if genFn == nil {
		return nil, &MalformedExternalError{Name: name, Msg: "gen_fn is required"}
	}
	if optGenFn == nil {
		optGenFn = sharedOptGenFn(outputs)
	}
	return &Stream{
		name: name, inputs: inputs, domain: domain, outputs: outputs,
		certified: certified, genFn: genFn, optGenFn: optGenFn, info: info,
	}, nil
}

// isParameter mirrors PDDLStream's convention: a "?"-prefixed token is a
// parameter reference, anything else is a constant literal.
func isParameter(s string) bool {
	return len(s) > 0 && s[0] == '?'
}

func (s *Stream) Name() string         { return s.name }
func (s *Stream) Inputs() []string     { return s.inputs }
func (s *Stream) Domain() []Atom       { return s.domain }
func (s *Stream) Info() *ExternalInfo  { return s.info }
func (s *Stream) InitialOptIndex() int { return 1 }

func (s *Stream) NextResults(inst *Instance) ([]Result, error) {
	if inst.generator == nil {
		inst.generator = s.genFn(inst.InputValues())
	}
	batches, more, err := inst.generator.Next()
	if err != nil {
		return nil, err
	}
	if err := checkOutputShape(s.name, s.outputs, batches); err != nil {
		return nil, err
	}
	if !more {
		inst.Enumerated = true
	}
	results := make([]Result, 0, len(batches))
	for _, values := range batches {
		outputs := make([]Term, len(values))
		for i, v := range values {
			outputs[i] = inst.pool.Intern(v)
		}
		results = append(results, newStreamResult(inst, outputs, 0))
	}
	return results, nil
}

func (s *Stream) NextOptimistic(inst *Instance, pool *Pool, batch int) ([]Result, error) {
	if inst.Enumerated || inst.Disabled {
		return nil, nil
	}
	gen := s.optGenFn(inst.InputValues())
	var all [][]any
	for {
		vals, more, err := gen.Next()
		if err != nil {
			return nil, err
		}
		all = append(all, vals...)
		if !more {
			break
		}
	}
	if err := checkOutputShape(s.name, s.outputs, all); err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(all))
	for slot, values := range all {
		outputs := make([]Term, len(values))
		for j, v := range values {
			if inst.OptIndex == 0 {
				outputs[j] = pool.NewUniqueOptimistic(inst.Key(), batch, j, v, inst.OptIndex)
			} else {
				outputs[j] = pool.SharedOptimistic(v, inst.OptIndex)
			}
			_ = slot
		}
		results = append(results, newStreamResult(inst, outputs, inst.OptIndex))
	}
	return results, nil
}

func checkOutputShape(name string, outputs []string, batches [][]any) error {
	for _, tuple := range batches {
		if len(tuple) != len(outputs) {
			return &GeneratorError{External: name, Msg: fmt.Sprintf("output tuple has length %d instead of %d", len(tuple), len(outputs))}
		}
	}
	return nil
}

// sharedOptGenFn is the default optimistic generator when a stream
// declares no opt_gen_fn: one hypothesized batch of shared placeholders,
// one per output, tagged by their output-parameter name as the sharing
// hint (get_shared_gen_fn in the original).
func sharedOptGenFn(outputs []string) GenFn {
	return func(inputs []any) Generator {
		vals := make([]any, len(outputs))
		for i, o := range outputs {
			vals[i] = sharedHint{output: o}
		}
		return onceGenerator{batch: [][]any{vals}}
	}
}

type sharedHint struct{ output string }

// ---- Function ----------------------------------------------------------

// Function produces a numeric value used in cost terms; it certifies no
// facts (outputs = ∅).
type Function struct {
	name   string
	inputs []string
	domain []Atom
	fn     func(inputs []any) (float64, error)
	estFn  func(inputs []any) (float64, error) // optional optimistic estimator
	info   *ExternalInfo
}

// NewFunction constructs a Function. estFn may be nil, in which case the
// real fn is also used to produce the optimistic estimate — function
// evaluation is assumed to be a pure, cheap computation over already-bound
// inputs, unlike stream sampling.
func NewFunction(name string, inputs []string, domain []Atom, fn func(inputs []any) (float64, error), estFn func(inputs []any) (float64, error), info *ExternalInfo) *Function {
	if info == nil {
		info = &ExternalInfo{}
	}
	return &Function{name: name, inputs: inputs, domain: domain, fn: fn, estFn: estFn, info: info}
}

func (f *Function) Name() string         { return f.name }
func (f *Function) Inputs() []string     { return f.inputs }
func (f *Function) Domain() []Atom       { return f.domain }
func (f *Function) Info() *ExternalInfo  { return f.info }
func (f *Function) InitialOptIndex() int { return 0 }

func (f *Function) NextResults(inst *Instance) ([]Result, error) {
	val, err := f.fn(inst.InputValues())
	if err != nil {
		return nil, err
	}
	inst.Enumerated = true
	return []Result{&FunctionResult{instance: inst, value: val, optIndex: 0}}, nil
}

func (f *Function) NextOptimistic(inst *Instance, pool *Pool, batch int) ([]Result, error) {
	estimator := f.estFn
	if estimator == nil {
		estimator = f.fn
	}
	val, err := estimator(inst.InputValues())
	if err != nil {
		return nil, err
	}
	return []Result{&FunctionResult{instance: inst, value: val, optIndex: inst.OptIndex}}, nil
}

// ---- Predicate ----------------------------------------------------------

// Predicate is a boolean test over already-bound inputs. Certified names
// the single fact the predicate's truth value is about, used by the
// search adapter to build a surrogate action asserting it.
type Predicate struct {
	name      string
	inputs    []string
	domain    []Atom
	certified Atom
	test      func(inputs []any) (bool, error)
	// Negative inverts the optimistic default: a Negative predicate is
	// optimistically assumed false instead of true.
	Negative bool
	info     *ExternalInfo
}

// NewPredicate constructs a Predicate.
func NewPredicate(name string, inputs []string, domain []Atom, certified Atom, test func(inputs []any) (bool, error), negative bool, info *ExternalInfo) *Predicate {
	if info == nil {
		info = &ExternalInfo{}
	}
	return &Predicate{name: name, inputs: inputs, domain: domain, certified: certified, test: test, Negative: negative, info: info}
}

func (p *Predicate) Name() string         { return p.name }
func (p *Predicate) Inputs() []string     { return p.inputs }
func (p *Predicate) Domain() []Atom       { return p.domain }
func (p *Predicate) Info() *ExternalInfo  { return p.info }
func (p *Predicate) InitialOptIndex() int { return 0 }

func (p *Predicate) NextResults(inst *Instance) ([]Result, error) {
	val, err := p.test(inst.InputValues())
	if err != nil {
		return nil, err
	}
	inst.Enumerated = true
	return []Result{&PredicateResult{instance: inst, value: val, optIndex: 0}}, nil
}

func (p *Predicate) NextOptimistic(inst *Instance, pool *Pool, batch int) ([]Result, error) {
	return []Result{&PredicateResult{instance: inst, value: !p.Negative, optIndex: inst.OptIndex}}, nil
}
