package pddl

import "fmt"

// Term is a ground or hypothesized argument to a Fact: either a Object
// (concrete, wraps a real value) or an OptimisticObject (placeholder
// produced during optimistic grounding). Equality between two Terms is
// always pointer identity, never value comparison — that is what makes
// interning below meaningful.
type Term interface {
	// Token returns a stable, process-unique string identifying this term.
	// Two Terms are the same iff their Token values are equal, which in
	// turn holds iff they are the same pointer; Token exists because facts
	// need a comparable/hashable key and Go's map keys cannot hold an
	// interface pointer to an unexported concrete type across packages
	// cleanly.
	Token() string
	String() string
	// IsOptimistic reports whether this term is a placeholder awaiting
	// concrete resolution.
	IsOptimistic() bool
}

// Object is an interned, concrete ground value. Two calls to Pool.Intern
// with equal values return the identical *Object.
type Object struct {
	token string
	Value any
}

func (o *Object) Token() string      { return o.token }
func (o *Object) IsOptimistic() bool { return false }
func (o *Object) String() string {
	return fmt.Sprintf("%v", o.Value)
}

// OptimisticObject is a placeholder introduced during optimistic grounding.
// Per the design notes, identity comes from one of two sources:
//   - (instance, batch, slot): strongly unique, used when the producing
//     instance's opt_index is 0 at creation time — every occurrence must be
//     re-grounded independently.
//   - a shared hint value: used otherwise, so that two instances hypothesizing
//     "some object of this shape" can be treated as the same hypothesis until
//     proven otherwise.
type OptimisticObject struct {
	token string
	// Hint is the value used to seed display and, for shared objects, the
	// interning key. It is never treated as the real value.
	Hint any
	// OptIndex records the opt_index of the producing instance at creation
	// time (not decayed further on the object itself; only Instance.OptIndex
	// decays, per the opt-index monotonicity invariant).
	OptIndex int
}

func (o *OptimisticObject) Token() string      { return o.token }
func (o *OptimisticObject) IsOptimistic() bool { return true }
func (o *OptimisticObject) String() string {
	return fmt.Sprintf("#%v", o.Hint)
}

// Pool interns concrete objects and mints optimistic ones. A Pool is owned
// by a single solve (see registry.Registry, which embeds one) so that
// counters never leak across unrelated solves — the same reasoning the
// design notes apply to DebugValue's per-process counter.
type Pool struct {
	concrete map[any]*Object
	shared   map[any]*OptimisticObject
	unique   int
}

// NewPool creates an empty interning pool.
func NewPool() *Pool {
	return &Pool{
		concrete: make(map[any]*Object),
		shared:   make(map[any]*OptimisticObject),
	}
}

// Intern returns the canonical *Object for value, creating one on first
// use. value must be comparable (usable as a Go map key); this matches
// PDDLStream's own restriction that stream outputs are hashable values.
func (p *Pool) Intern(value any) *Object {
	if obj, ok := p.concrete[value]; ok {
		return obj
	}
	obj := &Object{token: fmt.Sprintf("o#%d:%v", len(p.concrete), value), Value: value}
	p.concrete[value] = obj
	return obj
}

// NewUniqueOptimistic mints a strongly-unique optimistic object keyed by
// (instanceKey, batch, slot). Used when the producing instance's opt_index
// is 0.
func (p *Pool) NewUniqueOptimistic(instanceKey string, batch, slot int, hint any, optIndex int) *OptimisticObject {
	p.unique++
	tok := fmt.Sprintf("opt#%d[%s/%d/%d]", p.unique, instanceKey, batch, slot)
	return &OptimisticObject{token: tok, Hint: hint, OptIndex: optIndex}
}

// SharedOptimistic returns the canonical shared optimistic object for hint,
// creating one on first use. Used when the producing instance's opt_index
// is nonzero: every instance hypothesizing the same hint value shares one
// placeholder until re-grounding forces a decision.
func (p *Pool) SharedOptimistic(hint any, optIndex int) *OptimisticObject {
	if obj, ok := p.shared[hint]; ok {
		return obj
	}
	obj := &OptimisticObject{token: fmt.Sprintf("shared#%d:%v", len(p.shared), hint), Hint: hint, OptIndex: optIndex}
	p.shared[hint] = obj
	return obj
}
