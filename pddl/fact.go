package pddl

import "strings"

// Fact is a tuple (predicate, object_1, ..., object_k). Args may contain
// optimistic Terms while a fact is still hypothetical; a Fact is an
// Evaluation once it is entered into an EvaluationSet backed only by
// concrete Terms.
type Fact struct {
	Predicate string
	Args      []Term
}

// Key returns a canonical, comparable string identifying this fact by the
// identity of its predicate and arguments. Two Facts with Key-equal
// representations are the same fact.
func (f Fact) Key() string {
	var b strings.Builder
	b.WriteString(f.Predicate)
	b.WriteByte('(')
	for i, a := range f.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a.Token())
	}
	b.WriteByte(')')
	return b.String()
}

func (f Fact) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(f.Predicate)
	for _, a := range f.Args {
		b.WriteByte(' ')
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}

// EvaluationSet is the monotonically growing set of known-true ground
// facts for one solve. Facts are never removed; Add is idempotent on
// facts already present (testable property 8 of spec.md).
type EvaluationSet struct {
	facts map[string]Fact
	// byPredicate indexes fact keys by predicate symbol, consulted by the
	// Instantiator's domain join to fetch the candidate facts for each
	// domain atom; Ground still re-checks every external on each call.
	byPredicate map[string][]string
}

// NewEvaluationSet creates an empty evaluation set.
func NewEvaluationSet() *EvaluationSet {
	return &EvaluationSet{
		facts:       make(map[string]Fact),
		byPredicate: make(map[string][]string),
	}
}

// Has reports whether f is already a known evaluation.
func (e *EvaluationSet) Has(f Fact) bool {
	_, ok := e.facts[f.Key()]
	return ok
}

// Add records f as a known-true evaluation. It reports whether f was new
// (false means the add was a no-op, preserving invariant 1: monotonic
// evaluations, and invariant 8: idempotent Add).
func (e *EvaluationSet) Add(f Fact) bool {
	key := f.Key()
	if _, ok := e.facts[key]; ok {
		return false
	}
	e.facts[key] = f
	e.byPredicate[f.Predicate] = append(e.byPredicate[f.Predicate], key)
	return true
}

// ByPredicate returns every known fact with the given predicate symbol, in
// the (arbitrary but stable-for-this-snapshot) order they were added.
func (e *EvaluationSet) ByPredicate(predicate string) []Fact {
	keys := e.byPredicate[predicate]
	out := make([]Fact, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.facts[k])
	}
	return out
}

// All returns every known evaluation. The order is unspecified.
func (e *EvaluationSet) All() []Fact {
	out := make([]Fact, 0, len(e.facts))
	for _, f := range e.facts {
		out = append(out, f)
	}
	return out
}

// Len reports the number of known evaluations.
func (e *EvaluationSet) Len() int { return len(e.facts) }

// Clone returns a shallow, independent copy of the evaluation set. Used
// when building transient optimistic evaluation sets that must not mutate
// the real, monotonic one (§4.3).
func (e *EvaluationSet) Clone() *EvaluationSet {
	c := NewEvaluationSet()
	for k, f := range e.facts {
		c.facts[k] = f
		c.byPredicate[f.Predicate] = append(c.byPredicate[f.Predicate], k)
	}
	return c
}
