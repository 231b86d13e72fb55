package pddl

import "testing"

func TestOptimisticProcessStreamsProducesResults(t *testing.T) {
	pool := NewPool()
	table := NewInstanceTable(pool)
	base := NewEvaluationSet()
	base.Add(Fact{Predicate: "at", Args: []Term{pool.Intern("t0")}})
	base.Add(Fact{Predicate: "east", Args: []Term{pool.Intern("t0"), pool.Intern("t1")}})

	s := buildEastStream(t)
	in := NewInstantiator(pool, table, []External{s})

	results, err := OptimisticProcessStreams(base, in, pool)
	if err != nil {
		t.Fatalf("OptimisticProcessStreams() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("OptimisticProcessStreams() produced %d results, want 1", len(results))
	}
	if !results[0].IsOptimistic() {
		t.Fatal("result from NextOptimistic should be optimistic")
	}
}

func TestOptimisticProcessStreamsDoesNotMutateBase(t *testing.T) {
	pool := NewPool()
	table := NewInstanceTable(pool)
	base := NewEvaluationSet()
	base.Add(Fact{Predicate: "at", Args: []Term{pool.Intern("t0")}})
	base.Add(Fact{Predicate: "east", Args: []Term{pool.Intern("t0"), pool.Intern("t1")}})
	before := base.Len()

	s := buildEastStream(t)
	in := NewInstantiator(pool, table, []External{s})
	_, err := OptimisticProcessStreams(base, in, pool)
	if err != nil {
		t.Fatalf("OptimisticProcessStreams() error = %v", err)
	}
	if base.Len() != before {
		t.Fatalf("base evaluation set mutated: len %d -> %d", before, base.Len())
	}
}

func TestDoubleBoundTokensDetectsDisagreement(t *testing.T) {
	pool := NewPool()
	a := pool.Intern("tile-a")
	b := pool.Intern("tile-b")
	bindings := map[string][]Term{
		"opt#1": {a, b},
		"opt#2": {a, a},
	}
	double := DoubleBoundTokens(bindings)
	if len(double) != 1 || double[0] != "opt#1" {
		t.Fatalf("DoubleBoundTokens() = %v, want [opt#1]", double)
	}
}

func TestDoubleBoundTokensEmptyWhenConsistent(t *testing.T) {
	pool := NewPool()
	a := pool.Intern("tile-a")
	bindings := map[string][]Term{"opt#1": {a, a, a}}
	if double := DoubleBoundTokens(bindings); len(double) != 0 {
		t.Fatalf("DoubleBoundTokens() = %v, want empty", double)
	}
}
