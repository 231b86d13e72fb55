package pddl

import "testing"

// atEast tests that an external grounded against (at ?t) and (east ?t ?f)
// only fires once both facts are present, and that Ground never returns the
// same instance twice across successive calls (the BFS-layering contract
// the eager processor and fixed-point grounder both depend on).

func buildEastStream(t *testing.T) *Stream {
	t.Helper()
	genFn := FromFn(func(inputs []any) ([]any, bool, error) { return []any{}, true, nil })
	s, err := NewStream("confirm-east", []string{"?t", "?f"},
		[]Atom{{Predicate: "at", Args: []string{"?t"}}, {Predicate: "east", Args: []string{"?t", "?f"}}},
		nil, nil, genFn, nil, nil)
	if err != nil {
		t.Fatalf("NewStream() error = %v", err)
	}
	return s
}

func TestInstantiatorGroundReturnsOnlyCompleteBindings(t *testing.T) {
	pool := NewPool()
	evals := NewEvaluationSet()
	table := NewInstanceTable(pool)
	s := buildEastStream(t)
	in := NewInstantiator(pool, table, []External{s})

	// Only "at" known: domain incomplete, nothing groundable yet.
	evals.Add(Fact{Predicate: "at", Args: []Term{pool.Intern("t0")}})
	fresh := in.Ground(evals)
	if len(fresh) != 0 {
		t.Fatalf("Ground() with incomplete domain returned %d instances, want 0", len(fresh))
	}

	evals.Add(Fact{Predicate: "east", Args: []Term{pool.Intern("t0"), pool.Intern("t1")}})
	fresh = in.Ground(evals)
	if len(fresh) != 1 {
		t.Fatalf("Ground() with complete domain returned %d instances, want 1", len(fresh))
	}
}

func TestInstantiatorGroundIsLayered(t *testing.T) {
	pool := NewPool()
	evals := NewEvaluationSet()
	table := NewInstanceTable(pool)
	s := buildEastStream(t)
	in := NewInstantiator(pool, table, []External{s})

	evals.Add(Fact{Predicate: "at", Args: []Term{pool.Intern("t0")}})
	evals.Add(Fact{Predicate: "east", Args: []Term{pool.Intern("t0"), pool.Intern("t1")}})

	first := in.Ground(evals)
	if len(first) != 1 {
		t.Fatalf("first Ground() returned %d instances, want 1", len(first))
	}
	second := in.Ground(evals)
	if len(second) != 0 {
		t.Fatalf("second Ground() with no new evaluations returned %d instances, want 0 (already returned)", len(second))
	}
}

func TestInstantiatorGroundCanonicalizesAcrossCalls(t *testing.T) {
	pool := NewPool()
	evals := NewEvaluationSet()
	table := NewInstanceTable(pool)
	s := buildEastStream(t)
	in := NewInstantiator(pool, table, []External{s})

	evals.Add(Fact{Predicate: "at", Args: []Term{pool.Intern("t0")}})
	evals.Add(Fact{Predicate: "east", Args: []Term{pool.Intern("t0"), pool.Intern("t1")}})
	first := in.Ground(evals)

	direct := table.GetInstance(s, []Term{pool.Intern("t0"), pool.Intern("t1")})
	if first[0] != direct {
		t.Fatal("instance returned by Ground() is not the canonical table instance")
	}
}
