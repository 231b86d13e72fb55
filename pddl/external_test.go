package pddl

import "testing"

func TestSubstituteMapsParametersAndLeavesLiteralsAsConstants(t *testing.T) {
	pool := NewPool()
	mapping := map[string]Term{"?t": pool.Intern("t0")}
	facts := Substitute([]Atom{{Predicate: "at", Args: []string{"person1", "?t"}}}, mapping, pool)
	if len(facts) != 1 {
		t.Fatalf("Substitute() len = %d, want 1", len(facts))
	}
	if facts[0].Args[0].Token() != pool.Intern("person1").Token() {
		t.Fatal("literal argument was not interned as a constant")
	}
	if facts[0].Args[1].Token() != pool.Intern("t0").Token() {
		t.Fatal("parameter argument was not substituted from mapping")
	}
}

func TestFunctionNextResultsComputesAndMarksEnumerated(t *testing.T) {
	pool := NewPool()
	table := NewInstanceTable(pool)
	fn := NewFunction("distance", []string{"?a", "?b"}, nil,
		func(inputs []any) (float64, error) { return 3.5, nil }, nil, nil)
	inst := table.GetInstance(fn, []Term{pool.Intern("t0"), pool.Intern("t1")})

	results, err := fn.NextResults(inst)
	if err != nil {
		t.Fatalf("NextResults() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("NextResults() len = %d, want 1", len(results))
	}
	fr := results[0].(*FunctionResult)
	if fr.Value() != 3.5 {
		t.Fatalf("Value() = %v, want 3.5", fr.Value())
	}
	if !inst.Enumerated {
		t.Fatal("Enumerated = false after a Function's only NextResults call")
	}
	if fr.OptIndex() != 0 {
		t.Fatalf("OptIndex() = %d, want 0 (a real result is always concrete)", fr.OptIndex())
	}
}

func TestFunctionNextOptimisticUsesEstimatorWhenProvided(t *testing.T) {
	pool := NewPool()
	table := NewInstanceTable(pool)
	fn := NewFunction("distance", []string{"?a"}, nil,
		func(inputs []any) (float64, error) { return 10, nil },
		func(inputs []any) (float64, error) { return 0, nil },
		nil)
	inst := table.GetInstance(fn, []Term{pool.Intern("t0")})

	results, err := fn.NextOptimistic(inst, pool, 0)
	if err != nil {
		t.Fatalf("NextOptimistic() error = %v", err)
	}
	if got := results[0].(*FunctionResult).Value(); got != 0 {
		t.Fatalf("NextOptimistic() value = %v, want 0 (estimator, not real fn)", got)
	}
}

func TestFunctionNextOptimisticFallsBackToRealFnWithoutEstimator(t *testing.T) {
	pool := NewPool()
	table := NewInstanceTable(pool)
	fn := NewFunction("distance", []string{"?a"}, nil,
		func(inputs []any) (float64, error) { return 10, nil }, nil, nil)
	inst := table.GetInstance(fn, []Term{pool.Intern("t0")})

	results, err := fn.NextOptimistic(inst, pool, 0)
	if err != nil {
		t.Fatalf("NextOptimistic() error = %v", err)
	}
	if got := results[0].(*FunctionResult).Value(); got != 10 {
		t.Fatalf("NextOptimistic() value = %v, want 10 (falls back to real fn)", got)
	}
}

func TestPredicateNextResultsEvaluatesRealTest(t *testing.T) {
	pool := NewPool()
	table := NewInstanceTable(pool)
	pred := NewPredicate("tile-clear", []string{"?t"}, nil, Atom{Predicate: "clear", Args: []string{"?t"}},
		func(inputs []any) (bool, error) { return false, nil }, false, nil)
	inst := table.GetInstance(pred, []Term{pool.Intern("t1")})

	results, err := pred.NextResults(inst)
	if err != nil {
		t.Fatalf("NextResults() error = %v", err)
	}
	pr := results[0].(*PredicateResult)
	if pr.Value() {
		t.Fatal("Value() = true, want false (blocked tile)")
	}
	if !inst.Enumerated {
		t.Fatal("Enumerated = false after a Predicate's only NextResults call")
	}
}

func TestPredicateNextOptimisticDefaultsTrueUnlessNegative(t *testing.T) {
	pool := NewPool()
	table := NewInstanceTable(pool)
	pred := NewPredicate("tile-clear", []string{"?t"}, nil, Atom{Predicate: "clear", Args: []string{"?t"}}, nil, false, nil)
	inst := table.GetInstance(pred, []Term{pool.Intern("t1")})

	results, err := pred.NextOptimistic(inst, pool, 0)
	if err != nil {
		t.Fatalf("NextOptimistic() error = %v", err)
	}
	if !results[0].(*PredicateResult).Value() {
		t.Fatal("NextOptimistic() value = false, want true (default optimistic assumption)")
	}

	negPred := NewPredicate("tile-occupied", []string{"?t"}, nil, Atom{Predicate: "occupied", Args: []string{"?t"}}, nil, true, nil)
	negInst := table.GetInstance(negPred, []Term{pool.Intern("t1")})
	negResults, err := negPred.NextOptimistic(negInst, pool, 0)
	if err != nil {
		t.Fatalf("NextOptimistic() error = %v", err)
	}
	if negResults[0].(*PredicateResult).Value() {
		t.Fatal("NextOptimistic() value = true for a Negative predicate, want false")
	}
}
