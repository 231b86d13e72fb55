package pddl

import (
	"math"
	"testing"
	"time"
)

func TestLayeredProcessPropagatesAcrossLayers(t *testing.T) {
	pool := NewPool()
	table := NewInstanceTable(pool)
	evals := NewEvaluationSet()

	// Two chained streams: "confirm-east" fires once (at t0) and (east t0
	// t1) are both known, certifying east*(t0,t1); "confirm-east-2" then
	// fires once east*(t0,t1) is known, certifying east*(t1,t2) — only
	// reachable across two BFS layers.
	s1Gen := FromFn(func(inputs []any) ([]any, bool, error) { return []any{}, true, nil })
	s1, err := NewStream("confirm-east", []string{"?t", "?f"},
		[]Atom{{Predicate: "at", Args: []string{"?t"}}, {Predicate: "east", Args: []string{"?t", "?f"}}},
		nil, []Atom{{Predicate: "east*", Args: []string{"?t", "?f"}}}, s1Gen, nil, nil)
	if err != nil {
		t.Fatalf("NewStream(s1) error = %v", err)
	}
	// s2 is keyed off the literal tile "t0" (not a "?"-parameter) so it
	// only fires for chains rooted at t0, matching what s1 certified.
	s2Gen := FromFn(func(inputs []any) ([]any, bool, error) { return []any{}, true, nil })
	s2, err := NewStream("confirm-east-2", []string{"?f", "?g"},
		[]Atom{{Predicate: "east*", Args: []string{"t0", "?f"}}, {Predicate: "east", Args: []string{"?f", "?g"}}},
		nil, []Atom{{Predicate: "east*", Args: []string{"t0", "?g"}}}, s2Gen, nil, nil)
	if err != nil {
		t.Fatalf("NewStream(s2) error = %v", err)
	}

	instantiator := NewInstantiator(pool, table, []External{s1, s2})
	store := NewSolutionStore(-1, math.Inf(1), false)

	t0, t1, t2 := pool.Intern("t0"), pool.Intern("t1"), pool.Intern("t2")
	evals.Add(Fact{Predicate: "at", Args: []Term{t0}})
	evals.Add(Fact{Predicate: "east", Args: []Term{t0, t1}})
	evals.Add(Fact{Predicate: "east", Args: []Term{t1, t2}})

	if err := LayeredProcess(evals, instantiator, store, 1, nil); err != nil {
		t.Fatalf("LayeredProcess(k=1) error = %v", err)
	}
	if !evals.Has(Fact{Predicate: "east*", Args: []Term{t0, t1}}) {
		t.Fatal("east*(t0,t1) not certified after one layer")
	}
	if evals.Has(Fact{Predicate: "east*", Args: []Term{t0, t2}}) {
		t.Fatal("east*(t0,t2) certified after only one layer (needs two)")
	}

	if err := LayeredProcess(evals, instantiator, store, 1, nil); err != nil {
		t.Fatalf("LayeredProcess(k=1) second call error = %v", err)
	}
	if !evals.Has(Fact{Predicate: "east*", Args: []Term{t0, t2}}) {
		t.Fatal("east*(t0,t2) not certified after a second layer")
	}
}

func TestLayeredProcessNotifiesObserverOfRealCalls(t *testing.T) {
	pool := NewPool()
	table := NewInstanceTable(pool)
	evals := NewEvaluationSet()
	s := buildEastStream(t)
	instantiator := NewInstantiator(pool, table, []External{s})
	evals.Add(Fact{Predicate: "at", Args: []Term{pool.Intern("t0")}})
	evals.Add(Fact{Predicate: "east", Args: []Term{pool.Intern("t0"), pool.Intern("t1")}})

	store := NewSolutionStore(-1, math.Inf(1), false)
	var gotName string
	var calls int
	observe := func(name string, success bool, overhead time.Duration) {
		calls++
		gotName = name
	}
	if err := LayeredProcess(evals, instantiator, store, 1, observe); err != nil {
		t.Fatalf("LayeredProcess() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("observer called %d times, want 1", calls)
	}
	if gotName != s.Name() {
		t.Fatalf("observer name = %q, want %q", gotName, s.Name())
	}
}

func TestLayeredProcessStopsWhenTerminated(t *testing.T) {
	pool := NewPool()
	table := NewInstanceTable(pool)
	evals := NewEvaluationSet()
	s := buildEastStream(t)
	instantiator := NewInstantiator(pool, table, []External{s})
	evals.Add(Fact{Predicate: "at", Args: []Term{pool.Intern("t0")}})
	evals.Add(Fact{Predicate: "east", Args: []Term{pool.Intern("t0"), pool.Intern("t1")}})

	store := NewSolutionStore(0, math.Inf(1), false)
	if err := LayeredProcess(evals, instantiator, store, 3, nil); err != nil {
		t.Fatalf("LayeredProcess() error = %v", err)
	}
}
