package pddl

import "testing"

func TestEvaluationSetAddIdempotent(t *testing.T) {
	e := NewEvaluationSet()
	p := NewPool()
	f := Fact{Predicate: "at", Args: []Term{p.Intern("tile0")}}

	if added := e.Add(f); !added {
		t.Fatal("Add() on first insertion = false, want true")
	}
	if added := e.Add(f); added {
		t.Fatal("Add() on duplicate insertion = true, want false")
	}
	if e.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", e.Len())
	}
}

func TestEvaluationSetMonotonic(t *testing.T) {
	e := NewEvaluationSet()
	p := NewPool()
	before := e.Len()
	e.Add(Fact{Predicate: "empty", Args: []Term{p.Intern("t1")}})
	e.Add(Fact{Predicate: "empty", Args: []Term{p.Intern("t2")}})
	after := e.Len()
	if after < before {
		t.Fatalf("evaluation count shrank: %d -> %d", before, after)
	}
	if !e.Has(Fact{Predicate: "empty", Args: []Term{p.Intern("t1")}}) {
		t.Fatal("previously added fact no longer present")
	}
}

func TestEvaluationSetByPredicate(t *testing.T) {
	e := NewEvaluationSet()
	p := NewPool()
	e.Add(Fact{Predicate: "east", Args: []Term{p.Intern("a"), p.Intern("b")}})
	e.Add(Fact{Predicate: "east", Args: []Term{p.Intern("b"), p.Intern("c")}})
	e.Add(Fact{Predicate: "west", Args: []Term{p.Intern("b"), p.Intern("a")}})

	eastFacts := e.ByPredicate("east")
	if len(eastFacts) != 2 {
		t.Fatalf("ByPredicate(east) len = %d, want 2", len(eastFacts))
	}
}

func TestEvaluationSetCloneIndependent(t *testing.T) {
	e := NewEvaluationSet()
	p := NewPool()
	e.Add(Fact{Predicate: "person", Args: []Term{p.Intern("bob")}})

	clone := e.Clone()
	clone.Add(Fact{Predicate: "person", Args: []Term{p.Intern("alice")}})

	if e.Len() != 1 {
		t.Fatalf("original set mutated by clone: Len() = %d, want 1", e.Len())
	}
	if clone.Len() != 2 {
		t.Fatalf("clone Len() = %d, want 2", clone.Len())
	}
}

func TestFactKeyDistinguishesArgs(t *testing.T) {
	p := NewPool()
	a := Fact{Predicate: "at", Args: []Term{p.Intern("t1")}}
	b := Fact{Predicate: "at", Args: []Term{p.Intern("t2")}}
	if a.Key() == b.Key() {
		t.Fatal("facts with distinct args produced equal keys")
	}
}
