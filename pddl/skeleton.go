package pddl

import (
	"container/heap"
	"time"
)

// Skeleton is a partially bound stream plan awaiting concrete sampling
// (§3): Bindings maps optimistic object tokens established so far to the
// concrete Terms that replaced them; Remaining is the still-hypothetical
// suffix of the stream plan; ActionPlan is the real domain action
// sequence whose arguments will eventually be resolved through Bindings.
type Skeleton struct {
	Bindings     map[string]Term
	Remaining    []Result
	ActionPlan   []Operator
	Cost         float64
	Attempts     int
	NumProcessed int
}

// head returns the instance of the next result awaiting sampling, or nil
// if Remaining is empty (the skeleton is ready to commit).
func (sk *Skeleton) head() *Instance {
	if len(sk.Remaining) == 0 {
		return nil
	}
	return sk.Remaining[0].Instance()
}

// skeletonHeap backs SkeletonQueue's container/heap.Interface, ordered by
// SkeletonKey = (attempts, length): fewer attempts first, then shorter
// remainder first (§3, §9 — "define explicit comparison to avoid
// host-library ambiguity").
type skeletonHeap []*Skeleton

func (h skeletonHeap) Len() int { return len(h) }
func (h skeletonHeap) Less(i, j int) bool {
	if h[i].Attempts != h[j].Attempts {
		return h[i].Attempts < h[j].Attempts
	}
	return len(h[i].Remaining) < len(h[j].Remaining)
}
func (h skeletonHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *skeletonHeap) Push(x any)   { *h = append(*h, x.(*Skeleton)) }
func (h *skeletonHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// SkeletonQueue is the priority queue of Skeletons awaiting sampling
// (§4.7), supporting greedy and fair processing policies.
type SkeletonQueue struct {
	h skeletonHeap
}

// NewSkeletonQueue creates an empty queue.
func NewSkeletonQueue() *SkeletonQueue {
	q := &SkeletonQueue{}
	heap.Init(&q.h)
	return q
}

// Push inserts sk, disabling the instance at its head (instantiate_first,
// §4.7): once a skeleton exists whose next step samples that instance, it
// is pulled out of further optimistic grounding until some skeleton gives
// up on it (processSkeleton's best_cost re-enable branch below). A
// skeleton with no Remaining (ready to commit) has no head to disable.
func (q *SkeletonQueue) Push(sk *Skeleton) {
	if head := sk.head(); head != nil {
		head.Disabled = true
	}
	heap.Push(&q.h, sk)
}

// Len reports the number of skeletons currently queued.
func (q *SkeletonQueue) Len() int { return q.h.Len() }

// GreedyProcess pops and processes skeletons until the queue is empty, the
// solution store terminates, or the top element has attempts > 0 and the
// elapsed time in this call exceeds maxTime. Elements with attempts = 0
// are always popped regardless of elapsed time (cheap newly-materialized
// work, §4.7). observe, if non-nil, is notified of every real call made
// while draining the queue; it may be nil.
func (q *SkeletonQueue) GreedyProcess(store *SolutionStore, maxTime time.Duration, observe CallObserver) error {
	deadline := time.Now().Add(maxTime)
	for q.h.Len() > 0 {
		if store.IsTerminated() {
			return nil
		}
		top := q.h[0]
		if top.Attempts > 0 && time.Now().After(deadline) {
			return nil
		}
		sk := heap.Pop(&q.h).(*Skeleton)
		if err := processSkeleton(sk, q, store, observe); err != nil {
			return err
		}
	}
	return nil
}

// FairProcess snapshots the current queue, clears it, and processes every
// snapshotted entry exactly once — reinserting continuations via
// processSkeleton — interleaving a greedy drain after each (§4.7).
// observe, if non-nil, is notified of every real call made; it may be nil.
func (q *SkeletonQueue) FairProcess(store *SolutionStore, greedyWindow time.Duration, observe CallObserver) error {
	snapshot := make([]*Skeleton, q.h.Len())
	copy(snapshot, q.h)
	q.h = q.h[:0]
	for _, sk := range snapshot {
		if store.IsTerminated() {
			return nil
		}
		if err := processSkeleton(sk, q, store, observe); err != nil {
			return err
		}
		if err := q.GreedyProcess(store, greedyWindow, observe); err != nil {
			return err
		}
	}
	return nil
}

// processSkeleton implements the per-skeleton processing rules of §4.7.
// observe, if non-nil, is notified of the real call made when this
// skeleton's head instance is sampled; it may be nil.
func processSkeleton(sk *Skeleton, q *SkeletonQueue, store *SolutionStore, observe CallObserver) error {
	if len(sk.Remaining) == 0 {
		store.Commit(bindPlan(sk.Bindings, sk.ActionPlan), sk.Cost)
		return nil
	}
	if store.BestCost <= sk.Cost {
		if head := sk.head(); head != nil {
			head.Disabled = false
		}
		return nil
	}

	optimistic := sk.Remaining[0]
	inst := optimistic.Instance()

	var batch []Result
	if sk.NumProcessed < len(inst.History) {
		batch = inst.History[sk.NumProcessed:]
	} else if !inst.Enumerated {
		callStart := time.Now()
		results, err := inst.External().NextResults(inst)
		if err != nil {
			return err
		}
		inst.RecordCall(results)
		if observe != nil {
			observe(inst.External().Name(), len(results) > 0, time.Since(callStart))
		}
		batch = results
	}

	for _, r := range batch {
		if concretePr, ok := r.(*PredicateResult); ok {
			if optPr, ok2 := optimistic.(*PredicateResult); ok2 && concretePr.value != optPr.value {
				continue // disagreement with the optimistic prediction: drop this branch (S4)
			}
		}
		newBindings, err := extendBindings(sk.Bindings, optimistic, r)
		if err != nil {
			continue // conflicting rebinding: local failure, drop this branch (§7)
		}
		newCost := sk.Cost
		if concreteFr, ok := r.(*FunctionResult); ok {
			if optFr, ok2 := optimistic.(*FunctionResult); ok2 {
				newCost += concreteFr.value - optFr.value
			}
		}
		q.Push(&Skeleton{
			Bindings:   newBindings,
			Remaining:  sk.Remaining[1:],
			ActionPlan: sk.ActionPlan,
			Cost:       newCost,
		})
	}

	if sk.Attempts == 0 {
		if components, ok := decomposeSynthesized(optimistic); ok {
			decomposed := append(append([]Result(nil), components...), sk.Remaining[1:]...)
			q.Push(&Skeleton{
				Bindings:   sk.Bindings,
				Remaining:  decomposed,
				ActionPlan: sk.ActionPlan,
				Cost:       sk.Cost,
			})
		}
	}

	if !inst.Enumerated {
		sk.Attempts++
		sk.NumProcessed = len(inst.History)
		q.Push(sk)
	}
	return nil
}

// extendBindings returns Bindings extended by optimistic's outputs mapped
// to concrete's outputs (a no-op for Function/Predicate results, which
// have none), or ErrConflictingBinding if optimistic's output was already
// bound to a different concrete term.
func extendBindings(bindings map[string]Term, optimistic, concrete Result) (map[string]Term, error) {
	optSR, ok1 := optimistic.(*StreamResult)
	concreteSR, ok2 := concrete.(*StreamResult)
	if !ok1 || !ok2 {
		return bindings, nil
	}
	extended := make(map[string]Term, len(bindings)+len(optSR.outputs))
	for k, v := range bindings {
		extended[k] = v
	}
	n := len(optSR.outputs)
	if len(concreteSR.outputs) < n {
		n = len(concreteSR.outputs)
	}
	for i := 0; i < n; i++ {
		old := optSR.outputs[i]
		if !old.IsOptimistic() {
			continue
		}
		newTerm := concreteSR.outputs[i]
		if existing, ok := extended[old.Token()]; ok && existing.Token() != newTerm.Token() {
			return nil, ErrConflictingBinding
		}
		extended[old.Token()] = newTerm
	}
	return extended, nil
}

// decomposeSynthesized reports whether r is a synthesized stream result
// and, if so, its component Results.
func decomposeSynthesized(r Result) ([]Result, bool) {
	sr, ok := r.(*StreamResult)
	if !ok {
		return nil, false
	}
	return sr.decompose()
}

// bindPlan substitutes every optimistic Term appearing in actionPlan's
// operator arguments with its concrete binding, producing the final,
// fully-concrete plan ready for the solution store (testable property 3:
// no remaining object in a committed plan is optimistic).
func bindPlan(bindings map[string]Term, actionPlan []Operator) []Operator {
	out := make([]Operator, len(actionPlan))
	for i, op := range actionPlan {
		out[i] = Operator{
			Name:          op.Name,
			Args:          resolveTerms(op.Args, bindings),
			Preconditions: op.Preconditions,
			Effects:       op.Effects,
			Cost:          op.Cost,
		}
	}
	return out
}

func resolveTerms(terms []Term, bindings map[string]Term) []Term {
	out := make([]Term, len(terms))
	for i, t := range terms {
		if bound, ok := bindings[t.Token()]; ok {
			out[i] = bound
		} else {
			out[i] = t
		}
	}
	return out
}
