package pddl

import "time"

// LayeredProcess drains instantiator's queue up to k BFS layers (§4.2):
// each call to Ground returns one layer of newly-enabled instances; each
// is polled for real (non-optimistic) Results via NextResults, and every
// certified fact is folded back into evals via Add, which in turn may
// enable the next layer. Processing stops early if store reports the
// solve has terminated. observe, if non-nil, is notified of every real
// call made (§6/§9 external statistics); it may be nil.
func LayeredProcess(evals *EvaluationSet, instantiator *Instantiator, store *SolutionStore, k int, observe CallObserver) error {
	for layer := 0; layer < k; layer++ {
		if store != nil && store.IsTerminated() {
			return nil
		}
		fresh := instantiator.Ground(evals)
		if len(fresh) == 0 {
			return nil
		}
		for _, inst := range fresh {
			if inst.Disabled || inst.Enumerated {
				continue
			}
			callStart := time.Now()
			results, err := inst.External().NextResults(inst)
			if err != nil {
				return err
			}
			inst.RecordCall(results)
			if observe != nil {
				observe(inst.External().Name(), len(results) > 0, time.Since(callStart))
			}
			for _, r := range results {
				for _, f := range r.Certified() {
					evals.Add(f)
				}
			}
		}
	}
	return nil
}
