package pddl

import (
	"testing"
	"time"
)

func TestStatsStoreRecordUpdatesRollingRate(t *testing.T) {
	s := NewStatsStore()
	s.Record("find-far-east", true, 10*time.Millisecond)
	s.Record("find-far-east", true, 20*time.Millisecond)
	s.Record("find-far-east", false, 30*time.Millisecond)

	if got := s.externalPSuccess("find-far-east"); got != 3.0/5.0 {
		t.Fatalf("externalPSuccess() = %v, want 0.6 (Laplace-smoothed 2 successes of 3 calls)", got)
	}
	if got := s.externalOverhead("find-far-east"); got != 20*time.Millisecond {
		t.Fatalf("externalOverhead() = %v, want 20ms mean", got)
	}
}

func TestStatsStoreDefaultsForUnknownExternal(t *testing.T) {
	s := NewStatsStore()
	if got := s.externalPSuccess("never-called"); got != defaultPSuccess {
		t.Fatalf("externalPSuccess() = %v, want default %v", got, defaultPSuccess)
	}
	if got := s.externalOverhead("never-called"); got != defaultOverhead {
		t.Fatalf("externalOverhead() = %v, want default %v", got, defaultOverhead)
	}
}

func TestStatsStorePSuccessPrefersInstanceHistoryThenPrior(t *testing.T) {
	s := NewStatsStore()
	stream := testFarEastStream(t)
	pool := NewPool()
	table := NewInstanceTable(pool)
	inst := table.GetInstance(stream, []Term{pool.Intern("t0")})
	r := &StreamResult{instance: inst}

	prior := 0.9
	stream.info.PSuccessPrior = &prior
	if got := s.PSuccess(r); got != prior {
		t.Fatalf("PSuccess() = %v, want configured prior %v (no instance history yet)", got, prior)
	}

	inst.RecordCall([]Result{r})
	inst.Calls, inst.Successes = 4, 4
	if got := s.PSuccess(r); got != 5.0/6.0 {
		t.Fatalf("PSuccess() = %v, want 5/6 (instance history takes precedence over prior)", got)
	}
}

func TestStatsStoreSnapshotAndRestoreRoundTrip(t *testing.T) {
	s := NewStatsStore()
	s.Record("find-far-east", true, 10*time.Millisecond)

	snap := s.Snapshot()
	restored := NewStatsStore()
	restored.Restore(snap)

	if got := restored.externalPSuccess("find-far-east"); got != s.externalPSuccess("find-far-east") {
		t.Fatalf("restored externalPSuccess() = %v, want %v", got, s.externalPSuccess("find-far-east"))
	}
}
