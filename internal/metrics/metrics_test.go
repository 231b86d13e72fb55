package metrics

import (
	"testing"
	"time"
)

func gaugeValue(t *testing.T, g *Collectors, name string) float64 {
	t.Helper()
	mfs, err := g.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if g := m.GetGauge(); g != nil {
				return g.GetValue()
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
		}
	}
	t.Fatalf("metric %q not found", name)
	return 0
}

func TestNewRegistersDistinctMetrics(t *testing.T) {
	c := New()
	if c.Registry() == nil {
		t.Fatal("Registry() = nil")
	}
	// Label vectors are only gathered once they have a child, so give each
	// one a sample before counting families.
	c.RecordCall("find-far-east", true, time.Millisecond)
	c.SetPSuccess("find-far-east", 0.5)
	mfs, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(mfs) != 6 {
		t.Fatalf("Gather() returned %d metric families, want 6", len(mfs))
	}
}

func TestSetBestCostRecordsValue(t *testing.T) {
	c := New()
	c.SetBestCost(4.5)
	if got := gaugeValue(t, c, "pddlstream_best_cost"); got != 4.5 {
		t.Fatalf("pddlstream_best_cost = %v, want 4.5", got)
	}
}

func TestIncIterationCountsUp(t *testing.T) {
	c := New()
	c.IncIteration()
	c.IncIteration()
	if got := gaugeValue(t, c, "pddlstream_iterations_total"); got != 2 {
		t.Fatalf("pddlstream_iterations_total = %v, want 2", got)
	}
}

func TestRecordCallLabelsOutcome(t *testing.T) {
	c := New()
	c.RecordCall("find-far-east", true, 10*time.Millisecond)
	c.RecordCall("find-far-east", false, 20*time.Millisecond)

	mfs, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != "pddlstream_external_calls_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	if total != 2 {
		t.Fatalf("pddlstream_external_calls_total sum = %v, want 2", total)
	}
}

func TestSecondInstanceDoesNotPanicOnDuplicateRegistration(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("New() panicked on a second instance: %v", r)
		}
	}()
	_ = New()
	_ = New()
}
