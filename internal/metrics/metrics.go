// Package metrics exposes per-solve prometheus collectors: success-rate and
// overhead gauges per external, a solve-duration histogram and a best-cost
// gauge, adapted from the teacher's metrics wiring pattern
// (internal/metrics) but scoped to one *Collectors instance per solve
// rather than package-level state, so that concurrent or repeated solves in
// one process never collide on re-registration.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors holds every metric this module emits for a single solve.
type Collectors struct {
	reg *prometheus.Registry

	ExternalPSuccess *prometheus.GaugeVec
	ExternalOverhead *prometheus.GaugeVec
	ExternalCalls    *prometheus.CounterVec
	SolveDuration    prometheus.Histogram
	BestCost         prometheus.Gauge
	Iterations       prometheus.Counter
}

// New builds and registers a fresh Collectors against its own
// prometheus.Registry, isolated from the process-global default registry so
// that running several solves (e.g. in tests) never panics on duplicate
// registration.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	c := &Collectors{
		reg: reg,
		ExternalPSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pddlstream_external_psuccess",
			Help: "Estimated success probability of an external, by name.",
		}, []string{"external"}),
		ExternalOverhead: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pddlstream_external_overhead_seconds",
			Help: "Estimated per-call overhead of an external, by name.",
		}, []string{"external"}),
		ExternalCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pddlstream_external_calls_total",
			Help: "Number of times an external instance was sampled, by name and outcome.",
		}, []string{"external", "outcome"}),
		SolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pddlstream_solve_duration_seconds",
			Help:    "Wall-clock duration of one FocusedDriver.Solve call.",
			Buckets: prometheus.DefBuckets,
		}),
		BestCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pddlstream_best_cost",
			Help: "Cost of the best plan found so far in the current solve.",
		}),
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pddlstream_iterations_total",
			Help: "Number of outer-loop iterations run in the current solve.",
		}),
	}
	reg.MustRegister(c.ExternalPSuccess, c.ExternalOverhead, c.ExternalCalls, c.SolveDuration, c.BestCost, c.Iterations)
	return c
}

// Registry returns the isolated prometheus.Registry these collectors are
// registered against, for exposition via promhttp.HandlerFor.
func (c *Collectors) Registry() *prometheus.Registry { return c.reg }

// RecordCall records one external-instance sample: success/failure outcome
// and the overhead it took.
func (c *Collectors) RecordCall(external string, success bool, overhead time.Duration) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.ExternalCalls.WithLabelValues(external, outcome).Inc()
	c.ExternalOverhead.WithLabelValues(external).Set(overhead.Seconds())
}

// SetPSuccess records the current rolling success-probability estimate for
// an external.
func (c *Collectors) SetPSuccess(external string, p float64) {
	c.ExternalPSuccess.WithLabelValues(external).Set(p)
}

// ObserveSolve records the wall-clock duration of one completed solve.
func (c *Collectors) ObserveSolve(d time.Duration) {
	c.SolveDuration.Observe(d.Seconds())
}

// SetBestCost records the cost of the best plan found so far.
func (c *Collectors) SetBestCost(cost float64) {
	c.BestCost.Set(cost)
}

// IncIteration records one completed outer-loop iteration.
func (c *Collectors) IncIteration() {
	c.Iterations.Inc()
}
