// Package driver implements the focused solving outer loop (§4.8): the
// single owner of evaluations, the instance table, statistics, the
// skeleton queue and the solution store for one solve. Shaped after the
// teacher's dag.Executor (internal/dag/executor.go) — a struct wrapping
// the mutable run state, a single serial driving loop, deterministic
// state transitions. Hook callbacks are called directly; a panic in one is
// not recovered.
package driver

import (
	"context"
	"math"
	"time"

	"github.com/m1sk/pddlstream/internal/config"
	"github.com/m1sk/pddlstream/internal/metrics"
	"github.com/m1sk/pddlstream/internal/obslog"
	"github.com/m1sk/pddlstream/internal/registry"
	"github.com/m1sk/pddlstream/pddl"
)

// resolveMaxCost translates the configuration's negative-sentinel
// "unbounded" convention (§6: max_cost < 0 means no budget) into the
// solution store's +Inf sentinel.
func resolveMaxCost(configured float64) float64 {
	if configured < 0 {
		return math.Inf(1)
	}
	return configured
}

// FocusedDriver runs the outer loop of §4.8 to convergence or budget
// exhaustion, against one Registry of externals and one classical Solver.
type FocusedDriver struct {
	registry *registry.Registry
	solver   pddl.Solver
	cfg      config.Configuration
	log      obslog.Logger
	hooks    LifecycleHooks
	metrics  *metrics.Collectors
	stats    *pddl.StatsStore
}

// Option configures a FocusedDriver at construction time.
type Option func(*FocusedDriver)

// WithLogger overrides the default no-op logger.
func WithLogger(l obslog.Logger) Option {
	return func(d *FocusedDriver) { d.log = obslog.OrNop(l) }
}

// WithHooks overrides the default no-op lifecycle hooks.
func WithHooks(h LifecycleHooks) Option {
	return func(d *FocusedDriver) { d.hooks = h }
}

// WithMetrics attaches a *metrics.Collectors to record per-solve gauges
// and counters; omitted, metrics are not recorded.
func WithMetrics(c *metrics.Collectors) Option {
	return func(d *FocusedDriver) { d.metrics = c }
}

// WithStats seeds the driver's statistics store (e.g. loaded from the
// workspace's persisted stats file for warm priors across runs).
func WithStats(s *pddl.StatsStore) Option {
	return func(d *FocusedDriver) { d.stats = s }
}

// New builds a FocusedDriver over reg's externals, using solver as the
// black-box classical planner.
func New(reg *registry.Registry, solver pddl.Solver, cfg config.Configuration, opts ...Option) *FocusedDriver {
	d := &FocusedDriver{
		registry: reg,
		solver:   solver,
		cfg:      cfg,
		log:      obslog.Nop,
		hooks:    NopLifecycleHooks{},
		stats:    pddl.NewStatsStore(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Result is the outcome of one Solve call (§4.8: returns best_plan,
// best_cost, evaluations).
type Result struct {
	Plan       []pddl.Operator
	Cost       float64
	Found      bool
	Evaluations *pddl.EvaluationSet
	Stats      *pddl.StatsStore
}

// Solve runs the focused loop against init/goal/domainActions until the
// solution store terminates (wall-clock budget) or the search/queue is
// exhausted with nothing left to try.
func (d *FocusedDriver) Solve(ctx context.Context, init []pddl.Fact, goal []pddl.Fact, domainActions []pddl.Operator) (Result, error) {
	start := time.Now()
	d.log.Printf("driver: solve starting: %d init facts, %d goal facts, %d actions", len(init), len(goal), len(domainActions))
	d.hooks.BeforeSolve(ctx)

	evals := pddl.NewEvaluationSet()
	for _, f := range init {
		evals.Add(f)
	}

	store := pddl.NewSolutionStore(d.cfg.MaxTime, resolveMaxCost(d.cfg.MaxCost), d.cfg.Verbose)
	queue := pddl.NewSkeletonQueue()
	instantiator := d.registry.NewInstantiator()
	pool := d.registry.Pool()
	table := d.registry.Table()
	adapter := pddl.NewSearchAdapter(d.solver, pool)
	maxDepth := pddl.MaxInitialOptIndex(d.registry.All())

	eagerExternals := d.registry.Eager()
	eagerInstantiator := pddl.NewInstantiator(pool, table, eagerExternals)

	unitCosts := d.resolveUnitCosts(domainActions)
	observe := d.observeCall()

	iteration := 0
	for !store.IsTerminated() {
		if ctx.Err() != nil {
			break
		}
		d.hooks.BeforeIteration(ctx, iteration)

		if err := pddl.LayeredProcess(evals, eagerInstantiator, store, d.cfg.EagerLayers, observe); err != nil {
			return Result{}, err
		}

		streamPlan, actionPlan, cost, found, err := pddl.IterativeRefine(
			evals, adapter, instantiator, table, pool, goal, domainActions, unitCosts, maxDepth)
		if err != nil {
			return Result{}, err
		}

		if !found {
			if queue.Len() == 0 {
				d.log.Printf("driver: iteration %d: no plan and queue empty, stopping", iteration)
				d.hooks.AfterIteration(ctx, iteration)
				break
			}
			if err := queue.FairProcess(store, d.cfg.SamplingTime, observe); err != nil {
				return Result{}, err
			}
			d.hooks.AfterIteration(ctx, iteration)
			iteration++
			continue
		}

		reordered, err := pddl.ReorderStreamPlan(streamPlan, d.stats, pool, false)
		if err != nil {
			return Result{}, err
		}
		queue.Push(&pddl.Skeleton{
			Bindings:   make(map[string]pddl.Term),
			Remaining:  reordered,
			ActionPlan: actionPlan,
			Cost:       cost,
		})
		if err := queue.GreedyProcess(store, d.cfg.SamplingTime, observe); err != nil {
			return Result{}, err
		}

		if d.metrics != nil {
			d.metrics.SetBestCost(store.BestCost)
			d.metrics.IncIteration()
		}
		d.log.Printf("driver: iteration %d: best_cost=%v queue_len=%d", iteration, store.BestCost, queue.Len())
		d.hooks.AfterIteration(ctx, iteration)
		iteration++
	}

	if d.metrics != nil {
		d.metrics.ObserveSolve(time.Since(start))
	}
	d.log.Printf("driver: solve finished: found=%v cost=%v elapsed=%s", store.HasSolution(), store.BestCost, time.Since(start))
	d.hooks.AfterSolve(ctx, store.BestPlan, store.BestCost, store.HasSolution())

	return Result{
		Plan:        store.BestPlan,
		Cost:        store.BestCost,
		Found:       store.HasSolution(),
		Evaluations: evals,
		Stats:       d.stats,
	}, nil
}

// observeCall builds the pddl.CallObserver wired into this solve: every
// real external call folds into d.stats (warm priors for the reorderer's
// CostModel and for the next run's statistics file) and, when metrics are
// attached, updates the matching per-external gauges/counters alongside it.
func (d *FocusedDriver) observeCall() pddl.CallObserver {
	return func(name string, success bool, overhead time.Duration) {
		d.stats.Record(name, success, overhead)
		if d.metrics != nil {
			d.metrics.RecordCall(name, success, overhead)
			d.metrics.SetPSuccess(name, d.stats.ExternalPSuccess(name))
		}
		if d.cfg.Verbose {
			d.log.Printf("driver: external %q call success=%v overhead=%s", name, success, overhead)
		}
	}
}

// resolveUnitCosts applies the three-valued unit_costs setting (§6): true
// and false are taken literally; "auto" uses unit costs iff every domain
// action has a zero cost (nothing to optimize otherwise).
func (d *FocusedDriver) resolveUnitCosts(domainActions []pddl.Operator) bool {
	switch d.cfg.UnitCosts {
	case config.UnitCostsTrue:
		return true
	case config.UnitCostsFalse:
		return false
	default:
		for _, op := range domainActions {
			if op.Cost != 0 {
				return false
			}
		}
		return true
	}
}
