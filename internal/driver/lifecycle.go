package driver

import (
	"context"

	"github.com/m1sk/pddlstream/pddl"
)

// LifecycleHooks provides optional synchronous hook points around a solve,
// adapted from the teacher's dag.LifecycleHooks (internal/dag/lifecycle.go).
//
// Hooks must be inert: they must not panic and should return quickly, since
// they run inline with the outer loop. The driver continues regardless of
// hook failures; implementations are expected to log/report as appropriate.
type LifecycleHooks interface {
	BeforeSolve(ctx context.Context)
	AfterSolve(ctx context.Context, plan []pddl.Operator, cost float64, found bool)
	BeforeIteration(ctx context.Context, iteration int)
	AfterIteration(ctx context.Context, iteration int)
}

// NopLifecycleHooks is a no-op LifecycleHooks implementation, the default
// when a caller supplies none.
type NopLifecycleHooks struct{}

func (NopLifecycleHooks) BeforeSolve(context.Context)                           {}
func (NopLifecycleHooks) AfterSolve(context.Context, []pddl.Operator, float64, bool) {}
func (NopLifecycleHooks) BeforeIteration(context.Context, int)                  {}
func (NopLifecycleHooks) AfterIteration(context.Context, int)                   {}
