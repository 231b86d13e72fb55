// Package pddl implements the focused planning loop of a PDDLStream-style
// integrated task planner and sampler: optimistic stream grounding,
// search-adapter translation into and out of a black-box classical planner,
// partial-order reordering, and a priority-ordered skeleton queue that
// reifies hypothesized stream outputs into real ones.
//
// The classical planner itself and PDDL text parsing are external
// collaborators (see Solver) and are not implemented here.
package pddl
