// Package maze builds the corridor domain used by the seed scenarios
// (S1, S2, S3, S4, S6): a line of unit tiles joined by east/west edges
// with a single person moving toward a goal tile, adapted from
// original_source/micha_experiments/corridor/problem_generator.go (which
// emitted this same shape as a PDDL problem file; here it is built
// directly as facts and ground Operators for pddl.FocusedDriver).
package maze

import (
	"fmt"

	"github.com/m1sk/pddlstream/pddl"
)

const (
	PredEmpty  = "empty"
	PredPerson = "person"
	PredAt     = "at"
	PredEast   = "east"
	PredWest   = "west"
	// PredEastStar is the transitive-closure predicate certified by the
	// find-far-east stream of S3.
	PredEastStar = "east*"
)

// Corridor is a generated corridor problem: Tiles in order from start to
// goal, Init facts, Goal facts and the fully-grounded move Operators
// available to the solver.
type Corridor struct {
	Tiles   []string
	Person  string
	Init    []pddl.Fact
	Goal    []pddl.Fact
	Actions []pddl.Operator
	// East maps a tile to its eastward neighbor, for wiring the
	// find-far-east stream of S3.
	East map[string]string
}

// Build constructs a corridor of the given length (the number of interior
// tiles between start_tile and goal_tile, matching
// generate_corridor(length) in the original source): person1 starts at
// start_tile, and the goal is (at person1 goal_tile). Every tile/person
// name is interned through pool so the resulting Facts share identity with
// anything else a solve interns through the same pool.
func Build(pool *pddl.Pool, length int) Corridor {
	tile := func(t string) pddl.Term { return pool.Intern(t) }

	tiles := make([]string, 0, length+2)
	tiles = append(tiles, "start_tile")
	for i := 0; i < length; i++ {
		tiles = append(tiles, fmt.Sprintf("t%d", i))
	}
	tiles = append(tiles, "goal_tile")

	const person = "person1"
	c := Corridor{Tiles: tiles, Person: person, East: make(map[string]string, len(tiles)-1)}

	for _, t := range tiles {
		c.Init = append(c.Init, pddl.Fact{Predicate: PredEmpty, Args: []pddl.Term{tile(t)}})
	}
	c.Init = append(c.Init,
		pddl.Fact{Predicate: PredPerson, Args: []pddl.Term{tile(person)}},
		pddl.Fact{Predicate: PredAt, Args: []pddl.Term{tile(person), tile(tiles[0])}},
	)

	for i := 0; i+1 < len(tiles); i++ {
		from, to := tiles[i], tiles[i+1]
		c.East[from] = to
		c.Init = append(c.Init,
			pddl.Fact{Predicate: PredEast, Args: []pddl.Term{tile(from), tile(to)}},
			pddl.Fact{Predicate: PredWest, Args: []pddl.Term{tile(to), tile(from)}},
		)
		c.Actions = append(c.Actions,
			moveAction(tile, person, from, to, PredEast),
			moveAction(tile, person, to, from, PredWest),
		)
	}

	c.Goal = []pddl.Fact{{Predicate: PredAt, Args: []pddl.Term{tile(person), tile(tiles[len(tiles)-1])}}}
	return c
}

// moveAction grounds one directed edge into a unit-cost move Operator: its
// precondition requires the person at from, the target tile empty, and the
// connecting edge fact; its effect places the person at to. There is no
// delete effect for vacating from — this module's evaluation/operator
// model is add-only (§4.1's monotonic evaluations), which is immaterial
// for a single-person reachability goal.
func moveAction(tile func(string) pddl.Term, person, from, to, edgePredicate string) pddl.Operator {
	return pddl.Operator{
		Name: fmt.Sprintf("move-%s-%s-%s", edgePredicate, from, to),
		Args: []pddl.Term{tile(person), tile(from), tile(to)},
		Preconditions: []pddl.Fact{
			{Predicate: PredPerson, Args: []pddl.Term{tile(person)}},
			{Predicate: PredAt, Args: []pddl.Term{tile(person), tile(from)}},
			{Predicate: PredEmpty, Args: []pddl.Term{tile(to)}},
			{Predicate: edgePredicate, Args: []pddl.Term{tile(from), tile(to)}},
		},
		Effects: []pddl.Fact{
			{Predicate: PredAt, Args: []pddl.Term{tile(person), tile(to)}},
		},
		Cost: 1,
	}
}

// FindFarEastGenFn builds the gen_fn for S3's `find-far-east(tile) →
// (far_tile,)` stream: walking hops edges east of the input tile along
// east, certifying (east* tile far_tile). Returns no result past the end
// of the corridor.
func FindFarEastGenFn(east map[string]string, hops int) pddl.GenFn {
	return pddl.FromFn(func(inputs []any) ([]any, bool, error) {
		cur, ok := inputs[0].(string)
		if !ok {
			return nil, false, fmt.Errorf("find-far-east: input tile must be a string, got %T", inputs[0])
		}
		for i := 0; i < hops; i++ {
			next, ok := east[cur]
			if !ok {
				return nil, false, nil
			}
			cur = next
		}
		return []any{cur}, true, nil
	})
}

// TileClearTest builds the test function for S4's predicate-disagreement
// scenario: a predicate that the optimistic grounder assumes true, and
// whose real value is controlled by blocked (a tile set to simulate a
// person unexpectedly occupying it when the real test runs).
func TileClearTest(blocked map[string]bool) func(inputs []any) (bool, error) {
	return func(inputs []any) (bool, error) {
		t, ok := inputs[0].(string)
		if !ok {
			return false, fmt.Errorf("tile-clear: input tile must be a string, got %T", inputs[0])
		}
		return !blocked[t], nil
	}
}
