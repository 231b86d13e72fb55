package pddl

// Generator is a resumable source of output-tuple batches for one Instance.
// It mirrors a Python generator's (yield, StopIteration) protocol: Next
// returns the next batch together with a continuation flag. Once more is
// false the generator is exhausted and must not be called again.
type Generator interface {
	Next() (batch [][]any, more bool, err error)
}

// GenFn constructs a fresh Generator bound to a specific instance's input
// values, analogous to stream.py's gen_fn(*input_values).
type GenFn func(inputs []any) Generator

// onceGenerator replays a single precomputed batch, then is exhausted.
type onceGenerator struct {
	batch [][]any
	done  bool
}

func (g onceGenerator) Next() ([][]any, bool, error) {
	if g.done {
		return nil, false, nil
	}
	return g.batch, false, nil
}

// sliceGenerator replays a fixed sequence of batches in order, matching a
// generator built from a pre-enumerated Python list (from_list_gen_fn).
type sliceGenerator struct {
	batches [][][]any
	pos     int
}

func (g *sliceGenerator) Next() ([][]any, bool, error) {
	if g.pos >= len(g.batches) {
		return nil, false, nil
	}
	b := g.batches[g.pos]
	g.pos++
	return b, g.pos < len(g.batches), nil
}

// FromListGenFn adapts a function that eagerly computes every batch of
// output tuples up front into a GenFn. This is the Go analogue of
// stream.py's from_list_gen_fn, appropriate when the whole output sequence
// is cheap to materialize (e.g. enumerating a finite grid).
func FromListGenFn(fn func(inputs []any) [][][]any) GenFn {
	return func(inputs []any) Generator {
		return &sliceGenerator{batches: fn(inputs)}
	}
}

// singleCallGenerator wraps a closure that is invoked at most once and
// returns at most one output tuple, or ok=false for no output — the Go
// analogue of stream.py's from_fn.
type singleCallGenerator struct {
	fn   func(inputs []any) ([]any, bool, error)
	args []any
	done bool
}

func (g *singleCallGenerator) Next() ([][]any, bool, error) {
	if g.done {
		return nil, false, nil
	}
	g.done = true
	tuple, ok, err := g.fn(g.args)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return [][]any{tuple}, false, nil
}

// FromFn adapts a one-shot function producing at most one output tuple
// into a GenFn (from_fn). ok=false means the function declines to produce
// an output for these inputs, distinct from an error.
func FromFn(fn func(inputs []any) (tuple []any, ok bool, err error)) GenFn {
	return func(inputs []any) Generator {
		return &singleCallGenerator{fn: fn, args: inputs}
	}
}

// repeatCallGenerator wraps a closure invoked repeatedly until it signals
// exhaustion, one output tuple per call — the Go analogue of
// stream.py's from_gen_fn, for hand-rolled Python-generator-style streams
// translated into a pull function.
type repeatCallGenerator struct {
	fn   func(inputs []any, call int) (tuple []any, more bool, err error)
	args []any
	call int
}

func (g *repeatCallGenerator) Next() ([][]any, bool, error) {
	tuple, more, err := g.fn(g.args, g.call)
	g.call++
	if err != nil {
		return nil, false, err
	}
	if tuple == nil {
		return nil, more, nil
	}
	return [][]any{tuple}, more, nil
}

// FromGenFn adapts a pull-style stepping function into a GenFn, one output
// tuple per call, continuing while more is true.
func FromGenFn(fn func(inputs []any, call int) (tuple []any, more bool, err error)) GenFn {
	return func(inputs []any) Generator {
		return &repeatCallGenerator{fn: fn, args: inputs}
	}
}

// FromTest adapts a boolean test into a GenFn that yields the empty tuple
// when the test passes and no tuple when it fails — the stream-shaped form
// of a test predicate (from_test), useful when a Predicate's certified
// fact must be produced via the general Stream machinery instead of the
// dedicated Predicate kind.
func FromTest(test func(inputs []any) (bool, error)) GenFn {
	return FromFn(func(inputs []any) ([]any, bool, error) {
		ok, err := test(inputs)
		if err != nil {
			return nil, false, err
		}
		return []any{}, ok, nil
	})
}
