// Package graph provides a small directed-graph type used to validate the
// effort-order and partial-order relations the stream reorderer builds
// over a plan (pddl/reorder.go): cycle detection and topological sort.
package graph
