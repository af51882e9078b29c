// Package domain contains the core domain models of the pipeline plan: stages, variants,
// plan nodes, dependency edges and the graphs that hold them.
package domain

import (
	"iter"

	"go.trai.ch/zerr"
)

// PlanGraph holds plan nodes and the snapshot and artifact dependencies between them.
type PlanGraph struct {
	nodes          map[InternedString]PlanNode
	order          []InternedString
	edges          map[InternedString][]Edge
	artifacts      map[InternedString][]ArtifactDependency
	executionOrder []InternedString
}

// NewPlanGraph creates a new empty PlanGraph.
func NewPlanGraph() *PlanGraph {
	return &PlanGraph{
		nodes:     make(map[InternedString]PlanNode),
		edges:     make(map[InternedString][]Edge),
		artifacts: make(map[InternedString][]ArtifactDependency),
	}
}

// AddNode adds a node to the graph.
// It returns an error if a node with the same id already exists.
func (g *PlanGraph) AddNode(n PlanNode) error {
	if _, exists := g.nodes[n.ID()]; exists {
		return zerr.With(zerr.Wrap(ErrNodeAlreadyExists, "failed to add plan node"), "node", n.ID().String())
	}
	g.nodes[n.ID()] = n
	g.order = append(g.order, n.ID())
	return nil
}

// Has reports whether a node with the given id exists.
func (g *PlanGraph) Has(id InternedString) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (g *PlanGraph) Len() int {
	return len(g.order)
}

// Nodes yields nodes in insertion order.
func (g *PlanGraph) Nodes() iter.Seq[PlanNode] {
	return func(yield func(PlanNode) bool) {
		for _, id := range g.order {
			if !yield(g.nodes[id]) {
				return
			}
		}
	}
}

// Commit attaches edges and artifact dependencies to the node from.
// Every endpoint must already be in the graph; otherwise ErrMissingNode is returned and
// nothing is committed.
func (g *PlanGraph) Commit(from InternedString, edges []Edge, artifacts []ArtifactDependency) error {
	if !g.Has(from) {
		return zerr.With(zerr.Wrap(ErrMissingNode, "dependent node is not in the graph"), "node", from.String())
	}
	for _, e := range edges {
		if e.From != from {
			return zerr.With(zerr.With(zerr.Wrap(ErrMissingNode, "edge does not start at the committed node"),
				"node", from.String()), "edge_from", e.From.String())
		}
		if !g.Has(e.To) {
			return missingNode(from, e.To)
		}
	}
	for _, a := range artifacts {
		if !g.Has(a.To) {
			return missingNode(from, a.To)
		}
	}

	g.edges[from] = append(g.edges[from], edges...)
	g.artifacts[from] = append(g.artifacts[from], artifacts...)
	g.executionOrder = nil
	return nil
}

func missingNode(from, to InternedString) error {
	return zerr.With(zerr.With(zerr.Wrap(ErrMissingNode, "dependency references an unknown node"),
		"node", from.String()), "missing", to.String())
}

// Edges yields all edges grouped by dependent node in insertion order.
func (g *PlanGraph) Edges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for _, id := range g.order {
			for _, e := range g.edges[id] {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// Artifacts yields all artifact dependencies grouped by dependent node in insertion order.
func (g *PlanGraph) Artifacts() iter.Seq[ArtifactDependency] {
	return func(yield func(ArtifactDependency) bool) {
		for _, id := range g.order {
			for _, a := range g.artifacts[id] {
				if !yield(a) {
					return
				}
			}
		}
	}
}

// Validate checks the snapshot dependencies for cycles using a depth-first topological
// sort. It populates the execution order used by Walk.
func (g *PlanGraph) Validate() error {
	order := make([]InternedString, 0, len(g.order))
	visited := make(map[InternedString]int, len(g.order)) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		for _, e := range g.edges[u] {
			switch visited[e.To] {
			case 1:
				return g.buildCycleError(path, e.To)
			case 0:
				if err := visit(e.To); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		order = append(order, u)
		return nil
	}

	// Insertion order keeps the result stable across runs.
	for _, id := range g.order {
		if visited[id] == 0 {
			if err := visit(id); err != nil {
				return err
			}
		}
	}

	g.executionOrder = order
	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *PlanGraph) buildCycleError(path []InternedString, dep InternedString) error {
	cyclePath := ""
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	for i := startIdx; i < len(path); i++ {
		cyclePath += path[i].String() + " -> "
	}
	cyclePath += dep.String()

	return zerr.With(zerr.Wrap(ErrCycleDetected, "plan dependencies form a cycle"), "cycle", cyclePath)
}

// Walk yields nodes with every dependency before its dependents.
// It assumes Validate() has been called and returned nil.
func (g *PlanGraph) Walk() iter.Seq[PlanNode] {
	return func(yield func(PlanNode) bool) {
		for _, id := range g.executionOrder {
			if !yield(g.nodes[id]) {
				return
			}
		}
	}
}
