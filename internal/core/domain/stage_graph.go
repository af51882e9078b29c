package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// StageGraph holds stages and their precedence relation.
// Preceding stages may be referenced before they are added; the relation is kept acyclic
// on every insertion.
type StageGraph struct {
	stages map[InternedString]Stage
	order  []InternedString
}

// NewStageGraph creates an empty StageGraph.
func NewStageGraph() *StageGraph {
	return &StageGraph{
		stages: make(map[InternedString]Stage),
	}
}

// AddStage adds a stage that runs after precedingID (empty for none).
// It fails with ErrCycleDetected if the new edge would close a cycle; the graph is left
// unchanged on any error.
func (g *StageGraph) AddStage(id, precedingID string) error {
	if id == "" {
		return zerr.Wrap(ErrConfiguration, "stage id must not be empty")
	}

	key := NewInternedString(id)
	if _, exists := g.stages[key]; exists {
		return zerr.With(zerr.Wrap(ErrStageAlreadyExists, "failed to add stage"), "stage", id)
	}

	stage := NewStage(id, precedingID)
	if err := g.checkCycle(stage); err != nil {
		return err
	}

	g.stages[key] = stage
	g.order = append(g.order, key)
	return nil
}

// checkCycle follows the precedence chain from the new stage's precedent.
// The existing graph is acyclic, so any cycle must pass through the new stage.
func (g *StageGraph) checkCycle(stage Stage) error {
	cur, ok := stage.Preceding()
	if !ok {
		return nil
	}

	path := []string{stage.ID().String()}
	for {
		path = append(path, cur.String())
		if cur == stage.ID() {
			return zerr.With(zerr.Wrap(ErrCycleDetected, "stage precedence would form a cycle"),
				"cycle", strings.Join(path, " -> "))
		}

		next, exists := g.stages[cur]
		if !exists {
			return nil
		}
		if cur, ok = next.Preceding(); !ok {
			return nil
		}
	}
}

// Stage looks up a stage by id.
func (g *StageGraph) Stage(id string) (Stage, bool) {
	s, ok := g.stages[NewInternedString(id)]
	return s, ok
}

// Len returns the number of stages.
func (g *StageGraph) Len() int {
	return len(g.order)
}

// TopologicalOrder returns every stage after its precedent. Ties are broken by insertion
// order, so the result is deterministic. A precedent that was never added fails with
// ErrMissingStage.
func (g *StageGraph) TopologicalOrder() ([]Stage, error) {
	children := make(map[InternedString][]int, len(g.order))
	ready := make([]int, 0, len(g.order))

	for i, id := range g.order {
		prev, ok := g.stages[id].Preceding()
		if !ok {
			ready = append(ready, i)
			continue
		}
		if _, exists := g.stages[prev]; !exists {
			return nil, zerr.With(zerr.With(zerr.Wrap(ErrMissingStage, "preceding stage was never added"),
				"stage", id.String()), "preceding", prev.String())
		}
		children[prev] = append(children[prev], i)
	}

	order := make([]Stage, 0, len(g.order))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		stage := g.stages[g.order[i]]
		order = append(order, stage)

		for _, child := range children[stage.ID()] {
			pos, _ := slices.BinarySearch(ready, child)
			ready = slices.Insert(ready, pos, child)
		}
	}

	return order, nil
}
