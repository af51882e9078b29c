package domain_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/zerr"
)

func stageIDs(stages []domain.Stage) []string {
	ids := make([]string, len(stages))
	for i, s := range stages {
		ids[i] = s.ID().String()
	}
	return ids
}

func TestStageGraph_TopologicalOrder(t *testing.T) {
	g := domain.NewStageGraph()
	require.NoError(t, g.AddStage("ReadyForNightly", "ReadyForMerge"))
	require.NoError(t, g.AddStage("QuickFeedback", ""))
	require.NoError(t, g.AddStage("ReadyForMerge", "QuickFeedback"))
	require.NoError(t, g.AddStage("Experimental", ""))
	require.NoError(t, g.AddStage("Flaky", "QuickFeedback"))

	order, err := g.TopologicalOrder()
	require.NoError(t, err)

	ids := stageIDs(order)
	assert.Equal(t, []string{"QuickFeedback", "ReadyForMerge", "ReadyForNightly", "Experimental", "Flaky"}, ids)

	for i, s := range order {
		prev, ok := s.Preceding()
		if !ok {
			continue
		}
		assert.Less(t, slices.Index(ids, prev.String()), i, "%s must come after %s", s.ID(), prev)
	}
}

func TestStageGraph_TopologicalOrder_TiesByInsertion(t *testing.T) {
	g := domain.NewStageGraph()
	require.NoError(t, g.AddStage("B", ""))
	require.NoError(t, g.AddStage("A", ""))
	require.NoError(t, g.AddStage("C", "A"))
	require.NoError(t, g.AddStage("D", "B"))

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "D", "C"}, stageIDs(order))
}

func TestStageGraph_AddStage_CycleRollsBack(t *testing.T) {
	g := domain.NewStageGraph()
	require.NoError(t, g.AddStage("A", "B"))

	err := g.AddStage("B", "A")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCycleDetected))

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "B -> A -> B", zErr.Metadata()["cycle"])

	assert.Equal(t, 1, g.Len())
	_, exists := g.Stage("B")
	assert.False(t, exists, "rejected stage must not be added")
	a, _ := g.Stage("A")
	prev, _ := a.Preceding()
	assert.Equal(t, "B", prev.String())
}

func TestStageGraph_AddStage_SelfReference(t *testing.T) {
	g := domain.NewStageGraph()

	err := g.AddStage("A", "A")
	require.ErrorIs(t, err, domain.ErrCycleDetected)
	assert.Equal(t, 0, g.Len())
}

func TestStageGraph_AddStage_LongCycle(t *testing.T) {
	g := domain.NewStageGraph()
	require.NoError(t, g.AddStage("A", "C"))
	require.NoError(t, g.AddStage("B", "A"))

	err := g.AddStage("C", "B")
	require.ErrorIs(t, err, domain.ErrCycleDetected)
	assert.Equal(t, 2, g.Len())
}

func TestStageGraph_AddStage_Duplicate(t *testing.T) {
	g := domain.NewStageGraph()
	require.NoError(t, g.AddStage("A", ""))

	err := g.AddStage("A", "")
	require.ErrorIs(t, err, domain.ErrStageAlreadyExists)
}

func TestStageGraph_AddStage_EmptyID(t *testing.T) {
	g := domain.NewStageGraph()

	err := g.AddStage("", "")
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestStageGraph_TopologicalOrder_MissingPrecedent(t *testing.T) {
	g := domain.NewStageGraph()
	require.NoError(t, g.AddStage("A", "Ghost"))

	_, err := g.TopologicalOrder()
	require.ErrorIs(t, err, domain.ErrMissingStage)
}
