package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/zerr"
)

func buildNode(id string) domain.PlanNode {
	return domain.NewPlanNode(domain.PlanNodeSpec{ID: id, Name: id, Stage: domain.NewInternedString("Quick")})
}

func id(s string) domain.InternedString {
	return domain.NewInternedString(s)
}

func edgesFrom(g *domain.PlanGraph, from domain.InternedString) []domain.Edge {
	var out []domain.Edge
	for e := range g.Edges() {
		if e.From == from {
			out = append(out, e)
		}
	}
	return out
}

func TestPlanGraph_AddNode(t *testing.T) {
	g := domain.NewPlanGraph()
	require.NoError(t, g.AddNode(buildNode("A")))

	err := g.AddNode(buildNode("A"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNodeAlreadyExists))

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "A", zErr.Metadata()["node"])
	assert.Equal(t, 1, g.Len())
}

func TestPlanGraph_Commit_AllOrNothing(t *testing.T) {
	g := domain.NewPlanGraph()
	require.NoError(t, g.AddNode(buildNode("A")))
	require.NoError(t, g.AddNode(buildNode("B")))

	edges := []domain.Edge{
		domain.CancelEdge(id("A"), id("B")),
		domain.CancelEdge(id("A"), id("C")),
	}
	err := g.Commit(id("A"), edges, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingNode))

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "C", zErr.Metadata()["missing"])
	assert.Empty(t, edgesFrom(g, id("A")), "no edge may be committed when one endpoint is missing")
}

func TestPlanGraph_Commit_MissingArtifactSource(t *testing.T) {
	g := domain.NewPlanGraph()
	require.NoError(t, g.AddNode(buildNode("A")))
	require.NoError(t, g.AddNode(buildNode("B")))

	artifacts := []domain.ArtifactDependency{{ID: "x", From: id("A"), To: id("Sanity")}}
	err := g.Commit(id("A"), []domain.Edge{domain.CancelEdge(id("A"), id("B"))}, artifacts)

	require.ErrorIs(t, err, domain.ErrMissingNode)
	assert.Empty(t, edgesFrom(g, id("A")))
}

func TestPlanGraph_Commit_UnknownDependent(t *testing.T) {
	g := domain.NewPlanGraph()

	err := g.Commit(id("ghost"), nil, nil)
	require.ErrorIs(t, err, domain.ErrMissingNode)
}

func TestPlanGraph_Validate_Cycle(t *testing.T) {
	g := domain.NewPlanGraph()
	require.NoError(t, g.AddNode(buildNode("A")))
	require.NoError(t, g.AddNode(buildNode("B")))
	require.NoError(t, g.Commit(id("A"), []domain.Edge{domain.CancelEdge(id("A"), id("B"))}, nil))
	require.NoError(t, g.Commit(id("B"), []domain.Edge{domain.CancelEdge(id("B"), id("A"))}, nil))

	err := g.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCycleDetected))

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "A -> B -> A", zErr.Metadata()["cycle"])
}

func TestPlanGraph_Walk(t *testing.T) {
	g := domain.NewPlanGraph()
	// A -> B -> C: C runs first.
	for _, n := range []string{"A", "B", "C"} {
		require.NoError(t, g.AddNode(buildNode(n)))
	}
	require.NoError(t, g.Commit(id("A"), []domain.Edge{domain.CancelEdge(id("A"), id("B"))}, nil))
	require.NoError(t, g.Commit(id("B"), []domain.Edge{domain.CancelEdge(id("B"), id("C"))}, nil))
	require.NoError(t, g.Validate())

	var walked []string
	for n := range g.Walk() {
		walked = append(walked, n.ID().String())
	}
	assert.Equal(t, []string{"C", "B", "A"}, walked)

	pipeline := domain.NewPipeline("P", nil, g)
	assert.Equal(t, []domain.InternedString{id("C"), id("B"), id("A")}, pipeline.ExecutionOrder)
	assert.Equal(t, []string{"A", "B", "C"}, nodeIDs(pipeline.Nodes))
}

func nodeIDs(nodes []domain.PlanNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID().String()
	}
	return out
}

func TestPlanGraph_EdgesFollowInsertionOrder(t *testing.T) {
	g := domain.NewPlanGraph()
	for _, n := range []string{"S", "A", "B"} {
		require.NoError(t, g.AddNode(buildNode(n)))
	}
	require.NoError(t, g.Commit(id("B"), []domain.Edge{domain.CancelEdge(id("B"), id("S"))}, nil))
	require.NoError(t, g.Commit(id("A"), []domain.Edge{domain.IgnoreEdge(id("A"), id("S"))}, nil))

	var from []string
	for e := range g.Edges() {
		from = append(from, e.From.String())
	}
	assert.Equal(t, []string{"A", "B"}, from)
}
