package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/stagehand/internal/engine/resolver"
	"go.trai.ch/zerr"
)

const prefix = "P_"

type fixture struct {
	plan       *domain.PlanGraph
	stages     *domain.StageGraph
	sanity     domain.InternedString
	sanityNode domain.PlanNode
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stages := domain.NewStageGraph()
	require.NoError(t, stages.AddStage("QuickFeedback", ""))
	require.NoError(t, stages.AddStage("ReadyForMerge", "QuickFeedback"))

	f := &fixture{plan: domain.NewPlanGraph(), stages: stages, sanity: domain.NewInternedString("P_SanityCheck")}
	f.sanityNode = f.add(t, domain.PlanNodeSpec{ID: "P_SanityCheck", Stage: id("QuickFeedback"), SanityCheck: true})
	return f
}

func (f *fixture) add(t *testing.T, spec domain.PlanNodeSpec) domain.PlanNode {
	t.Helper()
	n := domain.NewPlanNode(spec)
	require.NoError(t, f.plan.AddNode(n))
	return n
}

func (f *fixture) edgesFrom(from domain.InternedString) []domain.Edge {
	var out []domain.Edge
	for e := range f.plan.Edges() {
		if e.From == from {
			out = append(out, e)
		}
	}
	return out
}

func (f *fixture) resolver() *resolver.Resolver {
	return resolver.New(f.plan, f.stages, prefix, f.sanity)
}

func id(s string) domain.InternedString {
	return domain.NewInternedString(s)
}

func sanityEdges(edges []domain.Edge, sanity domain.InternedString) []domain.Edge {
	var out []domain.Edge
	for _, e := range edges {
		if e.To == sanity {
			out = append(out, e)
		}
	}
	return out
}

func TestResolve_BuildNodeDependsOnSanity(t *testing.T) {
	f := newFixture(t)
	quick := f.add(t, domain.PlanNodeSpec{ID: "P_Quick_linux", Stage: id("QuickFeedback")})

	require.NoError(t, f.resolver().Resolve(quick))

	edges := f.edgesFrom(quick.ID())
	require.Len(t, edges, 1)
	assert.Equal(t, domain.CancelEdge(quick.ID(), f.sanity), edges[0])

	var artifacts []domain.ArtifactDependency
	for a := range f.plan.Artifacts() {
		artifacts = append(artifacts, a)
	}
	require.Len(t, artifacts, 1)
	assert.Equal(t, "ARTIFACT_DEPENDENCY_P_SanityCheck", artifacts[0].ID)
	assert.Equal(t, resolver.ArtifactRules, artifacts[0].Rules)
	assert.True(t, artifacts[0].CleanDestination)
}

func TestResolve_SanityHasNoSanityEdge(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.resolver().Resolve(f.sanityNode))
	assert.Empty(t, f.edgesFrom(f.sanity))
}

func TestResolve_NotQuickWaitsForPrecedingTrigger(t *testing.T) {
	f := newFixture(t)
	f.add(t, domain.PlanNodeSpec{ID: "P_Stage_QuickFeedback_Trigger", Kind: domain.NodeTrigger, Stage: id("QuickFeedback")})
	slow := f.add(t, domain.PlanNodeSpec{ID: "P_Gradleception_linux", Stage: id("ReadyForMerge"), NotQuick: true})

	require.NoError(t, f.resolver().Resolve(slow))

	assert.Equal(t, []domain.Edge{
		domain.CancelEdge(slow.ID(), id("P_Stage_QuickFeedback_Trigger")),
		domain.CancelEdge(slow.ID(), f.sanity),
	}, f.edgesFrom(slow.ID()))
}

func TestResolve_MissingTriggerCommitsNothing(t *testing.T) {
	f := newFixture(t)
	slow := f.add(t, domain.PlanNodeSpec{ID: "P_Gradleception_linux", Stage: id("ReadyForMerge"), NotQuick: true})

	err := f.resolver().Resolve(slow)
	require.ErrorIs(t, err, domain.ErrMissingNode)

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "P_Stage_QuickFeedback_Trigger", zErr.Metadata()["missing"])
	assert.Empty(t, f.edgesFrom(slow.ID()))
	for range f.plan.Artifacts() {
		t.Fatal("no artifact dependency may be committed")
	}
}

func TestResolve_NotQuickInFirstStage(t *testing.T) {
	f := newFixture(t)
	n := f.add(t, domain.PlanNodeSpec{ID: "P_Early", Stage: id("QuickFeedback"), NotQuick: true})

	err := f.resolver().Resolve(n)
	require.ErrorIs(t, err, domain.ErrMissingNode)
	assert.Empty(t, f.edgesFrom(n.ID()))
}

func TestResolve_MissingSanityNode(t *testing.T) {
	f := newFixture(t)
	n := f.add(t, domain.PlanNodeSpec{ID: "P_Quick", Stage: id("QuickFeedback")})

	r := resolver.New(f.plan, f.stages, prefix, id("P_Ghost"))
	require.ErrorIs(t, r.Resolve(n), domain.ErrMissingNode)
}

func TestResolve_Trigger(t *testing.T) {
	f := newFixture(t)
	f.add(t, domain.PlanNodeSpec{ID: "P_Stage_QuickFeedback_Trigger", Kind: domain.NodeTrigger, Stage: id("QuickFeedback")})
	required := f.add(t, domain.PlanNodeSpec{ID: "P_Platform_linux", Stage: id("ReadyForMerge")})
	optional := f.add(t, domain.PlanNodeSpec{ID: "P_Flaky_linux", Stage: id("ReadyForMerge"), Optional: true})
	f.add(t, domain.PlanNodeSpec{ID: "P_Quick_linux", Stage: id("QuickFeedback")})
	trigger := f.add(t, domain.PlanNodeSpec{ID: "P_Stage_ReadyForMerge_Trigger", Kind: domain.NodeTrigger, Stage: id("ReadyForMerge")})

	require.NoError(t, f.resolver().Resolve(trigger))

	assert.Equal(t, []domain.Edge{
		domain.CancelEdge(trigger.ID(), required.ID()),
		domain.IgnoreEdge(trigger.ID(), optional.ID()),
		domain.CancelEdge(trigger.ID(), id("P_Stage_QuickFeedback_Trigger")),
		domain.CancelEdge(trigger.ID(), f.sanity),
	}, f.edgesFrom(trigger.ID()))
}

func TestResolve_TriggerOfSanityStage(t *testing.T) {
	f := newFixture(t)
	trigger := f.add(t, domain.PlanNodeSpec{ID: "P_Stage_QuickFeedback_Trigger", Kind: domain.NodeTrigger, Stage: id("QuickFeedback")})

	require.NoError(t, f.resolver().Resolve(trigger))

	edges := f.edgesFrom(trigger.ID())
	require.Len(t, sanityEdges(edges, f.sanity), 1)
	assert.Len(t, edges, 1)
}
