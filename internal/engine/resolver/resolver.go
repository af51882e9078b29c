// Package resolver attaches snapshot and artifact dependencies to plan nodes.
package resolver

import (
	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/zerr"
)

// Artifact dependency every non-sanity build node takes from the sanity check.
const (
	ArtifactRules = "build-receipt.properties => incoming-distributions"
	artifactIDPre = "ARTIFACT_DEPENDENCY_"
)

// Resolver computes the dependencies of nodes already added to a plan graph.
type Resolver struct {
	plan   *domain.PlanGraph
	stages *domain.StageGraph
	prefix string
	sanity domain.InternedString
}

// New creates a Resolver. sanityID names the gating sanity-check node.
func New(plan *domain.PlanGraph, stages *domain.StageGraph, prefix string, sanityID domain.InternedString) *Resolver {
	return &Resolver{
		plan:   plan,
		stages: stages,
		prefix: prefix,
		sanity: sanityID,
	}
}

// Resolve commits the dependencies of node. If any referenced node is missing it
// returns ErrMissingNode and commits nothing.
func (r *Resolver) Resolve(node domain.PlanNode) error {
	var (
		edges     []domain.Edge
		artifacts []domain.ArtifactDependency
	)

	switch node.Kind() {
	case domain.NodeTrigger:
		edges = r.stageMembers(node)
		prev, ok, err := r.precedingTrigger(node)
		if err != nil {
			return err
		}
		if ok {
			edges = append(edges, domain.CancelEdge(node.ID(), prev))
		}
		edges = append(edges, domain.CancelEdge(node.ID(), r.sanity))

	default:
		if node.NotQuick() {
			prev, ok, err := r.precedingTrigger(node)
			if err != nil {
				return err
			}
			if !ok {
				return zerr.With(zerr.With(zerr.Wrap(domain.ErrMissingNode, "stage has no preceding stage to wait for"),
					"node", node.ID().String()), "stage", node.Stage().String())
			}
			edges = append(edges, domain.CancelEdge(node.ID(), prev))
		}
		if !node.IsSanityCheck() {
			edges = append(edges, domain.CancelEdge(node.ID(), r.sanity))
			artifacts = append(artifacts, domain.ArtifactDependency{
				ID:               artifactIDPre + r.sanity.String(),
				From:             node.ID(),
				To:               r.sanity,
				Rules:            ArtifactRules,
				CleanDestination: true,
			})
		}
	}

	return r.plan.Commit(node.ID(), edges, artifacts)
}

// stageMembers returns edges from a trigger to every build node of its stage.
// The sanity node is excluded; the trigger reaches it through its own sanity edge.
func (r *Resolver) stageMembers(trigger domain.PlanNode) []domain.Edge {
	var edges []domain.Edge
	for n := range r.plan.Nodes() {
		if n.Kind() != domain.NodeBuild || n.Stage() != trigger.Stage() || n.ID() == r.sanity {
			continue
		}
		if n.Optional() {
			edges = append(edges, domain.IgnoreEdge(trigger.ID(), n.ID()))
		} else {
			edges = append(edges, domain.CancelEdge(trigger.ID(), n.ID()))
		}
	}
	return edges
}

// precedingTrigger returns the trigger id of the stage preceding the node's stage.
func (r *Resolver) precedingTrigger(node domain.PlanNode) (domain.InternedString, bool, error) {
	stage, ok := r.stages.Stage(node.Stage().String())
	if !ok {
		return domain.InternedString{}, false, zerr.With(zerr.With(zerr.Wrap(domain.ErrMissingStage, "node references an unknown stage"),
			"node", node.ID().String()), "stage", node.Stage().String())
	}
	prev, ok := stage.Preceding()
	if !ok {
		return domain.InternedString{}, false, nil
	}
	return domain.TriggerID(r.prefix, prev), true, nil
}
