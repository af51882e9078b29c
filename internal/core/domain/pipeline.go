package domain

import "slices"

// Pipeline is the generated plan handed to the CI execution engine.
type Pipeline struct {
	Project   string
	Stages    []Stage
	Nodes     []PlanNode
	Edges     []Edge
	Artifacts []ArtifactDependency
	// ExecutionOrder lists node ids with every snapshot dependency before its dependents.
	ExecutionOrder []InternedString
}

// NewPipeline snapshots a resolved graph. Stages are expected in topological order and
// g must have passed Validate.
func NewPipeline(project string, stages []Stage, g *PlanGraph) *Pipeline {
	p := &Pipeline{
		Project:        project,
		Stages:         slices.Clone(stages),
		Nodes:          slices.Collect(g.Nodes()),
		Edges:          slices.Collect(g.Edges()),
		Artifacts:      slices.Collect(g.Artifacts()),
		ExecutionOrder: make([]InternedString, 0, g.Len()),
	}
	for n := range g.Walk() {
		p.ExecutionOrder = append(p.ExecutionOrder, n.ID())
	}
	return p
}

// NodesInStage returns the nodes of a stage in pipeline order.
func (p *Pipeline) NodesInStage(stage InternedString) []PlanNode {
	var out []PlanNode
	for _, n := range p.Nodes {
		if n.Stage() == stage {
			out = append(out, n)
		}
	}
	return out
}

// EdgesFrom returns the snapshot dependencies of a node.
func (p *Pipeline) EdgesFrom(id InternedString) []Edge {
	var out []Edge
	for _, e := range p.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// ArtifactsFrom returns the artifact dependencies of a node.
func (p *Pipeline) ArtifactsFrom(id InternedString) []ArtifactDependency {
	var out []ArtifactDependency
	for _, a := range p.Artifacts {
		if a.From == id {
			out = append(out, a)
		}
	}
	return out
}
