// Package render writes generated pipelines in the supported output formats.
package render

import (
	"go.trai.ch/stagehand/internal/core/domain"
)

// document is the serialized form of a pipeline shared by the structured renderers.
type document struct {
	Project        string     `json:"project" yaml:"project"`
	Stages         []stageDoc `json:"stages" yaml:"stages"`
	ExecutionOrder []string   `json:"executionOrder" yaml:"executionOrder"`
	Nodes          []nodeDoc  `json:"nodes" yaml:"nodes"`
}

type stageDoc struct {
	ID      string `json:"id" yaml:"id"`
	After   string `json:"after,omitempty" yaml:"after,omitempty"`
	Trigger string `json:"trigger" yaml:"trigger"`
}

type nodeDoc struct {
	ID           string          `json:"id" yaml:"id"`
	Name         string          `json:"name" yaml:"name"`
	Kind         string          `json:"kind" yaml:"kind"`
	Stage        string          `json:"stage" yaml:"stage"`
	Job          string          `json:"job,omitempty" yaml:"job,omitempty"`
	AgentOS      string          `json:"agentOS,omitempty" yaml:"agentOS,omitempty"`
	Variant      *variantDoc     `json:"variant,omitempty" yaml:"variant,omitempty"`
	SanityCheck  bool            `json:"sanityCheck,omitempty" yaml:"sanityCheck,omitempty"`
	NotQuick     bool            `json:"notQuick,omitempty" yaml:"notQuick,omitempty"`
	Optional     bool            `json:"optional,omitempty" yaml:"optional,omitempty"`
	Timeout      int             `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Env          []envDoc        `json:"env,omitempty" yaml:"env,omitempty"`
	Steps        []stepDoc       `json:"steps,omitempty" yaml:"steps,omitempty"`
	Dependencies []dependencyDoc `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Artifacts    []artifactDoc   `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
}

type variantDoc struct {
	Name    string   `json:"name" yaml:"name"`
	OS      string   `json:"os" yaml:"os"`
	TaskSet string   `json:"taskSet" yaml:"taskSet"`
	Daemon  bool     `json:"daemon" yaml:"daemon"`
	Tasks   []string `json:"tasks" yaml:"tasks"`
}

type envDoc struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

type stepDoc struct {
	Name       string `json:"name" yaml:"name"`
	Runner     string `json:"runner" yaml:"runner"`
	Mode       string `json:"mode" yaml:"mode"`
	WorkingDir string `json:"workingDir,omitempty" yaml:"workingDir,omitempty"`
	Command    string `json:"command" yaml:"command"`
}

type dependencyDoc struct {
	Node      string `json:"node" yaml:"node"`
	OnFailure string `json:"onFailure" yaml:"onFailure"`
	OnCancel  string `json:"onCancel" yaml:"onCancel"`
}

type artifactDoc struct {
	ID               string `json:"id" yaml:"id"`
	Node             string `json:"node" yaml:"node"`
	Rules            string `json:"rules" yaml:"rules"`
	CleanDestination bool   `json:"cleanDestination" yaml:"cleanDestination"`
}

// newDocument converts a pipeline into its serialized form.
func newDocument(p *domain.Pipeline) document {
	doc := document{
		Project:        p.Project,
		Stages:         make([]stageDoc, 0, len(p.Stages)),
		ExecutionOrder: make([]string, 0, len(p.ExecutionOrder)),
		Nodes:          make([]nodeDoc, 0, len(p.Nodes)),
	}
	for _, id := range p.ExecutionOrder {
		doc.ExecutionOrder = append(doc.ExecutionOrder, id.String())
	}

	triggers := make(map[domain.InternedString]string, len(p.Stages))
	for _, n := range p.Nodes {
		if n.Kind() == domain.NodeTrigger {
			triggers[n.Stage()] = n.ID().String()
		}
	}

	for _, s := range p.Stages {
		sd := stageDoc{ID: s.ID().String(), Trigger: triggers[s.ID()]}
		if prev, ok := s.Preceding(); ok {
			sd.After = prev.String()
		}
		doc.Stages = append(doc.Stages, sd)
	}

	for _, n := range p.Nodes {
		doc.Nodes = append(doc.Nodes, newNodeDoc(p, n))
	}
	return doc
}

func newNodeDoc(p *domain.Pipeline, n domain.PlanNode) nodeDoc {
	nd := nodeDoc{
		ID:          n.ID().String(),
		Name:        n.Name(),
		Kind:        string(n.Kind()),
		Stage:       n.Stage().String(),
		Job:         n.Job(),
		SanityCheck: n.IsSanityCheck(),
		NotQuick:    n.NotQuick(),
		Optional:    n.Optional(),
		Timeout:     n.Timeout(),
	}

	if v, ok := n.Variant(); ok {
		nd.AgentOS = v.OS().AgentName()
		nd.Variant = &variantDoc{
			Name:    v.Name(),
			OS:      v.OS().String(),
			TaskSet: v.TaskSet(),
			Daemon:  v.Daemon(),
			Tasks:   v.Tasks(),
		}
	}

	for _, e := range n.Env() {
		nd.Env = append(nd.Env, envDoc(e))
	}
	for _, s := range n.Steps() {
		nd.Steps = append(nd.Steps, stepDoc{
			Name:       s.Name,
			Runner:     string(s.Runner),
			Mode:       string(s.Mode),
			WorkingDir: s.WorkingDir,
			Command:    s.Command(),
		})
	}
	for _, e := range p.EdgesFrom(n.ID()) {
		nd.Dependencies = append(nd.Dependencies, dependencyDoc{
			Node:      e.To.String(),
			OnFailure: string(e.OnFailure),
			OnCancel:  string(e.OnCancel),
		})
	}
	for _, a := range p.ArtifactsFrom(n.ID()) {
		nd.Artifacts = append(nd.Artifacts, artifactDoc{
			ID:               a.ID,
			Node:             a.To.String(),
			Rules:            a.Rules,
			CleanDestination: a.CleanDestination,
		})
	}
	return nd
}
