package domain

import "slices"

// NodeKind distinguishes build nodes from stage triggers.
type NodeKind string

const (
	// NodeBuild runs steps for one job and variant.
	NodeBuild NodeKind = "build"
	// NodeTrigger has no steps and completes when its stage does.
	NodeTrigger NodeKind = "trigger"
)

// PlanNodeSpec carries the fields a PlanNode is built from.
type PlanNodeSpec struct {
	ID          string
	Name        string
	Kind        NodeKind
	Stage       InternedString
	Job         string
	Variant     *Variant
	Steps       []Step
	SanityCheck bool
	NotQuick    bool
	Optional    bool
	Timeout     int
	Env         []EnvVar
}

// PlanNode is the generated sequence of steps for one job, variant and stage.
// It is immutable after creation; accessors return copies.
type PlanNode struct {
	id          InternedString
	name        string
	kind        NodeKind
	stage       InternedString
	job         string
	variant     Variant
	hasVariant  bool
	steps       []Step
	sanityCheck bool
	notQuick    bool
	optional    bool
	timeout     int
	env         []EnvVar
}

// NewPlanNode creates a PlanNode, copying everything referenced by spec.
func NewPlanNode(spec PlanNodeSpec) PlanNode {
	n := PlanNode{
		id:          NewInternedString(spec.ID),
		name:        spec.Name,
		kind:        spec.Kind,
		stage:       spec.Stage,
		job:         spec.Job,
		steps:       make([]Step, len(spec.Steps)),
		sanityCheck: spec.SanityCheck,
		notQuick:    spec.NotQuick,
		optional:    spec.Optional,
		timeout:     spec.Timeout,
		env:         slices.Clone(spec.Env),
	}
	if n.kind == "" {
		n.kind = NodeBuild
	}
	if spec.Variant != nil {
		n.variant = *spec.Variant
		n.hasVariant = true
	}
	for i, s := range spec.Steps {
		n.steps[i] = s.Clone()
	}
	return n
}

// ID returns the node id.
func (n PlanNode) ID() InternedString { return n.id }

// Name returns the display name.
func (n PlanNode) Name() string { return n.name }

// Kind returns whether this is a build node or a trigger.
func (n PlanNode) Kind() NodeKind { return n.kind }

// Stage returns the id of the stage the node belongs to.
func (n PlanNode) Stage() InternedString { return n.stage }

// Job returns the id of the job the node was planned from. Empty for triggers.
func (n PlanNode) Job() string { return n.job }

// Variant returns the build variant. Triggers have none.
func (n PlanNode) Variant() (Variant, bool) { return n.variant, n.hasVariant }

// IsSanityCheck reports whether this is the gating sanity-check node.
func (n PlanNode) IsSanityCheck() bool { return n.sanityCheck }

// NotQuick reports whether the node waits for the preceding stage to finish.
func (n PlanNode) NotQuick() bool { return n.notQuick }

// Optional reports whether failures of this node are ignored by its stage trigger.
func (n PlanNode) Optional() bool { return n.optional }

// Timeout returns the execution timeout in minutes. Zero means the server default.
func (n PlanNode) Timeout() int { return n.timeout }

// Env returns the environment variables of the node, sorted by name.
func (n PlanNode) Env() []EnvVar { return slices.Clone(n.env) }

// Steps returns a copy of the ordered steps.
func (n PlanNode) Steps() []Step {
	out := make([]Step, len(n.steps))
	for i, s := range n.steps {
		out[i] = s.Clone()
	}
	return out
}

// StepNames returns the step names in order.
func (n PlanNode) StepNames() []string {
	names := make([]string, len(n.steps))
	for i, s := range n.steps {
		names[i] = s.Name
	}
	return names
}
