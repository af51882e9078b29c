package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/zerr"
)

// FormatText is the name of the human readable output format.
const FormatText = "text"

// Text renders a pipeline as an indented, optionally colored summary grouped by stage.
type Text struct {
	profile func() termenv.Profile
}

// NewText creates a text renderer using the environment color profile.
func NewText() *Text {
	return NewTextWithProfile(ColorProfile)
}

// NewTextWithProfile creates a text renderer with a custom profile selector.
func NewTextWithProfile(profileFn func() termenv.Profile) *Text {
	return &Text{profile: profileFn}
}

// Format returns the format name.
func (*Text) Format() string {
	return FormatText
}

// Render writes the pipeline summary to w.
func (t *Text) Render(w io.Writer, p *domain.Pipeline) error {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(t.profile())
	st := newStyles(r)

	var b strings.Builder
	b.WriteString(st.title.Render(p.Project) + "\n")

	for _, s := range p.Stages {
		b.WriteString("\n" + st.stage.Render("Stage "+s.ID().String()))
		if prev, ok := s.Preceding(); ok {
			b.WriteString(" " + st.muted.Render("after "+prev.String()))
		}
		b.WriteString("\n")

		for _, n := range p.NodesInStage(s.ID()) {
			writeNode(&b, st, p, n)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", st.muted.Render(fmt.Sprintf("%d stages, %d nodes, %d dependencies, %d artifact dependencies",
		len(p.Stages), len(p.Nodes), len(p.Edges), len(p.Artifacts))))

	if _, err := io.WriteString(w, b.String()); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write pipeline"), "format", FormatText)
	}
	return nil
}

func writeNode(b *strings.Builder, st styles, p *domain.Pipeline, n domain.PlanNode) {
	icon := st.build.Render(iconBuild)
	if n.Kind() == domain.NodeTrigger {
		icon = st.trigger.Render(iconTrigger)
	}
	fmt.Fprintf(b, "  %s %s  %s", icon, n.ID(), st.muted.Render(n.Name()))
	if n.IsSanityCheck() {
		b.WriteString(" " + st.sanity.Render(iconSanity+" sanity check"))
	}
	if n.NotQuick() {
		b.WriteString(" " + st.muted.Render("[not quick]"))
	}
	if n.Optional() {
		b.WriteString(" " + st.muted.Render("[optional]"))
	}
	b.WriteString("\n")

	if v, ok := n.Variant(); ok {
		writeField(b, st, "agent", v.OS().AgentName())
	}
	if steps := n.StepNames(); len(steps) > 0 {
		writeField(b, st, "steps", strings.Join(steps, ", "))
	}

	edges := p.EdgesFrom(n.ID())
	if len(edges) > 0 {
		deps := make([]string, len(edges))
		for i, e := range edges {
			deps[i] = fmt.Sprintf("%s (%s/%s)", e.To, e.OnFailure, e.OnCancel)
		}
		writeField(b, st, "needs", strings.Join(deps, ", "))
	}

	artifacts := p.ArtifactsFrom(n.ID())
	if len(artifacts) > 0 {
		from := make([]string, len(artifacts))
		for i, a := range artifacts {
			from[i] = a.To.String()
		}
		writeField(b, st, "artifacts", strings.Join(from, ", "))
	}
}

const fieldWidth = 10

func writeField(b *strings.Builder, st styles, label, value string) {
	pad := max(fieldWidth-len(label), 1)
	fmt.Fprintf(b, "      %s%s%s\n", st.muted.Render(label), strings.Repeat(" ", pad), value)
}
