// Package fingerprint computes stable content hashes of generated pipelines.
package fingerprint

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/stagehand/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Fingerprinter = (*Hasher)(nil)

// Hasher fingerprints pipelines with XXHash over a canonical walk of their contents.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Fingerprint returns the 16 hex digit hash of the pipeline.
// Every field that reaches the rendered output takes part; field and section
// boundaries are separated by zero bytes.
func (h *Hasher) Fingerprint(p *domain.Pipeline) (string, error) {
	if p == nil {
		return "", zerr.New("cannot fingerprint a nil pipeline")
	}

	d := xxhash.New()
	write(d, p.Project)
	section(d)

	for _, s := range p.Stages {
		write(d, s.ID().String())
		prev, _ := s.Preceding()
		write(d, prev.String())
	}
	section(d)

	for _, n := range p.Nodes {
		h.hashNode(d, n)
	}
	section(d)

	for _, e := range p.Edges {
		write(d, e.From.String())
		write(d, e.To.String())
		write(d, string(e.OnFailure))
		write(d, string(e.OnCancel))
	}
	section(d)

	for _, a := range p.Artifacts {
		write(d, a.ID)
		write(d, a.From.String())
		write(d, a.To.String())
		write(d, a.Rules)
		write(d, strconv.FormatBool(a.CleanDestination))
	}
	section(d)

	return fmt.Sprintf("%016x", d.Sum64()), nil
}

// hashNode hashes the identity, flags, environment and steps of a node.
func (h *Hasher) hashNode(d *xxhash.Digest, n domain.PlanNode) {
	write(d, n.ID().String())
	write(d, n.Name())
	write(d, string(n.Kind()))
	write(d, n.Stage().String())
	write(d, n.Job())
	if v, ok := n.Variant(); ok {
		write(d, v.Name())
	} else {
		write(d, "")
	}
	write(d, strconv.FormatBool(n.IsSanityCheck()))
	write(d, strconv.FormatBool(n.NotQuick()))
	write(d, strconv.FormatBool(n.Optional()))
	write(d, strconv.Itoa(n.Timeout()))

	for _, e := range n.Env() {
		_, _ = d.WriteString(e.Name)
		_, _ = d.Write([]byte{'='})
		write(d, e.Value)
	}
	section(d)

	for _, s := range n.Steps() {
		write(d, s.Name)
		write(d, string(s.Runner))
		write(d, string(s.Mode))
		write(d, s.WorkingDir)
		write(d, s.Command())
	}
	section(d)
}

func write(d *xxhash.Digest, s string) {
	_, _ = d.WriteString(s)
	_, _ = d.Write([]byte{0})
}

// section marks the end of a list so adjacent lists cannot shift into each other.
func section(d *xxhash.Digest) {
	_, _ = d.Write([]byte{0})
}
