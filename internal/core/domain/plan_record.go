package domain

import "time"

// PlanRecord is the persisted summary of the last recorded plan of a project.
type PlanRecord struct {
	Project     string    `json:"project,omitzero"`
	Fingerprint string    `json:"fingerprint,omitzero"`
	Nodes       int       `json:"nodes,omitzero"`
	Edges       int       `json:"edges,omitzero"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
}
