package ports

import "go.trai.ch/stagehand/internal/core/domain"

// PlanStore defines the interface for storing and retrieving recorded plan fingerprints.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type PlanStore interface {
	// Get retrieves the record for a given project.
	// Returns nil, nil if not found.
	Get(project string) (*domain.PlanRecord, error)

	// Put stores the record.
	Put(record domain.PlanRecord) error
}
