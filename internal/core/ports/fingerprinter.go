package ports

import "go.trai.ch/stagehand/internal/core/domain"

// Fingerprinter defines the interface for computing a content hash of a pipeline.
//
//go:generate go run go.uber.org/mock/mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// Fingerprint returns a stable hash of everything that affects the plan.
	Fingerprint(p *domain.Pipeline) (string, error)
}
