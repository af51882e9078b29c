// Package cas persists recorded plan fingerprints so later runs can detect drift.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/stagehand/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PlanStore = (*Store)(nil)

// Store implements ports.PlanStore using a flat JSON file keyed by project.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.PlanRecord
}

// NewStore creates a new PlanStore backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.PlanRecord),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read plan store"), "path", s.path)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to unmarshal plan store"), "path", s.path)
	}

	return nil
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal plan store")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory for plan store"), "path", dir)
	}

	// Written beside the store and renamed over it.
	tmp := s.path + ".tmp"
	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write plan store"), "path", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to replace plan store"), "path", s.path)
	}

	return nil
}

// Get retrieves the last recorded plan of a project. It returns nil when none exists.
func (s *Store) Get(project string) (*domain.PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.cache[project]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Put records a plan, replacing any earlier record of the same project.
func (s *Store) Put(rec domain.PlanRecord) error {
	if rec.Project == "" {
		return zerr.Wrap(domain.ErrConfiguration, "plan record has no project")
	}

	s.mu.Lock()
	s.cache[rec.Project] = rec
	s.mu.Unlock()

	return s.save()
}
