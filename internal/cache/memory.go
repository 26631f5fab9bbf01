package cache

import (
	"context"
	"sync"

	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/report"
)

// MemoryStore keeps analyses in process memory. Used for development and
// tests; contents do not survive a restart.
type MemoryStore struct {
	mu         sync.RWMutex
	results    []report.CompetitiveAnalysisResult
	maxEntries int
}

// NewMemoryStore creates an in-memory store capped at maxEntries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{maxEntries: maxEntries}
}

// List returns the cached analyses, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]report.CompetitiveAnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]report.CompetitiveAnalysisResult, len(s.results))
	copy(out, s.results)
	return out, nil
}

// Save prepends result, replacing any entry with the same ID.
func (s *MemoryStore) Save(ctx context.Context, result report.CompetitiveAnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = prependCapped(s.results, result, s.maxEntries)
	return nil
}

// Delete removes the analysis with the given ID if present.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = removeByID(s.results, id)
	return nil
}

// Clear drops every cached analysis.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = nil
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
