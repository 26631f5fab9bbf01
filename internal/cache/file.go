package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/observability"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/report"
)

// FileStore persists analyses as a single JSON file. A corrupted file is
// logged and treated as empty rather than blocking new analyses.
type FileStore struct {
	mu         sync.Mutex
	path       string
	maxEntries int
	logger     *observability.Logger
}

// NewFileStore creates a file-backed store at path, creating parent
// directories as needed.
func NewFileStore(path string, maxEntries int, logger *observability.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is required")
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if logger == nil {
		logger = observability.Nop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	return &FileStore{path: path, maxEntries: maxEntries, logger: logger}, nil
}

// List returns the cached analyses, newest first.
func (s *FileStore) List(ctx context.Context) ([]report.CompetitiveAnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(), nil
}

// Save prepends result and rewrites the file.
func (s *FileStore) Save(ctx context.Context, result report.CompetitiveAnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := prependCapped(s.load(), result, s.maxEntries)
	return s.write(results)
}

// Delete removes the analysis with the given ID if present.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := s.load()
	trimmed := removeByID(results, id)
	if len(trimmed) == len(results) {
		return nil
	}
	return s.write(trimmed)
}

// Clear drops every cached analysis.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

// load reads the cache file. Missing or unreadable content yields an empty
// list so the caller can rebuild the cache on the next save.
func (s *FileStore) load() []report.CompetitiveAnalysisResult {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Failed to read cache file, starting empty")
		}
		return nil
	}

	var results []report.CompetitiveAnalysisResult
	if err := json.Unmarshal(data, &results); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Cache file corrupted, starting empty")
		return nil
	}
	return results
}

// write replaces the cache file atomically via a temp-file rename.
func (s *FileStore) write(results []report.CompetitiveAnalysisResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
