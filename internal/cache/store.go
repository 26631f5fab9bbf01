// Package cache persists recent analysis results locally so reports stay
// readable when the backend is unreachable. The store holds a bounded,
// newest-first list.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/config"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/observability"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/report"
)

// DefaultMaxEntries caps how many analyses a store retains.
const DefaultMaxEntries = 10

// ErrUnknownDriver indicates an unrecognized cache driver name.
var ErrUnknownDriver = errors.New("unknown cache driver")

// Store defines the analysis cache interface. Save prepends and evicts the
// oldest entries beyond the cap; Delete is idempotent.
type Store interface {
	List(ctx context.Context) ([]report.CompetitiveAnalysisResult, error)
	Save(ctx context.Context, result report.CompetitiveAnalysisResult) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Close() error
}

// New builds the store named by cfg.Driver.
func New(cfg config.CacheConfig, logger *observability.Logger) (Store, error) {
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(maxEntries), nil
	case "file":
		return NewFileStore(cfg.File.Path, maxEntries, logger)
	case "redis":
		return NewRedisStore(RedisConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			Key:        cfg.Redis.Key,
			MaxEntries: maxEntries,
		})
	case "sqlite":
		return NewSQLiteStore(cfg.SQLite.Path, maxEntries)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// prependCapped inserts result at the head, replacing any entry with the
// same ID, and truncates to max entries.
func prependCapped(list []report.CompetitiveAnalysisResult, result report.CompetitiveAnalysisResult, max int) []report.CompetitiveAnalysisResult {
	out := make([]report.CompetitiveAnalysisResult, 0, len(list)+1)
	out = append(out, result)
	for _, existing := range list {
		if existing.ID == result.ID {
			continue
		}
		out = append(out, existing)
	}
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func removeByID(list []report.CompetitiveAnalysisResult, id string) []report.CompetitiveAnalysisResult {
	out := list[:0]
	for _, existing := range list {
		if existing.ID == id {
			continue
		}
		out = append(out, existing)
	}
	return out
}
