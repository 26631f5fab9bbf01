package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/report"
)

// RedisStore keeps the analysis list as a single JSON value under one key,
// so the cap and newest-first order are enforced on every write.
type RedisStore struct {
	client     *redis.Client
	key        string
	maxEntries int
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	Key        string
	MaxEntries int
}

// NewRedisStore creates a Redis-backed store and verifies connectivity.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = "competitive:analyses"
	}
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &RedisStore{client: client, key: key, maxEntries: maxEntries}, nil
}

// List returns the cached analyses, newest first.
func (s *RedisStore) List(ctx context.Context) ([]report.CompetitiveAnalysisResult, error) {
	return s.load(ctx)
}

// Save prepends result and rewrites the list value.
func (s *RedisStore) Save(ctx context.Context, result report.CompetitiveAnalysisResult) error {
	results, err := s.load(ctx)
	if err != nil {
		return err
	}
	return s.write(ctx, prependCapped(results, result, s.maxEntries))
}

// Delete removes the analysis with the given ID if present.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	results, err := s.load(ctx)
	if err != nil {
		return err
	}
	trimmed := removeByID(results, id)
	if len(trimmed) == len(results) {
		return nil
	}
	return s.write(ctx, trimmed)
}

// Clear drops every cached analysis.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) load(ctx context.Context) ([]report.CompetitiveAnalysisResult, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var results []report.CompetitiveAnalysisResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("unmarshal cached analyses: %w", err)
	}
	return results, nil
}

func (s *RedisStore) write(ctx context.Context, results []report.CompetitiveAnalysisResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal analyses: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
