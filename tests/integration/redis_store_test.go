// Package integration provides integration tests for the Competitive Engine.
package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/cache"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/report"
)

// setupRedis starts a Redis container and returns its address.
func setupRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := redis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, port.Port())
}

func skipWithoutDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv("CI") == "" && !isDockerAvailable() {
		t.Skip("Docker not available")
	}
}

func sampleAnalysis(id string, score int) report.CompetitiveAnalysisResult {
	return report.CompetitiveAnalysisResult{
		ID:        id,
		Timestamp: time.Now().UTC().Truncate(time.Second),
		UserSite: report.SiteEntry{
			URL:    "https://example.com",
			Domain: "example.com",
			Report: report.LLMOReport{URL: "https://example.com", TotalScore: score},
		},
	}
}

func TestRedisStore_RoundTrip(t *testing.T) {
	skipWithoutDocker(t)

	addr := setupRedis(t)
	store, err := cache.NewRedisStore(cache.RedisConfig{
		Addr:       addr,
		Key:        "competitive:analyses:test",
		MaxEntries: cache.DefaultMaxEntries,
	})
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	results, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, store.Save(ctx, sampleAnalysis("a", 50)))
	require.NoError(t, store.Save(ctx, sampleAnalysis("b", 60)))

	results, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].ID)
	assert.Equal(t, 50, results[1].UserSite.Report.TotalScore)

	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Delete(ctx, "a"))

	results, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)
}

func TestRedisStore_CapAcrossClients(t *testing.T) {
	skipWithoutDocker(t)

	addr := setupRedis(t)
	cfg := cache.RedisConfig{
		Addr:       addr,
		Key:        "competitive:analyses:test",
		MaxEntries: cache.DefaultMaxEntries,
	}

	first, err := cache.NewRedisStore(cfg)
	require.NoError(t, err)
	defer first.Close()

	ctx := context.Background()
	for i := 0; i < cache.DefaultMaxEntries+3; i++ {
		require.NoError(t, first.Save(ctx, sampleAnalysis(fmt.Sprintf("id-%d", i), i)))
	}

	// A second client sees the same capped, newest-first list.
	second, err := cache.NewRedisStore(cfg)
	require.NoError(t, err)
	defer second.Close()

	results, err := second.List(ctx)
	require.NoError(t, err)
	require.Len(t, results, cache.DefaultMaxEntries)
	assert.Equal(t, "id-12", results[0].ID)

	require.NoError(t, second.Clear(ctx))
	results, err = first.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, results)
}

// isDockerAvailable checks if Docker is available for testing.
func isDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		return false
	}
	defer provider.Close()

	_, err = provider.Client().Ping(ctx)
	return err == nil
}
