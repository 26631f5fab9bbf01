// Package engine orchestrates competitive analyses: it submits URLs to the
// backend, polls for asynchronous enrichment, and falls back through the
// local cache to a static dataset when the backend is unreachable.
package engine

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/apiclient"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/cache"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/config"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/insight"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/observability"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/report"
)

// Engine coordinates the backend client, the insight generator and the
// cache store.
type Engine struct {
	backend apiclient.Backend
	store   cache.Store
	logger  *observability.Logger
	cfg     config.EngineConfig

	mu       sync.Mutex
	inflight map[string]*inflightCall

	seedMu sync.Mutex
	seeded bool
}

// inflightCall lets concurrent Analyze calls for the same URL share one
// backend submission.
type inflightCall struct {
	done   chan struct{}
	result *report.CompetitiveAnalysisResult
	err    error
}

// New creates an engine. A nil logger disables logging.
func New(backend apiclient.Backend, store cache.Store, cfg config.EngineConfig, logger *observability.Logger) *Engine {
	if logger == nil {
		logger = observability.Nop()
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 3
	}
	if cfg.PollBackoff <= 0 {
		cfg.PollBackoff = 1500 * time.Millisecond
	}
	return &Engine{
		backend:  backend,
		store:    store,
		logger:   logger.WithComponent("engine"),
		cfg:      cfg,
		inflight: make(map[string]*inflightCall),
	}
}

// Analyze submits rawURL for analysis and returns the assembled result.
// Submission failures are returned to the caller; enrichment that never
// arrives within the poll budget yields a result whose summary carries the
// processing sentinel. Concurrent calls for the same normalized URL share
// one submission.
func (e *Engine) Analyze(ctx context.Context, rawURL string) (*report.CompetitiveAnalysisResult, error) {
	key := normalizeURL(rawURL)

	e.mu.Lock()
	if call, ok := e.inflight[key]; ok {
		e.mu.Unlock()
		select {
		case <-call.done:
			return call.result, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	e.inflight[key] = call
	e.mu.Unlock()

	result, err := e.analyze(ctx, key)

	call.result, call.err = result, err
	close(call.done)

	e.mu.Lock()
	delete(e.inflight, key)
	e.mu.Unlock()

	return result, err
}

func (e *Engine) analyze(ctx context.Context, targetURL string) (*report.CompetitiveAnalysisResult, error) {
	e.logger.Info().Str("url", targetURL).Msg("Submitting competitive analysis")

	raw, err := e.backend.SubmitAnalysis(ctx, apiclient.SubmitRequest{
		URL:         targetURL,
		MinScore:    e.cfg.MinScore,
		MinMentions: e.cfg.MinMentions,
	})
	if err != nil {
		return nil, fmt.Errorf("submit analysis: %w", err)
	}

	view := report.MapSession(raw, targetURL)
	if view.Processing && view.ID != "" {
		view = e.pollForEnrichment(ctx, view, targetURL)
	}

	result := e.buildResult(view)
	e.saveThrough(ctx, result)

	if view.Processing {
		e.logger.Warn().Str("id", result.ID).Msg("Enrichment did not arrive within poll budget, returning degraded result")
	}
	return &result, nil
}

// pollForEnrichment re-fetches the session until enrichment shows up or the
// attempt budget runs out. Waits respect context cancellation.
func (e *Engine) pollForEnrichment(ctx context.Context, view report.SessionView, targetURL string) report.SessionView {
	for attempt := 1; attempt <= e.cfg.PollAttempts; attempt++ {
		if err := wait(ctx, e.cfg.PollBackoff); err != nil {
			return view
		}

		raw, err := e.backend.GetSession(ctx, view.ID)
		if err != nil {
			e.logger.Warn().Err(err).Int("attempt", attempt).Str("id", view.ID).Msg("Poll failed")
			continue
		}

		polled := report.MapSession(raw, targetURL)
		if polled.ID == "" {
			polled.ID = view.ID
		}
		view = polled
		if !view.Processing {
			e.logger.Info().Int("attempt", attempt).Str("id", view.ID).Msg("Enrichment arrived")
			return view
		}
	}
	return view
}

// GetByID returns a single analysis, preferring a live fetch and falling
// back to the cache. A miss in both is (nil, nil), not an error. The id is
// normalized first so backend-minted and cached identifiers share one key
// space.
func (e *Engine) GetByID(ctx context.Context, id string) (*report.CompetitiveAnalysisResult, error) {
	id = report.NormalizeID(id)
	raw, err := e.backend.GetSession(ctx, id)
	if err == nil {
		view := report.MapSession(raw, "")
		if view.ID == "" {
			view.ID = id
		}
		result := e.buildResult(view)
		e.saveThrough(ctx, result)
		return &result, nil
	}
	e.logger.Warn().Err(err).Str("id", id).Msg("Live fetch failed, trying cache")

	cached, cacheErr := e.store.List(ctx)
	if cacheErr != nil {
		e.logger.Error().Err(cacheErr).Msg("Cache read failed")
		return nil, nil
	}
	for i := range cached {
		if cached[i].ID == id {
			return &cached[i], nil
		}
	}
	return nil, nil
}

// List returns all known analyses: live from the backend when reachable,
// otherwise the cache, otherwise (on the first load only) a static sample
// dataset so the UI is never empty.
func (e *Engine) List(ctx context.Context) ([]report.CompetitiveAnalysisResult, error) {
	sessions, err := e.backend.ListSessions(ctx)
	if err == nil {
		results := make([]report.CompetitiveAnalysisResult, 0, len(sessions))
		for _, raw := range sessions {
			view := report.MapSession(raw, "")
			results = append(results, e.buildResult(view))
		}
		// Saved oldest-first so the cache's prepend order matches the listing.
		for i := len(results) - 1; i >= 0; i-- {
			e.saveThrough(ctx, results[i])
		}
		return results, nil
	}
	e.logger.Warn().Err(err).Msg("Backend list failed, trying cache")

	cached, cacheErr := e.store.List(ctx)
	if cacheErr != nil {
		e.logger.Error().Err(cacheErr).Msg("Cache read failed")
	}
	if len(cached) > 0 {
		return cached, nil
	}

	if e.cfg.SeedFallback && e.takeSeedSlot() {
		e.logger.Info().Msg("No live or cached data, serving sample dataset")
		return seedResults(), nil
	}
	return nil, nil
}

// takeSeedSlot grants the static fallback exactly once per process.
func (e *Engine) takeSeedSlot() bool {
	e.seedMu.Lock()
	defer e.seedMu.Unlock()
	if e.seeded {
		return false
	}
	e.seeded = true
	return true
}

// Delete removes an analysis from the local cache. The backend copy is left
// untouched.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if err := e.store.Delete(ctx, report.NormalizeID(id)); err != nil {
		return fmt.Errorf("delete cached analysis: %w", err)
	}
	return nil
}

// Clear empties the local cache.
func (e *Engine) Clear(ctx context.Context) error {
	if err := e.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

func (e *Engine) buildResult(view report.SessionView) report.CompetitiveAnalysisResult {
	id := view.ID
	if id == "" {
		id = uuid.NewString()
	}
	timestamp := view.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	summary := insight.BuildSummary(view.UserSite, view.Competitors, insight.Meta{
		Processing: view.Processing,
		ModelsUsed: view.ModelsUsed,
	})

	return report.CompetitiveAnalysisResult{
		ID:          id,
		Timestamp:   timestamp,
		UserSite:    view.UserSite,
		Competitors: view.Competitors,
		Summary:     summary,
	}
}

// saveThrough caches the result. Cache failures are logged, never surfaced:
// the caller already holds the data.
func (e *Engine) saveThrough(ctx context.Context, result report.CompetitiveAnalysisResult) {
	if err := e.store.Save(ctx, result); err != nil {
		e.logger.Warn().Err(err).Str("id", result.ID).Msg("Failed to cache analysis")
	}
}

// normalizeURL canonicalizes a target URL for deduplication: scheme
// defaulted, host lowercased, trailing slash dropped.
func normalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(trimmed, "/")
	}
	u.Host = strings.ToLower(u.Host)
	return strings.TrimSuffix(u.String(), "/")
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
