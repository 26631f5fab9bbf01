package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapToReport_CanonicalVariant(t *testing.T) {
	raw := json.RawMessage(`{
		"url": "https://example.com",
		"total_score": 82,
		"grade": "Well optimized",
		"credibility_authority": {"score": 18, "details": {"source_citations": 5}},
		"structure_readability": {"score": 16},
		"contextual_relevance": {"score": 15},
		"technical_compatibility": {"score": 14},
		"primary_recommendations": ["Add FAQ schema"]
	}`)

	r := MapToReport(raw, "https://fallback.com")

	assert.Equal(t, "https://example.com", r.URL)
	assert.Equal(t, 82, r.TotalScore)
	assert.Equal(t, GradeWell, r.Grade)
	assert.Equal(t, 18, r.CredibilityAuthority.Score)
	// Supplied details are kept as-is.
	assert.Equal(t, map[string]int{"source_citations": 5}, r.CredibilityAuthority.Details)
	// Missing details are derived from the axis score.
	assert.NotEmpty(t, r.StructureReadability.Details)
	assert.Equal(t, []string{"Add FAQ schema"}, r.PrimaryRecommendations)
}

func TestMapToReport_CanonicalMissingTotal(t *testing.T) {
	raw := json.RawMessage(`{
		"credibility_authority": {"score": 16},
		"structure_readability": {"score": 16},
		"contextual_relevance": {"score": 16},
		"technical_compatibility": {"score": 16}
	}`)

	r := MapToReport(raw, "https://example.com")

	// 64 of 80 projected onto the 100 scale.
	assert.Equal(t, 80, r.TotalScore)
	assert.Equal(t, GradeWell, r.Grade)
}

func TestMapToReport_SessionSiteVariant(t *testing.T) {
	raw := json.RawMessage(`{"url": "https://rival.com", "average_score": 0.85, "mentions": 12}`)

	r := MapToReport(raw, "")

	assert.Equal(t, "https://rival.com", r.URL)
	assert.Equal(t, 85, r.TotalScore)
	assert.Equal(t, GradeWell, r.Grade)
	// A single average spreads uniformly across axes.
	assert.Equal(t, 17, r.CredibilityAuthority.Score)
	assert.Equal(t, 17, r.TechnicalCompatibility.Score)
	assert.Equal(t, genericRecommendations, r.PrimaryRecommendations)
}

func TestMapToReport_LegacyVariant(t *testing.T) {
	raw := json.RawMessage(`{
		"url": "https://example.com",
		"credibility": "15/20",
		"structure": "12/20",
		"relevance": "14/20",
		"technical": "10/20",
		"total": "64/100",
		"recommendations": ["Improve crawl speed", ""]
	}`)

	r := MapToReport(raw, "")

	assert.Equal(t, 64, r.TotalScore)
	assert.Equal(t, GradePartially, r.Grade)
	assert.Equal(t, 15, r.CredibilityAuthority.Score)
	assert.Equal(t, 12, r.StructureReadability.Score)
	assert.Equal(t, 14, r.ContextualRelevance.Score)
	assert.Equal(t, 10, r.TechnicalCompatibility.Score)
	// Empty strings are dropped from recommendations.
	assert.Equal(t, []string{"Improve crawl speed"}, r.PrimaryRecommendations)
}

func TestMapToReport_LegacyVariantNoTotal(t *testing.T) {
	raw := json.RawMessage(`{
		"credibility": "16/20",
		"structure": "16/20",
		"relevance": "16/20",
		"technical": "16/20"
	}`)

	r := MapToReport(raw, "https://example.com")

	assert.Equal(t, 80, r.TotalScore)
	assert.Equal(t, "https://example.com", r.URL)
}

func TestMapToReport_UnknownShape(t *testing.T) {
	for _, raw := range []json.RawMessage{
		nil,
		json.RawMessage(`{}`),
		json.RawMessage(`{"something": "else"}`),
		json.RawMessage(`not even json`),
	} {
		r := MapToReport(raw, "https://example.com")

		assert.Equal(t, "https://example.com", r.URL)
		assert.Equal(t, 0, r.TotalScore)
		assert.Equal(t, GradeNot, r.Grade)
		assert.Equal(t, 0, r.CredibilityAuthority.Score)
		// Zeroed reports still carry generic recommendations.
		assert.Equal(t, genericRecommendations, r.PrimaryRecommendations)
	}
}

func TestMapSession_Enriched(t *testing.T) {
	raw := json.RawMessage(`{
		"analysis_id": "comp_sess-1",
		"url": "https://www.example.com",
		"status": "completed",
		"created_at": "2025-06-01T12:00:00Z",
		"average_score": 0.75,
		"competitors": [
			{"url": "https://rival.com", "domain": "rival.com", "average_score": 0.8}
		],
		"mini_llm_results": {
			"gpt": {"rival.com": {"credibility": "18/20", "structure": "17/20", "relevance": "16/20", "technical": "15/20"}},
			"claude": {}
		}
	}`)

	view := MapSession(raw, "")

	assert.Equal(t, "sess-1", view.ID)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), view.Timestamp)
	assert.False(t, view.Processing)
	assert.Equal(t, 2, view.ModelsUsed)

	assert.Equal(t, "example.com", view.UserSite.Domain)
	assert.Equal(t, 75, view.UserSite.Report.TotalScore)

	require.Len(t, view.Competitors, 1)
	rival := view.Competitors[0]
	assert.Equal(t, "rival.com", rival.Domain)
	// The per-model detail block wins over the bare listing payload.
	assert.Equal(t, 18, rival.Report.CredibilityAuthority.Score)
	assert.Equal(t, 83, rival.Report.TotalScore)
}

func TestMapSession_NumericID(t *testing.T) {
	raw := json.RawMessage(`{"id": 17, "url": "https://example.com", "status": "processing"}`)

	view := MapSession(raw, "")

	assert.Equal(t, "17", view.ID)
	assert.True(t, view.Processing)
}

func TestMapSession_ProcessingWithoutEnrichment(t *testing.T) {
	raw := json.RawMessage(`{
		"session_id": "sess-2",
		"url": "https://example.com",
		"status": "completed",
		"competitors": []
	}`)

	view := MapSession(raw, "")

	// No enrichment blocks means the analysis is still in flight, whatever
	// the status field claims.
	assert.True(t, view.Processing)
	assert.Equal(t, 0, view.ModelsUsed)
}

func TestMapSession_MalformedEnrichmentDoesNotSinkSession(t *testing.T) {
	raw := json.RawMessage(`{
		"analysis_id": "sess-3",
		"url": "https://example.com",
		"average_score": 0.6,
		"mini_llm_results": "unexpected string"
	}`)

	view := MapSession(raw, "")

	assert.Equal(t, "sess-3", view.ID)
	assert.Equal(t, 60, view.UserSite.Report.TotalScore)
	assert.True(t, view.Processing)
}

func TestMapSession_Empty(t *testing.T) {
	view := MapSession(nil, "https://fallback.com")

	assert.Empty(t, view.ID)
	assert.True(t, view.Processing)
	assert.Equal(t, "fallback.com", view.UserSite.Domain)
	assert.Equal(t, 0, view.UserSite.Report.TotalScore)
}
