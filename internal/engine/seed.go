package engine

import (
	"time"

	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/insight"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/report"
)

// seedResults builds the static sample dataset served when neither the
// backend nor the cache has anything to show. Entries are marked by the
// sample- ID prefix so UIs can label them.
func seedResults() []report.CompetitiveAnalysisResult {
	user := seedSite("example.com", 75)
	competitors := []report.SiteEntry{
		seedSite("competitor-one.com", 82),
		seedSite("competitor-two.com", 68),
		seedSite("competitor-three.com", 54),
	}

	summary := insight.BuildSummary(user, competitors, insight.Meta{ModelsUsed: 4})

	return []report.CompetitiveAnalysisResult{
		{
			ID:          "sample-analysis",
			Timestamp:   time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
			UserSite:    user,
			Competitors: competitors,
			Summary:     summary,
		},
	}
}

func seedSite(domain string, total int) report.SiteEntry {
	axis := (total + 2) / 5

	r := report.LLMOReport{
		URL:                    "https://" + domain,
		TotalScore:             total,
		Grade:                  report.GradeFor(total),
		CredibilityAuthority:   report.NewAxisScore(report.AxisCredibilityAuthority, axis),
		StructureReadability:   report.NewAxisScore(report.AxisStructureReadability, axis),
		ContextualRelevance:    report.NewAxisScore(report.AxisContextualRelevance, axis),
		TechnicalCompatibility: report.NewAxisScore(report.AxisTechnicalCompatibility, axis),
	}
	r.PrimaryRecommendations = []string{
		"Add structured data markup so AI crawlers can parse key facts",
		"Publish authoritative, citation-rich content in your niche",
		"Tighten heading hierarchy for better machine readability",
	}

	return report.SiteEntry{
		URL:    "https://" + domain,
		Domain: domain,
		Report: r,
	}
}
