package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/report"
)

func site(domain string, score int) report.SiteEntry {
	return report.SiteEntry{
		URL:    "https://" + domain,
		Domain: domain,
		Report: report.LLMOReport{URL: "https://" + domain, TotalScore: score},
	}
}

func TestBuildSummary_RankAndGap(t *testing.T) {
	user := site("example.com", 75)
	competitors := []report.SiteEntry{
		site("leader.com", 80),
		site("trailer.com", 60),
	}

	summary := BuildSummary(user, competitors, Meta{ModelsUsed: 4})

	assert.Equal(t, 2, summary.UserRank)
	assert.Equal(t, 3, summary.TotalAnalyzed)

	require.NotEmpty(t, summary.WeaknessesVsCompetitors)
	assert.Contains(t, summary.WeaknessesVsCompetitors[0], "5 points behind leader.com")
	assert.Contains(t, summary.WeaknessesVsCompetitors[1], "1 competitors")
}

func TestBuildSummary_TieRanksUserFirst(t *testing.T) {
	user := site("example.com", 70)
	competitors := []report.SiteEntry{
		site("peer-a.com", 70),
		site("peer-b.com", 70),
	}

	summary := BuildSummary(user, competitors, Meta{})

	assert.Equal(t, 1, summary.UserRank)
	assert.Empty(t, summary.WeaknessesVsCompetitors)
}

func TestBuildSummary_UserLeads(t *testing.T) {
	user := site("example.com", 90)
	competitors := []report.SiteEntry{
		site("second.com", 70),
		site("third.com", 60),
	}

	summary := BuildSummary(user, competitors, Meta{ModelsUsed: 2})

	assert.Equal(t, 1, summary.UserRank)
	assert.Contains(t, summary.StrengthsVsCompetitors[0], "above the competitor average of 65.0")
	assert.Contains(t, summary.StrengthsVsCompetitors[1], "Outscores 2 of 2")
	assert.Empty(t, summary.WeaknessesVsCompetitors)
}

func TestBuildSummary_StrengthsNeverEmpty(t *testing.T) {
	user := site("example.com", 10)
	competitors := []report.SiteEntry{site("leader.com", 95)}

	summary := BuildSummary(user, competitors, Meta{})

	assert.NotEmpty(t, summary.StrengthsVsCompetitors)
}

func TestBuildSummary_Processing(t *testing.T) {
	user := site("example.com", 0)
	competitors := []report.SiteEntry{site("peer.com", 0)}

	summary := BuildSummary(user, competitors, Meta{Processing: true})

	assert.Equal(t, []string{report.ProcessingSentinel}, summary.StrengthsVsCompetitors)
	assert.Equal(t, []string{report.ProcessingSentinel}, summary.WeaknessesVsCompetitors)
	assert.Equal(t, []string{report.ProcessingSentinel}, summary.OpportunitiesIdentified)
}

func TestBuildSummary_OpportunitiesNameTopThree(t *testing.T) {
	user := site("example.com", 50)
	competitors := []report.SiteEntry{
		site("a.com", 61),
		site("b.com", 88),
		site("c.com", 72),
		site("d.com", 40),
	}

	summary := BuildSummary(user, competitors, Meta{ModelsUsed: 3})

	require.Len(t, summary.OpportunitiesIdentified, 2)
	assert.Contains(t, summary.OpportunitiesIdentified[0], "3 AI models")
	assert.Equal(t, "Study top performers: b.com (88), c.com (72), a.com (61)",
		summary.OpportunitiesIdentified[1])
}

func TestBuildSummary_NoCompetitors(t *testing.T) {
	user := site("example.com", 42)

	summary := BuildSummary(user, nil, Meta{})

	assert.Equal(t, 1, summary.UserRank)
	assert.Equal(t, 1, summary.TotalAnalyzed)
	assert.NotEmpty(t, summary.StrengthsVsCompetitors)
	assert.Empty(t, summary.WeaknessesVsCompetitors)
	assert.Empty(t, summary.OpportunitiesIdentified)
}
