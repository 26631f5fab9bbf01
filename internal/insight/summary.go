// Package insight derives competitive position summaries from normalized
// reports: relative rank plus human-readable strengths, weaknesses and
// opportunities.
package insight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/report"
)

// Meta carries analysis-level context that shapes the generated summary.
type Meta struct {
	// Processing marks an analysis whose enrichment has not arrived yet.
	// All summary lists collapse to the processing sentinel while set.
	Processing bool
	// ModelsUsed counts distinct AI models that contributed to the analysis.
	ModelsUsed int
}

// topCompetitorsNamed bounds the number of competitors called out in the
// opportunities list.
const topCompetitorsNamed = 3

// BuildSummary computes the user's rank among the competitor set and the
// derived insight lists. Ties rank the user first: the user's score enters
// the sort input before any competitor's.
func BuildSummary(user report.SiteEntry, competitors []report.SiteEntry, meta Meta) report.Summary {
	summary := report.Summary{
		UserRank:      rankOf(user.Report.TotalScore, competitors),
		TotalAnalyzed: len(competitors) + 1,
	}

	if meta.Processing {
		sentinel := []string{report.ProcessingSentinel}
		summary.StrengthsVsCompetitors = sentinel
		summary.WeaknessesVsCompetitors = append([]string(nil), sentinel...)
		summary.OpportunitiesIdentified = append([]string(nil), sentinel...)
		return summary
	}

	summary.StrengthsVsCompetitors = strengths(user, competitors)
	summary.WeaknessesVsCompetitors = weaknesses(user, competitors)
	summary.OpportunitiesIdentified = opportunities(competitors, meta)
	return summary
}

// rankOf is the 1-based position of the user's score in the descending
// multiset of all scores. Counting strict superiors implements the stable
// first-seen tie break.
func rankOf(userScore int, competitors []report.SiteEntry) int {
	rank := 1
	for _, c := range competitors {
		if c.Report.TotalScore > userScore {
			rank++
		}
	}
	return rank
}

func strengths(user report.SiteEntry, competitors []report.SiteEntry) []string {
	var out []string

	if len(competitors) > 0 {
		sum := 0
		outscored := 0
		for _, c := range competitors {
			sum += c.Report.TotalScore
			if user.Report.TotalScore > c.Report.TotalScore {
				outscored++
			}
		}
		mean := float64(sum) / float64(len(competitors))

		if float64(user.Report.TotalScore) > mean {
			out = append(out, fmt.Sprintf(
				"Overall score of %d is above the competitor average of %.1f",
				user.Report.TotalScore, mean))
		}
		if outscored*2 > len(competitors) {
			out = append(out, fmt.Sprintf(
				"Outscores %d of %d analyzed competitors",
				outscored, len(competitors)))
		}
	}

	// The list must never be empty while competitors exist.
	out = append(out, "Site content is already discoverable by AI-driven search")
	return out
}

func weaknesses(user report.SiteEntry, competitors []report.SiteEntry) []string {
	var out []string

	var top *report.SiteEntry
	outscoring := 0
	for i := range competitors {
		c := &competitors[i]
		if c.Report.TotalScore > user.Report.TotalScore {
			outscoring++
			if top == nil || c.Report.TotalScore > top.Report.TotalScore {
				top = c
			}
		}
	}

	if top != nil {
		gap := top.Report.TotalScore - user.Report.TotalScore
		out = append(out, fmt.Sprintf(
			"%d points behind %s, the top-scoring competitor", gap, top.Domain))
		out = append(out, fmt.Sprintf(
			"%d competitors currently score higher", outscoring))
	}

	return out
}

func opportunities(competitors []report.SiteEntry, meta Meta) []string {
	var out []string

	if meta.ModelsUsed > 0 {
		out = append(out, fmt.Sprintf(
			"Visibility measured across %d AI models; optimize for each", meta.ModelsUsed))
	}

	if len(competitors) > 0 {
		ranked := make([]report.SiteEntry, len(competitors))
		copy(ranked, competitors)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Report.TotalScore > ranked[j].Report.TotalScore
		})
		if len(ranked) > topCompetitorsNamed {
			ranked = ranked[:topCompetitorsNamed]
		}

		names := make([]string, 0, len(ranked))
		for _, c := range ranked {
			names = append(names, fmt.Sprintf("%s (%d)", c.Domain, c.Report.TotalScore))
		}
		out = append(out, "Study top performers: "+strings.Join(names, ", "))
	}

	return out
}
