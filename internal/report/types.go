// Package report provides the canonical competitive-analysis report shape and
// the normalization logic that maps heterogeneous backend payloads onto it.
package report

import "time"

// Axis identifies one of the four weighted scoring dimensions.
type Axis string

const (
	AxisCredibilityAuthority   Axis = "credibility_authority"
	AxisStructureReadability   Axis = "structure_readability"
	AxisContextualRelevance    Axis = "contextual_relevance"
	AxisTechnicalCompatibility Axis = "technical_compatibility"
)

// Axes lists all scoring axes in canonical order.
var Axes = []Axis{
	AxisCredibilityAuthority,
	AxisStructureReadability,
	AxisContextualRelevance,
	AxisTechnicalCompatibility,
}

// AxisScore holds one weighted axis: a 0-20 score and its sub-metric split.
// Details are derived proportionally from the axis score, not measured
// independently.
type AxisScore struct {
	Score   int            `json:"score"`
	Details map[string]int `json:"details"`
}

// LLMOReport holds per-site scoring detail on the canonical 0-100 scale.
type LLMOReport struct {
	URL                    string    `json:"url"`
	TotalScore             int       `json:"total_score"`
	Grade                  string    `json:"grade"`
	CredibilityAuthority   AxisScore `json:"credibility_authority"`
	StructureReadability   AxisScore `json:"structure_readability"`
	ContextualRelevance    AxisScore `json:"contextual_relevance"`
	TechnicalCompatibility AxisScore `json:"technical_compatibility"`
	PrimaryRecommendations []string  `json:"primary_recommendations"`
}

// AxisByName returns the named axis score. Unknown names return a zero axis.
func (r *LLMOReport) AxisByName(axis Axis) AxisScore {
	switch axis {
	case AxisCredibilityAuthority:
		return r.CredibilityAuthority
	case AxisStructureReadability:
		return r.StructureReadability
	case AxisContextualRelevance:
		return r.ContextualRelevance
	case AxisTechnicalCompatibility:
		return r.TechnicalCompatibility
	}
	return AxisScore{Details: map[string]int{}}
}

// SiteEntry pairs a site with its normalized report.
type SiteEntry struct {
	URL    string     `json:"url"`
	Domain string     `json:"domain"`
	Report LLMOReport `json:"report"`
}

// Summary holds the derived competitive position of the user's site.
type Summary struct {
	UserRank                int      `json:"user_rank"`
	TotalAnalyzed           int      `json:"total_analyzed"`
	StrengthsVsCompetitors  []string `json:"strengths_vs_competitors"`
	WeaknessesVsCompetitors []string `json:"weaknesses_vs_competitors"`
	OpportunitiesIdentified []string `json:"opportunities_identified"`
}

// CompetitiveAnalysisResult is the canonical aggregate returned to callers.
// It is created whole and replaced whole on re-fetch, never patched in place.
type CompetitiveAnalysisResult struct {
	ID          string      `json:"id"`
	Timestamp   time.Time   `json:"timestamp"`
	UserSite    SiteEntry   `json:"user_site"`
	Competitors []SiteEntry `json:"competitors"`
	Summary     Summary     `json:"summary"`
}

// ProcessingSentinel marks summary lists for analyses whose enrichment has
// not arrived yet. Callers must treat it as transient, not terminal.
const ProcessingSentinel = "Analysis in progress..."
