package report

import (
	"encoding/json"
	"math"
	"time"
)

// genericRecommendations backfills reports whose payload carried none, so
// the UI never renders an empty list. The set is deterministic on purpose.
var genericRecommendations = []string{
	"Add structured data markup so AI crawlers can parse the page reliably",
	"Cite authoritative external sources to strengthen credibility signals",
	"Break long sections into clear headings and short, scannable paragraphs",
}

// maxRecommendations caps the primary recommendation list.
const maxRecommendations = 5

// DefaultReport returns a fully zeroed report for the given URL. Used when a
// payload matches no known shape; mapping never returns an error or nil.
func DefaultReport(url string) LLMOReport {
	r := LLMOReport{
		URL:                    url,
		TotalScore:             0,
		Grade:                  GradeFor(0),
		CredibilityAuthority:   NewAxisScore(AxisCredibilityAuthority, 0),
		StructureReadability:   NewAxisScore(AxisStructureReadability, 0),
		ContextualRelevance:    NewAxisScore(AxisContextualRelevance, 0),
		TechnicalCompatibility: NewAxisScore(AxisTechnicalCompatibility, 0),
	}
	r.PrimaryRecommendations = backfillRecommendations(nil)
	return r
}

// canonicalAxis mirrors an axis object in the already-canonical wire shape.
type canonicalAxis struct {
	Score   *int           `json:"score"`
	Details map[string]int `json:"details"`
}

// canonicalPayload is the first decode variant: the backend already speaks
// the canonical report shape.
type canonicalPayload struct {
	URL                    string         `json:"url"`
	TotalScore             *int           `json:"total_score"`
	Grade                  string         `json:"grade"`
	CredibilityAuthority   *canonicalAxis `json:"credibility_authority"`
	StructureReadability   *canonicalAxis `json:"structure_readability"`
	ContextualRelevance    *canonicalAxis `json:"contextual_relevance"`
	TechnicalCompatibility *canonicalAxis `json:"technical_compatibility"`
	PrimaryRecommendations []string       `json:"primary_recommendations"`
}

func (p *canonicalPayload) matches() bool {
	for _, ax := range []*canonicalAxis{
		p.CredibilityAuthority,
		p.StructureReadability,
		p.ContextualRelevance,
		p.TechnicalCompatibility,
	} {
		if ax != nil && ax.Score != nil {
			return true
		}
	}
	return false
}

// sessionSitePayload is the second variant: a per-site fragment of a session
// object, scored as a single 0..1 average.
type sessionSitePayload struct {
	URL          string   `json:"url"`
	SiteURL      string   `json:"site_url"`
	Name         string   `json:"name"`
	Domain       string   `json:"domain"`
	AverageScore *float64 `json:"average_score"`
	Mentions     int      `json:"mentions"`
}

func (p *sessionSitePayload) matches() bool {
	return p.AverageScore != nil
}

// legacyPayload is the third variant: string-encoded "N/20" axis scores
// under a fixed field vocabulary, with an optional "N/100" total.
type legacyPayload struct {
	URL             string   `json:"url"`
	Credibility     string   `json:"credibility"`
	Structure       string   `json:"structure"`
	Relevance       string   `json:"relevance"`
	Technical       string   `json:"technical"`
	Total           string   `json:"total"`
	Recommendations []string `json:"recommendations"`
}

func (p *legacyPayload) matches() bool {
	for _, s := range []string{p.Credibility, p.Structure, p.Relevance, p.Technical} {
		if _, ok := parseFraction(s); ok {
			return true
		}
	}
	return false
}

// MapToReport maps an arbitrary upstream payload onto the canonical report
// shape. Known schema variants are decoded in priority order and the first
// match wins; anything else becomes a zeroed default. Pure, never errors.
func MapToReport(raw json.RawMessage, fallbackURL string) LLMOReport {
	if len(raw) == 0 {
		return DefaultReport(fallbackURL)
	}

	var canonical canonicalPayload
	if err := json.Unmarshal(raw, &canonical); err == nil && canonical.matches() {
		return fromCanonical(&canonical, fallbackURL)
	}

	var site sessionSitePayload
	if err := json.Unmarshal(raw, &site); err == nil && site.matches() {
		return fromSessionSite(&site, fallbackURL)
	}

	var legacy legacyPayload
	if err := json.Unmarshal(raw, &legacy); err == nil && legacy.matches() {
		return fromLegacy(&legacy, fallbackURL)
	}

	return DefaultReport(fallbackURL)
}

func fromCanonical(p *canonicalPayload, fallbackURL string) LLMOReport {
	r := LLMOReport{
		URL:                    firstNonEmpty(p.URL, fallbackURL),
		CredibilityAuthority:   canonicalAxisScore(AxisCredibilityAuthority, p.CredibilityAuthority),
		StructureReadability:   canonicalAxisScore(AxisStructureReadability, p.StructureReadability),
		ContextualRelevance:    canonicalAxisScore(AxisContextualRelevance, p.ContextualRelevance),
		TechnicalCompatibility: canonicalAxisScore(AxisTechnicalCompatibility, p.TechnicalCompatibility),
	}

	if p.TotalScore != nil {
		r.TotalScore = clampInt(*p.TotalScore, 0, 100)
	} else {
		// Axes sum to at most 80; project onto the 100 scale.
		sum := r.CredibilityAuthority.Score + r.StructureReadability.Score +
			r.ContextualRelevance.Score + r.TechnicalCompatibility.Score
		r.TotalScore = int(math.Round(float64(sum) * 100 / 80))
	}

	r.Grade = p.Grade
	if r.Grade == "" {
		r.Grade = GradeFor(r.TotalScore)
	}

	r.PrimaryRecommendations = backfillRecommendations(p.PrimaryRecommendations)
	return r
}

func canonicalAxisScore(axis Axis, ax *canonicalAxis) AxisScore {
	if ax == nil || ax.Score == nil {
		return NewAxisScore(axis, 0)
	}
	score := clampInt(*ax.Score, 0, 20)
	if len(ax.Details) > 0 {
		return AxisScore{Score: score, Details: ax.Details}
	}
	return NewAxisScore(axis, score)
}

func fromSessionSite(p *sessionSitePayload, fallbackURL string) LLMOReport {
	c := ToCanonicalScore(*p.AverageScore, ScaleAxis20)

	r := LLMOReport{
		URL:                    firstNonEmpty(p.URL, p.SiteURL, fallbackURL),
		TotalScore:             c.Total100,
		Grade:                  GradeFor(c.Total100),
		CredibilityAuthority:   NewAxisScore(AxisCredibilityAuthority, c.Axis20),
		StructureReadability:   NewAxisScore(AxisStructureReadability, c.Axis20),
		ContextualRelevance:    NewAxisScore(AxisContextualRelevance, c.Axis20),
		TechnicalCompatibility: NewAxisScore(AxisTechnicalCompatibility, c.Axis20),
	}
	r.PrimaryRecommendations = backfillRecommendations(nil)
	return r
}

func fromLegacy(p *legacyPayload, fallbackURL string) LLMOReport {
	cred := ToCanonicalScore(p.Credibility, ScaleAxis20)
	structure := ToCanonicalScore(p.Structure, ScaleAxis20)
	relevance := ToCanonicalScore(p.Relevance, ScaleAxis20)
	technical := ToCanonicalScore(p.Technical, ScaleAxis20)

	r := LLMOReport{
		URL:                    firstNonEmpty(p.URL, fallbackURL),
		CredibilityAuthority:   NewAxisScore(AxisCredibilityAuthority, cred.Axis20),
		StructureReadability:   NewAxisScore(AxisStructureReadability, structure.Axis20),
		ContextualRelevance:    NewAxisScore(AxisContextualRelevance, relevance.Axis20),
		TechnicalCompatibility: NewAxisScore(AxisTechnicalCompatibility, technical.Axis20),
	}

	if total := ToCanonicalScore(p.Total, ScaleTotal100); total.Total100 > 0 {
		r.TotalScore = total.Total100
	} else {
		sum := cred.Axis20 + structure.Axis20 + relevance.Axis20 + technical.Axis20
		r.TotalScore = int(math.Round(float64(sum) * 100 / 80))
	}

	r.Grade = GradeFor(r.TotalScore)
	r.PrimaryRecommendations = backfillRecommendations(p.Recommendations)
	return r
}

// SessionView is a session object reduced to canonical entries, before
// ranking. An engine pairs it with the insight generator to produce the
// final aggregate.
type SessionView struct {
	ID          string
	Timestamp   time.Time
	UserSite    SiteEntry
	Competitors []SiteEntry
	// Processing is true while enrichment has not arrived yet.
	Processing bool
	// ModelsUsed counts distinct AI models present in the enrichment data.
	ModelsUsed int
}

// sessionEnvelope mirrors the backend's session object: the analyzed site,
// its discovered competitors and the asynchronous enrichment blocks.
type sessionEnvelope struct {
	AnalysisID json.RawMessage   `json:"analysis_id"`
	SessionID  json.RawMessage   `json:"session_id"`
	ID         json.RawMessage   `json:"id"`
	URL        string            `json:"url"`
	SiteURL    string            `json:"site_url"`
	Status     string            `json:"status"`
	CreatedAt  string            `json:"created_at"`
	Timestamp  string            `json:"timestamp"`
	AvgScore   *float64          `json:"average_score"`
	Comps      []json.RawMessage `json:"competitors"`
	// Enrichment blocks are keyed by model, then by site domain or name.
	// Decoded leniently so a malformed block cannot sink the whole session.
	MiniLLMResults json.RawMessage `json:"mini_llm_results"`
	LLMAnalysis    json.RawMessage `json:"llm_analysis"`
}

// enrichmentBlocks is the decoded enrichment shape: model -> site -> detail.
type enrichmentBlocks map[string]map[string]json.RawMessage

func decodeEnrichment(raw json.RawMessage) enrichmentBlocks {
	if len(raw) == 0 {
		return nil
	}
	var blocks enrichmentBlocks
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil
	}
	return blocks
}

// MapSession maps one backend session object onto a SessionView. Missing or
// malformed pieces degrade to zeroed defaults; the function never errors.
func MapSession(raw json.RawMessage, fallbackURL string) SessionView {
	var env sessionEnvelope
	if len(raw) > 0 {
		// A failed decode leaves env zeroed, which falls through to defaults.
		_ = json.Unmarshal(raw, &env)
	}

	view := SessionView{
		ID: firstNonEmpty(
			normalizeRawID(env.AnalysisID),
			normalizeRawID(env.SessionID),
			normalizeRawID(env.ID),
		),
	}

	if ts := firstNonEmpty(env.CreatedAt, env.Timestamp); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			view.Timestamp = t
		}
	}

	enrichment := decodeEnrichment(env.MiniLLMResults)
	if len(enrichment) == 0 {
		enrichment = decodeEnrichment(env.LLMAnalysis)
	}
	view.ModelsUsed = len(enrichment)
	view.Processing = len(enrichment) == 0 || env.Status == "processing"

	userURL := firstNonEmpty(env.URL, env.SiteURL, fallbackURL)
	userDomain := ExtractDomain(userURL)
	view.UserSite = SiteEntry{
		URL:    userURL,
		Domain: userDomain,
		Report: siteReport(userSitePayload(&env, userURL), userURL, userDomain, enrichment),
	}

	for _, compRaw := range env.Comps {
		entry := competitorEntry(compRaw, enrichment)
		view.Competitors = append(view.Competitors, entry)
	}

	return view
}

// userSitePayload rebuilds a per-site fragment for the analyzed site from
// session-level fields so it flows through the same variant decoding.
func userSitePayload(env *sessionEnvelope, url string) json.RawMessage {
	if env.AvgScore == nil {
		return nil
	}
	fragment, err := json.Marshal(sessionSitePayload{
		URL:          url,
		AverageScore: env.AvgScore,
	})
	if err != nil {
		return nil
	}
	return fragment
}

func competitorEntry(raw json.RawMessage, enrichment enrichmentBlocks) SiteEntry {
	var ident sessionSitePayload
	_ = json.Unmarshal(raw, &ident)

	url := firstNonEmpty(ident.URL, ident.SiteURL)
	domain := ident.Domain
	if domain == "" {
		domain = ExtractDomain(firstNonEmpty(url, ident.Name))
	}

	return SiteEntry{
		URL:    url,
		Domain: domain,
		Report: siteReport(raw, url, firstNonEmpty(domain, ident.Name), enrichment),
	}
}

// siteReport prefers an enrichment detail block for the site over the bare
// listing payload, falling back when the block yields nothing.
func siteReport(raw json.RawMessage, url, domain string, enrichment enrichmentBlocks) LLMOReport {
	if detail := lookupEnrichment(enrichment, domain, url); detail != nil {
		if r := MapToReport(detail, url); r.TotalScore > 0 {
			return r
		}
	}
	return MapToReport(raw, url)
}

// lookupEnrichment finds a per-site detail block across all models, matched
// by domain or name.
func lookupEnrichment(enrichment enrichmentBlocks, keys ...string) json.RawMessage {
	for _, sites := range enrichment {
		for _, key := range keys {
			if key == "" {
				continue
			}
			if detail, ok := sites[key]; ok {
				return detail
			}
			if detail, ok := sites[ExtractDomain(key)]; ok {
				return detail
			}
		}
	}
	return nil
}

func normalizeRawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return NormalizeID(v)
}

func backfillRecommendations(recs []string) []string {
	cleaned := make([]string, 0, len(recs))
	for _, rec := range recs {
		if rec != "" {
			cleaned = append(cleaned, rec)
		}
		if len(cleaned) == maxRecommendations {
			break
		}
	}
	if len(cleaned) > 0 {
		return cleaned
	}
	out := make([]string, len(genericRecommendations))
	copy(out, genericRecommendations)
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
