package report

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Scale tells the score normalizer how to interpret "N/M" string scores.
// The mapper supplies the scale of the originating field.
type Scale int

const (
	// ScaleAxis20 interprets the numerator as a 0-20 axis score.
	ScaleAxis20 Scale = iota
	// ScaleTotal100 interprets the numerator as a 0-100 total score.
	ScaleTotal100
)

// Canonical is a score expressed on both canonical scales at once.
type Canonical struct {
	Total100 int
	Axis20   int
}

// ToCanonicalScore converts heterogeneous score encodings into the canonical
// scales. Floats in [0,1] are treated as unit scores; "N/M" strings are read
// on the supplied scale. Unrecognized input normalizes to zero rather than
// failing, preserving the no-error contract of the whole mapping pipeline.
func ToCanonicalScore(raw any, scale Scale) Canonical {
	switch v := raw.(type) {
	case float64:
		return fromUnit(v)
	case float32:
		return fromUnit(float64(v))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return fromUnit(f)
		}
	case string:
		if n, ok := parseFraction(v); ok {
			return fromNumerator(n, scale)
		}
	case int:
		return fromNumerator(v, scale)
	}
	return Canonical{}
}

// fromUnit maps a 0..1 score onto both canonical scales.
func fromUnit(f float64) Canonical {
	if f < 0 || f > 1 || math.IsNaN(f) {
		return Canonical{}
	}
	return Canonical{
		Total100: int(math.Round(f * 100)),
		Axis20:   int(math.Round(f * 20)),
	}
}

// fromNumerator maps an integer score on the given scale onto both scales.
func fromNumerator(n int, scale Scale) Canonical {
	switch scale {
	case ScaleTotal100:
		total := clampInt(n, 0, 100)
		return Canonical{
			Total100: total,
			Axis20:   int(math.Round(float64(total) / 5)),
		}
	default:
		axis := clampInt(n, 0, 20)
		return Canonical{
			Total100: axis * 5,
			Axis20:   axis,
		}
	}
}

// parseFraction extracts the numerator of an "N/M" score string.
func parseFraction(s string) (int, bool) {
	num, _, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// subMetric names one sub-metric of an axis and its share of the axis score.
type subMetric struct {
	name   string
	weight float64
}

// axisWeights fixes the proportional split of each axis score. The split is
// a deterministic derivation, not an independent measurement: the same axis
// score always yields the same sub-metric values.
var axisWeights = map[Axis][]subMetric{
	AxisCredibilityAuthority: {
		{"source_citations", 0.30},
		{"expertise_signals", 0.25},
		{"domain_authority", 0.25},
		{"content_freshness", 0.20},
	},
	AxisStructureReadability: {
		{"hierarchy", 0.20},
		{"formatting", 0.25},
		{"readability", 0.25},
		{"optimal_length", 0.15},
		{"multimedia", 0.15},
	},
	AxisContextualRelevance: {
		{"semantic_clarity", 0.30},
		{"topic_coverage", 0.30},
		{"query_alignment", 0.20},
		{"entity_recognition", 0.20},
	},
	AxisTechnicalCompatibility: {
		{"structured_data", 0.30},
		{"meta_optimization", 0.25},
		{"crawlability", 0.25},
		{"page_performance", 0.20},
	},
}

// SplitAxisDetails decomposes an axis score into its weighted sub-metrics,
// flooring each share so the detail sum never exceeds the axis score.
func SplitAxisDetails(axis Axis, score int) map[string]int {
	score = clampInt(score, 0, 20)
	weights := axisWeights[axis]
	details := make(map[string]int, len(weights))
	for _, sm := range weights {
		details[sm.name] = int(math.Floor(float64(score) * sm.weight))
	}
	return details
}

// NewAxisScore builds a complete axis from a 0-20 score.
func NewAxisScore(axis Axis, score int) AxisScore {
	score = clampInt(score, 0, 20)
	return AxisScore{
		Score:   score,
		Details: SplitAxisDetails(axis, score),
	}
}

// Grade labels, highest bucket first.
const (
	GradeExcellent = "Excellently optimized"
	GradeWell      = "Well optimized"
	GradeOptimized = "Optimized"
	GradePartially = "Partially optimized"
	GradePoorly    = "Poorly optimized"
	GradeNot       = "Not optimized"
)

// GradeFor assigns the categorical grade for a 0-100 total score using the
// fixed six-bucket step function (thresholds 90/80/70/60/50).
func GradeFor(total100 int) string {
	switch {
	case total100 >= 90:
		return GradeExcellent
	case total100 >= 80:
		return GradeWell
	case total100 >= 70:
		return GradeOptimized
	case total100 >= 60:
		return GradePartially
	case total100 >= 50:
		return GradePoorly
	default:
		return GradeNot
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
