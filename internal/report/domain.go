package report

import (
	"net/url"
	"strings"
)

// ExtractDomain derives a bare hostname from a URL for display and grouping.
// A missing scheme is assumed to be https, and a leading "www." is stripped.
// On parse failure the input is returned unchanged: domain is never a
// correctness-critical key, so degrading gracefully beats erroring.
func ExtractDomain(raw string) string {
	if raw == "" {
		return raw
	}

	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Hostname() == "" {
		return raw
	}

	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
