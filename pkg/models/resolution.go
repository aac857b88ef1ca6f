package models

// Resolution is the outcome of resolving a movie: either the curated
// candidates to attempt (manual links win absolutely), or an empty
// candidate list plus the ordered source names the caller should use
// for automated scraping fallback.
type Resolution struct {
	MovieKey string `json:"movie_key"`
	// Candidates are the eligible, active manual entries in attempt
	// order. Empty means fall back to automated scraping.
	Candidates []LinkEntry `json:"candidates"`
	// FallbackSources lists all eligible sources ordered fastest and
	// most reliable first. Only meaningful when Candidates is empty.
	FallbackSources []string `json:"fallback_sources"`
}

// Manual reports whether curated links decided this resolution.
func (r Resolution) Manual() bool { return len(r.Candidates) > 0 }
