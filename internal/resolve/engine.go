package resolve

import (
	"context"
	"sort"

	"moviehub/internal/health"
	"moviehub/internal/links"
	"moviehub/pkg/models"
)

// Engine produces the attempt order for a movie lookup: curated manual
// links first, automated fallback ordering otherwise.
type Engine struct {
	Links   *links.Repo
	Tracker *health.Tracker
}

func NewEngine(linksRepo *links.Repo, tracker *health.Tracker) *Engine {
	return &Engine{Links: linksRepo, Tracker: tracker}
}

// Resolve decides what the fetch pipeline should attempt for the given
// movie.
//
// Manual, eligible links always win, in (priority asc, insertion
// order). When none survive the eligibility filter the candidate list
// is empty and FallbackSources carries every eligible source ordered
// by ascending average response time, ties broken by descending
// success rate.
//
// Source eligibility is evaluated once, against a snapshot taken at
// the start, so a source toggled mid-resolution never half-appears.
func (e *Engine) Resolve(ctx context.Context, identity links.MovieIdentity) (*models.Resolution, error) {
	if identity.Title == "" && identity.TmdbID == nil {
		return nil, models.NewValidationError("movie", "title or tmdb_id required")
	}

	candidates, err := e.Links.ResolveCandidates(ctx, identity)
	if err != nil {
		return nil, err
	}

	snapshot, err := e.Tracker.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	eligible := make(map[string]bool, len(snapshot))
	for _, s := range snapshot {
		eligible[s.SourceName] = s.IsEnabled && s.IsOnline
	}

	res := &models.Resolution{
		MovieKey:        identity.Key(),
		Candidates:      []models.LinkEntry{},
		FallbackSources: []string{},
	}

	for _, c := range candidates {
		// a source with no tracked state yet gets the benefit of the doubt
		st, tracked := eligible[c.SourceName]
		if !tracked || st {
			res.Candidates = append(res.Candidates, c)
		}
	}
	if len(res.Candidates) > 0 {
		return res, nil
	}

	res.FallbackSources = fallbackOrder(snapshot)
	return res, nil
}

// fallbackOrder ranks eligible sources fastest and most reliable
// first: avg_response_time_ms ascending, then success_rate descending,
// then name for determinism.
func fallbackOrder(snapshot []models.SourceHealth) []string {
	pool := make([]models.SourceHealth, 0, len(snapshot))
	for _, s := range snapshot {
		if s.IsEnabled && s.IsOnline {
			pool = append(pool, s)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].AvgResponseTimeMs != pool[j].AvgResponseTimeMs {
			return pool[i].AvgResponseTimeMs < pool[j].AvgResponseTimeMs
		}
		if pool[i].SuccessRate != pool[j].SuccessRate {
			return pool[i].SuccessRate > pool[j].SuccessRate
		}
		return pool[i].SourceName < pool[j].SourceName
	})

	out := make([]string, len(pool))
	for i, s := range pool {
		out[i] = s.SourceName
	}
	return out
}
