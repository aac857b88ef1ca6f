package models

import "time"

// Link entry statuses. Only active entries participate in resolution.
const (
	EntryStatusActive   = "active"
	EntryStatusInactive = "inactive"
)

// ManualLink is an operator-curated set of candidate links for one
// movie. Entries are tried in (priority asc, insertion order) when the
// movie is resolved.
type ManualLink struct {
	ID         string      `json:"id"`
	MovieKey   string      `json:"movie_key"`
	TmdbID     *int64      `json:"tmdb_id,omitempty"`
	MovieTitle string      `json:"movie_title"`
	MovieYear  *int        `json:"movie_year,omitempty"`
	Language   string      `json:"language,omitempty"`
	PosterURL  string      `json:"poster_url,omitempty"`
	AddedBy    string      `json:"added_by,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	Entries    []LinkEntry `json:"entries"`
}

// LinkEntry is a single candidate URL inside a ManualLink.
// Position records insertion order and breaks priority ties.
type LinkEntry struct {
	ID         int64  `json:"id"`
	LinkID     string `json:"link_id"`
	SourceName string `json:"source_name"`
	SourceURL  string `json:"source_url"`
	Priority   int    `json:"priority"`
	Status     string `json:"status"`
	Position   int    `json:"position"`
}
