package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"moviehub/pkg/models"
	"moviehub/pkg/utils"
)

// Client is a thin search client against the TMDB v3 API. The admin
// dashboard uses it to look up ids while curating manual links.
type Client struct {
	HTTP    *http.Client
	APIKey  string
	BaseURL string
}

func NewClient(cfg utils.TMDBConfig) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 12 * time.Second},
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
	}
}

// Movie is the subset of a TMDB search hit the dashboard needs.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
}

type searchResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Search queries TMDB for movies matching the query. Year narrows the
// search when non-nil.
func (c *Client) Search(ctx context.Context, query string, year *int) ([]Movie, error) {
	if query == "" {
		return nil, models.NewValidationError("query", "required")
	}
	if c.APIKey == "" {
		return nil, fmt.Errorf("tmdb: %w", models.ErrStorageUnavailable)
	}

	u, err := url.Parse(c.BaseURL + "/search/movie")
	if err != nil {
		return nil, fmt.Errorf("tmdb: parse base url: %w", err)
	}
	q := u.Query()
	q.Set("api_key", c.APIKey)
	q.Set("query", query)
	if year != nil {
		q.Set("year", strconv.Itoa(*year))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb: build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb: request: %w", err)
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb: status %d: %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("tmdb: decode: %w", err)
	}
	return sr.Results, nil
}
