package stats

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"moviehub/pkg/models"
)

// Repo records search and download traffic and aggregates it for the
// dashboard.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// SearchRecord is one logged search from the public API.
type SearchRecord struct {
	Query        string
	ResultsCount int
	IPAddress    string
}

// DownloadRecord is one logged download attempt.
type DownloadRecord struct {
	TmdbID     *int64
	MovieTitle string
	Quality    string
	IPAddress  string
}

func (r *Repo) TrackSearch(ctx context.Context, rec SearchRecord) error {
	if rec.Query == "" {
		return models.NewValidationError("query", "required")
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO search_logs (query, results_count, ip_address, search_timestamp)
		VALUES (?, ?, ?, ?)
	`, rec.Query, rec.ResultsCount, rec.IPAddress, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("track search: %w", err)
	}
	return nil
}

func (r *Repo) TrackDownload(ctx context.Context, rec DownloadRecord) error {
	if rec.TmdbID == nil && rec.MovieTitle == "" {
		return models.NewValidationError("movie", "tmdb_id or movie_title required")
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO download_stats (tmdb_id, movie_title, quality, ip_address, download_timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, rec.TmdbID, rec.MovieTitle, rec.Quality, rec.IPAddress, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("track download: %w", err)
	}
	return nil
}

// CountSince counts rows in the given log table with a timestamp at or
// after the cutoff.
func (r *Repo) countSince(ctx context.Context, table, column string, since time.Time) (int, error) {
	var n int
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s >= ?`, table, column)
	if err := r.DB.QueryRowContext(ctx, q, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (r *Repo) TodaySearches(ctx context.Context) (int, error) {
	return r.countSince(ctx, "search_logs", "search_timestamp", startOfToday())
}

func (r *Repo) TodayDownloads(ctx context.Context) (int, error) {
	return r.countSince(ctx, "download_stats", "download_timestamp", startOfToday())
}

// TopSearches returns the most frequent queries since the cutoff.
func (r *Repo) TopSearches(ctx context.Context, since time.Time, limit int) ([]models.LabelCount, error) {
	return r.labelCounts(ctx, `
		SELECT query, COUNT(*) AS n FROM search_logs
		WHERE search_timestamp >= ?
		GROUP BY query ORDER BY n DESC, query ASC LIMIT ?
	`, since, limit)
}

// TopDownloads returns the most downloaded titles since the cutoff.
// Untitled rows are skipped.
func (r *Repo) TopDownloads(ctx context.Context, since time.Time, limit int) ([]models.LabelCount, error) {
	return r.labelCounts(ctx, `
		SELECT movie_title, COUNT(*) AS n FROM download_stats
		WHERE download_timestamp >= ? AND movie_title IS NOT NULL AND movie_title != ''
		GROUP BY movie_title ORDER BY n DESC, movie_title ASC LIMIT ?
	`, since, limit)
}

// ZeroResultQueries returns queries that consistently found nothing,
// ordered by how often they were tried.
func (r *Repo) ZeroResultQueries(ctx context.Context, since time.Time, limit int) ([]models.LabelCount, error) {
	return r.labelCounts(ctx, `
		SELECT query, COUNT(*) AS n FROM search_logs
		WHERE search_timestamp >= ?
		GROUP BY query
		HAVING MAX(results_count) = 0
		ORDER BY n DESC, query ASC LIMIT ?
	`, since, limit)
}

func (r *Repo) labelCounts(ctx context.Context, query string, since time.Time, limit int) ([]models.LabelCount, error) {
	rows, err := r.DB.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("label counts: %w", err)
	}
	defer rows.Close()

	out := []models.LabelCount{}
	for rows.Next() {
		var lc models.LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, fmt.Errorf("scan label count: %w", err)
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

// DailySeries buckets rows per calendar day over the trailing window,
// filling empty days with zero so charts render contiguous axes.
func (r *Repo) DailySeries(ctx context.Context, table, column string, days int) ([]models.DailyCount, error) {
	if days <= 0 {
		days = 7
	}
	since := startOfToday().AddDate(0, 0, -(days - 1))

	q := fmt.Sprintf(`
		SELECT DATE(%s) AS day, COUNT(*) FROM %s
		WHERE %s >= ?
		GROUP BY day
	`, column, table, column)
	rows, err := r.DB.QueryContext(ctx, q, since)
	if err != nil {
		return nil, fmt.Errorf("daily series %s: %w", table, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("scan daily row: %w", err)
		}
		counts[day] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]models.DailyCount, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, models.DailyCount{Date: day, Count: counts[day]})
	}
	return out, nil
}

func startOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
