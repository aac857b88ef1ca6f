package health

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"moviehub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const sourceColumns = `source_name, is_enabled, is_online, last_check, last_sync, last_success,
	total_movies, success_rate, avg_response_time_ms, consecutive_failures`

func scanSource(row interface{ Scan(...any) error }) (*models.SourceHealth, error) {
	var (
		s           models.SourceHealth
		isEnabled   int
		isOnline    int
		lastCheck   sql.NullTime
		lastSync    sql.NullTime
		lastSuccess sql.NullTime
	)
	if err := row.Scan(
		&s.SourceName, &isEnabled, &isOnline, &lastCheck, &lastSync, &lastSuccess,
		&s.TotalMovies, &s.SuccessRate, &s.AvgResponseTimeMs, &s.ConsecutiveFailures,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan source health: %w", err)
	}
	s.IsEnabled = isEnabled == 1
	s.IsOnline = isOnline == 1
	if lastCheck.Valid {
		t := lastCheck.Time
		s.LastCheck = &t
	}
	if lastSync.Valid {
		t := lastSync.Time
		s.LastSync = &t
	}
	if lastSuccess.Valid {
		t := lastSuccess.Time
		s.LastSuccess = &t
	}
	return &s, nil
}

func (r *Repo) Get(ctx context.Context, name string) (*models.SourceHealth, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+sourceColumns+` FROM source_status WHERE source_name = ?`, name)
	return scanSource(row)
}

// GetOrCreate returns the record for name, creating it lazily on first
// observed activity.
func (r *Repo) GetOrCreate(ctx context.Context, name string) (*models.SourceHealth, error) {
	if _, err := r.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO source_status (source_name) VALUES (?)`, name); err != nil {
		return nil, fmt.Errorf("create source %s: %w", name, err)
	}
	s, err := r.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("source %s vanished after insert", name)
	}
	return s, nil
}

func (r *Repo) List(ctx context.Context) ([]models.SourceHealth, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+sourceColumns+` FROM source_status ORDER BY source_name`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []models.SourceHealth
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source rows: %w", err)
	}
	return out, nil
}

// Update persists the full mutable state of one source record.
func (r *Repo) Update(ctx context.Context, s *models.SourceHealth) error {
	isEnabled, isOnline := 0, 0
	if s.IsEnabled {
		isEnabled = 1
	}
	if s.IsOnline {
		isOnline = 1
	}
	if _, err := r.DB.ExecContext(ctx, `
		UPDATE source_status SET
		  is_enabled = ?, is_online = ?, last_check = ?, last_sync = ?, last_success = ?,
		  total_movies = ?, success_rate = ?, avg_response_time_ms = ?, consecutive_failures = ?
		WHERE source_name = ?
	`, isEnabled, isOnline, nullTime(s.LastCheck), nullTime(s.LastSync), nullTime(s.LastSuccess),
		s.TotalMovies, s.SuccessRate, s.AvgResponseTimeMs, s.ConsecutiveFailures,
		s.SourceName); err != nil {
		return fmt.Errorf("update source %s: %w", s.SourceName, err)
	}
	return nil
}

// RecordSync stores the result of a completed scrape pass.
func (r *Repo) RecordSync(ctx context.Context, name string, totalMovies int) (*models.SourceHealth, error) {
	s, err := r.GetOrCreate(ctx, name)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	s.LastSync = &now
	s.TotalMovies = totalMovies
	if err := r.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
