package links

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"moviehub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// EntryInput is one candidate link supplied by the operator.
type EntryInput struct {
	SourceName string
	SourceURL  string
	Priority   int
	Status     string
}

// AddInput creates a ManualLink (or appends to the existing one for
// the same movie identity).
type AddInput struct {
	Identity  MovieIdentity
	Language  string
	PosterURL string
	AddedBy   string
	Entries   []EntryInput
}

type ListQuery struct {
	Search string // case-insensitive substring match on movie_title
	Page   int
	Limit  int
}

// AddLink validates and stores the supplied entries atomically. It
// fails with a ValidationError when no entry carries a URL; entries
// missing a URL or source name are dropped, not stored.
func (r *Repo) AddLink(ctx context.Context, in AddInput) (*models.ManualLink, error) {
	if strings.TrimSpace(in.Identity.Title) == "" && in.Identity.TmdbID == nil {
		return nil, models.NewValidationError("movie_title", "required")
	}

	entries := make([]EntryInput, 0, len(in.Entries))
	for _, e := range in.Entries {
		if strings.TrimSpace(e.SourceURL) == "" || strings.TrimSpace(e.SourceName) == "" {
			continue
		}
		if e.Priority == 0 {
			e.Priority = 1
		}
		if e.Status == "" {
			e.Status = models.EntryStatusActive
		}
		if e.Status != models.EntryStatusActive && e.Status != models.EntryStatusInactive {
			return nil, models.NewValidationError("status", "must be active or inactive")
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, models.NewValidationError("links", "at least one entry with a source URL is required")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	key := in.Identity.Key()

	// append to the existing ManualLink for this movie, if any
	var linkID string
	var nextPos int
	row := tx.QueryRowContext(ctx, `SELECT id FROM manual_links WHERE movie_key = ?`, key)
	switch err := row.Scan(&linkID); {
	case err == sql.ErrNoRows:
		linkID = uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO manual_links (id, movie_key, tmdb_id, movie_title, movie_year, movie_language, movie_poster_url, added_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, linkID, key, nullInt64(in.Identity.TmdbID), in.Identity.Title, nullInt(in.Identity.Year),
			nullStr(in.Language), nullStr(in.PosterURL), nullStr(in.AddedBy), time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("insert manual link: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("lookup manual link: %w", err)
	default:
		row := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), -1) + 1 FROM link_entries WHERE link_id = ?`, linkID)
		if err := row.Scan(&nextPos); err != nil {
			return nil, fmt.Errorf("next entry position: %w", err)
		}
	}

	for i, e := range entries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO link_entries (link_id, source_name, source_url, priority, status, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, linkID, e.SourceName, e.SourceURL, e.Priority, e.Status, nextPos+i); err != nil {
			return nil, fmt.Errorf("insert link entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit manual link: %w", err)
	}

	return r.Get(ctx, linkID)
}

func (r *Repo) Get(ctx context.Context, id string) (*models.ManualLink, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, movie_key, tmdb_id, movie_title, movie_year, movie_language, movie_poster_url, added_by, created_at
		FROM manual_links WHERE id = ?
	`, id)

	link, err := scanLink(row)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, fmt.Errorf("manual link %s: %w", id, models.ErrNotFound)
	}

	entries, err := r.entriesFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	link.Entries = entries[id]
	if link.Entries == nil {
		link.Entries = []models.LinkEntry{}
	}
	return link, nil
}

// List returns manual links newest-first, filtered by a
// case-insensitive title substring, with the filtered total.
func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.ManualLink, int, error) {
	where := ""
	var args []any
	if s := strings.TrimSpace(q.Search); s != "" {
		where = ` WHERE LOWER(movie_title) LIKE ?`
		args = append(args, "%"+strings.ToLower(s)+"%")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM manual_links`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count manual links: %w", err)
	}

	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, movie_key, tmdb_id, movie_title, movie_year, movie_language, movie_poster_url, added_by, created_at
		FROM manual_links`+where+`
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list manual links: %w", err)
	}
	defer rows.Close()

	links := make([]models.ManualLink, 0, limit)
	var ids []string
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, 0, err
		}
		links = append(links, *link)
		ids = append(ids, link.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("manual link rows: %w", err)
	}

	entries, err := r.entriesFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range links {
		links[i].Entries = entries[links[i].ID]
		if links[i].Entries == nil {
			links[i].Entries = []models.LinkEntry{}
		}
	}
	return links, total, nil
}

// Remove deletes the ManualLink and all its entries atomically
// (FK cascade). Unknown ids fail with ErrNotFound.
func (r *Repo) Remove(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM manual_links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete manual link: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete manual link rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("manual link %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// UpdateEntry changes priority and/or status of one entry. Nil fields
// are left alone.
func (r *Repo) UpdateEntry(ctx context.Context, linkID string, entryID int64, priority *int, status *string) error {
	if priority == nil && status == nil {
		return models.NewValidationError("entry", "nothing to update")
	}
	if status != nil && *status != models.EntryStatusActive && *status != models.EntryStatusInactive {
		return models.NewValidationError("status", "must be active or inactive")
	}

	var sets []string
	var args []any
	if priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *priority)
	}
	if status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *status)
	}
	args = append(args, linkID, entryID)

	res, err := r.DB.ExecContext(ctx,
		`UPDATE link_entries SET `+strings.Join(sets, ", ")+` WHERE link_id = ? AND id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update link entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("link entry %d: %w", entryID, models.ErrNotFound)
	}
	return nil
}

// RemoveEntry deletes one entry from a ManualLink.
func (r *Repo) RemoveEntry(ctx context.Context, linkID string, entryID int64) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM link_entries WHERE link_id = ? AND id = ?`, linkID, entryID)
	if err != nil {
		return fmt.Errorf("delete link entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("link entry %d: %w", entryID, models.ErrNotFound)
	}
	return nil
}

// ResolveCandidates returns the active entries for the movie, sorted
// by (priority asc, insertion order). An unknown movie yields an empty
// slice, never an error.
func (r *Repo) ResolveCandidates(ctx context.Context, identity MovieIdentity) ([]models.LinkEntry, error) {
	for _, key := range identity.LookupKeys() {
		rows, err := r.DB.QueryContext(ctx, `
			SELECT e.id, e.link_id, e.source_name, e.source_url, e.priority, e.status, e.position
			FROM link_entries e
			JOIN manual_links l ON l.id = e.link_id
			WHERE l.movie_key = ? AND e.status = ?
			ORDER BY e.priority ASC, e.position ASC, e.id ASC
		`, key, models.EntryStatusActive)
		if err != nil {
			return nil, fmt.Errorf("resolve candidates: %w", err)
		}

		entries, err := collectEntries(rows)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}
	return []models.LinkEntry{}, nil
}

// CountActive counts manual links that still have at least one active
// entry (dashboard stat).
func (r *Repo) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT link_id) FROM link_entries WHERE status = ?
	`, models.EntryStatusActive).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active links: %w", err)
	}
	return n, nil
}

func (r *Repo) entriesFor(ctx context.Context, linkIDs []string) (map[string][]models.LinkEntry, error) {
	out := make(map[string][]models.LinkEntry, len(linkIDs))
	if len(linkIDs) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(linkIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(linkIDs))
	for i, id := range linkIDs {
		args[i] = id
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, link_id, source_name, source_url, priority, status, position
		FROM link_entries WHERE link_id IN (`+placeholders+`)
		ORDER BY link_id, priority ASC, position ASC, id ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query link entries: %w", err)
	}

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		out[e.LinkID] = append(out[e.LinkID], e)
	}
	return out, nil
}

func collectEntries(rows *sql.Rows) ([]models.LinkEntry, error) {
	defer rows.Close()
	var out []models.LinkEntry
	for rows.Next() {
		var e models.LinkEntry
		if err := rows.Scan(&e.ID, &e.LinkID, &e.SourceName, &e.SourceURL, &e.Priority, &e.Status, &e.Position); err != nil {
			return nil, fmt.Errorf("scan link entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("link entry rows: %w", err)
	}
	return out, nil
}

func scanLink(row interface{ Scan(...any) error }) (*models.ManualLink, error) {
	var (
		l         models.ManualLink
		tmdbID    sql.NullInt64
		year      sql.NullInt64
		language  sql.NullString
		posterURL sql.NullString
		addedBy   sql.NullString
	)
	if err := row.Scan(
		&l.ID, &l.MovieKey, &tmdbID, &l.MovieTitle, &year, &language, &posterURL, &addedBy, &l.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan manual link: %w", err)
	}
	if tmdbID.Valid {
		v := tmdbID.Int64
		l.TmdbID = &v
	}
	if year.Valid {
		v := int(year.Int64)
		l.MovieYear = &v
	}
	l.Language = language.String
	l.PosterURL = posterURL.String
	l.AddedBy = addedBy.String
	return &l, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
