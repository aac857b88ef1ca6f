package errlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"moviehub/pkg/models"
)

// Repo is the append-only error ledger. Events are never deleted
// except through ClearAll, and resolved is the only mutable field.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type RecordInput struct {
	Severity   string
	Source     string
	ErrorType  string
	Message    string
	StackTrace string
	Metadata   map[string]any
}

type ListQuery struct {
	Severity string // empty = any
	Resolved *bool  // nil = any
	Page     int
	Limit    int
}

const eventColumns = `id, severity, source, error_type, message, stack_trace, metadata, created_at, resolved, resolved_at, resolved_by`

// Record appends a new event. Unknown severities are normalized to
// info rather than rejected so a misbehaving scraper still gets its
// fault on the ledger.
func (r *Repo) Record(ctx context.Context, in RecordInput) (*models.ErrorEvent, error) {
	ev := &models.ErrorEvent{
		ID:         uuid.NewString(),
		Severity:   models.NormalizeSeverity(in.Severity),
		Source:     in.Source,
		ErrorType:  in.ErrorType,
		Message:    in.Message,
		StackTrace: in.StackTrace,
		Metadata:   in.Metadata,
		CreatedAt:  time.Now().UTC(),
	}
	if ev.Source == "" {
		ev.Source = "unknown"
	}

	var metaJSON []byte
	if len(in.Metadata) > 0 {
		b, err := json.Marshal(in.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		metaJSON = b
	}

	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO error_logs (id, severity, source, error_type, message, stack_trace, metadata, created_at, resolved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)
	`, ev.ID, ev.Severity, ev.Source, nullString(ev.ErrorType), ev.Message,
		nullString(ev.StackTrace), nullBytes(metaJSON), ev.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert error event: %w", err)
	}
	return ev, nil
}

// List returns events newest-first with the filtered total.
func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.ErrorEvent, int, error) {
	where := ""
	var args []any
	if q.Severity != "" {
		where = " WHERE severity = ?"
		args = append(args, q.Severity)
	}
	if q.Resolved != nil {
		if where == "" {
			where = " WHERE"
		} else {
			where += " AND"
		}
		resolved := 0
		if *q.Resolved {
			resolved = 1
		}
		where += " resolved = ?"
		args = append(args, resolved)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM error_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count errors: %w", err)
	}

	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM error_logs`+where+`
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list errors: %w", err)
	}
	defer rows.Close()

	out := make([]models.ErrorEvent, 0, limit)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error rows: %w", err)
	}
	return out, total, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*models.ErrorEvent, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM error_logs WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, fmt.Errorf("error event %s: %w", id, models.ErrNotFound)
	}
	return ev, nil
}

// Resolve marks the event resolved. Resolving an already-resolved
// event is an idempotent no-op returning the unchanged event.
func (r *Repo) Resolve(ctx context.Context, id, resolvedBy string) (*models.ErrorEvent, error) {
	ev, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev.Resolved {
		return ev, nil
	}

	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE error_logs SET resolved = 1, resolved_at = ?, resolved_by = ?
		WHERE id = ? AND resolved = 0
	`, now, nullString(resolvedBy), id)
	if err != nil {
		return nil, fmt.Errorf("resolve error event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// raced with another resolver; re-read, still a no-op
		return r.Get(ctx, id)
	}

	ev.Resolved = true
	ev.ResolvedAt = &now
	ev.ResolvedBy = resolvedBy
	return ev, nil
}

// ClearAll wipes the ledger. Irreversible; exposed only behind the
// super_admin role.
func (r *Repo) ClearAll(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM error_logs`)
	if err != nil {
		return 0, fmt.Errorf("clear error log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear error log rows: %w", err)
	}
	return n, nil
}

func scanEvent(row interface{ Scan(...any) error }) (*models.ErrorEvent, error) {
	var (
		ev         models.ErrorEvent
		errorType  sql.NullString
		stackTrace sql.NullString
		metadata   sql.NullString
		resolved   int
		resolvedAt sql.NullTime
		resolvedBy sql.NullString
	)
	if err := row.Scan(
		&ev.ID, &ev.Severity, &ev.Source, &errorType, &ev.Message,
		&stackTrace, &metadata, &ev.CreatedAt, &resolved, &resolvedAt, &resolvedBy,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan error event: %w", err)
	}
	ev.ErrorType = errorType.String
	ev.StackTrace = stackTrace.String
	if metadata.Valid && metadata.String != "" {
		_ = json.Unmarshal([]byte(metadata.String), &ev.Metadata)
	}
	ev.Resolved = resolved == 1
	if resolvedAt.Valid {
		t := resolvedAt.Time
		ev.ResolvedAt = &t
	}
	ev.ResolvedBy = resolvedBy.String
	return &ev, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
