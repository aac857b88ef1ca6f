package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"moviehub/pkg/models"
)

// Repo persists sent notifications so the dashboard can show history.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Record(ctx context.Context, title, message, targetType string, sentCount int, sentBy string) (*models.Notification, error) {
	if title == "" {
		return nil, models.NewValidationError("title", "required")
	}
	if message == "" {
		return nil, models.NewValidationError("message", "required")
	}
	if targetType == "" {
		targetType = "all"
	}

	n := &models.Notification{
		ID:         uuid.New().String(),
		Title:      title,
		Message:    message,
		TargetType: targetType,
		SentCount:  sentCount,
		SentAt:     time.Now().UTC(),
		SentBy:     sentBy,
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO notification_history (id, title, message, target_type, sent_count, sent_at, sent_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Title, n.Message, n.TargetType, n.SentCount, n.SentAt, n.SentBy)
	if err != nil {
		return nil, fmt.Errorf("record notification: %w", err)
	}
	return n, nil
}

// UpdateSentCount fixes the delivered count after the UDP fanout
// finishes.
func (r *Repo) UpdateSentCount(ctx context.Context, id string, sentCount int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE notification_history SET sent_count = ? WHERE id = ?`, sentCount, id)
	if err != nil {
		return fmt.Errorf("update sent count: %w", err)
	}
	return nil
}

func (r *Repo) List(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, message, target_type, sent_count, sent_at, sent_by
		FROM notification_history
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var targetType, sentBy sql.NullString
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &targetType, &n.SentCount, &n.SentAt, &sentBy); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.TargetType = targetType.String
		n.SentBy = sentBy.String
		out = append(out, n)
	}
	return out, rows.Err()
}
