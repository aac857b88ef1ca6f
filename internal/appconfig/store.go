package appconfig

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"moviehub/pkg/models"
)

// Store reads and writes config values against the typed schema.
// Overrides live in app_config; a key without an override reports its
// schema default.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Get returns the entry for key, or models.ErrNotFound when the key is
// not part of the schema at all.
func (s *Store) Get(ctx context.Context, key string) (*models.ConfigEntry, error) {
	def, ok := schema[key]
	if !ok {
		return nil, fmt.Errorf("config key %q: %w", key, models.ErrNotFound)
	}

	entry := &models.ConfigEntry{
		Key:          key,
		Value:        def.Default,
		Type:         def.Type,
		DefaultValue: def.Default,
		Description:  def.Description,
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT value, updated_at, updated_by FROM app_config WHERE key = ?`, key)

	var (
		value     sql.NullString
		updatedAt sql.NullTime
		updatedBy sql.NullString
	)
	if err := row.Scan(&value, &updatedAt, &updatedBy); err != nil {
		if err == sql.ErrNoRows {
			return entry, nil
		}
		return nil, fmt.Errorf("scan config %s: %w", key, err)
	}

	if value.Valid {
		entry.Value = value.String
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		entry.UpdatedAt = &t
	}
	entry.UpdatedBy = updatedBy.String
	return entry, nil
}

// GetAll returns every schema key with its current value, sorted by key.
func (s *Store) GetAll(ctx context.Context) ([]models.ConfigEntry, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT key, value, updated_at, updated_by FROM app_config`)
	if err != nil {
		return nil, fmt.Errorf("query config: %w", err)
	}
	defer rows.Close()

	type override struct {
		value     sql.NullString
		updatedAt sql.NullTime
		updatedBy sql.NullString
	}
	overrides := make(map[string]override)
	for rows.Next() {
		var key string
		var o override
		if err := rows.Scan(&key, &o.value, &o.updatedAt, &o.updatedBy); err != nil {
			return nil, fmt.Errorf("scan config row: %w", err)
		}
		overrides[key] = o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("config rows: %w", err)
	}

	out := make([]models.ConfigEntry, 0, len(schema))
	for _, key := range Keys() {
		def := schema[key]
		entry := models.ConfigEntry{
			Key:          key,
			Value:        def.Default,
			Type:         def.Type,
			DefaultValue: def.Default,
			Description:  def.Description,
		}
		if o, ok := overrides[key]; ok {
			if o.value.Valid {
				entry.Value = o.value.String
			}
			if o.updatedAt.Valid {
				t := o.updatedAt.Time
				entry.UpdatedAt = &t
			}
			entry.UpdatedBy = o.updatedBy.String
		}
		out = append(out, entry)
	}
	return out, nil
}

// UpdateBatch validates every key and value against the schema, then
// applies all updates in one transaction. Any unknown key or
// type-mismatched value rejects the whole batch; nothing is written.
func (s *Store) UpdateBatch(ctx context.Context, updates map[string]string, updatedBy string) error {
	if len(updates) == 0 {
		return models.NewValidationError("updates", "no updates supplied")
	}

	// validate everything before touching storage
	for key, value := range updates {
		def, ok := schema[key]
		if !ok {
			return models.NewValidationError(key, "unknown config key")
		}
		if err := def.Validate(value); err != nil {
			return models.NewValidationError(key, err.Error())
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for key, value := range updates {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO app_config (key, value, updated_at, updated_by)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
			  value = excluded.value,
			  updated_at = excluded.updated_at,
			  updated_by = excluded.updated_by
		`, key, value, now, updatedBy); err != nil {
			return fmt.Errorf("upsert config %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit config batch: %w", err)
	}
	return nil
}

// GetInt is a convenience for int-typed keys; falls back to the schema
// default when the stored value fails to parse.
func (s *Store) GetInt(ctx context.Context, key string) (int, error) {
	entry, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(entry.Value)
	if err != nil {
		n, _ = strconv.Atoi(entry.DefaultValue)
	}
	return n, nil
}

// GetBool is a convenience for bool-typed keys.
func (s *Store) GetBool(ctx context.Context, key string) (bool, error) {
	entry, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return entry.Value == "true", nil
}
