package database

import (
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// DefaultSources are seeded into source_status so the dashboard shows
// every known scraper before its first activity report.
var DefaultSources = []string{"hdhub4u", "skymovieshd", "cinefreak", "katmoviehd"}

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	for _, src := range DefaultSources {
		if _, err := db.Exec(
			`INSERT OR IGNORE INTO source_status (source_name) VALUES (?)`, src,
		); err != nil {
			return fmt.Errorf("seed source %s: %w", src, err)
		}
	}
	return nil
}
