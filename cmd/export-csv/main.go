package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"moviehub/pkg/database"
)

// Exports manual links to CSV, one row per source entry, in the same
// layout import-csv accepts.
func main() {
	var (
		out = flag.String("links", "data/manual_links.csv", "output CSV path for manual links")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	n, err := exportLinks(ctx, db, *out)
	if err != nil {
		log.Fatalf("export manual links failed: %v", err)
	}

	log.Printf("✅ exported %d link entries to %s", n, *out)
}

func exportLinks(ctx context.Context, db *sql.DB, outPath string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"tmdb_id", "movie_title", "movie_year", "language", "poster_url",
		"source_name", "source_url", "priority", "status",
	}); err != nil {
		return 0, err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT l.tmdb_id, l.movie_title, l.movie_year, l.movie_language, l.movie_poster_url,
               e.source_name, e.source_url, e.priority, e.status
        FROM manual_links l
        JOIN link_entries e ON e.link_id = l.id
        ORDER BY l.movie_title, e.priority, e.position
    `)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	exported := 0
	for rows.Next() {
		var (
			tmdbID     sql.NullInt64
			movieTitle sql.NullString
			movieYear  sql.NullInt64
			language   sql.NullString
			posterURL  sql.NullString
			sourceName string
			sourceURL  string
			priority   int
			status     string
		)

		if err := rows.Scan(&tmdbID, &movieTitle, &movieYear, &language, &posterURL,
			&sourceName, &sourceURL, &priority, &status); err != nil {
			return exported, err
		}

		id := ""
		if tmdbID.Valid {
			id = strconv.FormatInt(tmdbID.Int64, 10)
		}
		year := ""
		if movieYear.Valid {
			year = strconv.FormatInt(movieYear.Int64, 10)
		}

		if err := w.Write([]string{
			id,
			movieTitle.String,
			year,
			language.String,
			posterURL.String,
			sourceName,
			sourceURL,
			strconv.Itoa(priority),
			status,
		}); err != nil {
			return exported, err
		}
		exported++
	}
	if err := rows.Err(); err != nil {
		return exported, err
	}

	w.Flush()
	return exported, w.Error()
}
