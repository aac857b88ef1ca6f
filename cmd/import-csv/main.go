package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"moviehub/internal/links"
	"moviehub/pkg/database"
)

// Imports manual links from CSV, one row per source entry. Rows for
// the same movie append to the same link record.
func main() {
	var (
		in      = flag.String("links", "data/manual_links.csv", "input CSV path for manual links")
		addedBy = flag.String("added-by", "csv-import", "recorded as added_by on imported links")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	n, err := importLinks(ctx, links.NewRepo(db), *in, *addedBy)
	if err != nil {
		log.Fatalf("import manual links failed: %v", err)
	}

	log.Printf("✅ imported %d link entries from %s", n, *in)
}

func importLinks(ctx context.Context, repo *links.Repo, path, addedBy string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, err
	}

	imported := 0
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, err
		}
		line++
		if len(row) == 0 {
			continue
		}

		sourceName := valueAt(header, row, "source_name")
		sourceURL := valueAt(header, row, "source_url")
		if sourceName == "" || sourceURL == "" {
			log.Printf("line %d: missing source_name or source_url, skipped", line)
			continue
		}

		identity := links.MovieIdentity{
			Title: valueAt(header, row, "movie_title"),
		}
		if raw := valueAt(header, row, "tmdb_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return imported, fmt.Errorf("line %d: parse tmdb_id: %w", line, err)
			}
			identity.TmdbID = &id
		}
		if raw := valueAt(header, row, "movie_year"); raw != "" {
			y, err := strconv.Atoi(raw)
			if err != nil {
				return imported, fmt.Errorf("line %d: parse movie_year: %w", line, err)
			}
			identity.Year = &y
		}

		priority := 0
		if raw := valueAt(header, row, "priority"); raw != "" {
			priority, err = strconv.Atoi(raw)
			if err != nil {
				return imported, fmt.Errorf("line %d: parse priority: %w", line, err)
			}
		}

		_, err = repo.AddLink(ctx, links.AddInput{
			Identity:  identity,
			Language:  valueAt(header, row, "language"),
			PosterURL: valueAt(header, row, "poster_url"),
			AddedBy:   addedBy,
			Entries: []links.EntryInput{{
				SourceName: sourceName,
				SourceURL:  sourceURL,
				Priority:   priority,
				Status:     valueAt(header, row, "status"),
			}},
		})
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		imported++
	}

	return imported, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
