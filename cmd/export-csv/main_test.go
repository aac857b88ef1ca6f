package main

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"moviehub/internal/links"
	"moviehub/pkg/database"
)

func TestExportLinks(t *testing.T) {
	db, err := database.Open(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	repo := links.NewRepo(db)

	id := int64(27205)
	year := 2010
	_, err = repo.AddLink(ctx, links.AddInput{
		Identity:  links.MovieIdentity{TmdbID: &id, Title: "Inception", Year: &year},
		Language:  "en",
		PosterURL: "https://image.tmdb.org/t/p/w500/inception.jpg",
		Entries: []links.EntryInput{
			{SourceName: "hdhub4u", SourceURL: "https://hdhub4u.tv/inception", Priority: 2},
			{SourceName: "skymovieshd", SourceURL: "https://skymovieshd.ltd/inception", Priority: 1},
		},
	})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "links.csv")
	n, err := exportLinks(ctx, db, out)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{
		"tmdb_id", "movie_title", "movie_year", "language", "poster_url",
		"source_name", "source_url", "priority", "status",
	}, rows[0])

	// entries come out priority-ordered with the link's metadata repeated
	require.Equal(t, []string{
		"27205", "Inception", "2010", "en", "https://image.tmdb.org/t/p/w500/inception.jpg",
		"skymovieshd", "https://skymovieshd.ltd/inception", "1", "active",
	}, rows[1])
	require.Equal(t, "hdhub4u", rows[2][5])
}
