package stats

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"moviehub/pkg/database"
	"moviehub/pkg/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTrackValidation(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	var verr *models.ValidationError
	require.ErrorAs(t, repo.TrackSearch(ctx, SearchRecord{}), &verr)
	require.ErrorAs(t, repo.TrackDownload(ctx, DownloadRecord{}), &verr)

	require.NoError(t, repo.TrackSearch(ctx, SearchRecord{Query: "dune", ResultsCount: 4}))
	id := int64(27205)
	require.NoError(t, repo.TrackDownload(ctx, DownloadRecord{TmdbID: &id, Quality: "1080p"}))
	require.NoError(t, repo.TrackDownload(ctx, DownloadRecord{MovieTitle: "Dune"}))
}

func TestTodayCounts(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.TrackSearch(ctx, SearchRecord{Query: "dune"}))
	require.NoError(t, repo.TrackSearch(ctx, SearchRecord{Query: "tenet"}))
	require.NoError(t, repo.TrackDownload(ctx, DownloadRecord{MovieTitle: "Dune"}))

	// backdated rows must not count as today
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	_, err := repo.DB.ExecContext(ctx, `
		INSERT INTO search_logs (query, results_count, search_timestamp) VALUES (?, 0, ?)
	`, "old query", yesterday)
	require.NoError(t, err)

	searches, err := repo.TodaySearches(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, searches)

	downloads, err := repo.TodayDownloads(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, downloads)
}

func TestTopAndZeroResultQueries(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.TrackSearch(ctx, SearchRecord{Query: "dune", ResultsCount: 5}))
	}
	require.NoError(t, repo.TrackSearch(ctx, SearchRecord{Query: "tenet", ResultsCount: 2}))
	require.NoError(t, repo.TrackSearch(ctx, SearchRecord{Query: "obscure film", ResultsCount: 0}))
	require.NoError(t, repo.TrackSearch(ctx, SearchRecord{Query: "obscure film", ResultsCount: 0}))

	since := time.Now().UTC().AddDate(0, 0, -7)

	top, err := repo.TopSearches(ctx, since, 10)
	require.NoError(t, err)
	require.Equal(t, models.LabelCount{Label: "dune", Count: 3}, top[0])

	zero, err := repo.ZeroResultQueries(ctx, since, 10)
	require.NoError(t, err)
	require.Len(t, zero, 1)
	require.Equal(t, models.LabelCount{Label: "obscure film", Count: 2}, zero[0])
}

func TestTopDownloadsSkipsUntitled(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	id := int64(1)
	require.NoError(t, repo.TrackDownload(ctx, DownloadRecord{TmdbID: &id}))
	require.NoError(t, repo.TrackDownload(ctx, DownloadRecord{MovieTitle: "Dune"}))

	top, err := repo.TopDownloads(ctx, time.Now().UTC().AddDate(0, 0, -7), 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "Dune", top[0].Label)
}

func TestDailySeriesFillsEmptyDays(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.TrackSearch(ctx, SearchRecord{Query: "dune"}))

	series, err := repo.DailySeries(ctx, "search_logs", "search_timestamp", 7)
	require.NoError(t, err)
	require.Len(t, series, 7)

	today := time.Now().UTC().Format("2006-01-02")
	require.Equal(t, today, series[6].Date)
	require.Equal(t, 1, series[6].Count)
	for _, day := range series[:6] {
		require.Zero(t, day.Count)
	}
}
