package errlog

import (
	"context"
	"database/sql"
	"testing"

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

func TestRecordDefaults(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	ev, err := repo.Record(ctx, RecordInput{Message: "scrape timed out"})
	require.NoError(t, err)
	require.NotEmpty(t, ev.ID)
	require.Equal(t, models.SeverityInfo, ev.Severity)
	require.Equal(t, "unknown", ev.Source)
	require.False(t, ev.Resolved)

	// unknown severity normalizes instead of failing
	ev, err = repo.Record(ctx, RecordInput{Severity: "catastrophic", Source: "hdhub4u", Message: "boom"})
	require.NoError(t, err)
	require.Equal(t, models.SeverityInfo, ev.Severity)
	require.Equal(t, "hdhub4u", ev.Source)
}

func TestRecordMetadataRoundTrip(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	ev, err := repo.Record(ctx, RecordInput{
		Severity:  models.SeverityCritical,
		Source:    "skymovieshd",
		ErrorType: "http",
		Message:   "status 503",
		Metadata:  map[string]any{"url": "https://skymovieshd.mba/x", "attempt": float64(3)},
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, ev.ID)
	require.NoError(t, err)
	require.Equal(t, "http", got.ErrorType)
	require.Equal(t, "https://skymovieshd.mba/x", got.Metadata["url"])
	require.Equal(t, float64(3), got.Metadata["attempt"])
}

func TestListFilters(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Record(ctx, RecordInput{Severity: models.SeverityCritical, Source: "hdhub4u", Message: "e"})
		require.NoError(t, err)
	}
	warn, err := repo.Record(ctx, RecordInput{Severity: models.SeverityWarning, Source: "cinefreak", Message: "w"})
	require.NoError(t, err)
	_, err = repo.Resolve(ctx, warn.ID, "admin")
	require.NoError(t, err)

	events, total, err := repo.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Len(t, events, 4)
	// newest first
	require.Equal(t, warn.ID, events[0].ID)

	events, total, err = repo.List(ctx, ListQuery{Severity: models.SeverityCritical})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, events, 3)

	unresolved := false
	events, total, err = repo.List(ctx, ListQuery{Resolved: &unresolved})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	for _, ev := range events {
		require.False(t, ev.Resolved)
	}

	resolved := true
	events, total, err = repo.List(ctx, ListQuery{Severity: models.SeverityWarning, Resolved: &resolved})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, warn.ID, events[0].ID)
}

func TestListPagination(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.Record(ctx, RecordInput{Message: "e"})
		require.NoError(t, err)
	}

	page1, total, err := repo.List(ctx, ListQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, page1, 2)

	page3, total, err := repo.List(ctx, ListQuery{Page: 3, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, page3, 1)
}

func TestResolveIdempotent(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	ev, err := repo.Record(ctx, RecordInput{Severity: models.SeverityCritical, Message: "e"})
	require.NoError(t, err)

	first, err := repo.Resolve(ctx, ev.ID, "alice")
	require.NoError(t, err)
	require.True(t, first.Resolved)
	require.Equal(t, "alice", first.ResolvedBy)
	require.NotNil(t, first.ResolvedAt)

	// second resolve is a no-op and keeps the original resolver
	second, err := repo.Resolve(ctx, ev.ID, "bob")
	require.NoError(t, err)
	require.True(t, second.Resolved)
	require.Equal(t, "alice", second.ResolvedBy)
	require.Equal(t, first.ResolvedAt.Unix(), second.ResolvedAt.Unix())
}

func TestResolveUnknownID(t *testing.T) {
	repo := NewRepo(newTestDB(t))

	_, err := repo.Resolve(context.Background(), "no-such-id", "admin")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestClearAll(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Record(ctx, RecordInput{Message: "e"})
		require.NoError(t, err)
	}

	n, err := repo.ClearAll(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	_, total, err := repo.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Zero(t, total)
}
