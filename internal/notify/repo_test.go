package notify

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

func TestRecordAndList(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	var verr *models.ValidationError
	_, err := repo.Record(ctx, "", "msg", "all", 0, "admin")
	require.ErrorAs(t, err, &verr)
	_, err = repo.Record(ctx, "title", "", "all", 0, "admin")
	require.ErrorAs(t, err, &verr)

	first, err := repo.Record(ctx, "Maintenance tonight", "Downtime 02:00-03:00 UTC", "", 0, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.Equal(t, "all", first.TargetType)

	require.NoError(t, repo.UpdateSentCount(ctx, first.ID, 4))

	second, err := repo.Record(ctx, "Source restored", "hdhub4u is back", "operators", 2, "admin")
	require.NoError(t, err)

	items, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	// newest first
	require.Equal(t, second.ID, items[0].ID)
	require.Equal(t, 4, items[1].SentCount)
	require.Equal(t, "admin", items[1].SentBy)
}
