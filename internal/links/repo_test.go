package links

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

func ptrInt64(v int64) *int64 { return &v }
func ptrInt(v int) *int       { return &v }
func ptrStr(v string) *string { return &v }

func inception() MovieIdentity {
	return MovieIdentity{TmdbID: ptrInt64(27205), Title: "Inception", Year: ptrInt(2010)}
}

func TestAddLinkCreatesAndAppends(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	link, err := repo.AddLink(ctx, AddInput{
		Identity: inception(),
		Language: "en",
		AddedBy:  "admin",
		Entries: []EntryInput{
			{SourceName: "hdhub4u", SourceURL: "https://new3.hdhub4u.fo/inception", Priority: 2},
			{SourceName: "skymovieshd", SourceURL: "https://skymovieshd.mba/inception", Priority: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "tmdb:27205", link.MovieKey)
	require.Len(t, link.Entries, 2)
	// entry ordering is priority-first
	require.Equal(t, "skymovieshd", link.Entries[0].SourceName)
	require.Equal(t, "hdhub4u", link.Entries[1].SourceName)

	// same movie appends to the existing link
	again, err := repo.AddLink(ctx, AddInput{
		Identity: inception(),
		Entries: []EntryInput{
			{SourceName: "cinefreak", SourceURL: "https://cinefreak.net/inception", Priority: 3},
		},
	})
	require.NoError(t, err)
	require.Equal(t, link.ID, again.ID)
	require.Len(t, again.Entries, 3)
	require.Equal(t, "cinefreak", again.Entries[2].SourceName)

	_, total, err := repo.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestAddLinkValidation(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	// no movie identity
	_, err := repo.AddLink(ctx, AddInput{
		Entries: []EntryInput{{SourceName: "hdhub4u", SourceURL: "https://x/y"}},
	})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	// entries without URLs are dropped; none left means rejection
	_, err = repo.AddLink(ctx, AddInput{
		Identity: MovieIdentity{Title: "Dune"},
		Entries:  []EntryInput{{SourceName: "hdhub4u"}, {SourceURL: ""}},
	})
	require.ErrorAs(t, err, &verr)

	// bad status
	_, err = repo.AddLink(ctx, AddInput{
		Identity: MovieIdentity{Title: "Dune"},
		Entries:  []EntryInput{{SourceName: "hdhub4u", SourceURL: "https://x/y", Status: "paused"}},
	})
	require.ErrorAs(t, err, &verr)
}

func TestAddLinkDefaults(t *testing.T) {
	repo := NewRepo(newTestDB(t))

	link, err := repo.AddLink(context.Background(), AddInput{
		Identity: MovieIdentity{Title: "Dune"},
		Entries:  []EntryInput{{SourceName: "hdhub4u", SourceURL: "https://x/y"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, link.Entries[0].Priority)
	require.Equal(t, models.EntryStatusActive, link.Entries[0].Status)
}

func TestResolveCandidatesOrderingAndFallbackKeys(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	_, err := repo.AddLink(ctx, AddInput{
		Identity: inception(),
		Entries: []EntryInput{
			{SourceName: "hdhub4u", SourceURL: "https://a", Priority: 2},
			{SourceName: "skymovieshd", SourceURL: "https://b", Priority: 1},
			{SourceName: "cinefreak", SourceURL: "https://c", Priority: 1},
			{SourceName: "katmoviehd", SourceURL: "https://d", Priority: 5, Status: models.EntryStatusInactive},
		},
	})
	require.NoError(t, err)

	got, err := repo.ResolveCandidates(ctx, inception())
	require.NoError(t, err)
	require.Len(t, got, 3) // inactive entry excluded

	// priority asc, then insertion order within the same priority
	require.Equal(t, "skymovieshd", got[0].SourceName)
	require.Equal(t, "cinefreak", got[1].SourceName)
	require.Equal(t, "hdhub4u", got[2].SourceName)
}

func TestResolveCandidatesTitleFallback(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	// stored without a TMDB id, keyed on normalized title
	_, err := repo.AddLink(ctx, AddInput{
		Identity: MovieIdentity{Title: "The Dark Knight"},
		Entries:  []EntryInput{{SourceName: "hdhub4u", SourceURL: "https://a"}},
	})
	require.NoError(t, err)

	// lookup with punctuation and case differences still matches
	got, err := repo.ResolveCandidates(ctx, MovieIdentity{Title: "the  dark-KNIGHT"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	// a TMDB id nobody stored falls through to the title key
	got, err = repo.ResolveCandidates(ctx, MovieIdentity{TmdbID: ptrInt64(155), Title: "The Dark Knight"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	// unknown movie yields empty, not an error
	got, err = repo.ResolveCandidates(ctx, MovieIdentity{Title: "No Such Film"})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestListSearchAndPagination(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	titles := []string{"Inception", "Interstellar", "Dune", "Dune Part Two"}
	for _, title := range titles {
		_, err := repo.AddLink(ctx, AddInput{
			Identity: MovieIdentity{Title: title},
			Entries:  []EntryInput{{SourceName: "hdhub4u", SourceURL: "https://x/" + title}},
		})
		require.NoError(t, err)
	}

	_, total, err := repo.List(ctx, ListQuery{Search: "dune"})
	require.NoError(t, err)
	require.Equal(t, 2, total)

	items, total, err := repo.List(ctx, ListQuery{Page: 2, Limit: 3})
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Len(t, items, 1)
}

func TestRemoveCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	link, err := repo.AddLink(ctx, AddInput{
		Identity: inception(),
		Entries: []EntryInput{
			{SourceName: "hdhub4u", SourceURL: "https://a"},
			{SourceName: "cinefreak", SourceURL: "https://b"},
		},
	})
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, link.ID))
	require.ErrorIs(t, repo.Remove(ctx, link.ID), models.ErrNotFound)

	var orphans int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM link_entries WHERE link_id = ?`, link.ID).Scan(&orphans))
	require.Zero(t, orphans)
}

func TestUpdateAndRemoveEntry(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	link, err := repo.AddLink(ctx, AddInput{
		Identity: inception(),
		Entries: []EntryInput{
			{SourceName: "hdhub4u", SourceURL: "https://a", Priority: 1},
			{SourceName: "cinefreak", SourceURL: "https://b", Priority: 2},
		},
	})
	require.NoError(t, err)
	first := link.Entries[0]

	require.NoError(t, repo.UpdateEntry(ctx, link.ID, first.ID, ptrInt(9), ptrStr(models.EntryStatusInactive)))

	got, err := repo.Get(ctx, link.ID)
	require.NoError(t, err)
	// demoted entry sank below the other one
	require.Equal(t, "cinefreak", got.Entries[0].SourceName)
	require.Equal(t, models.EntryStatusInactive, got.Entries[1].Status)

	require.ErrorIs(t, repo.UpdateEntry(ctx, link.ID, 9999, ptrInt(1), nil), models.ErrNotFound)

	var verr *models.ValidationError
	require.ErrorAs(t, repo.UpdateEntry(ctx, link.ID, first.ID, nil, nil), &verr)

	require.NoError(t, repo.RemoveEntry(ctx, link.ID, first.ID))
	require.ErrorIs(t, repo.RemoveEntry(ctx, link.ID, first.ID), models.ErrNotFound)
}

func TestCountActive(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	_, err := repo.AddLink(ctx, AddInput{
		Identity: MovieIdentity{Title: "Dune"},
		Entries:  []EntryInput{{SourceName: "hdhub4u", SourceURL: "https://a"}},
	})
	require.NoError(t, err)
	_, err = repo.AddLink(ctx, AddInput{
		Identity: MovieIdentity{Title: "Tenet"},
		Entries:  []EntryInput{{SourceName: "hdhub4u", SourceURL: "https://b", Status: models.EntryStatusInactive}},
	})
	require.NoError(t, err)

	n, err := repo.CountActive(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
