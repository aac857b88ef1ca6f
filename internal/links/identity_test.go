package links

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentityKey(t *testing.T) {
	id := int64(27205)
	year := 2010

	require.Equal(t, "tmdb:27205", MovieIdentity{TmdbID: &id, Title: "Inception", Year: &year}.Key())
	require.Equal(t, "title:inception:2010", MovieIdentity{Title: "Inception", Year: &year}.Key())
	require.Equal(t, "title:inception", MovieIdentity{Title: "Inception"}.Key())
}

func TestLookupKeysMostSpecificFirst(t *testing.T) {
	id := int64(27205)
	year := 2010

	keys := MovieIdentity{TmdbID: &id, Title: "Inception", Year: &year}.LookupKeys()
	require.Equal(t, []string{"tmdb:27205", "title:inception:2010", "title:inception"}, keys)

	keys = MovieIdentity{Title: "Inception"}.LookupKeys()
	require.Equal(t, []string{"title:inception"}, keys)
}

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"The Dark Knight", "the dark knight"},
		{"the  dark-KNIGHT", "the dark knight"},
		{"Spider-Man: No Way HOME!", "spider man no way home"},
		{"  WALL·E  ", "wall e"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, normalizeTitle(tc.in), "input %q", tc.in)
	}
}
