package links

import (
	"fmt"
	"strings"
	"unicode"
)

// MovieIdentity names a movie for manual-link lookup: the TMDB id when
// known, otherwise a normalized title (optionally with a year).
type MovieIdentity struct {
	TmdbID *int64
	Title  string
	Year   *int
}

// Key returns the canonical storage key for this identity. TMDB id
// wins; a title-only identity keys on the normalized title alone so a
// lookup without the year still matches.
func (id MovieIdentity) Key() string {
	if id.TmdbID != nil {
		return fmt.Sprintf("tmdb:%d", *id.TmdbID)
	}
	if id.Year != nil {
		return fmt.Sprintf("title:%s:%d", normalizeTitle(id.Title), *id.Year)
	}
	return "title:" + normalizeTitle(id.Title)
}

// LookupKeys returns every key this identity may be stored under, most
// specific first. Resolution tries them in order.
func (id MovieIdentity) LookupKeys() []string {
	var keys []string
	if id.TmdbID != nil {
		keys = append(keys, fmt.Sprintf("tmdb:%d", *id.TmdbID))
	}
	if id.Title != "" {
		norm := normalizeTitle(id.Title)
		if id.Year != nil {
			keys = append(keys, fmt.Sprintf("title:%s:%d", norm, *id.Year))
		}
		keys = append(keys, "title:"+norm)
	}
	return keys
}

// normalizeTitle converts a title to a canonical form: lowercase,
// non-alphanumerics collapsed to single spaces.
func normalizeTitle(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))

	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		// treat everything else as space separator
		if !prevSpace {
			b.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
