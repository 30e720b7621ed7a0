package tmdb

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind selects the listing endpoint used by FetchPage.
type Kind string

// Listing kinds accepted by FetchPage.
const (
	KindPopular  Kind = "popular"
	KindTopRated Kind = "top_rated"
	KindUpcoming Kind = "upcoming"
	KindDiscover Kind = "discover"
	KindSearch   Kind = "search"
)

// Item query kinds. They only appear in errors; FetchPage rejects them.
const (
	KindDetail  Kind = "detail"
	KindVideos  Kind = "videos"
	KindCredits Kind = "credits"
)

var listPaths = map[Kind]string{
	KindPopular:  "/movie/popular",
	KindTopRated: "/movie/top_rated",
	KindUpcoming: "/movie/upcoming",
	KindDiscover: "/discover/movie",
	KindSearch:   "/search/movie",
}

// Kinds returns the listing kinds in display order.
func Kinds() []Kind {
	return []Kind{KindPopular, KindTopRated, KindUpcoming, KindDiscover, KindSearch}
}

// ParseKind accepts a kind name, tolerating dashes and case ("top-rated").
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := listPaths[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Filters narrows a listing. Genres applies only to KindDiscover and Query
// only to KindSearch; other kinds ignore them.
type Filters struct {
	Genres []int
	Query  string
}

// withGenres renders genre ids as TMDb's comma-joined with_genres value (AND semantics).
func withGenres(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
