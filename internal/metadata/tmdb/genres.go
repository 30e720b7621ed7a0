package tmdb

import (
	"strconv"
	"strings"
)

// genreTable is the canonical TMDb movie genre list, in picker order.
var genreTable = [...]Genre{
	{28, "Action"},
	{12, "Adventure"},
	{16, "Animation"},
	{35, "Comedy"},
	{80, "Crime"},
	{99, "Documentary"},
	{18, "Drama"},
	{10751, "Family"},
	{14, "Fantasy"},
	{36, "History"},
	{27, "Horror"},
	{10402, "Music"},
	{9648, "Mystery"},
	{10749, "Romance"},
	{878, "Science Fiction"},
	{10770, "TV Movie"},
	{53, "Thriller"},
	{10752, "War"},
	{37, "Western"},
}

var genreNames = func() map[int]string {
	m := make(map[int]string, len(genreTable))
	for _, g := range genreTable {
		m[g.ID] = g.Name
	}
	return m
}()

// genreAliases are alternate spellings accepted by LookupGenre.
var genreAliases = map[string]int{
	"sci-fi": 878,
	"scifi":  878,
	"tv":     10770,
}

// Genres returns a copy of the genre table.
func Genres() []Genre {
	out := make([]Genre, len(genreTable))
	copy(out, genreTable[:])
	return out
}

// GenreName returns the display name for a genre id.
func GenreName(id int) (string, bool) {
	name, ok := genreNames[id]
	return name, ok
}

// GenreNames maps ids to names in input order, dropping unknown ids.
func GenreNames(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := genreNames[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// LookupGenre resolves a numeric id, a genre name (case-insensitive) or an alias.
func LookupGenre(s string) (Genre, bool) {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		name, ok := genreNames[id]
		if !ok {
			return Genre{}, false
		}
		return Genre{ID: id, Name: name}, true
	}
	if id, ok := genreAliases[strings.ToLower(s)]; ok {
		return Genre{ID: id, Name: genreNames[id]}, true
	}
	for _, g := range genreTable {
		if strings.EqualFold(g.Name, s) {
			return g, true
		}
	}
	return Genre{}, false
}
