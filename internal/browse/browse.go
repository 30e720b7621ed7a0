// Package browse composes catalog queries into the screens every frontend
// shows: landing shelves, genre pages, accumulated pages and movie previews.
package browse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viewport-app/viewport/internal/core"
	"github.com/viewport-app/viewport/internal/metadata/tmdb"
)

// ErrUnknownGenre is returned by GenrePage for ids outside the genre table.
var ErrUnknownGenre = errors.New("unknown genre")

// Shelf is one titled row of movies.
type Shelf struct {
	Title  string       `json:"title"`
	Movies []tmdb.Movie `json:"movies"`
}

// Service builds browse screens on top of a Catalog.
type Service struct {
	catalog core.Catalog
	logger  *slog.Logger
}

// New creates a browse Service.
func New(catalog core.Catalog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog: catalog,
		logger:  logger.With(slog.String("component", "browse")),
	}
}

// Catalog returns the underlying catalog.
func (s *Service) Catalog() core.Catalog { return s.catalog }

// row is one listing query behind a shelf.
type row struct {
	title   string
	kind    tmdb.Kind
	page    int
	filters tmdb.Filters
}

func discoverRow(title string, genres ...int) row {
	return row{title: title, kind: tmdb.KindDiscover, page: 1, filters: tmdb.Filters{Genres: genres}}
}

var landingRows = []row{
	{title: "Popular Movies", kind: tmdb.KindPopular, page: 1},
	{title: "Trending Now", kind: tmdb.KindPopular, page: 2},
	{title: "Upcoming Releases", kind: tmdb.KindUpcoming, page: 1},
	discoverRow("Action & Adventure", 28),
	discoverRow("Comedy", 35),
	discoverRow("Drama", 18),
}

// subCategories are the extra genre-combination rows shown on a genre page.
var subCategories = map[int][]row{
	28: {
		discoverRow("Action Thrillers", 28, 53),
		discoverRow("Action Adventure", 28, 12),
		discoverRow("Sci-Fi Action", 28, 878),
		discoverRow("Action Comedy", 28, 35),
		discoverRow("Crime Action", 28, 80),
	},
	35: {
		discoverRow("Romantic Comedy", 35, 10749),
		discoverRow("Action Comedy", 35, 28),
		discoverRow("Family Comedy", 35, 10751),
		discoverRow("Adventure Comedy", 35, 12),
		discoverRow("Crime Comedy", 35, 80),
	},
	18: {
		discoverRow("Romance Drama", 18, 10749),
		discoverRow("Crime Drama", 18, 80),
		discoverRow("Family Drama", 18, 10751),
		discoverRow("Historical Drama", 18, 36),
		discoverRow("Mystery Drama", 18, 9648),
	},
	27: {
		discoverRow("Horror Thriller", 27, 53),
		discoverRow("Supernatural Horror", 27, 14),
		discoverRow("Mystery Horror", 27, 9648),
		discoverRow("Sci-Fi Horror", 27, 878),
		discoverRow("Horror Comedy", 27, 35),
	},
	10749: {
		discoverRow("Romantic Comedy", 10749, 35),
		discoverRow("Romantic Drama", 10749, 18),
		discoverRow("Fantasy Romance", 10749, 14),
		discoverRow("Historical Romance", 10749, 36),
		discoverRow("Teen Romance", 10749, 10751),
	},
}

// Shelves fetches the landing rows concurrently. A row that fails is logged
// and returned with no movies so the layout stays stable.
func (s *Service) Shelves(ctx context.Context) []Shelf {
	results := s.fetchRows(ctx, landingRows)

	shelves := make([]Shelf, len(landingRows))
	for i, r := range results {
		shelves[i] = Shelf{Title: landingRows[i].title, Movies: r.movies}
		if shelves[i].Movies == nil {
			shelves[i].Movies = []tmdb.Movie{}
		}
	}
	return shelves
}

// GenrePage fetches the popular row for a genre plus its sub-category rows.
// Rows that fail or come back empty are dropped. An error is returned only
// when the genre is unknown or every row failed.
func (s *Service) GenrePage(ctx context.Context, genreID int) ([]Shelf, error) {
	name, ok := tmdb.GenreName(genreID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGenre, genreID)
	}

	rows := append([]row{discoverRow(fmt.Sprintf("Popular %s Movies", name), genreID)}, subCategories[genreID]...)
	results := s.fetchRows(ctx, rows)

	shelves := make([]Shelf, 0, len(rows))
	var firstErr error
	for i, r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		if len(r.movies) == 0 {
			continue
		}
		shelves = append(shelves, Shelf{Title: rows[i].title, Movies: r.movies})
	}

	if len(shelves) == 0 && firstErr != nil {
		return nil, fmt.Errorf("load %s page: %w", name, firstErr)
	}
	return shelves, nil
}

type rowResult struct {
	movies []tmdb.Movie
	err    error
}

// fetchRows runs one FetchPage per row concurrently; results are index-aligned with rows.
func (s *Service) fetchRows(ctx context.Context, rows []row) []rowResult {
	results := make([]rowResult, len(rows))

	var wg sync.WaitGroup
	for i, r := range rows {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := s.catalog.FetchPage(ctx, r.kind, r.page, r.filters)
			if err != nil {
				s.logger.Warn("shelf fetch failed",
					slog.String("shelf", r.title),
					slog.String("error", err.Error()),
				)
				results[i].err = err
				return
			}
			results[i].movies = page.Results
		}()
	}
	wg.Wait()

	return results
}
