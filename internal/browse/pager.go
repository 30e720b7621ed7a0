package browse

import (
	"context"
	"fmt"

	"github.com/viewport-app/viewport/internal/core"
	"github.com/viewport-app/viewport/internal/metadata/tmdb"
)

// Pager accumulates consecutive pages of one listing ("load more").
// It is not safe for concurrent use.
type Pager struct {
	catalog    core.Catalog
	kind       tmdb.Kind
	filters    tmdb.Filters
	dedupe     bool
	seen       map[int]struct{}
	movies     []tmdb.Movie
	page       int
	totalPages int
	fetched    bool
}

// PagerOption configures a Pager.
type PagerOption func(*Pager)

// WithDedupe drops movies whose id was already accumulated.
func WithDedupe() PagerOption {
	return func(p *Pager) { p.dedupe = true }
}

// NewPager creates a pager for a listing kind. Search listings go through
// Catalog.Search so a blank query never reaches the network.
func (s *Service) NewPager(kind tmdb.Kind, filters tmdb.Filters, opts ...PagerOption) *Pager {
	p := &Pager{
		catalog: s.catalog,
		kind:    kind,
		filters: filters,
		movies:  []tmdb.Movie{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.dedupe {
		p.seen = make(map[int]struct{})
	}
	return p
}

// Next fetches the following page and appends its movies. It returns the
// newly appended movies. On error the pager state is left unchanged.
func (p *Pager) Next(ctx context.Context) ([]tmdb.Movie, error) {
	if !p.HasMore() {
		return []tmdb.Movie{}, nil
	}

	next := p.page + 1
	var (
		page *tmdb.MoviePage
		err  error
	)
	if p.kind == tmdb.KindSearch {
		page, err = p.catalog.Search(ctx, p.filters.Query, next)
	} else {
		page, err = p.catalog.FetchPage(ctx, p.kind, next, p.filters)
	}
	if err != nil {
		return nil, fmt.Errorf("load page %d: %w", next, err)
	}

	added := make([]tmdb.Movie, 0, len(page.Results))
	for _, m := range page.Results {
		if p.dedupe {
			if _, dup := p.seen[m.ID]; dup {
				continue
			}
			p.seen[m.ID] = struct{}{}
		}
		added = append(added, m)
	}

	p.movies = append(p.movies, added...)
	p.page = page.Page
	if p.page < next {
		p.page = next
	}
	p.totalPages = page.TotalPages
	p.fetched = true
	return added, nil
}

// HasMore reports whether another page can be fetched.
func (p *Pager) HasMore() bool {
	if !p.fetched {
		return true
	}
	return p.page < p.totalPages
}

// Movies returns everything accumulated so far.
func (p *Pager) Movies() []tmdb.Movie {
	return p.movies
}

// Page returns the last page fetched, 0 before the first fetch.
func (p *Pager) Page() int { return p.page }

// TotalPages returns the upstream page count from the last fetch.
func (p *Pager) TotalPages() int { return p.totalPages }
