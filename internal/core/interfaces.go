package core

import (
	"context"

	"github.com/viewport-app/viewport/internal/metadata/tmdb"
)

// Catalog defines the movie catalog operations used by the frontends (CLI, Telegram, MCP)
type Catalog interface {
	// FetchPage fetches one page of a listing kind (popular, top_rated, upcoming, discover, search)
	FetchPage(ctx context.Context, kind tmdb.Kind, page int, filters tmdb.Filters) (*tmdb.MoviePage, error)

	// Search searches by title; a blank query yields an empty first page without a request
	Search(ctx context.Context, query string, page int) (*tmdb.MoviePage, error)

	// GetMovie retrieves full details for one movie
	GetMovie(ctx context.Context, id int) (*tmdb.MovieDetails, error)

	// GetMovieVideos returns the best trailer, or nil when there is none
	GetMovieVideos(ctx context.Context, id int) (*tmdb.Video, error)

	// GetMovieCredits returns the director and top-billed cast
	GetMovieCredits(ctx context.Context, id int) (*tmdb.Credits, error)

	// ImageURL resolves an image path at a size; "" when the path is absent
	ImageURL(path, size string) string
}

// Frontend defines the interface for user-facing frontends (Telegram, MCP)
type Frontend interface {
	// Start starts the frontend and blocks until ctx is done
	Start(ctx context.Context) error

	// Name returns the frontend name (e.g., "telegram", "mcp")
	Name() string
}

var _ Catalog = (*tmdb.Client)(nil)
