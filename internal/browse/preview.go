package browse

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/viewport-app/viewport/internal/metadata/tmdb"
)

// RatingTier buckets a rating percentage for colouring.
type RatingTier string

// Rating tiers.
const (
	TierHigh RatingTier = "high"
	TierMid  RatingTier = "mid"
	TierLow  RatingTier = "low"
)

// Preview is everything shown when a movie is opened.
type Preview struct {
	Movie         tmdb.Movie    `json:"movie"`
	Trailer       *tmdb.Video   `json:"trailer,omitempty"`
	Credits       *tmdb.Credits `json:"credits"`
	Genres        []string      `json:"genres"`
	Year          int           `json:"year,omitempty"`
	RatingPercent int           `json:"rating_percent"`
	Tier          RatingTier    `json:"rating_tier"`
	PosterURL     string        `json:"poster_url,omitempty"`
	BackdropURL   string        `json:"backdrop_url,omitempty"`
	EmbedURL      string        `json:"trailer_embed_url,omitempty"`
	WatchURL      string        `json:"trailer_watch_url,omitempty"`
	Runtime       int           `json:"runtime,omitempty"`
	Tagline       string        `json:"tagline,omitempty"`
}

// RatingPercent converts a 0-10 vote average to a whole percentage (floor).
func RatingPercent(voteAverage float64) int {
	return int(math.Floor(voteAverage * 10))
}

// TierFor returns the tier for a rating percentage.
func TierFor(percent int) RatingTier {
	switch {
	case percent >= 75:
		return TierHigh
	case percent >= 60:
		return TierMid
	default:
		return TierLow
	}
}

// Preview fetches the trailer and credits for a movie concurrently and
// assembles the preview. Either fetch failing fails the preview.
func (s *Service) Preview(ctx context.Context, movie tmdb.Movie) (*Preview, error) {
	var (
		wg         sync.WaitGroup
		trailer    *tmdb.Video
		credits    *tmdb.Credits
		videoErr   error
		creditsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		trailer, videoErr = s.catalog.GetMovieVideos(ctx, movie.ID)
	}()
	go func() {
		defer wg.Done()
		credits, creditsErr = s.catalog.GetMovieCredits(ctx, movie.ID)
	}()
	wg.Wait()

	if videoErr != nil {
		return nil, fmt.Errorf("load trailer for movie %d: %w", movie.ID, videoErr)
	}
	if creditsErr != nil {
		return nil, fmt.Errorf("load credits for movie %d: %w", movie.ID, creditsErr)
	}

	percent := RatingPercent(movie.VoteAverage)
	p := &Preview{
		Movie:         movie,
		Trailer:       trailer,
		Credits:       credits,
		Genres:        tmdb.GenreNames(movie.GenreIDs),
		Year:          movie.Year(),
		RatingPercent: percent,
		Tier:          TierFor(percent),
		PosterURL:     s.catalog.ImageURL(movie.PosterPath, tmdb.SizePoster),
		BackdropURL:   s.catalog.ImageURL(movie.BackdropPath, tmdb.SizeBackdrop),
	}
	if trailer != nil {
		p.EmbedURL = trailer.EmbedURL()
		p.WatchURL = trailer.WatchURL()
	}
	return p, nil
}

// PreviewByID loads the movie details first, then builds the preview.
func (s *Service) PreviewByID(ctx context.Context, id int) (*Preview, error) {
	details, err := s.catalog.GetMovie(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load movie %d: %w", id, err)
	}

	p, err := s.Preview(ctx, details.Movie)
	if err != nil {
		return nil, err
	}
	p.Runtime = details.Runtime
	p.Tagline = details.Tagline
	return p, nil
}
