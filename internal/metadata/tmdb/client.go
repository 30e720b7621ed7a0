package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/viewport-app/viewport/internal/config"
	"github.com/viewport-app/viewport/internal/httpclient"
)

const (
	castLimit    = 3
	maxErrorBody = 4 << 10
)

// Client is a TMDb API v3 client. It never retries and never caches:
// every call is exactly one request and every failure reaches the caller.
type Client struct {
	baseURL      string
	apiKey       string
	imageBaseURL string
	language     string
	http         *httpclient.Client
	logger       *slog.Logger
}

// New creates a TMDb client from the catalog configuration. Empty fields fall
// back to the public TMDb endpoints. A missing API key is reported per request.
func New(cfg config.TMDbConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	httpCfg := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}
	switch {
	case cfg.RateLimit < 0:
		httpCfg.RequestsPerSecond = 0
	case cfg.RateLimit > 0:
		httpCfg.RequestsPerSecond = float64(cfg.RateLimit)
		httpCfg.Burst = cfg.RateLimit
	}

	return &Client{
		baseURL:      strings.TrimRight(orDefault(cfg.APIURL, config.DefaultAPIURL), "/"),
		apiKey:       cfg.APIKey,
		imageBaseURL: strings.TrimRight(orDefault(cfg.ImageURL, config.DefaultImageURL), "/") + "/",
		language:     orDefault(cfg.Language, config.DefaultLanguage),
		http:         httpclient.New(httpCfg, logger),
		logger:       logger.With(slog.String("component", "tmdb")),
	}
}

// FetchPage fetches one page of a listing. Pages below 1 are treated as 1.
func (c *Client) FetchPage(ctx context.Context, kind Kind, page int, filters Filters) (*MoviePage, error) {
	path, ok := listPaths[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{"page": {strconv.Itoa(page)}}
	switch kind {
	case KindDiscover:
		if len(filters.Genres) > 0 {
			params.Set("with_genres", withGenres(filters.Genres))
		}
	case KindSearch:
		if q := strings.TrimSpace(filters.Query); q != "" {
			params.Set("query", q)
		}
	}

	var resp MoviePage
	if err := c.get(ctx, request{kind: kind, page: page, path: path}, params, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		resp.Results = []Movie{}
	}

	c.logger.Debug("fetched page",
		slog.String("kind", string(kind)),
		slog.Int("page", page),
		slog.Int("results", len(resp.Results)),
		slog.Int("total_pages", resp.TotalPages),
	)
	return &resp, nil
}

// Search searches movies by title. A blank query returns an empty first page
// without touching the network.
func (c *Client) Search(ctx context.Context, query string, page int) (*MoviePage, error) {
	if strings.TrimSpace(query) == "" {
		return EmptyPage(), nil
	}
	return c.FetchPage(ctx, KindSearch, page, Filters{Query: query})
}

// EmptyPage is the result of a search that was never sent.
func EmptyPage() *MoviePage {
	return &MoviePage{Page: 1, Results: []Movie{}}
}

// GetMovie retrieves full details for a movie by TMDb ID.
func (c *Client) GetMovie(ctx context.Context, id int) (*MovieDetails, error) {
	var details MovieDetails
	r := request{kind: KindDetail, path: fmt.Sprintf("/movie/%d", id)}
	if err := c.get(ctx, r, nil, &details); err != nil {
		return nil, err
	}

	// The detail endpoint returns genre objects instead of genre_ids.
	if len(details.GenreIDs) == 0 && len(details.Genres) > 0 {
		details.GenreIDs = make([]int, len(details.Genres))
		for i, g := range details.Genres {
			details.GenreIDs[i] = g.ID
		}
	}
	return &details, nil
}

// GetMovieVideos returns the best trailer for a movie, or nil when the movie
// has no YouTube video at all.
func (c *Client) GetMovieVideos(ctx context.Context, id int) (*Video, error) {
	var resp videosResponse
	r := request{kind: KindVideos, path: fmt.Sprintf("/movie/%d/videos", id)}
	if err := c.get(ctx, r, nil, &resp); err != nil {
		return nil, err
	}
	return SelectTrailer(resp.Results), nil
}

// GetMovieCredits returns the director and the first three billed cast members.
func (c *Client) GetMovieCredits(ctx context.Context, id int) (*Credits, error) {
	var resp creditsResponse
	r := request{kind: KindCredits, path: fmt.Sprintf("/movie/%d/credits", id)}
	if err := c.get(ctx, r, nil, &resp); err != nil {
		return nil, err
	}
	return projectCredits(resp), nil
}

// request identifies a query for logging and error reporting.
type request struct {
	kind Kind
	page int
	path string
}

func (r request) fetchError(status int, message string, err error) *FetchError {
	return &FetchError{Kind: r.kind, Page: r.page, Path: r.path, Status: status, Message: message, Err: err}
}

// get performs an authenticated GET request to the TMDb API and decodes the JSON response.
func (c *Client) get(ctx context.Context, r request, params url.Values, result any) error {
	if c.apiKey == "" {
		return r.fetchError(0, "", ErrAPIKeyMissing)
	}

	u, err := url.Parse(c.baseURL + r.path)
	if err != nil {
		return r.fetchError(0, "", fmt.Errorf("invalid URL: %w", err))
	}

	q := u.Query()
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return r.fetchError(0, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("tmdb request failed",
			slog.String("kind", string(r.kind)),
			slog.String("path", r.path),
			slog.String("error", err.Error()),
		)
		return r.fetchError(0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.StatusMessage != "" {
			msg = apiErr.StatusMessage
		}
		c.logger.Warn("tmdb API error",
			slog.String("kind", string(r.kind)),
			slog.String("path", r.path),
			slog.Int("status", resp.StatusCode),
			slog.String("message", msg),
		)
		return r.fetchError(resp.StatusCode, msg, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &DecodeError{Kind: r.kind, Page: r.page, Path: r.path, Err: err}
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
