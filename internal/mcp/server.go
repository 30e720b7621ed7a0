package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/viewport-app/viewport/internal/browse"
	"github.com/viewport-app/viewport/internal/core"
	"github.com/viewport-app/viewport/internal/metadata/tmdb"
)

// Deps holds the catalog dependency for MCP tool handlers.
type Deps struct {
	Catalog core.Catalog
	Version string
}

// Server wraps an MCP SDK server with ViewPort tool handlers.
type Server struct {
	server *mcpsdk.Server
	deps   Deps
	browse *browse.Service
	logger *slog.Logger
}

// compile-time check.
var _ core.Frontend = (*Server)(nil)

// NewServer creates an MCP server with all ViewPort tools registered.
func NewServer(deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}

	s := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "viewport",
			Version: deps.Version,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{server: s, deps: deps, logger: logger}
	if deps.Catalog != nil {
		srv.browse = browse.New(deps.Catalog, logger)
	}
	srv.registerTools()
	return srv
}

// Name returns the frontend name.
func (s *Server) Name() string { return "mcp" }

// Start runs the MCP server over stdin/stdout until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	return s.ServeStdio(ctx)
}

// ServeStdio runs the MCP server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

// MCPServer returns the underlying MCP SDK server (for testing).
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.server
}

func (s *Server) registerTools() {
	s.server.AddTool(listMoviesTool(), s.handleListMovies)
	s.server.AddTool(searchMoviesTool(), s.handleSearchMovies)
	s.server.AddTool(getMoviePreviewTool(), s.handleGetMoviePreview)
	s.server.AddTool(listGenresTool(), s.handleListGenres)
	s.server.AddTool(getShelvesTool(), s.handleGetShelves)
}

func listMoviesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "list_movies",
		Description: "List one page of movies: popular, top_rated, upcoming, or discover (filtered by genre). Returns TMDb IDs, titles, release dates, ratings and paging totals.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"kind": map[string]any{
					"type":        "string",
					"enum":        []any{"popular", "top_rated", "upcoming", "discover"},
					"description": "Which listing to fetch",
				},
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number, starting at 1",
				},
				"genre": map[string]any{
					"type":        "string",
					"description": "Genre name or id for discover, e.g. \"Horror\" or \"27\"",
				},
				"genre_ids": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "integer"},
					"description": "Genre ids for discover; movies must match all of them",
				},
			},
			"required": []any{"kind"},
		},
	}
}

func searchMoviesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "search_movies",
		Description: "Search movies by title. Returns one page of matches with their TMDb IDs.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The movie title to search for",
				},
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number, starting at 1",
				},
			},
			"required": []any{"query"},
		},
	}
}

func getMoviePreviewTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "get_movie_preview",
		Description: "Get a movie preview by TMDb ID: details, genres, rating, poster and backdrop URLs, the best YouTube trailer, the director and top cast.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tmdb_id": map[string]any{
					"type":        "integer",
					"description": "The TMDb ID of the movie",
				},
			},
			"required": []any{"tmdb_id"},
		},
	}
}

func listGenresTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "list_genres",
		Description: "List the movie genres with their ids.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func getShelvesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "get_shelves",
		Description: "Get the browse rows: the landing shelves, or the rows of one genre page when a genre is given.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"genre": map[string]any{
					"type":        "string",
					"description": "Optional genre name or id",
				},
			},
		},
	}
}

func (s *Server) handleListMovies(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Catalog == nil {
		return toolError("catalog not configured"), nil
	}

	var args struct {
		Kind     string `json:"kind"`
		Page     int    `json:"page"`
		Genre    string `json:"genre"`
		GenreIDs []int  `json:"genre_ids"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	kind, err := tmdb.ParseKind(args.Kind)
	if err != nil || kind == tmdb.KindSearch {
		return toolError(fmt.Sprintf("kind must be one of popular, top_rated, upcoming, discover; got %q", args.Kind)), nil
	}

	filters := tmdb.Filters{Genres: args.GenreIDs}
	if args.Genre != "" {
		g, ok := tmdb.LookupGenre(args.Genre)
		if !ok {
			return toolError(fmt.Sprintf("unknown genre %q", args.Genre)), nil
		}
		filters.Genres = append(filters.Genres, g.ID)
	}

	page, err := s.deps.Catalog.FetchPage(ctx, kind, args.Page, filters)
	if err != nil {
		return toolError(fmt.Sprintf("list %s failed: %v", kind, err)), nil
	}
	return toolJSON(page)
}

func (s *Server) handleSearchMovies(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Catalog == nil {
		return toolError("catalog not configured"), nil
	}

	query, err := extractStringFromArgs(req.Params.Arguments, "query")
	if err != nil {
		return toolError(err.Error()), nil
	}
	page, err := extractOptionalInt(req.Params.Arguments, "page")
	if err != nil {
		return toolError(err.Error()), nil
	}

	result, err := s.deps.Catalog.Search(ctx, query, page)
	if err != nil {
		return toolError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return toolJSON(result)
}

func (s *Server) handleGetMoviePreview(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.browse == nil {
		return toolError("catalog not configured"), nil
	}

	tmdbID, err := extractIntFromArgs(req.Params.Arguments, "tmdb_id")
	if err != nil {
		return toolError(err.Error()), nil
	}

	preview, err := s.browse.PreviewByID(ctx, tmdbID)
	if err != nil {
		return toolError(fmt.Sprintf("movie preview failed: %v", err)), nil
	}
	return toolJSON(preview)
}

func (s *Server) handleListGenres(_ context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	return toolJSON(tmdb.Genres())
}

func (s *Server) handleGetShelves(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.browse == nil {
		return toolError("catalog not configured"), nil
	}

	var args struct {
		Genre string `json:"genre"`
	}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
	}

	if args.Genre == "" {
		return toolJSON(s.browse.Shelves(ctx))
	}

	g, ok := tmdb.LookupGenre(args.Genre)
	if !ok {
		return toolError(fmt.Sprintf("unknown genre %q", args.Genre)), nil
	}
	shelves, err := s.browse.GenrePage(ctx, g.ID)
	if err != nil {
		return toolError(fmt.Sprintf("genre page failed: %v", err)), nil
	}
	return toolJSON(shelves)
}

// Helper functions.

// toolJSON marshals v to JSON and returns it as text content.
func toolJSON(v any) (*mcpsdk.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil
}

// toolError returns a tool result indicating an error.
func toolError(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
		IsError: true,
	}
}

// extractIntFromArgs extracts a required integer argument from raw JSON arguments.
func extractIntFromArgs(raw json.RawMessage, key string) (int, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("invalid arguments: %w", err)
	}

	val, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	return toInt(key, val)
}

// extractOptionalInt is like extractIntFromArgs but returns 0 when the key is absent.
func extractOptionalInt(raw json.RawMessage, key string) (int, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("invalid arguments: %w", err)
	}

	val, ok := args[key]
	if !ok || val == nil {
		return 0, nil
	}
	return toInt(key, val)
}

func toInt(key string, val any) (int, error) {
	switch v := val.(type) {
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, val)
	}
}

// extractStringFromArgs extracts a string argument from raw JSON arguments.
func extractStringFromArgs(raw json.RawMessage, key string) (string, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	val, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}

	s, ok := val.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s must be a non-empty string", key)
	}
	return s, nil
}
