package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/viewport-app/viewport/internal/config"
)

const testImageBase = "https://image.tmdb.org/t/p"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(config.TMDbConfig{
		APIURL:    server.URL,
		APIKey:    "test-key",
		ImageURL:  testImageBase,
		RateLimit: -1,
	}, discardLogger())
}

func TestFetchPage_Endpoints(t *testing.T) {
	tests := []struct {
		kind Kind
		path string
	}{
		{KindPopular, "/movie/popular"},
		{KindTopRated, "/movie/top_rated"},
		{KindUpcoming, "/movie/upcoming"},
		{KindDiscover, "/discover/movie"},
		{KindSearch, "/search/movie"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tt.path {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("api_key") != "test-key" {
					t.Error("missing api_key")
				}
				if q.Get("language") != "en-US" {
					t.Errorf("expected language=en-US, got %q", q.Get("language"))
				}
				if q.Get("page") != "2" {
					t.Errorf("expected page=2, got %q", q.Get("page"))
				}
				json.NewEncoder(w).Encode(MoviePage{Page: 2, Results: []Movie{{ID: 1, Title: "Test"}}, TotalPages: 5, TotalResults: 100})
			}))

			page, err := client.FetchPage(context.Background(), tt.kind, 2, Filters{Query: "x"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page.Page != 2 || page.TotalPages != 5 || page.TotalResults != 100 {
				t.Errorf("unexpected page metadata: %+v", page)
			}
			if len(page.Results) != 1 || page.Results[0].Title != "Test" {
				t.Errorf("unexpected results: %+v", page.Results)
			}
		})
	}
}

func TestFetchPage_DefaultsPageToOne(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			t.Errorf("expected page=1, got %q", r.URL.Query().Get("page"))
		}
		json.NewEncoder(w).Encode(MoviePage{Page: 1})
	}))

	page, err := client.FetchPage(context.Background(), KindPopular, 0, Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Results == nil {
		t.Error("expected non-nil empty results")
	}
}

func TestFetchPage_GenresOnlyForDiscover(t *testing.T) {
	var got atomic.Value
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.URL.Query().Get("with_genres"))
		json.NewEncoder(w).Encode(MoviePage{Page: 1})
	}))

	if _, err := client.FetchPage(context.Background(), KindDiscover, 1, Filters{Genres: []int{28, 53}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Load() != "28,53" {
		t.Errorf("expected with_genres=28,53, got %q", got.Load())
	}

	if _, err := client.FetchPage(context.Background(), KindPopular, 1, Filters{Genres: []int{28}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Load() != "" {
		t.Errorf("with_genres must be ignored for popular, got %q", got.Load())
	}
}

func TestFetchPage_DiscoverFailureNamesKindAndPage(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status_code": 43, "status_message": "Service offline."}`))
	}))

	_, err := client.FetchPage(context.Background(), KindDiscover, 1, Filters{Genres: []int{28}})
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	if !errors.Is(err, ErrFetch) {
		t.Errorf("expected ErrFetch, got %v", err)
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fe.Kind != KindDiscover || fe.Page != 1 {
		t.Errorf("expected kind=discover page=1, got kind=%s page=%d", fe.Kind, fe.Page)
	}
	if fe.Status != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", fe.Status)
	}
	if fe.Message != "Service offline." {
		t.Errorf("expected upstream status message, got %q", fe.Message)
	}
	if calls.Load() != 1 {
		t.Errorf("expected exactly 1 request (no retry), got %d", calls.Load())
	}
}

func TestFetchPage_MalformedBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"page": "one"`))
	}))

	_, err := client.FetchPage(context.Background(), KindTopRated, 3, Filters{})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if errors.Is(err, ErrFetch) {
		t.Error("decode failure must be distinguishable from fetch failure")
	}
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != KindTopRated || de.Page != 3 {
		t.Errorf("unexpected decode error: %#v", err)
	}
}

func TestFetchPage_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	addr := server.URL
	server.Close()

	client := New(config.TMDbConfig{APIURL: addr, APIKey: "k", RateLimit: -1}, discardLogger())
	_, err := client.FetchPage(context.Background(), KindUpcoming, 1, Filters{})
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.Status != 0 {
		t.Errorf("expected status 0 for network failure, got %d", fe.Status)
	}
}

func TestFetchPage_UnknownKind(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for unknown kind")
	}))

	_, err := client.FetchPage(context.Background(), Kind("trending"), 1, Filters{})
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestMissingAPIKeyFailsAtRequestTime(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(server.Close)

	client := New(config.TMDbConfig{APIURL: server.URL, RateLimit: -1}, discardLogger())

	_, err := client.FetchPage(context.Background(), KindPopular, 1, Filters{})
	if !errors.Is(err, ErrAPIKeyMissing) || !errors.Is(err, ErrFetch) {
		t.Errorf("expected FetchError wrapping ErrAPIKeyMissing, got %v", err)
	}
	if _, err := client.GetMovieCredits(context.Background(), 1); !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("expected ErrAPIKeyMissing for credits, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no requests without an API key, got %d", calls.Load())
	}
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "inception" {
			t.Errorf("unexpected query: %s", r.URL.Query().Get("query"))
		}
		resp := MoviePage{
			Page: 1,
			Results: []Movie{
				{ID: 27205, Title: "Inception", VoteAverage: 8.4, ReleaseDate: "2010-07-16"},
			},
			TotalPages:   1,
			TotalResults: 1,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))

	page, err := client.Search(context.Background(), "inception", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Results) != 1 {
		t.Fatalf("expected 1 movie, got %d", len(page.Results))
	}
	if page.Results[0].ID != 27205 {
		t.Errorf("expected ID 27205, got %d", page.Results[0].ID)
	}
}

func TestSearch_BlankQueryIsNoOp(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))

	for _, q := range []string{"", "   ", "\t\n"} {
		for _, p := range []int{-1, 0, 1, 7} {
			page, err := client.Search(context.Background(), q, p)
			if err != nil {
				t.Fatalf("Search(%q, %d) unexpected error: %v", q, p, err)
			}
			if page.Page != 1 || len(page.Results) != 0 || page.Results == nil || page.TotalPages != 0 || page.TotalResults != 0 {
				t.Errorf("Search(%q, %d) = %+v, want empty first page", q, p, page)
			}
		}
	}
	if calls.Load() != 0 {
		t.Errorf("expected no requests, got %d", calls.Load())
	}
}

func TestSearch_PropagatesFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status_message": "Invalid API key"}`))
	}))

	_, err := client.Search(context.Background(), "test", 2)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.Kind != KindSearch || fe.Page != 2 || fe.Status != http.StatusUnauthorized {
		t.Errorf("unexpected fetch error: %+v", fe)
	}
}

func TestGetMovie(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"id": 550, "title": "Fight Club", "overview": "An insomniac...",
			"release_date": "1999-10-15", "vote_average": 8.4, "runtime": 139,
			"poster_path": null, "backdrop_path": "/bd.jpg",
			"imdb_id": "tt0137523", "genres": [{"id": 18, "name": "Drama"}]
		}`))
	}))

	details, err := client.GetMovie(context.Background(), 550)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.Title != "Fight Club" {
		t.Errorf("expected Fight Club, got %s", details.Title)
	}
	if details.Runtime != 139 {
		t.Errorf("expected runtime 139, got %d", details.Runtime)
	}
	if details.PosterPath != "" {
		t.Errorf("null poster_path must decode as absent, got %q", details.PosterPath)
	}
	if len(details.GenreIDs) != 1 || details.GenreIDs[0] != 18 {
		t.Errorf("expected genre ids derived from genres, got %v", details.GenreIDs)
	}
	if details.Year() != 1999 {
		t.Errorf("expected year 1999, got %d", details.Year())
	}
}

func TestGetMovie_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status_code": 34, "status_message": "The resource you requested could not be found."}`))
	}))

	_, err := client.GetMovie(context.Background(), 1)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.Kind != KindDetail || fe.Path != "/movie/1" || fe.Status != http.StatusNotFound {
		t.Errorf("unexpected fetch error: %+v", fe)
	}
}

func videoServer(t *testing.T, videos []Video) *Client {
	t.Helper()
	return newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603/videos" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(videosResponse{ID: 603, Results: videos})
	}))
}

func TestGetMovieVideos(t *testing.T) {
	trailer := Video{ID: "t", Key: "trailerKey", Site: "YouTube", Type: "Trailer", Official: true}
	teaser := Video{ID: "s", Key: "teaserKey", Site: "YouTube", Type: "Teaser"}
	vimeoTrailer := Video{ID: "v", Key: "vimeoKey", Site: "Vimeo", Type: "Trailer", Official: true}
	clip := Video{ID: "c", Key: "clipKey", Site: "YouTube", Type: "Clip"}
	featurette := Video{ID: "f", Key: "featKey", Site: "YouTube", Type: "Featurette"}

	tests := []struct {
		name   string
		videos []Video
		wantID string
	}{
		{"official trailer beats teaser", []Video{teaser, trailer}, "t"},
		{"teaser beats non-youtube trailer", []Video{vimeoTrailer, teaser}, "s"},
		{"first youtube video of any kind", []Video{vimeoTrailer, clip, featurette}, "c"},
		{"no youtube videos", []Video{vimeoTrailer}, ""},
		{"empty list", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := videoServer(t, tt.videos)
			got, err := client.GetMovieVideos(context.Background(), 603)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantID == "" {
				if got != nil {
					t.Errorf("expected no trailer, got %+v", got)
				}
				return
			}
			if got == nil || got.ID != tt.wantID {
				t.Errorf("expected video %q, got %+v", tt.wantID, got)
			}
		})
	}
}

func TestGetMovieCredits(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/27205/credits" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"id": 27205,
			"cast": [
				{"id": 1, "name": "Leonardo DiCaprio", "character": "Cobb", "profile_path": "/leo.jpg", "order": 0},
				{"id": 2, "name": "Joseph Gordon-Levitt", "character": "Arthur", "profile_path": null, "order": 1},
				{"id": 3, "name": "Elliot Page", "character": "Ariadne", "profile_path": "/ep.jpg", "order": 2},
				{"id": 4, "name": "Tom Hardy", "character": "Eames", "profile_path": "/th.jpg", "order": 3},
				{"id": 5, "name": "Ken Watanabe", "character": "Saito", "profile_path": "/kw.jpg", "order": 4}
			],
			"crew": [
				{"id": 10, "name": "Hans Zimmer", "job": "Original Music Composer", "department": "Sound"},
				{"id": 11, "name": "Christopher Nolan", "job": "Director", "department": "Directing", "profile_path": "/cn.jpg"}
			]
		}`))
	}))

	credits, err := client.GetMovieCredits(context.Background(), 27205)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credits.Director == nil || credits.Director.Name != "Christopher Nolan" || credits.Director.ProfilePath != "/cn.jpg" {
		t.Errorf("unexpected director: %+v", credits.Director)
	}
	if len(credits.Cast) != 3 {
		t.Fatalf("expected 3 cast members, got %d", len(credits.Cast))
	}
	for i, want := range []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt", "Elliot Page"} {
		if credits.Cast[i].Name != want {
			t.Errorf("cast[%d] = %q, want %q", i, credits.Cast[i].Name, want)
		}
	}
	if credits.Cast[0].Character != "Cobb" {
		t.Errorf("expected character Cobb, got %q", credits.Cast[0].Character)
	}
}

func TestGetMovieCredits_NoDirector(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"id": 1, "cast": [], "crew": [{"id": 2, "name": "X", "job": "Producer"}]}`))
	}))

	credits, err := client.GetMovieCredits(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credits.Director != nil {
		t.Errorf("expected no director, got %+v", credits.Director)
	}
	if credits.Cast == nil || len(credits.Cast) != 0 {
		t.Errorf("expected empty non-nil cast, got %v", credits.Cast)
	}
}

func TestImageURL(t *testing.T) {
	client := New(config.TMDbConfig{ImageURL: testImageBase}, discardLogger())

	tests := []struct {
		path   string
		size   string
		expect string
	}{
		{"/abc123.jpg", "w500", "https://image.tmdb.org/t/p/w500/abc123.jpg"},
		{"", "w500", ""},
		{"", "original", ""},
		{"", "", ""},
		{"/poster.jpg", "original", "https://image.tmdb.org/t/p/original/poster.jpg"},
		{"/poster.jpg", "", "https://image.tmdb.org/t/p/w500/poster.jpg"},
	}
	for _, tt := range tests {
		got := client.ImageURL(tt.path, tt.size)
		if got != tt.expect {
			t.Errorf("ImageURL(%q, %q) = %q, want %q", tt.path, tt.size, got, tt.expect)
		}
	}
}

func TestImageURL_ConfiguredBaseConcatenation(t *testing.T) {
	base := "http://img.local/t/p/"
	client := New(config.TMDbConfig{ImageURL: base}, discardLogger())

	for _, size := range []string{"w92", "w185", "w500", "original"} {
		for _, path := range []string{"/a.jpg", "/deep/b.png"} {
			want := base + size + path
			if got := client.ImageURL(path, size); got != want {
				t.Errorf("ImageURL(%q, %q) = %q, want %q", path, size, got, want)
			}
		}
	}
}

func TestYear(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2010-07-16", 2010},
		{"", 0},
		{"19", 0},
		{"abcd-01-01", 0},
	}
	for _, tt := range tests {
		if got := (Movie{ReleaseDate: tt.date}).Year(); got != tt.want {
			t.Errorf("Year(%q) = %d, want %d", tt.date, got, tt.want)
		}
	}
}
