package telegram

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/viewport-app/viewport/internal/browse"
	"github.com/viewport-app/viewport/internal/metadata/tmdb"
)

// fakeSender records outgoing Telegram requests.
type fakeSender struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	sendErr error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeSender) Request(_ tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSender) last() tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

// stubCatalog implements core.Catalog with canned pages.
type stubCatalog struct {
	mu    sync.Mutex
	kinds []tmdb.Kind
	pages map[int]*tmdb.MoviePage
	err   error
}

func (s *stubCatalog) FetchPage(_ context.Context, kind tmdb.Kind, page int, _ tmdb.Filters) (*tmdb.MoviePage, error) {
	s.mu.Lock()
	s.kinds = append(s.kinds, kind)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.pages[page]; ok {
		return p, nil
	}
	return &tmdb.MoviePage{Page: page, Results: []tmdb.Movie{}}, nil
}

func (s *stubCatalog) Search(ctx context.Context, query string, page int) (*tmdb.MoviePage, error) {
	if strings.TrimSpace(query) == "" {
		return tmdb.EmptyPage(), nil
	}
	return s.FetchPage(ctx, tmdb.KindSearch, page, tmdb.Filters{Query: query})
}

func (s *stubCatalog) GetMovie(_ context.Context, id int) (*tmdb.MovieDetails, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &tmdb.MovieDetails{Movie: tmdb.Movie{ID: id, Title: "Inception", PosterPath: "/p.jpg", VoteAverage: 8.4}}, nil
}

func (s *stubCatalog) GetMovieVideos(_ context.Context, _ int) (*tmdb.Video, error) {
	return &tmdb.Video{Key: "abc", Site: "YouTube", Type: "Trailer", Official: true}, nil
}

func (s *stubCatalog) GetMovieCredits(_ context.Context, _ int) (*tmdb.Credits, error) {
	return &tmdb.Credits{Cast: []tmdb.CastMember{}}, nil
}

func (s *stubCatalog) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/" + size + path
}

func newTestBot(cat *stubCatalog, allowed ...int64) (*Bot, *fakeSender) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	out := &fakeSender{}
	return &Bot{
		out:      out,
		browse:   browse.New(cat, logger),
		sessions: newSessionManager(allowed),
		logger:   logger,
	}, out
}

func textMessage(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}
}

func twoPages() map[int]*tmdb.MoviePage {
	return map[int]*tmdb.MoviePage{
		1: {Page: 1, Results: []tmdb.Movie{{ID: 1, Title: "One"}, {ID: 2, Title: "Two"}}, TotalPages: 2},
		2: {Page: 2, Results: []tmdb.Movie{{ID: 3, Title: "Three"}}, TotalPages: 2},
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in      string
		cmd     string
		wantArg string
	}{
		{"/popular", "popular", ""},
		{"/search the matrix", "search", "the matrix"},
		{"/Genre@ViewPortBot  horror ", "genre", "horror"},
		{"inception", "", "inception"},
	}
	for _, tt := range tests {
		cmd, arg := parseCommand(tt.in)
		if cmd != tt.cmd || arg != tt.wantArg {
			t.Errorf("parseCommand(%q) = (%q, %q), want (%q, %q)", tt.in, cmd, arg, tt.cmd, tt.wantArg)
		}
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		data string
		id   int
		ok   bool
	}{
		{"sel:27205", 27205, true},
		{"sel:", 0, false},
		{"sel:abc", 0, false},
		{"sel:-1", 0, false},
		{"other:1", 0, false},
	}
	for _, tt := range tests {
		id, ok := parseSelection(tt.data)
		if id != tt.id || ok != tt.ok {
			t.Errorf("parseSelection(%q) = (%d, %v), want (%d, %v)", tt.data, id, ok, tt.id, tt.ok)
		}
	}
}

func TestBuildSelectionKeyboard(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		if kb := buildSelectionKeyboard(nil, 1); kb != nil {
			t.Error("expected nil keyboard for empty list")
		}
	})

	t.Run("one row per movie", func(t *testing.T) {
		movies := []tmdb.Movie{{ID: 438631, Title: "Dune"}, {ID: 693134, Title: "Dune: Part Two"}}
		kb := buildSelectionKeyboard(movies, 11)
		if kb == nil {
			t.Fatal("expected keyboard")
		}
		if len(kb.InlineKeyboard) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(kb.InlineKeyboard))
		}
		btn := kb.InlineKeyboard[1][0]
		if btn.Text != "12. Dune: Part Two" {
			t.Errorf("unexpected label %q", btn.Text)
		}
		if btn.CallbackData == nil || *btn.CallbackData != "sel:693134" {
			t.Errorf("unexpected callback data: %v", btn.CallbackData)
		}
	})

	t.Run("long label truncated", func(t *testing.T) {
		movies := []tmdb.Movie{{ID: 1, Title: "A very long movie title that exceeds thirty characters in length"}}
		kb := buildSelectionKeyboard(movies, 1)
		label := kb.InlineKeyboard[0][0].Text
		if !strings.HasSuffix(label, "…") || len([]rune(label)) > maxButtonLabel+4 {
			t.Errorf("expected truncated label, got %q", label)
		}
	})
}

func TestHandleMessage_Unauthorized(t *testing.T) {
	cat := &stubCatalog{pages: twoPages()}
	b, out := newTestBot(cat, 100)

	b.handleMessage(context.Background(), textMessage(200, "/popular"))

	msgs := out.messages()
	if len(msgs) != 1 || msgs[0].Text != unauthorizedMsg {
		t.Fatalf("expected unauthorized reply, got %+v", msgs)
	}
	if len(cat.kinds) != 0 {
		t.Error("unauthorized user must not trigger requests")
	}
}

func TestHandleMessage_ListingAndMore(t *testing.T) {
	cat := &stubCatalog{pages: twoPages()}
	b, out := newTestBot(cat)
	ctx := context.Background()

	b.handleMessage(ctx, textMessage(1, "/toprated"))
	first := out.messages()[0]
	if !strings.Contains(first.Text, "1\\. One") || !strings.Contains(first.Text, "/more") {
		t.Errorf("unexpected first page:\n%s", first.Text)
	}
	if first.ReplyMarkup == nil {
		t.Error("expected selection keyboard")
	}

	b.handleMessage(ctx, textMessage(1, "/more"))
	second := out.messages()[1]
	if !strings.Contains(second.Text, "3\\. Three") || strings.Contains(second.Text, "Send /more") {
		t.Errorf("unexpected second page:\n%s", second.Text)
	}

	b.handleMessage(ctx, textMessage(1, "/more"))
	if got := out.messages()[2].Text; got != noMoreMsg {
		t.Errorf("expected no-more reply, got %q", got)
	}

	if len(cat.kinds) != 2 || cat.kinds[0] != tmdb.KindTopRated {
		t.Errorf("unexpected requests: %v", cat.kinds)
	}
}

func TestHandleMessage_FreeTextSearches(t *testing.T) {
	cat := &stubCatalog{pages: twoPages()}
	b, out := newTestBot(cat)

	b.handleMessage(context.Background(), textMessage(1, "inception"))

	if len(cat.kinds) != 1 || cat.kinds[0] != tmdb.KindSearch {
		t.Fatalf("expected one search request, got %v", cat.kinds)
	}
	if !strings.Contains(out.messages()[0].Text, "Results for") {
		t.Errorf("unexpected reply: %q", out.messages()[0].Text)
	}
}

func TestHandleMessage_Genre(t *testing.T) {
	cat := &stubCatalog{pages: twoPages()}
	b, out := newTestBot(cat)
	ctx := context.Background()

	b.handleMessage(ctx, textMessage(1, "/genre sci-fi"))
	if len(cat.kinds) != 1 || cat.kinds[0] != tmdb.KindDiscover {
		t.Fatalf("expected discover request, got %v", cat.kinds)
	}
	if !strings.Contains(out.messages()[0].Text, "Popular Science Fiction Movies") {
		t.Errorf("unexpected title: %q", out.messages()[0].Text)
	}

	b.handleMessage(ctx, textMessage(1, "/genre cooking"))
	if !strings.Contains(out.messages()[1].Text, "Unknown genre") {
		t.Errorf("expected unknown genre reply, got %q", out.messages()[1].Text)
	}
}

func TestHandleMessage_FetchError(t *testing.T) {
	cat := &stubCatalog{err: &tmdb.FetchError{Kind: tmdb.KindPopular, Page: 1, Status: 500}}
	b, out := newTestBot(cat)

	b.handleMessage(context.Background(), textMessage(1, "/popular"))

	if got := out.messages()[0].Text; got != errorMsg {
		t.Errorf("expected error reply, got %q", got)
	}
	b.handleMessage(context.Background(), textMessage(1, "/more"))
	if got := out.messages()[1].Text; got != noMoreMsg {
		t.Errorf("failed listing must not become the session, got %q", got)
	}
}

func TestHandleCallback_SendsPosterPreview(t *testing.T) {
	cat := &stubCatalog{}
	b, out := newTestBot(cat)

	b.handleCallback(context.Background(), &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 1},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}},
		Data:    "sel:27205",
	})

	photo, ok := out.last().(tgbotapi.PhotoConfig)
	if !ok {
		t.Fatalf("expected photo, got %T", out.last())
	}
	if !strings.Contains(photo.Caption, "*Inception*") || photo.ParseMode != tgbotapi.ModeMarkdownV2 {
		t.Errorf("unexpected caption: %q", photo.Caption)
	}
	if !strings.Contains(photo.Caption, "watch?v=abc") {
		t.Errorf("expected trailer link in caption: %q", photo.Caption)
	}
}

func TestHandleMessage_MovieUsage(t *testing.T) {
	b, out := newTestBot(&stubCatalog{})

	b.handleMessage(context.Background(), textMessage(1, "/movie abc"))

	if got := out.messages()[0].Text; got != "Usage: /movie <id>" {
		t.Errorf("unexpected reply: %q", got)
	}
}
