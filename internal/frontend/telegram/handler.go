package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/viewport-app/viewport/internal/browse"
	"github.com/viewport-app/viewport/internal/metadata/tmdb"
)

const (
	unauthorizedMsg = "Sorry, you are not authorized to use this bot."
	errorMsg        = "Couldn't reach the movie catalog. Please try again."
	resetMsg        = "Session reset."
	noMoreMsg       = "Nothing more to show. Try /popular or /search <title>."
	welcomeMsg      = "Welcome to ViewPort!\n\n" +
		"/popular, /toprated, /upcoming: browse listings\n" +
		"/genre <name>: browse a genre\n" +
		"/search <title>: or just type a title\n" +
		"/movie <id>: open a movie\n" +
		"/more: next page of the last list"

	callbackPrefix = "sel:" // prefix for selection callback data

	maxButtonLabel = 30 // max characters in inline keyboard button label
)

// handleMessage processes an incoming text message.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	b.logger.Debug("received message",
		slog.Int64("user_id", userID),
	)

	if !b.sessions.isAllowed(userID) {
		b.sendText(chatID, unauthorizedMsg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	cmd, arg := parseCommand(text)
	switch cmd {
	case "start", "help":
		b.sendText(chatID, welcomeMsg)
	case "reset":
		b.sessions.reset(userID)
		b.sendText(chatID, resetMsg)
	case "popular":
		b.startListing(ctx, chatID, userID, "Popular Movies", tmdb.KindPopular, tmdb.Filters{})
	case "toprated":
		b.startListing(ctx, chatID, userID, "Top Rated Movies", tmdb.KindTopRated, tmdb.Filters{})
	case "upcoming":
		b.startListing(ctx, chatID, userID, "Upcoming Releases", tmdb.KindUpcoming, tmdb.Filters{})
	case "genre":
		b.handleGenre(ctx, chatID, userID, arg)
	case "search":
		b.handleSearch(ctx, chatID, userID, arg)
	case "more":
		b.handleMore(ctx, chatID, userID)
	case "movie":
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			b.sendText(chatID, "Usage: /movie <id>")
			return
		}
		b.sendPreview(ctx, chatID, id)
	case "":
		b.handleSearch(ctx, chatID, userID, text)
	default:
		b.sendText(chatID, "Unknown command. Send /start for help.")
	}
}

// handleCallback processes inline keyboard callback queries.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	userID := cq.From.ID

	b.logger.Debug("received callback",
		slog.Int64("user_id", userID),
		slog.String("data", cq.Data),
	)

	// Acknowledge the callback immediately.
	callback := tgbotapi.NewCallback(cq.ID, "")
	b.out.Request(callback) //nolint:errcheck // best-effort ack

	if cq.Message == nil || !b.sessions.isAllowed(userID) {
		return
	}

	id, ok := parseSelection(cq.Data)
	if !ok {
		return
	}
	b.sendPreview(ctx, cq.Message.Chat.ID, id)
}

func (b *Bot) handleGenre(ctx context.Context, chatID, userID int64, arg string) {
	if arg == "" {
		names := make([]string, 0, 19)
		for _, g := range tmdb.Genres() {
			names = append(names, g.Name)
		}
		b.sendText(chatID, "Usage: /genre <name>\n\nGenres: "+strings.Join(names, ", "))
		return
	}

	g, ok := tmdb.LookupGenre(arg)
	if !ok {
		b.sendText(chatID, fmt.Sprintf("Unknown genre %q. Send /genre for the list.", arg))
		return
	}
	b.startListing(ctx, chatID, userID, "Popular "+g.Name+" Movies", tmdb.KindDiscover, tmdb.Filters{Genres: []int{g.ID}})
}

func (b *Bot) handleSearch(ctx context.Context, chatID, userID int64, query string) {
	if strings.TrimSpace(query) == "" {
		b.sendText(chatID, "Usage: /search <title>")
		return
	}
	b.startListing(ctx, chatID, userID, fmt.Sprintf("Results for %q", query), tmdb.KindSearch, tmdb.Filters{Query: query})
}

// startListing replaces the user's pager with a new listing and sends its first page.
func (b *Bot) startListing(ctx context.Context, chatID, userID int64, title string, kind tmdb.Kind, filters tmdb.Filters) {
	s := b.sessions.get(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	pager := b.browse.NewPager(kind, filters, browse.WithDedupe())
	movies, err := pager.Next(ctx)
	if err != nil {
		b.logFetchError(userID, err)
		b.sendText(chatID, errorMsg)
		return
	}

	s.title = title
	s.pager = pager
	b.sendList(chatID, title, movies, 1, pager.HasMore())
}

// handleMore sends the next page of the user's current listing.
func (b *Bot) handleMore(ctx context.Context, chatID, userID int64) {
	s := b.sessions.get(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pager == nil || !s.pager.HasMore() {
		b.sendText(chatID, noMoreMsg)
		return
	}

	start := len(s.pager.Movies()) + 1
	movies, err := s.pager.Next(ctx)
	if err != nil {
		b.logFetchError(userID, err)
		b.sendText(chatID, errorMsg)
		return
	}
	b.sendList(chatID, fmt.Sprintf("%s (page %d)", s.title, s.pager.Page()), movies, start, s.pager.HasMore())
}

// sendPreview loads a movie preview and sends it as a poster with caption.
func (b *Bot) sendPreview(ctx context.Context, chatID int64, id int) {
	typing := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	b.out.Request(typing) //nolint:errcheck // best-effort typing indicator

	p, err := b.browse.PreviewByID(ctx, id)
	if err != nil {
		b.logFetchError(0, err)
		var fe *tmdb.FetchError
		if errors.As(err, &fe) && fe.Status == 404 {
			b.sendText(chatID, fmt.Sprintf("Movie %d not found.", id))
			return
		}
		b.sendText(chatID, errorMsg)
		return
	}

	caption := formatPreview(p)
	if p.PosterURL != "" && utf8.RuneCountInString(caption) <= maxCaptionLen {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(p.PosterURL))
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeMarkdownV2
		if _, err := b.out.Send(photo); err == nil {
			return
		}
		b.logger.Debug("failed to send poster, falling back to text",
			slog.String("url", p.PosterURL),
		)
	}

	msg := tgbotapi.NewMessage(chatID, caption)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.out.Send(msg); err != nil {
		b.logger.Warn("failed to send markdown, retrying plain",
			slog.String("error", err.Error()),
		)
		b.sendText(chatID, p.Movie.Title)
	}
}

// sendList sends a numbered movie list with one selection button per movie.
func (b *Bot) sendList(chatID int64, title string, movies []tmdb.Movie, start int, hasMore bool) {
	msg := tgbotapi.NewMessage(chatID, formatMovieList(title, movies, start, hasMore))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if kb := buildSelectionKeyboard(movies, start); kb != nil {
		msg.ReplyMarkup = kb
	}
	if _, err := b.out.Send(msg); err != nil {
		b.logger.Error("failed to send list",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}

// sendText sends a plain text message (no parse mode).
func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.out.Send(msg); err != nil {
		b.logger.Error("failed to send message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}

func (b *Bot) logFetchError(userID int64, err error) {
	b.logger.Error("catalog request failed",
		slog.Int64("user_id", userID),
		slog.String("error", err.Error()),
	)
}

// parseCommand splits "/cmd@bot arg..." into ("cmd", "arg..."). Plain text
// yields an empty command.
func parseCommand(text string) (cmd, arg string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	return strings.ToLower(head), strings.TrimSpace(rest)
}

// parseSelection extracts the movie id from "sel:<id>" callback data.
func parseSelection(data string) (int, bool) {
	raw, ok := strings.CutPrefix(data, callbackPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// buildSelectionKeyboard builds one button per movie carrying "sel:<id>".
// Returns nil for an empty list.
func buildSelectionKeyboard(movies []tmdb.Movie, start int) *tgbotapi.InlineKeyboardMarkup {
	if len(movies) == 0 {
		return nil
	}

	// Arrange buttons in rows of 1 each (cleaner on mobile).
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(movies))
	for i, m := range movies {
		label := m.Title
		if utf8.RuneCountInString(label) > maxButtonLabel {
			label = string([]rune(label)[:maxButtonLabel]) + "…"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d. %s", start+i, label),
				callbackPrefix+strconv.Itoa(m.ID),
			),
		))
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}
