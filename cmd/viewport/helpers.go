package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/viewport-app/viewport/internal/browse"
	"github.com/viewport-app/viewport/internal/config"
	"github.com/viewport-app/viewport/internal/metadata/tmdb"
)

// Lipgloss styles used across commands.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow

	styleTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true) // white bold

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5")).
			MarginBottom(1)
)

// loadConfig loads and validates the configuration file.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// initCatalog creates the TMDb client. A missing API key is only a warning:
// every request will then fail with tmdb.ErrAPIKeyMissing.
func initCatalog(cfg *config.Config, logger *slog.Logger) *tmdb.Client {
	if cfg.TMDb.APIKey == "" {
		logger.Warn("TMDb API key is not configured; catalog requests will fail",
			slog.String("hint", "set tmdb.api_key or VIEWPORT_TMDB_API_KEY"),
		)
	}
	return tmdb.New(cfg.TMDb, logger)
}

// setup loads the configuration and builds the logger, catalog and browse service.
func setup() (*config.Config, *slog.Logger, *browse.Service, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := config.SetupLogger(cfg.App.LogLevel)
	return cfg, logger, browse.New(initCatalog(cfg, logger), logger), nil
}

// ratingStyle colours a rating by tier: green, yellow, red.
func ratingStyle(tier browse.RatingTier) lipgloss.Style {
	switch tier {
	case browse.TierHigh:
		return styleSuccess
	case browse.TierMid:
		return styleWarn
	default:
		return styleError
	}
}

// renderRating renders "78%" coloured by tier.
func renderRating(voteAverage float64) string {
	percent := browse.RatingPercent(voteAverage)
	return ratingStyle(browse.TierFor(percent)).Render(fmt.Sprintf("%d%%", percent))
}

// placeholderColor is hsl(hue, 70%, 35%) for a title, as a hex colour.
func placeholderColor(title string) lipgloss.Color {
	c := colorful.Hsl(float64(browse.PlaceholderHue(title)), 0.70, 0.35)
	return lipgloss.Color(c.Hex())
}

// placeholderSwatch renders a coloured block with the title's initial,
// standing in for a missing poster.
func placeholderSwatch(title string) string {
	initial := "?"
	if r := []rune(strings.TrimSpace(title)); len(r) > 0 {
		initial = strings.ToUpper(string(r[0]))
	}
	return lipgloss.NewStyle().
		Background(placeholderColor(title)).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1).
		Render(initial)
}

// movieLine renders one listing row: "  1. Title (2010)  84%".
func movieLine(n int, m tmdb.Movie) string {
	title := m.Title
	if y := m.Year(); y > 0 {
		title += fmt.Sprintf(" (%d)", y)
	}
	return fmt.Sprintf("%3d. %s  %s  %s",
		n, styleTitle.Render(title), renderRating(m.VoteAverage), styleDim.Render(fmt.Sprintf("#%d", m.ID)))
}
