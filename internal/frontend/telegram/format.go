package telegram

import (
	"fmt"
	"strings"

	"github.com/viewport-app/viewport/internal/browse"
	"github.com/viewport-app/viewport/internal/metadata/tmdb"
)

const (
	maxCaptionLen  = 1024 // Telegram photo caption limit
	maxOverviewLen = 600
)

// mdV2Replacer escapes special characters for Telegram MarkdownV2.
var mdV2Replacer = strings.NewReplacer(
	`\`, `\\`,
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMdV2 escapes a string for safe use in Telegram MarkdownV2.
func EscapeMdV2(s string) string {
	return mdV2Replacer.Replace(s)
}

// FormatBold returns MarkdownV2 bold text.
func FormatBold(s string) string {
	return "*" + EscapeMdV2(s) + "*"
}

// FormatItalic returns MarkdownV2 italic text.
func FormatItalic(s string) string {
	return "_" + EscapeMdV2(s) + "_"
}

// RatingBar renders a rating percentage as a bar, e.g. "[███████░░░] 78%".
// width is the total number of characters for the bar body.
func RatingBar(percent, width int) string {
	if width < 1 {
		width = 10
	}
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return fmt.Sprintf("[%s%s] %d%%",
		strings.Repeat("█", filled),
		strings.Repeat("░", width-filled),
		percent,
	)
}

// movieLabel is the plain one-line label for a movie: "Title (2010) ★ 8.4".
func movieLabel(m tmdb.Movie) string {
	label := m.Title
	if y := m.Year(); y > 0 {
		label += fmt.Sprintf(" (%d)", y)
	}
	if m.VoteAverage > 0 {
		label += fmt.Sprintf(" ★ %.1f", m.VoteAverage)
	}
	return label
}

// formatMovieList renders a numbered MarkdownV2 list. start is the number of
// the first movie, so "/more" continues the numbering.
func formatMovieList(title string, movies []tmdb.Movie, start int, hasMore bool) string {
	var sb strings.Builder
	sb.WriteString(FormatBold(title))
	sb.WriteString("\n\n")

	if len(movies) == 0 {
		sb.WriteString(EscapeMdV2("No movies found."))
		return sb.String()
	}

	for i, m := range movies {
		sb.WriteString(EscapeMdV2(fmt.Sprintf("%d. %s", start+i, movieLabel(m))))
		sb.WriteByte('\n')
	}
	if hasMore {
		sb.WriteString("\n")
		sb.WriteString(FormatItalic("Send /more for the next page."))
	}
	return sb.String()
}

// formatPreview renders a movie preview as a MarkdownV2 caption.
func formatPreview(p *browse.Preview) string {
	var sb strings.Builder

	title := p.Movie.Title
	if p.Year > 0 {
		title += fmt.Sprintf(" (%d)", p.Year)
	}
	sb.WriteString(FormatBold(title))
	sb.WriteByte('\n')

	if p.Tagline != "" {
		sb.WriteString(FormatItalic(p.Tagline))
		sb.WriteByte('\n')
	}

	meta := []string{RatingBar(p.RatingPercent, 10)}
	if p.Runtime > 0 {
		meta = append(meta, fmt.Sprintf("%d min", p.Runtime))
	}
	if len(p.Genres) > 0 {
		meta = append(meta, strings.Join(p.Genres, ", "))
	}
	sb.WriteString(EscapeMdV2(strings.Join(meta, " · ")))
	sb.WriteString("\n\n")

	if p.Movie.Overview != "" {
		sb.WriteString(EscapeMdV2(truncate(p.Movie.Overview, maxOverviewLen)))
		sb.WriteString("\n\n")
	}

	if p.Credits != nil {
		if p.Credits.Director != nil {
			sb.WriteString(FormatBold("Director: "))
			sb.WriteString(EscapeMdV2(p.Credits.Director.Name))
			sb.WriteByte('\n')
		}
		if len(p.Credits.Cast) > 0 {
			names := make([]string, len(p.Credits.Cast))
			for i, c := range p.Credits.Cast {
				names[i] = c.Name
			}
			sb.WriteString(FormatBold("Cast: "))
			sb.WriteString(EscapeMdV2(strings.Join(names, ", ")))
			sb.WriteByte('\n')
		}
	}

	if p.WatchURL != "" {
		fmt.Fprintf(&sb, "\n[%s](%s)", EscapeMdV2("▶ Watch trailer"), p.WatchURL)
	}

	return sb.String()
}

// truncate shortens s to at most n runes, adding an ellipsis when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
