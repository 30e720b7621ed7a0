package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/viewport-app/viewport/internal/browse"
	"github.com/viewport-app/viewport/internal/metadata/tmdb"
)

// listKinds are the kinds accepted by "viewport list".
var listKinds = []tmdb.Kind{tmdb.KindPopular, tmdb.KindTopRated, tmdb.KindUpcoming}

func newListCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:       "list <popular|top-rated|upcoming>",
		Short:     "Show one page of a movie listing",
		Example:   "  viewport list popular\n  viewport list top-rated --page 2",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"popular", "top-rated", "upcoming"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseListKind(args[0])
			if err != nil {
				return err
			}
			_, _, svc, err := setup()
			if err != nil {
				return err
			}
			return runFetch(cmd.OutOrStdout(), string(kind), func(ctx context.Context) (string, error) {
				p, err := svc.Catalog().FetchPage(ctx, kind, page, tmdb.Filters{})
				if err != nil {
					return "", err
				}
				return renderPage(kindTitle(kind), p), nil
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	return cmd
}

func newGenreCmd() *cobra.Command {
	var (
		page int
		rows bool
	)
	cmd := &cobra.Command{
		Use:     "genre <name|id>",
		Short:   "Show movies of a genre",
		Example: "  viewport genre horror\n  viewport genre 878 --page 3\n  viewport genre comedy --rows",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, ok := tmdb.LookupGenre(strings.Join(args, " "))
			if !ok {
				return fmt.Errorf("unknown genre %q (see \"viewport genres\")", strings.Join(args, " "))
			}
			_, _, svc, err := setup()
			if err != nil {
				return err
			}
			return runFetch(cmd.OutOrStdout(), g.Name, func(ctx context.Context) (string, error) {
				if rows {
					shelves, err := svc.GenrePage(ctx, g.ID)
					if err != nil {
						return "", err
					}
					return renderShelves(shelves), nil
				}
				p, err := svc.Catalog().FetchPage(ctx, tmdb.KindDiscover, page, tmdb.Filters{Genres: []int{g.ID}})
				if err != nil {
					return "", err
				}
				return renderPage("Popular "+g.Name+" Movies", p), nil
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().BoolVar(&rows, "rows", false, "show the genre page rows instead of one listing")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:     "search <query...>",
		Short:   "Search movies by title",
		Example: "  viewport search the matrix",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			_, _, svc, err := setup()
			if err != nil {
				return err
			}
			return runFetch(cmd.OutOrStdout(), "results", func(ctx context.Context) (string, error) {
				p, err := svc.Catalog().Search(ctx, query, page)
				if err != nil {
					return "", err
				}
				return renderPage(fmt.Sprintf("Results for %q", query), p), nil
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	return cmd
}

func newMovieCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "movie <id>",
		Short:   "Show a movie with its trailer and credits",
		Example: "  viewport movie 27205",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid movie id %q", args[0])
			}
			_, _, svc, err := setup()
			if err != nil {
				return err
			}
			return runFetch(cmd.OutOrStdout(), "movie", func(ctx context.Context) (string, error) {
				p, err := svc.PreviewByID(ctx, id)
				if err != nil {
					return "", err
				}
				return renderPreview(p), nil
			})
		},
	}
}

func newGenresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List movie genres",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), renderGenres())
		},
	}
}

func newShelvesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shelves",
		Short: "Show the landing rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, svc, err := setup()
			if err != nil {
				return err
			}
			return runFetch(cmd.OutOrStdout(), "shelves", func(ctx context.Context) (string, error) {
				return renderShelves(svc.Shelves(ctx)), nil
			})
		},
	}
}

// parseListKind accepts the listing kinds "viewport list" supports.
func parseListKind(s string) (tmdb.Kind, error) {
	kind, err := tmdb.ParseKind(s)
	if err == nil {
		for _, k := range listKinds {
			if k == kind {
				return kind, nil
			}
		}
	}
	return "", fmt.Errorf("unknown listing %q: want popular, top-rated or upcoming", s)
}

func kindTitle(kind tmdb.Kind) string {
	switch kind {
	case tmdb.KindTopRated:
		return "Top Rated Movies"
	case tmdb.KindUpcoming:
		return "Upcoming Releases"
	default:
		return "Popular Movies"
	}
}

// renderPage renders a page as a numbered list with a paging footer.
func renderPage(title string, p *tmdb.MoviePage) string {
	var sb strings.Builder
	sb.WriteString(styleHeader.Render(title))
	sb.WriteByte('\n')

	if len(p.Results) == 0 {
		sb.WriteString(styleDim.Render("No movies found."))
		return sb.String()
	}

	const perPage = 20
	start := (max(p.Page, 1)-1)*perPage + 1
	for i, m := range p.Results {
		sb.WriteString(movieLine(start+i, m))
		sb.WriteByte('\n')
	}
	sb.WriteString(styleDim.Render(fmt.Sprintf("page %d of %d · %d results", p.Page, p.TotalPages, p.TotalResults)))
	return sb.String()
}

// renderShelves renders each shelf as a header followed by its first movies.
func renderShelves(shelves []browse.Shelf) string {
	const perShelf = 5

	var sb strings.Builder
	for i, s := range shelves {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(styleHeader.Render(s.Title))
		sb.WriteByte('\n')
		if len(s.Movies) == 0 {
			sb.WriteString(styleDim.Render("  (unavailable)"))
			sb.WriteByte('\n')
			continue
		}
		for j, m := range s.Movies[:min(perShelf, len(s.Movies))] {
			sb.WriteString(movieLine(j+1, m))
			sb.WriteByte('\n')
		}
		if extra := len(s.Movies) - perShelf; extra > 0 {
			sb.WriteString(styleDim.Render(fmt.Sprintf("     … and %d more", extra)))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// renderPreview renders a movie preview for the terminal.
func renderPreview(p *browse.Preview) string {
	var sb strings.Builder

	title := p.Movie.Title
	if p.Year > 0 {
		title += fmt.Sprintf(" (%d)", p.Year)
	}
	if p.PosterURL == "" {
		sb.WriteString(placeholderSwatch(p.Movie.Title) + " ")
	}
	sb.WriteString(styleHeader.Render(title))
	sb.WriteByte('\n')

	if p.Tagline != "" {
		sb.WriteString(styleDim.Render(p.Tagline))
		sb.WriteString("\n\n")
	}

	meta := []string{ratingStyle(p.Tier).Render(fmt.Sprintf("%d%%", p.RatingPercent))}
	if p.Runtime > 0 {
		meta = append(meta, fmt.Sprintf("%d min", p.Runtime))
	}
	if len(p.Genres) > 0 {
		meta = append(meta, strings.Join(p.Genres, ", "))
	}
	sb.WriteString(strings.Join(meta, " · "))
	sb.WriteString("\n\n")

	if p.Movie.Overview != "" {
		sb.WriteString(p.Movie.Overview)
		sb.WriteString("\n\n")
	}

	if p.Credits != nil {
		if p.Credits.Director != nil {
			sb.WriteString(styleInfo.Render("Director: ") + p.Credits.Director.Name + "\n")
		}
		if len(p.Credits.Cast) > 0 {
			cast := make([]string, len(p.Credits.Cast))
			for i, c := range p.Credits.Cast {
				cast[i] = c.Name
				if c.Character != "" {
					cast[i] += styleDim.Render(" as " + c.Character)
				}
			}
			sb.WriteString(styleInfo.Render("Cast: ") + strings.Join(cast, ", ") + "\n")
		}
	}

	if p.WatchURL != "" {
		sb.WriteString(styleInfo.Render("Trailer: ") + p.WatchURL + "\n")
	} else {
		sb.WriteString(styleDim.Render("No trailer available") + "\n")
	}
	if p.PosterURL != "" {
		sb.WriteString(styleInfo.Render("Poster: ") + p.PosterURL + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderGenres renders the genre table as "id  name" lines.
func renderGenres() string {
	var sb strings.Builder
	sb.WriteString(styleHeader.Render("Genres"))
	sb.WriteByte('\n')
	for _, g := range tmdb.Genres() {
		fmt.Fprintf(&sb, "%6d  %s\n", g.ID, g.Name)
	}
	return sb.String()
}
