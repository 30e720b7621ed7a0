package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/viewport-app/viewport/internal/browse"
	"github.com/viewport-app/viewport/internal/metadata/tmdb"
)

// newBrowseCmd returns the "browse" subcommand for the interactive browser.
func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse movies interactively",
		Long: "Browse listings, search, and open movie previews in a terminal UI.\n" +
			"tab switches listing, / searches, m loads more, enter opens a movie, q quits.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBrowse()
		},
	}
}

// runBrowse initializes the catalog and starts the Bubble Tea browser.
func runBrowse() error {
	_, _, svc, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p := tea.NewProgram(newBrowseModel(ctx, svc), tea.WithAltScreen())

	// Bridge OS signal cancellation into the Bubble Tea event loop.
	go func() {
		<-ctx.Done()
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

// movieItem adapts a movie to the list widget.
type movieItem struct {
	movie tmdb.Movie
}

func (i movieItem) Title() string { return i.movie.Title }

func (i movieItem) Description() string {
	parts := make([]string, 0, 3)
	if y := i.movie.Year(); y > 0 {
		parts = append(parts, fmt.Sprint(y))
	}
	parts = append(parts, renderRating(i.movie.VoteAverage))
	if names := tmdb.GenreNames(i.movie.GenreIDs); len(names) > 0 {
		parts = append(parts, strings.Join(names, ", "))
	}
	return strings.Join(parts, " · ")
}

func (i movieItem) FilterValue() string { return i.movie.Title }

// listing is one entry of the tab cycle.
type listing struct {
	title string
	kind  tmdb.Kind
}

var browseListings = []listing{
	{"Popular Movies", tmdb.KindPopular},
	{"Top Rated Movies", tmdb.KindTopRated},
	{"Upcoming Releases", tmdb.KindUpcoming},
}

type browseMode int

const (
	modeList browseMode = iota
	modeSearch
	modePreview
)

// pageLoadedMsg carries a fetched page back to the TUI.
type pageLoadedMsg struct {
	pager *browse.Pager
	added []tmdb.Movie
	err   error
}

// previewLoadedMsg carries a movie preview back to the TUI.
type previewLoadedMsg struct {
	preview *browse.Preview
	err     error
}

// browseModel is the Bubble Tea model for the interactive browser.
type browseModel struct {
	ctx     context.Context
	svc     *browse.Service
	mode    browseMode
	list    list.Model
	search  textinput.Model
	preview viewport.Model
	spinner spinner.Model
	pager   *browse.Pager
	listIdx int // index into browseListings, -1 for search results
	query   string
	loading bool
	status  string
	width   int
	height  int
	ready   bool
}

// newBrowseModel creates a browseModel showing the first listing.
func newBrowseModel(ctx context.Context, svc *browse.Service) browseModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Title = browseListings[0].title

	ti := textinput.New()
	ti.Placeholder = "Search titles..."
	ti.CharLimit = 200

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo

	return browseModel{
		ctx:     ctx,
		svc:     svc,
		list:    l,
		search:  ti,
		spinner: s,
		pager:   svc.NewPager(browseListings[0].kind, tmdb.Filters{}, browse.WithDedupe()),
		loading: true,
	}
}

// Init loads the first page.
func (m browseModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadPage(m.ctx, m.pager))
}

// Update handles incoming messages and user input.
func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modePreview:
			return m.updatePreview(msg)
		default:
			return m.updateList(msg)
		}

	case pageLoadedMsg:
		return m.handlePage(msg)

	case previewLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.mode = modePreview
		m.preview.SetContent(lipgloss.NewStyle().Width(m.preview.Width).Render(renderPreview(msg.preview)))
		m.preview.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleResize adjusts widget dimensions on terminal resize.
func (m *browseModel) handleResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	bodyHeight := max(m.height-2, 1) // status line + search line
	m.list.SetSize(m.width, bodyHeight)
	if !m.ready {
		m.preview = viewport.New(m.width, bodyHeight)
		m.ready = true
	} else {
		m.preview.Width = m.width
		m.preview.Height = bodyHeight
	}
	m.search.Width = m.width - 4
}

func (m browseModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "tab":
		if m.loading {
			return m, nil
		}
		next := (m.listIdx + 1) % len(browseListings)
		return m.startListing(next, browseListings[next].kind, tmdb.Filters{}, browseListings[next].title)
	case "/":
		m.mode = modeSearch
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case "m":
		if m.loading || !m.pager.HasMore() {
			return m, nil
		}
		m.loading = true
		m.status = ""
		return m, tea.Batch(m.spinner.Tick, loadPage(m.ctx, m.pager))
	case "enter":
		item, ok := m.list.SelectedItem().(movieItem)
		if !ok || m.loading {
			return m, nil
		}
		m.loading = true
		m.status = ""
		return m, tea.Batch(m.spinner.Tick, loadPreview(m.ctx, m.svc, item.movie))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browseModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.search.Blur()
		return m, nil
	case "enter":
		query := strings.TrimSpace(m.search.Value())
		m.mode = modeList
		m.search.Blur()
		if query == "" || m.loading {
			return m, nil
		}
		m.query = query
		return m.startListing(-1, tmdb.KindSearch, tmdb.Filters{Query: query}, fmt.Sprintf("Results for %q", query))
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m browseModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "backspace":
		m.mode = modeList
		return m, nil
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

// startListing swaps in a fresh pager and loads its first page.
func (m browseModel) startListing(idx int, kind tmdb.Kind, filters tmdb.Filters, title string) (tea.Model, tea.Cmd) {
	m.listIdx = idx
	m.pager = m.svc.NewPager(kind, filters, browse.WithDedupe())
	m.list.Title = title
	m.loading = true
	m.status = ""
	return m, tea.Batch(m.list.SetItems(nil), m.spinner.Tick, loadPage(m.ctx, m.pager))
}

// handlePage appends a loaded page. Pages from a replaced pager are ignored.
func (m browseModel) handlePage(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.pager != m.pager {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.status = "Error: " + msg.err.Error()
		return m, nil
	}

	var cmds []tea.Cmd
	for _, mv := range msg.added {
		cmds = append(cmds, m.list.InsertItem(len(m.list.Items()), movieItem{movie: mv}))
	}
	switch {
	case len(m.pager.Movies()) == 0:
		m.status = "No movies found."
	case m.pager.HasMore():
		m.status = fmt.Sprintf("page %d of %d · m for more", m.pager.Page(), m.pager.TotalPages())
	default:
		m.status = fmt.Sprintf("page %d of %d", m.pager.Page(), m.pager.TotalPages())
	}
	return m, tea.Batch(cmds...)
}

// View renders the browser: the list or preview, then a status line.
func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var body string
	if m.mode == modePreview {
		body = m.preview.View()
	} else {
		body = m.list.View()
	}

	var footer string
	switch {
	case m.mode == modeSearch:
		footer = m.search.View()
	case m.loading:
		footer = m.spinner.View() + styleDim.Render(" Loading...")
	case strings.HasPrefix(m.status, "Error: "):
		footer = styleError.Render(m.status)
	case m.mode == modePreview:
		footer = styleDim.Render("esc back · ↑/↓ scroll")
	default:
		footer = styleDim.Render(m.status + " · tab listing · / search · enter open · q quit")
	}

	return body + "\n" + footer
}

// loadPage returns a command fetching the pager's next page.
func loadPage(ctx context.Context, p *browse.Pager) tea.Cmd {
	return func() tea.Msg {
		added, err := p.Next(ctx)
		return pageLoadedMsg{pager: p, added: added, err: err}
	}
}

// loadPreview returns a command fetching a movie preview.
func loadPreview(ctx context.Context, svc *browse.Service, movie tmdb.Movie) tea.Cmd {
	return func() tea.Msg {
		p, err := svc.Preview(ctx, movie)
		return previewLoadedMsg{preview: p, err: err}
	}
}
