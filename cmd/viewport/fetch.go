package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// fetchTask loads something from the catalog and renders it as text.
type fetchTask func(ctx context.Context) (string, error)

// runFetch runs task behind a spinner and prints the rendered result to out.
// When out is not a terminal the spinner is skipped.
func runFetch(out io.Writer, label string, task fetchTask) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		text, err := task(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, text)
		return err
	}

	p := tea.NewProgram(newFetchModel(ctx, label, task), tea.WithOutput(out))
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("run %s: %w", label, err)
	}

	fm, ok := m.(fetchModel)
	if !ok {
		return errors.New("unexpected model type from tea program")
	}
	if fm.err != nil {
		return fm.err
	}
	_, err = fmt.Fprintln(out, fm.result)
	return err
}

// fetchResultMsg carries the task result back to the TUI.
type fetchResultMsg struct {
	result string
	err    error
}

type fetchModel struct {
	ctx     context.Context
	label   string
	task    fetchTask
	spinner spinner.Model
	result  string
	err     error
	done    bool
}

func newFetchModel(ctx context.Context, label string, task fetchTask) fetchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo
	return fetchModel{
		ctx:     ctx,
		label:   label,
		task:    task,
		spinner: s,
	}
}

func (m fetchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run())
}

func (m fetchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = context.Canceled
			m.done = true
			return m, tea.Quit
		}
	case fetchResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View shows the spinner until done; the result itself is printed after the program exits.
func (m fetchModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + styleDim.Render(" Loading "+m.label+"...") + "\n"
}

func (m fetchModel) run() tea.Cmd {
	return func() tea.Msg {
		result, err := m.task(m.ctx)
		return fetchResultMsg{result: result, err: err}
	}
}
