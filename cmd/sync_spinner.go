package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// elapsedAfter is how long the spinner runs before it shows a timer.
const elapsedAfter = 2 * time.Second

type syncFinishedMsg struct {
	err error
}

// syncProgress shows a spinner while the session syncs.
type syncProgress struct {
	spinner spinner.Model
	label   string
	started time.Time
	now     time.Time
	run     tea.Cmd
	result  error
	done    bool
}

func newSyncProgress(label string, run tea.Cmd, started time.Time) syncProgress {
	return syncProgress{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		label:   label,
		started: started,
		now:     started,
		run:     run,
	}
}

func (m syncProgress) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m syncProgress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncFinishedMsg:
		m.done = true
		m.result = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		m.now = msg.Time
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m syncProgress) View() string {
	if m.done {
		return ""
	}

	line := m.spinner.View() + " " + m.label
	if elapsed := m.now.Sub(m.started); elapsed >= elapsedAfter {
		line += fmt.Sprintf(" (%ds)", int(elapsed.Seconds()))
	}
	return line
}

// runSyncSpinner runs work while drawing the spinner on output and returns
// the error work returned.
func runSyncSpinner(ctx context.Context, output io.Writer, label string, work func(context.Context) error) error {
	program := tea.NewProgram(
		newSyncProgress(label, func() tea.Msg {
			return syncFinishedMsg{err: work(ctx)}
		}, time.Now()),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("run sync spinner: %w", err)
	}

	progress, ok := final.(syncProgress)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", final)
	}

	return progress.result
}
