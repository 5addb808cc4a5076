package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"showip.dev/cli/internal/application/services"
)

// runInteractive drives run inside a Bubble Tea program, one step per
// message, and returns the final report.
func runInteractive(cmd *cobra.Command, run *services.Run) (*services.Report, error) {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := newProgressModel(ctx, cancel, run)
	program := tea.NewProgram(model,
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	final, err := program.Run()
	if err != nil {
		return run.Report(), fmt.Errorf("progress display failed: %w", err)
	}
	if m, ok := final.(progressModel); ok && m.err != nil {
		return run.Report(), m.err
	}
	if !run.Done() {
		return run.Report(), context.Canceled
	}
	return run.Report(), nil
}

// progressModel holds the state for the step progress view
type progressModel struct {
	ctx      context.Context
	cancel   context.CancelFunc
	run      *services.Run
	names    []string
	results  []services.StepResult
	quitting bool
	err      error
}

// stepDoneMsg is sent when a step finishes
type stepDoneMsg struct {
	result services.StepResult
	err    error
}

func newProgressModel(ctx context.Context, cancel context.CancelFunc, run *services.Run) progressModel {
	return progressModel{
		ctx:    ctx,
		cancel: cancel,
		run:    run,
		names:  run.StepNames(),
	}
}

// Init implements the Bubble Tea init method
func (m progressModel) Init() tea.Cmd {
	return m.nextStepCmd()
}

func (m progressModel) nextStepCmd() tea.Cmd {
	run, ctx := m.run, m.ctx
	return func() tea.Msg {
		result, err := run.Next(ctx)
		return stepDoneMsg{result: result, err: err}
	}
}

// Update implements the Bubble Tea update method
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// The running step finishes; the next one sees the cancelled context.
			m.cancel()
			m.quitting = true
		}
		return m, nil

	case stepDoneMsg:
		if msg.result.Name != "" && msg.result.Status != "" {
			m.results = append(m.results, msg.result)
		}
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		if m.run.Done() {
			return m, tea.Quit
		}
		return m, m.nextStepCmd()
	}

	return m, nil
}

// View implements the Bubble Tea view method
func (m progressModel) View() string {
	rows := []string{titleStyle.Render("showip")}
	for i, name := range m.names {
		switch {
		case i < len(m.results):
			rows = append(rows, renderStep(m.results[i]))
		case i == len(m.results) && !m.run.Done() && m.err == nil:
			rows = append(rows, fmt.Sprintf("  %s %s", plannedStyle.Render("...    "), name))
		default:
			rows = append(rows, dimStyle.Render(fmt.Sprintf("  %-7s %s", "", name)))
		}
	}

	footer := dimStyle.Render("[q] cancel")
	switch {
	case m.err != nil:
		footer = failedStyle.Render("Error: " + m.err.Error())
	case m.quitting:
		footer = dimStyle.Render("cancelling...")
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n" + strings.TrimRight(footer, "\n") + "\n"
}
