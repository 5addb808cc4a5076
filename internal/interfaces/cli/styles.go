package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"showip.dev/cli/internal/application/services"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	doneStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	plannedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	failedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func statusBadge(status services.StepStatus) string {
	label := fmt.Sprintf("%-7s", status)
	switch status {
	case services.StepDone:
		return doneStyle.Render(label)
	case services.StepPlanned:
		return plannedStyle.Render(label)
	case services.StepFailed:
		return failedStyle.Render(label)
	default:
		return skippedStyle.Render(label)
	}
}

func renderStep(step services.StepResult) string {
	line := fmt.Sprintf("  %s %-20s", statusBadge(step.Status), step.Name)
	if step.Detail != "" {
		line += " " + dimStyle.Render(step.Detail)
	}
	return line
}

func renderReport(report *services.Report) string {
	var b strings.Builder
	heading := strings.ToUpper(report.Operation[:1]) + report.Operation[1:]
	if report.DryRun {
		heading += " (dry run)"
	}
	b.WriteString(titleStyle.Render(heading) + "\n")
	for _, step := range report.Steps {
		b.WriteString(renderStep(step) + "\n")
	}
	return b.String()
}

// renderSummary is the one-line outcome printed after a successful run.
func renderSummary(report *services.Report, pluginName string) string {
	var msg string
	switch {
	case report.AlreadyConfigured:
		msg = "Already done: " + pluginName + " is in " + report.PanelConfig
	case report.DryRun:
		msg = "Dry run finished, nothing was changed"
	case !report.Changed:
		msg = "Nothing to do"
	case report.Operation == "uninstall":
		msg = "Removed " + pluginName
	default:
		msg = fmt.Sprintf("Installed %s after %s", pluginName, report.Anchor)
	}
	return doneStyle.Render(msg) + dimStyle.Render(fmt.Sprintf(" (%s)", report.Elapsed.Round(time.Millisecond)))
}

func renderStatus(status *services.Status) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Plugin "+status.PluginName) + "\n")
	fmt.Fprintf(&b, "  %-16s %s\n", "plugin dir", orMissing(status.PluginDir))
	fmt.Fprintf(&b, "  %-16s %s\n", "library", yesNo(status.LibraryInstalled, status.LibraryPath))
	fmt.Fprintf(&b, "  %-16s %s\n", "panel config", orMissing(status.PanelConfig))
	fmt.Fprintf(&b, "  %-16s %s\n", "panel entry", yesNo(status.PanelConfigured, ""))
	if status.PluginConfig != "" {
		b.WriteString("  settings\n")
		for _, line := range strings.Split(strings.TrimRight(status.PluginConfig, "\n"), "\n") {
			b.WriteString("    " + strings.TrimSpace(line) + "\n")
		}
	}
	return b.String()
}

func orMissing(s string) string {
	if s == "" {
		return failedStyle.Render("not found")
	}
	return s
}

func yesNo(ok bool, detail string) string {
	if !ok {
		return skippedStyle.Render("no")
	}
	if detail == "" {
		return doneStyle.Render("yes")
	}
	return doneStyle.Render("yes") + " " + dimStyle.Render(detail)
}
