package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mangasplit/internal/pipeline"
)

type SummaryRow struct {
	Label string
	Value string
}

// SummaryRows turns a run summary into the rows printed after the run.
func SummaryRows(s pipeline.Summary) []SummaryRow {
	rows := []SummaryRow{
		{Label: "Folders processed", Value: fmt.Sprintf("%d", s.Folders)},
		{Label: "Artifacts created", Value: fmt.Sprintf("%d", s.Packaged)},
		{Label: "Archives extracted", Value: fmt.Sprintf("%d", s.ArchivesExtracted)},
		{Label: "Pages split", Value: fmt.Sprintf("%d", s.Pages.Split)},
		{Label: "Pages rotated", Value: fmt.Sprintf("%d", s.Pages.Rotated)},
		{Label: "Pages kept", Value: fmt.Sprintf("%d", s.Pages.Kept)},
	}
	if s.Pages.Unreadable > 0 {
		rows = append(rows, SummaryRow{Label: "Unreadable pages", Value: fmt.Sprintf("%d", s.Pages.Unreadable)})
	}
	if s.ArchivesDeleted > 0 {
		rows = append(rows, SummaryRow{Label: "Archives deleted", Value: fmt.Sprintf("%d", s.ArchivesDeleted)})
	}
	rows = append(rows, SummaryRow{Label: "Failures", Value: fmt.Sprintf("%d", len(s.Failures))})
	return rows
}

// RenderSummary draws rows as a two-column table inside a rounded box.
func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	for _, row := range rows {
		if w := lipgloss.Width(row.Label); w > labelWidth {
			labelWidth = w
		}
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		label := labelStyle.Width(labelWidth).Render(row.Label)
		lines = append(lines, label+dimStyle.Render("  ")+valueStyle.Render(row.Value))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// RenderFailures lists the items a run gave up on, one per line.
func RenderFailures(failures []pipeline.Failure) string {
	if len(failures) == 0 {
		return ""
	}
	lines := []string{warnStyle.Render("Failed items:")}
	for _, f := range failures {
		lines = append(lines, "  "+errorStyle.Render(f.Item)+dimStyle.Render(": "+f.Err.Error()))
	}
	return strings.Join(lines, "\n")
}

var (
	valueStyle = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorDim).Padding(0, 1)
)
