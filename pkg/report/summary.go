package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/nessus2xlsx/pkg/engine"
)

var severityColors = map[int]lipgloss.Color{
	engine.SeverityCritical: lipgloss.Color("#FF0000"),
	engine.SeverityHigh:     lipgloss.Color("#FF6B6B"),
	engine.SeverityMedium:   lipgloss.Color("#FFD93D"),
	engine.SeverityLow:      lipgloss.Color("#6BCB77"),
}

// Counts returns the number of rows per severity level.
func Counts(rows []engine.Row) map[int]int {
	counts := make(map[int]int)
	for _, r := range rows {
		counts[r.Severity]++
	}
	return counts
}

// PrintSummary writes the export confirmation and a per-severity breakdown
// of the plugin rows. Colors are dropped when w is not a terminal.
func PrintSummary(w io.Writer, path string, rows []engine.Row) {
	r := lipgloss.NewRenderer(w)
	success := r.NewStyle().Foreground(lipgloss.Color("#00D26A")).Bold(true)
	muted := r.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	fmt.Fprintln(w, success.Render("✅ Exported to: "+path))

	counts := Counts(rows)
	parts := make([]string, 0, len(severityColors))
	for sev := engine.SeverityCritical; sev >= engine.SeverityLow; sev-- {
		label := fmt.Sprintf("%s: %d", engine.SeverityName(sev), counts[sev])
		parts = append(parts, r.NewStyle().Foreground(severityColors[sev]).Render(label))
	}
	fmt.Fprintf(w, "%s %s\n", muted.Render(fmt.Sprintf("%d plugins |", len(rows))), strings.Join(parts, "  "))
}
