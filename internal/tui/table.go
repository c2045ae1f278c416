package tui

import (
	"strings"

	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var tableColumns = []table.Column{
	{Title: "", Width: 2},
	{Title: "Severity", Width: 10},
	{Title: "Category", Width: 24},
	{Title: "Title", Width: 30},
	{Title: "Location", Width: 24},
}

// buildRows converts findings to flat-view table rows. The first column
// marks rows whose details are expanded.
func buildRows(vulns []indexedVuln, expanded func(idx int) bool) []table.Row {
	rows := make([]table.Row, 0, len(vulns))
	for _, iv := range vulns {
		marker := "▸"
		if expanded(iv.index) {
			marker = "▾"
		}
		rows = append(rows, table.Row{
			marker,
			strings.ToUpper(string(iv.vuln.Severity)),
			truncate(iv.vuln.CategoryOrDefault(), tableColumns[2].Width),
			truncate(iv.vuln.Title, tableColumns[3].Width),
			truncate(iv.vuln.Location, tableColumns[4].Width),
		})
	}
	return rows
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	const ellipsis = "..."
	if maxLen <= len(ellipsis) {
		return s[:maxLen]
	}
	return s[:maxLen-len(ellipsis)] + ellipsis
}

// newTable creates a bubbles table with standard columns and styling.
func newTable(height int, st styles) table.Model {
	t := table.New(
		table.WithColumns(tableColumns),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	applyTableStyles(&t, st)
	return t
}

func applyTableStyles(t *table.Model, st styles) {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(st.border).
		BorderBottom(true).
		Bold(true)
	s.Selected = st.selected.Bold(false)
	t.SetStyles(s)
}

// severityLabel renders a colored severity tag.
func severityLabel(s models.Severity) string {
	return severityStyle(s).Render(strings.ToUpper(string(s)))
}
