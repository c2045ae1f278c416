package tui

import (
	"fmt"
	"strings"

	"github.com/AditthyaSS/VulnExplain/internal/aggregator"
	"github.com/AditthyaSS/VulnExplain/internal/disclosure"
	"github.com/AditthyaSS/VulnExplain/internal/models"
)

type rowKind int

const (
	rowGroup rowKind = iota
	rowFinding
)

// row is one selectable line of the grouped finding list.
type row struct {
	kind     rowKind
	category string
	severity models.Severity
	count    int

	// finding rows only
	index int
	vuln  models.Vulnerability
}

func (r row) key() string {
	return disclosure.FindingKey(models.ViewGrouped, r.category, r.index)
}

// groupedRows flattens the accordion into selectable rows. Findings are
// listed only under the open group.
func groupedRows(groups []aggregator.Group, d *disclosure.State) []row {
	rows := make([]row, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, row{
			kind:     rowGroup,
			category: g.Category,
			severity: g.Severity,
			count:    len(g.Vulnerabilities),
		})
		if !d.GroupOpen(g.Category) {
			continue
		}
		for i, v := range g.Vulnerabilities {
			rows = append(rows, row{
				kind:     rowFinding,
				category: g.Category,
				severity: v.Severity,
				index:    i,
				vuln:     v,
			})
		}
	}
	return rows
}

// renderGroupedList renders the accordion and returns the line the cursor
// row starts on.
func renderGroupedList(rows []row, cursor int, d *disclosure.State, st styles) (string, int) {
	if len(rows) == 0 {
		return st.muted.Render("No vulnerabilities found.") + "\n", 0
	}

	var b strings.Builder
	cursorLine := 0
	line := 0

	for i, r := range rows {
		pointer := "  "
		if i == cursor {
			pointer = st.prompt.Render("> ")
			cursorLine = line
		}

		var text string
		switch r.kind {
		case rowGroup:
			arrow := "▸"
			if d.GroupOpen(r.category) {
				arrow = "▾"
			}
			text = fmt.Sprintf("%s %s  %s  (%d)", arrow, st.title.Render(r.category), severityLabel(r.severity), r.count)
		default:
			arrow := "▸"
			if d.FindingOpen(r.key()) {
				arrow = "▾"
			}
			text = fmt.Sprintf("    %s [%s] %s", arrow, severityLabel(r.severity), r.vuln.Title)
		}

		b.WriteString(pointer + text + "\n")
		line++

		if r.kind == rowFinding && d.FindingOpen(r.key()) {
			details := renderFindingDetails(r.vuln, "        ")
			if details != "" {
				b.WriteString(st.muted.Render(strings.TrimRight(details, "\n")) + "\n")
				line += strings.Count(details, "\n")
			}
		}
	}

	return b.String(), cursorLine
}

// renderPriorities lists the first remediation steps.
func renderPriorities(priorities []aggregator.Priority, st styles) string {
	if len(priorities) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(st.title.Render("Recommended Actions"))
	b.WriteString("\n")
	for i, p := range priorities {
		b.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, severityLabel(p.Severity), p.Action))
	}
	return b.String()
}
