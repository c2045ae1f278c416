package tui

import (
	"fmt"
	"strings"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

// renderFindingDetails produces the expanded body of a finding, each line
// prefixed with indent.
func renderFindingDetails(v models.Vulnerability, indent string) string {
	var lines []string

	if v.Location != "" {
		lines = append(lines, fmt.Sprintf("Location: %s", v.Location))
	}
	if v.CWEID != "" {
		lines = append(lines, fmt.Sprintf("CWE: %s", v.CWEID))
	}
	if v.Description != "" {
		lines = append(lines, fmt.Sprintf("Description: %s", v.Description))
	}
	if v.Remediation != "" {
		lines = append(lines, fmt.Sprintf("Remediation: %s", v.Remediation))
	}
	if len(v.DataImpact) > 0 {
		lines = append(lines, fmt.Sprintf("Data Impact: %s", strings.Join(v.DataImpact, ", ")))
	}
	if len(v.SOC2Controls) > 0 {
		lines = append(lines, fmt.Sprintf("SOC 2: %s", strings.Join(v.SOC2Controls, ", ")))
	}
	if v.FixTimeHours > 0 {
		lines = append(lines, fmt.Sprintf("Fix Time: %gh", v.FixTimeHours))
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(indent)
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

// renderDetail produces the detail panel under the flat finding table.
func renderDetail(v *models.Vulnerability, open bool, st styles, width int) string {
	if v == nil {
		return st.panel.Width(width).Render("No finding selected")
	}
	if !open {
		return st.panel.Width(width).Render(st.muted.Render("enter: show details"))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s\n", severityLabel(v.Severity), v.Title))
	b.WriteString(renderFindingDetails(*v, ""))

	return st.panel.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}
