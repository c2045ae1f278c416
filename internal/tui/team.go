package tui

import (
	"strings"

	"github.com/AditthyaSS/VulnExplain/internal/plan"
)

// renderTeamPanel renders the team collaboration overlay, or the upgrade
// prompt when the plan does not include it.
func (m Model) renderTeamPanel() string {
	var b strings.Builder

	if !plan.Enabled(m.plan, plan.TeamCollaboration) {
		b.WriteString(m.styles.banner.Render("Upgrade to Enterprise"))
		b.WriteString("\n\n")
		b.WriteString(plan.Note(m.plan, plan.TeamCollaboration))
		b.WriteString("\n\n")
		for _, f := range plan.EnterpriseFeatures {
			b.WriteString("  ✓ " + f + "\n")
		}
		b.WriteString("\n")
		b.WriteString(m.styles.muted.Render("p: change plan  esc: close"))
		return m.styles.panel.Width(m.width).Render(b.String())
	}

	b.WriteString(m.styles.title.Render("Team Collaboration"))
	b.WriteString("\n\n")
	b.WriteString("Share Audit Summary\n")
	b.WriteString(m.styles.prompt.Render("Email: "))
	b.WriteString(m.emailInput.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.muted.Render("enter: share  esc: close"))

	return m.styles.panel.Width(m.width).Render(b.String())
}
