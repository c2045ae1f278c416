package tui

import (
	"fmt"
	"strings"

	"github.com/AditthyaSS/VulnExplain/internal/aggregator"
	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/AditthyaSS/VulnExplain/internal/plan"
)

// headerHeight is the number of terminal lines the header occupies.
const headerHeight = 6

// renderHeader produces the score strip shown above the results.
// displayedINR is the animated counter value, not the final total.
func renderHeader(summary *aggregator.Summary, displayedINR float64, trend *aggregator.Trend, sparkline []int, p plan.Plan, st styles, width int) string {
	var b strings.Builder

	// Line 1: title, plan and grade
	grade := gradeStyle(summary.Grade).Render(fmt.Sprintf("%s (%s)", summary.Grade.Letter, summary.Grade.Status))
	b.WriteString(fmt.Sprintf("VulnExplain  [%s]  Risk Grade: %s", p.Title(), grade))
	b.WriteString("\n")

	// Line 2: score, badge and vulnerability count
	badge := badgeStyle(summary.Badge).Render(string(summary.Badge))
	b.WriteString(fmt.Sprintf("Security Score: %d/100 %s  Vulnerabilities: %d",
		summary.SecurityScore, badge, summary.TotalVulnerabilities))
	if trend != nil {
		b.WriteString(fmt.Sprintf("  %s %+d", aggregator.GetTrendIndicator(trend.Direction), trend.ScoreChange))
	}
	b.WriteString("\n")

	// Line 3: animated financial risk
	b.WriteString(fmt.Sprintf("Financial Risk: %s", aggregator.FormatINR(displayedINR)))
	b.WriteString("\n")

	// Line 4: severity breakdown
	sevParts := make([]string, 0, len(summary.Distribution))
	for _, c := range summary.Distribution {
		label := fmt.Sprintf("%s:%d", c.Severity, c.Count)
		sevParts = append(sevParts, severityStyle(c.Severity).Render(label))
	}
	b.WriteString(strings.Join(sevParts, "  "))
	b.WriteString("\n")

	// Line 5: score history
	if len(sparkline) > 1 {
		b.WriteString("History: ")
		b.WriteString(aggregator.Sparkline(sparkline))
	}

	return st.header.Width(width).Render(b.String())
}

// renderChart draws the active projection as colored horizontal bars.
func renderChart(summary *aggregator.Summary, st styles, width int) string {
	if len(summary.Chart) == 0 {
		return ""
	}

	title := "Financial Impact"
	if summary.ChartView == models.ChartSeverity {
		title = "Severity Breakdown"
	}

	barWidth := width - 34
	if barWidth > 40 {
		barWidth = 40
	}
	if barWidth < 10 {
		barWidth = 10
	}

	var b strings.Builder
	b.WriteString(st.title.Render(title))
	b.WriteString(st.muted.Render("  (c: switch)"))
	b.WriteString("\n")

	total := aggregator.Total(summary.Chart)
	for _, slice := range summary.Chart {
		n := 0
		if total > 0 {
			n = int(slice.Value / total * float64(barWidth))
		}
		if slice.Value > 0 && n == 0 {
			n = 1
		}

		value := fmt.Sprintf("%.0f", slice.Value)
		if summary.ChartView != models.ChartSeverity {
			value = aggregator.FormatINR(slice.Value)
		}

		filled := chartBar(slice.Color).Render(strings.Repeat("█", n))
		b.WriteString(fmt.Sprintf("%-12s %s%s %s\n", slice.Name, filled, strings.Repeat(" ", barWidth-n), value))
	}

	return b.String()
}
