package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/AditthyaSS/VulnExplain/internal/aggregator"
	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/AditthyaSS/VulnExplain/internal/plan"
)

const barWidth = 30

// TextReporter generates human-readable text reports
type TextReporter struct {
	writer io.Writer

	// Details prints description and remediation under every finding
	Details bool
}

// NewTextReporter creates a new text reporter
func NewTextReporter(writer io.Writer) *TextReporter {
	return &TextReporter{
		writer: writer,
	}
}

// Generate writes the text report
func (r *TextReporter) Generate(report *Report) error {
	if report == nil || report.Result == nil || report.Summary == nil {
		return fmt.Errorf("no audit result to report")
	}

	r.printHeader()
	r.printf("Timestamp: %s\n", formatTimestamp(report.Result.Timestamp))
	if report.Result.ID != "" {
		r.printf("Audit ID:  %s\n", report.Result.ID)
	}
	r.printf("\n")

	r.printOverallSummary(report)
	r.printDistribution(report.Summary)
	r.printChart(report.Summary)
	r.printGroups(report.Summary)

	if len(report.Summary.Priorities) > 0 {
		r.printPriorities(report.Summary.Priorities)
	}

	if report.Trend != nil {
		r.printf("\n")
		r.printTrendInfo(report.Trend)
	}

	r.printPlanNotes(report.Plan)

	return nil
}

// printHeader prints the report header
func (r *TextReporter) printHeader() {
	r.printf("╔════════════════════════════════════════════╗\n")
	r.printf("║        VulnExplain Security Report         ║\n")
	r.printf("╚════════════════════════════════════════════╝\n\n")
}

// printOverallSummary prints the score card
func (r *TextReporter) printOverallSummary(report *Report) {
	s := report.Summary

	r.printf("Overall Summary:\n")
	r.printf("--------------------------------------------------\n")
	r.printf("  Security Score: %d/100 [%s]\n", s.SecurityScore, s.Badge)
	r.printf("  Risk Grade: %s (%s)\n", s.Grade.Letter, s.Grade.Status)
	r.printf("  Vulnerabilities: %d\n", s.TotalVulnerabilities)
	r.printf("  Financial Risk: %s", aggregator.FormatINR(s.TotalINR))

	if report.Trend != nil {
		indicator := aggregator.GetTrendIndicator(report.Trend.Direction)
		r.printf(" %s score %+d from previous audit", indicator, report.Trend.ScoreChange)
	}
	r.printf("\n")

	if s.TotalFixHours > 0 {
		r.printf("  Estimated Fix Time: %s\n", formatHours(s.TotalFixHours))
	}
	r.printf("\n")
}

// printDistribution prints counts per severity, most severe first
func (r *TextReporter) printDistribution(s *aggregator.Summary) {
	if len(s.Distribution) == 0 {
		return
	}

	r.printf("Vulnerabilities by Severity:\n")
	for _, c := range s.Distribution {
		r.printf("  %s: %d\n", c.Severity, c.Count)
	}
	r.printf("\n")
}

// printChart prints the active chart projection as horizontal bars
func (r *TextReporter) printChart(s *aggregator.Summary) {
	if len(s.Chart) == 0 {
		return
	}

	title := "Financial Impact Breakdown"
	if s.ChartView == models.ChartSeverity {
		title = "Severity Breakdown"
	}
	r.printf("%s:\n", title)

	total := aggregator.Total(s.Chart)
	for _, slice := range s.Chart {
		value := fmt.Sprintf("%.0f", slice.Value)
		if s.ChartView != models.ChartSeverity {
			value = aggregator.FormatINR(slice.Value)
		}
		r.printf("  %-12s %s %s\n", slice.Name, bar(slice.Value, total), value)
	}
	r.printf("\n")
}

// printGroups prints findings grouped by category
func (r *TextReporter) printGroups(s *aggregator.Summary) {
	if len(s.Groups) == 0 {
		r.printf("No vulnerabilities found.\n")
		return
	}

	r.printf("Vulnerabilities by Category:\n")
	r.printf("--------------------------------------------------\n")
	for _, g := range s.Groups {
		r.printf("\n%s [%s] (%d)\n", g.Category, g.Severity, len(g.Vulnerabilities))
		for i, v := range g.Vulnerabilities {
			r.printf("  %d. [%s] %s", i+1, strings.ToUpper(string(v.Severity)), v.Title)
			if v.CWEID != "" {
				r.printf(" (%s)", v.CWEID)
			}
			r.printf("\n")
			if v.Location != "" {
				r.printf("     Location: %s\n", v.Location)
			}
			if r.Details {
				r.printDetails(v)
			}
		}
	}
	r.printf("\n")
}

func (r *TextReporter) printDetails(v models.Vulnerability) {
	if v.Description != "" {
		r.printf("     Description: %s\n", v.Description)
	}
	if v.Remediation != "" {
		r.printf("     Remediation: %s\n", v.Remediation)
	}
	if len(v.DataImpact) > 0 {
		r.printf("     Data Impact: %s\n", strings.Join(v.DataImpact, ", "))
	}
	if len(v.SOC2Controls) > 0 {
		r.printf("     SOC 2: %s\n", strings.Join(v.SOC2Controls, ", "))
	}
	if v.FixTimeHours > 0 {
		r.printf("     Fix Time: %s\n", formatHours(v.FixTimeHours))
	}
}

// printPriorities prints the remediation plan
func (r *TextReporter) printPriorities(priorities []aggregator.Priority) {
	r.printf("Recommended Actions:\n")
	r.printf("--------------------------------------------------\n")

	for i, p := range priorities {
		r.printf("  %d. [%s] %s\n", i+1, strings.ToUpper(string(p.Severity)), p.Action)
		r.printf("     Impact: %s\n", p.Impact)
	}
}

// printTrendInfo prints trend information
func (r *TextReporter) printTrendInfo(trend *aggregator.Trend) {
	r.printf("Trend Analysis:\n")
	r.printf("--------------------------------------------------\n")
	r.printf("  Direction: %s %s\n", trend.Direction, aggregator.GetTrendIndicator(trend.Direction))
	r.printf("  Score: %d → %d (%+d)\n", trend.PreviousScore, trend.CurrentScore, trend.ScoreChange)
	r.printf("  Vulnerabilities: %d → %d (%+d)\n",
		trend.PreviousVulnerabilities,
		trend.CurrentVulnerabilities,
		trend.VulnerabilityChange)
	r.printf("  Financial Risk: %s → %s\n",
		aggregator.FormatINR(trend.PreviousINR),
		aggregator.FormatINR(trend.CurrentINR))
	r.printf("  Compared With: %s\n", formatTimestamp(trend.ComparedWith))
}

// printPlanNotes prints plan-dependent notes
func (r *TextReporter) printPlanNotes(p plan.Plan) {
	banner := plan.Banner(p)
	note := plan.Note(p, plan.ReportDownload)
	if banner == "" && note == "" {
		return
	}

	r.printf("\n")
	if banner != "" {
		r.printf("★ %s\n", banner)
	}
	if note != "" {
		r.printf("  %s\n", note)
	}
}

// printf is a helper to write formatted output
func (r *TextReporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.writer, format, args...)
}

func bar(value, total float64) string {
	n := 0
	if total > 0 {
		n = int(value / total * barWidth)
	}
	if value > 0 && n == 0 {
		n = 1
	}
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}

func formatHours(h float64) string {
	if h == float64(int(h)) {
		return fmt.Sprintf("%dh", int(h))
	}
	return fmt.Sprintf("%.1fh", h)
}
