package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AditthyaSS/VulnExplain/internal/aggregator"
	"github.com/AditthyaSS/VulnExplain/internal/assess"
	"github.com/AditthyaSS/VulnExplain/internal/models"
)

var (
	explainFormat string
	explainAt     string
)

var explainScoreCmd = &cobra.Command{
	Use:   "explain-score",
	Short: "Show the security score and financial risk step by step",
	Long: `Explain-score loads the latest stored audit and shows how its numbers
come about:

  1. Findings per severity and the score penalty for each
  2. The formula: score = max(0, 100 - total penalty)
  3. The risk grade and badge thresholds
  4. The financial impact breakdown in INR

Scores reported by the audit service are shown as stored; when they differ
from the local formula both values are listed.

This command requires a previous audit stored with --store.`,
	RunE: runExplainScore,
}

func init() {
	explainScoreCmd.Flags().StringVar(&explainFormat, "format", "text",
		"output format: text or json")
	explainScoreCmd.Flags().StringVar(&explainAt, "at", "",
		"timestamp of the audit to explain (UTC)")
}

// explainResult holds the structured explanation.
type explainResult struct {
	PerSeverity     []severityPenalty      `json:"per_severity"`
	TotalPenalty    int                    `json:"total_penalty"`
	ComputedScore   int                    `json:"computed_score"`
	ReportedScore   int                    `json:"reported_score"`
	Formula         string                 `json:"formula"`
	Grade           aggregator.RiskGrade   `json:"grade"`
	Badge           aggregator.Badge       `json:"badge"`
	GradeThresholds []threshold            `json:"grade_thresholds"`
	BadgeThresholds []threshold            `json:"badge_thresholds"`
	Impact          models.ImpactBreakdown `json:"impact"`
	TotalINR        float64                `json:"total_inr"`
}

type severityPenalty struct {
	Severity models.Severity `json:"severity"`
	Count    int             `json:"count"`
	Penalty  int             `json:"penalty_each"`
	Subtotal int             `json:"subtotal"`
}

type threshold struct {
	Min   int    `json:"min"`
	Label string `json:"label"`
}

func runExplainScore(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to resolve storage path: %w", err)
	}

	result, _, err := loadWithPrevious(store, explainAt)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("no stored audits found. Run 'vulnexplain scan --store' first")
	}

	explanation := buildExplanation(result)

	if explainFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(explanation)
	}

	return writeExplainText(os.Stdout, explanation)
}

func buildExplanation(result *models.AuditResult) explainResult {
	e := explainResult{
		ReportedScore: result.SecurityScore,
		Grade:         aggregator.Grade(result.SecurityScore),
		Badge:         aggregator.BadgeFor(result.SecurityScore),
		GradeThresholds: []threshold{
			{Min: 90, Label: "A (Secure)"},
			{Min: 75, Label: "B (Good)"},
			{Min: 60, Label: "C (Fix Required)"},
			{Min: 40, Label: "D (Fix Required)"},
			{Min: 0, Label: "F (Fix Required)"},
		},
		BadgeThresholds: []threshold{
			{Min: 80, Label: string(aggregator.BadgeGood)},
			{Min: 60, Label: string(aggregator.BadgeFair)},
			{Min: 0, Label: string(aggregator.BadgeAtRisk)},
		},
		Impact:   result.DetailedImpact.Breakdown,
		TotalINR: result.DetailedImpact.TotalINR,
	}

	// unknown labels are penalized like Low
	counts := make(map[models.Severity]int)
	for _, v := range result.Vulnerabilities {
		sev := v.Severity
		if models.Rank(sev) == 0 {
			sev = models.SeverityLow
		}
		counts[sev]++
	}

	for _, sev := range models.Severities {
		n := counts[sev]
		if n == 0 {
			continue
		}
		each := assess.PenaltyFor(sev)
		e.PerSeverity = append(e.PerSeverity, severityPenalty{
			Severity: sev,
			Count:    n,
			Penalty:  each,
			Subtotal: n * each,
		})
		e.TotalPenalty += n * each
	}

	e.ComputedScore = assess.Score(result.Vulnerabilities)
	e.Formula = fmt.Sprintf("max(0, 100 - %d) = %d", e.TotalPenalty, e.ComputedScore)

	return e
}

func writeExplainText(w io.Writer, e explainResult) error {
	p := func(format string, args ...interface{}) {
		_, _ = fmt.Fprintf(w, format, args...)
	}

	p("Security Score Breakdown\n")
	p("========================\n\n")

	// Step 1: penalties
	p("1. Penalty per finding:\n")
	if len(e.PerSeverity) == 0 {
		p("   no findings\n")
	}
	for _, sp := range e.PerSeverity {
		p("   %-10s  %d × %d = %d\n", sp.Severity, sp.Count, sp.Penalty, sp.Subtotal)
	}
	p("   %-10s  %d\n\n", "total", e.TotalPenalty)

	// Step 2: formula
	p("2. Formula:\n")
	p("   score = max(0, 100 - total penalty)\n")
	p("   score = %s\n", e.Formula)
	if e.ComputedScore != e.ReportedScore {
		p("   reported by audit service: %d\n", e.ReportedScore)
	}
	p("\n")

	// Step 3: thresholds
	gradeLabel := fmt.Sprintf("%s (%s)", e.Grade.Letter, e.Grade.Status)
	p("3. Risk grade thresholds:\n")
	for _, t := range e.GradeThresholds {
		marker := "  "
		if t.Label == gradeLabel {
			marker = "→ "
		}
		p("   %s≥ %2d  %s\n", marker, t.Min, t.Label)
	}
	p("   Badge thresholds:\n")
	for _, t := range e.BadgeThresholds {
		marker := "  "
		if t.Label == string(e.Badge) {
			marker = "→ "
		}
		p("   %s≥ %2d  %s\n", marker, t.Min, t.Label)
	}
	p("\n")

	// Step 4: impact
	p("4. Financial impact:\n")
	p("   %-12s  %s\n", "Fix Costs", aggregator.FormatINR(e.Impact.FixCost))
	p("   %-12s  %s\n", "Downtime", aggregator.FormatINR(e.Impact.Downtime))
	p("   %-12s  %s\n", "Legal/Fines", aggregator.FormatINR(e.Impact.RegulatoryFines))
	p("   %-12s  %s\n", "Reputation", aggregator.FormatINR(e.Impact.Reputation))
	p("   %-12s  %s\n\n", "Total", aggregator.FormatINR(e.TotalINR))

	p("Result: %d/100, grade %s, %s\n", e.ReportedScore, gradeLabel, e.Badge)
	return nil
}
