package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AditthyaSS/VulnExplain/internal/aggregator"
	"github.com/AditthyaSS/VulnExplain/internal/models"
)

var (
	historyLastN  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored audits with score trend",
	Long: `History lists the most recent stored audits with their security score,
risk grade, vulnerability count, and financial risk, followed by a score
sparkline and the change since the previous audit.

Example:
  vulnexplain history
  vulnexplain history --last 30
  vulnexplain history --format json`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLastN, "last", "n", 0,
		"number of audits to list (default from config)")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "text",
		"output format: text or json")
}

type historyEntry struct {
	ID              string                  `json:"id"`
	Timestamp       string                  `json:"timestamp"`
	SecurityScore   int                     `json:"security_score"`
	Grade           aggregator.RiskGrade    `json:"grade"`
	Vulnerabilities int                     `json:"vulnerabilities"`
	Distribution    map[models.Severity]int `json:"distribution"`
	TotalINR        float64                 `json:"total_inr"`
}

type historyResult struct {
	Audits    []historyEntry    `json:"audits"`
	Sparkline []int             `json:"score_sparkline"`
	Trend     *aggregator.Trend `json:"trend,omitempty"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	lastN := historyLastN
	if lastN <= 0 {
		lastN = cfg.LastRuns
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	timestamps, err := store.ListResults()
	if err != nil {
		logError("Failed to list audits: %v", err)
		return err
	}
	if len(timestamps) == 0 {
		printNoAudits()
		return nil
	}

	logVerbose("Found %d stored audits", len(timestamps))

	results, err := store.GetLastNResults(lastN)
	if err != nil {
		logError("Failed to load audits: %v", err)
		return err
	}

	hist := buildHistory(results)

	switch historyFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hist)
	case "text":
		return writeHistoryText(os.Stdout, hist)
	default:
		return fmt.Errorf("unsupported format: %s (use text or json)", historyFormat)
	}
}

// buildHistory summarizes results, oldest first.
func buildHistory(results []*models.AuditResult) historyResult {
	hist := historyResult{
		Audits:    make([]historyEntry, 0, len(results)),
		Sparkline: aggregator.ScoreSparkline(results),
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		hist.Audits = append(hist.Audits, historyEntry{
			ID:              r.ID,
			Timestamp:       r.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			SecurityScore:   r.SecurityScore,
			Grade:           aggregator.Grade(r.SecurityScore),
			Vulnerabilities: len(r.Vulnerabilities),
			Distribution:    aggregator.SeverityDistribution(r.Vulnerabilities),
			TotalINR:        r.DetailedImpact.TotalINR,
		})
	}

	if n := len(results); n >= 2 {
		hist.Trend = aggregator.CalculateTrend(results[n-1], results[n-2])
	}

	return hist
}

func writeHistoryText(w io.Writer, hist historyResult) error {
	p := func(format string, args ...interface{}) {
		_, _ = fmt.Fprintf(w, format, args...)
	}

	p("%-20s  %5s  %-18s  %5s  %s\n", "TIMESTAMP", "SCORE", "GRADE", "VULNS", "FINANCIAL RISK")
	for _, e := range hist.Audits {
		grade := fmt.Sprintf("%s (%s)", e.Grade.Letter, e.Grade.Status)
		p("%-20s  %5d  %-18s  %5d  %s\n", e.Timestamp, e.SecurityScore, grade, e.Vulnerabilities, aggregator.FormatINR(e.TotalINR))
	}

	if len(hist.Sparkline) > 1 {
		p("\nScore Trend: %s\n", aggregator.Sparkline(hist.Sparkline))
	}

	if t := hist.Trend; t != nil {
		p("Since previous audit: %s score %+d, vulnerabilities %+d, financial risk %s → %s\n",
			aggregator.GetTrendIndicator(t.Direction), t.ScoreChange, t.VulnerabilityChange,
			aggregator.FormatINR(t.PreviousINR), aggregator.FormatINR(t.CurrentINR))
	}

	return nil
}
