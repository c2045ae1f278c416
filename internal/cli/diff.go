package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AditthyaSS/VulnExplain/internal/aggregator"
	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/AditthyaSS/VulnExplain/internal/validator"
)

var (
	diffFormat   string
	diffOutput   string
	diffBaseline string
	diffFailNew  bool
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show what changed between two audits",
	Long: `Compare the latest stored audit against a baseline to show drift.

Shows new vulnerabilities, resolved vulnerabilities, and score and
financial risk deltas between two audits. Useful in CI/CD to catch
regressions introduced by a pull request.

By default compares the two most recent stored audits. Use --baseline to
specify an audit result JSON file as the comparison target.

Exit codes:
  0  No new vulnerabilities (or --fail-new not set)
  1  New vulnerabilities detected (with --fail-new)

Example:
  vulnexplain diff
  vulnexplain diff --fail-new
  vulnexplain diff --baseline ./baseline.json --format json`,
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVarP(&diffFormat, "format", "f", "text",
		"output format: text or json")
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", "",
		"write output to file instead of stdout")
	diffCmd.Flags().StringVar(&diffBaseline, "baseline", "",
		"path to baseline audit JSON (default: previous stored audit)")
	diffCmd.Flags().BoolVar(&diffFailNew, "fail-new", false,
		"exit 1 if new vulnerabilities are found (for CI gating)")
}

// DiffResult is the structured output of a diff operation.
type DiffResult struct {
	Baseline      string                 `json:"baseline"`
	Current       string                 `json:"current"`
	NewVulns      []models.Vulnerability `json:"new_vulnerabilities"`
	ResolvedVulns []models.Vulnerability `json:"resolved_vulnerabilities"`
	Summary       DiffSummary            `json:"summary"`
}

// DiffSummary holds aggregate counts for a diff.
type DiffSummary struct {
	BaselineTotal int                     `json:"baseline_total"`
	CurrentTotal  int                     `json:"current_total"`
	NewCount      int                     `json:"new_count"`
	ResolvedCount int                     `json:"resolved_count"`
	Delta         int                     `json:"delta"` // positive = more vulnerabilities
	ScoreChange   int                     `json:"score_change"`
	INRChange     float64                 `json:"inr_change"`
	NewBySeverity map[models.Severity]int `json:"new_by_severity"`
	NewByCategory map[string]int          `json:"new_by_category"`
}

func runDiff(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	// Load current (latest) audit.
	current, err := store.GetLatestResult()
	if err != nil {
		logError("No current audit found: %v", err)
		fmt.Println("No stored audits found. Run 'vulnexplain scan --store' first.")
		return err
	}

	// Load baseline.
	var baseline *models.AuditResult
	if diffBaseline != "" {
		baseline, err = loadResultFromFile(diffBaseline)
		if err != nil {
			logError("Failed to load baseline: %v", err)
			return err
		}
	} else {
		results, err := store.GetLastNResults(2)
		if err != nil || len(results) < 2 {
			fmt.Println("Need at least 2 stored audits for diff.")
			fmt.Println("Run 'vulnexplain scan --store' to store more audits.")
			return nil
		}
		baseline = results[0]
	}

	logVerbose("Comparing %s (current) vs %s (baseline)",
		current.Timestamp.Format("2006-01-02 15:04"),
		baseline.Timestamp.Format("2006-01-02 15:04"))

	result := computeDiff(baseline, current)

	if err := outputDiff(result, diffFormat, diffOutput); err != nil {
		return err
	}

	// CI gate.
	if diffFailNew && result.Summary.NewCount > 0 {
		return &PolicyViolationError{
			VulnerabilityCount: result.Summary.NewCount,
			Threshold:          0,
		}
	}

	return nil
}

// vulnKey identifies a finding across audits.
func vulnKey(v models.Vulnerability) string {
	return v.CategoryOrDefault() + "|" + strings.ToLower(strings.TrimSpace(v.Location)) + "|" + v.Title
}

// computeDiff calculates new and resolved vulnerabilities between baseline
// and current. Both lists keep the order of their source audit.
func computeDiff(baseline, current *models.AuditResult) *DiffResult {
	baseSet := make(map[string]bool, len(baseline.Vulnerabilities))
	for _, v := range baseline.Vulnerabilities {
		baseSet[vulnKey(v)] = true
	}

	currSet := make(map[string]bool, len(current.Vulnerabilities))
	for _, v := range current.Vulnerabilities {
		currSet[vulnKey(v)] = true
	}

	var newVulns, resolvedVulns []models.Vulnerability
	for _, v := range current.Vulnerabilities {
		if !baseSet[vulnKey(v)] {
			newVulns = append(newVulns, v)
		}
	}
	for _, v := range baseline.Vulnerabilities {
		if !currSet[vulnKey(v)] {
			resolvedVulns = append(resolvedVulns, v)
		}
	}

	newByCategory := map[string]int{}
	for _, v := range newVulns {
		newByCategory[v.CategoryOrDefault()]++
	}

	return &DiffResult{
		Baseline:      baseline.Timestamp.Format("2006-01-02 15:04:05"),
		Current:       current.Timestamp.Format("2006-01-02 15:04:05"),
		NewVulns:      newVulns,
		ResolvedVulns: resolvedVulns,
		Summary: DiffSummary{
			BaselineTotal: len(baseline.Vulnerabilities),
			CurrentTotal:  len(current.Vulnerabilities),
			NewCount:      len(newVulns),
			ResolvedCount: len(resolvedVulns),
			Delta:         len(current.Vulnerabilities) - len(baseline.Vulnerabilities),
			ScoreChange:   current.SecurityScore - baseline.SecurityScore,
			INRChange:     current.DetailedImpact.TotalINR - baseline.DetailedImpact.TotalINR,
			NewBySeverity: aggregator.SeverityDistribution(newVulns),
			NewByCategory: newByCategory,
		},
	}
}

// outputDiff renders the diff result to the chosen format.
func outputDiff(result *DiffResult, format, outputPath string) error {
	var writer *os.File
	if outputPath != "" {
		var err error
		writer, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = writer.Close() }()
	} else {
		writer = os.Stdout
	}

	switch format {
	case "json":
		enc := json.NewEncoder(writer)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "text":
		return printDiffText(writer, result)
	default:
		return fmt.Errorf("unsupported format: %s (use text or json)", format)
	}
}

func printDiffText(w io.Writer, r *DiffResult) error {
	p := func(format string, args ...interface{}) {
		_, _ = fmt.Fprintf(w, format, args...)
	}

	p("╔════════════════════════════════════════════╗\n")
	p("║          VulnExplain Audit Drift           ║\n")
	p("╚════════════════════════════════════════════╝\n\n")

	p("Baseline: %s\n", r.Baseline)
	p("Current:  %s\n\n", r.Current)

	p("Vulnerabilities: %d → %d (%+d)\n", r.Summary.BaselineTotal, r.Summary.CurrentTotal, r.Summary.Delta)
	p("Security Score:  %+d\n", r.Summary.ScoreChange)
	sign := "+"
	inr := r.Summary.INRChange
	if inr < 0 {
		sign = "-"
		inr = -inr
	}
	p("Financial Risk:  %s%s\n", sign, aggregator.FormatINR(inr))
	p("New: %d   Resolved: %d\n\n", r.Summary.NewCount, r.Summary.ResolvedCount)

	if len(r.NewVulns) > 0 {
		p("New Vulnerabilities:\n")
		p("--------------------------------------------------\n")
		for _, v := range r.NewVulns {
			p("  [%s] %s: %s\n", strings.ToUpper(string(v.Severity)), v.CategoryOrDefault(), v.Title)
			if v.Location != "" {
				p("         %s\n", v.Location)
			}
		}
		p("\n")
	}

	if len(r.ResolvedVulns) > 0 {
		p("Resolved Vulnerabilities:\n")
		p("--------------------------------------------------\n")
		for _, v := range r.ResolvedVulns {
			p("  ✓ %s: %s\n", v.CategoryOrDefault(), v.Title)
		}
		p("\n")
	}

	if len(r.Summary.NewBySeverity) > 0 {
		p("New by Severity:\n")
		for _, sc := range aggregator.SortedDistribution(r.Summary.NewBySeverity) {
			p("  %s: %d\n", sc.Severity, sc.Count)
		}
		p("\n")
	}

	if r.Summary.NewCount == 0 && r.Summary.ResolvedCount == 0 {
		p("No drift detected.\n")
	} else if r.Summary.NewCount == 0 {
		p("No new vulnerabilities, only fixes.\n")
	}

	return nil
}

// loadResultFromFile loads and validates an AuditResult from a JSON file path.
func loadResultFromFile(path string) (*models.AuditResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	result, err := validator.New().ValidateAuditResult(data)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	return result, nil
}
