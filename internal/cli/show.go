package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AditthyaSS/VulnExplain/internal/aggregator"
	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/AditthyaSS/VulnExplain/internal/reporter"
	"github.com/AditthyaSS/VulnExplain/internal/storage"
)

var (
	showAt          string
	showFormat      string
	showOutput      string
	showChart       string
	showCompare     bool
	showSummaryOnly bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a stored audit result",
	Long: `Show prints the latest stored audit (or the one taken at --at) with its
risk grade, severity breakdown, financial impact, grouped findings, and
recommended actions. The previous stored audit is used for the trend.

Use --compare for a short comparison of the two most recent audits.

Example:
  vulnexplain show
  vulnexplain show --chart severity
  vulnexplain show --at "2026-02-15 10:00:00" --format json
  vulnexplain show --compare`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showAt, "at", "",
		"timestamp of the audit to show, as listed by history (UTC)")
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "",
		"output format: text, json, or both (default from config)")
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "",
		"write output to file")
	showCmd.Flags().StringVar(&showChart, "chart", string(models.ChartFinancial),
		"chart view: financial or severity")
	showCmd.Flags().BoolVarP(&showCompare, "compare", "c", false,
		"compare the latest audit with the previous one")
	showCmd.Flags().BoolVar(&showSummaryOnly, "summary-only", false,
		"omit finding details from JSON output")
}

func runShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	if showCompare {
		return runComparisonReport(store)
	}

	chart, err := parseChart(showChart)
	if err != nil {
		return err
	}

	format := showFormat
	if format == "" {
		format = cfg.Format
	}

	result, previous, err := loadWithPrevious(store, showAt)
	if err != nil {
		return err
	}
	if result == nil {
		printNoAudits()
		return nil
	}

	report := reporter.NewReport(result, previous, currentPlan(), chart)
	return generateOutput(report, format, showOutput, showSummaryOnly)
}

// loadWithPrevious returns the audit taken at the given time (the latest
// when empty) and the stored audit just before it. result is nil when
// nothing is stored.
func loadWithPrevious(store storage.Storage, at string) (result, previous *models.AuditResult, err error) {
	timestamps, err := store.ListResults()
	if err != nil {
		logError("Failed to list audits: %v", err)
		return nil, nil, err
	}
	if len(timestamps) == 0 {
		return nil, nil, nil
	}

	idx := len(timestamps) - 1
	if at != "" {
		want, err := parseTimestamp(at)
		if err != nil {
			return nil, nil, err
		}
		idx = -1
		for i, ts := range timestamps {
			// a whole-second time matches every audit stored within that
			// second; the latest one wins
			if ts.Equal(want) || (want.Nanosecond() == 0 && ts.Truncate(time.Second).Equal(want)) {
				idx = i
			}
		}
		if idx < 0 {
			return nil, nil, &ValidationError{Message: fmt.Sprintf("no stored audit at %s", at)}
		}
	}

	result, err = store.LoadResult(timestamps[idx])
	if err != nil {
		logError("Failed to load audit: %v", err)
		return nil, nil, err
	}

	if idx > 0 {
		if prev, err := store.LoadResult(timestamps[idx-1]); err == nil {
			previous = prev
		} else {
			logDebug("Previous audit unreadable: %v", err)
		}
	}

	return result, previous, nil
}

// parseTimestamp accepts the history listing format or RFC 3339.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02T15-04-05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ValidationError{Message: fmt.Sprintf("invalid timestamp %q (use \"2006-01-02 15:04:05\")", s)}
}

// runComparisonReport prints the comparison between the latest and previous audits
func runComparisonReport(store storage.Storage) error {
	results, err := store.GetLastNResults(2)
	if err != nil || len(results) < 2 {
		fmt.Println("Need at least 2 stored audits for comparison.")
		fmt.Println("Run 'vulnexplain scan --store' to store more audits.")
		return nil
	}

	previous := results[0]
	current := results[1]

	logVerbose("Comparing %s vs %s", current.Timestamp, previous.Timestamp)

	fmt.Print(aggregator.GenerateComparisonReport(current, previous))
	return nil
}

func printNoAudits() {
	fmt.Println("No stored audits found.")
	fmt.Println("Run 'vulnexplain scan --store' to store your first audit.")
}
