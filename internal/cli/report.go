package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AditthyaSS/VulnExplain/internal/apiclient"
	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/AditthyaSS/VulnExplain/internal/plan"
	"github.com/AditthyaSS/VulnExplain/internal/storage"
	"github.com/AditthyaSS/VulnExplain/internal/tui"
)

var (
	reportAt       string
	reportFilename string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Download a PDF report for a stored audit",
	Long: `Report sends the latest stored audit (or the one at --at) to the report
generator and saves the returned PDF under <storage_dir>/reports/.

The PDF is checked to be readable before it is written. A failed download
leaves the stored audit untouched.

Example:
  vulnexplain report
  vulnexplain report --at "2026-02-15 10:00:00" --name q1-audit.pdf`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportAt, "at", "",
		"timestamp of the audit to report on (UTC)")
	reportCmd.Flags().StringVar(&reportFilename, "name", apiclient.ReportFilename,
		"file name of the saved report")
}

func runReport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	result, _, err := loadWithPrevious(store, reportAt)
	if err != nil {
		return err
	}
	if result == nil {
		printNoAudits()
		return nil
	}

	client := newClient()
	if client == nil {
		return &ValidationError{Message: "api_url is not configured (set it in vulnexplain.yaml or VULNEXPLAIN_API_URL)"}
	}

	path, err := downloadReport(context.Background(), client, store, result, reportFilename)
	if err != nil {
		logError("Report generation failed: %v", err)
		return err
	}

	fmt.Printf("Report saved to %s\n", path)
	if note := plan.Note(currentPlan(), plan.ReportDownload); note != "" {
		fmt.Fprintln(os.Stderr, note)
	}
	return nil
}

// downloadReport asks gen for a PDF of result and stores it under name.
func downloadReport(ctx context.Context, gen tui.ReportGenerator, store storage.Storage, result *models.AuditResult, name string) (string, error) {
	logVerbose("Requesting report for audit %s", result.ID)

	data, err := gen.GenerateReport(ctx, result)
	if err != nil {
		return "", err
	}

	logDebug("report: %d bytes", len(data))

	return store.SaveReport(data, name)
}
