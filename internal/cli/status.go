package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AditthyaSS/VulnExplain/internal/plan"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show plan, theme, and configuration",
	Long: `Status displays the current VulnExplain configuration: the audit service
the CLI talks to, the subscription plan and its features, the dashboard
theme, and where audits are stored.

Example:
  vulnexplain status
  vulnexplain status --format json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "text",
		"output format: text or json")
}

type statusResult struct {
	Plan       statusPlan   `json:"plan"`
	Config     statusConfig `json:"config"`
	ConfigFile string       `json:"config_file"`
	Audits     int          `json:"stored_audits"`
}

type statusPlan struct {
	Name       plan.Plan `json:"name"`
	Title      string    `json:"title"`
	PDFReports bool      `json:"pdf_reports"`
	Team       bool      `json:"team_collaboration"`
	Banner     string    `json:"banner,omitempty"`
}

type statusConfig struct {
	APIURL        string `json:"api_url"`
	Timeout       string `json:"timeout"`
	StorageDir    string `json:"storage_dir"`
	Format        string `json:"format"`
	Theme         string `json:"theme"`
	FailThreshold int    `json:"fail_threshold"`
	HasToken      bool   `json:"has_github_token"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	result := buildStatus()

	if store, err := openStore(); err == nil {
		if timestamps, err := store.ListResults(); err == nil {
			result.Audits = len(timestamps)
		} else {
			logDebug("Failed to list audits: %v", err)
		}
	}

	if statusFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return writeStatusText(os.Stdout, result)
}

func buildStatus() statusResult {
	p := currentPlan()
	return statusResult{
		Plan: statusPlan{
			Name:        p,
			Title:       p.Title(),
			PDFReports:  plan.Enabled(p, plan.ReportDownload),
			Team:        plan.Enabled(p, plan.TeamCollaboration),
			Banner:      plan.Banner(p),
		},
		Config: statusConfig{
			APIURL:        cfg.APIURL,
			Timeout:       cfg.Timeout.String(),
			StorageDir:    cfg.StorageDir,
			Format:        cfg.Format,
			Theme:         cfg.Theme,
			FailThreshold: cfg.FailThreshold,
			HasToken:      cfg.GitHubToken != "",
		},
		ConfigFile: preferencePath(),
	}
}

func writeStatusText(w io.Writer, result statusResult) error {
	fmt.Fprintf(w, "Plan:     %s\n", result.Plan.Title)
	if result.Plan.Team {
		fmt.Fprintln(w, "          team collaboration included")
	}
	if result.Plan.Banner != "" {
		fmt.Fprintf(w, "          %s\n", result.Plan.Banner)
	}

	if result.Config.APIURL != "" {
		fmt.Fprintf(w, "API:      %s (timeout %s)\n", result.Config.APIURL, result.Config.Timeout)
	} else {
		fmt.Fprintln(w, "API:      not configured")
	}
	fmt.Fprintf(w, "Theme:    %s\n", result.Config.Theme)
	fmt.Fprintf(w, "Format:   %s\n", result.Config.Format)
	fmt.Fprintf(w, "Storage:  %s (%d audits)\n", result.Config.StorageDir, result.Audits)
	if result.Config.FailThreshold > 0 {
		fmt.Fprintf(w, "Fail at:  more than %d vulnerabilities\n", result.Config.FailThreshold)
	}
	fmt.Fprintf(w, "Config:   %s\n", result.ConfigFile)

	return nil
}
