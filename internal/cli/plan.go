package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AditthyaSS/VulnExplain/internal/config"
	"github.com/AditthyaSS/VulnExplain/internal/plan"
	"github.com/AditthyaSS/VulnExplain/internal/tui"
)

var planFormat string

var planCmd = &cobra.Command{
	Use:   "plan [starter|pro|enterprise]",
	Short: "Show or change the subscription plan",
	Long: `Plan shows the current subscription plan and what it unlocks. With an
argument it switches plan and writes the choice to your config file.

  starter     PDF export shown with an upgrade note
  pro         PDF export without notes
  enterprise  adds team collaboration (share audit summaries)

Example:
  vulnexplain plan
  vulnexplain plan enterprise`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark]",
	Short: "Show or change the dashboard theme",
	Long: `Theme shows the dashboard color theme. With an argument it switches
theme and writes the choice to your config file.

Example:
  vulnexplain theme dark`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTheme,
}

func init() {
	planCmd.Flags().StringVar(&planFormat, "format", "text",
		"output format: text or json")
}

type planResult struct {
	Plan       plan.Plan `json:"plan"`
	Team       bool      `json:"team_collaboration"`
	Notes      []string  `json:"notes,omitempty"`
	ConfigPath string    `json:"config_path,omitempty"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	current := currentPlan()
	var written string

	if len(args) == 1 {
		p, err := plan.Parse(args[0])
		if err != nil {
			return &ValidationError{Message: err.Error()}
		}

		written = preferencePath()
		if err := config.WritePreference("plan", string(p), written); err != nil {
			logError("Failed to write config: %v", err)
			return err
		}
		cfg.Plan = string(p)
		current = p
	}

	result := describePlan(current)
	result.ConfigPath = written

	if planFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return writePlanText(os.Stdout, result)
}

func describePlan(p plan.Plan) planResult {
	result := planResult{
		Plan: p,
		Team: plan.Enabled(p, plan.TeamCollaboration),
	}
	if b := plan.Banner(p); b != "" {
		result.Notes = append(result.Notes, b)
	}
	if n := plan.Note(p, plan.ReportDownload); n != "" {
		result.Notes = append(result.Notes, n)
	}
	return result
}

func writePlanText(w io.Writer, result planResult) error {
	fmt.Fprintf(w, "Plan: %s\n", result.Plan.Title())

	team := "not included"
	if result.Team {
		team = "included"
	}
	fmt.Fprintf(w, "PDF reports: included\n")
	fmt.Fprintf(w, "Team collaboration: %s\n", team)

	for _, n := range result.Notes {
		fmt.Fprintf(w, "  %s\n", n)
	}
	if result.ConfigPath != "" {
		fmt.Fprintf(w, "Config written to %s\n", result.ConfigPath)
	}
	return nil
}

func runTheme(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Printf("Theme: %s\n", cfg.Theme)
		return nil
	}

	theme := args[0]
	if theme != tui.ThemeLight && theme != tui.ThemeDark {
		return &ValidationError{Message: fmt.Sprintf("invalid theme: %s (use light or dark)", theme)}
	}

	path := preferencePath()
	if err := config.WritePreference("theme", theme, path); err != nil {
		logError("Failed to write config: %v", err)
		return err
	}
	cfg.Theme = theme

	fmt.Printf("Theme: %s\n", theme)
	fmt.Printf("Config written to %s\n", path)
	return nil
}
