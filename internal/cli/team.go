package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AditthyaSS/VulnExplain/internal/api"
	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/AditthyaSS/VulnExplain/internal/plan"
)

var (
	teamShare string
	teamLastN int
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Team collaboration: share audit summaries and view activity",
	Long: `Team shows the shared activity timeline of stored audits and shares the
AI summary of the latest audit with a teammate.

Team collaboration is part of the Enterprise plan. On other plans the
command lists what the upgrade unlocks.

Example:
  vulnexplain team
  vulnexplain team --share alice@example.com`,
	RunE: runTeam,
}

func init() {
	teamCmd.Flags().StringVar(&teamShare, "share", "",
		"e-mail address to share the latest audit summary with")
	teamCmd.Flags().IntVarP(&teamLastN, "last", "n", 0,
		"number of audits in the activity timeline (default from config)")
}

func runTeam(cmd *cobra.Command, args []string) error {
	p := currentPlan()
	if !plan.Enabled(p, plan.TeamCollaboration) {
		writeUpgrade(os.Stdout, p)
		if teamShare != "" {
			return &ValidationError{Message: plan.TeamUpgrade}
		}
		return nil
	}

	if teamShare != "" {
		msg, err := api.ShareSummary(teamShare)
		if err != nil {
			return &ValidationError{Message: err.Error()}
		}
		fmt.Println(msg)
		return nil
	}

	lastN := teamLastN
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

	results, err := store.GetLastNResults(lastN)
	if err != nil {
		logError("Failed to load audits: %v", err)
		return err
	}

	writeActivity(os.Stdout, results)
	return nil
}

func writeUpgrade(w io.Writer, p plan.Plan) {
	fmt.Fprintf(w, "Upgrade to Enterprise (current plan: %s)\n\n", p.Title())
	fmt.Fprintln(w, plan.Note(p, plan.TeamCollaboration))
	fmt.Fprintln(w)
	for _, f := range plan.EnterpriseFeatures {
		fmt.Fprintf(w, "  ✓ %s\n", f)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'vulnexplain plan enterprise' to switch plan.")
}

// writeActivity prints the activity timeline, newest first.
func writeActivity(w io.Writer, results []*models.AuditResult) {
	fmt.Fprintln(w, "Activity Timeline")
	fmt.Fprintln(w, "--------------------------------------------------")
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		if r == nil {
			continue
		}
		fmt.Fprintf(w, "  %s  audit %s: score %d, %d vulnerabilities\n",
			r.Timestamp.UTC().Format("2006-01-02 15:04"), shortID(r.ID), r.SecurityScore, len(r.Vulnerabilities))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "-"
	}
	return id
}
