package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/AditthyaSS/VulnExplain/internal/aggregator"
	"github.com/AditthyaSS/VulnExplain/internal/config"
	"github.com/AditthyaSS/VulnExplain/internal/scan"
	"github.com/AditthyaSS/VulnExplain/internal/tui"
)

var (
	dashboardNew   bool
	dashboardStore bool
	dashboardAt    string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive audit dashboard",
	Long: `Dashboard opens a full-screen terminal UI.

With stored audits it opens on the latest result: score strip with risk
grade and animated financial risk, financial or severity chart, grouped or
flat finding list with expandable details, search, severity filter, team
panel, and PDF report download.

With --new, or when nothing is stored, it opens the input form for a code
snippet, GitHub repository, or file upload.

Key bindings:
  ctrl+s  submit audit        tab  switch source
  v       grouped/flat view   c    financial/severity chart
  enter   expand/collapse     /    search
  s       cycle severity      d    download PDF report
  t       team panel          p    cycle plan
  T       toggle theme        n    new audit
  q       quit`,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashboardNew, "new", false,
		"start with the input form instead of the latest audit")
	dashboardCmd.Flags().BoolVar(&dashboardStore, "store", true,
		"persist audits run from the dashboard")
	dashboardCmd.Flags().StringVar(&dashboardAt, "at", "",
		"open the stored audit taken at this time (UTC)")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return tui.ErrNoTerminal
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	opts := tui.Options{
		Storage:     store,
		SaveResults: dashboardStore,
		Plan:        currentPlan(),
		Theme:       cfg.Theme,
		Timing:      scan.Timing{Timeout: cfg.Timeout},
		SavePreference: func(key, value string) error {
			return config.WritePreference(key, value, preferencePath())
		},
		ReadFile: os.ReadFile,
	}

	// A nil *Client stored in an interface is not a nil interface.
	if client := newClient(); client != nil {
		opts.Auditor = client
		opts.Reports = client
		logVerbose("Audit service: %s", client.BaseURL())
	}

	if !dashboardNew {
		result, previous, err := loadWithPrevious(store, dashboardAt)
		if err != nil {
			return err
		}
		opts.Result = result
		opts.Previous = previous

		if results, err := store.GetLastNResults(cfg.LastRuns); err == nil {
			opts.History = aggregator.ScoreSparkline(results)
		}
	}

	logDebug("dashboard: plan=%s theme=%s result=%t", opts.Plan, opts.Theme, opts.Result != nil)

	return tui.Run(opts)
}
