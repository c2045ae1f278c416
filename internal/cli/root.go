package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AditthyaSS/VulnExplain/internal/config"
	"github.com/AditthyaSS/VulnExplain/internal/policy"
)

const (
	ExitOK           = 0 // Success
	ExitPolicyFail   = 1 // Vulnerabilities exceed threshold or policy
	ExitInvalidInput = 2 // Empty input, bad URL, unparseable findings
	ExitRuntimeError = 3 // Audit service, I/O, or runtime error
)

var (
	// Global config instance
	cfg *config.Config

	// Global flags
	configFile string
	verbose    bool
	debug      bool

	// set from main via ldflags
	buildVersion = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vulnexplain",
	Short: "VulnExplain - security audit results for engineers and executives",
	Long: `VulnExplain submits code, files, or GitHub repositories to an audit service
and turns the findings into a risk grade, a severity breakdown, a financial
impact estimate in INR, and a prioritized remediation list.

It provides:
- An interactive dashboard with grouped and flat finding views
- Trend analysis across stored audits
- PDF report download
- CI/CD integration with exit codes and policy files

Quick start:
  vulnexplain doctor
  vulnexplain scan --repo https://github.com/org/app --store
  vulnexplain dashboard

Other commands:
  vulnexplain scan --findings findings.json --format json
  vulnexplain history
  vulnexplain diff --fail-new
  vulnexplain export --format sarif
  vulnexplain plan pro`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		var err error
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with flags if provided
		if verbose {
			cfg.Verbose = true
		}
		if debug {
			cfg.Debug = true
		}

		logDebug("config: api_url=%s storage_dir=%s plan=%s theme=%s", cfg.APIURL, cfg.StorageDir, cfg.Plan, cfg.Theme)
		return nil
	},
}

// Execute runs the root command and exits with the code HandleError picks.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(finish(err))
	}
}

// finish prints err unless a command already logged the failure and returns
// the exit code for it.
func finish(err error) int {
	if err != nil && !errorLogged {
		logError("%v", err)
	}
	return HandleError(err)
}

// SetVersion records the build version shown by the version command.
func SetVersion(v string) {
	if v != "" {
		buildVersion = v
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./vulnexplain.yaml or ~/vulnexplain.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"debug mode (very verbose)")

	// Add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(explainScoreCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("VulnExplain %s\n", buildVersion)
		fmt.Println("Security audit results for engineers and executives")
	},
}

// HandleError determines the appropriate exit code for an error
func HandleError(err error) int {
	if err == nil {
		return ExitOK
	}

	var validationErr *ValidationError
	var policyErr *PolicyViolationError
	switch {
	case errors.As(err, &validationErr):
		return ExitInvalidInput
	case errors.As(err, &policyErr):
		return ExitPolicyFail
	default:
		return ExitRuntimeError
	}
}

// ValidationError represents input rejected before anything is sent
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PolicyViolationError is returned when an audit result breaks the fail
// threshold or a rule of the policy file.
type PolicyViolationError struct {
	VulnerabilityCount int
	Threshold          int
	Violations         []policy.Violation
}

func (e *PolicyViolationError) Error() string {
	if len(e.Violations) > 0 {
		rules := make([]string, 0, len(e.Violations))
		for _, v := range e.Violations {
			rules = append(rules, v.Rule)
		}
		return fmt.Sprintf("policy violated (%s)", strings.Join(rules, ", "))
	}
	return fmt.Sprintf("vulnerability count (%d) exceeds threshold (%d)", e.VulnerabilityCount, e.Threshold)
}

// logVerbose prints a message if verbose mode is enabled
func logVerbose(format string, args ...interface{}) {
	if cfg != nil && cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[INFO] "+format+"\n", args...)
	}
}

// logDebug prints a message if debug mode is enabled
func logDebug(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// errorLogged is set once logError has run, so finish does not report the
// same failure again.
var errorLogged bool

// logError prints an error message
func logError(format string, args ...interface{}) {
	errorLogged = true
	fmt.Fprintf(os.Stderr, "[ERROR] "+format+"\n", args...)
}
