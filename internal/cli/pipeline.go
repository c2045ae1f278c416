package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AditthyaSS/VulnExplain/internal/apiclient"
	"github.com/AditthyaSS/VulnExplain/internal/config"
	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/AditthyaSS/VulnExplain/internal/plan"
	"github.com/AditthyaSS/VulnExplain/internal/policy"
	"github.com/AditthyaSS/VulnExplain/internal/reporter"
	"github.com/AditthyaSS/VulnExplain/internal/storage"
)

// PipelineConfig holds options for the shared result pipeline.
type PipelineConfig struct {
	Format      string
	Output      string
	Store       bool
	StorageDir  string
	Threshold   int
	PolicyPath  string
	Plan        plan.Plan
	Chart       models.ChartView
	SummaryOnly bool
}

// RunPipeline takes a finished audit result through
// trend → store → output → policy → threshold check.
func RunPipeline(result *models.AuditResult, pcfg PipelineConfig) error {
	if result == nil {
		return fmt.Errorf("no audit result")
	}

	logVerbose("Audit %s: score %d, %d vulnerabilities", result.ID, result.SecurityScore, len(result.Vulnerabilities))

	// Step 1: Load the previous result for trend analysis
	var previous *models.AuditResult
	var store *storage.LocalStorage
	if pcfg.Store {
		storagePath, err := getStoragePath(pcfg.StorageDir)
		if err != nil {
			logError("Failed to get storage path: %v", err)
			return err
		}

		store = storage.NewLocal(storagePath)

		if prev, err := store.GetLatestResult(); err == nil {
			logVerbose("Found previous audit from %s", prev.Timestamp)
			previous = prev
		} else {
			logDebug("No previous audit found: %v", err)
		}
	}

	// Step 2: Store if enabled
	if store != nil {
		if err := store.EnsureDirectoryExists(); err != nil {
			logError("Failed to create storage directory: %v", err)
			return err
		}

		if err := store.SaveResult(result); err != nil {
			logError("Failed to store result: %v", err)
			return err
		}

		logVerbose("Stored result in: %s", store.GetStoragePath())
	}

	// Step 3: Generate output
	chart := pcfg.Chart
	if chart == "" {
		chart = models.ChartFinancial
	}
	report := reporter.NewReport(result, previous, pcfg.Plan, chart)

	if err := generateOutput(report, pcfg.Format, pcfg.Output, pcfg.SummaryOnly); err != nil {
		logError("Failed to generate output: %v", err)
		return err
	}

	// Step 4: Policy enforcement (if .vulnexplain-policy.yaml exists)
	if err := checkPolicy(result, pcfg.PolicyPath); err != nil {
		return err
	}

	// Step 5: Check threshold
	if pcfg.Threshold > 0 && len(result.Vulnerabilities) > pcfg.Threshold {
		logError("Vulnerability count (%d) exceeds threshold (%d)", len(result.Vulnerabilities), pcfg.Threshold)
		return &PolicyViolationError{
			VulnerabilityCount: len(result.Vulnerabilities),
			Threshold:          pcfg.Threshold,
		}
	}

	return nil
}

// checkPolicy evaluates result against the policy at path, or the nearest
// policy file when path is empty.
func checkPolicy(result *models.AuditResult, path string) error {
	if path == "" {
		path = policy.FindPolicyFile()
	}
	if path == "" {
		return nil
	}

	logVerbose("Found policy file: %s", path)

	pol, err := policy.LoadFromFile(path)
	if err != nil {
		logError("Failed to load policy: %v", err)
		return err
	}
	if pol == nil {
		return nil
	}

	outcome := pol.Evaluate(result)
	if !outcome.Pass {
		for _, v := range outcome.Violations {
			logError("Policy violation [%s]: %s", v.Rule, v.Message)
		}
		return &PolicyViolationError{
			VulnerabilityCount: len(result.Vulnerabilities),
			Violations:         outcome.Violations,
		}
	}

	logVerbose("Policy check passed")
	return nil
}

// generateOutput generates the output in the specified format(s).
func generateOutput(report *reporter.Report, format, outputPath string, summaryOnly bool) error {
	var writer *os.File
	if outputPath == "" {
		writer = os.Stdout
	} else {
		var err error
		writer, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = writer.Close() }()
	}

	writeJSON := func(f *os.File) error {
		jsonReporter := reporter.NewJSONReporter(f, true)
		if summaryOnly {
			return jsonReporter.GenerateSummaryOnly(report)
		}
		return jsonReporter.Generate(report)
	}

	switch format {
	case "text":
		textReporter := reporter.NewTextReporter(writer)
		return textReporter.Generate(report)

	case "json":
		return writeJSON(writer)

	case "both":
		if outputPath == "" {
			textReporter := reporter.NewTextReporter(os.Stdout)
			if err := textReporter.Generate(report); err != nil {
				return err
			}

			jsonFile, err := os.Create("vulnexplain-report.json")
			if err != nil {
				return fmt.Errorf("failed to create JSON file: %w", err)
			}
			defer func() { _ = jsonFile.Close() }()

			return writeJSON(jsonFile)
		}

		textReporter := reporter.NewTextReporter(writer)
		if err := textReporter.Generate(report); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(writer, "\n=== JSON Output ===\n\n"); err != nil {
			return err
		}

		return writeJSON(writer)

	default:
		return fmt.Errorf("unsupported format: %s (use text, json, or both)", format)
	}
}

// getStoragePath resolves the storage path, expanding ~ and converting to absolute.
func getStoragePath(storageDir string) (string, error) {
	if len(storageDir) >= 2 && storageDir[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		storageDir = filepath.Join(home, storageDir[2:])
	}

	absPath, err := filepath.Abs(storageDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

// openStore opens the configured result store.
func openStore() (*storage.LocalStorage, error) {
	storagePath, err := getStoragePath(cfg.StorageDir)
	if err != nil {
		logError("Failed to get storage path: %v", err)
		return nil, err
	}
	logDebug("storage: %s", storagePath)
	return storage.NewLocal(storagePath), nil
}

// newClient builds the audit service client from config. It is nil when no
// api_url is configured.
func newClient() *apiclient.Client {
	return apiclient.New(cfg.APIURL, cfg.Timeout)
}

// currentPlan returns the configured plan, falling back to the default for
// values that do not parse.
func currentPlan() plan.Plan {
	p, err := plan.Parse(cfg.Plan)
	if err != nil {
		logDebug("ignoring plan %q: %v", cfg.Plan, err)
		return plan.Default
	}
	return p
}

// preferencePath is the config file plan and theme changes are written to:
// the --config flag, else the file the running config was read from, else
// the first location the loader would pick up.
func preferencePath() string {
	if configFile != "" {
		return configFile
	}
	if cfg != nil && cfg.Source != "" {
		return cfg.Source
	}
	return config.ConfigPath()
}
