package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/AditthyaSS/VulnExplain/internal/api"
	"github.com/AditthyaSS/VulnExplain/internal/assess"
	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/AditthyaSS/VulnExplain/internal/scan"
	"github.com/AditthyaSS/VulnExplain/internal/tui"
)

var (
	scanCode        string
	scanLanguage    string
	scanFile        string
	scanRepo        string
	scanFindings    string
	scanFormat      string
	scanOutput      string
	scanStore       bool
	scanThreshold   int
	scanPolicy      string
	scanChart       string
	scanSummaryOnly bool
	scanQuiet       bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Audit a code snippet, source file, or GitHub repository",
	Long: `Scan submits one source to the audit service and prints the result:

  --code      a code snippet ("-" reads it from stdin)
  --file      a single source file (.js .py .java .cpp .c .go .rb .php .ts .jsx .tsx)
  --repo      a public GitHub repository URL
  --findings  a JSON list of raw findings, assessed locally without the service

While the audit runs, the scan phases are shown on stderr. Use --store to
keep the result for history, trends, and the dashboard.

Exit codes:
  0  Audit completed within threshold and policy
  1  Vulnerabilities exceed --fail-threshold or the policy file
  2  Invalid input (nothing sent)
  3  Audit service or runtime error

Example:
  vulnexplain scan --repo https://github.com/org/app --store
  vulnexplain scan --file handlers.py --format json
  cat snippet.js | vulnexplain scan --code -
  vulnexplain scan --findings findings.json --fail-threshold 5`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanCode, "code", "",
		"code snippet to audit (\"-\" reads stdin)")
	scanCmd.Flags().StringVar(&scanLanguage, "language", api.DefaultLanguage,
		"language of the code snippet")
	scanCmd.Flags().StringVar(&scanFile, "file", "",
		"source file to upload")
	scanCmd.Flags().StringVar(&scanRepo, "repo", "",
		"GitHub repository URL")
	scanCmd.Flags().StringVar(&scanFindings, "findings", "",
		"JSON findings file to assess locally")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "",
		"output format: text, json, or both (default from config)")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "",
		"write output to file")
	scanCmd.Flags().BoolVar(&scanStore, "store", false,
		"persist the result for history and trends")
	scanCmd.Flags().IntVar(&scanThreshold, "fail-threshold", -1,
		"exit 1 if vulnerabilities exceed threshold (0 = disabled, default from config)")
	scanCmd.Flags().StringVar(&scanPolicy, "policy", "",
		"policy file (default: nearest .vulnexplain-policy.yaml)")
	scanCmd.Flags().StringVar(&scanChart, "chart", string(models.ChartFinancial),
		"chart view: financial or severity")
	scanCmd.Flags().BoolVar(&scanSummaryOnly, "summary-only", false,
		"omit finding details from JSON output")
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false,
		"do not show scan progress")
}

// scanInput is the source selected on the command line.
type scanInput struct {
	Code     string
	Language string
	File     string
	Repo     string
	Findings string
}

func runScan(cmd *cobra.Command, args []string) error {
	in := scanInput{
		Code:     scanCode,
		Language: scanLanguage,
		File:     scanFile,
		Repo:     scanRepo,
		Findings: scanFindings,
	}
	if in.Code == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		in.Code = string(data)
	}

	chart, err := parseChart(scanChart)
	if err != nil {
		return err
	}

	format := scanFormat
	if format == "" {
		format = cfg.Format
	}
	threshold := scanThreshold
	if threshold < 0 {
		threshold = cfg.FailThreshold
	}

	var auditor tui.Auditor
	if client := newClient(); client != nil {
		auditor = client
		logVerbose("Audit service: %s", client.BaseURL())
	}

	submit, err := buildSubmitter(auditor, in, os.ReadFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var progress io.Writer
	if !scanQuiet {
		progress = os.Stderr
	}
	result, err := runAudit(ctx, submit, scan.Timing{Timeout: cfg.Timeout},
		progress, term.IsTerminal(int(os.Stderr.Fd())))
	if err != nil {
		logError("%s", scan.FailureMessage(err))
		return err
	}

	return RunPipeline(result, PipelineConfig{
		Format:      format,
		Output:      scanOutput,
		Store:       scanStore,
		StorageDir:  cfg.StorageDir,
		Threshold:   threshold,
		PolicyPath:  scanPolicy,
		Plan:        currentPlan(),
		Chart:       chart,
		SummaryOnly: scanSummaryOnly,
	})
}

// runAudit runs submit while showing the scan phases on progress, which may
// be nil. The progress line is cleared before runAudit returns, so whatever
// is printed next starts on a clean line.
func runAudit(ctx context.Context, submit scan.Submitter, timing scan.Timing, progress io.Writer, tty bool) (*models.AuditResult, error) {
	if progress == nil {
		return scan.Run(ctx, submit, timing, nil)
	}
	sp := newStepPrinter(progress, tty)
	result, err := scan.Run(ctx, submit, timing, sp.step)
	sp.done()
	return result, err
}

// buildSubmitter validates the selected source and returns the request to
// run. Nothing is sent when validation fails. auditor may be nil when only
// local findings are assessed.
func buildSubmitter(auditor tui.Auditor, in scanInput, readFile func(string) ([]byte, error)) (scan.Submitter, error) {
	selected := 0
	for _, s := range []string{in.Code, in.File, in.Repo, in.Findings} {
		if s != "" {
			selected++
		}
	}
	switch {
	case selected == 0:
		return nil, &ValidationError{Message: "nothing to audit: use --code, --file, --repo, or --findings"}
	case selected > 1:
		return nil, &ValidationError{Message: "use only one of --code, --file, --repo, or --findings"}
	}

	if in.Findings != "" {
		data, err := readFile(in.Findings)
		if err != nil {
			return nil, fmt.Errorf("failed to read findings: %w", err)
		}
		findings, err := assess.ParseFindings(bytes.NewReader(data))
		if err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
		logVerbose("Assessing %d findings locally", len(findings))
		return assess.New().Submit(findings), nil
	}

	if auditor == nil {
		return nil, &ValidationError{Message: "api_url is not configured (set it in vulnexplain.yaml or VULNEXPLAIN_API_URL)"}
	}

	switch {
	case in.Code != "":
		if err := api.ValidateSnippet(in.Code); err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
		lang := in.Language
		if lang == "" {
			lang = api.DefaultLanguage
		}
		code := in.Code
		return func(ctx context.Context) (*models.AuditResult, error) {
			return auditor.AuditCode(ctx, code, lang)
		}, nil

	case in.Repo != "":
		repo, err := api.ParseGitHubURL(in.Repo)
		if err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
		logVerbose("Auditing repository %s", repo)
		url := strings.TrimSpace(in.Repo)
		return func(ctx context.Context) (*models.AuditResult, error) {
			return auditor.AuditRepo(ctx, url)
		}, nil

	default:
		content, err := readFile(in.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		name := filepath.Base(in.File)
		if err := api.ValidateUpload(name, content); err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
		return func(ctx context.Context) (*models.AuditResult, error) {
			return auditor.AuditFile(ctx, name, content)
		}, nil
	}
}

func parseChart(s string) (models.ChartView, error) {
	switch models.ChartView(s) {
	case models.ChartFinancial, models.ChartSeverity:
		return models.ChartView(s), nil
	default:
		return "", &ValidationError{Message: fmt.Sprintf("invalid chart view: %s (use financial or severity)", s)}
	}
}

// stepPrinter renders scan phases. On a terminal the current phase is
// redrawn in place; otherwise each phase gets its own line.
type stepPrinter struct {
	w     io.Writer
	tty   bool
	last  int
	shown bool
}

func newStepPrinter(w io.Writer, tty bool) *stepPrinter {
	return &stepPrinter{w: w, tty: tty, last: -1}
}

func (p *stepPrinter) step(i int) {
	// a failed audit resets to the first phase; that is not redrawn
	if i <= p.last || i >= len(scan.Steps) {
		return
	}
	p.last = i
	p.shown = true

	line := fmt.Sprintf("[%d/%d] %s...", i+1, len(scan.Steps), scan.Steps[i])
	if p.tty {
		fmt.Fprintf(p.w, "\r\033[K%s", line)
		return
	}
	fmt.Fprintln(p.w, line)
}

func (p *stepPrinter) done() {
	if p.tty && p.shown {
		fmt.Fprint(p.w, "\r\033[K")
	}
}
