package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AditthyaSS/VulnExplain/internal/plan"
	"github.com/AditthyaSS/VulnExplain/internal/tui"
)

var doctorFormat string

// pinger is the part of the API client doctor needs.
type pinger interface {
	Ping(ctx context.Context) (string, error)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check environment readiness and diagnose common problems",
	Long: `Doctor validates your VulnExplain setup end-to-end:

  1. Config file: found and readable?
  2. Audit service: configured and reachable?
  3. Plan and theme: recognised values?
  4. Storage: directory writable?

Fix the issues it reports, then run 'vulnexplain scan' with confidence.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "text",
		"output format: text or json")
}

type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok", "warn", "fail"
	Detail string `json:"detail,omitempty"`
}

type doctorResult struct {
	Checks  []doctorCheck `json:"checks"`
	Summary string        `json:"summary"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []doctorCheck

	checks = append(checks, checkConfig())

	// A nil *Client must not reach the interface.
	var svc pinger
	if client := newClient(); client != nil {
		svc = client
	}
	checks = append(checks, checkAPI(cmd.Context(), svc, cfg.APIURL))

	checks = append(checks, checkPlan(cfg.Plan))
	checks = append(checks, checkTheme(cfg.Theme))
	checks = append(checks, checkStorage())

	result := summarizeChecks(checks)

	if doctorFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return writeDoctorText(os.Stdout, result)
}

func summarizeChecks(checks []doctorCheck) doctorResult {
	fails, warns := 0, 0
	var failed []string
	for _, c := range checks {
		switch c.Status {
		case "fail":
			fails++
			failed = append(failed, c.Name)
		case "warn":
			warns++
		}
	}

	summary := "all checks passed"
	if fails > 0 {
		summary = fmt.Sprintf("%d issue(s) found: %s", fails, joinMax(failed, 3))
	} else if warns > 0 {
		summary = fmt.Sprintf("ok with %d warning(s)", warns)
	}

	return doctorResult{Checks: checks, Summary: summary}
}

func writeDoctorText(w io.Writer, result doctorResult) error {
	icons := map[string]string{
		"ok":   "✓",
		"warn": "△",
		"fail": "✗",
	}

	for _, c := range result.Checks {
		icon := icons[c.Status]
		if c.Detail != "" {
			fmt.Fprintf(w, "  %s %-20s %s\n", icon, c.Name, c.Detail)
		} else {
			fmt.Fprintf(w, "  %s %s\n", icon, c.Name)
		}
	}

	fmt.Fprintf(w, "\n%s\n", result.Summary)
	return nil
}

func checkConfig() doctorCheck {
	path := preferencePath()

	if _, err := os.Stat(path); err != nil {
		return doctorCheck{
			Name:   "config",
			Status: "warn",
			Detail: "no config file found (using defaults). Run: vulnexplain plan starter",
		}
	}

	return doctorCheck{
		Name:   "config",
		Status: "ok",
		Detail: path,
	}
}

func checkAPI(ctx context.Context, svc pinger, apiURL string) doctorCheck {
	if svc == nil {
		return doctorCheck{
			Name:   "api",
			Status: "fail",
			Detail: "api_url not set. Use config api_url: or VULNEXPLAIN_API_URL",
		}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msg, err := svc.Ping(ctx)
	if err != nil {
		return doctorCheck{
			Name:   "api",
			Status: "fail",
			Detail: fmt.Sprintf("unreachable (%v)", err),
		}
	}

	detail := apiURL
	if msg != "" {
		detail = fmt.Sprintf("%s (%s)", apiURL, msg)
	}
	return doctorCheck{
		Name:   "api",
		Status: "ok",
		Detail: detail,
	}
}

func checkPlan(value string) doctorCheck {
	p, err := plan.Parse(value)
	if err != nil {
		return doctorCheck{
			Name:   "plan",
			Status: "warn",
			Detail: fmt.Sprintf("%v (falling back to %s)", err, plan.Default.Title()),
		}
	}

	return doctorCheck{
		Name:   "plan",
		Status: "ok",
		Detail: p.Title(),
	}
}

func checkTheme(value string) doctorCheck {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case tui.ThemeLight, tui.ThemeDark:
		return doctorCheck{Name: "theme", Status: "ok", Detail: value}
	default:
		return doctorCheck{
			Name:   "theme",
			Status: "warn",
			Detail: fmt.Sprintf("unknown theme %q (use %s or %s)", value, tui.ThemeLight, tui.ThemeDark),
		}
	}
}

func checkStorage() doctorCheck {
	storagePath := cfg.StorageDir
	if storagePath == "" {
		storagePath = ".vulnexplain"
	}

	info, err := os.Stat(storagePath)
	if err != nil {
		return doctorCheck{
			Name:   "storage",
			Status: "ok",
			Detail: fmt.Sprintf("%s (will be created on first --store)", storagePath),
		}
	}

	if !info.IsDir() {
		return doctorCheck{
			Name:   "storage",
			Status: "fail",
			Detail: fmt.Sprintf("%s exists but is not a directory", storagePath),
		}
	}

	// Try writing a temp file to check write access
	tmpFile := filepath.Join(storagePath, ".doctor-check")
	if err := os.WriteFile(tmpFile, []byte("ok"), 0600); err != nil {
		return doctorCheck{
			Name:   "storage",
			Status: "fail",
			Detail: fmt.Sprintf("%s not writable: %v", storagePath, err),
		}
	}
	_ = os.Remove(tmpFile)

	return doctorCheck{
		Name:   "storage",
		Status: "ok",
		Detail: storagePath,
	}
}

// joinMax joins up to n strings with ", ".
func joinMax(s []string, n int) string {
	if len(s) <= n {
		return strings.Join(s, ", ")
	}
	return fmt.Sprintf("%s +%d more", strings.Join(s[:n], ", "), len(s)-n)
}
