package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/AditthyaSS/VulnExplain/internal/api"
	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/AditthyaSS/VulnExplain/internal/scan"
)

// fakeAuditor records what was submitted.
type fakeAuditor struct {
	code, language, repo, filename string
	content                        []byte
}

func (f *fakeAuditor) AuditCode(ctx context.Context, code, language string) (*models.AuditResult, error) {
	f.code, f.language = code, language
	return sampleResult(time.Now().UTC(), 100), nil
}

func (f *fakeAuditor) AuditRepo(ctx context.Context, githubURL string) (*models.AuditResult, error) {
	f.repo = githubURL
	return sampleResult(time.Now().UTC(), 100), nil
}

func (f *fakeAuditor) AuditFile(ctx context.Context, filename string, content []byte) (*models.AuditResult, error) {
	f.filename, f.content = filename, content
	return sampleResult(time.Now().UTC(), 100), nil
}

func noFile(string) ([]byte, error) { return nil, os.ErrNotExist }

func expectValidation(t *testing.T, err error, want string) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if want != "" && !strings.Contains(ve.Message, want) {
		t.Errorf("message = %q, want containing %q", ve.Message, want)
	}
}

func TestBuildSubmitterNothingSelected(t *testing.T) {
	_, err := buildSubmitter(&fakeAuditor{}, scanInput{}, noFile)
	expectValidation(t, err, "nothing to audit")
}

func TestBuildSubmitterTwoSources(t *testing.T) {
	_, err := buildSubmitter(&fakeAuditor{}, scanInput{Code: "x", Repo: "https://github.com/a/b"}, noFile)
	expectValidation(t, err, "only one of")
}

func TestBuildSubmitterNoAuditor(t *testing.T) {
	_, err := buildSubmitter(nil, scanInput{Code: "print(1)"}, noFile)
	expectValidation(t, err, "api_url is not configured")
}

func TestBuildSubmitterBlankCode(t *testing.T) {
	_, err := buildSubmitter(&fakeAuditor{}, scanInput{Code: "   \n\t"}, noFile)
	expectValidation(t, err, api.MsgEmptyCode)
}

func TestBuildSubmitterCode(t *testing.T) {
	auditor := &fakeAuditor{}
	submit, err := buildSubmitter(auditor, scanInput{Code: "eval(input())"}, noFile)
	if err != nil {
		t.Fatalf("buildSubmitter: %v", err)
	}
	if auditor.code != "" {
		t.Fatal("nothing should be sent before the submitter runs")
	}

	if _, err := submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if auditor.code != "eval(input())" || auditor.language != api.DefaultLanguage {
		t.Errorf("sent code=%q language=%q", auditor.code, auditor.language)
	}
}

func TestBuildSubmitterBadRepo(t *testing.T) {
	_, err := buildSubmitter(&fakeAuditor{}, scanInput{Repo: "https://gitlab.com/a/b"}, noFile)
	expectValidation(t, err, api.MsgInvalidURL)
}

func TestBuildSubmitterRepo(t *testing.T) {
	auditor := &fakeAuditor{}
	submit, err := buildSubmitter(auditor, scanInput{Repo: "  https://github.com/org/app  "}, noFile)
	if err != nil {
		t.Fatalf("buildSubmitter: %v", err)
	}
	_, _ = submit(context.Background())
	if auditor.repo != "https://github.com/org/app" {
		t.Errorf("sent repo %q", auditor.repo)
	}
}

func TestBuildSubmitterFile(t *testing.T) {
	auditor := &fakeAuditor{}
	read := func(path string) ([]byte, error) {
		if path != "src/handlers.py" {
			t.Errorf("read %q", path)
		}
		return []byte("import os\n"), nil
	}

	submit, err := buildSubmitter(auditor, scanInput{File: "src/handlers.py"}, read)
	if err != nil {
		t.Fatalf("buildSubmitter: %v", err)
	}
	_, _ = submit(context.Background())
	if auditor.filename != "handlers.py" || string(auditor.content) != "import os\n" {
		t.Errorf("sent %q (%q)", auditor.filename, auditor.content)
	}
}

func TestBuildSubmitterFileBadExtension(t *testing.T) {
	read := func(string) ([]byte, error) { return []byte("hello"), nil }
	_, err := buildSubmitter(&fakeAuditor{}, scanInput{File: "notes.txt"}, read)
	expectValidation(t, err, "unsupported file type")
}

func TestBuildSubmitterFileUnreadable(t *testing.T) {
	_, err := buildSubmitter(&fakeAuditor{}, scanInput{File: "missing.py"}, noFile)
	if err == nil {
		t.Fatal("expected error")
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		t.Error("read errors are runtime errors, not validation errors")
	}
}

func TestBuildSubmitterFindingsWithoutService(t *testing.T) {
	read := func(string) ([]byte, error) {
		return []byte(`[{"cwe_id": "CWE-89", "title": "SQLi", "location": "db.py:1"}]`), nil
	}

	submit, err := buildSubmitter(nil, scanInput{Findings: "findings.json"}, read)
	if err != nil {
		t.Fatalf("buildSubmitter: %v", err)
	}

	result, err := submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(result.Vulnerabilities) != 1 {
		t.Fatalf("expected 1 vulnerability, got %d", len(result.Vulnerabilities))
	}
	if result.SecurityScore != 75 {
		t.Errorf("score = %d, want 75", result.SecurityScore)
	}
}

func TestBuildSubmitterFindingsMalformed(t *testing.T) {
	read := func(string) ([]byte, error) { return []byte(`{"not": "a list"}`), nil }
	_, err := buildSubmitter(nil, scanInput{Findings: "findings.json"}, read)
	expectValidation(t, err, "")
}

func TestParseChart(t *testing.T) {
	if v, err := parseChart("severity"); err != nil || v != models.ChartSeverity {
		t.Errorf("parseChart(severity) = %q, %v", v, err)
	}
	_, err := parseChart("pie")
	expectValidation(t, err, "invalid chart view")
}

// --- stepPrinter tests ---

func TestStepPrinterLines(t *testing.T) {
	var buf bytes.Buffer
	p := newStepPrinter(&buf, false)

	p.step(0)
	p.step(1)
	p.step(1)
	p.step(0)
	p.step(len(scan.Steps))
	p.done()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	want := "[1/7] " + scan.Steps[0] + "..."
	if lines[0] != want {
		t.Errorf("line 0 = %q, want %q", lines[0], want)
	}
}

func TestStepPrinterTTY(t *testing.T) {
	var buf bytes.Buffer
	p := newStepPrinter(&buf, true)

	p.step(0)
	p.step(scan.LastStep)
	p.done()

	out := buf.String()
	if strings.Contains(out, "\n") {
		t.Errorf("terminal output should redraw in place, got %q", out)
	}
	if !strings.HasSuffix(out, "\r\033[K") {
		t.Errorf("done should clear the line, got %q", out)
	}
	if !strings.Contains(out, "[7/7] "+scan.Steps[scan.LastStep]) {
		t.Errorf("missing final step in %q", out)
	}
}

func TestStepPrinterDoneWithoutSteps(t *testing.T) {
	var buf bytes.Buffer
	newStepPrinter(&buf, true).done()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

// --- runAudit tests ---

var fastTiming = scan.Timing{Interval: time.Millisecond, Grace: time.Millisecond, Timeout: time.Second}

func TestRunAuditClearsProgressBeforeReport(t *testing.T) {
	var screen bytes.Buffer
	submit := func(ctx context.Context) (*models.AuditResult, error) {
		return sampleResult(time.Now().UTC(), 100), nil
	}

	result, err := runAudit(context.Background(), submit, fastTiming, &screen, true)
	if err != nil || result == nil {
		t.Fatalf("runAudit: %v", err)
	}
	// the report goes to the same terminal
	screen.WriteString("VulnExplain Audit Report\n")

	out := screen.String()
	idx := strings.Index(out, "VulnExplain Audit Report")
	if !strings.HasSuffix(out[:idx], "\r\033[K") {
		t.Errorf("progress line not cleared before report: %q", out)
	}
	if !strings.Contains(out[:idx], "[7/7] "+scan.Steps[scan.LastStep]) {
		t.Errorf("final step not shown before report: %q", out)
	}
}

func TestRunAuditClearsProgressOnFailure(t *testing.T) {
	var screen bytes.Buffer
	submit := func(ctx context.Context) (*models.AuditResult, error) {
		return nil, errors.New("service down")
	}

	if _, err := runAudit(context.Background(), submit, fastTiming, &screen, true); err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasSuffix(screen.String(), "\r\033[K") {
		t.Errorf("progress line not cleared before the error: %q", screen.String())
	}
}

func TestRunAuditQuiet(t *testing.T) {
	submit := func(ctx context.Context) (*models.AuditResult, error) {
		return sampleResult(time.Now().UTC(), 100), nil
	}
	if _, err := runAudit(context.Background(), submit, fastTiming, nil, true); err != nil {
		t.Fatalf("runAudit: %v", err)
	}
}
