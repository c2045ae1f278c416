package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func baseResult() *models.AuditResult {
	return &models.AuditResult{
		SecurityScore: 72,
		Vulnerabilities: []models.Vulnerability{
			{Title: "SQL Injection", Severity: models.SeverityCritical, Category: "SQL Injection"},
			{Title: "Verbose logs", Severity: models.SeverityLow, Category: "Information Exposure Through Logs"},
		},
		DetailedImpact: models.DetailedImpact{TotalINR: 1062500},
	}
}

func TestEvaluateNilPolicy(t *testing.T) {
	var p *Policy
	result := p.Evaluate(baseResult())
	if !result.Pass {
		t.Error("nil policy should pass")
	}
}

func TestMaxVulnerabilitiesPass(t *testing.T) {
	p := &Policy{Rules: Rules{MaxVulnerabilities: intPtr(5)}}
	result := p.Evaluate(baseResult())
	if !result.Pass {
		t.Errorf("expected pass, got violations: %v", result.Violations)
	}
}

func TestMaxVulnerabilitiesFail(t *testing.T) {
	p := &Policy{Rules: Rules{MaxVulnerabilities: intPtr(1)}}
	result := p.Evaluate(baseResult())
	if result.Pass {
		t.Error("expected fail: 2 vulnerabilities exceeds limit 1")
	}
	if len(result.Violations) != 1 || result.Violations[0].Rule != "max_vulnerabilities" {
		t.Errorf("expected max_vulnerabilities violation, got %v", result.Violations)
	}
}

func TestMaxCriticalPass(t *testing.T) {
	p := &Policy{Rules: Rules{MaxCritical: intPtr(1)}}
	result := p.Evaluate(baseResult())
	if !result.Pass {
		t.Errorf("expected pass, got violations: %v", result.Violations)
	}
}

func TestMaxCriticalFail(t *testing.T) {
	p := &Policy{Rules: Rules{MaxCritical: intPtr(0)}}
	result := p.Evaluate(baseResult())
	if result.Pass {
		t.Error("expected fail: 1 critical exceeds limit 0")
	}
	if result.Violations[0].Rule != "max_critical" {
		t.Errorf("expected max_critical, got %s", result.Violations[0].Rule)
	}
}

func TestMaxHighPass(t *testing.T) {
	p := &Policy{Rules: Rules{MaxHigh: intPtr(0)}}
	result := p.Evaluate(baseResult())
	if !result.Pass {
		t.Errorf("expected pass (0 high vulnerabilities), got violations: %v", result.Violations)
	}
}

func TestMinScorePass(t *testing.T) {
	p := &Policy{Rules: Rules{MinScore: intPtr(70)}}
	result := p.Evaluate(baseResult())
	if !result.Pass {
		t.Errorf("expected pass (72 >= 70), got violations: %v", result.Violations)
	}
}

func TestMinScoreFail(t *testing.T) {
	p := &Policy{Rules: Rules{MinScore: intPtr(80)}}
	result := p.Evaluate(baseResult())
	if result.Pass {
		t.Error("expected fail: 72 < 80")
	}
	if result.Violations[0].Rule != "min_score" {
		t.Errorf("expected min_score, got %s", result.Violations[0].Rule)
	}
}

func TestMaxTotalINRFail(t *testing.T) {
	p := &Policy{Rules: Rules{MaxTotalINR: floatPtr(500000)}}
	result := p.Evaluate(baseResult())
	if result.Pass {
		t.Fatal("expected fail: ₹10,62,500 exceeds ₹5,00,000")
	}
	want := "financial risk ₹10,62,500 exceeds limit ₹5,00,000"
	if result.Violations[0].Message != want {
		t.Errorf("expected %q, got %q", want, result.Violations[0].Message)
	}
}

func TestForbidCategoriesFail(t *testing.T) {
	p := &Policy{Rules: Rules{ForbidCategories: []string{"SQL Injection"}}}
	result := p.Evaluate(baseResult())
	if result.Pass {
		t.Error("expected fail: SQL Injection category is forbidden")
	}
}

func TestForbidCategoriesPass(t *testing.T) {
	p := &Policy{Rules: Rules{ForbidCategories: []string{"Open Redirect"}}}
	result := p.Evaluate(baseResult())
	if !result.Pass {
		t.Errorf("expected pass (no open redirects), got violations: %v", result.Violations)
	}
}

func TestForbidDefaultCategory(t *testing.T) {
	r := &models.AuditResult{Vulnerabilities: []models.Vulnerability{{Severity: models.SeverityLow}}}
	p := &Policy{Rules: Rules{ForbidCategories: []string{models.DefaultCategory}}}
	if p.Evaluate(r).Pass {
		t.Error("expected uncategorized finding to match the default category")
	}
}

func TestMultipleViolations(t *testing.T) {
	p := &Policy{
		Rules: Rules{
			MaxVulnerabilities: intPtr(0),
			MaxCritical:        intPtr(0),
			MinScore:           intPtr(90),
		},
	}
	result := p.Evaluate(baseResult())
	if result.Pass {
		t.Error("expected fail")
	}
	if len(result.Violations) != 3 {
		t.Errorf("expected 3 violations, got %d: %v", len(result.Violations), result.Violations)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".vulnexplain-policy.yaml")

	content := `version: "1"
rules:
  max_vulnerabilities: 10
  max_critical: 0
  min_score: 80
  max_total_inr: 250000
  forbid_categories:
    - SQL Injection
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if p == nil {
		t.Fatal("expected policy, got nil")
	}
	if p.Version != "1" {
		t.Errorf("expected version 1, got %s", p.Version)
	}
	if p.Rules.MaxVulnerabilities == nil || *p.Rules.MaxVulnerabilities != 10 {
		t.Errorf("expected max_vulnerabilities 10, got %v", p.Rules.MaxVulnerabilities)
	}
	if p.Rules.MinScore == nil || *p.Rules.MinScore != 80 {
		t.Errorf("expected min_score 80, got %v", p.Rules.MinScore)
	}
	if p.Rules.MaxTotalINR == nil || *p.Rules.MaxTotalINR != 250000 {
		t.Errorf("expected max_total_inr 250000, got %v", p.Rules.MaxTotalINR)
	}
	if len(p.Rules.ForbidCategories) != 1 || p.Rules.ForbidCategories[0] != "SQL Injection" {
		t.Errorf("expected forbid SQL Injection, got %v", p.Rules.ForbidCategories)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	p, err := LoadFromFile("/nonexistent/path")
	if err != nil {
		t.Errorf("expected nil error for missing file, got %v", err)
	}
	if p != nil {
		t.Error("expected nil policy for missing file")
	}
}

func TestFindFromParent(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, ".vulnexplain-policy.yml")
	if err := os.WriteFile(want, []byte("rules: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := findFrom(nested); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
