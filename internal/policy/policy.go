package policy

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/AditthyaSS/VulnExplain/internal/aggregator"
	"github.com/AditthyaSS/VulnExplain/internal/models"
)

// Policy defines enforcement rules for audit results.
type Policy struct {
	Version string `yaml:"version"`
	Rules   Rules  `yaml:"rules"`
}

// Rules contains all configurable policy rules.
type Rules struct {
	MaxVulnerabilities *int     `yaml:"max_vulnerabilities,omitempty"`
	MaxCritical        *int     `yaml:"max_critical,omitempty"`
	MaxHigh            *int     `yaml:"max_high,omitempty"`
	MinScore           *int     `yaml:"min_score,omitempty"`
	MaxTotalINR        *float64 `yaml:"max_total_inr,omitempty"`
	ForbidCategories   []string `yaml:"forbid_categories,omitempty"`
}

// Violation is a single policy failure.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result holds the outcome of a policy check.
type Result struct {
	Pass       bool        `json:"pass"`
	Violations []Violation `json:"violations"`
}

// LoadFromFile reads a policy file. A missing file yields a nil policy.
func LoadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	return &p, nil
}

// FindPolicyFile searches for a policy file in the current directory
// and parent directories up to the filesystem root.
func FindPolicyFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findFrom(dir)
}

func findFrom(dir string) string {
	names := []string{".vulnexplain-policy.yaml", ".vulnexplain-policy.yml"}

	for {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Evaluate checks an audit result against the policy rules.
func (p *Policy) Evaluate(result *models.AuditResult) *Result {
	if p == nil || result == nil {
		return &Result{Pass: true}
	}

	var violations []Violation
	dist := aggregator.SeverityDistribution(result.Vulnerabilities)

	// max_vulnerabilities
	if p.Rules.MaxVulnerabilities != nil {
		if n := len(result.Vulnerabilities); n > *p.Rules.MaxVulnerabilities {
			violations = append(violations, Violation{
				Rule:    "max_vulnerabilities",
				Message: fmt.Sprintf("total vulnerabilities %d exceeds limit %d", n, *p.Rules.MaxVulnerabilities),
			})
		}
	}

	// max_critical
	if p.Rules.MaxCritical != nil {
		if count := dist[models.SeverityCritical]; count > *p.Rules.MaxCritical {
			violations = append(violations, Violation{
				Rule:    "max_critical",
				Message: fmt.Sprintf("critical vulnerabilities %d exceeds limit %d", count, *p.Rules.MaxCritical),
			})
		}
	}

	// max_high
	if p.Rules.MaxHigh != nil {
		if count := dist[models.SeverityHigh]; count > *p.Rules.MaxHigh {
			violations = append(violations, Violation{
				Rule:    "max_high",
				Message: fmt.Sprintf("high vulnerabilities %d exceeds limit %d", count, *p.Rules.MaxHigh),
			})
		}
	}

	// min_score
	if p.Rules.MinScore != nil {
		if result.SecurityScore < *p.Rules.MinScore {
			violations = append(violations, Violation{
				Rule:    "min_score",
				Message: fmt.Sprintf("security score %d below minimum %d", result.SecurityScore, *p.Rules.MinScore),
			})
		}
	}

	// max_total_inr
	if p.Rules.MaxTotalINR != nil {
		if total := result.DetailedImpact.TotalINR; total > *p.Rules.MaxTotalINR {
			violations = append(violations, Violation{
				Rule: "max_total_inr",
				Message: fmt.Sprintf("financial risk %s exceeds limit %s",
					aggregator.FormatINR(total), aggregator.FormatINR(*p.Rules.MaxTotalINR)),
			})
		}
	}

	// forbid_categories
	if len(p.Rules.ForbidCategories) > 0 {
		forbidden := make(map[string]bool, len(p.Rules.ForbidCategories))
		for _, c := range p.Rules.ForbidCategories {
			forbidden[c] = true
		}
		for _, g := range aggregator.GroupByCategory(result.Vulnerabilities) {
			if forbidden[g.Category] {
				violations = append(violations, Violation{
					Rule:    "forbid_categories",
					Message: fmt.Sprintf("forbidden category %q has %d vulnerabilities", g.Category, len(g.Vulnerabilities)),
				})
			}
		}
	}

	return &Result{
		Pass:       len(violations) == 0,
		Violations: violations,
	}
}
