package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

// Kind names the document types VulnExplain reads.
type Kind string

const (
	KindAuditResult Kind = "audit result"
	KindFindings    Kind = "findings list"
)

// ValidationError represents a validation failure
type ValidationError struct {
	Kind   Kind
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid %s:\n  - %s", e.Kind, strings.Join(e.Errors, "\n  - "))
}

// Validator validates audit results and findings lists
type Validator struct{}

// New creates a new validator
func New() *Validator {
	return &Validator{}
}

// Document is a validated input file.
type Document struct {
	Kind     Kind
	Result   *models.AuditResult
	Findings []models.Finding
}

// Count is the number of vulnerabilities or findings in the document.
func (d *Document) Count() int {
	if d.Kind == KindFindings {
		return len(d.Findings)
	}
	if d.Result == nil {
		return 0
	}
	return len(d.Result.Vulnerabilities)
}

// ValidateDocument detects whether data is a findings list (a JSON array)
// or an audit result and validates it accordingly.
func (v *Validator) ValidateDocument(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &ValidationError{Kind: KindAuditResult, Errors: []string{"Empty document"}}
	}

	if trimmed[0] == '[' {
		findings, err := v.ValidateFindings(trimmed)
		if err != nil {
			return nil, err
		}
		return &Document{Kind: KindFindings, Findings: findings}, nil
	}

	result, err := v.ValidateAuditResult(trimmed)
	if err != nil {
		return nil, err
	}
	return &Document{Kind: KindAuditResult, Result: result}, nil
}

// ValidateAuditResult parses and validates an audit result.
func (v *Validator) ValidateAuditResult(data []byte) (*models.AuditResult, error) {
	var result models.AuditResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &ValidationError{
			Kind:   KindAuditResult,
			Errors: []string{fmt.Sprintf("Failed to parse JSON: %v", err)},
		}
	}

	if err := v.CheckResult(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckResult validates an already decoded audit result.
func (v *Validator) CheckResult(r *models.AuditResult) error {
	if r == nil {
		return &ValidationError{Kind: KindAuditResult, Errors: []string{"Missing audit result"}}
	}

	var errors []string

	if r.SecurityScore < 0 || r.SecurityScore > 100 {
		errors = append(errors, fmt.Sprintf("Field 'security_score' must be between 0 and 100, got %d", r.SecurityScore))
	}

	impact := r.DetailedImpact
	if impact.TotalINR < 0 {
		errors = append(errors, "Field 'detailedImpact.totalINR' cannot be negative")
	}
	for name, value := range map[string]float64{
		"fixCost":         impact.Breakdown.FixCost,
		"downtime":        impact.Breakdown.Downtime,
		"regulatoryFines": impact.Breakdown.RegulatoryFines,
		"reputation":      impact.Breakdown.Reputation,
	} {
		if value < 0 {
			errors = append(errors, fmt.Sprintf("Field 'detailedImpact.breakdown.%s' cannot be negative", name))
		}
	}

	for i, vuln := range r.Vulnerabilities {
		if strings.TrimSpace(vuln.Title) == "" {
			errors = append(errors, fmt.Sprintf("Vulnerability %d has no title", i))
		}
		if models.Rank(vuln.Severity) == 0 {
			errors = append(errors, fmt.Sprintf("Vulnerability %d has unknown severity: '%s'", i, vuln.Severity))
		}
		if vuln.FixTimeHours < 0 {
			errors = append(errors, fmt.Sprintf("Vulnerability %d has negative fix_time_hours", i))
		}
	}

	if len(errors) > 0 {
		sort.Strings(errors)
		return &ValidationError{Kind: KindAuditResult, Errors: errors}
	}

	return nil
}

// ValidateFindings parses and validates a findings list.
func (v *Validator) ValidateFindings(data []byte) ([]models.Finding, error) {
	var findings []models.Finding
	if err := json.Unmarshal(data, &findings); err != nil {
		return nil, &ValidationError{
			Kind:   KindFindings,
			Errors: []string{fmt.Sprintf("Failed to parse JSON: %v", err)},
		}
	}

	var errors []string
	for i, f := range findings {
		if strings.TrimSpace(f.Title) == "" {
			errors = append(errors, fmt.Sprintf("Finding %d has no title", i))
		}
	}

	if len(errors) > 0 {
		return nil, &ValidationError{Kind: KindFindings, Errors: errors}
	}

	return findings, nil
}
