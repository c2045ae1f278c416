// Package assess turns raw scanner findings into a scored AuditResult using
// fixed CWE-based rules. It is the local stand-in for the remote audit
// service and produces the same result shape.
package assess

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

// Assessor scores findings. Now and NewID may be replaced in tests.
type Assessor struct {
	Now   func() time.Time
	NewID func() string
}

// New returns an Assessor using the wall clock and random UUIDs.
func New() *Assessor {
	return &Assessor{
		Now:   func() time.Time { return time.Now().UTC() },
		NewID: func() string { return uuid.NewString() },
	}
}

// ParseFindings reads a JSON array of findings.
func ParseFindings(r io.Reader) ([]models.Finding, error) {
	var findings []models.Finding
	if err := json.NewDecoder(r).Decode(&findings); err != nil {
		return nil, fmt.Errorf("failed to decode findings: %w", err)
	}
	return findings, nil
}

// Assess classifies, deduplicates and scores the findings.
func (a *Assessor) Assess(findings []models.Finding) *models.AuditResult {
	vulns := make([]models.Vulnerability, 0, len(findings))
	for _, f := range findings {
		vulns = append(vulns, Classify(f))
	}
	vulns = Deduplicate(vulns)

	return &models.AuditResult{
		ID:              a.NewID(),
		Vulnerabilities: vulns,
		SecurityScore:   Score(vulns),
		DetailedImpact:  Impact(vulns),
		Timestamp:       a.Now(),
	}
}

// Submit adapts the assessor to the scan runner.
func (a *Assessor) Submit(findings []models.Finding) func(context.Context) (*models.AuditResult, error) {
	return func(ctx context.Context) (*models.AuditResult, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return a.Assess(findings), nil
	}
}

// Classify assigns severity, fix time and category to one finding.
func Classify(f models.Finding) models.Vulnerability {
	cwe := f.CWEID
	if strings.TrimSpace(cwe) == "" {
		cwe = "UNKNOWN"
	}
	sev := SeverityFor(cwe)

	dataImpact := f.DataImpact
	if dataImpact == nil {
		dataImpact = []string{}
	}

	return models.Vulnerability{
		Title:        f.Title,
		Severity:     sev,
		CWEID:        cwe,
		Description:  f.Description,
		Remediation:  f.Remediation,
		Location:     f.Location,
		SOC2Controls: f.SOC2Controls,
		DataImpact:   dataImpact,
		FixTimeHours: FixHoursFor(sev),
		Category:     CategoryFor(cwe),
	}
}

type dedupKey struct {
	cwe      string
	location string
}

// Deduplicate keeps the first finding for each (CWE, location) pair.
// CWE ids compare case-insensitively, locations ignore case and surrounding
// whitespace.
func Deduplicate(vulns []models.Vulnerability) []models.Vulnerability {
	seen := make(map[dedupKey]bool, len(vulns))
	out := make([]models.Vulnerability, 0, len(vulns))

	for _, v := range vulns {
		cwe := v.CWEID
		if cwe == "" {
			cwe = "UNKNOWN"
		}
		key := dedupKey{
			cwe:      strings.ToUpper(strings.TrimSpace(cwe)),
			location: strings.ToLower(strings.TrimSpace(v.Location)),
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}

	return out
}

// Score computes the 0-100 security score. No findings scores 100.
func Score(vulns []models.Vulnerability) int {
	penalty := 0
	for _, v := range vulns {
		penalty += PenaltyFor(v.Severity)
	}
	if penalty > 100 {
		return 0
	}
	return 100 - penalty
}

// Impact estimates the financial exposure of the findings in INR.
func Impact(vulns []models.Vulnerability) models.DetailedImpact {
	var devHours float64
	critical, high := 0, 0

	for _, v := range vulns {
		switch v.Severity {
		case models.SeverityCritical:
			devHours += 24
			critical++
		case models.SeverityHigh:
			devHours += 8
			high++
		case models.SeverityMedium:
			devHours += 4
		default:
			devHours++
		}
	}

	b := models.ImpactBreakdown{
		FixCost:         devHours * devRatePerHour,
		Downtime:        float64(critical * downtimeHours * downtimeRatePerHr),
		RegulatoryFines: float64(critical * finePerCritical),
		Reputation:      float64((critical + high) * reputationPerIssue),
	}

	return models.DetailedImpact{
		Breakdown: b,
		TotalINR:  b.FixCost + b.Downtime + b.RegulatoryFines + b.Reputation,
	}
}
