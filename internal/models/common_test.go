package models

import (
	"encoding/json"
	"testing"
)

func TestRank(t *testing.T) {
	tests := []struct {
		severity Severity
		want     int
	}{
		{SeverityCritical, 5},
		{SeverityHigh, 4},
		{SeverityMedium, 3},
		{SeverityLow, 2},
		{SeverityInfo, 1},
		{Severity("critical"), 0},
		{Severity(""), 0},
		{Severity("Unknown"), 0},
	}

	for _, tt := range tests {
		if got := Rank(tt.severity); got != tt.want {
			t.Errorf("Rank(%q) = %d, want %d", tt.severity, got, tt.want)
		}
	}
}

func TestSeveritiesDescending(t *testing.T) {
	for i := 1; i < len(Severities); i++ {
		if Rank(Severities[i-1]) <= Rank(Severities[i]) {
			t.Errorf("expected %s to rank above %s", Severities[i-1], Severities[i])
		}
	}
}

func TestCategoryOrDefault(t *testing.T) {
	v := Vulnerability{}
	if v.CategoryOrDefault() != DefaultCategory {
		t.Errorf("expected %q, got %q", DefaultCategory, v.CategoryOrDefault())
	}

	v.Category = "SQL Injection"
	if v.CategoryOrDefault() != "SQL Injection" {
		t.Errorf("expected SQL Injection, got %q", v.CategoryOrDefault())
	}
}

func TestAuditResultWireFormat(t *testing.T) {
	raw := `{
		"id": "abc",
		"security_score": 85,
		"vulnerabilities": [
			{"title": "SQLi", "severity": "Critical", "cwe_id": "CWE-89", "location": "db.py:10",
			 "description": "d", "remediation": "r", "data_impact": ["PII"], "fix_time_hours": 24,
			 "category": "SQL Injection"}
		],
		"detailedImpact": {
			"totalINR": 500000,
			"breakdown": {"fixCost": 100000, "downtime": 200000, "regulatoryFines": 150000, "reputation": 50000}
		},
		"timestamp": "2026-02-15T10:00:00Z"
	}`

	var result AuditResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if result.SecurityScore != 85 {
		t.Errorf("expected score 85, got %d", result.SecurityScore)
	}
	if result.DetailedImpact.TotalINR != 500000 {
		t.Errorf("expected totalINR 500000, got %v", result.DetailedImpact.TotalINR)
	}
	if result.DetailedImpact.Breakdown.RegulatoryFines != 150000 {
		t.Errorf("expected regulatoryFines 150000, got %v", result.DetailedImpact.Breakdown.RegulatoryFines)
	}
	if len(result.Vulnerabilities) != 1 || result.Vulnerabilities[0].CWEID != "CWE-89" {
		t.Errorf("unexpected vulnerabilities: %+v", result.Vulnerabilities)
	}
	if result.Vulnerabilities[0].Severity != SeverityCritical {
		t.Errorf("expected Critical, got %s", result.Vulnerabilities[0].Severity)
	}
}
