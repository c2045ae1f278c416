package models

import "time"

// Severity is the qualitative impact ranking of a finding
type Severity string

// Severity levels, most severe first
const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
	SeverityInfo     Severity = "Info"
)

// DefaultCategory is used for findings that arrive without a category
const DefaultCategory = "Other Security Issues"

// Severities lists every known severity in descending rank order
var Severities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

var severityRank = map[Severity]int{
	SeverityCritical: 5,
	SeverityHigh:     4,
	SeverityMedium:   3,
	SeverityLow:      2,
	SeverityInfo:     1,
}

// Rank returns the position of a severity in the total order.
// Unrecognized labels rank 0.
func Rank(s Severity) int {
	return severityRank[s]
}

// Vulnerability is one finding as supplied by the audit service
type Vulnerability struct {
	Title        string   `json:"title"`
	Severity     Severity `json:"severity"`
	CWEID        string   `json:"cwe_id,omitempty"`
	Description  string   `json:"description"`
	Remediation  string   `json:"remediation"`
	Location     string   `json:"location"`
	SOC2Controls []string `json:"soc2_controls,omitempty"`
	DataImpact   []string `json:"data_impact"`
	FixTimeHours float64  `json:"fix_time_hours"`
	Category     string   `json:"category,omitempty"`
}

// CategoryOrDefault returns the grouping key for the finding
func (v Vulnerability) CategoryOrDefault() string {
	if v.Category == "" {
		return DefaultCategory
	}
	return v.Category
}

// ImpactBreakdown is the four-way decomposition of the estimated exposure.
// The fields need not sum to DetailedImpact.TotalINR.
type ImpactBreakdown struct {
	FixCost         float64 `json:"fixCost"`
	Downtime        float64 `json:"downtime"`
	RegulatoryFines float64 `json:"regulatoryFines"`
	Reputation      float64 `json:"reputation"`
}

// DetailedImpact holds the financial estimate in INR
type DetailedImpact struct {
	Breakdown ImpactBreakdown `json:"breakdown"`
	TotalINR  float64         `json:"totalINR"`
}

// AuditResult is the immutable record returned by a successful audit
type AuditResult struct {
	ID              string          `json:"id,omitempty"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	SecurityScore   int             `json:"security_score"` // 0-100
	DetailedImpact  DetailedImpact  `json:"detailedImpact"`
	Timestamp       time.Time       `json:"timestamp"`
}

// Finding is the raw evidence a scanner extracts before severity,
// fix time and category are assigned.
type Finding struct {
	CWEID        string   `json:"cwe_id"`
	Title        string   `json:"title"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	Remediation  string   `json:"remediation"`
	DataImpact   []string `json:"data_impact"`
	SOC2Controls []string `json:"soc2_controls"`
}

// ViewMode selects how the findings list is laid out
type ViewMode string

const (
	ViewGrouped ViewMode = "grouped"
	ViewAll     ViewMode = "all"
)

// ChartView selects which projection the chart shows
type ChartView string

const (
	ChartFinancial ChartView = "financial"
	ChartSeverity  ChartView = "severity"
)
