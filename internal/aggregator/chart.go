package aggregator

import "github.com/AditthyaSS/VulnExplain/internal/models"

// Slice is one plottable entry of a chart projection
type Slice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Financial series colors
const (
	colorFixCost    = "#3b82f6"
	colorDowntime   = "#ef4444"
	colorFines      = "#f59e0b"
	colorReputation = "#8b5cf6"
)

// SeverityColors maps each severity to its chart color
var SeverityColors = map[models.Severity]string{
	models.SeverityCritical: "#ef4444",
	models.SeverityHigh:     "#f97316",
	models.SeverityMedium:   "#eab308",
	models.SeverityLow:      "#3b82f6",
	models.SeverityInfo:     "#6b7280",
}

// Project builds the chart series for the requested view.
//
// The financial view always has four slices, even when they are zero. The
// severity view drops every severity without findings.
func Project(result *models.AuditResult, view models.ChartView) []Slice {
	if result == nil {
		return []Slice{}
	}

	if view == models.ChartSeverity {
		return projectSeverity(result.Vulnerabilities)
	}
	return projectFinancial(result.DetailedImpact.Breakdown)
}

func projectFinancial(b models.ImpactBreakdown) []Slice {
	return []Slice{
		{Name: "Fix Costs", Value: b.FixCost, Color: colorFixCost},
		{Name: "Downtime", Value: b.Downtime, Color: colorDowntime},
		{Name: "Legal/Fines", Value: b.RegulatoryFines, Color: colorFines},
		{Name: "Reputation", Value: b.Reputation, Color: colorReputation},
	}
}

func projectSeverity(vulns []models.Vulnerability) []Slice {
	dist := SeverityDistribution(vulns)

	slices := make([]Slice, 0, len(models.Severities))
	for _, sev := range models.Severities {
		n := dist[sev]
		if n == 0 {
			continue
		}
		slices = append(slices, Slice{Name: string(sev), Value: float64(n), Color: SeverityColors[sev]})
	}
	return slices
}

// Total sums the values of a projection
func Total(slices []Slice) float64 {
	var sum float64
	for _, s := range slices {
		sum += s.Value
	}
	return sum
}
