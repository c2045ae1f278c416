package aggregator

import (
	"sort"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

// Group is one category bucket of findings in first-seen order
type Group struct {
	Category        string                 `json:"category"`
	Severity        models.Severity        `json:"severity"` // highest severity in the group
	Vulnerabilities []models.Vulnerability `json:"vulnerabilities"`
}

// SeverityCount is one entry of a sorted severity distribution
type SeverityCount struct {
	Severity models.Severity `json:"severity"`
	Count    int             `json:"count"`
}

// Summary is every derived view of a single audit result.
// It is recomputed on demand and never stored.
type Summary struct {
	SecurityScore        int                     `json:"security_score"`
	Grade                RiskGrade               `json:"grade"`
	Badge                Badge                   `json:"badge"`
	TotalVulnerabilities int                     `json:"total_vulnerabilities"`
	TotalFixHours        float64                 `json:"total_fix_hours"`
	TotalINR             float64                 `json:"total_inr"`
	Distribution         []SeverityCount         `json:"distribution"`
	Groups               []Group                 `json:"groups"`
	Chart                []Slice                 `json:"chart"`
	ChartView            models.ChartView        `json:"chart_view"`
	Priorities           []Priority              `json:"priorities,omitempty"`
	BySeverity           map[models.Severity]int `json:"-"`
}

// Summarize derives the dashboard views for a result and chart view.
// A nil result yields nil.
func Summarize(result *models.AuditResult, view models.ChartView) *Summary {
	if result == nil {
		return nil
	}

	dist := SeverityDistribution(result.Vulnerabilities)

	var hours float64
	for _, v := range result.Vulnerabilities {
		hours += v.FixTimeHours
	}

	return &Summary{
		SecurityScore:        result.SecurityScore,
		Grade:                Grade(result.SecurityScore),
		Badge:                BadgeFor(result.SecurityScore),
		TotalVulnerabilities: len(result.Vulnerabilities),
		TotalFixHours:        hours,
		TotalINR:             result.DetailedImpact.TotalINR,
		Distribution:         SortedDistribution(dist),
		Groups:               GroupByCategory(result.Vulnerabilities),
		Chart:                Project(result, view),
		ChartView:            view,
		Priorities:           Prioritize(result.Vulnerabilities, DefaultPriorityLimit),
		BySeverity:           dist,
	}
}

// SeverityDistribution counts findings per severity.
// Only severities that occur are present; absent ones are never zero-filled.
func SeverityDistribution(vulns []models.Vulnerability) map[models.Severity]int {
	dist := make(map[models.Severity]int)
	for _, v := range vulns {
		dist[v.Severity]++
	}
	return dist
}

// SortedDistribution orders a distribution by severity rank, highest first.
// Labels of equal rank (unknown severities) are ordered by name.
func SortedDistribution(dist map[models.Severity]int) []SeverityCount {
	counts := make([]SeverityCount, 0, len(dist))
	for sev, n := range dist {
		counts = append(counts, SeverityCount{Severity: sev, Count: n})
	}

	sort.Slice(counts, func(i, j int) bool {
		ri, rj := models.Rank(counts[i].Severity), models.Rank(counts[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return counts[i].Severity < counts[j].Severity
	})

	return counts
}

// GroupByCategory partitions findings into category groups. Groups appear in
// the order their category is first seen and keep the original relative order
// of their members.
func GroupByCategory(vulns []models.Vulnerability) []Group {
	index := make(map[string]int)
	groups := []Group{}

	for _, v := range vulns {
		category := v.CategoryOrDefault()
		i, ok := index[category]
		if !ok {
			i = len(groups)
			index[category] = i
			groups = append(groups, Group{Category: category})
		}
		groups[i].Vulnerabilities = append(groups[i].Vulnerabilities, v)
	}

	for i := range groups {
		groups[i].Severity = GroupSeverity(groups[i].Vulnerabilities)
	}

	return groups
}

// GroupSeverity returns the highest-ranked severity in the group. The first
// entry wins ties, and a group with no ranked entry reports Info.
func GroupSeverity(vulns []models.Vulnerability) models.Severity {
	highest := models.SeverityInfo
	rank := 0
	for _, v := range vulns {
		if r := models.Rank(v.Severity); r > rank {
			highest, rank = v.Severity, r
		}
	}
	return highest
}

// FindGroup returns the group for a category, or nil.
func FindGroup(groups []Group, category string) *Group {
	for i := range groups {
		if groups[i].Category == category {
			return &groups[i]
		}
	}
	return nil
}
