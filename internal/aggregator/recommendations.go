package aggregator

import (
	"fmt"
	"sort"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

// DefaultPriorityLimit is how many remediation priorities a summary carries
const DefaultPriorityLimit = 5

// Priority is a single remediation item, ordered by urgency
type Priority struct {
	Severity     models.Severity `json:"severity"`
	Title        string          `json:"title"`
	Location     string          `json:"location"`
	Action       string          `json:"action"`
	Impact       string          `json:"impact"`
	FixTimeHours float64         `json:"fix_time_hours"`
}

// Prioritize orders findings by severity rank and then by the effort needed
// to fix them (quick wins first), returning at most limit items.
// A non-positive limit returns every finding.
func Prioritize(vulns []models.Vulnerability, limit int) []Priority {
	ordered := make([]models.Vulnerability, len(vulns))
	copy(ordered, vulns)

	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := models.Rank(ordered[i].Severity), models.Rank(ordered[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return ordered[i].FixTimeHours < ordered[j].FixTimeHours
	})

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}

	priorities := make([]Priority, 0, len(ordered))
	for _, v := range ordered {
		priorities = append(priorities, Priority{
			Severity:     v.Severity,
			Title:        v.Title,
			Location:     v.Location,
			Action:       generateAction(v),
			Impact:       generateImpact(v.Severity),
			FixTimeHours: v.FixTimeHours,
		})
	}

	return priorities
}

// generateAction creates actionable text for a finding
func generateAction(v models.Vulnerability) string {
	if v.Remediation != "" {
		return v.Remediation
	}
	if v.Location != "" {
		return fmt.Sprintf("Fix %s in %s", v.Title, v.Location)
	}
	return fmt.Sprintf("Fix %s", v.Title)
}

// generateImpact describes what is at stake for a severity level
func generateImpact(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return "Exploitable now; expect downtime and regulatory exposure"
	case models.SeverityHigh:
		return "Significant risk to data and customer trust"
	case models.SeverityMedium:
		return "Weakens defenses; schedule in the next sprint"
	case models.SeverityLow:
		return "Hardening item with limited direct impact"
	case models.SeverityInfo:
		return "Informational, no direct risk"
	default:
		return "Review and address as needed"
	}
}
