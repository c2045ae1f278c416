package tui

import (
	"strings"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

// filterState holds current active filters of the flat finding list.
type filterState struct {
	Severity   models.Severity
	SearchText string
}

func (f filterState) active() bool {
	return f.Severity != "" || f.SearchText != ""
}

// indexedVuln is a finding together with its position in the full list.
// Disclosure keys in the flat view use that position, so filtering does not
// change which row a key refers to.
type indexedVuln struct {
	index int
	vuln  models.Vulnerability
}

// applyFilters returns findings matching all active filters, in original order.
func applyFilters(vulns []models.Vulnerability, f filterState) []indexedVuln {
	result := make([]indexedVuln, 0, len(vulns))
	searchLower := strings.ToLower(f.SearchText)

	for i, v := range vulns {
		if f.Severity != "" && v.Severity != f.Severity {
			continue
		}
		if searchLower != "" && !matchesSearch(v, searchLower) {
			continue
		}
		result = append(result, indexedVuln{index: i, vuln: v})
	}
	return result
}

func matchesSearch(v models.Vulnerability, searchLower string) bool {
	return strings.Contains(strings.ToLower(v.Title), searchLower) ||
		strings.Contains(strings.ToLower(v.CategoryOrDefault()), searchLower) ||
		strings.Contains(strings.ToLower(v.Location), searchLower) ||
		strings.Contains(strings.ToLower(v.CWEID), searchLower)
}

// nextSeverity cycles the severity filter: all, Critical, High, ..., Info, all.
func nextSeverity(current models.Severity) models.Severity {
	if current == "" {
		return models.Severities[0]
	}
	for i, s := range models.Severities {
		if s == current && i+1 < len(models.Severities) {
			return models.Severities[i+1]
		}
	}
	return ""
}
