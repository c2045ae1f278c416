package aggregator

import (
	"fmt"
	"strings"
	"time"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

// Trend directions
const (
	TrendImproving = "improving"
	TrendDegrading = "degrading"
	TrendStable    = "stable"
)

// Trend represents the change between two audit results
type Trend struct {
	Direction               string    `json:"direction"`
	PreviousScore           int       `json:"previous_score"`
	CurrentScore            int       `json:"current_score"`
	ScoreChange             int       `json:"score_change"`
	PreviousVulnerabilities int       `json:"previous_vulnerabilities"`
	CurrentVulnerabilities  int       `json:"current_vulnerabilities"`
	VulnerabilityChange     int       `json:"vulnerability_change"`
	PreviousINR             float64   `json:"previous_inr"`
	CurrentINR              float64   `json:"current_inr"`
	ComparedWith            time.Time `json:"compared_with"`
}

// CalculateTrend compares the current result with a previous one.
// Direction follows the security score; a higher score is an improvement.
func CalculateTrend(current, previous *models.AuditResult) *Trend {
	if current == nil || previous == nil {
		return nil
	}

	trend := &Trend{
		PreviousScore:           previous.SecurityScore,
		CurrentScore:            current.SecurityScore,
		ScoreChange:             current.SecurityScore - previous.SecurityScore,
		PreviousVulnerabilities: len(previous.Vulnerabilities),
		CurrentVulnerabilities:  len(current.Vulnerabilities),
		VulnerabilityChange:     len(current.Vulnerabilities) - len(previous.Vulnerabilities),
		PreviousINR:             previous.DetailedImpact.TotalINR,
		CurrentINR:              current.DetailedImpact.TotalINR,
		ComparedWith:            previous.Timestamp,
	}

	switch {
	case trend.ScoreChange > 0:
		trend.Direction = TrendImproving
	case trend.ScoreChange < 0:
		trend.Direction = TrendDegrading
	default:
		trend.Direction = TrendStable
	}

	return trend
}

// ScoreSparkline returns the security scores of results in order
func ScoreSparkline(results []*models.AuditResult) []int {
	scores := make([]int, 0, len(results))
	for _, r := range results {
		if r != nil {
			scores = append(scores, r.SecurityScore)
		}
	}
	return scores
}

// Sparkline renders values as unicode bars scaled between their minimum
// and maximum, followed by the first and last value.
func Sparkline(values []int) string {
	if len(values) == 0 {
		return ""
	}

	bars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	for _, v := range values {
		if max == min {
			b.WriteRune(bars[len(bars)/2])
		} else {
			normalized := float64(v-min) / float64(max-min)
			idx := int(normalized * float64(len(bars)-1))
			b.WriteRune(bars[idx])
		}
	}

	b.WriteString(fmt.Sprintf(" [%d→%d]", values[0], values[len(values)-1]))
	return b.String()
}

// GenerateComparisonReport creates a human-readable comparison
func GenerateComparisonReport(current, previous *models.AuditResult) string {
	trend := CalculateTrend(current, previous)
	if trend == nil {
		return "No previous scan to compare with.\n"
	}

	report := fmt.Sprintf("Comparing %s with %s\n\n",
		formatDate(current.Timestamp),
		formatDate(previous.Timestamp))

	report += fmt.Sprintf("Score:           %d → %d (%+d, %s)\n",
		trend.PreviousScore, trend.CurrentScore, trend.ScoreChange, trend.Direction)
	report += fmt.Sprintf("Vulnerabilities: %d → %d (%+d)\n",
		trend.PreviousVulnerabilities, trend.CurrentVulnerabilities, trend.VulnerabilityChange)
	report += fmt.Sprintf("Financial risk:  %s → %s\n",
		FormatINR(trend.PreviousINR), FormatINR(trend.CurrentINR))

	prev := SeverityDistribution(previous.Vulnerabilities)
	curr := SeverityDistribution(current.Vulnerabilities)
	for _, sev := range models.Severities {
		if prev[sev] == curr[sev] {
			continue
		}
		report += fmt.Sprintf("  %s: %d → %d (%+d)\n", sev, prev[sev], curr[sev], curr[sev]-prev[sev])
	}

	return report
}

// formatDate formats a timestamp for display
func formatDate(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// GetTrendIndicator returns a visual indicator for trend direction
func GetTrendIndicator(direction string) string {
	switch direction {
	case TrendImproving:
		return "↑"
	case TrendDegrading:
		return "↓"
	case TrendStable:
		return "→"
	default:
		return "?"
	}
}
