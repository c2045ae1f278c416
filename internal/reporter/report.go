package reporter

import (
	"time"

	"github.com/AditthyaSS/VulnExplain/internal/aggregator"
	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/AditthyaSS/VulnExplain/internal/plan"
)

// Report bundles an audit result with everything derived from it for output
type Report struct {
	Result  *models.AuditResult
	Summary *aggregator.Summary
	Trend   *aggregator.Trend
	Plan    plan.Plan
}

// NewReport derives the summary for result. previous may be nil.
func NewReport(result, previous *models.AuditResult, p plan.Plan, view models.ChartView) *Report {
	return &Report{
		Result:  result,
		Summary: aggregator.Summarize(result, view),
		Trend:   aggregator.CalculateTrend(result, previous),
		Plan:    p,
	}
}

// formatTimestamp formats a timestamp for display
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
