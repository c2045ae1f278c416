package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/AditthyaSS/VulnExplain/internal/aggregator"
	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/AditthyaSS/VulnExplain/internal/plan"
)

// JSONReporter generates machine-readable JSON reports
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(writer io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		pretty: pretty,
	}
}

type jsonReport struct {
	Result  *models.AuditResult `json:"result"`
	Summary *aggregator.Summary `json:"summary"`
	Trend   *aggregator.Trend   `json:"trend,omitempty"`
	Plan    plan.Plan           `json:"plan"`
	Notes   []string            `json:"notes,omitempty"`
}

// Generate writes the raw result together with its derived summary
func (r *JSONReporter) Generate(report *Report) error {
	if report == nil || report.Result == nil {
		return fmt.Errorf("no audit result to report")
	}

	return r.write(jsonReport{
		Result:  report.Result,
		Summary: report.Summary,
		Trend:   report.Trend,
		Plan:    report.Plan,
		Notes:   planNotes(report.Plan),
	})
}

// GenerateSummaryOnly writes a compact summary without the finding details
func (r *JSONReporter) GenerateSummaryOnly(report *Report) error {
	if report == nil || report.Summary == nil {
		return fmt.Errorf("no audit result to report")
	}

	s := report.Summary
	summary := struct {
		Timestamp            string                     `json:"timestamp"`
		SecurityScore        int                        `json:"security_score"`
		Grade                aggregator.RiskGrade       `json:"grade"`
		Badge                aggregator.Badge           `json:"badge"`
		TotalVulnerabilities int                        `json:"total_vulnerabilities"`
		TotalINR             float64                    `json:"total_inr"`
		Distribution         []aggregator.SeverityCount `json:"distribution"`
		Chart                []aggregator.Slice         `json:"chart"`
		Trend                *aggregator.Trend          `json:"trend,omitempty"`
	}{
		Timestamp:            report.Result.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		SecurityScore:        s.SecurityScore,
		Grade:                s.Grade,
		Badge:                s.Badge,
		TotalVulnerabilities: s.TotalVulnerabilities,
		TotalINR:             s.TotalINR,
		Distribution:         s.Distribution,
		Chart:                s.Chart,
		Trend:                report.Trend,
	}

	return r.write(summary)
}

func (r *JSONReporter) write(v interface{}) error {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	if _, err := r.writer.Write(data); err != nil {
		return err
	}

	// Add trailing newline for terminal output
	_, err = r.writer.Write([]byte("\n"))
	return err
}

func planNotes(p plan.Plan) []string {
	var notes []string
	if b := plan.Banner(p); b != "" {
		notes = append(notes, b)
	}
	if n := plan.Note(p, plan.ReportDownload); n != "" {
		notes = append(notes, n)
	}
	return notes
}
