package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

func TestBuildExplanation(t *testing.T) {
	result := sampleResult(time.Now(), 67, sqli(), xss())

	e := buildExplanation(result)

	if len(e.PerSeverity) != 2 {
		t.Fatalf("expected 2 severity rows, got %d", len(e.PerSeverity))
	}
	if e.PerSeverity[0].Severity != models.SeverityCritical || e.PerSeverity[0].Subtotal != 25 {
		t.Errorf("first row = %+v, want Critical subtotal 25", e.PerSeverity[0])
	}
	if e.PerSeverity[1].Severity != models.SeverityMedium || e.PerSeverity[1].Subtotal != 8 {
		t.Errorf("second row = %+v, want Medium subtotal 8", e.PerSeverity[1])
	}
	if e.TotalPenalty != 33 {
		t.Errorf("TotalPenalty = %d, want 33", e.TotalPenalty)
	}
	if e.ComputedScore != 67 {
		t.Errorf("ComputedScore = %d, want 67", e.ComputedScore)
	}
	if e.Formula != "max(0, 100 - 33) = 67" {
		t.Errorf("Formula = %q", e.Formula)
	}
	if e.Grade.Letter != "C" {
		t.Errorf("Grade = %s, want C", e.Grade.Letter)
	}
	if e.TotalINR != 200000 {
		t.Errorf("TotalINR = %v, want 200000", e.TotalINR)
	}
}

func TestBuildExplanationEmptyResult(t *testing.T) {
	e := buildExplanation(sampleResult(time.Now(), 100))

	if len(e.PerSeverity) != 0 {
		t.Errorf("expected no severity rows, got %d", len(e.PerSeverity))
	}
	if e.ComputedScore != 100 {
		t.Errorf("ComputedScore = %d, want 100", e.ComputedScore)
	}
	if e.Grade.Letter != "A" {
		t.Errorf("Grade = %s, want A", e.Grade.Letter)
	}
}

func TestBuildExplanationUnknownSeverity(t *testing.T) {
	odd := xss()
	odd.Severity = "Severe"

	e := buildExplanation(sampleResult(time.Now(), 97, odd))

	if len(e.PerSeverity) != 1 || e.PerSeverity[0].Severity != models.SeverityLow {
		t.Fatalf("expected unknown label counted as Low, got %+v", e.PerSeverity)
	}
	if e.ComputedScore != 97 {
		t.Errorf("ComputedScore = %d, want 97", e.ComputedScore)
	}
}

func TestWriteExplainText(t *testing.T) {
	var buf bytes.Buffer
	if err := writeExplainText(&buf, buildExplanation(sampleResult(time.Now(), 67, sqli(), xss()))); err != nil {
		t.Fatalf("writeExplainText: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Security Score Breakdown",
		"Critical    1 × 25 = 25",
		"score = max(0, 100 - 33) = 67",
		"→ ≥ 60  C (Fix Required)",
		"→ ≥ 60  Fair",
		"Total         ₹2,00,000",
		"Result: 67/100, grade C (Fix Required), Fair",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "reported by audit service") {
		t.Error("matching scores should not list the reported score")
	}
}

func TestWriteExplainTextReportedScoreDiffers(t *testing.T) {
	var buf bytes.Buffer
	_ = writeExplainText(&buf, buildExplanation(sampleResult(time.Now(), 80, sqli())))

	if !strings.Contains(buf.String(), "reported by audit service: 80") {
		t.Errorf("expected reported score line:\n%s", buf.String())
	}
}
