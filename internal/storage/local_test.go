package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

func sampleResult(ts time.Time) *models.AuditResult {
	return &models.AuditResult{
		ID:        "r-" + ts.Format("0102"),
		Timestamp: ts,
		Vulnerabilities: []models.Vulnerability{
			{Title: "SQL Injection", Severity: models.SeverityCritical, Category: "SQL Injection"},
			{Title: "Open Redirect", Severity: models.SeverityHigh},
		},
		SecurityScore: 60,
		DetailedImpact: models.DetailedImpact{
			TotalINR:  1040000,
			Breakdown: models.ImpactBreakdown{FixCost: 80000, Downtime: 200000, RegulatoryFines: 250000, Reputation: 200000},
		},
	}
}

func TestNewLocal(t *testing.T) {
	s := NewLocal("/tmp/test")
	if s.baseDir != "/tmp/test" {
		t.Errorf("expected baseDir=/tmp/test, got %s", s.baseDir)
	}
}

func TestGetStoragePath(t *testing.T) {
	s := NewLocal("/tmp/vulnexplain")
	if s.GetStoragePath() != "/tmp/vulnexplain" {
		t.Errorf("expected /tmp/vulnexplain, got %s", s.GetStoragePath())
	}
}

func TestEnsureDirectoryExists(t *testing.T) {
	dir := t.TempDir()
	baseDir := filepath.Join(dir, "nested", "vulnexplain")
	s := NewLocal(baseDir)

	if err := s.EnsureDirectoryExists(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runsDir := filepath.Join(baseDir, "runs")
	if _, err := os.Stat(runsDir); err != nil {
		t.Fatalf("expected runs directory to exist: %v", err)
	}
}

func TestSaveAndLoadResult(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	ts := time.Date(2026, 2, 15, 10, 30, 0, 0, time.UTC)
	result := sampleResult(ts)

	// Save
	if err := s.SaveResult(result); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	// Load
	loaded, err := s.LoadResult(ts)
	if err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
	if len(loaded.Vulnerabilities) != 2 {
		t.Errorf("expected 2 vulnerabilities, got %d", len(loaded.Vulnerabilities))
	}
	if loaded.SecurityScore != 60 {
		t.Errorf("expected score 60, got %d", loaded.SecurityScore)
	}
	if loaded.DetailedImpact.Breakdown.RegulatoryFines != 250000 {
		t.Errorf("expected fines 250000, got %v", loaded.DetailedImpact.Breakdown.RegulatoryFines)
	}
	if loaded.ID != result.ID {
		t.Errorf("expected id %s, got %s", result.ID, loaded.ID)
	}
}

func TestSaveResultRejectsMissingTimestamp(t *testing.T) {
	s := NewLocal(t.TempDir())
	if err := s.SaveResult(&models.AuditResult{}); err == nil {
		t.Fatal("expected error for result without timestamp")
	}
	if err := s.SaveResult(nil); err == nil {
		t.Fatal("expected error for nil result")
	}
}

func TestLoadResultNotFound(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.LoadResult(ts)
	if err == nil {
		t.Fatal("expected error for missing result")
	}
}

func TestListResultsEmpty(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	runs, err := s.ListResults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestListResultsMultiple(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	ts1 := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	ts2 := time.Date(2026, 2, 12, 10, 0, 0, 0, time.UTC)
	ts3 := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)

	for _, ts := range []time.Time{ts2, ts1, ts3} {
		if err := s.SaveResult(sampleResult(ts)); err != nil {
			t.Fatalf("SaveResult: %v", err)
		}
	}

	runs, err := s.ListResults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}

	// Should be sorted chronologically
	if !runs[0].Before(runs[1]) || !runs[1].Before(runs[2]) {
		t.Error("runs should be sorted chronologically")
	}
}

func TestGetLatestResult(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	ts1 := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	ts2 := time.Date(2026, 2, 12, 10, 0, 0, 0, time.UTC)

	if err := s.SaveResult(sampleResult(ts1)); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveResult(sampleResult(ts2)); err != nil {
		t.Fatal(err)
	}

	latest, err := s.GetLatestResult()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !latest.Timestamp.Equal(ts2) {
		t.Errorf("expected latest run at %v, got %v", ts2, latest.Timestamp)
	}
}

func TestGetLatestResultEmpty(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	_, err := s.GetLatestResult()
	if err == nil {
		t.Fatal("expected error for empty storage")
	}
}

func TestGetLastNResults(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	timestamps := []time.Time{
		time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 12, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC),
	}

	for _, ts := range timestamps {
		if err := s.SaveResult(sampleResult(ts)); err != nil {
			t.Fatal(err)
		}
	}

	// Get last 3
	runs, err := s.GetLastNResults(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}

	// Get more than available
	runs, err = s.GetLastNResults(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 5 {
		t.Fatalf("expected 5 runs, got %d", len(runs))
	}
}

func TestGetLastNResultsEmpty(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	_, err := s.GetLastNResults(3)
	if err == nil {
		t.Fatal("expected error for empty storage")
	}
}

func TestListResultsIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	runsDir := filepath.Join(dir, "runs")
	if err := os.MkdirAll(runsDir, 0755); err != nil {
		t.Fatal(err)
	}

	// Create a file that is not an audit
	if err := os.WriteFile(filepath.Join(runsDir, "notes.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	// Create a directory inside runs
	if err := os.MkdirAll(filepath.Join(runsDir, "subdir"), 0755); err != nil {
		t.Fatal(err)
	}
	// Create a file with invalid timestamp
	if err := os.WriteFile(filepath.Join(runsDir, "bad-time-audit.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	runs, err := s.ListResults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestFormatAndParseTimestamp(t *testing.T) {
	s := NewLocal("/tmp")
	ts := time.Date(2026, 2, 15, 10, 30, 45, 0, time.UTC)

	formatted := s.formatTimestamp(ts)
	if formatted != "2026-02-15T10-30-45" {
		t.Errorf("expected 2026-02-15T10-30-45, got %s", formatted)
	}

	parsed, err := s.parseTimestamp(formatted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.Equal(ts) {
		t.Errorf("expected %v, got %v", ts, parsed)
	}
}

func TestFormatTimestampSubSecond(t *testing.T) {
	s := NewLocal("/tmp")
	ts := time.Date(2026, 2, 15, 10, 30, 45, 120000000, time.UTC)

	formatted := s.formatTimestamp(ts)
	if formatted != "2026-02-15T10-30-45.120000000" {
		t.Errorf("expected 2026-02-15T10-30-45.120000000, got %s", formatted)
	}

	parsed, err := s.parseTimestamp(formatted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.Equal(ts) {
		t.Errorf("expected %v, got %v", ts, parsed)
	}
}

func TestSaveResultSameSecondKeepsBoth(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	first := time.Date(2026, 2, 15, 10, 0, 0, 100000000, time.UTC)
	second := first.Add(500 * time.Millisecond)

	a := sampleResult(first)
	a.ID = "first"
	b := sampleResult(second)
	b.ID = "second"
	for _, r := range []*models.AuditResult{b, a} {
		if err := s.SaveResult(r); err != nil {
			t.Fatalf("SaveResult: %v", err)
		}
	}

	runs, err := s.ListResults()
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].Equal(first) || !runs[1].Equal(second) {
		t.Errorf("runs = %v, want [%v %v]", runs, first, second)
	}

	latest, err := s.GetLatestResult()
	if err != nil {
		t.Fatalf("GetLatestResult: %v", err)
	}
	if latest.ID != "second" {
		t.Errorf("latest = %q, want second", latest.ID)
	}
}

func TestLoadResultWholeSecondFile(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)
	ts := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	if err := s.SaveResult(sampleResult(ts)); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "runs", "2026-02-15T10-00-00-audit.json")); err != nil {
		t.Fatalf("expected whole-second file name: %v", err)
	}
	runs, err := s.ListResults()
	if err != nil || len(runs) != 1 {
		t.Fatalf("ListResults = %v, %v", runs, err)
	}
	if _, err := s.LoadResult(runs[0]); err != nil {
		t.Errorf("LoadResult: %v", err)
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	s := NewLocal("/tmp")
	_, err := s.parseTimestamp("not-a-timestamp")
	if err == nil {
		t.Fatal("expected error for invalid timestamp")
	}
}

func TestSaveReport(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	path, err := s.SaveReport(minimalPDF(), "VulnExplain-Security-Report.pdf")
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if path != filepath.Join(dir, "reports", "VulnExplain-Security-Report.pdf") {
		t.Errorf("unexpected path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if string(data) != string(minimalPDF()) {
		t.Error("report bytes were not written unchanged")
	}
}

func TestSaveReportStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	path, err := s.SaveReport(minimalPDF(), "../../escape.pdf")
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(dir, "reports") {
		t.Errorf("report written outside reports dir: %s", path)
	}
}

func TestSaveReportRejectsNonPDF(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	if _, err := s.SaveReport([]byte(`{"detail": "oops"}`), "report.pdf"); err == nil {
		t.Fatal("expected error for non-PDF bytes")
	}
	if _, err := os.Stat(filepath.Join(dir, "reports", "report.pdf")); !os.IsNotExist(err) {
		t.Error("invalid report must not be written")
	}
}
