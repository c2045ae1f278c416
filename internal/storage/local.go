package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

const (
	resultSuffix = "-audit.json"
	tsLayout     = "2006-01-02T15-04-05"
	// appended when the timestamp has a sub-second part, so audits finishing
	// within the same second get distinct files
	fracLayout = ".000000000"
)

// LocalStorage implements Storage interface using local filesystem
type LocalStorage struct {
	baseDir string
}

// NewLocal creates a new local storage instance
func NewLocal(baseDir string) *LocalStorage {
	return &LocalStorage{
		baseDir: baseDir,
	}
}

// SaveResult stores an audit result to disk
func (s *LocalStorage) SaveResult(result *models.AuditResult) error {
	if result == nil {
		return fmt.Errorf("no audit result to save")
	}
	if result.Timestamp.IsZero() {
		return fmt.Errorf("audit result has no timestamp")
	}

	runsDir := filepath.Join(s.baseDir, "runs")
	if err := os.MkdirAll(runsDir, 0755); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}

	path := filepath.Join(runsDir, s.formatTimestamp(result.Timestamp)+resultSuffix)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// LoadResult loads a result from a specific timestamp
func (s *LocalStorage) LoadResult(timestamp time.Time) (*models.AuditResult, error) {
	path := filepath.Join(s.baseDir, "runs", s.formatTimestamp(timestamp)+resultSuffix)
	return s.loadResultFromFile(path)
}

// GetLatestResult retrieves the most recent audit result
func (s *LocalStorage) GetLatestResult() (*models.AuditResult, error) {
	timestamps, err := s.ListResults()
	if err != nil {
		return nil, err
	}

	if len(timestamps) == 0 {
		return nil, fmt.Errorf("no stored audits found")
	}

	return s.LoadResult(timestamps[len(timestamps)-1])
}

// GetLastNResults retrieves the last N audit results
func (s *LocalStorage) GetLastNResults(n int) ([]*models.AuditResult, error) {
	timestamps, err := s.ListResults()
	if err != nil {
		return nil, err
	}

	if len(timestamps) == 0 {
		return nil, fmt.Errorf("no stored audits found")
	}

	start := len(timestamps) - n
	if start < 0 {
		start = 0
	}

	selected := timestamps[start:]
	results := make([]*models.AuditResult, 0, len(selected))

	for _, timestamp := range selected {
		result, err := s.LoadResult(timestamp)
		if err != nil {
			// Skip results that fail to load but continue with others
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

// ListResults returns all available result timestamps sorted chronologically
func (s *LocalStorage) ListResults() ([]time.Time, error) {
	runsDir := filepath.Join(s.baseDir, "runs")

	if _, err := os.Stat(runsDir); os.IsNotExist(err) {
		return []time.Time{}, nil
	}

	entries, err := os.ReadDir(runsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var timestamps []time.Time

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), resultSuffix) {
			continue
		}

		// Format: 2006-01-02T15-04-05[.000000000]-audit.json
		timestamp, err := s.parseTimestamp(strings.TrimSuffix(entry.Name(), resultSuffix))
		if err != nil {
			continue
		}

		timestamps = append(timestamps, timestamp)
	}

	sort.Slice(timestamps, func(i, j int) bool {
		return timestamps[i].Before(timestamps[j])
	})

	return timestamps, nil
}

// SaveReport writes report bytes under reports/ after checking they form a
// readable PDF. An existing file with the same name is replaced.
func (s *LocalStorage) SaveReport(data []byte, filename string) (string, error) {
	if _, err := VerifyPDF(data); err != nil {
		return "", err
	}

	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("invalid report filename %q", filename)
	}

	reportsDir := filepath.Join(s.baseDir, "reports")
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := filepath.Join(reportsDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

func (s *LocalStorage) loadResultFromFile(path string) (*models.AuditResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("audit not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var result models.AuditResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

// formatTimestamp converts a time.Time to filename-safe format
func (s *LocalStorage) formatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() == 0 {
		return t.Format(tsLayout)
	}
	return t.Format(tsLayout + fracLayout)
}

// parseTimestamp converts filename format back to time.Time
func (s *LocalStorage) parseTimestamp(str string) (time.Time, error) {
	layout := tsLayout
	if strings.Contains(str, ".") {
		layout += fracLayout
	}
	return time.Parse(layout, str)
}

// GetStoragePath returns the full path to the storage directory
func (s *LocalStorage) GetStoragePath() string {
	return s.baseDir
}

// EnsureDirectoryExists creates the storage directory if it doesn't exist
func (s *LocalStorage) EnsureDirectoryExists() error {
	return os.MkdirAll(filepath.Join(s.baseDir, "runs"), 0755)
}
