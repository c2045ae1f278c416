package storage

import (
	"time"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

// Storage defines the interface for persisting audit results and reports
type Storage interface {
	// SaveResult stores a complete audit result
	SaveResult(result *models.AuditResult) error

	// LoadResult loads a result from a specific timestamp
	LoadResult(timestamp time.Time) (*models.AuditResult, error)

	// GetLatestResult retrieves the most recent audit result
	GetLatestResult() (*models.AuditResult, error)

	// GetLastNResults retrieves the last N audit results, oldest first
	GetLastNResults(n int) ([]*models.AuditResult, error)

	// ListResults returns all available result timestamps
	ListResults() ([]time.Time, error)

	// SaveReport verifies and writes a generated PDF report, returning its path
	SaveReport(data []byte, filename string) (string, error)
}
