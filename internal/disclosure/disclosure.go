// Package disclosure tracks which category groups and findings are expanded
// in the results view.
//
// At most one group is open at a time. Finding rows toggle independently.
package disclosure

import (
	"fmt"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

// State is the expand/collapse state of the results view. The zero value has
// everything collapsed.
type State struct {
	groups   map[string]bool
	findings map[string]bool
}

// New returns a fully collapsed state.
func New() *State {
	return &State{
		groups:   make(map[string]bool),
		findings: make(map[string]bool),
	}
}

// ToggleGroup replaces the whole group state: if category was open every
// group closes, otherwise only category is open.
func (s *State) ToggleGroup(category string) {
	wasOpen := s.groups[category]
	s.groups = make(map[string]bool)
	if !wasOpen {
		s.groups[category] = true
	}
}

// GroupOpen reports whether the category group is expanded.
func (s *State) GroupOpen(category string) bool {
	return s.groups[category]
}

// OpenGroup returns the expanded category, if any.
func (s *State) OpenGroup() (string, bool) {
	for category, open := range s.groups {
		if open {
			return category, true
		}
	}
	return "", false
}

// ToggleFinding flips one finding row.
func (s *State) ToggleFinding(key string) {
	if s.findings == nil {
		s.findings = make(map[string]bool)
	}
	s.findings[key] = !s.findings[key]
}

// FindingOpen reports whether the finding row is expanded.
func (s *State) FindingOpen(key string) bool {
	return s.findings[key]
}

// Reset collapses everything. Called whenever a new result replaces the old one.
func (s *State) Reset() {
	s.groups = make(map[string]bool)
	s.findings = make(map[string]bool)
}

// FindingKey returns the row key for the idx-th finding (0-based) in the
// current layout. Grouped rows are keyed by category and position inside the
// group, flat rows by position in the full list.
func FindingKey(mode models.ViewMode, category string, idx int) string {
	if mode == models.ViewAll {
		return fmt.Sprintf("all-%d", idx)
	}
	return fmt.Sprintf("%s-%d", category, idx)
}
