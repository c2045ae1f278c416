package disclosure

import (
	"testing"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

func openCount(s *State) int {
	n := 0
	for _, open := range s.groups {
		if open {
			n++
		}
	}
	return n
}

func TestToggleGroupAccordion(t *testing.T) {
	s := New()

	s.ToggleGroup("XSS")
	if !s.GroupOpen("XSS") {
		t.Fatal("expected XSS open")
	}

	s.ToggleGroup("SQL Injection")
	if s.GroupOpen("XSS") {
		t.Error("expected XSS closed after opening another group")
	}
	if !s.GroupOpen("SQL Injection") {
		t.Error("expected SQL Injection open")
	}

	s.ToggleGroup("SQL Injection")
	if openCount(s) != 0 {
		t.Errorf("expected all closed after re-toggling the open group, got %d open", openCount(s))
	}
	if _, ok := s.OpenGroup(); ok {
		t.Error("expected no open group")
	}
}

func TestAtMostOneGroupOpen(t *testing.T) {
	s := New()
	sequence := []string{"a", "b", "b", "c", "a", "a", "d", "c", "c", "b"}
	for _, g := range sequence {
		s.ToggleGroup(g)
		if n := openCount(s); n > 1 {
			t.Fatalf("after toggling %q: %d groups open", g, n)
		}
	}

	// "b" was toggled last from a closed state
	if got, ok := s.OpenGroup(); !ok || got != "b" {
		t.Errorf("expected b open, got %q (%v)", got, ok)
	}
}

func TestToggleFindingIndependent(t *testing.T) {
	s := New()
	s.ToggleFinding("XSS-0")
	s.ToggleFinding("XSS-1")
	s.ToggleFinding("all-3")

	for _, key := range []string{"XSS-0", "XSS-1", "all-3"} {
		if !s.FindingOpen(key) {
			t.Errorf("expected %s open", key)
		}
	}

	s.ToggleFinding("XSS-0")
	if s.FindingOpen("XSS-0") {
		t.Error("expected XSS-0 closed")
	}
	if !s.FindingOpen("XSS-1") {
		t.Error("closing one finding must not affect another")
	}

	s.ToggleGroup("XSS")
	if !s.FindingOpen("XSS-1") {
		t.Error("group toggles must not affect finding state")
	}
}

func TestZeroValueUsable(t *testing.T) {
	var s State
	s.ToggleFinding("all-0")
	s.ToggleGroup("x")
	if !s.FindingOpen("all-0") || !s.GroupOpen("x") {
		t.Error("expected zero-value state to accept toggles")
	}
}

func TestReset(t *testing.T) {
	s := New()
	s.ToggleGroup("XSS")
	s.ToggleFinding("XSS-0")

	s.Reset()
	if s.GroupOpen("XSS") || s.FindingOpen("XSS-0") {
		t.Error("expected everything collapsed after reset")
	}
}

func TestFindingKey(t *testing.T) {
	if got := FindingKey(models.ViewGrouped, "SQL Injection", 2); got != "SQL Injection-2" {
		t.Errorf("unexpected grouped key %q", got)
	}
	if got := FindingKey(models.ViewAll, "SQL Injection", 2); got != "all-2" {
		t.Errorf("unexpected flat key %q", got)
	}
}
