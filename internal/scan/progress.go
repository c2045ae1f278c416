// Package scan drives the cosmetic scan-progress display while an audit is
// running and reconciles it with the real completion of the request.
package scan

import (
	"time"

	"github.com/AditthyaSS/VulnExplain/internal/session"
)

// Steps are the phase labels shown while scanning, in order.
var Steps = []string{
	"Initializing secure scan environment",
	"Parsing repository structure",
	"Running static analysis engine",
	"Detecting vulnerability patterns",
	"Evaluating dependency risks",
	"Mapping compliance impact",
	"Calculating risk score",
}

const (
	// Interval is how often the step cursor advances.
	Interval = 600 * time.Millisecond
	// Grace is how long the final step stays visible after a successful audit.
	Grace = 800 * time.Millisecond
	// DefaultTimeout bounds a single audit request.
	DefaultTimeout = 120 * time.Second
)

// LastStep is the index of the final phase label.
var LastStep = len(Steps) - 1

// Progress is the step cursor state machine. The cursor only moves while
// active and never passes LastStep.
type Progress struct {
	tokens session.Tracker
	step   int
	active bool
}

// Begin starts a new scan at step 0 and returns the token step callbacks
// must carry.
func (p *Progress) Begin() session.Token {
	p.step = 0
	p.active = true
	return p.tokens.Next()
}

// Advance moves the cursor forward by one if tok is current. It reports
// whether the tick was accepted; a stale tick means the step timer was
// cancelled and should not be rescheduled.
func (p *Progress) Advance(tok session.Token) bool {
	if !p.active || !p.tokens.Valid(tok) {
		return false
	}
	if p.step < LastStep {
		p.step++
	}
	return true
}

// Complete cancels the step timer and forces the final step. The scan stays
// active until Finish or Fail.
func (p *Progress) Complete() {
	p.tokens.Invalidate()
	p.step = LastStep
}

// Finish leaves the scanning state after a successful audit.
func (p *Progress) Finish() {
	p.tokens.Invalidate()
	p.active = false
}

// Fail leaves the scanning state immediately and rewinds the cursor.
func (p *Progress) Fail() {
	p.tokens.Invalidate()
	p.active = false
	p.step = 0
}

// Step returns the current cursor.
func (p *Progress) Step() int {
	return p.step
}

// Label returns the label of the current step.
func (p *Progress) Label() string {
	return Steps[p.step]
}

// Active reports whether a scan is in progress.
func (p *Progress) Active() bool {
	return p.active
}

// Percent returns progress through the phase list in [0,1].
func (p *Progress) Percent() float64 {
	return float64(p.step+1) / float64(len(Steps))
}
