package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

// ErrTimeout is returned when the audit does not answer within the timeout.
var ErrTimeout = errors.New("audit timed out")

// Submitter performs the audit request.
type Submitter func(ctx context.Context) (*models.AuditResult, error)

// Timing holds the scan delays. Zero fields fall back to the package defaults.
type Timing struct {
	Interval time.Duration
	Grace    time.Duration
	Timeout  time.Duration
}

// WithDefaults fills zero fields with the package defaults.
func (t Timing) WithDefaults() Timing {
	if t.Interval <= 0 {
		t.Interval = Interval
	}
	if t.Grace <= 0 {
		t.Grace = Grace
	}
	if t.Timeout <= 0 {
		t.Timeout = DefaultTimeout
	}
	return t
}

// Run submits an audit while reporting step changes to onStep, which may be
// nil. onStep is called from Run's goroutine only and is never called after
// Run returns.
//
// On success the final step is shown for the grace period before the result
// is returned. On failure Run returns at once and the last reported step is 0.
func Run(ctx context.Context, submit Submitter, timing Timing, onStep func(step int)) (*models.AuditResult, error) {
	timing = timing.WithDefaults()
	report := func(step int) {
		if onStep != nil {
			onStep(step)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timing.Timeout)
	defer cancel()

	type outcome struct {
		result *models.AuditResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := submit(ctx)
		done <- outcome{r, err}
	}()

	var p Progress
	tok := p.Begin()
	report(p.Step())

	ticker := time.NewTicker(timing.Interval)

	var out outcome
wait:
	for {
		select {
		case <-ticker.C:
			prev := p.Step()
			if p.Advance(tok) && p.Step() != prev {
				report(p.Step())
			}
		case out = <-done:
			break wait
		case <-ctx.Done():
			out = outcome{err: ctx.Err()}
			break wait
		}
	}
	ticker.Stop()

	if err := settle(out.result, out.err, timing.Timeout); err != nil {
		p.Fail()
		report(p.Step())
		return nil, err
	}

	p.Complete()
	report(p.Step())

	grace := time.NewTimer(timing.Grace)
	defer grace.Stop()
	select {
	case <-grace.C:
	case <-ctx.Done():
		// the result is already in hand; a cancelled grace period only
		// shortens the display
	}
	p.Finish()

	return out.result, nil
}

// Call performs a single audit request bounded by timeout, without any
// progress display. Zero timeout means DefaultTimeout.
func Call(ctx context.Context, submit Submitter, timeout time.Duration) (*models.AuditResult, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := submit(ctx)
	if err := settle(result, err, timeout); err != nil {
		return nil, err
	}
	return result, nil
}

// settle maps the outcome of a request to the error reported to the user.
func settle(result *models.AuditResult, err error, timeout time.Duration) error {
	if err == nil && result == nil {
		return errors.New("empty audit response")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return err
}

// FailureMessage is the user-facing text for a failed audit.
func FailureMessage(err error) string {
	return "Audit failed: " + err.Error()
}
