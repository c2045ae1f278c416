package scan

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

var fast = Timing{Interval: 5 * time.Millisecond, Grace: 20 * time.Millisecond, Timeout: time.Second}

type stepLog struct {
	mu    sync.Mutex
	steps []int
}

func (l *stepLog) record(step int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step)
}

func (l *stepLog) snapshot() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.steps...)
}

func TestRunSuccess(t *testing.T) {
	want := &models.AuditResult{SecurityScore: 85}
	var log stepLog

	start := time.Now()
	got, err := Run(context.Background(), func(ctx context.Context) (*models.AuditResult, error) {
		time.Sleep(30 * time.Millisecond)
		return want, nil
	}, fast, log.record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Error("expected the submitted result to be returned")
	}

	if elapsed := time.Since(start); elapsed < 30*time.Millisecond+fast.Grace {
		t.Errorf("expected grace period before returning, elapsed %v", elapsed)
	}

	steps := log.snapshot()
	if steps[0] != 0 {
		t.Errorf("expected first reported step 0, got %d", steps[0])
	}
	if steps[len(steps)-1] != LastStep {
		t.Errorf("expected final reported step %d, got %d", LastStep, steps[len(steps)-1])
	}
	for i := 1; i < len(steps); i++ {
		if steps[i] < steps[i-1] {
			t.Errorf("steps went backwards on success: %v", steps)
		}
	}
}

func TestRunFailureReturnsImmediately(t *testing.T) {
	var log stepLog

	start := time.Now()
	_, err := Run(context.Background(), func(ctx context.Context) (*models.AuditResult, error) {
		time.Sleep(15 * time.Millisecond)
		return nil, errors.New("Invalid code")
	}, Timing{Interval: 5 * time.Millisecond, Grace: time.Second, Timeout: time.Second}, log.record)
	if err == nil {
		t.Fatal("expected error")
	}
	if elapsed := time.Since(start); elapsed >= time.Second {
		t.Errorf("failure waited for the grace period: %v", elapsed)
	}

	if msg := FailureMessage(err); msg != "Audit failed: Invalid code" {
		t.Errorf("unexpected failure message %q", msg)
	}

	steps := log.snapshot()
	if steps[len(steps)-1] != 0 {
		t.Errorf("expected cursor reset to 0, got %v", steps)
	}
}

func TestRunNoStepsAfterReturn(t *testing.T) {
	var log stepLog
	_, err := Run(context.Background(), func(ctx context.Context) (*models.AuditResult, error) {
		time.Sleep(20 * time.Millisecond)
		return &models.AuditResult{}, nil
	}, fast, log.record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n := len(log.snapshot())
	time.Sleep(5 * fast.Interval)
	if len(log.snapshot()) != n {
		t.Error("step callback fired after Run returned")
	}
}

func TestRunTimeout(t *testing.T) {
	_, err := Run(context.Background(), func(ctx context.Context) (*models.AuditResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, Timing{Interval: 5 * time.Millisecond, Timeout: 30 * time.Millisecond}, nil)

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("unexpected error text %q", err.Error())
	}
}

func TestRunNilResult(t *testing.T) {
	_, err := Run(context.Background(), func(ctx context.Context) (*models.AuditResult, error) {
		return nil, nil
	}, fast, nil)
	if err == nil {
		t.Error("expected error for empty response")
	}
}

func TestTimingDefaults(t *testing.T) {
	got := Timing{}.WithDefaults()
	if got.Interval != 600*time.Millisecond || got.Grace != 800*time.Millisecond || got.Timeout != 120*time.Second {
		t.Errorf("unexpected defaults %+v", got)
	}
}

func TestCall(t *testing.T) {
	want := &models.AuditResult{SecurityScore: 70}
	got, err := Call(context.Background(), func(ctx context.Context) (*models.AuditResult, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected request context to carry a deadline")
		}
		return want, nil
	}, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("expected the submitted result to be returned")
	}
}

func TestCallTimeout(t *testing.T) {
	_, err := Call(context.Background(), func(ctx context.Context) (*models.AuditResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, 10*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestCallEmptyResponse(t *testing.T) {
	_, err := Call(context.Background(), func(ctx context.Context) (*models.AuditResult, error) {
		return nil, nil
	}, time.Second)
	if err == nil || !strings.Contains(err.Error(), "empty audit response") {
		t.Errorf("expected empty response error, got %v", err)
	}
}
