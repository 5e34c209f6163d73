package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/retry"
)

func TestWithBackoff_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := retry.WithBackoff(context.Background(), 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWithBackoff_WrapsLastError(t *testing.T) {
	sentinel := errors.New("unreachable")
	calls := 0
	err := retry.WithBackoff(context.Background(), 2, time.Millisecond, func(ctx context.Context) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestWithBackoff_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry.WithBackoff(ctx, 5, time.Hour, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestQuadratic_Schedule(t *testing.T) {
	q := &retry.Quadratic{Unit: 10 * time.Millisecond}
	for i, want := range []time.Duration{10 * time.Millisecond, 40 * time.Millisecond, 90 * time.Millisecond} {
		if got := q.NextBackOff(); got != want {
			t.Errorf("step %d: expected %v, got %v", i+1, want, got)
		}
	}
	q.Reset()
	if got := q.NextBackOff(); got != 10*time.Millisecond {
		t.Errorf("expected schedule to restart after Reset, got %v", got)
	}
}

func TestWithBackoff_AttemptBounds(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		wantCalls   int
	}{
		{"zero means one", 0, 1},
		{"negative means one", -3, 1},
		{"single", 1, 1},
		{"four", 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retry.WithBackoff(context.Background(), tt.maxAttempts, time.Microsecond, func(ctx context.Context) error {
				calls++
				return errors.New("down")
			})
			if err == nil {
				t.Fatal("expected an error")
			}
			if calls != tt.wantCalls {
				t.Errorf("expected %d calls, got %d", tt.wantCalls, calls)
			}
		})
	}
}
