package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/akolanti/DocSearch/internal/domain/commonModels"
)

func testPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond, Label: "test"}
}

func TestDo_RetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testPolicy(3), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return commonModels.Transient(errors.New("503"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := fmt.Errorf("%w: bad input", commonModels.ErrValidation)
	err := Do(context.Background(), testPolicy(5), func(ctx context.Context) error {
		calls++
		return permanent
	})
	if !errors.Is(err, commonModels.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("permanent errors must not be retried, got %d calls", calls)
	}
}

func TestDo_ReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testPolicy(3), func(ctx context.Context) error {
		calls++
		return commonModels.Transient(fmt.Errorf("attempt %d", calls))
	})
	if err == nil || err.Error() != "attempt 3" {
		t.Fatalf("expected last error 'attempt 3', got %v", err)
	}
}

func TestDo_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := Policy{MaxAttempts: 10, BaseDelay: time.Hour, MaxDelay: time.Hour}
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, p, func(ctx context.Context) error {
		calls++
		return commonModels.Transient(errors.New("timeout"))
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected a single call before cancellation, got %d", calls)
	}
}

func TestPolicy_DelayIsCapped(t *testing.T) {
	p := Policy{BaseDelay: 200 * time.Millisecond, MaxDelay: time.Second}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 200 * time.Millisecond},
		{1, 400 * time.Millisecond},
		{2, 800 * time.Millisecond},
		{3, time.Second},
		{40, time.Second},
	}
	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v; want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestPolicy_DelayDoesNotOverflow(t *testing.T) {
	p := Policy{BaseDelay: 10 * time.Second, MaxDelay: time.Minute}
	for attempt := 0; attempt <= 40; attempt++ {
		d := p.Delay(attempt)
		if d <= 0 || d > time.Minute {
			t.Fatalf("Delay(%d) = %v; want within (0, 1m]", attempt, d)
		}
	}
	if got := p.Delay(30); got != time.Minute {
		t.Errorf("Delay(30) = %v; want the cap", got)
	}

	uncapped := Policy{BaseDelay: 10 * time.Second}
	if got := uncapped.Delay(30); got <= 0 {
		t.Errorf("uncapped Delay(30) overflowed to %v", got)
	}
}
