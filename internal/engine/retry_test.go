package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func noSleep(waits *[]time.Duration) sleepFunc {
	return func(_ context.Context, d time.Duration) error {
		if waits != nil {
			*waits = append(*waits, d)
		}
		return nil
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"http 502", &Error{Kind: KindNetwork, StatusCode: 502}, true},
		{"timeout", &Error{Kind: KindNetwork, Timeout: true}, true},
		{"rate limited", &Error{Kind: KindRateLimited, StatusCode: 429}, false},
		{"parsing", NewError(KindParsing, "bad json"), false},
		{"plain error", errors.New("something"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryDoSuccess(t *testing.T) {
	calls := 0
	got, err := retryDo(context.Background(), DefaultRetryPolicy, noSleep(nil), func(int) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want %q", got, "ok")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryDoLinearBackoff(t *testing.T) {
	var waits []time.Duration
	p := RetryPolicy{Retries: 3, Delay: time.Second}
	calls := 0
	_, err := retryDo(context.Background(), p, noSleep(&waits), func(int) (string, error) {
		calls++
		return "", &Error{Kind: KindNetwork, StatusCode: 503}
	})
	if StatusOf(err) != 503 {
		t.Fatalf("expected last 503 error, got %v", err)
	}
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}
	if len(waits) != len(want) {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Errorf("wait[%d] = %v, want %v", i, waits[i], want[i])
		}
	}
}

func TestRetryDoRetryThenSuccess(t *testing.T) {
	calls := 0
	got, err := retryDo(context.Background(), DefaultRetryPolicy, noSleep(nil), func(int) (string, error) {
		calls++
		if calls < 3 {
			return "", &Error{Kind: KindNetwork, Timeout: true}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Errorf("got %q after %d calls, want ok after 3", got, calls)
	}
}

func TestRetryDoRateLimitedStopsImmediately(t *testing.T) {
	calls := 0
	_, err := retryDo(context.Background(), DefaultRetryPolicy, noSleep(nil), func(int) (string, error) {
		calls++
		return "", &Error{Kind: KindRateLimited, StatusCode: 429}
	})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryDoNoAttempts(t *testing.T) {
	_, err := retryDo(context.Background(), RetryPolicy{Retries: -1}, noSleep(nil), func(int) (string, error) {
		t.Fatal("fn must not run")
		return "", nil
	})
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("expected generic network error, got %v", err)
	}
}

func TestRetryDoContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := retryDo(ctx, DefaultRetryPolicy, noSleep(nil), func(int) (string, error) {
		calls++
		return "ok", nil
	})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected 0 calls, got %d", calls)
	}
}
