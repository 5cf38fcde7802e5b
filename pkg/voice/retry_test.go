package voice

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func shortDelays(t *testing.T) {
	t.Helper()
	saved := retryDelays
	for i := range retryDelays {
		retryDelays[i] = time.Millisecond
	}
	t.Cleanup(func() { retryDelays = saved })
}

func TestRetryExhaustsAttempts(t *testing.T) {
	shortDelays(t)

	calls := 0
	wantErr := errors.New("upstream down")
	err := Retry(context.Background(), func(attempt int) error {
		calls++
		if attempt != calls {
			t.Errorf("attempt = %d, want %d", attempt, calls)
		}
		return wantErr
	})

	if calls != MaxAttempts {
		t.Errorf("calls = %d, want %d", calls, MaxAttempts)
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestRetryStopsOnSuccess(t *testing.T) {
	shortDelays(t)

	calls := 0
	err := Retry(context.Background(), func(attempt int) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryFailsFast(t *testing.T) {
	shortDelays(t)

	tests := []struct {
		name string
		err  error
	}{
		{"unauthorized", &StatusError{StatusCode: http.StatusUnauthorized}},
		{"forbidden", &StatusError{StatusCode: http.StatusForbidden}},
		{"rate limited", &StatusError{StatusCode: http.StatusTooManyRequests}},
		{"zero confidence", ErrZeroConfidence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), func(attempt int) error {
				calls++
				return tt.err
			})

			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestRetryRetriesServerErrors(t *testing.T) {
	shortDelays(t)

	calls := 0
	err := Retry(context.Background(), func(attempt int) error {
		calls++
		return &StatusError{StatusCode: http.StatusBadGateway}
	})

	if calls != MaxAttempts {
		t.Errorf("calls = %d, want %d", calls, MaxAttempts)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want StatusError", err)
	}
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Retry(ctx, func(attempt int) error {
		calls++
		return errors.New("transient")
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestJitterStaysInBounds(t *testing.T) {
	base := 8 * time.Second
	for i := 0; i < 100; i++ {
		got := jitter(base)
		if got < 6*time.Second || got > 10*time.Second {
			t.Fatalf("jitter(%v) = %v, outside +/-25%%", base, got)
		}
	}
}
