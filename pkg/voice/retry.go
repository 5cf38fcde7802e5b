package voice

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"
)

// ErrZeroConfidence marks a transcription that came back empty with a
// confidence of zero. Retrying the same audio will not help.
var ErrZeroConfidence = errors.New("transcription returned zero confidence")

const MaxAttempts = 5

// retryDelays is the base wait before each retry (attempt 2..5 plus a
// final slot kept for symmetry). Actual waits get +/-25% jitter.
var retryDelays = [MaxAttempts]time.Duration{
	1 * time.Second,
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
	16 * time.Second,
}

// Retryable reports whether an upload error is worth another attempt.
// Auth failures and rate limits fail fast, as does audio the engine
// could not hear at all.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrZeroConfidence) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			return false
		}
	}
	return true
}

// jitter spreads a delay by +/-25% so simultaneous retries do not
// hammer the upstream in lockstep.
func jitter(d time.Duration) time.Duration {
	spread := float64(d) * 0.25
	offset := (rand.Float64()*2 - 1) * spread
	return time.Duration(float64(d) + offset)
}

// Retry runs fn up to MaxAttempts times, sleeping between attempts per
// the delay table. It stops early on success, on a non-retryable error,
// or when the context is done.
func Retry(ctx context.Context, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if !Retryable(lastErr) {
			return lastErr
		}
		if attempt == MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitter(retryDelays[attempt-1])):
		}
	}
	return lastErr
}
