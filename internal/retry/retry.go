// Package retry provides the retry policy used when calling external
// text-producing collaborators. A single policy replaces the per-call-site
// retry loops the service would otherwise accumulate.
package retry

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrEmptyOutput is returned by Do when every attempt succeeded at the
// transport level but produced only empty or whitespace output.
var ErrEmptyOutput = errors.New("collaborator returned empty output")

// Kind classifies why an attempt failed. The two kinds carry different
// delay schedules: call errors are usually transient transport failures
// and back off exponentially, while empty output means the model produced
// nothing and is retried on a fixed delay.
type Kind int

const (
	// KindError means the call itself failed.
	KindError Kind = iota
	// KindEmpty means the call succeeded but returned no usable text.
	KindEmpty
)

// DelayFunc computes the wait before the next attempt. attempt is
// zero-based and names the attempt that just failed.
type DelayFunc func(kind Kind, attempt int) time.Duration

// DefaultDelay waits 2^attempt seconds after a call error and a flat
// second after empty output. The asymmetry is deliberate; do not unify.
func DefaultDelay(kind Kind, attempt int) time.Duration {
	if kind == KindEmpty {
		return time.Second
	}
	return time.Duration(1<<attempt) * time.Second
}

// Policy bounds attempts against a collaborator and spaces them out with
// a per-failure-kind delay. The zero value retries 3 times with
// DefaultDelay and a context-aware sleep.
type Policy struct {
	// MaxAttempts is the total number of calls made; values below 1 are
	// treated as 1.
	MaxAttempts int
	// Delay overrides DefaultDelay when set.
	Delay DelayFunc
	// Sleep overrides the context-aware sleep when set. Tests inject a
	// recorder here.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultMaxAttempts is used when Policy.MaxAttempts is zero.
const DefaultMaxAttempts = 3

// Do runs op until it yields non-empty text or attempts are exhausted.
// The returned text is trimmed. On exhaustion it returns the last call
// error, or ErrEmptyOutput when every attempt came back blank. A
// cancelled context stops the schedule early with the last failure.
func (p Policy) Do(ctx context.Context, op func(context.Context) (string, error)) (string, error) {
	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = DefaultMaxAttempts
	}
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Delay
	if delay == nil {
		delay = DefaultDelay
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		out, err := op(ctx)
		if err == nil {
			if trimmed := strings.TrimSpace(out); trimmed != "" {
				return trimmed, nil
			}
			lastErr = ErrEmptyOutput
		} else {
			lastErr = err
		}

		if attempt == attempts-1 {
			break
		}

		kind := KindError
		if errors.Is(lastErr, ErrEmptyOutput) {
			kind = KindEmpty
		}
		if sleepErr := sleep(ctx, delay(kind, attempt)); sleepErr != nil {
			return "", lastErr
		}
	}

	return "", lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
