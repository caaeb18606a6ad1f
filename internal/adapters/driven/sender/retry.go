package sender

import (
	"context"
	"time"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// Backoff is a capped exponential retry policy.
type Backoff struct {
	// MaxAttempts includes the first try.
	MaxAttempts int
	// Initial is the delay after the first failure; it doubles each retry.
	Initial time.Duration
}

// backoffFrom reads the retry policy from dispatch settings, filling
// unset values with the defaults.
func backoffFrom(s domain.DispatchSettings) Backoff {
	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = domain.DefaultMaxSendAttempts
	}
	initial := s.InitialBackoffMS
	if initial <= 0 {
		initial = domain.DefaultInitialBackoffMS
	}
	return Backoff{MaxAttempts: attempts, Initial: time.Duration(initial) * time.Millisecond}
}

// sleepFunc waits for d or until ctx is done.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// do calls fn until it succeeds, returns a permanent error, or the attempt
// cap is reached. The last error is returned.
func (b Backoff) do(ctx context.Context, sleep sleepFunc, permanent func(error) bool, fn func(attempt int) error) error {
	attempts := max(b.MaxAttempts, 1)
	delay := b.Initial

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if permanent(err) || attempt == attempts {
			break
		}
		logger.Debug("attempt %d/%d failed, retrying in %s: %v", attempt, attempts, delay, err)
		if serr := sleep(ctx, delay); serr != nil {
			return err
		}
		delay *= 2
	}
	return err
}
