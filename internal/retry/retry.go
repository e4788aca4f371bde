package retry

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

// Policy is a bounded retry with capped exponential backoff. One policy
// object serves every call site that wants retries (coordinator, search
// client); the fetcher and extractor stay single-shot.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Do runs op until it succeeds, attempts run out, or the context is done.
// The delay doubles per attempt up to MaxDelay (unbounded when MaxDelay is 0).
func (p Policy) Do(ctx context.Context, op func() error) error {
	if p.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	delay := p.BaseDelay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = op()
		if lastErr == nil {
			if attempt > 1 {
				log.Debug().Int("attempt", attempt).Msg("operation succeeded after retry")
			}
			return nil
		}

		if attempt == p.MaxAttempts {
			break
		}
		log.Debug().Int("attempt", attempt).Int("max_attempts", p.MaxAttempts).
			Err(lastErr).Msg("operation failed, will retry")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return lastErr
}
