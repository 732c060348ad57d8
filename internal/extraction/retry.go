package extraction

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// RetryStrategy is exponential backoff for vision API calls
type RetryStrategy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	Jitter      bool
}

// NewRetryStrategy returns 3 attempts backing off 1s, 2s, 4s capped at 8s
func NewRetryStrategy() *RetryStrategy {
	return &RetryStrategy{
		MaxAttempts: 3,
		BaseBackoff: 1 * time.Second,
		MaxBackoff:  8 * time.Second,
		Jitter:      true,
	}
}

// Backoff returns the wait before retry number attempt (1-based)
func (s *RetryStrategy) Backoff(attempt int) time.Duration {
	if attempt <= 0 {
		return s.BaseBackoff
	}

	backoff := time.Duration(math.Pow(2, float64(attempt-1))) * s.BaseBackoff
	if backoff > s.MaxBackoff {
		backoff = s.MaxBackoff
	}

	// ±10%
	if s.Jitter {
		if jitterRange := backoff / 10; jitterRange > 0 {
			backoff += time.Duration(rand.Int63n(int64(jitterRange*2))) - jitterRange
			if backoff < s.BaseBackoff {
				backoff = s.BaseBackoff
			}
		}
	}
	return backoff
}

// IsRetryable reports whether err is a rate limit, a server error or a
// network timeout
func (s *RetryStrategy) IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Do calls fn until it succeeds, fails permanently or attempts run out
func (s *RetryStrategy) Do(ctx context.Context, fn func() error) error {
	attempts := s.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil || !s.IsRetryable(err) || attempt == attempts {
			return err
		}

		timer := time.NewTimer(s.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

// 429 and 5xx only
func retryableStatus(code int) bool {
	if code >= 400 && code < 500 {
		return code == 429
	}
	return code >= 500 && code < 600
}
