package portal

import (
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

// RetryPolicy decides whether a failed portal request is re-issued and how
// long to wait before the next attempt.
type RetryPolicy interface {
	ShouldRetry(attempt int) bool
	Backoff(attempt int) time.Duration
}

// UnboundedPolicy re-issues failed requests indefinitely at a fixed delay.
// This preserves the harvester's historical behavior against the portal.
// Runs that need a cap inject an ExponentialPolicy instead.
type UnboundedPolicy struct {
	Delay time.Duration
}

// ShouldRetry always retries.
func (p UnboundedPolicy) ShouldRetry(int) bool { return true }

// Backoff returns the fixed delay.
func (p UnboundedPolicy) Backoff(int) time.Duration {
	if p.Delay > 0 {
		return p.Delay
	}
	return time.Second
}

// ExponentialPolicy retries a bounded number of times with jittered backoff.
type ExponentialPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// NewExponentialPolicy builds a policy with sane defaults.
func NewExponentialPolicy(maxAttempts int) ExponentialPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return ExponentialPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// ShouldRetry allows up to MaxAttempts retries.
func (p ExponentialPolicy) ShouldRetry(attempt int) bool {
	return attempt < p.MaxAttempts
}

// Backoff returns the jittered wait duration before the next attempt.
func (p ExponentialPolicy) Backoff(attempt int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	return time.Duration(delay/2) + randomJitter(time.Duration(delay)/2)
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
