package portal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/opencourts/casesearch/internal/portal"
)

func TestUnboundedPolicy(t *testing.T) {
	p := portal.UnboundedPolicy{}
	assert.True(t, p.ShouldRetry(0))
	assert.True(t, p.ShouldRetry(10000))
	assert.Equal(t, time.Second, p.Backoff(3))

	p.Delay = 50 * time.Millisecond
	assert.Equal(t, 50*time.Millisecond, p.Backoff(0))
}

func TestExponentialPolicy_AttemptCap(t *testing.T) {
	p := portal.NewExponentialPolicy(3)
	assert.True(t, p.ShouldRetry(0))
	assert.True(t, p.ShouldRetry(2))
	assert.False(t, p.ShouldRetry(3))
}

func TestExponentialPolicy_BackoffGrowsAndCaps(t *testing.T) {
	p := portal.NewExponentialPolicy(10)

	for attempt := 0; attempt < 10; attempt++ {
		d := p.Backoff(attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, p.MaxDelay)
	}

	// The minimum possible backoff (half the target delay) still grows with
	// the attempt number until the cap.
	assert.GreaterOrEqual(t, p.Backoff(4), p.BaseDelay*8)
}

func TestNewExponentialPolicy_Defaults(t *testing.T) {
	p := portal.NewExponentialPolicy(0)
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, p.BaseDelay)
	assert.Equal(t, 5*time.Second, p.MaxDelay)
}
