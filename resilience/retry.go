// Package resilience implements the retry, circuit-breaking, and
// metrics policies that sit between a caller and the transport layer,
// grounded on the backoff arithmetic in the teacher's
// client.Client.doRequest (client/client.go) but generalized from
// HTTP status codes to the closed error-code set in internal/errors.
package resilience

import (
	"math"

	"github.com/shinydb/shinydb-go/internal/errors"
)

// RetryPolicy configures attempt count and exponential backoff.
type RetryPolicy struct {
	MaxAttempts       int
	InitialBackoffMS  int
	MaxBackoffMS      int
	BackoffMultiplier float64
}

// DefaultRetryPolicy matches the teacher's maxRetries/maxBackoff
// defaults in spirit, scaled to the defaults this client specifies.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		InitialBackoffMS:  100,
		MaxBackoffMS:      10000,
		BackoffMultiplier: 2.0,
	}
}

// IsRetryable reports whether err is one of the transient error codes
// eligible for backoff retry.
func IsRetryable(err error) bool {
	return errors.IsRetryable(err)
}

// IsConnectivityLoss reports whether err indicates the underlying
// socket is no longer usable and a reconnect should be attempted
// before the next retry.
func IsConnectivityLoss(err error) bool {
	return errors.IsConnectivityLoss(err)
}

// CalculateBackoff returns the delay, in milliseconds, before retry
// number attempt. attempt 0 always returns 0 (the first try is
// immediate); attempt n>0 returns
// min(initial * multiplier^(n-1), max), floored to an integer.
func (p RetryPolicy) CalculateBackoff(attempt int) int {
	if attempt <= 0 {
		return 0
	}
	delay := float64(p.InitialBackoffMS) * math.Pow(p.BackoffMultiplier, float64(attempt-1))
	if delay > float64(p.MaxBackoffMS) {
		delay = float64(p.MaxBackoffMS)
	}
	return int(delay)
}
