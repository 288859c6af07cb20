package resilience

import (
	"time"

	"github.com/shinydb/shinydb-go/internal/errors"
	"github.com/shinydb/shinydb-go/logger"
	"github.com/shinydb/shinydb-go/transport"
	"github.com/shinydb/shinydb-go/wire"
)

// Client composes a transport.Transport with a RetryPolicy and a
// CircuitBreaker, implementing the with_retry wrapper from spec §4.6:
// the breaker gates whether an attempt is even made, the policy
// decides whether and how long to back off between attempts, and a
// connectivity-loss error triggers a reconnect before the next try.
type Client struct {
	Transport *transport.Transport
	Retry     RetryPolicy
	Breaker   *CircuitBreaker
	Metrics   Metrics
	Logger    logger.Logger

	sleep func(time.Duration)
}

// ClientOption configures a Client at construction time.
type ClientOption func(*Client)

func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) { c.Retry = p }
}

func WithMetrics(m Metrics) ClientOption {
	return func(c *Client) { c.Metrics = m }
}

func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) { c.Logger = l }
}

// WithSleepFunc overrides the backoff sleep function, letting tests
// replace time.Sleep with an instrumented or instant stand-in.
func WithSleepFunc(sleep func(time.Duration)) ClientOption {
	return func(c *Client) { c.sleep = sleep }
}

// NewClient wraps transport t with the given circuit breaker,
// defaulting to DefaultRetryPolicy and no-op metrics/logger.
func NewClient(t *transport.Transport, breaker *CircuitBreaker, opts ...ClientOption) *Client {
	c := &Client{
		Transport: t,
		Retry:     DefaultRetryPolicy(),
		Breaker:   breaker,
		Metrics:   NopMetrics,
		Logger:    logger.NopLogger,
		sleep:     time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DoOperation runs op through the resilient wrapper: circuit-breaker
// gate, retry-with-backoff, and reconnect-on-connectivity-loss.
func (c *Client) DoOperation(op wire.Operation) (*wire.Packet, error) {
	return c.WithRetry(func() (*wire.Packet, error) {
		return c.Transport.DoOperation(op)
	})
}

// WithRetry runs opFn under the resilient wrapper described in spec
// §4.6. opFn is expected to be idempotent from the caller's point of
// view across retries; the wrapper itself does not deduplicate sends.
func (c *Client) WithRetry(opFn func() (*wire.Packet, error)) (*wire.Packet, error) {
	if !c.Breaker.ShouldAllow() {
		c.Metrics.Count("resilience.breaker_rejected", 1)
		return nil, errors.New(errors.ErrServiceUnavailable, "circuit breaker is open")
	}

	var lastErr error
	for attempt := 0; attempt < c.Retry.MaxAttempts; attempt++ {
		start := time.Now()
		result, err := opFn()
		c.Metrics.Timing("resilience.operation_duration", time.Since(start))

		if err == nil {
			c.Breaker.RecordSuccess()
			c.Metrics.Count("resilience.success", 1)
			return result, nil
		}

		lastErr = err
		c.Breaker.RecordFailure()
		c.Metrics.Count("resilience.failure", 1)

		if !IsRetryable(err) {
			return nil, err
		}
		if attempt == c.Retry.MaxAttempts-1 {
			return nil, err
		}

		if IsConnectivityLoss(err) {
			if reErr := c.Transport.Reconnect(); reErr != nil {
				lastErr = reErr
				c.Logger.Warnf("shinydb: reconnect failed: %v", reErr)
			}
		}

		backoff := c.Retry.CalculateBackoff(attempt + 1)
		if backoff > 0 {
			c.sleep(time.Duration(backoff) * time.Millisecond)
		}
	}

	if lastErr == nil {
		lastErr = errors.New(errors.ErrTimeout, "retry loop exhausted with no recorded error")
	}
	return nil, lastErr
}
