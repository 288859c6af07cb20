package resilience_test

import (
	"testing"

	"github.com/shinydb/shinydb-go/internal/errors"
	"github.com/shinydb/shinydb-go/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBackoff(t *testing.T) {
	p := resilience.DefaultRetryPolicy()
	require.Equal(t, 0, p.CalculateBackoff(0))
	require.Equal(t, 100, p.CalculateBackoff(1))
	require.Equal(t, 200, p.CalculateBackoff(2))
	require.Equal(t, 400, p.CalculateBackoff(3))
	require.Equal(t, 800, p.CalculateBackoff(4))
}

func TestCalculateBackoff_CapsAtMax(t *testing.T) {
	p := resilience.RetryPolicy{
		MaxAttempts:       5,
		InitialBackoffMS:  100,
		MaxBackoffMS:      500,
		BackoffMultiplier: 2.0,
	}
	require.Equal(t, 500, p.CalculateBackoff(4))
	require.Equal(t, 500, p.CalculateBackoff(10))
}

func TestIsRetryable(t *testing.T) {
	retryable := []errors.Code{
		errors.ErrConnectionFailed, errors.ErrConnectionReset, errors.ErrConnectionRefused,
		errors.ErrNetworkError, errors.ErrTimeout, errors.ErrReadTimeout, errors.ErrWriteTimeout,
		errors.ErrPipelineFull, errors.ErrBufferOverflow, errors.ErrServerError, errors.ErrServiceUnavailable,
	}
	for _, code := range retryable {
		assert.True(t, resilience.IsRetryable(errors.New(code, "x")), "expected %s to be retryable", code)
	}

	permanent := []errors.Code{
		errors.ErrInvalidResponse, errors.ErrInvalidRequest, errors.ErrProtocolError,
		errors.ErrNotFound, errors.ErrPermissionDenied,
	}
	for _, code := range permanent {
		assert.False(t, resilience.IsRetryable(errors.New(code, "x")), "expected %s to not be retryable", code)
	}
}

func TestIsConnectivityLoss(t *testing.T) {
	lossy := []errors.Code{errors.ErrConnectionFailed, errors.ErrConnectionReset, errors.ErrConnectionRefused, errors.ErrNetworkError}
	for _, code := range lossy {
		assert.True(t, resilience.IsConnectivityLoss(errors.New(code, "x")))
	}
	assert.False(t, resilience.IsConnectivityLoss(errors.New(errors.ErrTimeout, "x")))
}
