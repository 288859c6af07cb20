package resilience_test

import (
	"testing"
	"time"

	"github.com/shinydb/shinydb-go/resilience"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	b := resilience.NewCircuitBreaker(3, 2, 50*time.Millisecond)
	require.Equal(t, resilience.StateClosed, b.State())

	b.RecordFailure()
	b.RecordFailure()
	require.Equal(t, resilience.StateClosed, b.State())
	b.RecordFailure()
	require.Equal(t, resilience.StateOpen, b.State())
	require.False(t, b.ShouldAllow())
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	b := resilience.NewCircuitBreaker(1, 1, 10*time.Millisecond)
	b.RecordFailure()
	require.Equal(t, resilience.StateOpen, b.State())

	time.Sleep(15 * time.Millisecond)
	require.True(t, b.ShouldAllow())
	require.Equal(t, resilience.StateHalfOpen, b.State())
}

func TestCircuitBreaker_HalfOpenClosesAfterSuccesses(t *testing.T) {
	b := resilience.NewCircuitBreaker(1, 2, 5*time.Millisecond)
	b.RecordFailure()
	time.Sleep(10 * time.Millisecond)
	require.True(t, b.ShouldAllow())

	b.RecordSuccess()
	require.Equal(t, resilience.StateHalfOpen, b.State())
	b.RecordSuccess()
	require.Equal(t, resilience.StateClosed, b.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := resilience.NewCircuitBreaker(1, 2, 5*time.Millisecond)
	b.RecordFailure()
	time.Sleep(10 * time.Millisecond)
	require.True(t, b.ShouldAllow())

	b.RecordFailure()
	require.Equal(t, resilience.StateOpen, b.State())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	b := resilience.NewCircuitBreaker(1, 1, time.Hour)
	b.RecordFailure()
	require.Equal(t, resilience.StateOpen, b.State())
	b.Reset()
	require.Equal(t, resilience.StateClosed, b.State())
	require.True(t, b.ShouldAllow())
}
