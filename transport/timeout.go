package transport

import "time"

// TimeoutConfig holds the four optional millisecond budgets from spec
// §4.3. A nil field disables the corresponding deadline check.
type TimeoutConfig struct {
	Connect   *time.Duration
	Read      *time.Duration
	Write     *time.Duration
	Operation *time.Duration
}

func durPtr(d time.Duration) *time.Duration { return &d }

// DefaultTimeoutConfig is the "default" preset: 5000/30000/10000/60000ms.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Connect:   durPtr(5000 * time.Millisecond),
		Read:      durPtr(30000 * time.Millisecond),
		Write:     durPtr(10000 * time.Millisecond),
		Operation: durPtr(60000 * time.Millisecond),
	}
}

// FastTimeoutConfig is the "fast" preset: 1000/5000/2000/10000ms.
func FastTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Connect:   durPtr(1000 * time.Millisecond),
		Read:      durPtr(5000 * time.Millisecond),
		Write:     durPtr(2000 * time.Millisecond),
		Operation: durPtr(10000 * time.Millisecond),
	}
}

// NoTimeoutConfig disables every deadline check.
func NoTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{}
}
