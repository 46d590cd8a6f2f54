package resilience

import (
	"time"
)

// LaunchRetryConfig is the retry policy for acquiring a browser session:
// tries attempts with a short backoff. Permanent failures are not retried.
func LaunchRetryConfig(tries int) RetryConfig {
	cfg := DefaultRetryConfig()
	if tries > 0 {
		cfg.MaxAttempts = tries
	}
	cfg.InitialBackoff = time.Second
	cfg.MaxBackoff = 5 * time.Second
	cfg.ShouldRetry = LaunchRetryable
	return cfg
}

// SearchBreakerConfig converts config values to a CircuitBreakerConfig for
// search backends.
func SearchBreakerConfig(failureThreshold int, resetTimeout time.Duration) CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig()
	if failureThreshold > 0 {
		cfg.FailureThreshold = failureThreshold
	}
	if resetTimeout > 0 {
		cfg.ResetTimeout = resetTimeout
	}
	return cfg
}
