package providers

import (
	"fmt"
	"time"
)

// ProviderError reports a failed upstream call: network failure, non-2xx response or an
// unreadable payload.
type ProviderError struct {
	Code       string
	Message    string
	Details    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// RateLimitError reports that the provider throttled the call
type RateLimitError struct {
	RetryAfter time.Duration
	Details    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by flight data provider, retry after %s", e.RetryAfter)
	}
	return "rate limited by flight data provider"
}
