package constants

// Upstream provider error codes
const (
	ErrCodeInvalidAPIKey    = "INVALID_API_KEY"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeNetworkError     = "NETWORK_ERROR"
	ErrCodeUpstreamError    = "UPSTREAM_ERROR"
	ErrCodeMalformedPayload = "MALFORMED_PAYLOAD"
	ErrCodeNotFound         = "RESOURCE_NOT_FOUND"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
)

// DataProviderErrorMessages maps error codes to human-readable messages
var DataProviderErrorMessages = map[string]string{
	ErrCodeInvalidAPIKey:    "The flight data provider rejected the configured API key",
	ErrCodeRateLimited:      "Rate limit exceeded at the flight data provider",
	ErrCodeNetworkError:     "Unable to reach the flight data provider",
	ErrCodeUpstreamError:    "The flight data provider returned an error",
	ErrCodeMalformedPayload: "The flight data provider returned a payload that could not be read",
	ErrCodeNotFound:         "The flight data provider has no data for this request",
	ErrCodeInvalidRequest:   "The request to the flight data provider was invalid",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := DataProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
