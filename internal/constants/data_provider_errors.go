package constants

// Data Provider Error Codes
// These constants define specific error scenarios for external data providers

// Transport errors
const (
	ErrCodeNetworkError         = "NETWORK_ERROR"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeUpstreamError        = "UPSTREAM_ERROR"
)

// Payload errors
const (
	ErrCodeResourceNotFound  = "RESOURCE_NOT_FOUND"
	ErrCodeInvalidDataFormat = "INVALID_DATA_FORMAT"
	ErrCodeEmptyPayload      = "EMPTY_PAYLOAD"
)

// Configuration errors
const (
	ErrCodeConfigMissing = "CONFIG_MISSING"
)

// Error Messages
// Human-readable messages corresponding to error codes

var DataProviderErrorMessages = map[string]string{
	ErrCodeNetworkError:         "Unable to reach the remote service",
	ErrCodeRateLimited:          "Rate limit exceeded. Please try again later",
	ErrCodeAuthenticationFailed: "Authentication with the remote service failed",
	ErrCodeUpstreamError:        "The remote service returned an unexpected error",

	ErrCodeResourceNotFound:  "The requested resource was not found",
	ErrCodeInvalidDataFormat: "The data format is invalid",
	ErrCodeEmptyPayload:      "The remote service returned an empty payload",

	ErrCodeConfigMissing: "The provider is not configured",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := DataProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
