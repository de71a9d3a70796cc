package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the request body exceeds the size limit
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Platform link error codes
const (
	// ErrCodeStateInvalid is used when the OAuth state token fails verification
	ErrCodeStateInvalid = "ERR_STATE_INVALID"
	// ErrCodeStateExpired is used when the OAuth state token is older than its TTL
	ErrCodeStateExpired = "ERR_STATE_EXPIRED"
	// ErrCodeExchangeFailed is used when the platform rejects the authorization code
	ErrCodeExchangeFailed = "ERR_EXCHANGE_FAILED"
	// ErrCodePlatformUnavailable is used when the platform keeps failing transiently
	ErrCodePlatformUnavailable = "ERR_PLATFORM_UNAVAILABLE"
	// ErrCodeReauthorizationRequired is used when the stored platform token is dead
	ErrCodeReauthorizationRequired = "ERR_REAUTHORIZATION_REQUIRED"
	// ErrCodeMissingCapabilities is used when the grant lacks required scopes
	ErrCodeMissingCapabilities = "ERR_MISSING_CAPABILITIES"
	// ErrCodeResourceClaimed is used when another company already owns the resource
	ErrCodeResourceClaimed = "ERR_RESOURCE_CLAIMED"
	// ErrCodeResourceLocked is used when a concurrent sync run holds the resource
	ErrCodeResourceLocked = "ERR_RESOURCE_LOCKED"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation / input errors -> 400 Bad Request
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound: http.StatusNotFound,
	ErrCodeConflict: http.StatusConflict,

	// Platform link errors
	ErrCodeStateInvalid:            http.StatusBadRequest,
	ErrCodeStateExpired:            http.StatusBadRequest,
	ErrCodeExchangeFailed:          http.StatusBadGateway,
	ErrCodePlatformUnavailable:     http.StatusServiceUnavailable,
	ErrCodeReauthorizationRequired: http.StatusConflict,
	ErrCodeMissingCapabilities:     http.StatusUnprocessableEntity,
	ErrCodeResourceClaimed:         http.StatusConflict,
	ErrCodeResourceLocked:          http.StatusConflict,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
