package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"

	// Resource errors
	ErrCodeNotFound = "not_found"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"

	// Ranking errors
	ErrCodeUnknownWindow = "unknown_ranking_window"
)
