package utils

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every platform. Callers match with errors.Is;
// producers wrap with context using fmt.Errorf("%w: ...").
var (
	// ErrCredentialsMissing is fatal for the platform: required environment
	// credentials are absent. Raised before any network call.
	ErrCredentialsMissing = errors.New("credentials missing")

	// ErrAuthenticationFailed is fatal for the platform: the site rejected the
	// credentials or the post-login state never appeared.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrElementNotFound is recoverable; many call sites treat it as
	// "feature not present".
	ErrElementNotFound = errors.New("element not found")

	// ErrInteractionFailed is returned once click retries are exhausted.
	ErrInteractionFailed = errors.New("interaction failed")

	// ErrSearchFailed means the whole result set is unobtainable.
	ErrSearchFailed = errors.New("search failed")
)

// CustomError represents a user-facing application error
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// NewValidationError reports an invalid or incomplete configuration document
func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    "validation_failed",
		Message: "Validation failed",
		Detail:  detail,
	}
}

// NewConfigError reports a configuration file that could not be read or parsed
func NewConfigError(detail string) *CustomError {
	return &CustomError{
		Code:    "config_error",
		Message: "Configuration error",
		Detail:  detail,
	}
}

// IsValidationError reports whether err carries a validation CustomError
func IsValidationError(err error) bool {
	var ce *CustomError
	return errors.As(err, &ce) && ce.Code == "validation_failed"
}
