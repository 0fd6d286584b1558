package errors

import "fmt"

// ErrorCode represents a ChronoBox error code.
type ErrorCode string

const (
	ErrValidation     ErrorCode = "VALIDATION_ERROR"     // 400
	ErrAuthentication ErrorCode = "AUTHENTICATION_ERROR" // 401
	ErrNotFound       ErrorCode = "NOT_FOUND"            // 404
	ErrConfiguration  ErrorCode = "CONFIGURATION_ERROR"  // 500
	ErrPopupBlocked   ErrorCode = "POPUP_BLOCKED"        // 502
	ErrRemoteAPI      ErrorCode = "REMOTE_API_ERROR"     // 502
	ErrInitialization ErrorCode = "INITIALIZATION_ERROR" // 503
	ErrInternal       ErrorCode = "INTERNAL"             // 500
)

// ChronoError represents a structured error with code, status, and details.
type ChronoError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ChronoError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a 400 error for invalid capsule input.
func NewValidation(msg string) *ChronoError {
	return &ChronoError{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
	}
}

// NewAuthentication creates a 401 error for a failed or denied token request.
// The provider-supplied description, if any, is carried in the message.
func NewAuthentication(msg string) *ChronoError {
	if msg == "" {
		msg = "authentication failed"
	}
	return &ChronoError{
		Code:    ErrAuthentication,
		Status:  401,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a capsule or event cannot be found.
func NewNotFound(kind, identifier string) *ChronoError {
	return &ChronoError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewConfiguration creates a 500 error for a missing or invalid credential.
func NewConfiguration(msg string) *ChronoError {
	return &ChronoError{
		Code:    ErrConfiguration,
		Status:  500,
		Message: msg,
	}
}

// NewPopupBlocked creates a 502 error for when the interactive sign-in
// window could not be opened.
func NewPopupBlocked() *ChronoError {
	return &ChronoError{
		Code:    ErrPopupBlocked,
		Status:  502,
		Message: "failed to open the sign-in window; check if popups are blocked",
	}
}

// NewRemoteAPI creates a 502 error wrapping a calendar provider failure.
func NewRemoteAPI(op string, err error) *ChronoError {
	msg := op + " failed"
	if err != nil {
		msg = fmt.Sprintf("%s failed: %v", op, err)
	}
	return &ChronoError{
		Code:    ErrRemoteAPI,
		Status:  502,
		Message: msg,
		Details: map[string]any{"operation": op},
	}
}

// NewInitialization creates a 503 error for a failed remote client setup.
// Initialization failures are terminal for the session.
func NewInitialization(msg string) *ChronoError {
	return &ChronoError{
		Code:    ErrInitialization,
		Status:  503,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ChronoError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ChronoError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a ChronoError with the given code.
func Is(err error, code ErrorCode) bool {
	if cErr, ok := err.(*ChronoError); ok {
		return cErr.Code == code
	}
	return false
}
