package shared

// DomainError is a rule violation raised by domain code. Code is stable and
// maps to an HTTP status in the interface layer; Message is shown to users.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches another DomainError with the same code, so sentinel
// errors below work with errors.Is even when re-created with a new message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden    = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrRateLimited  = NewDomainError("RATE_LIMITED", "Too many requests, please wait and try again")
)
