package shared

// DomainError is a business-rule violation with a machine-readable code.
// Codes are stable identifiers the HTTP layer maps onto status codes; the
// message is safe to return to API clients.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so wrapped errors
// still compare equal to the sentinels below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a domain error with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// ErrNotFound is returned by repositories when a lookup matches nothing
// within the caller's entity scope.
var ErrNotFound = NewDomainError("NOT_FOUND", "Resource not found")
