package shared

import "errors"

// DomainError represents a domain-level error.
// Two DomainErrors match under errors.Is when their codes are equal.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError carrying the same code
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
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

// WrapDomainError creates a domain error that keeps cause in its chain
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// Error codes
const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeDuplicateName     = "DUPLICATE_NAME"
	CodeDuplicateEmail    = "DUPLICATE_EMAIL"
	CodeConflict          = "CONFLICT"
	CodeReferential       = "REFERENTIAL_ERROR"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeRecord            = "RECORD_ERROR"
	CodeTimeout           = "TIMEOUT"
)

// Common domain errors
var (
	ErrNotFound          = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidation        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrDuplicateName     = NewDomainError(CodeDuplicateName, "Name already exists")
	ErrDuplicateEmail    = NewDomainError(CodeDuplicateEmail, "Email already exists")
	ErrConflict          = NewDomainError(CodeConflict, "Resource already exists")
	ErrReferential       = NewDomainError(CodeReferential, "Operation would violate a relationship")
	ErrInvalidTransition = NewDomainError(CodeInvalidTransition, "Status transition not allowed")
	ErrRecord            = NewDomainError(CodeRecord, "Malformed record")
	ErrTimeout           = NewDomainError(CodeTimeout, "Storage contention, retry later")
)

// IsRetryable reports whether the caller may retry the failed operation
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// CodeOf returns the code of the first DomainError in err's chain, or "" if none
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
