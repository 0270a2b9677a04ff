package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
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
	ErrNotFound        = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists   = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState    = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrBranchRequired  = NewDomainError("BRANCH_REQUIRED", "A branch must be selected before saving")
	ErrDuplicateRecord = NewDomainError("DUPLICATE_RECORD", "A closing record already exists for this branch and date")
	ErrUnsavedChanges  = NewDomainError("UNSAVED_CHANGES", "The record has unsaved changes")
	ErrSessionClosed   = NewDomainError("SESSION_CLOSED", "The editing session is no longer active")
)
