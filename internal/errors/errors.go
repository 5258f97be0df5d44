package errors

import "fmt"

// ErrorCode represents a Stride error code.
type ErrorCode string

const (
	ErrUnknownActivityType      ErrorCode = "UNKNOWN_ACTIVITY_TYPE"      // taxonomy gap, needs a table entry
	ErrMissingRequiredAttribute ErrorCode = "MISSING_REQUIRED_ATTRIBUTE" // malformed source record
	ErrStoreWriteFailure        ErrorCode = "STORE_WRITE_FAILURE"        // vault I/O fault
	ErrRemoteFetchFailure       ErrorCode = "REMOTE_FETCH_FAILURE"       // remote source I/O fault, fatal to the run
	ErrAlreadyExists            ErrorCode = "ALREADY_EXISTS"             // note filename collision
	ErrNotFound                 ErrorCode = "NOT_FOUND"
	ErrInvalidRequest           ErrorCode = "INVALID_REQUEST"
	ErrInternal                 ErrorCode = "INTERNAL"
)

// StrideError represents a structured error with code and details.
type StrideError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *StrideError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewUnknownActivityType reports a type label missing from the taxonomy tables.
// The raw label is carried so the operator knows what to add.
func NewUnknownActivityType(label string) *StrideError {
	return &StrideError{
		Code:    ErrUnknownActivityType,
		Message: fmt.Sprintf("no category mapping for activity type %q", label),
		Details: map[string]any{"type_label": label},
	}
}

// NewMissingRequiredAttribute reports a record missing an attribute its
// category treats as mandatory.
func NewMissingRequiredAttribute(remoteID, attribute string) *StrideError {
	return &StrideError{
		Code:    ErrMissingRequiredAttribute,
		Message: fmt.Sprintf("activity %s is missing required attribute %q", remoteID, attribute),
		Details: map[string]any{"remote_id": remoteID, "attribute": attribute},
	}
}

// NewStoreWriteFailure wraps a vault write fault for one candidate.
func NewStoreWriteFailure(filename string, err error) *StrideError {
	return &StrideError{
		Code:    ErrStoreWriteFailure,
		Message: fmt.Sprintf("failed to write note %s: %v", filename, err),
		Details: map[string]any{"filename": filename},
	}
}

// NewRemoteFetchFailure wraps a remote source fault. Fatal to the whole run:
// without a complete ordered fetch no candidate can be trusted.
func NewRemoteFetchFailure(err error) *StrideError {
	return &StrideError{
		Code:    ErrRemoteFetchFailure,
		Message: fmt.Sprintf("remote fetch failed: %v", err),
	}
}

// NewAlreadyExists reports a note filename collision.
func NewAlreadyExists(filename string) *StrideError {
	return &StrideError{
		Code:    ErrAlreadyExists,
		Message: fmt.Sprintf("note already exists: %s", filename),
		Details: map[string]any{"filename": filename},
	}
}

// NewNotFound creates an error for a missing record.
func NewNotFound(identifier string) *StrideError {
	return &StrideError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewInvalidRequest creates an error for invalid parameters.
func NewInvalidRequest(msg string) *StrideError {
	return &StrideError{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewInternal creates an error for unexpected internal faults.
func NewInternal(err error) *StrideError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &StrideError{
		Code:    ErrInternal,
		Message: msg,
	}
}

// Is checks if an error is a StrideError with the given code.
func Is(err error, code ErrorCode) bool {
	if sErr, ok := err.(*StrideError); ok {
		return sErr.Code == code
	}
	return false
}
