package crm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRemote covers transport failures and non-2xx backend responses.
	ErrRemote = errors.New("remote error")
	// ErrNotFound means a detail lookup found no record.
	ErrNotFound   = errors.New("record not found")
	ErrValidation = errors.New("validation failed")
	// ErrForbidden is returned when the session role may not perform an action.
	ErrForbidden = errors.New("not permitted")
	// ErrConflict is returned for state transitions that are not allowed,
	// such as quoting an estimate twice.
	ErrConflict = errors.New("conflict")
)

// RemoteError describes a failed backend call. Status is 0 for transport
// failures that never produced a response.
type RemoteError struct {
	Op      string
	Status  int
	Message string
	Cause   error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Status == 0 && e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	case e.Message != "":
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
}

func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemote:
		return true
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrForbidden:
		return e.Status == http.StatusForbidden || e.Status == http.StatusUnauthorized
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrValidation:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	}
	return false
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// Transport reports whether the request never reached the backend.
func (e *RemoteError) Transport() bool {
	return e.Status == 0
}

func NewRemoteError(op string, status int, message string, cause error) error {
	return &RemoteError{Op: op, Status: status, Message: message, Cause: cause}
}

// ValidationError is a missing or malformed form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// DisplayMessage converts any error into a single user-facing line.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var rerr *RemoteError
	if errors.As(err, &rerr) {
		switch {
		case rerr.Transport():
			return "Cannot reach the server. Check your connection and retry."
		case rerr.Status == http.StatusNotFound:
			return "Not found."
		case rerr.Message != "":
			return rerr.Message
		default:
			return fmt.Sprintf("Server error (%d). Please retry.", rerr.Status)
		}
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "Not found."
	case errors.Is(err, ErrForbidden):
		return "You are not allowed to do that."
	}
	return err.Error()
}
