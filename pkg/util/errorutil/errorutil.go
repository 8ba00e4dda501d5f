package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the gateway handlers and the health server.
const (
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeProvisioningFailed = "PROVISIONING_FAILED"
	CodePersistenceFailed  = "PERSISTENCE_FAILED"
	CodeRoleAssignFailed   = "ROLE_ASSIGN_FAILED"
	CodeInternal           = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
// Notice is the text shown privately to the user whose interaction failed.
type DomainError struct {
	Code       string
	Message    string
	Notice     string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message, notice string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, Notice: notice, HTTPStatus: status, Details: details}
}

func NewConfigError(message string, err error) error {
	return &DomainError{
		Code:       CodeConfigInvalid,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		Notice:     fmt.Sprintf("❌ %s not found.", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewForbidden(message, notice string) error {
	return NewDomainError(CodeForbidden, message, notice, http.StatusForbidden, nil)
}

func NewProvisioningError(message, notice string, err error) error {
	return &DomainError{
		Code:       CodeProvisioningFailed,
		Message:    message,
		Notice:     notice,
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewPersistenceError(message string, err error) error {
	return &DomainError{
		Code:       CodePersistenceFailed,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal error",
		Notice:     "⚠️ Something went wrong. Please try again later.",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return NewInternalError(err).(*DomainError)
}

// IsCode reports whether err is a DomainError carrying code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// UserNotice returns the message to show the user for err, falling back to the generic notice.
func UserNotice(err error) string {
	de := ToDomainError(err)
	if de == nil {
		return ""
	}
	if de.Notice != "" {
		return de.Notice
	}
	return NewInternalError(nil).(*DomainError).Notice
}
