package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes surfaced to API clients. Clients branch on these, so
// they never change once published.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInactiveAccount    = "INACTIVE_ACCOUNT"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeExpiredOrRevoked   = "EXPIRED_OR_REVOKED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
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
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, nil)
}

// NewInvalidCredentials covers both unknown email and wrong password so the
// response never reveals which accounts exist.
func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "incorrect email or password", http.StatusUnauthorized, nil)
}

// NewInactiveAccount is deliberately a 400, not a 401: the caller
// authenticated correctly but the account is gated.
func NewInactiveAccount() error {
	return NewDomainError(CodeInactiveAccount, "inactive user", http.StatusBadRequest, nil)
}

func NewEmailTaken() error {
	return NewDomainError(CodeEmailTaken, "email already registered", http.StatusConflict, nil)
}

func NewUsernameTaken() error {
	return NewDomainError(CodeUsernameTaken, "username already exists", http.StatusConflict, nil)
}

// NewInvalidToken reports a token that failed signature, expiry or shape
// checks.
func NewInvalidToken() error {
	return NewDomainError(CodeInvalidToken, "invalid refresh token", http.StatusUnauthorized, nil)
}

// NewExpiredOrRevoked reports a cryptographically valid refresh token whose
// server-side row is gone or past its expiry.
func NewExpiredOrRevoked() error {
	return NewDomainError(CodeExpiredOrRevoked, "invalid or expired refresh token", http.StatusUnauthorized, nil)
}

func NewUserNotFound() error {
	return NewDomainError(CodeUserNotFound, "user not found", http.StatusUnauthorized, nil)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
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
	if errors.Is(err, sql.ErrNoRows) {
		if de, ok := NewNotFound("resource").(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// CodeOf extracts the stable code from any error, or INTERNAL_ERROR.
func CodeOf(err error) string {
	return ToDomainError(err).Code
}
