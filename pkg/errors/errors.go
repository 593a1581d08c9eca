// Package errors defines the typed errors the API returns. Every expected
// failure maps to a stable code and an HTTP status, so handlers never have
// to translate.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain error carrying a machine-readable code and the HTTP
// status it should surface as. Err holds the underlying cause and is never
// serialized.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code, so errors.Is works across Clone copies.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e != nil && other != nil && e.Code == other.Code
}

// New builds an Error value for the catalog below.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap ties an underlying cause to a typed error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Clone copies a catalog error, optionally overriding the message. The
// catalog values themselves are shared and must never be mutated.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	copied := *err
	if message != "" {
		copied.Message = message
	}
	return &copied
}

// FromError normalizes any error into an *Error; unknown errors become
// internal server errors with the cause preserved for logging.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Catalog of expected failures.
var (
	// auth and accounts
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrEmailTaken         = New("EMAIL_TAKEN", http.StatusConflict, "email is already registered")
	ErrWeakPassword       = New("WEAK_PASSWORD", http.StatusBadRequest, "password should be at least 6 characters")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")

	// generic request failures
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// ledger and enrollment domain
	ErrAlreadyEnrolled = New("ALREADY_ENROLLED", http.StatusConflict, "student is already enrolled in this course")
	ErrInvalidRange    = New("INVALID_RANGE", http.StatusBadRequest, "billing period range is inverted")
	ErrOverPayment     = New("OVER_PAYMENT", http.StatusBadRequest, "paid plus waived exceeds payable amount")

	// infrastructure
	ErrCacheMiss = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)
