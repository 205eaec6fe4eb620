package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes surfaced by the extraction engine.
const (
	CodeEmptyInput             = "EMPTY_INPUT"
	CodePlatformUnrecognized   = "PLATFORM_UNRECOGNIZED"
	CodeFieldExtractionFailure = "FIELD_EXTRACTION_FAILURE"
	CodeAddressRejected        = "ADDRESS_REJECTED"
)

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")

	ErrEmptyInput           = errors.New("no usable text supplied")
	ErrPlatformUnrecognized = errors.New("platform unrecognized")
	ErrFieldExtraction      = errors.New("field resolved to default")
	ErrAddressRejected      = errors.New("address failed length check")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsFatal reports whether err stops processing of a document.
func IsFatal(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrPlatformUnrecognized)
}

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrEmptyInput), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrPlatformUnrecognized):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the error text safe to return to API clients.
func PublicMessage(err error) string {
	var appErr *AppError
	if HTTPStatus(err) >= http.StatusInternalServerError {
		return "internal error"
	}
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
