// Package apperr defines the coded errors the service surfaces to clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidParam       Code = "1001"
	CodeNotFound           Code = "1004"
	CodeInternalError      Code = "1007"
	CodeServiceUnavailable Code = "1008"

	CodeRetrievalFailed Code = "4003"

	CodeDatabaseError Code = "5001"
	CodeCacheError    Code = "5002"
)

// AppError carries a client-safe code and message. Err holds the underlying cause,
// which is logged but never serialized.
type AppError struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus(code)}
}

func Wrap(err error, code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus(code), Err: err}
}

// From returns err as an *AppError, wrapping unknown errors as internal errors.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeInternalError, "internal error")
}

func httpStatus(code Code) int {
	switch code {
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
