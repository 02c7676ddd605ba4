package errutil

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	StatusBadRequest       Code = "BAD_REQUEST"
	StatusValidationFailed Code = "VALIDATION_FAILED"
	StatusNotFound         Code = "NOT_FOUND"
	StatusConflict         Code = "CONFLICT"
	StatusUnauthorized     Code = "UNAUTHORIZED"
	StatusInternal         Code = "INTERNAL"
)

func (c Code) HTTPStatus() int {
	switch c {
	case StatusBadRequest:
		return http.StatusBadRequest
	case StatusValidationFailed:
		return http.StatusUnprocessableEntity
	case StatusNotFound:
		return http.StatusNotFound
	case StatusConflict:
		return http.StatusConflict
	case StatusUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

type BaseError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e BaseError) Unwrap() error {
	return e.Err
}

func New(code Code, message string, err error) error {
	return BaseError{Code: code, Message: message, Err: err}
}

func BadRequest(msg string, err error) error       { return New(StatusBadRequest, msg, err) }
func ValidationFailed(msg string, err error) error { return New(StatusValidationFailed, msg, err) }
func NotFound(msg string, err error) error         { return New(StatusNotFound, msg, err) }
func Conflict(msg string, err error) error         { return New(StatusConflict, msg, err) }
func Unauthorized(msg string, err error) error     { return New(StatusUnauthorized, msg, err) }
func Internal(msg string, err error) error         { return New(StatusInternal, msg, err) }

// CodeOf returns the code of the first BaseError in err's chain, or
// StatusInternal when there is none.
func CodeOf(err error) Code {
	var be BaseError
	if errors.As(err, &be) {
		return be.Code
	}
	return StatusInternal
}
