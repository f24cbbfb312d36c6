// Package errs defines the error values returned to API clients.
//
// Every failure a handler can report is an *HTTPError carrying a stable
// machine code, a human readable message and the HTTP status.  The
// global error handler renders it as {code, message, status}.
package errs

import (
	"errors"
	"net/http"
	"strings"
)

// Validation codes.  Each maps to 400 Bad Request.
const (
	CodeInvalidRange      = "INVALID_RANGE"
	CodeInvalidDiscount   = "INVALID_DISCOUNT"
	CodeInvalidPagination = "INVALID_PAGINATION"
	CodeInvalidDate       = "INVALID_DATE"
	CodeInvalidPrice      = "INVALID_PRICE"
	CodeInvalidLimit      = "INVALID_LIMIT"
	CodeInvalidParameter  = "INVALID_PARAMETER"
	CodeMissingParameter  = "MISSING_PARAMETER"
)

// HTTPError is the error type surfaced to clients.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{Code: e.Code, Message: message, Status: e.Status}
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}

// IsValidation reports whether err is a client validation failure.
func IsValidation(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusBadRequest
}

// IsNotFound reports whether err is a missing-entity failure.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound
}

// CodeOf returns the machine code of err, or "" when err is not an *HTTPError.
func CodeOf(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return ""
}
