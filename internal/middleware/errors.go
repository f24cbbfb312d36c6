package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/query-params-practice/internal/errs"
)

// ErrorHandler is the echo HTTPErrorHandler.  Every error returned by a
// handler or middleware is rendered here as {code, message, status}.
// Errors that are not *errs.HTTPError are never shown to clients.
func ErrorHandler(err error, c echo.Context) {
	httpErr := toHTTPError(err)

	l := GetLogger(c)
	e := l.Warn()
	if httpErr.Status >= 500 {
		e = l.Error()
	}
	e.Err(err).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpErr.Status)
		return
	}
	_ = c.JSON(httpErr.Status, httpErr)
}

func toHTTPError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		switch echoErr.Code {
		case http.StatusNotFound:
			return errs.NewNotFoundError("Route not found")
		case http.StatusMethodNotAllowed:
			return errs.NewMethodNotAllowedError()
		}
		if echoErr.Code < 500 {
			msg, ok := echoErr.Message.(string)
			if !ok {
				msg = http.StatusText(echoErr.Code)
			}
			return &errs.HTTPError{
				Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code)),
				Message: msg,
				Status:  echoErr.Code,
			}
		}
	}
	return errs.NewInternalServerError()
}
