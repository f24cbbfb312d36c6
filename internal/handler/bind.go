package handler

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/query-params-practice/internal/errs"
)

// bindError converts a failure reported by echo's ValueBinder into the
// API's error shape.  A binding error without values, or with only an
// empty value, means the parameter was absent.
func bindError(err error) error {
	if err == nil {
		return nil
	}
	var be *echo.BindingError
	if !errors.As(err, &be) {
		return err
	}
	if len(be.Values) == 0 || be.Values[0] == "" {
		return errs.NewBadRequestError(errs.CodeMissingParameter, fmt.Sprintf("%s is required", be.Field))
	}
	return errs.NewBadRequestError(errs.CodeInvalidParameter, fmt.Sprintf("%s must be an integer", be.Field))
}
