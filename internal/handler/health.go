package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.  The catalog
// is loaded before the server starts listening, so a running process is
// always ready to answer queries.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
