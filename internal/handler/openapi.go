package handler

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	//go:embed static/openapi.json
	openAPISpec []byte

	//go:embed static/docs.html
	docsPage string

	//go:embed static/redoc.html
	redocPage string
)

// OpenAPI serves the OpenAPI document describing the query endpoints.
func OpenAPI(c echo.Context) error {
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, openAPISpec)
}

// Docs serves the Swagger UI page.  The UI itself loads from a CDN and
// reads /openapi.json.
func Docs(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.HTML(http.StatusOK, docsPage)
}

// Redoc serves the ReDoc page for the same document.
func Redoc(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.HTML(http.StatusOK, redocPage)
}
