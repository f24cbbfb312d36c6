// Package handler exposes the HTTP handlers of the query API.  Handlers
// only extract and coerce parameters; validation and lookups happen in
// the service layer and failures bubble up to the global error handler.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/query-params-practice/internal/errs"
	"github.com/iliyamo/query-params-practice/internal/service"
)

// QueryHandler serves the read-only query endpoints.
type QueryHandler struct {
	Service *service.QueryService // answers every query against the catalog
}

// NewQueryHandler returns a QueryHandler backed by svc.
func NewQueryHandler(svc *service.QueryService) *QueryHandler {
	return &QueryHandler{Service: svc}
}

// Index handles GET /.
func (h *QueryHandler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Service.Index())
}

// FilterNumbers handles GET /filter?min=&max=.  Both bounds are required.
func (h *QueryHandler) FilterNumbers(c echo.Context) error {
	var low, high int
	err := echo.QueryParamsBinder(c).
		MustInt("min", &low).
		MustInt("max", &high).
		BindError()
	if err != nil {
		return bindError(err)
	}

	out, err := h.Service.FilterRange(low, high)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// SearchProducts handles GET /search?keyword=.
func (h *QueryHandler) SearchProducts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Service.SearchProducts(c.QueryParam("keyword")))
}

// GetProduct handles GET /products/:id?discount=.
func (h *QueryHandler) GetProduct(c echo.Context) error {
	var id int
	if err := echo.PathParamsBinder(c).MustInt("id", &id).BindError(); err != nil {
		return bindError(err)
	}
	discount := service.DefaultDiscount
	if err := echo.QueryParamsBinder(c).Int("discount", &discount).BindError(); err != nil {
		return bindError(err)
	}

	out, err := h.Service.PricedProduct(id, discount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// GetUserPosts handles GET /users/:id/posts?limit=&offset=.
func (h *QueryHandler) GetUserPosts(c echo.Context) error {
	var userID int
	if err := echo.PathParamsBinder(c).MustInt("id", &userID).BindError(); err != nil {
		return bindError(err)
	}
	limit, offset := service.DefaultPostLimit, service.DefaultPostOffset
	err := echo.QueryParamsBinder(c).
		Int("limit", &limit).
		Int("offset", &offset).
		BindError()
	if err != nil {
		return bindError(err)
	}

	out, err := h.Service.UserPosts(userID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// SearchFlights handles GET /flights/:origin/:destination?date=&max_price=.
func (h *QueryHandler) SearchFlights(c echo.Context) error {
	q := service.FlightQuery{
		Origin:      c.Param("origin"),
		Destination: c.Param("destination"),
		Date:        c.QueryParam("date"),
	}
	if c.QueryParam("max_price") != "" {
		var maxPrice int
		if err := echo.QueryParamsBinder(c).Int("max_price", &maxPrice).BindError(); err != nil {
			return bindError(err)
		}
		q.MaxPrice = &maxPrice
	}

	out, err := h.Service.SearchFlights(q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// GetShowtimes handles GET /cinemas/:cinema_id/movies/:movie_id/showtimes?date=&limit=.
func (h *QueryHandler) GetShowtimes(c echo.Context) error {
	var cinemaID, movieID int
	err := echo.PathParamsBinder(c).
		MustInt("cinema_id", &cinemaID).
		MustInt("movie_id", &movieID).
		BindError()
	if err != nil {
		return bindError(err)
	}
	// date is required but an empty value is a malformed date, not a missing one.
	if !c.QueryParams().Has("date") {
		return errs.NewBadRequestError(errs.CodeMissingParameter, "date is required")
	}
	date := c.QueryParam("date")
	limit := service.DefaultShowLimit
	err = echo.QueryParamsBinder(c).
		Int("limit", &limit).
		BindError()
	if err != nil {
		return bindError(err)
	}

	out, err := h.Service.Showtimes(cinemaID, movieID, date, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
