// Package service implements the query operations served by the API.
// Every operation is a pure function of its arguments and the immutable
// catalog; failures are returned as *errs.HTTPError values.
package service

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/iliyamo/query-params-practice/internal/errs"
	"github.com/iliyamo/query-params-practice/internal/model"
	"github.com/iliyamo/query-params-practice/internal/repository"
)

// Defaults applied by the handlers when a parameter is absent.
const (
	DefaultDiscount   = 0
	DefaultPostLimit  = 5
	DefaultPostOffset = 0
	DefaultShowLimit  = 5
)

const dateLayout = "2006-01-02"

var validate = validator.New()

// QueryService answers the read-only queries against a Catalog.
//
// Fields:
//
//	catalog      – reference tables, never mutated.
//	rangeMaxSpan – largest number of integers FilterRange may return; 0 means unbounded.
type QueryService struct {
	catalog      *repository.Catalog
	rangeMaxSpan int
}

// NewQueryService wires a QueryService.  rangeMaxSpan <= 0 disables the
// span check.
func NewQueryService(catalog *repository.Catalog, rangeMaxSpan int) *QueryService {
	return &QueryService{catalog: catalog, rangeMaxSpan: rangeMaxSpan}
}

// Index describes the API and where its documentation lives.
func (s *QueryService) Index() model.Index {
	return model.Index{
		Message: "Query Parameters Practice API",
		Docs:    "/docs",
		Redoc:   "/redoc",
	}
}

// FilterRange returns every integer from low to high inclusive.
func (s *QueryService) FilterRange(low, high int) (model.NumberRange, error) {
	if low > high {
		return model.NumberRange{}, errs.NewBadRequestError(errs.CodeInvalidRange, "min cannot be greater than max")
	}
	diff := high - low
	// diff < 0 means high-low wrapped around.
	if diff < 0 || diff == math.MaxInt {
		return model.NumberRange{}, errs.NewBadRequestError(errs.CodeInvalidRange, "range is too large")
	}
	n := diff + 1
	if s.rangeMaxSpan > 0 && n > s.rangeMaxSpan {
		return model.NumberRange{}, errs.NewBadRequestError(errs.CodeInvalidRange,
			fmt.Sprintf("range cannot span more than %d numbers", s.rangeMaxSpan))
	}

	numbers := make([]int, 0, n)
	for i := 0; i < n; i++ {
		numbers = append(numbers, low+i)
	}
	return model.NumberRange{Numbers: numbers}, nil
}

// SearchProducts returns the products whose name contains keyword,
// ignoring case.  An empty keyword matches everything.
func (s *QueryService) SearchProducts(keyword string) []model.Product {
	products := s.catalog.Products()
	if keyword == "" {
		return products
	}

	// A Caser keeps state and must not be shared between goroutines.
	fold := cases.Fold()
	needle := fold.String(keyword)
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(fold.String(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

// PricedProduct looks up a product and applies a percentage discount.
// The product must exist before the discount is checked.
func (s *QueryService) PricedProduct(id, discount int) (model.PricedProduct, error) {
	p, err := s.catalog.ProductByID(id)
	if err != nil {
		return model.PricedProduct{}, notFound(err)
	}
	if discount < 0 || discount > 100 {
		return model.PricedProduct{}, errs.NewBadRequestError(errs.CodeInvalidDiscount, "Discount must be between 0 and 100")
	}

	final := decimal.NewFromFloat(p.Price).
		Mul(decimal.NewFromInt(int64(100 - discount))).
		Div(decimal.NewFromInt(100)).
		Round(2)

	return model.PricedProduct{
		ID:            p.ID,
		Name:          p.Name,
		OriginalPrice: p.Price,
		Discount:      discount,
		FinalPrice:    final.InexactFloat64(),
	}, nil
}

// UserPosts returns the window [offset, offset+limit) of a user's posts.
// Windows past the end are clipped, so an offset beyond the last post
// yields an empty page rather than an error.
func (s *QueryService) UserPosts(userID, limit, offset int) (model.UserPosts, error) {
	posts, err := s.catalog.PostsByUser(userID)
	if err != nil {
		return model.UserPosts{}, notFound(err)
	}
	if limit < 0 || offset < 0 {
		return model.UserPosts{}, errs.NewBadRequestError(errs.CodeInvalidPagination, "limit and offset must be non-negative")
	}

	start := min(offset, len(posts))
	end := start + min(limit, len(posts)-start)
	return model.UserPosts{UserID: userID, Posts: posts[start:end]}, nil
}

// FlightQuery holds the filters of a flight search.  Date and MaxPrice
// are optional; an empty Date and a nil MaxPrice disable their filter.
type FlightQuery struct {
	Origin      string
	Destination string
	Date        string
	MaxPrice    *int
}

// SearchFlights returns the flights on a route, optionally narrowed to a
// date and a price ceiling.  No match is an empty list, not an error.
func (s *QueryService) SearchFlights(q FlightQuery) ([]model.Flight, error) {
	origin := strings.ToUpper(q.Origin)
	destination := strings.ToUpper(q.Destination)

	out := make([]model.Flight, 0)
	for _, f := range s.catalog.Flights() {
		if f.Origin == origin && f.Destination == destination {
			out = append(out, f)
		}
	}

	if q.Date != "" {
		if err := checkDate(q.Date); err != nil {
			return nil, err
		}
		out = filter(out, func(f model.Flight) bool { return f.Date == q.Date })
	}

	if q.MaxPrice != nil {
		if *q.MaxPrice < 0 {
			return nil, errs.NewBadRequestError(errs.CodeInvalidPrice, "max_price must be non-negative")
		}
		out = filter(out, func(f model.Flight) bool { return f.Price <= *q.MaxPrice })
	}
	return out, nil
}

// Showtimes returns up to limit screenings of a movie in a cinema on
// date.  Date is validated before limit, and both before the cinema and
// movie pair is looked up.
func (s *QueryService) Showtimes(cinemaID, movieID int, date string, limit int) (model.CinemaShowtimes, error) {
	if err := checkDate(date); err != nil {
		return model.CinemaShowtimes{}, err
	}
	if limit < 0 {
		return model.CinemaShowtimes{}, errs.NewBadRequestError(errs.CodeInvalidLimit, "limit must be non-negative")
	}

	all, err := s.catalog.Showtimes(model.ShowtimeKey{CinemaID: cinemaID, MovieID: movieID})
	if err != nil {
		return model.CinemaShowtimes{}, notFound(err)
	}

	slots := make([]model.ShowtimeSlot, 0, min(limit, len(all)))
	for _, st := range all {
		if len(slots) == limit {
			break
		}
		if st.Date == date {
			slots = append(slots, model.ShowtimeSlot{Time: st.Time, AvailableSeats: st.AvailableSeats})
		}
	}

	return model.CinemaShowtimes{
		CinemaID:  cinemaID,
		MovieID:   movieID,
		Date:      date,
		Showtimes: slots,
	}, nil
}

func checkDate(date string) error {
	if err := validate.Var(date, "required,datetime="+dateLayout); err != nil {
		return errs.NewBadRequestError(errs.CodeInvalidDate, "Invalid date format. Use YYYY-MM-DD")
	}
	return nil
}

// notFound translates repository sentinels into client errors.
func notFound(err error) error {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return errs.NewNotFoundError("Product not found")
	case errors.Is(err, repository.ErrUserNotFound):
		return errs.NewNotFoundError("User not found")
	case errors.Is(err, repository.ErrShowtimesNotFound):
		return errs.NewNotFoundError("No showtimes found for this cinema and movie combination")
	default:
		return err
	}
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
