// Package repository contains the reference data the API serves.  The
// Catalog is built once before the server starts accepting requests and
// is never written afterwards, so handlers share it without locking.
package repository

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/query-params-practice/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Seed is the raw shape of the reference tables as read from a source
// (embedded YAML, a YAML file or MySQL).
type Seed struct {
	Products  []model.Product `yaml:"products" validate:"dive"`
	Posts     []UserPostsSeed `yaml:"posts" validate:"dive"`
	Flights   []model.Flight  `yaml:"flights" validate:"dive"`
	Showtimes []ShowtimeSeed  `yaml:"showtimes" validate:"dive"`
}

// UserPostsSeed groups the posts of one user.
type UserPostsSeed struct {
	UserID int              `yaml:"user_id" validate:"gt=0"`
	Posts  []model.BlogPost `yaml:"posts" validate:"dive"`
}

// ShowtimeSeed groups the showtimes of one movie in one cinema.  Movie is
// informational only.
type ShowtimeSeed struct {
	CinemaID  int              `yaml:"cinema_id" validate:"gt=0"`
	MovieID   int              `yaml:"movie_id" validate:"gt=0"`
	Movie     string           `yaml:"movie"`
	Showtimes []model.Showtime `yaml:"showtimes" validate:"dive"`
}

// Catalog holds the immutable reference tables.
type Catalog struct {
	products     []model.Product
	productsByID map[int]model.Product
	posts        map[int][]model.BlogPost
	flights      []model.Flight
	showtimes    map[model.ShowtimeKey][]model.Showtime
}

// NewCatalog validates seed and builds the lookup tables.  Row order
// inside every sequence is preserved as given.
func NewCatalog(seed Seed) (*Catalog, error) {
	if err := validate.Struct(seed); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	c := &Catalog{
		products:     slices.Clone(seed.Products),
		productsByID: make(map[int]model.Product, len(seed.Products)),
		posts:        make(map[int][]model.BlogPost, len(seed.Posts)),
		flights:      slices.Clone(seed.Flights),
		showtimes:    make(map[model.ShowtimeKey][]model.Showtime, len(seed.Showtimes)),
	}
	for _, p := range seed.Products {
		if _, ok := c.productsByID[p.ID]; ok {
			return nil, fmt.Errorf("product %d: %w", p.ID, ErrDuplicateKey)
		}
		c.productsByID[p.ID] = p
	}
	for _, up := range seed.Posts {
		if _, ok := c.posts[up.UserID]; ok {
			return nil, fmt.Errorf("posts of user %d: %w", up.UserID, ErrDuplicateKey)
		}
		c.posts[up.UserID] = slices.Clone(up.Posts)
	}
	for _, st := range seed.Showtimes {
		key := model.ShowtimeKey{CinemaID: st.CinemaID, MovieID: st.MovieID}
		if _, ok := c.showtimes[key]; ok {
			return nil, fmt.Errorf("showtimes of cinema %d movie %d: %w", st.CinemaID, st.MovieID, ErrDuplicateKey)
		}
		c.showtimes[key] = slices.Clone(st.Showtimes)
	}
	return c, nil
}

// Products returns every product in catalogue order.
func (c *Catalog) Products() []model.Product {
	return slices.Clone(c.products)
}

// ProductByID returns the product with the given id or ErrProductNotFound.
func (c *Catalog) ProductByID(id int) (model.Product, error) {
	p, ok := c.productsByID[id]
	if !ok {
		return model.Product{}, ErrProductNotFound
	}
	return p, nil
}

// PostsByUser returns the ordered posts of a user or ErrUserNotFound.
func (c *Catalog) PostsByUser(userID int) ([]model.BlogPost, error) {
	posts, ok := c.posts[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return slices.Clone(posts), nil
}

// Flights returns every flight in load order.
func (c *Catalog) Flights() []model.Flight {
	return slices.Clone(c.flights)
}

// Showtimes returns the ordered showtimes stored under key or
// ErrShowtimesNotFound.
func (c *Catalog) Showtimes(key model.ShowtimeKey) ([]model.Showtime, error) {
	st, ok := c.showtimes[key]
	if !ok {
		return nil, ErrShowtimesNotFound
	}
	return slices.Clone(st), nil
}

// Counts reports the size of each table, for startup logging.
func (c *Catalog) Counts() map[string]int {
	n := 0
	for _, st := range c.showtimes {
		n += len(st)
	}
	return map[string]int{
		"products":        len(c.products),
		"post_users":      len(c.posts),
		"flights":         len(c.flights),
		"showtime_groups": len(c.showtimes),
		"showtimes":       n,
	}
}
