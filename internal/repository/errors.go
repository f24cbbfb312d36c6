package repository

import "errors"

// Sentinel errors of the catalog.  Higher layers use errors.Is to tell a
// missing entity from any other failure.
var (
	// ErrProductNotFound is returned when no product has the requested id.
	ErrProductNotFound = errors.New("product not found")

	// ErrUserNotFound is returned when a user has no posts collection.
	ErrUserNotFound = errors.New("user not found")

	// ErrShowtimesNotFound is returned when no showtimes are stored for a
	// (cinema, movie) pair.
	ErrShowtimesNotFound = errors.New("no showtimes for cinema and movie")

	// ErrDuplicateKey is returned at load time when two rows share a key
	// that must be unique (product id, user id, cinema/movie pair).
	ErrDuplicateKey = errors.New("duplicate key")
)
