package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/query-params-practice/internal/model"
)

// LoadMySQL reads the reference tables from MySQL once.  Every query is
// ordered by the position column so sequences come back in display order.
// The schema lives in internal/database/schema.sql.
func LoadMySQL(ctx context.Context, db *sql.DB) (*Catalog, error) {
	var seed Seed
	var err error

	if seed.Products, err = loadProducts(ctx, db); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if seed.Posts, err = loadPosts(ctx, db); err != nil {
		return nil, fmt.Errorf("load blog posts: %w", err)
	}
	if seed.Flights, err = loadFlights(ctx, db); err != nil {
		return nil, fmt.Errorf("load flights: %w", err)
	}
	if seed.Showtimes, err = loadShowtimes(ctx, db); err != nil {
		return nil, fmt.Errorf("load showtimes: %w", err)
	}
	return NewCatalog(seed)
}

func loadProducts(ctx context.Context, db *sql.DB) ([]model.Product, error) {
	const q = `SELECT id, name, price FROM products ORDER BY position, id`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func loadPosts(ctx context.Context, db *sql.DB) ([]UserPostsSeed, error) {
	const q = `SELECT user_id, id, title, content FROM blog_posts ORDER BY user_id, position, id`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserPostsSeed
	for rows.Next() {
		var userID int
		var p model.BlogPost
		if err := rows.Scan(&userID, &p.ID, &p.Title, &p.Content); err != nil {
			return nil, err
		}
		// rows are grouped by user_id, so a new group starts whenever it changes
		if n := len(out); n == 0 || out[n-1].UserID != userID {
			out = append(out, UserPostsSeed{UserID: userID})
		}
		last := &out[len(out)-1]
		last.Posts = append(last.Posts, p)
	}
	return out, rows.Err()
}

func loadFlights(ctx context.Context, db *sql.DB) ([]model.Flight, error) {
	const q = `SELECT flight_id, origin, destination,
			DATE_FORMAT(flight_date, '%Y-%m-%d') AS flight_date,
			price
		FROM flights ORDER BY position, flight_id`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Flight
	for rows.Next() {
		var f model.Flight
		if err := rows.Scan(&f.FlightID, &f.Origin, &f.Destination, &f.Date, &f.Price); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func loadShowtimes(ctx context.Context, db *sql.DB) ([]ShowtimeSeed, error) {
	const q = `SELECT cinema_id, movie_id,
			TIME_FORMAT(show_time, '%H:%i') AS show_time,
			available_seats,
			DATE_FORMAT(show_date, '%Y-%m-%d') AS show_date
		FROM showtimes ORDER BY cinema_id, movie_id, position`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShowtimeSeed
	for rows.Next() {
		var cinemaID, movieID int
		var s model.Showtime
		if err := rows.Scan(&cinemaID, &movieID, &s.Time, &s.AvailableSeats, &s.Date); err != nil {
			return nil, err
		}
		if n := len(out); n == 0 || out[n-1].CinemaID != cinemaID || out[n-1].MovieID != movieID {
			out = append(out, ShowtimeSeed{CinemaID: cinemaID, MovieID: movieID})
		}
		last := &out[len(out)-1]
		last.Showtimes = append(last.Showtimes, s)
	}
	return out, rows.Err()
}
