package model

// ShowtimeKey addresses the showtimes of one movie in one cinema.
type ShowtimeKey struct {
	CinemaID int
	MovieID  int
}

// Showtime is a single screening.  The sequence stored under a
// ShowtimeKey keeps load order, which is the order limit truncates in.
type Showtime struct {
	Time           string `json:"time" yaml:"time" validate:"datetime=15:04"`
	AvailableSeats int    `json:"available_seats" yaml:"available_seats" validate:"gte=0"`
	Date           string `json:"date" yaml:"date" validate:"datetime=2006-01-02"`
}

// ShowtimeSlot is a Showtime without its date; responses already echo
// the requested date once at the top level.
type ShowtimeSlot struct {
	Time           string `json:"time"`
	AvailableSeats int    `json:"available_seats"`
}

// CinemaShowtimes is the response of a showtime lookup.
type CinemaShowtimes struct {
	CinemaID  int            `json:"cinema_id"`
	MovieID   int            `json:"movie_id"`
	Date      string         `json:"date"`
	Showtimes []ShowtimeSlot `json:"showtimes"`
}
