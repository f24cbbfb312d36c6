package model

// Flight is a scheduled flight between two airports.
//
// Fields:
//  FlightID    – flight number.
//  Origin      – departure airport code, three upper-case letters.
//  Destination – arrival airport code, three upper-case letters.
//  Date        – departure date as YYYY-MM-DD.
//  Price       – ticket price in whole currency units.
type Flight struct {
	FlightID    int    `json:"flight_id" yaml:"flight_id" validate:"gt=0"`
	Origin      string `json:"origin" yaml:"origin" validate:"len=3,uppercase"`
	Destination string `json:"destination" yaml:"destination" validate:"len=3,uppercase"`
	Date        string `json:"date" yaml:"date" validate:"datetime=2006-01-02"`
	Price       int    `json:"price" yaml:"price" validate:"gte=0"`
}
