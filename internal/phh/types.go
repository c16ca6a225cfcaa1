// Package phh exports parsed hands in the PHH (poker hand history) TOML
// format, so hands ingested from room-specific text logs can feed tooling
// that speaks the portable format.
package phh

import "time"

// HandHistory represents a single poker hand encoded in PHH format.
type HandHistory struct {
	Variant           string    `toml:"variant"`
	Table             string    `toml:"table,omitempty"`
	SeatCount         int       `toml:"seat_count,omitempty"`
	Seats             []int     `toml:"seats,omitempty"`
	Antes             []float64 `toml:"antes"`
	BlindsOrStraddles []float64 `toml:"blinds_or_straddles"`
	MinBet            float64   `toml:"min_bet"`
	StartingStacks    []float64 `toml:"starting_stacks"`
	Winnings          []float64 `toml:"winnings,omitempty"`
	Actions           []string  `toml:"actions"`
	Players           []string  `toml:"players,omitempty"`
	HandID            string    `toml:"hand"`
	Time              string    `toml:"time,omitempty"`
	Day               int       `toml:"day,omitempty"`
	Month             int       `toml:"month,omitempty"`
	Year              int       `toml:"year,omitempty"`

	Timestamp time.Time `toml:"-"`
}
