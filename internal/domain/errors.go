package domain

import "errors"

var (
	// ErrInvalidDate indicates a month/day pair that is not calendar-valid
	// under the entry's year.
	ErrInvalidDate = errors.New("invalid calendar date")

	// ErrUnresolvableDate indicates that no field of a source record yields
	// a month and day.
	ErrUnresolvableDate = errors.New("unresolvable date")

	// ErrEmptyName indicates a blank display name.
	ErrEmptyName = errors.New("name is required")
)
