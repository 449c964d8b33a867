package domain

import (
	"fmt"
	"strings"
	"time"
)

// SentinelYear is the placeholder birth year meaning "unknown". It is a leap
// year, so February 29 entries stay structurally valid, and old enough that
// it can never collide with a real birth year.
const SentinelYear = 1604

// Entry is the canonical representation of one birthday record after
// extraction and before serialization. Values are immutable once built.
type Entry struct {
	Name      string
	Month     time.Month
	Day       int
	Year      int
	YearKnown bool
	SourceUID string
}

// NewEntry validates and constructs an Entry. The month/day pair must form a
// real calendar date under the given year; February 29 is accepted whenever
// the year is a leap year, which includes the sentinel.
func NewEntry(name string, month time.Month, day, year int, yearKnown bool, sourceUID string) (Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, ErrEmptyName
	}
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return Entry{}, fmt.Errorf("%w: month=%d day=%d", ErrInvalidDate, month, day)
	}
	// time.Date normalizes overflow (Feb 30 -> Mar 1), so a round-trip
	// mismatch means the pair does not exist in that year.
	anchored := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if anchored.Month() != month || anchored.Day() != day {
		return Entry{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return Entry{
		Name:      name,
		Month:     month,
		Day:       day,
		Year:      year,
		YearKnown: yearKnown,
		SourceUID: sourceUID,
	}, nil
}

// Date returns the entry anchored as a UTC calendar date.
func (e Entry) Date() time.Time {
	return time.Date(e.Year, e.Month, e.Day, 0, 0, 0, 0, time.UTC)
}
