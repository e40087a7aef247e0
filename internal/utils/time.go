package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitlit/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD date into midnight UTC. Dates are calendar
// days, so arithmetic on them is done in UTC to avoid DST surprises.
func ParseDate(day string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", day)
	}
	return t, nil
}

// ValidateDate reports whether day is a well-formed YYYY-MM-DD date.
func ValidateDate(day string) bool {
	_, err := ParseDate(day)
	return err == nil
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(day string, n int) (string, error) {
	t, err := ParseDate(day)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(constants.DateFormat), nil
}

// MustAddDays is AddDays for dates already validated by the caller.
func MustAddDays(day string, n int) string {
	out, err := AddDays(day, n)
	if err != nil {
		panic(err)
	}
	return out
}

// DaysBetween returns the number of calendar days from a to b (b - a).
func DaysBetween(a, b string) (int, error) {
	ta, err := ParseDate(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseDate(b)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}

// StartOfWeek returns the Monday on or before day.
func StartOfWeek(day string) (string, error) {
	t, err := ParseDate(day)
	if err != nil {
		return "", err
	}
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(constants.DateFormat), nil
}

// StartOfMonth returns the first day of the month containing day.
func StartOfMonth(day string) (string, error) {
	t, err := ParseDate(day)
	if err != nil {
		return "", err
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Format(constants.DateFormat), nil
}

// MinDate returns the earlier of two YYYY-MM-DD dates.
func MinDate(a, b string) string {
	if a < b {
		return a
	}
	return b
}
