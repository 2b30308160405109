package utils

import (
	"fmt"
	"time"

	jnow "github.com/jinzhu/now"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	timeWithSecondsLayout = "15:04:05"
)

// ParseLocalSlot combines a calendar date and an optional clock time into an
// instant in loc. A missing time means the start of the day.
func ParseLocalSlot(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	if clock == "" {
		return day, nil
	}

	t, err := time.ParseInLocation(TimeLayout, clock, loc)
	if err != nil {
		t, err = time.ParseInLocation(timeWithSecondsLayout, clock, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
		}
	}

	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

// IsDate reports whether s is a valid YYYY-MM-DD calendar date.
func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsClockTime reports whether s is a valid HH:MM time.
func IsClockTime(s string) bool {
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// TomorrowDate returns the calendar date after t, in t's zone.
func TomorrowDate(t time.Time) string {
	return jnow.With(t).BeginningOfDay().AddDate(0, 0, 1).Format(DateLayout)
}

// FormatDisplayDate renders a stored date for humans, e.g. "Friday, January 16, 2026".
// Unparseable input is returned unchanged.
func FormatDisplayDate(date string) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("Monday, January 2, 2006")
}
