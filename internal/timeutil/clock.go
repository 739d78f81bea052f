package timeutil

import (
	"time"
)

const (
	// ClockLayout is the 24-hour clock-of-day layout used for comparisons.
	ClockLayout = "15:04"

	// SpokenLayout is the 12-hour layout used in speech, e.g. "09:30 am".
	SpokenLayout = "03:04 pm"

	// DateLayout is the calendar date layout used by date slots.
	DateLayout = "2006-01-02"

	// midnightEnd is accepted as an end-of-day clock value.
	midnightEnd = "24:00"
)

// ClockOf returns the "HH:MM" clock of t in its own location.
func ClockOf(t time.Time) string {
	return t.Format(ClockLayout)
}

// FormatInstant renders an instant in loc as "hh:mm am".
// A nil location leaves t in its own location.
func FormatInstant(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(SpokenLayout)
}

// FormatClock renders a bare 24-hour "HH:MM" string as "hh:mm am" without
// any timezone conversion. Input that cannot be parsed is returned unchanged.
func FormatClock(clock string) string {
	if clock == midnightEnd {
		return "12:00 am"
	}
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return clock
	}
	return t.Format(SpokenLayout)
}

// ParseClock parses a "HH:MM" clock value. "24:00" is accepted and resolves
// to the end of the day.
func ParseClock(clock string) (time.Duration, error) {
	if clock == midnightEnd {
		return 24 * time.Hour, nil
	}
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// OnDate combines a "YYYY-MM-DD" date and a "HH:MM" clock into an instant in loc.
func OnDate(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, err
	}
	offset, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc).Add(offset), nil
}

// LoadLocation resolves an IANA timezone identifier, treating "" as UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "UTC" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}
