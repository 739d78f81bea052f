// Package timeutil provides the clock and period-of-day helpers used when
// computing and speaking calendar availability.
//
// Clock-of-day values are zero-padded 24-hour "HH:MM" strings. They are
// ordered lexicographically, which is only correct within a single day:
// windows and events that cross midnight are not ordered correctly.
//
// Example usage:
//
//	p, err := timeutil.ClassifyPeriod("13:30") // timeutil.Afternoon
//	s := timeutil.FormatClock("13:30")         // "01:30 pm"
package timeutil
