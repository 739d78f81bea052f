package timeutil

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

// ErrInvalidDuration is returned for durations that are not ISO-8601.
var ErrInvalidDuration = errors.New("invalid ISO-8601 duration")

// ErrDurationOutOfRange is returned for durations too long for time.Duration.
var ErrDurationOutOfRange = errors.New("ISO-8601 duration out of range")

// Upper bounds per unit, in seconds. Years and months are taken at their
// longest so the range check never lets an overflowing value through.
const (
	secondsPerDay   = 24 * 60 * 60
	secondsPerWeek  = 7 * secondsPerDay
	secondsPerMonth = 31 * secondsPerDay
	secondsPerYear  = 366 * secondsPerDay
)

var maxDurationSeconds = float64(math.MaxInt64) / float64(time.Second)

// ParseISODuration parses the ISO-8601 durations produced by the voice
// platform's duration slot, e.g. "PT1H30M" or "P1D". Negative durations and
// durations beyond the range of time.Duration are rejected.
func ParseISODuration(s string) (time.Duration, error) {
	if s == "" || s == "P" || strings.HasSuffix(s, "T") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	d, err := duration.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidDuration, s, err)
	}
	if d.Negative {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidDuration, s)
	}

	seconds := d.Years*secondsPerYear +
		d.Months*secondsPerMonth +
		d.Weeks*secondsPerWeek +
		d.Days*secondsPerDay +
		d.Hours*60*60 +
		d.Minutes*60 +
		d.Seconds
	if seconds >= maxDurationSeconds {
		return 0, fmt.Errorf("%w: %q", ErrDurationOutOfRange, s)
	}

	return d.ToTimeDuration(), nil
}
