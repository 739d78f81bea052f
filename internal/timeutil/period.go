package timeutil

import (
	"errors"
	"fmt"
)

// ErrClockOutOfRange is returned when a clock value falls at or after "24:00".
var ErrClockOutOfRange = errors.New("clock time out of range")

// Period is a coarse period-of-day bucket.
type Period int

const (
	EarlyMorning Period = iota
	Morning
	Afternoon
	Evening
	Night
)

// periodBreakpoints maps the exclusive upper bound of each period, in order.
var periodBreakpoints = []struct {
	before string
	period Period
}{
	{"05:00", EarlyMorning},
	{"12:00", Morning},
	{"17:00", Afternoon},
	{"21:00", Evening},
	{"24:00", Night},
}

var periodNames = map[Period]string{
	EarlyMorning: "early morning",
	Morning:      "morning",
	Afternoon:    "afternoon",
	Evening:      "evening",
	Night:        "night",
}

// Periods returns every period in chronological order.
func Periods() []Period {
	return []Period{EarlyMorning, Morning, Afternoon, Evening, Night}
}

// String returns the spoken name of the period.
func (p Period) String() string {
	if name, ok := periodNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Period(%d)", int(p))
}

// ParsePeriod resolves a spoken period name such as "afternoon".
func ParsePeriod(name string) (Period, error) {
	for p, n := range periodNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown period of day %q", name)
}

// MarshalText encodes the period by its spoken name.
func (p Period) MarshalText() ([]byte, error) {
	name, ok := periodNames[p]
	if !ok {
		return nil, fmt.Errorf("unknown period %d", int(p))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a period from its spoken name.
func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ClassifyPeriod returns the period a "HH:MM" clock value falls in.
// The comparison is lexicographic on the zero-padded string.
func ClassifyPeriod(clock string) (Period, error) {
	for _, bp := range periodBreakpoints {
		if clock < bp.before {
			return bp.period, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrClockOutOfRange, clock)
}
