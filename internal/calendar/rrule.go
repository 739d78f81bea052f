package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// WeeklyRule builds the recurrence line for an event repeating every week on
// the given weekday until the given date, e.g.
// "RRULE:FREQ=WEEKLY;UNTIL=20261130;BYDAY=MO" for ("monday", 2026-11-30).
//
// The weekday code is the first two letters of frequency, upper-cased. The
// rule is parsed back before it is returned so an unknown weekday is caught
// here instead of by the provider.
func WeeklyRule(frequency string, until time.Time) (string, error) {
	frequency = strings.TrimSpace(frequency)
	if len(frequency) < 2 {
		return "", fmt.Errorf("invalid weekday %q", frequency)
	}

	rule := fmt.Sprintf("FREQ=WEEKLY;UNTIL=%s;BYDAY=%s",
		until.Format("20060102"), strings.ToUpper(frequency[:2]))

	if _, err := rrule.StrToRRule(rule); err != nil {
		return "", fmt.Errorf("invalid recurrence rule %q: %w", rule, err)
	}

	return "RRULE:" + rule, nil
}
