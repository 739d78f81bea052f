package calendar

import (
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// eventDateTimeLayout is the wall-clock layout sent together with an explicit
// timeZone, so the provider interprets the time in that zone.
const eventDateTimeLayout = "2006-01-02T15:04:05"

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary    string
	Start      time.Time
	End        time.Time
	TimeZone   string   // IANA name; Start and End are sent as wall-clock times in this zone
	Recurrence []string // RRULE lines, see WeeklyRule
}

// EventSummary represents a simplified calendar event for listing.
// Start and End are in the event's own time zone when the provider reports one.
type EventSummary struct {
	ID       string
	Summary  string
	Start    time.Time
	End      time.Time
	TimeZone string
	Status   string

	// AllDay is set for events that carry a date but no clock time. Their
	// Start and End are midnight of the first day and of the day after.
	AllDay bool
}

// TimedEvents returns the events that occupy a span of clock time, dropping
// all-day events.
func TimedEvents(events []EventSummary) []EventSummary {
	out := make([]EventSummary, 0, len(events))
	for _, e := range events {
		if !e.AllDay {
			out = append(out, e)
		}
	}
	return out
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:      event.Id,
		Summary: event.Summary,
		Status:  event.Status,
	}

	if event.Start != nil {
		summary.Start, summary.TimeZone = parseEventDateTime(event.Start)
		summary.AllDay = event.Start.DateTime == "" && event.Start.Date != ""
	}
	if event.End != nil {
		summary.End, _ = parseEventDateTime(event.End)
	}

	return summary
}

// parseEventDateTime parses a start or end value and moves it into the
// value's own time zone. All-day values carry only a date.
func parseEventDateTime(edt *calendar.EventDateTime) (time.Time, string) {
	loc := time.UTC
	if edt.TimeZone != "" {
		if l, err := time.LoadLocation(edt.TimeZone); err == nil {
			loc = l
		}
	}

	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, edt.TimeZone
		}
		if edt.TimeZone != "" {
			t = t.In(loc)
		}
		return t, edt.TimeZone
	}

	if edt.Date != "" {
		if t, err := time.ParseInLocation("2006-01-02", edt.Date, loc); err == nil {
			return t, edt.TimeZone
		}
	}
	return time.Time{}, edt.TimeZone
}

// toEventDateTime renders t for the provider. With a time zone, the wall-clock
// time in that zone is sent alongside the zone name; without one, an RFC 3339
// timestamp in UTC.
func toEventDateTime(t time.Time, timeZone string) (*calendar.EventDateTime, error) {
	if timeZone == "" {
		return &calendar.EventDateTime{
			DateTime: t.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		}, nil
	}

	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", timeZone, err)
	}
	return &calendar.EventDateTime{
		DateTime: t.In(loc).Format(eventDateTimeLayout),
		TimeZone: timeZone,
	}, nil
}
