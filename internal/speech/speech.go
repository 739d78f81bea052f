package speech

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/teemow/voicecal/internal/availability"
	"github.com/teemow/voicecal/internal/preferences"
	"github.com/teemow/voicecal/internal/timeutil"
)

// TimePrompt asks the user to pick a start time.
const TimePrompt = "What time would you like to schedule the event for?"

// NoAvailability is spoken when busy events leave no free window.
const NoAvailability = "You have no availability today."

// JoinList joins items for speech. Two items are joined with "and"; longer
// lists put a comma after every item but the last, and "and" before it.
func JoinList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		last := i == len(items)-1
		if last && len(items) > 1 {
			b.WriteString("and ")
		}
		b.WriteString(item)
		if !last {
			if len(items) > 2 {
				b.WriteString(",")
			}
			b.WriteString(" ")
		}
	}
	return b.String()
}

// Interval renders a free window as "from 09:00 am to 10:30 am".
func Interval(iv availability.Interval) string {
	return fmt.Sprintf("from %s to %s", timeutil.FormatClock(iv.Start), timeutil.FormatClock(iv.End))
}

func intervals(ivs []availability.Interval) []string {
	out := make([]string, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, Interval(iv))
	}
	return out
}

// PeriodPhrase renders a period as "in the morning".
func PeriodPhrase(p timeutil.Period) string {
	return "in the " + p.String()
}

// Availability picks one of four presentations for a scheduling result:
// the whole (or narrowed) window when there were no busy events, no
// availability at all, a summary by period of day when the free windows are
// many and spread out, or else the literal free windows.
func Availability(res availability.Result, busyCount int, window preferences.Window) string {
	switch {
	case busyCount == 0:
		if window == preferences.DefaultWindow {
			return "You are available for the whole day. " + TimePrompt
		}
		return fmt.Sprintf("You are available from %s to %s. %s",
			timeutil.FormatClock(window.Start), timeutil.FormatClock(window.End), TimePrompt)

	case len(res.Free) == 0:
		return NoAvailability

	case len(res.Free) > 2 && len(res.Periods()) > 1:
		var names []string
		for _, p := range res.Periods() {
			names = append(names, PeriodPhrase(p))
		}
		return fmt.Sprintf("Okay, you have availability %s. Which would you prefer?", JoinList(names))

	default:
		return fmt.Sprintf("Okay, you have availability %s. %s", JoinList(intervals(res.Free)), TimePrompt)
	}
}

// PeriodAvailability lists the free windows of a single period of day.
func PeriodAvailability(ivs []availability.Interval) string {
	if len(ivs) == 0 {
		return NoAvailability
	}
	return fmt.Sprintf("You have availability %s. %s", JoinList(intervals(ivs)), TimePrompt)
}

// Preferences renders every stored preference in category order.
func Preferences(prefs preferences.Map) string {
	if len(prefs) == 0 {
		return "You have no preferences."
	}

	var items []string
	for _, category := range prefs.Categories() {
		w := prefs[category]
		if w.IsPoint() {
			items = append(items, fmt.Sprintf("%s events at %s", category, timeutil.FormatClock(w.Start)))
			continue
		}
		items = append(items, fmt.Sprintf("%s events from %s to %s",
			category, timeutil.FormatClock(w.Start), timeutil.FormatClock(w.End)))
	}
	return "You prefer to have " + JoinList(items) + "."
}

// PreferenceSaved confirms a stored preference, e.g. "in the morning".
func PreferenceSaved(category, phrase string) string {
	return fmt.Sprintf("Okay, I'll remember that you prefer %s events to be %s", category, phrase)
}

// Event is an upcoming calendar event to be spoken. Start and End are spoken
// in their own location.
type Event struct {
	Summary string    `json:"summary"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// EventCount announces how many events are coming up, and offers to list
// them when there are any.
func EventCount(n int) string {
	plural := "s"
	if n == 1 {
		plural = ""
	}
	out := fmt.Sprintf("You have %d event%s in the next 24 hours.", n, plural)
	switch {
	case n == 1:
		out += " Would you like to hear what it is?"
	case n > 1:
		out += " Would you like to hear what they are?"
	}
	return out
}

// Events lists events as "You have standup from 09:00 am to 09:15 am and ...".
func Events(events []Event) string {
	if len(events) == 0 {
		return ""
	}
	items := make([]string, 0, len(events))
	for _, e := range events {
		items = append(items, fmt.Sprintf("%s from %s to %s",
			e.Summary, timeutil.FormatInstant(e.Start, nil), timeutil.FormatInstant(e.End, nil)))
	}
	return "You have " + JoinList(items) + "."
}

// SpokenDate renders a date as "October 19th, 2026".
func SpokenDate(t time.Time) string {
	return fmt.Sprintf("%s %s, %d", t.Month(), humanize.Ordinal(t.Day()), t.Year())
}

// EventAdded confirms a newly created event.
func EventAdded(name string, start, end time.Time) string {
	return fmt.Sprintf("Okay, I added %s to your calendar for %s from %s to %s.",
		name, SpokenDate(start), timeutil.FormatInstant(start, nil), timeutil.FormatInstant(end, nil))
}
