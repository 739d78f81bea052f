// Package availability computes the free windows left in a day once a user's
// busy calendar events are removed from a bounding window.
package availability

import (
	"fmt"
	"time"

	"github.com/teemow/voicecal/internal/preferences"
	"github.com/teemow/voicecal/internal/timeutil"
)

// Busy is an occupied span, typically a calendar event. Start and End carry
// the event's own location so their clock-of-day is local to the event.
type Busy struct {
	Start time.Time
	End   time.Time
}

// Interval is a computed free window in "HH:MM" clock-of-day form.
type Interval struct {
	Start  string          `json:"start"`
	End    string          `json:"end"`
	Period timeutil.Period `json:"period"`
}

// Result holds the free windows in chronological order. ByPeriod groups the
// windows that end at a busy event by the period of day they start in; the
// window after the last event is only in Free.
type Result struct {
	Free     []Interval
	ByPeriod map[timeutil.Period][]Interval
}

// Periods returns the periods that have at least one free window, in
// chronological order.
func (r Result) Periods() []timeutil.Period {
	var out []timeutil.Period
	for _, p := range timeutil.Periods() {
		if len(r.ByPeriod[p]) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Compute walks busy, which must be sorted by start time, and returns the
// gaps between consecutive events inside window.
//
// A gap is emitted only when an event starts strictly after the cursor, so
// events that abut produce no zero-length window. The cursor always moves to
// the end of the current event.
func Compute(window preferences.Window, busy []Busy) (Result, error) {
	res := Result{ByPeriod: make(map[timeutil.Period][]Interval)}

	cursor := window.Start
	for _, b := range busy {
		busyStart := timeutil.ClockOf(b.Start)
		if busyStart > cursor {
			iv, err := newInterval(cursor, busyStart)
			if err != nil {
				return Result{}, err
			}
			res.Free = append(res.Free, iv)
			res.ByPeriod[iv.Period] = append(res.ByPeriod[iv.Period], iv)
		}
		cursor = timeutil.ClockOf(b.End)
	}

	if cursor < window.End {
		iv, err := newInterval(cursor, window.End)
		if err != nil {
			return Result{}, err
		}
		res.Free = append(res.Free, iv)
	}

	return res, nil
}

func newInterval(start, end string) (Interval, error) {
	p, err := timeutil.ClassifyPeriod(start)
	if err != nil {
		return Interval{}, fmt.Errorf("classifying free window %s-%s: %w", start, end, err)
	}
	return Interval{Start: start, End: end, Period: p}, nil
}
