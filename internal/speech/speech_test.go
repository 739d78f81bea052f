package speech

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/voicecal/internal/availability"
	"github.com/teemow/voicecal/internal/preferences"
	"github.com/teemow/voicecal/internal/timeutil"
)

func TestJoinList(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{"empty", nil, ""},
		{"one", []string{"A"}, "A"},
		{"two", []string{"A", "B"}, "A and B"},
		{"three", []string{"A", "B", "C"}, "A, B, and C"},
		{"four", []string{"A", "B", "C", "D"}, "A, B, C, and D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinList(tt.items))
		})
	}
}

func TestAvailability_WholeDay(t *testing.T) {
	res, err := availability.Compute(preferences.DefaultWindow, nil)
	require.NoError(t, err)

	got := Availability(res, 0, preferences.DefaultWindow)
	assert.Equal(t, "You are available for the whole day. What time would you like to schedule the event for?", got)
}

func TestAvailability_NarrowedWindow(t *testing.T) {
	window := preferences.Window{Start: "12:00", End: "16:00"}
	res, err := availability.Compute(window, nil)
	require.NoError(t, err)

	got := Availability(res, 0, window)
	assert.Equal(t, "You are available from 12:00 pm to 04:00 pm. What time would you like to schedule the event for?", got)
}

func TestAvailability_NoneLeft(t *testing.T) {
	got := Availability(availability.Result{}, 1, preferences.Window{Start: "09:00", End: "17:00"})
	assert.Equal(t, "You have no availability today.", got)
}

func TestAvailability_SummarizedByPeriod(t *testing.T) {
	free := []availability.Interval{
		{Start: "08:00", End: "09:00", Period: timeutil.Morning},
		{Start: "09:30", End: "12:00", Period: timeutil.Morning},
		{Start: "13:00", End: "15:00", Period: timeutil.Afternoon},
		{Start: "15:30", End: "18:00", Period: timeutil.Afternoon},
	}
	res := availability.Result{
		Free: free,
		ByPeriod: map[timeutil.Period][]availability.Interval{
			timeutil.Morning:   free[:2],
			timeutil.Afternoon: free[2:],
		},
	}

	got := Availability(res, 3, preferences.Window{Start: "08:00", End: "18:00"})
	assert.Equal(t, "Okay, you have availability in the morning and in the afternoon. Which would you prefer?", got)
}

func TestAvailability_LiteralIntervals(t *testing.T) {
	tests := []struct {
		name string
		free []availability.Interval
		want string
	}{
		{
			name: "two windows",
			free: []availability.Interval{
				{Start: "08:00", End: "09:00", Period: timeutil.Morning},
				{Start: "13:00", End: "18:00", Period: timeutil.Afternoon},
			},
			want: "Okay, you have availability from 08:00 am to 09:00 am and from 01:00 pm to 06:00 pm. What time would you like to schedule the event for?",
		},
		{
			name: "three windows in one period",
			free: []availability.Interval{
				{Start: "13:00", End: "14:00", Period: timeutil.Afternoon},
				{Start: "14:30", End: "15:00", Period: timeutil.Afternoon},
				{Start: "16:00", End: "17:00", Period: timeutil.Afternoon},
			},
			want: "Okay, you have availability from 01:00 pm to 02:00 pm, from 02:30 pm to 03:00 pm, and from 04:00 pm to 05:00 pm. What time would you like to schedule the event for?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := availability.Result{Free: tt.free, ByPeriod: map[timeutil.Period][]availability.Interval{}}
			for _, iv := range tt.free {
				res.ByPeriod[iv.Period] = append(res.ByPeriod[iv.Period], iv)
			}
			assert.Equal(t, tt.want, Availability(res, 2, preferences.DefaultWindow))
		})
	}
}

// The window after the last event counts toward the free list but not the
// period summary, so one bucket keeps the literal listing.
func TestAvailability_TrailingWindowKeepsLiteralListing(t *testing.T) {
	at := func(clock string) time.Time {
		tm, err := timeutil.OnDate("2026-10-19", clock, time.UTC)
		require.NoError(t, err)
		return tm
	}
	busy := []availability.Busy{
		{Start: at("00:00"), End: at("06:00")},
		{Start: at("07:00"), End: at("08:00")},
		{Start: at("09:00"), End: at("13:00")},
	}

	res, err := availability.Compute(preferences.DefaultWindow, busy)
	require.NoError(t, err)

	got := Availability(res, len(busy), preferences.DefaultWindow)
	assert.Equal(t, "Okay, you have availability from 06:00 am to 07:00 am, from 08:00 am to 09:00 am, and from 01:00 pm to 11:59 pm. "+TimePrompt, got)
}

func TestPeriodAvailability(t *testing.T) {
	got := PeriodAvailability([]availability.Interval{{Start: "21:00", End: "24:00", Period: timeutil.Night}})
	assert.Equal(t, "You have availability from 09:00 pm to 12:00 am. What time would you like to schedule the event for?", got)

	assert.Equal(t, NoAvailability, PeriodAvailability(nil))
}

func TestPreferences(t *testing.T) {
	assert.Equal(t, "You have no preferences.", Preferences(nil))

	prefs := preferences.Map{
		"lunch":   {Start: "12:30", End: "12:30"},
		"dentist": {Start: "05:00", End: "11:00"},
	}
	assert.Equal(t,
		"You prefer to have dentist events from 05:00 am to 11:00 am and lunch events at 12:30 pm.",
		Preferences(prefs))
}

func TestPreferenceSaved(t *testing.T) {
	_, phrase := preferences.Resolve("MO", "")
	assert.Equal(t, "Okay, I'll remember that you prefer gym events to be in the morning", PreferenceSaved("gym", phrase))
}

func TestEventCount(t *testing.T) {
	assert.Equal(t, "You have 0 events in the next 24 hours.", EventCount(0))
	assert.Equal(t, "You have 1 event in the next 24 hours. Would you like to hear what it is?", EventCount(1))
	assert.Equal(t, "You have 3 events in the next 24 hours. Would you like to hear what they are?", EventCount(3))
}

func TestEvents(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	events := []Event{
		{Summary: "standup", Start: time.Date(2026, 10, 19, 9, 0, 0, 0, berlin), End: time.Date(2026, 10, 19, 9, 15, 0, 0, berlin)},
		{Summary: "lunch", Start: time.Date(2026, 10, 19, 12, 30, 0, 0, berlin), End: time.Date(2026, 10, 19, 13, 30, 0, 0, berlin)},
	}
	assert.Equal(t, "You have standup from 09:00 am to 09:15 am and lunch from 12:30 pm to 01:30 pm.", Events(events))
	assert.Empty(t, Events(nil))
}

func TestEventAdded(t *testing.T) {
	start := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)
	got := EventAdded("dentist", start, start.Add(time.Hour))
	assert.Equal(t, "Okay, I added dentist to your calendar for October 19th, 2026 from 02:00 pm to 03:00 pm.", got)

	assert.Equal(t, "March 1st, 2027", SpokenDate(time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "March 22nd, 2027", SpokenDate(time.Date(2027, 3, 22, 0, 0, 0, 0, time.UTC)))
}
