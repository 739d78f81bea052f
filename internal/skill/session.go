package skill

import (
	"encoding/json"
	"fmt"

	"github.com/teemow/voicecal/internal/availability"
	"github.com/teemow/voicecal/internal/preferences"
	"github.com/teemow/voicecal/internal/speech"
	"github.com/teemow/voicecal/internal/timeutil"
)

// Kind tags the follow-up a Pending value is waiting for.
type Kind string

const (
	KindNone           Kind = ""
	KindGetEvents      Kind = "getEvents"
	KindSetPreferences Kind = "setPreferences"
	KindScheduleEvent  Kind = "scheduleEvent"
	KindAddEvent       Kind = "addEvent"
)

// Schedule is the result of a scheduling turn, kept until the user picks a
// period of day or a start time.
type Schedule struct {
	Date     string                                      `json:"date"`
	ByPeriod map[timeutil.Period][]availability.Interval `json:"byPeriod,omitempty"`
}

// Pending is a tagged union of the follow-ups a yes, no, time-of-day or
// add-event turn can act on. Only the payload matching Kind is set; use the
// constructors to build one.
type Pending struct {
	Kind     Kind           `json:"kind,omitempty"`
	Events   []speech.Event `json:"events,omitempty"`
	Category string         `json:"category,omitempty"`
	Schedule *Schedule      `json:"schedule,omitempty"`
	EventID  string         `json:"eventId,omitempty"`
}

// PendingEvents waits for the user to ask to hear the listed events.
func PendingEvents(events []speech.Event) Pending {
	return Pending{Kind: KindGetEvents, Events: events}
}

// PendingPreference allows the preference for category to be undone.
func PendingPreference(category string) Pending {
	return Pending{Kind: KindSetPreferences, Category: category}
}

// PendingSchedule waits for a period of day or a start time on date.
func PendingSchedule(date string, byPeriod map[timeutil.Period][]availability.Interval) Pending {
	return Pending{Kind: KindScheduleEvent, Schedule: &Schedule{Date: date, ByPeriod: byPeriod}}
}

// PendingAddedEvent allows the created event to be undone.
func PendingAddedEvent(eventID string) Pending {
	return Pending{Kind: KindAddEvent, EventID: eventID}
}

// validate rejects a payload that does not match its kind.
func (p Pending) validate() error {
	switch p.Kind {
	case KindNone, KindGetEvents:
		return nil
	case KindSetPreferences:
		if p.Category == "" {
			return fmt.Errorf("pending %s without category", p.Kind)
		}
	case KindScheduleEvent:
		if p.Schedule == nil || p.Schedule.Date == "" {
			return fmt.Errorf("pending %s without date", p.Kind)
		}
	case KindAddEvent:
		if p.EventID == "" {
			return fmt.Errorf("pending %s without event id", p.Kind)
		}
	default:
		return fmt.Errorf("unknown pending kind %q", p.Kind)
	}
	return nil
}

// State is the conversation state carried between turns in the session
// attributes.
type State struct {
	// Preferences is nil until loaded from the store in this session.
	Preferences preferences.Map `json:"preferences"`
	LastSpeech  string          `json:"lastSpeech,omitempty"`
	Pending     Pending         `json:"pending"`
}

// Clear drops any pending follow-up.
func (s *State) Clear() {
	s.Pending = Pending{}
}

// DecodeState reads the state from session attributes. Empty attributes
// yield a zero State.
func DecodeState(attrs json.RawMessage) (State, error) {
	var st State
	if len(attrs) == 0 || string(attrs) == "null" {
		return st, nil
	}
	if err := json.Unmarshal(attrs, &st); err != nil {
		return State{}, fmt.Errorf("failed to decode session state: %w", err)
	}
	if err := st.Pending.validate(); err != nil {
		return State{}, fmt.Errorf("invalid session state: %w", err)
	}
	return st, nil
}

// Encode returns the state as session attributes.
func (s State) Encode() (json.RawMessage, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session state: %w", err)
	}
	return b, nil
}
