package skill

import (
	"errors"
	"fmt"
	"time"

	"github.com/teemow/voicecal/internal/availability"
	"github.com/teemow/voicecal/internal/calendar"
	"github.com/teemow/voicecal/internal/logging"
	"github.com/teemow/voicecal/internal/preferences"
	"github.com/teemow/voicecal/internal/speech"
	"github.com/teemow/voicecal/internal/timeutil"
)

// Intent names from the interaction model.
const (
	IntentGetEvents      = "GetEventsIntent"
	IntentSetPreferences = "SetPreferencesIntent"
	IntentScheduleEvent  = "ScheduleEventIntent"
	IntentAddEvent       = "AddEventIntent"
	IntentTimeOfDay      = "TimeOfDayIntent"
	IntentGetPreferences = "GetPreferencesIntent"
	IntentRecurringEvent = "RecurringEventIntent"
	IntentYes            = "AMAZON.YesIntent"
	IntentNo             = "AMAZON.NoIntent"
	IntentRepeat         = "AMAZON.RepeatIntent"
	IntentHelp           = "AMAZON.HelpIntent"
	IntentCancel         = "AMAZON.CancelIntent"
	IntentStop           = "AMAZON.StopIntent"
	IntentFallback       = "AMAZON.FallbackIntent"
)

// Fixed spoken lines.
const (
	LinkAccountSpeech = "Please use the Alexa app to link your Google Account."
	GreetingSpeech    = "Hi there! I can help you schedule an event or check if you have any upcoming events."
	PreferenceHint    = " You can let me know if you prefer to schedule certain types of events at certain times."
	HelpSpeech        = "Hi there! I can help you schedule an event or check if you have any upcoming events. You can also let me know if you prefer to schedule certain types of events at certain times."
	GoodbyeSpeech     = "Goodbye!"
	FallbackSpeech    = "Sorry, I don't know about that. I can help you schedule an event or tell you your upcoming events."
	ErrorSpeech       = "Sorry, I had trouble doing what you asked. Please try again."
	RecurringSpeech   = "Okay, I've added the event to your calendar"
	OkaySpeech        = "Okay"
	UndoSpeech        = "Okay, I'll undo that"
)

// upcomingWindow is how far ahead GetEventsIntent looks.
const upcomingWindow = 24 * time.Hour

type intentHandler func(s *Skill, t *turn) error

var intentHandlers = map[string]intentHandler{
	IntentGetEvents:      (*Skill).handleGetEvents,
	IntentSetPreferences: (*Skill).handleSetPreferences,
	IntentScheduleEvent:  (*Skill).handleScheduleEvent,
	IntentAddEvent:       (*Skill).handleAddEvent,
	IntentTimeOfDay:      (*Skill).handleTimeOfDay,
	IntentGetPreferences: (*Skill).handleGetPreferences,
	IntentRecurringEvent: (*Skill).handleRecurringEvent,
	IntentYes:            (*Skill).handleYes,
	IntentNo:             (*Skill).handleNo,
	IntentRepeat:         (*Skill).handleRepeat,
	IntentHelp:           (*Skill).handleHelp,
	IntentCancel:         (*Skill).handleCancelAndStop,
	IntentStop:           (*Skill).handleCancelAndStop,
	IntentFallback:       (*Skill).handleFallback,
}

func (s *Skill) handleLaunch(t *turn) error {
	if t.env.AccessToken() == "" {
		return ErrNoLinkedAccount
	}

	text := GreetingSpeech
	if len(s.preferences(t)) == 0 {
		text += PreferenceHint
	}
	t.say(text, text)
	return nil
}

func (s *Skill) handleSessionEnded(t *turn) error {
	req := t.env.Request
	if req.Error != nil {
		t.logger.Warn("Session ended with error",
			"reason", req.Reason,
			"error_type", req.Error.Type,
			"error_message", req.Error.Message)
	} else {
		t.logger.Info("Session ended", "reason", req.Reason)
	}
	return nil
}

func (s *Skill) handleGetEvents(t *turn) error {
	cal, err := s.calendar(t)
	if err != nil {
		return err
	}

	now := s.now()
	events, err := cal.ListEvents(t.ctx, now, now.Add(upcomingWindow))
	if err != nil {
		t.logger.Warn("Failed to list upcoming events", logging.Err(err))
		t.say("", "")
		return nil
	}

	text := speech.EventCount(len(events))
	if len(events) == 0 {
		t.say(text, "")
		return nil
	}

	spoken := make([]speech.Event, 0, len(events))
	for _, e := range events {
		spoken = append(spoken, speech.Event{Summary: e.Summary, Start: e.Start, End: e.End})
	}
	t.state.Pending = PendingEvents(spoken)
	t.say(text, text)
	return nil
}

func (s *Skill) handleSetPreferences(t *turn) error {
	category := preferences.NormalizeCategory(t.env.SlotValue("eventType"))
	token := t.env.SlotValue("time")
	if category == "" || token == "" {
		return errors.New("set preferences needs an event type and a time")
	}
	window, phrase := preferences.Resolve(token, t.env.SlotValue("timeEnd"))

	updated := preferences.With(s.preferences(t), category, window)
	if err := s.savePreferences(t, updated); err != nil {
		return err
	}

	t.state.Pending = PendingPreference(category)
	t.say(speech.PreferenceSaved(category, phrase), "")
	t.resp.WithShouldEndSession(false)
	return nil
}

func (s *Skill) handleScheduleEvent(t *turn) error {
	cal, err := s.calendar(t)
	if err != nil {
		return err
	}

	category := preferences.NormalizeCategory(t.env.SlotValue("eventType"))
	window, _ := s.preferences(t).Lookup(category)
	loc := s.location(t)

	date := t.env.SlotValue("date")
	if date == "" {
		date = s.now().In(loc).Format(timeutil.DateLayout)
	}

	timeMin, err := timeutil.OnDate(date, window.Start, loc)
	if err != nil {
		return fmt.Errorf("invalid schedule window start: %w", err)
	}
	timeMax, err := timeutil.OnDate(date, window.End, loc)
	if err != nil {
		return fmt.Errorf("invalid schedule window end: %w", err)
	}

	events, err := cal.ListEvents(t.ctx, timeMin, timeMax)
	if err != nil {
		t.logger.Warn("Failed to list events for scheduling", logging.Err(err))
		events = nil
	}
	// All-day events would read as midnight to midnight and reset the cursor.
	events = calendar.TimedEvents(events)

	busy := make([]availability.Busy, 0, len(events))
	for _, e := range events {
		busy = append(busy, availability.Busy{Start: e.Start, End: e.End})
	}

	res, err := availability.Compute(window, busy)
	if err != nil {
		return err
	}

	t.state.Pending = PendingSchedule(date, res.ByPeriod)
	t.say(speech.Availability(res, len(events), window), speech.TimePrompt)
	return nil
}

func (s *Skill) handleAddEvent(t *turn) error {
	schedule := t.state.Pending.Schedule
	if t.state.Pending.Kind != KindScheduleEvent || schedule == nil {
		return ErrNoPendingSchedule
	}

	cal, err := s.calendar(t)
	if err != nil {
		return err
	}
	loc := s.location(t)

	start, err := timeutil.OnDate(schedule.Date, t.env.SlotValue("time"), loc)
	if err != nil {
		return fmt.Errorf("invalid event start: %w", err)
	}
	duration, err := timeutil.ParseISODuration(t.env.SlotValue("duration"))
	if err != nil {
		return err
	}
	end := start.Add(duration)

	name := t.env.SlotValue("eventName")
	created, err := cal.CreateEvent(t.ctx, calendar.EventInput{
		Summary:  name,
		Start:    start,
		End:      end,
		TimeZone: loc.String(),
	})
	if err != nil {
		return err
	}

	t.state.Pending = PendingAddedEvent(created.ID)
	t.say(speech.EventAdded(name, start, end), "")
	t.resp.WithShouldEndSession(false)
	return nil
}

func (s *Skill) handleTimeOfDay(t *turn) error {
	schedule := t.state.Pending.Schedule
	if t.state.Pending.Kind != KindScheduleEvent || schedule == nil {
		return ErrNoPendingSchedule
	}

	period, err := timeutil.ParsePeriod(t.env.SlotValue("timeOfDay"))
	if err != nil {
		return err
	}

	t.say(speech.PeriodAvailability(schedule.ByPeriod[period]), speech.TimePrompt)
	return nil
}

func (s *Skill) handleGetPreferences(t *turn) error {
	t.say(speech.Preferences(s.preferences(t)), "")
	return nil
}

func (s *Skill) handleRecurringEvent(t *turn) error {
	cal, err := s.calendar(t)
	if err != nil {
		return err
	}
	loc := s.location(t)

	start, err := time.ParseInLocation(timeutil.DateLayout, t.env.SlotValue("startDate"), loc)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	until, err := time.ParseInLocation(timeutil.DateLayout, t.env.SlotValue("endDate"), loc)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}
	rule, err := calendar.WeeklyRule(t.env.SlotValue("frequency"), until)
	if err != nil {
		return err
	}

	if _, err := cal.CreateEvent(t.ctx, calendar.EventInput{
		Summary:    t.env.SlotValue("eventName"),
		Start:      start,
		End:        start,
		TimeZone:   loc.String(),
		Recurrence: []string{rule},
	}); err != nil {
		return err
	}

	t.say(RecurringSpeech, "")
	return nil
}

func (s *Skill) handleYes(t *turn) error {
	text := ""
	if t.state.Pending.Kind == KindGetEvents {
		text = speech.Events(t.state.Pending.Events)
		t.state.Clear()
	}
	t.say(text, text)
	return nil
}

func (s *Skill) handleNo(t *turn) error {
	text := OkaySpeech
	switch t.state.Pending.Kind {
	case KindSetPreferences:
		updated := preferences.Without(s.preferences(t), t.state.Pending.Category)
		if err := s.savePreferences(t, updated); err != nil {
			return err
		}
		text = UndoSpeech
	case KindAddEvent:
		cal, err := s.calendar(t)
		if err != nil {
			return err
		}
		if err := cal.DeleteEvent(t.ctx, t.state.Pending.EventID); err != nil {
			return err
		}
		text = UndoSpeech
	}
	t.state.Clear()
	t.say(text, text)
	return nil
}

func (s *Skill) handleRepeat(t *turn) error {
	t.say(t.state.LastSpeech, t.state.LastSpeech)
	return nil
}

func (s *Skill) handleHelp(t *turn) error {
	t.say(HelpSpeech, HelpSpeech)
	return nil
}

func (s *Skill) handleCancelAndStop(t *turn) error {
	t.state.Clear()
	t.say(GoodbyeSpeech, "")
	t.resp.WithShouldEndSession(true)
	return nil
}

func (s *Skill) handleFallback(t *turn) error {
	t.say(FallbackSpeech, FallbackSpeech)
	return nil
}

// handleReflector answers intents that have no handler by naming them.
func (s *Skill) handleReflector(t *turn, name string) error {
	t.say("You just triggered "+name, "")
	return nil
}
