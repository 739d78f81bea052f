package instrumentation

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// Intent names arrive from the voice platform and are not bounded by this
// service: any intent defined in the interaction model, including ones no
// handler knows about, can be sent. Always pass intent names through
// IntentLabel before using them as a metric label.

// IntentOther is the label used for intents outside KnownIntents.
const IntentOther = "other"

// KnownIntents lists the request types and intent names that get their own
// metric label value.
var KnownIntents = map[string]bool{
	"LaunchRequest":         true,
	"SessionEndedRequest":   true,
	"GetEventsIntent":       true,
	"SetPreferencesIntent":  true,
	"ScheduleEventIntent":   true,
	"AddEventIntent":        true,
	"TimeOfDayIntent":       true,
	"GetPreferencesIntent":  true,
	"RecurringEventIntent":  true,
	"AMAZON.YesIntent":      true,
	"AMAZON.NoIntent":       true,
	"AMAZON.RepeatIntent":   true,
	"AMAZON.HelpIntent":     true,
	"AMAZON.CancelIntent":   true,
	"AMAZON.StopIntent":     true,
	"AMAZON.FallbackIntent": true,
}

// IntentLabel returns name if it is a known intent, otherwise IntentOther.
//
// Example:
//
//	IntentLabel("GetEventsIntent")   // "GetEventsIntent"
//	IntentLabel("HelloWorldIntent")  // "other"
func IntentLabel(name string) string {
	if KnownIntents[name] {
		return name
	}
	return IntentOther
}

// Common operation types for calendar and store metrics.
// Status and backend constants are defined in config.go.
const (
	OperationList   = "list"
	OperationCreate = "create"
	OperationDelete = "delete"
	OperationLoad   = "load"
	OperationSave   = "save"
)
