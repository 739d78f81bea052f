package platform

import (
	"encoding/json"
	"time"
)

// Request types sent by the voice platform.
const (
	RequestTypeLaunch       = "LaunchRequest"
	RequestTypeIntent       = "IntentRequest"
	RequestTypeSessionEnded = "SessionEndedRequest"
)

// EnvelopeVersion is the envelope version written in every response.
const EnvelopeVersion = "1.0"

// RequestEnvelope is the body of a webhook call.
type RequestEnvelope struct {
	Version string  `json:"version"`
	Session Session `json:"session"`
	Context Context `json:"context"`
	Request Request `json:"request"`
}

// Session carries the conversation state between turns.
type Session struct {
	New        bool            `json:"new"`
	SessionID  string          `json:"sessionId"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
	User       User            `json:"user"`
}

// User identifies the platform account and, once linked, carries the
// calendar access token.
type User struct {
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken,omitempty"`
}

// Context describes the device and platform the request came from.
type Context struct {
	System System `json:"System"`
}

// System holds the platform API endpoint and the token to call it with.
type System struct {
	APIEndpoint    string `json:"apiEndpoint"`
	APIAccessToken string `json:"apiAccessToken"`
	Device         Device `json:"device"`
	User           User   `json:"user"`
}

// Device identifies the device the user spoke to.
type Device struct {
	DeviceID string `json:"deviceId"`
}

// Request is the typed request within the envelope.
type Request struct {
	Type      string    `json:"type"`
	RequestID string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
	Locale    string    `json:"locale,omitempty"`
	Intent    Intent    `json:"intent,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Error     *Error    `json:"error,omitempty"`
}

// Intent is a recognized intent with its slot values.
type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

// Slot is one parsed slot value. Value is empty when the user did not fill it.
type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Error is reported with a SessionEndedRequest ended by an error.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// UserID returns the platform user id.
func (e *RequestEnvelope) UserID() string {
	if e.Context.System.User.UserID != "" {
		return e.Context.System.User.UserID
	}
	return e.Session.User.UserID
}

// AccessToken returns the linked account's access token, or "" when the user
// has not linked an account.
func (e *RequestEnvelope) AccessToken() string {
	if e.Context.System.User.AccessToken != "" {
		return e.Context.System.User.AccessToken
	}
	return e.Session.User.AccessToken
}

// IntentName returns the intent name for intent requests and "" otherwise.
func (e *RequestEnvelope) IntentName() string {
	if e.Request.Type != RequestTypeIntent {
		return ""
	}
	return e.Request.Intent.Name
}

// SlotValue returns the value of the named slot, or "" if it is missing.
func (e *RequestEnvelope) SlotValue(name string) string {
	return e.Request.Intent.Slots[name].Value
}
