package preferences

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/teemow/voicecal/internal/timeutil"
)

// Window is a clock-of-day range in "HH:MM" form. Start equals End for a
// single point in time.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DefaultWindow is the full-day bound searched when no preference applies.
var DefaultWindow = Window{Start: "00:00", End: "23:59"}

// IsPoint reports whether the window is a single point in time.
func (w Window) IsPoint() bool {
	return w.Start == w.End
}

// Map holds preferred windows keyed by normalized event category.
type Map map[string]Window

// Categories returns the categories in sorted order.
func (m Map) Categories() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the preferred window for a category, or DefaultWindow.
func (m Map) Lookup(category string) (Window, bool) {
	if w, ok := m[category]; ok {
		return w, true
	}
	return DefaultWindow, false
}

// Clone returns a shallow copy of the map. A nil map clones to an empty map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// With returns a copy of old with category set to w.
func With(old Map, category string, w Window) Map {
	out := old.Clone()
	out[category] = w
	return out
}

// Without returns a copy of old with category removed.
func Without(old Map, category string) Map {
	out := old.Clone()
	delete(out, category)
	return out
}

// NormalizeCategory strips a single trailing " event" or " events" suffix.
// Matching is exact and case-sensitive.
func NormalizeCategory(category string) string {
	if s, ok := strings.CutSuffix(category, " event"); ok {
		return s
	}
	if s, ok := strings.CutSuffix(category, " events"); ok {
		return s
	}
	return category
}

// coded is a canonical window for a coded time-of-day token.
type coded struct {
	window Window
	phrase string
}

var codedWindows = map[string]coded{
	"MO": {Window{Start: "05:00", End: "11:00"}, "in the morning"},
	"AF": {Window{Start: "12:00", End: "16:00"}, "in the afternoon"},
	"EV": {Window{Start: "17:00", End: "20:00"}, "in the evening"},
	"NI": {Window{Start: "21:00", End: "24:00"}, "at night"},
}

// Resolve turns the time slot values of a set-preference request into a
// window and the phrase used to confirm it, e.g. "in the morning" or
// "from 09:00 am to 11:00 am".
func Resolve(token, end string) (Window, string) {
	if c, ok := codedWindows[token]; ok {
		return c.window, c.phrase
	}
	if end != "" {
		return Window{Start: token, End: end},
			fmt.Sprintf("from %s to %s", timeutil.FormatClock(token), timeutil.FormatClock(end))
	}
	return Window{Start: token, End: token}, "at " + token
}

// Store persists preference maps keyed by user identity.
type Store interface {
	// Load returns the user's preferences; unknown users get an empty map.
	Load(ctx context.Context, userID string) (Map, error)

	// Save replaces the user's preferences.
	Save(ctx context.Context, userID string, prefs Map) error

	// Close releases any resources held by the store.
	Close() error
}
