package google

import (
	calendar "google.golang.org/api/calendar/v3"
)

// CalendarScopes are the OAuth scopes the skill needs on a linked account.
// Account linking on the voice platform must request the same scopes.
var CalendarScopes = []string{
	calendar.CalendarScope,
}
