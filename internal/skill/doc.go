// Package skill routes voice platform requests to intent handlers.
//
// Each request is handled by exactly one handler. A handler reads the typed
// session State carried in the request, makes at most a few sequential calls
// to the calendar provider and the preference store, renders one spoken line
// and writes the updated State back into the response.
//
// Errors follow a fixed policy:
//
//   - a request that needs the calendar but carries no linked-account token
//     gets a link-account card and ends the session
//   - failed reads (listing events, loading preferences, the device time
//     zone) are logged and the turn continues with degraded data
//   - failed writes (creating or deleting events, saving preferences) and any
//     other handler error produce a fixed apology with a reprompt
//
// No outbound call is retried.
package skill
