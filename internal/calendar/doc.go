// Package calendar provides a client for the Google Calendar API, authorized
// with the access token the voice platform forwards for a linked account.
//
// The client covers what the skill needs: listing the events in a time range,
// creating single and weekly recurring events, and deleting an event to undo
// a creation. Every call is traced and recorded in the calendar API metrics.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, accessToken)
//	if err != nil {
//	    return err
//	}
//
//	// Events in the next 24 hours
//	now := time.Now()
//	events, err := client.ListEvents(ctx, now, now.Add(24*time.Hour))
package calendar
