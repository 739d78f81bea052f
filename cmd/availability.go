package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/voicecal/internal/availability"
	"github.com/teemow/voicecal/internal/calendar"
	"github.com/teemow/voicecal/internal/google"
	"github.com/teemow/voicecal/internal/logging"
	"github.com/teemow/voicecal/internal/preferences"
	"github.com/teemow/voicecal/internal/speech"
	"github.com/teemow/voicecal/internal/timeutil"
)

// availabilityOptions holds the flags of the availability command.
type availabilityOptions struct {
	date      string
	start     string
	end       string
	tz        string
	token     string
	tokenFile string
	endpoint  string
	calendar  string
}

func newAvailabilityCmd() *cobra.Command {
	opts := availabilityOptions{}

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Print the spoken availability for a day",
		Long: `Print what the skill would say about free time on a given day.

The command lists the events in the window on the user's primary Google
Calendar and speaks the gaps between them, grouped by period of day. It is
meant for operators checking what a user hears.

The access token is taken from --token, then the GOOGLE_ACCESS_TOKEN
environment variable, then the token cached by 'voicecal auth login'.

Examples:
  voicecal availability --date 2026-10-20 --tz Europe/Berlin
  voicecal availability --start 09:00 --end 17:00 --token ya29...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider, err := tokenProvider(opts)
			if err != nil {
				return err
			}
			token, err := provider.AccessToken(cmd.Context())
			if err != nil {
				return err
			}
			calOpts := calendarOptions(opts.endpoint, nil)
			if opts.calendar != "" {
				calOpts = append(calOpts, calendar.WithCalendarID(opts.calendar))
			}
			client, err := calendar.NewClient(cmd.Context(), token, calOpts...)
			if err != nil {
				return err
			}
			return runAvailability(cmd.Context(), cmd.OutOrStdout(), client, opts, time.Now())
		},
	}

	cmd.Flags().StringVar(&opts.date, "date", "", "Day to check as YYYY-MM-DD (default: today in --tz)")
	cmd.Flags().StringVar(&opts.start, "start", preferences.DefaultWindow.Start, "Start of the window as HH:MM")
	cmd.Flags().StringVar(&opts.end, "end", preferences.DefaultWindow.End, "End of the window as HH:MM")
	cmd.Flags().StringVar(&opts.tz, "tz", "UTC", "IANA time zone of the window")
	cmd.Flags().StringVar(&opts.token, "token", "", "Google OAuth access token")
	cmd.Flags().StringVar(&opts.tokenFile, "token-file", "", "Cached token from 'voicecal auth login' (default: user cache directory)")
	cmd.Flags().StringVar(&opts.endpoint, "calendar-endpoint", "", "Override the Google Calendar API endpoint")
	cmd.Flags().StringVar(&opts.calendar, "calendar", "", "Calendar to read instead of the primary one")

	return cmd
}

// tokenProvider picks the token source for operator commands.
func tokenProvider(opts availabilityOptions) (google.TokenProvider, error) {
	if opts.token != "" {
		return google.StaticToken(opts.token), nil
	}
	if env := os.Getenv("GOOGLE_ACCESS_TOKEN"); env != "" {
		return google.StaticToken(env), nil
	}

	path, err := resolveTokenFile(opts.tokenFile)
	if err != nil {
		return nil, err
	}
	// The client is only needed to refresh an expired token; the provider
	// reports ErrNoClientConfig if that turns out to be necessary.
	client, err := google.ClientConfigFromEnv()
	if err != nil {
		slog.Debug("Cached token cannot be refreshed", logging.Err(err))
	}
	return google.NewFileTokenProvider(client, path), nil
}

// eventLister is the part of the calendar client the command needs.
type eventLister interface {
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]calendar.EventSummary, error)
}

func runAvailability(ctx context.Context, w io.Writer, cal eventLister, opts availabilityOptions, now time.Time) error {
	if cal == nil {
		return errors.New("no calendar client")
	}

	loc, err := timeutil.LoadLocation(opts.tz)
	if err != nil {
		return err
	}

	date := opts.date
	if date == "" {
		date = now.In(loc).Format(timeutil.DateLayout)
	}
	window := preferences.Window{Start: opts.start, End: opts.end}

	timeMin, err := timeutil.OnDate(date, window.Start, loc)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	timeMax, err := timeutil.OnDate(date, window.End, loc)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}
	if timeMax.Before(timeMin) {
		return fmt.Errorf("--end %s is before --start %s", window.End, window.Start)
	}

	events, err := cal.ListEvents(ctx, timeMin, timeMax)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	events = calendar.TimedEvents(events)

	busy := make([]availability.Busy, 0, len(events))
	for _, e := range events {
		busy = append(busy, availability.Busy{Start: e.Start, End: e.End})
	}

	res, err := availability.Compute(window, busy)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, speech.Availability(res, len(events), window))
	return err
}
