package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/voicecal/internal/calendar"
	"github.com/teemow/voicecal/internal/google"
)

type fakeLister struct {
	events  []calendar.EventSummary
	err     error
	timeMin time.Time
	timeMax time.Time
}

func (f *fakeLister) ListEvents(_ context.Context, timeMin, timeMax time.Time) ([]calendar.EventSummary, error) {
	f.timeMin, f.timeMax = timeMin, timeMax
	return f.events, f.err
}

func TestRunAvailability(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return time.Date(2026, 10, 19, h, m, 0, 0, time.UTC) }

	t.Run("free all day", func(t *testing.T) {
		lister := &fakeLister{}
		var out bytes.Buffer
		opts := availabilityOptions{start: "00:00", end: "23:59", tz: "UTC"}

		require.NoError(t, runAvailability(context.Background(), &out, lister, opts, now))
		assert.Contains(t, out.String(), "You are available for the whole day.")
		assert.Equal(t, at(0, 0), lister.timeMin)
		assert.Equal(t, at(23, 59), lister.timeMax)
	})

	t.Run("gaps between events", func(t *testing.T) {
		lister := &fakeLister{events: []calendar.EventSummary{
			{Summary: "standup", Start: at(10, 0), End: at(11, 0)},
		}}
		var out bytes.Buffer
		opts := availabilityOptions{date: "2026-10-19", start: "09:00", end: "17:00", tz: "UTC"}

		require.NoError(t, runAvailability(context.Background(), &out, lister, opts, now))
		assert.Contains(t, out.String(), "Okay, you have availability")
	})

	t.Run("all-day events are skipped", func(t *testing.T) {
		lister := &fakeLister{events: []calendar.EventSummary{
			{Summary: "holiday", Start: at(0, 0), End: at(0, 0).AddDate(0, 0, 1), AllDay: true},
			{Summary: "standup", Start: at(10, 0), End: at(11, 0)},
		}}
		var out bytes.Buffer
		opts := availabilityOptions{date: "2026-10-19", start: "08:00", end: "18:00", tz: "UTC"}

		require.NoError(t, runAvailability(context.Background(), &out, lister, opts, now))
		assert.Contains(t, out.String(), "from 08:00 am to 10:00 am and from 11:00 am to 06:00 pm")
		assert.NotContains(t, out.String(), "12:00 am")
	})

	t.Run("list failure", func(t *testing.T) {
		lister := &fakeLister{err: errors.New("boom")}
		opts := availabilityOptions{start: "09:00", end: "17:00", tz: "UTC"}

		err := runAvailability(context.Background(), &bytes.Buffer{}, lister, opts, now)
		assert.ErrorContains(t, err, "failed to list events")
	})

	t.Run("end before start", func(t *testing.T) {
		opts := availabilityOptions{start: "17:00", end: "09:00", tz: "UTC"}

		err := runAvailability(context.Background(), &bytes.Buffer{}, &fakeLister{}, opts, now)
		assert.Error(t, err)
	})

	t.Run("unknown time zone", func(t *testing.T) {
		opts := availabilityOptions{start: "09:00", end: "17:00", tz: "Mars/Olympus"}

		err := runAvailability(context.Background(), &bytes.Buffer{}, &fakeLister{}, opts, now)
		assert.Error(t, err)
	})
}

func TestVersionCmd(t *testing.T) {
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "voicecal version "+version)
}

func TestTokenProvider(t *testing.T) {
	t.Setenv("GOOGLE_ACCESS_TOKEN", "")

	p, err := tokenProvider(availabilityOptions{token: "flag-token"})
	require.NoError(t, err)
	got, err := p.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "flag-token", got)

	t.Setenv("GOOGLE_ACCESS_TOKEN", "env-token")
	p, err = tokenProvider(availabilityOptions{})
	require.NoError(t, err)
	got, err = p.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-token", got)

	t.Setenv("GOOGLE_ACCESS_TOKEN", "")
	p, err = tokenProvider(availabilityOptions{tokenFile: filepath.Join(t.TempDir(), "none")})
	require.NoError(t, err)
	_, err = p.AccessToken(context.Background())
	assert.ErrorIs(t, err, google.ErrNoToken)
}

func TestTokenProvider_ExpiredCacheWithoutClient(t *testing.T) {
	t.Setenv("GOOGLE_ACCESS_TOKEN", "")
	t.Setenv(google.EnvClientID, "")
	t.Setenv(google.EnvClientSecret, "")

	path := filepath.Join(t.TempDir(), "google.token")
	require.NoError(t, google.SaveToken(path, &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	p, err := tokenProvider(availabilityOptions{tokenFile: path})
	require.NoError(t, err)
	_, err = p.AccessToken(context.Background())
	assert.ErrorIs(t, err, google.ErrNoClientConfig)
}
