package skill

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/voicecal/internal/availability"
	"github.com/teemow/voicecal/internal/timeutil"
)

func TestDecodeState_Empty(t *testing.T) {
	for _, raw := range []string{"", "null"} {
		st, err := DecodeState(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Equal(t, State{}, st)
	}
}

func TestState_EncodesPeriodsByName(t *testing.T) {
	byPeriod := map[timeutil.Period][]availability.Interval{
		timeutil.Afternoon: {{Start: "13:00", End: "15:00", Period: timeutil.Afternoon}},
	}
	st := State{LastSpeech: "hi", Pending: PendingSchedule("2026-10-20", byPeriod)}

	raw, err := st.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"afternoon":[{"start":"13:00","end":"15:00","period":"afternoon"}]`)

	decoded, err := DecodeState(raw)
	require.NoError(t, err)
	assert.Equal(t, st, decoded)
}

func TestDecodeState_RejectsMismatchedPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown kind", `{"pending":{"kind":"teleport"}}`},
		{"preference without category", `{"pending":{"kind":"setPreferences"}}`},
		{"schedule without date", `{"pending":{"kind":"scheduleEvent","schedule":{}}}`},
		{"schedule missing", `{"pending":{"kind":"scheduleEvent"}}`},
		{"added event without id", `{"pending":{"kind":"addEvent"}}`},
		{"not json", `{"pending":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeState(json.RawMessage(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestState_Clear(t *testing.T) {
	st := State{LastSpeech: "Okay", Pending: PendingAddedEvent("evt-1")}
	st.Clear()

	assert.Equal(t, KindNone, st.Pending.Kind)
	assert.Empty(t, st.Pending.EventID)
	assert.Equal(t, "Okay", st.LastSpeech)
}
