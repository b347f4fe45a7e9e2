package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from    State
		event   Event
		want    State
		wantErr bool
	}{
		{StateSilence, EventVoice, StateSpeech, false},
		{StateSilence, EventAbort, StateSilence, false},
		{StateSilence, EventPause, StateSilence, true},
		{StateSilence, EventCap, StateSilence, true},
		{StateSpeech, EventVoice, StateSpeech, false},
		{StateSpeech, EventPause, StateSilence, false},
		{StateSpeech, EventCap, StateSilence, false},
		{StateSpeech, EventAbort, StateSilence, false},
	}

	for _, tc := range cases {
		got, err := Transition(tc.from, tc.event)
		if tc.wantErr {
			require.Error(t, err, "%s --(%s)", tc.from, tc.event)
			continue
		}
		require.NoError(t, err, "%s --(%s)", tc.from, tc.event)
		require.Equal(t, tc.want, got, "%s --(%s)", tc.from, tc.event)
	}
}

func TestTransitionUnknownState(t *testing.T) {
	_, err := Transition(State("limbo"), EventVoice)
	require.Error(t, err)
}
