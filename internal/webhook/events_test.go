package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventMeetingIDForms(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "numeric id",
			body: `{"event":"meeting.started","payload":{"object":{"id":84512345678,"topic":"Interview"}}}`,
			want: "84512345678",
		},
		{
			name: "string id",
			body: `{"event":"meeting.started","payload":{"object":{"id":"84512345678","topic":"Interview"}}}`,
			want: "84512345678",
		},
		{
			name: "missing id",
			body: `{"event":"meeting.started","payload":{"object":{"topic":"Interview"}}}`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseEvent([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, EventMeetingStarted, ev.Type)
			assert.Equal(t, tt.want, ev.MeetingID)
		})
	}
}

func TestParseEventMalformedBody(t *testing.T) {
	_, err := ParseEvent([]byte(`{"event":`))
	assert.Error(t, err)
}
