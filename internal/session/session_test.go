package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	s := New("42", "Interview")
	require.Equal(t, StateIdle, s.State())

	require.NoError(t, s.Transition(StateJoining, StateIdle))
	assert.Equal(t, StateJoining, s.State())

	err := s.Transition(StateInterviewing, StateInMeeting)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StateJoining, s.State(), "rejected transition must not change state")
}

func TestAdvanceQuestion(t *testing.T) {
	s := New("42", "Interview")
	assert.Equal(t, 0, s.AdvanceQuestion())
	assert.Equal(t, 1, s.AdvanceQuestion())
	assert.Equal(t, 2, s.QuestionIndex())
}

func TestRecordFailureFirstWins(t *testing.T) {
	s := New("42", "Interview")
	s.RecordFailure("join timed out")
	s.RecordFailure("release failed")
	assert.Equal(t, "join timed out", s.FailureReason())
}

func TestSummarySnapshot(t *testing.T) {
	s := New("42", "Interview")
	s.AddParticipant(Participant{UserID: "u1", UserName: "Ada"})
	s.AddParticipant(Participant{UserID: "u1", UserName: "Ada"}) // not deduplicated

	sum := s.Summary()
	assert.Equal(t, "42", sum.MeetingID)
	assert.Equal(t, StateIdle, sum.State)
	assert.Equal(t, 2, sum.Participants)
}

func TestStateTerminal(t *testing.T) {
	assert.True(t, StateLeft.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateInterviewing.Terminal())
	assert.False(t, StateIdle.Terminal())
}
