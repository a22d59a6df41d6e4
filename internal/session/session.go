// Package session holds the per-meeting orchestration record and the
// process-wide registry of active sessions.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the bot lifecycle state of a session.
type State string

const (
	StateIdle         State = "idle"
	StateJoining      State = "joining"
	StateInMeeting    State = "in_meeting"
	StateInterviewing State = "interviewing"
	StateEnding       State = "ending"
	StateLeft         State = "left"
	StateFailed       State = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateLeft || s == StateFailed
}

// ErrInvalidTransition is returned when a lifecycle call is not legal
// from the session's current state. The state is left unchanged.
var ErrInvalidTransition = errors.New("invalid transition")

// Runner drives a session's bot. Defined here so packages holding a
// Session can operate it without importing the bot implementation.
type Runner interface {
	StartInterview() error
	Stop()
}

// Participant is one participant record as observed from the platform
// event stream. The list is append-only and not deduplicated.
type Participant struct {
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	JoinedAt time.Time `json:"joined_at"`
}

// Summary is the read-only view of a session returned by the API.
type Summary struct {
	MeetingID     string    `json:"meeting_id"`
	Topic         string    `json:"topic"`
	State         State     `json:"state"`
	QuestionIndex int       `json:"question_index"`
	Participants  int       `json:"participants"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Session is the orchestration record for one meeting's bot engagement.
// All fields behind the mutex; reads go through accessors.
type Session struct {
	MeetingID string
	Topic     string
	CreatedAt time.Time

	mu            sync.Mutex
	state         State
	questionIndex int
	participants  []Participant
	failureReason string
	runner        Runner
}

// New creates a session in the Idle state. Normally called via Registry.Create.
func New(meetingID, topic string) *Session {
	return &Session{
		MeetingID: meetingID,
		Topic:     topic,
		CreatedAt: time.Now(),
		state:     StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transition moves the session to next iff the current state is one of
// allowed; otherwise returns ErrInvalidTransition and changes nothing.
func (s *Session) Transition(next State, allowed ...State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range allowed {
		if s.state == a {
			s.state = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, next)
}

// QuestionIndex returns the next unanswered question offset.
func (s *Session) QuestionIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questionIndex
}

// AdvanceQuestion increments the question index and returns the offset
// of the question that was just delivered.
func (s *Session) AdvanceQuestion() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.questionIndex
	s.questionIndex++
	return i
}

// AddParticipant appends a participant record.
func (s *Session) AddParticipant(p Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants = append(s.participants, p)
}

// ParticipantCount returns the number of observed participant records.
func (s *Session) ParticipantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participants)
}

// RecordFailure stores the reason a session failed (or a release error).
// The first recorded reason wins.
func (s *Session) RecordFailure(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failureReason == "" {
		s.failureReason = reason
	}
}

// FailureReason returns the recorded failure reason, if any.
func (s *Session) FailureReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failureReason
}

// AttachRunner binds the bot driving this session.
func (s *Session) AttachRunner(r Runner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runner = r
}

// Runner returns the attached bot, or nil if none was attached yet.
func (s *Session) Runner() Runner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner
}

// Summary returns a consistent snapshot of the session.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		MeetingID:     s.MeetingID,
		Topic:         s.Topic,
		State:         s.state,
		QuestionIndex: s.questionIndex,
		Participants:  len(s.participants),
		FailureReason: s.failureReason,
		CreatedAt:     s.CreatedAt,
	}
}
