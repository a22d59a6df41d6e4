package bot

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/aura-interview/backend/internal/session"
	"github.com/aura-interview/backend/pkg/queue"
)

// Manager creates sessions and wires a bot to each. It is the single
// entry point for both the management API and webhook auto-join.
type Manager struct {
	registry *session.Registry
	cfg      Config
	factory  ViewportFactory
	speech   SpeechSynthesizer
	media    MediaStreamClient
	events   EventSink
	outcomes *queue.Queue // optional; nil disables history jobs
	logger   *zap.Logger
}

// NewManager creates a session manager. speech, media, events and
// outcomes may be nil.
func NewManager(registry *session.Registry, cfg Config, factory ViewportFactory, speech SpeechSynthesizer, media MediaStreamClient, events EventSink, outcomes *queue.Queue, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		registry: registry,
		cfg:      cfg,
		factory:  factory,
		speech:   speech,
		media:    media,
		events:   events,
		outcomes: outcomes,
		logger:   logger,
	}
}

// StartSession registers a session for meetingID and starts the join
// flow in the background. Returns session.ErrAlreadyExists while a
// session for the meeting is active; the caller sees join failures via
// subsequent status queries, not here.
func (m *Manager) StartSession(meetingID, topic string) (*session.Session, error) {
	if meetingID == "" {
		return nil, errors.New("meeting id required")
	}
	sess, err := m.registry.Create(meetingID, topic)
	if err != nil {
		return nil, err
	}
	b := newBot(sess, m.cfg, m.factory, m.speech, m.media, m.events, m.logger)
	b.onTerminal = m.sessionEnded
	sess.AttachRunner(b)

	go func() {
		if err := b.Start(); err != nil {
			m.logger.Warn("bot start failed", zap.Error(err), zap.String("meeting_id", meetingID))
		}
	}()
	return sess, nil
}

// sessionEnded runs exactly once per session, on its terminal
// transition: registry slot freed, dashboard notified, outcome queued.
func (m *Manager) sessionEnded(sess *session.Session) {
	summary := sess.Summary()
	m.registry.Remove(sess.MeetingID)
	if m.events != nil {
		m.events.SessionEvent(sess.MeetingID, "session_removed", summary)
	}
	if m.outcomes == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := m.outcomes.EnqueueSessionOutcome(ctx, queue.SessionOutcomePayload{
		MeetingID:      summary.MeetingID,
		Topic:          summary.Topic,
		FinalState:     string(summary.State),
		QuestionsAsked: summary.QuestionIndex,
		Participants:   summary.Participants,
		FailureReason:  summary.FailureReason,
		StartedAt:      summary.CreatedAt,
		EndedAt:        time.Now(),
	})
	if err != nil {
		m.logger.Warn("enqueue session outcome failed", zap.Error(err), zap.String("meeting_id", sess.MeetingID))
	}
}
