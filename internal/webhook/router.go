package webhook

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/aura-interview/backend/internal/session"
)

// SessionStarter creates a session and begins the bot join flow.
// Implemented by the bot manager.
type SessionStarter interface {
	StartSession(meetingID, topic string) (*session.Session, error)
}

// Router classifies verified webhook events and applies them to the
// session registry. Challenge events never reach the router; the
// handler answers them directly.
type Router struct {
	registry *session.Registry
	starter  SessionStarter
	autoJoin bool
	logger   *zap.Logger
}

// NewRouter creates an event router. When autoJoin is false,
// meeting.started events are logged and ignored (manual-join mode).
func NewRouter(registry *session.Registry, starter SessionStarter, autoJoin bool, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{registry: registry, starter: starter, autoJoin: autoJoin, logger: logger}
}

// Route dispatches one event. It never returns an error to the caller:
// webhook delivery is acknowledged regardless, since the platform
// retries non-2xx responses and redelivery must stay harmless.
func (r *Router) Route(evt *Event) {
	switch evt.Type {
	case EventMeetingStarted:
		r.meetingStarted(evt)
	case EventMeetingEnded:
		r.meetingEnded(evt)
	case EventParticipantJoined:
		r.participantJoined(evt)
	default:
		r.logger.Info("ignoring unhandled webhook event", zap.String("event", evt.Type))
	}
}

func (r *Router) meetingStarted(evt *Event) {
	if !r.autoJoin {
		r.logger.Info("meeting started (auto-join disabled)",
			zap.String("meeting_id", evt.MeetingID), zap.String("topic", evt.Topic))
		return
	}
	if evt.MeetingID == "" {
		r.logger.Warn("meeting.started without meeting id")
		return
	}
	if _, err := r.starter.StartSession(evt.MeetingID, evt.Topic); err != nil {
		// Redelivered webhook for a live session; nothing to do.
		if errors.Is(err, session.ErrAlreadyExists) {
			r.logger.Info("session already active", zap.String("meeting_id", evt.MeetingID))
			return
		}
		r.logger.Error("auto-join failed", zap.Error(err), zap.String("meeting_id", evt.MeetingID))
	}
}

func (r *Router) meetingEnded(evt *Event) {
	sess, err := r.registry.Get(evt.MeetingID)
	if err != nil {
		r.logger.Info("meeting ended for unknown session", zap.String("meeting_id", evt.MeetingID))
		return
	}
	r.logger.Info("meeting ended, stopping bot", zap.String("meeting_id", evt.MeetingID))
	if runner := sess.Runner(); runner != nil {
		runner.Stop()
	}
	// Stop removes the session on its terminal transition; Remove here
	// covers a session that never got a runner attached.
	r.registry.Remove(evt.MeetingID)
}

func (r *Router) participantJoined(evt *Event) {
	sess, err := r.registry.Get(evt.MeetingID)
	if err != nil {
		return
	}
	sess.AddParticipant(session.Participant{
		UserID:   evt.ParticipantID,
		UserName: evt.ParticipantName,
		JoinedAt: time.Now(),
	})
	r.logger.Info("participant joined",
		zap.String("meeting_id", evt.MeetingID), zap.String("user_name", evt.ParticipantName))
}
