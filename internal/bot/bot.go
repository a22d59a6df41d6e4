package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aura-interview/backend/internal/session"
)

// ErrAutomation marks a fatal automation failure; the session is moved
// to Failed and its resources released.
var ErrAutomation = errors.New("automation failure")

// EventSink receives session lifecycle notifications, e.g. for the
// operator dashboard. Optional; nil disables notifications.
type EventSink interface {
	SessionEvent(meetingID, event string, payload interface{})
}

// Config holds per-bot settings shared by all sessions.
type Config struct {
	DisplayName      string
	JoinTimeout      time.Duration
	ActionTimeout    time.Duration
	Questions        []string
	QuestionInterval time.Duration
}

// Bot is the lifecycle state machine for one session. All transitions
// are serialized on the bot's mutex: an in-flight transition is the
// atomic unit, and Stop applied concurrently waits for it to settle.
type Bot struct {
	sess    *session.Session
	cfg     Config
	factory ViewportFactory
	speech  SpeechSynthesizer
	media   MediaStreamClient
	events  EventSink
	logger  *zap.Logger

	mu           sync.Mutex
	viewport     ViewportController
	stream       MediaStream
	sched        *scheduler
	releaseOnce  sync.Once
	terminalOnce sync.Once
	onTerminal   func(*session.Session)
}

func newBot(sess *session.Session, cfg Config, factory ViewportFactory, speech SpeechSynthesizer, media MediaStreamClient, events EventSink, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		sess:    sess,
		cfg:     cfg,
		factory: factory,
		speech:  speech,
		media:   media,
		events:  events,
		logger:  logger.With(zap.String("meeting_id", sess.MeetingID)),
	}
}

// Start runs the join flow: Idle -> Joining -> InMeeting. It acquires a
// viewport scoped to this session; any fatal join error or an exhausted
// join wait moves the session to Failed and releases the viewport.
// Re-attempting a failed join requires a fresh session: the registry's
// uniqueness invariant blocks a second attempt until cleanup completed.
func (b *Bot) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.sess.Transition(session.StateJoining, session.StateIdle); err != nil {
		return err
	}
	b.notify("state_changed")
	b.logger.Info("joining meeting", zap.String("topic", b.sess.Topic))

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.JoinTimeout)
	defer cancel()

	vp, err := b.factory.Acquire(ctx, b.sess.MeetingID)
	if err != nil {
		return b.failLocked("acquire viewport", err)
	}
	b.viewport = vp

	if err := vp.EnterDisplayName(ctx, b.cfg.DisplayName); err != nil {
		return b.failLocked("enter display name", err)
	}
	if err := vp.ConfirmJoined(ctx); err != nil {
		return b.failLocked("confirm joined", err)
	}

	if err := b.sess.Transition(session.StateInMeeting, session.StateJoining); err != nil {
		return b.failLocked("enter meeting", err)
	}
	b.notify("state_changed")
	b.logger.Info("joined meeting")

	if b.media != nil {
		stream, err := b.media.Join(ctx, b.sess.MeetingID)
		if err != nil {
			// The interview works without live audio; keep going.
			b.logger.Warn("media stream join failed", zap.Error(err))
		} else {
			b.stream = stream
		}
	}
	return nil
}

// StartInterview begins the question scheduler. Only legal from
// InMeeting; from any other state it returns ErrInvalidTransition and
// leaves the session untouched.
func (b *Bot) StartInterview() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.sess.Transition(session.StateInterviewing, session.StateInMeeting); err != nil {
		return err
	}
	b.notify("state_changed")
	b.logger.Info("interview started", zap.Int("questions", len(b.cfg.Questions)))

	b.sched = newScheduler(b, b.cfg.Questions, b.cfg.QuestionInterval)
	b.sched.start()
	return nil
}

// Stop requests a graceful leave from any state. Idempotent: once the
// session is terminal further calls are no-ops. A pending question
// timer is cancelled before leaving.
func (b *Bot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sess.State().Terminal() {
		return
	}
	if b.sched != nil {
		b.sched.cancel()
	}
	if err := b.sess.Transition(session.StateEnding,
		session.StateIdle, session.StateJoining, session.StateInMeeting,
		session.StateInterviewing, session.StateEnding); err != nil {
		return
	}
	b.notify("state_changed")
	b.logger.Info("stopping bot")
	b.leaveLocked()
}

// deliverNext sends the next question, or finishes the interview when
// the sequence is exhausted. Called from the scheduler; takes the bot
// mutex so deliveries never overlap transitions.
func (b *Bot) deliverNext(s *scheduler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A cancelled or superseded scheduler never delivers; likewise a
	// duplicate completion signal finds the state already advanced.
	if b.sched != s || b.sess.State() != session.StateInterviewing {
		return
	}

	idx := b.sess.QuestionIndex()
	if idx >= len(s.questions) {
		b.logger.Info("question sequence exhausted")
		if err := b.sess.Transition(session.StateEnding, session.StateInterviewing); err != nil {
			return
		}
		b.notify("state_changed")
		b.leaveLocked()
		return
	}

	q := s.questions[idx]
	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.ActionTimeout)
	defer cancel()

	if err := b.viewport.SendChatMessage(ctx, q); err != nil {
		_ = b.failLocked("send question", err)
		return
	}
	if b.speech != nil {
		if err := b.speech.Speak(ctx, q); err != nil {
			b.logger.Warn("speech synthesis failed", zap.Error(err), zap.Int("question", idx))
		}
	}
	b.sess.AdvanceQuestion()
	b.notify("question_asked")
	b.logger.Info("question delivered", zap.Int("index", idx))

	s.scheduleNext()
}

// leaveLocked runs the Ending -> Left tail: confirm departure, release
// the viewport exactly once, remove the session. A departure or release
// error is recorded on the session but never blocks removal.
func (b *Bot) leaveLocked() {
	if b.stream != nil {
		_ = b.stream.Close()
		b.stream = nil
	}
	if b.viewport != nil {
		ctx, cancel := context.WithTimeout(context.Background(), b.cfg.ActionTimeout)
		if err := b.viewport.ConfirmLeft(ctx); err != nil {
			b.sess.RecordFailure("confirm left: " + err.Error())
			b.logger.Warn("leave not confirmed", zap.Error(err))
		}
		cancel()
	}
	b.releaseLocked()
	_ = b.sess.Transition(session.StateLeft, session.StateEnding)
	b.notify("state_changed")
	b.logger.Info("left meeting")
	b.terminal()
}

// failLocked moves the session to Failed: pending timer cancelled,
// viewport released, failure recorded, session removed.
func (b *Bot) failLocked(op string, err error) error {
	ferr := fmt.Errorf("%w: %s: %v", ErrAutomation, op, err)
	if b.sess.State().Terminal() {
		return ferr
	}
	b.logger.Error("automation failure", zap.String("op", op), zap.Error(err))
	if b.sched != nil {
		b.sched.cancel()
	}
	if b.stream != nil {
		_ = b.stream.Close()
		b.stream = nil
	}
	b.sess.RecordFailure(op + ": " + err.Error())
	b.releaseLocked()
	_ = b.sess.Transition(session.StateFailed,
		session.StateIdle, session.StateJoining, session.StateInMeeting,
		session.StateInterviewing, session.StateEnding)
	b.notify("state_changed")
	b.terminal()
	return ferr
}

// releaseLocked frees the viewport. Runs at most once per session; a
// release error is recorded but the resource slot is reclaimed regardless.
func (b *Bot) releaseLocked() {
	b.releaseOnce.Do(func() {
		if b.viewport == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), b.cfg.ActionTimeout)
		defer cancel()
		if err := b.viewport.Release(ctx); err != nil {
			b.sess.RecordFailure("release viewport: " + err.Error())
			b.logger.Error("viewport release failed", zap.Error(err))
		}
		b.viewport = nil
	})
}

func (b *Bot) terminal() {
	b.terminalOnce.Do(func() {
		if b.onTerminal != nil {
			b.onTerminal(b.sess)
		}
	})
}

func (b *Bot) notify(event string) {
	if b.events == nil {
		return
	}
	b.events.SessionEvent(b.sess.MeetingID, event, b.sess.Summary())
}
