package bot

import (
	"sync"
	"time"
)

// scheduler delivers the fixed question sequence at the configured
// interval. Each delivery schedules the next via a one-shot timer; the
// step after the last question signals completion instead. Owned by
// exactly one bot and cancellable at any point: a cancelled scheduler
// never fires its queued delivery and never advances the question index.
type scheduler struct {
	bot       *Bot
	questions []string
	interval  time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	cancelled bool
}

func newScheduler(b *Bot, questions []string, interval time.Duration) *scheduler {
	return &scheduler{bot: b, questions: questions, interval: interval}
}

// start delivers the first question immediately (off the caller's
// goroutine; the caller holds the bot mutex).
func (s *scheduler) start() {
	go s.fire()
}

func (s *scheduler) fire() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.bot.deliverNext(s)
}

// scheduleNext arms the timer for the next delivery. No-op once cancelled.
func (s *scheduler) scheduleNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	s.timer = time.AfterFunc(s.interval, s.fire)
}

// cancel stops any pending timer. Safe to call repeatedly and to race
// with a firing timer: a fired-but-not-yet-delivered step re-checks the
// session state under the bot mutex and backs off.
func (s *scheduler) cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
