// Package bot drives the join, interview and leave lifecycle of the
// meeting bot, one state machine per active session.
package bot

import (
	"context"
	"errors"
	"fmt"
)

// ViewportController is the automation surface used to act inside the
// meeting client. Every call is fallible and must be awaited with a
// bounded context; implementations may be backed by any concrete
// automation backend.
type ViewportController interface {
	EnterDisplayName(ctx context.Context, name string) error
	ConfirmJoined(ctx context.Context) error
	SendChatMessage(ctx context.Context, text string) error
	ConfirmLeft(ctx context.Context) error
	Release(ctx context.Context) error
}

// ViewportFactory acquires a controller scoped to one meeting. The
// returned controller is exclusively owned by that session until Release.
type ViewportFactory interface {
	Acquire(ctx context.Context, meetingID string) (ViewportController, error)
}

// DetectionStrategy is one way of confirming a condition in the meeting
// client. Controllers evaluate an ordered list and accept the first
// strategy that succeeds.
type DetectionStrategy struct {
	Name  string
	Probe func(ctx context.Context) error
}

// ErrNoStrategyMatched is returned by FirstDetected when every strategy
// failed before the context expired.
var ErrNoStrategyMatched = errors.New("no detection strategy matched")

// FirstDetected runs strategies in order and returns the name of the
// first that succeeds. The context bounds the whole walk.
func FirstDetected(ctx context.Context, strategies []DetectionStrategy) (string, error) {
	var lastErr error
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoStrategyMatched, err)
		}
		if err := s.Probe(ctx); err != nil {
			lastErr = fmt.Errorf("%s: %w", s.Name, err)
			continue
		}
		return s.Name, nil
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w: last: %v", ErrNoStrategyMatched, lastErr)
	}
	return "", ErrNoStrategyMatched
}
