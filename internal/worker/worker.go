// Package worker consumes background jobs from the Redis queue.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aura-interview/backend/internal/history"
	"github.com/aura-interview/backend/pkg/queue"
)

// OutcomeProcessor writes session outcome jobs to the history table.
type OutcomeProcessor struct {
	repo   *history.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewOutcomeProcessor creates a session outcome processor.
func NewOutcomeProcessor(repo *history.Repository, q *queue.Queue, logger *zap.Logger) *OutcomeProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutcomeProcessor{repo: repo, queue: q, logger: logger}
}

// Process executes one session outcome job.
func (p *OutcomeProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeSessionOutcome {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.SessionOutcomePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	err := p.repo.Insert(ctx, &history.Record{
		MeetingID:      payload.MeetingID,
		Topic:          payload.Topic,
		FinalState:     payload.FinalState,
		QuestionsAsked: payload.QuestionsAsked,
		Participants:   payload.Participants,
		FailureReason:  payload.FailureReason,
		StartedAt:      payload.StartedAt,
		EndedAt:        payload.EndedAt,
	})
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	p.logger.Info("session outcome recorded",
		zap.String("meeting_id", payload.MeetingID), zap.String("final_state", payload.FinalState))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *OutcomeProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outcome worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.Error(err), zap.String("job_id", job.ID))
			if rerr := p.queue.Retry(ctx, job); rerr != nil {
				p.logger.Error("retry failed", zap.Error(rerr), zap.String("job_id", job.ID))
			}
		}
	}
}
