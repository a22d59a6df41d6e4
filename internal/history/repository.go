// Package history persists session outcomes for audit and debugging.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is one terminated session.
type Record struct {
	ID             uuid.UUID `json:"id"`
	MeetingID      string    `json:"meeting_id"`
	Topic          string    `json:"topic"`
	FinalState     string    `json:"final_state"`
	QuestionsAsked int       `json:"questions_asked"`
	Participants   int       `json:"participants"`
	FailureReason  string    `json:"failure_reason,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
}

// Repository handles the session_history table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a session history repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes one outcome row.
func (r *Repository) Insert(ctx context.Context, rec *Record) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO session_history
		 (meeting_id, topic, final_state, questions_asked, participants, failure_reason, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.MeetingID, rec.Topic, rec.FinalState, rec.QuestionsAsked,
		rec.Participants, rec.FailureReason, rec.StartedAt, rec.EndedAt)
	return err
}

// ListRecent returns the most recently ended sessions, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, meeting_id, topic, final_state, questions_asked, participants, failure_reason, started_at, ended_at
		 FROM session_history ORDER BY ended_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.MeetingID, &rec.Topic, &rec.FinalState,
			&rec.QuestionsAsked, &rec.Participants, &rec.FailureReason,
			&rec.StartedAt, &rec.EndedAt); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
