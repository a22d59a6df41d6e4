package session

import (
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrAlreadyExists is returned by Create when a session for the
	// meeting id is already active.
	ErrAlreadyExists = errors.New("session already exists")
	// ErrNotFound is returned by Get for an unknown meeting id.
	ErrNotFound = errors.New("session not found")
)

// Registry is the process-wide table of active sessions, keyed by
// meeting id. All operations are safe for concurrent use; Create is
// atomic so two racing creates for the same id yield exactly one winner.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *zap.Logger
}

// NewRegistry creates an empty session registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Create inserts a new Idle session for meetingID. Returns
// ErrAlreadyExists if one is active, leaving the existing session untouched.
func (r *Registry) Create(meetingID, topic string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[meetingID]; ok {
		return nil, ErrAlreadyExists
	}
	s := New(meetingID, topic)
	r.sessions[meetingID] = s
	r.logger.Info("session created", zap.String("meeting_id", meetingID), zap.String("topic", topic))
	return s, nil
}

// Get returns the active session for meetingID or ErrNotFound.
func (r *Registry) Get(meetingID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[meetingID]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Remove deletes the session for meetingID. Idempotent; removing an
// unknown id is a no-op.
func (r *Registry) Remove(meetingID string) {
	r.mu.Lock()
	_, ok := r.sessions[meetingID]
	delete(r.sessions, meetingID)
	r.mu.Unlock()
	if ok {
		r.logger.Info("session removed", zap.String("meeting_id", meetingID))
	}
}

// List returns snapshot summaries of all active sessions, ordered by
// creation time (oldest first).
func (r *Registry) List() []Summary {
	r.mu.RLock()
	out := make([]Summary, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Summary())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
