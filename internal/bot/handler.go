package bot

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-interview/backend/internal/session"
	"github.com/aura-interview/backend/pkg/response"
)

// Handler exposes the session management API over the registry and the
// bot lifecycle. Webhook verification does not apply here.
type Handler struct {
	manager  *Manager
	registry *session.Registry
	logger   *zap.Logger
}

// NewHandler creates the management API handler.
func NewHandler(manager *Manager, registry *session.Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{manager: manager, registry: registry, logger: logger}
}

type createSessionRequest struct {
	MeetingID string `json:"meeting_id" binding:"required"`
	Topic     string `json:"topic"`
}

// CreateSession handles POST /sessions: registers the session and kicks
// off the join in the background. 202 on accept, 409 on duplicate.
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	sess, err := h.manager.StartSession(req.MeetingID, req.Topic)
	if err != nil {
		if errors.Is(err, session.ErrAlreadyExists) {
			response.Conflict(c, "session already exists for meeting "+req.MeetingID)
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Accepted(c, sess.Summary())
}

// StartInterview handles POST /sessions/:meetingId/interview/start.
// 409 unless the bot is in the meeting and idle.
func (h *Handler) StartInterview(c *gin.Context) {
	sess, err := h.registry.Get(c.Param("meetingId"))
	if err != nil {
		response.NotFound(c, "session not found")
		return
	}
	runner := sess.Runner()
	if runner == nil {
		response.Conflict(c, "session has no bot attached")
		return
	}
	if err := runner.StartInterview(); err != nil {
		if errors.Is(err, session.ErrInvalidTransition) {
			response.Conflict(c, err.Error())
			return
		}
		response.Internal(c, err.Error())
		return
	}
	response.OK(c, sess.Summary())
}

// StopSession handles POST /sessions/:meetingId/stop. Idempotent with
// respect to an already-stopping session; 404 for unknown meetings.
func (h *Handler) StopSession(c *gin.Context) {
	meetingID := c.Param("meetingId")
	sess, err := h.registry.Get(meetingID)
	if err != nil {
		response.NotFound(c, "session not found")
		return
	}
	if runner := sess.Runner(); runner != nil {
		runner.Stop()
	} else {
		h.registry.Remove(meetingID)
	}
	response.OK(c, gin.H{"meeting_id": meetingID, "status": "stopped"})
}

// ListSessions handles GET /sessions.
func (h *Handler) ListSessions(c *gin.Context) {
	summaries := h.registry.List()
	response.OK(c, gin.H{"active_sessions": len(summaries), "sessions": summaries})
}
