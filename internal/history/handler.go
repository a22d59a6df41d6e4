package history

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-interview/backend/pkg/response"
)

// Handler serves GET /sessions/history.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates the history handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListRecent returns the most recently ended sessions.
func (h *Handler) ListRecent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list session history failed", zap.Error(err))
		response.Internal(c, "failed to load session history")
		return
	}
	response.OK(c, gin.H{"count": len(records), "sessions": records})
}
