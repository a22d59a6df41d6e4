package webhook

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-interview/backend/pkg/response"
)

// Header names the platform signs webhook deliveries with.
const (
	HeaderTimestamp = "X-Signature-Timestamp"
	HeaderSignature = "X-Signature"
)

// Handler is the HTTP entry point for POST /webhook. It reads the raw
// body before any parsing (the signature covers the exact bytes sent),
// verifies it, then routes the event.
type Handler struct {
	verifier *Verifier
	router   *Router
	logger   *zap.Logger
}

// NewHandler creates the webhook HTTP handler.
func NewHandler(verifier *Verifier, router *Router, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{verifier: verifier, router: router, logger: logger}
}

// Receive handles POST /webhook.
func (h *Handler) Receive(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "read body: "+err.Error())
		return
	}

	if !h.verifier.Verify(raw, c.GetHeader(HeaderTimestamp), c.GetHeader(HeaderSignature)) {
		h.logger.Warn("webhook signature verification failed", zap.String("remote", c.ClientIP()))
		response.Unauthorized(c, "invalid signature")
		return
	}

	evt, err := ParseEvent(raw)
	if err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}

	h.logger.Info("webhook event", zap.String("event", evt.Type))

	// The validation challenge is answered directly; no session is touched.
	if evt.Type == EventURLValidation {
		c.JSON(http.StatusOK, h.verifier.RespondToChallenge(evt.PlainToken))
		return
	}

	h.router.Route(evt)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "event": evt.Type})
}
