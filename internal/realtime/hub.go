// Package realtime streams session lifecycle events to operator
// dashboard clients over WebSocket, with Redis pub/sub fan-out across
// instances.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat (seconds).
	PingInterval = 30
	PongWait     = 60
)

// Publisher publishes session events to Redis for cross-instance broadcast.
type Publisher interface {
	PublishSessionEvent(meetingID, event string, payload []byte) error
}

// Subscriber subscribes to the session event stream and invokes the
// handler for each incoming event.
type Subscriber interface {
	SubscribeSessionEvents(handler func(meetingID, event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains connected dashboard clients and broadcasts session
// events to them. Clients may watch a single meeting or the whole
// stream. Implements the bot package's EventSink.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*Client
	logger    *zap.Logger
	pub       Publisher
	subActive bool
	cancelSub func()
}

// NewHub creates a hub. When sub is non-nil the hub subscribes to the
// Redis stream so events published by any instance reach local clients.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		pub:     pub,
	}
	if sub != nil {
		cancel, err := sub.SubscribeSessionEvents(h.broadcast)
		if err != nil {
			logger.Warn("session event subscription failed, delivering locally only", zap.Error(err))
		} else {
			h.cancelSub = cancel
			h.subActive = true
		}
	}
	return h
}

// Close cancels the Redis subscription.
func (h *Hub) Close() {
	if h.cancelSub != nil {
		h.cancelSub()
	}
}

// SessionEvent publishes one session lifecycle event. With Redis fully
// wired it publishes only; the subscription callback performs the local
// broadcast once, so every instance (this one included) delivers each
// event exactly once. When the subscription never came up, or a publish
// fails, local clients are served directly.
func (h *Hub) SessionEvent(meetingID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.pub != nil {
		if err := h.pub.PublishSessionEvent(meetingID, event, data); err != nil {
			h.logger.Warn("session event publish failed, broadcasting locally", zap.String("event", event))
		} else if h.subActive {
			return
		}
	}
	h.broadcast(meetingID, event, data)
}

func (h *Hub) broadcast(meetingID, event string, data []byte) {
	msg := WSMessage{MeetingID: meetingID, Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.MeetingID != "" && c.MeetingID != meetingID {
			continue
		}
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// Register adds a dashboard client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("dashboard client connected",
		zap.String("client_id", c.ID), zap.String("meeting_id", c.MeetingID))
}

// Unregister removes a dashboard client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()
	h.logger.Debug("dashboard client disconnected", zap.String("client_id", c.ID))
}

// ClientCount returns the number of connected dashboard clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
