package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sessionEventsChannel = "interview:session_events"
	publishTimeout       = 5 * time.Second
)

// redisPayload is the message published to Redis for cross-instance broadcast.
type redisPayload struct {
	MeetingID string          `json:"meeting_id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	At        int64           `json:"at"`
}

// RedisPubSub bridges session events through Redis pub/sub so that
// dashboard clients on any instance see every event.
type RedisPubSub struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPubSub creates the Redis bridge.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	return &RedisPubSub{client: client, logger: logger}
}

// PublishSessionEvent publishes one event to the shared channel.
func (r *RedisPubSub) PublishSessionEvent(meetingID, event string, payload []byte) error {
	body, err := json.Marshal(redisPayload{
		MeetingID: meetingID,
		Event:     event,
		Data:      payload,
		At:        time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return r.client.Publish(ctx, sessionEventsChannel, body).Err()
}

// SubscribeSessionEvents subscribes to the shared channel and calls
// handler for each message. Returns a cancel function to stop the
// subscription.
func (r *RedisPubSub) SubscribeSessionEvents(handler func(meetingID, event string, payload []byte)) (cancel func(), err error) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, sessionEventsChannel)
	if _, err = pubsub.Receive(ctx); err != nil {
		cancelCtx()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var p redisPayload
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					continue
				}
				handler(p.MeetingID, p.Event, p.Data)
			}
		}
	}()
	return func() { cancelCtx() }, nil
}
