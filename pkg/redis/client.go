// Package redis dials the shared Redis connection that the dashboard
// event fan-out and the session outcome queue both ride on. Redis is
// optional; the caller skips this package entirely when no address is
// configured.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// Client is the shared Redis connection.
type Client struct {
	*redis.Client
}

// NewClient dials Redis and verifies the connection with a bounded
// ping, so a dead Redis is caught at startup rather than on the first
// published event.
func NewClient(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	logger.Info("redis connected", zap.String("addr", addr), zap.Int("db", db))
	return &Client{Client: rdb}, nil
}
