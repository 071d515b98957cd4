package redis

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/allinone/backend/internal/classifier"
	"github.com/allinone/backend/pkg/logger"
)

// Client caches classification signals keyed by a hash of the description,
// so repeated reports of the same emergency skip the completion service.
// Cache failures are advisory only; classification always proceeds.
type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func signalKey(description string) string {
	return fmt.Sprintf("signal:%x", md5.Sum([]byte(description)))
}

func (c *Client) GetSignal(ctx context.Context, description string) (*classifier.TextSignal, bool) {
	data, err := c.client.Get(ctx, signalKey(description)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("Failed to read signal cache", zap.Error(err))
		return nil, false
	}

	var signal classifier.TextSignal
	if err := json.Unmarshal(data, &signal); err != nil {
		logger.Warn("Failed to decode cached signal", zap.Error(err))
		return nil, false
	}

	logger.Debug("Signal cache hit")
	return &signal, true
}

func (c *Client) SetSignal(ctx context.Context, description string, signal classifier.TextSignal) {
	data, err := json.Marshal(signal)
	if err != nil {
		logger.Warn("Failed to encode signal for cache", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, signalKey(description), data, c.ttl).Err(); err != nil {
		logger.Warn("Failed to write signal cache", zap.Error(err))
	}
}
