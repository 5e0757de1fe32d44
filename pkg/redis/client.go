package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultStreamMaxLen caps the run and vote streams.
const DefaultStreamMaxLen = 10000

// Options configures the connection. Zero values fall back to local defaults.
type Options struct {
	Host         string
	Port         string
	Password     string
	DB           int
	StreamMaxLen int64
}

// Client wraps the Redis client used for run summaries (stream) and vote
// notifications (pub/sub).
type Client struct {
	client       *redis.Client
	logger       *zap.Logger
	streamMaxLen int64 // 0 = unlimited
}

// NewClient connects and pings Redis.
func NewClient(ctx context.Context, logger *zap.Logger, o Options) (*Client, error) {
	if o.Host == "" {
		o.Host = "localhost"
	}
	if o.Port == "" {
		o.Port = "6379"
	}
	if o.StreamMaxLen < 0 {
		o.StreamMaxLen = 0
	}
	addr := fmt.Sprintf("%s:%s", o.Host, o.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: o.Password,
		DB:       o.DB,

		// Connection pool
		PoolSize:     4,
		MinIdleConns: 1,

		// Timeouts
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Info("Connected to Redis",
		zap.String("addr", addr),
		zap.Int("db", o.DB),
		zap.Int64("streamMaxLen", o.StreamMaxLen))

	return &Client{
		client:       rdb,
		logger:       logger,
		streamMaxLen: o.StreamMaxLen,
	}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Publish publishes a message to a Pub/Sub channel.
func (c *Client) Publish(ctx context.Context, channel string, message any) error {
	if err := c.client.Publish(ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// XAdd appends an entry to a stream, trimmed approximately to the configured
// max length. Returns the entry id.
func (c *Client) XAdd(ctx context.Context, stream string, values map[string]any) (string, error) {
	args := &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}
	if c.streamMaxLen > 0 {
		args.MaxLen = c.streamMaxLen
		args.Approx = true
	}

	id, err := c.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", stream, err)
	}
	return id, nil
}

// Health checks if Redis is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
