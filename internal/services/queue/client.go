package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces the per-world lists of resolved events.
const DefaultKeyPrefix = "resolved-events"

// Client is the Redis connection behind the resolved-event queue, together
// with the key namespace its lists live under.
type Client struct {
	rdb       *redis.Client
	logger    *slog.Logger
	keyPrefix string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithKeyPrefix stores queues under "<prefix>:<world id>" instead of DefaultKeyPrefix.
func WithKeyPrefix(prefix string) ClientOption {
	return func(c *Client) {
		if prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":"); prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// NewClient dials Redis and pings it once; an unreachable server is an error.
// Both "redis://host:port/db" URLs and bare "host:port" addresses are accepted.
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger, opts ...ClientOption) (*Client, error) {
	if !strings.Contains(redisURL, "://") {
		redisURL = "redis://" + redisURL
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	c := &Client{
		rdb:       redis.NewClient(opt),
		logger:    logger,
		keyPrefix: DefaultKeyPrefix,
	}
	for _, o := range opts {
		o(c)
	}

	if err := c.Ping(ctx); err != nil {
		_ = c.rdb.Close()
		return nil, err
	}

	logger.Info("Resolved-event queue connected", "addr", opt.Addr, "db", opt.DB, "key_prefix", c.keyPrefix)
	return c, nil
}

// Ping checks the queue connection.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

// Key returns the list key holding a world's resolved events.
func (c *Client) Key(worldID uuid.UUID) string {
	return c.keyPrefix + ":" + worldID.String()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
