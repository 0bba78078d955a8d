package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/story-director/pkg/casting"
	"github.com/jwebster45206/story-director/pkg/storage"
	"github.com/jwebster45206/story-director/pkg/storylet"
	"github.com/jwebster45206/story-director/pkg/world"
)

// WorldTTL is how long an untouched world is kept in Redis.
const WorldTTL = 24 * time.Hour

// RedisStorage implements the Storage interface using Redis for worlds
// and the filesystem for storylets
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
	bands   casting.BandTable

	mu        sync.RWMutex
	storylets map[string]*storylet.Storylet // nil until first load
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance.
// redisURL may be a redis:// URL or a plain host:port address.
func NewRedisStorage(redisURL, dataDir string, bands casting.BandTable, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redisOptions(redisURL)
	if err != nil {
		return nil, err
	}
	if dataDir == "" {
		dataDir = "./data"
	}
	if bands == nil {
		bands = casting.DefaultBands()
	}

	return &RedisStorage{
		client:  redis.NewClient(opt),
		logger:  logger,
		dataDir: dataDir,
		bands:   bands,
	}, nil
}

func redisOptions(redisURL string) (*redis.Options, error) {
	if !strings.Contains(redisURL, "://") {
		return &redis.Options{Addr: redisURL}, nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return opt, nil
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// Client returns the underlying Redis client for Pub/Sub and other direct use
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	return r.waitForConnection(ctx, 30, 2*time.Second)
}

func (r *RedisStorage) waitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// World operations (Redis-backed)

func worldKey(id uuid.UUID) string {
	return "world:" + id.String()
}

func (r *RedisStorage) SaveWorld(ctx context.Context, w *world.World) error {
	if w == nil {
		return errors.New("world cannot be nil")
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(w)
	if err != nil {
		r.logger.Error("Failed to marshal world", "world_id", w.ID, "error", err)
		return fmt.Errorf("failed to marshal world: %w", err)
	}

	if err := r.client.Set(ctx, worldKey(w.ID), data, WorldTTL).Err(); err != nil {
		r.logger.Error("Failed to save world", "world_id", w.ID, "error", err)
		return fmt.Errorf("failed to save world: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadWorld(ctx context.Context, id uuid.UUID) (*world.World, error) {
	data, err := r.client.Get(ctx, worldKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("World not found", "world_id", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load world", "world_id", id, "error", err)
		return nil, fmt.Errorf("failed to load world: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var w world.World
	if err := json.Unmarshal(data, &w); err != nil {
		r.logger.Error("Failed to unmarshal world", "world_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal world: %w", err)
	}
	return &w, nil
}

func (r *RedisStorage) DeleteWorld(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, worldKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete world", "world_id", id, "error", err)
		return fmt.Errorf("failed to delete world: %w", err)
	}
	return nil
}
