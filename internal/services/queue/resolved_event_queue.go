package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/story-director/pkg/queue"
)

// ResolvedEventQueue keeps a per-world list of resolved storylet events
type ResolvedEventQueue struct {
	client *Client
	logger *slog.Logger
}

// NewResolvedEventQueue creates a new resolved event queue service
func NewResolvedEventQueue(client *Client, logger *slog.Logger) *ResolvedEventQueue {
	return &ResolvedEventQueue{
		client: client,
		logger: logger,
	}
}

// queueKey returns the Redis key for a world's resolved event queue
func (q *ResolvedEventQueue) queueKey(worldID uuid.UUID) string {
	return q.client.Key(worldID)
}

// Enqueue adds an event to the end of the world's queue
func (q *ResolvedEventQueue) Enqueue(ctx context.Context, ev *queue.Event) error {
	key := q.queueKey(ev.WorldID)

	data, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := q.client.rdb.RPush(ctx, key, data).Err(); err != nil {
		q.logger.Error("Failed to enqueue resolved event",
			"error", err,
			"world_id", ev.WorldID,
			"key", key)
		return fmt.Errorf("failed to enqueue resolved event: %w", err)
	}

	q.logger.Debug("Enqueued resolved event",
		"world_id", ev.WorldID,
		"event_id", ev.EventID,
		"type", ev.Type)

	return nil
}

// Dequeue removes and returns all events for a world, oldest first
func (q *ResolvedEventQueue) Dequeue(ctx context.Context, worldID uuid.UUID) ([]*queue.Event, error) {
	key := q.queueKey(worldID)

	var raw *redis.StringSliceCmd
	_, err := q.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		raw = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		q.logger.Error("Failed to dequeue resolved events",
			"error", err,
			"world_id", worldID,
			"key", key)
		return nil, fmt.Errorf("failed to dequeue resolved events: %w", err)
	}

	events, err := q.decode(raw.Val())
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		q.logger.Debug("Dequeued resolved events",
			"world_id", worldID,
			"count", len(events))
	}
	return events, nil
}

// Peek returns up to limit events without removing them. A limit <= 0 returns all.
func (q *ResolvedEventQueue) Peek(ctx context.Context, worldID uuid.UUID, limit int) ([]*queue.Event, error) {
	key := q.queueKey(worldID)

	end := int64(limit - 1)
	if limit <= 0 {
		end = -1 // Get all
	}

	raw, err := q.client.rdb.LRange(ctx, key, 0, end).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		q.logger.Error("Failed to peek resolved events",
			"error", err,
			"world_id", worldID,
			"key", key)
		return nil, fmt.Errorf("failed to peek resolved events: %w", err)
	}

	return q.decode(raw)
}

// Clear removes all events for a world
func (q *ResolvedEventQueue) Clear(ctx context.Context, worldID uuid.UUID) error {
	key := q.queueKey(worldID)

	if err := q.client.rdb.Del(ctx, key).Err(); err != nil {
		q.logger.Error("Failed to clear resolved event queue",
			"error", err,
			"world_id", worldID,
			"key", key)
		return fmt.Errorf("failed to clear resolved event queue: %w", err)
	}

	q.logger.Debug("Cleared resolved event queue", "world_id", worldID)
	return nil
}

// Depth returns the number of events queued for a world
func (q *ResolvedEventQueue) Depth(ctx context.Context, worldID uuid.UUID) (int, error) {
	key := q.queueKey(worldID)

	count, err := q.client.rdb.LLen(ctx, key).Result()
	if err != nil {
		q.logger.Error("Failed to get resolved event queue depth",
			"error", err,
			"world_id", worldID,
			"key", key)
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}

	return int(count), nil
}

func (q *ResolvedEventQueue) decode(raw []string) ([]*queue.Event, error) {
	events := make([]*queue.Event, 0, len(raw))
	for _, item := range raw {
		ev, err := queue.FromJSON([]byte(item))
		if err != nil {
			return nil, fmt.Errorf("failed to decode resolved event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}
