package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/story-director/pkg/director"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeWorldCreated     EventType = "world.created"
	EventTypeStoryletResolved EventType = "storylet.resolved"
)

// Event is the message published on a world's channel
type Event struct {
	Type    EventType      `json:"type"`
	WorldID string         `json:"world_id"`
	Data    map[string]any `json:"data,omitempty"`
}

// Broadcaster publishes live world notifications over Redis Pub/Sub
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// Ensure Broadcaster implements director.EventPublisher
var _ director.EventPublisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel returns the Pub/Sub channel for a world
func Channel(worldID uuid.UUID) string {
	return fmt.Sprintf("world-events:%s", worldID.String())
}

// PublishWorldCreated publishes a world.created event
func (b *Broadcaster) PublishWorldCreated(ctx context.Context, worldID uuid.UUID, npcCount int) error {
	return b.publishToWorld(ctx, worldID, Event{
		Type:    EventTypeWorldCreated,
		WorldID: worldID.String(),
		Data: map[string]any{
			"npc_count": npcCount,
		},
	})
}

// Publish sends a storylet.resolved event for an applied resolution
func (b *Broadcaster) Publish(ctx context.Context, worldID uuid.UUID, result *director.EventResult) error {
	return b.publishToWorld(ctx, worldID, Event{
		Type:    EventTypeStoryletResolved,
		WorldID: worldID.String(),
		Data: map[string]any{
			"resolution_id": result.ResolutionID.String(),
			"storylet_id":   result.StoryletID,
			"choice_id":     result.ChoiceID,
			"cast":          result.Cast.ByRole(),
		},
	})
}

// publishToWorld publishes an event to the world-specific channel
func (b *Broadcaster) publishToWorld(ctx context.Context, worldID uuid.UUID, event Event) error {
	channel := Channel(worldID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}
