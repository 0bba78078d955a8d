package queue

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jwebster45206/story-director/pkg/director"
	"github.com/jwebster45206/story-director/pkg/queue"
)

// DirectorPublisher adapts ResolvedEventQueue for use by the director
type DirectorPublisher struct {
	queue  *ResolvedEventQueue
	logger *slog.Logger
}

// Ensure DirectorPublisher implements director.EventPublisher
var _ director.EventPublisher = (*DirectorPublisher)(nil)

// NewDirectorPublisher creates a new adapter
func NewDirectorPublisher(q *ResolvedEventQueue, logger *slog.Logger) *DirectorPublisher {
	return &DirectorPublisher{
		queue:  q,
		logger: logger,
	}
}

// Publish wraps the result in a storylet_resolved event and enqueues it
func (p *DirectorPublisher) Publish(ctx context.Context, worldID uuid.UUID, result *director.EventResult) error {
	ev, err := queue.NewEvent(queue.EventTypeStoryletResolved, worldID, result)
	if err != nil {
		return err
	}
	return p.queue.Enqueue(ctx, ev)
}
