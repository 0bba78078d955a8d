package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwebster45206/story-director/pkg/storylet"
	"github.com/jwebster45206/story-director/pkg/world"
)

// ErrStoryletNotFound is returned (wrapped) when a storylet does not exist.
var ErrStoryletNotFound = errors.New("storylet not found")

// Storage defines a unified interface for all storage operations
// This interface combines world persistence (Redis) with storylet loading (filesystem)
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// World operations (Redis-backed)
	// LoadWorld returns nil, nil when the world does not exist
	SaveWorld(ctx context.Context, w *world.World) error
	LoadWorld(ctx context.Context, id uuid.UUID) (*world.World, error)
	DeleteWorld(ctx context.Context, id uuid.UUID) error

	// Storylet operations (filesystem-backed)
	ListStorylets(ctx context.Context) ([]string, error)
	GetStorylet(ctx context.Context, id string) (*storylet.Storylet, error)
}
