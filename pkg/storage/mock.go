package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/story-director/pkg/storylet"
	"github.com/jwebster45206/story-director/pkg/world"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	worlds    map[uuid.UUID]*world.World
	storylets map[string]*storylet.Storylet
	pingError error
	saveError error
	saves     int
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		worlds:    make(map[uuid.UUID]*world.World),
		storylets: make(map[string]*storylet.Storylet),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on SaveWorld with the given error
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// SaveCount returns how many times SaveWorld succeeded
func (m *MockStorage) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// AddStorylet adds a storylet to the mock
func (m *MockStorage) AddStorylet(s *storylet.Storylet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storylets[s.ID] = s
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveWorld stores a copy of the world
func (m *MockStorage) SaveWorld(ctx context.Context, w *world.World) error {
	if w == nil {
		return errors.New("world cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.worlds[w.ID] = w.Clone()
	m.saves++
	return nil
}

// LoadWorld returns a copy of the stored world, or nil if it does not exist
func (m *MockStorage) LoadWorld(ctx context.Context, id uuid.UUID) (*world.World, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.worlds[id]
	if !ok {
		return nil, nil
	}
	return w.Clone(), nil
}

// DeleteWorld removes a world
func (m *MockStorage) DeleteWorld(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.worlds, id)
	return nil
}

// ListStorylets returns the IDs of all storylets in sorted order
func (m *MockStorage) ListStorylets(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.storylets))
	for id := range m.storylets {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// GetStorylet returns a storylet by ID
func (m *MockStorage) GetStorylet(ctx context.Context, id string) (*storylet.Storylet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.storylets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStoryletNotFound, id)
	}
	return s, nil
}
