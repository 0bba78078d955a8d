package queue

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/story-director/pkg/casting"
	"github.com/jwebster45206/story-director/pkg/director"
	"github.com/jwebster45206/story-director/pkg/queue"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	client, err := NewClient(context.Background(), "redis://"+mr.Addr(), testLogger())
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create queue client: %v", err)
	}

	return client, mr
}

func newEvent(t *testing.T, worldID uuid.UUID, storyletID string) *queue.Event {
	t.Helper()
	ev, err := queue.NewEvent(queue.EventTypeStoryletResolved, worldID, map[string]string{"storylet_id": storyletID})
	require.NoError(t, err)
	return ev
}

func TestResolvedEventQueue_EnqueueAndDequeue(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewResolvedEventQueue(client, testLogger())
	ctx := context.Background()
	worldID := uuid.New()

	for _, id := range []string{"tavern_brawl", "ambush", "market_day"} {
		require.NoError(t, q.Enqueue(ctx, newEvent(t, worldID, id)))
	}

	depth, err := q.Depth(ctx, worldID)
	require.NoError(t, err)
	assert.Equal(t, 3, depth)

	events, err := q.Dequeue(ctx, worldID)
	require.NoError(t, err)
	require.Len(t, events, 3)

	var first map[string]string
	require.NoError(t, events[0].Decode(&first))
	assert.Equal(t, "tavern_brawl", first["storylet_id"])

	depth, err = q.Depth(ctx, worldID)
	require.NoError(t, err)
	assert.Zero(t, depth)
	assert.False(t, mr.Exists("resolved-events:"+worldID.String()))
}

func TestResolvedEventQueue_DequeueEmpty(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewResolvedEventQueue(client, testLogger())
	events, err := q.Dequeue(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestResolvedEventQueue_PeekAndClear(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewResolvedEventQueue(client, testLogger())
	ctx := context.Background()
	worldID := uuid.New()
	other := uuid.New()

	require.NoError(t, q.Enqueue(ctx, newEvent(t, worldID, "a")))
	require.NoError(t, q.Enqueue(ctx, newEvent(t, worldID, "b")))
	require.NoError(t, q.Enqueue(ctx, newEvent(t, other, "c")))

	peeked, err := q.Peek(ctx, worldID, 1)
	require.NoError(t, err)
	assert.Len(t, peeked, 1)

	all, err := q.Peek(ctx, worldID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, q.Clear(ctx, worldID))
	depth, err := q.Depth(ctx, worldID)
	require.NoError(t, err)
	assert.Zero(t, depth)

	// Queues are isolated per world.
	depth, err = q.Depth(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)
}

func TestResolvedEventQueue_CorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewResolvedEventQueue(client, testLogger())
	worldID := uuid.New()
	_, err := mr.Push("resolved-events:"+worldID.String(), "{not json")
	require.NoError(t, err)

	_, err = q.Peek(context.Background(), worldID, 0)
	assert.Error(t, err)
}

func TestDirectorPublisher_Publish(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewResolvedEventQueue(client, testLogger())
	pub := NewDirectorPublisher(q, testLogger())
	ctx := context.Background()
	worldID := uuid.New()

	result := &director.EventResult{
		ResolutionID: uuid.New(),
		WorldID:      worldID,
		StoryletID:   "tavern_brawl",
		ChoiceID:     "confront",
		Cast:         casting.Cast{{RoleID: "Ally", ActorID: "molly", Score: 1.5}},
		Applied:      true,
	}
	require.NoError(t, pub.Publish(ctx, worldID, result))

	events, err := q.Dequeue(ctx, worldID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, queue.EventTypeStoryletResolved, events[0].Type)

	var got director.EventResult
	require.NoError(t, events[0].Decode(&got))
	assert.Equal(t, result.ResolutionID, got.ResolutionID)
	assert.Equal(t, result.Cast, got.Cast)
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), addr, testLogger())
	assert.Error(t, err)
}

func TestClient_KeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	worldID := uuid.New()

	client, err := NewClient(context.Background(), mr.Addr(), testLogger(), WithKeyPrefix("staging:"))
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, "staging:"+worldID.String(), client.Key(worldID))
	require.NoError(t, client.Ping(context.Background()))

	q := NewResolvedEventQueue(client, testLogger())
	require.NoError(t, q.Enqueue(context.Background(), newEvent(t, worldID, "tavern_brawl")))
	assert.True(t, mr.Exists("staging:"+worldID.String()))
	assert.False(t, mr.Exists(DefaultKeyPrefix+":"+worldID.String()))

	blank, err := NewClient(context.Background(), mr.Addr(), testLogger(), WithKeyPrefix("  "))
	require.NoError(t, err)
	defer blank.Close()
	assert.Equal(t, DefaultKeyPrefix+":"+worldID.String(), blank.Key(worldID))
}
