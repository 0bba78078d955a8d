package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/story-director/pkg/storage"
	"github.com/jwebster45206/story-director/pkg/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupTestRedis(t *testing.T, dataDir string) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := NewRedisStorage("redis://"+mr.Addr(), dataDir, nil, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStorage_WorldRoundTrip(t *testing.T) {
	store, mr := setupTestRedis(t, t.TempDir())
	ctx := context.Background()

	w, err := world.New(99)
	require.NoError(t, err)
	require.NoError(t, w.AddNPC(world.NPC{ID: "molly", Name: "Molly", Relationship: 55, Attributes: map[string]int{"courage": 12}}))
	w.SetVar("weather", "stormy")

	require.NoError(t, store.SaveWorld(ctx, w))
	assert.True(t, mr.Exists("world:"+w.ID.String()))
	assert.Equal(t, WorldTTL, mr.TTL("world:"+w.ID.String()))

	loaded, err := store.LoadWorld(ctx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, w.ID, loaded.ID)
	assert.Equal(t, uint64(99), loaded.Seed)
	assert.Equal(t, 55, loaded.NPCs["molly"].Relationship)
	assert.Equal(t, 12, loaded.NPCs["molly"].Attributes["courage"])
	assert.Equal(t, "stormy", loaded.Vars["weather"])
	assert.False(t, loaded.UpdatedAt.IsZero())

	require.NoError(t, store.DeleteWorld(ctx, w.ID))
	loaded, err = store.LoadWorld(ctx, w.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_WorldExpires(t *testing.T) {
	store, mr := setupTestRedis(t, t.TempDir())
	ctx := context.Background()

	w, err := world.New(1)
	require.NoError(t, err)
	require.NoError(t, store.SaveWorld(ctx, w))

	mr.FastForward(WorldTTL + time.Second)

	loaded, err := store.LoadWorld(ctx, w.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_LoadMissingAndCorrupt(t *testing.T) {
	store, mr := setupTestRedis(t, t.TempDir())
	ctx := context.Background()

	loaded, err := store.LoadWorld(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)

	id := uuid.New()
	require.NoError(t, mr.Set("world:"+id.String(), "{not json"))
	_, err = store.LoadWorld(ctx, id)
	assert.Error(t, err)

	assert.Error(t, store.SaveWorld(ctx, nil))
}

func TestRedisStorage_PingAndWait(t *testing.T) {
	store, mr := setupTestRedis(t, t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.waitForConnection(ctx, 2, time.Millisecond))

	mr.Close()
	assert.Error(t, store.Ping(ctx))
	assert.Error(t, store.waitForConnection(ctx, 2, time.Millisecond))
}

func TestNewRedisStorage_Addresses(t *testing.T) {
	_, err := NewRedisStorage("localhost:6379", "", nil, testLogger())
	assert.NoError(t, err)

	_, err = NewRedisStorage("redis://localhost:6379/notadb", "", nil, testLogger())
	assert.Error(t, err)
}

const tavernJSON = `{
  "title": "Tavern Brawl",
  "roles": [
    {"id": "Antagonist", "required": true, "relation_band": "Rival"},
    {"id": "Ally", "required": true, "relation_band": "Friend"}
  ],
  "choices": [{"id": "confront", "text": "Stand your ground."}]
}`

const ambushYAML = `id: ambush
title: Ambush
roles:
  - id: Leader
    required: true
    stat_thresholds:
      cunning: {min: 12}
choices:
  - id: flee
    text: Run.
`

func writeStorylets(t *testing.T, files map[string]string) string {
	t.Helper()
	dataDir := t.TempDir()
	dir := filepath.Join(dataDir, "storylets")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dataDir
}

func TestRedisStorage_Storylets(t *testing.T) {
	dataDir := writeStorylets(t, map[string]string{
		"tavern_brawl.json": tavernJSON,
		"ambush.yaml":       ambushYAML,
		"broken.json":       `{"roles": [{"id": ""}]}`,
		"notes.txt":         "ignored",
	})
	store, _ := setupTestRedis(t, dataDir)
	ctx := context.Background()

	ids, err := store.ListStorylets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ambush", "tavern_brawl"}, ids)

	s, err := store.GetStorylet(ctx, "tavern_brawl")
	require.NoError(t, err)
	assert.Equal(t, "Tavern Brawl", s.Title)
	assert.Len(t, s.Roles, 2)

	_, err = store.GetStorylet(ctx, "broken")
	assert.ErrorIs(t, err, storage.ErrStoryletNotFound)
}

func TestRedisStorage_ReloadStorylets(t *testing.T) {
	dataDir := writeStorylets(t, map[string]string{"tavern_brawl.json": tavernJSON})
	store, _ := setupTestRedis(t, dataDir)
	ctx := context.Background()

	ids, err := store.ListStorylets(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "storylets", "ambush.yml"), []byte(ambushYAML), 0o644))

	ids, err = store.ListStorylets(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1, "cached until reload")

	store.ReloadStorylets()
	ids, err = store.ListStorylets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ambush", "tavern_brawl"}, ids)
}

func TestRedisStorage_MissingStoryletsDir(t *testing.T) {
	store, _ := setupTestRedis(t, t.TempDir())

	ids, err := store.ListStorylets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
