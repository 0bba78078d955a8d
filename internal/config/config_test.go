package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/story-director/pkg/casting"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, casting.DefaultWeights(), cfg.Casting.Weights())

	bands, err := cfg.Casting.Bands()
	require.NoError(t, err)
	assert.Equal(t, casting.DefaultBands(), bands)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("CASTING_BAND_WEIGHT", "2")
	t.Setenv("CASTING_MARGIN_WEIGHT", "0.25")
	t.Setenv("CASTING_MARGIN_SCALE", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.Equal(t, casting.Weights{Band: 2, Margin: 0.25, MarginScale: 5}, cfg.Casting.Weights())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"not a number", "CASTING_BAND_WEIGHT", "heavy"},
		{"negative weight", "CASTING_MARGIN_WEIGHT", "-1"},
		{"zero scale", "CASTING_MARGIN_SCALE", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestLoadBands(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "bands.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`bands:
  - {name: foe, min: -100, max: -1, anchor: -100}
  - {name: friend, min: 0, max: 100, anchor: 100}
`), 0o644))

	bands, err := LoadBands(good)
	require.NoError(t, err)
	require.Len(t, bands, 2)
	assert.Equal(t, "Foe", bands.BandFor(-50))

	scorer, err := Casting{BandsFile: good, BandWeight: 1, MarginScale: 10}.Scorer()
	require.NoError(t, err)
	assert.Equal(t, bands, scorer.Bands)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`bands:
  - {name: foe, min: 10, max: -10, anchor: 0}
`), 0o644))
	_, err = LoadBands(bad)
	var cfgErr *casting.ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("tiers: []\n"), 0o644))
	_, err = LoadBands(unknown)
	assert.Error(t, err)

	_, err = LoadBands(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
