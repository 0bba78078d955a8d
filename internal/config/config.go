package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/story-director/pkg/casting"
)

type Config struct {
	Port         string  `env:"PORT" envDefault:"8080"`
	Environment  string  `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName string  `env:"LOG_LEVEL" envDefault:"info"`
	RedisURL     string  `env:"REDIS_URL" envDefault:"localhost:6379"`
	DataDir      string  `env:"DATA_DIR" envDefault:"./data"`
	Casting      Casting `envPrefix:"CASTING_"`

	LogLevel slog.Level // Parsed from LogLevelName
}

// Casting tunes the scorer.
type Casting struct {
	BandWeight   float64 `env:"BAND_WEIGHT" envDefault:"1"`
	MarginWeight float64 `env:"MARGIN_WEIGHT" envDefault:"0.5"`
	MarginScale  float64 `env:"MARGIN_SCALE" envDefault:"10"`
	BandsFile    string  `env:"BANDS_FILE"` // Optional YAML band table; defaults are used when empty
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	if err := cfg.Casting.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Casting) validate() error {
	var errs []error
	if c.BandWeight < 0 {
		errs = append(errs, fmt.Errorf("CASTING_BAND_WEIGHT must not be negative, got %g", c.BandWeight))
	}
	if c.MarginWeight < 0 {
		errs = append(errs, fmt.Errorf("CASTING_MARGIN_WEIGHT must not be negative, got %g", c.MarginWeight))
	}
	if c.MarginScale <= 0 {
		errs = append(errs, fmt.Errorf("CASTING_MARGIN_SCALE must be positive, got %g", c.MarginScale))
	}
	return errors.Join(errs...)
}

// Weights returns the configured scorer weights.
func (c Casting) Weights() casting.Weights {
	return casting.Weights{
		Band:        c.BandWeight,
		Margin:      c.MarginWeight,
		MarginScale: c.MarginScale,
	}
}

// Bands returns the configured band table.
func (c Casting) Bands() (casting.BandTable, error) {
	if c.BandsFile == "" {
		return casting.DefaultBands(), nil
	}
	return LoadBands(c.BandsFile)
}

// Scorer builds a scorer from the configured bands and weights.
func (c Casting) Scorer() (*casting.Scorer, error) {
	bands, err := c.Bands()
	if err != nil {
		return nil, err
	}
	return casting.NewScorer(bands, c.Weights()), nil
}

// LoadBands reads a YAML band table of the form:
//
//	bands:
//	  - {name: Rival, min: -75, max: -26, anchor: -75}
func LoadBands(path string) (casting.BandTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bands file: %w", err)
	}

	var doc struct {
		Bands casting.BandTable `yaml:"bands"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode bands file: %w", err)
	}
	if err := doc.Bands.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc.Bands, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
