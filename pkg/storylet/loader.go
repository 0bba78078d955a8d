package storylet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/story-director/pkg/casting"
)

// Decode parses a storylet from JSON or YAML, chosen by the file extension.
// Unknown fields are rejected in both formats.
func Decode(data []byte, ext string) (*Storylet, error) {
	var s Storylet
	switch strings.ToLower(ext) {
	case ".json":
		if !json.Valid(data) {
			return nil, fmt.Errorf("storylet contains invalid JSON")
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode storylet JSON: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode storylet YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported storylet format %q", ext)
	}
	return &s, nil
}

// Load reads and validates a storylet file. When the file does not declare an
// id, the filename (without extension) is used.
func Load(path string, bands casting.BandTable) (*Storylet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read storylet file: %w", err)
	}

	ext := filepath.Ext(path)
	s, err := Decode(data, ext)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if s.ID == "" {
		s.ID = strings.TrimSuffix(filepath.Base(path), ext)
	}

	if err := s.Validate(bands); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// IsStoryletFile reports whether the path has a supported storylet extension.
func IsStoryletFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
