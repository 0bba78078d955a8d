package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/story-director/pkg/casting"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{
			name: "valid json",
			file: "tavern_brawl.json",
			content: `{"roles": [{"id": "Ally", "required": true, "relation_band": "Friend"}],
			  "choices": [{"id": "confront", "outcome": {"set_vars": {"brawl_started": "true"}}}]}`,
		},
		{
			name:    "valid yaml",
			file:    "ambush.yaml",
			content: "roles:\n  - id: Leader\n    stat_thresholds:\n      cunning: {min: 12}\nchoices:\n  - id: flee\n",
		},
		{
			name:    "bad filename",
			file:    "TavernBrawl.json",
			content: `{}`,
			wantErr: "lowercase snake_case",
		},
		{
			name:    "bad extension",
			file:    "tavern.txt",
			content: ``,
			wantErr: "extension",
		},
		{
			name:    "unknown field",
			file:    "unknown_field.json",
			content: `{"choices": [{"id": "a"}], "mood": "grim"}`,
			wantErr: "unknown field",
		},
		{
			name:    "unknown band",
			file:    "unknown_band.json",
			content: `{"roles": [{"id": "Ally", "relation_band": "Soulmate"}], "choices": [{"id": "a"}]}`,
			wantErr: "Soulmate",
		},
		{
			name:    "bad choice id",
			file:    "bad_choice.json",
			content: `{"choices": [{"id": "Run-Away"}]}`,
			wantErr: "choice ID 'Run-Away'",
		},
		{
			name:    "bad var name",
			file:    "bad_var.json",
			content: `{"choices": [{"id": "go", "outcome": {"set_vars": {"Door Open": "yes"}}}]}`,
			wantErr: "invalid variable name 'Door Open'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			v := &StoryletValidator{bands: casting.DefaultBands()}
			err := v.validateFile(path)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRun_ReportsWarningsAndFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "twins.json", `{
	  "roles": [
	    {"id": "First", "required": true, "relation_band": "Friend"},
	    {"id": "Second", "required": true, "relation_band": "Friend"}
	  ],
	  "choices": [{"id": "go"}]
	}`)
	bad := writeFile(t, dir, "empty.json", `{}`)

	var out bytes.Buffer
	failed := run(&out, []string{good, bad}, casting.DefaultBands(), 80)

	assert.Equal(t, 1, failed)
	assert.Contains(t, out.String(), "OK")
	assert.Contains(t, out.String(), "warning:")
	assert.Contains(t, out.String(), "Second")
	assert.Contains(t, out.String(), "FAIL")
}
