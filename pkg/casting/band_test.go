package casting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBand(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Rival", "Rival"},
		{"rival", "Rival"},
		{"  RIVAL ", "Rival"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBand(tt.in))
		})
	}
}

func TestBandTable_BandFor(t *testing.T) {
	bands := DefaultBands()
	tests := []struct {
		rel  float64
		want string
	}{
		{-100, "Nemesis"},
		{-60, "Rival"},
		{0, "Stranger"},
		{25, "Acquaintance"},
		{41, "Friend"},
		{100, "Confidant"},
		{150, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bands.BandFor(tt.rel), "relationship %v", tt.rel)
	}
}

func TestBandTable_Fit(t *testing.T) {
	bands := DefaultBands()

	fit, ok := bands.Fit("friend", 75)
	assert.True(t, ok)
	assert.Equal(t, 1.0, fit)

	edge, _ := bands.Fit("Friend", 41)
	mid, _ := bands.Fit("Friend", 58)
	assert.Less(t, edge, mid)
	assert.GreaterOrEqual(t, edge, 0.0)

	_, ok = bands.Fit("Mentor", 10)
	assert.False(t, ok)

	point := BandTable{{Name: "Fixed", Min: 5, Max: 5, Anchor: 5}}
	fit, ok = point.Fit("Fixed", 5)
	assert.True(t, ok)
	assert.Equal(t, 1.0, fit)
}

func TestBandTable_Validate(t *testing.T) {
	assert.NoError(t, DefaultBands().Validate())

	tests := []struct {
		name  string
		table BandTable
		want  string
	}{
		{"empty", BandTable{}, "band table is empty"},
		{"unnamed", BandTable{{Name: " ", Min: 0, Max: 1, Anchor: 0}}, "name is empty"},
		{"duplicate", BandTable{{Name: "Ally", Max: 10}, {Name: "ally", Max: 10}}, "declared more than once"},
		{"inverted", BandTable{{Name: "Ally", Min: 10, Max: 0}}, "min 10 is greater than max 0"},
		{"anchor outside", BandTable{{Name: "Ally", Min: 0, Max: 10, Anchor: 20}}, "anchor 20 is outside"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			var cfgErr *ConfigError
			if assert.ErrorAs(t, err, &cfgErr) {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}
