package casting

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Band is a named tier of relationship closeness between an NPC and the player.
// Relationship values run from -100 (sworn enemy) to 100 (closest confidant).
type Band struct {
	Name   string  `json:"name" yaml:"name"`
	Min    float64 `json:"min" yaml:"min"`       // Inclusive lower bound of the tier
	Max    float64 `json:"max" yaml:"max"`       // Inclusive upper bound of the tier
	Anchor float64 `json:"anchor" yaml:"anchor"` // Value that most strongly embodies the tier
}

// BandTable is an ordered set of relationship bands, weakest to strongest.
type BandTable []Band

// DefaultBands returns the band table used when none is configured.
func DefaultBands() BandTable {
	return BandTable{
		{Name: "Nemesis", Min: -100, Max: -76, Anchor: -100},
		{Name: "Rival", Min: -75, Max: -26, Anchor: -75},
		{Name: "Stranger", Min: -25, Max: 10, Anchor: 0},
		{Name: "Acquaintance", Min: 11, Max: 40, Anchor: 25},
		{Name: "Friend", Min: 41, Max: 75, Anchor: 75},
		{Name: "Confidant", Min: 76, Max: 100, Anchor: 100},
	}
}

// NormalizeBand canonicalises a band name so "rival", " RIVAL " and "Rival" compare equal.
func NormalizeBand(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	// Casers are stateful, so one is built per call.
	return cases.Title(language.English).String(name)
}

// Lookup returns the band with the given name.
func (t BandTable) Lookup(name string) (Band, bool) {
	name = NormalizeBand(name)
	for _, b := range t {
		if NormalizeBand(b.Name) == name {
			return b, true
		}
	}
	return Band{}, false
}

// Has reports whether the table declares a band with the given name.
func (t BandTable) Has(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// BandFor returns the name of the band containing the relationship value,
// or "" when no band covers it.
func (t BandTable) BandFor(relationship float64) string {
	for _, b := range t {
		if relationship >= b.Min && relationship <= b.Max {
			return NormalizeBand(b.Name)
		}
	}
	return ""
}

// Fit measures how strongly a relationship value embodies the named band,
// from 0 (at the far edge of the tier) to 1 (at its anchor).
// The second return value is false when the band is not in the table.
func (t BandTable) Fit(name string, relationship float64) (float64, bool) {
	b, ok := t.Lookup(name)
	if !ok {
		return 0, false
	}
	span := math.Max(b.Anchor-b.Min, b.Max-b.Anchor)
	if span <= 0 {
		return 1, true
	}
	return clamp01(1 - math.Abs(relationship-b.Anchor)/span), true
}

// clamp01 limits v to [0, 1]. NaN maps to 0.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Validate checks that every band is named once and that its anchor lies
// inside its own bounds. Problems are reported together in a *ConfigError.
func (t BandTable) Validate() error {
	if len(t) == 0 {
		return &ConfigError{Problems: []string{"band table is empty"}}
	}
	var problems []string
	seen := make(map[string]bool, len(t))
	for i, b := range t {
		name := NormalizeBand(b.Name)
		switch {
		case name == "":
			problems = append(problems, fmt.Sprintf("band %d: name is empty", i))
		case seen[name]:
			problems = append(problems, fmt.Sprintf("band %q: declared more than once", name))
		}
		seen[name] = true
		if b.Min > b.Max {
			problems = append(problems, fmt.Sprintf("band %q: min %g is greater than max %g", name, b.Min, b.Max))
		} else if b.Anchor < b.Min || b.Anchor > b.Max {
			problems = append(problems, fmt.Sprintf("band %q: anchor %g is outside [%g, %g]", name, b.Anchor, b.Min, b.Max))
		}
	}
	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}
