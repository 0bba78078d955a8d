package casting

import (
	"slices"
	"strings"
)

// Threshold bounds a statistic. A nil bound is unbounded on that side.
type Threshold struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Contains reports whether v lies inside the threshold window.
func (t Threshold) Contains(v float64) bool {
	if t.Min != nil && !(v >= *t.Min) {
		return false
	}
	if t.Max != nil && !(v <= *t.Max) {
		return false
	}
	return true
}

// RoleRequirement declares one role slot of a storylet.
type RoleRequirement struct {
	ID             string               `json:"id" yaml:"id"`
	Required       bool                 `json:"required,omitempty" yaml:"required,omitempty"`
	RelationBand   string               `json:"relation_band,omitempty" yaml:"relation_band,omitempty"`     // Band the candidate must currently be in
	StatThresholds map[string]Threshold `json:"stat_thresholds,omitempty" yaml:"stat_thresholds,omitempty"` // Stat name -> allowed window
}

// Constraint is one eligibility rule compiled from a RoleRequirement.
// The set of kinds is closed: BandConstraint and StatConstraint.
type Constraint interface {
	constraint()
}

// BandConstraint requires the candidate to be in a specific relationship band.
type BandConstraint struct {
	Band string
}

// StatConstraint requires a candidate statistic to lie inside a window.
type StatConstraint struct {
	Stat string
	Threshold
}

func (BandConstraint) constraint() {}
func (StatConstraint) constraint() {}

// Constraints compiles the requirement into its constraint list.
// The band constraint (if any) comes first, then stat constraints sorted by stat name.
func (r RoleRequirement) Constraints() []Constraint {
	out := make([]Constraint, 0, len(r.StatThresholds)+1)
	if band := NormalizeBand(r.RelationBand); band != "" {
		out = append(out, BandConstraint{Band: band})
	}

	stats := make([]string, 0, len(r.StatThresholds))
	for name := range r.StatThresholds {
		stats = append(stats, name)
	}
	slices.Sort(stats)
	for _, name := range stats {
		out = append(out, StatConstraint{Stat: normalizeStat(name), Threshold: r.StatThresholds[name]})
	}
	return out
}

func normalizeStat(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
