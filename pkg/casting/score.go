package casting

import "math"

// Weights tunes the candidate scoring function.
type Weights struct {
	Band        float64 `json:"band"`         // Weight of the relationship compatibility term
	Margin      float64 `json:"margin"`       // Weight of the mean stat margin term
	MarginScale float64 `json:"margin_scale"` // Distance at which a one-sided margin reaches 0.5
}

// DefaultWeights returns the weights used when none are configured.
func DefaultWeights() Weights {
	return Weights{Band: 1, Margin: 0.5, MarginScale: 10}
}

// Scorer computes how well a candidate suits a role. It holds no mutable state.
type Scorer struct {
	Bands   BandTable
	Weights Weights
}

// NewScorer creates a scorer. A nil band table falls back to DefaultBands.
func NewScorer(bands BandTable, weights Weights) *Scorer {
	if bands == nil {
		bands = DefaultBands()
	}
	return &Scorer{Bands: bands, Weights: weights}
}

// DefaultScorer returns a scorer with the default bands and weights.
func DefaultScorer() *Scorer {
	return NewScorer(DefaultBands(), DefaultWeights())
}

// Score returns the suitability of the candidate for the role.
// The second return value is false when the candidate cannot fill the role at all.
//
// Score is a pure function: it never draws randomness, and for a given
// requirement and candidate it always returns the same value. Stat constraints
// are summed in stat-name order and every product is explicitly rounded to
// float64, so no platform may fuse a multiply-add and change the last bit.
func (s *Scorer) Score(req RoleRequirement, c Candidate) (float64, bool) {
	base := 1.0
	var marginSum float64
	margins := 0

	for _, con := range req.Constraints() {
		switch con := con.(type) {
		case BandConstraint:
			if NormalizeBand(c.Band) != con.Band {
				return 0, false
			}
			fit, ok := s.Bands.Fit(con.Band, c.Relationship)
			if !ok {
				fit = 0.5
			}
			base = 1 + fit
		case StatConstraint:
			v, ok := c.Stats[con.Stat]
			if !ok || !con.Contains(v) {
				return 0, false
			}
			marginSum = float64(marginSum + s.margin(con, v))
			margins++
		default:
			return 0, false
		}
	}

	score := float64(s.Weights.Band * base)
	if margins > 0 {
		mean := float64(marginSum / float64(margins))
		score = float64(score + float64(s.Weights.Margin*mean))
	}
	return score, true
}

// margin reports how far inside its window v sits, normalised to [0, 1].
func (s *Scorer) margin(con StatConstraint, v float64) float64 {
	switch {
	case con.Min != nil && con.Max != nil:
		half := (*con.Max - *con.Min) / 2
		if half <= 0 {
			return 1
		}
		return clamp01(math.Min(v-*con.Min, *con.Max-v) / half)
	case con.Min != nil:
		return s.saturate(v - *con.Min)
	case con.Max != nil:
		return s.saturate(*con.Max - v)
	default:
		return 1
	}
}

// saturate maps a non-negative distance onto [0, 1).
func (s *Scorer) saturate(d float64) float64 {
	if s.Weights.MarginScale <= 0 {
		return 1
	}
	if !(d > 0) {
		return 0
	}
	return d / (d + s.Weights.MarginScale)
}
