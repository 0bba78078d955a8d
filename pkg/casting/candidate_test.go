package casting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	in := []Candidate{
		{ActorID: " molly ", Band: "friend", Stats: map[string]float64{" Courage ": 12}},
		{ActorID: ""},
		{ActorID: "black_jack", Band: "RIVAL"},
		{ActorID: "molly", Band: "Rival"},
	}
	got := Snapshot(in)

	require.Len(t, got, 2)
	assert.Equal(t, "black_jack", got[0].ActorID)
	assert.Equal(t, "Rival", got[0].Band)
	assert.Equal(t, "molly", got[1].ActorID)
	assert.Equal(t, "Friend", got[1].Band)
	assert.Equal(t, map[string]float64{"courage": 12}, got[1].Stats)

	got[1].Stats["courage"] = 1
	assert.Equal(t, 12.0, in[0].Stats[" Courage "])
}

func TestSnapshot_CaseCollidingStats(t *testing.T) {
	cand := Candidate{ActorID: "a", Stats: map[string]float64{"Courage": 5, "courage": 50, "COURAGE": 30}}

	for range 50 {
		got := Snapshot([]Candidate{cand})
		require.Len(t, got, 1)
		assert.Equal(t, map[string]float64{"courage": 30}, got[0].Stats)
	}
}

func TestAssign_CaseCollidingStatsAreStable(t *testing.T) {
	roles := []RoleRequirement{
		{ID: "Hero", Required: true, StatThresholds: map[string]Threshold{"courage": {Min: floatPtr(10)}}},
	}
	candidates := []Candidate{
		{ActorID: "a", Stats: map[string]float64{"Courage": 5, "courage": 50, "COURAGE": 30}},
		{ActorID: "b", Stats: map[string]float64{"courage": 20}},
	}

	for range 100 {
		cast, err := Assign(roles, candidates, testKey())
		require.NoError(t, err)
		actor, ok := cast.Actor("Hero")
		require.True(t, ok)
		assert.Equal(t, "a", actor)
	}
}
