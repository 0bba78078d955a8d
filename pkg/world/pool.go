package world

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/story-director/pkg/casting"
)

// PoolView is a read-only view of the world's castable NPCs.
// It works on a private clone, so later changes to the world are not observed.
type PoolView struct {
	world  *World
	bands  casting.BandTable
	ids    []string
	actors map[string]*d20.Actor
}

// Ensure PoolView implements casting.PoolView
var _ casting.PoolView = (*PoolView)(nil)

// NewPoolView snapshots the world's present NPCs and builds a stat actor for each.
func NewPoolView(w *World, bands casting.BandTable) (*PoolView, error) {
	if w == nil {
		return nil, fmt.Errorf("world cannot be nil")
	}
	if bands == nil {
		bands = casting.DefaultBands()
	}

	snapshot := w.Clone()
	v := &PoolView{
		world:  snapshot,
		bands:  bands,
		actors: make(map[string]*d20.Actor, len(snapshot.NPCs)),
	}

	for id, npc := range snapshot.NPCs {
		if npc.Absent {
			continue
		}
		actor, err := buildActor(npc)
		if err != nil {
			return nil, fmt.Errorf("failed to build stats for npc %s: %w", id, err)
		}
		v.actors[id] = actor
		v.ids = append(v.ids, id)
	}
	slices.Sort(v.ids)
	return v, nil
}

func buildActor(npc NPC) (*d20.Actor, error) {
	hp := npc.MaxHP
	if hp <= 0 {
		hp = 1
	}
	ac := npc.AC
	if ac <= 0 {
		ac = 10
	}
	return d20.NewActor(npc.ID).
		WithHP(hp).
		WithAC(ac).
		WithAttributes(normalizedAttributes(npc.Attributes)).
		Build()
}

// NPCIDs returns the castable NPC IDs in sorted order.
func (v *PoolView) NPCIDs() []string {
	return slices.Clone(v.ids)
}

// RelationshipBand returns the band the NPC's relationship currently falls in.
func (v *PoolView) RelationshipBand(npcID string) string {
	return v.bands.BandFor(v.Relationship(npcID))
}

// Relationship returns the NPC's numeric relationship toward the player.
func (v *PoolView) Relationship(npcID string) float64 {
	return float64(v.world.NPCs[npcID].Relationship)
}

// StatNames returns the NPC's stat names in sorted order.
func (v *PoolView) StatNames(npcID string) []string {
	npc, ok := v.world.NPCs[npcID]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(normalizedAttributes(npc.Attributes)))
}

// Stat returns the NPC's value for a stat.
func (v *PoolView) Stat(npcID, stat string) (float64, bool) {
	actor, ok := v.actors[npcID]
	if !ok {
		return 0, false
	}
	val, ok := actor.Attribute(normalizeAttribute(stat))
	if !ok {
		return 0, false
	}
	return float64(val), true
}

// Name returns the NPC's display name.
func (v *PoolView) Name(npcID string) string {
	return v.world.NPCs[npcID].DisplayName()
}

// Candidates returns the castable NPCs as a casting snapshot.
func (v *PoolView) Candidates() []casting.Candidate {
	return casting.CandidatesFrom(v)
}

// Names returns NPC ID -> display name for every castable NPC.
func (v *PoolView) Names() map[string]string {
	out := make(map[string]string, len(v.ids))
	for _, id := range v.ids {
		out[id] = v.Name(id)
	}
	return out
}

// CandidatePool returns the world's castable NPCs as casting candidates,
// in NPC ID order.
func (w *World) CandidatePool(bands casting.BandTable) ([]casting.Candidate, error) {
	v, err := NewPoolView(w, bands)
	if err != nil {
		return nil, err
	}
	return v.Candidates(), nil
}
