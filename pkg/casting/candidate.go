package casting

import (
	"maps"
	"slices"
	"strings"
)

// Candidate is a read-only snapshot of one NPC at the moment of resolution.
type Candidate struct {
	ActorID      string             `json:"actor_id"`
	Band         string             `json:"band"`                   // Current relationship band toward the player
	Relationship float64            `json:"relationship,omitempty"` // Numeric relationship value behind the band
	Stats        map[string]float64 `json:"stats,omitempty"`
}

// PoolView is the minimal read-only view of world state needed to build candidates.
// This keeps the casting package free of any dependency on world storage.
type PoolView interface {
	NPCIDs() []string
	RelationshipBand(npcID string) string
	Relationship(npcID string) float64
	StatNames(npcID string) []string
	Stat(npcID, stat string) (float64, bool)
}

// CandidatesFrom reads every NPC exposed by the view into a candidate snapshot.
func CandidatesFrom(view PoolView) []Candidate {
	ids := view.NPCIDs()
	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		c := Candidate{
			ActorID:      id,
			Band:         view.RelationshipBand(id),
			Relationship: view.Relationship(id),
		}
		for _, stat := range view.StatNames(id) {
			v, ok := view.Stat(id, stat)
			if !ok {
				continue
			}
			if c.Stats == nil {
				c.Stats = make(map[string]float64)
			}
			c.Stats[stat] = v
		}
		out = append(out, c)
	}
	return Snapshot(out)
}

// Snapshot returns a defensive copy of the candidates, normalised and sorted by actor ID.
// Entries with an empty actor ID are dropped; duplicate actor IDs keep their first entry.
// Stat names that fold to the same normalised name keep the value of the
// lexically smallest raw name.
func Snapshot(candidates []Candidate) []Candidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		id := strings.TrimSpace(c.ActorID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		cp := Candidate{
			ActorID:      id,
			Band:         NormalizeBand(c.Band),
			Relationship: c.Relationship,
		}
		if len(c.Stats) > 0 {
			cp.Stats = normalizeStats(c.Stats)
		}
		out = append(out, cp)
	}
	slices.SortFunc(out, func(a, b Candidate) int {
		return strings.Compare(a.ActorID, b.ActorID)
	})
	return out
}

func normalizeStats(stats map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(stats))
	for _, k := range slices.Sorted(maps.Keys(stats)) {
		name := normalizeStat(k)
		if _, ok := out[name]; ok {
			continue
		}
		out[name] = stats[k]
	}
	return out
}
