package world

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinRelationship = -100
	MaxRelationship = 100
)

// NPC is a non-player character that can be cast into storylet roles.
type NPC struct {
	ID           string         `json:"id"`
	Name         string         `json:"name,omitempty"`
	Relationship int            `json:"relationship"`         // Toward the player, -100..100
	MaxHP        int            `json:"max_hp,omitempty"`     // Defaults to 1 when building the stat actor
	AC           int            `json:"ac,omitempty"`         // Defaults to 10 when building the stat actor
	Attributes   map[string]int `json:"attributes,omitempty"` // Flexible stats, e.g. "strength": 16, "courage": 12
	Absent       bool           `json:"absent,omitempty"`     // Absent NPCs are never offered as candidates
}

// DisplayName returns the NPC's name, falling back to its ID.
func (n NPC) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// World is the persistent narrative state a storylet resolves against.
type World struct {
	ID        uuid.UUID         `json:"id"`
	Seed      uint64            `json:"seed"` // Shared seed for deterministic tie-breaks
	Vars      map[string]string `json:"vars,omitempty"`
	NPCs      map[string]NPC    `json:"npcs"`
	History   []string          `json:"history,omitempty"` // Resolved "storylet/choice" pairs, oldest first
	UpdatedAt time.Time         `json:"updated_at"`
}

// New creates an empty world with the given seed. A zero seed is replaced by
// a random one so that every world has a stable, non-trivial seed.
func New(seed uint64) (*World, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	return &World{
		ID:   uuid.New(),
		Seed: seed,
		Vars: make(map[string]string),
		NPCs: make(map[string]NPC),
	}, nil
}

// NewSeed generates a random world seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// AddNPC inserts or replaces an NPC. The relationship is clamped to the valid range.
// Attribute names that differ only by case or surrounding space are rejected.
func (w *World) AddNPC(npc NPC) error {
	if strings.TrimSpace(npc.ID) == "" {
		return fmt.Errorf("npc id cannot be empty")
	}
	if w.NPCs == nil {
		w.NPCs = make(map[string]NPC)
	}
	if err := checkAttributeNames(npc.Attributes); err != nil {
		return fmt.Errorf("npc %s: %w", npc.ID, err)
	}
	npc.Relationship = clampRelationship(npc.Relationship)
	w.NPCs[npc.ID] = npc
	return nil
}

// ShiftRelationship changes an NPC's relationship toward the player, clamped to -100..100.
func (w *World) ShiftRelationship(npcID string, delta int) error {
	npc, ok := w.NPCs[npcID]
	if !ok {
		return fmt.Errorf("npc not found: %s", npcID)
	}
	npc.Relationship = clampRelationship(npc.Relationship + delta)
	w.NPCs[npcID] = npc
	return nil
}

// SetVar sets a world variable. Keys are stored in lower snake_case.
func (w *World) SetVar(key, value string) {
	if w.Vars == nil {
		w.Vars = make(map[string]string)
	}
	w.Vars[toSnakeCase(strings.ToLower(key))] = value
}

// SetVars sets each variable in key order, so keys that fold to the same
// snake_case name always resolve the same way.
func (w *World) SetVars(vars map[string]string) {
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		w.SetVar(k, vars[k])
	}
}

// Clone returns a deep copy of the world.
func (w *World) Clone() *World {
	if w == nil {
		return nil
	}
	out := *w
	out.Vars = maps.Clone(w.Vars)
	out.History = append([]string(nil), w.History...)
	out.NPCs = make(map[string]NPC, len(w.NPCs))
	for id, npc := range w.NPCs {
		npc.Attributes = maps.Clone(npc.Attributes)
		out.NPCs[id] = npc
	}
	return &out
}

func normalizeAttribute(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func checkAttributeNames(attrs map[string]int) error {
	seen := make(map[string]string, len(attrs))
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		name := normalizeAttribute(k)
		if name == "" {
			return fmt.Errorf("attribute name cannot be empty")
		}
		if first, ok := seen[name]; ok {
			return fmt.Errorf("attributes %q and %q both name %q", first, k, name)
		}
		seen[name] = k
	}
	return nil
}

// normalizedAttributes folds attribute names. When names collide, the
// lexically smallest raw name wins.
func normalizedAttributes(attrs map[string]int) map[string]int {
	out := make(map[string]int, len(attrs))
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		name := normalizeAttribute(k)
		if _, ok := out[name]; ok {
			continue
		}
		out[name] = attrs[k]
	}
	return out
}

func clampRelationship(v int) int {
	return min(max(v, MinRelationship), MaxRelationship)
}

// toSnakeCase converts a string to lower snake_case
func toSnakeCase(s string) string {
	var out strings.Builder
	prevUnderscore := false
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			r = r + ('a' - 'A')
		}
		if r == ' ' || r == '-' || r == '.' || r == '_' {
			if !prevUnderscore && i > 0 {
				out.WriteRune('_')
				prevUnderscore = true
			}
			continue
		}
		out.WriteRune(r)
		prevUnderscore = false
	}
	return out.String()
}
