package casting

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
)

const tieBreakDomain = "casting-tiebreak-v1"

// Key identifies one resolution attempt for tie-breaking purposes.
type Key struct {
	WorldSeed  uint64
	StoryletID string
	ChoiceID   string
}

// TieBreaker resolves exact score ties deterministically.
//
// # Determinism
//
// A TieBreaker is derived only from its Key. Pick keeps no stream state
// between calls: each pick seeds a fresh PCG generator from the key and the
// role ID, so the result does not depend on how many ties were broken before
// it or on which goroutine asks. Construct one per resolution call.
type TieBreaker struct {
	key  Key
	seed uint64
}

// NewTieBreaker derives a tie breaker from the composite resolution key.
func NewTieBreaker(key Key) *TieBreaker {
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], key.WorldSeed)

	h := fnv.New64a()
	_, _ = h.Write([]byte(tieBreakDomain))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(seed[:])
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(key.StoryletID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(key.ChoiceID))

	return &TieBreaker{key: key, seed: h.Sum64()}
}

// Key returns the key the tie breaker was derived from.
func (tb *TieBreaker) Key() Key {
	return tb.key
}

// Pick chooses one actor from an ordered list of tied actors for the role.
// The caller owns the ordering; the same key, role and list always yield the same pick.
func (tb *TieBreaker) Pick(roleID string, tied []string) string {
	switch len(tied) {
	case 0:
		return ""
	case 1:
		return tied[0]
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(roleID))
	rng := rand.New(rand.NewPCG(tb.seed, h.Sum64()))

	// Uint64 rather than IntN so the pick depends only on the PCG output.
	return tied[rng.Uint64()%uint64(len(tied))]
}
