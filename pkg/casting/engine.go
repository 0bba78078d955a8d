package casting

import "slices"

// RoleAssignment records which actor won a role and with what score.
type RoleAssignment struct {
	RoleID  string  `json:"role_id"`
	ActorID string  `json:"actor_id"`
	Score   float64 `json:"score"`
}

// Cast is the ordered set of assignments produced by one resolution.
// Unfilled optional roles are absent.
type Cast []RoleAssignment

// Actor returns the actor cast in the role.
func (c Cast) Actor(roleID string) (string, bool) {
	for _, a := range c {
		if a.RoleID == roleID {
			return a.ActorID, true
		}
	}
	return "", false
}

// ByRole returns the cast as a role ID -> actor ID map.
func (c Cast) ByRole() map[string]string {
	out := make(map[string]string, len(c))
	for _, a := range c {
		out[a.RoleID] = a.ActorID
	}
	return out
}

// Engine assigns pool actors to storylet roles.
type Engine struct {
	scorer *Scorer
}

// NewEngine creates an engine. A nil scorer falls back to DefaultScorer.
func NewEngine(scorer *Scorer) *Engine {
	if scorer == nil {
		scorer = DefaultScorer()
	}
	return &Engine{scorer: scorer}
}

// Assign casts the roles from the candidate pool using the default scorer.
func Assign(roles []RoleRequirement, candidates []Candidate, tb *TieBreaker) (Cast, error) {
	return NewEngine(nil).Assign(roles, candidates, tb)
}

// Assign casts roles greedily in declaration order. Each role takes the
// highest-scoring eligible candidate not already claimed by an earlier role;
// exact ties go to the tie breaker, keyed by role ID.
//
// If any required role cannot be filled, Assign keeps going so that the
// returned *RequiredRoleUnfillableError names every such role, and no
// partial cast is returned. Optional roles without a candidate are skipped.
// The candidate slice is copied and never modified.
func (e *Engine) Assign(roles []RoleRequirement, candidates []Candidate, tb *TieBreaker) (Cast, error) {
	if tb == nil {
		tb = NewTieBreaker(Key{})
	}
	pool := Snapshot(candidates)

	claimed := make(map[string]bool, len(roles))
	cast := make(Cast, 0, len(roles))
	var unfilled []string

	for _, role := range roles {
		assignment, ok := e.castRole(role, pool, claimed, tb)
		if !ok {
			if role.Required {
				unfilled = append(unfilled, role.ID)
			}
			continue
		}
		claimed[assignment.ActorID] = true
		cast = append(cast, assignment)
	}

	if len(unfilled) > 0 {
		return nil, &RequiredRoleUnfillableError{RoleIDs: unfilled, EmptyPool: len(pool) == 0}
	}
	return cast, nil
}

// castRole finds the winning candidate for a single role.
func (e *Engine) castRole(role RoleRequirement, pool []Candidate, claimed map[string]bool, tb *TieBreaker) (RoleAssignment, bool) {
	var top float64
	var tied []string

	for _, c := range pool {
		if claimed[c.ActorID] {
			continue
		}
		score, ok := e.scorer.Score(role, c)
		if !ok {
			continue
		}
		switch {
		case len(tied) == 0 || score > top:
			top = score
			tied = append(tied[:0], c.ActorID)
		case score == top:
			tied = append(tied, c.ActorID)
		}
	}

	if len(tied) == 0 {
		return RoleAssignment{}, false
	}
	slices.Sort(tied)
	return RoleAssignment{
		RoleID:  role.ID,
		ActorID: tb.Pick(role.ID, tied),
		Score:   top,
	}, true
}
