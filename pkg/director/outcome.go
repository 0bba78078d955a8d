package director

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/jwebster45206/story-director/pkg/casting"
	"github.com/jwebster45206/story-director/pkg/storylet"
	"github.com/jwebster45206/story-director/pkg/world"
)

// outcomeWorker applies a choice's outcome to a world for a given cast.
type outcomeWorker struct {
	w       *world.World
	outcome storylet.Outcome
	cast    casting.Cast
	logger  *slog.Logger
}

func newOutcomeWorker(w *world.World, outcome storylet.Outcome, cast casting.Cast, logger *slog.Logger) *outcomeWorker {
	return &outcomeWorker{w: w, outcome: outcome, cast: cast, logger: logger}
}

// applyVars copies the outcome's variables into the world.
func (ow *outcomeWorker) applyVars() {
	ow.w.SetVars(ow.outcome.SetVars)
}

// applyRelationshipShifts moves the relationship of each cast actor named by role.
// Shifts on optional roles that were left empty are skipped.
func (ow *outcomeWorker) applyRelationshipShifts() error {
	roles := make([]string, 0, len(ow.outcome.RelationshipShifts))
	for roleID := range ow.outcome.RelationshipShifts {
		roles = append(roles, roleID)
	}
	slices.Sort(roles)

	for _, roleID := range roles {
		delta := ow.outcome.RelationshipShifts[roleID]
		actorID, ok := ow.cast.Actor(roleID)
		if !ok {
			ow.logger.Debug("skipping relationship shift for uncast role", "role_id", roleID)
			continue
		}
		if err := ow.w.ShiftRelationship(actorID, delta); err != nil {
			return fmt.Errorf("failed to shift relationship for role %s: %w", roleID, err)
		}
		ow.logger.Debug("relationship shifted", "role_id", roleID, "actor_id", actorID, "delta", delta)
	}
	return nil
}

// Apply runs every outcome step and records the resolution in the world history.
func (ow *outcomeWorker) Apply(historyEntry string) error {
	ow.applyVars()
	if err := ow.applyRelationshipShifts(); err != nil {
		return err
	}
	if historyEntry != "" {
		ow.w.History = append(ow.w.History, historyEntry)
	}
	return nil
}
