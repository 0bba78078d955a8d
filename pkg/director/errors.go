package director

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jwebster45206/story-director/pkg/casting"
)

// ErrNotFound is wrapped when the world, storylet or choice does not exist.
var ErrNotFound = errors.New("not found")

// ResolutionError reports a choice that could not go ahead because casting failed.
// Nothing was applied or published when it is returned.
type ResolutionError struct {
	StoryletID    string
	ChoiceID      string
	UnfilledRoles []string
	Err           error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve choice %q of storylet %q: %v", e.ChoiceID, e.StoryletID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Explanation is a player-facing sentence describing why the choice failed.
func (e *ResolutionError) Explanation() string {
	if errors.Is(e.Err, casting.ErrNoCandidatesAvailable) {
		return "Nobody is around to take part in this scene right now. Nothing has changed."
	}
	if len(e.UnfilledRoles) == 0 {
		return "This choice could not go ahead. Nothing has changed."
	}
	noun := "role"
	if len(e.UnfilledRoles) > 1 {
		noun = "roles"
	}
	return fmt.Sprintf("This choice could not go ahead: nobody in the world can play the %s %s. Nothing has changed.",
		noun, strings.Join(e.UnfilledRoles, ", "))
}
