package casting

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRequiredRoleUnfillable is matched by every RequiredRoleUnfillableError.
	ErrRequiredRoleUnfillable = errors.New("required role unfillable")

	// ErrNoCandidatesAvailable is matched when casting failed against an empty pool.
	ErrNoCandidatesAvailable = errors.New("no candidates available")
)

// RequiredRoleUnfillableError reports every mandatory role that had no
// eligible, unclaimed candidate during one resolution.
type RequiredRoleUnfillableError struct {
	RoleIDs   []string // In role declaration order
	EmptyPool bool     // True when the candidate pool itself was empty
}

func (e *RequiredRoleUnfillableError) Error() string {
	msg := fmt.Sprintf("required roles could not be cast: %s", strings.Join(e.RoleIDs, ", "))
	if e.EmptyPool {
		msg += " (" + ErrNoCandidatesAvailable.Error() + ")"
	}
	return msg
}

// Is lets callers match the error with errors.Is.
func (e *RequiredRoleUnfillableError) Is(target error) bool {
	switch target {
	case ErrRequiredRoleUnfillable:
		return true
	case ErrNoCandidatesAvailable:
		return e.EmptyPool
	}
	return false
}

// UnfilledRoles extracts the unfillable role IDs from err, if it is a casting failure.
func UnfilledRoles(err error) []string {
	var unfillable *RequiredRoleUnfillableError
	if errors.As(err, &unfillable) {
		return unfillable.RoleIDs
	}
	return nil
}

// ConfigError reports malformed role declarations found when a storylet is loaded.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid role configuration:\n  - " + strings.Join(e.Problems, "\n  - ")
}
