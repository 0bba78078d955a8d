package storylet

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jwebster45206/story-director/pkg/casting"
)

// Storylet is a self-contained narrative event with choices and, optionally,
// roles to be filled by NPCs from the world.
type Storylet struct {
	ID      string                    `json:"id" yaml:"id"`
	Title   string                    `json:"title,omitempty" yaml:"title,omitempty"`
	Prompt  string                    `json:"prompt,omitempty" yaml:"prompt,omitempty"` // Narrative text; {{RoleID}} is replaced by the cast actor
	Roles   []casting.RoleRequirement `json:"roles,omitempty" yaml:"roles,omitempty"`   // Absent roles means nothing to cast
	Choices []Choice                  `json:"choices" yaml:"choices"`
}

// Choice is one option the player can take in a storylet.
type Choice struct {
	ID      string  `json:"id" yaml:"id"`
	Text    string  `json:"text" yaml:"text"`
	Outcome Outcome `json:"outcome" yaml:"outcome,omitempty"`
}

// Outcome describes the world changes applied when a choice resolves.
type Outcome struct {
	Prompt             string            `json:"prompt,omitempty" yaml:"prompt,omitempty"`                           // Follow-up narration; supports {{RoleID}}
	SetVars            map[string]string `json:"set_vars,omitempty" yaml:"set_vars,omitempty"`                       // World variables to set
	RelationshipShifts map[string]int    `json:"relationship_shifts,omitempty" yaml:"relationship_shifts,omitempty"` // Role ID -> change to the cast actor's relationship
}

// Choice returns the choice with the given ID.
func (s *Storylet) Choice(id string) (Choice, bool) {
	for _, c := range s.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// Validate checks the storylet for authoring mistakes. Role problems are
// reported through casting.ValidateRoles; all problems are returned together.
func (s *Storylet) Validate(bands casting.BandTable) error {
	var problems []string

	if strings.TrimSpace(s.ID) == "" {
		problems = append(problems, "storylet id is empty")
	}

	if err := casting.ValidateRoles(s.Roles, bands); err != nil {
		var cfgErr *casting.ConfigError
		if errors.As(err, &cfgErr) {
			problems = append(problems, cfgErr.Problems...)
		} else {
			problems = append(problems, err.Error())
		}
	}

	declared := make(map[string]bool, len(s.Roles))
	for _, r := range s.Roles {
		declared[r.ID] = true
	}

	if len(s.Choices) == 0 {
		problems = append(problems, "storylet has no choices")
	}
	seen := make(map[string]bool, len(s.Choices))
	for i, c := range s.Choices {
		if strings.TrimSpace(c.ID) == "" {
			problems = append(problems, fmt.Sprintf("choice #%d has an empty id", i+1))
			continue
		}
		if seen[c.ID] {
			problems = append(problems, fmt.Sprintf("choice %q is declared more than once", c.ID))
		}
		seen[c.ID] = true

		roles := make([]string, 0, len(c.Outcome.RelationshipShifts))
		for roleID := range c.Outcome.RelationshipShifts {
			roles = append(roles, roleID)
		}
		sort.Strings(roles)
		for _, roleID := range roles {
			if !declared[roleID] {
				problems = append(problems, fmt.Sprintf("choice %q shifts relationship of undeclared role %q", c.ID, roleID))
			}
		}
	}

	if len(problems) > 0 {
		return &casting.ConfigError{Problems: problems}
	}
	return nil
}

// Lint returns non-fatal authoring warnings for the storylet.
func (s *Storylet) Lint() []string {
	return casting.LintRoles(s.Roles)
}

// RenderPrompt replaces {{RoleID}} placeholders with the names of the cast actors.
// Placeholders for roles that were not cast are left as they are.
func RenderPrompt(text string, cast casting.Cast, names map[string]string) string {
	if text == "" || len(cast) == 0 {
		return text
	}
	pairs := make([]string, 0, len(cast)*2)
	for _, a := range cast {
		name := a.ActorID
		if n, ok := names[a.ActorID]; ok && n != "" {
			name = n
		}
		pairs = append(pairs, "{{"+a.RoleID+"}}", name)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
