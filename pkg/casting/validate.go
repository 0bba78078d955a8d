package casting

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateRoles checks role declarations at load time. Every problem found is
// reported in a single *ConfigError. A nil band table skips band name checks.
func ValidateRoles(roles []RoleRequirement, bands BandTable) error {
	var problems []string
	seen := make(map[string]bool, len(roles))

	for i, role := range roles {
		id := strings.TrimSpace(role.ID)
		if id == "" {
			problems = append(problems, fmt.Sprintf("role #%d has an empty id", i+1))
		} else if seen[id] {
			problems = append(problems, fmt.Sprintf("role %q is declared more than once", id))
		}
		seen[id] = true

		if role.RelationBand != "" && bands != nil && !bands.Has(role.RelationBand) {
			problems = append(problems, fmt.Sprintf("role %q uses unknown relation band %q", id, role.RelationBand))
		}

		stats := make([]string, 0, len(role.StatThresholds))
		for name := range role.StatThresholds {
			stats = append(stats, name)
		}
		slices.Sort(stats)
		statSeen := make(map[string]string, len(stats))
		for _, name := range stats {
			t := role.StatThresholds[name]
			norm := normalizeStat(name)
			if norm == "" {
				problems = append(problems, fmt.Sprintf("role %q has a stat threshold with an empty name", id))
				continue
			}
			if first, ok := statSeen[norm]; ok {
				problems = append(problems, fmt.Sprintf("role %q stat %q is declared more than once after normalisation (%q and %q)", id, norm, first, name))
				continue
			}
			statSeen[norm] = name
			if t.Min != nil && t.Max != nil && *t.Min > *t.Max {
				problems = append(problems, fmt.Sprintf("role %q stat %q has min %g greater than max %g", id, name, *t.Min, *t.Max))
			}
		}
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

// LintRoles returns authoring warnings that are not errors. It flags a required
// role whose constraints are identical to an earlier required role: the earlier
// role is cast first and may claim the only candidate both could take.
func LintRoles(roles []RoleRequirement) []string {
	var warnings []string
	earlier := make(map[string]string)

	for _, role := range roles {
		if !role.Required {
			continue
		}
		sig := constraintSignature(role)
		if first, ok := earlier[sig]; ok {
			warnings = append(warnings, fmt.Sprintf(
				"required role %q has the same constraints as earlier required role %q; %q is cast first and may claim the only eligible candidate",
				role.ID, first, first))
			continue
		}
		earlier[sig] = role.ID
	}
	return warnings
}

func constraintSignature(role RoleRequirement) string {
	var b strings.Builder
	for _, con := range role.Constraints() {
		switch con := con.(type) {
		case BandConstraint:
			fmt.Fprintf(&b, "band=%s;", con.Band)
		case StatConstraint:
			fmt.Fprintf(&b, "stat=%s[%s,%s];", con.Stat, boundString(con.Min), boundString(con.Max))
		}
	}
	return b.String()
}

func boundString(v *float64) string {
	if v == nil {
		return "*"
	}
	return fmt.Sprintf("%g", *v)
}
