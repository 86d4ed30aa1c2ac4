package dictionary

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

var validHierarchyKinds = map[HierarchyRuleKind]bool{
	HierarchyParentMatches:   true,
	HierarchyChildOfRoot:     true,
	HierarchyHasSiblings:     true,
	HierarchyDepthLevel:      true,
	HierarchyPositionOrdinal: true,
}

var validCalculationKinds = map[CalculationRuleKind]bool{
	CalculationContributesTo: true,
	CalculationParentOf:      true,
	CalculationHasChildren:   true,
	CalculationWeightSign:    true,
}

var structValidator = validator.New()

// ValidateAll runs the one-time configuration check over a component
// table. It returns one message per defect; a component that appears
// in any message must not be run against a filing.
//
// Checks: struct-level constraints (weight ranges, required fields),
// min_score reachability, confidence threshold ordering, rule kinds,
// and composite / relationship references to unknown components.
func ValidateAll(components map[string]*ComponentDefinition) []string {
	var errs []string
	for _, id := range sortedIDs(components) {
		errs = append(errs, validateComponent(id, components[id], components)...)
	}
	return errs
}

// InvalidComponents returns the ids of components that failed
// validation, so the coordinator can exclude them from resolution.
func InvalidComponents(components map[string]*ComponentDefinition) map[string]bool {
	invalid := make(map[string]bool)
	for id, c := range components {
		if len(validateComponent(id, c, components)) > 0 {
			invalid[id] = true
		}
	}
	return invalid
}

func validateComponent(id string, c *ComponentDefinition, components map[string]*ComponentDefinition) []string {
	var errs []string

	if err := structValidator.Struct(c); err != nil {
		errs = append(errs, fmt.Sprintf("%s: %v", id, err))
	}

	if max := c.MaxPossibleScore(); max < c.Scoring.MinScore {
		errs = append(errs, fmt.Sprintf(
			"%s: min_score (%d) exceeds max possible score (%d)",
			id, c.Scoring.MinScore, max))
	}

	cl := c.Scoring.ConfidenceLevels
	if !(cl.High > cl.Medium && cl.Medium >= cl.Low) {
		errs = append(errs, fmt.Sprintf(
			"%s: confidence levels not ordered (high=%d medium=%d low=%d)",
			id, cl.High, cl.Medium, cl.Low))
	}

	for _, r := range c.MatchingRules.HierarchyRules {
		if !validHierarchyKinds[r.Kind] {
			errs = append(errs, fmt.Sprintf(
				"%s: unknown hierarchy rule type %q", id, r.Kind))
		}
	}
	for _, r := range c.MatchingRules.CalculationRules {
		if !validCalculationKinds[r.Kind] {
			errs = append(errs, fmt.Sprintf(
				"%s: unknown calculation rule type %q", id, r.Kind))
		}
	}

	if c.IsComposite() {
		for _, childID := range c.Composition.Components {
			if _, ok := components[childID]; !ok && childID != id {
				errs = append(errs, fmt.Sprintf(
					"%s: formula references unknown component %q", id, childID))
			}
		}
		for _, alt := range c.Composition.Alternatives {
			for _, childID := range alt.Components {
				if _, ok := components[childID]; !ok && childID != id {
					errs = append(errs, fmt.Sprintf(
						"%s: alternative formula references unknown component %q", id, childID))
				}
			}
		}
	}

	for _, rel := range c.Validation.Relationships {
		if _, ok := components[rel.Other]; !ok {
			errs = append(errs, fmt.Sprintf(
				"%s: validation references unknown component %q", id, rel.Other))
		}
	}

	return errs
}

func sortedIDs(components map[string]*ComponentDefinition) []string {
	ids := make([]string, 0, len(components))
	for id := range components {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
