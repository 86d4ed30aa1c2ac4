package evaluators

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/statement-mapper/internal/modules/concepts"
	"github.com/aristath/statement-mapper/internal/modules/dictionary"
)

// CalculationEvaluator scores rules about a concept's place in the
// calculation linkbase, where a parent equals the weighted sum of its
// children. Aggregate concepts reveal themselves through their
// children; contributors through their parents and edge signs.
type CalculationEvaluator struct {
	log zerolog.Logger
}

// NewCalculationEvaluator creates a calculation evaluator.
func NewCalculationEvaluator(log zerolog.Logger) *CalculationEvaluator {
	return &CalculationEvaluator{
		log: log.With().Str("evaluator", TypeCalculation).Logger(),
	}
}

// Evaluate runs each rule variant against the concept's calculation
// edges.
func (e *CalculationEvaluator) Evaluate(concept *concepts.Metadata, rules []dictionary.CalculationRule, idx *concepts.Index) EvaluationResult {
	result := EvaluationResult{EvaluatorType: TypeCalculation}

	for _, rule := range rules {
		matched, detail := false, ""

		switch rule.Kind {
		case dictionary.CalculationContributesTo:
			matched, detail = e.checkContributesTo(concept, rule.Pattern)
		case dictionary.CalculationParentOf:
			patterns := rule.Patterns
			if len(patterns) == 0 && rule.Pattern != "" {
				patterns = []string{rule.Pattern}
			}
			matched, detail = e.checkParentOf(concept, patterns)
		case dictionary.CalculationHasChildren:
			matched, detail = e.checkHasChildren(concept, rule.Patterns, rule.MinMatches)
		case dictionary.CalculationWeightSign:
			matched, detail = e.checkWeightSign(concept, rule.Pattern)
		default:
			e.log.Warn().Str("rule_type", string(rule.Kind)).Msg("Unknown calculation rule type")
			continue
		}

		if !matched {
			continue
		}

		result.Score += rule.Weight
		result.MatchedRules = append(result.MatchedRules, RuleMatch{
			Kind:           string(rule.Kind),
			MatchedPattern: rule.Pattern,
			Patterns:       rule.Patterns,
			Detail:         detail,
			Weight:         rule.Weight,
		})

		e.log.Debug().
			Str("qname", concept.QName).
			Str("rule_type", string(rule.Kind)).
			Int("weight", rule.Weight).
			Msg("Calculation rule matched")
	}

	return result
}

// checkContributesTo: concept is a weighted child of a parent whose
// local name or qname matches the pattern.
func (e *CalculationEvaluator) checkContributesTo(concept *concepts.Metadata, pattern string) (bool, string) {
	for _, parent := range concept.CalculationParents {
		if wildcardMatch(concepts.LocalNameOf(parent.QName), pattern) || wildcardMatch(parent.QName, pattern) {
			return true, parent.QName
		}
	}
	return false, ""
}

// checkParentOf: concept has a weighted child matching any pattern.
func (e *CalculationEvaluator) checkParentOf(concept *concepts.Metadata, patterns []string) (bool, string) {
	for _, pattern := range patterns {
		for _, child := range concept.CalculationChildren {
			if wildcardMatch(concepts.LocalNameOf(child.QName), pattern) {
				return true, child.QName
			}
		}
	}
	return false, ""
}

// checkHasChildren: at least minMatches distinct children match the
// pattern list. Totals like "Current Assets" betray themselves through
// children like Cash, Receivables, Inventory.
func (e *CalculationEvaluator) checkHasChildren(concept *concepts.Metadata, patterns []string, minMatches int) (bool, string) {
	if len(concept.CalculationChildren) == 0 {
		return false, ""
	}

	seen := make(map[string]bool)
	for _, pattern := range patterns {
		for _, child := range concept.CalculationChildren {
			if wildcardMatch(concepts.LocalNameOf(child.QName), pattern) {
				seen[child.QName] = true
			}
		}
	}

	if len(seen) >= minMatches {
		return true, fmt.Sprintf("%d of %d required children", len(seen), minMatches)
	}
	return false, ""
}

// checkWeightSign: the edge weight to some calculation parent has the
// requested sign ("positive" adds into the parent, "negative"
// subtracts).
func (e *CalculationEvaluator) checkWeightSign(concept *concepts.Metadata, pattern string) (bool, string) {
	for _, parent := range concept.CalculationParents {
		switch pattern {
		case "positive":
			if parent.Weight > 0 {
				return true, parent.QName
			}
		case "negative":
			if parent.Weight < 0 {
				return true, parent.QName
			}
		}
	}
	return false, ""
}
