package evaluators

import (
	"github.com/rs/zerolog"

	"github.com/aristath/statement-mapper/internal/modules/concepts"
	"github.com/aristath/statement-mapper/internal/modules/dictionary"
)

// LabelEvaluator scores label rules against every label a concept
// carries (standard, terse, verbose, documentation, negated). Labels
// are the most direct signal of a concept's meaning, so label rules
// usually carry the highest weights.
type LabelEvaluator struct {
	log zerolog.Logger
}

// NewLabelEvaluator creates a label evaluator.
func NewLabelEvaluator(log zerolog.Logger) *LabelEvaluator {
	return &LabelEvaluator{
		log: log.With().Str("evaluator", TypeLabel).Logger(),
	}
}

// Evaluate awards each rule's full weight once if any of its patterns
// matches any label; non-matching rules contribute zero.
func (e *LabelEvaluator) Evaluate(concept *concepts.Metadata, rules []dictionary.LabelRule) EvaluationResult {
	result := EvaluationResult{EvaluatorType: TypeLabel}
	if len(concept.Labels) == 0 {
		return result
	}

	for _, rule := range rules {
		match, found := e.findMatch(concept, rule)
		if !found {
			continue
		}

		result.Score += rule.Weight
		result.MatchedRules = append(result.MatchedRules, match)

		e.log.Debug().
			Str("qname", concept.QName).
			Str("pattern", match.MatchedPattern).
			Str("label", match.MatchedLabel).
			Int("weight", rule.Weight).
			Msg("Label rule matched")
	}

	return result
}

func (e *LabelEvaluator) findMatch(concept *concepts.Metadata, rule dictionary.LabelRule) (RuleMatch, bool) {
	for labelType, labelText := range concept.Labels {
		if labelText == "" {
			continue
		}
		for _, pattern := range rule.Patterns {
			if matchText(labelText, pattern, rule.MatchType, rule.CaseSensitive) {
				return RuleMatch{
					Patterns:       rule.Patterns,
					MatchedPattern: pattern,
					MatchType:      rule.MatchType,
					MatchedLabel:   labelText,
					LabelType:      labelType,
					Weight:         rule.Weight,
				}, true
			}
		}
	}
	return RuleMatch{}, false
}
