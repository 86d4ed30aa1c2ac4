package evaluators

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/statement-mapper/internal/domain"
	"github.com/aristath/statement-mapper/internal/modules/concepts"
	"github.com/aristath/statement-mapper/internal/modules/dictionary"
)

// LocalNameEvaluator scores patterns against the concept's CamelCase
// local name. The local name is present for every concept regardless
// of market, taxonomy version, or label language, which makes it the
// most robust signal the rule set has.
type LocalNameEvaluator struct {
	log zerolog.Logger
}

// NewLocalNameEvaluator creates a local-name evaluator.
func NewLocalNameEvaluator(log zerolog.Logger) *LocalNameEvaluator {
	return &LocalNameEvaluator{
		log: log.With().Str("evaluator", TypeLocalName).Logger(),
	}
}

// Evaluate awards each rule's weight once if any pattern matches the
// local name.
func (e *LocalNameEvaluator) Evaluate(concept *concepts.Metadata, rules []dictionary.LocalNameRule) EvaluationResult {
	result := EvaluationResult{EvaluatorType: TypeLocalName}
	if concept.LocalName == "" {
		return result
	}

	for _, rule := range rules {
		matchedPattern, found := "", false
		for _, pattern := range rule.Patterns {
			if matchLocalName(concept.LocalName, pattern, rule.MatchType, rule.CaseSensitive) {
				matchedPattern, found = pattern, true
				break
			}
		}
		if !found {
			continue
		}

		result.Score += rule.Weight
		result.MatchedRules = append(result.MatchedRules, RuleMatch{
			Patterns:       rule.Patterns,
			MatchedPattern: matchedPattern,
			MatchType:      rule.MatchType,
			Detail:         concept.LocalName,
			Weight:         rule.Weight,
		})

		e.log.Debug().
			Str("qname", concept.QName).
			Str("pattern", matchedPattern).
			Int("weight", rule.Weight).
			Msg("Local name rule matched")
	}

	return result
}

// matchLocalName compares against the raw local name. Exact matches
// skip normalization: CamelCase identifiers contain no punctuation and
// an exact assertion should stay exact.
func matchLocalName(localName, pattern string, matchType domain.MatchType, caseSensitive bool) bool {
	if matchType == domain.MatchExact {
		if caseSensitive {
			return localName == pattern
		}
		return strings.EqualFold(localName, pattern)
	}
	return matchText(localName, pattern, matchType, caseSensitive)
}
