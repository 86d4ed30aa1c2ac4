package evaluators

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/statement-mapper/internal/modules/concepts"
	"github.com/aristath/statement-mapper/internal/modules/dictionary"
)

// DefinitionEvaluator scores keyword rules against a concept's
// documentation text. Definitions are authored prose, so matching is
// case-insensitive substring search over the definition plus the
// documentation label.
type DefinitionEvaluator struct {
	log zerolog.Logger
}

// NewDefinitionEvaluator creates a definition evaluator.
func NewDefinitionEvaluator(log zerolog.Logger) *DefinitionEvaluator {
	return &DefinitionEvaluator{
		log: log.With().Str("evaluator", TypeDefinition).Logger(),
	}
}

// Evaluate checks each rule's keywords against the concept's
// definition text. AllRequired demands every keyword; otherwise a
// single keyword earns the rule's weight.
func (e *DefinitionEvaluator) Evaluate(concept *concepts.Metadata, rules []dictionary.DefinitionRule) EvaluationResult {
	result := EvaluationResult{EvaluatorType: TypeDefinition}

	text := concept.Definition
	if doc, ok := concept.Labels["documentation"]; ok && doc != concept.Definition {
		text += " " + doc
	}
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return result
	}

	for _, rule := range rules {
		if len(rule.Keywords) == 0 {
			continue
		}

		var found []string
		for _, kw := range rule.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				found = append(found, kw)
			}
		}

		matched := len(found) > 0
		if rule.AllRequired {
			matched = len(found) == len(rule.Keywords)
		}
		if !matched {
			continue
		}

		result.Score += rule.Weight
		result.MatchedRules = append(result.MatchedRules, RuleMatch{
			Kind:            "keywords",
			Keywords:        rule.Keywords,
			MatchedKeywords: found,
			Weight:          rule.Weight,
		})

		e.log.Debug().
			Str("qname", concept.QName).
			Strs("keywords", found).
			Int("weight", rule.Weight).
			Msg("Definition rule matched")
	}

	return result
}
