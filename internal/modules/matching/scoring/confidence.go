package scoring

import (
	"github.com/rs/zerolog"

	"github.com/aristath/statement-mapper/internal/domain"
	"github.com/aristath/statement-mapper/internal/modules/dictionary"
	"github.com/aristath/statement-mapper/internal/modules/matching/evaluators"
)

// Calibration policy. These are heuristics over the current rule
// corpus, kept as variables so a different corpus can retune them.
var (
	// BroadEvidenceEvaluators is the number of distinct evaluator
	// types that must score before confidence is boosted one level.
	BroadEvidenceEvaluators = 4

	// DowngradeLabelOnly reduces confidence one level when the label
	// evaluator was the only source of evidence. Label text is the
	// most pattern-ambiguous signal.
	DowngradeLabelOnly = true
)

// ConfidenceCalculator maps a total score and its breakdown to a
// confidence level.
type ConfidenceCalculator struct {
	log zerolog.Logger
}

// NewConfidenceCalculator creates a confidence calculator.
func NewConfidenceCalculator(log zerolog.Logger) *ConfidenceCalculator {
	return &ConfidenceCalculator{
		log: log.With().Str("component", "confidence").Logger(),
	}
}

// Calculate derives the base confidence from the component's
// thresholds, then applies the evidence adjustments. A score below
// the low threshold is NONE and never adjusted.
func (c *ConfidenceCalculator) Calculate(score int, levels dictionary.ConfidenceLevels, ruleScores []RuleScore) domain.Confidence {
	var base domain.Confidence
	switch {
	case score >= levels.High:
		base = domain.ConfidenceHigh
	case score >= levels.Medium:
		base = domain.ConfidenceMedium
	case score >= levels.Low:
		base = domain.ConfidenceLow
	default:
		return domain.ConfidenceNone
	}

	evaluatorCount := 0
	for _, rs := range ruleScores {
		if rs.Score > 0 {
			evaluatorCount++
		}
	}

	adjusted := base

	if evaluatorCount >= BroadEvidenceEvaluators {
		adjusted = boost(base)
		c.log.Debug().
			Int("evaluators", evaluatorCount).
			Msg("Confidence boosted by broad evidence")
	}

	if DowngradeLabelOnly && onlyLabelMatched(ruleScores) {
		adjusted = reduce(base)
		c.log.Debug().Msg("Confidence reduced: only label rules matched")
	}

	return adjusted
}

func onlyLabelMatched(ruleScores []RuleScore) bool {
	var types []string
	for _, rs := range ruleScores {
		if rs.Score > 0 {
			types = append(types, rs.RuleType)
		}
	}
	return len(types) == 1 && types[0] == evaluators.TypeLabel
}

func boost(c domain.Confidence) domain.Confidence {
	switch c {
	case domain.ConfidenceLow:
		return domain.ConfidenceMedium
	case domain.ConfidenceMedium:
		return domain.ConfidenceHigh
	}
	return c
}

func reduce(c domain.Confidence) domain.Confidence {
	switch c {
	case domain.ConfidenceHigh:
		return domain.ConfidenceMedium
	case domain.ConfidenceMedium:
		return domain.ConfidenceLow
	}
	return c
}
