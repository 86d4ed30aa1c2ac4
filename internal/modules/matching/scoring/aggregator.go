package scoring

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/statement-mapper/internal/domain"
	"github.com/aristath/statement-mapper/internal/modules/dictionary"
	"github.com/aristath/statement-mapper/internal/modules/matching/evaluators"
)

// ExactNameFloorEnabled controls the score floor for exact local-name
// matches. An exact local-name rule is the dictionary explicitly
// naming a concept, so its score is raised to min_score even when
// hierarchy and calculation evaluators found nothing (linkbase
// richness varies across taxonomies). Tunable policy, not an
// invariant.
var ExactNameFloorEnabled = true

// Aggregator combines per-evaluator results into a ScoredMatch.
type Aggregator struct {
	log        zerolog.Logger
	confidence *ConfidenceCalculator
}

// NewAggregator creates a score aggregator.
func NewAggregator(log zerolog.Logger) *Aggregator {
	return &Aggregator{
		log:        log.With().Str("component", "aggregator").Logger(),
		confidence: NewConfidenceCalculator(log),
	}
}

// Aggregate sums the nonzero evaluator scores for one candidate and
// attaches a calibrated confidence. Evaluator types are visited in
// sorted order so the breakdown slice is deterministic.
func (a *Aggregator) Aggregate(conceptQName string, results map[string]evaluators.EvaluationResult, comp *dictionary.ComponentDefinition) ScoredMatch {
	types := make([]string, 0, len(results))
	for t := range results {
		types = append(types, t)
	}
	sort.Strings(types)

	totalScore := 0
	var ruleScores []RuleScore
	hasExactLocalName := false

	for _, t := range types {
		result := results[t]
		if result.Score <= 0 {
			continue
		}
		totalScore += result.Score
		ruleScores = append(ruleScores, RuleScore{
			RuleType:     t,
			Score:        result.Score,
			MatchedRules: result.MatchedRules,
		})
		if t == evaluators.TypeLocalName {
			for _, mr := range result.MatchedRules {
				if mr.MatchType == domain.MatchExact {
					hasExactLocalName = true
				}
			}
		}
	}

	minScore := comp.Scoring.MinScore
	if ExactNameFloorEnabled && hasExactLocalName && totalScore < minScore {
		a.log.Debug().
			Str("concept", conceptQName).
			Int("raw_score", totalScore).
			Int("floored_to", minScore).
			Msg("Exact local name match floored to min score")
		totalScore = minScore
	}

	confidence := a.confidence.Calculate(totalScore, comp.Scoring.ConfidenceLevels, ruleScores)

	return ScoredMatch{
		Concept:    conceptQName,
		TotalScore: totalScore,
		RuleScores: ruleScores,
		Confidence: confidence,
	}
}
