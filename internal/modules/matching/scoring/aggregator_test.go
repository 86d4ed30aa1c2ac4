package scoring

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/statement-mapper/internal/domain"
	"github.com/aristath/statement-mapper/internal/modules/dictionary"
	"github.com/aristath/statement-mapper/internal/modules/matching/evaluators"
)

func testComponent(minScore int) *dictionary.ComponentDefinition {
	return &dictionary.ComponentDefinition{
		ComponentID: "current_assets",
		Scoring: dictionary.ScoringConfig{
			MinScore: minScore,
			ConfidenceLevels: dictionary.ConfidenceLevels{
				High:   35,
				Medium: 25,
				Low:    15,
			},
		},
	}
}

func TestAggregateSumsNonzeroEvaluators(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())

	results := map[string]evaluators.EvaluationResult{
		evaluators.TypeLabel: {
			Score:         20,
			MatchedRules:  []evaluators.RuleMatch{{Weight: 20}},
			EvaluatorType: evaluators.TypeLabel,
		},
		evaluators.TypeHierarchy: {
			Score:         10,
			MatchedRules:  []evaluators.RuleMatch{{Weight: 10}},
			EvaluatorType: evaluators.TypeHierarchy,
		},
		evaluators.TypeDefinition: {
			Score:         0,
			EvaluatorType: evaluators.TypeDefinition,
		},
	}

	match := agg.Aggregate("us-gaap:AssetsCurrent", results, testComponent(15))

	assert.Equal(t, "us-gaap:AssetsCurrent", match.Concept)
	assert.Equal(t, 30, match.TotalScore)
	// Zero-score evaluators are excluded from the breakdown.
	assert.Len(t, match.RuleScores, 2)
	assert.Equal(t, domain.ConfidenceMedium, match.Confidence)
}

func TestAggregateExactLocalNameFloor(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())

	results := map[string]evaluators.EvaluationResult{
		evaluators.TypeLocalName: {
			Score: 5,
			MatchedRules: []evaluators.RuleMatch{
				{MatchType: domain.MatchExact, Weight: 5},
			},
			EvaluatorType: evaluators.TypeLocalName,
		},
	}

	match := agg.Aggregate("us-gaap:AssetsCurrent", results, testComponent(15))

	// An exact local-name assertion always clears min_score.
	assert.GreaterOrEqual(t, match.TotalScore, 15)
	assert.Equal(t, 15, match.TotalScore)
}

func TestAggregateNoFloorForPartialLocalName(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())

	results := map[string]evaluators.EvaluationResult{
		evaluators.TypeLocalName: {
			Score: 5,
			MatchedRules: []evaluators.RuleMatch{
				{MatchType: domain.MatchContains, Weight: 5},
			},
			EvaluatorType: evaluators.TypeLocalName,
		},
	}

	match := agg.Aggregate("us-gaap:AssetsCurrent", results, testComponent(15))
	assert.Equal(t, 5, match.TotalScore)
}

func TestAggregateFloorLeavesHigherScoresAlone(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())

	results := map[string]evaluators.EvaluationResult{
		evaluators.TypeLocalName: {
			Score: 5,
			MatchedRules: []evaluators.RuleMatch{
				{MatchType: domain.MatchExact, Weight: 5},
			},
			EvaluatorType: evaluators.TypeLocalName,
		},
		evaluators.TypeLabel: {
			Score:         20,
			MatchedRules:  []evaluators.RuleMatch{{Weight: 20}},
			EvaluatorType: evaluators.TypeLabel,
		},
	}

	match := agg.Aggregate("us-gaap:AssetsCurrent", results, testComponent(15))
	assert.Equal(t, 25, match.TotalScore)
}

func TestAggregateDeterministicBreakdownOrder(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())

	results := map[string]evaluators.EvaluationResult{
		evaluators.TypeLocalName:   {Score: 5, EvaluatorType: evaluators.TypeLocalName},
		evaluators.TypeLabel:       {Score: 20, EvaluatorType: evaluators.TypeLabel},
		evaluators.TypeCalculation: {Score: 10, EvaluatorType: evaluators.TypeCalculation},
	}

	match := agg.Aggregate("us-gaap:Assets", results, testComponent(15))

	types := make([]string, len(match.RuleScores))
	for i, rs := range match.RuleScores {
		types[i] = rs.RuleType
	}
	assert.Equal(t, []string{"calculation", "label", "local_name"}, types)
}
