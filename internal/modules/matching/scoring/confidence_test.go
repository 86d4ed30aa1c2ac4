package scoring

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/statement-mapper/internal/domain"
	"github.com/aristath/statement-mapper/internal/modules/dictionary"
	"github.com/aristath/statement-mapper/internal/modules/matching/evaluators"
)

var testLevels = dictionary.ConfidenceLevels{High: 35, Medium: 25, Low: 15}

func TestConfidenceThresholds(t *testing.T) {
	calc := NewConfidenceCalculator(zerolog.Nop())

	// Two evaluator types so neither adjustment fires.
	twoTypes := []RuleScore{
		{RuleType: evaluators.TypeLabel, Score: 1},
		{RuleType: evaluators.TypeHierarchy, Score: 1},
	}

	tests := []struct {
		name  string
		score int
		want  domain.Confidence
	}{
		{name: "at high threshold", score: 35, want: domain.ConfidenceHigh},
		{name: "above high threshold", score: 50, want: domain.ConfidenceHigh},
		{name: "at medium threshold", score: 25, want: domain.ConfidenceMedium},
		{name: "at low threshold", score: 15, want: domain.ConfidenceLow},
		{name: "below low threshold", score: 14, want: domain.ConfidenceNone},
		{name: "zero", score: 0, want: domain.ConfidenceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Calculate(tt.score, testLevels, twoTypes)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfidenceBoostOnBroadEvidence(t *testing.T) {
	calc := NewConfidenceCalculator(zerolog.Nop())

	fourTypes := []RuleScore{
		{RuleType: evaluators.TypeLabel, Score: 10},
		{RuleType: evaluators.TypeLocalName, Score: 5},
		{RuleType: evaluators.TypeHierarchy, Score: 5},
		{RuleType: evaluators.TypeCalculation, Score: 5},
	}

	// Score 25 would be MEDIUM; four evaluator types lift it to HIGH.
	assert.Equal(t, domain.ConfidenceHigh, calc.Calculate(25, testLevels, fourTypes))

	// Already HIGH stays HIGH.
	assert.Equal(t, domain.ConfidenceHigh, calc.Calculate(40, testLevels, fourTypes))

	// LOW lifts to MEDIUM.
	assert.Equal(t, domain.ConfidenceMedium, calc.Calculate(15, testLevels, fourTypes))
}

func TestConfidenceDowngradeWhenOnlyLabelMatched(t *testing.T) {
	calc := NewConfidenceCalculator(zerolog.Nop())

	labelOnly := []RuleScore{
		{RuleType: evaluators.TypeLabel, Score: 40},
	}

	// Score 40 would be HIGH; label-only evidence drops it to MEDIUM.
	assert.Equal(t, domain.ConfidenceMedium, calc.Calculate(40, testLevels, labelOnly))

	// MEDIUM drops to LOW.
	assert.Equal(t, domain.ConfidenceLow, calc.Calculate(25, testLevels, labelOnly))

	// LOW stays LOW, never NONE.
	assert.Equal(t, domain.ConfidenceLow, calc.Calculate(15, testLevels, labelOnly))
}

func TestConfidenceSingleNonLabelEvaluatorNotDowngraded(t *testing.T) {
	calc := NewConfidenceCalculator(zerolog.Nop())

	localNameOnly := []RuleScore{
		{RuleType: evaluators.TypeLocalName, Score: 40},
	}

	assert.Equal(t, domain.ConfidenceHigh, calc.Calculate(40, testLevels, localNameOnly))
}

func TestConfidenceBelowLowNeverAdjusted(t *testing.T) {
	calc := NewConfidenceCalculator(zerolog.Nop())

	fourTypes := []RuleScore{
		{RuleType: evaluators.TypeLabel, Score: 3},
		{RuleType: evaluators.TypeLocalName, Score: 3},
		{RuleType: evaluators.TypeHierarchy, Score: 3},
		{RuleType: evaluators.TypeCalculation, Score: 3},
	}

	assert.Equal(t, domain.ConfidenceNone, calc.Calculate(12, testLevels, fourTypes))
}
