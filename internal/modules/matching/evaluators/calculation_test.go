package evaluators

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/statement-mapper/internal/modules/concepts"
	"github.com/aristath/statement-mapper/internal/modules/dictionary"
)

func TestCalculationEvaluator(t *testing.T) {
	eval := NewCalculationEvaluator(zerolog.Nop())

	assetsCurrent := &concepts.Metadata{
		QName:     "us-gaap:AssetsCurrent",
		LocalName: "AssetsCurrent",
		CalculationChildren: []concepts.CalculationChild{
			{QName: "us-gaap:Cash", Weight: 1},
			{QName: "us-gaap:ReceivablesNetCurrent", Weight: 1},
			{QName: "us-gaap:InventoryNet", Weight: 1},
		},
		CalculationParents: []concepts.CalculationParent{
			{QName: "us-gaap:Assets", Weight: 1},
		},
	}

	tests := []struct {
		name      string
		rule      dictionary.CalculationRule
		wantScore int
	}{
		{
			name:      "contributes to parent by local name",
			rule:      dictionary.CalculationRule{Kind: dictionary.CalculationContributesTo, Pattern: "Assets", Weight: 10},
			wantScore: 10,
		},
		{
			name:      "contributes to wildcard",
			rule:      dictionary.CalculationRule{Kind: dictionary.CalculationContributesTo, Pattern: "Asset*", Weight: 10},
			wantScore: 10,
		},
		{
			name:      "contributes to miss",
			rule:      dictionary.CalculationRule{Kind: dictionary.CalculationContributesTo, Pattern: "Liabilities", Weight: 10},
			wantScore: 0,
		},
		{
			name:      "parent of child pattern",
			rule:      dictionary.CalculationRule{Kind: dictionary.CalculationParentOf, Patterns: []string{"Cash*"}, Weight: 8},
			wantScore: 8,
		},
		{
			name:      "parent of single pattern field",
			rule:      dictionary.CalculationRule{Kind: dictionary.CalculationParentOf, Pattern: "Inventory*", Weight: 8},
			wantScore: 8,
		},
		{
			name: "has children meets min matches",
			rule: dictionary.CalculationRule{
				Kind:       dictionary.CalculationHasChildren,
				Patterns:   []string{"Cash*", "*Receivables*", "Inventory*"},
				MinMatches: 2,
				Weight:     12,
			},
			wantScore: 12,
		},
		{
			name: "has children below min matches",
			rule: dictionary.CalculationRule{
				Kind:       dictionary.CalculationHasChildren,
				Patterns:   []string{"Cash*", "Goodwill*"},
				MinMatches: 2,
				Weight:     12,
			},
			wantScore: 0,
		},
		{
			name:      "weight sign positive",
			rule:      dictionary.CalculationRule{Kind: dictionary.CalculationWeightSign, Pattern: "positive", Weight: 5},
			wantScore: 5,
		},
		{
			name:      "weight sign negative miss",
			rule:      dictionary.CalculationRule{Kind: dictionary.CalculationWeightSign, Pattern: "negative", Weight: 5},
			wantScore: 0,
		},
		{
			name:      "unknown kind skipped",
			rule:      dictionary.CalculationRule{Kind: dictionary.CalculationRuleKind("sums_to"), Pattern: "x", Weight: 9},
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := eval.Evaluate(assetsCurrent, []dictionary.CalculationRule{tt.rule}, nil)
			assert.Equal(t, tt.wantScore, result.Score)
			assert.Equal(t, TypeCalculation, result.EvaluatorType)
		})
	}
}

func TestCalculationEvaluatorNegativeWeight(t *testing.T) {
	eval := NewCalculationEvaluator(zerolog.Nop())

	// Treasury stock subtracts from equity.
	treasury := &concepts.Metadata{
		QName:     "us-gaap:TreasuryStockValue",
		LocalName: "TreasuryStockValue",
		CalculationParents: []concepts.CalculationParent{
			{QName: "us-gaap:StockholdersEquity", Weight: -1},
		},
	}
	rules := []dictionary.CalculationRule{
		{Kind: dictionary.CalculationWeightSign, Pattern: "negative", Weight: 6},
	}

	result := eval.Evaluate(treasury, rules, nil)
	assert.Equal(t, 6, result.Score)
}
