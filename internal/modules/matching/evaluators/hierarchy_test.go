package evaluators

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/statement-mapper/internal/modules/concepts"
	"github.com/aristath/statement-mapper/internal/modules/dictionary"
)

func hierarchyFixture() (*concepts.Index, *concepts.Metadata) {
	parent := &concepts.Metadata{
		QName:             "us-gaap:AssetsAbstract",
		LocalName:         "AssetsAbstract",
		PresentationLevel: 0,
	}
	assets := &concepts.Metadata{
		QName:              "us-gaap:AssetsCurrent",
		LocalName:          "AssetsCurrent",
		PresentationParent: "us-gaap:AssetsAbstract",
		PresentationLevel:  1,
		PresentationOrder:  1,
	}
	noncurrent := &concepts.Metadata{
		QName:              "us-gaap:AssetsNoncurrent",
		LocalName:          "AssetsNoncurrent",
		PresentationParent: "us-gaap:AssetsAbstract",
		PresentationLevel:  1,
		PresentationOrder:  2,
	}
	cash := &concepts.Metadata{
		QName:              "us-gaap:Cash",
		LocalName:          "Cash",
		PresentationParent: "us-gaap:AssetsCurrent",
		PresentationLevel:  3,
		PresentationOrder:  1,
	}
	idx := concepts.BuildIndex([]*concepts.Metadata{parent, assets, noncurrent, cash})
	return idx, assets
}

func TestHierarchyEvaluator(t *testing.T) {
	eval := NewHierarchyEvaluator(zerolog.Nop())
	idx, assets := hierarchyFixture()

	tests := []struct {
		name      string
		rule      dictionary.HierarchyRule
		wantScore int
	}{
		{
			name:      "parent matches by local name wildcard",
			rule:      dictionary.HierarchyRule{Kind: dictionary.HierarchyParentMatches, Pattern: "Assets*", Weight: 10},
			wantScore: 10,
		},
		{
			name:      "parent matches full qname",
			rule:      dictionary.HierarchyRule{Kind: dictionary.HierarchyParentMatches, Pattern: "us-gaap:AssetsAbstract", Weight: 10},
			wantScore: 10,
		},
		{
			name:      "parent miss",
			rule:      dictionary.HierarchyRule{Kind: dictionary.HierarchyParentMatches, Pattern: "Liabilities*", Weight: 10},
			wantScore: 0,
		},
		{
			name:      "child of root",
			rule:      dictionary.HierarchyRule{Kind: dictionary.HierarchyChildOfRoot, Weight: 8},
			wantScore: 8,
		},
		{
			name:      "has siblings via index lookup",
			rule:      dictionary.HierarchyRule{Kind: dictionary.HierarchyHasSiblings, Pattern: "*Noncurrent", Weight: 6},
			wantScore: 6,
		},
		{
			name:      "depth level numeric",
			rule:      dictionary.HierarchyRule{Kind: dictionary.HierarchyDepthLevel, Pattern: "1", Weight: 5},
			wantScore: 5,
		},
		{
			name:      "depth level top",
			rule:      dictionary.HierarchyRule{Kind: dictionary.HierarchyDepthLevel, Pattern: "top", Weight: 5},
			wantScore: 5,
		},
		{
			name:      "depth level bottom miss at level one",
			rule:      dictionary.HierarchyRule{Kind: dictionary.HierarchyDepthLevel, Pattern: "bottom", Weight: 5},
			wantScore: 0,
		},
		{
			name:      "position ordinal first",
			rule:      dictionary.HierarchyRule{Kind: dictionary.HierarchyPositionOrdinal, Pattern: "first", Weight: 4},
			wantScore: 4,
		},
		{
			name:      "position ordinal last miss",
			rule:      dictionary.HierarchyRule{Kind: dictionary.HierarchyPositionOrdinal, Pattern: "last", Weight: 4},
			wantScore: 0,
		},
		{
			name:      "unknown kind skipped",
			rule:      dictionary.HierarchyRule{Kind: dictionary.HierarchyRuleKind("ancestor_of"), Pattern: "x", Weight: 9},
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := eval.Evaluate(assets, []dictionary.HierarchyRule{tt.rule}, idx)
			assert.Equal(t, tt.wantScore, result.Score)
		})
	}
}

func TestHierarchyEvaluatorPrecomputedSiblings(t *testing.T) {
	eval := NewHierarchyEvaluator(zerolog.Nop())

	concept := &concepts.Metadata{
		QName:                "us-gaap:Liabilities",
		LocalName:            "Liabilities",
		PresentationSiblings: []string{"us-gaap:StockholdersEquity"},
	}
	rules := []dictionary.HierarchyRule{
		{Kind: dictionary.HierarchyHasSiblings, Pattern: "*Equity", Weight: 7},
	}

	// No index needed when siblings come precomputed.
	result := eval.Evaluate(concept, rules, nil)
	assert.Equal(t, 7, result.Score)
}
