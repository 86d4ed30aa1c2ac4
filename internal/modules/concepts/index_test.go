package concepts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/statement-mapper/internal/domain"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "lowercases and splits",
			in:   "Total Current Assets",
			want: []string{"total", "current", "assets"},
		},
		{
			name: "short words dropped",
			in:   "Net Income of the Year",
			want: []string{"net", "income", "the", "year"},
		},
		{
			name: "punctuation ignored",
			in:   "Stockholders' Equity",
			want: []string{"stockholders", "equity"},
		},
		{
			name: "empty input",
			in:   "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestLocalNameOf(t *testing.T) {
	assert.Equal(t, "AssetsCurrent", LocalNameOf("us-gaap:AssetsCurrent"))
	assert.Equal(t, "AssetsCurrent", LocalNameOf("us-gaap_AssetsCurrent"))
	assert.Equal(t, "AssetsCurrent", LocalNameOf("AssetsCurrent"))
}

func indexFixture() *Index {
	return BuildIndex([]*Metadata{
		{
			QName:       "us-gaap:AssetsCurrent",
			LocalName:   "AssetsCurrent",
			BalanceType: domain.BalanceDebit,
			PeriodType:  domain.PeriodInstant,
			Labels:      map[string]string{"standard": "Total Current Assets"},
		},
		{
			QName:       "us-gaap:LiabilitiesCurrent",
			LocalName:   "LiabilitiesCurrent",
			BalanceType: domain.BalanceCredit,
			PeriodType:  domain.PeriodInstant,
			Labels:      map[string]string{"standard": "Total Current Liabilities"},
		},
		{
			QName:      "us-gaap:AssetsAbstract",
			LocalName:  "AssetsAbstract",
			IsAbstract: true,
			Labels:     map[string]string{"standard": "Assets"},
		},
		{
			QName:     "ext:CustomWidgets",
			LocalName: "CustomWidgets",
			// Extension concept with no balance type or labels.
		},
	})
}

func TestFindByLocalName(t *testing.T) {
	idx := indexFixture()

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{
			name:    "exact",
			pattern: "AssetsCurrent",
			want:    []string{"us-gaap:AssetsCurrent"},
		},
		{
			name:    "contains",
			pattern: "*Current*",
			want:    []string{"us-gaap:AssetsCurrent", "us-gaap:LiabilitiesCurrent"},
		},
		{
			name:    "suffix",
			pattern: "*Abstract",
			want:    []string{"us-gaap:AssetsAbstract"},
		},
		{
			name:    "prefix",
			pattern: "Assets*",
			want:    []string{"us-gaap:AssetsAbstract", "us-gaap:AssetsCurrent"},
		},
		{
			name:    "no match",
			pattern: "Goodwill",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.FindByLocalName(tt.pattern))
		})
	}
}

func TestFindByLabelWordsIntersection(t *testing.T) {
	idx := indexFixture()

	both := idx.FindByLabelWords([]string{"total", "current"})
	assert.Len(t, both, 2)

	assetsOnly := idx.FindByLabelWords([]string{"current", "assets"})
	assert.Len(t, assetsOnly, 1)
	assert.True(t, assetsOnly["us-gaap:AssetsCurrent"])

	assert.Empty(t, idx.FindByLabelWords([]string{"total", "goodwill"}))
	assert.Empty(t, idx.FindByLabelWords(nil))
}

func TestCandidatesLabelRetrieval(t *testing.T) {
	idx := indexFixture()

	// Label word retrieval unions per-word hits: "current assets"
	// pulls in anything labeled current OR assets.
	got := idx.Candidates(CandidateQuery{
		LabelPatterns:   []string{"current assets"},
		BalanceType:     domain.BalanceDebit,
		ExcludeAbstract: true,
	})
	assert.Equal(t, []string{"us-gaap:AssetsCurrent"}, got)
}

func TestCandidatesPermissiveCharacteristicFilter(t *testing.T) {
	idx := indexFixture()

	// The extension concept has no balance type, so a debit filter
	// must not drop it; the credit-typed concept is actively
	// incompatible and must go.
	got := idx.Candidates(CandidateQuery{
		LabelPatterns:     []string{"current"},
		LocalNamePatterns: []string{"CustomWidgets"},
		BalanceType:       domain.BalanceDebit,
		ExcludeAbstract:   true,
	})
	assert.Contains(t, got, "us-gaap:AssetsCurrent")
	assert.Contains(t, got, "ext:CustomWidgets")
	assert.NotContains(t, got, "us-gaap:LiabilitiesCurrent")
}

func TestCandidatesAbstractFilter(t *testing.T) {
	idx := indexFixture()

	with := idx.Candidates(CandidateQuery{LabelPatterns: []string{"assets"}})
	assert.Contains(t, with, "us-gaap:AssetsAbstract")

	without := idx.Candidates(CandidateQuery{
		LabelPatterns:   []string{"assets"},
		ExcludeAbstract: true,
	})
	assert.NotContains(t, without, "us-gaap:AssetsAbstract")
}

func TestCandidatesLocalNameFallback(t *testing.T) {
	idx := indexFixture()

	// No label carries "customwidgets", so retrieval falls back to
	// trying the label pattern as a local name.
	got := idx.Candidates(CandidateQuery{
		LabelPatterns: []string{"CustomWidgets"},
	})
	assert.Equal(t, []string{"ext:CustomWidgets"}, got)
}

func TestCandidatesAllConceptsFallback(t *testing.T) {
	idx := indexFixture()

	// Nothing matches at all: every concept becomes a candidate and
	// scoring sorts it out.
	got := idx.Candidates(CandidateQuery{
		LabelPatterns:   []string{"zzz"},
		ExcludeAbstract: true,
	})
	assert.Len(t, got, 3)
}

func TestCandidatesDeterministicOrderAndCap(t *testing.T) {
	idx := indexFixture()

	first := idx.Candidates(CandidateQuery{LabelPatterns: []string{"current"}})
	second := idx.Candidates(CandidateQuery{LabelPatterns: []string{"current"}})
	assert.Equal(t, first, second)
	assert.IsIncreasing(t, first)

	capped := idx.Candidates(CandidateQuery{
		LabelPatterns: []string{"current"},
		MaxCandidates: 1,
	})
	assert.Len(t, capped, 1)
}

func TestIndexAccessors(t *testing.T) {
	idx := indexFixture()

	assert.Equal(t, 4, idx.Len())
	assert.True(t, idx.Contains("us-gaap:AssetsCurrent"))
	assert.False(t, idx.Contains("us-gaap:Goodwill"))
	assert.Nil(t, idx.Get("us-gaap:Goodwill"))

	all := idx.All()
	require.Len(t, all, 4)
	// Insertion order preserved.
	assert.Equal(t, "us-gaap:AssetsCurrent", all[0].QName)
	assert.Equal(t, "ext:CustomWidgets", all[3].QName)
}
