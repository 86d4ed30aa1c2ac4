package dictionary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/statement-mapper/internal/domain"
)

const currentAssetsYAML = `
component_id: current_assets
display_name: Current Assets
category: balance_sheet
characteristics:
  balance_type: debit
  period_type: instant
matching_rules:
  label_rules:
    - patterns: ["current assets", "total current assets"]
      weight: 20
  local_name_rules:
    - patterns: ["AssetsCurrent"]
      match_type: exact
      weight: 5
scoring:
  min_score: 15
`

const grossProfitYAML = `
component_id: gross_profit
display_name: Gross Profit
category: income_statement
matching_rules:
  label_rules:
    - patterns: ["gross profit"]
      match_type: exact
      weight: 25
composition:
  is_composite: true
  components: [revenue, cost_of_revenue]
  formula: "revenue - cost_of_revenue"
  alternatives:
    - components: [revenue, operating_expenses]
      formula: "revenue - operating_expenses"
`

func TestParseAppliesDefaults(t *testing.T) {
	component, err := Parse([]byte(currentAssetsYAML))
	require.NoError(t, err)

	assert.Equal(t, "current_assets", component.ComponentID)
	assert.Equal(t, domain.BalanceDebit, component.Characteristics.BalanceType)
	assert.True(t, component.Characteristics.IsMonetary)
	assert.Equal(t, domain.DataMonetary, component.Characteristics.DataType)

	assert.Equal(t, 15, component.Scoring.MinScore)
	assert.Equal(t, 35, component.Scoring.ConfidenceLevels.High)
	assert.Equal(t, 25, component.Scoring.ConfidenceLevels.Medium)
	assert.Equal(t, 15, component.Scoring.ConfidenceLevels.Low)
	assert.Equal(t, domain.TiebreakHighestInHierarchy, component.Scoring.Tiebreaker)
	assert.Equal(t, domain.SignEither, component.Validation.ExpectedSign)

	// Omitted match_type defaults to contains; explicit ones survive.
	assert.Equal(t, domain.MatchContains, component.MatchingRules.LabelRules[0].MatchType)
	assert.Equal(t, domain.MatchExact, component.MatchingRules.LocalNameRules[0].MatchType)
}

func TestParseRequiresComponentID(t *testing.T) {
	_, err := Parse([]byte("display_name: Nameless\ncategory: balance_sheet\n"))
	assert.ErrorContains(t, err, "component_id is required")
}

func TestParseComposite(t *testing.T) {
	component, err := Parse([]byte(grossProfitYAML))
	require.NoError(t, err)

	assert.True(t, component.IsComposite())
	assert.False(t, component.IsAtomic())
	assert.Equal(t, "revenue - cost_of_revenue", component.Composition.Formula)
	require.Len(t, component.Composition.Alternatives, 1)
	assert.Equal(t, []string{"revenue", "operating_expenses"}, component.Composition.Alternatives[0].Components)
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	componentsDir := filepath.Join(dir, "components", "balance_sheet")
	require.NoError(t, os.MkdirAll(componentsDir, 0755))

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(componentsDir, name), []byte(content), 0644))
	}
	write("current_assets.yaml", currentAssetsYAML)
	write("gross_profit.yml", grossProfitYAML)
	write("broken.yaml", "component_id: [unterminated")
	write("notes.txt", "not a component")

	loader := NewLoader(dir, zerolog.Nop())
	components, err := loader.LoadAll()
	require.NoError(t, err)

	// The broken file is skipped, the text file ignored.
	assert.Len(t, components, 2)
	assert.Contains(t, components, "current_assets")
	assert.Contains(t, components, "gross_profit")

	atomic := AtomicComponents(components)
	assert.Len(t, atomic, 1)
	assert.Contains(t, atomic, "current_assets")

	composite := CompositeComponents(components)
	assert.Len(t, composite, 1)
	assert.Contains(t, composite, "gross_profit")

	byCategory := ComponentsByCategory(components, domain.CategoryBalanceSheet)
	assert.Len(t, byCategory, 1)
}

func TestLoadAllMissingDirectory(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "nope"), zerolog.Nop())
	_, err := loader.LoadAll()
	assert.ErrorContains(t, err, "components directory not found")
}

func TestLoadAllCaching(t *testing.T) {
	dir := t.TempDir()
	componentsDir := filepath.Join(dir, "components")
	require.NoError(t, os.MkdirAll(componentsDir, 0755))
	path := filepath.Join(componentsDir, "current_assets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(currentAssetsYAML), 0644))

	loader := NewLoader(dir, zerolog.Nop())
	first, err := loader.LoadAll()
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A new file is invisible until the cache is cleared.
	require.NoError(t, os.WriteFile(
		filepath.Join(componentsDir, "gross_profit.yaml"), []byte(grossProfitYAML), 0644))

	cached, err := loader.LoadAll()
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	loader.ClearCache()
	fresh, err := loader.LoadAll()
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestMaxPossibleScore(t *testing.T) {
	component, err := Parse([]byte(currentAssetsYAML))
	require.NoError(t, err)

	// 20 from the label rule plus 5 from the local-name rule.
	assert.Equal(t, 25, component.MaxPossibleScore())
}
