package dictionary

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/aristath/statement-mapper/internal/domain"
)

// Loader reads component definitions from YAML files under a
// dictionary directory. One file per component; subdirectories (per
// statement or industry) are scanned recursively.
type Loader struct {
	dictionaryPath string
	log            zerolog.Logger

	cache map[string]*ComponentDefinition
}

// NewLoader creates a loader rooted at dictionaryPath.
func NewLoader(dictionaryPath string, log zerolog.Logger) *Loader {
	return &Loader{
		dictionaryPath: dictionaryPath,
		log:            log.With().Str("component", "dictionary_loader").Logger(),
	}
}

// LoadAll loads every component definition under the dictionary path.
// Files that fail to parse are logged and skipped so one bad file does
// not take down the whole table. Results are cached until ClearCache.
func (l *Loader) LoadAll() (map[string]*ComponentDefinition, error) {
	if l.cache != nil {
		return l.cache, nil
	}

	componentsPath := filepath.Join(l.dictionaryPath, "components")
	if _, err := os.Stat(componentsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("components directory not found: %s", componentsPath)
	}

	components := make(map[string]*ComponentDefinition)
	fileCount := 0

	err := filepath.WalkDir(componentsPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		fileCount++

		component, loadErr := l.LoadFile(path)
		if loadErr != nil {
			l.log.Error().Err(loadErr).Str("file", path).Msg("Failed to load component definition")
			return nil
		}

		if _, exists := components[component.ComponentID]; exists {
			l.log.Warn().
				Str("component_id", component.ComponentID).
				Str("file", path).
				Msg("Duplicate component_id, overwriting previous definition")
		}
		components[component.ComponentID] = component
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan dictionary: %w", err)
	}

	l.log.Info().
		Int("files", fileCount).
		Int("components", len(components)).
		Msg("Loaded component definitions")

	l.cache = components
	return components, nil
}

// LoadFile loads a single component definition from a YAML file.
func (l *Loader) LoadFile(path string) (*ComponentDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML document into a ComponentDefinition and applies
// defaults for omitted fields.
func Parse(data []byte) (*ComponentDefinition, error) {
	component := &ComponentDefinition{
		Characteristics: Characteristics{
			IsMonetary: true,
		},
	}

	if err := yaml.Unmarshal(data, component); err != nil {
		return nil, fmt.Errorf("yaml parse error: %w", err)
	}
	if component.ComponentID == "" {
		return nil, fmt.Errorf("component_id is required")
	}

	applyDefaults(component)
	return component, nil
}

// applyDefaults fills the zero values YAML leaves behind with the
// dictionary format's documented defaults.
func applyDefaults(c *ComponentDefinition) {
	if c.Characteristics.DataType == "" {
		c.Characteristics.DataType = domain.DataMonetary
	}
	if c.Scoring.MinScore == 0 {
		c.Scoring.MinScore = 15
	}
	if c.Scoring.ConfidenceLevels.High == 0 {
		c.Scoring.ConfidenceLevels.High = 35
	}
	if c.Scoring.ConfidenceLevels.Medium == 0 {
		c.Scoring.ConfidenceLevels.Medium = 25
	}
	if c.Scoring.ConfidenceLevels.Low == 0 {
		c.Scoring.ConfidenceLevels.Low = 15
	}
	if c.Scoring.Tiebreaker == "" {
		c.Scoring.Tiebreaker = domain.TiebreakHighestInHierarchy
	}
	if c.Validation.ExpectedSign == "" {
		c.Validation.ExpectedSign = domain.SignEither
	}
	for i := range c.MatchingRules.LabelRules {
		if c.MatchingRules.LabelRules[i].MatchType == "" {
			c.MatchingRules.LabelRules[i].MatchType = domain.MatchContains
		}
	}
	for i := range c.MatchingRules.LocalNameRules {
		if c.MatchingRules.LocalNameRules[i].MatchType == "" {
			c.MatchingRules.LocalNameRules[i].MatchType = domain.MatchContains
		}
	}
	for i := range c.MatchingRules.CalculationRules {
		if c.MatchingRules.CalculationRules[i].MinMatches == 0 {
			c.MatchingRules.CalculationRules[i].MinMatches = 1
		}
	}
}

// ClearCache drops the cached table; the next LoadAll re-reads disk.
func (l *Loader) ClearCache() {
	l.cache = nil
}

// AtomicComponents returns the non-composite subset of the table.
func AtomicComponents(components map[string]*ComponentDefinition) map[string]*ComponentDefinition {
	out := make(map[string]*ComponentDefinition)
	for id, c := range components {
		if c.IsAtomic() {
			out[id] = c
		}
	}
	return out
}

// CompositeComponents returns the composite subset of the table.
func CompositeComponents(components map[string]*ComponentDefinition) map[string]*ComponentDefinition {
	out := make(map[string]*ComponentDefinition)
	for id, c := range components {
		if c.IsComposite() {
			out[id] = c
		}
	}
	return out
}

// ComponentsByCategory filters the table by statement category.
func ComponentsByCategory(components map[string]*ComponentDefinition, category domain.Category) map[string]*ComponentDefinition {
	out := make(map[string]*ComponentDefinition)
	for id, c := range components {
		if c.Category == category {
			out[id] = c
		}
	}
	return out
}
