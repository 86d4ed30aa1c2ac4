package dictionary

import (
	"github.com/aristath/statement-mapper/internal/domain"
)

// HierarchyRuleKind tags the variant of a hierarchy rule.
type HierarchyRuleKind string

const (
	HierarchyParentMatches   HierarchyRuleKind = "parent_matches"
	HierarchyChildOfRoot     HierarchyRuleKind = "child_of_root"
	HierarchyHasSiblings     HierarchyRuleKind = "has_siblings"
	HierarchyDepthLevel      HierarchyRuleKind = "depth_level"
	HierarchyPositionOrdinal HierarchyRuleKind = "position_ordinal"
)

// CalculationRuleKind tags the variant of a calculation rule.
type CalculationRuleKind string

const (
	CalculationContributesTo CalculationRuleKind = "contributes_to"
	CalculationParentOf      CalculationRuleKind = "parent_of"
	CalculationHasChildren   CalculationRuleKind = "has_children"
	CalculationWeightSign    CalculationRuleKind = "weight_sign"
)

// LabelRule matches patterns against concept labels. The rule's full
// weight is awarded once if any pattern matches any label.
type LabelRule struct {
	Patterns      []string         `yaml:"patterns" validate:"required,min=1"`
	MatchType     domain.MatchType `yaml:"match_type"`
	CaseSensitive bool             `yaml:"case_sensitive"`
	Weight        int              `yaml:"weight" validate:"gte=1,lte=25"`
}

// LocalNameRule matches patterns against the concept's CamelCase local
// name. Local names are present regardless of market, taxonomy, or
// label language, making this the most robust fallback signal.
type LocalNameRule struct {
	Patterns      []string         `yaml:"patterns" validate:"required,min=1"`
	MatchType     domain.MatchType `yaml:"match_type"`
	CaseSensitive bool             `yaml:"case_sensitive"`
	Weight        int              `yaml:"weight" validate:"gte=1,lte=5"`
}

// HierarchyRule matches against a concept's position in the
// presentation hierarchy.
type HierarchyRule struct {
	Kind    HierarchyRuleKind `yaml:"rule_type" validate:"required"`
	Pattern string            `yaml:"pattern"`
	Weight  int               `yaml:"weight" validate:"gte=1,lte=15"`
}

// CalculationRule matches against a concept's calculation linkbase
// relationships. Pattern is used by single-pattern kinds; Patterns and
// MinMatches by has_children.
type CalculationRule struct {
	Kind       CalculationRuleKind `yaml:"rule_type" validate:"required"`
	Pattern    string              `yaml:"pattern"`
	Patterns   []string            `yaml:"patterns"`
	MinMatches int                 `yaml:"min_matches"`
	Weight     int                 `yaml:"weight" validate:"gte=1,lte=15"`
}

// DefinitionRule searches for keywords in a concept's definition and
// documentation label.
type DefinitionRule struct {
	Keywords    []string `yaml:"keywords" validate:"required,min=1"`
	AllRequired bool     `yaml:"all_required"`
	Weight      int      `yaml:"weight" validate:"gte=1,lte=10"`
}

// ReferenceRule matches accounting standard references (ASC, IAS,
// IFRS). Carried in the model and validated; no evaluator currently
// consumes it.
type ReferenceRule struct {
	Standard string `yaml:"standard" validate:"required"`
	Section  string `yaml:"section" validate:"required"`
	Weight   int    `yaml:"weight" validate:"gte=1,lte=15"`
}

// MatchingRules collects all rule categories for a component.
type MatchingRules struct {
	LabelRules       []LabelRule       `yaml:"label_rules" validate:"dive"`
	LocalNameRules   []LocalNameRule   `yaml:"local_name_rules" validate:"dive"`
	HierarchyRules   []HierarchyRule   `yaml:"hierarchy_rules" validate:"dive"`
	CalculationRules []CalculationRule `yaml:"calculation_rules" validate:"dive"`
	DefinitionRules  []DefinitionRule  `yaml:"definition_rules" validate:"dive"`
	ReferenceRules   []ReferenceRule   `yaml:"reference_rules" validate:"dive"`
}

// ConfidenceLevels are the score thresholds for confidence rating.
// Must satisfy high > medium >= low.
type ConfidenceLevels struct {
	High   int `yaml:"high" validate:"gte=1"`
	Medium int `yaml:"medium" validate:"gte=1"`
	Low    int `yaml:"low" validate:"gte=1"`
}

// RejectionCondition drops a candidate before scoring. Pattern forms:
// "abstract=true", "label~keyword", "name~pattern".
type RejectionCondition struct {
	Condition string `yaml:"condition" validate:"required"`
	Pattern   string `yaml:"pattern" validate:"required"`
}

// ScoringConfig configures match acceptance for one component.
type ScoringConfig struct {
	MinScore         int                       `yaml:"min_score" validate:"gte=1"`
	ConfidenceLevels ConfidenceLevels          `yaml:"confidence_levels"`
	Tiebreaker       domain.TiebreakerStrategy `yaml:"tiebreaker"`
	RejectIf         []RejectionCondition      `yaml:"reject_if" validate:"dive"`
}

// Characteristics are the intrinsic properties a matched concept is
// expected to have. Zero-valued balance/period types mean "no
// preference" and are filtered permissively.
type Characteristics struct {
	BalanceType domain.BalanceType `yaml:"balance_type"`
	PeriodType  domain.PeriodType  `yaml:"period_type"`
	IsMonetary  bool               `yaml:"is_monetary"`
	IsAbstract  bool               `yaml:"is_abstract"`
	DataType    domain.DataType    `yaml:"data_type"`
}

// AlternativeFormula is a fallback calculation path for a composite.
type AlternativeFormula struct {
	Components []string `yaml:"components" validate:"required,min=1"`
	Formula    string   `yaml:"formula" validate:"required"`
}

// Composition defines how a composite component is computed from other
// components when no direct concept matches.
type Composition struct {
	IsComposite  bool                 `yaml:"is_composite"`
	Components   []string             `yaml:"components"`
	Formula      string               `yaml:"formula"`
	Alternatives []AlternativeFormula `yaml:"alternatives" validate:"dive"`
}

// RelationshipCheck is an expected relationship with another component.
type RelationshipCheck struct {
	Other    string              `yaml:"other" validate:"required"`
	Relation domain.RelationType `yaml:"relation" validate:"required"`
}

// TypicalRange bounds for sanity-checking extracted values.
type TypicalRange struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

// Validation holds sanity checks applied downstream of matching.
type Validation struct {
	ExpectedSign  domain.ExpectedSign `yaml:"expected_sign"`
	TypicalRange  *TypicalRange       `yaml:"typical_range"`
	Relationships []RelationshipCheck `yaml:"relationships" validate:"dive"`
	RequiredFor   []string            `yaml:"required_for"`
}

// ComponentDefinition is the complete definition of one abstract
// financial line item: the characteristics, rules, scoring policy and
// composition that identify it in any filing's taxonomy.
type ComponentDefinition struct {
	ComponentID string `yaml:"component_id" validate:"required"`
	DisplayName string `yaml:"display_name" validate:"required"`
	Description string `yaml:"description"`

	Category    domain.Category `yaml:"category" validate:"required"`
	Subcategory string          `yaml:"subcategory"`

	Characteristics Characteristics `yaml:"characteristics"`
	MatchingRules   MatchingRules   `yaml:"matching_rules"`
	Scoring         ScoringConfig   `yaml:"scoring"`
	Composition     Composition     `yaml:"composition"`
	Validation      Validation      `yaml:"validation"`
}

// IsComposite reports whether the component is computed from others.
func (c *ComponentDefinition) IsComposite() bool {
	return c.Composition.IsComposite
}

// IsAtomic reports whether the component is matched directly.
func (c *ComponentDefinition) IsAtomic() bool {
	return !c.Composition.IsComposite
}

// HasMatchingRules reports whether the component defines label or
// local-name rules, the two categories that can seed candidate
// retrieval.
func (c *ComponentDefinition) HasMatchingRules() bool {
	return len(c.MatchingRules.LabelRules) > 0 ||
		len(c.MatchingRules.LocalNameRules) > 0
}

// MaxPossibleScore is the sum of all rule weights. min_score above
// this value is unreachable and rejected by validation.
func (c *ComponentDefinition) MaxPossibleScore() int {
	total := 0
	for _, r := range c.MatchingRules.LabelRules {
		total += r.Weight
	}
	for _, r := range c.MatchingRules.LocalNameRules {
		total += r.Weight
	}
	for _, r := range c.MatchingRules.HierarchyRules {
		total += r.Weight
	}
	for _, r := range c.MatchingRules.CalculationRules {
		total += r.Weight
	}
	for _, r := range c.MatchingRules.DefinitionRules {
		total += r.Weight
	}
	for _, r := range c.MatchingRules.ReferenceRules {
		total += r.Weight
	}
	return total
}
