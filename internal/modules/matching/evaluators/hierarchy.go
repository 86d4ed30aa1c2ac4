package evaluators

import (
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/aristath/statement-mapper/internal/modules/concepts"
	"github.com/aristath/statement-mapper/internal/modules/dictionary"
)

// HierarchyEvaluator scores rules about a concept's position in the
// presentation hierarchy: who its parent is, how deep it sits, which
// siblings surround it and where it falls among them.
type HierarchyEvaluator struct {
	log zerolog.Logger
}

// NewHierarchyEvaluator creates a hierarchy evaluator.
func NewHierarchyEvaluator(log zerolog.Logger) *HierarchyEvaluator {
	return &HierarchyEvaluator{
		log: log.With().Str("evaluator", TypeHierarchy).Logger(),
	}
}

// Evaluate runs each rule variant against the concept. The index is
// consulted when sibling sets are not precomputed on the metadata.
func (e *HierarchyEvaluator) Evaluate(concept *concepts.Metadata, rules []dictionary.HierarchyRule, idx *concepts.Index) EvaluationResult {
	result := EvaluationResult{EvaluatorType: TypeHierarchy}

	for _, rule := range rules {
		matched, detail := false, ""

		switch rule.Kind {
		case dictionary.HierarchyParentMatches:
			matched, detail = e.checkParentMatches(concept, rule.Pattern)
		case dictionary.HierarchyChildOfRoot:
			matched = concept.PresentationLevel == 1
		case dictionary.HierarchyHasSiblings:
			matched, detail = e.checkHasSiblings(concept, rule.Pattern, idx)
		case dictionary.HierarchyDepthLevel:
			matched = e.checkDepthLevel(concept, rule.Pattern)
		case dictionary.HierarchyPositionOrdinal:
			matched = e.checkPositionOrdinal(concept, rule.Pattern, idx)
		default:
			e.log.Warn().Str("rule_type", string(rule.Kind)).Msg("Unknown hierarchy rule type")
			continue
		}

		if !matched {
			continue
		}

		result.Score += rule.Weight
		result.MatchedRules = append(result.MatchedRules, RuleMatch{
			Kind:           string(rule.Kind),
			MatchedPattern: rule.Pattern,
			Detail:         detail,
			Weight:         rule.Weight,
		})

		e.log.Debug().
			Str("qname", concept.QName).
			Str("rule_type", string(rule.Kind)).
			Int("weight", rule.Weight).
			Msg("Hierarchy rule matched")
	}

	return result
}

func (e *HierarchyEvaluator) checkParentMatches(concept *concepts.Metadata, pattern string) (bool, string) {
	parent := concept.PresentationParent
	if parent == "" {
		return false, ""
	}
	if wildcardMatch(concepts.LocalNameOf(parent), pattern) || wildcardMatch(parent, pattern) {
		return true, parent
	}
	return false, ""
}

func (e *HierarchyEvaluator) checkHasSiblings(concept *concepts.Metadata, pattern string, idx *concepts.Index) (bool, string) {
	siblings := concept.PresentationSiblings
	if len(siblings) == 0 && idx != nil && concept.PresentationParent != "" {
		for _, child := range idx.FindChildrenOf(concept.PresentationParent) {
			if child != concept.QName {
				siblings = append(siblings, child)
			}
		}
	}

	for _, sibling := range siblings {
		if wildcardMatch(concepts.LocalNameOf(sibling), pattern) {
			return true, sibling
		}
	}
	return false, ""
}

// checkDepthLevel accepts a numeric level, "top" (level <= 1), or
// "bottom" (level >= 3).
func (e *HierarchyEvaluator) checkDepthLevel(concept *concepts.Metadata, pattern string) bool {
	level := concept.PresentationLevel

	if target, err := strconv.Atoi(pattern); err == nil {
		return level == target
	}
	switch pattern {
	case "top":
		return level <= 1
	case "bottom":
		return level >= 3
	}
	return false
}

// checkPositionOrdinal accepts "first", "last", or a 1-based numeric
// position among siblings ordered by presentation order.
func (e *HierarchyEvaluator) checkPositionOrdinal(concept *concepts.Metadata, pattern string, idx *concepts.Index) bool {
	if idx == nil || concept.PresentationParent == "" {
		return false
	}

	children := idx.FindChildrenOf(concept.PresentationParent)
	siblings := make([]*concepts.Metadata, 0, len(children))
	for _, qname := range children {
		if m := idx.Get(qname); m != nil {
			siblings = append(siblings, m)
		}
	}
	if len(siblings) == 0 {
		return false
	}
	sort.SliceStable(siblings, func(i, j int) bool {
		return siblings[i].PresentationOrder < siblings[j].PresentationOrder
	})

	position := 0
	for i, s := range siblings {
		if s.QName == concept.QName {
			position = i + 1
			break
		}
	}
	if position == 0 {
		return false
	}

	switch pattern {
	case "first":
		return position == 1
	case "last":
		return position == len(siblings)
	}
	if target, err := strconv.Atoi(pattern); err == nil {
		return position == target
	}
	return false
}
