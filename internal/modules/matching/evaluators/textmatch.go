package evaluators

import (
	"regexp"
	"strings"

	"github.com/aristath/statement-mapper/internal/domain"
)

// Evaluator type names, used as keys in score breakdowns.
const (
	TypeLabel       = "label"
	TypeLocalName   = "local_name"
	TypeHierarchy   = "hierarchy"
	TypeCalculation = "calculation"
	TypeDefinition  = "definition"
)

// RuleMatch records one rule that fired, with enough detail for
// auditing and for downstream policies (the exact-name score floor and
// the exact-label tiebreaker read MatchType).
type RuleMatch struct {
	Kind            string           `json:"kind,omitempty"`
	Patterns        []string         `json:"patterns,omitempty"`
	MatchedPattern  string           `json:"matched_pattern,omitempty"`
	MatchType       domain.MatchType `json:"match_type,omitempty"`
	MatchedLabel    string           `json:"matched_label,omitempty"`
	LabelType       string           `json:"label_type,omitempty"`
	Keywords        []string         `json:"keywords,omitempty"`
	MatchedKeywords []string         `json:"matched_keywords,omitempty"`
	Detail          string           `json:"detail,omitempty"`
	Weight          int              `json:"weight"`
}

// EvaluationResult is the outcome of running one rule category against
// one concept.
type EvaluationResult struct {
	Score         int         `json:"score"`
	MatchedRules  []RuleMatch `json:"matched_rules,omitempty"`
	EvaluatorType string      `json:"evaluator_type"`
}

var (
	punctuationPattern = regexp.MustCompile(`['",()\-]`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// Normalize strips the punctuation that varies between label sources
// and collapses whitespace, so "Stockholders' Equity" compares equal
// to "Stockholders Equity" and "Assets, Current" to "Assets Current".
func Normalize(text string) string {
	normalized := punctuationPattern.ReplaceAllString(text, "")
	normalized = whitespacePattern.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// matchText compares normalized text against a pattern per matchType.
func matchText(text, pattern string, matchType domain.MatchType, caseSensitive bool) bool {
	switch matchType {
	case domain.MatchContains, domain.MatchStartsWith, domain.MatchEndsWith, domain.MatchExact:
		t := Normalize(text)
		p := Normalize(pattern)
		if !caseSensitive {
			t = strings.ToLower(t)
			p = strings.ToLower(p)
		}
		switch matchType {
		case domain.MatchContains:
			return strings.Contains(t, p)
		case domain.MatchStartsWith:
			return strings.HasPrefix(t, p)
		case domain.MatchEndsWith:
			return strings.HasSuffix(t, p)
		default:
			return t == p
		}
	case domain.MatchRegex:
		return regexMatch(text, pattern, caseSensitive)
	default:
		return false
	}
}

// regexMatch runs an unanchored regex search. Invalid patterns never
// match; the configuration validator is the place to catch them.
func regexMatch(text, pattern string, caseSensitive bool) bool {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// wildcardMatch compares a full string against a pattern where "*"
// matches any run of characters, case-insensitively. Hierarchy and
// calculation rule patterns use this form ("*Assets*Abstract*").
func wildcardMatch(text, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return strings.EqualFold(text, pattern)
	}

	parts := strings.Split(pattern, "*")
	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}
	re, err := regexp.Compile("(?i)^" + strings.Join(parts, ".*") + "$")
	if err != nil {
		return false
	}
	return re.MatchString(text)
}
