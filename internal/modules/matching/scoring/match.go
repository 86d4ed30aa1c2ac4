package scoring

import (
	"github.com/aristath/statement-mapper/internal/domain"
	"github.com/aristath/statement-mapper/internal/modules/matching/evaluators"
)

// RuleScore is one evaluator's contribution to a candidate's total.
type RuleScore struct {
	RuleType     string                 `json:"rule_type"`
	Score        int                    `json:"score"`
	MatchedRules []evaluators.RuleMatch `json:"matched_rules,omitempty"`
}

// ScoredMatch is one candidate concept after aggregation, ready for
// ranking. RuleScores preserve the per-evaluator breakdown so a
// reviewer can see which evidence drove the total.
type ScoredMatch struct {
	Concept         string            `json:"concept"`
	TotalScore      int               `json:"total_score"`
	RuleScores      []RuleScore       `json:"rule_scores,omitempty"`
	Confidence      domain.Confidence `json:"confidence"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
}

// Breakdown returns evaluator type to score, for diagnostics.
func (m *ScoredMatch) Breakdown() map[string]int {
	out := make(map[string]int, len(m.RuleScores))
	for _, rs := range m.RuleScores {
		out[rs.RuleType] = rs.Score
	}
	return out
}

// hasExactRule reports whether any matched rule of the given evaluator
// type fired with exact matching.
func (m *ScoredMatch) hasExactRule(ruleType string) bool {
	for _, rs := range m.RuleScores {
		if rs.RuleType != ruleType {
			continue
		}
		for _, mr := range rs.MatchedRules {
			if mr.MatchType == domain.MatchExact {
				return true
			}
		}
	}
	return false
}
