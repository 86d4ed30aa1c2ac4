package matching

import (
	"time"

	"github.com/aristath/statement-mapper/internal/domain"
	"github.com/aristath/statement-mapper/internal/modules/matching/scoring"
)

// MaxAlternatives caps the next-best distinct candidates retained on a
// match result for review.
const MaxAlternatives = 5

// MatchResult is the outcome of matching one component against a
// filing's concepts. Absence of a match is a first-class result, not
// an error.
type MatchResult struct {
	ComponentID    string                       `json:"component_id"`
	Status         domain.MatchStatus           `json:"status"`
	MatchedConcept string                       `json:"matched_concept,omitempty"`
	TotalScore     int                          `json:"total_score"`
	Confidence     domain.Confidence            `json:"confidence"`
	RuleBreakdown  map[string]scoring.RuleScore `json:"rule_breakdown,omitempty"`
	Alternatives   []scoring.ScoredMatch        `json:"alternatives,omitempty"`
	TiebreakerUsed string                       `json:"tiebreaker_used,omitempty"`
	Warnings       []string                     `json:"warnings,omitempty"`
	MatchedAt      time.Time                    `json:"matched_at"`
}

// NoMatch records that no concept satisfied the component's rules.
func NoMatch(componentID, reason string) MatchResult {
	result := MatchResult{
		ComponentID: componentID,
		Status:      domain.StatusNoMatch,
		Confidence:  domain.ConfidenceNone,
		MatchedAt:   time.Now().UTC(),
	}
	if reason != "" {
		result.Warnings = append(result.Warnings, reason)
	}
	return result
}

// FromScoredMatch builds a MATCHED result from the winning candidate.
func FromScoredMatch(componentID string, match scoring.ScoredMatch, alternatives []scoring.ScoredMatch, tiebreakerUsed string) MatchResult {
	breakdown := make(map[string]scoring.RuleScore, len(match.RuleScores))
	for _, rs := range match.RuleScores {
		breakdown[rs.RuleType] = rs
	}
	if len(alternatives) > MaxAlternatives {
		alternatives = alternatives[:MaxAlternatives]
	}
	return MatchResult{
		ComponentID:    componentID,
		Status:         domain.StatusMatched,
		MatchedConcept: match.Concept,
		TotalScore:     match.TotalScore,
		Confidence:     match.Confidence,
		RuleBreakdown:  breakdown,
		Alternatives:   alternatives,
		TiebreakerUsed: tiebreakerUsed,
		MatchedAt:      time.Now().UTC(),
	}
}

// ExternalRequired marks a component whose value comes from outside
// the filing, such as market data.
func ExternalRequired(componentID, reason string) MatchResult {
	return MatchResult{
		ComponentID: componentID,
		Status:      domain.StatusExternalDataRequired,
		Confidence:  domain.ConfidenceNone,
		Warnings:    []string{reason},
		MatchedAt:   time.Now().UTC(),
	}
}

// RequiresPriorPeriod marks a component that needs a beginning balance
// from the previous filing.
func RequiresPriorPeriod(componentID string) MatchResult {
	return MatchResult{
		ComponentID: componentID,
		Status:      domain.StatusRequiresPriorPeriod,
		Confidence:  domain.ConfidenceNone,
		Warnings:    []string{"Requires beginning balance from prior period"},
		MatchedAt:   time.Now().UTC(),
	}
}

// IsMatched reports whether matching succeeded.
func (r *MatchResult) IsMatched() bool {
	return r.Status == domain.StatusMatched
}

// IsHighConfidence reports whether the match is high confidence.
func (r *MatchResult) IsHighConfidence() bool {
	return r.Confidence == domain.ConfidenceHigh
}

// NeedsVerification reports whether a reviewer should look at this
// match before its value is used.
func (r *MatchResult) NeedsVerification() bool {
	return r.Confidence == domain.ConfidenceLow ||
		r.Confidence == domain.ConfidenceMedium ||
		len(r.Alternatives) > 0 ||
		len(r.Warnings) > 0
}
