package scoring

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/statement-mapper/internal/domain"
	"github.com/aristath/statement-mapper/internal/modules/concepts"
	"github.com/aristath/statement-mapper/internal/modules/matching/evaluators"
)

// Tiebreaker method tags, recorded on the match result so degraded
// resolution stays auditable.
const (
	TagSingleMatch          = "single_match"
	TagHighestInHierarchy   = "highest_in_hierarchy"
	TagMostChildren         = "most_children"
	TagExactLabelMatch      = "exact_label_match"
	TagFirstInPresentation  = "first_in_presentation"
	TagFallbackFirst        = "fallback_first"
	TagNoIndexFallback      = "no_index_fallback"
	TagNoExactLabelFallback = "no_exact_label_fallback"
)

// Tiebreaker selects among equally-scored candidates. Every strategy
// is deterministic over a fixed input order: comparisons are strict,
// so the first candidate to achieve the best value wins.
type Tiebreaker struct {
	log zerolog.Logger
}

// NewTiebreaker creates a tiebreaker.
func NewTiebreaker(log zerolog.Logger) *Tiebreaker {
	return &Tiebreaker{
		log: log.With().Str("component", "tiebreaker").Logger(),
	}
}

// Resolve picks the winner among matches per the strategy, returning
// the chosen match and a tag naming the method actually used. Callers
// must pass at least one match.
func (t *Tiebreaker) Resolve(matches []ScoredMatch, strategy domain.TiebreakerStrategy, idx *concepts.Index) (ScoredMatch, string) {
	if len(matches) == 1 {
		return matches[0], TagSingleMatch
	}

	t.log.Debug().
		Int("candidates", len(matches)).
		Str("strategy", string(strategy)).
		Msg("Resolving tie")

	switch strategy {
	case domain.TiebreakHighestInHierarchy:
		return t.byHierarchy(matches, idx)
	case domain.TiebreakMostChildren:
		return t.byChildren(matches, idx)
	case domain.TiebreakExactLabelMatch:
		return t.byExactLabel(matches)
	case domain.TiebreakFirstInPresentation:
		return t.byPresentationOrder(matches, idx)
	default:
		t.log.Warn().
			Str("strategy", string(strategy)).
			Msg("Unknown tiebreaker strategy, using first match")
		return matches[0], TagFallbackFirst
	}
}

// byHierarchy prefers the concept closest to the statement root.
func (t *Tiebreaker) byHierarchy(matches []ScoredMatch, idx *concepts.Index) (ScoredMatch, string) {
	if idx == nil {
		return matches[0], TagNoIndexFallback
	}

	best := matches[0]
	bestLevel := math.MaxInt
	for _, m := range matches {
		if c := idx.Get(m.Concept); c != nil && c.PresentationLevel < bestLevel {
			bestLevel = c.PresentationLevel
			best = m
		}
	}
	return best, TagHighestInHierarchy
}

// byChildren prefers the concept with the most calculation children,
// which favors aggregates over their contributors.
func (t *Tiebreaker) byChildren(matches []ScoredMatch, idx *concepts.Index) (ScoredMatch, string) {
	if idx == nil {
		return matches[0], TagNoIndexFallback
	}

	best := matches[0]
	mostChildren := -1
	for _, m := range matches {
		if c := idx.Get(m.Concept); c != nil && len(c.CalculationChildren) > mostChildren {
			mostChildren = len(c.CalculationChildren)
			best = m
		}
	}
	return best, TagMostChildren
}

// byExactLabel prefers the first candidate whose winning label rule
// used exact matching over contains or prefix matching.
func (t *Tiebreaker) byExactLabel(matches []ScoredMatch) (ScoredMatch, string) {
	for _, m := range matches {
		if m.hasExactRule(evaluators.TypeLabel) {
			return m, TagExactLabelMatch
		}
	}
	return matches[0], TagNoExactLabelFallback
}

// byPresentationOrder prefers the concept appearing earliest in the
// presentation linkbase.
func (t *Tiebreaker) byPresentationOrder(matches []ScoredMatch, idx *concepts.Index) (ScoredMatch, string) {
	if idx == nil {
		return matches[0], TagNoIndexFallback
	}

	best := matches[0]
	lowest := math.Inf(1)
	for _, m := range matches {
		if c := idx.Get(m.Concept); c != nil && c.PresentationOrder < lowest {
			lowest = c.PresentationOrder
			best = m
		}
	}
	return best, TagFirstInPresentation
}
