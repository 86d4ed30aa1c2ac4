package matching

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/statement-mapper/internal/modules/concepts"
	"github.com/aristath/statement-mapper/internal/modules/dictionary"
	"github.com/aristath/statement-mapper/internal/modules/matching/evaluators"
	"github.com/aristath/statement-mapper/internal/modules/matching/scoring"
)

// universalExcludes are local-name fragments that mark non-value
// concepts. Text blocks and disclosure tables must never win a
// monetary component regardless of how well their labels score.
var universalExcludes = []string{
	"textblock", "table", "schedule",
	"explanatory", "disclosure", "policy",
}

// CandidateScore pairs a candidate with the score it achieved, for
// diagnostics.
type CandidateScore struct {
	Concept     string `json:"concept"`
	Score       int    `json:"score"`
	MinRequired int    `json:"min_required,omitempty"`
}

// RejectedCandidate records why a candidate was dropped before
// scoring.
type RejectedCandidate struct {
	Concept string `json:"concept"`
	Reason  string `json:"reason"`
}

// Diagnostic is the per-component audit trail of one match attempt.
type Diagnostic struct {
	ComponentID     string              `json:"component_id"`
	SearchPatterns  []string            `json:"search_patterns,omitempty"`
	Filters         map[string]string   `json:"filters,omitempty"`
	CandidatesFound int                 `json:"candidates_found"`
	Rejections      []RejectedCandidate `json:"rejections,omitempty"`
	BelowThreshold  []CandidateScore    `json:"below_threshold,omitempty"`
	PassedThreshold []CandidateScore    `json:"passed_threshold,omitempty"`
	FailureReason   string              `json:"failure_reason,omitempty"`
	MatchedConcept  string              `json:"matched_concept,omitempty"`
	MatchedScore    int                 `json:"matched_score,omitempty"`
}

// Failure reasons recorded in diagnostics.
const (
	FailNoCandidates   = "NO_CANDIDATES"
	FailAllRejected    = "ALL_REJECTED"
	FailBelowThreshold = "BELOW_THRESHOLD"
	FailInternal       = "INTERNAL_ERROR"
)

// Coordinator orchestrates resolution: it loads and validates the
// component dictionary, retrieves candidates per component, runs the
// evaluators, scores, and assembles a ResolutionMap per filing.
//
// The component table is loaded once and shared read-only, so a single
// Coordinator can resolve many filings, concurrently if each filing
// brings its own index.
type Coordinator struct {
	log    zerolog.Logger
	loader *dictionary.Loader

	mu         sync.RWMutex
	components map[string]*dictionary.ComponentDefinition
	invalid    map[string]bool

	labelEval       *evaluators.LabelEvaluator
	localNameEval   *evaluators.LocalNameEvaluator
	hierarchyEval   *evaluators.HierarchyEvaluator
	calculationEval *evaluators.CalculationEvaluator
	definitionEval  *evaluators.DefinitionEvaluator

	aggregator *scoring.Aggregator
	tiebreaker *scoring.Tiebreaker

	diagMu      sync.Mutex
	diagnostics map[string]Diagnostic
}

// NewCoordinator loads the dictionary, validates every component, and
// wires the evaluators. Components failing validation are kept loaded
// for inspection but excluded from resolution.
func NewCoordinator(loader *dictionary.Loader, log zerolog.Logger) (*Coordinator, error) {
	components, err := loader.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("loading component dictionary: %w", err)
	}

	c := &Coordinator{
		log:             log.With().Str("component", "coordinator").Logger(),
		loader:          loader,
		components:      components,
		invalid:         dictionary.InvalidComponents(components),
		labelEval:       evaluators.NewLabelEvaluator(log),
		localNameEval:   evaluators.NewLocalNameEvaluator(log),
		hierarchyEval:   evaluators.NewHierarchyEvaluator(log),
		calculationEval: evaluators.NewCalculationEvaluator(log),
		definitionEval:  evaluators.NewDefinitionEvaluator(log),
		aggregator:      scoring.NewAggregator(log),
		tiebreaker:      scoring.NewTiebreaker(log),
		diagnostics:     make(map[string]Diagnostic),
	}

	if problems := dictionary.ValidateAll(components); len(problems) > 0 {
		for _, p := range problems {
			c.log.Warn().Str("problem", p).Msg("Component failed validation")
		}
	}

	c.log.Info().
		Int("components", len(components)).
		Int("invalid", len(c.invalid)).
		Msg("Component dictionary loaded")

	return c, nil
}

// ResolveAll resolves components against a filing's concept index.
// When required is empty every valid component is attempted. Phase 1
// matches every component with label or local-name rules atomically,
// composites included, because a taxonomy sometimes publishes a direct
// concept for an aggregate. Phase 2 resolves the remaining
// formula-bearing components from already-resolved children.
func (c *Coordinator) ResolveAll(idx *concepts.Index, filingID string, required []string) *ResolutionMap {
	c.mu.RLock()
	defer c.mu.RUnlock()

	resolution := NewResolutionMap(filingID)
	toResolve := c.selectComponents(required)

	ids := make([]string, 0, len(toResolve))
	for id := range toResolve {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	c.log.Info().
		Int("components", len(ids)).
		Str("filing_id", filingID).
		Msg("Resolving components")

	for _, id := range ids {
		comp := toResolve[id]
		if len(comp.MatchingRules.LabelRules) == 0 && len(comp.MatchingRules.LocalNameRules) == 0 {
			continue
		}
		resolution.AddMatch(id, c.matchComponent(comp, idx))
	}

	for _, id := range ids {
		comp := toResolve[id]
		if comp.Composition.Formula == "" || resolution.IsResolved(id) {
			continue
		}
		resolution.AddComposite(id, c.resolveComposite(comp, resolution))
	}

	c.log.Info().
		Int("resolved", len(resolution.Resolved)).
		Int("attempted", len(ids)).
		Float64("high_confidence_rate", resolution.HighConfidenceRate()).
		Str("filing_id", filingID).
		Msg("Resolution complete")

	return resolution
}

// ResolveComponent resolves a single atomic component. Composites need
// the full two-phase pass and are reported as NO_MATCH here.
func (c *Coordinator) ResolveComponent(componentID string, idx *concepts.Index) MatchResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	comp, ok := c.components[componentID]
	if !ok {
		return NoMatch(componentID, "Unknown component: "+componentID)
	}
	if c.invalid[componentID] {
		return NoMatch(componentID, "Component failed validation")
	}
	if comp.IsComposite() {
		c.log.Warn().
			Str("component_id", componentID).
			Msg("Single resolution requested for composite component")
		return NoMatch(componentID, "Composite components require full resolution")
	}
	return c.matchComponent(comp, idx)
}

func (c *Coordinator) selectComponents(required []string) map[string]*dictionary.ComponentDefinition {
	out := make(map[string]*dictionary.ComponentDefinition)
	if len(required) > 0 {
		for _, id := range required {
			if comp, ok := c.components[id]; ok && !c.invalid[id] {
				out[id] = comp
			}
		}
		return out
	}
	for id, comp := range c.components {
		if !c.invalid[id] {
			out[id] = comp
		}
	}
	return out
}

// matchComponent runs the per-component state machine: candidates,
// rejection filter, evaluation, aggregation, threshold, tie-break. A
// panic while matching fails only this component.
func (c *Coordinator) matchComponent(comp *dictionary.ComponentDefinition, idx *concepts.Index) (result MatchResult) {
	componentID := comp.ComponentID

	defer func() {
		if r := recover(); r != nil {
			c.log.Error().
				Str("component_id", componentID).
				Interface("panic", r).
				Msg("Component resolution failed")
			c.storeDiagnostic(Diagnostic{
				ComponentID:   componentID,
				FailureReason: FailInternal,
			})
			result = NoMatch(componentID, fmt.Sprintf("internal fault: %v", r))
		}
	}()

	diag := Diagnostic{
		ComponentID: componentID,
		Filters:     map[string]string{},
	}
	for _, rule := range comp.MatchingRules.LabelRules {
		diag.SearchPatterns = append(diag.SearchPatterns, rule.Patterns...)
	}
	if comp.Characteristics.BalanceType != "" {
		diag.Filters["balance_type"] = string(comp.Characteristics.BalanceType)
	}
	if comp.Characteristics.PeriodType != "" {
		diag.Filters["period_type"] = string(comp.Characteristics.PeriodType)
	}

	candidates := c.getCandidates(comp, idx)
	diag.CandidatesFound = len(candidates)

	if len(candidates) == 0 {
		diag.FailureReason = FailNoCandidates
		c.storeDiagnostic(diag)
		c.log.Info().
			Str("component_id", componentID).
			Strs("patterns", diag.SearchPatterns).
			Msg("No candidates found")
		return NoMatch(componentID, "No candidates found")
	}

	c.log.Debug().
		Str("component_id", componentID).
		Int("candidates", len(candidates)).
		Msg("Evaluating candidates")

	var scoredMatches []scoring.ScoredMatch
	for _, concept := range candidates {
		if reason := c.checkRejection(concept, comp); reason != "" {
			diag.Rejections = append(diag.Rejections, RejectedCandidate{
				Concept: concept.QName,
				Reason:  reason,
			})
			continue
		}

		results := c.evaluate(concept, comp, idx)
		scored := c.aggregator.Aggregate(concept.QName, results, comp)

		if scored.TotalScore >= comp.Scoring.MinScore {
			scoredMatches = append(scoredMatches, scored)
			diag.PassedThreshold = append(diag.PassedThreshold, CandidateScore{
				Concept: scored.Concept,
				Score:   scored.TotalScore,
			})
		} else if scored.TotalScore > 0 {
			diag.BelowThreshold = append(diag.BelowThreshold, CandidateScore{
				Concept:     scored.Concept,
				Score:       scored.TotalScore,
				MinRequired: comp.Scoring.MinScore,
			})
		}
	}

	if len(scoredMatches) == 0 {
		var reason string
		if len(diag.Rejections) == len(candidates) {
			diag.FailureReason = FailAllRejected
			reason = fmt.Sprintf("All %d candidates rejected", len(candidates))
		} else {
			diag.FailureReason = FailBelowThreshold
			reason = fmt.Sprintf("No candidates met min score (%d)", comp.Scoring.MinScore)
		}
		c.storeDiagnostic(diag)
		c.log.Info().
			Str("component_id", componentID).
			Str("reason", reason).
			Msg("No match")
		return NoMatch(componentID, reason)
	}

	// Stable keeps the deterministic candidate order among equal
	// scores, so tiebreaking sees the same input every run.
	sort.SliceStable(scoredMatches, func(i, j int) bool {
		return scoredMatches[i].TotalScore > scoredMatches[j].TotalScore
	})

	topScore := scoredMatches[0].TotalScore
	ties := 0
	for _, m := range scoredMatches {
		if m.TotalScore == topScore {
			ties++
		}
	}

	var best scoring.ScoredMatch
	var tiebreakerUsed string
	var alternatives []scoring.ScoredMatch

	if ties > 1 {
		best, tiebreakerUsed = c.tiebreaker.Resolve(scoredMatches[:ties], comp.Scoring.Tiebreaker, idx)
		for _, m := range scoredMatches {
			if m.Concept != best.Concept && len(alternatives) < MaxAlternatives {
				alternatives = append(alternatives, m)
			}
		}
	} else {
		best = scoredMatches[0]
		if len(scoredMatches) > 1 {
			rest := scoredMatches[1:]
			if len(rest) > MaxAlternatives {
				rest = rest[:MaxAlternatives]
			}
			alternatives = rest
		}
	}

	diag.MatchedConcept = best.Concept
	diag.MatchedScore = best.TotalScore
	c.storeDiagnostic(diag)

	c.log.Info().
		Str("component_id", componentID).
		Str("concept", best.Concept).
		Int("score", best.TotalScore).
		Str("confidence", string(best.Confidence)).
		Msg("Component matched")

	return FromScoredMatch(componentID, best, alternatives, tiebreakerUsed)
}

// evaluate runs each rule category the component defines.
func (c *Coordinator) evaluate(concept *concepts.Metadata, comp *dictionary.ComponentDefinition, idx *concepts.Index) map[string]evaluators.EvaluationResult {
	results := make(map[string]evaluators.EvaluationResult)
	rules := comp.MatchingRules

	if len(rules.LabelRules) > 0 {
		results[evaluators.TypeLabel] = c.labelEval.Evaluate(concept, rules.LabelRules)
	}
	if len(rules.LocalNameRules) > 0 {
		results[evaluators.TypeLocalName] = c.localNameEval.Evaluate(concept, rules.LocalNameRules)
	}
	if len(rules.HierarchyRules) > 0 {
		results[evaluators.TypeHierarchy] = c.hierarchyEval.Evaluate(concept, rules.HierarchyRules, idx)
	}
	if len(rules.CalculationRules) > 0 {
		results[evaluators.TypeCalculation] = c.calculationEval.Evaluate(concept, rules.CalculationRules, idx)
	}
	if len(rules.DefinitionRules) > 0 {
		results[evaluators.TypeDefinition] = c.definitionEval.Evaluate(concept, rules.DefinitionRules)
	}
	return results
}

// getCandidates queries the index with the component's label and
// local-name patterns, then applies the universal non-value filter.
func (c *Coordinator) getCandidates(comp *dictionary.ComponentDefinition, idx *concepts.Index) []*concepts.Metadata {
	var labelPatterns, localNamePatterns []string
	for _, rule := range comp.MatchingRules.LabelRules {
		labelPatterns = append(labelPatterns, rule.Patterns...)
	}
	for _, rule := range comp.MatchingRules.LocalNameRules {
		localNamePatterns = append(localNamePatterns, rule.Patterns...)
	}

	qnames := idx.Candidates(concepts.CandidateQuery{
		LabelPatterns:     labelPatterns,
		LocalNamePatterns: localNamePatterns,
		BalanceType:       comp.Characteristics.BalanceType,
		PeriodType:        comp.Characteristics.PeriodType,
		ExcludeAbstract:   !comp.Characteristics.IsAbstract,
	})

	candidates := make([]*concepts.Metadata, 0, len(qnames))
	for _, qname := range qnames {
		concept := idx.Get(qname)
		if concept == nil {
			continue
		}
		if isUniversallyExcluded(concept.LocalName) {
			continue
		}
		candidates = append(candidates, concept)
	}
	return candidates
}

func isUniversallyExcluded(localName string) bool {
	lower := strings.ToLower(localName)
	for _, excl := range universalExcludes {
		if strings.Contains(lower, excl) {
			return true
		}
	}
	return false
}

// checkRejection returns the condition name of the first reject_if
// entry the concept matches, or "".
func (c *Coordinator) checkRejection(concept *concepts.Metadata, comp *dictionary.ComponentDefinition) string {
	for _, cond := range comp.Scoring.RejectIf {
		if matchesRejection(concept, cond) {
			return cond.Condition
		}
	}
	return ""
}

// matchesRejection evaluates one rejection pattern. Supported forms:
// "abstract=true", "label~keyword", "name~pattern".
func matchesRejection(concept *concepts.Metadata, cond dictionary.RejectionCondition) bool {
	pattern := cond.Pattern

	if pattern == "abstract=true" {
		return concept.IsAbstract
	}

	if keyword, ok := strings.CutPrefix(pattern, "label~"); ok {
		lower := strings.ToLower(keyword)
		for _, label := range concept.AllLabels() {
			if strings.Contains(strings.ToLower(label), lower) {
				return true
			}
		}
		return false
	}

	if keyword, ok := strings.CutPrefix(pattern, "name~"); ok {
		return strings.Contains(strings.ToLower(concept.LocalName), strings.ToLower(keyword))
	}

	return false
}

// resolveComposite checks the primary formula's children against the
// resolution so far, then the alternatives in order. The first fully
// satisfied formula wins.
func (c *Coordinator) resolveComposite(comp *dictionary.ComponentDefinition, resolution *ResolutionMap) CompositeResolution {
	componentID := comp.ComponentID
	composition := comp.Composition

	var missing []string
	childConcepts := make(map[string]string)
	for _, childID := range composition.Components {
		if resolution.IsResolved(childID) {
			if qname := resolution.Concept(childID); qname != "" {
				childConcepts[childID] = qname
			}
		} else {
			missing = append(missing, childID)
		}
	}

	if len(missing) == 0 {
		return CompositeResolution{
			ComponentID:       componentID,
			Resolved:          true,
			Formula:           composition.Formula,
			ComponentConcepts: childConcepts,
		}
	}

	for _, alt := range composition.Alternatives {
		altConcepts := make(map[string]string)
		satisfied := true
		for _, childID := range alt.Components {
			if !resolution.IsResolved(childID) {
				satisfied = false
				break
			}
			if qname := resolution.Concept(childID); qname != "" {
				altConcepts[childID] = qname
			}
		}
		if satisfied {
			c.log.Debug().
				Str("component_id", componentID).
				Str("formula", alt.Formula).
				Msg("Composite resolved via alternative formula")
			return CompositeResolution{
				ComponentID:       componentID,
				Resolved:          true,
				Formula:           alt.Formula,
				ComponentConcepts: altConcepts,
			}
		}
	}

	return CompositeResolution{
		ComponentID:       componentID,
		Resolved:          false,
		Formula:           composition.Formula,
		ComponentConcepts: childConcepts,
		MissingComponents: missing,
	}
}

func (c *Coordinator) storeDiagnostic(diag Diagnostic) {
	c.diagMu.Lock()
	c.diagnostics[diag.ComponentID] = diag
	c.diagMu.Unlock()
}

// Diagnostics returns a copy of the per-component audit trail from the
// most recent match attempts.
func (c *Coordinator) Diagnostics() map[string]Diagnostic {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	out := make(map[string]Diagnostic, len(c.diagnostics))
	for id, d := range c.diagnostics {
		out[id] = d
	}
	return out
}

// Component returns a component definition by id.
func (c *Coordinator) Component(componentID string) (*dictionary.ComponentDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	comp, ok := c.components[componentID]
	return comp, ok
}

// Components returns all loaded component definitions.
func (c *Coordinator) Components() map[string]*dictionary.ComponentDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*dictionary.ComponentDefinition, len(c.components))
	for id, comp := range c.components {
		out[id] = comp
	}
	return out
}

// ValidationProblems re-runs the dictionary validation pass.
func (c *Coordinator) ValidationProblems() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return dictionary.ValidateAll(c.components)
}

// Reload re-reads the dictionary from disk. Invalid components are
// re-derived from the fresh table.
func (c *Coordinator) Reload() error {
	c.loader.ClearCache()
	components, err := c.loader.LoadAll()
	if err != nil {
		return fmt.Errorf("reloading component dictionary: %w", err)
	}

	c.mu.Lock()
	c.components = components
	c.invalid = dictionary.InvalidComponents(components)
	c.mu.Unlock()

	c.log.Info().Int("components", len(components)).Msg("Component dictionary reloaded")
	return nil
}
