package matching

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/aristath/statement-mapper/internal/domain"
)

// EngineVersion is stamped on every resolution map so persisted runs
// can be compared across rule corpus revisions.
const EngineVersion = "1.0.0"

// ResolvedComponent is a component with its final concept. Composite
// components carry a formula marker instead of a concept qname.
type ResolvedComponent struct {
	ComponentID string            `json:"component_id"`
	Concept     string            `json:"concept"`
	Confidence  domain.Confidence `json:"confidence"`
	Score       int               `json:"score"`
	IsComposite bool              `json:"is_composite"`
}

// CompositeResolution records a formula-based resolution attempt.
// Formula holds whichever formula actually satisfied (primary or an
// alternative); MissingComponents lists the unmet children of the
// primary formula when nothing satisfied.
type CompositeResolution struct {
	ComponentID       string            `json:"component_id"`
	Resolved          bool              `json:"resolved"`
	Formula           string            `json:"formula,omitempty"`
	ComponentConcepts map[string]string `json:"component_concepts,omitempty"`
	MissingComponents []string          `json:"missing_components,omitempty"`
}

// Summary is the roll-up attached to a serialized resolution map.
type Summary struct {
	TotalComponents    int     `json:"total_components"`
	Resolved           int     `json:"resolved"`
	Unresolved         int     `json:"unresolved"`
	ResolutionRate     float64 `json:"resolution_rate"`
	HighConfidenceRate float64 `json:"high_confidence_rate"`
	MeanScore          float64 `json:"mean_score"`
	ScoreStdDev        float64 `json:"score_std_dev"`
}

// ResolutionMap is the complete component-to-concept mapping for one
// filing. It is populated incrementally during resolution and then
// treated as read-only. Every component id lands in exactly one of
// Resolved or Unresolved.
type ResolutionMap struct {
	FilingID      string                         `json:"filing_id"`
	ResolvedAt    time.Time                      `json:"resolved_at"`
	EngineVersion string                         `json:"engine_version"`
	Matches       map[string]MatchResult         `json:"matches"`
	Resolved      map[string]ResolvedComponent   `json:"resolved"`
	Composites    map[string]CompositeResolution `json:"composites"`
	Unresolved    []string                       `json:"unresolved"`
}

// NewResolutionMap creates an empty resolution map for a filing.
func NewResolutionMap(filingID string) *ResolutionMap {
	return &ResolutionMap{
		FilingID:      filingID,
		ResolvedAt:    time.Now().UTC(),
		EngineVersion: EngineVersion,
		Matches:       make(map[string]MatchResult),
		Resolved:      make(map[string]ResolvedComponent),
		Composites:    make(map[string]CompositeResolution),
	}
}

// AddMatch records an atomic match result.
func (m *ResolutionMap) AddMatch(componentID string, result MatchResult) {
	m.Matches[componentID] = result

	if result.IsMatched() {
		m.Resolved[componentID] = ResolvedComponent{
			ComponentID: componentID,
			Concept:     result.MatchedConcept,
			Confidence:  result.Confidence,
			Score:       result.TotalScore,
		}
		return
	}
	m.markUnresolved(componentID)
}

// AddComposite records a formula-based resolution. A satisfied
// composite resolves at full score with high confidence, since every
// child was independently matched.
func (m *ResolutionMap) AddComposite(componentID string, resolution CompositeResolution) {
	m.Composites[componentID] = resolution

	if resolution.Resolved {
		m.Resolved[componentID] = ResolvedComponent{
			ComponentID: componentID,
			Concept:     "COMPOSITE:" + resolution.Formula,
			Confidence:  domain.ConfidenceHigh,
			Score:       100,
			IsComposite: true,
		}
		m.removeUnresolved(componentID)
		return
	}
	m.markUnresolved(componentID)
}

func (m *ResolutionMap) markUnresolved(componentID string) {
	for _, id := range m.Unresolved {
		if id == componentID {
			return
		}
	}
	m.Unresolved = append(m.Unresolved, componentID)
}

func (m *ResolutionMap) removeUnresolved(componentID string) {
	for i, id := range m.Unresolved {
		if id == componentID {
			m.Unresolved = append(m.Unresolved[:i], m.Unresolved[i+1:]...)
			return
		}
	}
}

// Concept returns the matched concept qname for an atomically resolved
// component, or "" when the component is unresolved or composite.
func (m *ResolutionMap) Concept(componentID string) string {
	if rc, ok := m.Resolved[componentID]; ok && !rc.IsComposite {
		return rc.Concept
	}
	return ""
}

// Composite returns the composite resolution for a component, if any.
func (m *ResolutionMap) Composite(componentID string) (CompositeResolution, bool) {
	cr, ok := m.Composites[componentID]
	return cr, ok
}

// IsResolved reports whether the component resolved, atomically or by
// formula.
func (m *ResolutionMap) IsResolved(componentID string) bool {
	_, ok := m.Resolved[componentID]
	return ok
}

// ConfidenceOf returns the confidence of a resolved component, NONE
// otherwise.
func (m *ResolutionMap) ConfidenceOf(componentID string) domain.Confidence {
	if rc, ok := m.Resolved[componentID]; ok {
		return rc.Confidence
	}
	return domain.ConfidenceNone
}

// ResolutionRate is the percentage of attempted components that
// resolved.
func (m *ResolutionMap) ResolutionRate() float64 {
	total := len(m.Matches) + len(m.Composites)
	if total == 0 {
		return 0
	}
	return float64(len(m.Resolved)) / float64(total) * 100
}

// HighConfidenceRate is the percentage of resolved components at high
// confidence.
func (m *ResolutionMap) HighConfidenceRate() float64 {
	if len(m.Resolved) == 0 {
		return 0
	}
	high := 0
	for _, rc := range m.Resolved {
		if rc.Confidence == domain.ConfidenceHigh {
			high++
		}
	}
	return float64(high) / float64(len(m.Resolved)) * 100
}

// Summary computes the roll-up statistics over the map.
func (m *ResolutionMap) Summary() Summary {
	scores := make([]float64, 0, len(m.Resolved))
	for _, id := range sortedKeys(m.Resolved) {
		scores = append(scores, float64(m.Resolved[id].Score))
	}

	var mean, stddev float64
	if len(scores) > 0 {
		mean = stat.Mean(scores, nil)
	}
	if len(scores) > 1 {
		stddev = stat.StdDev(scores, nil)
	}

	return Summary{
		TotalComponents:    len(m.Matches) + len(m.Composites),
		Resolved:           len(m.Resolved),
		Unresolved:         len(m.Unresolved),
		ResolutionRate:     m.ResolutionRate(),
		HighConfidenceRate: m.HighConfidenceRate(),
		MeanScore:          mean,
		ScoreStdDev:        stddev,
	}
}

// ToSimpleMap returns component id to concept qname for non-composite
// resolved components, the view a value extractor consumes.
func (m *ResolutionMap) ToSimpleMap() map[string]string {
	out := make(map[string]string, len(m.Resolved))
	for id, rc := range m.Resolved {
		if !rc.IsComposite {
			out[id] = rc.Concept
		}
	}
	return out
}

func sortedKeys(m map[string]ResolvedComponent) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
