package concepts

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aristath/statement-mapper/internal/domain"
)

// DefaultMaxCandidates caps the candidate set returned by Candidates.
const DefaultMaxCandidates = 100

var tokenPattern = regexp.MustCompile(`[a-zA-Z]+`)

// Index owns all concept metadata for one filing plus inverted indices
// for fast candidate retrieval. Built once, then read-only during
// matching; a filing's resolution never mutates it.
type Index struct {
	concepts map[string]*Metadata
	order    []string // insertion order, for deterministic iteration

	byLocalName   map[string][]string
	byLabelWord   map[string]map[string]bool
	byBalanceType map[domain.BalanceType][]string
	byPeriodType  map[domain.PeriodType][]string
	byParent      map[string][]string
	byLevel       map[int][]string
}

// NewIndex creates an empty concept index.
func NewIndex() *Index {
	return &Index{
		concepts:      make(map[string]*Metadata),
		byLocalName:   make(map[string][]string),
		byLabelWord:   make(map[string]map[string]bool),
		byBalanceType: make(map[domain.BalanceType][]string),
		byPeriodType:  make(map[domain.PeriodType][]string),
		byParent:      make(map[string][]string),
		byLevel:       make(map[int][]string),
	}
}

// BuildIndex indexes a slice of concepts.
func BuildIndex(metadata []*Metadata) *Index {
	idx := NewIndex()
	for _, m := range metadata {
		idx.Add(m)
	}
	return idx
}

// Add indexes one concept.
func (idx *Index) Add(m *Metadata) {
	qname := m.QName
	if _, exists := idx.concepts[qname]; !exists {
		idx.order = append(idx.order, qname)
	}
	idx.concepts[qname] = m

	localLower := strings.ToLower(m.LocalName)
	idx.byLocalName[localLower] = append(idx.byLocalName[localLower], qname)

	for _, label := range m.Labels {
		for _, word := range Tokenize(label) {
			if idx.byLabelWord[word] == nil {
				idx.byLabelWord[word] = make(map[string]bool)
			}
			idx.byLabelWord[word][qname] = true
		}
	}

	if m.BalanceType != "" {
		idx.byBalanceType[m.BalanceType] = append(idx.byBalanceType[m.BalanceType], qname)
	}
	if m.PeriodType != "" {
		idx.byPeriodType[m.PeriodType] = append(idx.byPeriodType[m.PeriodType], qname)
	}
	if m.PresentationParent != "" {
		idx.byParent[m.PresentationParent] = append(idx.byParent[m.PresentationParent], qname)
	}
	idx.byLevel[m.PresentationLevel] = append(idx.byLevel[m.PresentationLevel], qname)
}

// Get returns the metadata for a qname, or nil.
func (idx *Index) Get(qname string) *Metadata {
	return idx.concepts[qname]
}

// Contains reports whether the qname is indexed.
func (idx *Index) Contains(qname string) bool {
	_, ok := idx.concepts[qname]
	return ok
}

// Len returns the number of indexed concepts.
func (idx *Index) Len() int {
	return len(idx.concepts)
}

// All returns every indexed concept in insertion order.
func (idx *Index) All() []*Metadata {
	out := make([]*Metadata, 0, len(idx.order))
	for _, qname := range idx.order {
		out = append(out, idx.concepts[qname])
	}
	return out
}

// FindByLocalName returns qnames whose local name matches the pattern.
// Patterns support "*" at either or both ends: "*x*" contains, "*x"
// suffix, "x*" prefix, bare "x" exact. Matching is case-insensitive.
func (idx *Index) FindByLocalName(pattern string) []string {
	needle := strings.ToLower(strings.ReplaceAll(pattern, "*", ""))
	hasLeading := strings.HasPrefix(pattern, "*")
	hasTrailing := strings.HasSuffix(pattern, "*")

	var matches []string
	for localName, qnames := range idx.byLocalName {
		var ok bool
		switch {
		case hasLeading && hasTrailing:
			ok = strings.Contains(localName, needle)
		case hasLeading:
			ok = strings.HasSuffix(localName, needle)
		case hasTrailing:
			ok = strings.HasPrefix(localName, needle)
		default:
			ok = localName == needle
		}
		if ok {
			matches = append(matches, qnames...)
		}
	}
	sort.Strings(matches)
	return matches
}

// FindByLabelWords returns the qnames whose labels contain ALL of the
// given words (intersection semantics).
func (idx *Index) FindByLabelWords(words []string) map[string]bool {
	result := make(map[string]bool)
	if len(words) == 0 {
		return result
	}

	first := strings.ToLower(words[0])
	for qname := range idx.byLabelWord[first] {
		result[qname] = true
	}
	for _, word := range words[1:] {
		wordSet := idx.byLabelWord[strings.ToLower(word)]
		for qname := range result {
			if !wordSet[qname] {
				delete(result, qname)
			}
		}
	}
	return result
}

// FindChildrenOf returns the presentation children of a parent qname.
func (idx *Index) FindChildrenOf(parentQName string) []string {
	return idx.byParent[parentQName]
}

// FindAtLevel returns qnames at the given presentation depth.
func (idx *Index) FindAtLevel(level int) []string {
	return idx.byLevel[level]
}

// CandidateQuery is the retrieval request for one component.
type CandidateQuery struct {
	LabelPatterns     []string
	LocalNamePatterns []string
	BalanceType       domain.BalanceType
	PeriodType        domain.PeriodType
	ExcludeAbstract   bool
	MaxCandidates     int
}

// Candidates retrieves likely concepts for a component before full
// rule evaluation.
//
// Retrieval unions (not intersects) the per-word label index hits,
// adds local-name wildcard hits, and falls back to treating label
// patterns as local names when nothing was found (extension concepts
// often carry no indexed label). Characteristic filtering is
// permissive: a concept is only dropped on an active mismatch, never
// for lacking the attribute, because taxonomies annotate balance and
// period types inconsistently.
//
// The result is sorted by qname so iteration downstream is
// deterministic; ranking happens in scoring, not here.
func (idx *Index) Candidates(q CandidateQuery) []string {
	maxCandidates := q.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}

	matches := make(map[string]bool)

	for _, pattern := range q.LabelPatterns {
		for _, word := range Tokenize(pattern) {
			for qname := range idx.byLabelWord[word] {
				matches[qname] = true
			}
		}
	}

	// Local-name patterns catch company extensions whose labels differ.
	for _, pattern := range q.LocalNamePatterns {
		for _, qname := range idx.FindByLocalName("*" + strings.Trim(pattern, "*") + "*") {
			matches[qname] = true
		}
	}

	// Last resort: try label patterns as local names.
	if len(matches) == 0 {
		for _, pattern := range q.LabelPatterns {
			for _, qname := range idx.FindByLocalName("*" + strings.Trim(pattern, "*") + "*") {
				matches[qname] = true
			}
		}
	}

	if len(matches) == 0 {
		for qname := range idx.concepts {
			matches[qname] = true
		}
	}

	var out []string
	for qname := range matches {
		m := idx.concepts[qname]
		if m == nil {
			continue
		}
		if !characteristicCompatible(string(q.BalanceType), string(m.BalanceType)) {
			continue
		}
		if !characteristicCompatible(string(q.PeriodType), string(m.PeriodType)) {
			continue
		}
		if q.ExcludeAbstract && m.IsAbstract {
			continue
		}
		out = append(out, qname)
	}

	sort.Strings(out)
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

// characteristicCompatible is the permissive filter predicate: a
// candidate passes unless both sides are set and disagree.
func characteristicCompatible(want, got string) bool {
	return want == "" || got == "" || want == got
}

// Tokenize splits text into lowercase alphabetic words of length >= 3,
// the unit the label-word index is keyed on.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	words := make([]string, 0, len(raw))
	for _, w := range raw {
		if len(w) >= 3 {
			words = append(words, w)
		}
	}
	return words
}
