package concepts

import (
	"strings"

	"github.com/aristath/statement-mapper/internal/domain"
)

// Reference is an accounting standard reference attached to a concept.
type Reference struct {
	Standard  string `json:"standard"`
	Section   string `json:"section"`
	Paragraph string `json:"paragraph,omitempty"`
}

// CalculationChild is a weighted child edge in the calculation linkbase.
type CalculationChild struct {
	QName  string  `json:"qname"`
	Weight float64 `json:"weight"`
	Order  float64 `json:"order"`
}

// CalculationParent is a weighted parent edge in the calculation linkbase.
type CalculationParent struct {
	QName  string  `json:"qname"`
	Weight float64 `json:"weight"`
}

// Metadata holds every attribute of one taxonomy concept that matching
// rules can test. Built by the taxonomy/instance extractor, owned by
// the Index for the duration of one filing, never mutated after
// indexing.
type Metadata struct {
	QName     string `json:"qname"`
	LocalName string `json:"local_name"`
	Namespace string `json:"namespace,omitempty"`
	Prefix    string `json:"prefix,omitempty"`

	// Labels by type: standard, terse, verbose, documentation, negated.
	Labels map[string]string `json:"labels,omitempty"`

	Definition string `json:"definition,omitempty"`

	BalanceType domain.BalanceType `json:"balance_type,omitempty"`
	PeriodType  domain.PeriodType  `json:"period_type,omitempty"`
	IsAbstract  bool               `json:"is_abstract"`
	DataType    string             `json:"data_type,omitempty"`

	References []Reference `json:"references,omitempty"`

	PresentationParent   string   `json:"presentation_parent,omitempty"`
	PresentationLevel    int      `json:"presentation_level"`
	PresentationOrder    float64  `json:"presentation_order"`
	PresentationSiblings []string `json:"presentation_siblings,omitempty"`

	CalculationChildren []CalculationChild  `json:"calculation_children,omitempty"`
	CalculationParents  []CalculationParent `json:"calculation_parents,omitempty"`
}

// Label returns the label of the given type, or empty.
func (m *Metadata) Label(labelType string) string {
	return m.Labels[labelType]
}

// AllLabels returns every label text on the concept.
func (m *Metadata) AllLabels() []string {
	out := make([]string, 0, len(m.Labels))
	for _, text := range m.Labels {
		out = append(out, text)
	}
	return out
}

// HasReference reports whether the concept carries a reference to the
// given standard whose section contains the requested section string.
func (m *Metadata) HasReference(standard, section string) bool {
	for _, ref := range m.References {
		if ref.Standard == standard && strings.Contains(ref.Section, section) {
			return true
		}
	}
	return false
}

// CalculationChildQNames returns the qnames of calculation children.
func (m *Metadata) CalculationChildQNames() []string {
	out := make([]string, 0, len(m.CalculationChildren))
	for _, child := range m.CalculationChildren {
		out = append(out, child.QName)
	}
	return out
}

// LocalNameOf extracts the local part of a qname. Handles both
// prefix:Local and prefix_Local forms seen in linkbase exports.
func LocalNameOf(qname string) string {
	local := qname
	if i := strings.LastIndex(local, ":"); i >= 0 {
		local = local[i+1:]
	}
	if i := strings.LastIndex(local, "_"); i >= 0 {
		local = local[i+1:]
	}
	return local
}
