// Package ontology holds the static knowledge base the engine analyzes
// against: business domains with their vocabulary, and the component catalog.
// Both are loaded once at startup and shared read-only by all sessions.
package ontology

import (
	"fmt"
	"strings"

	"archscope/internal/errors"
)

// DomainKind classifies what role a domain plays in the system. The scorer's
// fixed rules target domains by kind (the UI rule adds the frontend-kind
// domain, the side-effect rule the integration-kind domain).
type DomainKind string

const (
	KindBusiness    DomainKind = "business"
	KindFrontend    DomainKind = "frontend"
	KindIntegration DomainKind = "integration"
	KindAnalytics   DomainKind = "analytics"
	KindOther       DomainKind = "other"
)

// Domain represents a named business capability grouping
type Domain struct {
	// Name is the unique domain name (e.g. "Customer & Identity")
	Name string `yaml:"name"`

	// Kind classifies the domain for rule targeting
	Kind DomainKind `yaml:"kind"`

	// Responsibility is a one-line description of what the domain owns
	Responsibility string `yaml:"responsibility,omitempty"`

	// Triggers maps vocabulary phrases to evidence weights. A zero weight
	// means "use the configured default weight".
	Triggers map[string]float64 `yaml:"triggers,omitempty"`

	// OwnedEntities are the business entities this domain has ownership over
	OwnedEntities []string `yaml:"owned_entities,omitempty"`

	// Components are the catalog component names typically found in this domain
	Components []string `yaml:"components,omitempty"`
}

// Ontology is the immutable set of domains plus precomputed normalized
// lookup tables. Construct with New; never mutate after.
type Ontology struct {
	domains []Domain

	byName map[string]int
	// normalized trigger term -> domain name -> weight
	triggers map[string]map[string]float64
	// normalized entity term -> owning domain name
	owners map[string]string
}

// New validates the domain list and builds an Ontology.
func New(domains []Domain, defaultTriggerWeight float64) (*Ontology, error) {
	if defaultTriggerWeight <= 0 {
		defaultTriggerWeight = 1.0
	}

	o := &Ontology{
		domains:  make([]Domain, len(domains)),
		byName:   make(map[string]int, len(domains)),
		triggers: make(map[string]map[string]float64),
		owners:   make(map[string]string),
	}
	copy(o.domains, domains)

	for i, d := range o.domains {
		if strings.TrimSpace(d.Name) == "" {
			return nil, errors.New(errors.OntologyInvalid, fmt.Sprintf("domain at index %d has no name", i), nil)
		}
		if _, dup := o.byName[d.Name]; dup {
			return nil, errors.New(errors.OntologyInvalid, fmt.Sprintf("duplicate domain name %q", d.Name), nil)
		}
		if d.Kind == "" {
			o.domains[i].Kind = KindBusiness
		}
		o.byName[d.Name] = i

		for phrase, weight := range d.Triggers {
			if weight < 0 {
				return nil, errors.New(errors.OntologyInvalid,
					fmt.Sprintf("domain %q trigger %q has negative weight", d.Name, phrase), nil)
			}
			if weight == 0 {
				weight = defaultTriggerWeight
			}
			term := NormalizeTerm(phrase)
			if term == "" {
				continue
			}
			if o.triggers[term] == nil {
				o.triggers[term] = make(map[string]float64)
			}
			o.triggers[term][d.Name] = weight
		}

		for _, entity := range d.OwnedEntities {
			term := NormalizeTerm(entity)
			if term == "" {
				continue
			}
			if owner, taken := o.owners[term]; taken && owner != d.Name {
				return nil, errors.New(errors.OntologyInvalid,
					fmt.Sprintf("entity %q owned by both %q and %q", entity, owner, d.Name), nil)
			}
			o.owners[term] = d.Name
		}
	}

	return o, nil
}

// Domains returns the domains in declaration order.
func (o *Ontology) Domains() []Domain {
	return o.domains
}

// Domain returns the domain with the given name.
func (o *Ontology) Domain(name string) (Domain, bool) {
	i, ok := o.byName[name]
	if !ok {
		return Domain{}, false
	}
	return o.domains[i], true
}

// FirstOfKind returns the first declared domain of the given kind. The
// scorer's UI and side-effect rules use this to locate their target domain.
func (o *Ontology) FirstOfKind(kind DomainKind) (Domain, bool) {
	for _, d := range o.domains {
		if d.Kind == kind {
			return d, true
		}
	}
	return Domain{}, false
}

// TriggerWeights returns domain-name -> weight for a normalized term, or nil.
func (o *Ontology) TriggerWeights(term string) map[string]float64 {
	return o.triggers[term]
}

// OwnerOf returns the domain owning the given normalized entity term.
func (o *Ontology) OwnerOf(term string) (string, bool) {
	owner, ok := o.owners[term]
	return owner, ok
}

// VocabularyTerms returns every normalized trigger and owned-entity term,
// in no particular order. The tagger compiles its matcher from this.
func (o *Ontology) VocabularyTerms() []string {
	seen := make(map[string]bool, len(o.triggers)+len(o.owners))
	terms := make([]string, 0, len(o.triggers)+len(o.owners))
	for t := range o.triggers {
		if !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}
	for t := range o.owners {
		if !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}
	return terms
}

// IsOwnedEntity reports whether the normalized term is owned by any domain.
func (o *Ontology) IsOwnedEntity(term string) bool {
	_, ok := o.owners[term]
	return ok
}

// NormalizeTerm lowercases a phrase, collapses whitespace, strips surrounding
// punctuation per word, and naively singularizes the final word. This is a
// heuristic shared by the tagger and the scorer so both sides of a match are
// normalized the same way.
func NormalizeTerm(phrase string) string {
	words := strings.Fields(strings.ToLower(phrase))
	if len(words) == 0 {
		return ""
	}
	for i, w := range words {
		words[i] = strings.Trim(w, ".,;:!?\"'()[]")
	}
	last := len(words) - 1
	words[last] = singularize(words[last])
	return strings.Join(words, " ")
}

// singularize strips common English plural suffixes. Intentionally naive.
func singularize(word string) string {
	switch {
	case len(word) > 3 && strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case len(word) > 4 && (strings.HasSuffix(word, "ses") ||
		strings.HasSuffix(word, "xes") ||
		strings.HasSuffix(word, "zes") ||
		strings.HasSuffix(word, "ches") ||
		strings.HasSuffix(word, "shes")):
		return word[:len(word)-2]
	case len(word) > 3 && strings.HasSuffix(word, "s") &&
		!strings.HasSuffix(word, "ss") &&
		!strings.HasSuffix(word, "us") &&
		!strings.HasSuffix(word, "is"):
		return word[:len(word)-1]
	default:
		return word
	}
}
