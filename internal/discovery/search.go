// Package discovery performs ranked textual search of the component catalog
// for a business context. It resolves LOW/MEDIUM confidence items by finding
// candidate components; an empty result means "no discovery evidence" and is
// never an error.
package discovery

import (
	"context"
	"sort"
	"strings"

	"archscope/internal/ontology"
)

// Weights controls how the match signals are combined in ranking.
type Weights struct {
	Name     int `json:"name" mapstructure:"name"`         // component name substring match
	Domain   int `json:"domain" mapstructure:"domain"`     // declared domain name match
	Fragment int `json:"fragment" mapstructure:"fragment"` // API/event name fragment match
}

// DefaultWeights returns the default signal weights: name matches dominate,
// domain matches help, fragment matches tip the balance.
func DefaultWeights() Weights {
	return Weights{Name: 3, Domain: 2, Fragment: 1}
}

// Match is one ranked search result
type Match struct {
	Component ontology.ComponentDescriptor `json:"component"`
	Score     int                          `json:"score"`

	// Breakdown counts matches per signal, useful when explaining ranking
	Breakdown map[string]int `json:"breakdown,omitempty"`
}

// Backend is the discovery contract. A richer codebase search (full-text
// index, symbol search) may be substituted here without changing any other
// component, provided it preserves the ranking and empty-result contracts.
type Backend interface {
	Discover(ctx context.Context, terms []string) ([]Match, error)
}

// CatalogSearch is the default in-memory backend over the component catalog.
type CatalogSearch struct {
	catalog *ontology.Catalog
	weights Weights
}

// NewCatalogSearch creates the default backend
func NewCatalogSearch(catalog *ontology.Catalog, weights Weights) *CatalogSearch {
	return &CatalogSearch{catalog: catalog, weights: weights}
}

// Discover ranks catalog components against the context terms. Ties keep
// catalog insertion order (stable, deterministic). Never returns an error.
func (s *CatalogSearch) Discover(_ context.Context, terms []string) ([]Match, error) {
	matches := make([]Match, 0)
	if len(terms) == 0 {
		return matches, nil
	}

	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = ontology.NormalizeTerm(t); t != "" {
			normalized = append(normalized, t)
		}
	}

	for _, comp := range s.catalog.Snapshot() {
		m := s.scoreComponent(comp, normalized)
		if m.Score > 0 {
			matches = append(matches, m)
		}
	}

	// Stable sort preserves insertion order within equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches, nil
}

func (s *CatalogSearch) scoreComponent(comp ontology.ComponentDescriptor, terms []string) Match {
	name := strings.ToLower(comp.Name)
	domain := strings.ToLower(comp.Domain)

	fragments := make([]string, 0, len(comp.APIs)+len(comp.PublishedEvents)+len(comp.ConsumedEvents))
	for _, f := range comp.APIs {
		fragments = append(fragments, strings.ToLower(f))
	}
	for _, f := range comp.PublishedEvents {
		fragments = append(fragments, strings.ToLower(f))
	}
	for _, f := range comp.ConsumedEvents {
		fragments = append(fragments, strings.ToLower(f))
	}

	breakdown := map[string]int{"name": 0, "domain": 0, "fragment": 0}
	for _, term := range terms {
		if strings.Contains(name, term) {
			breakdown["name"]++
		}
		if strings.Contains(domain, term) {
			breakdown["domain"]++
		}
		for _, f := range fragments {
			if strings.Contains(f, term) {
				breakdown["fragment"]++
			}
		}
	}

	score := breakdown["name"]*s.weights.Name +
		breakdown["domain"]*s.weights.Domain +
		breakdown["fragment"]*s.weights.Fragment

	return Match{Component: comp, Score: score, Breakdown: breakdown}
}
