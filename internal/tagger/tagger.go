// Package tagger extracts business entities, actions, and qualifiers from
// change-request prose. It is a vocabulary heuristic, not a parser: phrases
// are matched greedily against the ontology's vocabulary plus built-in verb
// and qualifier lexicons, and adjectival qualifiers attach to the nearest
// entity by adjacency.
package tagger

import (
	"strings"

	"archscope/internal/ontology"
)

// TagKind represents the grammatical role of a tag
type TagKind string

const (
	// Entity is a business noun (owned entity or domain vocabulary)
	Entity TagKind = "entity"
	// Action is a verb describing the requested behavior
	Action TagKind = "action"
	// Qualifier is an adjectival modifier attached to an entity
	Qualifier TagKind = "qualifier"
)

// Tag is one extracted span. Output order preserves input order; the first
// Entity tag with an ownership match is the primary entity downstream.
type Tag struct {
	// Text is the original span as it appeared in the input
	Text string `json:"text"`

	// Kind is the tag's role
	Kind TagKind `json:"kind"`

	// Term is the normalized form used for all matching
	Term string `json:"term"`

	// Position is the token index where the span starts
	Position int `json:"position"`

	// AttachedTo is the index (into the tag sequence) of the entity a
	// qualifier modifies, or -1
	AttachedTo int `json:"attachedTo"`
}

// Tagger matches text against a compiled vocabulary. Safe for concurrent
// use; the vocabulary is immutable after New.
type Tagger struct {
	phrases  map[string]TagKind
	maxWords int
}

// New compiles a tagger from the ontology's vocabulary. Ontology terms
// found in the action or qualifier lexicons keep that role; everything else
// the ontology declares is treated as a business entity.
func New(ont *ontology.Ontology) *Tagger {
	t := &Tagger{
		phrases:  make(map[string]TagKind),
		maxWords: 1,
	}

	for term := range actionLexicon {
		t.add(term, Action)
	}
	for term := range qualifierLexicon {
		t.add(term, Qualifier)
	}
	for _, term := range ont.VocabularyTerms() {
		if _, isAction := actionLexicon[term]; isAction {
			continue
		}
		if _, isQualifier := qualifierLexicon[term]; isQualifier {
			continue
		}
		t.add(term, Entity)
	}

	return t
}

func (t *Tagger) add(term string, kind TagKind) {
	if term == "" {
		return
	}
	t.phrases[term] = kind
	if n := len(strings.Fields(term)); n > t.maxWords {
		t.maxWords = n
	}
}

// Tag extracts an ordered tag sequence from text. Text with no recognizable
// vocabulary yields an empty (non-nil) sequence, never an error.
func (t *Tagger) Tag(text string) []Tag {
	tokens := strings.Fields(text)
	tags := make([]Tag, 0)

	for i := 0; i < len(tokens); {
		matched := false

		// Greedy longest-phrase match first.
		limit := t.maxWords
		if remaining := len(tokens) - i; remaining < limit {
			limit = remaining
		}
		for n := limit; n >= 1; n-- {
			span := strings.Join(tokens[i:i+n], " ")
			term := ontology.NormalizeTerm(span)
			if kind, ok := t.phrases[term]; ok {
				tags = append(tags, Tag{
					Text:       span,
					Kind:       kind,
					Term:       term,
					Position:   i,
					AttachedTo: -1,
				})
				i += n
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}

	attachQualifiers(tags)
	return tags
}

// attachQualifiers links each qualifier to the nearest following entity,
// falling back to the nearest preceding one.
func attachQualifiers(tags []Tag) {
	for qi := range tags {
		if tags[qi].Kind != Qualifier {
			continue
		}
		for ei := qi + 1; ei < len(tags); ei++ {
			if tags[ei].Kind == Entity {
				tags[qi].AttachedTo = ei
				break
			}
		}
		if tags[qi].AttachedTo >= 0 {
			continue
		}
		for ei := qi - 1; ei >= 0; ei-- {
			if tags[ei].Kind == Entity {
				tags[qi].AttachedTo = ei
				break
			}
		}
	}
}
