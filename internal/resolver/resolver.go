// Package resolver narrows each impacted domain to concrete catalog
// components. Question ids are assigned later by the session, so questions
// leave here with an empty ID and a Subject the session links back to the
// owning hypothesis.
package resolver

import (
	"fmt"
	"strings"

	"archscope/internal/hypothesis"
	"archscope/internal/ontology"
)

// Output is the resolution of one impact record
type Output struct {
	Hypotheses []hypothesis.ComponentHypothesis
	Questions  []hypothesis.OpenQuestion
}

// Resolver selects catalog components for impacted domains
type Resolver struct {
	catalog *ontology.Catalog
}

// New creates a Resolver over the given catalog
func New(catalog *ontology.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve maps one impact record onto components. HIGH-confidence domains
// get every component with no questions; MEDIUM/LOW get the same selection
// plus an ownership-confirmation question per component; tied domains get
// HIGH-priority questions regardless of confidence. A domain with no catalog
// components yields a speculative placeholder so an impacted domain is never
// silently dropped.
func (r *Resolver) Resolve(rec hypothesis.ImpactRecord, tied bool) Output {
	var out Output

	comps := r.catalog.InDomain(rec.Domain)
	if len(comps) == 0 {
		placeholder := "proposed-" + slug(rec.Domain)
		out.Hypotheses = append(out.Hypotheses, hypothesis.ComponentHypothesis{
			Component:       placeholder,
			Domain:          rec.Domain,
			ChangeKind:      rec.Impact,
			ProbableChanges: probableChanges(rec),
			Speculative:     true,
		})
		out.Questions = append(out.Questions, hypothesis.OpenQuestion{
			Kind:     hypothesis.QuestionComponentOwner,
			Priority: hypothesis.PriorityHigh,
			Subject:  placeholder,
			Prompt:   fmt.Sprintf("No catalog component covers %q. Which component owns this capability?", rec.Domain),
			State:    hypothesis.QuestionOpen,
		})
		return out
	}

	needsConfirmation := tied || rec.Confidence != hypothesis.High

	for _, comp := range comps {
		out.Hypotheses = append(out.Hypotheses, hypothesis.ComponentHypothesis{
			Component:       comp.Name,
			Domain:          comp.Domain,
			ChangeKind:      rec.Impact,
			ProbableChanges: probableChanges(rec),
			Speculative:     comp.Speculative,
		})

		if !needsConfirmation {
			continue
		}
		out.Questions = append(out.Questions, hypothesis.OpenQuestion{
			Kind:     hypothesis.QuestionOwnership,
			Priority: questionPriority(rec, tied),
			Subject:  comp.Name,
			Prompt: fmt.Sprintf("Does %q own the %s change for %q? (yes/no)",
				comp.Name, rec.Impact, rec.Domain),
			State: hypothesis.QuestionOpen,
		})
	}

	return out
}

// questionPriority maps record confidence to question priority. Ties are
// always HIGH priority.
func questionPriority(rec hypothesis.ImpactRecord, tied bool) hypothesis.Priority {
	if tied {
		return hypothesis.PriorityHigh
	}
	switch rec.Confidence {
	case hypothesis.Medium:
		return hypothesis.PriorityMedium
	default:
		return hypothesis.PriorityLow
	}
}

// probableChanges templates generic change descriptors from the matched
// triggers. No code generation, only prose hints for the design document.
func probableChanges(rec hypothesis.ImpactRecord) []string {
	verb := changeVerb(rec.Impact)
	if len(rec.MatchedTriggers) == 0 {
		return []string{verb}
	}
	changes := make([]string, 0, len(rec.MatchedTriggers))
	for _, trigger := range rec.MatchedTriggers {
		changes = append(changes, fmt.Sprintf("%s for %q", verb, trigger))
	}
	return changes
}

func changeVerb(impact hypothesis.ImpactType) string {
	switch impact {
	case hypothesis.CoreChange:
		return "change core domain behavior"
	case hypothesis.UIChange:
		return "update the user-facing view"
	case hypothesis.APIChange:
		return "adjust the exposed API"
	case hypothesis.SideEffect:
		return "emit or handle the notification side effect"
	case hypothesis.Dependency:
		return "review the downstream dependency"
	default:
		return "review for a possible change"
	}
}

// slug lowercases a domain name into a component-name fragment.
func slug(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
