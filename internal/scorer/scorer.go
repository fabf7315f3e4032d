// Package scorer turns a tag sequence into per-domain impact records. The
// scoring is a closed-form weighted heuristic: a trigger-weight sum plus an
// ownership bonus, followed by a small table of fixed reasoning rules. All
// numeric knobs live in Config, not in code.
package scorer

import (
	"fmt"
	"sort"
	"strings"

	"archscope/internal/hypothesis"
	"archscope/internal/ontology"
	"archscope/internal/tagger"
)

// Config holds the scoring thresholds. Defaults make a single owned-entity
// match HIGH confidence on its own.
type Config struct {
	// HighThreshold is the score at or above which a domain is HIGH
	HighThreshold float64 `json:"highThreshold" mapstructure:"highThreshold"`

	// OwnershipBonus is added when a tag term is in a domain's owned-entity set.
	// Ownership is stronger evidence than vocabulary overlap.
	OwnershipBonus float64 `json:"ownershipBonus" mapstructure:"ownershipBonus"`
}

// DefaultConfig returns the default scoring thresholds
func DefaultConfig() Config {
	return Config{
		HighThreshold:  5.0,
		OwnershipBonus: 5.0,
	}
}

// ApplyOverrides folds workspace rule overrides into the config.
func (c Config) ApplyOverrides(rules *ontology.RuleOverrides) Config {
	if rules == nil {
		return c
	}
	if rules.HighThreshold > 0 {
		c.HighThreshold = rules.HighThreshold
	}
	if rules.OwnershipBonus > 0 {
		c.OwnershipBonus = rules.OwnershipBonus
	}
	return c
}

// Result is the scorer's output for one analysis run
type Result struct {
	// Records holds one ImpactRecord per impacted domain, in ontology
	// declaration order (deterministic).
	Records []hypothesis.ImpactRecord

	// PrimaryDomain is the owner of the primary business entity, empty when
	// undetermined (no owned entity, or an unresolved tie).
	PrimaryDomain string

	// Ties lists domains sharing the equal top score, when more than one.
	// Ties are never broken silently; the session surfaces them as a
	// HIGH-priority question.
	Ties []string
}

// Scorer matches tags against the ontology. Stateless between calls.
type Scorer struct {
	ont *ontology.Ontology
	cfg Config
}

// New creates a Scorer
func New(ont *ontology.Ontology, cfg Config) *Scorer {
	return &Scorer{ont: ont, cfg: cfg}
}

// domainScore accumulates evidence for one domain during a run
type domainScore struct {
	score    float64
	triggers []string
	owned    []string
}

func (ds *domainScore) addTrigger(term string, weight float64) {
	ds.score += weight
	for _, t := range ds.triggers {
		if t == term {
			return
		}
	}
	ds.triggers = append(ds.triggers, term)
}

// Score computes impact records for the tag sequence. An empty tag sequence
// yields an empty record set; the caller surfaces that as "no domains
// matched", not as an error.
func (s *Scorer) Score(tags []tagger.Tag) Result {
	scores := make(map[string]*domainScore)
	get := func(domain string) *domainScore {
		ds, ok := scores[domain]
		if !ok {
			ds = &domainScore{}
			scores[domain] = ds
		}
		return ds
	}

	// Raw weighted matching.
	for _, tag := range tags {
		for domain, weight := range s.ont.TriggerWeights(tag.Term) {
			get(domain).addTrigger(tag.Term, weight)
		}
		if tag.Kind == tagger.Entity {
			if owner, ok := s.ont.OwnerOf(tag.Term); ok {
				ds := get(owner)
				ds.score += s.cfg.OwnershipBonus
				ds.owned = append(ds.owned, tag.Term)
			}
		}
	}

	res := Result{Records: make([]hypothesis.ImpactRecord, 0, len(scores))}
	if len(scores) == 0 && !hasRuleActions(tags) {
		return res
	}

	res.Ties = topTies(scores)
	tied := make(map[string]bool, len(res.Ties))
	for _, d := range res.Ties {
		tied[d] = true
	}

	// Primary entity: the first Entity tag with an ownership match. A tie
	// between candidate owners leaves the primary undetermined.
	if len(res.Ties) == 0 {
		for _, tag := range tags {
			if tag.Kind != tagger.Entity {
				continue
			}
			if owner, ok := s.ont.OwnerOf(tag.Term); ok {
				res.PrimaryDomain = owner
				break
			}
		}
	}

	// Build records in ontology declaration order. Zero-score domains only
	// survive when the ownership rule forces them in.
	for _, d := range s.ont.Domains() {
		ds, ok := scores[d.Name]
		if !ok {
			continue
		}
		if ds.score == 0 && d.Name != res.PrimaryDomain {
			continue
		}

		rec := hypothesis.ImpactRecord{
			Domain:          d.Name,
			Score:           ds.score,
			MatchedTriggers: ds.triggers,
			Impact:          impactTypeFor(d.Kind),
			Confidence:      hypothesis.Medium,
		}
		if ds.score >= s.cfg.HighThreshold {
			rec.Confidence = hypothesis.High
		}

		switch {
		case tied[d.Name]:
			rec.Confidence = hypothesis.High
			rec.Impact = hypothesis.CoreChange
			rec.Reasoning = fmt.Sprintf("tied top score %.1f; candidate owner of the primary change", ds.score)
		case d.Name == res.PrimaryDomain:
			rec.Confidence = hypothesis.High
			rec.Impact = hypothesis.CoreChange
			rec.Reasoning = fmt.Sprintf("owns primary entity %q", ds.owned[0])
		default:
			rec.Reasoning = fmt.Sprintf("matched triggers: %s", strings.Join(ds.triggers, ", "))
		}

		res.Records = append(res.Records, rec)
	}

	s.applySideEffectRule(tags, &res)
	s.applyUIRule(tags, &res)
	s.applyDependencyRule(tags, &res)

	return res
}

// topTies returns the domains sharing the top score when at least two do.
func topTies(scores map[string]*domainScore) []string {
	var top float64
	for _, ds := range scores {
		if ds.score > top {
			top = ds.score
		}
	}
	if top == 0 {
		return nil
	}

	var tiedNames []string
	for name, ds := range scores {
		if ds.score == top {
			tiedNames = append(tiedNames, name)
		}
	}
	if len(tiedNames) < 2 {
		return nil
	}

	// Deterministic order for the tie list.
	sort.Strings(tiedNames)
	return tiedNames
}

// impactTypeFor maps a domain kind to its default impact type before the
// fixed rules refine it.
func impactTypeFor(kind ontology.DomainKind) hypothesis.ImpactType {
	switch kind {
	case ontology.KindFrontend:
		return hypothesis.UIChange
	case ontology.KindIntegration:
		return hypothesis.SideEffect
	default:
		return hypothesis.Possible
	}
}

// applySideEffectRule adds the integration-kind domain at least MEDIUM when
// a communication-type action is present.
func (s *Scorer) applySideEffectRule(tags []tagger.Tag, res *Result) {
	term, ok := firstActionOfCategory(tags, tagger.CategoryCommunication)
	if !ok {
		return
	}
	target, ok := s.ont.FirstOfKind(ontology.KindIntegration)
	if !ok {
		return
	}
	reason := fmt.Sprintf("communication action %q implies an integration side effect", term)
	ensureAtLeast(res, target.Name, hypothesis.Medium, hypothesis.SideEffect, reason)
}

// applyUIRule adds the frontend-kind domain at least MEDIUM when a
// presentation-type action is present.
func (s *Scorer) applyUIRule(tags []tagger.Tag, res *Result) {
	term, ok := firstActionOfCategory(tags, tagger.CategoryPresentation)
	if !ok {
		return
	}
	target, ok := s.ont.FirstOfKind(ontology.KindFrontend)
	if !ok {
		return
	}
	reason := fmt.Sprintf("presentation action %q implies a frontend change", term)
	ensureAtLeast(res, target.Name, hypothesis.Medium, hypothesis.UIChange, reason)
}

// applyDependencyRule adds, as Dependency/LOW, any domain owning an entity
// the primary domain does not own.
func (s *Scorer) applyDependencyRule(tags []tagger.Tag, res *Result) {
	if res.PrimaryDomain == "" {
		return
	}
	for _, tag := range tags {
		if tag.Kind != tagger.Entity {
			continue
		}
		owner, ok := s.ont.OwnerOf(tag.Term)
		if !ok || owner == res.PrimaryDomain {
			continue
		}
		if findRecord(res, owner) != nil {
			continue
		}
		res.Records = append(res.Records, hypothesis.ImpactRecord{
			Domain:     owner,
			Impact:     hypothesis.Dependency,
			Confidence: hypothesis.Low,
			RuleAdded:  true,
			Reasoning:  fmt.Sprintf("owns entity %q referenced outside the primary domain", tag.Term),
		})
	}
}

// ensureAtLeast raises an existing record to the floor confidence, or adds a
// rule-reached record at the floor.
func ensureAtLeast(res *Result, domain string, floor hypothesis.Confidence, impact hypothesis.ImpactType, reason string) {
	if rec := findRecord(res, domain); rec != nil {
		if rec.Confidence.Rank() < floor.Rank() {
			rec.Confidence = floor
		}
		if rec.Impact == hypothesis.Possible {
			rec.Impact = impact
		}
		return
	}
	res.Records = append(res.Records, hypothesis.ImpactRecord{
		Domain:     domain,
		Impact:     impact,
		Confidence: floor,
		RuleAdded:  true,
		Reasoning:  reason,
	})
}

func findRecord(res *Result, domain string) *hypothesis.ImpactRecord {
	for i := range res.Records {
		if res.Records[i].Domain == domain {
			return &res.Records[i]
		}
	}
	return nil
}

func firstActionOfCategory(tags []tagger.Tag, cat tagger.ActionCategory) (string, bool) {
	for _, tag := range tags {
		if tag.Kind != tagger.Action {
			continue
		}
		if got, ok := tagger.ActionCategoryOf(tag.Term); ok && got == cat {
			return tag.Term, true
		}
	}
	return "", false
}

func hasRuleActions(tags []tagger.Tag) bool {
	for _, tag := range tags {
		if tag.Kind != tagger.Action {
			continue
		}
		if cat, ok := tagger.ActionCategoryOf(tag.Term); ok && cat != tagger.CategoryGeneric {
			return true
		}
	}
	return false
}
