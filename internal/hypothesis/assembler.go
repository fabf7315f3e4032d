package hypothesis

import (
	"strings"

	"archscope/internal/ontology"
)

// Input bundles the resolved session state the assembler folds together.
type Input struct {
	Request    string
	SessionID  string
	State      string
	Records    []ImpactRecord
	Components []ComponentHypothesis
	Questions  []OpenQuestion
	Catalog    *ontology.Catalog
}

// Assemble folds the final session state into a single Hypothesis: the
// impact matrix, the surviving component change list, and dependency edges.
// Rejected records and hypotheses are dropped; open questions are carried
// through as unresolved, non-blocking context.
func Assemble(in Input) Hypothesis {
	h := Hypothesis{
		Request:    in.Request,
		SessionID:  in.SessionID,
		State:      in.State,
		Impacts:    make([]ImpactRow, 0, len(in.Records)),
		Components: make([]ComponentHypothesis, 0, len(in.Components)),
		Edges:      make([]DependencyEdge, 0),
	}

	surviving := make([]ComponentHypothesis, 0, len(in.Components))
	for _, c := range in.Components {
		if !c.Rejected {
			surviving = append(surviving, c)
		}
	}
	h.Components = surviving

	byDomain := make(map[string][]string)
	for _, c := range surviving {
		byDomain[c.Domain] = append(byDomain[c.Domain], c.Component)
	}

	for _, r := range in.Records {
		if r.Rejected {
			continue
		}
		h.Impacts = append(h.Impacts, ImpactRow{
			Domain:     r.Domain,
			Impact:     r.Impact,
			Confidence: r.Confidence,
			Components: byDomain[r.Domain],
		})
	}

	h.Edges = inferEdges(surviving, in.Catalog)

	for _, q := range in.Questions {
		if q.State == QuestionOpen {
			h.OpenQuestions = append(h.OpenQuestions, q)
		}
	}

	return h
}

// inferEdges adds a directed edge for every explicit publish/consume event
// pair and every exposed-API/call-mention pair between two hypotheses. No
// edge is ever inferred from domain adjacency alone.
func inferEdges(comps []ComponentHypothesis, catalog *ontology.Catalog) []DependencyEdge {
	edges := make([]DependencyEdge, 0)
	if catalog == nil {
		return edges
	}

	descriptors := make(map[string]ontology.ComponentDescriptor, len(comps))
	for _, c := range comps {
		if d, ok := catalog.Get(c.Component); ok {
			descriptors[c.Component] = d
		}
	}

	for _, a := range comps {
		da, ok := descriptors[a.Component]
		if !ok {
			continue
		}

		// Event edges: a publishes E, b consumes E.
		for _, event := range da.PublishedEvents {
			for _, b := range comps {
				if b.Component == a.Component {
					continue
				}
				db, ok := descriptors[b.Component]
				if !ok {
					continue
				}
				if containsFold(db.ConsumedEvents, event) {
					edges = append(edges, DependencyEdge{
						From: a.Component,
						To:   b.Component,
						Via:  event,
						Kind: EdgeEvent,
					})
				}
			}
		}

		// API edges: a exposes X, b's probable changes mention calling X.
		for _, api := range da.APIs {
			for _, b := range comps {
				if b.Component == a.Component {
					continue
				}
				if mentionsAPI(b.ProbableChanges, api) {
					edges = append(edges, DependencyEdge{
						From: b.Component,
						To:   a.Component,
						Via:  api,
						Kind: EdgeAPI,
					})
				}
			}
		}
	}

	return edges
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

// mentionsAPI reports whether any probable-change descriptor references the
// API by name. The reference must be explicit; substring match on the API
// name is the contract.
func mentionsAPI(changes []string, api string) bool {
	for _, change := range changes {
		if strings.Contains(strings.ToLower(change), strings.ToLower(api)) {
			return true
		}
	}
	return false
}
