package hypothesis

import (
	"testing"

	"archscope/internal/ontology"
)

func testCatalog(t *testing.T) *ontology.Catalog {
	t.Helper()
	ont, err := ontology.New([]ontology.Domain{
		{Name: "Customer & Identity", Kind: ontology.KindBusiness},
		{Name: "Integration & Event", Kind: ontology.KindIntegration},
		{Name: "Frontend Experience", Kind: ontology.KindFrontend},
	}, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	cat, err := ontology.NewCatalog([]ontology.ComponentDescriptor{
		{
			Name: "customer-service", Domain: "Customer & Identity",
			APIs:            []string{"CustomerAPI"},
			PublishedEvents: []string{"TicketCreated"},
		},
		{
			Name: "notification-service", Domain: "Integration & Event",
			ConsumedEvents: []string{"TicketCreated"},
		},
		{
			Name: "agent-dashboard", Domain: "Frontend Experience",
		},
	}, ont)
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func TestAssembleImpactMatrix(t *testing.T) {
	h := Assemble(Input{
		Request: "test request",
		State:   "resolved",
		Records: []ImpactRecord{
			{Domain: "Customer & Identity", Impact: CoreChange, Confidence: High},
			{Domain: "Integration & Event", Impact: SideEffect, Confidence: High},
			{Domain: "Frontend Experience", Impact: UIChange, Confidence: Medium, Rejected: true},
		},
		Components: []ComponentHypothesis{
			{Component: "customer-service", Domain: "Customer & Identity", ChangeKind: CoreChange},
			{Component: "notification-service", Domain: "Integration & Event", ChangeKind: SideEffect},
			{Component: "agent-dashboard", Domain: "Frontend Experience", ChangeKind: UIChange, Rejected: true},
		},
		Catalog: testCatalog(t),
	})

	if len(h.Impacts) != 2 {
		t.Fatalf("expected 2 impact rows (rejected dropped), got %d: %+v", len(h.Impacts), h.Impacts)
	}
	if h.Impacts[0].Domain != "Customer & Identity" || h.Impacts[0].Components[0] != "customer-service" {
		t.Errorf("unexpected first row: %+v", h.Impacts[0])
	}
	if len(h.Components) != 2 {
		t.Errorf("rejected hypothesis should be dropped, got %+v", h.Components)
	}
}

func TestAssembleEventEdge(t *testing.T) {
	h := Assemble(Input{
		State: "resolved",
		Components: []ComponentHypothesis{
			{Component: "customer-service", Domain: "Customer & Identity"},
			{Component: "notification-service", Domain: "Integration & Event"},
		},
		Catalog: testCatalog(t),
	})

	if len(h.Edges) != 1 {
		t.Fatalf("expected 1 event edge, got %+v", h.Edges)
	}
	e := h.Edges[0]
	if e.From != "customer-service" || e.To != "notification-service" || e.Via != "TicketCreated" || e.Kind != EdgeEvent {
		t.Errorf("unexpected edge: %+v", e)
	}
}

func TestAssembleAPIEdge(t *testing.T) {
	h := Assemble(Input{
		State: "resolved",
		Components: []ComponentHypothesis{
			{Component: "customer-service", Domain: "Customer & Identity"},
			{
				Component: "agent-dashboard", Domain: "Frontend Experience",
				ProbableChanges: []string{"call CustomerAPI to fetch priority status"},
			},
		},
		Catalog: testCatalog(t),
	})

	if len(h.Edges) != 1 {
		t.Fatalf("expected 1 api edge, got %+v", h.Edges)
	}
	e := h.Edges[0]
	if e.From != "agent-dashboard" || e.To != "customer-service" || e.Kind != EdgeAPI {
		t.Errorf("unexpected edge: %+v", e)
	}
}

func TestAssembleNoEdgeWithoutExplicitReference(t *testing.T) {
	// Components in adjacent domains but with no publish/consume or call
	// reference: the assembler must not guess.
	h := Assemble(Input{
		State: "resolved",
		Components: []ComponentHypothesis{
			{Component: "customer-service", Domain: "Customer & Identity"},
			{Component: "agent-dashboard", Domain: "Frontend Experience"},
		},
		Catalog: testCatalog(t),
	})

	if len(h.Edges) != 0 {
		t.Errorf("expected no edges from domain adjacency, got %+v", h.Edges)
	}
}

func TestAssembleCarriesOpenQuestions(t *testing.T) {
	h := Assemble(Input{
		State: "resolved",
		Questions: []OpenQuestion{
			{ID: "Q1", Priority: PriorityLow, State: QuestionOpen, Prompt: "event schema?"},
			{ID: "Q2", Priority: PriorityHigh, State: QuestionAnswered, Answer: "yes"},
		},
		Catalog: testCatalog(t),
	})

	if len(h.OpenQuestions) != 1 || h.OpenQuestions[0].ID != "Q1" {
		t.Errorf("expected only open Q1 carried through, got %+v", h.OpenQuestions)
	}
}

func TestPriorityOrdering(t *testing.T) {
	if !(PriorityHigh.Rank() > PriorityMedium.Rank() && PriorityMedium.Rank() > PriorityLow.Rank()) {
		t.Error("priority ranks out of order")
	}
	if PriorityLow.Blocking() {
		t.Error("LOW priority must not block")
	}
	if !PriorityHigh.Blocking() || !PriorityMedium.Blocking() {
		t.Error("HIGH and MEDIUM priorities must block")
	}
}
