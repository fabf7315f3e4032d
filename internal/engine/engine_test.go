package engine

import (
	"context"
	"testing"

	"archscope/internal/config"
	"archscope/internal/discovery"
	"archscope/internal/hypothesis"
	"archscope/internal/ontology"
	"archscope/internal/session"
)

func testWorkspace(t *testing.T) *ontology.Workspace {
	t.Helper()

	ont, err := ontology.New([]ontology.Domain{
		{
			Name:          "Customer & Identity",
			Kind:          ontology.KindBusiness,
			Triggers:      map[string]float64{"customer": 2},
			OwnedEntities: []string{"customer", "support ticket"},
		},
		{
			Name:     "Frontend Experience",
			Kind:     ontology.KindFrontend,
			Triggers: map[string]float64{"dashboard": 3, "show": 2},
		},
		{
			Name:     "Integration & Event",
			Kind:     ontology.KindIntegration,
			Triggers: map[string]float64{"notify": 5},
		},
	}, 1.0)
	if err != nil {
		t.Fatal(err)
	}

	cat, err := ontology.NewCatalog([]ontology.ComponentDescriptor{
		{Name: "customer-service", Domain: "Customer & Identity", Type: ontology.TypeBackendService,
			APIs: []string{"GET /customers/{id}"}, PublishedEvents: []string{"TicketPriorityChanged"}},
		{Name: "agent-dashboard", Domain: "Frontend Experience", Type: ontology.TypeFrontendApp,
			ConsumedEvents: []string{"TicketPriorityChanged"}},
		{Name: "notification-service", Domain: "Integration & Event", Type: ontology.TypeIntegration,
			ConsumedEvents: []string{"TicketPriorityChanged"}},
	}, ont)
	if err != nil {
		t.Fatal(err)
	}

	return &ontology.Workspace{Ontology: ont, Catalog: cat}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	e := New(testWorkspace(t), config.DefaultConfig(), nil)

	sess := e.Analyze("When a premium customer submits a support ticket, show their priority on the agent dashboard and notify the team lead")

	if sess.State() != session.StateResolved {
		t.Fatalf("all-HIGH analysis must resolve immediately, state = %s", sess.State())
	}

	snap := sess.Snapshot()
	if len(snap.Impacts) != 3 {
		t.Fatalf("expected 3 impacted domains, got %+v", snap.Impacts)
	}
	for _, row := range snap.Impacts {
		if row.Confidence != hypothesis.High {
			t.Errorf("%s: confidence = %s, want HIGH", row.Domain, row.Confidence)
		}
	}

	// The shared event produces explicit dependency edges, nothing inferred
	// from adjacency.
	if len(snap.Edges) != 2 {
		t.Errorf("expected 2 event edges from TicketPriorityChanged, got %+v", snap.Edges)
	}
	for _, edge := range snap.Edges {
		if edge.From != "customer-service" || edge.Kind != hypothesis.EdgeEvent {
			t.Errorf("unexpected edge: %+v", edge)
		}
	}
}

func TestAnalyzeUnrecognizableInput(t *testing.T) {
	e := New(testWorkspace(t), config.DefaultConfig(), nil)

	sess := e.Analyze("the quick brown fox jumps over the lazy dog")

	snap := sess.Snapshot()
	if len(snap.Impacts) != 0 {
		t.Errorf("expected no impacts, got %+v", snap.Impacts)
	}
	q, ok := sess.NextQuestion()
	if !ok || q.Kind != hypothesis.QuestionRephrase {
		t.Errorf("expected rephrase question, got %+v", q)
	}
}

func TestConfigThresholdsReachScorer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scoring.HighThreshold = 3

	e := New(testWorkspace(t), cfg, nil)
	sess := e.Analyze("redesign the dashboard")

	snap := sess.Snapshot()
	if len(snap.Impacts) != 1 || snap.Impacts[0].Confidence != hypothesis.High {
		t.Errorf("lowered threshold must make dashboard HIGH, got %+v", snap.Impacts)
	}
}

func TestDiscoverUsesConfiguredBackend(t *testing.T) {
	e := New(testWorkspace(t), config.DefaultConfig(), nil)

	matches, err := e.Discover(context.Background(), []string{"customer"})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 || matches[0].Component.Name != "customer-service" {
		t.Errorf("expected customer-service first, got %+v", matches)
	}
}

type stubBackend struct{ calls int }

func (s *stubBackend) Discover(_ context.Context, _ []string) ([]discovery.Match, error) {
	s.calls++
	return []discovery.Match{}, nil
}

func TestUseDiscoverySwapsBackend(t *testing.T) {
	e := New(testWorkspace(t), config.DefaultConfig(), nil)

	stub := &stubBackend{}
	e.UseDiscovery(stub)

	if _, err := e.Discover(context.Background(), []string{"anything"}); err != nil {
		t.Fatal(err)
	}
	if stub.calls != 1 {
		t.Errorf("swapped backend not used, calls = %d", stub.calls)
	}
}
