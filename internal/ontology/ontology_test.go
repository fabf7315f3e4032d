package ontology

import (
	"testing"
)

func testDomains() []Domain {
	return []Domain{
		{
			Name:          "Customer & Identity",
			Kind:          KindBusiness,
			Triggers:      map[string]float64{"customer": 2, "account": 2},
			OwnedEntities: []string{"customer", "support ticket"},
		},
		{
			Name:     "Frontend Experience",
			Kind:     KindFrontend,
			Triggers: map[string]float64{"dashboard": 3, "show": 2},
		},
		{
			Name:     "Integration & Event",
			Kind:     KindIntegration,
			Triggers: map[string]float64{"notify": 5},
		},
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		domains []Domain
		wantErr bool
	}{
		{"valid", testDomains(), false},
		{"empty name", []Domain{{Name: "  "}}, true},
		{"duplicate name", []Domain{{Name: "A"}, {Name: "A"}}, true},
		{"negative weight", []Domain{{Name: "A", Triggers: map[string]float64{"x": -1}}}, true},
		{
			"entity owned twice",
			[]Domain{
				{Name: "A", OwnedEntities: []string{"order"}},
				{Name: "B", OwnedEntities: []string{"order"}},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.domains, 1.0)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOwnerOf(t *testing.T) {
	ont, err := New(testDomains(), 1.0)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	owner, ok := ont.OwnerOf(NormalizeTerm("support tickets"))
	if !ok || owner != "Customer & Identity" {
		t.Errorf("expected Customer & Identity to own 'support tickets', got %q (ok=%v)", owner, ok)
	}

	if _, ok := ont.OwnerOf("dashboard"); ok {
		t.Error("'dashboard' is a trigger, not an owned entity")
	}
}

func TestFirstOfKind(t *testing.T) {
	ont, err := New(testDomains(), 1.0)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	d, ok := ont.FirstOfKind(KindIntegration)
	if !ok || d.Name != "Integration & Event" {
		t.Errorf("expected Integration & Event, got %q (ok=%v)", d.Name, ok)
	}

	if _, ok := ont.FirstOfKind(KindAnalytics); ok {
		t.Error("no analytics domain declared, expected ok=false")
	}
}

func TestDefaultTriggerWeight(t *testing.T) {
	domains := []Domain{
		{Name: "A", Triggers: map[string]float64{"invoice": 0}},
	}
	ont, err := New(domains, 2.5)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	weights := ont.TriggerWeights("invoice")
	if weights["A"] != 2.5 {
		t.Errorf("zero-weight trigger should get default 2.5, got %v", weights["A"])
	}
}

func TestNormalizeTerm(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Customers", "customer"},
		{"Support Tickets", "support ticket"},
		{"  dashboards, ", "dashboard"},
		{"queries", "query"},
		{"addresses", "address"},
		{"status", "status"},
		{"analysis", "analysis"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTerm(tt.input); got != tt.expected {
			t.Errorf("NormalizeTerm(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
