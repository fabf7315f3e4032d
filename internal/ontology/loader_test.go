package ontology

import (
	"os"
	"path/filepath"
	"testing"
)

const testDomainsYAML = `version: 1
domains:
  - name: Customer & Identity
    kind: business
    responsibility: Owns customer master data and support workflows
    triggers:
      customer: 2
      account: 2
    owned_entities:
      - customer
      - support ticket
  - name: Frontend Experience
    kind: frontend
    triggers:
      dashboard: 3
      show: 2
  - name: Integration & Event
    kind: integration
    triggers:
      notify: 5
`

const testComponentsTOML = `version = 1

[[component]]
name = "customer-service"
domain = "Customer & Identity"
type = "backend-service"
apis = ["CustomerAPI"]
published_events = ["CustomerUpdated"]

[[component]]
name = "agent-dashboard"
domain = "Frontend Experience"
type = "frontend-app"
`

const testRulesTOML = `high_threshold = 4.0
ownership_bonus = 6.0
default_trigger_weight = 1.5

[triggers."Frontend Experience"]
dashboard = 9.0
`

func writeWorkspace(t *testing.T, withRules bool) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DomainsFile), []byte(testDomainsYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ComponentsFile), []byte(testComponentsTOML), 0644); err != nil {
		t.Fatal(err)
	}
	if withRules {
		if err := os.WriteFile(filepath.Join(dir, RulesFile), []byte(testRulesTOML), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadWorkspace(t *testing.T) {
	ws, err := LoadWorkspace(writeWorkspace(t, false))
	if err != nil {
		t.Fatalf("LoadWorkspace() failed: %v", err)
	}

	if len(ws.Ontology.Domains()) != 3 {
		t.Errorf("expected 3 domains, got %d", len(ws.Ontology.Domains()))
	}
	if ws.Catalog.Len() != 2 {
		t.Errorf("expected 2 components, got %d", ws.Catalog.Len())
	}
	if ws.Rules != nil {
		t.Error("expected nil rules without RULES.toml")
	}

	d, ok := ws.Ontology.FirstOfKind(KindIntegration)
	if !ok || d.Name != "Integration & Event" {
		t.Errorf("integration domain not loaded, got %+v (ok=%v)", d, ok)
	}

	comp, ok := ws.Catalog.Get("customer-service")
	if !ok || comp.Type != TypeBackendService || len(comp.PublishedEvents) != 1 {
		t.Errorf("customer-service not loaded correctly: %+v (ok=%v)", comp, ok)
	}
}

func TestLoadWorkspaceWithRuleOverrides(t *testing.T) {
	ws, err := LoadWorkspace(writeWorkspace(t, true))
	if err != nil {
		t.Fatalf("LoadWorkspace() failed: %v", err)
	}

	if ws.Rules == nil {
		t.Fatal("expected rules to be loaded")
	}
	if ws.Rules.HighThreshold != 4.0 || ws.Rules.OwnershipBonus != 6.0 {
		t.Errorf("unexpected rule values: %+v", ws.Rules)
	}

	// The per-trigger override must replace the declared weight.
	weights := ws.Ontology.TriggerWeights("dashboard")
	if weights["Frontend Experience"] != 9.0 {
		t.Errorf("expected overridden weight 9.0 for dashboard, got %v", weights["Frontend Experience"])
	}
}

func TestLoadWorkspaceMissingFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadWorkspace(dir); err == nil {
		t.Error("expected error loading empty workspace")
	}
}

func TestLoadWorkspaceBadYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DomainsFile), []byte(":\tnot yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWorkspace(dir); err == nil {
		t.Error("expected error for malformed DOMAINS.yaml")
	}
}
