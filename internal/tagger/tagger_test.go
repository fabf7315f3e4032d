package tagger

import (
	"reflect"
	"testing"

	"archscope/internal/ontology"
)

func testOntology(t *testing.T) *ontology.Ontology {
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
		t.Fatalf("ontology.New() failed: %v", err)
	}
	return ont
}

func kindsOf(tags []Tag) []TagKind {
	kinds := make([]TagKind, len(tags))
	for i, tag := range tags {
		kinds[i] = tag.Kind
	}
	return kinds
}

func termsOf(tags []Tag) []string {
	terms := make([]string, len(tags))
	for i, tag := range tags {
		terms[i] = tag.Term
	}
	return terms
}

func TestTagOrderAndKinds(t *testing.T) {
	tg := New(testOntology(t))

	tags := tg.Tag("When a premium customer submits a support ticket, show their priority status on the agent dashboard and notify the assigned team lead")

	wantTerms := []string{"premium", "customer", "submit", "support ticket", "show", "priority", "dashboard", "notify", "assigned"}
	if !reflect.DeepEqual(termsOf(tags), wantTerms) {
		t.Errorf("terms = %v, want %v", termsOf(tags), wantTerms)
	}

	wantKinds := []TagKind{Qualifier, Entity, Action, Entity, Action, Qualifier, Entity, Action, Qualifier}
	if !reflect.DeepEqual(kindsOf(tags), wantKinds) {
		t.Errorf("kinds = %v, want %v", kindsOf(tags), wantKinds)
	}
}

func TestMultiWordPhraseWins(t *testing.T) {
	tg := New(testOntology(t))

	// "support ticket" must match as one entity even though "ticket" alone
	// is not in the vocabulary.
	tags := tg.Tag("close the support tickets")
	if len(tags) != 1 || tags[0].Term != "support ticket" {
		t.Fatalf("expected single 'support ticket' tag, got %+v", tags)
	}
	if tags[0].Kind != Entity {
		t.Errorf("expected entity kind, got %v", tags[0].Kind)
	}
}

func TestQualifierAttachment(t *testing.T) {
	tg := New(testOntology(t))

	tests := []struct {
		name       string
		text       string
		qualifier  string
		wantEntity string
	}{
		{"following entity", "premium customer", "premium", "customer"},
		{"preceding entity fallback", "the customer is premium", "premium", "customer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := tg.Tag(tt.text)
			var q *Tag
			for i := range tags {
				if tags[i].Term == tt.qualifier {
					q = &tags[i]
				}
			}
			if q == nil {
				t.Fatalf("qualifier %q not tagged in %q: %+v", tt.qualifier, tt.text, tags)
			}
			if q.AttachedTo < 0 || tags[q.AttachedTo].Term != tt.wantEntity {
				t.Errorf("qualifier attached to %v, want entity %q", q.AttachedTo, tt.wantEntity)
			}
		})
	}
}

func TestUnattachedQualifier(t *testing.T) {
	tg := New(testOntology(t))
	tags := tg.Tag("everything is urgent")
	if len(tags) != 1 || tags[0].AttachedTo != -1 {
		t.Errorf("qualifier with no entity should have AttachedTo=-1, got %+v", tags)
	}
}

func TestEmptyAndUnrecognizedInput(t *testing.T) {
	tg := New(testOntology(t))

	for _, text := range []string{"", "   ", "the quick brown fox jumps over fences"} {
		tags := tg.Tag(text)
		if tags == nil {
			t.Errorf("Tag(%q) returned nil, want empty slice", text)
		}
		if len(tags) != 0 {
			t.Errorf("Tag(%q) = %+v, want no tags", text, tags)
		}
	}
}

func TestTagDeterminism(t *testing.T) {
	tg := New(testOntology(t))
	text := "notify the customer and show the dashboard"

	first := tg.Tag(text)
	for i := 0; i < 10; i++ {
		if got := tg.Tag(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestActionCategoryOf(t *testing.T) {
	tests := []struct {
		term     string
		category ActionCategory
		ok       bool
	}{
		{"notify", CategoryCommunication, true},
		{"show", CategoryPresentation, true},
		{"submit", CategoryGeneric, true},
		{"dance", "", false},
	}

	for _, tt := range tests {
		cat, ok := ActionCategoryOf(tt.term)
		if ok != tt.ok || cat != tt.category {
			t.Errorf("ActionCategoryOf(%q) = (%v, %v), want (%v, %v)", tt.term, cat, ok, tt.category, tt.ok)
		}
	}
}
