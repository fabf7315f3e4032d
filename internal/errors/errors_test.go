package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(SessionNotFound, "no session with id abc", nil)
	if !strings.Contains(err.Error(), "SESSION_NOT_FOUND") {
		t.Errorf("expected code in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "no session with id abc") {
		t.Errorf("expected message text, got %q", err.Error())
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := New(StoreUnavailable, "cannot open session store", cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestDrilldownsAttached(t *testing.T) {
	err := New(SessionNotFound, "gone", nil)
	if len(err.Drilldowns) == 0 {
		t.Fatal("expected drilldowns for SESSION_NOT_FOUND")
	}
	if !strings.Contains(err.Drilldowns[0].Command, "archscope") {
		t.Errorf("drilldown should suggest a CLI command, got %q", err.Drilldowns[0].Command)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(QuestionNotFound, "unknown question", nil).WithDetails(map[string]string{"id": "Q7"})
	details, ok := err.Details.(map[string]string)
	if !ok || details["id"] != "Q7" {
		t.Errorf("expected details to round-trip, got %v", err.Details)
	}
}
