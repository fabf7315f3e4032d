package session

import (
	"archscope/internal/errors"
	"archscope/internal/hypothesis"
	"archscope/internal/logging"
	"archscope/internal/ontology"
)

// Memento is the serializable session state the store persists. It carries
// everything needed to resume refinement in a later process; the catalog is
// reattached at restore time because it belongs to the workspace, not the
// session.
type Memento struct {
	ID         string                           `json:"id"`
	Request    string                           `json:"request"`
	State      State                            `json:"state"`
	Records    []hypothesis.ImpactRecord        `json:"records"`
	Components []hypothesis.ComponentHypothesis `json:"components"`
	Questions  []hypothesis.OpenQuestion        `json:"questions"`
	Ties       []string                         `json:"ties,omitempty"`
	Primary    string                           `json:"primary,omitempty"`
}

// Memento captures the current state for persistence.
func (s *Session) Memento() Memento {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Memento{
		ID:         s.id,
		Request:    s.request,
		State:      s.state,
		Records:    append([]hypothesis.ImpactRecord(nil), s.records...),
		Components: append([]hypothesis.ComponentHypothesis(nil), s.components...),
		Questions:  append([]hypothesis.OpenQuestion(nil), s.questions...),
		Ties:       append([]string(nil), s.ties...),
		Primary:    s.primary,
	}
}

// Restore rebuilds a session from a persisted memento. A dispatched question
// survives restoration as awaiting-answer; question ids keep their original
// numbering so answers recorded across processes stay linked.
func Restore(m Memento, catalog *ontology.Catalog, log *logging.Logger) (*Session, error) {
	if m.ID == "" {
		return nil, errors.New(errors.SessionNotFound, "memento has no session id", nil)
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	s := &Session{
		id:         m.ID,
		request:    m.Request,
		state:      m.State,
		catalog:    catalog,
		records:    append([]hypothesis.ImpactRecord(nil), m.Records...),
		components: append([]hypothesis.ComponentHypothesis(nil), m.Components...),
		questions:  append([]hypothesis.OpenQuestion(nil), m.Questions...),
		ties:       append([]string(nil), m.Ties...),
		primary:    m.Primary,
		log:        log.WithComponent("session"),
	}
	if s.state == "" {
		s.state = s.settledState()
	}
	return s, nil
}
