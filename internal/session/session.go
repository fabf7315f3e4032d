// Package session runs the interactive refinement loop. A session carries
// the scored impact records, the resolved component hypotheses, and the open
// questions, and dispatches questions one at a time until every HIGH and
// MEDIUM question is settled (Resolved) or an answer fails to narrow the
// hypothesis (Stalled). Question ids are assigned here, in creation order,
// and never change for the lifetime of the session.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"archscope/internal/errors"
	"archscope/internal/hypothesis"
	"archscope/internal/logging"
	"archscope/internal/ontology"
	"archscope/internal/resolver"
	"archscope/internal/scorer"
)

// State is the session lifecycle state
type State string

const (
	// StateOpen means blocking questions remain and none is dispatched
	StateOpen State = "open"
	// StateAwaitingAnswer means a question has been dispatched via NextQuestion
	StateAwaitingAnswer State = "awaiting-answer"
	// StateResolved means no HIGH or MEDIUM question remains open
	StateResolved State = "resolved"
	// StateStalled means an answer failed to reduce the open blocking set
	StateStalled State = "stalled"
)

// Session is one refinement conversation over a single analysis run
type Session struct {
	mu sync.Mutex

	id      string
	request string
	state   State

	catalog    *ontology.Catalog
	records    []hypothesis.ImpactRecord
	components []hypothesis.ComponentHypothesis
	questions  []hypothesis.OpenQuestion // creation order, ids Q1..Qn

	ties    []string
	primary string

	log *logging.Logger
}

// New builds a session from a scoring result and the per-record resolver
// outputs. Ties surface as a single HIGH tie-break question; unrecognizable
// input (no records at all) surfaces as a LOW rephrase question so the empty
// result is answerable rather than an error.
func New(request string, res scorer.Result, outputs []resolver.Output, catalog *ontology.Catalog, log *logging.Logger) *Session {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &Session{
		id:      uuid.New().String(),
		request: request,
		catalog: catalog,
		records: append([]hypothesis.ImpactRecord(nil), res.Records...),
		ties:    append([]string(nil), res.Ties...),
		primary: res.PrimaryDomain,
		log:     log.WithComponent("session"),
	}

	for _, out := range outputs {
		s.components = append(s.components, out.Hypotheses...)
		for _, q := range out.Questions {
			s.addQuestion(q)
		}
	}

	if len(s.ties) >= 2 {
		s.addQuestion(hypothesis.OpenQuestion{
			Kind:     hypothesis.QuestionTieBreak,
			Priority: hypothesis.PriorityHigh,
			Subject:  strings.Join(s.ties, ", "),
			Prompt: fmt.Sprintf("Domains %s scored equally. Which one owns the primary change?",
				strings.Join(s.ties, " and ")),
			State: hypothesis.QuestionOpen,
		})
	}

	if len(s.records) == 0 && len(s.questions) == 0 {
		s.addQuestion(hypothesis.OpenQuestion{
			Kind:     hypothesis.QuestionRephrase,
			Priority: hypothesis.PriorityLow,
			Subject:  "request",
			Prompt:   "No domain vocabulary matched the request. Can you rephrase it in business terms?",
			State:    hypothesis.QuestionOpen,
		})
	}

	s.state = s.settledState()
	s.log.Info("session created", map[string]interface{}{
		"sessionId": s.id,
		"records":   len(s.records),
		"questions": len(s.questions),
		"state":     string(s.state),
	})
	return s
}

// addQuestion assigns the next stable id and links the question to the
// hypothesis it is about.
func (s *Session) addQuestion(q hypothesis.OpenQuestion) {
	q.ID = fmt.Sprintf("Q%d", len(s.questions)+1)
	if q.State == "" {
		q.State = hypothesis.QuestionOpen
	}
	s.questions = append(s.questions, q)

	for i := range s.components {
		if s.components[i].Component == q.Subject {
			s.components[i].QuestionIDs = append(s.components[i].QuestionIDs, q.ID)
		}
	}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Request returns the analyzed request text
func (s *Session) Request() string {
	return s.request
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// NextQuestion dispatches the most urgent open question: highest priority
// first, creation order within a priority. The second return is false when
// nothing is open or the session has stalled.
func (s *Session) NextQuestion() (hypothesis.OpenQuestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStalled {
		return hypothesis.OpenQuestion{}, false
	}
	q := s.nextOpen()
	if q == nil {
		return hypothesis.OpenQuestion{}, false
	}
	if q.Priority.Blocking() {
		s.state = StateAwaitingAnswer
	}
	return *q, true
}

func (s *Session) nextOpen() *hypothesis.OpenQuestion {
	var best *hypothesis.OpenQuestion
	for i := range s.questions {
		q := &s.questions[i]
		if q.State != hypothesis.QuestionOpen {
			continue
		}
		if best == nil || q.Priority.Rank() > best.Priority.Rank() {
			best = q
		}
	}
	return best
}

// Answer applies one answer. Every answer to a blocking question must
// strictly shrink the open HIGH+MEDIUM set; an answer that does not marks
// the session Stalled instead of looping. Answers may spawn LOW follow-up
// questions, which never block resolution.
func (s *Session) Answer(questionID, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStalled {
		return errors.New(errors.SessionTerminal, fmt.Sprintf("session %s has stalled", s.id), nil)
	}

	q := s.findQuestion(questionID)
	if q == nil {
		return errors.New(errors.QuestionNotFound, fmt.Sprintf("no question %q in session %s", questionID, s.id), nil)
	}
	if q.State != hypothesis.QuestionOpen {
		return errors.New(errors.QuestionNotPending, fmt.Sprintf("question %s is already answered", questionID), nil)
	}

	before := s.blockingCount()

	var err error
	switch q.Kind {
	case hypothesis.QuestionOwnership:
		err = s.applyOwnership(q, answer)
	case hypothesis.QuestionTieBreak:
		err = s.applyTieBreak(q, answer)
	case hypothesis.QuestionComponentOwner:
		err = s.applyComponentOwner(q, answer)
	case hypothesis.QuestionIntegrationPattern:
		s.applyIntegrationPattern(q, answer)
	default:
		// Event-schema and rephrase answers are recorded verbatim.
	}
	if err != nil {
		return err
	}

	// Handlers that spawn follow-ups append to s.questions, which can
	// reallocate the backing array and leave q pointing at the old one.
	// Re-resolve by id before marking answered.
	q = s.findQuestion(questionID)
	q.State = hypothesis.QuestionAnswered
	q.Answer = answer

	after := s.blockingCount()
	if q.Priority.Blocking() && after >= before {
		s.state = StateStalled
		s.log.Warn("session stalled", map[string]interface{}{
			"sessionId": s.id,
			"question":  questionID,
			"open":      after,
		})
		return nil
	}

	s.state = s.settledState()
	s.log.Debug("answer applied", map[string]interface{}{
		"sessionId": s.id,
		"question":  questionID,
		"state":     string(s.state),
	})
	return nil
}

// applyOwnership handles an ownership-confirm answer. "yes" escalates the
// owning domain's record to HIGH; "no" rejects the hypothesis (and the
// record once every component of the domain is rejected); any other value is
// taken as the name of the component that actually owns the change.
func (s *Session) applyOwnership(q *hypothesis.OpenQuestion, answer string) error {
	h := s.findComponent(q.Subject)
	if h == nil {
		return errors.New(errors.InternalError, fmt.Sprintf("question %s references unknown hypothesis %q", q.ID, q.Subject), nil)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y", "confirm":
		if rec := s.findRecord(h.Domain); rec != nil {
			rec.Confidence = hypothesis.High
			rec.Reasoning = fmt.Sprintf("ownership of %q confirmed in refinement", h.Component)
		}
		if h.ChangeKind == hypothesis.SideEffect {
			s.addQuestion(hypothesis.OpenQuestion{
				Kind:     hypothesis.QuestionIntegrationPattern,
				Priority: hypothesis.PriorityLow,
				Subject:  h.Component,
				Prompt:   fmt.Sprintf("Is the %s side effect event-driven or a direct API call? (event/api)", h.Component),
				State:    hypothesis.QuestionOpen,
			})
		}
	case "no", "n":
		h.Rejected = true
		s.rejectRecordIfEmpty(h.Domain)
	default:
		h.Rejected = true
		s.adoptComponent(strings.TrimSpace(answer), h.Domain, h.ChangeKind, h.ProbableChanges)
	}
	return nil
}

// applyTieBreak resolves an unbroken scoring tie. The winner keeps its HIGH
// core-change record and becomes the primary domain; every losing record and
// its hypotheses are rejected, and their pending ownership questions are
// closed as superseded so the answer settles the whole tie at once.
func (s *Session) applyTieBreak(q *hypothesis.OpenQuestion, answer string) error {
	winner := ""
	for _, d := range s.ties {
		if strings.EqualFold(strings.TrimSpace(answer), d) {
			winner = d
			break
		}
	}
	if winner == "" {
		return errors.New(errors.AnswerInvalid,
			fmt.Sprintf("answer must name one of the tied domains: %s", strings.Join(s.ties, ", ")), nil)
	}

	s.primary = winner

	// Close the tied domains' pending ownership questions before rejecting
	// the losers' hypotheses; findComponent skips rejected ones, so the
	// other order would leave the losers' questions open forever.
	for i := range s.questions {
		other := &s.questions[i]
		if other.ID == q.ID || other.State != hypothesis.QuestionOpen || other.Kind != hypothesis.QuestionOwnership {
			continue
		}
		h := s.findComponent(other.Subject)
		if h == nil || !s.inTie(h.Domain) {
			continue
		}
		other.State = hypothesis.QuestionAnswered
		if h.Domain == winner {
			other.Answer = "confirmed by tie resolution"
		} else {
			other.Answer = "superseded by tie resolution"
		}
	}

	for _, d := range s.ties {
		if d == winner {
			continue
		}
		if rec := s.findRecord(d); rec != nil {
			rec.Rejected = true
			rec.Reasoning = fmt.Sprintf("tie resolved in favor of %q", winner)
		}
		for i := range s.components {
			if s.components[i].Domain == d {
				s.components[i].Rejected = true
			}
		}
	}

	s.ties = nil
	return nil
}

// applyComponentOwner replaces a speculative placeholder with the named
// component. A name not in the catalog is registered speculatively under the
// unknown domain so later discovery and edges can still reference it.
func (s *Session) applyComponentOwner(q *hypothesis.OpenQuestion, answer string) error {
	name := strings.TrimSpace(answer)
	if name == "" {
		return errors.New(errors.AnswerInvalid, "component-owner answer must name a component", nil)
	}

	h := s.findComponent(q.Subject)
	if h == nil {
		return errors.New(errors.InternalError, fmt.Sprintf("question %s references unknown hypothesis %q", q.ID, q.Subject), nil)
	}

	if desc, ok := s.catalog.Get(name); ok {
		h.Component = desc.Name
		h.Speculative = desc.Speculative
	} else {
		if err := s.catalog.Register(ontology.ComponentDescriptor{
			Name:        name,
			Domain:      ontology.DomainUnknown,
			Speculative: true,
		}); err != nil {
			return err
		}
		h.Component = name
		h.Speculative = true
		s.log.Info("registered speculative component", map[string]interface{}{
			"sessionId": s.id,
			"component": name,
		})
	}
	return nil
}

// applyIntegrationPattern records the pattern and, for an event integration,
// spawns a LOW follow-up asking for the event schema.
func (s *Session) applyIntegrationPattern(q *hypothesis.OpenQuestion, answer string) {
	if strings.EqualFold(strings.TrimSpace(answer), "event") {
		s.addQuestion(hypothesis.OpenQuestion{
			Kind:     hypothesis.QuestionEventSchema,
			Priority: hypothesis.PriorityLow,
			Subject:  q.Subject,
			Prompt:   fmt.Sprintf("Which event (name and schema) carries the %s integration?", q.Subject),
			State:    hypothesis.QuestionOpen,
		})
	}
}

// adoptComponent swaps in a caller-named component for a rejected
// hypothesis, registering it speculatively when the catalog has no entry.
func (s *Session) adoptComponent(name, domain string, kind hypothesis.ImpactType, changes []string) {
	speculative := true
	if desc, ok := s.catalog.Get(name); ok {
		speculative = desc.Speculative
		domain = desc.Domain
	} else if err := s.catalog.Register(ontology.ComponentDescriptor{
		Name:        name,
		Domain:      ontology.DomainUnknown,
		Speculative: true,
	}); err != nil {
		// Already registered mid-session: reuse the existing entry.
		if desc, ok := s.catalog.Get(name); ok {
			speculative = desc.Speculative
			domain = desc.Domain
		}
	}

	s.components = append(s.components, hypothesis.ComponentHypothesis{
		Component:       name,
		Domain:          domain,
		ChangeKind:      kind,
		ProbableChanges: changes,
		Speculative:     speculative,
	})
}

// Abandon marks the session stalled, keeping its open questions as context.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateResolved {
		s.state = StateStalled
	}
}

// Snapshot assembles the current state into a Hypothesis. Valid in any
// state; before resolution it reflects work in progress.
func (s *Session) Snapshot() hypothesis.Hypothesis {
	s.mu.Lock()
	defer s.mu.Unlock()

	return hypothesis.Assemble(hypothesis.Input{
		Request:    s.request,
		SessionID:  s.id,
		State:      string(s.state),
		Records:    append([]hypothesis.ImpactRecord(nil), s.records...),
		Components: append([]hypothesis.ComponentHypothesis(nil), s.components...),
		Questions:  append([]hypothesis.OpenQuestion(nil), s.questions...),
		Catalog:    s.catalog,
	})
}

// Questions returns all questions in creation order.
func (s *Session) Questions() []hypothesis.OpenQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]hypothesis.OpenQuestion(nil), s.questions...)
}

// PrimaryDomain returns the primary domain, empty while a tie is unresolved.
func (s *Session) PrimaryDomain() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.primary
}

func (s *Session) settledState() State {
	if s.blockingCount() == 0 {
		return StateResolved
	}
	return StateOpen
}

func (s *Session) blockingCount() int {
	n := 0
	for i := range s.questions {
		q := &s.questions[i]
		if q.State == hypothesis.QuestionOpen && q.Priority.Blocking() {
			n++
		}
	}
	return n
}

func (s *Session) findQuestion(id string) *hypothesis.OpenQuestion {
	for i := range s.questions {
		if s.questions[i].ID == id {
			return &s.questions[i]
		}
	}
	return nil
}

func (s *Session) findComponent(name string) *hypothesis.ComponentHypothesis {
	for i := range s.components {
		if s.components[i].Component == name && !s.components[i].Rejected {
			return &s.components[i]
		}
	}
	return nil
}

func (s *Session) findRecord(domain string) *hypothesis.ImpactRecord {
	for i := range s.records {
		if s.records[i].Domain == domain {
			return &s.records[i]
		}
	}
	return nil
}

func (s *Session) rejectRecordIfEmpty(domain string) {
	for i := range s.components {
		if s.components[i].Domain == domain && !s.components[i].Rejected {
			return
		}
	}
	if rec := s.findRecord(domain); rec != nil {
		rec.Rejected = true
	}
}

func (s *Session) inTie(domain string) bool {
	for _, d := range s.ties {
		if d == domain {
			return true
		}
	}
	return false
}
