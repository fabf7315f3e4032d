// Package hypothesis defines the engine's output data model: impact records,
// component hypotheses, open questions, and the assembled Hypothesis a
// document renderer consumes. The Hypothesis is fully self-describing; no
// renderer-specific fields exist.
package hypothesis

// Confidence is the qualitative certainty of an impact assignment
type Confidence string

const (
	High   Confidence = "HIGH"
	Medium Confidence = "MEDIUM"
	Low    Confidence = "LOW"
)

var confidenceRank = map[Confidence]int{
	Low:    1,
	Medium: 2,
	High:   3,
}

// Rank returns an ordering value (higher = more confident).
func (c Confidence) Rank() int {
	return confidenceRank[c]
}

// ImpactType is the kind of change a domain or component must undergo
type ImpactType string

const (
	CoreChange ImpactType = "core-change"
	UIChange   ImpactType = "ui-change"
	APIChange  ImpactType = "api-change"
	SideEffect ImpactType = "side-effect"
	Dependency ImpactType = "dependency"
	Possible   ImpactType = "possible"
)

// ImpactRecord is one impacted domain in an analysis run. Confidence is only
// revised by the refinement session, never silently.
type ImpactRecord struct {
	Domain          string     `json:"domain"`
	Impact          ImpactType `json:"impact"`
	Confidence      Confidence `json:"confidence"`
	Score           float64    `json:"score"`
	MatchedTriggers []string   `json:"matchedTriggers,omitempty"`
	Reasoning       string     `json:"reasoning,omitempty"`

	// RuleAdded marks domains reached only through a fixed rule, not vocabulary
	RuleAdded bool `json:"ruleAdded,omitempty"`

	// Rejected marks domains explicitly ruled out by a refinement answer
	Rejected bool `json:"rejected,omitempty"`
}

// ComponentHypothesis is one candidate component change. A hypothesis whose
// component has no catalog entry is speculative and carries no
// domain-consistency guarantee.
type ComponentHypothesis struct {
	Component       string     `json:"component"`
	Domain          string     `json:"domain"`
	ChangeKind      ImpactType `json:"changeKind"`
	ProbableChanges []string   `json:"probableChanges,omitempty"`
	QuestionIDs     []string   `json:"questionIds,omitempty"`
	Speculative     bool       `json:"speculative,omitempty"`

	// Rejected marks hypotheses ruled out by a refinement answer
	Rejected bool `json:"rejected,omitempty"`
}

// Priority orders open questions: HIGH before MEDIUM before LOW
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

var priorityRank = map[Priority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
}

// Rank returns an ordering value (higher = more urgent).
func (p Priority) Rank() int {
	return priorityRank[p]
}

// Blocking reports whether an open question of this priority prevents the
// session from resolving. LOW questions never block convergence.
func (p Priority) Blocking() bool {
	return p == PriorityHigh || p == PriorityMedium
}

// QuestionKind identifies why a question was raised
type QuestionKind string

const (
	// QuestionOwnership asks to confirm a component really owns the change
	QuestionOwnership QuestionKind = "ownership-confirm"
	// QuestionTieBreak asks to pick the owner between equally scored domains
	QuestionTieBreak QuestionKind = "tie-break"
	// QuestionComponentOwner asks which component owns a domain with no catalog entry
	QuestionComponentOwner QuestionKind = "component-owner"
	// QuestionIntegrationPattern asks whether an integration is event- or API-based
	QuestionIntegrationPattern QuestionKind = "integration-pattern"
	// QuestionEventSchema asks for the event schema of a confirmed event integration
	QuestionEventSchema QuestionKind = "event-schema"
	// QuestionRephrase asks the caller to rephrase unrecognizable input
	QuestionRephrase QuestionKind = "rephrase"
)

// QuestionState tracks a question's lifecycle
type QuestionState string

const (
	QuestionOpen     QuestionState = "open"
	QuestionAnswered QuestionState = "answered"
)

// OpenQuestion is one disambiguation question. IDs are unique within a
// session and stable across iterations.
type OpenQuestion struct {
	ID       string        `json:"id"`
	Kind     QuestionKind  `json:"kind"`
	Priority Priority      `json:"priority"`
	Subject  string        `json:"subject"` // component or domain reference
	Prompt   string        `json:"prompt"`
	State    QuestionState `json:"state"`
	Answer   string        `json:"answer,omitempty"`
}

// EdgeKind classifies a dependency edge
type EdgeKind string

const (
	EdgeEvent EdgeKind = "event"
	EdgeAPI   EdgeKind = "api"
)

// DependencyEdge is a directed integration edge between two hypotheses,
// inferred only from explicit publish/consume or call references.
type DependencyEdge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Via  string   `json:"via"` // the event or API name
	Kind EdgeKind `json:"kind"`
}

// ImpactRow is one row of the assembled impact matrix
type ImpactRow struct {
	Domain     string     `json:"domain"`
	Impact     ImpactType `json:"impact"`
	Confidence Confidence `json:"confidence"`
	Components []string   `json:"components,omitempty"`
}

// Hypothesis is the engine's final output object
type Hypothesis struct {
	Request   string `json:"request"`
	SessionID string `json:"sessionId,omitempty"`

	// State is the terminal session state: "resolved" or "stalled"
	State string `json:"state"`

	Impacts    []ImpactRow           `json:"impacts"`
	Components []ComponentHypothesis `json:"components"`
	Edges      []DependencyEdge      `json:"edges"`

	// OpenQuestions are the still-open questions, unresolved and non-blocking
	OpenQuestions []OpenQuestion `json:"openQuestions,omitempty"`
}
