// Package errors defines stable error codes for all engine failure modes.
//
// Analysis itself never fails: ambiguity, unknown references, and stalled
// refinement are modeled as data on the session. The codes here cover the
// boundary where data enters and leaves the engine (loaders, the session
// store, the CLI).
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// OntologyInvalid indicates the domain ontology failed validation
	OntologyInvalid ErrorCode = "ONTOLOGY_INVALID"
	// CatalogInvalid indicates the component catalog failed validation
	CatalogInvalid ErrorCode = "CATALOG_INVALID"
	// SessionNotFound indicates no stored session matches the given id
	SessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	// QuestionNotFound indicates the answered question id does not exist
	QuestionNotFound ErrorCode = "QUESTION_NOT_FOUND"
	// QuestionNotPending indicates an answer for a question that is not the
	// currently dispatched one
	QuestionNotPending ErrorCode = "QUESTION_NOT_PENDING"
	// SessionTerminal indicates the session is already Resolved or Stalled
	SessionTerminal ErrorCode = "SESSION_TERMINAL"
	// AnswerInvalid indicates an answer value the question cannot accept
	AnswerInvalid ErrorCode = "ANSWER_INVALID"
	// StoreUnavailable indicates the session store could not be opened
	StoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Drilldown represents a suggested follow-up command
type Drilldown struct {
	Label   string `json:"label"`
	Command string `json:"command"`
}

// EngineError represents an engine error with code, message, and suggestions
type EngineError struct {
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	Drilldowns []Drilldown `json:"drilldowns,omitempty"`
	cause      error       // Underlying error (not exported to JSON)
}

// New creates a new EngineError
func New(code ErrorCode, message string, cause error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		cause:      cause,
		Drilldowns: suggestedDrilldowns(code),
	}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *EngineError) WithDetails(details interface{}) *EngineError {
	e.Details = details
	return e
}

// drilldownActions maps error codes to suggested follow-up commands
var drilldownActions = map[ErrorCode][]Drilldown{
	OntologyInvalid: {
		{Label: "Validate workspace files", Command: "archscope catalog validate"},
	},
	CatalogInvalid: {
		{Label: "Validate workspace files", Command: "archscope catalog validate"},
	},
	SessionNotFound: {
		{Label: "List stored sessions", Command: "archscope refine list"},
	},
	QuestionNotPending: {
		{Label: "Show the dispatched question", Command: "archscope refine next"},
	},
	SessionTerminal: {
		{Label: "Export the final hypothesis", Command: "archscope export"},
	},
	AnswerInvalid: {
		{Label: "Show the dispatched question", Command: "archscope refine next"},
	},
}

// suggestedDrilldowns returns suggested follow-ups for an error code
func suggestedDrilldowns(code ErrorCode) []Drilldown {
	return drilldownActions[code]
}
