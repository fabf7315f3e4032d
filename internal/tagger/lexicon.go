package tagger

// ActionCategory classifies actions for the scorer's fixed rules.
type ActionCategory string

const (
	// CategoryCommunication actions imply an integration side effect
	CategoryCommunication ActionCategory = "communication"
	// CategoryPresentation actions imply a frontend change
	CategoryPresentation ActionCategory = "presentation"
	// CategoryGeneric actions carry no rule implication of their own
	CategoryGeneric ActionCategory = "generic"
)

// actionLexicon maps normalized verbs to their rule category. Terms are
// stored in their normalized (singular, lowercase) form.
var actionLexicon = map[string]ActionCategory{
	// communication-type: these always pull in the integration domain
	"notify":    CategoryCommunication,
	"publish":   CategoryCommunication,
	"broadcast": CategoryCommunication,
	"escalate":  CategoryCommunication,
	"alert":     CategoryCommunication,
	"email":     CategoryCommunication,

	// presentation-type: these always pull in the frontend domain
	"show":      CategoryPresentation,
	"display":   CategoryPresentation,
	"render":    CategoryPresentation,
	"highlight": CategoryPresentation,

	// generic business verbs
	"submit":   CategoryGeneric,
	"create":   CategoryGeneric,
	"update":   CategoryGeneric,
	"delete":   CategoryGeneric,
	"cancel":   CategoryGeneric,
	"approve":  CategoryGeneric,
	"reject":   CategoryGeneric,
	"assign":   CategoryGeneric,
	"track":    CategoryGeneric,
	"export":   CategoryGeneric,
	"generate": CategoryGeneric,
	"validate": CategoryGeneric,
	"process":  CategoryGeneric,
	"archive":  CategoryGeneric,
}

// qualifierLexicon holds adjectival modifiers worth attaching to entities.
var qualifierLexicon = map[string]struct{}{
	"premium":    {},
	"high-value": {},
	"priority":   {},
	"urgent":     {},
	"critical":   {},
	"vip":        {},
	"new":        {},
	"existing":   {},
	"active":     {},
	"inactive":   {},
	"assigned":   {},
}

// ActionCategoryOf returns the category of a normalized action term.
func ActionCategoryOf(term string) (ActionCategory, bool) {
	cat, ok := actionLexicon[term]
	return cat, ok
}
