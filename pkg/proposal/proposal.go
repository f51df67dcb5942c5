// Package proposal defines the external contract between proposal sources,
// query handlers and the suggestion engine: the proposal payload itself, the
// closed set of actions a suggestion can carry, and the durable prototype
// record the engine keeps for every accepted proposal.
package proposal

// AnnoyanceLevel describes how intrusive a suggestion is allowed to be.
type AnnoyanceLevel int

const (
	AnnoyanceNone AnnoyanceLevel = iota
	AnnoyancePeek
	AnnoyanceInterrupt
)

// ActionType enumerates the closed set of actions a proposal can request.
// A tagged variant is used instead of an interface hierarchy so dispatch
// stays in one switch.
type ActionType int

const (
	ActionCreateStory ActionType = iota
	ActionFocusStory
	ActionAddModule
	ActionSetLinkValue
	ActionCustom
)

// Action is one step to execute when a suggestion is selected.
// Only the fields relevant to its Type are set.
type Action struct {
	Type     ActionType
	StoryID  string
	ModuleID string
	LinkPath string
	Payload  string
}

// Display holds the user-visible content of a proposal.
type Display struct {
	Headline    string
	Subheadline string
	Details     string
	Annoyance   AnnoyanceLevel
}

// Proposal is an externally supplied candidate suggestion. It is immutable
// once submitted; re-proposing under the same ID replaces the old record.
type Proposal struct {
	// ID is stable and unique within its source.
	ID      string
	Display Display

	// ConfidenceHint is the source's own estimate in [0,1]. The engine
	// treats it as one ranking signal, never as the final confidence.
	ConfidenceHint float64

	// Actions run in order when the suggestion is selected.
	Actions []Action

	// StoryAffinity and ModuleAffinity tie the proposal to existing
	// state; empty means no affinity.
	StoryAffinity  string
	ModuleAffinity string

	// WantsRichEntry requests story pre-loading. Carried for sources
	// that set it, currently only logged.
	WantsRichEntry bool
}

// MediaResponse is an optional speech/audio payload attached to a query
// response. At most one handler's media response is played per query cycle.
type MediaResponse struct {
	URL  string
	Text string
}

// QueryResponse is what a query handler returns for one query cycle.
type QueryResponse struct {
	Proposals           []Proposal
	Media               *MediaResponse
	NaturalLanguageText string
}
