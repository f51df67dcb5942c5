// Package engine glues the ranked registries together: the long-lived Next
// scope, per-cycle query dispatch, interruption gating, and the facade that
// routes external interactions back onto whichever scope owns a suggestion.
package engine

import (
	"github.com/bastiangx/suggestd/pkg/proposal"
	"github.com/bastiangx/suggestd/pkg/suggest"
)

// NextListener receives windowed deltas for the Next scope. It is exactly
// the window listener contract; the alias keeps the external surface named
// by what it subscribes to.
type NextListener = suggest.WindowListener

// QueryListener receives windowed deltas for one query cycle plus the
// cycle-level signals: processing on at dispatch and off at completion,
// and a single explicit complete.
type QueryListener interface {
	suggest.WindowListener
	OnQueryComplete()
	OnProcessingChange(processing bool)
}

// InterruptionListener receives suggestions promoted out of normal Next
// delivery. Interruptions always arrive at maximum confidence.
type InterruptionListener interface {
	OnInterrupt(s *suggest.RankedSuggestion)
}

// NavigationListener observes navigation intents (story focus/creation)
// before a selected suggestion's actions execute.
type NavigationListener interface {
	OnNavigation(action proposal.Action)
}

// QueryHandler answers one query per cycle. Handlers run concurrently;
// an error return is treated the same as not responding.
type QueryHandler interface {
	OnQuery(input string) (proposal.QueryResponse, error)
}

// QueryHandlerFunc adapts a function to QueryHandler.
type QueryHandlerFunc func(input string) (proposal.QueryResponse, error)

func (f QueryHandlerFunc) OnQuery(input string) (proposal.QueryResponse, error) {
	return f(input)
}

// ExecutionStatus reports the outcome of executing a suggestion's actions.
type ExecutionStatus int

const (
	ExecutionOK ExecutionStatus = iota
	ExecutionInvalid
	ExecutionFailed
)

// ActionExecutor runs a selected suggestion's action list against an
// optional target story and reports the resulting story ID. Invoked only
// on explicit selection, never speculatively.
type ActionExecutor interface {
	Execute(actions []proposal.Action, storyID string) (ExecutionStatus, string)
}

// MediaPlayback plays the single accepted media response of a query cycle.
type MediaPlayback interface {
	Play(m proposal.MediaResponse)
}

// ContextWriter receives context values the engine publishes, e.g. the
// raw query text at the start of each cycle.
type ContextWriter interface {
	Publish(topic, value string)
}

// TopicQueryText is the context topic the raw query text is published on.
const TopicQueryText = "raw/text"
