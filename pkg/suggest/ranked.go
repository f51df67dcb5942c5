// Package suggest is the core of the engine: the canonical ranked collection
// of live suggestions for one scope (Next, or one query cycle), the filters
// that shape it, and the bounded windowed views delivered to listeners.
package suggest

import (
	"github.com/bastiangx/suggestd/pkg/proposal"
)

// RankedSuggestion is the scope-local wrapper around a prototype. It lives
// inside exactly one Registry. The Prototype handle is non-owning; the
// processor that owns both the registry and the prototype store removes
// them together.
type RankedSuggestion struct {
	Prototype *proposal.Prototype

	// Confidence is in [0,1] and non-increasing along the registry
	// order after Rank.
	Confidence float64

	// Hidden suggestions stay ranked but are excluded from windows.
	Hidden bool

	// Interrupting suggestions are delivered out-of-band and excluded
	// from Next windows while pending.
	Interrupting bool
}

// SuggestionID is a convenience accessor for the prototype's stable ID.
func (s *RankedSuggestion) SuggestionID() string {
	return s.Prototype.SuggestionID
}

// Visible reports whether the suggestion may appear in a window.
func (s *RankedSuggestion) Visible() bool {
	return !s.Hidden && !s.Interrupting
}
