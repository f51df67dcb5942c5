package engine

import (
	"github.com/charmbracelet/log"

	"github.com/bastiangx/suggestd/pkg/ranking"
	"github.com/bastiangx/suggestd/pkg/suggest"
)

// InterruptionGate decides whether a newly added suggestion bypasses
// normal Next delivery. Accepted suggestions are marked interrupting,
// pinned to maximum confidence and fanned out to interruption listeners;
// a suggestion is never interrupted twice.
type InterruptionGate struct {
	policy      ranking.DecisionPolicy
	listeners   []InterruptionListener
	interrupted map[string]bool
}

// NewInterruptionGate creates a gate around the given policy. A nil
// policy means nothing ever interrupts.
func NewInterruptionGate(policy ranking.DecisionPolicy) *InterruptionGate {
	return &InterruptionGate{
		policy:      policy,
		interrupted: make(map[string]bool),
	}
}

// RegisterListener adds an interruption subscriber.
func (g *InterruptionGate) RegisterListener(l InterruptionListener) {
	g.listeners = append(g.listeners, l)
}

// MaybeInterrupt runs the suggestion through the decision policy. On
// accept it marks the suggestion interrupting and notifies every
// listener. Returns whether the suggestion was taken.
func (g *InterruptionGate) MaybeInterrupt(s *suggest.RankedSuggestion) bool {
	if g.policy == nil {
		return false
	}
	id := s.SuggestionID()
	if g.interrupted[id] {
		return false
	}
	if !g.policy.Accept(s) {
		return false
	}
	g.interrupted[id] = true
	s.Interrupting = true
	// Interruptions are delivered at top urgency regardless of the
	// underlying ranking score.
	s.Confidence = 1.0
	log.Debugf("Interrupting with suggestion %s", id)
	for _, l := range g.listeners {
		l.OnInterrupt(s)
	}
	return true
}

// Forget clears interruption state for a removed suggestion. IDs are
// never reused, so this only trims the map.
func (g *InterruptionGate) Forget(suggestionID string) {
	delete(g.interrupted, suggestionID)
}
