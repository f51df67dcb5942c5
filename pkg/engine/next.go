package engine

import (
	"github.com/charmbracelet/log"

	"github.com/bastiangx/suggestd/pkg/proposal"
	"github.com/bastiangx/suggestd/pkg/suggest"
)

// NextProcessor orchestrates the single long-lived Next registry: proposal
// intake, interruption gating, the headline index, and the windowed
// subscriptions of Next listeners.
//
// Methods assume the engine mutex is held; re-ranking never happens
// implicitly inside AddProposal or RemoveProposal so that several
// mutations can batch into one UpdateRanking cycle.
type NextProcessor struct {
	protos   *proposal.Store
	registry *suggest.Registry
	gate     *InterruptionGate
	index    *suggest.HeadlineIndex
	snoozed  *suggest.SnoozedFilter
	windows  []*suggest.Window
	dirty    bool
}

// NewNextProcessor wires an empty Next scope with the given ranker and
// interruption gate.
func NewNextProcessor(ids proposal.IDGenerator, ranker suggest.Ranker, gate *InterruptionGate) *NextProcessor {
	registry := suggest.NewRegistry()
	registry.SetRanker(ranker)
	registry.AddPassiveFilter(suggest.InterruptingFilter{})
	snoozed := suggest.NewSnoozedFilter()
	registry.AddPassiveFilter(snoozed)

	return &NextProcessor{
		protos:   proposal.NewStore(ids),
		registry: registry,
		gate:     gate,
		index:    suggest.NewHeadlineIndex(),
		snoozed:  snoozed,
	}
}

// Registry exposes the Next registry for interaction routing.
func (n *NextProcessor) Registry() *suggest.Registry {
	return n.registry
}

// Index exposes the headline prefix index for the search op.
func (n *NextProcessor) Index() *suggest.HeadlineIndex {
	return n.index
}

// SetStoryLiveness installs the dead-story active filter. Suggestions
// affine to a story the callback reports dead are dropped on the next
// UpdateRanking.
func (n *NextProcessor) SetStoryLiveness(alive func(storyID string) bool) {
	n.registry.AddActiveFilter(suggest.DeadStoryFilter{Alive: alive})
}

// AddProposal accepts a proposal from sourceID. A proposal already live
// under the same key is withdrawn first (its suggestion ID is retired).
// If the interruption gate takes the new suggestion it is retained in the
// registry but kept out of Next windows; otherwise the registry is marked
// dirty for the next UpdateRanking.
func (n *NextProcessor) AddProposal(sourceID string, p proposal.Proposal) *suggest.RankedSuggestion {
	if n.registry.GetByKey(sourceID, p.ID) != nil {
		n.RemoveProposal(sourceID, p.ID)
	}

	proto := n.protos.Create(sourceID, p)
	if p.WantsRichEntry {
		log.Debugf("Proposal %q wants a rich entry; story preloading is not enabled", p.ID)
	}

	s := &suggest.RankedSuggestion{Prototype: proto}
	n.index.Insert(proto.SuggestionID, p.Display.Headline)
	n.registry.Add(s)

	if n.gate != nil && n.gate.MaybeInterrupt(s) {
		return s
	}
	n.dirty = true
	return s
}

// RemoveProposal withdraws a proposal unconditionally: registry entry,
// prototype, index entry, interruption-pending state and snooze mark all
// go together, and windows get their removal deltas immediately. Unknown
// keys are a no-op returning false.
func (n *NextProcessor) RemoveProposal(sourceID, proposalID string) bool {
	s, ok := n.registry.RemoveByKey(sourceID, proposalID)
	if !ok {
		return false
	}
	n.protos.Remove(sourceID, proposalID)

	id := s.SuggestionID()
	n.index.Remove(id, s.Prototype.Proposal.Display.Headline)
	n.snoozed.Wake(id)
	if n.gate != nil {
		n.gate.Forget(id)
	}
	for _, w := range n.windows {
		w.OnRemoveSuggestion(s)
	}
	return true
}

// RegisterListener subscribes a Next listener with its window size and
// immediately delivers the initial snapshot.
func (n *NextProcessor) RegisterListener(listener NextListener, maxResults int) *suggest.Window {
	if n.dirty {
		n.UpdateRanking()
	}
	w := suggest.NewWindow(n.registry, listener)
	n.windows = append(n.windows, w)
	w.SetResultCount(maxResults)
	return w
}

// UpdateRanking is the single point that re-ranks and re-delivers: one
// Refresh over the registry, then a delta reconcile per window.
func (n *NextProcessor) UpdateRanking() {
	n.registry.Refresh("")
	for _, w := range n.windows {
		w.Reconcile()
	}
	n.dirty = false
}

// Snooze hides a suggestion from windows without removing it. Takes
// effect on the next UpdateRanking.
func (n *NextProcessor) Snooze(s *suggest.RankedSuggestion) {
	n.snoozed.Snooze(s.SuggestionID())
	n.dirty = true
}

// GetBySuggestionID resolves a suggestion ID in the Next scope, or nil.
func (n *NextProcessor) GetBySuggestionID(id string) *suggest.RankedSuggestion {
	return n.registry.GetBySuggestionID(id)
}

// Search returns the visible Next suggestions whose headline matches the
// query by word prefix, in rank order, capped at limit.
func (n *NextProcessor) Search(query string, limit int) []*suggest.RankedSuggestion {
	matched := n.index.Match(query)
	var out []*suggest.RankedSuggestion
	for _, s := range n.registry.Visible() {
		if limit > 0 && len(out) >= limit {
			break
		}
		if matched[s.SuggestionID()] {
			out = append(out, s)
		}
	}
	return out
}
