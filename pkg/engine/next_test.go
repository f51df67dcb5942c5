package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/suggestd/pkg/proposal"
	"github.com/bastiangx/suggestd/pkg/ranking"
	"github.com/bastiangx/suggestd/pkg/suggest"
)

// eventRecorder captures window deltas in delivery order.
type eventRecorder struct {
	events []string
	added  []*suggest.RankedSuggestion
}

func (r *eventRecorder) OnAddSuggestion(s *suggest.RankedSuggestion) {
	r.events = append(r.events, "add:"+s.SuggestionID())
	r.added = append(r.added, s)
}

func (r *eventRecorder) OnRemoveSuggestion(suggestionID string) {
	r.events = append(r.events, "remove:"+suggestionID)
}

func (r *eventRecorder) OnRemoveAll() {
	r.events = append(r.events, "remove_all")
}

func (r *eventRecorder) reset() {
	r.events = nil
	r.added = nil
}

func hintOnlyRanker() *ranking.LinearRanker {
	r := ranking.NewLinearRanker()
	r.AddFeature(1.0, ranking.HintFeature{})
	return r
}

func newTestNext() *NextProcessor {
	return NewNextProcessor(&proposal.SequenceGenerator{}, hintOnlyRanker(), nil)
}

func prop(id, headline string, hint float64) proposal.Proposal {
	return proposal.Proposal{
		ID:             id,
		Display:        proposal.Display{Headline: headline},
		ConfidenceHint: hint,
	}
}

func TestNextProcessorRegisterDeliversSnapshot(t *testing.T) {
	n := newTestNext()
	n.AddProposal("email", prop("p1", "Reply to Alice", 0.4))
	n.AddProposal("email", prop("p2", "Join standup", 0.8))

	rec := &eventRecorder{}
	n.RegisterListener(rec, 10)

	// s0 is p1, s1 is p2; snapshot arrives in rank order.
	assert.Equal(t, []string{"add:s1", "add:s0"}, rec.events)
}

func TestNextProcessorBatchesMutations(t *testing.T) {
	n := newTestNext()
	rec := &eventRecorder{}
	n.RegisterListener(rec, 10)

	// Mutations are silent until the batch re-ranks.
	n.AddProposal("email", prop("p1", "Reply to Alice", 0.4))
	n.AddProposal("email", prop("p2", "Join standup", 0.8))
	assert.Empty(t, rec.events)

	n.UpdateRanking()
	assert.Equal(t, []string{"add:s1", "add:s0"}, rec.events)
}

func TestNextProcessorReplaceProposal(t *testing.T) {
	n := newTestNext()
	rec := &eventRecorder{}
	n.RegisterListener(rec, 10)

	n.AddProposal("email", prop("p1", "Reply to Alice", 0.4))
	n.UpdateRanking()
	rec.reset()

	// Same key: the old suggestion is withdrawn, a fresh ID takes over.
	n.AddProposal("email", prop("p1", "Reply to Alice (updated)", 0.9))
	n.UpdateRanking()

	assert.Equal(t, []string{"remove:s0", "add:s1"}, rec.events)
	assert.Equal(t, 1, n.Registry().Len())
	assert.Nil(t, n.GetBySuggestionID("s0"))
	require.NotNil(t, n.GetBySuggestionID("s1"))
	assert.Equal(t, 0.9, n.GetBySuggestionID("s1").Prototype.Proposal.ConfidenceHint)
}

func TestNextProcessorRemoveProposal(t *testing.T) {
	n := newTestNext()
	rec := &eventRecorder{}
	n.RegisterListener(rec, 2)

	n.AddProposal("email", prop("p1", "Reply to Alice", 0.9))
	n.AddProposal("email", prop("p2", "Join standup", 0.7))
	n.AddProposal("email", prop("p3", "Review doc", 0.5))
	n.UpdateRanking()
	rec.reset()

	// p2 leaves immediately and p3 slides into the full window.
	require.True(t, n.RemoveProposal("email", "p2"))
	assert.Equal(t, []string{"remove:s1", "add:s2"}, rec.events)

	assert.False(t, n.RemoveProposal("email", "p2"), "second remove is a no-op")
	assert.Nil(t, n.GetBySuggestionID("s1"))
}

func TestNextProcessorSnooze(t *testing.T) {
	n := newTestNext()
	rec := &eventRecorder{}
	n.RegisterListener(rec, 10)

	s := n.AddProposal("email", prop("p1", "Reply to Alice", 0.9))
	n.UpdateRanking()
	rec.reset()

	n.Snooze(s)
	n.UpdateRanking()

	assert.Equal(t, []string{"remove:s0"}, rec.events, "snoozed entry leaves the window")
	assert.NotNil(t, n.GetBySuggestionID("s0"), "but stays in the registry")
}

func TestNextProcessorSearch(t *testing.T) {
	n := newTestNext()
	n.AddProposal("email", prop("p1", "Reply to Alice", 0.4))
	n.AddProposal("email", prop("p2", "Replay recording", 0.8))
	n.AddProposal("calendar", prop("p3", "Open calendar", 0.6))
	n.UpdateRanking()

	matched := n.Search("rep", 10)
	require.Len(t, matched, 2)
	assert.Equal(t, "s1", matched[0].SuggestionID(), "rank order, highest first")
	assert.Equal(t, "s0", matched[1].SuggestionID())

	assert.Len(t, n.Search("rep", 1), 1, "limit caps results")
	assert.Empty(t, n.Search("zzz", 10))
}

func TestNextProcessorDeadStoryFilter(t *testing.T) {
	n := newTestNext()
	n.SetStoryLiveness(func(storyID string) bool {
		return storyID == "live"
	})

	dead := prop("p1", "Stale story work", 0.9)
	dead.StoryAffinity = "gone"
	live := prop("p2", "Active story work", 0.5)
	live.StoryAffinity = "live"
	n.AddProposal("email", dead)
	n.AddProposal("email", live)

	n.UpdateRanking()

	assert.Nil(t, n.GetBySuggestionID("s0"), "dead-story suggestion dropped outright")
	assert.NotNil(t, n.GetBySuggestionID("s1"))
}
