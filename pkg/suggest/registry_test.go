package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/suggestd/pkg/proposal"
)

// hintRanker scores by the proposal's own confidence hint, enough ranking
// for registry and window tests without pulling in the ranking package.
type hintRanker struct{}

func (hintRanker) Rank(query string, s *RankedSuggestion) float64 {
	return s.Prototype.Proposal.ConfidenceHint
}

func sugg(id string, hint float64) *RankedSuggestion {
	return &RankedSuggestion{
		Prototype: &proposal.Prototype{
			SuggestionID: id,
			SourceID:     "test",
			Proposal: proposal.Proposal{
				ID:             "p-" + id,
				Display:        proposal.Display{Headline: "headline " + id},
				ConfidenceHint: hint,
			},
		},
	}
}

func ids(suggestions []*RankedSuggestion) []string {
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.SuggestionID())
	}
	return out
}

func TestRegistryRankOrdersByConfidence(t *testing.T) {
	r := NewRegistry()
	r.SetRanker(hintRanker{})
	r.Add(sugg("a", 0.4))
	r.Add(sugg("b", 0.8))

	r.Rank("")

	assert.Equal(t, []string{"b", "a"}, ids(r.All()))
	assert.Equal(t, 0.8, r.All()[0].Confidence)
	assert.Equal(t, 0.4, r.All()[1].Confidence)
}

func TestRegistryStableSortPreservesTies(t *testing.T) {
	r := NewRegistry()
	r.SetRanker(hintRanker{})
	r.Add(sugg("first", 0.5))
	r.Add(sugg("second", 0.5))
	r.Add(sugg("third", 0.5))

	// Repeated ranking must never reshuffle equal-confidence entries.
	for i := 0; i < 3; i++ {
		r.Rank("")
		assert.Equal(t, []string{"first", "second", "third"}, ids(r.All()))
	}
}

func TestRegistryRemoveByKey(t *testing.T) {
	r := NewRegistry()
	r.SetRanker(hintRanker{})
	s := sugg("a", 0.5)
	r.Add(s)

	removed, ok := r.RemoveByKey("test", "p-a")
	require.True(t, ok)
	assert.Same(t, s, removed)
	assert.Equal(t, 0, r.Len())

	// Removing again is a no-op.
	_, ok = r.RemoveByKey("test", "p-a")
	assert.False(t, ok)

	_, ok = r.RemoveByKey("test", "never-added")
	assert.False(t, ok)
}

func TestRegistryLookups(t *testing.T) {
	r := NewRegistry()
	s := sugg("a", 0.5)
	r.Add(s)

	assert.Same(t, s, r.GetBySuggestionID("a"))
	assert.Nil(t, r.GetBySuggestionID("missing"))
	assert.Same(t, s, r.GetByKey("test", "p-a"))
	assert.Nil(t, r.GetByKey("test", "p-z"))
}

type hideByID struct {
	id string
}

func (f hideByID) Hide(s *RankedSuggestion) bool {
	return s.SuggestionID() == f.id
}

func TestRegistryRefreshAppliesPassiveFilters(t *testing.T) {
	r := NewRegistry()
	r.SetRanker(hintRanker{})
	r.AddPassiveFilter(hideByID{id: "b"})
	r.Add(sugg("a", 0.4))
	r.Add(sugg("b", 0.8))

	r.Refresh("")

	// Hidden entries stay ranked but disappear from the visible order.
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"a"}, ids(r.Visible()))
	assert.True(t, r.GetBySuggestionID("b").Hidden)
}

func TestRegistryRefreshClearsStaleHiddenFlags(t *testing.T) {
	r := NewRegistry()
	r.SetRanker(hintRanker{})
	f := NewSnoozedFilter()
	r.AddPassiveFilter(f)
	r.Add(sugg("a", 0.5))

	f.Snooze("a")
	r.Refresh("")
	require.Empty(t, r.Visible())

	f.Wake("a")
	r.Refresh("")
	assert.Equal(t, []string{"a"}, ids(r.Visible()))
}

type dropByID struct {
	id string
}

func (f dropByID) Filter(suggestions []*RankedSuggestion) []*RankedSuggestion {
	kept := suggestions[:0]
	for _, s := range suggestions {
		if s.SuggestionID() != f.id {
			kept = append(kept, s)
		}
	}
	return kept
}

func TestRegistryRefreshAppliesActiveFilters(t *testing.T) {
	r := NewRegistry()
	r.SetRanker(hintRanker{})
	r.AddActiveFilter(dropByID{id: "a"})
	r.Add(sugg("a", 0.9))
	r.Add(sugg("b", 0.1))

	r.Refresh("")

	assert.Equal(t, 1, r.Len(), "active filter removes outright")
	assert.Nil(t, r.GetBySuggestionID("a"))
}

func TestRegistryRankWithoutRanker(t *testing.T) {
	r := NewRegistry()
	s := sugg("a", 0.5)
	s.Confidence = 0.7
	r.Add(s)

	r.Rank("")

	assert.Equal(t, 0.7, s.Confidence, "confidence untouched with no ranker")
}

func TestDeadStoryFilter(t *testing.T) {
	alive := sugg("a", 0.5)
	alive.Prototype.Proposal.StoryAffinity = "live-story"
	dead := sugg("b", 0.5)
	dead.Prototype.Proposal.StoryAffinity = "gone-story"
	free := sugg("c", 0.5)

	f := DeadStoryFilter{Alive: func(storyID string) bool {
		return storyID == "live-story"
	}}
	kept := f.Filter([]*RankedSuggestion{alive, dead, free})

	assert.Equal(t, []string{"a", "c"}, ids(kept))
}

func TestDeadStoryFilterNilCallback(t *testing.T) {
	in := []*RankedSuggestion{sugg("a", 0.5)}
	assert.Equal(t, in, DeadStoryFilter{}.Filter(in))
}
