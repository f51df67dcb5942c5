package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/suggestd/pkg/engine"
	"github.com/bastiangx/suggestd/pkg/proposal"
	"github.com/bastiangx/suggestd/pkg/suggest"
)

func TestParseInteraction(t *testing.T) {
	testCases := []struct {
		kind     string
		expected engine.InteractionType
		ok       bool
	}{
		{"selected", engine.InteractionSelected, true},
		{"dismissed", engine.InteractionDismissed, true},
		{"snoozed", engine.InteractionSnoozed, true},
		{"expired", engine.InteractionExpired, true},
		{"poked", 0, false},
		{"", 0, false},
	}
	for _, tc := range testCases {
		got, ok := parseInteraction(tc.kind)
		assert.Equal(t, tc.ok, ok, "kind: %q", tc.kind)
		if tc.ok {
			assert.Equal(t, tc.expected, got)
		}
	}
}

func TestFromWireProposal(t *testing.T) {
	w := WireProposal{
		ID:          "p1",
		Headline:    "Reply to Alice",
		Subheadline: "from this morning",
		Annoyance:   int(proposal.AnnoyancePeek),
		Confidence:  0.8,
		Actions: []WireAction{
			{Type: int(proposal.ActionFocusStory), StoryID: "story-1"},
		},
		StoryAffinity: "story-1",
		Rich:          true,
	}

	p := fromWireProposal(w)

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Reply to Alice", p.Display.Headline)
	assert.Equal(t, proposal.AnnoyancePeek, p.Display.Annoyance)
	assert.Equal(t, 0.8, p.ConfidenceHint)
	require.Len(t, p.Actions, 1)
	assert.Equal(t, proposal.ActionFocusStory, p.Actions[0].Type)
	assert.Equal(t, "story-1", p.Actions[0].StoryID)
	assert.Equal(t, "story-1", p.StoryAffinity)
	assert.True(t, p.WantsRichEntry)
}

func wireTestSuggestion(id string, conf float64) *suggest.RankedSuggestion {
	return &suggest.RankedSuggestion{
		Prototype: &proposal.Prototype{
			SuggestionID: id,
			SourceID:     "email",
			Proposal: proposal.Proposal{
				ID:      "p-" + id,
				Display: proposal.Display{Headline: "headline " + id},
			},
		},
		Confidence: conf,
	}
}

func TestToWireSuggestion(t *testing.T) {
	w := toWireSuggestion(wireTestSuggestion("s1", 0.7))

	assert.Equal(t, "s1", w.SuggestionID)
	assert.Equal(t, "email", w.SourceID)
	assert.Equal(t, "headline s1", w.Headline)
	assert.Equal(t, 0.7, w.Confidence)
}

func TestQueryCollectorResults(t *testing.T) {
	c := newQueryCollector()
	c.OnAddSuggestion(wireTestSuggestion("low", 0.3))
	c.OnAddSuggestion(wireTestSuggestion("high", 0.9))
	c.OnAddSuggestion(wireTestSuggestion("gone", 0.5))
	c.OnRemoveSuggestion("gone")

	results := c.results()
	require.Len(t, results, 2)
	assert.Equal(t, "high", results[0].SuggestionID, "sorted by descending confidence")
	assert.Equal(t, "low", results[1].SuggestionID)
}

func TestQueryCollectorRemoveAll(t *testing.T) {
	c := newQueryCollector()
	c.OnAddSuggestion(wireTestSuggestion("a", 0.5))
	c.OnRemoveAll()

	assert.Empty(t, c.results())
}
