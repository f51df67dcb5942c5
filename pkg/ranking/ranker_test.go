package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/suggestd/pkg/proposal"
	"github.com/bastiangx/suggestd/pkg/suggest"
)

// constFeature always computes the same raw value, including invalid ones.
type constFeature struct {
	value float64
}

func (f constFeature) ComputeFeature(query string, s *suggest.RankedSuggestion) float64 {
	return f.value
}

func newSuggestion(hint float64) *suggest.RankedSuggestion {
	return &suggest.RankedSuggestion{
		Prototype: &proposal.Prototype{
			SuggestionID: "s0",
			SourceID:     "test",
			Proposal:     proposal.Proposal{ID: "p0", ConfidenceHint: hint},
		},
	}
}

func TestLinearRankerWeightedAverage(t *testing.T) {
	testCases := []struct {
		weights  []float64
		values   []float64
		expected float64
		desc     string
	}{
		{[]float64{1.0}, []float64{0.7}, 0.7, "single feature passes through"},
		{[]float64{1.0, 1.0}, []float64{1.0, 0.0}, 0.5, "equal weights average"},
		{[]float64{3.0, 1.0}, []float64{1.0, 0.0}, 0.75, "heavier weight dominates"},
		{[]float64{0.5, 0.5}, []float64{0.4, 0.6}, 0.5, "weights normalize"},
	}

	for _, tc := range testCases {
		r := NewLinearRanker()
		for i, w := range tc.weights {
			r.AddFeature(w, constFeature{value: tc.values[i]})
		}
		got := r.Rank("", newSuggestion(0))
		assert.InDelta(t, tc.expected, got, 1e-9, tc.desc)
	}
}

func TestLinearRankerNegativeWeightFloorsAtZero(t *testing.T) {
	// A negative weight pulls the weighted sum down without entering the
	// normalizer; a fully cancelled sum floors at zero.
	r := NewLinearRanker()
	r.AddFeature(1.0, constFeature{value: 1.0})
	r.AddFeature(-1.0, constFeature{value: 1.0})

	got := r.Rank("", newSuggestion(0))
	assert.Equal(t, 0.0, got)
}

func TestLinearRankerSanitizesFeatureOutputs(t *testing.T) {
	testCases := []struct {
		raw      float64
		expected float64
		desc     string
	}{
		{math.NaN(), 0.0, "NaN treated as zero"},
		{-3.0, 0.0, "negative clamped to zero"},
		{2.5, 1.0, "above one clamped to one"},
		{0.3, 0.3, "in-range value untouched"},
	}

	for _, tc := range testCases {
		r := NewLinearRanker()
		r.AddFeature(1.0, constFeature{value: tc.raw})
		got := r.Rank("", newSuggestion(0))
		assert.InDelta(t, tc.expected, got, 1e-9, tc.desc)
	}
}

func TestLinearRankerScoreStaysInRange(t *testing.T) {
	r := NewLinearRanker()
	r.AddFeature(2.0, constFeature{value: 0.9})
	r.AddFeature(0.5, constFeature{value: 0.1})
	r.AddFeature(-4.0, constFeature{value: 0.05})

	got := r.Rank("", newSuggestion(0))
	require.GreaterOrEqual(t, got, 0.0)
	require.LessOrEqual(t, got, 1.0)
}

func TestLinearRankerNoPositiveWeights(t *testing.T) {
	r := NewLinearRanker()
	r.AddFeature(-1.0, constFeature{value: 0.5})

	s := newSuggestion(0)
	s.Confidence = 0.42
	assert.Equal(t, 0.42, r.Rank("", s), "existing confidence returned unchanged")
}

func TestLinearRankerContextFeatures(t *testing.T) {
	r := NewLinearRanker()
	r.AddFeature(1.0, HintFeature{})
	r.AddFeature(0.3, NewFocusedStoryFeature())

	features := r.ContextFeatures()
	require.Len(t, features, 1)
	assert.Equal(t, []string{TopicFocusedStory}, features[0].ContextSelector())
}

func TestRankingPolicyDefaultThreshold(t *testing.T) {
	urgency := NewLinearRanker()
	urgency.AddFeature(1.0, UrgencyFeature{})
	policy := NewRankingPolicy(urgency)

	quiet := newSuggestion(0.9)
	assert.False(t, policy.Accept(quiet), "non-urgent proposal never interrupts")

	urgent := newSuggestion(0.1)
	urgent.Prototype.Proposal.Display.Annoyance = proposal.AnnoyanceInterrupt
	assert.True(t, policy.Accept(urgent), "interrupt request meets the 1.0 threshold")
}

func TestRankingPolicyCustomThreshold(t *testing.T) {
	r := NewLinearRanker()
	r.AddFeature(1.0, HintFeature{})
	policy := NewRankingPolicyWithThreshold(r, 0.5)

	assert.True(t, policy.Accept(newSuggestion(0.6)))
	assert.True(t, policy.Accept(newSuggestion(0.5)), "threshold is inclusive")
	assert.False(t, policy.Accept(newSuggestion(0.4)))
}
