package ranking

import (
	"github.com/bastiangx/suggestd/pkg/suggest"
)

// DecisionPolicy turns a ranked score into an accept/reject decision.
// Used to gate interruption eligibility.
type DecisionPolicy interface {
	Accept(s *suggest.RankedSuggestion) bool
}

// RankingPolicy accepts a suggestion when its no-query rank meets the
// threshold. The default threshold is 1.0: only a feature computing to
// exactly 1.0 interrupts unless a caller deliberately lowers it.
type RankingPolicy struct {
	ranker    suggest.Ranker
	threshold float64
}

// NewRankingPolicy wraps a ranker with the default 1.0 threshold.
func NewRankingPolicy(ranker suggest.Ranker) *RankingPolicy {
	return &RankingPolicy{ranker: ranker, threshold: 1.0}
}

// NewRankingPolicyWithThreshold wraps a ranker with an explicit threshold.
func NewRankingPolicyWithThreshold(ranker suggest.Ranker, threshold float64) *RankingPolicy {
	return &RankingPolicy{ranker: ranker, threshold: threshold}
}

func (p *RankingPolicy) Accept(s *suggest.RankedSuggestion) bool {
	return p.ranker.Rank("", s) >= p.threshold
}
