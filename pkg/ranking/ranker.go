package ranking

import (
	"github.com/charmbracelet/log"

	"github.com/bastiangx/suggestd/pkg/suggest"
)

// LinearRanker combines weighted features into one confidence score:
//
//	max(0, Σ w_i * f_i) / Σ(w_i where w_i > 0)
//
// Only positive weights enter the denominator, so negative weights pull a
// score down without widening the range; with clamped features the result
// stays in [0,1]. At least one positive-weight feature is required.
type LinearRanker struct {
	features []weightedFeature
	norm     float64
	warned   bool
}

type weightedFeature struct {
	weight  float64
	feature Feature
}

// NewLinearRanker creates a ranker with no features. Callers add at least
// one positive-weight feature before ranking.
func NewLinearRanker() *LinearRanker {
	return &LinearRanker{}
}

// AddFeature registers a feature with its weight.
func (r *LinearRanker) AddFeature(weight float64, f Feature) {
	r.features = append(r.features, weightedFeature{weight: weight, feature: f})
	if weight > 0 {
		r.norm += weight
	}
}

// Rank implements suggest.Ranker. With no positive weights configured the
// score is undefined; that is logged once and the existing confidence is
// returned unchanged.
func (r *LinearRanker) Rank(query string, s *suggest.RankedSuggestion) float64 {
	if r.norm <= 0 {
		if !r.warned {
			log.Warn("LinearRanker has no positive-weight features, skipping")
			r.warned = true
		}
		return s.Confidence
	}
	sum := 0.0
	for _, wf := range r.features {
		sum += wf.weight * clampScore(wf.feature.ComputeFeature(query, s))
	}
	if sum < 0 {
		sum = 0
	}
	return clampScore(sum / r.norm)
}

// ContextFeatures returns the registered features that declare a context
// selector, for the engine to wire into the context feed.
func (r *LinearRanker) ContextFeatures() []ContextAwareFeature {
	var out []ContextAwareFeature
	for _, wf := range r.features {
		if cf, ok := wf.feature.(ContextAwareFeature); ok {
			out = append(out, cf)
		}
	}
	return out
}
