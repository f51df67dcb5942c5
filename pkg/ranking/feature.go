// Package ranking provides the pluggable scoring layer: numeric ranking
// features combined by a normalized linear ranker, plus the threshold
// decision policy that gates interruptions.
package ranking

import (
	"math"

	"github.com/bastiangx/suggestd/pkg/suggest"
)

// Feature scores one suggestion for a query. Raw outputs are sanitized to
// [0,1] at this boundary (clampScore), so a buggy feature cannot poison
// the sort with NaN or out-of-range values.
type Feature interface {
	ComputeFeature(query string, s *suggest.RankedSuggestion) float64
}

// ContextAwareFeature additionally declares which context topics it needs.
// UpdateContext is called whenever one of those topics changes; features
// without a selector are context-free.
type ContextAwareFeature interface {
	Feature

	// ContextSelector lists the topics this feature subscribes to.
	ContextSelector() []string

	// UpdateContext delivers a new value for one subscribed topic.
	UpdateContext(topic, value string)
}

// clampScore sanitizes a raw feature output into [0,1].
func clampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
