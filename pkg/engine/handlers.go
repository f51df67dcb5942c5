package engine

import (
	"github.com/bastiangx/suggestd/pkg/proposal"
)

// NextSearchHandler is the built-in query handler: it answers query
// cycles from the Next scope by headline prefix match, so the engine
// returns ranked results even before any external handler registers.
// Matched proposals are copied into the cycle's own registry and
// re-ranked there with the query ranker.
type NextSearchHandler struct {
	eng   *Engine
	limit int
}

// NewNextSearchHandler creates a handler over the engine's Next scope.
// limit caps how many matches one cycle receives; zero means unbounded.
func NewNextSearchHandler(eng *Engine, limit int) *NextSearchHandler {
	return &NextSearchHandler{eng: eng, limit: limit}
}

// OnQuery implements QueryHandler. Runs outside the engine mutex like
// any other handler; Search takes the lock itself.
func (h *NextSearchHandler) OnQuery(input string) (proposal.QueryResponse, error) {
	matched := h.eng.Search(input, h.limit)
	props := make([]proposal.Proposal, 0, len(matched))
	for _, s := range matched {
		props = append(props, s.Prototype.Proposal)
	}
	return proposal.QueryResponse{Proposals: props}, nil
}
