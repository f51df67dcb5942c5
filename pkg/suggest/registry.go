package suggest

import (
	"sort"

	"github.com/charmbracelet/log"
)

// Ranker computes the confidence of one suggestion for a query. The ranking
// package provides the linear implementation; the registry only needs this
// much.
type Ranker interface {
	Rank(query string, s *RankedSuggestion) float64
}

// ActiveFilter runs over the whole sequence during Refresh and may remove
// entries outright (e.g. suggestions tied to now-dead stories).
type ActiveFilter interface {
	Filter(suggestions []*RankedSuggestion) []*RankedSuggestion
}

// PassiveFilter marks individual entries hidden without removing them, so a
// later context change can surface them again.
type PassiveFilter interface {
	Hide(s *RankedSuggestion) bool
}

// Registry owns the canonical ordered sequence of ranked suggestions for
// one scope. After Rank the sequence is a stable sort by descending
// confidence; between mutations and the next Rank, new entries sit appended
// at the end.
type Registry struct {
	ranker         Ranker
	activeFilters  []ActiveFilter
	passiveFilters []PassiveFilter
	suggestions    []*RankedSuggestion

	// rankWarned throttles the missing-ranker warning to once.
	rankWarned bool
}

// NewRegistry creates an empty registry with no ranker or filters.
func NewRegistry() *Registry {
	return &Registry{}
}

// SetRanker installs the ranker used by Rank and Refresh.
func (r *Registry) SetRanker(ranker Ranker) {
	r.ranker = ranker
	r.rankWarned = false
}

// AddActiveFilter appends a whole-list filter run on Refresh.
func (r *Registry) AddActiveFilter(f ActiveFilter) {
	r.activeFilters = append(r.activeFilters, f)
}

// AddPassiveFilter appends a per-item hide filter run on Refresh.
func (r *Registry) AddPassiveFilter(f PassiveFilter) {
	r.passiveFilters = append(r.passiveFilters, f)
}

// Add appends a suggestion at the end of the sequence. No sort happens
// here; the entry is positioned on the next Rank.
func (r *Registry) Add(s *RankedSuggestion) {
	r.suggestions = append(r.suggestions, s)
}

// RemoveByKey removes the suggestion matching a proposal key. Removing an
// unknown key is a no-op returning false.
func (r *Registry) RemoveByKey(sourceID, proposalID string) (*RankedSuggestion, bool) {
	for i, s := range r.suggestions {
		p := s.Prototype
		if p.SourceID == sourceID && p.Proposal.ID == proposalID {
			r.suggestions = append(r.suggestions[:i], r.suggestions[i+1:]...)
			return s, true
		}
	}
	return nil, false
}

// RemoveAll clears the sequence.
func (r *Registry) RemoveAll() {
	r.suggestions = nil
}

// GetBySuggestionID finds a suggestion by its stable ID, or nil. Linear
// scan: registries hold tens of entries, not millions.
func (r *Registry) GetBySuggestionID(id string) *RankedSuggestion {
	for _, s := range r.suggestions {
		if s.Prototype.SuggestionID == id {
			return s
		}
	}
	return nil
}

// GetByKey finds a suggestion by its proposal key, or nil.
func (r *Registry) GetByKey(sourceID, proposalID string) *RankedSuggestion {
	for _, s := range r.suggestions {
		p := s.Prototype
		if p.SourceID == sourceID && p.Proposal.ID == proposalID {
			return s
		}
	}
	return nil
}

// Refresh runs active filters, re-applies passive filters and re-ranks for
// the given query. This is the only place order and hidden flags change.
func (r *Registry) Refresh(query string) {
	for _, f := range r.activeFilters {
		r.suggestions = f.Filter(r.suggestions)
	}
	for _, s := range r.suggestions {
		hidden := false
		for _, f := range r.passiveFilters {
			if f.Hide(s) {
				hidden = true
				break
			}
		}
		s.Hidden = hidden
	}
	r.Rank(query)
}

// Rank recomputes every confidence and stable-sorts descending. Stability
// keeps equal-confidence entries in their previous relative order, which
// window delta computation depends on. With no ranker set this logs once
// and leaves scores untouched.
func (r *Registry) Rank(query string) {
	if r.ranker == nil {
		if !r.rankWarned {
			log.Warn("Rank called with no ranker set, skipping")
			r.rankWarned = true
		}
		return
	}
	for _, s := range r.suggestions {
		// Interrupting entries keep their pinned confidence.
		if s.Interrupting {
			continue
		}
		s.Confidence = r.ranker.Rank(query, s)
	}
	sort.SliceStable(r.suggestions, func(i, j int) bool {
		return r.suggestions[i].Confidence > r.suggestions[j].Confidence
	})
}

// All returns the full sequence in current order. Callers must not mutate
// it across registry mutations.
func (r *Registry) All() []*RankedSuggestion {
	return r.suggestions
}

// Visible returns the non-hidden, non-interrupting entries in rank order.
func (r *Registry) Visible() []*RankedSuggestion {
	visible := make([]*RankedSuggestion, 0, len(r.suggestions))
	for _, s := range r.suggestions {
		if s.Visible() {
			visible = append(visible, s)
		}
	}
	return visible
}

// Len reports the full sequence length, hidden entries included.
func (r *Registry) Len() int {
	return len(r.suggestions)
}
