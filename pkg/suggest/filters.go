package suggest

// InterruptingFilter hides suggestions currently pending interruption
// delivery so they never double-appear in Next windows.
type InterruptingFilter struct{}

func (InterruptingFilter) Hide(s *RankedSuggestion) bool {
	return s.Interrupting
}

// SnoozedFilter hides suggestions the user snoozed. Snoozing keeps the
// entry ranked so a later refresh can surface it again.
type SnoozedFilter struct {
	snoozed map[string]bool
}

func NewSnoozedFilter() *SnoozedFilter {
	return &SnoozedFilter{snoozed: make(map[string]bool)}
}

// Snooze marks a suggestion ID hidden on the next Refresh.
func (f *SnoozedFilter) Snooze(suggestionID string) {
	f.snoozed[suggestionID] = true
}

// Wake clears the snoozed mark, if any.
func (f *SnoozedFilter) Wake(suggestionID string) {
	delete(f.snoozed, suggestionID)
}

func (f *SnoozedFilter) Hide(s *RankedSuggestion) bool {
	return f.snoozed[s.SuggestionID()]
}

// DeadStoryFilter removes suggestions whose story affinity points at a
// story that no longer exists. Liveness is a callback so the registry
// stays decoupled from story state.
type DeadStoryFilter struct {
	// Alive reports whether a story ID still refers to a live story.
	Alive func(storyID string) bool
}

func (f DeadStoryFilter) Filter(suggestions []*RankedSuggestion) []*RankedSuggestion {
	if f.Alive == nil {
		return suggestions
	}
	kept := suggestions[:0]
	for _, s := range suggestions {
		story := s.Prototype.Proposal.StoryAffinity
		if story == "" || f.Alive(story) {
			kept = append(kept, s)
		}
	}
	return kept
}
