package ranking

import (
	"strings"

	"github.com/bastiangx/suggestd/pkg/proposal"
	"github.com/bastiangx/suggestd/pkg/suggest"
)

// TopicFocusedStory is the context topic carrying the currently focused
// story ID.
const TopicFocusedStory = "focused_story"

// TopicFocusedModule is the context topic carrying the currently focused
// module ID.
const TopicFocusedModule = "focused_module"

// HintFeature scores by the proposal source's own confidence hint.
type HintFeature struct{}

func (HintFeature) ComputeFeature(query string, s *suggest.RankedSuggestion) float64 {
	return s.Prototype.Proposal.ConfidenceHint
}

// AnnoyanceFeature penalizes intrusive proposals: quiet suggestions score
// full, peeking ones half, interrupting ones zero.
type AnnoyanceFeature struct{}

func (AnnoyanceFeature) ComputeFeature(query string, s *suggest.RankedSuggestion) float64 {
	switch s.Prototype.Proposal.Display.Annoyance {
	case proposal.AnnoyancePeek:
		return 0.5
	case proposal.AnnoyanceInterrupt:
		return 0
	default:
		return 1
	}
}

// UrgencyFeature computes 1.0 only for proposals that ask to interrupt.
// Paired with the default 1.0 decision threshold it makes interruption an
// explicit request, not a side effect of high confidence.
type UrgencyFeature struct{}

func (UrgencyFeature) ComputeFeature(query string, s *suggest.RankedSuggestion) float64 {
	if s.Prototype.Proposal.Display.Annoyance == proposal.AnnoyanceInterrupt {
		return 1
	}
	return 0
}

// QueryMatchFeature scores by word-prefix overlap between the query text
// and the suggestion's headline: the fraction of query tokens that prefix
// some headline word. With no query every suggestion scores full so the
// feature is neutral in Next ranking.
type QueryMatchFeature struct{}

func (QueryMatchFeature) ComputeFeature(query string, s *suggest.RankedSuggestion) float64 {
	tokens := suggest.Tokenize(query)
	if len(tokens) == 0 {
		return 1
	}
	words := suggest.Tokenize(s.Prototype.Proposal.Display.Headline)
	matched := 0
	for _, token := range tokens {
		for _, word := range words {
			if strings.HasPrefix(word, token) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(tokens))
}

// FocusedStoryFeature favors suggestions affine to the focused story. It
// subscribes to the focused-story context topic; suggestions without a
// story affinity are unaffected.
type FocusedStoryFeature struct {
	focused string
}

func NewFocusedStoryFeature() *FocusedStoryFeature {
	return &FocusedStoryFeature{}
}

func (f *FocusedStoryFeature) ContextSelector() []string {
	return []string{TopicFocusedStory}
}

func (f *FocusedStoryFeature) UpdateContext(topic, value string) {
	if topic == TopicFocusedStory {
		f.focused = value
	}
}

func (f *FocusedStoryFeature) ComputeFeature(query string, s *suggest.RankedSuggestion) float64 {
	affinity := s.Prototype.Proposal.StoryAffinity
	if affinity == "" {
		return 1
	}
	if affinity == f.focused {
		return 1
	}
	return 0
}

// FocusedModuleFeature is the module counterpart of FocusedStoryFeature.
type FocusedModuleFeature struct {
	focused string
}

func NewFocusedModuleFeature() *FocusedModuleFeature {
	return &FocusedModuleFeature{}
}

func (f *FocusedModuleFeature) ContextSelector() []string {
	return []string{TopicFocusedModule}
}

func (f *FocusedModuleFeature) UpdateContext(topic, value string) {
	if topic == TopicFocusedModule {
		f.focused = value
	}
}

func (f *FocusedModuleFeature) ComputeFeature(query string, s *suggest.RankedSuggestion) float64 {
	affinity := s.Prototype.Proposal.ModuleAffinity
	if affinity == "" {
		return 1
	}
	if affinity == f.focused {
		return 1
	}
	return 0
}
