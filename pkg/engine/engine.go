package engine

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/suggestd/pkg/config"
	"github.com/bastiangx/suggestd/pkg/proposal"
	"github.com/bastiangx/suggestd/pkg/ranking"
	"github.com/bastiangx/suggestd/pkg/suggest"
)

// InteractionType is the kind of user interaction reported through
// NotifyInteraction.
type InteractionType int

const (
	InteractionSelected InteractionType = iota
	InteractionDismissed
	InteractionSnoozed
	InteractionExpired
)

func (t InteractionType) String() string {
	switch t {
	case InteractionSelected:
		return "selected"
	case InteractionDismissed:
		return "dismissed"
	case InteractionSnoozed:
		return "snoozed"
	case InteractionExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Engine is the aggregate entry point. All state behind it follows the
// single-writer model: every public method, timer callback and handler
// completion serializes on one mutex, so the ranked sequences are never
// touched concurrently.
type Engine struct {
	mu sync.Mutex

	next     *NextProcessor
	query    *QueryProcessor
	executor ActionExecutor

	navListeners []NavigationListener
	contextSubs  map[string][]ranking.ContextAwareFeature
}

// New builds an engine from config, wiring the Next and query rankers
// with their configured weights and the interruption gate with its
// threshold. executor, media and ctxWriter may be nil; the matching
// behavior is then skipped with a log line.
func New(cfg *config.Config, ids proposal.IDGenerator, executor ActionExecutor, media MediaPlayback, ctxWriter ContextWriter) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	nextRanker := ranking.NewLinearRanker()
	nextRanker.AddFeature(cfg.Ranking.HintWeight, ranking.HintFeature{})
	nextRanker.AddFeature(cfg.Ranking.AnnoyanceWeight, ranking.AnnoyanceFeature{})
	nextRanker.AddFeature(cfg.Ranking.AffinityWeight, ranking.NewFocusedStoryFeature())
	nextRanker.AddFeature(cfg.Ranking.AffinityWeight, ranking.NewFocusedModuleFeature())

	queryRanker := ranking.NewLinearRanker()
	queryRanker.AddFeature(cfg.Ranking.QueryMatchWeight, ranking.QueryMatchFeature{})
	queryRanker.AddFeature(cfg.Ranking.HintWeight, ranking.HintFeature{})
	queryRanker.AddFeature(cfg.Ranking.AnnoyanceWeight, ranking.AnnoyanceFeature{})

	urgency := ranking.NewLinearRanker()
	urgency.AddFeature(1.0, ranking.UrgencyFeature{})
	gate := NewInterruptionGate(ranking.NewRankingPolicyWithThreshold(urgency, cfg.Interruption.Threshold))

	e := &Engine{
		next:        NewNextProcessor(ids, nextRanker, gate),
		executor:    executor,
		contextSubs: make(map[string][]ranking.ContextAwareFeature),
	}
	e.query = NewQueryProcessor(&e.mu, ids, queryRanker,
		time.Duration(cfg.Engine.QueryTimeoutMs)*time.Millisecond, media, ctxWriter)

	for _, f := range nextRanker.ContextFeatures() {
		e.subscribeContext(f)
	}
	for _, f := range queryRanker.ContextFeatures() {
		e.subscribeContext(f)
	}
	return e
}

func (e *Engine) subscribeContext(f ranking.ContextAwareFeature) {
	for _, topic := range f.ContextSelector() {
		e.contextSubs[topic] = append(e.contextSubs[topic], f)
	}
}

// Propose accepts (or replaces) a proposal from a source and re-ranks the
// Next scope. One external Propose is one mutation batch.
func (e *Engine) Propose(sourceID string, p proposal.Proposal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next.AddProposal(sourceID, p)
	e.next.UpdateRanking()
}

// Withdraw removes a proposal by key. Unknown keys are a no-op returning
// false.
func (e *Engine) Withdraw(sourceID, proposalID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.next.RemoveProposal(sourceID, proposalID)
}

// SubscribeToNext registers a Next listener with its window size and
// delivers the initial snapshot. The returned window is resized through
// SetNextResultCount.
func (e *Engine) SubscribeToNext(listener NextListener, maxResults int) *suggest.Window {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.next.RegisterListener(listener, maxResults)
}

// SetNextResultCount resizes a subscribed Next window, emitting the
// grow/shrink deltas.
func (e *Engine) SetNextResultCount(w *suggest.Window, count int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	w.SetResultCount(count)
}

// SubscribeToInterruptions registers an interruption listener.
func (e *Engine) SubscribeToInterruptions(listener InterruptionListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next.gate.RegisterListener(listener)
}

// RegisterNavigationListener registers a navigation observer.
func (e *Engine) RegisterNavigationListener(listener NavigationListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.navListeners = append(e.navListeners, listener)
}

// RegisterQueryHandler registers a query handler under its stable ID.
func (e *Engine) RegisterQueryHandler(id string, h QueryHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.query.RegisterHandler(id, h)
}

// UnregisterQueryHandler removes a query handler.
func (e *Engine) UnregisterQueryHandler(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.query.UnregisterHandler(id)
}

// Query starts a query cycle, cancelling any cycle still in flight.
func (e *Engine) Query(input string, maxResults int, listener QueryListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.query.ExecuteQuery(input, maxResults, listener)
}

// CancelQuery tears down the live query cycle, if any, without notifying
// its listener. Safe to call repeatedly.
func (e *Engine) CancelQuery() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.query.CleanupActive()
}

// SetStoryLiveness installs the dead-story filter on the Next scope.
func (e *Engine) SetStoryLiveness(alive func(storyID string) bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next.SetStoryLiveness(alive)
}

// UpdateContext forwards a context value to every feature subscribed to
// the topic, then re-ranks the Next scope.
func (e *Engine) UpdateContext(topic, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	subs := e.contextSubs[topic]
	if len(subs) == 0 {
		log.Debugf("Context update for %q has no subscribed features", topic)
		return
	}
	for _, f := range subs {
		f.UpdateContext(topic, value)
	}
	e.next.UpdateRanking()
}

// Search returns visible Next suggestions whose headline matches the
// query by word prefix, in rank order.
func (e *Engine) Search(query string, limit int) []*suggest.RankedSuggestion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.next.Search(query, limit)
}

// NotifyInteraction is the single entry point for user interactions,
// routed to whichever scope currently owns the suggestion ID. Unknown IDs
// log a warning and do nothing.
func (e *Engine) NotifyInteraction(suggestionID string, kind InteractionType) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.next.GetBySuggestionID(suggestionID)
	fromNext := s != nil
	if s == nil {
		s = e.query.GetBySuggestionID(suggestionID)
	}
	if s == nil {
		log.Warnf("Interaction %s for unknown suggestion %q", kind, suggestionID)
		return
	}
	log.Debugf("Suggestion %s %s", suggestionID, kind)

	switch kind {
	case InteractionSelected:
		e.executeLocked(s)
		e.removeLocked(s, fromNext)
	case InteractionDismissed, InteractionExpired:
		e.removeLocked(s, fromNext)
	case InteractionSnoozed:
		if fromNext {
			e.next.Snooze(s)
			e.next.UpdateRanking()
		} else {
			// Query cycles are short-lived; snoozing there just
			// drops the entry.
			e.removeLocked(s, false)
		}
	default:
		log.Warnf("Unknown interaction kind %d for suggestion %q", kind, suggestionID)
	}
}

// executeLocked fans out navigation intents and hands the action list to
// the executor.
func (e *Engine) executeLocked(s *suggest.RankedSuggestion) {
	proto := s.Prototype
	for _, a := range proto.Proposal.Actions {
		if a.Type == proposal.ActionCreateStory || a.Type == proposal.ActionFocusStory {
			for _, l := range e.navListeners {
				l.OnNavigation(a)
			}
		}
	}
	if e.executor == nil {
		log.Warnf("No action executor configured, dropping %d actions for %s",
			len(proto.Proposal.Actions), proto.SuggestionID)
		return
	}
	story := proto.PreloadedStoryID
	if story == "" {
		story = proto.Proposal.StoryAffinity
	}
	status, storyID := e.executor.Execute(proto.Proposal.Actions, story)
	if status != ExecutionOK {
		log.Warnf("Executing actions for %s failed with status %d", proto.SuggestionID, status)
		return
	}
	if storyID != "" {
		log.Debugf("Actions for %s landed in story %s", proto.SuggestionID, storyID)
	}
}

func (e *Engine) removeLocked(s *suggest.RankedSuggestion, fromNext bool) {
	proto := s.Prototype
	if fromNext {
		e.next.RemoveProposal(proto.SourceID, proto.Proposal.ID)
		return
	}
	e.query.RemoveSuggestion(s)
}
