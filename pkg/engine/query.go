package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/suggestd/pkg/proposal"
	"github.com/bastiangx/suggestd/pkg/suggest"
)

// DefaultQueryTimeout bounds a query cycle; handlers still outstanding
// when it fires are logged and their late responses discarded.
const DefaultQueryTimeout = 9 * time.Second

// QueryProcessor runs one short-lived registry per query cycle. Handlers
// are dispatched concurrently; every completion re-enters under the engine
// mutex as its own event, re-ranks the cycle registry and streams deltas
// to the single query listener. A generation counter fences late or
// cancelled responses.
type QueryProcessor struct {
	mu        *sync.Mutex
	ids       proposal.IDGenerator
	ranker    suggest.Ranker
	handlers  map[string]QueryHandler
	media     MediaPlayback
	ctxWriter ContextWriter
	timeout   time.Duration

	gen    uint64
	active *queryCycle
}

type queryCycle struct {
	gen        uint64
	input      string
	protos     *proposal.Store
	registry   *suggest.Registry
	window     *suggest.Window
	listener   QueryListener
	awaiting   map[string]bool
	timer      *time.Timer
	mediaTaken bool
	done       bool
}

// NewQueryProcessor creates a processor sharing the engine mutex so timer
// and handler callbacks serialize with every other engine event.
func NewQueryProcessor(mu *sync.Mutex, ids proposal.IDGenerator, ranker suggest.Ranker, timeout time.Duration, media MediaPlayback, ctxWriter ContextWriter) *QueryProcessor {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &QueryProcessor{
		mu:        mu,
		ids:       ids,
		ranker:    ranker,
		handlers:  make(map[string]QueryHandler),
		media:     media,
		ctxWriter: ctxWriter,
		timeout:   timeout,
	}
}

// RegisterHandler adds a query handler under its stable ID. Re-registering
// an ID replaces the handler.
func (p *QueryProcessor) RegisterHandler(id string, h QueryHandler) {
	p.handlers[id] = h
}

// UnregisterHandler removes a handler. In-flight requests to it are still
// awaited (or timed out) as usual.
func (p *QueryProcessor) UnregisterHandler(id string) {
	delete(p.handlers, id)
}

// ExecuteQuery starts a new query cycle: any prior cycle is cleaned up
// without re-notifying its listener, the query text is published to the
// context feed, and every registered handler is dispatched concurrently.
// With no handlers registered the cycle completes immediately.
func (p *QueryProcessor) ExecuteQuery(input string, maxResults int, listener QueryListener) {
	p.CleanupActive()
	p.gen++

	registry := suggest.NewRegistry()
	registry.SetRanker(p.ranker)

	c := &queryCycle{
		gen:      p.gen,
		input:    input,
		protos:   proposal.NewStore(p.ids),
		registry: registry,
		listener: listener,
		awaiting: make(map[string]bool, len(p.handlers)),
	}
	c.window = suggest.NewWindow(registry, listener)
	c.window.SetResultCount(maxResults)
	p.active = c

	if p.ctxWriter != nil {
		p.ctxWriter.Publish(TopicQueryText, input)
	}
	listener.OnProcessingChange(true)

	if len(p.handlers) == 0 {
		log.Debugf("No query handlers registered for query %q", input)
		p.completeLocked(c)
		return
	}

	for id := range p.handlers {
		c.awaiting[id] = true
	}
	gen := c.gen
	c.timer = time.AfterFunc(p.timeout, func() {
		p.onTimeout(gen)
	})
	for id, h := range p.handlers {
		go p.dispatch(gen, id, h, input)
	}
}

// dispatch runs outside the engine mutex; the response re-enters through
// onResponseLocked as an independent event.
func (p *QueryProcessor) dispatch(gen uint64, handlerID string, h QueryHandler, input string) {
	resp, err := h.OnQuery(input)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onResponseLocked(gen, handlerID, resp, err)
}

func (p *QueryProcessor) onResponseLocked(gen uint64, handlerID string, resp proposal.QueryResponse, err error) {
	c := p.active
	if c == nil || c.gen != gen || c.done {
		log.Debugf("Discarding stale query response from %q", handlerID)
		return
	}
	if !c.awaiting[handlerID] {
		log.Warnf("Duplicate query response from %q ignored", handlerID)
		return
	}
	delete(c.awaiting, handlerID)

	if err != nil {
		// An erroring handler is the same as one that never answered.
		log.Warnf("Query handler %q failed: %v", handlerID, err)
	} else {
		p.applyResponseLocked(c, handlerID, resp)
	}

	if len(c.awaiting) == 0 {
		p.completeLocked(c)
	}
}

// applyResponseLocked folds one handler's response into the cycle registry
// and streams the resulting deltas, so partial results reach the listener
// before the cycle completes.
func (p *QueryProcessor) applyResponseLocked(c *queryCycle, handlerID string, resp proposal.QueryResponse) {
	for _, prop := range resp.Proposals {
		proto := c.protos.Create(handlerID, prop)
		c.registry.Add(&suggest.RankedSuggestion{Prototype: proto})
	}
	if resp.Media != nil && !c.mediaTaken {
		// First media response wins; later ones are ignored.
		c.mediaTaken = true
		if p.media != nil {
			p.media.Play(*resp.Media)
		} else {
			log.Debugf("No media playback configured, dropping media response from %q", handlerID)
		}
	}
	if resp.NaturalLanguageText != "" {
		log.Debugf("Handler %q answered %q with: %s", handlerID, c.input, resp.NaturalLanguageText)
	}
	c.registry.Refresh(c.input)
	c.window.Reconcile()
}

func (p *QueryProcessor) onTimeout(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := p.active
	if c == nil || c.gen != gen || c.done {
		return
	}
	still := make([]string, 0, len(c.awaiting))
	for id := range c.awaiting {
		still = append(still, id)
	}
	sort.Strings(still)
	log.Warnf("Query %q timed out, still awaiting handlers: %v", c.input, still)
	p.completeLocked(c)
}

// completeLocked finishes a cycle exactly once: the timeout is cancelled
// and the listener gets its complete signal. The registry stays live for
// interaction routing until the next cycle or cleanup.
func (p *QueryProcessor) completeLocked(c *queryCycle) {
	c.done = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.listener.OnQueryComplete()
	c.listener.OnProcessingChange(false)
}

// CleanupActive tears down the current cycle without re-notifying its
// listener. Idempotent: a second call is a no-op.
func (p *QueryProcessor) CleanupActive() {
	c := p.active
	if c == nil {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.done = true
	c.registry.RemoveAll()
	c.protos.RemoveAll()
	p.active = nil
}

// GetBySuggestionID resolves a suggestion ID in the live cycle, or nil.
func (p *QueryProcessor) GetBySuggestionID(id string) *suggest.RankedSuggestion {
	if p.active == nil {
		return nil
	}
	return p.active.registry.GetBySuggestionID(id)
}

// RemoveSuggestion drops one suggestion from the live cycle, emitting the
// window delta. Used when an interaction consumes a query suggestion.
func (p *QueryProcessor) RemoveSuggestion(s *suggest.RankedSuggestion) bool {
	c := p.active
	if c == nil {
		return false
	}
	proto := s.Prototype
	if _, ok := c.registry.RemoveByKey(proto.SourceID, proto.Proposal.ID); !ok {
		return false
	}
	c.protos.Remove(proto.SourceID, proto.Proposal.ID)
	c.window.OnRemoveSuggestion(s)
	return true
}
