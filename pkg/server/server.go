package server

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/suggestd/internal/logger"
	"github.com/bastiangx/suggestd/internal/utils"
	"github.com/bastiangx/suggestd/pkg/config"
	"github.com/bastiangx/suggestd/pkg/engine"
	"github.com/bastiangx/suggestd/pkg/proposal"
	"github.com/bastiangx/suggestd/pkg/suggest"
)

// Server handles the msgpack IPC for the suggestion engine over
// stdin/stdout. Requests are processed synchronously on the read loop;
// push events may arrive from engine callbacks on other goroutines, so
// all writes go through one mutex.
type Server struct {
	eng *engine.Engine
	cfg *config.Config
	lg  *log.Logger

	dec *msgpack.Decoder
	out io.Writer
	wmu sync.Mutex

	// nextWindow is the live Next subscription, if any.
	nextWindow *suggest.Window
}

// NewServer creates a server bound to stdin/stdout.
func NewServer(eng *engine.Engine, cfg *config.Config) *Server {
	return &Server{
		eng: eng,
		cfg: cfg,
		lg:  logger.New("ipc"),
		dec: msgpack.NewDecoder(os.Stdin),
		out: os.Stdout,
	}
}

// Start begins the request loop. Returns nil on clean EOF.
func (s *Server) Start() error {
	s.lg.Debug("Starting server")
	s.sendEvent(Event{Event: "ready"})

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if err == io.EOF {
				return nil
			}
			s.lg.Errorf("Decoding request: %v", err)
			return err
		}
		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req Request) {
	switch req.Op {
	case "propose":
		s.handlePropose(req)
	case "remove":
		s.handleRemove(req)
	case "query":
		s.handleQuery(req)
	case "search":
		s.handleSearch(req)
	case "interact":
		s.handleInteract(req)
	case "subscribe_next":
		s.handleSubscribeNext(req)
	case "set_count":
		s.handleSetCount(req)
	case "health":
		s.send(Response{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown op: %s", req.Op), 400)
	}
}

func (s *Server) handlePropose(req Request) {
	if req.SourceID == "" || req.Proposal == nil || req.Proposal.ID == "" {
		s.sendError(req.ID, "Missing 'src' or proposal payload", 400)
		return
	}
	s.eng.Propose(req.SourceID, fromWireProposal(*req.Proposal))
	s.send(Response{ID: req.ID, Status: "ok"})
}

func (s *Server) handleRemove(req Request) {
	if req.SourceID == "" || req.ProposalID == "" {
		s.sendError(req.ID, "Missing 'src' or 'pid' parameter", 400)
		return
	}
	removed := s.eng.Withdraw(req.SourceID, req.ProposalID)
	s.send(Response{ID: req.ID, Status: "ok", Removed: removed})
}

// handleQuery runs one query cycle and blocks until it completes; the
// engine's own timeout bounds the wait.
func (s *Server) handleQuery(req Request) {
	query, limit, ok := s.validateQuery(req)
	if !ok {
		return
	}

	start := time.Now()
	collector := newQueryCollector()
	s.eng.Query(query, limit, collector)
	<-collector.done
	elapsed := time.Since(start)

	results := collector.results()
	s.send(Response{
		ID:          req.ID,
		Status:      "ok",
		Suggestions: results,
		Count:       len(results),
		TimeTaken:   elapsed.Milliseconds(),
	})
}

func (s *Server) handleSearch(req Request) {
	query, limit, ok := s.validateQuery(req)
	if !ok {
		return
	}

	start := time.Now()
	matched := s.eng.Search(query, limit)
	elapsed := time.Since(start)

	wire := make([]WireSuggestion, 0, len(matched))
	for _, m := range matched {
		wire = append(wire, toWireSuggestion(m))
	}
	s.send(Response{
		ID:          req.ID,
		Status:      "ok",
		Suggestions: wire,
		Count:       len(wire),
		TimeTaken:   elapsed.Milliseconds(),
	})
}

func (s *Server) handleInteract(req Request) {
	if req.SuggestionID == "" {
		s.sendError(req.ID, "Missing 'sid' parameter", 400)
		return
	}
	kind, ok := parseInteraction(req.Interaction)
	if !ok {
		s.sendError(req.ID, fmt.Sprintf("Unknown interaction kind: %s", req.Interaction), 400)
		return
	}
	s.eng.NotifyInteraction(req.SuggestionID, kind)
	s.send(Response{ID: req.ID, Status: "ok"})
}

func (s *Server) handleSubscribeNext(req Request) {
	limit := req.Limit
	if limit < 1 {
		limit = s.cfg.Engine.DefaultQueryResults
	}
	if limit > s.cfg.Server.MaxLimit {
		limit = s.cfg.Server.MaxLimit
	}
	s.nextWindow = s.eng.SubscribeToNext(&pushListener{server: s, scope: "next"}, limit)
	s.send(Response{ID: req.ID, Status: "ok"})
}

// handleSetCount resizes the Next subscription window; the grow/shrink
// deltas arrive as push events.
func (s *Server) handleSetCount(req Request) {
	if s.nextWindow == nil {
		s.sendError(req.ID, "No 'subscribe_next' subscription to resize", 400)
		return
	}
	limit := req.Limit
	if limit < 0 {
		limit = 0
	}
	if limit > s.cfg.Server.MaxLimit {
		limit = s.cfg.Server.MaxLimit
	}
	s.eng.SetNextResultCount(s.nextWindow, limit)
	s.send(Response{ID: req.ID, Status: "ok"})
}

// validateQuery applies the shared query/search input checks and replies
// with the error itself when they fail.
func (s *Server) validateQuery(req Request) (string, int, bool) {
	query := req.Query
	if query == "" {
		s.sendError(req.ID, "Missing 'q' parameter", 400)
		return "", 0, false
	}
	if len(query) > s.cfg.Server.MaxQueryLen {
		s.sendError(req.ID, fmt.Sprintf("Query exceeds maximum length of %d", s.cfg.Server.MaxQueryLen), 400)
		return "", 0, false
	}
	if s.cfg.Server.EnableFilter && !utils.IsValidQuery(query) {
		s.sendError(req.ID, "Query rejected by input filter", 400)
		return "", 0, false
	}
	limit := req.Limit
	if limit < 1 {
		limit = s.cfg.Engine.DefaultQueryResults
	}
	if limit > s.cfg.Server.MaxLimit {
		limit = s.cfg.Server.MaxLimit
	}
	return query, limit, true
}

func (s *Server) send(resp Response) {
	s.write(resp)
}

func (s *Server) sendEvent(ev Event) {
	s.write(ev)
}

func (s *Server) sendError(id, message string, code int) {
	s.lg.Debugf("Request %s rejected: %s", id, message)
	s.write(Response{ID: id, Status: "error", Error: message, Code: code})
}

func (s *Server) write(v any) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	data, err := msgpack.Marshal(v)
	if err != nil {
		s.lg.Errorf("Marshaling response: %v", err)
		return
	}
	if _, err := s.out.Write(data); err != nil {
		s.lg.Errorf("Writing response: %v", err)
	}
}

func parseInteraction(kind string) (engine.InteractionType, bool) {
	switch kind {
	case "selected":
		return engine.InteractionSelected, true
	case "dismissed":
		return engine.InteractionDismissed, true
	case "snoozed":
		return engine.InteractionSnoozed, true
	case "expired":
		return engine.InteractionExpired, true
	}
	return 0, false
}

func fromWireProposal(w WireProposal) proposal.Proposal {
	actions := make([]proposal.Action, 0, len(w.Actions))
	for _, a := range w.Actions {
		actions = append(actions, proposal.Action{
			Type:     proposal.ActionType(a.Type),
			StoryID:  a.StoryID,
			ModuleID: a.ModuleID,
			LinkPath: a.LinkPath,
			Payload:  a.Payload,
		})
	}
	return proposal.Proposal{
		ID: w.ID,
		Display: proposal.Display{
			Headline:    w.Headline,
			Subheadline: w.Subheadline,
			Details:     w.Details,
			Annoyance:   proposal.AnnoyanceLevel(w.Annoyance),
		},
		ConfidenceHint: w.Confidence,
		Actions:        actions,
		StoryAffinity:  w.StoryAffinity,
		ModuleAffinity: w.ModuleAffinity,
		WantsRichEntry: w.Rich,
	}
}

func toWireSuggestion(s *suggest.RankedSuggestion) WireSuggestion {
	display := s.Prototype.Proposal.Display
	return WireSuggestion{
		SuggestionID: s.Prototype.SuggestionID,
		SourceID:     s.Prototype.SourceID,
		Headline:     display.Headline,
		Subheadline:  display.Subheadline,
		Confidence:   s.Confidence,
	}
}

// queryCollector is the server-side query listener: it accumulates the
// window's final contents and signals completion.
type queryCollector struct {
	mu    sync.Mutex
	order []string
	byID  map[string]WireSuggestion
	done  chan struct{}
}

func newQueryCollector() *queryCollector {
	return &queryCollector{
		byID: make(map[string]WireSuggestion),
		done: make(chan struct{}),
	}
}

func (c *queryCollector) OnAddSuggestion(s *suggest.RankedSuggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := s.Prototype.SuggestionID
	if _, ok := c.byID[id]; !ok {
		c.order = append(c.order, id)
	}
	c.byID[id] = toWireSuggestion(s)
}

func (c *queryCollector) OnRemoveSuggestion(suggestionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byID, suggestionID)
}

func (c *queryCollector) OnRemoveAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.byID = make(map[string]WireSuggestion)
}

func (c *queryCollector) OnProcessingChange(processing bool) {}

func (c *queryCollector) OnQueryComplete() {
	close(c.done)
}

// results returns the surviving suggestions by descending confidence.
// Delivery deltas carry membership, not in-window reorders, so the final
// response re-sorts; ties keep delivery order.
func (c *queryCollector) results() []WireSuggestion {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]WireSuggestion, 0, len(c.byID))
	for _, id := range c.order {
		if w, ok := c.byID[id]; ok {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// pushListener forwards window deltas as push events.
type pushListener struct {
	server *Server
	scope  string
}

func (l *pushListener) OnAddSuggestion(s *suggest.RankedSuggestion) {
	w := toWireSuggestion(s)
	l.server.sendEvent(Event{Event: "add", Scope: l.scope, Suggestion: &w})
}

func (l *pushListener) OnRemoveSuggestion(suggestionID string) {
	l.server.sendEvent(Event{Event: "remove", Scope: l.scope, SuggestionID: suggestionID})
}

func (l *pushListener) OnRemoveAll() {
	l.server.sendEvent(Event{Event: "remove_all", Scope: l.scope})
}
