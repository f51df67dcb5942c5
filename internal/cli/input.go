// Package cli handles cmd line input for DBG and testing the engine in real-time
package cli

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/suggestd/internal/utils"
	"github.com/bastiangx/suggestd/pkg/engine"
	"github.com/bastiangx/suggestd/pkg/proposal"
	"github.com/bastiangx/suggestd/pkg/suggest"
)

// InputHandler processes user input from stdin against a live engine.
// Plain text runs a query cycle; colon commands mutate the Next scope:
//
//	:add <source> <headline...>   propose a debug suggestion
//	:remove <source> <pid>        withdraw a proposal
//	:search <text>                prefix-search the Next scope
type InputHandler struct {
	eng          *engine.Engine
	resultLimit  int
	maxQueryLen  int
	noFilter     bool
	requestCount int
	proposalSeq  int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(eng *engine.Engine, resultLimit, maxQueryLen int, noFilter bool) *InputHandler {
	return &InputHandler{
		eng:         eng,
		resultLimit: resultLimit,
		maxQueryLen: maxQueryLen,
		noFilter:    noFilter,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	log.Print("suggestd CLI [DBG]")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a query and press Enter, or :add/:remove/:search (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

func (h *InputHandler) handleInput(line string) {
	h.requestCount++

	if strings.HasPrefix(line, ":") {
		h.handleCommand(line)
		return
	}
	h.runQuery(line)
}

func (h *InputHandler) handleCommand(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":add":
		if len(fields) < 3 {
			log.Error("Usage: :add <source> <headline...>")
			return
		}
		h.proposalSeq++
		pid := fmt.Sprintf("dbg-%d", h.proposalSeq)
		h.eng.Propose(fields[1], proposal.Proposal{
			ID:             pid,
			Display:        proposal.Display{Headline: strings.Join(fields[2:], " ")},
			ConfidenceHint: 0.5,
		})
		log.Printf("Proposed %s from source %s", pid, fields[1])
	case ":remove":
		if len(fields) != 3 {
			log.Error("Usage: :remove <source> <pid>")
			return
		}
		if h.eng.Withdraw(fields[1], fields[2]) {
			log.Printf("Removed %s/%s", fields[1], fields[2])
		} else {
			log.Warnf("No proposal %s/%s", fields[1], fields[2])
		}
	case ":search":
		if len(fields) < 2 {
			log.Error("Usage: :search <text>")
			return
		}
		h.runSearch(strings.Join(fields[1:], " "))
	default:
		log.Errorf("Unknown command: %s", fields[0])
	}
}

func (h *InputHandler) runSearch(text string) {
	start := time.Now()
	matched := h.eng.Search(text, h.resultLimit)
	log.Debugf("Took [ %v ] for search '%s'", time.Since(start), text)

	if len(matched) == 0 {
		log.Warnf("No matches for: '%s'", text)
		return
	}
	log.Printf("Found %d matches for '%s':", len(matched), text)
	printSuggestions(matched)
}

func (h *InputHandler) runQuery(query string) {
	if len(query) > h.maxQueryLen {
		log.Errorf("Query too long: %s", query)
		return
	}
	// input filtering by default (unless --no-filter flag is used)
	if !h.noFilter {
		if !utils.IsValidQuery(query) {
			log.Warnf("Query filtered out: '%s'", query)
			return
		}
	} else {
		log.Debug("Input filtering disabled")
	}

	start := time.Now()
	listener := newPrintListener()
	h.eng.Query(query, h.resultLimit, listener)
	<-listener.done
	log.Debugf("Took [ %v ] for query '%s'", time.Since(start), query)

	results := listener.results()
	if len(results) == 0 {
		log.Warnf("No suggestions found for query: '%s'", query)
		return
	}
	log.Printf("Found %d suggestions for query '%s':", len(results), query)
	printSuggestions(results)
}

func printSuggestions(suggestions []*suggest.RankedSuggestion) {
	for i, s := range suggestions {
		clHeadline := fmt.Sprintf("\033[38;5;75m%s\033[0m", s.Prototype.Proposal.Display.Headline)
		log.Printf("%2d. %-40s (conf: %.3f, src: %s)", i+1, clHeadline, s.Confidence, s.Prototype.SourceID)
	}
}

// printListener collects one query cycle's deltas for display.
type printListener struct {
	added map[string]*suggest.RankedSuggestion
	order []string
	done  chan struct{}
}

func newPrintListener() *printListener {
	return &printListener{
		added: make(map[string]*suggest.RankedSuggestion),
		done:  make(chan struct{}),
	}
}

func (l *printListener) OnAddSuggestion(s *suggest.RankedSuggestion) {
	id := s.Prototype.SuggestionID
	if _, ok := l.added[id]; !ok {
		l.order = append(l.order, id)
	}
	l.added[id] = s
}

func (l *printListener) OnRemoveSuggestion(suggestionID string) {
	delete(l.added, suggestionID)
}

func (l *printListener) OnRemoveAll() {
	l.added = make(map[string]*suggest.RankedSuggestion)
	l.order = nil
}

func (l *printListener) OnProcessingChange(processing bool) {}

func (l *printListener) OnQueryComplete() {
	close(l.done)
}

func (l *printListener) results() []*suggest.RankedSuggestion {
	out := make([]*suggest.RankedSuggestion, 0, len(l.added))
	for _, id := range l.order {
		if s, ok := l.added[id]; ok {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
