package suggest

// WindowListener receives incremental window updates. Calls are
// fire-and-forget; per listener, delivery order matches mutation order.
type WindowListener interface {
	OnAddSuggestion(s *RankedSuggestion)
	OnRemoveSuggestion(suggestionID string)
	OnRemoveAll()
}

// Window is a bounded view of a registry for one listener. It tracks what
// the listener has been told (`shown`, a prefix of the registry's visible
// order) and emits the minimal add/remove deltas as the registry or the
// window size changes. A full resend only happens on Invalidate.
type Window struct {
	registry   *Registry
	listener   WindowListener
	maxResults int
	shown      []string
}

// NewWindow creates a window over registry. The window starts empty with
// max size 0 until the listener sets a result count.
func NewWindow(registry *Registry, listener WindowListener) *Window {
	return &Window{registry: registry, listener: listener}
}

// MaxResults returns the current window size.
func (w *Window) MaxResults() int {
	return w.maxResults
}

// Shown returns the suggestion IDs the listener currently believes
// visible, in rank order.
func (w *Window) Shown() []string {
	return w.shown
}

// SetResultCount resizes the window. Growing emits adds for the newly
// visible tail in rank order; shrinking emits removes from the tail
// inward; shrinking to zero emits a single RemoveAll. Re-setting the same
// count emits nothing.
func (w *Window) SetResultCount(count int) {
	if count < 0 {
		count = 0
	}
	w.maxResults = count

	visible := w.registry.Visible()
	target := count
	if len(visible) < target {
		target = len(visible)
	}

	switch {
	case target == 0:
		if len(w.shown) > 0 {
			w.listener.OnRemoveAll()
			w.shown = nil
		}
	case target > len(w.shown):
		for i := len(w.shown); i < target; i++ {
			w.listener.OnAddSuggestion(visible[i])
			w.shown = append(w.shown, visible[i].SuggestionID())
		}
	case target < len(w.shown):
		for i := len(w.shown) - 1; i >= target; i-- {
			w.listener.OnRemoveSuggestion(w.shown[i])
		}
		w.shown = w.shown[:target]
	}
}

// IncludeSuggestion reports whether s currently ranks inside the window.
// Membership is by identity position in the visible order; the registry's
// stable sort makes that position deterministic across equal-confidence
// ties, so boundary ties cannot flap.
func (w *Window) IncludeSuggestion(s *RankedSuggestion) bool {
	return w.visiblePosition(s) >= 0
}

// visiblePosition returns s's index in the visible order if it is within
// the window, else -1.
func (w *Window) visiblePosition(s *RankedSuggestion) int {
	if w.maxResults == 0 {
		return -1
	}
	for i, v := range w.registry.Visible() {
		if i >= w.maxResults {
			return -1
		}
		if v == s {
			return i
		}
	}
	return -1
}

// OnAddSuggestion delivers a single already-ranked insertion. If the new
// entry lands inside a full window, the entry pushed past the boundary is
// evicted with a remove so the window size stays constant.
func (w *Window) OnAddSuggestion(s *RankedSuggestion) {
	pos := w.visiblePosition(s)
	if pos < 0 {
		return
	}
	// The visible position can run past shown when earlier insertions
	// were never delivered to this window; append in that case.
	if pos > len(w.shown) {
		pos = len(w.shown)
	}
	w.listener.OnAddSuggestion(s)
	w.shown = append(w.shown, "")
	copy(w.shown[pos+1:], w.shown[pos:])
	w.shown[pos] = s.SuggestionID()

	if len(w.shown) > w.maxResults {
		evicted := w.shown[len(w.shown)-1]
		w.listener.OnRemoveSuggestion(evicted)
		w.shown = w.shown[:w.maxResults]
	}
}

// OnRemoveSuggestion delivers a single removal, s having already left the
// registry. If the window was full, the entry sliding into view is added.
func (w *Window) OnRemoveSuggestion(s *RankedSuggestion) {
	id := s.SuggestionID()
	idx := -1
	for i, shownID := range w.shown {
		if shownID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	wasFull := len(w.shown) == w.maxResults
	w.listener.OnRemoveSuggestion(id)
	w.shown = append(w.shown[:idx], w.shown[idx+1:]...)

	if wasFull {
		visible := w.registry.Visible()
		if len(visible) >= w.maxResults {
			next := visible[w.maxResults-1]
			w.listener.OnAddSuggestion(next)
			w.shown = append(w.shown, next.SuggestionID())
		}
	}
}

// Reconcile diffs the listener's view against the current window contents
// after a bulk re-rank, emitting adds for entries that came into view (in
// rank order) and removes for entries that left. This is the default path
// after Refresh; Invalidate is reserved for views that cannot apply
// deltas.
func (w *Window) Reconcile() {
	visible := w.registry.Visible()
	target := w.maxResults
	if len(visible) < target {
		target = len(visible)
	}

	inTarget := make(map[string]bool, target)
	for _, s := range visible[:target] {
		inTarget[s.SuggestionID()] = true
	}
	inShown := make(map[string]bool, len(w.shown))
	for _, id := range w.shown {
		inShown[id] = true
	}

	for _, s := range visible[:target] {
		if !inShown[s.SuggestionID()] {
			w.listener.OnAddSuggestion(s)
		}
	}
	for i := len(w.shown) - 1; i >= 0; i-- {
		if !inTarget[w.shown[i]] {
			w.listener.OnRemoveSuggestion(w.shown[i])
		}
	}

	w.shown = w.shown[:0]
	for _, s := range visible[:target] {
		w.shown = append(w.shown, s.SuggestionID())
	}
}

// Invalidate resends the whole window: one RemoveAll followed by adds in
// rank order. Not the path for single-item changes.
func (w *Window) Invalidate() {
	w.listener.OnRemoveAll()
	w.shown = nil

	visible := w.registry.Visible()
	target := w.maxResults
	if len(visible) < target {
		target = len(visible)
	}
	for i := 0; i < target; i++ {
		w.listener.OnAddSuggestion(visible[i])
		w.shown = append(w.shown, visible[i].SuggestionID())
	}
}
