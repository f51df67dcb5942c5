/*
Package server implements msgpack IPC for the suggestion engine.

The server provides a minimal request/response interface over stdin/stdout
using msgpack serialization, plus fire-and-forget push events for Next and
interruption subscriptions.

# IPC

Clients send structured messages via stdin and receive responses through
stdout. Each request carries an ID field, an op, and the fields that op
needs.

Propose a suggestion:

	{"id": "req_001", "op": "propose", "src": "email", "p": {"pid": "p1", "h": "Reply to Alice", "conf": 0.8}}

Run a query cycle (blocks until the cycle completes or times out):

	{"id": "req_002", "op": "query", "q": "reply", "l": 10}

The server responds with suggestions ranked by confidence:

	{"id": "req_002", "s": [{"sid": "...", "h": "Reply to Alice", "conf": 0.74}], "c": 1, "t": 12}

Search the Next scope by headline word prefix:

	{"id": "req_003", "op": "search", "q": "rep", "l": 5}

Report a user interaction:

	{"id": "req_004", "op": "interact", "sid": "...", "k": "selected"}

Subscribing with {"op": "subscribe_next", "l": 5} turns on push events:

	{"ev": "add", "scope": "next", "s": {...}}
	{"ev": "remove", "scope": "next", "sid": "..."}
	{"ev": "remove_all", "scope": "next"}

Resize the subscribed window with {"op": "set_count", "l": 3}; the
resulting grow/shrink deltas arrive as push events.

Push events are fire-and-forget; their order per subscription matches
mutation order.
*/
package server

// WireAction is one action carried by a wire proposal.
type WireAction struct {
	Type     int    `msgpack:"t"`
	StoryID  string `msgpack:"story,omitempty"`
	ModuleID string `msgpack:"mod,omitempty"`
	LinkPath string `msgpack:"link,omitempty"`
	Payload  string `msgpack:"pl,omitempty"`
}

// WireProposal is the wire form of a proposal.
type WireProposal struct {
	ID             string       `msgpack:"pid"`
	Headline       string       `msgpack:"h"`
	Subheadline    string       `msgpack:"sh,omitempty"`
	Details        string       `msgpack:"d,omitempty"`
	Annoyance      int          `msgpack:"ann,omitempty"`
	Confidence     float64      `msgpack:"conf,omitempty"`
	Actions        []WireAction `msgpack:"a,omitempty"`
	StoryAffinity  string       `msgpack:"story,omitempty"`
	ModuleAffinity string       `msgpack:"mod,omitempty"`
	Rich           bool         `msgpack:"rich,omitempty"`
}

// WireSuggestion is one ranked suggestion in a response or push event.
type WireSuggestion struct {
	SuggestionID string  `msgpack:"sid"`
	SourceID     string  `msgpack:"src"`
	Headline     string  `msgpack:"h"`
	Subheadline  string  `msgpack:"sh,omitempty"`
	Confidence   float64 `msgpack:"conf"`
}

// Request is an incoming message from the client.
type Request struct {
	ID string `msgpack:"id"`
	// Op is one of: "propose", "remove", "query", "search",
	// "interact", "subscribe_next", "set_count", "health".
	Op           string        `msgpack:"op"`
	SourceID     string        `msgpack:"src,omitempty"`
	Proposal     *WireProposal `msgpack:"p,omitempty"`
	ProposalID   string        `msgpack:"pid,omitempty"`
	Query        string        `msgpack:"q,omitempty"`
	Limit        int           `msgpack:"l,omitempty"`
	SuggestionID string        `msgpack:"sid,omitempty"`
	Interaction  string        `msgpack:"k,omitempty"`
}

// Response answers one request.
type Response struct {
	ID          string           `msgpack:"id"`
	Status      string           `msgpack:"status"`
	Error       string           `msgpack:"e,omitempty"`
	Code        int              `msgpack:"code,omitempty"`
	Suggestions []WireSuggestion `msgpack:"s,omitempty"`
	Count       int              `msgpack:"c,omitempty"`
	Removed     bool             `msgpack:"removed,omitempty"`
	TimeTaken   int64            `msgpack:"t,omitempty"`
}

// Event is a server-initiated push message.
type Event struct {
	Event        string          `msgpack:"ev"`
	Scope        string          `msgpack:"scope,omitempty"`
	Suggestion   *WireSuggestion `msgpack:"s,omitempty"`
	SuggestionID string          `msgpack:"sid,omitempty"`
}
