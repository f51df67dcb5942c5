package proposal

import (
	"time"

	"github.com/charmbracelet/log"
)

// Prototype is the engine's durable record for one accepted proposal.
// Exactly one Store owns it; ranked wrappers hold non-owning handles that
// the owning processor drops together with the store entry.
type Prototype struct {
	SuggestionID     string
	SourceID         string
	CreatedAt        time.Time
	Proposal         Proposal
	PreloadedStoryID string
}

type protoKey struct {
	sourceID   string
	proposalID string
}

// Store owns the (source_id, proposal.id) -> Prototype map for one scope:
// the long-lived Next scope or a single query cycle.
type Store struct {
	ids    IDGenerator
	protos map[protoKey]*Prototype
	now    func() time.Time
}

// NewStore creates an empty prototype store backed by the given generator.
func NewStore(ids IDGenerator) *Store {
	return &Store{
		ids:    ids,
		protos: make(map[protoKey]*Prototype),
		now:    time.Now,
	}
}

// Create accepts a proposal from sourceID and returns its new prototype.
// A proposal already present under the same key is replaced; the old
// prototype's suggestion ID is retired, never recycled.
func (s *Store) Create(sourceID string, p Proposal) *Prototype {
	key := protoKey{sourceID: sourceID, proposalID: p.ID}
	if old, ok := s.protos[key]; ok {
		log.Debugf("Replacing proposal %q from source %q (was %s)", p.ID, sourceID, old.SuggestionID)
	}
	proto := &Prototype{
		SuggestionID: s.ids.NewID(),
		SourceID:     sourceID,
		CreatedAt:    s.now(),
		Proposal:     p,
	}
	s.protos[key] = proto
	return proto
}

// Get returns the prototype for a proposal key, or nil.
func (s *Store) Get(sourceID, proposalID string) *Prototype {
	return s.protos[protoKey{sourceID: sourceID, proposalID: proposalID}]
}

// Remove drops the prototype for a proposal key. Removing an unknown key
// is a no-op returning false.
func (s *Store) Remove(sourceID, proposalID string) (*Prototype, bool) {
	key := protoKey{sourceID: sourceID, proposalID: proposalID}
	proto, ok := s.protos[key]
	if !ok {
		return nil, false
	}
	delete(s.protos, key)
	return proto, true
}

// RemoveAll clears the store. Used when a query cycle ends.
func (s *Store) RemoveAll() {
	clear(s.protos)
}

// Len reports how many prototypes the store owns.
func (s *Store) Len() int {
	return len(s.protos)
}
