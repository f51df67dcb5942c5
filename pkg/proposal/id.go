package proposal

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator mints suggestion IDs. It is a constructor dependency rather
// than package state so tests can run with deterministic IDs.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the production generator. IDs are fresh per prototype
// and never reused.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequenceGenerator mints "s0", "s1", ... for deterministic tests.
type SequenceGenerator struct {
	next int
}

func (g *SequenceGenerator) NewID() string {
	id := fmt.Sprintf("s%d", g.next)
	g.next++
	return id
}
