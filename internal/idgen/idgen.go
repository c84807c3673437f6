// Package idgen provides injectable identifier generation.
package idgen

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique entity identifiers.
type Generator interface {
	NewID() string
}

// UUID generates random UUIDv4 strings.
type UUID struct{}

// NewID returns a new UUID string.
func (UUID) NewID() string {
	return uuid.New().String()
}

// Sequence generates deterministic ids ("<prefix>1", "<prefix>2", ...).
type Sequence struct {
	prefix string
	n      atomic.Int64
}

// NewSequence returns a Sequence with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID returns the next id in the sequence.
func (s *Sequence) NewID() string {
	return fmt.Sprintf("%s%d", s.prefix, s.n.Add(1))
}

// Reference derives an 8-character upper-case reference from a generated id,
// e.g. for gateway transaction ids.
func Reference(g Generator) string {
	id := strings.ToUpper(strings.ReplaceAll(g.NewID(), "-", ""))
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return id
}
