package id

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator creates ids for records created locally before they reach the remote store.
type Generator interface {
	NewID() (string, error)
}

type UUIDGenerator struct {
	prefix string
}

// NewUUIDGenerator returns ids like "<prefix>-<uuid v7>"; an empty prefix yields a bare uuid.
func NewUUIDGenerator(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	if g.prefix == "" {
		return v.String(), nil
	}
	return g.prefix + "-" + v.String(), nil
}

// Sequence is a deterministic generator for tests and demo seeding.
type Sequence struct {
	prefix string

	mu   sync.Mutex
	next int
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) NewID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s%d", s.prefix, s.next), nil
}
