// Package storage provides persistence adapters for the rating engine.
// The memory implementation stands in for the execution substrate's
// state trie: records survive resets, slots are never removed, and
// reads always observe the last fully applied write.
package storage

import (
	"sync"

	"github.com/ahrav/go-cipherscore/internal/domain"
	"github.com/ahrav/go-cipherscore/internal/ports"
)

var (
	_ ports.AggregateStore = (*MemoryStore)(nil)
	_ ports.PolicyStore    = (*MemoryStore)(nil)
)

// MemoryStore holds the global policy triple, the policy holder, and
// the per-target aggregate mapping in process memory. Point reads and
// writes are individually consistent; operation-level atomicity is the
// substrate's job and is provided by the Serialized middleware when no
// real substrate is present.
type MemoryStore struct {
	mu         sync.RWMutex
	aggregates map[domain.TargetID]domain.Aggregate
	policy     domain.Policy
	owner      domain.Principal
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{aggregates: make(map[domain.TargetID]domain.Aggregate)}
}

// Get implements ports.AggregateStore.
func (s *MemoryStore) Get(target domain.TargetID) (domain.Aggregate, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg, ok := s.aggregates[target]
	return agg, ok, nil
}

// Put implements ports.AggregateStore.
func (s *MemoryStore) Put(target domain.TargetID, agg domain.Aggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggregates[target] = agg
	return nil
}

// Policy implements ports.PolicyStore.
func (s *MemoryStore) Policy() (domain.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy, nil
}

// SetPolicy implements ports.PolicyStore.
func (s *MemoryStore) SetPolicy(p domain.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = p
	return nil
}

// Owner implements ports.PolicyStore.
func (s *MemoryStore) Owner() (domain.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner, nil
}

// SetOwner implements ports.PolicyStore.
func (s *MemoryStore) SetOwner(p domain.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = p
	return nil
}
