// Package middleware provides cross-cutting concerns for the rating
// engine: substrate-style operation serialization, metrics, and
// distributed tracing. Each wrapper decorates the RatingService
// interface, so they compose in any order.
package middleware

import (
	"context"
	"sync"

	"github.com/ahrav/go-cipherscore/internal/domain"
	"github.com/ahrav/go-cipherscore/internal/ports"
)

var _ ports.RatingService = (*Serialized)(nil)

// Serialized executes each operation as an atomic, serialized unit,
// standing in for the execution substrate's transaction guarantees.
// The engine itself is written as if single-threaded and holds no
// locks; this wrapper is what makes that safe when callers are
// concurrent.
type Serialized struct {
	mu   sync.Mutex
	next ports.RatingService
}

// NewSerialized wraps a service with operation-level serialization.
func NewSerialized(next ports.RatingService) *Serialized {
	return &Serialized{next: next}
}

// Submit implements ports.RatingService.
func (s *Serialized) Submit(ctx context.Context, target domain.TargetID, score domain.EncryptedInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.Submit(ctx, target, score)
}

// GetAggregateHandles implements ports.RatingService.
func (s *Serialized) GetAggregateHandles(ctx context.Context, target domain.TargetID) (ports.AggregateHandles, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.GetAggregateHandles(ctx, target)
}

// PublishSum implements ports.RatingService.
func (s *Serialized) PublishSum(ctx context.Context, target domain.TargetID) (domain.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.PublishSum(ctx, target)
}

// SetPolicy implements ports.RatingService.
func (s *Serialized) SetPolicy(ctx context.Context, caller domain.Principal, bronze, silver, gold domain.EncryptedInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.SetPolicy(ctx, caller, bronze, silver, gold)
}

// MakePolicyPublic implements ports.RatingService.
func (s *Serialized) MakePolicyPublic(ctx context.Context, caller domain.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.MakePolicyPublic(ctx, caller)
}

// GetPolicyHandles implements ports.RatingService.
func (s *Serialized) GetPolicyHandles(ctx context.Context) (ports.PolicyHandles, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.GetPolicyHandles(ctx)
}

// VerdictPrivate implements ports.RatingService.
func (s *Serialized) VerdictPrivate(ctx context.Context, caller domain.Principal, target domain.TargetID) (domain.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.VerdictPrivate(ctx, caller, target)
}

// VerdictPublic implements ports.RatingService.
func (s *Serialized) VerdictPublic(ctx context.Context, caller domain.Principal, target domain.TargetID) (domain.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.VerdictPublic(ctx, caller, target)
}

// Reset implements ports.RatingService.
func (s *Serialized) Reset(ctx context.Context, caller domain.Principal, target domain.TargetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.Reset(ctx, caller, target)
}

// TransferOwnership implements ports.RatingService.
func (s *Serialized) TransferOwnership(ctx context.Context, caller domain.Principal, next domain.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.TransferOwnership(ctx, caller, next)
}
