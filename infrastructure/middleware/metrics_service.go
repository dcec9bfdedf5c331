package middleware

import (
	"context"
	"time"

	"github.com/ahrav/go-cipherscore/internal/domain"
	"github.com/ahrav/go-cipherscore/internal/ports"
)

var _ ports.RatingService = (*Instrumented)(nil)

// Instrumented records operation counts and latency for every service
// call through a MetricsCollector. Failed operations are counted under
// status "error"; metrics never include target identities or handles,
// keeping cardinality flat and the audit surface clean.
type Instrumented struct {
	next    ports.RatingService
	metrics ports.MetricsCollector
}

// NewInstrumented wraps a service with metrics collection.
func NewInstrumented(next ports.RatingService, metrics ports.MetricsCollector) *Instrumented {
	return &Instrumented{next: next, metrics: metrics}
}

// observe times fn and records the outcome under the operation name.
func (i *Instrumented) observe(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	i.metrics.RecordLatency(operation, time.Since(start), nil)

	status := "success"
	if err != nil {
		status = "error"
	}
	i.metrics.RecordCounter("operations", 1, map[string]string{
		"operation": operation,
		"status":    status,
	})
	return err
}

// Submit implements ports.RatingService.
func (i *Instrumented) Submit(ctx context.Context, target domain.TargetID, score domain.EncryptedInput) error {
	return i.observe("submit", func() error {
		return i.next.Submit(ctx, target, score)
	})
}

// GetAggregateHandles implements ports.RatingService.
func (i *Instrumented) GetAggregateHandles(ctx context.Context, target domain.TargetID) (ports.AggregateHandles, error) {
	var out ports.AggregateHandles
	err := i.observe("get_aggregate_handles", func() error {
		var err error
		out, err = i.next.GetAggregateHandles(ctx, target)
		return err
	})
	return out, err
}

// PublishSum implements ports.RatingService.
func (i *Instrumented) PublishSum(ctx context.Context, target domain.TargetID) (domain.Handle, error) {
	var out domain.Handle
	err := i.observe("publish_sum", func() error {
		var err error
		out, err = i.next.PublishSum(ctx, target)
		return err
	})
	return out, err
}

// SetPolicy implements ports.RatingService.
func (i *Instrumented) SetPolicy(ctx context.Context, caller domain.Principal, bronze, silver, gold domain.EncryptedInput) error {
	return i.observe("set_policy", func() error {
		return i.next.SetPolicy(ctx, caller, bronze, silver, gold)
	})
}

// MakePolicyPublic implements ports.RatingService.
func (i *Instrumented) MakePolicyPublic(ctx context.Context, caller domain.Principal) error {
	return i.observe("make_policy_public", func() error {
		return i.next.MakePolicyPublic(ctx, caller)
	})
}

// GetPolicyHandles implements ports.RatingService.
func (i *Instrumented) GetPolicyHandles(ctx context.Context) (ports.PolicyHandles, error) {
	var out ports.PolicyHandles
	err := i.observe("get_policy_handles", func() error {
		var err error
		out, err = i.next.GetPolicyHandles(ctx)
		return err
	})
	return out, err
}

// VerdictPrivate implements ports.RatingService.
func (i *Instrumented) VerdictPrivate(ctx context.Context, caller domain.Principal, target domain.TargetID) (domain.Handle, error) {
	var out domain.Handle
	err := i.observe("verdict_private", func() error {
		var err error
		out, err = i.next.VerdictPrivate(ctx, caller, target)
		return err
	})
	return out, err
}

// VerdictPublic implements ports.RatingService.
func (i *Instrumented) VerdictPublic(ctx context.Context, caller domain.Principal, target domain.TargetID) (domain.Handle, error) {
	var out domain.Handle
	err := i.observe("verdict_public", func() error {
		var err error
		out, err = i.next.VerdictPublic(ctx, caller, target)
		return err
	})
	return out, err
}

// Reset implements ports.RatingService.
func (i *Instrumented) Reset(ctx context.Context, caller domain.Principal, target domain.TargetID) error {
	return i.observe("reset", func() error {
		return i.next.Reset(ctx, caller, target)
	})
}

// TransferOwnership implements ports.RatingService.
func (i *Instrumented) TransferOwnership(ctx context.Context, caller domain.Principal, next domain.Principal) error {
	return i.observe("transfer_ownership", func() error {
		return i.next.TransferOwnership(ctx, caller, next)
	})
}
