package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-cipherscore/internal/domain"
	"github.com/ahrav/go-cipherscore/internal/ports"
)

var _ ports.RatingService = (*Traced)(nil)

// tracerName identifies this instrumentation scope.
const tracerName = "rating-engine"

// Traced adds OpenTelemetry spans around every service operation. Span
// attributes carry the operation and target; scores, sums, and tier
// values are encrypted and never appear in telemetry.
type Traced struct {
	next   ports.RatingService
	tracer trace.Tracer
}

// NewTraced wraps a service with distributed tracing.
func NewTraced(next ports.RatingService) *Traced {
	return &Traced{next: next, tracer: otel.Tracer(tracerName)}
}

// span starts a span for an operation against a target.
func (t *Traced) span(ctx context.Context, name string, target domain.TargetID) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("engine.operation", name)}
	if !target.IsZero() {
		attrs = append(attrs, attribute.String("engine.target", string(target)))
	}
	return t.tracer.Start(ctx, "RatingService."+name, trace.WithAttributes(attrs...))
}

// finish records the outcome on the span and ends it.
func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Submit implements ports.RatingService.
func (t *Traced) Submit(ctx context.Context, target domain.TargetID, score domain.EncryptedInput) error {
	ctx, span := t.span(ctx, "Submit", target)
	err := t.next.Submit(ctx, target, score)
	finish(span, err)
	return err
}

// GetAggregateHandles implements ports.RatingService.
func (t *Traced) GetAggregateHandles(ctx context.Context, target domain.TargetID) (ports.AggregateHandles, error) {
	ctx, span := t.span(ctx, "GetAggregateHandles", target)
	out, err := t.next.GetAggregateHandles(ctx, target)
	finish(span, err)
	return out, err
}

// PublishSum implements ports.RatingService.
func (t *Traced) PublishSum(ctx context.Context, target domain.TargetID) (domain.Handle, error) {
	ctx, span := t.span(ctx, "PublishSum", target)
	out, err := t.next.PublishSum(ctx, target)
	finish(span, err)
	return out, err
}

// SetPolicy implements ports.RatingService.
func (t *Traced) SetPolicy(ctx context.Context, caller domain.Principal, bronze, silver, gold domain.EncryptedInput) error {
	ctx, span := t.span(ctx, "SetPolicy", "")
	err := t.next.SetPolicy(ctx, caller, bronze, silver, gold)
	finish(span, err)
	return err
}

// MakePolicyPublic implements ports.RatingService.
func (t *Traced) MakePolicyPublic(ctx context.Context, caller domain.Principal) error {
	ctx, span := t.span(ctx, "MakePolicyPublic", "")
	err := t.next.MakePolicyPublic(ctx, caller)
	finish(span, err)
	return err
}

// GetPolicyHandles implements ports.RatingService.
func (t *Traced) GetPolicyHandles(ctx context.Context) (ports.PolicyHandles, error) {
	ctx, span := t.span(ctx, "GetPolicyHandles", "")
	out, err := t.next.GetPolicyHandles(ctx)
	finish(span, err)
	return out, err
}

// VerdictPrivate implements ports.RatingService.
func (t *Traced) VerdictPrivate(ctx context.Context, caller domain.Principal, target domain.TargetID) (domain.Handle, error) {
	ctx, span := t.span(ctx, "VerdictPrivate", target)
	out, err := t.next.VerdictPrivate(ctx, caller, target)
	finish(span, err)
	return out, err
}

// VerdictPublic implements ports.RatingService.
func (t *Traced) VerdictPublic(ctx context.Context, caller domain.Principal, target domain.TargetID) (domain.Handle, error) {
	ctx, span := t.span(ctx, "VerdictPublic", target)
	out, err := t.next.VerdictPublic(ctx, caller, target)
	finish(span, err)
	return out, err
}

// Reset implements ports.RatingService.
func (t *Traced) Reset(ctx context.Context, caller domain.Principal, target domain.TargetID) error {
	ctx, span := t.span(ctx, "Reset", target)
	err := t.next.Reset(ctx, caller, target)
	finish(span, err)
	return err
}

// TransferOwnership implements ports.RatingService.
func (t *Traced) TransferOwnership(ctx context.Context, caller domain.Principal, next domain.Principal) error {
	ctx, span := t.span(ctx, "TransferOwnership", "")
	err := t.next.TransferOwnership(ctx, caller, next)
	finish(span, err)
	return err
}
