package ports

import (
	"context"

	"github.com/ahrav/go-cipherscore/internal/domain"
)

// PolicyHandles is the caller-facing view of the policy: three opaque
// handles in bronze, silver, gold order. Values are only reachable
// through the runtime's decrypt path.
type PolicyHandles struct {
	Bronze domain.Handle
	Silver domain.Handle
	Gold   domain.Handle
}

// AggregateHandles is the caller-facing view of one target's aggregate.
// A target that was never scored yields a zero Sum handle and zero
// count.
type AggregateHandles struct {
	Sum   domain.Handle
	Count uint8
}

// RatingService is the complete caller-facing operation surface of the
// engine. Middleware (tracing, metrics, substrate serialization) wraps
// this interface; the engine is its canonical implementation.
//
// Submit deliberately takes no caller: rater identity must never reach
// the engine, and keeping it out of the signature enforces that at
// compile time. Operations that disclose results or require privilege
// take the authenticated caller explicitly.
type RatingService interface {
	// Submit folds one encrypted score into the target's aggregate.
	Submit(ctx context.Context, target domain.TargetID, score domain.EncryptedInput) error

	// GetAggregateHandles returns the target's sum handle and count, or
	// a zero handle and zero count when the target was never scored.
	GetAggregateHandles(ctx context.Context, target domain.TargetID) (AggregateHandles, error)

	// PublishSum makes the target's running sum globally decryptable so
	// the average can be computed off-system as decrypt(sum)/count.
	PublishSum(ctx context.Context, target domain.TargetID) (domain.Handle, error)

	// SetPolicy atomically replaces the three thresholds. Policy holder
	// only.
	SetPolicy(ctx context.Context, caller domain.Principal, bronze, silver, gold domain.EncryptedInput) error

	// MakePolicyPublic marks all three thresholds globally decryptable
	// for audit. Policy holder only; irreversible.
	MakePolicyPublic(ctx context.Context, caller domain.Principal) error

	// GetPolicyHandles returns the three threshold handles to any caller.
	GetPolicyHandles(ctx context.Context) (PolicyHandles, error)

	// VerdictPrivate evaluates the target's tier and authorizes the
	// caller, and only the caller, to decrypt the result.
	VerdictPrivate(ctx context.Context, caller domain.Principal, target domain.TargetID) (domain.Handle, error)

	// VerdictPublic evaluates the target's tier and marks the result
	// globally decryptable.
	VerdictPublic(ctx context.Context, caller domain.Principal, target domain.TargetID) (domain.Handle, error)

	// Reset re-initializes the target's aggregate to the empty state.
	// Policy holder only. The storage slot survives; encrypted state
	// can only be superseded, not erased.
	Reset(ctx context.Context, caller domain.Principal, target domain.TargetID) error

	// TransferOwnership hands the policy-holder role to next. Policy
	// holder only.
	TransferOwnership(ctx context.Context, caller domain.Principal, next domain.Principal) error
}
