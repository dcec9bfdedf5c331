// Package engine implements the confidential rating engine: encrypted
// score aggregation, division-free tier evaluation, and the selective
// disclosure protocol over an injected encrypted-value runtime.
//
// The engine is written as if single-threaded. The execution substrate
// (or the Serialized middleware standing in for it) guarantees that
// each operation runs to completion as an atomic, serialized unit, so
// no locking happens here. Every failure is a precondition check made
// before any state is touched; a rejected operation leaves all stores
// untouched.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-cipherscore/internal/domain"
	"github.com/ahrav/go-cipherscore/internal/ports"
)

var _ ports.RatingService = (*Engine)(nil)

// Deps carries the collaborators an Engine requires. All fields except
// Events are mandatory; a nil Events sink disables auditing, which is
// only acceptable in tests.
type Deps struct {
	// Runtime is the encrypted-value runtime the engine computes through.
	Runtime ports.EncryptedRuntime

	// Aggregates persists per-target aggregate records.
	Aggregates ports.AggregateStore

	// Policies persists the threshold triple and policy holder.
	Policies ports.PolicyStore

	// Events receives audit events for every externally observable
	// effect.
	Events ports.EventSink

	// Owner is the initial policy holder, applied only when the policy
	// store has no owner yet.
	Owner domain.Principal
}

// Engine is the canonical RatingService implementation. It owns no
// ciphertext itself; it composes opaque handles through the runtime and
// keeps the anonymity invariant by construction, since no operation
// ever receives a rater identity alongside a score.
type Engine struct {
	runtime    ports.EncryptedRuntime
	aggregates ports.AggregateStore
	policies   ports.PolicyStore
	events     ports.EventSink
	evaluator  *TierEvaluator
}

// New constructs an Engine and initializes system state: the policy
// holder is set if absent, and the three thresholds are initialized to
// fresh encryptions of zero so no handle is ever read uninitialized.
func New(deps Deps) (*Engine, error) {
	if deps.Runtime == nil {
		return nil, fmt.Errorf("engine: %w: runtime is required", domain.ErrInvalidInput)
	}
	if deps.Aggregates == nil {
		return nil, fmt.Errorf("engine: %w: aggregate store is required", domain.ErrInvalidInput)
	}
	if deps.Policies == nil {
		return nil, fmt.Errorf("engine: %w: policy store is required", domain.ErrInvalidInput)
	}

	e := &Engine{
		runtime:    deps.Runtime,
		aggregates: deps.Aggregates,
		policies:   deps.Policies,
		events:     deps.Events,
		evaluator:  NewTierEvaluator(deps.Runtime),
	}

	owner, err := e.policies.Owner()
	if err != nil {
		return nil, fmt.Errorf("engine: read owner: %w", err)
	}
	if owner.IsZero() {
		if deps.Owner.IsZero() {
			return nil, fmt.Errorf("engine: %w: owner is required", domain.ErrInvalidInput)
		}
		if err := e.policies.SetOwner(deps.Owner); err != nil {
			return nil, fmt.Errorf("engine: set owner: %w", err)
		}
	}

	if err := e.initPolicy(); err != nil {
		return nil, err
	}
	return e, nil
}

// initPolicy backfills the threshold triple with encrypted zeros when
// the store holds no policy yet.
func (e *Engine) initPolicy() error {
	pol, err := e.policies.Policy()
	if err != nil {
		return fmt.Errorf("engine: read policy: %w", err)
	}
	if !pol.BronzeMin.Handle.IsZero() {
		return nil
	}

	var thresholds [3]domain.Wide
	for i := range thresholds {
		w, err := e.freshZero()
		if err != nil {
			return fmt.Errorf("engine: init policy: %w", err)
		}
		thresholds[i] = w
	}
	pol = domain.Policy{BronzeMin: thresholds[0], SilverMin: thresholds[1], GoldMin: thresholds[2]}
	if err := e.policies.SetPolicy(pol); err != nil {
		return fmt.Errorf("engine: init policy: %w", err)
	}
	return nil
}

// freshZero mints an encrypted zero already authorized for service use.
func (e *Engine) freshZero() (domain.Wide, error) {
	w, err := e.runtime.ZeroWide()
	if err != nil {
		return domain.Wide{}, err
	}
	if err := e.runtime.AllowService(w.Handle); err != nil {
		return domain.Wide{}, err
	}
	return w, nil
}

// Submit folds one encrypted score into the target's aggregate,
// creating the aggregate lazily on first submission. The caller's
// identity never reaches this method. Fails with ErrZeroTarget on a
// zero target and ErrCountOverflow when the counter is at capacity;
// neither failure mutates anything.
func (e *Engine) Submit(ctx context.Context, target domain.TargetID, score domain.EncryptedInput) error {
	const op = "submit"
	if target.IsZero() {
		return domain.NewOpError(op, target, domain.ErrZeroTarget)
	}

	agg, found, err := e.aggregates.Get(target)
	if err != nil {
		return domain.NewOpError(op, target, err)
	}
	if !found {
		sum, err := e.freshZero()
		if err != nil {
			return domain.NewOpError(op, target, err)
		}
		agg = domain.Aggregate{Sum: sum}
	}
	if agg.Count == domain.MaxSubmissions {
		return domain.NewOpError(op, target, domain.ErrCountOverflow)
	}

	scoreCt, err := e.runtime.VerifyWide(score)
	if err != nil {
		return domain.NewOpError(op, target, err)
	}
	if err := e.runtime.AllowService(scoreCt.Handle); err != nil {
		return domain.NewOpError(op, target, err)
	}

	newSum, err := e.runtime.Add(agg.Sum, scoreCt)
	if err != nil {
		return domain.NewOpError(op, target, err)
	}
	// The sum handle changes on every update; without re-authorization
	// the next submission could not operate on it.
	if err := e.runtime.AllowService(newSum.Handle); err != nil {
		return domain.NewOpError(op, target, err)
	}

	agg.Exists = true
	agg.Sum = newSum
	agg.Count++
	if err := e.aggregates.Put(target, agg); err != nil {
		return domain.NewOpError(op, target, err)
	}

	return e.emit(domain.Scored{
		EventMeta: e.meta(),
		Target:    target,
		Count:     agg.Count,
		Sum:       agg.Sum.Handle,
	})
}

// GetAggregateHandles returns the target's sum handle and plaintext
// count. A target that was never scored yields a zero handle and zero
// count rather than an error; existence is public information, values
// are not.
func (e *Engine) GetAggregateHandles(ctx context.Context, target domain.TargetID) (ports.AggregateHandles, error) {
	const op = "get_aggregate_handles"
	if target.IsZero() {
		return ports.AggregateHandles{}, domain.NewOpError(op, target, domain.ErrZeroTarget)
	}
	agg, found, err := e.aggregates.Get(target)
	if err != nil {
		return ports.AggregateHandles{}, domain.NewOpError(op, target, err)
	}
	if !found || !agg.Exists {
		return ports.AggregateHandles{}, nil
	}
	return ports.AggregateHandles{Sum: agg.Sum.Handle, Count: agg.Count}, nil
}

// PublishSum marks the target's running sum globally decryptable and
// emits the audit event. The average is never computed here; consumers
// derive it off-system as decrypt(sum)/count. Fails with ErrNoAggregate
// when the target was never scored.
func (e *Engine) PublishSum(ctx context.Context, target domain.TargetID) (domain.Handle, error) {
	const op = "publish_sum"
	if target.IsZero() {
		return domain.Handle{}, domain.NewOpError(op, target, domain.ErrZeroTarget)
	}
	agg, found, err := e.aggregates.Get(target)
	if err != nil {
		return domain.Handle{}, domain.NewOpError(op, target, err)
	}
	if !found || !agg.Exists {
		return domain.Handle{}, domain.NewOpError(op, target, domain.ErrNoAggregate)
	}
	if err := e.runtime.MakePublic(agg.Sum.Handle); err != nil {
		return domain.Handle{}, domain.NewOpError(op, target, err)
	}
	if err := e.emit(domain.SumPublished{
		EventMeta: e.meta(),
		Target:    target,
		Count:     agg.Count,
		Sum:       agg.Sum.Handle,
	}); err != nil {
		return domain.Handle{}, err
	}
	return agg.Sum.Handle, nil
}

// SetPolicy atomically replaces the three thresholds. Only the policy
// holder may call it; all three inputs are verified before any of them
// is stored, so a bad proof on one leaves the previous triple intact.
func (e *Engine) SetPolicy(ctx context.Context, caller domain.Principal, bronze, silver, gold domain.EncryptedInput) error {
	const op = "set_policy"
	if err := e.requireOwner(op, caller); err != nil {
		return err
	}

	inputs := [3]domain.EncryptedInput{bronze, silver, gold}
	var thresholds [3]domain.Wide
	for i, in := range inputs {
		w, err := e.runtime.VerifyWide(in)
		if err != nil {
			return domain.NewOpError(op, "", err)
		}
		if err := e.runtime.AllowService(w.Handle); err != nil {
			return domain.NewOpError(op, "", err)
		}
		thresholds[i] = w
	}

	pol := domain.Policy{BronzeMin: thresholds[0], SilverMin: thresholds[1], GoldMin: thresholds[2]}
	if err := e.policies.SetPolicy(pol); err != nil {
		return domain.NewOpError(op, "", err)
	}
	return e.emit(domain.PolicyUpdated{EventMeta: e.meta(), Thresholds: pol.Handles()})
}

// MakePolicyPublic marks all three thresholds globally decryptable for
// audit. Policy holder only. There is no inverse operation; disclosure
// only ever widens.
func (e *Engine) MakePolicyPublic(ctx context.Context, caller domain.Principal) error {
	const op = "make_policy_public"
	if err := e.requireOwner(op, caller); err != nil {
		return err
	}
	pol, err := e.policies.Policy()
	if err != nil {
		return domain.NewOpError(op, "", err)
	}
	for _, h := range pol.Handles() {
		if err := e.runtime.MakePublic(h); err != nil {
			return domain.NewOpError(op, "", err)
		}
	}
	return e.emit(domain.PolicyPublished{EventMeta: e.meta(), Thresholds: pol.Handles()})
}

// GetPolicyHandles returns the three threshold handles to any caller.
func (e *Engine) GetPolicyHandles(ctx context.Context) (ports.PolicyHandles, error) {
	pol, err := e.policies.Policy()
	if err != nil {
		return ports.PolicyHandles{}, domain.NewOpError("get_policy_handles", "", err)
	}
	return ports.PolicyHandles{
		Bronze: pol.BronzeMin.Handle,
		Silver: pol.SilverMin.Handle,
		Gold:   pol.GoldMin.Handle,
	}, nil
}

// VerdictPrivate evaluates the target's tier and authorizes decryption
// to the requesting caller alone.
func (e *Engine) VerdictPrivate(ctx context.Context, caller domain.Principal, target domain.TargetID) (domain.Handle, error) {
	const op = "verdict_private"
	verdict, err := e.verdict(op, caller, target)
	if err != nil {
		return domain.Handle{}, err
	}
	if err := e.runtime.Allow(verdict.Handle, caller); err != nil {
		return domain.Handle{}, domain.NewOpError(op, target, err)
	}
	if err := e.emit(domain.VerdictPrivate{
		EventMeta: e.meta(),
		Caller:    caller,
		Target:    target,
		Verdict:   verdict.Handle,
	}); err != nil {
		return domain.Handle{}, err
	}
	return verdict.Handle, nil
}

// VerdictPublic evaluates the target's tier and marks the result
// globally decryptable.
func (e *Engine) VerdictPublic(ctx context.Context, caller domain.Principal, target domain.TargetID) (domain.Handle, error) {
	const op = "verdict_public"
	verdict, err := e.verdict(op, caller, target)
	if err != nil {
		return domain.Handle{}, err
	}
	if err := e.runtime.MakePublic(verdict.Handle); err != nil {
		return domain.Handle{}, domain.NewOpError(op, target, err)
	}
	if err := e.emit(domain.VerdictPublic{
		EventMeta: e.meta(),
		Caller:    caller,
		Target:    target,
		Verdict:   verdict.Handle,
	}); err != nil {
		return domain.Handle{}, err
	}
	return verdict.Handle, nil
}

// verdict runs the shared preconditions and tier evaluation behind both
// disclosure variants.
func (e *Engine) verdict(op string, caller domain.Principal, target domain.TargetID) (domain.Narrow, error) {
	if caller.IsZero() {
		return domain.Narrow{}, domain.NewOpError(op, target, domain.ErrInvalidInput)
	}
	if target.IsZero() {
		return domain.Narrow{}, domain.NewOpError(op, target, domain.ErrZeroTarget)
	}
	agg, found, err := e.aggregates.Get(target)
	if err != nil {
		return domain.Narrow{}, domain.NewOpError(op, target, err)
	}
	if !found {
		agg = domain.Aggregate{}
	}
	pol, err := e.policies.Policy()
	if err != nil {
		return domain.Narrow{}, domain.NewOpError(op, target, err)
	}
	verdict, err := e.evaluator.Evaluate(agg, pol)
	if err != nil {
		return domain.Narrow{}, domain.NewOpError(op, target, err)
	}
	return verdict, nil
}

// Reset re-initializes the target's aggregate: existence is cleared,
// the counter returns to zero, and the sum is reassigned to a fresh
// authorized encryption of zero. The old ciphertext is abandoned, not
// erased, and the storage slot survives. Policy holder only.
func (e *Engine) Reset(ctx context.Context, caller domain.Principal, target domain.TargetID) error {
	const op = "reset"
	if err := e.requireOwner(op, caller); err != nil {
		return err
	}
	if target.IsZero() {
		return domain.NewOpError(op, target, domain.ErrZeroTarget)
	}
	sum, err := e.freshZero()
	if err != nil {
		return domain.NewOpError(op, target, err)
	}
	if err := e.aggregates.Put(target, domain.Aggregate{Sum: sum}); err != nil {
		return domain.NewOpError(op, target, err)
	}
	return nil
}

// TransferOwnership hands the policy-holder role to next. Fails with
// ErrInvalidInput on a zero successor so the role cannot be burned.
func (e *Engine) TransferOwnership(ctx context.Context, caller domain.Principal, next domain.Principal) error {
	const op = "transfer_ownership"
	if err := e.requireOwner(op, caller); err != nil {
		return err
	}
	if next.IsZero() {
		return domain.NewOpError(op, "", domain.ErrInvalidInput)
	}
	if err := e.policies.SetOwner(next); err != nil {
		return domain.NewOpError(op, "", err)
	}
	return e.emit(domain.OwnershipTransferred{EventMeta: e.meta(), Previous: caller, Next: next})
}

// requireOwner rejects callers other than the current policy holder.
func (e *Engine) requireOwner(op string, caller domain.Principal) error {
	owner, err := e.policies.Owner()
	if err != nil {
		return domain.NewOpError(op, "", err)
	}
	if caller.IsZero() || caller != owner {
		return domain.NewOpError(op, "", domain.ErrNotAuthorized)
	}
	return nil
}

// meta stamps a fresh event identity.
func (e *Engine) meta() domain.EventMeta {
	return domain.EventMeta{ID: uuid.NewString(), At: time.Now().UTC()}
}

// emit forwards an event to the sink, if one is configured.
func (e *Engine) emit(ev domain.Event) error {
	if e.events == nil {
		return nil
	}
	if err := e.events.Emit(ev); err != nil {
		return fmt.Errorf("emit %s: %w", ev.Kind(), err)
	}
	return nil
}
