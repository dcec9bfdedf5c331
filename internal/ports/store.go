package ports

import (
	"github.com/ahrav/go-cipherscore/internal/domain"
)

// AggregateStore persists the per-target aggregate records. The backing
// substrate guarantees that each engine operation runs as an atomic,
// serialized unit, so implementations need only provide consistent
// point reads and writes; they never see a partially applied update.
type AggregateStore interface {
	// Get returns the aggregate for the target and whether a record
	// exists. A record whose Exists flag is false is still returned;
	// the flag distinguishes "reset" from "never created".
	Get(target domain.TargetID) (domain.Aggregate, bool, error)

	// Put stores the aggregate for the target, creating the record if
	// needed. Records are never removed, matching the substrate's
	// slot semantics.
	Put(target domain.TargetID, agg domain.Aggregate) error
}

// PolicyStore persists the single global policy triple and the identity
// of the policy holder.
type PolicyStore interface {
	// Policy returns the current threshold triple.
	Policy() (domain.Policy, error)

	// SetPolicy atomically replaces all three thresholds. Partial
	// updates are not supported anywhere in the design.
	SetPolicy(p domain.Policy) error

	// Owner returns the current policy holder.
	Owner() (domain.Principal, error)

	// SetOwner replaces the policy holder.
	SetOwner(p domain.Principal) error
}

// EventSink receives the engine's audit events. Implementations must
// not require plaintext access; events only ever carry handles and
// plaintext counts.
type EventSink interface {
	// Emit records a single event. A sink failure is surfaced to the
	// caller; the engine treats emission as part of the operation.
	Emit(e domain.Event) error
}
