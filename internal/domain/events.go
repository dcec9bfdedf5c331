package domain

import "time"

// EventKind names the auditable event types the engine emits.
type EventKind string

// Event kinds, one per externally observable effect.
const (
	EventScored               EventKind = "scored"
	EventPolicyUpdated        EventKind = "policy_updated"
	EventPolicyPublished      EventKind = "policy_published"
	EventVerdictPrivate       EventKind = "verdict_private"
	EventVerdictPublic        EventKind = "verdict_public"
	EventSumPublished         EventKind = "sum_published"
	EventOwnershipTransferred EventKind = "ownership_transferred"
)

// Event is an auditable record of an engine effect. Events carry opaque
// handles, counts, and principals, never plaintext scores or sums, so a
// full audit scan reveals nothing beyond what the disclosure policy
// already allows.
type Event interface {
	// Kind identifies the event type.
	Kind() EventKind

	// OccurredAt is the time the engine emitted the event.
	OccurredAt() time.Time
}

// EventMeta carries the fields common to every event.
type EventMeta struct {
	// ID uniquely identifies this event (a UUID).
	ID string `json:"id"`

	// At records when the event was emitted.
	At time.Time `json:"at"`
}

// OccurredAt implements Event.
func (m EventMeta) OccurredAt() time.Time { return m.At }

// Scored records a submission. It carries the new plaintext count and
// the new sum's handle; the rater is deliberately absent.
type Scored struct {
	EventMeta
	Target TargetID `json:"target"`
	Count  uint8    `json:"count"`
	Sum    Handle   `json:"sum"`
}

// Kind implements Event.
func (Scored) Kind() EventKind { return EventScored }

// PolicyUpdated records a wholesale threshold replacement. It carries
// the three new handles in bronze, silver, gold order.
type PolicyUpdated struct {
	EventMeta
	Thresholds [3]Handle `json:"thresholds"`
}

// Kind implements Event.
func (PolicyUpdated) Kind() EventKind { return EventPolicyUpdated }

// PolicyPublished records the irreversible widening of all three
// threshold handles to global decryptability.
type PolicyPublished struct {
	EventMeta
	Thresholds [3]Handle `json:"thresholds"`
}

// Kind implements Event.
func (PolicyPublished) Kind() EventKind { return EventPolicyPublished }

// VerdictPrivate records a tier evaluation disclosed to the requesting
// caller alone.
type VerdictPrivate struct {
	EventMeta
	Caller  Principal `json:"caller"`
	Target  TargetID  `json:"target"`
	Verdict Handle    `json:"verdict"`
}

// Kind implements Event.
func (VerdictPrivate) Kind() EventKind { return EventVerdictPrivate }

// VerdictPublic records a tier evaluation made globally decryptable.
type VerdictPublic struct {
	EventMeta
	Caller  Principal `json:"caller"`
	Target  TargetID  `json:"target"`
	Verdict Handle    `json:"verdict"`
}

// Kind implements Event.
func (VerdictPublic) Kind() EventKind { return EventVerdictPublic }

// SumPublished records that a target's running sum was made globally
// decryptable, enabling off-system average computation.
type SumPublished struct {
	EventMeta
	Target TargetID `json:"target"`
	Count  uint8    `json:"count"`
	Sum    Handle   `json:"sum"`
}

// Kind implements Event.
func (SumPublished) Kind() EventKind { return EventSumPublished }

// OwnershipTransferred records a change of policy holder.
type OwnershipTransferred struct {
	EventMeta
	Previous Principal `json:"previous"`
	Next     Principal `json:"next"`
}

// Kind implements Event.
func (OwnershipTransferred) Kind() EventKind { return EventOwnershipTransferred }
