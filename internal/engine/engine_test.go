package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-cipherscore/infrastructure/events"
	"github.com/ahrav/go-cipherscore/infrastructure/fhe"
	"github.com/ahrav/go-cipherscore/infrastructure/storage"
	"github.com/ahrav/go-cipherscore/internal/domain"
	"github.com/ahrav/go-cipherscore/internal/ports"
)

const testOwner = domain.Principal("policy-holder")

// testHarness bundles an engine with the collaborators tests inspect.
type testHarness struct {
	engine  *Engine
	runtime *fhe.ClearRuntime
	store   *storage.MemoryStore
	audit   *events.MemoryLog
	enc     ports.Encryptor
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	rt, err := fhe.NewClearRuntime([]byte("test-proof-key"))
	require.NoError(t, err)

	store := storage.NewMemoryStore()
	audit := events.NewMemoryLog()
	eng, err := New(Deps{
		Runtime:    rt,
		Aggregates: store,
		Policies:   store,
		Events:     audit,
		Owner:      testOwner,
	})
	require.NoError(t, err)

	return &testHarness{
		engine:  eng,
		runtime: rt,
		store:   store,
		audit:   audit,
		enc:     rt.Encryptor(),
	}
}

// submit encrypts and submits a plaintext score.
func (h *testHarness) submit(t *testing.T, target domain.TargetID, score uint64) error {
	t.Helper()
	in, err := h.enc.EncryptWide(score)
	require.NoError(t, err)
	return h.engine.Submit(context.Background(), target, in)
}

// setPolicy encrypts and installs a plaintext threshold triple.
func (h *testHarness) setPolicy(t *testing.T, bronze, silver, gold uint64) {
	t.Helper()
	b, err := h.enc.EncryptWide(bronze)
	require.NoError(t, err)
	s, err := h.enc.EncryptWide(silver)
	require.NoError(t, err)
	g, err := h.enc.EncryptWide(gold)
	require.NoError(t, err)
	require.NoError(t, h.engine.SetPolicy(context.Background(), testOwner, b, s, g))
}

// TestEngine_New verifies construction preconditions and that the
// policy triple is initialized to encrypted zeros so no handle is ever
// read uninitialized.
func TestEngine_New(t *testing.T) {
	h := newTestHarness(t)

	handles, err := h.engine.GetPolicyHandles(context.Background())
	require.NoError(t, err)
	assert.False(t, handles.Bronze.IsZero())
	assert.False(t, handles.Silver.IsZero())
	assert.False(t, handles.Gold.IsZero())

	rt, err := fhe.NewClearRuntime([]byte("k"))
	require.NoError(t, err)
	_, err = New(Deps{Runtime: rt, Aggregates: storage.NewMemoryStore()})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New(Deps{Runtime: rt, Aggregates: storage.NewMemoryStore(), Policies: storage.NewMemoryStore()})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "missing owner must be rejected")
}

// TestEngine_Submit verifies that submissions accumulate the encrypted
// sum and plaintext count, and that the decrypted published sum equals
// the arithmetic sum of submitted scores.
func TestEngine_Submit(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	target := domain.TargetID("target-1")

	scores := []uint64{85, 70, 90, 75}
	var want uint64
	for _, s := range scores {
		require.NoError(t, h.submit(t, target, s))
		want += s
	}

	agg, err := h.engine.GetAggregateHandles(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, uint8(len(scores)), agg.Count)
	assert.False(t, agg.Sum.IsZero())

	handle, err := h.engine.PublishSum(ctx, target)
	require.NoError(t, err)
	sum, err := h.runtime.Decrypt(handle, "anyone")
	require.NoError(t, err)
	assert.Equal(t, want, sum)
}

// TestEngine_Submit_ZeroTarget verifies the zero-target precondition.
func TestEngine_Submit_ZeroTarget(t *testing.T) {
	h := newTestHarness(t)
	err := h.submit(t, "", 50)
	assert.ErrorIs(t, err, domain.ErrZeroTarget)
}

// TestEngine_Submit_BadProof verifies that a tampered input is rejected
// without mutating the aggregate.
func TestEngine_Submit_BadProof(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	target := domain.TargetID("target-1")

	in, err := h.enc.EncryptWide(60)
	require.NoError(t, err)
	in.Proof[0] ^= 0xff
	err = h.engine.Submit(ctx, target, in)
	assert.ErrorIs(t, err, ports.ErrBadProof)

	agg, err := h.engine.GetAggregateHandles(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), agg.Count, "rejected submission must not mutate state")
}

// TestEngine_Submit_CountOverflow verifies the hard cap: a submission
// at capacity is rejected with CountOverflow and the count is
// unchanged.
func TestEngine_Submit_CountOverflow(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	target := domain.TargetID("target-1")

	require.NoError(t, h.submit(t, target, 10))
	agg, found, err := h.store.Get(target)
	require.NoError(t, err)
	require.True(t, found)
	agg.Count = domain.MaxSubmissions
	require.NoError(t, h.store.Put(target, agg))

	err = h.submit(t, target, 10)
	assert.ErrorIs(t, err, domain.ErrCountOverflow)

	after, err := h.engine.GetAggregateHandles(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, uint8(domain.MaxSubmissions), after.Count)
}

// TestEngine_GetAggregateHandles_NeverScored verifies the zero-handle
// zero-count response for unknown targets.
func TestEngine_GetAggregateHandles_NeverScored(t *testing.T) {
	h := newTestHarness(t)
	agg, err := h.engine.GetAggregateHandles(context.Background(), "nobody")
	require.NoError(t, err)
	assert.True(t, agg.Sum.IsZero())
	assert.Equal(t, uint8(0), agg.Count)
}

// TestEngine_PublishSum_NoAggregate verifies the NoAggregate
// precondition.
func TestEngine_PublishSum_NoAggregate(t *testing.T) {
	h := newTestHarness(t)
	_, err := h.engine.PublishSum(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNoAggregate)
}

// TestEngine_SetPolicy_Authorization verifies that policy mutation,
// reset, and ownership transfer are policy-holder only.
func TestEngine_SetPolicy_Authorization(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	in, err := h.enc.EncryptWide(50)
	require.NoError(t, err)

	err = h.engine.SetPolicy(ctx, "intruder", in, in, in)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	err = h.engine.MakePolicyPublic(ctx, "intruder")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	err = h.engine.Reset(ctx, "intruder", "target-1")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	err = h.engine.TransferOwnership(ctx, "intruder", "next")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

// TestEngine_MakePolicyPublic verifies the audit path: thresholds
// become globally decryptable and keep their installed values.
func TestEngine_MakePolicyPublic(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	h.setPolicy(t, 50, 70, 90)

	handles, err := h.engine.GetPolicyHandles(ctx)
	require.NoError(t, err)
	_, err = h.runtime.Decrypt(handles.Gold, "auditor")
	assert.ErrorIs(t, err, ports.ErrNotDecryptable, "policy must be confidential before publication")

	require.NoError(t, h.engine.MakePolicyPublic(ctx, testOwner))
	for i, handle := range []domain.Handle{handles.Bronze, handles.Silver, handles.Gold} {
		v, err := h.runtime.Decrypt(handle, "auditor")
		require.NoError(t, err)
		assert.Equal(t, []uint64{50, 70, 90}[i], v)
	}
}

// TestEngine_TransferOwnership verifies the handover and the zero
// successor guard.
func TestEngine_TransferOwnership(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	err := h.engine.TransferOwnership(ctx, testOwner, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, h.engine.TransferOwnership(ctx, testOwner, "successor"))
	err = h.engine.MakePolicyPublic(ctx, testOwner)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized, "previous holder must lose the role")
	assert.NoError(t, h.engine.MakePolicyPublic(ctx, "successor"))
}

// TestEngine_VerdictPrivate verifies caller-only disclosure: the
// requester can decrypt the verdict, nobody else can.
func TestEngine_VerdictPrivate(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	target := domain.TargetID("target-1")
	h.setPolicy(t, 50, 70, 90)
	for _, s := range []uint64{85, 70, 90, 75} {
		require.NoError(t, h.submit(t, target, s))
	}

	caller := domain.Principal("caller-1")
	handle, err := h.engine.VerdictPrivate(ctx, caller, target)
	require.NoError(t, err)

	tier, err := h.runtime.Decrypt(handle, caller)
	require.NoError(t, err)
	assert.Equal(t, domain.TierSilver, domain.Tier(tier))

	_, err = h.runtime.Decrypt(handle, "snoop")
	assert.ErrorIs(t, err, ports.ErrNotDecryptable)
}

// TestEngine_VerdictPublic verifies global disclosure and plaintext
// idempotence: repeated verdicts over unchanged state decrypt to the
// same tier even though the handles differ.
func TestEngine_VerdictPublic(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	target := domain.TargetID("target-1")
	h.setPolicy(t, 50, 70, 90)
	for _, s := range []uint64{85, 70, 90, 75} {
		require.NoError(t, h.submit(t, target, s))
	}

	first, err := h.engine.VerdictPublic(ctx, "caller-1", target)
	require.NoError(t, err)
	second, err := h.engine.VerdictPublic(ctx, "caller-2", target)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID, "each verdict is a fresh ciphertext")

	v1, err := h.runtime.Decrypt(first, "anyone")
	require.NoError(t, err)
	v2, err := h.runtime.Decrypt(second, "someone-else")
	require.NoError(t, err)
	assert.Equal(t, v1, v2, "unchanged state must yield the same plaintext tier")
}

// TestEngine_Verdict_NoData verifies that evaluation requires at least
// one submission regardless of policy.
func TestEngine_Verdict_NoData(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	h.setPolicy(t, 0, 0, 0)

	_, err := h.engine.VerdictPrivate(ctx, "caller", "never-scored")
	assert.ErrorIs(t, err, domain.ErrNoData)

	// A reset target has count zero again and must also be rejected.
	target := domain.TargetID("target-1")
	require.NoError(t, h.submit(t, target, 80))
	require.NoError(t, h.engine.Reset(ctx, testOwner, target))
	_, err = h.engine.VerdictPublic(ctx, "caller", target)
	assert.ErrorIs(t, err, domain.ErrNoData)
}

// TestEngine_Reset verifies that a reset followed by a fresh submission
// behaves identically to a brand-new target.
func TestEngine_Reset(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	target := domain.TargetID("target-1")
	for _, s := range []uint64{90, 95, 100} {
		require.NoError(t, h.submit(t, target, s))
	}

	require.NoError(t, h.engine.Reset(ctx, testOwner, target))

	agg, err := h.engine.GetAggregateHandles(ctx, target)
	require.NoError(t, err)
	assert.True(t, agg.Sum.IsZero(), "reset aggregate reads as never scored")
	assert.Equal(t, uint8(0), agg.Count)

	require.NoError(t, h.submit(t, target, 42))
	handle, err := h.engine.PublishSum(ctx, target)
	require.NoError(t, err)
	sum, err := h.runtime.Decrypt(handle, "anyone")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), sum)

	after, err := h.engine.GetAggregateHandles(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), after.Count)
}

// TestEngine_AuditTrail scans every emitted event for a target and
// verifies the anonymity invariant: nothing beyond (count, handle)
// pairs and disclosure records is observable, and no event type carries
// a rater identity.
func TestEngine_AuditTrail(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	target := domain.TargetID("target-1")
	h.setPolicy(t, 50, 70, 90)
	for _, s := range []uint64{85, 70} {
		require.NoError(t, h.submit(t, target, s))
	}
	_, err := h.engine.VerdictPrivate(ctx, "caller-1", target)
	require.NoError(t, err)
	_, err = h.engine.PublishSum(ctx, target)
	require.NoError(t, err)

	var counts []uint8
	for _, e := range h.audit.Events() {
		switch ev := e.(type) {
		case domain.Scored:
			counts = append(counts, ev.Count)
			assert.False(t, ev.Sum.IsZero())
		case domain.VerdictPrivate:
			assert.Equal(t, domain.Principal("caller-1"), ev.Caller)
		case domain.SumPublished:
			assert.Equal(t, uint8(2), ev.Count)
		}
	}
	assert.Equal(t, []uint8{1, 2}, counts, "scored events expose running counts only")
}
