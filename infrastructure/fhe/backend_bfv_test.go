package fhe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-cipherscore/internal/domain"
	"github.com/ahrav/go-cipherscore/internal/ports"
)

func newBFV(t *testing.T) *BFVRuntime {
	t.Helper()
	if testing.Short() {
		t.Skip("lattice key generation is expensive")
	}
	rt, err := NewBFVRuntime([]byte("test-key"))
	require.NoError(t, err)
	return rt
}

// TestBFVRuntime_Lifecycle runs one full encrypted computation through
// the lattice backend: ingest two scores, accumulate, scale, compare,
// select, and decrypt under an explicit grant.
func TestBFVRuntime_Lifecycle(t *testing.T) {
	rt := newBFV(t)
	enc := rt.Encryptor()

	ingest := func(v uint64) domain.Wide {
		in, err := enc.EncryptWide(v)
		require.NoError(t, err)
		w, err := rt.VerifyWide(in)
		require.NoError(t, err)
		require.NoError(t, rt.AllowService(w.Handle))
		return w
	}

	sum, err := rt.Add(ingest(85), ingest(70))
	require.NoError(t, err)
	require.NoError(t, rt.Allow(sum.Handle, "caller"))
	v, err := rt.Decrypt(sum.Handle, "caller")
	require.NoError(t, err)
	assert.Equal(t, uint64(155), v)

	require.NoError(t, rt.AllowService(sum.Handle))
	product, err := rt.MulScalar(sum, 2)
	require.NoError(t, err)
	require.NoError(t, rt.AllowService(product.Handle))

	// 155 >= 2*70: the accumulated pair clears a threshold of 70.
	cond, err := rt.CompareGE(sum, product)
	require.NoError(t, err)
	require.NoError(t, rt.AllowService(cond.Handle))

	high, err := rt.ConstNarrow(3)
	require.NoError(t, err)
	require.NoError(t, rt.AllowService(high.Handle))
	low, err := rt.ConstNarrow(0)
	require.NoError(t, err)
	require.NoError(t, rt.AllowService(low.Handle))

	picked, err := rt.SelectNarrow(cond, high, low)
	require.NoError(t, err)
	require.NoError(t, rt.MakePublic(picked.Handle))
	tier, err := rt.Decrypt(picked.Handle, "anyone")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), tier, "155 < 310 so the comparison selects the low branch")
}

// TestBFVRuntime_StagedInputs verifies the ingestion gateway: a staged
// input is consumed exactly once and cannot be replayed.
func TestBFVRuntime_StagedInputs(t *testing.T) {
	rt := newBFV(t)

	in, err := rt.Encryptor().EncryptWide(42)
	require.NoError(t, err)

	w, err := rt.VerifyWide(in)
	require.NoError(t, err)
	require.NoError(t, rt.Allow(w.Handle, "caller"))
	v, err := rt.Decrypt(w.Handle, "caller")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	_, err = rt.VerifyWide(in)
	assert.ErrorIs(t, err, ports.ErrBadProof, "a consumed staging token must not verify again")
}

// TestBFVRuntime_RangeAndProof verifies client-side range enforcement
// and proof binding on the staged-token path.
func TestBFVRuntime_RangeAndProof(t *testing.T) {
	rt := newBFV(t)
	enc := rt.Encryptor()

	_, err := enc.EncryptWide(101)
	assert.ErrorIs(t, err, ports.ErrScoreOutOfRange)

	in, err := enc.EncryptWide(100)
	require.NoError(t, err)
	in.Proof[0] ^= 0xff
	_, err = rt.VerifyWide(in)
	assert.ErrorIs(t, err, ports.ErrBadProof)
}
