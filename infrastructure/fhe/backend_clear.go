package fhe

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/ahrav/go-cipherscore/internal/domain"
	"github.com/ahrav/go-cipherscore/internal/ports"
)

var (
	_ ports.EncryptedRuntime = (*ClearRuntime)(nil)
	_ ports.Decryptor        = (*ClearRuntime)(nil)
)

// ClearRuntime is the software backend: values are held in plaintext
// behind the same handle ledger and access policy the lattice backend
// uses. It models a key-holding enclave with hardware encryption
// replaced by process isolation, which makes engine behavior exactly
// observable in tests while exercising the full handle and
// authorization discipline.
type ClearRuntime struct {
	ledger *ledger
	prover *prover

	mu     sync.RWMutex
	values map[string]uint64
}

// NewClearRuntime creates a ClearRuntime whose input proofs are bound
// with the given key.
func NewClearRuntime(proofKey []byte) (*ClearRuntime, error) {
	pv, err := newProver(proofKey)
	if err != nil {
		return nil, fmt.Errorf("clear runtime: %w", err)
	}
	return &ClearRuntime{
		ledger: newLedger(),
		prover: pv,
		values: make(map[string]uint64),
	}, nil
}

// Encryptor returns the client-side encryption tool paired with this
// runtime.
func (rt *ClearRuntime) Encryptor() ports.Encryptor { return &clearEncryptor{prover: rt.prover} }

// register mints a handle for a value. The handle starts inert.
func (rt *ClearRuntime) register(width domain.Width, v uint64) domain.Handle {
	h := rt.ledger.mint(width)
	rt.mu.Lock()
	rt.values[h.ID] = v
	rt.mu.Unlock()
	return h
}

func (rt *ClearRuntime) value(h domain.Handle) uint64 {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.values[h.ID]
}

// VerifyWide implements ports.EncryptedRuntime.
func (rt *ClearRuntime) VerifyWide(in domain.EncryptedInput) (domain.Wide, error) {
	const op = "verify_wide"
	if err := rt.prover.verify(in); err != nil {
		return domain.Wide{}, ports.NewRuntimeError(op, domain.Handle{}, err)
	}
	if len(in.Ciphertext) != 8 {
		return domain.Wide{}, ports.NewRuntimeError(op, domain.Handle{}, ports.ErrBadProof)
	}
	v := binary.BigEndian.Uint64(in.Ciphertext)
	return domain.Wide{Handle: rt.register(domain.WidthWide, v)}, nil
}

// ZeroWide implements ports.EncryptedRuntime.
func (rt *ClearRuntime) ZeroWide() (domain.Wide, error) {
	return domain.Wide{Handle: rt.register(domain.WidthWide, 0)}, nil
}

// ConstNarrow implements ports.EncryptedRuntime.
func (rt *ClearRuntime) ConstNarrow(v uint8) (domain.Narrow, error) {
	return domain.Narrow{Handle: rt.register(domain.WidthNarrow, uint64(v))}, nil
}

// Add implements ports.EncryptedRuntime.
func (rt *ClearRuntime) Add(a, b domain.Wide) (domain.Wide, error) {
	const op = "add"
	if err := rt.ledger.requireOperable(op, a.Handle, domain.WidthWide); err != nil {
		return domain.Wide{}, err
	}
	if err := rt.ledger.requireOperable(op, b.Handle, domain.WidthWide); err != nil {
		return domain.Wide{}, err
	}
	sum := rt.value(a.Handle) + rt.value(b.Handle)
	return domain.Wide{Handle: rt.register(domain.WidthWide, sum)}, nil
}

// MulScalar implements ports.EncryptedRuntime.
func (rt *ClearRuntime) MulScalar(a domain.Wide, k uint64) (domain.Wide, error) {
	const op = "mul_scalar"
	if err := rt.ledger.requireOperable(op, a.Handle, domain.WidthWide); err != nil {
		return domain.Wide{}, err
	}
	return domain.Wide{Handle: rt.register(domain.WidthWide, rt.value(a.Handle)*k)}, nil
}

// CompareGE implements ports.EncryptedRuntime.
func (rt *ClearRuntime) CompareGE(a, b domain.Wide) (domain.EncryptedBool, error) {
	const op = "compare_ge"
	if err := rt.ledger.requireOperable(op, a.Handle, domain.WidthWide); err != nil {
		return domain.EncryptedBool{}, err
	}
	if err := rt.ledger.requireOperable(op, b.Handle, domain.WidthWide); err != nil {
		return domain.EncryptedBool{}, err
	}
	var v uint64
	if rt.value(a.Handle) >= rt.value(b.Handle) {
		v = 1
	}
	return domain.EncryptedBool{Handle: rt.register(domain.WidthBool, v)}, nil
}

// SelectNarrow implements ports.EncryptedRuntime.
func (rt *ClearRuntime) SelectNarrow(cond domain.EncryptedBool, ifTrue, ifFalse domain.Narrow) (domain.Narrow, error) {
	const op = "select_narrow"
	if err := rt.ledger.requireOperable(op, cond.Handle, domain.WidthBool); err != nil {
		return domain.Narrow{}, err
	}
	if err := rt.ledger.requireOperable(op, ifTrue.Handle, domain.WidthNarrow); err != nil {
		return domain.Narrow{}, err
	}
	if err := rt.ledger.requireOperable(op, ifFalse.Handle, domain.WidthNarrow); err != nil {
		return domain.Narrow{}, err
	}
	chosen := rt.value(ifFalse.Handle)
	if rt.value(cond.Handle) == 1 {
		chosen = rt.value(ifTrue.Handle)
	}
	// A fresh handle keeps the result unlinkable to either branch.
	return domain.Narrow{Handle: rt.register(domain.WidthNarrow, chosen)}, nil
}

// AllowService implements ports.EncryptedRuntime.
func (rt *ClearRuntime) AllowService(h domain.Handle) error { return rt.ledger.allowService(h) }

// Allow implements ports.EncryptedRuntime.
func (rt *ClearRuntime) Allow(h domain.Handle, p domain.Principal) error {
	return rt.ledger.allow(h, p)
}

// MakePublic implements ports.EncryptedRuntime.
func (rt *ClearRuntime) MakePublic(h domain.Handle) error { return rt.ledger.makePublic(h) }

// Decrypt implements ports.Decryptor.
func (rt *ClearRuntime) Decrypt(h domain.Handle, p domain.Principal) (uint64, error) {
	if err := rt.ledger.requireDecryptable(h, p); err != nil {
		return 0, err
	}
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	v, ok := rt.values[h.ID]
	if !ok {
		return 0, ports.NewRuntimeError("decrypt", h, ports.ErrUnknownHandle)
	}
	return v, nil
}

// clearEncryptor is the client-side tool paired with ClearRuntime.
type clearEncryptor struct {
	prover *prover
}

// EncryptWide implements ports.Encryptor. The 0-100 range is enforced
// here: the proof only ever binds in-range values, which is the
// guarantee the engine depends on instead of checking ranges itself.
func (e *clearEncryptor) EncryptWide(value uint64) (domain.EncryptedInput, error) {
	if value > domain.MaxScore {
		return domain.EncryptedInput{}, ports.ErrScoreOutOfRange
	}
	ct := make([]byte, 8)
	binary.BigEndian.PutUint64(ct, value)
	proof, err := e.prover.bind(ct)
	if err != nil {
		return domain.EncryptedInput{}, err
	}
	return domain.EncryptedInput{Ciphertext: ct, Proof: proof}, nil
}
