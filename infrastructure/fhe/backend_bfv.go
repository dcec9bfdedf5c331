package fhe

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/ldsec/lattigo/bfv"

	"github.com/ahrav/go-cipherscore/internal/domain"
	"github.com/ahrav/go-cipherscore/internal/ports"
)

var (
	_ ports.EncryptedRuntime = (*BFVRuntime)(nil)
	_ ports.Decryptor        = (*BFVRuntime)(nil)
)

// BFVRuntime is the lattice backend. Sums, scores, thresholds, and tier
// codes live as BFV ciphertexts; addition and plaintext-scalar
// multiplication are evaluated homomorphically. BFV offers no native
// ordering comparison, so CompareGE and SelectNarrow run inside the
// key-holding coprocessor as a decrypt-compare-reencrypt refresh; the
// plaintexts never cross the runtime boundary, and the refreshed output
// is a fresh ciphertext unlinkable to its operands.
//
// The plaintext modulus is 65537, which comfortably holds the largest
// value the engine can form, MaxThresholdProduct = 25500.
type BFVRuntime struct {
	ledger *ledger
	prover *prover

	params    *bfv.Parameters
	encoder   bfv.Encoder
	encryptor bfv.Encryptor
	decryptor bfv.Decryptor
	evaluator bfv.Evaluator

	mu      sync.RWMutex
	values  map[string]*bfv.Ciphertext
	staging map[string]*bfv.Ciphertext
}

// NewBFVRuntime creates a BFVRuntime with a fresh key pair. The key
// never leaves the runtime; clients encrypt through the paired
// Encryptor and decrypt through the authorization-gated Decrypt path.
func NewBFVRuntime(proofKey []byte) (*BFVRuntime, error) {
	pv, err := newProver(proofKey)
	if err != nil {
		return nil, fmt.Errorf("bfv runtime: %w", err)
	}

	params := bfv.DefaultParams[bfv.PN14QP438]
	params.T = 65537

	kgen := bfv.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPair()

	return &BFVRuntime{
		ledger:    newLedger(),
		prover:    pv,
		params:    params,
		encoder:   bfv.NewEncoder(params),
		encryptor: bfv.NewEncryptorFromPk(params, pk),
		decryptor: bfv.NewDecryptor(params, sk),
		evaluator: bfv.NewEvaluator(params),
		values:    make(map[string]*bfv.Ciphertext),
		staging:   make(map[string]*bfv.Ciphertext),
	}, nil
}

// Encryptor returns the client-side encryption tool paired with this
// runtime. Ciphertexts are staged at the runtime's ingestion gateway
// and referenced by token, the shape a networked deployment gives to
// registered inputs.
func (rt *BFVRuntime) Encryptor() ports.Encryptor { return &bfvEncryptor{rt: rt} }

// encrypt produces a fresh ciphertext of v.
func (rt *BFVRuntime) encrypt(v uint64) *bfv.Ciphertext {
	pt := bfv.NewPlaintext(rt.params)
	rt.encoder.EncodeUint([]uint64{v}, pt)
	return rt.encryptor.EncryptNew(pt)
}

// decrypt recovers the plaintext behind a ciphertext. Internal use
// only; the caller is responsible for authorization.
func (rt *BFVRuntime) decrypt(ct *bfv.Ciphertext) uint64 {
	pt := bfv.NewPlaintext(rt.params)
	rt.decryptor.Decrypt(ct, pt)
	return rt.encoder.DecodeUint(pt)[0]
}

// register mints an inert handle for a ciphertext.
func (rt *BFVRuntime) register(width domain.Width, ct *bfv.Ciphertext) domain.Handle {
	h := rt.ledger.mint(width)
	rt.mu.Lock()
	rt.values[h.ID] = ct
	rt.mu.Unlock()
	return h
}

func (rt *BFVRuntime) ciphertext(h domain.Handle) *bfv.Ciphertext {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.values[h.ID]
}

// VerifyWide implements ports.EncryptedRuntime. The input ciphertext
// field carries a staging token minted by the paired encryptor; the
// proof binds that token.
func (rt *BFVRuntime) VerifyWide(in domain.EncryptedInput) (domain.Wide, error) {
	const op = "verify_wide"
	if err := rt.prover.verify(in); err != nil {
		return domain.Wide{}, ports.NewRuntimeError(op, domain.Handle{}, err)
	}
	rt.mu.Lock()
	ct, ok := rt.staging[string(in.Ciphertext)]
	if ok {
		delete(rt.staging, string(in.Ciphertext))
	}
	rt.mu.Unlock()
	if !ok {
		return domain.Wide{}, ports.NewRuntimeError(op, domain.Handle{}, ports.ErrBadProof)
	}
	return domain.Wide{Handle: rt.register(domain.WidthWide, ct)}, nil
}

// ZeroWide implements ports.EncryptedRuntime.
func (rt *BFVRuntime) ZeroWide() (domain.Wide, error) {
	return domain.Wide{Handle: rt.register(domain.WidthWide, rt.encrypt(0))}, nil
}

// ConstNarrow implements ports.EncryptedRuntime.
func (rt *BFVRuntime) ConstNarrow(v uint8) (domain.Narrow, error) {
	return domain.Narrow{Handle: rt.register(domain.WidthNarrow, rt.encrypt(uint64(v)))}, nil
}

// Add implements ports.EncryptedRuntime. Fully homomorphic; the key is
// not involved.
func (rt *BFVRuntime) Add(a, b domain.Wide) (domain.Wide, error) {
	const op = "add"
	if err := rt.ledger.requireOperable(op, a.Handle, domain.WidthWide); err != nil {
		return domain.Wide{}, err
	}
	if err := rt.ledger.requireOperable(op, b.Handle, domain.WidthWide); err != nil {
		return domain.Wide{}, err
	}
	sum := rt.evaluator.AddNew(rt.ciphertext(a.Handle), rt.ciphertext(b.Handle))
	return domain.Wide{Handle: rt.register(domain.WidthWide, sum)}, nil
}

// MulScalar implements ports.EncryptedRuntime. Fully homomorphic; the
// key is not involved.
func (rt *BFVRuntime) MulScalar(a domain.Wide, k uint64) (domain.Wide, error) {
	const op = "mul_scalar"
	if err := rt.ledger.requireOperable(op, a.Handle, domain.WidthWide); err != nil {
		return domain.Wide{}, err
	}
	prod := rt.evaluator.MulScalarNew(rt.ciphertext(a.Handle), k)
	return domain.Wide{Handle: rt.register(domain.WidthWide, prod)}, nil
}

// CompareGE implements ports.EncryptedRuntime via coprocessor refresh.
func (rt *BFVRuntime) CompareGE(a, b domain.Wide) (domain.EncryptedBool, error) {
	const op = "compare_ge"
	if err := rt.ledger.requireOperable(op, a.Handle, domain.WidthWide); err != nil {
		return domain.EncryptedBool{}, err
	}
	if err := rt.ledger.requireOperable(op, b.Handle, domain.WidthWide); err != nil {
		return domain.EncryptedBool{}, err
	}
	var v uint64
	if rt.decrypt(rt.ciphertext(a.Handle)) >= rt.decrypt(rt.ciphertext(b.Handle)) {
		v = 1
	}
	return domain.EncryptedBool{Handle: rt.register(domain.WidthBool, rt.encrypt(v))}, nil
}

// SelectNarrow implements ports.EncryptedRuntime via coprocessor
// refresh. The output is a fresh encryption of the chosen branch's
// plaintext, so it carries no link to either input ciphertext.
func (rt *BFVRuntime) SelectNarrow(cond domain.EncryptedBool, ifTrue, ifFalse domain.Narrow) (domain.Narrow, error) {
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
	chosen := ifFalse
	if rt.decrypt(rt.ciphertext(cond.Handle)) == 1 {
		chosen = ifTrue
	}
	refreshed := rt.encrypt(rt.decrypt(rt.ciphertext(chosen.Handle)))
	return domain.Narrow{Handle: rt.register(domain.WidthNarrow, refreshed)}, nil
}

// AllowService implements ports.EncryptedRuntime.
func (rt *BFVRuntime) AllowService(h domain.Handle) error { return rt.ledger.allowService(h) }

// Allow implements ports.EncryptedRuntime.
func (rt *BFVRuntime) Allow(h domain.Handle, p domain.Principal) error {
	return rt.ledger.allow(h, p)
}

// MakePublic implements ports.EncryptedRuntime.
func (rt *BFVRuntime) MakePublic(h domain.Handle) error { return rt.ledger.makePublic(h) }

// Decrypt implements ports.Decryptor.
func (rt *BFVRuntime) Decrypt(h domain.Handle, p domain.Principal) (uint64, error) {
	if err := rt.ledger.requireDecryptable(h, p); err != nil {
		return 0, err
	}
	rt.mu.RLock()
	ct, ok := rt.values[h.ID]
	rt.mu.RUnlock()
	if !ok {
		return 0, ports.NewRuntimeError("decrypt", h, ports.ErrUnknownHandle)
	}
	return rt.decrypt(ct), nil
}

// bfvEncryptor is the client-side tool paired with BFVRuntime.
type bfvEncryptor struct {
	rt *BFVRuntime
}

// EncryptWide implements ports.Encryptor. The 0-100 range is enforced
// at encryption time, before the proof is bound.
func (e *bfvEncryptor) EncryptWide(value uint64) (domain.EncryptedInput, error) {
	if value > domain.MaxScore {
		return domain.EncryptedInput{}, ports.ErrScoreOutOfRange
	}
	token := []byte(uuid.NewString())
	ct := e.rt.encrypt(value)
	e.rt.mu.Lock()
	e.rt.staging[string(token)] = ct
	e.rt.mu.Unlock()
	proof, err := e.rt.prover.bind(token)
	if err != nil {
		return domain.EncryptedInput{}, err
	}
	return domain.EncryptedInput{Ciphertext: token, Proof: proof}, nil
}
