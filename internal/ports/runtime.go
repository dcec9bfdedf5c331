// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"github.com/ahrav/go-cipherscore/internal/domain"
)

// EncryptedRuntime is the engine's only window onto ciphertexts. It
// exposes the minimal homomorphic capability set the tier computation
// needs: ingestion with proof verification, addition, plaintext-scalar
// multiplication, ordering comparison, conditional selection, and the
// three disclosure operations.
//
// Handle discipline: every handle a method returns starts out inert.
// The engine must call AllowService on it before composing further
// operations on it, and the runtime must reject operations on handles
// that were never authorized. Treating authorization as part of each
// derived value prevents the bug class of "derived ciphertext nobody
// can act on".
//
// Implementations must not expose plaintext values through this
// interface; decryption lives behind Decryptor and is gated by the
// access policy the disclosure operations build up.
type EncryptedRuntime interface {
	// VerifyWide checks the proof accompanying an external ciphertext
	// and registers the value as an encrypted wide integer. It returns
	// ErrBadProof (wrapped in a RuntimeError) when the proof does not
	// bind the ciphertext.
	VerifyWide(in domain.EncryptedInput) (domain.Wide, error)

	// ZeroWide produces a fresh encryption of the wide identity element.
	// Aggregates and thresholds are initialized from it so no handle is
	// ever read uninitialized.
	ZeroWide() (domain.Wide, error)

	// ConstNarrow produces a fresh encryption of a known narrow value.
	// The evaluator uses it to materialize tier codes for selection.
	ConstNarrow(v uint8) (domain.Narrow, error)

	// Add returns a new ciphertext encrypting the sum of a and b.
	Add(a, b domain.Wide) (domain.Wide, error)

	// MulScalar returns a new ciphertext encrypting a's value times the
	// plaintext scalar k. This is the cheap half of the division-free
	// comparison; k never exceeds MaxSubmissions.
	MulScalar(a domain.Wide, k uint64) (domain.Wide, error)

	// CompareGE returns an encrypted boolean holding a >= b.
	CompareGE(a, b domain.Wide) (domain.EncryptedBool, error)

	// SelectNarrow returns an encrypted narrow value equal to ifTrue
	// where cond holds and ifFalse where it does not, without revealing
	// which branch was taken.
	SelectNarrow(cond domain.EncryptedBool, ifTrue, ifFalse domain.Narrow) (domain.Narrow, error)

	// AllowService authorizes the engine's own future use of a handle.
	// Every derived handle must pass through here before it is stored
	// or composed further.
	AllowService(h domain.Handle) error

	// Allow grants the principal the right to decrypt the handle.
	// Grants only ever widen access; there is no revoke.
	Allow(h domain.Handle, p domain.Principal) error

	// MakePublic marks the handle globally decryptable. Irreversible.
	MakePublic(h domain.Handle) error
}

// Decryptor is the client-facing decrypt path. The engine never calls
// it; tests, auditors, and off-system consumers do, and implementations
// enforce the access policy attached to each handle.
type Decryptor interface {
	// Decrypt returns the plaintext behind h if p is authorized, either
	// individually or because the handle was made public. It returns
	// ErrNotDecryptable (wrapped in a RuntimeError) otherwise.
	Decrypt(h domain.Handle, p domain.Principal) (uint64, error)
}

// Encryptor is the client-side encryption tool paired with a runtime.
// Raters and the policy holder use it to produce the ciphertext+proof
// inputs the engine ingests; it is a collaborator of the runtime and
// shares its proof format.
type Encryptor interface {
	// EncryptWide encrypts a 0-100 value and returns the input package
	// the runtime's VerifyWide accepts. Values out of range are
	// rejected here, before anything reaches the engine.
	EncryptWide(value uint64) (domain.EncryptedInput, error)
}
