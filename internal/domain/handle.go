// Package domain contains pure, dependency-free domain models and types
// for the confidential rating engine.
package domain

// Width identifies the plaintext capacity of an encrypted value.
// The engine operates on two integer widths plus an encrypted boolean
// produced by homomorphic comparison.
type Width uint8

const (
	// WidthWide holds scores, running sums, and threshold products.
	// Its plaintext space must cover the maximum threshold product,
	// MaxScore * MaxSubmissions = 25500.
	WidthWide Width = iota

	// WidthNarrow holds tier codes (0-255).
	WidthNarrow

	// WidthBool holds the 0/1 result of a homomorphic comparison.
	WidthBool
)

// String returns a human-readable name for the width.
func (w Width) String() string {
	switch w {
	case WidthWide:
		return "wide"
	case WidthNarrow:
		return "narrow"
	case WidthBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Handle is an opaque reference to a ciphertext held by the encrypted
// runtime. The engine never sees plaintext values behind a Handle; it
// composes handles through the runtime's homomorphic operations and
// attaches disclosure policy to them. A zero Handle references nothing.
type Handle struct {
	// ID uniquely identifies the ciphertext within the runtime.
	ID string

	// Width records the plaintext capacity of the referenced ciphertext.
	Width Width
}

// IsZero reports whether the handle references no ciphertext.
func (h Handle) IsZero() bool { return h.ID == "" }

// Wide references an encrypted wide integer (score, sum, or threshold).
// The distinct wrapper types keep the evaluator's arithmetic width-safe
// at compile time; the runtime enforces the same widths at its boundary.
type Wide struct{ Handle Handle }

// Narrow references an encrypted narrow integer (a tier code).
type Narrow struct{ Handle Handle }

// EncryptedBool references the encrypted result of a homomorphic
// ordering comparison.
type EncryptedBool struct{ Handle Handle }

// Principal identifies a caller, the policy holder, or a decryption
// grantee. Authentication of principals is a transport concern; the
// engine only compares and records them. A zero Principal is invalid
// wherever one is required.
type Principal string

// IsZero reports whether the principal is unset.
func (p Principal) IsZero() bool { return p == "" }

// TargetID identifies the subject of ratings. Targets are opaque to the
// engine; a zero TargetID is rejected by every operation that takes one.
type TargetID string

// IsZero reports whether the target is unset.
func (t TargetID) IsZero() bool { return t == "" }

// EncryptedInput carries an externally produced ciphertext and the proof
// the runtime verifies before the value may enter the engine. The proof
// format is owned by the runtime; the engine treats both as opaque bytes.
type EncryptedInput struct {
	// Ciphertext is the serialized encrypted value.
	Ciphertext []byte

	// Proof binds the ciphertext to a well-formed plaintext in range.
	Proof []byte
}
