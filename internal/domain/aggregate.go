package domain

// Score bounds and capacity limits shared by the engine and its runtime
// adapters. The wide width must hold MaxScore * MaxSubmissions, the
// largest threshold product the evaluator can form.
const (
	// MaxScore is the upper bound of the 0-100 rating scale.
	MaxScore = 100

	// MaxSubmissions caps the plaintext submission counter at the narrow
	// integer's maximum. A submission at the cap is rejected outright;
	// the counter never saturates or wraps.
	MaxSubmissions = 255

	// MaxThresholdProduct is the largest value threshold*count can take.
	// Runtime adapters size their plaintext space against it.
	MaxThresholdProduct = MaxScore * MaxSubmissions
)

// Aggregate is the complete per-target record: an encrypted running sum
// and a plaintext submission counter. Nothing else is ever stored for a
// target. In particular no per-submission record and no rater identity
// exist anywhere in the system; this is the central anonymity invariant.
//
// Invariant: Count == 0 iff Sum encrypts zero (a reset re-establishes
// both together), and Count > 0 implies at least one homomorphic add has
// been folded into Sum.
type Aggregate struct {
	// Exists distinguishes "never scored" from "scored, sum currently
	// zero". A reset clears it without removing the record.
	Exists bool

	// Sum is the homomorphic running sum of every score submitted for
	// the target. Its plaintext value is monotonically non-decreasing
	// between resets, though the ciphertext changes on every update.
	Sum Wide

	// Count is the exact number of submissions, bounded by
	// MaxSubmissions. It is plaintext so the evaluator can use it as a
	// scalar multiplier instead of paying for a ciphertext multiply.
	Count uint8
}

// Policy holds the three confidential minimum-average thresholds. The
// thresholds are independent encrypted values on the 0-100 scale; no
// ordering between them is enforced, and the evaluator is correct under
// any configuration (see TierEvaluator).
type Policy struct {
	// BronzeMin is the minimum average required for the bronze tier.
	BronzeMin Wide

	// SilverMin is the minimum average required for the silver tier.
	SilverMin Wide

	// GoldMin is the minimum average required for the gold tier.
	GoldMin Wide
}

// Handles returns the three threshold handles in bronze, silver, gold
// order. Callers receive handles, never values; decryption goes through
// the runtime's authorization path.
func (p Policy) Handles() [3]Handle {
	return [3]Handle{p.BronzeMin.Handle, p.SilverMin.Handle, p.GoldMin.Handle}
}
