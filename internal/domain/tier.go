package domain

// Tier is the plaintext value space of a verdict. Verdicts circulate as
// encrypted narrow integers; Tier is what an authorized decryption of
// one yields.
type Tier uint8

// Tier codes, ordered by precedence. The evaluator's selection chain
// prefers the highest tier whose own threshold comparison passes.
const (
	// TierNone indicates no threshold comparison passed.
	TierNone Tier = 0

	// TierBronze indicates the bronze minimum-average threshold passed.
	TierBronze Tier = 1

	// TierSilver indicates the silver minimum-average threshold passed.
	TierSilver Tier = 2

	// TierGold indicates the gold minimum-average threshold passed.
	TierGold Tier = 3
)

// String returns the conventional name of the tier code.
func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	default:
		return "invalid"
	}
}

// Valid reports whether t is one of the four defined tier codes.
func (t Tier) Valid() bool { return t <= TierGold }
