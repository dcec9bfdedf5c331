package engine

import (
	"github.com/ahrav/go-cipherscore/internal/domain"
	"github.com/ahrav/go-cipherscore/internal/ports"
)

// TierEvaluator derives an encrypted tier code from an aggregate and
// the policy, entirely on encrypted data. No branch in Evaluate depends
// on a decrypted value: the comparisons produce encrypted booleans and
// the selection chain is built from homomorphic conditional selects.
//
// Division-free comparison: average >= threshold iff sum >= threshold *
// count. Division is unavailable under the encryption scheme, so each
// rung compares the encrypted sum against the homomorphic product of
// its encrypted threshold and the plaintext count. The multiply is a
// plaintext-scalar one, which is considerably cheaper than a
// ciphertext-by-ciphertext product.
type TierEvaluator struct {
	runtime ports.EncryptedRuntime
}

// NewTierEvaluator creates a TierEvaluator over the given runtime.
func NewTierEvaluator(runtime ports.EncryptedRuntime) *TierEvaluator {
	return &TierEvaluator{runtime: runtime}
}

// rung pairs a threshold with the tier code it grants.
type rung struct {
	min  domain.Wide
	code domain.Tier
}

// Evaluate computes the target's encrypted tier code. It fails with
// ErrNoData when the aggregate does not exist or holds zero
// submissions: the average is undefined there, and comparing against a
// threshold product of zero would manufacture a meaningless tier.
//
// The selection chain runs bronze, silver, gold, each select overriding
// the accumulated result where its comparison holds, so the outermost
// (gold) comparison has final say. The produced tier is therefore the
// highest tier whose own comparison passes, with no monotonicity
// assumption between the three thresholds. If the policy holder
// configures bronze above gold the literal chain is still honored;
// ordering the thresholds sensibly is the policy holder's
// responsibility, not the evaluator's.
//
// Every intermediate ciphertext is re-authorized for service use before
// the next operation composes it, and the returned verdict is already
// service-operable.
func (ev *TierEvaluator) Evaluate(agg domain.Aggregate, pol domain.Policy) (domain.Narrow, error) {
	if !agg.Exists || agg.Count == 0 {
		return domain.Narrow{}, domain.ErrNoData
	}

	result, err := ev.constNarrow(uint8(domain.TierNone))
	if err != nil {
		return domain.Narrow{}, err
	}

	ladder := []rung{
		{min: pol.BronzeMin, code: domain.TierBronze},
		{min: pol.SilverMin, code: domain.TierSilver},
		{min: pol.GoldMin, code: domain.TierGold},
	}
	for _, r := range ladder {
		product, err := ev.runtime.MulScalar(r.min, uint64(agg.Count))
		if err != nil {
			return domain.Narrow{}, err
		}
		if err := ev.runtime.AllowService(product.Handle); err != nil {
			return domain.Narrow{}, err
		}

		pass, err := ev.runtime.CompareGE(agg.Sum, product)
		if err != nil {
			return domain.Narrow{}, err
		}
		if err := ev.runtime.AllowService(pass.Handle); err != nil {
			return domain.Narrow{}, err
		}

		code, err := ev.constNarrow(uint8(r.code))
		if err != nil {
			return domain.Narrow{}, err
		}

		result, err = ev.runtime.SelectNarrow(pass, code, result)
		if err != nil {
			return domain.Narrow{}, err
		}
		if err := ev.runtime.AllowService(result.Handle); err != nil {
			return domain.Narrow{}, err
		}
	}
	return result, nil
}

// constNarrow mints a service-operable encryption of a tier code.
func (ev *TierEvaluator) constNarrow(v uint8) (domain.Narrow, error) {
	n, err := ev.runtime.ConstNarrow(v)
	if err != nil {
		return domain.Narrow{}, err
	}
	if err := ev.runtime.AllowService(n.Handle); err != nil {
		return domain.Narrow{}, err
	}
	return n, nil
}
