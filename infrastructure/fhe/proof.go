package fhe

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/ahrav/go-cipherscore/internal/domain"
	"github.com/ahrav/go-cipherscore/internal/ports"
)

// prover binds ciphertexts to proofs with a keyed BLAKE2b-256 MAC. The
// key is shared between the client-side encryption tool and the
// runtime, standing in for the zero-knowledge input proofs a production
// deployment would verify. The property it preserves is the one the
// engine relies on: only ciphertexts produced by the paired encryptor,
// which enforces the 0-100 range at encryption time, pass verification.
type prover struct {
	key []byte
}

func newProver(key []byte) (*prover, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("proof key must not be empty")
	}
	if len(key) > 64 {
		return nil, fmt.Errorf("proof key exceeds 64 bytes")
	}
	return &prover{key: key}, nil
}

// bind produces the proof for a ciphertext.
func (p *prover) bind(ciphertext []byte) ([]byte, error) {
	mac, err := blake2b.New256(p.key)
	if err != nil {
		return nil, fmt.Errorf("proof mac: %w", err)
	}
	mac.Write(ciphertext)
	return mac.Sum(nil), nil
}

// verify checks that the proof binds the ciphertext.
func (p *prover) verify(in domain.EncryptedInput) error {
	want, err := p.bind(in.Ciphertext)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(want, in.Proof) != 1 {
		return ports.ErrBadProof
	}
	return nil
}
