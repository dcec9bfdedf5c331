package fhe

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-cipherscore/internal/ports"
)

// Backend names the available runtime implementations.
const (
	// BackendClear selects the plaintext software backend.
	BackendClear = "clear"

	// BackendBFV selects the lattice backend.
	BackendBFV = "bfv"
)

// Config selects and parameterizes a runtime backend.
type Config struct {
	// Backend chooses the implementation.
	Backend string `yaml:"backend" validate:"required,oneof=clear bfv"`

	// ProofKey is the shared MAC key binding input proofs, up to 64
	// bytes.
	ProofKey string `yaml:"proof_key" validate:"required,max=64"`
}

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Runtime is the combined surface every backend in this package
// provides: the engine-facing homomorphic operations, the client-facing
// decrypt path, and access to the paired encryption tool.
type Runtime interface {
	ports.EncryptedRuntime
	ports.Decryptor
	Encryptor() ports.Encryptor
}

// New constructs the backend the config selects.
func New(cfg Config) (Runtime, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("runtime configuration validation failed: %w", err)
	}
	switch cfg.Backend {
	case BackendClear:
		return NewClearRuntime([]byte(cfg.ProofKey))
	case BackendBFV:
		return NewBFVRuntime([]byte(cfg.ProofKey))
	default:
		return nil, fmt.Errorf("unknown runtime backend %q", cfg.Backend)
	}
}
