package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-cipherscore/infrastructure/fhe"
	"github.com/ahrav/go-cipherscore/internal/domain"
)

// SessionConfig describes a complete local session: the runtime
// backend, the policy holder, and the initial tier thresholds.
type SessionConfig struct {
	// Runtime selects and parameterizes the encrypted-value backend.
	Runtime fhe.Config `yaml:"runtime" validate:"required"`

	// Owner is the policy holder for the session.
	Owner domain.Principal `yaml:"owner" validate:"required"`

	// Thresholds are the initial minimum-average tier thresholds on the
	// 0-100 scale.
	Thresholds ThresholdConfig `yaml:"thresholds" validate:"required"`
}

// ThresholdConfig holds the plaintext thresholds the session encrypts
// and installs at startup.
type ThresholdConfig struct {
	Bronze uint64 `yaml:"bronze" validate:"max=100"`
	Silver uint64 `yaml:"silver" validate:"max=100"`
	Gold   uint64 `yaml:"gold" validate:"max=100"`
}

var validate = validator.New()

// defaultConfig is the built-in demo session.
func defaultConfig() SessionConfig {
	return SessionConfig{
		Runtime: fhe.Config{Backend: fhe.BackendClear, ProofKey: "cipherscore-demo-proof-key"},
		Owner:   "policy-holder",
		Thresholds: ThresholdConfig{
			Bronze: 50,
			Silver: 70,
			Gold:   90,
		},
	}
}

// loadConfig resolves the session config from the --config flag, then
// applies the --runtime override.
func loadConfig() (SessionConfig, error) {
	cfg := defaultConfig()
	if configFlag != "" {
		data, err := os.ReadFile(configFlag)
		if err != nil {
			return SessionConfig{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return SessionConfig{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if runtimeFlag != "" {
		cfg.Runtime.Backend = runtimeFlag
	}
	if err := validate.Struct(cfg); err != nil {
		return SessionConfig{}, fmt.Errorf("session configuration validation failed: %w", err)
	}
	return cfg, nil
}
