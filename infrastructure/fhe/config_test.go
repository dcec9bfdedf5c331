package fhe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew_BackendSelection verifies config validation and backend
// construction.
func TestNew_BackendSelection(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "clear backend", cfg: Config{Backend: BackendClear, ProofKey: "k"}},
		{name: "missing backend", cfg: Config{ProofKey: "k"}, wantErr: true},
		{name: "unknown backend", cfg: Config{Backend: "paillier", ProofKey: "k"}, wantErr: true},
		{name: "missing proof key", cfg: Config{Backend: BackendClear}, wantErr: true},
		{name: "oversized proof key", cfg: Config{Backend: BackendClear, ProofKey: string(make([]byte, 65))}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, rt)
			assert.NotNil(t, rt.Encryptor())
		})
	}
}
