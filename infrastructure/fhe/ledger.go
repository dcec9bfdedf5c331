// Package fhe provides EncryptedRuntime implementations: a plaintext
// software backend for deterministic tests and local simulation, and a
// lattice-based backend built on the lattigo BFV scheme.
//
// Both backends share the same handle ledger, which tracks, per
// ciphertext, its width and its access policy: whether the engine may
// operate on it, which principals may decrypt it, and whether it has
// been made public. Access only ever widens; no operation in this
// package narrows a policy.
package fhe

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ahrav/go-cipherscore/internal/domain"
	"github.com/ahrav/go-cipherscore/internal/ports"
)

// entry is the per-handle bookkeeping record.
type entry struct {
	width domain.Width

	// serviceOK marks the handle operable by the engine. Freshly minted
	// and derived handles start inert; AllowService flips this.
	serviceOK bool

	// public marks the handle globally decryptable.
	public bool

	// allowed lists principals individually granted decryption.
	allowed map[domain.Principal]struct{}
}

// ledger is the handle registry shared by all backends.
type ledger struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func newLedger() *ledger {
	return &ledger{entries: make(map[string]*entry)}
}

// mint registers a fresh inert handle of the given width.
func (l *ledger) mint(width domain.Width) domain.Handle {
	h := domain.Handle{ID: uuid.NewString(), Width: width}
	l.mu.Lock()
	l.entries[h.ID] = &entry{width: width, allowed: make(map[domain.Principal]struct{})}
	l.mu.Unlock()
	return h
}

// requireOperable verifies the handle exists, has the expected width,
// and has been authorized for service use.
func (l *ledger) requireOperable(op string, h domain.Handle, width domain.Width) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[h.ID]
	if !ok {
		return ports.NewRuntimeError(op, h, ports.ErrUnknownHandle)
	}
	if e.width != width {
		return ports.NewRuntimeError(op, h, ports.ErrWidthMismatch)
	}
	if !e.serviceOK {
		return ports.NewRuntimeError(op, h, ports.ErrHandleNotOperable)
	}
	return nil
}

// allowService marks the handle operable by the engine.
func (l *ledger) allowService(h domain.Handle) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[h.ID]
	if !ok {
		return ports.NewRuntimeError("allow_service", h, ports.ErrUnknownHandle)
	}
	e.serviceOK = true
	return nil
}

// allow grants the principal decryption rights on the handle.
func (l *ledger) allow(h domain.Handle, p domain.Principal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[h.ID]
	if !ok {
		return ports.NewRuntimeError("allow", h, ports.ErrUnknownHandle)
	}
	e.allowed[p] = struct{}{}
	return nil
}

// makePublic marks the handle globally decryptable.
func (l *ledger) makePublic(h domain.Handle) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[h.ID]
	if !ok {
		return ports.NewRuntimeError("make_public", h, ports.ErrUnknownHandle)
	}
	e.public = true
	return nil
}

// requireDecryptable verifies the principal may decrypt the handle.
func (l *ledger) requireDecryptable(h domain.Handle, p domain.Principal) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[h.ID]
	if !ok {
		return ports.NewRuntimeError("decrypt", h, ports.ErrUnknownHandle)
	}
	if e.public {
		return nil
	}
	if _, granted := e.allowed[p]; granted {
		return nil
	}
	return ports.NewRuntimeError("decrypt", h, ports.ErrNotDecryptable)
}
