// Package events provides EventSink adapters for the rating engine's
// audit trail.
package events

import (
	"sync"

	"github.com/ahrav/go-cipherscore/internal/domain"
	"github.com/ahrav/go-cipherscore/internal/ports"
)

var _ ports.EventSink = (*MemoryLog)(nil)

// MemoryLog is an append-only in-process audit log. Auditors read it to
// verify the engine's disclosure discipline: events carry handles,
// counts, and principals, and scanning the full log for a target must
// never reveal more than (count, handle) pairs.
type MemoryLog struct {
	mu     sync.RWMutex
	events []domain.Event
}

// NewMemoryLog creates an empty MemoryLog.
func NewMemoryLog() *MemoryLog { return &MemoryLog{} }

// Emit implements ports.EventSink.
func (l *MemoryLog) Emit(e domain.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

// Events returns a snapshot of the log in emission order.
func (l *MemoryLog) Events() []domain.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Event, len(l.events))
	copy(out, l.events)
	return out
}

// ByKind returns the snapshot filtered to one event kind.
func (l *MemoryLog) ByKind(kind domain.EventKind) []domain.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.Event
	for _, e := range l.events {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}
