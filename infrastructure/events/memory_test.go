package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-cipherscore/internal/domain"
)

func scored(id string, count uint8) domain.Scored {
	return domain.Scored{
		EventMeta: domain.EventMeta{ID: id, At: time.Now().UTC()},
		Target:    "target-1",
		Count:     count,
	}
}

// TestMemoryLog_AppendAndSnapshot verifies ordering and that Events
// returns a copy the caller cannot use to mutate the log.
func TestMemoryLog_AppendAndSnapshot(t *testing.T) {
	l := NewMemoryLog()
	require.NoError(t, l.Emit(scored("e1", 1)))
	require.NoError(t, l.Emit(scored("e2", 2)))

	got := l.Events()
	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0].(domain.Scored).ID)
	assert.Equal(t, "e2", got[1].(domain.Scored).ID)

	got[0] = scored("tampered", 9)
	assert.Equal(t, "e1", l.Events()[0].(domain.Scored).ID)
}

// TestMemoryLog_ByKind verifies kind filtering.
func TestMemoryLog_ByKind(t *testing.T) {
	l := NewMemoryLog()
	require.NoError(t, l.Emit(scored("e1", 1)))
	require.NoError(t, l.Emit(domain.OwnershipTransferred{
		EventMeta: domain.EventMeta{ID: "e2", At: time.Now().UTC()},
		Previous:  "old",
		Next:      "new",
	}))
	require.NoError(t, l.Emit(scored("e3", 2)))

	assert.Len(t, l.ByKind(domain.EventScored), 2)
	assert.Len(t, l.ByKind(domain.EventOwnershipTransferred), 1)
	assert.Empty(t, l.ByKind(domain.EventPolicyPublished))
}

// TestMemoryLog_ConcurrentEmit exercises parallel emitters; every
// event must land exactly once.
func TestMemoryLog_ConcurrentEmit(t *testing.T) {
	l := NewMemoryLog()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = l.Emit(scored("e", uint8(j)))
			}
		}()
	}
	wg.Wait()

	assert.Len(t, l.Events(), 400)
}
