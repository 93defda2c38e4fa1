package engine

import (
	"sync"
	"time"
)

type debounceKey struct {
	UserID  string
	FieldID string
	Version int
}

// Debouncer batches rapid successive edits to one (user, field, version)
// slot: each call replaces the pending task and restarts the quiescence
// window, so only the latest value is propagated. Purely a cost saver for
// the translation provider; correctness is eventual convergence.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[debounceKey]*time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[debounceKey]*time.Timer),
	}
}

// Schedule queues fn to run after the quiescence window. A pending task for
// the same slot is cancelled first: a later edit wins and a stale value is
// never propagated over a fresh one.
func (d *Debouncer) Schedule(userID, fieldID string, version int, fn func()) {
	key := debounceKey{userID, fieldID, version}

	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.pending[key]; ok {
		t.Stop()
	}
	d.pending[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.pending, key)
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending task for one slot, if any.
func (d *Debouncer) Cancel(userID, fieldID string, version int) {
	key := debounceKey{userID, fieldID, version}

	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.pending[key]; ok {
		t.Stop()
		delete(d.pending, key)
	}
}

// CancelUser drops every pending task for a user. Used when the session
// moves on (navigation, working-language switch) so a delayed propagation
// cannot apply to a stale field snapshot.
func (d *Debouncer) CancelUser(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.pending {
		if key.UserID == userID {
			t.Stop()
			delete(d.pending, key)
		}
	}
}
