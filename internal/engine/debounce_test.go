package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerLatestEditWins(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var fired int64
	var got atomic.Value

	for _, text := range []string{"B", "Bo", "Bon", "Bonjour"} {
		text := text
		d.Schedule("u1", "f1", 1, func() {
			atomic.AddInt64(&fired, 1)
			got.Store(text)
		})
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&fired) == 1
	}, time.Second, 5*time.Millisecond)

	// Only the last scheduled task ran; intermediate keystrokes were
	// coalesced away.
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt64(&fired))
	assert.Equal(t, "Bonjour", got.Load())
}

func TestDebouncerSlotsAreIndependent(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var fired int64
	d.Schedule("u1", "f1", 1, func() { atomic.AddInt64(&fired, 1) })
	d.Schedule("u1", "f1", 2, func() { atomic.AddInt64(&fired, 1) })
	d.Schedule("u1", "f2", 1, func() { atomic.AddInt64(&fired, 1) })

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&fired) == 3
	}, time.Second, 5*time.Millisecond)
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var fired int64
	d.Schedule("u1", "f1", 1, func() { atomic.AddInt64(&fired, 1) })
	d.Cancel("u1", "f1", 1)

	time.Sleep(60 * time.Millisecond)
	assert.EqualValues(t, 0, atomic.LoadInt64(&fired))
}

func TestDebouncerCancelUserDropsOnlyThatUser(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var u1, u2 int64
	d.Schedule("u1", "f1", 1, func() { atomic.AddInt64(&u1, 1) })
	d.Schedule("u1", "f2", 1, func() { atomic.AddInt64(&u1, 1) })
	d.Schedule("u2", "f1", 1, func() { atomic.AddInt64(&u2, 1) })

	d.CancelUser("u1")

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&u2) == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.EqualValues(t, 0, atomic.LoadInt64(&u1))
}
