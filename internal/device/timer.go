package device

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// defaultTimerTick is the countdown resolution: one tick is one second.
const defaultTimerTick = time.Second

// Timer is a per-device countdown that switches its device off on expiry.
//
// At most one countdown goroutine exists per Timer. Starting a new countdown
// cancels the previous goroutine and waits for it to exit before the new one
// is spawned, so two goroutines never decrement the same counter.
//
// Thread Safety:
//   - Remaining and Running may be read from any goroutine.
//   - start and Stop serialise on an internal mutex.
type Timer struct {
	remaining atomic.Int64
	running   atomic.Bool

	mu     sync.Mutex // guards cancel/done handoff
	cancel context.CancelFunc
	done   chan struct{}
}

// Remaining returns the seconds (ticks) left on the countdown.
func (t *Timer) Remaining() int {
	return int(t.remaining.Load())
}

// Running reports whether a countdown is active.
func (t *Timer) Running() bool {
	return t.running.Load()
}

// start begins a countdown of the given number of ticks. power is the owning
// device's on flag; onExpire runs on the countdown goroutine after power has
// been cleared by expiry.
func (t *Timer) start(ticks int, tick time.Duration, power *atomic.Bool, onExpire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Last writer wins: retire any running countdown first.
	t.stopLocked()

	if tick <= 0 {
		tick = defaultTimerTick
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	t.remaining.Store(int64(ticks))
	t.running.Store(true)
	t.cancel = cancel
	t.done = done

	go t.run(ctx, done, tick, power, onExpire)
}

// run decrements the counter once per tick until expiry or cancellation.
func (t *Timer) run(ctx context.Context, done chan struct{}, tick time.Duration, power *atomic.Bool, onExpire func()) {
	defer close(done)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// Device switched off or timer stopped since the last tick.
		if !t.running.Load() || !power.Load() {
			t.running.Store(false)
			return
		}

		if t.remaining.Add(-1) > 0 {
			continue
		}

		if t.running.CompareAndSwap(true, false) && power.CompareAndSwap(true, false) {
			if onExpire != nil {
				onExpire()
			}
		}
		return
	}
}

// Stop cancels the countdown and waits for its goroutine to exit.
// Safe to call when no countdown is active.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	t.running.Store(false)
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel = nil
	t.done = nil
}
