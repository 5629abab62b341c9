package device

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// eventRecorder collects events from any goroutine.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) HandleEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (r *eventRecorder) last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}
	}
	return r.events[len(r.events)-1]
}

// memoryRepository is an in-memory Repository for registry tests.
type memoryRepository struct {
	mu        sync.Mutex
	snap      Snapshot
	schedules []NamedEntry
	saves     int
	loadErr   error
	writeErr  error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{}
}

func (m *memoryRepository) Load(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return Snapshot{}, m.loadErr
	}
	return m.snap, nil
}

func (m *memoryRepository) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	m.saves++
	return nil
}

func (m *memoryRepository) ReplaceSchedules(_ context.Context, entries []NamedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.schedules = entries
	return nil
}

// entriesFor returns the persisted entries stored under name.
func (m *memoryRepository) entriesFor(name string) []ScheduleEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ScheduleEntry
	for _, e := range m.schedules {
		if e.Name == name {
			out = append(out, e.Entry)
		}
	}
	return out
}

// scheduleSyncFunc adapts a function to ScheduleSync for devices tested
// without a registry.
type scheduleSyncFunc func() error

func (f scheduleSyncFunc) SyncSchedules() error { return f() }

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

// testRegistry returns a registry over an in-memory repository with a fast
// timer tick and a fake clock.
func testRegistry(t *testing.T) (*Registry, *memoryRepository, *fakeClock, *eventRecorder) {
	t.Helper()
	repo := newMemoryRepository()
	reg := NewRegistry(repo)
	clk := newFakeClock()
	rec := &eventRecorder{}
	reg.SetClock(clk.Now)
	reg.SetTimerTick(5 * time.Millisecond)
	reg.SetListener(rec)
	t.Cleanup(reg.Close)
	return reg, repo, clk, rec
}
