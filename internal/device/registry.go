package device

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry is the ordered collection of devices in the hub.
//
// The registry owns every device it holds. All device mutation goes through
// registry methods or a Session, which serialise on one mutex; timer
// goroutines only touch device atomics. Read-only views (ListQuickViews,
// Summaries) may be called from other goroutines such as the admin API.
type Registry struct {
	mu      sync.RWMutex
	devices []Device

	repo   Repository
	hooks  Hooks
	logger Logger
}

// NewRegistry creates an empty registry persisting through repo.
func NewRegistry(repo Repository) *Registry {
	r := &Registry{
		repo:   repo,
		logger: noopLogger{},
	}
	r.hooks = Hooks{Schedules: r, Listener: noopListener{}}
	return r
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetListener routes device events to l. Devices already held are rebound.
func (r *Registry) SetListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks.Listener = l
	r.rebindLocked()
}

// SetTimerTick changes the countdown resolution for every device.
// Intended for tests; production uses one second.
func (r *Registry) SetTimerTick(tick time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks.TimerTick = tick
	r.rebindLocked()
}

// SetClock replaces the time source used for energy accounting and events.
func (r *Registry) SetClock(clock func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks.Clock = clock
	r.rebindLocked()
}

func (r *Registry) rebindLocked() {
	for _, d := range r.devices {
		d.bind(r.hooks)
	}
}

// Load replaces the registry content with the store content.
//
// Records with an unknown tag or no usable name are skipped. Records with
// unparseable fields keep whatever decoded. Schedule lines are attached to
// the first schedulable device with exactly that name; orphans are dropped.
func (r *Registry) Load(ctx context.Context) error {
	snap, err := r.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading devices: %w", err)
	}

	devices := make([]Device, 0, len(snap.Records))
	for _, record := range snap.Records {
		d, err := decodeRecord(record)
		if d == nil {
			r.logger.Warn("skipping device record", "error", err)
			continue
		}
		if err != nil {
			r.logger.Warn("device record partially decoded", "device", d.Name(), "error", err)
		}
		d.bind(r.hooks)
		devices = append(devices, d)
	}

	attached, orphaned := 0, 0
	for _, s := range snap.Schedules {
		if sd := firstSchedulable(devices, s.Name); sd != nil {
			sd.attachSchedule(s.Entry)
			attached++
			continue
		}
		orphaned++
	}

	r.mu.Lock()
	old := r.devices
	r.devices = devices
	r.mu.Unlock()

	for _, d := range old {
		d.core().stopTimer(false)
	}

	r.logger.Info("devices loaded",
		"count", len(devices),
		"schedules", attached,
		"orphaned_schedules", orphaned,
		"skipped_lines", snap.Skipped,
	)
	return nil
}

// decodeRecord rebuilds a device from its record. A nil device means the
// record could not be used at all.
func decodeRecord(record string) (Device, error) {
	tag, _, _ := strings.Cut(record, fieldSeparator)
	d, err := New(Kind(tag), "")
	if err != nil {
		return nil, err
	}
	err = d.Decode(record)
	if nameErr := ValidateName(d.Name()); nameErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, nameErr)
	}
	return d, err
}

func firstSchedulable(devices []Device, name string) Scheduler {
	for _, d := range devices {
		if sd, ok := d.(Scheduler); ok && d.Name() == name {
			return sd
		}
	}
	return nil
}

// Save writes every device followed by every schedule to the store.
func (r *Registry) Save(ctx context.Context) error {
	r.mu.RLock()
	snap := Snapshot{Records: make([]string, 0, len(r.devices))}
	for _, d := range r.devices {
		snap.Records = append(snap.Records, d.Encode())
	}
	snap.Schedules = scheduleEntries(r.devices)
	r.mu.RUnlock()

	if err := r.repo.Save(ctx, snap); err != nil {
		return fmt.Errorf("saving devices: %w", err)
	}
	r.logger.Info("devices saved", "count", len(snap.Records), "schedules", len(snap.Schedules))
	return nil
}

// SyncSchedules rewrites every schedule line in the store from the
// registry, in registry order. Devices call it after each schedule change.
//
// It reads the device list without locking: schedule changes run on the
// goroutine that drives the registry, which is the only writer of the
// list and may already hold the lock.
func (r *Registry) SyncSchedules() error {
	entries := scheduleEntries(r.devices)
	if err := r.repo.ReplaceSchedules(context.Background(), entries); err != nil {
		return fmt.Errorf("writing schedules: %w", err)
	}
	return nil
}

// scheduleEntries lists every schedule entry of devices in order.
func scheduleEntries(devices []Device) []NamedEntry {
	var out []NamedEntry
	for _, d := range devices {
		if sd, ok := d.(Scheduler); ok {
			for _, e := range sd.Schedule() {
				out = append(out, NamedEntry{Name: d.Name(), Entry: e})
			}
		}
	}
	return out
}

// Count returns the number of devices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// Find returns the first device whose name matches case-insensitively.
func (r *Registry) Find(name string) (Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, d, err := r.findLocked(name)
	return d, err
}

func (r *Registry) findLocked(name string) (int, Device, error) {
	name = strings.TrimSpace(name)
	for i, d := range r.devices {
		if strings.EqualFold(d.Name(), name) {
			return i, d, nil
		}
	}
	return -1, nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
}

// AddDevice creates a device with default state and appends it.
// Duplicate names are accepted.
func (r *Registry) AddDevice(kind Kind, name string) (Device, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	d, err := New(kind, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	d.bind(r.hooks)
	r.devices = append(r.devices, d)
	r.mu.Unlock()

	d.core().emit(EventAdded, nil, "")
	r.logger.Info("device added", "device", d.Name(), "kind", string(kind))
	return d, nil
}

// RemoveDevice deletes the first device matching name case-insensitively.
// Its timer is stopped and its schedule lines are dropped from the store.
func (r *Registry) RemoveDevice(name string) error {
	r.mu.Lock()
	i, d, err := r.findLocked(name)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.devices = slices.Delete(r.devices, i, i+1)
	r.mu.Unlock()

	return r.retire(d)
}

// removeDevice deletes exactly d, which may share its name with others.
func (r *Registry) removeDevice(d Device) error {
	r.mu.Lock()
	i := slices.Index(r.devices, d)
	if i < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDeviceNotFound, d.Name())
	}
	r.devices = slices.Delete(r.devices, i, i+1)
	r.mu.Unlock()

	return r.retire(d)
}

func (r *Registry) retire(d Device) error {
	d.core().stopTimer(false)
	d.core().emit(EventRemoved, nil, "")
	r.logger.Info("device removed", "device", d.Name(), "kind", string(d.Kind()))

	if sd, ok := d.(Scheduler); ok && len(sd.Schedule()) > 0 {
		if err := r.SyncSchedules(); err != nil {
			return fmt.Errorf("dropping schedules for %s: %w", d.Name(), err)
		}
	}
	return nil
}

// Rename validates newName, renames d and moves its schedule lines.
func (r *Registry) Rename(d Device, newName string) error {
	if err := ValidateName(newName); err != nil {
		return err
	}
	newName = strings.TrimSpace(newName)

	r.mu.Lock()
	defer r.mu.Unlock()

	oldName := d.Name()
	d.SetName(newName)
	r.logger.Info("device renamed", "from", oldName, "to", newName)

	sd, ok := d.(Scheduler)
	if !ok || oldName == newName || len(sd.Schedule()) == 0 {
		return nil
	}
	if err := r.SyncSchedules(); err != nil {
		return fmt.Errorf("moving schedules from %s to %s: %w", oldName, newName, err)
	}
	return nil
}

// SortByName orders devices by name, case-insensitively. Equal names keep
// their relative order.
func (r *Registry) SortByName() {
	r.mu.Lock()
	defer r.mu.Unlock()
	slices.SortStableFunc(r.devices, func(a, b Device) int {
		return compareFold(a.Name(), b.Name())
	})
}

// SortByType orders devices by display label, then by name.
func (r *Registry) SortByType() {
	r.mu.Lock()
	defer r.mu.Unlock()
	slices.SortStableFunc(r.devices, func(a, b Device) int {
		return cmp.Or(
			compareFold(a.Label(), b.Label()),
			compareFold(a.Name(), b.Name()),
		)
	})
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// ListQuickViews returns one status line per device in registry order.
func (r *Registry) ListQuickViews() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	views := make([]string, len(r.devices))
	for i, d := range r.devices {
		views[i] = d.QuickView()
	}
	return views
}

// Summary is a read-only view of one device.
type Summary struct {
	Name           string
	Kind           Kind
	Label          string
	On             bool
	QuickView      string
	TimerRunning   bool
	TimerRemaining int
}

// Summaries returns a view of every device in registry order.
func (r *Registry) Summaries() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, len(r.devices))
	for i, d := range r.devices {
		out[i] = Summary{
			Name:           d.Name(),
			Kind:           d.Kind(),
			Label:          d.Label(),
			On:             d.IsOn(),
			QuickView:      d.QuickView(),
			TimerRunning:   d.TimerRunning(),
			TimerRemaining: d.TimerRemaining(),
		}
	}
	return out
}

// OneClickAction runs the primary toggle of the named device and returns
// its new quick view.
func (r *Registry) OneClickAction(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, d, err := r.findLocked(name)
	if err != nil {
		return "", err
	}
	d.PrimaryToggle()
	return d.QuickView(), nil
}

// OpenSession starts an interactive menu session on the named device.
func (r *Registry) OpenSession(name string) (*Session, error) {
	d, err := r.Find(name)
	if err != nil {
		return nil, err
	}
	return newSession(r, d), nil
}

// apply runs a device option under the registry lock.
func (r *Registry) apply(d Device, id int, args []string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return d.Apply(id, args...)
}

// Close stops every timer and waits for the countdown goroutines to exit.
// The registry stays usable; Save is still allowed afterwards.
func (r *Registry) Close() {
	r.mu.RLock()
	devices := slices.Clone(r.devices)
	r.mu.RUnlock()

	stopped := 0
	for _, d := range devices {
		if d.TimerRunning() {
			stopped++
		}
		d.core().stopTimer(false)
	}
	r.logger.Debug("device timers stopped", "count", stopped)
}

// IsNotFound reports whether err means a device lookup failed.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDeviceNotFound)
}
