package device

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Device is the contract every simulated appliance satisfies.
//
// The set of implementations is closed: the unexported bind method keeps
// other packages from adding variants, and New dispatches on Kind.
//
// All methods except TimerRunning, TimerRemaining and IsOn must be called
// from the goroutine that owns the Registry.
type Device interface {
	Name() string
	SetName(name string)
	IsOn() bool
	Kind() Kind
	Label() string

	// QuickView renders one status line. It has no side effects.
	QuickView() string

	// PrimaryToggle performs the one-click action for the variant.
	PrimaryToggle()

	// Options lists the device menu in display order.
	Options() []Option

	// Apply runs a device-handled option and returns the text to show.
	// Rename, delete and back options are handled by Session.
	Apply(id int, args ...string) (string, error)

	// Encode renders the device as a single record line without newline.
	Encode() string

	// Decode applies the fields of record to the device. Fields that
	// cannot be parsed are skipped and reported as ErrMalformedRecord.
	Decode(record string) error

	StartTimer(seconds int) error
	StopTimer()
	TimerRunning() bool
	TimerRemaining() int

	bind(h Hooks)
	core() *base
}

// ScheduleSync persists schedules after a device's schedule changes.
// The Registry implements it by rewriting every device's schedule lines,
// so devices sharing a name never overwrite each other's entries.
type ScheduleSync interface {
	SyncSchedules() error
}

// Hooks are the collaborators a Registry injects into its devices.
// Zero fields leave the device defaults in place.
type Hooks struct {
	Listener  Listener
	Schedules ScheduleSync
	TimerTick time.Duration
	Clock     func() time.Time
}

// base holds the state shared by every variant.
type base struct {
	kind  Kind
	name  string
	isOn  atomic.Bool
	timer Timer

	tick      time.Duration
	clock     func() time.Time
	listener  Listener
	schedules ScheduleSync
}

func (b *base) init(kind Kind, name string) {
	b.kind = kind
	b.name = name
	b.tick = defaultTimerTick
	b.clock = time.Now
	b.listener = noopListener{}
}

func (b *base) Name() string        { return b.name }
func (b *base) Kind() Kind          { return b.kind }
func (b *base) Label() string       { return b.kind.Label() }
func (b *base) IsOn() bool          { return b.isOn.Load() }
func (b *base) TimerRunning() bool  { return b.timer.Running() }
func (b *base) TimerRemaining() int { return b.timer.Remaining() }
func (b *base) core() *base         { return b }

// StopTimer cancels a running countdown. The device stays on.
func (b *base) StopTimer() { b.stopTimer(true) }

// toggle flips the power flag and reports the new value.
func (b *base) toggle() bool {
	on := !b.isOn.Load()
	b.isOn.Store(on)
	b.emit(EventPower, nil, "")
	return on
}

func (b *base) recordHead() string {
	return string(b.kind) + fieldSeparator + b.name + fieldSeparator + formatBool(b.isOn.Load())
}

// SetName replaces the device name. Callers validate with ValidateName.
func (b *base) SetName(name string) {
	prev := b.name
	b.name = name
	b.emit(EventRenamed, nil, prev)
}

func (b *base) bind(h Hooks) {
	if h.Listener != nil {
		b.listener = h.Listener
	}
	if h.Schedules != nil {
		b.schedules = h.Schedules
	}
	if h.TimerTick > 0 {
		b.tick = h.TimerTick
	}
	if h.Clock != nil {
		b.clock = h.Clock
	}
}

// StartTimer counts down seconds ticks and then switches the device off.
// A running timer is replaced.
func (b *base) StartTimer(seconds int) error {
	if !b.isOn.Load() {
		return fmt.Errorf("%w: cannot start timer while %s is off", ErrDeviceOff, b.name)
	}
	if seconds <= 0 {
		return fmt.Errorf("%w: timer duration must be positive, got %d", ErrOutOfRange, seconds)
	}

	// Captured so the countdown goroutine never reads mutable fields.
	name, kind, listener, clock := b.name, b.kind, b.listener, b.clock
	b.timer.start(seconds, b.tick, &b.isOn, func() {
		listener.HandleEvent(Event{Type: EventTimerExpired, Device: name, Kind: kind, On: false, At: clock()})
	})

	b.emit(EventTimerStarted, map[string]float64{"seconds": float64(seconds)}, "")
	return nil
}

func (b *base) stopTimer(notify bool) {
	wasRunning := b.timer.Running()
	b.timer.Stop()
	if notify && wasRunning {
		b.emit(EventTimerStopped, nil, "")
	}
}

func (b *base) emit(t EventType, values map[string]float64, detail string) {
	b.listener.HandleEvent(Event{
		Type:   t,
		Device: b.name,
		Kind:   b.kind,
		On:     b.isOn.Load(),
		Values: values,
		Detail: detail,
		At:     b.clock(),
	})
}

// decodeHead applies the shared tag, name and power fields.
// It reports false when the tag does not belong to this device.
func (b *base) decodeHead(d *recordDecoder) bool {
	if Kind(d.field(0)) != b.kind {
		d.fail(0, "tag %q does not match %s", d.field(0), b.kind)
		return false
	}
	if name := d.field(1); name != "" {
		b.name = name
	}
	var on bool
	if d.boolean(2, &on) {
		b.isOn.Store(on)
	}
	return true
}

func onOff(on bool) string {
	if on {
		return "On"
	}
	return "Off"
}
