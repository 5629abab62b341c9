package device

import "time"

// EventType identifies what happened to a device.
type EventType string

// Event type constants.
const (
	EventAdded           EventType = "added"
	EventRemoved         EventType = "removed"
	EventRenamed         EventType = "renamed"
	EventPower           EventType = "power"
	EventPlayback        EventType = "playback"
	EventSetting         EventType = "setting"
	EventTimerStarted    EventType = "timer_started"
	EventTimerStopped    EventType = "timer_stopped"
	EventTimerExpired    EventType = "timer_expired"
	EventScheduleAdded   EventType = "schedule_added"
	EventScheduleRemoved EventType = "schedule_removed"
	EventEnergyReading   EventType = "energy_reading"
	EventSensorReading   EventType = "sensor_reading"
)

// Event describes a single observable change on a device.
//
// Events for timer expiry are emitted from the timer goroutine; every other
// event is emitted from the goroutine that called into the device.
type Event struct {
	Type   EventType
	Device string
	Kind   Kind
	On     bool

	// Values carries the numeric payload of the event, keyed by metric name
	// (brightness, volume, energy_kwh, total_kwh, temperature_c, humidity_pct,
	// seconds, hour, minute).
	Values map[string]float64

	// Detail is a free-form qualifier (previous name, schedule state).
	Detail string

	At time.Time
}

// Listener receives device events. Implementations must be safe for
// concurrent use because timer goroutines emit events too.
type Listener interface {
	HandleEvent(Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Event)

// HandleEvent implements Listener.
func (f ListenerFunc) HandleEvent(e Event) { f(e) }

// noopListener drops every event.
type noopListener struct{}

func (noopListener) HandleEvent(Event) {}
