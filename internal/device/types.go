package device

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the discriminator tag written as the first field of a device record.
type Kind string

// Kind constants. The string values are the on-disk tags.
const (
	KindLight        Kind = "LIGHT"
	KindPlug         Kind = "PLUG"
	KindSpeaker      Kind = "SPEAKER"
	KindThermostat   Kind = "THERMOSTAT"
	KindRadiator     Kind = "RADIATOR"
	KindTempHumidity Kind = "TEMPHUMIDITY"
)

// AllKinds returns every kind in the order the add-device menu lists them.
func AllKinds() []Kind {
	return []Kind{
		KindLight, KindTempHumidity, KindSpeaker,
		KindThermostat, KindPlug, KindRadiator,
	}
}

// kindLabels maps each kind to its display label. The label is also the
// primary key when sorting by type.
var kindLabels = map[Kind]string{
	KindLight:        "Smart Light",
	KindPlug:         "Smart Plug",
	KindSpeaker:      "Speaker",
	KindThermostat:   "Thermostat",
	KindRadiator:     "Radiator Valve",
	KindTempHumidity: "TempHumidity Sensor",
}

// Label returns the human-readable name of the kind.
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// Valid reports whether k is one of the six known kinds.
func (k Kind) Valid() bool {
	_, ok := kindLabels[k]
	return ok
}

// ParseKind resolves a tag ("LIGHT"), label ("Smart Light") or add-menu
// number ("1") to a Kind. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	kinds := AllKinds()
	for i, k := range kinds {
		if s == fmt.Sprint(i+1) || strings.EqualFold(s, string(k)) || strings.EqualFold(s, k.Label()) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// New constructs an unbound device of the given kind with default state.
// Devices must be added to a Registry before their timers or schedules
// report events or write through to storage.
func New(kind Kind, name string) (Device, error) {
	switch kind {
	case KindLight:
		return NewLight(name), nil
	case KindPlug:
		return NewPlug(name), nil
	case KindSpeaker:
		return NewSpeaker(name), nil
	case KindThermostat:
		return NewThermostat(name), nil
	case KindRadiator:
		return NewRadiatorValve(name), nil
	case KindTempHumidity:
		return NewTempHumiditySensor(name), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Action says who handles a menu option.
type Action int

// Action constants.
const (
	// ActionDevice options are handled by Device.Apply.
	ActionDevice Action = iota
	// ActionRename edits the device name and ends the session.
	ActionRename
	// ActionDelete removes the device from the registry and ends the session.
	ActionDelete
	// ActionBack ends the session.
	ActionBack
)

// Option is one entry of a device menu.
type Option struct {
	ID     int
	Label  string
	Action Action

	// Params names the arguments Apply expects for this option, in order.
	// Empty means the option takes no input.
	Params []string
}

// String renders the option the way the console prints it.
func (o Option) String() string {
	return fmt.Sprintf("%d: %s", o.ID, o.Label)
}

// Common menu entries shared by every variant.
const (
	optionRename = 5
	optionBack   = 9
)

func renameOption() Option {
	return Option{ID: optionRename, Label: "Edit Device Name", Action: ActionRename, Params: []string{"new name"}}
}

func backOption() Option {
	return Option{ID: optionBack, Label: "Back to Main Menu", Action: ActionBack}
}

func deleteOption(id int) Option {
	return Option{ID: id, Label: "Delete Device", Action: ActionDelete}
}

// EnergyReading is one entry of a device's energy log.
type EnergyReading struct {
	Energy    float64
	Timestamp time.Time
}

// SensorReading is one simulated climate sample.
type SensorReading struct {
	Temperature float64
	Humidity    float64
	Timestamp   time.Time
}

// timestampLayout formats log timestamps in menu output.
const timestampLayout = "2006-01-02 15:04:05"
