package device

import (
	"fmt"
	"strconv"
	"strings"
)

// heating is the behaviour shared by Thermostat and RadiatorValve.
type heating struct {
	base
	scheduled
}

// PrimaryToggle switches heating on or off.
func (h *heating) PrimaryToggle() { h.toggle() }

// QuickView implements Device.
func (h *heating) QuickView() string {
	if h.IsOn() {
		return h.name + ": Heating On"
	}
	return h.name + ": Heating Off"
}

// AddSchedule implements Scheduler.
func (h *heating) AddSchedule(hour, minute int, state ScheduleState) error {
	return h.add(&h.base, hour, minute, state)
}

// RemoveSchedule implements Scheduler.
func (h *heating) RemoveSchedule(index int) error {
	return h.remove(&h.base, index)
}

// Encode implements Device: TAG|name|isOn.
func (h *heating) Encode() string {
	return h.recordHead()
}

// Decode implements Device.
func (h *heating) Decode(record string) error {
	d := newRecordDecoder(record)
	h.decodeHead(d)
	return d.err()
}

func (h *heating) toggleMessage() string {
	return fmt.Sprintf("%s heating is now %s.", h.name, onOff(h.IsOn()))
}

// Thermostat is a schedulable heating controller.
type Thermostat struct {
	heating
}

// NewThermostat creates a thermostat with heating off and no schedule.
func NewThermostat(name string) *Thermostat {
	t := &Thermostat{}
	t.init(KindThermostat, name)
	return t
}

// Options implements Device.
func (t *Thermostat) Options() []Option {
	return []Option{
		{ID: 1, Label: "Toggle Heating " + onOff(!t.IsOn()), Action: ActionDevice},
		{ID: 2, Label: "Add Schedule", Action: ActionDevice, Params: []string{"state (on/off)", "hour (0-23)", "minute (0-59)"}},
		{ID: 3, Label: "View Schedule", Action: ActionDevice},
		{ID: 4, Label: "Delete Schedule", Action: ActionDevice, Params: []string{"schedule number"}},
		renameOption(),
		deleteOption(6),
		backOption(),
	}
}

// Apply implements Device.
func (t *Thermostat) Apply(id int, args ...string) (string, error) {
	switch id {
	case 1:
		t.PrimaryToggle()
		return t.toggleMessage(), nil
	case 2:
		return t.applyAddSchedule(&t.base, args)
	case 3:
		return t.schedule.View(), nil
	case 4:
		return t.applyRemoveSchedule(&t.base, args)
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidChoice, id)
	}
}

// RadiatorValve is a schedulable valve that also accepts a target
// temperature prompt.
type RadiatorValve struct {
	heating
}

// NewRadiatorValve creates a valve with heating off and no schedule.
func NewRadiatorValve(name string) *RadiatorValve {
	r := &RadiatorValve{}
	r.init(KindRadiator, name)
	return r
}

// Options implements Device.
func (r *RadiatorValve) Options() []Option {
	return []Option{
		{ID: 1, Label: "Toggle Heating " + onOff(!r.IsOn()), Action: ActionDevice},
		{ID: 2, Label: "Set Target Temperature", Action: ActionDevice, Params: []string{"target temperature (C)"}},
		{ID: 3, Label: "Add Schedule", Action: ActionDevice, Params: []string{"state (on/off)", "hour (0-23)", "minute (0-59)"}},
		{ID: 4, Label: "View Schedule", Action: ActionDevice},
		renameOption(),
		{ID: 6, Label: "Delete Schedule", Action: ActionDevice, Params: []string{"schedule number"}},
		deleteOption(7),
		backOption(),
	}
}

// Apply implements Device.
func (r *RadiatorValve) Apply(id int, args ...string) (string, error) {
	switch id {
	case 1:
		r.PrimaryToggle()
		return r.toggleMessage(), nil
	case 2:
		// The target is acknowledged only; valves keep no setpoint.
		if len(args) == 0 {
			return "", fmt.Errorf("%w: missing target temperature", ErrOutOfRange)
		}
		temp, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
		if err != nil {
			return "", fmt.Errorf("%w: target temperature must be a number, got %q", ErrOutOfRange, args[0])
		}
		return fmt.Sprintf("Target temperature set to %sC.", formatFloat(temp)), nil
	case 3:
		return r.applyAddSchedule(&r.base, args)
	case 4:
		return r.schedule.View(), nil
	case 6:
		return r.applyRemoveSchedule(&r.base, args)
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidChoice, id)
	}
}
