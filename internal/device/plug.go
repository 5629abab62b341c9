package device

import "fmt"

// Plug is a metered smart plug with a sleep timer and a schedule.
type Plug struct {
	base
	scheduled
	meter energyMeter
}

// NewPlug creates a plug that is off and has consumed nothing.
func NewPlug(name string) *Plug {
	p := &Plug{}
	p.init(KindPlug, name)
	p.meter.restart(&p.base)
	return p
}

func (p *Plug) bind(h Hooks) {
	p.base.bind(h)
	p.meter.restart(&p.base)
}

// UpdateEnergy accrues consumption up to now.
func (p *Plug) UpdateEnergy() { p.meter.update(&p.base) }

// TotalEnergy returns the accumulated consumption.
func (p *Plug) TotalEnergy() float64 { return p.meter.TotalEnergy() }

// UsageHistory returns the energy log.
func (p *Plug) UsageHistory() []EnergyReading { return p.meter.UsageHistory() }

// AddSchedule implements Scheduler.
func (p *Plug) AddSchedule(hour, minute int, state ScheduleState) error {
	return p.add(&p.base, hour, minute, state)
}

// RemoveSchedule implements Scheduler.
func (p *Plug) RemoveSchedule(index int) error {
	return p.remove(&p.base, index)
}

// PrimaryToggle switches the plug. Switching off stops the timer and then
// books the energy used since the last update.
func (p *Plug) PrimaryToggle() {
	if p.IsOn() {
		p.stopTimer(true)
		p.meter.update(&p.base)
	}
	on := p.toggle()
	p.meter.powerChanged(&p.base, on)
}

// QuickView implements Device.
func (p *Plug) QuickView() string {
	view := fmt.Sprintf("%s: %s (%.2f kWh total usage)", p.name, onOff(p.IsOn()), p.meter.TotalEnergy())
	if p.TimerRunning() {
		view += fmt.Sprintf(" [Timer: %d seconds remaining]", p.TimerRemaining())
	}
	return view
}

// Options implements Device.
func (p *Plug) Options() []Option {
	return []Option{
		{ID: 1, Label: "Toggle " + onOff(!p.IsOn()), Action: ActionDevice},
		{ID: 2, Label: "Set Sleep Timer", Action: ActionDevice, Params: []string{"seconds"}},
		{ID: 3, Label: "View Total Energy Usage", Action: ActionDevice},
		{ID: 4, Label: "View Historic Energy Usage", Action: ActionDevice},
		renameOption(),
		{ID: 6, Label: "View Schedule", Action: ActionDevice},
		{ID: 7, Label: "Delete Schedule", Action: ActionDevice, Params: []string{"schedule number"}},
		{ID: 8, Label: "Add Schedule", Action: ActionDevice, Params: []string{"state (on/off)", "hour (0-23)", "minute (0-59)"}},
		deleteOption(0),
		backOption(),
	}
}

// Apply implements Device.
func (p *Plug) Apply(id int, args ...string) (string, error) {
	switch id {
	case 1:
		p.PrimaryToggle()
		return fmt.Sprintf("%s is now %s.", p.name, onOff(p.IsOn())), nil
	case 2:
		secs, err := argInt(args, 0, "seconds")
		if err != nil {
			return "", err
		}
		if err := p.StartTimer(secs); err != nil {
			return "", err
		}
		return fmt.Sprintf("Sleep timer set for %d seconds.", secs), nil
	case 3:
		p.UpdateEnergy()
		return p.meter.totalView(), nil
	case 4:
		return p.meter.historyView(), nil
	case 6:
		return p.schedule.View(), nil
	case 7:
		return p.applyRemoveSchedule(&p.base, args)
	case 8:
		return p.applyAddSchedule(&p.base, args)
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidChoice, id)
	}
}

// Encode implements Device: PLUG|name|isOn|totalEnergy.
func (p *Plug) Encode() string {
	return p.recordHead() + fieldSeparator + formatFloat(p.meter.totalEnergy)
}

// Decode implements Device.
func (p *Plug) Decode(record string) error {
	d := newRecordDecoder(record)
	if !p.decodeHead(d) {
		return d.err()
	}
	var total float64
	if d.float(3, &total) && total >= 0 {
		p.meter.totalEnergy = total
	}
	p.meter.restart(&p.base)
	return d.err()
}
