package device

import (
	"fmt"
	"strings"
	"time"
)

// energyPerSecond is the simulated draw of a device while it is on.
const energyPerSecond = 0.5

// energyMeter accrues simulated consumption for Plug and TempHumiditySensor.
type energyMeter struct {
	totalEnergy float64
	lastUpdate  time.Time
	usage       []EnergyReading
}

// update accrues energy for every whole second elapsed since the last
// update while the device is on, and logs one reading when anything accrued.
// Fractional seconds carry over to the next call.
func (m *energyMeter) update(b *base) {
	now := b.clock()
	if !b.isOn.Load() {
		return
	}
	if m.lastUpdate.IsZero() {
		m.lastUpdate = now
		return
	}

	secs := int64(now.Sub(m.lastUpdate) / time.Second)
	if secs < 1 {
		return
	}

	consumed := energyPerSecond * float64(secs)
	m.totalEnergy += consumed
	m.lastUpdate = m.lastUpdate.Add(time.Duration(secs) * time.Second)
	m.usage = append(m.usage, EnergyReading{Energy: consumed, Timestamp: now})

	b.emit(EventEnergyReading, map[string]float64{"energy_kwh": consumed, "total_kwh": m.totalEnergy}, "")
}

// powerChanged restarts the accrual window when the device switches on.
func (m *energyMeter) powerChanged(b *base, on bool) {
	if on {
		m.lastUpdate = b.clock()
	}
}

// restart opens a fresh accrual window, used once the clock is bound.
func (m *energyMeter) restart(b *base) {
	m.lastUpdate = b.clock()
}

// TotalEnergy returns the accumulated consumption.
func (m *energyMeter) TotalEnergy() float64 {
	return m.totalEnergy
}

// UsageHistory returns a copy of the energy log in insertion order.
func (m *energyMeter) UsageHistory() []EnergyReading {
	out := make([]EnergyReading, len(m.usage))
	copy(out, m.usage)
	return out
}

func (m *energyMeter) totalView() string {
	return fmt.Sprintf("Total Energy Usage: %.2f kWh", m.totalEnergy)
}

func (m *energyMeter) historyView() string {
	if len(m.usage) == 0 {
		return "No energy usage recorded."
	}
	var b strings.Builder
	for i, r := range m.usage {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s - %.2f kWh", r.Timestamp.Format(timestampLayout), r.Energy)
	}
	return b.String()
}
