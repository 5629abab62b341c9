package device

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Simulated reading ranges.
const (
	minTemperature = 18.0
	maxTemperature = 30.0
	minHumidity    = 30.0
	maxHumidity    = 70.0
)

// TempHumiditySensor produces simulated climate readings and meters its
// own energy use.
type TempHumiditySensor struct {
	base
	meter    energyMeter
	readings []SensorReading

	// sample returns a value in [0,1). Replaced in tests.
	sample func() float64
}

// NewTempHumiditySensor creates a sensor that is off with no readings.
func NewTempHumiditySensor(name string) *TempHumiditySensor {
	s := &TempHumiditySensor{sample: rand.Float64}
	s.init(KindTempHumidity, name)
	s.meter.restart(&s.base)
	return s
}

func (s *TempHumiditySensor) bind(h Hooks) {
	s.base.bind(h)
	s.meter.restart(&s.base)
}

// UpdateReadings records a new sample and then accrues energy.
func (s *TempHumiditySensor) UpdateReadings() SensorReading {
	r := SensorReading{
		Temperature: minTemperature + s.sample()*(maxTemperature-minTemperature),
		Humidity:    minHumidity + s.sample()*(maxHumidity-minHumidity),
		Timestamp:   s.clock(),
	}
	s.readings = append(s.readings, r)
	s.emit(EventSensorReading, map[string]float64{"temperature_c": r.Temperature, "humidity_pct": r.Humidity}, "")
	s.meter.update(&s.base)
	return r
}

// Readings returns the sensor log in insertion order.
func (s *TempHumiditySensor) Readings() []SensorReading {
	out := make([]SensorReading, len(s.readings))
	copy(out, s.readings)
	return out
}

// UpdateEnergy accrues consumption up to now.
func (s *TempHumiditySensor) UpdateEnergy() { s.meter.update(&s.base) }

// TotalEnergy returns the accumulated consumption.
func (s *TempHumiditySensor) TotalEnergy() float64 { return s.meter.TotalEnergy() }

// UsageHistory returns the energy log.
func (s *TempHumiditySensor) UsageHistory() []EnergyReading { return s.meter.UsageHistory() }

// PrimaryToggle switches the sensor and books energy when it turns off.
func (s *TempHumiditySensor) PrimaryToggle() {
	if s.IsOn() {
		s.meter.update(&s.base)
	}
	on := s.toggle()
	s.meter.powerChanged(&s.base, on)
}

// QuickView implements Device.
func (s *TempHumiditySensor) QuickView() string {
	return fmt.Sprintf("%s: %s | Total Energy: %.2f kWh", s.name, onOff(s.IsOn()), s.meter.TotalEnergy())
}

// Options implements Device.
func (s *TempHumiditySensor) Options() []Option {
	return []Option{
		{ID: 1, Label: "Toggle " + onOff(!s.IsOn()), Action: ActionDevice},
		{ID: 2, Label: "Update Sensor Readings", Action: ActionDevice},
		{ID: 3, Label: "View Historic Temperature/Humidity Data", Action: ActionDevice},
		{ID: 4, Label: "View Total Energy Usage", Action: ActionDevice},
		renameOption(),
		deleteOption(6),
		backOption(),
	}
}

// Apply implements Device.
func (s *TempHumiditySensor) Apply(id int, _ ...string) (string, error) {
	switch id {
	case 1:
		s.PrimaryToggle()
		return fmt.Sprintf("%s is now %s.", s.name, onOff(s.IsOn())), nil
	case 2:
		r := s.UpdateReadings()
		return fmt.Sprintf("Temperature: %.1fC\nHumidity: %.1f%%", r.Temperature, r.Humidity), nil
	case 3:
		return s.readingsView(), nil
	case 4:
		s.meter.update(&s.base)
		return s.meter.totalView(), nil
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidChoice, id)
	}
}

func (s *TempHumiditySensor) readingsView() string {
	if len(s.readings) == 0 {
		return "No sensor readings recorded yet."
	}
	var b strings.Builder
	for i, r := range s.readings {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "Temperature: %.1fC, Humidity: %.1f%%, Timestamp: %s",
			r.Temperature, r.Humidity, r.Timestamp.Format(timestampLayout))
	}
	return b.String()
}

// Encode implements Device: TEMPHUMIDITY|name|isOn|totalEnergy.
func (s *TempHumiditySensor) Encode() string {
	return s.recordHead() + fieldSeparator + formatFloat(s.meter.totalEnergy)
}

// Decode implements Device.
func (s *TempHumiditySensor) Decode(record string) error {
	d := newRecordDecoder(record)
	if !s.decodeHead(d) {
		return d.err()
	}
	var total float64
	if d.float(3, &total) && total >= 0 {
		s.meter.totalEnergy = total
	}
	s.meter.restart(&s.base)
	return d.err()
}
