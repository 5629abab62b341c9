package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementEnergy  = "energy"
	MeasurementClimate = "climate"
)

// WriteEnergy records one metering step for a device: the energy added in
// this step and the running total. Non-blocking; points are batched.
func (c *Client) WriteEnergy(device, kind string, energyKWh, totalKWh float64, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(energyPoint(device, kind, energyKWh, totalKWh, at))
}

// WriteClimate records a temperature/humidity sample.
func (c *Client) WriteClimate(device string, temperatureC, humidityPct float64, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(climatePoint(device, temperatureC, humidityPct, at))
}

func energyPoint(device, kind string, energyKWh, totalKWh float64, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementEnergy,
		map[string]string{"device": device, "kind": kind},
		map[string]any{"energy_kwh": energyKWh, "total_kwh": totalKWh},
		at,
	)
}

func climatePoint(device string, temperatureC, humidityPct float64, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementClimate,
		map[string]string{"device": device},
		map[string]any{"temperature_c": temperatureC, "humidity_pct": humidityPct},
		at,
	)
}
