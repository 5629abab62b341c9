// Package metrics exposes hub activity as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/gray-logic-hub/internal/device"
)

const metricPrefix = "grayhub_"

// Metrics owns a private Prometheus registry with the hub collectors.
//
// It implements device.Listener and never calls back into the device
// registry from HandleEvent.
type Metrics struct {
	registry *prometheus.Registry

	events      *prometheus.CounterVec
	energy      *prometheus.CounterVec
	temperature *prometheus.GaugeVec
	humidity    *prometheus.GaugeVec
}

// New creates the collectors and registers them together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "device_events_total",
				Help: "Device events by type and device kind",
			},
			[]string{"type", "kind"},
		),
		energy: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "energy_kwh_total",
				Help: "Simulated energy consumed by device kind",
			},
			[]string{"kind"},
		),
		temperature: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "temperature_celsius",
				Help: "Last temperature reading per sensor",
			},
			[]string{"device"},
		),
		humidity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "humidity_percent",
				Help: "Last humidity reading per sensor",
			},
			[]string{"device"},
		),
	}

	m.registry.MustRegister(
		m.events,
		m.energy,
		m.temperature,
		m.humidity,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// HandleEvent implements device.Listener.
func (m *Metrics) HandleEvent(e device.Event) {
	m.events.WithLabelValues(string(e.Type), string(e.Kind)).Inc()

	switch e.Type {
	case device.EventEnergyReading:
		if kwh := e.Values["energy_kwh"]; kwh > 0 {
			m.energy.WithLabelValues(string(e.Kind)).Add(kwh)
		}
	case device.EventSensorReading:
		m.temperature.WithLabelValues(e.Device).Set(e.Values["temperature_c"])
		m.humidity.WithLabelValues(e.Device).Set(e.Values["humidity_pct"])
	case device.EventRemoved:
		m.forget(e.Device)
	case device.EventRenamed:
		m.forget(e.Detail)
	}
}

func (m *Metrics) forget(name string) {
	m.temperature.DeleteLabelValues(name)
	m.humidity.DeleteLabelValues(name)
}

// WatchDevices registers gauges computed from summaries at scrape time.
// summaries must be safe to call from the HTTP goroutine.
func (m *Metrics) WatchDevices(summaries func() []device.Summary) error {
	count := func(keep func(device.Summary) bool) func() float64 {
		return func() float64 {
			n := 0
			for _, s := range summaries() {
				if keep(s) {
					n++
				}
			}
			return float64(n)
		}
	}

	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: metricPrefix + "devices",
			Help: "Number of registered devices",
		}, count(func(device.Summary) bool { return true })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: metricPrefix + "devices_on",
			Help: "Number of devices switched on",
		}, count(func(s device.Summary) bool { return s.On })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: metricPrefix + "timers_running",
			Help: "Number of devices with a running countdown",
		}, count(func(s device.Summary) bool { return s.TimerRunning })),
	}
	for _, g := range gauges {
		if err := m.registry.Register(g); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
