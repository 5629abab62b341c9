package telemetry

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/nerrad567/gray-logic-hub/internal/audit"
	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/mqtt"
)

// JournalSink records device actions in the audit journal. Periodic energy
// and sensor readings are not actions and are skipped.
type JournalSink struct {
	repo audit.Repository
}

// NewJournalSink creates a journal sink.
func NewJournalSink(repo audit.Repository) *JournalSink {
	return &JournalSink{repo: repo}
}

// Name implements Sink.
func (*JournalSink) Name() string { return "journal" }

// Handle implements Sink.
func (s *JournalSink) Handle(ctx context.Context, e device.Event) error {
	if isReading(e.Type) {
		return nil
	}

	source := audit.SourceConsole
	if e.Type == device.EventTimerExpired {
		source = audit.SourceTimer
	}

	details := map[string]any{"on": e.On}
	for k, v := range e.Values {
		details[k] = v
	}
	if e.Detail != "" {
		details["detail"] = e.Detail
	}

	return s.repo.Create(ctx, &audit.Entry{
		Action:    string(e.Type),
		Device:    e.Device,
		Kind:      string(e.Kind),
		Source:    source,
		Details:   details,
		CreatedAt: e.At,
	})
}

// Publisher is the part of the MQTT client used for state publishing.
type Publisher interface {
	PublishJSON(topic string, v any, retained bool) error
	PublishRetained(topic string, payload []byte) error
}

// MQTTSink publishes every event on the device event topic and keeps a
// retained state message per device.
type MQTTSink struct {
	pub    Publisher
	topics mqtt.Topics
}

// NewMQTTSink creates an MQTT sink.
func NewMQTTSink(pub Publisher) *MQTTSink {
	return &MQTTSink{pub: pub}
}

// EventPayload is the JSON body on grayhub/event/{kind}/{device}.
type EventPayload struct {
	Type   string             `json:"type"`
	Device string             `json:"device"`
	Kind   string             `json:"kind"`
	On     bool               `json:"on"`
	Values map[string]float64 `json:"values,omitempty"`
	Detail string             `json:"detail,omitempty"`
	At     time.Time          `json:"at"`
}

// StatePayload is the retained JSON body on grayhub/state/{kind}/{device}.
type StatePayload struct {
	Device    string             `json:"device"`
	Kind      string             `json:"kind"`
	On        bool               `json:"on"`
	Values    map[string]float64 `json:"values,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Name implements Sink.
func (*MQTTSink) Name() string { return "mqtt" }

// Handle implements Sink.
func (s *MQTTSink) Handle(_ context.Context, e device.Event) error {
	kind := string(e.Kind)
	slug := device.GenerateSlug(e.Device)

	err := s.pub.PublishJSON(s.topics.DeviceEvent(kind, slug), EventPayload{
		Type:   string(e.Type),
		Device: e.Device,
		Kind:   kind,
		On:     e.On,
		Values: e.Values,
		Detail: e.Detail,
		At:     e.At,
	}, false)
	if err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}

	switch e.Type {
	case device.EventRemoved:
		// An empty retained message clears the state topic.
		return s.pub.PublishRetained(s.topics.DeviceState(kind, slug), nil)
	case device.EventRenamed:
		if err := s.pub.PublishRetained(s.topics.DeviceState(kind, device.GenerateSlug(e.Detail)), nil); err != nil {
			return err
		}
	case device.EventScheduleAdded, device.EventScheduleRemoved, device.EventTimerStarted:
		// Values describe the action, not the device state.
		return nil
	}

	return s.pub.PublishJSON(s.topics.DeviceState(kind, slug), StatePayload{
		Device:    e.Device,
		Kind:      kind,
		On:        e.On,
		Values:    maps.Clone(e.Values),
		UpdatedAt: e.At,
	}, true)
}

// PointWriter is the part of the InfluxDB client used for history.
type PointWriter interface {
	WriteEnergy(device, kind string, energyKWh, totalKWh float64, at time.Time)
	WriteClimate(device string, temperatureC, humidityPct float64, at time.Time)
}

// InfluxSink writes energy and climate readings as InfluxDB points.
type InfluxSink struct {
	w PointWriter
}

// NewInfluxSink creates an InfluxDB sink.
func NewInfluxSink(w PointWriter) *InfluxSink {
	return &InfluxSink{w: w}
}

// Name implements Sink.
func (*InfluxSink) Name() string { return "influxdb" }

// Handle implements Sink.
func (s *InfluxSink) Handle(_ context.Context, e device.Event) error {
	switch e.Type {
	case device.EventEnergyReading:
		s.w.WriteEnergy(e.Device, string(e.Kind), e.Values["energy_kwh"], e.Values["total_kwh"], e.At)
	case device.EventSensorReading:
		s.w.WriteClimate(e.Device, e.Values["temperature_c"], e.Values["humidity_pct"], e.At)
	}
	return nil
}

func isReading(t device.EventType) bool {
	return t == device.EventEnergyReading || t == device.EventSensorReading
}
