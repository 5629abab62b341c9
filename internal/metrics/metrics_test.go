package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nerrad567/gray-logic-hub/internal/device"
)

func TestHandleEvent_CountsByTypeAndKind(t *testing.T) {
	m := New()

	m.HandleEvent(device.Event{Type: device.EventPower, Device: "Lamp", Kind: device.KindLight})
	m.HandleEvent(device.Event{Type: device.EventPower, Device: "Lamp", Kind: device.KindLight})
	m.HandleEvent(device.Event{Type: device.EventAdded, Device: "Fridge", Kind: device.KindPlug})

	if got := testutil.ToFloat64(m.events.WithLabelValues("power", "LIGHT")); got != 2 {
		t.Errorf("power/LIGHT = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues("added", "PLUG")); got != 1 {
		t.Errorf("added/PLUG = %v, want 1", got)
	}
}

func TestHandleEvent_Energy(t *testing.T) {
	m := New()
	m.HandleEvent(device.Event{
		Type: device.EventEnergyReading, Device: "Fridge", Kind: device.KindPlug,
		Values: map[string]float64{"energy_kwh": 1.5, "total_kwh": 1.5},
	})
	m.HandleEvent(device.Event{
		Type: device.EventEnergyReading, Device: "Fridge", Kind: device.KindPlug,
		Values: map[string]float64{"energy_kwh": 0.5, "total_kwh": 2},
	})

	if got := testutil.ToFloat64(m.energy.WithLabelValues("PLUG")); got != 2 {
		t.Errorf("energy PLUG = %v, want 2", got)
	}
}

func TestHandleEvent_SensorGaugesFollowDevice(t *testing.T) {
	m := New()
	kind := device.KindTempHumidity
	m.HandleEvent(device.Event{
		Type: device.EventSensorReading, Device: "Attic", Kind: kind,
		Values: map[string]float64{"temperature_c": 21.5, "humidity_pct": 40},
	})

	if got := testutil.ToFloat64(m.temperature.WithLabelValues("Attic")); got != 21.5 {
		t.Errorf("temperature = %v, want 21.5", got)
	}

	m.HandleEvent(device.Event{Type: device.EventRenamed, Device: "Loft", Kind: kind, Detail: "Attic"})
	if n := testutil.CollectAndCount(m.temperature); n != 0 {
		t.Errorf("temperature series after rename = %d, want 0", n)
	}

	m.HandleEvent(device.Event{
		Type: device.EventSensorReading, Device: "Loft", Kind: kind,
		Values: map[string]float64{"temperature_c": 19, "humidity_pct": 55},
	})
	m.HandleEvent(device.Event{Type: device.EventRemoved, Device: "Loft", Kind: kind})
	if n := testutil.CollectAndCount(m.humidity); n != 0 {
		t.Errorf("humidity series after remove = %d, want 0", n)
	}
}

func TestWatchDevices(t *testing.T) {
	m := New()
	summaries := []device.Summary{
		{Name: "Lamp", Kind: device.KindLight, On: true, TimerRunning: true},
		{Name: "Fridge", Kind: device.KindPlug, On: true},
		{Name: "Den", Kind: device.KindSpeaker},
	}
	if err := m.WatchDevices(func() []device.Summary { return summaries }); err != nil {
		t.Fatalf("WatchDevices() error = %v", err)
	}
	if err := m.WatchDevices(func() []device.Summary { return nil }); err == nil {
		t.Error("second WatchDevices() should fail with duplicate registration")
	}

	want := `
# HELP grayhub_devices_on Number of devices switched on
# TYPE grayhub_devices_on gauge
grayhub_devices_on 2
# HELP grayhub_timers_running Number of devices with a running countdown
# TYPE grayhub_timers_running gauge
grayhub_timers_running 1
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(want),
		"grayhub_devices_on", "grayhub_timers_running"); err != nil {
		t.Error(err)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.HandleEvent(device.Event{Type: device.EventAdded, Device: "Lamp", Kind: device.KindLight})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body) //nolint:errcheck // Test

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `grayhub_device_events_total{kind="LIGHT",type="added"} 1`) {
		t.Errorf("body missing event counter:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("body missing Go runtime metrics")
	}
}
