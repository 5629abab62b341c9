package device

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestRegistry_AddDevice(t *testing.T) {
	reg, _, _, rec := testRegistry(t)

	d, err := reg.AddDevice(KindLight, "  Lamp ")
	if err != nil {
		t.Fatalf("AddDevice() error = %v", err)
	}
	if d.Name() != "Lamp" {
		t.Errorf("Name() = %q, want trimmed", d.Name())
	}
	if reg.Count() != 1 {
		t.Errorf("Count() = %d, want 1", reg.Count())
	}
	if rec.count(EventAdded) != 1 {
		t.Errorf("added events = %d", rec.count(EventAdded))
	}

	// Duplicates are accepted.
	if _, err := reg.AddDevice(KindPlug, "lamp"); err != nil {
		t.Errorf("AddDevice(duplicate) error = %v", err)
	}

	if _, err := reg.AddDevice(KindLight, "bad|name"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("AddDevice(bad|name) error = %v, want ErrInvalidName", err)
	}
	if _, err := reg.AddDevice(Kind("TOASTER"), "Toaster"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("AddDevice(TOASTER) error = %v, want ErrUnknownKind", err)
	}
}

func TestRegistry_FindCaseInsensitive(t *testing.T) {
	reg, _, _, _ := testRegistry(t)
	first, _ := reg.AddDevice(KindLight, "Lamp")
	_, _ = reg.AddDevice(KindLight, "LAMP")

	for _, q := range []string{"lamp", "LAMP", "Lamp", " lamp "} {
		got, err := reg.Find(q)
		if err != nil {
			t.Fatalf("Find(%q) error = %v", q, err)
		}
		if got != first {
			t.Errorf("Find(%q) should return the first match", q)
		}
	}

	if _, err := reg.Find("lamp2"); !IsNotFound(err) {
		t.Errorf("Find(lamp2) error = %v, want ErrDeviceNotFound", err)
	}
}

func TestRegistry_RemoveDevice(t *testing.T) {
	reg, repo, _, rec := testRegistry(t)
	plug, _ := reg.AddDevice(KindPlug, "Fridge")
	_, _ = reg.AddDevice(KindLight, "Lamp")

	sd := plug.(Scheduler)
	if err := sd.AddSchedule(7, 30, ScheduleOn); err != nil {
		t.Fatalf("AddSchedule() error = %v", err)
	}
	plug.PrimaryToggle()
	if err := plug.StartTimer(1000); err != nil {
		t.Fatalf("StartTimer() error = %v", err)
	}

	if err := reg.RemoveDevice("FRIDGE"); err != nil {
		t.Fatalf("RemoveDevice() error = %v", err)
	}
	if reg.Count() != 1 {
		t.Errorf("Count() = %d, want 1", reg.Count())
	}
	if plug.TimerRunning() {
		t.Error("removed device timer still running")
	}
	if got := repo.entriesFor("Fridge"); len(got) != 0 {
		t.Errorf("schedule lines not dropped: %v", got)
	}
	if rec.count(EventRemoved) != 1 {
		t.Errorf("removed events = %d", rec.count(EventRemoved))
	}

	if err := reg.RemoveDevice("Fridge"); !IsNotFound(err) {
		t.Errorf("RemoveDevice(again) error = %v, want ErrDeviceNotFound", err)
	}
}

func TestRegistry_Sorting(t *testing.T) {
	reg, _, _, _ := testRegistry(t)
	add := func(k Kind, name string) {
		t.Helper()
		if _, err := reg.AddDevice(k, name); err != nil {
			t.Fatalf("AddDevice(%s) error = %v", name, err)
		}
	}
	add(KindThermostat, "hall")
	add(KindLight, "Bedroom")
	add(KindPlug, "attic")
	add(KindLight, "apple")
	add(KindRadiator, "Hall")

	names := func() []string {
		var out []string
		for _, s := range reg.Summaries() {
			out = append(out, s.Name)
		}
		return out
	}

	reg.SortByName()
	want := []string{"apple", "attic", "Bedroom", "hall", "Hall"}
	if got := names(); !slices.Equal(got, want) {
		t.Errorf("SortByName() = %v, want %v", got, want)
	}

	reg.SortByType()
	// Radiator Valve < Smart Light < Smart Plug < Thermostat
	want = []string{"Hall", "apple", "Bedroom", "attic", "hall"}
	if got := names(); !slices.Equal(got, want) {
		t.Errorf("SortByType() = %v, want %v", got, want)
	}
}

func TestRegistry_OneClickAction(t *testing.T) {
	reg, _, _, _ := testRegistry(t)
	_, _ = reg.AddDevice(KindLight, "Lamp")

	view, err := reg.OneClickAction("lamp")
	if err != nil {
		t.Fatalf("OneClickAction() error = %v", err)
	}
	if view != "Lamp: 100% Brightness [switch off]" {
		t.Errorf("OneClickAction() = %q", view)
	}

	if _, err := reg.OneClickAction("Nope"); !IsNotFound(err) {
		t.Errorf("OneClickAction(Nope) error = %v", err)
	}
}

func TestRegistry_ListQuickViews(t *testing.T) {
	reg, _, _, _ := testRegistry(t)
	_, _ = reg.AddDevice(KindThermostat, "Hall")
	_, _ = reg.AddDevice(KindSpeaker, "Den")

	want := []string{"Hall: Heating Off", "Den: Stopped (Vol: 50%) [play]"}
	if got := reg.ListQuickViews(); !slices.Equal(got, want) {
		t.Errorf("ListQuickViews() = %v, want %v", got, want)
	}
}

func TestRegistry_LoadFromSnapshot(t *testing.T) {
	reg, repo, _, _ := testRegistry(t)
	repo.snap = Snapshot{
		Records: []string{
			"LIGHT|Lamp|1|80",
			"PLUG|Fridge|1|2.5",
			"SPEAKER|Den|0|loud|1",
			"THERMOSTAT||1",
		},
		Schedules: []NamedEntry{
			{Name: "Fridge", Entry: ScheduleEntry{Hour: 7, Minute: 30, State: ScheduleOn}},
			{Name: "fridge", Entry: ScheduleEntry{Hour: 8, Minute: 0, State: ScheduleOn}},
			{Name: "Lamp", Entry: ScheduleEntry{Hour: 9, Minute: 0, State: ScheduleOn}},
		},
		Skipped: 1,
	}

	if err := reg.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// The unnamed thermostat is dropped, the speaker keeps its default volume.
	if reg.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", reg.Count())
	}
	den, _ := reg.Find("Den")
	if den.(*Speaker).Volume() != 50 || !den.(*Speaker).Playing() {
		t.Errorf("speaker = %s", den.Encode())
	}

	fridge, _ := reg.Find("Fridge")
	if got := fridge.(Scheduler).Schedule(); len(got) != 1 {
		t.Errorf("fridge schedule = %v, want exact-name match only", got)
	}
}

func TestRegistry_LoadError(t *testing.T) {
	reg, repo, _, _ := testRegistry(t)
	repo.loadErr = errors.New("disk on fire")
	if err := reg.Load(context.Background()); err == nil {
		t.Fatal("Load() should fail")
	}
}

func TestRegistry_SaveSnapshot(t *testing.T) {
	reg, repo, _, _ := testRegistry(t)
	lamp, _ := reg.AddDevice(KindLight, "Lamp")
	lamp.PrimaryToggle()
	fridge, _ := reg.AddDevice(KindPlug, "Fridge")
	_ = fridge.(Scheduler).AddSchedule(7, 30, ScheduleOn)

	if err := reg.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	wantRecords := []string{"LIGHT|Lamp|1|100", "PLUG|Fridge|0|0"}
	if !slices.Equal(repo.snap.Records, wantRecords) {
		t.Errorf("records = %v, want %v", repo.snap.Records, wantRecords)
	}
	if len(repo.snap.Schedules) != 1 || repo.snap.Schedules[0].Name != "Fridge" {
		t.Errorf("schedules = %+v", repo.snap.Schedules)
	}
}

func TestRegistry_CloseStopsTimers(t *testing.T) {
	reg, _, _, _ := testRegistry(t)
	lamp, _ := reg.AddDevice(KindLight, "Lamp")
	plug, _ := reg.AddDevice(KindPlug, "Fridge")
	lamp.PrimaryToggle()
	plug.PrimaryToggle()
	_ = lamp.StartTimer(100000)
	_ = plug.StartTimer(100000)

	reg.Close()

	if lamp.TimerRunning() || plug.TimerRunning() {
		t.Error("Close() left timers running")
	}
	if !lamp.IsOn() || !plug.IsOn() {
		t.Error("Close() should not switch devices off")
	}
}
