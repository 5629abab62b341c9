package device

import (
	"errors"
	"slices"
	"testing"
)

func TestSchedule_Add(t *testing.T) {
	tests := []struct {
		name         string
		hour, minute int
		wantErr      bool
	}{
		{"midnight", 0, 0, false},
		{"last minute", 23, 59, false},
		{"hour too large", 25, 0, true},
		{"minute too large", 10, 61, true},
		{"negative hour", -1, 0, true},
		{"negative minute", 5, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Schedule
			err := s.Add(tt.hour, tt.minute, ScheduleOn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Add(%d, %d) error = %v, wantErr %v", tt.hour, tt.minute, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Errorf("error = %v, want ErrOutOfRange", err)
				}
				if s.Len() != 0 {
					t.Error("rejected entry was stored")
				}
			}
		})
	}
}

func TestSchedule_InsertionOrderAndDuplicates(t *testing.T) {
	var s Schedule
	_ = s.Add(7, 30, ScheduleOn)
	_ = s.Add(7, 30, ScheduleOn)
	_ = s.Add(23, 59, ScheduleOff)

	got := s.Entries()
	if len(got) != 3 {
		t.Fatalf("entries = %d, want 3", len(got))
	}
	if got[2] != (ScheduleEntry{Hour: 23, Minute: 59, State: ScheduleOff}) {
		t.Errorf("last entry = %+v", got[2])
	}

	got[0].Hour = 1
	if s.Entries()[0].Hour != 7 {
		t.Error("Entries() should return a copy")
	}

	want := "1. 07:30 -> ON\n2. 07:30 -> ON\n3. 23:59 -> OFF"
	if v := s.View(); v != want {
		t.Errorf("View() = %q, want %q", v, want)
	}
}

func TestSchedule_RemoveAt(t *testing.T) {
	var s Schedule
	_ = s.Add(6, 0, ScheduleOn)
	_ = s.Add(22, 0, ScheduleOff)

	for _, idx := range []int{0, 3, -1} {
		if _, err := s.RemoveAt(idx); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("RemoveAt(%d) error = %v, want ErrOutOfRange", idx, err)
		}
	}

	removed, err := s.RemoveAt(1)
	if err != nil {
		t.Fatalf("RemoveAt(1) error = %v", err)
	}
	if removed.Hour != 6 {
		t.Errorf("removed = %+v", removed)
	}
	if s.Len() != 1 || s.Entries()[0].Hour != 22 {
		t.Errorf("remaining = %+v", s.Entries())
	}
}

func TestScheduleLine_Codec(t *testing.T) {
	line := EncodeScheduleLine("Fridge", ScheduleEntry{Hour: 7, Minute: 5, State: ScheduleOn})
	if line != "Fridge|7|5|ON" {
		t.Fatalf("EncodeScheduleLine() = %q", line)
	}
	if !IsScheduleLine(line) {
		t.Error("IsScheduleLine() = false")
	}

	name, e, err := DecodeScheduleLine(line)
	if err != nil {
		t.Fatalf("DecodeScheduleLine() error = %v", err)
	}
	if name != "Fridge" || e.Hour != 7 || e.Minute != 5 || e.State != ScheduleOn {
		t.Errorf("decoded %q %+v", name, e)
	}

	for _, bad := range []string{"Fridge|25|0|ON", "Fridge|x|0|OFF", "Fridge|7|0"} {
		if _, _, err := DecodeScheduleLine(bad); !errors.Is(err, ErrMalformedRecord) {
			t.Errorf("DecodeScheduleLine(%q) error = %v, want ErrMalformedRecord", bad, err)
		}
	}

	for _, record := range []string{"LIGHT|Lamp|1|80", "SPEAKER|Den|0|50|1", "PLUG|Fridge|1|2.5"} {
		if IsScheduleLine(record) {
			t.Errorf("IsScheduleLine(%q) = true", record)
		}
	}
}

func TestParseScheduleState(t *testing.T) {
	for in, want := range map[string]ScheduleState{"on": ScheduleOn, "1": ScheduleOn, "OFF": ScheduleOff, "2": ScheduleOff} {
		got, err := ParseScheduleState(in)
		if err != nil || got != want {
			t.Errorf("ParseScheduleState(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseScheduleState("maybe"); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ParseScheduleState(maybe) error = %v", err)
	}
}

func TestScheduled_WriteThrough(t *testing.T) {
	rec := &eventRecorder{}
	th := NewThermostat("Hall")
	var persisted []ScheduleEntry
	th.bind(Hooks{
		Schedules: scheduleSyncFunc(func() error {
			persisted = th.Schedule()
			return nil
		}),
		Listener: rec,
	})

	if _, err := th.Apply(2, "on", "6", "45"); err != nil {
		t.Fatalf("Apply(add schedule) error = %v", err)
	}
	if _, err := th.Apply(2, "off", "22", "0"); err != nil {
		t.Fatalf("Apply(add schedule) error = %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("persisted entries = %v, want 2", persisted)
	}

	if _, err := th.Apply(2, "on", "25", "0"); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Apply(25:00) error = %v, want ErrOutOfRange", err)
	}
	if len(th.Schedule()) != 2 {
		t.Error("invalid schedule stored")
	}

	if _, err := th.Apply(4, "1"); err != nil {
		t.Fatalf("Apply(delete schedule) error = %v", err)
	}
	if len(persisted) != 1 || persisted[0].Hour != 22 {
		t.Errorf("persisted after delete = %v", persisted)
	}
	if rec.count(EventScheduleAdded) != 2 || rec.count(EventScheduleRemoved) != 1 {
		t.Errorf("schedule events added=%d removed=%d", rec.count(EventScheduleAdded), rec.count(EventScheduleRemoved))
	}
}

func TestScheduled_FailedWriteIsUndone(t *testing.T) {
	rec := &eventRecorder{}
	p := NewPlug("Fridge")
	var writeErr error
	p.bind(Hooks{
		Schedules: scheduleSyncFunc(func() error { return writeErr }),
		Listener:  rec,
	})

	if err := p.AddSchedule(7, 0, ScheduleOn); err != nil {
		t.Fatalf("AddSchedule() error = %v", err)
	}
	if err := p.AddSchedule(8, 0, ScheduleOff); err != nil {
		t.Fatalf("AddSchedule() error = %v", err)
	}

	writeErr = errors.New("disk full")
	if err := p.AddSchedule(9, 0, ScheduleOn); !errors.Is(err, writeErr) {
		t.Fatalf("AddSchedule() error = %v, want write error", err)
	}
	if got := p.Schedule(); len(got) != 2 {
		t.Errorf("schedule after failed add = %v, want 2 entries", got)
	}

	if err := p.RemoveSchedule(1); !errors.Is(err, writeErr) {
		t.Fatalf("RemoveSchedule() error = %v, want write error", err)
	}
	want := []ScheduleEntry{{Hour: 7, State: ScheduleOn}, {Hour: 8, State: ScheduleOff}}
	if got := p.Schedule(); !slices.Equal(got, want) {
		t.Errorf("schedule after failed remove = %v, want %v", got, want)
	}

	if rec.count(EventScheduleAdded) != 2 || rec.count(EventScheduleRemoved) != 0 {
		t.Errorf("failed writes emitted events: added=%d removed=%d",
			rec.count(EventScheduleAdded), rec.count(EventScheduleRemoved))
	}
}

func TestScheduled_NotOnLight(t *testing.T) {
	var d Device = NewLight("Lamp")
	if _, ok := d.(Scheduler); ok {
		t.Error("lights should not carry schedules")
	}
	for _, d := range []Device{NewPlug("p"), NewThermostat("t"), NewRadiatorValve("r")} {
		if _, ok := d.(Scheduler); !ok {
			t.Errorf("%s should carry a schedule", d.Kind())
		}
	}
}
