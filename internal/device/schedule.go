package device

import (
	"fmt"
	"slices"
	"strings"
)

// ScheduleState is the target state of a schedule entry.
type ScheduleState bool

// Schedule states.
const (
	ScheduleOn  ScheduleState = true
	ScheduleOff ScheduleState = false
)

// String returns the on-disk token (ON or OFF).
func (s ScheduleState) String() string {
	if s {
		return "ON"
	}
	return "OFF"
}

// ParseScheduleState accepts ON/OFF, on/off, 1 (on) and 2 (off).
func ParseScheduleState(s string) (ScheduleState, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ON", "1":
		return ScheduleOn, nil
	case "OFF", "2", "0":
		return ScheduleOff, nil
	default:
		return ScheduleOff, fmt.Errorf("%w: schedule state must be on or off, got %q", ErrOutOfRange, s)
	}
}

// ScheduleEntry is one time-of-day entry. Entries are informational and
// never change device state.
type ScheduleEntry struct {
	Hour   int
	Minute int
	State  ScheduleState
}

// String renders the entry as "07:30 -> ON".
func (e ScheduleEntry) String() string {
	return fmt.Sprintf("%02d:%02d -> %s", e.Hour, e.Minute, e.State)
}

// EncodeScheduleLine renders a schedule record: name|hour|minute|ON|OFF.
func EncodeScheduleLine(name string, e ScheduleEntry) string {
	return strings.Join([]string{name, fmt.Sprint(e.Hour), fmt.Sprint(e.Minute), e.State.String()}, fieldSeparator)
}

// DecodeScheduleLine parses a schedule record.
func DecodeScheduleLine(line string) (string, ScheduleEntry, error) {
	d := newRecordDecoder(line)
	if len(d.fields) != 4 {
		return "", ScheduleEntry{}, fmt.Errorf("%w: schedule line needs 4 fields, got %d", ErrMalformedRecord, len(d.fields))
	}

	var e ScheduleEntry
	d.integer(1, &e.Hour)
	d.integer(2, &e.Minute)
	switch d.field(3) {
	case "ON":
		e.State = ScheduleOn
	case "OFF":
		e.State = ScheduleOff
	default:
		d.fail(3, "expected ON or OFF, got %q", d.field(3))
	}
	if err := d.err(); err != nil {
		return "", ScheduleEntry{}, err
	}
	if err := validateScheduleTime(e.Hour, e.Minute); err != nil {
		return "", ScheduleEntry{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return d.field(0), e, nil
}

// IsScheduleLine reports whether a store line is a schedule record rather
// than a device record.
func IsScheduleLine(line string) bool {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), fieldSeparator)
	if len(fields) != 4 {
		return false
	}
	last := fields[3]
	return last == "ON" || last == "OFF"
}

func validateScheduleTime(hour, minute int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("%w: hour must be 0-23, got %d", ErrOutOfRange, hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("%w: minute must be 0-59, got %d", ErrOutOfRange, minute)
	}
	return nil
}

// Schedule is an ordered list of entries. Duplicates are allowed.
type Schedule struct {
	entries []ScheduleEntry
}

// Add appends an entry after validating the time of day.
func (s *Schedule) Add(hour, minute int, state ScheduleState) error {
	if err := validateScheduleTime(hour, minute); err != nil {
		return err
	}
	s.entries = append(s.entries, ScheduleEntry{Hour: hour, Minute: minute, State: state})
	return nil
}

// RemoveAt deletes the entry at a 1-based index.
func (s *Schedule) RemoveAt(index int) (ScheduleEntry, error) {
	if index < 1 || index > len(s.entries) {
		return ScheduleEntry{}, fmt.Errorf("%w: schedule index must be 1-%d, got %d", ErrOutOfRange, len(s.entries), index)
	}
	removed := s.entries[index-1]
	s.entries = append(s.entries[:index-1], s.entries[index:]...)
	return removed, nil
}

// Entries returns a copy of the entries in insertion order.
func (s *Schedule) Entries() []ScheduleEntry {
	out := make([]ScheduleEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Schedule) Len() int {
	return len(s.entries)
}

// View renders the numbered list shown by the device menu.
func (s *Schedule) View() string {
	if len(s.entries) == 0 {
		return "No schedules set."
	}
	var b strings.Builder
	for i, e := range s.entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, e)
	}
	return b.String()
}

// scheduled is embedded by variants that carry a schedule. Every change is
// written through to the bound ScheduleSync. A change whose write fails is
// undone, so memory and store agree.
type scheduled struct {
	schedule Schedule
}

// Scheduler is implemented by devices that carry a schedule.
type Scheduler interface {
	Device
	Schedule() []ScheduleEntry
	AddSchedule(hour, minute int, state ScheduleState) error
	RemoveSchedule(index int) error

	// attachSchedule appends a loaded entry without writing through.
	attachSchedule(e ScheduleEntry)
}

// Schedule returns the device's entries in insertion order.
func (s *scheduled) Schedule() []ScheduleEntry {
	return s.schedule.Entries()
}

func (s *scheduled) attachSchedule(e ScheduleEntry) {
	s.schedule.entries = append(s.schedule.entries, e)
}

func (s *scheduled) add(b *base, hour, minute int, state ScheduleState) error {
	if err := s.schedule.Add(hour, minute, state); err != nil {
		return err
	}
	if err := s.writeThrough(b); err != nil {
		s.schedule.entries = s.schedule.entries[:len(s.schedule.entries)-1]
		return err
	}
	b.emit(EventScheduleAdded, map[string]float64{"hour": float64(hour), "minute": float64(minute)}, state.String())
	return nil
}

func (s *scheduled) remove(b *base, index int) error {
	removed, err := s.schedule.RemoveAt(index)
	if err != nil {
		return err
	}
	if err := s.writeThrough(b); err != nil {
		s.schedule.entries = slices.Insert(s.schedule.entries, index-1, removed)
		return err
	}
	b.emit(EventScheduleRemoved, map[string]float64{"hour": float64(removed.Hour), "minute": float64(removed.Minute)}, removed.State.String())
	return nil
}

func (s *scheduled) writeThrough(b *base) error {
	if b.schedules == nil {
		return nil
	}
	if err := b.schedules.SyncSchedules(); err != nil {
		return fmt.Errorf("persisting schedule for %s: %w", b.name, err)
	}
	return nil
}

// applyAddSchedule parses state, hour and minute arguments.
func (s *scheduled) applyAddSchedule(b *base, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("%w: missing schedule state", ErrOutOfRange)
	}
	state, err := ParseScheduleState(args[0])
	if err != nil {
		return "", err
	}
	hour, err := argInt(args, 1, "hour")
	if err != nil {
		return "", err
	}
	minute, err := argInt(args, 2, "minute")
	if err != nil {
		return "", err
	}
	if err := s.add(b, hour, minute, state); err != nil {
		return "", err
	}
	return fmt.Sprintf("Schedule added: %02d:%02d -> %s", hour, minute, state), nil
}

func (s *scheduled) applyRemoveSchedule(b *base, args []string) (string, error) {
	if s.schedule.Len() == 0 {
		return "No schedules to delete.", nil
	}
	index, err := argInt(args, 0, "schedule number")
	if err != nil {
		return "", err
	}
	if err := s.remove(b, index); err != nil {
		return "", err
	}
	return "Schedule deleted.", nil
}
