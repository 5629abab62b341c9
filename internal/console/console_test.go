package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-hub/internal/device"
)

func testRegistry(t *testing.T) *device.Registry {
	t.Helper()
	reg := device.NewRegistry(device.NewFileRepository(filepath.Join(t.TempDir(), "devices.txt")))
	t.Cleanup(reg.Close)
	return reg
}

// runScript feeds lines to a console and returns everything it printed.
func runScript(t *testing.T, reg Registry, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	c := New(reg, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\n--- output ---\n%s", w, out)
		}
	}
}

func TestRun_AddListToggle(t *testing.T) {
	reg := testRegistry(t)
	out := runScript(t, reg,
		"1",
		"5", "1", "Lamp",
		"1",
		"lamp",
		"9",
	)

	assertContains(t, out,
		"No devices found.",
		"1: Smart Light",
		"6: Radiator Valve",
		"Device added successfully.",
		"Lamp: off [switch on]",
		"Lamp: 100% Brightness [switch off]",
	)
	if reg.Count() != 1 {
		t.Errorf("Count() = %d, want 1", reg.Count())
	}
}

func TestRun_AddRejectsBadInput(t *testing.T) {
	reg := testRegistry(t)
	out := runScript(t, reg,
		"5", "12",
		"5", "2", "Attic|Loft",
		"9",
	)
	assertContains(t, out, "Invalid choice.", "Error: device: invalid name")
	if reg.Count() != 0 {
		t.Errorf("Count() = %d, want 0", reg.Count())
	}
}

func TestRun_SortCommands(t *testing.T) {
	reg := testRegistry(t)
	for _, n := range []string{"zeta", "Alpha"} {
		if _, err := reg.AddDevice(device.KindPlug, n); err != nil {
			t.Fatal(err)
		}
	}
	out := runScript(t, reg, "2", "1", "3", "9")
	assertContains(t, out, "Devices sorted by name.", "Devices sorted by type and name.")

	if i, j := strings.Index(out, "Alpha:"), strings.Index(out, "zeta:"); i < 0 || j < 0 || i > j {
		t.Errorf("list not sorted by name:\n%s", out)
	}
}

func TestRun_DeviceSession(t *testing.T) {
	reg := testRegistry(t)
	if _, err := reg.AddDevice(device.KindLight, "Lamp"); err != nil {
		t.Fatal(err)
	}

	out := runScript(t, reg,
		"4 lamp",
		"2", "40",
		"2", "abc",
		"x",
		"42",
		"9",
		"9",
	)
	assertContains(t, out,
		"Smart Light Controls for Lamp:",
		"2: Set Brightness",
		"Enter brightness (0-100): ",
		"Brightness set to 40%.",
		"Error: ",
		"Invalid choice.",
	)

	d, err := reg.Find("Lamp")
	if err != nil {
		t.Fatal(err)
	}
	if d.(*device.Light).Brightness() != 40 {
		t.Errorf("Brightness() = %d, want 40", d.(*device.Light).Brightness())
	}
}

func TestRun_RenameEndsSession(t *testing.T) {
	reg := testRegistry(t)
	if _, err := reg.AddDevice(device.KindSpeaker, "Den"); err != nil {
		t.Fatal(err)
	}

	out := runScript(t, reg, "4 Den", "5", "Study", "9")
	assertContains(t, out, "Device renamed to Study.")
	if _, err := reg.Find("Study"); err != nil {
		t.Errorf("Find(Study) error = %v", err)
	}
}

func TestRun_DeleteAsksForConfirmation(t *testing.T) {
	reg := testRegistry(t)
	if _, err := reg.AddDevice(device.KindLight, "Lamp"); err != nil {
		t.Fatal(err)
	}

	out := runScript(t, reg,
		"4 Lamp", "6", "n",
		"6", "y",
		"9",
	)
	assertContains(t, out,
		"Are you sure you want to delete Lamp? (y/n): ",
		"Delete cancelled.",
		"Lamp deleted.",
	)
	if reg.Count() != 0 {
		t.Errorf("Count() = %d, want 0", reg.Count())
	}
}

func TestRun_NotFound(t *testing.T) {
	out := runScript(t, testRegistry(t), "Toaster", "4 Toaster", "9")
	if n := strings.Count(out, "Device not found."); n != 2 {
		t.Errorf("not found messages = %d, want 2\n%s", n, out)
	}
}

func TestRun_EOFExits(t *testing.T) {
	reg := testRegistry(t)
	var out bytes.Buffer
	c := New(reg, strings.NewReader("1\n4 Nobody\n5\n1\n"), &out)
	if err := c.Run(context.Background()); err != nil {
		t.Errorf("Run() at EOF error = %v, want nil", err)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	c := New(testRegistry(t), pr, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestRun_ReaderExitsAfterCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	c := New(testRegistry(t), pr, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}

	// Input arriving after Run returned has no reader; the goroutine must
	// drop it and exit rather than block on the send.
	go pw.Write([]byte("1\n")) //nolint:errcheck // completes once scanned

	select {
	case <-c.readerDone:
	case <-time.After(2 * time.Second):
		t.Fatal("input goroutine still blocked after Run returned")
	}
}

type sessionLog struct {
	mu      sync.Mutex
	entries []map[string]any
}

func (l *sessionLog) Info(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := map[string]any{"msg": msg}
	for i := 0; i+1 < len(args); i += 2 {
		e[args[i].(string)] = args[i+1]
	}
	l.entries = append(l.entries, e)
}

func TestRun_LogsSessionLifecycle(t *testing.T) {
	reg := testRegistry(t)
	if _, err := reg.AddDevice(device.KindLight, "Lamp"); err != nil {
		t.Fatal(err)
	}

	log := &sessionLog{}
	c := New(reg, strings.NewReader("4 Lamp\n9\n9\n"), io.Discard)
	c.SetLogger(log)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(log.entries) != 2 {
		t.Fatalf("log entries = %v, want open and close", log.entries)
	}
	opened, closed := log.entries[0], log.entries[1]
	if opened["msg"] != "device session opened" || closed["msg"] != "device session closed" {
		t.Errorf("messages = %v, %v", opened["msg"], closed["msg"])
	}
	id, _ := opened["session_id"].(string)
	if id == "" || closed["session_id"] != id {
		t.Errorf("session IDs = %v, %v", opened["session_id"], closed["session_id"])
	}
	if opened["device"] != "Lamp" || closed["done"] != true {
		t.Errorf("opened = %v, closed = %v", opened, closed)
	}
}
