package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Repository defines the interface for device persistence operations.
// This abstraction allows for different implementations (flat file, mock)
// and enables unit testing without touching the filesystem.
type Repository interface {
	// Load reads every record in the store. A missing store is empty,
	// not an error.
	Load(ctx context.Context) (Snapshot, error)

	// Save replaces the store with snap.
	Save(ctx context.Context, snap Snapshot) error

	// ReplaceSchedules replaces every schedule line in the store with
	// entries and leaves device records untouched.
	ReplaceSchedules(ctx context.Context, entries []NamedEntry) error
}

// NamedEntry is a schedule entry together with the device name it belongs to.
type NamedEntry struct {
	Name  string
	Entry ScheduleEntry
}

// Snapshot is the raw content of a store: device records in registry order
// followed by schedule entries.
type Snapshot struct {
	Records   []string
	Schedules []NamedEntry

	// Skipped counts lines that were neither a device record nor a valid
	// schedule line. Set by Load only.
	Skipped int
}

// FileRepository stores devices in a pipe-delimited text file, one record
// per line. Device records come first, schedule lines after them.
//
// Every write replaces the file atomically (temp file + rename), so a crash
// mid-write leaves the previous content intact.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository creates a repository backed by the file at path.
// The file is created on first write.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Path returns the store file location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads and classifies every line of the store.
func (r *FileRepository) Load(ctx context.Context) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines, err := r.readLines(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return parseLines(lines), nil
}

// Save overwrites the store with snap.
func (r *FileRepository) Save(ctx context.Context, snap Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeLines(ctx, snapshotLines(snap))
}

// ReplaceSchedules rewrites the schedule lines of the store and leaves
// device records in place. Schedule lines are written after the records in
// the order given.
func (r *FileRepository) ReplaceSchedules(ctx context.Context, entries []NamedEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines, err := r.readLines(ctx)
	if err != nil {
		return err
	}

	kept := lines[:0]
	for _, line := range lines {
		if IsScheduleLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	for _, e := range entries {
		kept = append(kept, EncodeScheduleLine(e.Name, e.Entry))
	}

	return r.writeLines(ctx, kept)
}

func (r *FileRepository) readLines(ctx context.Context) ([]string, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading store: %w", err)
	}
	return lines, nil
}

func (r *FileRepository) writeLines(ctx context.Context, lines []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp store: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			tmp.Close()
			return fmt.Errorf("writing store: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replacing store: %w", err)
	}
	return nil
}

// parseLines splits store lines into device records and schedule entries.
// Schedule lines are recognised by shape (four fields ending in ON or OFF),
// which no device record has.
func parseLines(lines []string) Snapshot {
	var snap Snapshot
	for _, line := range lines {
		if IsScheduleLine(line) {
			name, entry, err := DecodeScheduleLine(line)
			if err != nil {
				snap.Skipped++
				continue
			}
			snap.Schedules = append(snap.Schedules, NamedEntry{Name: name, Entry: entry})
			continue
		}
		tag, _, _ := strings.Cut(line, fieldSeparator)
		if !Kind(tag).Valid() {
			snap.Skipped++
			continue
		}
		snap.Records = append(snap.Records, line)
	}
	return snap
}

func snapshotLines(snap Snapshot) []string {
	lines := make([]string, 0, len(snap.Records)+len(snap.Schedules))
	lines = append(lines, snap.Records...)
	for _, s := range snap.Schedules {
		lines = append(lines, EncodeScheduleLine(s.Name, s.Entry))
	}
	return lines
}
