package audit

import (
	"context"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/database"
	_ "github.com/nerrad567/gray-logic-hub/migrations" // registers the journal schema
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := database.Open(database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestCreate_FillsDefaults(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	e := &Entry{Action: "added", Device: "Lamp", Kind: "LIGHT"}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Errorf("defaults not filled: %+v", e)
	}
	if e.Source != SourceSystem {
		t.Errorf("Source = %q, want %q", e.Source, SourceSystem)
	}
}

func TestList_FilterAndOrder(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Action: "added", Device: "Lamp", Kind: "LIGHT", Source: SourceConsole},
		{Action: "power", Device: "Lamp", Kind: "LIGHT", Source: SourceConsole, Details: map[string]any{"on": true}},
		{Action: "added", Device: "Fridge", Kind: "PLUG", Source: SourceConsole},
		{Action: "timer_expired", Device: "Lamp", Kind: "LIGHT", Source: SourceTimer},
	}
	for i := range entries {
		entries[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.Create(ctx, &entries[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all.Total != 4 || len(all.Entries) != 4 {
		t.Fatalf("List() total = %d entries = %d, want 4", all.Total, len(all.Entries))
	}
	if all.Entries[0].Action != "timer_expired" {
		t.Errorf("first entry = %s, want most recent", all.Entries[0].Action)
	}
	if all.Limit != defaultLimit {
		t.Errorf("Limit = %d, want %d", all.Limit, defaultLimit)
	}

	lamp, err := repo.List(ctx, Filter{Device: "lamp"})
	if err != nil {
		t.Fatalf("List(device) error = %v", err)
	}
	if lamp.Total != 3 {
		t.Errorf("lamp total = %d, want 3", lamp.Total)
	}

	added, err := repo.List(ctx, Filter{Action: "added", Limit: 1})
	if err != nil {
		t.Fatalf("List(action) error = %v", err)
	}
	if added.Total != 2 || len(added.Entries) != 1 || added.Entries[0].Device != "Fridge" {
		t.Errorf("added page = %+v", added)
	}

	power, _ := repo.List(ctx, Filter{Action: "power"})
	if len(power.Entries) != 1 || power.Entries[0].Details["on"] != true {
		t.Errorf("power details = %+v", power.Entries)
	}
}

func TestList_Empty(t *testing.T) {
	repo := newTestRepository(t)
	res, err := repo.List(context.Background(), Filter{Limit: 1000, Offset: -5})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Entries == nil || len(res.Entries) != 0 {
		t.Errorf("Entries = %v, want empty non-nil", res.Entries)
	}
	if res.Limit != maxLimit || res.Offset != 0 {
		t.Errorf("Limit/Offset = %d/%d, want %d/0", res.Limit, res.Offset, maxLimit)
	}
}
