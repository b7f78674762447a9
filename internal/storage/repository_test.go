package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"agencia/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func units(u int64) core.Money { return core.Money{Cents: u * 100} }

func TestRecordAndListSnapshots(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, s := range []core.Snapshot{
		core.NewSnapshot(2025, 3, units(900), units(500), units(2100)),
		core.NewSnapshot(2025, 1, units(1000), units(400), units(2000)),
		core.NewSnapshot(2024, 12, units(800), units(300), units(1900)),
	} {
		if _, err := repo.RecordSnapshot(ctx, s); err != nil {
			t.Fatalf("record %s: %v", s.Period(), err)
		}
	}

	items, err := repo.ListSnapshots(ctx, 2025)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].Month != 1 || items[1].Month != 3 {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].Balance.Cents != 60000 || items[1].Assets.Cents != 210000 {
		t.Fatalf("unexpected amounts: %+v", items)
	}

	years, err := repo.ListYears(ctx)
	if err != nil || len(years) != 2 || years[0] != 2024 || years[1] != 2025 {
		t.Fatalf("unexpected years: %v err=%v", years, err)
	}

	if _, err := repo.GetSnapshot(ctx, 2025, 2); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordSnapshotUpserts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	ref1, err := repo.RecordSnapshot(ctx, core.NewSnapshot(2025, 2, units(1500), units(600), units(2200)))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	ref2, err := repo.RecordSnapshot(ctx, core.NewSnapshot(2025, 2, units(1600), units(600), units(2300)))
	if err != nil {
		t.Fatalf("record again: %v", err)
	}
	if ref1 != ref2 {
		t.Fatalf("upsert should keep the row id: %s vs %s", ref1, ref2)
	}

	got, err := repo.GetSnapshot(ctx, 2025, 2)
	if err != nil || got.Income.Cents != 160000 || got.Assets.Cents != 230000 {
		t.Fatalf("unexpected snapshot %+v err=%v", got, err)
	}
	v, err := repo.SnapshotVersion(ctx, 2025, 2)
	if err != nil || v != 2 {
		t.Fatalf("version = %d err=%v, want 2", v, err)
	}
}

func TestRecordSnapshotValidates(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.RecordSnapshot(context.Background(), core.Snapshot{Year: 2025, Month: 0})
	if !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestSyncTracking(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.RecordSnapshot(ctx, core.NewSnapshot(2025, 1, units(1), units(1), units(1))); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := repo.RecordSnapshot(ctx, core.NewSnapshot(2025, 2, units(1), units(1), units(1))); err != nil {
		t.Fatalf("record: %v", err)
	}

	pending, err := repo.GetPendingSync(ctx, 10)
	if err != nil || len(pending) != 2 {
		t.Fatalf("pending = %+v err=%v", pending, err)
	}

	if err := repo.MarkSynced(ctx, 2025, 1, pending[0].Version); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	// A stale version must not clear a newer change.
	if _, err := repo.RecordSnapshot(ctx, core.NewSnapshot(2025, 2, units(2), units(1), units(1))); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := repo.MarkSynced(ctx, 2025, 2, 1); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, 2025, 2); err != nil {
		t.Fatalf("mark error: %v", err)
	}

	pending, err = repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Month != 2 || pending[0].Version != 2 {
		t.Fatalf("unexpected pending: %+v", pending)
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}
