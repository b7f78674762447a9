package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"agencia/internal/core"
)

func money(units int64) core.Money { return core.Money{Cents: units * 100} }

func TestMemoryStoreRecordAndList(t *testing.T) {
	ctx := context.Background()
	s := New()

	ref, err := s.RecordSnapshot(ctx, core.NewSnapshot(2025, 2, money(1500), money(600), money(2200)))
	if err != nil || ref != "mem:2025-02" {
		t.Fatalf("unexpected record: ref=%q err=%v", ref, err)
	}
	if _, err := s.RecordSnapshot(ctx, core.NewSnapshot(2025, 1, money(1000), money(400), money(2000))); err != nil {
		t.Fatalf("record: %v", err)
	}
	// Replace February.
	if _, err := s.RecordSnapshot(ctx, core.NewSnapshot(2025, 2, money(1600), money(600), money(2300))); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := s.RecordSnapshot(ctx, core.Snapshot{Year: 2025, Month: 13}); err == nil {
		t.Fatal("expected validation error")
	}

	items, err := s.ListSnapshots(ctx, 2025)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].Month != 1 || items[1].Income.Cents != 160000 {
		t.Fatalf("unexpected items: %+v", items)
	}

	if _, err := s.GetSnapshot(ctx, 2025, 3); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, err := s.GetSnapshot(ctx, 2025, 1)
	if err != nil || got.Balance.Cents != 60000 {
		t.Fatalf("unexpected get: %+v err=%v", got, err)
	}

	if none, _ := s.ListSnapshots(ctx, 1999); len(none) != 0 {
		t.Fatalf("expected no snapshots, got %v", none)
	}
}

func TestListYears(t *testing.T) {
	s := New(
		core.NewSnapshot(2025, 1, money(1), money(1), money(1)),
		core.NewSnapshot(2023, 5, money(1), money(1), money(1)),
		core.NewSnapshot(2025, 4, money(1), money(1), money(1)),
	)
	years, _ := s.ListYears(context.Background())
	if len(years) != 2 || years[0] != 2023 || years[1] != 2025 {
		t.Fatalf("unexpected years: %v", years)
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	// No file -> sample quarter of the current year
	s := NewFromFiles(dir)
	items, _ := s.ListSnapshots(context.Background(), time.Now().Year())
	if len(items) != 3 {
		t.Fatalf("expected default seed, got %d items", len(items))
	}

	content := "# finance seed\nyear,month,income,expenses,assets,balance\n2024,11,1000,400,2000,\n2024,12,\"1200,50\",1300,2500,-99.50\n"
	if err := os.WriteFile(filepath.Join(dir, SeedFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s = NewFromFiles(dir)
	items, _ = s.ListSnapshots(context.Background(), 2024)
	if len(items) != 2 {
		t.Fatalf("expected 2 seeded items, got %d", len(items))
	}
	if items[0].Balance.Cents != 60000 {
		t.Fatalf("derived balance = %d", items[0].Balance.Cents)
	}
	if items[1].Income.Cents != 120050 || items[1].Balance.Cents != -9950 {
		t.Fatalf("unexpected december: %+v", items[1])
	}
}

func TestParseSeedErrors(t *testing.T) {
	cases := map[string]string{
		"missing column": "year,month,income\n2025,1,10\n",
		"bad year":       "year,month,income,expenses,assets\nx,1,1,1,1\n",
		"bad month":      "year,month,income,expenses,assets\n2025,13,1,1,1\n",
		"bad amount":     "year,month,income,expenses,assets\n2025,1,abc,1,1\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseSeed(strings.NewReader(in)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	items, err := ParseSeed(strings.NewReader(""))
	if err != nil || len(items) != 0 {
		t.Fatalf("empty seed: %v %v", items, err)
	}
}
