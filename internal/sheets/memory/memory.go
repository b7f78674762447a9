package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"agencia/internal/core"
	ports "agencia/internal/sheets"
)

// SeedFile is the CSV read by NewFromFiles.
const SeedFile = "seed_snapshots.csv"

type Store struct {
	mu    sync.Mutex
	items map[string]core.Snapshot
}

var _ ports.SnapshotStore = (*Store)(nil)

// New returns a store holding the given snapshots. Later entries for the same
// month replace earlier ones.
func New(items ...core.Snapshot) *Store {
	s := &Store{items: make(map[string]core.Snapshot, len(items))}
	for _, it := range items {
		s.items[it.Period()] = it
	}
	return s
}

// NewFromFiles seeds the store from base/seed_snapshots.csv. When the file is
// missing or unreadable the first quarter of the current year is filled with
// sample figures so the dashboard has something to draw.
func NewFromFiles(base string) *Store {
	items, err := readSeed(filepath.Join(base, SeedFile))
	if err != nil || len(items) == 0 {
		return New(defaultSeed(time.Now().Year())...)
	}
	return New(items...)
}

func defaultSeed(year int) []core.Snapshot {
	m := func(units int64) core.Money { return core.Money{Cents: units * 100} }
	return []core.Snapshot{
		core.NewSnapshot(year, 1, m(1000), m(400), m(2000)),
		core.NewSnapshot(year, 2, m(1500), m(600), m(2200)),
		core.NewSnapshot(year, 3, m(900), m(500), m(2100)),
	}
}

// ListSnapshots returns the snapshots of year ordered by month.
func (s *Store) ListSnapshots(_ context.Context, year int) ([]core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Snapshot, 0, 12)
	for _, it := range s.items {
		if it.Year == year {
			out = append(out, it)
		}
	}
	core.SortSnapshots(out)
	return out, nil
}

// GetSnapshot returns one month or core.ErrNotFound.
func (s *Store) GetSnapshot(_ context.Context, year, month int) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[core.Snapshot{Year: year, Month: month}.Period()]
	if !ok {
		return core.Snapshot{}, core.ErrNotFound
	}
	return it, nil
}

// RecordSnapshot stores the snapshot and returns a synthetic reference.
func (s *Store) RecordSnapshot(_ context.Context, snap core.Snapshot) (string, error) {
	if err := snap.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[snap.Period()] = snap
	return "mem:" + snap.Period(), nil
}

// ListYears returns the years present in the store.
func (s *Store) ListYears(_ context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[int]struct{}{}
	for _, it := range s.items {
		seen[it.Year] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

func readSeed(path string) ([]core.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseSeed(f)
}

// ParseSeed reads snapshots from CSV with the header
// year,month,income,expenses,assets[,balance]. Lines starting with '#' are
// comments. A missing or empty balance is derived from income and expenses.
func ParseSeed(r io.Reader) ([]core.Snapshot, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"year", "month", "income", "expenses", "assets"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("seed header missing %q", name)
		}
	}

	var out []core.Snapshot
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		snap, err := parseRecord(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, snap)
	}
	return out, nil
}

func parseRecord(rec []string, cols map[string]int) (core.Snapshot, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	year, err := strconv.Atoi(field("year"))
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("year: %w", core.ErrInvalidYear)
	}
	month, err := strconv.Atoi(field("month"))
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("month: %w", core.ErrInvalidMonth)
	}
	var amounts [3]core.Money
	for i, name := range []string{"income", "expenses", "assets"} {
		m, err := core.ParseMoney(field(name))
		if err != nil {
			return core.Snapshot{}, fmt.Errorf("%s: %w", name, err)
		}
		amounts[i] = m
	}
	snap := core.NewSnapshot(year, month, amounts[0], amounts[1], amounts[2])
	if raw := field("balance"); raw != "" {
		neg := strings.HasPrefix(raw, "-")
		m, err := core.ParseMoney(strings.TrimPrefix(raw, "-"))
		if err != nil {
			return core.Snapshot{}, fmt.Errorf("balance: %w", err)
		}
		if neg {
			m.Cents = -m.Cents
		}
		snap.Balance = m
	}
	return snap, snap.Validate()
}
