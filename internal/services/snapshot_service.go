package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"agencia/internal/amqp"
	"agencia/internal/cache"
	"agencia/internal/chart"
	"agencia/internal/core"
	"agencia/internal/locale"
	ports "agencia/internal/sheets"
)

// Publisher announces recorded snapshots to other processes.
type Publisher interface {
	PublishSnapshotChanged(ctx context.Context, year, month int, version int64) error
}

// versioner is implemented by stores that track row versions.
type versioner interface {
	SnapshotVersion(ctx context.Context, year, month int) (int64, error)
}

// Defaults for the snapshot caches.
const (
	DefaultCacheSize = 32
	DefaultCacheTTL  = 5 * time.Minute
)

const yearsKey = "years"

// SnapshotService serves snapshot data to the dashboard. Reads go through an
// LRU cache and concurrent misses for the same year share one backend load.
// A load only fills the cache if no invalidation happened while it ran.
type SnapshotService struct {
	store     ports.SnapshotStore
	publisher Publisher
	snapshots *cache.LRUCache[[]core.Snapshot]
	years     *cache.LRUCache[[]int]
	group     singleflight.Group

	mu       sync.Mutex
	gens     map[int]uint64
	yearsGen uint64
}

// NewSnapshotService wires a store and an optional publisher (nil disables
// change events). Non-positive cache settings fall back to the defaults.
func NewSnapshotService(store ports.SnapshotStore, publisher Publisher, cacheSize int, cacheTTL time.Duration) *SnapshotService {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &SnapshotService{
		store:     store,
		publisher: publisher,
		snapshots: cache.NewLRUCache[[]core.Snapshot](cacheSize, cacheTTL),
		years:     cache.NewLRUCache[[]int](1, cacheTTL),
		gens:      make(map[int]uint64),
	}
}

// Cleaners returns the caches for registration with a cache.Manager.
func (s *SnapshotService) Cleaners() []cache.Cleaner {
	return []cache.Cleaner{s.snapshots, s.years}
}

// CacheStats reports the snapshot cache counters.
func (s *SnapshotService) CacheStats() cache.Stats {
	return s.snapshots.Stats()
}

// Snapshots returns the snapshots of a year ordered by month.
func (s *SnapshotService) Snapshots(ctx context.Context, year int) ([]core.Snapshot, error) {
	if err := core.ValidateYear(year); err != nil {
		return nil, err
	}
	key := strconv.Itoa(year)
	if items, ok := s.snapshots.Get(key); ok {
		return append([]core.Snapshot(nil), items...), nil
	}

	v, err, shared := s.group.Do("snapshots:"+key, func() (any, error) {
		s.mu.Lock()
		gen := s.gens[year]
		s.mu.Unlock()

		items, err := s.store.ListSnapshots(ctx, year)
		if err != nil {
			return nil, err
		}
		core.SortSnapshots(items)

		s.mu.Lock()
		if s.gens[year] == gen {
			s.snapshots.Set(key, items)
		}
		s.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load snapshots %d: %w", year, err)
	}
	if shared {
		slog.DebugContext(ctx, "Shared snapshot load", "year", year)
	}
	return append([]core.Snapshot(nil), v.([]core.Snapshot)...), nil
}

// Years returns the years with data, always including current.
func (s *SnapshotService) Years(ctx context.Context, current int) ([]int, error) {
	years, ok := s.years.Get(yearsKey)
	if !ok {
		v, err, _ := s.group.Do(yearsKey, func() (any, error) {
			s.mu.Lock()
			gen := s.yearsGen
			s.mu.Unlock()

			ys, err := s.store.ListYears(ctx)
			if err != nil {
				return nil, err
			}

			s.mu.Lock()
			if s.yearsGen == gen {
				s.years.Set(yearsKey, ys)
			}
			s.mu.Unlock()
			return ys, nil
		})
		if err != nil {
			return nil, fmt.Errorf("load years: %w", err)
		}
		years = v.([]int)
	}
	out := append(make([]int, 0, len(years)+1), years...)
	if !slices.Contains(out, current) {
		out = append(out, current)
		slices.Sort(out)
	}
	return out, nil
}

// Series converts the snapshots of a year into chart points labelled with
// the month names of loc.
func (s *SnapshotService) Series(ctx context.Context, year int, loc locale.Profile) ([]chart.DataPoint, error) {
	items, err := s.Snapshots(ctx, year)
	if err != nil {
		return nil, err
	}
	return ToDataPoints(items, loc), nil
}

// ToDataPoints maps snapshots to chart points in the given order.
func ToDataPoints(items []core.Snapshot, loc locale.Profile) []chart.DataPoint {
	out := make([]chart.DataPoint, len(items))
	for i, it := range items {
		out[i] = chart.DataPoint{
			Label:    loc.MonthLabel(it.Month),
			Income:   it.Income.Units(),
			Expenses: it.Expenses.Units(),
			Assets:   it.Assets.Units(),
			Balance:  it.Balance.Units(),
		}
	}
	return out
}

// Overview summarizes a year.
func (s *SnapshotService) Overview(ctx context.Context, year int) (core.YearOverview, error) {
	items, err := s.Snapshots(ctx, year)
	if err != nil {
		return core.YearOverview{}, err
	}
	return core.Summarize(year, items), nil
}

// Record stores a snapshot, drops cached data for its year and announces the
// change. A failed announcement is logged and does not fail the call.
func (s *SnapshotService) Record(ctx context.Context, snap core.Snapshot) (string, error) {
	if err := snap.Validate(); err != nil {
		return "", err
	}
	ref, err := s.store.RecordSnapshot(ctx, snap)
	if err != nil {
		return "", fmt.Errorf("record snapshot: %w", err)
	}
	s.Invalidate(snap.Year)

	if err := s.publish(ctx, snap); err != nil {
		slog.ErrorContext(ctx, "Failed to publish snapshot change",
			"period", snap.Period(), "error", err)
	}
	return ref, nil
}

func (s *SnapshotService) publish(ctx context.Context, snap core.Snapshot) error {
	if s.publisher == nil {
		return nil
	}
	var version int64
	if v, ok := s.store.(versioner); ok {
		n, err := v.SnapshotVersion(ctx, snap.Year, snap.Month)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("read version: %w", err)
		}
		version = n
	}
	return s.publisher.PublishSnapshotChanged(ctx, snap.Year, snap.Month, version)
}

// Invalidate drops cached data of a year. Loads already in flight finish
// for their callers but are not cached, and later calls start a new load.
func (s *SnapshotService) Invalidate(year int) {
	key := strconv.Itoa(year)

	s.mu.Lock()
	s.gens[year]++
	s.yearsGen++
	s.snapshots.Delete(key)
	s.years.Delete(yearsKey)
	s.mu.Unlock()

	s.group.Forget("snapshots:" + key)
	s.group.Forget(yearsKey)
}

// HandleChange is an amqp.Handler that invalidates the cache for a change
// recorded by another process.
func (s *SnapshotService) HandleChange(ctx context.Context, msg *amqp.SnapshotChangedMessage) error {
	slog.DebugContext(ctx, "Invalidating snapshot cache", "year", msg.Year, "month", msg.Month)
	s.Invalidate(msg.Year)
	return nil
}
