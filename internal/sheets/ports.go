package sheets

import (
	"context"

	"agencia/internal/core"
)

// Ports for outbound adapters.
type (
	// SnapshotReader lists the monthly snapshots of a year, ordered by month.
	// A year without data yields an empty slice and no error.
	SnapshotReader interface {
		ListSnapshots(ctx context.Context, year int) ([]core.Snapshot, error)
	}

	// SnapshotGetter returns a single month. Missing months report
	// core.ErrNotFound.
	SnapshotGetter interface {
		GetSnapshot(ctx context.Context, year int, month int) (core.Snapshot, error)
	}

	// SnapshotWriter creates or replaces the snapshot for s.Year/s.Month.
	SnapshotWriter interface {
		RecordSnapshot(ctx context.Context, s core.Snapshot) (ref string, err error)
	}

	// YearLister returns the years that have at least one snapshot, ascending.
	YearLister interface {
		ListYears(ctx context.Context) ([]int, error)
	}

	// SnapshotStore is what the dashboard needs from a data backend.
	SnapshotStore interface {
		SnapshotReader
		SnapshotGetter
		SnapshotWriter
		YearLister
	}
)
