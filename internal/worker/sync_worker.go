package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agencia/internal/amqp"
	"agencia/internal/core"
	"agencia/internal/sheets"
	"agencia/internal/storage"
)

// SyncSource is the local store the worker mirrors from.
type SyncSource interface {
	GetSnapshot(ctx context.Context, year, month int) (core.Snapshot, error)
	SnapshotVersion(ctx context.Context, year, month int) (int64, error)
	GetPendingSync(ctx context.Context, limit int) ([]storage.PendingSync, error)
	MarkSynced(ctx context.Context, year, month int, version int64) error
	MarkSyncError(ctx context.Context, year, month int) error
}

var _ SyncSource = (*storage.SQLiteRepository)(nil)

// SyncWorker mirrors snapshots from SQLite to Google Sheets.
type SyncWorker struct {
	source    SyncSource
	sheets    sheets.SnapshotWriter
	batchSize int
}

func NewSyncWorker(source SyncSource, sheets sheets.SnapshotWriter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		source:    source,
		sheets:    sheets,
		batchSize: batchSize,
	}
}

// HandleSnapshotChanged is the amqp.Handler of the worker queue. It always
// mirrors the current row, whatever version the message carries.
func (w *SyncWorker) HandleSnapshotChanged(ctx context.Context, msg *amqp.SnapshotChangedMessage) error {
	slog.InfoContext(ctx, "Processing snapshot changed message",
		"year", msg.Year,
		"month", msg.Month,
		"version", msg.Version)

	err := w.syncSnapshot(ctx, msg.Year, msg.Month)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Snapshot from message not found locally, skipping",
			"year", msg.Year, "month", msg.Month)
		return nil
	}
	return err
}

// ProcessPending mirrors one batch of snapshots that are not synced yet.
// This is the backup path for lost messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) (synced, failed int, err error) {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck mirrors a larger batch of pending snapshots at startup.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, failed, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", synced, "errors", failed)
	return nil
}

// RunPoller calls ProcessPending every interval until ctx is done.
func (w *SyncWorker) RunPoller(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, _, err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending sync failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (synced, failed int, err error) {
	pending, err := w.source.GetPendingSync(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending snapshots: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	slog.InfoContext(ctx, "Processing pending snapshots", "count", len(pending))
	for _, p := range pending {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}
		if err := w.syncSnapshot(ctx, p.Year, p.Month); err != nil {
			slog.ErrorContext(ctx, "Failed to sync snapshot",
				"year", p.Year, "month", p.Month, "error", err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

func (w *SyncWorker) syncSnapshot(ctx context.Context, year, month int) error {
	version, err := w.source.SnapshotVersion(ctx, year, month)
	if err != nil {
		return fmt.Errorf("get snapshot version: %w", err)
	}
	snap, err := w.source.GetSnapshot(ctx, year, month)
	if err != nil {
		return fmt.Errorf("get snapshot: %w", err)
	}

	ref, err := w.sheets.RecordSnapshot(ctx, snap)
	if err != nil {
		if markErr := w.source.MarkSyncError(ctx, year, month); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "period", snap.Period(), "error", markErr)
		}
		return fmt.Errorf("write to sheets: %w", err)
	}

	// A newer version recorded meanwhile stays pending.
	if err := w.source.MarkSynced(ctx, year, month, version); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "period", snap.Period(), "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced snapshot",
		"period", snap.Period(),
		"version", version,
		"sheets_ref", ref)
	return nil
}
