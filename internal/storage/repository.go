package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"agencia/internal/core"
	ports "agencia/internal/sheets"

	_ "modernc.org/sqlite"
)

// Sync states of a snapshot row.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.SnapshotStore = (*SQLiteRepository)(nil)

// PendingSync identifies a snapshot that still has to be mirrored.
type PendingSync struct {
	Year      int
	Month     int
	Version   int64
	UpdatedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const snapshotColumns = `year, month, income_cents, expenses_cents, assets_cents, balance_cents`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (core.Snapshot, error) {
	var s core.Snapshot
	err := row.Scan(&s.Year, &s.Month, &s.Income.Cents, &s.Expenses.Cents, &s.Assets.Cents, &s.Balance.Cents)
	return s, err
}

// ListSnapshots implements sheets.SnapshotReader
func (r *SQLiteRepository) ListSnapshots(ctx context.Context, year int) ([]core.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM financial_snapshots WHERE year = ? ORDER BY month`, year)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]core.Snapshot, 0, 12)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

// GetSnapshot implements sheets.SnapshotGetter
func (r *SQLiteRepository) GetSnapshot(ctx context.Context, year, month int) (core.Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM financial_snapshots WHERE year = ? AND month = ?`, year, month)
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Snapshot{}, core.ErrNotFound
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("get snapshot %04d-%02d: %w", year, month, err)
	}
	return s, nil
}

// RecordSnapshot implements sheets.SnapshotWriter. An existing month is
// overwritten, its version bumped and its sync state reset to pending.
func (r *SQLiteRepository) RecordSnapshot(ctx context.Context, s core.Snapshot) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	var id, version int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO financial_snapshots (`+snapshotColumns+`)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (year, month) DO UPDATE SET
    income_cents = excluded.income_cents,
    expenses_cents = excluded.expenses_cents,
    assets_cents = excluded.assets_cents,
    balance_cents = excluded.balance_cents,
    version = financial_snapshots.version + 1,
    sync_status = 'pending',
    updated_at = CURRENT_TIMESTAMP
RETURNING id, version`,
		s.Year, s.Month, s.Income.Cents, s.Expenses.Cents, s.Assets.Cents, s.Balance.Cents,
	).Scan(&id, &version)
	if err != nil {
		return "", fmt.Errorf("upsert snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved to SQLite",
		"id", id,
		"period", s.Period(),
		"version", version,
		"income_cents", s.Income.Cents,
		"expenses_cents", s.Expenses.Cents,
		"assets_cents", s.Assets.Cents)

	return strconv.FormatInt(id, 10), nil
}

// ListYears implements sheets.YearLister
func (r *SQLiteRepository) ListYears(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT year FROM financial_snapshots ORDER BY year`)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	defer rows.Close()
	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// GetPendingSync returns snapshots that need to be mirrored to Google Sheets,
// oldest change first.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingSync, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT year, month, version, updated_at FROM financial_snapshots
WHERE sync_status != 'synced'
ORDER BY updated_at, id
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync: %w", err)
	}
	defer rows.Close()
	var out []PendingSync
	for rows.Next() {
		var p PendingSync
		if err := rows.Scan(&p.Year, &p.Month, &p.Version, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced marks a snapshot version as mirrored. A newer version recorded
// in the meantime stays pending.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, year, month int, version int64) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE financial_snapshots SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP
WHERE year = ? AND month = ? AND version = ?`, year, month, version)
	if err != nil {
		return fmt.Errorf("mark snapshot synced: %w", err)
	}
	slog.InfoContext(ctx, "Snapshot marked as synced", "year", year, "month", month, "version", version)
	return nil
}

// MarkSyncError records a failed mirror attempt.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, year, month int) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE financial_snapshots SET sync_status = 'error'
WHERE year = ? AND month = ?`, year, month)
	if err != nil {
		return fmt.Errorf("mark snapshot sync error: %w", err)
	}
	slog.WarnContext(ctx, "Snapshot marked with sync error", "year", year, "month", month)
	return nil
}

// SnapshotVersion returns the current version of a month.
func (r *SQLiteRepository) SnapshotVersion(ctx context.Context, year, month int) (int64, error) {
	var v int64
	err := r.db.QueryRowContext(ctx,
		`SELECT version FROM financial_snapshots WHERE year = ? AND month = ?`, year, month).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get snapshot version: %w", err)
	}
	return v, nil
}
