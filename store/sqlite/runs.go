package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/warp/inventory-sync/generic"
	"github.com/warp/inventory-sync/inventory"
	"github.com/warp/inventory-sync/pricing"
)

// =============================================================================
// IMPORT RUNS
// =============================================================================

// SaveRun appends an import run.
func (s *Store) SaveRun(ctx context.Context, r generic.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO import_runs (id, kind, source, inserted, updated, skipped, invalid,
			status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Result.Kind, nullString(r.Source),
		r.Result.Inserted, r.Result.Updated, r.Result.Skipped, r.Result.Invalid,
		string(r.Status), nullString(r.Error),
		r.StartedAt.Format(time.RFC3339Nano), r.FinishedAt.Format(time.RFC3339Nano),
	)
	return err
}

// Runs returns the most recent runs first. limit <= 0 means all.
func (s *Store) Runs(ctx context.Context, limit int) ([]generic.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, kind, source, inserted, updated, skipped, invalid,
			status, error, started_at, finished_at
		FROM import_runs
		ORDER BY rowid DESC
	`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []generic.Run
	for rows.Next() {
		var r generic.Run
		var source, runErr sql.NullString
		var startedAt, finishedAt string
		if err := rows.Scan(
			&r.ID, &r.Result.Kind, &source,
			&r.Result.Inserted, &r.Result.Updated, &r.Result.Skipped, &r.Result.Invalid,
			&r.Status, &runErr, &startedAt, &finishedAt,
		); err != nil {
			return nil, err
		}
		r.Source = source.String
		r.Error = runErr.String
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt)
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// =============================================================================
// PRICE SNAPSHOTS
// =============================================================================

// SaveSnapshots replaces the stored snapshot set.
func (s *Store) SaveSnapshots(ctx context.Context, set pricing.SnapshotSet) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM price_snapshots`); err != nil {
			return err
		}
		takenAt := set.TakenAt.Format(time.RFC3339)
		for key, snap := range set.Prices {
			quantities, err := toJSON(snap.Quantities)
			if err != nil {
				return err
			}
			prices, err := toJSON(snap.Prices)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO price_snapshots (region, item_code, quantities_json, prices_json, taken_at)
				VALUES (?, ?, ?, ?, ?)
			`, key.Region, key.Item, quantities, prices, takenAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// LatestSnapshots returns the stored snapshot set. An empty set has a zero
// TakenAt.
func (s *Store) LatestSnapshots(ctx context.Context) (pricing.SnapshotSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := pricing.SnapshotSet{Prices: make(map[pricing.SnapshotKey]pricing.Snapshot)}
	rows, err := s.db.QueryContext(ctx, `
		SELECT region, item_code, quantities_json, prices_json, taken_at FROM price_snapshots
	`)
	if err != nil {
		return set, err
	}
	defer rows.Close()

	for rows.Next() {
		var region, itemCode, quantities, prices, takenAt string
		if err := rows.Scan(&region, &itemCode, &quantities, &prices, &takenAt); err != nil {
			return set, err
		}
		var snap pricing.Snapshot
		if err := fromJSON(quantities, &snap.Quantities); err != nil {
			return set, err
		}
		if err := fromJSON(prices, &snap.Prices); err != nil {
			return set, err
		}
		set.Prices[pricing.SnapshotKey{Region: region, Item: itemCode}] = snap
		set.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	}
	return set, rows.Err()
}

// =============================================================================
// READ HELPERS
// =============================================================================

// InventoryItem loads one item by code.
func (s *Store) InventoryItem(ctx context.Context, code string) (*inventory.InventoryItem, error) {
	items, err := queryAll(ctx, s, inventoryItemSelect+` WHERE code = ?`, scanInventoryItem, code)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("inventory item %s: %w", code, ErrNotFound)
	}
	return items[0], nil
}
