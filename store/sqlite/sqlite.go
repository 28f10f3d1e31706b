/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists every reconciled entity kind, the import run log and the latest
  price snapshot set. In production, the same patterns apply to PostgreSQL;
  only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  inventory.Store:       via Session (one unit of work per import)
  generic.RunLog:        import_runs
  pricing.SnapshotStore: price_snapshots

KEY TABLES:
  inventory_items:          Root entity, keyed by item code
  price_rules:              Keyed by rule code
  price_region_items:       (region, item_code); rule_code nullable
  contract_items:           (contract, item_code)
  warehouse_stock_items:    (warehouse, item_code)
  supplier_items:           (supplier, item_code)
  gtin_items:               (gtin, item_code)
  web_menu_items:           (parent_name, child_name)
  inventory_web_data_items: item_code; menu reference nullable
  price_snapshots:          Latest "was" prices, replaced on every save
  import_runs:              Append-only run log

  Every child table references its parents with a FOREIGN KEY, so a
  dangling code can never be stored. Tiered values (prices, quantities)
  are JSON arrays of decimal strings.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The pool is limited to one
  connection so ":memory:" databases are shared by every query.

USAGE:
  store, err := sqlite.New("./data/pxi.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  sess := store.NewSession()
  imp := inventory.NewImporter(sess, logger)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - session.go: Unit of work implementing inventory.Store
  - records.go: Per-kind load and save statements
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("not found")

// Store owns the database handle.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS inventory_items (
		code TEXT PRIMARY KEY,
		description_line_1 TEXT NOT NULL DEFAULT '',
		description_line_2 TEXT NOT NULL DEFAULT '',
		description_line_3 TEXT NOT NULL DEFAULT '',
		uom TEXT NOT NULL DEFAULT '',
		brand TEXT NOT NULL DEFAULT '',
		apn TEXT NOT NULL DEFAULT '',
		item_group TEXT NOT NULL DEFAULT '',
		created TEXT,
		item_type TEXT NOT NULL DEFAULT '',
		condition TEXT NOT NULL DEFAULT '',
		replacement_cost TEXT NOT NULL DEFAULT '0'
	);

	CREATE TABLE IF NOT EXISTS price_rules (
		code TEXT PRIMARY KEY,
		description TEXT NOT NULL DEFAULT '',
		price_bases_json TEXT NOT NULL,
		price_factors_json TEXT NOT NULL,
		rrp_excl_basis TEXT NOT NULL DEFAULT '',
		rrp_excl_factor TEXT NOT NULL DEFAULT '0',
		rrp_incl_basis TEXT NOT NULL DEFAULT '',
		rrp_incl_factor TEXT NOT NULL DEFAULT '0'
	);

	CREATE TABLE IF NOT EXISTS price_region_items (
		region TEXT NOT NULL,
		item_code TEXT NOT NULL REFERENCES inventory_items(code),
		rule_code TEXT REFERENCES price_rules(code),
		tax_code TEXT NOT NULL,
		quantities_json TEXT NOT NULL,
		prices_json TEXT NOT NULL,
		rrp_excl_tax TEXT NOT NULL DEFAULT '0',
		rrp_incl_tax TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (region, item_code)
	);

	CREATE INDEX IF NOT EXISTS idx_price_region_items_item
		ON price_region_items(item_code);

	CREATE TABLE IF NOT EXISTS contract_items (
		contract TEXT NOT NULL,
		item_code TEXT NOT NULL REFERENCES inventory_items(code),
		prices_json TEXT NOT NULL,
		PRIMARY KEY (contract, item_code)
	);

	CREATE TABLE IF NOT EXISTS warehouse_stock_items (
		warehouse TEXT NOT NULL,
		item_code TEXT NOT NULL REFERENCES inventory_items(code),
		minimum TEXT NOT NULL DEFAULT '0',
		maximum TEXT NOT NULL DEFAULT '0',
		on_hand TEXT NOT NULL DEFAULT '0',
		bin_location TEXT NOT NULL DEFAULT '',
		bulk_location TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (warehouse, item_code)
	);

	CREATE TABLE IF NOT EXISTS supplier_items (
		supplier TEXT NOT NULL,
		item_code TEXT NOT NULL REFERENCES inventory_items(code),
		supplier_item_code TEXT NOT NULL DEFAULT '',
		priority INTEGER NOT NULL DEFAULT 0,
		uom TEXT NOT NULL DEFAULT '',
		conv_factor TEXT NOT NULL DEFAULT '0',
		pack_quantity TEXT NOT NULL DEFAULT '0',
		moq TEXT NOT NULL DEFAULT '0',
		buy_price TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (supplier, item_code)
	);

	CREATE TABLE IF NOT EXISTS gtin_items (
		gtin TEXT NOT NULL,
		item_code TEXT NOT NULL REFERENCES inventory_items(code),
		uom TEXT NOT NULL DEFAULT '',
		conv_factor TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (gtin, item_code)
	);

	CREATE TABLE IF NOT EXISTS web_menu_items (
		parent_name TEXT NOT NULL,
		child_name TEXT NOT NULL,
		PRIMARY KEY (parent_name, child_name)
	);

	CREATE TABLE IF NOT EXISTS inventory_web_data_items (
		item_code TEXT PRIMARY KEY REFERENCES inventory_items(code),
		menu_parent TEXT,
		menu_child TEXT,
		description TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (menu_parent, menu_child)
			REFERENCES web_menu_items(parent_name, child_name)
	);

	-- Latest "was" prices, taken before a pricelist re-import
	CREATE TABLE IF NOT EXISTS price_snapshots (
		region TEXT NOT NULL,
		item_code TEXT NOT NULL,
		quantities_json TEXT NOT NULL,
		prices_json TEXT NOT NULL,
		taken_at TEXT NOT NULL,
		PRIMARY KEY (region, item_code)
	);

	-- Import run log (append-only)
	CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		source TEXT,
		inserted INTEGER NOT NULL DEFAULT 0,
		updated INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		invalid INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_import_runs_started
		ON import_runs(started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(sqlTx); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339, s.String)
	return t
}
