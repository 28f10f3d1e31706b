/*
Package generic provides the core entity reconciliation engine.

PURPOSE:
  This package contains domain-agnostic types and algorithms for merging
  rows from external flat-file extracts into canonical, uniquely-keyed
  records. Whether the rows describe inventory items, contract prices or
  barcodes, the same engine handles indexing, insert-vs-update decisions
  and outcome counting.

KEY CONCEPTS IN THIS FILE (types.go):
  - Key: A natural (possibly composite) key identifying a record
  - Row: One field-name → value mapping produced by a row source
  - RowSource: A lazy, finite, restartable sequence of rows
  - Result: Inserted/updated/skipped/invalid counts for one import

DESIGN PRINCIPLES:
  1. Kind-agnostic: all per-kind behaviour is injected (see Kind)
  2. Precision: numeric fields are parsed into decimal.Decimal
  3. Batch durability: nothing is persisted until the caller commits

USAGE:
  src := generic.RowSlice{{"item_code": "A1"}, {"item_code": "B2"}}
  result, err := generic.Reconcile(ctx, src, repo, kind)

SEE ALSO:
  - index.go: Entity index and upsert
  - reconcile.go: The generic reconciliation routine
  - store.go: Persistence boundary
*/
package generic

import (
	"context"
	"fmt"
	"strings"
)

// =============================================================================
// KEYS
// =============================================================================

// Key identifies a record within its kind.
type Key string

// KeySeparator joins the parts of a composite key.
const KeySeparator = "--"

// CompositeKey builds a key from its parts, e.g. ("C100", "ITEM1") → "C100--ITEM1".
// Empty parts are kept so that ("", "ITEM1") stays distinct from ("ITEM1").
func CompositeKey(parts ...string) Key {
	return Key(strings.Join(parts, KeySeparator))
}

// =============================================================================
// ROWS
// =============================================================================

// Row is one record from a row source, keyed by field name.
// A missing field and a blank field are equivalent.
type Row map[string]string

// Get returns the trimmed value of a field, or "" if absent.
func (r Row) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Blank reports whether a field is absent or empty.
func (r Row) Blank(field string) bool {
	return r.Get(field) == ""
}

// RowSource produces rows in file order. Each may be called more than once;
// every call restarts from the first row.
type RowSource interface {
	// Each calls fn for every row. Iteration stops at the first error
	// returned by fn, or when ctx is done.
	Each(ctx context.Context, fn func(Row) error) error
}

// RowSlice is an in-memory RowSource.
type RowSlice []Row

func (s RowSlice) Each(ctx context.Context, fn func(Row) error) error {
	for _, row := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// RESULT - Outcome counters for one import
// =============================================================================

// Result counts the outcome of reconciling one row source into one kind.
type Result struct {
	Kind     string
	Inserted int
	Updated  int
	Skipped  int // rejected by the kind's validator or dedup policy
	Invalid  int // fields could not be parsed
}

// Total is the number of rows seen.
func (r Result) Total() int {
	return r.Inserted + r.Updated + r.Skipped + r.Invalid
}

func (r Result) String() string {
	return fmt.Sprintf("Import %s: %d inserted, %d updated, %d skipped, %d invalid.",
		r.Kind, r.Inserted, r.Updated, r.Skipped, r.Invalid)
}
