/*
reconcile.go - The generic reconciliation routine

PURPOSE:
  Every entity kind is imported the same way:

    build index → per-row validate → build record → upsert → (caller commits)

  Only three things differ between kinds, and they are injected via Kind:
  the natural key, the reference validator and the row → record builder.

OUTCOMES:
  Each row lands in exactly one counter:
  - Skipped:  the validator rejected the row (orphan reference, blank
              required field, duplicate within the batch, ...)
  - Invalid:  the row was accepted but a field could not be parsed
  - Inserted: no record with the row's key existed
  - Updated:  a record with the row's key existed and was overwritten
              (a no-op overwrite still counts as updated)

DURABILITY:
  Reconcile never commits. The caller commits once after the whole source
  has been processed, or rolls back if Reconcile returns an error.

SEE ALSO:
  - index.go: Index and Upsert
  - inventory/kinds.go: Per-kind validators and builders
*/
package generic

import (
	"context"
	"fmt"
)

// Kind describes how rows become records of type E. R carries whatever
// the validator resolved (parent records) into the builder.
type Kind[E any, R any] struct {
	// Name is used in results and logs, e.g. "ContractItems".
	Name string

	// Key returns the natural key of a record.
	Key func(rec *E) Key

	// Validate decides whether a row may be reconciled and resolves its
	// references. Validators may keep per-batch state (e.g. seen keys), so
	// a fresh Kind should be built for each batch.
	Validate func(row Row) (R, bool)

	// Build maps an accepted row to a new record. A *FieldError marks the
	// row as invalid.
	Build func(row Row, refs R) (*E, error)

	// Rejected, if set, is called for every skipped or invalid row.
	// err is nil for validator rejections.
	Rejected func(row Row, err error)

	// Accepted, if set, is called with every record that was built,
	// before it is merged into the index.
	Accepted func(rec *E)
}

// Reconcile merges every row of src into the records held by repo.
// New and updated records are staged on repo; nothing is committed.
func Reconcile[E any, R any](ctx context.Context, src RowSource, repo Repository[E], kind Kind[E, R]) (Result, error) {
	result := Result{Kind: kind.Name}

	existing, err := repo.All(ctx)
	if err != nil {
		return result, fmt.Errorf("load %s: %w", kind.Name, err)
	}
	idx := BuildIndex(existing, kind.Key)

	err = src.Each(ctx, func(row Row) error {
		refs, ok := kind.Validate(row)
		if !ok {
			result.Skipped++
			kind.reject(row, nil)
			return nil
		}

		rec, err := kind.Build(row, refs)
		if err != nil {
			if !IsRowLevel(err) {
				return err
			}
			result.Invalid++
			kind.reject(row, err)
			return nil
		}

		if kind.Accepted != nil {
			kind.Accepted(rec)
		}
		if idx.Upsert(kind.Key(rec), rec, repo) {
			result.Inserted++
		} else {
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("reconcile %s: %w", kind.Name, err)
	}

	return result, nil
}

func (k Kind[E, R]) reject(row Row, err error) {
	if k.Rejected != nil {
		k.Rejected(row, err)
	}
}
