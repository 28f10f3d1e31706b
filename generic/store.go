/*
store.go - Persistence boundary for reconciled records

PURPOSE:
  Defines the interface between the reconciliation engine and the database.
  The engine only needs three capabilities per kind: fetch every record,
  stage a new record, stage an updated record. Staged writes become durable
  on Commit, all together, or not at all.

KEY INTERFACES:
  Repository: Per-kind fetch-all and staging
  Committer:  Unit-of-work boundary (commit / rollback)
  RunLog:     Audit log of import runs

UNIT OF WORK:
  Records returned by All are live: reconciliation mutates them in place
  and then calls Update. Until Commit succeeds those mutations are not
  durable. Rollback discards staged writes and in-place mutations.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite session
  - store/memory/memory.go: In-memory fake for testing

SEE ALSO:
  - reconcile.go: Consumer of Repository
  - inventory/store.go: Aggregates repositories for every entity kind
*/
package generic

import (
	"context"
	"time"
)

// =============================================================================
// REPOSITORY - Per-kind persistence capability
// =============================================================================

// Repository gives access to all persisted records of one kind.
type Repository[E any] interface {
	Stager[E]

	// All returns every record of the kind, natural-key fields and parent
	// references populated. Records added in the current unit of work are
	// included.
	All(ctx context.Context) ([]*E, error)
}

// Committer is the unit-of-work boundary.
type Committer interface {
	// Commit flushes every staged write atomically.
	Commit(ctx context.Context) error

	// Rollback discards every staged write. Safe to call after a failed
	// Commit, or more than once.
	Rollback()
}

// =============================================================================
// RUN LOG - One entry per import target per invocation
// =============================================================================

type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run records the outcome of one import.
type Run struct {
	ID         string
	Source     string // file the rows came from
	Result     Result
	Status     RunStatus
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunLog stores import runs. Append-only.
type RunLog interface {
	SaveRun(ctx context.Context, run Run) error
	Runs(ctx context.Context, limit int) ([]Run, error)
}
