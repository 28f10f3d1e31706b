// Package memory provides an in-memory inventory.Store for tests and dry runs.
package memory

import (
	"context"
	"sync"

	"github.com/warp/inventory-sync/generic"
	"github.com/warp/inventory-sync/inventory"
	"github.com/warp/inventory-sync/pricing"
)

// =============================================================================
// TABLE - One kind's records plus the pre-images needed for rollback
// =============================================================================

// table holds live records. Reconciliation mutates them in place, so the
// first All after a commit saves a copy of every record; Rollback writes
// the copies back and drops records added since.
type table[E any] struct {
	mu    *sync.Mutex
	rows  []*E
	added []*E
	saved map[*E]E
}

func newTable[E any](mu *sync.Mutex) *table[E] {
	return &table[E]{mu: mu}
}

func (t *table[E]) All(_ context.Context) ([]*E, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.saved == nil {
		t.saved = make(map[*E]E, len(t.rows))
		for _, r := range t.rows {
			t.saved[r] = *r
		}
	}
	return append([]*E(nil), t.rows...), nil
}

func (t *table[E]) Add(rec *E) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, rec)
	t.added = append(t.added, rec)
}

// Update is a no-op: the record was already mutated in place.
func (t *table[E]) Update(*E) {}

func (t *table[E]) commit() {
	t.added = nil
	t.saved = nil
}

func (t *table[E]) rollback() {
	for rec, pre := range t.saved {
		*rec = pre
	}
	if n := len(t.added); n > 0 {
		dropped := make(map[*E]bool, n)
		for _, r := range t.added {
			dropped[r] = true
		}
		kept := t.rows[:0]
		for _, r := range t.rows {
			if !dropped[r] {
				kept = append(kept, r)
			}
		}
		t.rows = kept
	}
	t.commit()
}

func (t *table[E]) snapshot() []*E {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*E(nil), t.rows...)
}

// =============================================================================
// STORE
// =============================================================================

// Store is an inventory.Store, a generic.RunLog and a pricing.SnapshotStore
// held in memory. Safe for concurrent use, but like any unit of work it
// should be driven by one importer at a time.
type Store struct {
	mu sync.Mutex

	items      *table[inventory.InventoryItem]
	rules      *table[inventory.PriceRule]
	regions    *table[inventory.PriceRegionItem]
	contracts  *table[inventory.ContractItem]
	warehouses *table[inventory.WarehouseStockItem]
	suppliers  *table[inventory.SupplierItem]
	gtins      *table[inventory.GTINItem]
	menus      *table[inventory.WebMenuItem]
	webData    *table[inventory.InventoryWebDataItem]

	runs      []generic.Run
	snapshots pricing.SnapshotSet

	// FailCommit, when set, is returned by the next Commit instead of
	// committing. Used to exercise rollback paths.
	FailCommit error

	// Commits counts successful commits.
	Commits int
}

func New() *Store {
	s := &Store{}
	s.items = newTable[inventory.InventoryItem](&s.mu)
	s.rules = newTable[inventory.PriceRule](&s.mu)
	s.regions = newTable[inventory.PriceRegionItem](&s.mu)
	s.contracts = newTable[inventory.ContractItem](&s.mu)
	s.warehouses = newTable[inventory.WarehouseStockItem](&s.mu)
	s.suppliers = newTable[inventory.SupplierItem](&s.mu)
	s.gtins = newTable[inventory.GTINItem](&s.mu)
	s.menus = newTable[inventory.WebMenuItem](&s.mu)
	s.webData = newTable[inventory.InventoryWebDataItem](&s.mu)
	return s
}

func (s *Store) InventoryItems() generic.Repository[inventory.InventoryItem] {
	return s.items
}

func (s *Store) PriceRules() generic.Repository[inventory.PriceRule] {
	return s.rules
}

func (s *Store) PriceRegionItems() generic.Repository[inventory.PriceRegionItem] {
	return s.regions
}

func (s *Store) ContractItems() generic.Repository[inventory.ContractItem] {
	return s.contracts
}

func (s *Store) WarehouseStockItems() generic.Repository[inventory.WarehouseStockItem] {
	return s.warehouses
}

func (s *Store) SupplierItems() generic.Repository[inventory.SupplierItem] {
	return s.suppliers
}

func (s *Store) GTINItems() generic.Repository[inventory.GTINItem] {
	return s.gtins
}

func (s *Store) WebMenuItems() generic.Repository[inventory.WebMenuItem] {
	return s.menus
}

func (s *Store) InventoryWebDataItems() generic.Repository[inventory.InventoryWebDataItem] {
	return s.webData
}

func (s *Store) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailCommit; err != nil {
		s.FailCommit = nil
		return err
	}
	s.items.commit()
	s.rules.commit()
	s.regions.commit()
	s.contracts.commit()
	s.warehouses.commit()
	s.suppliers.commit()
	s.gtins.commit()
	s.menus.commit()
	s.webData.commit()
	s.Commits++
	return nil
}

// Rollback restores every record read since the last commit and drops
// every record added since.
func (s *Store) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.webData.rollback()
	s.gtins.rollback()
	s.suppliers.rollback()
	s.warehouses.rollback()
	s.contracts.rollback()
	s.regions.rollback()
	s.menus.rollback()
	s.rules.rollback()
	s.items.rollback()
}

// =============================================================================
// READ HELPERS - Committed and staged records, for assertions and exports
// =============================================================================

func (s *Store) Items() []*inventory.InventoryItem {
	return s.items.snapshot()
}

func (s *Store) Rules() []*inventory.PriceRule {
	return s.rules.snapshot()
}

func (s *Store) Regions() []*inventory.PriceRegionItem {
	return s.regions.snapshot()
}

func (s *Store) Contracts() []*inventory.ContractItem {
	return s.contracts.snapshot()
}

func (s *Store) Warehouses() []*inventory.WarehouseStockItem {
	return s.warehouses.snapshot()
}

func (s *Store) Suppliers() []*inventory.SupplierItem {
	return s.suppliers.snapshot()
}

func (s *Store) GTINs() []*inventory.GTINItem {
	return s.gtins.snapshot()
}

func (s *Store) Menus() []*inventory.WebMenuItem {
	return s.menus.snapshot()
}

func (s *Store) WebData() []*inventory.InventoryWebDataItem {
	return s.webData.snapshot()
}

// =============================================================================
// RUN LOG
// =============================================================================

func (s *Store) SaveRun(_ context.Context, run generic.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

// Runs returns the most recent runs first. limit <= 0 means all.
func (s *Store) Runs(_ context.Context, limit int) ([]generic.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]generic.Run, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		out = append(out, s.runs[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// =============================================================================
// PRICE SNAPSHOTS
// =============================================================================

func (s *Store) SaveSnapshots(_ context.Context, set pricing.SnapshotSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = set.Clone()
	return nil
}

func (s *Store) LatestSnapshots(_ context.Context) (pricing.SnapshotSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots.Clone(), nil
}
