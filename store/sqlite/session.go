package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/warp/inventory-sync/generic"
	"github.com/warp/inventory-sync/inventory"
)

// =============================================================================
// SESSION - Unit of work implementing inventory.Store
// =============================================================================

// Session caches every record it loads, so that all records of one session
// share parent pointers. Staged writes are flushed by Commit in a single
// transaction, parents first. A Session is not safe for concurrent use.
type Session struct {
	store *Store

	items      *cache[inventory.InventoryItem]
	rules      *cache[inventory.PriceRule]
	menus      *cache[inventory.WebMenuItem]
	regions    *cache[inventory.PriceRegionItem]
	contracts  *cache[inventory.ContractItem]
	warehouses *cache[inventory.WarehouseStockItem]
	suppliers  *cache[inventory.SupplierItem]
	gtins      *cache[inventory.GTINItem]
	webData    *cache[inventory.InventoryWebDataItem]
}

// NewSession starts a unit of work.
func (s *Store) NewSession() *Session {
	sess := &Session{store: s}

	sess.items = &cache[inventory.InventoryItem]{load: s.loadInventoryItems, save: saveInventoryItem}
	sess.rules = &cache[inventory.PriceRule]{load: s.loadPriceRules, save: savePriceRule}
	sess.menus = &cache[inventory.WebMenuItem]{load: s.loadWebMenuItems, save: saveWebMenuItem}

	sess.regions = &cache[inventory.PriceRegionItem]{
		load: func(ctx context.Context) ([]*inventory.PriceRegionItem, error) {
			items, err := sess.itemIndex(ctx)
			if err != nil {
				return nil, err
			}
			rules, err := sess.rules.All(ctx)
			if err != nil {
				return nil, err
			}
			return s.loadPriceRegionItems(ctx, items, generic.BuildIndex(rules, inventory.PriceRuleKey))
		},
		save: savePriceRegionItem,
	}
	sess.contracts = &cache[inventory.ContractItem]{
		load: func(ctx context.Context) ([]*inventory.ContractItem, error) {
			items, err := sess.itemIndex(ctx)
			if err != nil {
				return nil, err
			}
			return s.loadContractItems(ctx, items)
		},
		save: saveContractItem,
	}
	sess.warehouses = &cache[inventory.WarehouseStockItem]{
		load: func(ctx context.Context) ([]*inventory.WarehouseStockItem, error) {
			items, err := sess.itemIndex(ctx)
			if err != nil {
				return nil, err
			}
			return s.loadWarehouseStockItems(ctx, items)
		},
		save: saveWarehouseStockItem,
	}
	sess.suppliers = &cache[inventory.SupplierItem]{
		load: func(ctx context.Context) ([]*inventory.SupplierItem, error) {
			items, err := sess.itemIndex(ctx)
			if err != nil {
				return nil, err
			}
			return s.loadSupplierItems(ctx, items)
		},
		save: saveSupplierItem,
	}
	sess.gtins = &cache[inventory.GTINItem]{
		load: func(ctx context.Context) ([]*inventory.GTINItem, error) {
			items, err := sess.itemIndex(ctx)
			if err != nil {
				return nil, err
			}
			return s.loadGTINItems(ctx, items)
		},
		save: saveGTINItem,
	}
	sess.webData = &cache[inventory.InventoryWebDataItem]{
		load: func(ctx context.Context) ([]*inventory.InventoryWebDataItem, error) {
			items, err := sess.itemIndex(ctx)
			if err != nil {
				return nil, err
			}
			menus, err := sess.menus.All(ctx)
			if err != nil {
				return nil, err
			}
			return s.loadInventoryWebDataItems(ctx, items, generic.BuildIndex(menus, inventory.WebMenuItemKey))
		},
		save: saveInventoryWebDataItem,
	}
	return sess
}

func (sess *Session) itemIndex(ctx context.Context) (generic.Index[inventory.InventoryItem], error) {
	items, err := sess.items.All(ctx)
	if err != nil {
		return nil, err
	}
	return generic.BuildIndex(items, inventory.InventoryItemKey), nil
}

func (sess *Session) InventoryItems() generic.Repository[inventory.InventoryItem] {
	return sess.items
}

func (sess *Session) PriceRules() generic.Repository[inventory.PriceRule] {
	return sess.rules
}

func (sess *Session) PriceRegionItems() generic.Repository[inventory.PriceRegionItem] {
	return sess.regions
}

func (sess *Session) ContractItems() generic.Repository[inventory.ContractItem] {
	return sess.contracts
}

func (sess *Session) WarehouseStockItems() generic.Repository[inventory.WarehouseStockItem] {
	return sess.warehouses
}

func (sess *Session) SupplierItems() generic.Repository[inventory.SupplierItem] {
	return sess.suppliers
}

func (sess *Session) GTINItems() generic.Repository[inventory.GTINItem] {
	return sess.gtins
}

func (sess *Session) WebMenuItems() generic.Repository[inventory.WebMenuItem] {
	return sess.menus
}

func (sess *Session) InventoryWebDataItems() generic.Repository[inventory.InventoryWebDataItem] {
	return sess.webData
}

// Commit writes every staged record in one transaction. On failure nothing
// is written and the staged records are kept; call Rollback to discard
// them.
func (sess *Session) Commit(ctx context.Context) error {
	flushers := []func(context.Context, *sql.Tx) error{
		sess.items.flush,
		sess.rules.flush,
		sess.menus.flush,
		sess.regions.flush,
		sess.contracts.flush,
		sess.warehouses.flush,
		sess.suppliers.flush,
		sess.gtins.flush,
		sess.webData.flush,
	}
	err := sess.store.WithTx(ctx, func(tx *sql.Tx) error {
		for _, flush := range flushers {
			if err := flush(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	sess.items.committed()
	sess.rules.committed()
	sess.menus.committed()
	sess.regions.committed()
	sess.contracts.committed()
	sess.warehouses.committed()
	sess.suppliers.committed()
	sess.gtins.committed()
	sess.webData.committed()
	return nil
}

// Rollback drops every cached record. The next All reloads from the
// database, so in-place mutations made since the last commit are lost.
func (sess *Session) Rollback() {
	sess.items.reset()
	sess.rules.reset()
	sess.menus.reset()
	sess.regions.reset()
	sess.contracts.reset()
	sess.warehouses.reset()
	sess.suppliers.reset()
	sess.gtins.reset()
	sess.webData.reset()
}

// =============================================================================
// CACHE - Identity map plus pending writes for one kind
// =============================================================================

type cache[E any] struct {
	load func(ctx context.Context) ([]*E, error)
	save func(ctx context.Context, tx *sql.Tx, rec *E) error

	loaded  bool
	rows    []*E
	pending []*E
	staged  map[*E]bool
}

func (c *cache[E]) All(ctx context.Context) ([]*E, error) {
	if !c.loaded {
		rows, err := c.load(ctx)
		if err != nil {
			return nil, err
		}
		c.rows = append(rows, c.rows...)
		c.loaded = true
	}
	return append([]*E(nil), c.rows...), nil
}

func (c *cache[E]) Add(rec *E) {
	c.rows = append(c.rows, rec)
	c.stage(rec)
}

func (c *cache[E]) Update(rec *E) {
	c.stage(rec)
}

func (c *cache[E]) stage(rec *E) {
	if c.staged == nil {
		c.staged = make(map[*E]bool)
	}
	if !c.staged[rec] {
		c.staged[rec] = true
		c.pending = append(c.pending, rec)
	}
}

func (c *cache[E]) flush(ctx context.Context, tx *sql.Tx) error {
	for _, rec := range c.pending {
		if err := c.save(ctx, tx, rec); err != nil {
			return fmt.Errorf("save %T: %w", rec, err)
		}
	}
	return nil
}

func (c *cache[E]) committed() {
	c.pending = nil
	c.staged = nil
}

func (c *cache[E]) reset() {
	c.loaded = false
	c.rows = nil
	c.committed()
}
