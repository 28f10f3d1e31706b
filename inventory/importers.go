/*
importers.go - One import per entity kind, plus the ordered import table

PURPOSE:
  Wires each Kind to its repository and parent indices, runs the generic
  reconciler, commits once, logs a summary and records the run.

LIFECYCLE OF ONE IMPORT:
  1. Load parent indices (items, rules, menus) from the store
  2. generic.Reconcile stages inserts and updates
  3. Commit (on any failure: Rollback, nothing durable)
  4. Log "Import <Kind>: N inserted, N updated, N skipped, N invalid"
  5. Append a generic.Run to the run log, if one is configured

ORDERING:
  Targets lists the kinds parents-first. ImportData walks it strictly in
  order and stops at the first failure; earlier targets stay committed.

SEE ALSO:
  - kinds.go: Per-kind policies
  - generic/reconcile.go: The engine
*/
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/warp/inventory-sync/generic"
)

// Importer runs imports against one Store.
type Importer struct {
	Store Store
	Log   *logrus.Logger

	// Runs, if set, receives one entry per import.
	Runs generic.RunLog

	// Now is the clock used for run timestamps. Defaults to time.Now.
	Now func() time.Time
}

func NewImporter(store Store, log *logrus.Logger) *Importer {
	return &Importer{Store: store, Log: log, Now: time.Now}
}

// Named is implemented by row sources that know where their rows come from.
type Named interface {
	Name() string
}

func sourceName(src generic.RowSource) string {
	if n, ok := src.(Named); ok {
		return n.Name()
	}
	return ""
}

// =============================================================================
// PER-KIND IMPORTS
// =============================================================================

func (imp *Importer) ImportInventoryItems(ctx context.Context, src generic.RowSource) (generic.Result, error) {
	return run(ctx, imp, src, imp.Store.InventoryItems(), InventoryItemKind())
}

func (imp *Importer) ImportPriceRules(ctx context.Context, src generic.RowSource) (generic.Result, error) {
	return run(ctx, imp, src, imp.Store.PriceRules(), PriceRuleKind())
}

func (imp *Importer) ImportWebMenuItems(ctx context.Context, src generic.RowSource) (generic.Result, error) {
	return run(ctx, imp, src, imp.Store.WebMenuItems(), WebMenuItemKind())
}

func (imp *Importer) ImportWarehouseStockItems(ctx context.Context, src generic.RowSource) (generic.Result, error) {
	items, err := imp.itemIndex(ctx)
	if err != nil {
		return generic.Result{Kind: "WarehouseStockItems"}, err
	}
	return run(ctx, imp, src, imp.Store.WarehouseStockItems(), WarehouseStockItemKind(items))
}

func (imp *Importer) ImportContractItems(ctx context.Context, src generic.RowSource) (generic.Result, error) {
	items, err := imp.itemIndex(ctx)
	if err != nil {
		return generic.Result{Kind: "ContractItems"}, err
	}
	return run(ctx, imp, src, imp.Store.ContractItems(), ContractItemKind(items))
}

func (imp *Importer) ImportSupplierItems(ctx context.Context, src generic.RowSource) (generic.Result, error) {
	items, err := imp.itemIndex(ctx)
	if err != nil {
		return generic.Result{Kind: "SupplierItems"}, err
	}
	return run(ctx, imp, src, imp.Store.SupplierItems(), SupplierItemKind(items))
}

func (imp *Importer) ImportGTINItems(ctx context.Context, src generic.RowSource) (generic.Result, error) {
	items, err := imp.itemIndex(ctx)
	if err != nil {
		return generic.Result{Kind: "GTINItems"}, err
	}
	return run(ctx, imp, src, imp.Store.GTINItems(), GTINItemKind(items))
}

func (imp *Importer) ImportPriceRegionItems(ctx context.Context, src generic.RowSource) (generic.Result, error) {
	items, err := imp.itemIndex(ctx)
	if err != nil {
		return generic.Result{Kind: "PriceRegionItems"}, err
	}
	rules, err := imp.Store.PriceRules().All(ctx)
	if err != nil {
		imp.Store.Rollback()
		return generic.Result{Kind: "PriceRegionItems"}, fmt.Errorf("load PriceRules: %w", err)
	}
	kind := PriceRegionItemKind(items, generic.BuildIndex(rules, PriceRuleKey))
	return run(ctx, imp, src, imp.Store.PriceRegionItems(), kind)
}

func (imp *Importer) ImportInventoryWebDataItems(ctx context.Context, src generic.RowSource) (generic.Result, error) {
	items, err := imp.itemIndex(ctx)
	if err != nil {
		return generic.Result{Kind: "InventoryWebDataItems"}, err
	}
	menus, err := imp.Store.WebMenuItems().All(ctx)
	if err != nil {
		imp.Store.Rollback()
		return generic.Result{Kind: "InventoryWebDataItems"}, fmt.Errorf("load WebMenuItems: %w", err)
	}
	kind := InventoryWebDataItemKind(items, generic.BuildIndex(menus, WebMenuItemKey))
	return run(ctx, imp, src, imp.Store.InventoryWebDataItems(), kind)
}

func (imp *Importer) itemIndex(ctx context.Context) (generic.Index[InventoryItem], error) {
	items, err := imp.Store.InventoryItems().All(ctx)
	if err != nil {
		imp.Store.Rollback()
		return nil, fmt.Errorf("load InventoryItems: %w", err)
	}
	return generic.BuildIndex(items, InventoryItemKey), nil
}

// run is the shared reconcile → commit → log → record sequence.
func run[E any, R any](ctx context.Context, imp *Importer, src generic.RowSource, repo generic.Repository[E], kind generic.Kind[E, R]) (generic.Result, error) {
	started := imp.now()
	log := imp.Log.WithField("kind", kind.Name)
	if kind.Rejected == nil {
		kind.Rejected = func(row generic.Row, err error) {
			entry := log.WithField("row", map[string]string(row))
			if err != nil {
				entry.WithError(err).Debug("invalid row")
			} else {
				entry.Debug("skipped row")
			}
		}
	}

	result, err := generic.Reconcile(ctx, src, repo, kind)
	if err == nil {
		if cerr := imp.Store.Commit(ctx); cerr != nil {
			err = fmt.Errorf("%w: %s: %w", generic.ErrCommitFailed, kind.Name, cerr)
		}
	}
	if err != nil {
		imp.Store.Rollback()
		log.WithError(err).Error("import failed")
		imp.record(ctx, src, result, started, err)
		return result, err
	}

	log.WithFields(logrus.Fields{
		"inserted": result.Inserted,
		"updated":  result.Updated,
		"skipped":  result.Skipped,
		"invalid":  result.Invalid,
	}).Info(result.String())
	imp.record(ctx, src, result, started, nil)
	return result, nil
}

func (imp *Importer) record(ctx context.Context, src generic.RowSource, result generic.Result, started time.Time, failure error) {
	if imp.Runs == nil {
		return
	}
	r := generic.Run{
		ID:         uuid.NewString(),
		Source:     sourceName(src),
		Result:     result,
		Status:     generic.RunCompleted,
		StartedAt:  started,
		FinishedAt: imp.now(),
	}
	if failure != nil {
		r.Status = generic.RunFailed
		r.Error = failure.Error()
	}
	if err := imp.Runs.SaveRun(context.WithoutCancel(ctx), r); err != nil {
		imp.Log.WithError(err).WithField("kind", result.Kind).Warn("could not record import run")
	}
}

func (imp *Importer) now() time.Time {
	if imp.Now == nil {
		return time.Now()
	}
	return imp.Now()
}

// =============================================================================
// IMPORT TABLE
// =============================================================================

// Import file names, as used in the import_paths configuration section.
const (
	PathInventoryItems        = "inventory_items_datagrid"
	PathPriceRules            = "price_rules_datagrid"
	PathPricelist             = "pricelist_datagrid"
	PathContractItems         = "contract_items_datagrid"
	PathSupplierItems         = "supplier_items_datagrid"
	PathGTINItems             = "gtin_items_datagrid"
	PathWebMenu               = "web_menu"
	PathInventoryWebDataItems = "inventory_web_data_items_datagrid"
	PathWebMenuMappings       = "web_menu_mappings"
	PathMissingImagesReport   = "missing_images_report"
	PathSupplierPricelist     = "supplier_pricelist"
)

// Target is one entry of the ordered import table.
type Target struct {
	Model   string // e.g. "InventoryItem"
	PathKey string
	Import  func(imp *Importer, ctx context.Context, src generic.RowSource) (generic.Result, error)
}

// Targets lists every persisted kind, parents before children. Items and
// warehouse stock both come from the inventory datagrid.
var Targets = []Target{
	{"InventoryItem", PathInventoryItems, (*Importer).ImportInventoryItems},
	{"WarehouseStockItem", PathInventoryItems, (*Importer).ImportWarehouseStockItems},
	{"PriceRule", PathPriceRules, (*Importer).ImportPriceRules},
	{"PriceRegionItem", PathPricelist, (*Importer).ImportPriceRegionItems},
	{"ContractItem", PathContractItems, (*Importer).ImportContractItems},
	{"SupplierItem", PathSupplierItems, (*Importer).ImportSupplierItems},
	{"GTINItem", PathGTINItems, (*Importer).ImportGTINItems},
	{"WebMenuItem", PathWebMenu, (*Importer).ImportWebMenuItems},
	{"InventoryWebDataItem", PathInventoryWebDataItems, (*Importer).ImportInventoryWebDataItems},
}

// ErrUnknownModel is returned by ImportData for a model not in Targets.
var ErrUnknownModel = errors.New("unknown model")

// OpenFunc opens the row source for an import path key.
type OpenFunc func(pathKey string) (generic.RowSource, error)

// ImportData runs the given models in table order, or every model when
// none are given. It stops at the first failure.
func (imp *Importer) ImportData(ctx context.Context, open OpenFunc, models ...string) ([]generic.Result, error) {
	selected := make(map[string]bool, len(models))
	for _, m := range models {
		if !hasTarget(m) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownModel, m)
		}
		selected[m] = true
	}

	var results []generic.Result
	for _, t := range Targets {
		if len(selected) > 0 && !selected[t.Model] {
			continue
		}
		src, err := open(t.PathKey)
		if err != nil {
			return results, fmt.Errorf("%w: %s: %w", generic.ErrRowSource, t.PathKey, err)
		}
		result, err := t.Import(imp, ctx, src)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func hasTarget(model string) bool {
	for _, t := range Targets {
		if t.Model == model {
			return true
		}
	}
	return false
}
