package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/inventory-sync/generic"
	"github.com/warp/inventory-sync/inventory"
	"github.com/warp/inventory-sync/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newImporter(t *testing.T) (*inventory.Importer, *memory.Store, *logtest.Hook) {
	t.Helper()
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	store := memory.New()
	imp := inventory.NewImporter(store, log)
	imp.Runs = store
	return imp, store, hook
}

func itemRows(codes ...string) generic.RowSlice {
	var rows generic.RowSlice
	for _, c := range codes {
		rows = append(rows, generic.Row{
			"item_code":        c,
			"item_description": "Item " + c,
			"unit":             "EA",
			"status":           "S",
			"creation_date":    "01-Jan-2020",
			"replacement_cost": "1.25",
		})
	}
	return rows
}

func seedItems(t *testing.T, imp *inventory.Importer, codes ...string) {
	t.Helper()
	_, err := imp.ImportInventoryItems(context.Background(), itemRows(codes...))
	require.NoError(t, err)
}

func contractRow(contract, item, price string) generic.Row {
	return generic.Row{"contract_no": contract, "item_code": item, "price_1": price}
}

// =============================================================================
// END-TO-END
// =============================================================================

func TestImport_ItemsThenContracts(t *testing.T) {
	// GIVEN: 3 inventory items
	// WHEN: Importing 5 contract lines, one for an unknown item
	// THEN: 4 contract items are inserted and 1 row is skipped

	ctx := context.Background()
	imp, store, _ := newImporter(t)

	items, err := imp.ImportInventoryItems(ctx, itemRows("A", "B", "C"))
	require.NoError(t, err)
	assert.Equal(t, 3, items.Inserted)

	contracts, err := imp.ImportContractItems(ctx, generic.RowSlice{
		contractRow("C100", "A", "1.00"),
		contractRow("C100", "B", "2.00"),
		contractRow("C100", "C", "3.00"),
		contractRow("C200", "A", "4.00"),
		contractRow("C200", "ZZZ", "5.00"),
	})

	require.NoError(t, err)
	assert.Equal(t, generic.Result{Kind: "ContractItems", Inserted: 4, Skipped: 1}, contracts)
	assert.Len(t, store.Contracts(), 4)
	assert.Equal(t, 2, store.Commits)
}

func TestImport_Idempotent(t *testing.T) {
	ctx := context.Background()
	imp, store, _ := newImporter(t)
	seedItems(t, imp, "A", "B")

	rows := generic.RowSlice{
		{"item_code": "A", "whse": "W1", "on_hand": "5"},
		{"item_code": "B", "whse": "W1", "on_hand": "0"},
	}
	first, err := imp.ImportWarehouseStockItems(ctx, rows)
	require.NoError(t, err)
	second, err := imp.ImportWarehouseStockItems(ctx, rows)
	require.NoError(t, err)

	assert.Equal(t, 2, first.Inserted)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 2, second.Updated)
	assert.Len(t, store.Warehouses(), 2)
}

func TestImport_UpdateKeepsParentIdentity(t *testing.T) {
	// Re-importing items updates them in place, so children keep pointing
	// at the stored item.
	ctx := context.Background()
	imp, store, _ := newImporter(t)
	seedItems(t, imp, "A")
	_, err := imp.ImportContractItems(ctx, generic.RowSlice{contractRow("C1", "A", "1")})
	require.NoError(t, err)

	rows := itemRows("A")
	rows[0]["item_description"] = "Renamed"
	_, err = imp.ImportInventoryItems(ctx, rows)
	require.NoError(t, err)

	contract := store.Contracts()[0]
	assert.Same(t, store.Items()[0], contract.InventoryItem)
	assert.Equal(t, "Renamed", contract.InventoryItem.DescriptionLine1)
}

// =============================================================================
// REFERENCE POLICIES
// =============================================================================

func TestImport_OrphansSkippedForEveryItemKind(t *testing.T) {
	ctx := context.Background()
	imp, store, _ := newImporter(t)
	seedItems(t, imp, "A")

	orphan := generic.RowSlice{{
		"item_code": "NOPE", "stock_code": "NOPE", "whse": "W", "supplier": "S",
		"gtin": "123", "contract_no": "C", "region": "",
	}}
	imports := map[string]func(context.Context, generic.RowSource) (generic.Result, error){
		"contract":  imp.ImportContractItems,
		"warehouse": imp.ImportWarehouseStockItems,
		"supplier":  imp.ImportSupplierItems,
		"gtin":      imp.ImportGTINItems,
		"pricelist": imp.ImportPriceRegionItems,
		"webdata":   imp.ImportInventoryWebDataItems,
	}
	for name, fn := range imports {
		result, err := fn(ctx, orphan)
		require.NoError(t, err, name)
		assert.Equal(t, 1, result.Skipped, name)
		assert.Equal(t, 0, result.Inserted, name)
	}

	assert.Empty(t, store.Contracts())
	assert.Empty(t, store.Warehouses())
	assert.Empty(t, store.Suppliers())
	assert.Empty(t, store.GTINs())
	assert.Empty(t, store.Regions())
	assert.Empty(t, store.WebData())
}

func TestImport_PriceRegionRulePolicy(t *testing.T) {
	// GIVEN: Item A and rule R1
	// WHEN: Importing pricelist rows with a known, blank and unknown rule
	// THEN: Known links the rule, blank links nothing, unknown is skipped

	ctx := context.Background()
	imp, store, _ := newImporter(t)
	seedItems(t, imp, "A")
	_, err := imp.ImportPriceRules(ctx, generic.RowSlice{{"rule": "R1", "price0_based_on": "R", "price0_factor": "1.5"}})
	require.NoError(t, err)

	result, err := imp.ImportPriceRegionItems(ctx, generic.RowSlice{
		{"item_code": "A", "region": "", "rule": "R1", "tax_rate": "10", "w_sale_price": "9.90"},
		{"item_code": "A", "region": "NZ", "rule": "", "tax_rate": "0"},
		{"item_code": "A", "region": "AU", "rule": "GHOST"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Skipped)

	regions := store.Regions()
	require.Len(t, regions, 2)
	assert.Same(t, store.Rules()[0], regions[0].PriceRule)
	assert.Equal(t, inventory.TaxCodeTaxable, regions[0].TaxCode)
	assert.Equal(t, "9.9", regions[0].Prices[0].String())
	assert.Nil(t, regions[1].PriceRule)
	assert.Equal(t, "", regions[1].PriceRuleCode())
	assert.Equal(t, inventory.TaxCodeExempt, regions[1].TaxCode)
}

func TestImport_WebDataMenuPolicy(t *testing.T) {
	// Unknown menu names reject the row even though the item exists; the
	// pricelist tolerates blank rules the same way but not unknown ones.
	ctx := context.Background()
	imp, store, _ := newImporter(t)
	seedItems(t, imp, "A", "B", "C")
	_, err := imp.ImportWebMenuItems(ctx, generic.RowSlice{{"parent_name": "Paper", "child_name": "Copy"}})
	require.NoError(t, err)

	result, err := imp.ImportInventoryWebDataItems(ctx, generic.RowSlice{
		{"stock_code": "A", "menu_name": "Paper/Copy", "description": "a"},
		{"stock_code": "B", "menu_name": "", "description": "b"},
		{"stock_code": "C", "menu_name": "Paper/Photo", "description": "c"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	data := store.WebData()
	require.Len(t, data, 2)
	assert.Same(t, store.Menus()[0], data[0].WebMenuItem)
	assert.Nil(t, data[1].WebMenuItem)
}

func TestImport_SupplierBlankCodeSkipped(t *testing.T) {
	ctx := context.Background()
	imp, _, _ := newImporter(t)
	seedItems(t, imp, "A")

	result, err := imp.ImportSupplierItems(ctx, generic.RowSlice{
		{"item_code": "A", "supplier": "ACME", "priority": "1", "current_buy_price": "3.10"},
		{"item_code": "A", "supplier": ""},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
}

func TestImport_GTINFirstWinsWithinBatch(t *testing.T) {
	// GIVEN: Two rows with the same (gtin, item) key in one batch
	// WHEN: Importing
	// THEN: The first is kept, the second is skipped

	ctx := context.Background()
	imp, store, _ := newImporter(t)
	seedItems(t, imp, "A")

	rows := generic.RowSlice{
		{"item_code": "A", "gtin": "9300000000001", "uom": "EA", "conversion": "1"},
		{"item_code": "A", "gtin": "9300000000001", "uom": "BOX", "conversion": "10"},
	}
	first, err := imp.ImportGTINItems(ctx, rows)
	require.NoError(t, err)

	assert.Equal(t, generic.Result{Kind: "GTINItems", Inserted: 1, Skipped: 1}, first)
	require.Len(t, store.GTINs(), 1)
	assert.Equal(t, "EA", store.GTINs()[0].UOM)

	// Dedup is per batch: the next import sees the key afresh.
	second, err := imp.ImportGTINItems(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Updated)
	assert.Equal(t, 1, second.Skipped)
}

func TestImport_GTINBlankCodeSkipped(t *testing.T) {
	ctx := context.Background()
	imp, store, _ := newImporter(t)
	seedItems(t, imp, "A")

	result, err := imp.ImportGTINItems(ctx, generic.RowSlice{
		{"item_code": "A", "gtin": " ", "uom": "EA", "conversion": "1"},
	})

	require.NoError(t, err)
	assert.Equal(t, generic.Result{Kind: "GTINItems", Skipped: 1}, result)
	assert.Empty(t, store.GTINs())
}

func TestImport_GTINInvalidRowDoesNotClaimKey(t *testing.T) {
	// GIVEN: An unparseable row followed by a valid row with the same key
	// WHEN: Importing
	// THEN: The first counts as invalid and the second is stored

	ctx := context.Background()
	imp, store, _ := newImporter(t)
	seedItems(t, imp, "A")

	result, err := imp.ImportGTINItems(ctx, generic.RowSlice{
		{"item_code": "A", "gtin": "123", "uom": "EA", "conversion": "x"},
		{"item_code": "A", "gtin": "123", "uom": "EA", "conversion": "1"},
		{"item_code": "A", "gtin": "123", "uom": "BOX", "conversion": "10"},
	})

	require.NoError(t, err)
	assert.Equal(t, generic.Result{Kind: "GTINItems", Inserted: 1, Skipped: 1, Invalid: 1}, result)
	require.Len(t, store.GTINs(), 1)
	assert.Equal(t, "EA", store.GTINs()[0].UOM)
	assert.True(t, store.GTINs()[0].ConvFactor.Equal(decimal.NewFromInt(1)))
}

func TestImport_WebMenuSeparatorInNameSkipped(t *testing.T) {
	// GIVEN: Two menus whose joined names would both be "A/B/C"
	// WHEN: Importing them
	// THEN: Both are skipped and neither overwrites the other

	ctx := context.Background()
	imp, store, _ := newImporter(t)

	result, err := imp.ImportWebMenuItems(ctx, generic.RowSlice{
		{"parent_name": "A/B", "child_name": "C"},
		{"parent_name": "A", "child_name": "B/C"},
		{"parent_name": "A", "child_name": "B"},
	})

	require.NoError(t, err)
	assert.Equal(t, generic.Result{Kind: "WebMenuItems", Inserted: 1, Skipped: 2}, result)
	require.Len(t, store.Menus(), 1)
	assert.Equal(t, "A/B", store.Menus()[0].Name())
}

func TestImport_InvalidFieldCounted(t *testing.T) {
	ctx := context.Background()
	imp, store, hook := newImporter(t)

	rows := itemRows("A", "B")
	rows[1]["replacement_cost"] = "lots"
	result, err := imp.ImportInventoryItems(ctx, rows)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Invalid)
	assert.Len(t, store.Items(), 1)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "Import InventoryItems: 1 inserted, 0 updated, 0 skipped, 1 invalid.", last.Message)
	assert.Equal(t, 1, last.Data["invalid"])
}

// =============================================================================
// FAILURES
// =============================================================================

func TestImport_CommitFailureLeavesStoreUnchanged(t *testing.T) {
	// GIVEN: A committed item A
	// WHEN: Re-importing A with a new description plus B, and commit fails
	// THEN: A keeps its old description, B is gone and the run is failed

	ctx := context.Background()
	imp, store, _ := newImporter(t)
	seedItems(t, imp, "A")
	store.FailCommit = errors.New("disk full")

	rows := itemRows("A", "B")
	rows[0]["item_description"] = "Changed"
	_, err := imp.ImportInventoryItems(ctx, rows)

	require.ErrorIs(t, err, generic.ErrCommitFailed)
	assert.ErrorContains(t, err, "disk full")
	require.Len(t, store.Items(), 1)
	assert.Equal(t, "Item A", store.Items()[0].DescriptionLine1)

	runs, err := store.Runs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, generic.RunFailed, runs[0].Status)
	assert.NotEmpty(t, runs[0].ID)
}

func TestImport_CancelledContextCommitsNothing(t *testing.T) {
	imp, store, _ := newImporter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := imp.ImportInventoryItems(ctx, itemRows("A"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.Items())
	assert.Zero(t, store.Commits)
}

// =============================================================================
// IMPORT TABLE
// =============================================================================

func TestImportData_RunsSelectedModelsInOrder(t *testing.T) {
	ctx := context.Background()
	imp, store, _ := newImporter(t)

	files := map[string]generic.RowSource{
		inventory.PathInventoryItems: generic.RowSlice{
			{"item_code": "A", "whse": "W1"},
			{"item_code": "B", "whse": "W1"},
		},
		inventory.PathContractItems: generic.RowSlice{contractRow("C1", "A", "1")},
	}
	var opened []string
	open := func(key string) (generic.RowSource, error) {
		opened = append(opened, key)
		return files[key], nil
	}

	// Contract listed first: table order still wins.
	results, err := imp.ImportData(ctx, open, "ContractItem", "InventoryItem", "WarehouseStockItem")

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "InventoryItems", results[0].Kind)
	assert.Equal(t, "WarehouseStockItems", results[1].Kind)
	assert.Equal(t, "ContractItems", results[2].Kind)
	assert.Equal(t, []string{inventory.PathInventoryItems, inventory.PathInventoryItems, inventory.PathContractItems}, opened)
	assert.Len(t, store.Warehouses(), 2)

	runs, err := store.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestImportData_UnknownModel(t *testing.T) {
	imp, _, _ := newImporter(t)

	_, err := imp.ImportData(context.Background(), nil, "Widget")

	assert.ErrorIs(t, err, inventory.ErrUnknownModel)
}

func TestImportData_StopsAtFirstFailure(t *testing.T) {
	imp, store, _ := newImporter(t)
	open := func(key string) (generic.RowSource, error) {
		if key == inventory.PathPriceRules {
			return nil, errors.New("no such file")
		}
		return generic.RowSlice{}, nil
	}

	results, err := imp.ImportData(context.Background(), open)

	require.ErrorIs(t, err, generic.ErrRowSource)
	assert.Len(t, results, 2)
	assert.Equal(t, 2, store.Commits)
}

// =============================================================================
// TRANSIENT IMPORTS
// =============================================================================

func splRow(supplier, item, price string) generic.Row {
	return generic.Row{
		"supplier_code": supplier, "item_code": item, "supp_item_code": "S-" + item,
		"supp_uom": "EA", "supp_conv_factor": "1", "supp_price_1": price,
	}
}

func TestImportSupplierPricelist_LastWins(t *testing.T) {
	// GIVEN: Two rows for (ACME, A), a header row and three invalid rows
	// WHEN: Importing the legacy pricelist
	// THEN: The later (ACME, A) row replaces the earlier in place and counts
	//       as skipped, not invalid

	imp, _, _ := newImporter(t)
	blankUOM := splRow("ACME", "C", "1")
	blankUOM["supp_uom"] = ""
	blankConv := splRow("ACME", "D", "1")
	blankConv["supp_conv_factor"] = " "
	blankSupplier := splRow("", "E", "1")

	items, result, err := imp.ImportSupplierPricelist(context.Background(), generic.RowSlice{
		{"supplier_code": "Supplier Code", "item_code": "Item Code"},
		splRow("ACME", "A", "1.005"),
		splRow("ACME", "B", "2"),
		splRow("ACME", "A", "3.335"),
		blankUOM,
		blankConv,
		blankSupplier,
	})

	require.NoError(t, err)
	assert.Equal(t, generic.Result{Kind: "SupplierPricelistItems", Inserted: 2, Skipped: 1, Invalid: 3}, result)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].ItemCode)
	assert.Equal(t, "3.34", items[0].SupplierPrice.StringFixed(2))
	assert.Equal(t, "B", items[1].ItemCode)
}

func TestImportWebMenuItemMappings(t *testing.T) {
	ctx := context.Background()
	imp, store, _ := newImporter(t)
	_, err := imp.ImportWebMenuItems(ctx, generic.RowSlice{{"parent_name": "Paper", "child_name": "Copy"}})
	require.NoError(t, err)

	mappings, err := imp.ImportWebMenuItemMappings(ctx, generic.RowSlice{
		{"rule_code": "R1", "menu_name": "Paper/Copy"},
		{"rule_code": "R2", "menu_name": "man"},
		{"rule_code": "R3", "menu_name": ""},
		{"rule_code": "R4", "menu_name": "Paper/Gone"},
	})

	require.NoError(t, err)
	require.Len(t, mappings, 4)
	assert.Same(t, store.Menus()[0], mappings["R1"].MenuItem)
	assert.True(t, mappings["R2"].Manual)
	assert.True(t, mappings["R3"].Manual)
	assert.False(t, mappings["R4"].Manual)
	assert.Nil(t, mappings["R4"].MenuItem)
}

func TestImportMissingImagesReport(t *testing.T) {
	imp, store, _ := newImporter(t)
	seedItems(t, imp, "A", "B")

	missing, err := imp.ImportMissingImagesReport(context.Background(), generic.RowSlice{
		{"item_code": "B"}, {"item_code": "X"}, {"item_code": "A"},
	})

	require.NoError(t, err)
	require.Len(t, missing, 2)
	assert.Same(t, store.Items()[1], missing[0])
	assert.Same(t, store.Items()[0], missing[1])
}
