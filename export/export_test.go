package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/inventory-sync/export"
	"github.com/warp/inventory-sync/inventory"
	"github.com/warp/inventory-sync/pricing"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func regionItem() *inventory.PriceRegionItem {
	return &inventory.PriceRegionItem{
		Code: "",
		InventoryItem: &inventory.InventoryItem{
			Code:             "A4REAM",
			DescriptionLine1: "Copy paper",
			DescriptionLine2: "A4 80gsm",
			Brand:            "REFLEX",
			APN:              "9310000",
		},
		PriceRule:  &inventory.PriceRule{Code: "R1"},
		Quantities: [4]decimal.Decimal{d("5"), d("10"), d("20"), d("50")},
		Prices:     [5]decimal.Decimal{d("9.95"), d("9.50"), d("9.00"), d("8.50"), d("8.00")},
		RRPExclTax: d("12.00"),
		RRPInclTax: d("13.20"),
	}
}

// =============================================================================
// FLAT FILE TESTS
// =============================================================================

func TestWritePricelist(t *testing.T) {
	var buf bytes.Buffer
	effective := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	require.NoError(t, export.WritePricelist(&buf, []*inventory.PriceRegionItem{regionItem()}, effective))

	assert.Equal(t, "A4REAM,,9.95,5,10,20,50,9.5,9,8.5,8,12,13.2,,07-Mar-2024,\n", buf.String())
}

func TestWriteProductPriceTask(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, export.WriteProductPriceTask(&buf, []*inventory.PriceRegionItem{regionItem()}))

	assert.Equal(t,
		"item_code\tregion\tprice_0\tprice_1\tprice_2\tprice_3\tprice_4\n"+
			"A4REAM\t\t9.95\t9.5\t9\t8.5\t8\n",
		buf.String())
}

func TestWriteContractItemTask(t *testing.T) {
	// GIVEN: A contract line with two prices set
	// WHEN: Writing the contract item task
	// THEN: Each price is followed by a blank quantity column

	item := &inventory.ContractItem{
		Code:          "C100",
		InventoryItem: &inventory.InventoryItem{Code: "A4REAM"},
		Prices:        [6]decimal.Decimal{d("8.80"), d("8.40")},
	}
	var buf bytes.Buffer

	require.NoError(t, export.WriteContractItemTask(&buf, []*inventory.ContractItem{item}))

	assert.Equal(t,
		"contract\titem_code\tprice_1\tquantity_1\tprice_2\tquantity_2\tprice_3\tquantity_3\t"+
			"price_4\tquantity_4\tprice_5\tquantity_5\tprice_6\tquantity_6\n"+
			"C100\tA4REAM\t8.8\t\t8.4\t\t0\t\t0\t\t0\t\t0\t\n",
		buf.String())
}

func TestWriteTicketsList(t *testing.T) {
	// GIVEN: Stock rows with and without a bin, stock on hand or a minimum
	// WHEN: Writing the tickets list
	// THEN: Only ticketed rows appear, once per warehouse row

	a := &inventory.InventoryItem{Code: "A"}
	items := []*inventory.WarehouseStockItem{
		{Code: "MEL", InventoryItem: a, BinLocation: "A01"},
		{Code: "SYD", InventoryItem: a, OnHand: d("3")},
		{Code: "MEL", InventoryItem: &inventory.InventoryItem{Code: "B"}},
		{Code: "MEL", InventoryItem: &inventory.InventoryItem{Code: "C"}, Minimum: d("1")},
		{Code: "MEL", InventoryItem: &inventory.InventoryItem{Code: "D"}, OnHand: d("0.00")},
	}
	var buf bytes.Buffer

	require.NoError(t, export.WriteTicketsList(&buf, items))

	assert.Equal(t, "A\nA\nC\n", buf.String())
}

// =============================================================================
// REPORT TESTS
// =============================================================================

func TestReportColumns(t *testing.T) {
	cols := export.ReportColumns()

	require.Len(t, cols, 25)
	assert.Equal(t, "Price Rule", cols[4].Title)
	assert.Equal(t, "Price 0 Was", cols[5].Title)
	assert.Equal(t, "Quantity 1", cols[8].Title)
	assert.Equal(t, "0", cols[8].NumFmt)
	assert.Equal(t, "Price 4 Diff", cols[23].Title)
	assert.Equal(t, "Sell Price Change", cols[24].Title)
}

func TestWritePriceChangesReport(t *testing.T) {
	// GIVEN: One change with a defined ratio and one from a zero prior price
	// WHEN: Writing the workbook and reading it back
	// THEN: The sheet holds a header and both rows; the undefined ratio is blank

	item := regionItem()
	was := pricing.TakeSnapshot(item)
	was.Prices[0] = d("8.95")
	changed := pricing.NewPriceChange(item, was)

	free := regionItem()
	free.InventoryItem = &inventory.InventoryItem{Code: "FREEBIE"}
	free.PriceRule = nil
	wasFree := pricing.TakeSnapshot(free)
	wasFree.Prices[0] = decimal.Zero
	fromZero := pricing.NewPriceChange(free, wasFree)

	var buf bytes.Buffer
	require.NoError(t, export.WritePriceChangesReport(&buf, []pricing.PriceChange{changed, fromZero}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{export.ReportSheet}, f.GetSheetList())

	rows, err := f.GetRows(export.ReportSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Item Code", rows[0][0])
	assert.Equal(t, "Sell Price Change", rows[0][24])

	assert.Equal(t, []string{"A4REAM", "REFLEX", "9310000", "Copy paper A4 80gsm", "R1"}, rows[1][:5])
	assert.Equal(t, "8.95", rows[1][5])
	assert.Equal(t, "9.95", rows[1][6])
	assert.Equal(t, "1", rows[1][7])
	assert.Equal(t, "5", rows[1][8])
	require.Len(t, rows[1], 25)
	assert.NotEmpty(t, rows[1][24])

	assert.Equal(t, "", rows[2][4], "no price rule")
	if len(rows[2]) > 24 {
		assert.Empty(t, rows[2][24], "undefined ratio leaves the cell blank")
	}
}

func TestReportRow_Ratio(t *testing.T) {
	item := regionItem()
	was := pricing.TakeSnapshot(item)
	was.Prices[0] = d("10")
	item.Prices[0] = d("12")

	row := export.ReportRow(pricing.NewPriceChange(item, was))

	assert.InDelta(t, 0.2, row[24], 1e-9)
}
