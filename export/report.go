package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/warp/inventory-sync/inventory"
	"github.com/warp/inventory-sync/pricing"
)

// ReportSheet is the worksheet holding the price changes.
const ReportSheet = "Price Changes"

const (
	priceFormat    = "0.0000"
	quantityFormat = "0"
	numberWidth    = 16
)

// Column describes one report column.
type Column struct {
	Title  string
	Width  float64
	NumFmt string // blank for text columns
}

// ReportColumns lists the price changes report columns in order.
func ReportColumns() []Column {
	cols := []Column{
		{Title: "Item Code", Width: 20},
		{Title: "Brand", Width: 7},
		{Title: "APN", Width: 20},
		{Title: "Description", Width: 20},
		{Title: "Price Rule", Width: 7},
	}
	for i := 0; i < inventory.PriceLevels; i++ {
		if i > 0 {
			cols = append(cols, Column{Title: fmt.Sprintf("Quantity %d", i), Width: numberWidth, NumFmt: quantityFormat})
		}
		cols = append(cols,
			Column{Title: fmt.Sprintf("Price %d Was", i), Width: numberWidth, NumFmt: priceFormat},
			Column{Title: fmt.Sprintf("Price %d Now", i), Width: numberWidth, NumFmt: priceFormat},
			Column{Title: fmt.Sprintf("Price %d Diff", i), Width: numberWidth, NumFmt: priceFormat},
		)
	}
	return append(cols, Column{Title: "Sell Price Change", Width: numberWidth, NumFmt: priceFormat})
}

// ReportRow projects one price change onto ReportColumns. The sell price
// change cell is nil when the prior level 0 price was zero.
func ReportRow(pc pricing.PriceChange) []interface{} {
	item := pc.Item.InventoryItem
	row := []interface{}{
		item.Code,
		item.Brand,
		item.APN,
		item.Description(),
		pc.Item.PriceRuleCode(),
	}
	for i := 0; i < inventory.PriceLevels; i++ {
		if i > 0 {
			row = append(row, pc.Now.Quantities[i-1].InexactFloat64())
		}
		row = append(row,
			pc.Was.Prices[i].InexactFloat64(),
			pc.Now.Prices[i].InexactFloat64(),
			pc.Diffs[i].InexactFloat64(),
		)
	}
	if pc.Ratio.Valid {
		return append(row, pc.Ratio.Decimal.InexactFloat64())
	}
	return append(row, nil)
}

// WritePriceChangesReport renders the changes as an XLSX workbook.
func WritePriceChangesReport(w io.Writer, changes []pricing.PriceChange) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return err
	}
	if err := layoutColumns(f, ReportColumns()); err != nil {
		return err
	}
	for i, pc := range changes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := ReportRow(pc)
		if err := f.SetSheetRow(ReportSheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}

// layoutColumns writes the bold header row, then sizes and formats every column.
func layoutColumns(f *excelize.File, cols []Column) error {
	titles := make([]interface{}, len(cols))
	for i, col := range cols {
		titles[i] = col.Title

		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(ReportSheet, name, name, col.Width); err != nil {
			return err
		}
		if col.NumFmt == "" {
			continue
		}
		numFmt := col.NumFmt
		style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
		if err != nil {
			return err
		}
		if err := f.SetColStyle(ReportSheet, name, style); err != nil {
			return err
		}
	}

	if err := f.SetSheetRow(ReportSheet, "A1", &titles); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	return f.SetRowStyle(ReportSheet, 1, 1, bold)
}
