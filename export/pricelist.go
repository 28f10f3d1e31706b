/*
pricelist.go - Flat-file exports of reconciled pricing and stock records

PURPOSE:
  Turns reconciled records into the files the ERP and the web shop load
  back in. Row shaping is pure (PricelistRow, ProductPriceTaskRow, ...)
  and the writers only encode rows.

FORMATS:
  Pricelist            comma-delimited, no header
  Product price task   tab-delimited, header
  Contract item task   tab-delimited, header
  Tickets list         one item code per line

SEE ALSO:
  - report.go: Price changes workbook
  - pricing/snapshot.go: Where price changes come from
*/
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/warp/inventory-sync/inventory"
)

// DateLayout is the effective date format expected by the ERP pricelist import.
const DateLayout = "02-Jan-2006"

// ============================================================================
// PRICELIST
// ============================================================================

// PricelistRow projects one item into the ERP pricelist layout.
func PricelistRow(item *inventory.PriceRegionItem, effective time.Time) []string {
	row := []string{
		item.InventoryItem.Code,
		item.Code,
		item.Prices[0].String(),
	}
	for _, q := range item.Quantities {
		row = append(row, q.String())
	}
	for _, p := range item.Prices[1:] {
		row = append(row, p.String())
	}
	return append(row,
		item.RRPExclTax.String(),
		item.RRPInclTax.String(),
		"",
		effective.Format(DateLayout),
		"",
	)
}

// WritePricelist writes every item with the given effective date.
func WritePricelist(w io.Writer, items []*inventory.PriceRegionItem, effective time.Time) error {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, PricelistRow(item, effective))
	}
	return writeAll(w, ',', nil, rows)
}

// ============================================================================
// TASKS
// ============================================================================

// ProductPriceTaskHeader names the product price task columns.
var ProductPriceTaskHeader = []string{"item_code", "region", "price_0", "price_1", "price_2", "price_3", "price_4"}

func ProductPriceTaskRow(item *inventory.PriceRegionItem) []string {
	row := []string{item.InventoryItem.Code, item.Code}
	for _, p := range item.Prices {
		row = append(row, p.String())
	}
	return row
}

func WriteProductPriceTask(w io.Writer, items []*inventory.PriceRegionItem) error {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, ProductPriceTaskRow(item))
	}
	return writeAll(w, '\t', ProductPriceTaskHeader, rows)
}

// ContractItemTaskHeader names the contract item task columns. Every price
// is followed by a quantity column the ERP expects but this export leaves
// blank.
var ContractItemTaskHeader = contractItemTaskHeader()

func contractItemTaskHeader() []string {
	header := []string{"contract", "item_code"}
	for i := 1; i <= inventory.ContractPrices; i++ {
		header = append(header, fmt.Sprintf("price_%d", i), fmt.Sprintf("quantity_%d", i))
	}
	return header
}

func ContractItemTaskRow(item *inventory.ContractItem) []string {
	row := []string{item.Code, item.InventoryItem.Code}
	for _, p := range item.Prices {
		row = append(row, p.String(), "")
	}
	return row
}

func WriteContractItemTask(w io.Writer, items []*inventory.ContractItem) error {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, ContractItemTaskRow(item))
	}
	return writeAll(w, '\t', ContractItemTaskHeader, rows)
}

// ============================================================================
// TICKETS
// ============================================================================

// Ticketed reports whether a shelf ticket is printed for the stock row:
// it has a bin location, stock on hand or a minimum stock level.
func Ticketed(item *inventory.WarehouseStockItem) bool {
	return item.BinLocation != "" || !item.OnHand.IsZero() || !item.Minimum.IsZero()
}

// TicketCodes returns the item code of every ticketed stock row, in input
// order. An item stocked in several warehouses appears once per warehouse.
func TicketCodes(items []*inventory.WarehouseStockItem) []string {
	var codes []string
	for _, item := range items {
		if Ticketed(item) {
			codes = append(codes, item.InventoryItem.Code)
		}
	}
	return codes
}

func WriteTicketsList(w io.Writer, items []*inventory.WarehouseStockItem) error {
	for _, code := range TicketCodes(items) {
		if _, err := fmt.Fprintln(w, code); err != nil {
			return err
		}
	}
	return nil
}

func writeAll(w io.Writer, comma rune, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if header != nil {
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	return cw.WriteAll(rows)
}
