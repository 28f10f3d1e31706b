package inventory

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/warp/inventory-sync/generic"
)

// splHeaderSupplierCode marks the header line some exports repeat as data.
const splHeaderSupplierCode = "Supplier Code"

// ImportSupplierPricelist reads the legacy supplier pricelist. Nothing is
// persisted.
//
// Rows with a blank unit, conversion factor or supplier code are invalid,
// as are rows whose numbers do not parse. A later row with the same
// (supplier, item) key replaces the earlier one in place; each replacement
// counts as skipped.
func (imp *Importer) ImportSupplierPricelist(ctx context.Context, src generic.RowSource) ([]*SupplierPricelistItem, generic.Result, error) {
	result := generic.Result{Kind: "SupplierPricelistItems"}
	var items []*SupplierPricelistItem
	positions := make(map[generic.Key]int)

	err := src.Each(ctx, func(row generic.Row) error {
		if row.Get("supplier_code") == splHeaderSupplierCode {
			return nil
		}
		if row.Blank("supp_uom") || row.Blank("supp_conv_factor") || row.Blank("supplier_code") {
			result.Invalid++
			return nil
		}

		p := generic.NewFieldParser(row)
		item := &SupplierPricelistItem{
			ItemCode:           p.String("item_code"),
			SupplierCode:       p.String("supplier_code"),
			SupplierItemCode:   p.String("supp_item_code"),
			SupplierUOM:        p.String("supp_uom"),
			SupplierSellUOM:    p.String("supp_sell_uom"),
			SupplierEOQ:        p.String("supp_eoq"),
			SupplierConvFactor: p.Decimal("supp_conv_factor"),
			SupplierPrice:      p.Decimal("supp_price_1").RoundBank(2),
		}
		if err := p.Err(); err != nil {
			result.Invalid++
			imp.Log.WithError(err).Debug("invalid supplier pricelist row")
			return nil
		}

		key := SupplierPricelistItemKey(item)
		if i, ok := positions[key]; ok {
			items[i] = item
			result.Skipped++
			return nil
		}
		positions[key] = len(items)
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, result, fmt.Errorf("read supplier pricelist: %w", err)
	}

	result.Inserted = len(items)
	imp.Log.WithFields(logrus.Fields{
		"kind":     result.Kind,
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
		"invalid":  result.Invalid,
	}).Info(result.String())
	return items, result, nil
}
