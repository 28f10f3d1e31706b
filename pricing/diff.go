/*
Package pricing compares price snapshots taken before and after an import.

PURPOSE:
  Price changes are reported to customers and staff. A Snapshot freezes
  the quantities and prices of one PriceRegionItem; the differ compares a
  stored "was" snapshot with the freshly reconciled "now" record.

ARITHMETIC:
  All values are decimal.Decimal. Diffs are exact; the sell price change
  ratio is a decimal division (decimal.DivisionPrecision digits).

ZERO PRIOR PRICE:
  SellPriceChangeRatio returns ErrDivisionByZero instead of a value.
  Callers decide per row whether to leave the ratio blank or drop the row;
  it never aborts an export.

SEE ALSO:
  - snapshot.go: Taking, storing and pairing snapshots
  - export/report.go: The price changes report
*/
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/warp/inventory-sync/inventory"
)

var ErrDivisionByZero = errors.New("prior level 0 price is zero")

// Snapshot is the priced state of one PriceRegionItem at a point in time.
type Snapshot struct {
	Quantities [inventory.BreakQuantities]decimal.Decimal // tiers 1..4
	Prices     [inventory.PriceLevels]decimal.Decimal     // tiers 0..4
}

// Equal compares values, ignoring decimal representation (2.0 == 2.00).
func (s Snapshot) Equal(o Snapshot) bool {
	for i := range s.Quantities {
		if !s.Quantities[i].Equal(o.Quantities[i]) {
			return false
		}
	}
	for i := range s.Prices {
		if !s.Prices[i].Equal(o.Prices[i]) {
			return false
		}
	}
	return true
}

// PriceDiffs returns after − before for every price tier, tier-ascending.
func PriceDiffs(before, after Snapshot) [inventory.PriceLevels]decimal.Decimal {
	var out [inventory.PriceLevels]decimal.Decimal
	for i := range out {
		out[i] = after.Prices[i].Sub(before.Prices[i])
	}
	return out
}

// SellPriceChangeRatio returns (after[0] − before[0]) / before[0].
func SellPriceChangeRatio(before, after Snapshot) (decimal.Decimal, error) {
	was := before.Prices[0]
	if was.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return after.Prices[0].Sub(was).Div(was), nil
}

// PriceChange pairs the prior and current state of one PriceRegionItem.
type PriceChange struct {
	Item  *inventory.PriceRegionItem
	Was   Snapshot
	Now   Snapshot
	Diffs [inventory.PriceLevels]decimal.Decimal

	// Ratio is invalid when the prior level 0 price was zero.
	Ratio decimal.NullDecimal
}

// NewPriceChange computes diffs and ratio for one item.
func NewPriceChange(item *inventory.PriceRegionItem, was Snapshot) PriceChange {
	now := TakeSnapshot(item)
	pc := PriceChange{
		Item:  item,
		Was:   was,
		Now:   now,
		Diffs: PriceDiffs(was, now),
	}
	if ratio, err := SellPriceChangeRatio(was, now); err == nil {
		pc.Ratio = decimal.NewNullDecimal(ratio)
	}
	return pc
}
