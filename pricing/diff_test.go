package pricing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/inventory-sync/inventory"
	"github.com/warp/inventory-sync/pricing"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func prices(ps ...string) pricing.Snapshot {
	var s pricing.Snapshot
	for i, p := range ps {
		s.Prices[i] = d(p)
	}
	return s
}

func regionItem(code, region string, ps ...string) *inventory.PriceRegionItem {
	item := &inventory.PriceRegionItem{
		Code:          region,
		InventoryItem: &inventory.InventoryItem{Code: code},
	}
	item.Prices = prices(ps...).Prices
	return item
}

// =============================================================================
// DIFF TESTS
// =============================================================================

func TestPriceDiffs_PerTier(t *testing.T) {
	// GIVEN: Prices [10,20,30,40,50] before and [12,18,30,45,50] after
	// WHEN: Diffing
	// THEN: Diffs are [2,-2,0,5,0] and the ratio is 0.20

	before := prices("10.00", "20.00", "30.00", "40.00", "50.00")
	after := prices("12.00", "18.00", "30.00", "45.00", "50.00")

	diffs := pricing.PriceDiffs(before, after)

	want := []string{"2", "-2", "0", "5", "0"}
	for i, w := range want {
		assert.True(t, diffs[i].Equal(d(w)), "tier %d: got %s want %s", i, diffs[i], w)
	}

	ratio, err := pricing.SellPriceChangeRatio(before, after)
	require.NoError(t, err)
	assert.True(t, ratio.Equal(d("0.2")), "ratio %s", ratio)
}

func TestPriceDiffs_ExactDecimal(t *testing.T) {
	before := prices("0.10")
	after := prices("0.30")

	diffs := pricing.PriceDiffs(before, after)

	assert.Equal(t, "0.2", diffs[0].String())
}

func TestSellPriceChangeRatio_ZeroPriorPrice(t *testing.T) {
	before := prices("0.00")
	after := prices("5.00")

	_, err := pricing.SellPriceChangeRatio(before, after)

	assert.ErrorIs(t, err, pricing.ErrDivisionByZero)
}

func TestNewPriceChange_RatioInvalidOnZeroPrior(t *testing.T) {
	pc := pricing.NewPriceChange(regionItem("A", "", "5.00"), prices("0"))

	assert.False(t, pc.Ratio.Valid)
	assert.True(t, pc.Diffs[0].Equal(d("5")))
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestChanges_OnlyMovedItemsWithPriorSnapshot(t *testing.T) {
	// GIVEN: A snapshot of three items
	// WHEN: One item's price moves, one stays and a new item appears
	// THEN: Only the moved item is reported

	moved := regionItem("B", "", "10.00")
	same := regionItem("A", "", "7.00")
	was := pricing.TakeSnapshots([]*inventory.PriceRegionItem{moved, same}, time.Now())

	moved.Prices[0] = d("11.00")
	fresh := regionItem("C", "", "3.00")

	changes := pricing.Changes(was, []*inventory.PriceRegionItem{same, moved, fresh})

	require.Len(t, changes, 1)
	assert.Same(t, moved, changes[0].Item)
	assert.True(t, changes[0].Ratio.Valid)
	assert.True(t, changes[0].Ratio.Decimal.Equal(d("0.1")))
}

func TestChanges_RepresentationIsNotAChange(t *testing.T) {
	item := regionItem("A", "R1", "2.0")
	was := pricing.TakeSnapshots([]*inventory.PriceRegionItem{item}, time.Now())
	item.Prices[0] = d("2.00")

	assert.Empty(t, pricing.Changes(was, []*inventory.PriceRegionItem{item}))
}

func TestChanges_SortedByItemThenRegion(t *testing.T) {
	items := []*inventory.PriceRegionItem{
		regionItem("B", "", "1"),
		regionItem("A", "R2", "1"),
		regionItem("A", "R1", "1"),
	}
	was := pricing.TakeSnapshots(items, time.Now())
	for _, it := range items {
		it.Prices[0] = d("2")
	}

	changes := pricing.Changes(was, items)

	require.Len(t, changes, 3)
	assert.Equal(t, "R1", changes[0].Item.Code)
	assert.Equal(t, "R2", changes[1].Item.Code)
	assert.Equal(t, "B", changes[2].Item.InventoryItem.Code)
}

func TestSnapshotSet_CloneIsIndependent(t *testing.T) {
	set := pricing.TakeSnapshots([]*inventory.PriceRegionItem{regionItem("A", "", "1")}, time.Now())
	clone := set.Clone()

	delete(clone.Prices, pricing.SnapshotKey{Item: "A"})

	assert.Len(t, set.Prices, 1)
}

func TestTakeSnapshots_KeysKeepRegionAndItemApart(t *testing.T) {
	// GIVEN: Two items whose joined region and item codes read the same
	// WHEN: Snapshotting and re-pricing one of them
	// THEN: Each keeps its own snapshot and only the moved one changes

	a := regionItem("B", "A--", "1")
	b := regionItem("--B", "A", "1")
	was := pricing.TakeSnapshots([]*inventory.PriceRegionItem{a, b}, time.Now())
	b.Prices[0] = d("2")

	require.Len(t, was.Prices, 2)
	changes := pricing.Changes(was, []*inventory.PriceRegionItem{a, b})
	require.Len(t, changes, 1)
	assert.Same(t, b, changes[0].Item)
}
