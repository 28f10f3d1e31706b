package pricing

import (
	"context"
	"sort"
	"time"

	"github.com/warp/inventory-sync/inventory"
)

// SnapshotKey identifies a PriceRegionItem within a SnapshotSet. It holds
// the parts separately so stores can round-trip them without parsing.
type SnapshotKey struct {
	Region string
	Item   string
}

func KeyOf(item *inventory.PriceRegionItem) SnapshotKey {
	return SnapshotKey{Region: item.Code, Item: item.InventoryItem.Code}
}

// SnapshotSet is every PriceRegionItem's snapshot.
type SnapshotSet struct {
	TakenAt time.Time
	Prices  map[SnapshotKey]Snapshot
}

func (s SnapshotSet) Clone() SnapshotSet {
	out := SnapshotSet{TakenAt: s.TakenAt, Prices: make(map[SnapshotKey]Snapshot, len(s.Prices))}
	for k, v := range s.Prices {
		out.Prices[k] = v
	}
	return out
}

// SnapshotStore keeps the most recent snapshot set. Saving replaces it.
type SnapshotStore interface {
	SaveSnapshots(ctx context.Context, set SnapshotSet) error
	LatestSnapshots(ctx context.Context) (SnapshotSet, error)
}

// TakeSnapshot freezes the priced state of one item.
func TakeSnapshot(item *inventory.PriceRegionItem) Snapshot {
	return Snapshot{Quantities: item.Quantities, Prices: item.Prices}
}

// TakeSnapshots freezes every item.
func TakeSnapshots(items []*inventory.PriceRegionItem, at time.Time) SnapshotSet {
	set := SnapshotSet{TakenAt: at, Prices: make(map[SnapshotKey]Snapshot, len(items))}
	for _, item := range items {
		set.Prices[KeyOf(item)] = TakeSnapshot(item)
	}
	return set
}

// Changes pairs each current item with its prior snapshot and keeps the
// ones whose quantities or prices moved. Items without a prior snapshot
// are new, not changed. The result is ordered by item code, then region.
func Changes(was SnapshotSet, now []*inventory.PriceRegionItem) []PriceChange {
	var out []PriceChange
	for _, item := range now {
		prior, ok := was.Prices[KeyOf(item)]
		if !ok || prior.Equal(TakeSnapshot(item)) {
			continue
		}
		out = append(out, NewPriceChange(item, prior))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Item, out[j].Item
		if a.InventoryItem.Code != b.InventoryItem.Code {
			return a.InventoryItem.Code < b.InventoryItem.Code
		}
		return a.Code < b.Code
	})
	return out
}
