package inventory

import "github.com/warp/inventory-sync/generic"

// Store is one unit of work over every persisted kind. Records returned by
// different repositories of the same Store share parent pointers: the
// InventoryItem referenced by a ContractItem is the same *InventoryItem
// returned by InventoryItems().All.
type Store interface {
	generic.Committer

	InventoryItems() generic.Repository[InventoryItem]
	PriceRules() generic.Repository[PriceRule]
	PriceRegionItems() generic.Repository[PriceRegionItem]
	ContractItems() generic.Repository[ContractItem]
	WarehouseStockItems() generic.Repository[WarehouseStockItem]
	SupplierItems() generic.Repository[SupplierItem]
	GTINItems() generic.Repository[GTINItem]
	WebMenuItems() generic.Repository[WebMenuItem]
	InventoryWebDataItems() generic.Repository[InventoryWebDataItem]
}
