/*
kinds.go - Per-kind reconciliation policies

PURPOSE:
  Each entity kind plugs three things into the generic engine: its natural
  key, its reference validator and its row → record builder. The
  validators are deliberately NOT unified; each kind's policy is part of
  the contract with the ERP extracts.

REFERENCE POLICIES:
  Required item (every kind except InventoryItem, PriceRule, WebMenuItem):
    unknown item code → row skipped.

  PriceRegionItem → PriceRule (by code):
    blank code         → no rule, row proceeds
    unknown code       → row skipped

  InventoryWebDataItem → WebMenuItem (by "parent/child" name):
    blank name         → no menu, row proceeds
    unknown name       → row skipped, even though the item exists

  WebMenuItem: a parent or child name containing "/" → row skipped.

  SupplierItem: blank supplier code → row skipped.

  GTINItem: blank GTIN → row skipped. A (gtin, item) pair already accepted
  in this batch → row skipped. The first valid occurrence wins regardless
  of what is already stored; an invalid row does not claim the pair.

STATE:
  The GTIN kind remembers keys it has accepted, so build a fresh Kind for
  every batch.

SEE ALSO:
  - generic/reconcile.go: The routine these kinds plug into
  - importers.go: Builds indices and runs each kind
*/
package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/inventory-sync/generic"
)

// ItemRef is the resolved parent of kinds that only reference an item.
type ItemRef struct {
	Item *InventoryItem
}

// PriceRegionRefs are the resolved parents of a pricelist row.
type PriceRegionRefs struct {
	Item *InventoryItem
	Rule *PriceRule
}

// WebDataRefs are the resolved parents of a web data row.
type WebDataRefs struct {
	Item *InventoryItem
	Menu *WebMenuItem
}

// =============================================================================
// ROOT & INDEPENDENT KINDS
// =============================================================================

func InventoryItemKind() generic.Kind[InventoryItem, struct{}] {
	return generic.Kind[InventoryItem, struct{}]{
		Name: "InventoryItems",
		Key:  InventoryItemKey,
		Validate: func(row generic.Row) (struct{}, bool) {
			return struct{}{}, !row.Blank("item_code")
		},
		Build: func(row generic.Row, _ struct{}) (*InventoryItem, error) {
			p := generic.NewFieldParser(row)
			item := &InventoryItem{
				Code:             p.String("item_code"),
				DescriptionLine1: p.String("item_description"),
				DescriptionLine2: p.String("description_2"),
				DescriptionLine3: p.String("description_3"),
				UOM:              p.String("unit"),
				Brand:            p.String("brand_manuf"),
				APN:              p.String("manuf_apn_no"),
				Group:            p.String("group"),
				Created:          p.Time("creation_date"),
				ItemType:         generic.ParseWith(p, "status", ParseItemType),
				Condition:        generic.ParseWith(p, "condition", ParseItemCondition),
				ReplacementCost:  p.Decimal("replacement_cost"),
			}
			return item, p.Err()
		},
	}
}

func PriceRuleKind() generic.Kind[PriceRule, struct{}] {
	return generic.Kind[PriceRule, struct{}]{
		Name: "PriceRules",
		Key:  PriceRuleKey,
		Validate: func(row generic.Row) (struct{}, bool) {
			return struct{}{}, !row.Blank("rule")
		},
		Build: func(row generic.Row, _ struct{}) (*PriceRule, error) {
			p := generic.NewFieldParser(row)
			rule := &PriceRule{
				Code:          p.String("rule"),
				Description:   p.String("comments"),
				RRPExclBasis:  generic.ParseWith(p, "rec_retail_based_on", ParsePriceBasis),
				RRPExclFactor: p.Decimal("rec_retail_factor"),
				RRPInclBasis:  generic.ParseWith(p, "rrp_inc_tax_based_on", ParsePriceBasis),
				RRPInclFactor: p.Decimal("rrp_inc_tax_factor"),
			}
			for i := 0; i < PriceLevels; i++ {
				rule.PriceBases[i] = generic.ParseWith(p, priceField("price%d_based_on", i), ParsePriceBasis)
				rule.PriceFactors[i] = p.Decimal(priceField("price%d_factor", i))
			}
			return rule, p.Err()
		},
	}
}

func WebMenuItemKind() generic.Kind[WebMenuItem, struct{}] {
	return generic.Kind[WebMenuItem, struct{}]{
		Name: "WebMenuItems",
		Key:  WebMenuItemKey,
		Validate: func(row generic.Row) (struct{}, bool) {
			parent, child := row.Get("parent_name"), row.Get("child_name")
			if parent == "" && child == "" {
				return struct{}{}, false
			}
			// The separator would make two different menus share a name.
			if strings.Contains(parent, WebMenuSeparator) || strings.Contains(child, WebMenuSeparator) {
				return struct{}{}, false
			}
			return struct{}{}, true
		},
		Build: func(row generic.Row, _ struct{}) (*WebMenuItem, error) {
			return &WebMenuItem{
				ParentName: row.Get("parent_name"),
				ChildName:  row.Get("child_name"),
			}, nil
		},
	}
}

// =============================================================================
// ITEM-DEPENDENT KINDS
// =============================================================================

// requireItem is the shared "item must exist" check.
func requireItem(items generic.Index[InventoryItem], row generic.Row, field string) (*InventoryItem, bool) {
	return items.Lookup(generic.Key(row.Get(field)))
}

func PriceRegionItemKind(items generic.Index[InventoryItem], rules generic.Index[PriceRule]) generic.Kind[PriceRegionItem, PriceRegionRefs] {
	return generic.Kind[PriceRegionItem, PriceRegionRefs]{
		Name: "PriceRegionItems",
		Key:  PriceRegionItemKey,
		Validate: func(row generic.Row) (PriceRegionRefs, bool) {
			item, ok := requireItem(items, row, "item_code")
			if !ok {
				return PriceRegionRefs{}, false
			}
			if row.Blank("rule") {
				return PriceRegionRefs{Item: item}, true
			}
			rule, ok := rules.Lookup(generic.Key(row.Get("rule")))
			if !ok {
				return PriceRegionRefs{}, false
			}
			return PriceRegionRefs{Item: item, Rule: rule}, true
		},
		Build: func(row generic.Row, refs PriceRegionRefs) (*PriceRegionItem, error) {
			p := generic.NewFieldParser(row)
			taxCode := TaxCodeExempt
			if !p.Decimal("tax_rate").IsZero() {
				taxCode = TaxCodeTaxable
			}
			pr := &PriceRegionItem{
				Code:          p.String("region"),
				InventoryItem: refs.Item,
				PriceRule:     refs.Rule,
				TaxCode:       taxCode,
				Quantities: [BreakQuantities]decimal.Decimal{
					p.Decimal("pr_1_corpa_qty"),
					p.Decimal("pr_2_corp_b_qty"),
					p.Decimal("pr_3_corp_c_qty"),
					p.Decimal("pr_4_bulk_qty"),
				},
				Prices: [PriceLevels]decimal.Decimal{
					p.Decimal("w_sale_price"),
					p.Decimal("pr_1_corpa"),
					p.Decimal("pr_2_corp_b"),
					p.Decimal("pr_3_corp_c"),
					p.Decimal("pr_4_bulk"),
				},
				RRPExclTax: p.Decimal("retail_price"),
				RRPInclTax: p.Decimal("rrp_inc_tax"),
			}
			return pr, p.Err()
		},
	}
}

func ContractItemKind(items generic.Index[InventoryItem]) generic.Kind[ContractItem, ItemRef] {
	return generic.Kind[ContractItem, ItemRef]{
		Name: "ContractItems",
		Key:  ContractItemKey,
		Validate: func(row generic.Row) (ItemRef, bool) {
			item, ok := requireItem(items, row, "item_code")
			return ItemRef{Item: item}, ok
		},
		Build: func(row generic.Row, refs ItemRef) (*ContractItem, error) {
			p := generic.NewFieldParser(row)
			ci := &ContractItem{
				Code:          p.String("contract_no"),
				InventoryItem: refs.Item,
			}
			for i := 0; i < ContractPrices; i++ {
				ci.Prices[i] = p.Decimal(priceField("price_%d", i+1))
			}
			return ci, p.Err()
		},
	}
}

func WarehouseStockItemKind(items generic.Index[InventoryItem]) generic.Kind[WarehouseStockItem, ItemRef] {
	return generic.Kind[WarehouseStockItem, ItemRef]{
		Name: "WarehouseStockItems",
		Key:  WarehouseStockItemKey,
		Validate: func(row generic.Row) (ItemRef, bool) {
			item, ok := requireItem(items, row, "item_code")
			return ItemRef{Item: item}, ok
		},
		Build: func(row generic.Row, refs ItemRef) (*WarehouseStockItem, error) {
			p := generic.NewFieldParser(row)
			ws := &WarehouseStockItem{
				Code:          p.String("whse"),
				InventoryItem: refs.Item,
				Minimum:       p.Decimal("minimum_stock"),
				Maximum:       p.Decimal("maximum_stock"),
				OnHand:        p.Decimal("on_hand"),
				BinLocation:   p.String("bin_loc"),
				BulkLocation:  p.String("bulk_loc"),
			}
			return ws, p.Err()
		},
	}
}

func SupplierItemKind(items generic.Index[InventoryItem]) generic.Kind[SupplierItem, ItemRef] {
	return generic.Kind[SupplierItem, ItemRef]{
		Name: "SupplierItems",
		Key:  SupplierItemKey,
		Validate: func(row generic.Row) (ItemRef, bool) {
			item, ok := requireItem(items, row, "item_code")
			if !ok || row.Blank("supplier") {
				return ItemRef{}, false
			}
			return ItemRef{Item: item}, true
		},
		Build: func(row generic.Row, refs ItemRef) (*SupplierItem, error) {
			p := generic.NewFieldParser(row)
			si := &SupplierItem{
				Code:          p.String("supplier"),
				InventoryItem: refs.Item,
				ItemCode:      p.String("supplier_item"),
				Priority:      p.Int("priority"),
				UOM:           p.String("unit"),
				ConvFactor:    p.Decimal("conv_factor"),
				PackQuantity:  p.Decimal("pack_qty"),
				MOQ:           p.Decimal("eoq"),
				BuyPrice:      p.Decimal("current_buy_price"),
			}
			return si, p.Err()
		},
	}
}

func GTINItemKind(items generic.Index[InventoryItem]) generic.Kind[GTINItem, ItemRef] {
	seen := make(map[generic.Key]bool)
	return generic.Kind[GTINItem, ItemRef]{
		Name: "GTINItems",
		Key:  GTINItemKey,
		Validate: func(row generic.Row) (ItemRef, bool) {
			item, ok := requireItem(items, row, "item_code")
			if !ok || row.Blank("gtin") {
				return ItemRef{}, false
			}
			if seen[generic.CompositeKey(row.Get("gtin"), item.Code)] {
				return ItemRef{}, false
			}
			return ItemRef{Item: item}, true
		},
		Build: func(row generic.Row, refs ItemRef) (*GTINItem, error) {
			p := generic.NewFieldParser(row)
			g := &GTINItem{
				Code:          p.String("gtin"),
				InventoryItem: refs.Item,
				UOM:           p.String("uom"),
				ConvFactor:    p.Decimal("conversion"),
			}
			return g, p.Err()
		},
		Accepted: func(g *GTINItem) {
			seen[GTINItemKey(g)] = true
		},
	}
}

func InventoryWebDataItemKind(items generic.Index[InventoryItem], menus generic.Index[WebMenuItem]) generic.Kind[InventoryWebDataItem, WebDataRefs] {
	return generic.Kind[InventoryWebDataItem, WebDataRefs]{
		Name: "InventoryWebDataItems",
		Key:  InventoryWebDataItemKey,
		Validate: func(row generic.Row) (WebDataRefs, bool) {
			item, ok := requireItem(items, row, "stock_code")
			if !ok {
				return WebDataRefs{}, false
			}
			if row.Blank("menu_name") {
				return WebDataRefs{Item: item}, true
			}
			menu, ok := menus.Lookup(generic.Key(row.Get("menu_name")))
			if !ok {
				return WebDataRefs{}, false
			}
			return WebDataRefs{Item: item, Menu: menu}, true
		},
		Build: func(row generic.Row, refs WebDataRefs) (*InventoryWebDataItem, error) {
			return &InventoryWebDataItem{
				InventoryItem: refs.Item,
				WebMenuItem:   refs.Menu,
				Description:   row.Get("description"),
			}, nil
		},
	}
}

func priceField(format string, i int) string {
	return fmt.Sprintf(format, i)
}
