// Package inventory implements reconciliation of ERP datagrid extracts into
// pricing and stock records. It uses the generic engine with one Kind per
// entity; each kind carries its own reference-validation policy.
package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/inventory-sync/generic"
)

// =============================================================================
// ROOT ENTITY
// =============================================================================

// InventoryItem is a stocked or sellable unit. Every other kind references it.
type InventoryItem struct {
	Code             string
	DescriptionLine1 string
	DescriptionLine2 string
	DescriptionLine3 string
	UOM              string
	Brand            string
	APN              string // manufacturer part number
	Group            string
	Created          time.Time
	ItemType         ItemType
	Condition        ItemCondition
	ReplacementCost  decimal.Decimal
}

// Description joins the three description lines.
func (i *InventoryItem) Description() string {
	var parts []string
	for _, line := range []string{i.DescriptionLine1, i.DescriptionLine2, i.DescriptionLine3} {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// =============================================================================
// PRICING
// =============================================================================

// PriceLevels is the number of sell price tiers (0 = wholesale ... 4 = bulk).
const PriceLevels = 5

// BreakQuantities is the number of quantity breaks (tiers 1..4).
const BreakQuantities = 4

type PriceRule struct {
	Code          string
	Description   string
	PriceBases    [PriceLevels]PriceBasis
	PriceFactors  [PriceLevels]decimal.Decimal
	RRPExclBasis  PriceBasis
	RRPExclFactor decimal.Decimal
	RRPInclBasis  PriceBasis
	RRPInclFactor decimal.Decimal
}

// PriceRegionItem holds the sell prices of one item in one price region.
// Code is the region code; "" is the default region.
type PriceRegionItem struct {
	Code          string
	InventoryItem *InventoryItem
	PriceRule     *PriceRule // nil when the item has no rule
	TaxCode       TaxCode
	Quantities    [BreakQuantities]decimal.Decimal // break quantity for price tiers 1..4
	Prices        [PriceLevels]decimal.Decimal
	RRPExclTax    decimal.Decimal
	RRPInclTax    decimal.Decimal
}

// PriceRuleCode returns the rule code, or "" when no rule is linked.
func (p *PriceRegionItem) PriceRuleCode() string {
	if p.PriceRule == nil {
		return ""
	}
	return p.PriceRule.Code
}

// ContractPrices is the number of prices on a contract line.
const ContractPrices = 6

type ContractItem struct {
	Code          string // contract number
	InventoryItem *InventoryItem
	Prices        [ContractPrices]decimal.Decimal // price_1..price_6
}

// =============================================================================
// STOCK & SUPPLY
// =============================================================================

type WarehouseStockItem struct {
	Code          string // warehouse code
	InventoryItem *InventoryItem
	Minimum       decimal.Decimal
	Maximum       decimal.Decimal
	OnHand        decimal.Decimal
	BinLocation   string
	BulkLocation  string
}

type SupplierItem struct {
	Code          string // supplier code
	InventoryItem *InventoryItem
	ItemCode      string // the supplier's own item code
	Priority      int
	UOM           string
	ConvFactor    decimal.Decimal
	PackQuantity  decimal.Decimal
	MOQ           decimal.Decimal
	BuyPrice      decimal.Decimal
}

type GTINItem struct {
	Code          string // barcode
	InventoryItem *InventoryItem
	UOM           string
	ConvFactor    decimal.Decimal
}

// SupplierPricelistItem is read from the legacy supplier pricelist file.
// It is never persisted.
type SupplierPricelistItem struct {
	ItemCode           string
	SupplierCode       string
	SupplierItemCode   string
	SupplierUOM        string
	SupplierSellUOM    string
	SupplierEOQ        string
	SupplierConvFactor decimal.Decimal
	SupplierPrice      decimal.Decimal // level 1 price, rounded to cents
}

// =============================================================================
// WEB
// =============================================================================

// WebMenuSeparator joins parent and child menu names.
const WebMenuSeparator = "/"

type WebMenuItem struct {
	ParentName string
	ChildName  string
}

// Name is the menu path used to reference the menu item, e.g. "Paper/Copy Paper".
func (w *WebMenuItem) Name() string {
	return w.ParentName + WebMenuSeparator + w.ChildName
}

// InventoryWebDataItem holds web-shop data for one item.
type InventoryWebDataItem struct {
	InventoryItem *InventoryItem
	WebMenuItem   *WebMenuItem // nil when the item is not on a menu
	Description   string
}

// =============================================================================
// NATURAL KEYS
// =============================================================================

func InventoryItemKey(i *InventoryItem) generic.Key { return generic.Key(i.Code) }
func PriceRuleKey(r *PriceRule) generic.Key         { return generic.Key(r.Code) }
func WebMenuItemKey(w *WebMenuItem) generic.Key     { return generic.Key(w.Name()) }

func PriceRegionItemKey(p *PriceRegionItem) generic.Key {
	return generic.CompositeKey(p.Code, p.InventoryItem.Code)
}

func ContractItemKey(c *ContractItem) generic.Key {
	return generic.CompositeKey(c.Code, c.InventoryItem.Code)
}

func WarehouseStockItemKey(w *WarehouseStockItem) generic.Key {
	return generic.CompositeKey(w.Code, w.InventoryItem.Code)
}

func SupplierItemKey(s *SupplierItem) generic.Key {
	return generic.CompositeKey(s.Code, s.InventoryItem.Code)
}

func GTINItemKey(g *GTINItem) generic.Key {
	return generic.CompositeKey(g.Code, g.InventoryItem.Code)
}

func InventoryWebDataItemKey(w *InventoryWebDataItem) generic.Key {
	return generic.Key(w.InventoryItem.Code)
}

func SupplierPricelistItemKey(s *SupplierPricelistItem) generic.Key {
	return generic.CompositeKey(s.SupplierCode, s.ItemCode)
}
