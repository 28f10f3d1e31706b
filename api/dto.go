/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Defines the JSON structures returned by the API, decoupled from the
  inventory records. Decimals are encoded as JSON strings so no precision
  is lost; an undefined ratio is null.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/inventory-sync/generic"
	"github.com/warp/inventory-sync/inventory"
	"github.com/warp/inventory-sync/pricing"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// RunDTO represents one import run.
type RunDTO struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Source     string `json:"source"`
	Status     string `json:"status"`
	Inserted   int    `json:"inserted"`
	Updated    int    `json:"updated"`
	Skipped    int    `json:"skipped"`
	Invalid    int    `json:"invalid"`
	Error      string `json:"error,omitempty"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
}

// ItemDTO is an inventory item with its prices in every region.
type ItemDTO struct {
	Code            string           `json:"code"`
	Description     string           `json:"description"`
	UOM             string           `json:"uom"`
	Brand           string           `json:"brand"`
	APN             string           `json:"apn"`
	Group           string           `json:"group"`
	Created         string           `json:"created,omitempty"`
	ItemType        string           `json:"item_type"`
	Condition       string           `json:"condition"`
	ReplacementCost decimal.Decimal  `json:"replacement_cost"`
	Prices          []RegionPriceDTO `json:"prices"`
}

type RegionPriceDTO struct {
	Region     string            `json:"region"`
	PriceRule  string            `json:"price_rule,omitempty"`
	TaxCode    string            `json:"tax_code"`
	Quantities []decimal.Decimal `json:"quantities"`
	Prices     []decimal.Decimal `json:"prices"`
	RRPExclTax decimal.Decimal   `json:"rrp_excl_tax"`
	RRPInclTax decimal.Decimal   `json:"rrp_incl_tax"`
}

// PriceChangeDTO is one item whose prices moved since the snapshot.
type PriceChangeDTO struct {
	ItemCode        string              `json:"item_code"`
	Region          string              `json:"region"`
	PriceRule       string              `json:"price_rule,omitempty"`
	PricesWas       []decimal.Decimal   `json:"prices_was"`
	PricesNow       []decimal.Decimal   `json:"prices_now"`
	PriceDiffs      []decimal.Decimal   `json:"price_diffs"`
	SellPriceChange decimal.NullDecimal `json:"sell_price_change"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toRunDTO(r generic.Run) RunDTO {
	return RunDTO{
		ID:         r.ID,
		Kind:       r.Result.Kind,
		Source:     r.Source,
		Status:     string(r.Status),
		Inserted:   r.Result.Inserted,
		Updated:    r.Result.Updated,
		Skipped:    r.Result.Skipped,
		Invalid:    r.Result.Invalid,
		Error:      r.Error,
		StartedAt:  r.StartedAt.Format(time.RFC3339),
		FinishedAt: r.FinishedAt.Format(time.RFC3339),
	}
}

func toItemDTO(item *inventory.InventoryItem, regions []*inventory.PriceRegionItem) ItemDTO {
	dto := ItemDTO{
		Code:            item.Code,
		Description:     item.Description(),
		UOM:             item.UOM,
		Brand:           item.Brand,
		APN:             item.APN,
		Group:           item.Group,
		ItemType:        string(item.ItemType),
		Condition:       string(item.Condition),
		ReplacementCost: item.ReplacementCost,
		Prices:          []RegionPriceDTO{},
	}
	if !item.Created.IsZero() {
		dto.Created = item.Created.Format("2006-01-02")
	}
	for _, r := range regions {
		dto.Prices = append(dto.Prices, RegionPriceDTO{
			Region:     r.Code,
			PriceRule:  r.PriceRuleCode(),
			TaxCode:    string(r.TaxCode),
			Quantities: r.Quantities[:],
			Prices:     r.Prices[:],
			RRPExclTax: r.RRPExclTax,
			RRPInclTax: r.RRPInclTax,
		})
	}
	return dto
}

func toPriceChangeDTO(pc pricing.PriceChange) PriceChangeDTO {
	return PriceChangeDTO{
		ItemCode:        pc.Item.InventoryItem.Code,
		Region:          pc.Item.Code,
		PriceRule:       pc.Item.PriceRuleCode(),
		PricesWas:       pc.Was.Prices[:],
		PricesNow:       pc.Now.Prices[:],
		PriceDiffs:      pc.Diffs[:],
		SellPriceChange: pc.Ratio,
	}
}
