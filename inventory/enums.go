package inventory

import "fmt"

// =============================================================================
// ITEM TYPE
// =============================================================================

// ItemType is the ERP status code of an inventory item.
type ItemType string

const (
	ItemTypeUnset      ItemType = ""
	ItemTypeStocked    ItemType = "S"
	ItemTypeIndent     ItemType = "I"
	ItemTypeKit        ItemType = "K"
	ItemTypeLabour     ItemType = "L"
	ItemTypeSpecial    ItemType = "Z"
	ItemTypeBOM        ItemType = "B"
	ItemTypeCrossRef   ItemType = "X"
	ItemTypeNonStocked ItemType = "N"
)

func ParseItemType(s string) (ItemType, error) {
	switch t := ItemType(s); t {
	case ItemTypeUnset, ItemTypeStocked, ItemTypeIndent, ItemTypeKit, ItemTypeLabour,
		ItemTypeSpecial, ItemTypeBOM, ItemTypeCrossRef, ItemTypeNonStocked:
		return t, nil
	}
	return "", fmt.Errorf("unknown item type %q", s)
}

// =============================================================================
// ITEM CONDITION
// =============================================================================

// ItemCondition is the lifecycle flag of an inventory item. Blank means none.
type ItemCondition string

const (
	ConditionNone         ItemCondition = ""
	ConditionDiscontinued ItemCondition = "D"
	ConditionInactive     ItemCondition = "I"
	ConditionObsolete     ItemCondition = "O"
	ConditionSuperseded   ItemCondition = "S"
)

func ParseItemCondition(s string) (ItemCondition, error) {
	switch c := ItemCondition(s); c {
	case ConditionNone, ConditionDiscontinued, ConditionInactive,
		ConditionObsolete, ConditionSuperseded:
		return c, nil
	}
	return "", fmt.Errorf("unknown item condition %q", s)
}

// =============================================================================
// PRICE BASIS
// =============================================================================

// PriceBasis names the value a price rule factor is applied to.
// How the basis and factor combine is not modelled here.
type PriceBasis string

const (
	BasisNone            PriceBasis = ""
	BasisReplacementCost PriceBasis = "R"
	BasisStandardCost    PriceBasis = "S"
	BasisMarkup          PriceBasis = "M"
	BasisRRPExclTax      PriceBasis = "L"
	BasisRRPInclTax      PriceBasis = "I"
	BasisExistingPrice   PriceBasis = "E"
)

func ParsePriceBasis(s string) (PriceBasis, error) {
	switch b := PriceBasis(s); b {
	case BasisNone, BasisReplacementCost, BasisStandardCost, BasisMarkup,
		BasisRRPExclTax, BasisRRPInclTax, BasisExistingPrice:
		return b, nil
	}
	return "", fmt.Errorf("unknown price basis %q", s)
}

// =============================================================================
// TAX CODE
// =============================================================================

type TaxCode string

const (
	TaxCodeTaxable TaxCode = "A"
	TaxCodeExempt  TaxCode = "E"
)
