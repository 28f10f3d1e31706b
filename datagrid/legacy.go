package datagrid

import (
	"golang.org/x/text/encoding/charmap"
)

// SupplierPricelistFields are the columns of the legacy supplier pricelist,
// in file order.
var SupplierPricelistFields = []string{
	"supplier_code",
	"supp_item_code",
	"item_code",
	"supp_uom",
	"supp_sell_uom",
	"supp_eoq",
	"supp_conv_factor",
	"supp_price_1",
	"supp_price_2",
	"supp_price_3",
	"supp_price_4",
	"supp_price_5",
}

// NewSupplierPricelist returns a row source over the legacy supplier
// pricelist: comma-delimited, no header, ISO-8859-14.
func NewSupplierPricelist(path string) *File {
	return &File{
		Path:     path,
		Comma:    ',',
		Fields:   SupplierPricelistFields,
		Encoding: charmap.ISO8859_14,
	}
}
