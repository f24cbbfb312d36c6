package model

// Product is an entry of the product catalogue.  The catalogue is keyed
// by ID for priced lookups and also kept as an ordered list for keyword
// search; both views are built from the same rows at startup.
//
// Fields:
//  ID    – product identifier used in /products/:id.
//  Name  – display name, matched by keyword search.
//  Price – list price before any discount.
type Product struct {
	ID    int     `json:"id" yaml:"id" validate:"gt=0"`
	Name  string  `json:"name" yaml:"name" validate:"required"`
	Price float64 `json:"price" yaml:"price" validate:"gte=0"`
}

// PricedProduct is the response of a priced lookup.  It carries the
// product identity together with the price before and after discount.
type PricedProduct struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	OriginalPrice float64 `json:"original_price"`
	Discount      int     `json:"discount"`
	FinalPrice    float64 `json:"final_price"`
}
