package types

// ProductDescription carries the localized summary of a catalog product.
type ProductDescription struct {
	Summary string `json:"summary"`
}

// ProductDiscount is present only when upstream pricing carries a discount.
type ProductDiscount struct {
	Reason string `json:"reason"`
}

// ProductAttributes are the catalog attributes the storefront cares about.
type ProductAttributes struct {
	Category string `json:"category"`
	Download string `json:"download"`
}

// CatalogProduct is a normalized product record derived entirely from the
// upstream catalog. It is recomputed on every catalog query.
type CatalogProduct struct {
	Path            string             `json:"path"`
	Image           string             `json:"image"`
	Display         string             `json:"display"`
	Price           string             `json:"price"`
	Total           string             `json:"total"`
	PriceValue      float64            `json:"priceValue"`
	Description     ProductDescription `json:"description"`
	Discount        *ProductDiscount   `json:"discount"`
	DiscountPercent string             `json:"discountPercent,omitempty"`
	Attributes      ProductAttributes  `json:"attributes"`
	Categories      []string           `json:"categories"`
	Tags            []string           `json:"tags"`
	Active          bool               `json:"active"`
	Available       bool               `json:"available"`
	Trial           bool               `json:"trial"`
	Subscription    bool               `json:"subscription"`
	SKU             string             `json:"sku"`
	IsFree          bool               `json:"is_free"`
}
