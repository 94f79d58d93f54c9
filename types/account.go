package types

// NotAvailable is the sentinel rendered for every missing upstream field so
// downstream display never sees a null.
const NotAvailable = "N/A"

// CustomerInfo holds identity fields taken from the first account record only.
type CustomerInfo struct {
	AccountID  string `json:"account_id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	FullName   string `json:"full_name"`
	Country    string `json:"country"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
}

// OrderProduct is a single line item of an order.
type OrderProduct struct {
	Display         string  `json:"display"`
	ProductID       string  `json:"product_id"`
	Quantity        int     `json:"quantity"`
	Coupon          string  `json:"coupon"`
	Subtotal        float64 `json:"subtotal"`
	SubtotalDisplay string  `json:"subtotal_display"`
	SKU             string  `json:"sku"`
}

// OrderFile is a downloadable fulfillment entry, carrying back-references to
// the line item it belongs to.
type OrderFile struct {
	Display        string  `json:"display"`
	FileURL        string  `json:"file_url"`
	Product        string  `json:"product"`
	ProductID      string  `json:"product_id"`
	Size           int64   `json:"size"`
	SizeMB         float64 `json:"size_mb"`
	Type           string  `json:"type"`
	FulfillmentKey string  `json:"fulfillment_key"`
}

// OrderLicense is a license-key fulfillment entry.
type OrderLicense struct {
	Display        string `json:"display"`
	LicenseKey     string `json:"license_key"`
	Product        string `json:"product"`
	ProductID      string `json:"product_id"`
	Type           string `json:"type"`
	FulfillmentKey string `json:"fulfillment_key"`
}

// Order joins the charge record (monetary/status/date, keyed by order id)
// with the individually fetched line items of the same order.
type Order struct {
	OrderID        string  `json:"order_id"`
	OrderReference string  `json:"order_reference"`
	Date           string  `json:"date"`
	UTCDate        string  `json:"utc_date"`
	Total          float64 `json:"total"`
	// TotalDisplay renders the joined charge total, or the "N/A" sentinel
	// when no charge record covered this order id.
	TotalDisplay string         `json:"total_display"`
	Currency     string         `json:"currency"`
	Status       string         `json:"status"`
	Products     []OrderProduct `json:"products"`
	Files        []OrderFile    `json:"files"`
	Licenses     []OrderLicense `json:"licenses"`
}

// OwnedProduct is a purchased product flattened out of its order for display.
type OwnedProduct struct {
	Path           string  `json:"path"`
	Display        string  `json:"display"`
	PurchaseDate   string  `json:"purchaseDate"`
	OrderID        string  `json:"orderId"`
	OrderReference string  `json:"orderReference"`
	Price          float64 `json:"price"`
	PriceDisplay   string  `json:"price_display"`
	Currency       string  `json:"currency"`
	SKU            string  `json:"sku"`
}

// AccountRecord is the normalized aggregation of a customer's identity,
// orders, entitlements and a deterministic natural-language summary. It is
// built fresh per lookup and never persisted.
type AccountRecord struct {
	CustomerInfo   CustomerInfo   `json:"customer_info"`
	Orders         []Order        `json:"orders"`
	TotalOrders    int            `json:"total_orders"`
	TotalProducts  int            `json:"total_products"`
	TotalFiles     int            `json:"total_files"`
	TotalLicenses  int            `json:"total_licenses"`
	AccountSummary string         `json:"account_summary"`
	OwnedProducts  []OwnedProduct `json:"owned_products"`
}
