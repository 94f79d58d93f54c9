package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// QueryResponse mirrors the answer payload of POST /api/v1/query.
type QueryResponse struct {
	Response            string           `json:"response"`
	Sources             []string         `json:"sources"`
	Query               string           `json:"query"`
	CitationsEnabled    bool             `json:"citations_enabled"`
	NavigationEnabled   bool             `json:"navigation_enabled"`
	AccountDataUsed     bool             `json:"account_data_used"`
	CustomerInfo        *CustomerInfo    `json:"customer_info"`
	RecommendedProducts []CatalogProduct `json:"recommended_products"`
}

// ProductsResponse is the catalog listing payload.
type ProductsResponse struct {
	Products []CatalogProduct `json:"products"`
}

// CategoriesResponse lists the distinct catalog categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Total      int      `json:"total"`
}

// CategoryProductsResponse is the per-category catalog listing.
type CategoryProductsResponse struct {
	Products []CatalogProduct `json:"products"`
	Category string           `json:"category"`
	Total    int              `json:"total"`
}

// StatusResponse summarizes the health of the assistant's collaborators.
type StatusResponse struct {
	Status        string `json:"status"`
	Environment   string `json:"environment"`
	ContentFolder string `json:"content_folder"`
	VectorDB      string `json:"vector_db"`
	CommerceAPI   string `json:"commerce_api"`
	Embeddings    string `json:"embeddings"`
	Products      string `json:"products"`
}
