package types

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	Query           string `json:"query"`
	K               int    `json:"k,omitempty"`
	Citations       bool   `json:"citations,omitempty"`
	IncludeProducts bool   `json:"include_products,omitempty"`
}
