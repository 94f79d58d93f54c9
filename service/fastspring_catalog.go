package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/songwish/assistant-be/types"
)

type fsProductListResponse struct {
	Products []string `json:"products"`
}

type fsProductPricing struct {
	Price    json.RawMessage `json:"price"`
	Discount *struct {
		Percentage float64 `json:"percentage"`
		Reason     string  `json:"reason"`
	} `json:"discount"`
}

type fsProductDetail struct {
	Product     string            `json:"product"`
	Image       string            `json:"image"`
	SKU         string            `json:"sku"`
	Display     json.RawMessage   `json:"display"`
	Description struct {
		Summary json.RawMessage `json:"summary"`
	} `json:"description"`
	Pricing    fsProductPricing  `json:"pricing"`
	Attributes map[string]string `json:"attributes"`
}

type fsProductDetailResponse struct {
	Products []fsProductDetail `json:"products"`
}

// GetAllAvailableProducts fetches the catalog id list, then every product's
// detail record, and normalizes each into a CatalogProduct. The result is
// recomputed on every call; an individual product failure is skipped.
func (s *FastSpringService) GetAllAvailableProducts(ctx context.Context) ([]types.CatalogProduct, error) {
	body, err := s.get(ctx, s.productsURL)
	if err != nil {
		return nil, err
	}
	var list fsProductListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &types.UpstreamError{Message: fmt.Sprintf("malformed catalog response: %v", err)}
	}
	if len(list.Products) == 0 {
		return nil, fmt.Errorf("no products found in catalog")
	}

	var products []types.CatalogProduct
	for _, productID := range list.Products {
		detailBody, err := s.get(ctx, fmt.Sprintf("%s/%s", s.productsURL, productID))
		if err != nil {
			log.Printf("Error fetching product %s: %v", productID, err)
			continue
		}
		var detail fsProductDetailResponse
		if err := json.Unmarshal(detailBody, &detail); err != nil || len(detail.Products) == 0 {
			log.Printf("Skipping product %s: unexpected detail shape", productID)
			continue
		}
		products = append(products, normalizeProduct(productID, detail.Products[0]))
	}
	return products, nil
}

func normalizeProduct(productID string, detail fsProductDetail) types.CatalogProduct {
	display := localizedContent(detail.Display)
	if display == "" {
		display = titleCase(strings.ReplaceAll(productID, "-", " "))
	}
	usdPrice := usdPriceOf(detail.Pricing)
	productPath := detail.Product
	if productPath == "" {
		productPath = productID
	}
	category := productCategory(detail.Attributes)
	image := detail.Image
	if image == "" {
		image = "/api/placeholder/200/120"
	}
	sku := detail.SKU
	if sku == "" {
		sku = productID
	}

	product := types.CatalogProduct{
		Path:        productPath,
		Image:       image,
		Display:     display,
		Price:       fmt.Sprintf("$%.2f", usdPrice),
		Total:       fmt.Sprintf("$%.2f", usdPrice),
		PriceValue:  usdPrice,
		Description: types.ProductDescription{Summary: localizedContent(detail.Description.Summary)},
		Attributes: types.ProductAttributes{
			Category: category,
			Download: detail.Attributes["download"],
		},
		Categories:   []string{category},
		Tags:         productTags(category, productPath, usdPrice),
		Active:       true,
		Available:    true,
		Trial:        strings.Contains(strings.ToLower(productPath), "trial"),
		Subscription: false,
		SKU:          sku,
		IsFree:       isProductFree(productPath, usdPrice),
	}

	if detail.Pricing.Discount != nil {
		pct := detail.Pricing.Discount.Percentage
		product.Discount = &types.ProductDiscount{Reason: detail.Pricing.Discount.Reason}
		product.DiscountPercent = strconv.FormatFloat(pct, 'f', -1, 64) + "%"
		// Discounted total rounds via %.2f (round-half-even).
		final := usdPrice - usdPrice*(pct/100)
		product.Total = fmt.Sprintf("$%.2f", final)
		product.PriceValue = final
	}
	return product
}

func productCategory(attributes map[string]string) string {
	if category := attributes["category"]; category != "" {
		return category
	}
	return "Other"
}

func isProductFree(productPath string, price float64) bool {
	lower := strings.ToLower(productPath)
	return price == 0 || strings.Contains(lower, "trial") || strings.Contains(lower, "free")
}

// productTags derives browse tags from category, path and price. A path
// containing "trial" tags as trial, not free, even at price zero.
func productTags(category, productPath string, price float64) []string {
	tags := []string{strings.ReplaceAll(strings.ToLower(category), " ", "-")}
	lower := strings.ToLower(productPath)
	if isProductFree(productPath, price) {
		if strings.Contains(lower, "trial") {
			tags = append(tags, "trial")
		} else {
			tags = append(tags, "free")
		}
	} else {
		tags = append(tags, "paid")
	}
	switch {
	case strings.Contains(lower, "remidi"):
		tags = append(tags, "midi-sampler", "vst")
	case strings.Contains(lower, "rechannel"):
		tags = append(tags, "midi-effect", "vst")
	case strings.Contains(lower, "jazz"):
		tags = append(tags, "jazz", "midi-files")
	case strings.Contains(lower, "sample-loops"):
		tags = append(tags, "loops", "samples")
	}
	return tags
}

// localizedContent resolves an upstream field that may be a plain string or a
// language map. Preference order: "en", "default", then the first key in
// sorted order so the choice stays deterministic.
func localizedContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}
	var byLang map[string]string
	if err := json.Unmarshal(raw, &byLang); err != nil || len(byLang) == 0 {
		return ""
	}
	if v, ok := byLang["en"]; ok {
		return v
	}
	if v, ok := byLang["default"]; ok {
		return v
	}
	keys := make([]string, 0, len(byLang))
	for k := range byLang {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return byLang[keys[0]]
}

func usdPriceOf(pricing fsProductPricing) float64 {
	if len(pricing.Price) == 0 {
		return 0
	}
	var byCurrency map[string]float64
	if err := json.Unmarshal(pricing.Price, &byCurrency); err == nil {
		return byCurrency["USD"]
	}
	var plain float64
	if err := json.Unmarshal(pricing.Price, &plain); err == nil {
		return plain
	}
	return 0
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Ping probes the commerce API for the status endpoint, classifying the
// outcome the way support expects to read it.
func (s *FastSpringService) Ping(ctx context.Context) string {
	_, err := s.lookupAccountsByEmail(ctx, "test@test.com")
	switch {
	case err == nil:
		return "connected"
	case strings.Contains(err.Error(), "not found"):
		return "connected (no test account found - normal)"
	default:
		return "error: " + err.Error()
	}
}
