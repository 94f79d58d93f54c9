package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/songwish/assistant-be/config"
	"github.com/songwish/assistant-be/types"
)

const (
	fastspringUserAgent = "SongWish-API/1.0"
	fastspringTimeout   = 30 * time.Second

	// orderFetchWorkers bounds the per-order fan-out; result ordering stays
	// account-then-order-id regardless of completion order.
	orderFetchWorkers = 4
)

var errNotFound = errors.New("not found")

// FastSpringService talks to the FastSpring commerce API and normalizes its
// heterogeneous account/order/catalog payloads into stable internal records.
type FastSpringService struct {
	apiUser     string
	apiPassword string
	accountURL  string
	orderURL    string
	productsURL string
	client      *http.Client
}

func NewFastSpringService(cfg config.FastSpringConfig) *FastSpringService {
	return &FastSpringService{
		apiUser:     cfg.APIUser,
		apiPassword: cfg.APIPassword,
		accountURL:  strings.TrimSuffix(cfg.AccountEndpointURL, "/"),
		orderURL:    strings.TrimSuffix(cfg.OrderEndpointURL, "/"),
		productsURL: strings.TrimSuffix(cfg.ProductsEndpointURL, "/"),
		client:      &http.Client{Timeout: fastspringTimeout},
	}
}

// Wire shapes. Upstream fields are all optional; the normalization step maps
// every absent value to an explicit sentinel.

type fsContact struct {
	First string `json:"first"`
	Last  string `json:"last"`
	Email string `json:"email"`
}

type fsAddress struct {
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
}

type fsCharge struct {
	Order            string  `json:"order"`
	Timestamp        int64   `json:"timestamp"`
	TimestampDisplay string  `json:"timestampDisplay"`
	OrderReference   string  `json:"orderReference"`
	Total            float64 `json:"total"`
	Currency         string  `json:"currency"`
	Status           string  `json:"status"`
}

type fsAccount struct {
	Account string     `json:"account"`
	Country string     `json:"country"`
	Contact fsContact  `json:"contact"`
	Address fsAddress  `json:"address"`
	Charges []fsCharge `json:"charges"`
	Orders  []string   `json:"orders"`
}

type fsAccountsResponse struct {
	Accounts []fsAccount `json:"accounts"`
}

// fsFulfillmentEntry is one entry of a fulfillment list; only kinds "file"
// and "license" become entitlements.
type fsFulfillmentEntry struct {
	Type    string `json:"type"`
	Display string `json:"display"`
	File    string `json:"file"`
	License string `json:"license"`
	Size    int64  `json:"size"`
}

type fsOrderItem struct {
	Display         string                     `json:"display"`
	Product         string                     `json:"product"`
	Quantity        int                        `json:"quantity"`
	Coupon          string                     `json:"coupon"`
	Subtotal        float64                    `json:"subtotal"`
	SubtotalDisplay string                     `json:"subtotalDisplay"`
	SKU             string                     `json:"sku"`
	Fulfillments    map[string]json.RawMessage `json:"fulfillments"`
}

type fsOrderResponse struct {
	Items []fsOrderItem `json:"items"`
}

// get performs one authenticated upstream call. 404 maps to errNotFound;
// any other non-2xx status or transport failure becomes an UpstreamError.
func (s *FastSpringService) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &types.UpstreamError{Message: err.Error()}
	}
	req.SetBasicAuth(s.apiUser, s.apiPassword)
	req.Header.Set("accept", "application/json")
	req.Header.Set("User-Agent", fastspringUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &types.UpstreamError{Message: fmt.Sprintf("connection error: unable to reach FastSpring API: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.UpstreamError{Message: fmt.Sprintf("failed to read response: %v", err)}
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("FastSpring API error %d: %s", resp.StatusCode, truncateString(string(body), 200))
		return nil, &types.UpstreamError{Status: resp.StatusCode, Message: string(body)}
	}
	return body, nil
}

func (s *FastSpringService) lookupAccountsByEmail(ctx context.Context, email string) (*fsAccountsResponse, error) {
	body, err := s.get(ctx, fmt.Sprintf("%s?email=%s", s.accountURL, url.QueryEscape(email)))
	if err != nil {
		return nil, err
	}
	var accounts fsAccountsResponse
	if err := json.Unmarshal(body, &accounts); err != nil {
		return nil, &types.UpstreamError{Message: fmt.Sprintf("malformed accounts response: %v", err)}
	}
	return &accounts, nil
}

func (s *FastSpringService) fetchOrder(ctx context.Context, orderID string) (*fsOrderResponse, error) {
	body, err := s.get(ctx, fmt.Sprintf("%s/%s", s.orderURL, url.PathEscape(orderID)))
	if err != nil {
		return nil, err
	}
	var order fsOrderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, &types.UpstreamError{Message: fmt.Sprintf("malformed order response: %v", err)}
	}
	return &order, nil
}

// ExtractAccountProducts aggregates a customer's identity, orders and
// entitlements into one AccountRecord. Individual order fetch failures
// degrade to partial results; whole-pipeline failures return tagged errors.
func (s *FastSpringService) ExtractAccountProducts(ctx context.Context, email string) (record *types.AccountRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			record = nil
			err = fmt.Errorf("%w: %v", types.ErrAggregation, r)
		}
	}()

	accountsResp, err := s.lookupAccountsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, types.ErrNoAccount
		}
		return nil, err
	}
	accounts := accountsResp.Accounts
	if len(accounts) == 0 {
		return nil, types.ErrNoAccount
	}

	record = &types.AccountRecord{
		CustomerInfo: customerInfoFrom(accounts[0], email),
	}

	// Charge lookup keyed by order id, built across every account.
	// Later accounts overwrite earlier ones on id collision.
	chargeByOrder := map[string]fsCharge{}
	for _, account := range accounts {
		for _, charge := range account.Charges {
			if charge.Order != "" {
				chargeByOrder[charge.Order] = charge
			}
		}
	}

	// Per-order item fetches are independent; fan them out with a bounded
	// worker pool and write results by index so the final Order list keeps
	// account-then-order-id order.
	var orderIDs []string
	for _, account := range accounts {
		orderIDs = append(orderIDs, account.Orders...)
	}
	fetched := s.fetchOrdersBounded(ctx, orderIDs)

	for i, orderID := range orderIDs {
		orderResp := fetched[i]
		if orderResp == nil {
			continue // fetch failed, skipped
		}
		order := s.buildOrder(orderID, chargeByOrder, orderResp)
		for _, product := range order.Products {
			record.OwnedProducts = append(record.OwnedProducts, types.OwnedProduct{
				Path:           product.ProductID,
				Display:        product.Display,
				PurchaseDate:   order.Date,
				OrderID:        order.OrderID,
				OrderReference: order.OrderReference,
				Price:          product.Subtotal,
				PriceDisplay:   product.SubtotalDisplay,
				Currency:       order.Currency,
				SKU:            product.SKU,
			})
		}
		record.Orders = append(record.Orders, order)
	}

	// Totals are sums over what was actually fetched, never upstream counts.
	record.TotalOrders = len(record.Orders)
	for _, order := range record.Orders {
		record.TotalProducts += len(order.Products)
		record.TotalFiles += len(order.Files)
		record.TotalLicenses += len(order.Licenses)
	}
	record.AccountSummary = buildAccountSummary(record)
	return record, nil
}

// fetchOrdersBounded fetches every order id concurrently with at most
// orderFetchWorkers in flight. A nil slot marks a failed fetch.
func (s *FastSpringService) fetchOrdersBounded(ctx context.Context, orderIDs []string) []*fsOrderResponse {
	results := make([]*fsOrderResponse, len(orderIDs))
	sem := make(chan struct{}, orderFetchWorkers)
	var wg sync.WaitGroup
	for i, orderID := range orderIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, orderID string) {
			defer wg.Done()
			defer func() { <-sem }()
			orderResp, err := s.fetchOrder(ctx, orderID)
			if err != nil {
				log.Printf("Skipping order %s: %v", orderID, err)
				return
			}
			results[i] = orderResp
		}(i, orderID)
	}
	wg.Wait()
	return results
}

func customerInfoFrom(account fsAccount, email string) types.CustomerInfo {
	fullName := strings.TrimSpace(account.Contact.First + " " + account.Contact.Last)
	return types.CustomerInfo{
		AccountID:  orNA(account.Account),
		Email:      firstNonEmpty(account.Contact.Email, email),
		FirstName:  orNA(account.Contact.First),
		LastName:   orNA(account.Contact.Last),
		FullName:   fullName,
		Country:    orNA(account.Country),
		City:       orNA(account.Address.City),
		Region:     orNA(account.Address.Region),
		PostalCode: orNA(account.Address.PostalCode),
	}
}

// buildOrder joins the charge record for an order id against the order's own
// line items. The two upstream payloads are not a single source of truth:
// monetary/status/date fields come only from the charge, items only from the
// per-order fetch. Missing charges render as sentinels, not zeros.
func (s *FastSpringService) buildOrder(orderID string, chargeByOrder map[string]fsCharge, orderResp *fsOrderResponse) types.Order {
	order := types.Order{
		OrderID:        orderID,
		OrderReference: types.NotAvailable,
		Date:           types.NotAvailable,
		UTCDate:        types.NotAvailable,
		Currency:       "USD",
		Status:         "unknown",
	}
	charge, charged := chargeByOrder[orderID]
	if charged {
		order.OrderReference = orNA(charge.OrderReference)
		order.Date = orNA(charge.TimestampDisplay)
		order.Total = charge.Total
		if charge.Currency != "" {
			order.Currency = charge.Currency
		}
		if charge.Status != "" {
			order.Status = charge.Status
		}
		if charge.Timestamp > 0 {
			order.UTCDate = time.UnixMilli(charge.Timestamp).UTC().Format("2006-01-02 15:04:05") + " UTC"
		}
		order.TotalDisplay = order.Currency + " " + formatFloat(order.Total)
	} else {
		order.TotalDisplay = types.NotAvailable
	}

	for _, item := range orderResp.Items {
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		product := types.OrderProduct{
			Display:         orNA(item.Display),
			ProductID:       orNA(item.Product),
			Quantity:        quantity,
			Coupon:          orNA(item.Coupon),
			Subtotal:        item.Subtotal,
			SubtotalDisplay: item.SubtotalDisplay,
			SKU:             orNA(item.SKU),
		}
		if product.SubtotalDisplay == "" {
			product.SubtotalDisplay = fmt.Sprintf("$%.2f", item.Subtotal)
		}
		order.Products = append(order.Products, product)

		for key, raw := range item.Fulfillments {
			// The "instructions" fulfillment key is always ignored.
			if key == "instructions" {
				continue
			}
			var entries []fsFulfillmentEntry
			if err := json.Unmarshal(raw, &entries); err != nil {
				continue
			}
			for _, entry := range entries {
				switch {
				case entry.Type == "file" && entry.File != "":
					order.Files = append(order.Files, types.OrderFile{
						Display:        orNA(entry.Display),
						FileURL:        entry.File,
						Product:        product.Display,
						ProductID:      product.ProductID,
						Size:           entry.Size,
						SizeMB:         math.Round(float64(entry.Size)/(1024*1024)*10) / 10,
						Type:           entry.Type,
						FulfillmentKey: key,
					})
				case entry.Type == "license" && entry.License != "":
					order.Licenses = append(order.Licenses, types.OrderLicense{
						Display:        orNA(entry.Display),
						LicenseKey:     entry.License,
						Product:        product.Display,
						ProductID:      product.ProductID,
						Type:           entry.Type,
						FulfillmentKey: key,
					})
				}
			}
		}
	}
	sortEntitlements(&order)
	return order
}

// sortEntitlements orders the fulfillment maps' output deterministically:
// map iteration order must not leak into the record.
func sortEntitlements(order *types.Order) {
	sort.SliceStable(order.Files, func(i, j int) bool {
		if order.Files[i].ProductID != order.Files[j].ProductID {
			return order.Files[i].ProductID < order.Files[j].ProductID
		}
		return order.Files[i].Display < order.Files[j].Display
	})
	sort.SliceStable(order.Licenses, func(i, j int) bool {
		if order.Licenses[i].ProductID != order.Licenses[j].ProductID {
			return order.Licenses[i].ProductID < order.Licenses[j].ProductID
		}
		return order.Licenses[i].Display < order.Licenses[j].Display
	})
}

// buildAccountSummary renders the deterministic natural-language account
// summary used as prompt grounding. It depends only on the normalized record.
func buildAccountSummary(record *types.AccountRecord) string {
	c := record.CustomerInfo
	lines := []string{
		fmt.Sprintf("CUSTOMER ACCOUNT INFORMATION FOR %s (%s):", c.FullName, c.Email),
		"",
		"Customer Details:",
		"- Account ID: " + c.AccountID,
		"- Name: " + c.FullName,
		"- Email: " + c.Email,
		fmt.Sprintf("- Location: %s, %s, %s", c.City, c.Region, c.Country),
		"",
		"Account Summary:",
		fmt.Sprintf("- Total Orders: %d", record.TotalOrders),
		fmt.Sprintf("- Total Products Purchased: %d", record.TotalProducts),
		fmt.Sprintf("- Total Download Files: %d", record.TotalFiles),
		fmt.Sprintf("- Total License Keys: %d", record.TotalLicenses),
		"",
		"PURCHASE HISTORY:",
	}
	for _, order := range record.Orders {
		var totalMB float64
		for _, f := range order.Files {
			totalMB += f.SizeMB
		}
		var productParts []string
		for _, p := range order.Products {
			productParts = append(productParts, fmt.Sprintf("%s (%s)", p.Display, p.SubtotalDisplay))
		}
		lines = append(lines,
			"",
			fmt.Sprintf("Order #%s (ID: %s):", order.OrderReference, order.OrderID),
			"- Date: "+order.Date,
			"- Total: "+order.TotalDisplay,
			"- Status: "+order.Status,
			"- Products: "+strings.Join(productParts, ", "),
			fmt.Sprintf("- Downloads: %d files available (%s MB total)", len(order.Files), formatFloat(totalMB)),
			fmt.Sprintf("- License Keys: %d keys issued", len(order.Licenses)),
		)
	}
	return strings.Join(lines, "\n")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orNA(s string) string {
	if s == "" {
		return types.NotAvailable
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + "..."
}
