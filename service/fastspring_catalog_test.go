package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllAvailableProducts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products": ["remidi-4", "remidi-4-trial", "broken"]}`))
	})
	mux.HandleFunc("/products/remidi-4", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
		  "products": [{
		    "product": "remidi-4",
		    "sku": "SW-REMIDI4",
		    "image": "https://cdn/remidi.png",
		    "display": {"en": "reMIDI 4", "de": "reMIDI Vier"},
		    "description": {"summary": {"en": "Polyphonic MIDI sampler"}},
		    "pricing": {
		      "price": {"USD": 49.0, "EUR": 45.0},
		      "discount": {"percentage": 25, "reason": "summer sale"}
		    },
		    "attributes": {"category": "MIDI Tools", "download": "mac,win"}
		  }]
		}`))
	})
	mux.HandleFunc("/products/remidi-4-trial", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
		  "products": [{
		    "product": "remidi-4-trial",
		    "pricing": {"price": {"USD": 0}}
		  }]
		}`))
	})
	mux.HandleFunc("/products/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	})
	svc := newTestFastSpring(t, mux)

	products, err := svc.GetAllAvailableProducts(context.Background())
	require.NoError(t, err)
	// The broken detail fetch is skipped, not fatal.
	require.Len(t, products, 2)

	full := products[0]
	assert.Equal(t, "remidi-4", full.Path)
	assert.Equal(t, "reMIDI 4", full.Display)
	assert.Equal(t, "Polyphonic MIDI sampler", full.Description.Summary)
	assert.Equal(t, "$49.00", full.Price)
	assert.Equal(t, "$36.75", full.Total)
	assert.Equal(t, "25%", full.DiscountPercent)
	require.NotNil(t, full.Discount)
	assert.Equal(t, "summer sale", full.Discount.Reason)
	assert.Equal(t, "MIDI Tools", full.Attributes.Category)
	assert.Equal(t, "mac,win", full.Attributes.Download)
	assert.Contains(t, full.Tags, "midi-tools")
	assert.Contains(t, full.Tags, "paid")
	assert.Contains(t, full.Tags, "midi-sampler")
	assert.False(t, full.IsFree)
	assert.False(t, full.Trial)

	trial := products[1]
	// Missing display falls back to a title-cased id.
	assert.Equal(t, "Remidi 4 Trial", trial.Display)
	assert.Equal(t, "remidi-4-trial", trial.SKU)
	assert.Equal(t, "/api/placeholder/200/120", trial.Image)
	assert.Equal(t, "$0.00", trial.Price)
	assert.Equal(t, "Other", trial.Attributes.Category)
	assert.True(t, trial.IsFree)
	assert.True(t, trial.Trial)
	// A trial tags as trial, never free, even at price zero.
	assert.Contains(t, trial.Tags, "trial")
	assert.NotContains(t, trial.Tags, "free")
	assert.Nil(t, trial.Discount)
}

func TestGetAllAvailableProductsEmptyCatalog(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products": []}`))
	})
	svc := newTestFastSpring(t, mux)

	_, err := svc.GetAllAvailableProducts(context.Background())
	assert.Error(t, err)
}

func TestLocalizedContent(t *testing.T) {
	assert.Equal(t, "plain", localizedContent(json.RawMessage(`"plain"`)))
	assert.Equal(t, "english", localizedContent(json.RawMessage(`{"de": "deutsch", "en": "english"}`)))
	assert.Equal(t, "fallback", localizedContent(json.RawMessage(`{"default": "fallback", "fr": "french"}`)))
	// No en/default: first key in sorted order keeps the pick deterministic.
	assert.Equal(t, "deutsch", localizedContent(json.RawMessage(`{"fr": "french", "de": "deutsch"}`)))
	assert.Equal(t, "", localizedContent(nil))
	assert.Equal(t, "", localizedContent(json.RawMessage(`{}`)))
	assert.Equal(t, "", localizedContent(json.RawMessage(`42`)))
}

func TestProductTags(t *testing.T) {
	assert.Equal(t, []string{"midi-tools", "paid", "midi-sampler", "vst"}, productTags("MIDI Tools", "remidi-4", 49))
	assert.Equal(t, []string{"other", "free"}, productTags("Other", "starter-pack", 0))
	assert.Equal(t, []string{"loops", "paid", "loops", "samples"}, productTags("Loops", "sample-loops-vol-1", 19))
	assert.Equal(t, []string{"midi-tools", "trial", "midi-effect", "vst"}, productTags("MIDI Tools", "rechannel-trial", 0))
}

func TestIsProductFree(t *testing.T) {
	assert.True(t, isProductFree("anything", 0))
	assert.True(t, isProductFree("remidi-4-trial", 49))
	assert.True(t, isProductFree("free-pack", 49))
	assert.False(t, isProductFree("remidi-4", 49))
}

func TestUsdPriceOf(t *testing.T) {
	assert.Equal(t, 49.0, usdPriceOf(fsProductPricing{Price: json.RawMessage(`{"USD": 49, "EUR": 45}`)}))
	assert.Equal(t, 12.5, usdPriceOf(fsProductPricing{Price: json.RawMessage(`12.5`)}))
	assert.Equal(t, 0.0, usdPriceOf(fsProductPricing{}))
	assert.Equal(t, 0.0, usdPriceOf(fsProductPricing{Price: json.RawMessage(`{"EUR": 45}`)}))
}

func TestNormalizeProductUnchargedFieldsStable(t *testing.T) {
	p := normalizeProduct("my-product", fsProductDetail{})
	assert.Equal(t, "My Product", p.Display)
	assert.Equal(t, "my-product", p.Path)
	assert.Equal(t, "$0.00", p.Price)
	assert.True(t, p.IsFree)
	assert.Nil(t, p.Discount)
}
