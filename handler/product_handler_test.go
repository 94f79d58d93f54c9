package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/songwish/assistant-be/config"
	"github.com/songwish/assistant-be/service"
	"github.com/songwish/assistant-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogFastSpring(t *testing.T) *service.FastSpringService {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products": ["remidi-4", "jazz-midi-pack"]}`))
	})
	mux.HandleFunc("/products/remidi-4", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
		  "products": [{
		    "product": "remidi-4",
		    "display": "reMIDI 4",
		    "pricing": {"price": {"USD": 49}},
		    "attributes": {"category": "MIDI Tools"}
		  }]
		}`))
	})
	mux.HandleFunc("/products/jazz-midi-pack", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
		  "products": [{
		    "product": "jazz-midi-pack",
		    "display": "Jazz MIDI Pack",
		    "pricing": {"price": {"USD": 19}},
		    "attributes": {"category": "MIDI Files"}
		  }]
		}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return service.NewFastSpringService(config.FastSpringConfig{
		AccountEndpointURL:  server.URL + "/accounts",
		OrderEndpointURL:    server.URL + "/orders",
		ProductsEndpointURL: server.URL + "/products",
	})
}

func newProductRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewProductHandler(newCatalogFastSpring(t))
	router := gin.New()
	router.GET("/api/v1/products", h.HandleListProducts)
	router.GET("/api/v1/products/categories", h.HandleListCategories)
	router.GET("/api/v1/products/category/:category", h.HandleProductsByCategory)
	return router
}

func getJSON(t *testing.T, router *gin.Engine, path string, out interface{}) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func TestHandleListProducts(t *testing.T) {
	router := newProductRouter(t)

	var resp types.ProductsResponse
	code := getJSON(t, router, "/api/v1/products", &resp)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Products, 2)
	assert.Equal(t, "reMIDI 4", resp.Products[0].Display)
	assert.Equal(t, "$49.00", resp.Products[0].Price)
}

func TestHandleListCategories(t *testing.T) {
	router := newProductRouter(t)

	var resp types.CategoriesResponse
	code := getJSON(t, router, "/api/v1/products/categories", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"MIDI Files", "MIDI Tools"}, resp.Categories)
	assert.Equal(t, 2, resp.Total)
}

func TestHandleProductsByCategory(t *testing.T) {
	router := newProductRouter(t)

	var resp types.CategoryProductsResponse
	code := getJSON(t, router, "/api/v1/products/category/midi%20tools", &resp)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "reMIDI 4", resp.Products[0].Display)
	assert.Equal(t, 1, resp.Total)

	code = getJSON(t, router, "/api/v1/products/category/bundles", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Products)
	assert.Equal(t, 0, resp.Total)
}

func TestHandleListProductsUpstreamFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	h := NewProductHandler(service.NewFastSpringService(config.FastSpringConfig{
		ProductsEndpointURL: server.URL + "/products",
	}))
	router := gin.New()
	router.GET("/api/v1/products", h.HandleListProducts)

	code := getJSON(t, router, "/api/v1/products", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
}
