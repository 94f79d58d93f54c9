package handler

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/songwish/assistant-be/service"
	"github.com/songwish/assistant-be/types"
)

type ProductHandler struct {
	fastspring *service.FastSpringService
}

func NewProductHandler(fastspring *service.FastSpringService) *ProductHandler {
	return &ProductHandler{
		fastspring: fastspring,
	}
}

// HandleListProducts returns the full normalized catalog.
func (h *ProductHandler) HandleListProducts(c *gin.Context) {
	products, err := h.fastspring.GetAllAvailableProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, types.ProductsResponse{Products: products})
}

// HandleListCategories returns the distinct catalog categories, sorted.
func (h *ProductHandler) HandleListCategories(c *gin.Context) {
	products, err := h.fastspring.GetAllAvailableProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	categories := distinctCategories(products)
	c.JSON(http.StatusOK, types.CategoriesResponse{
		Categories: categories,
		Total:      len(categories),
	})
}

// HandleProductsByCategory filters the catalog by category, case-insensitive.
func (h *ProductHandler) HandleProductsByCategory(c *gin.Context) {
	categoryName := c.Param("category")
	products, err := h.fastspring.GetAllAvailableProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	var filtered []types.CatalogProduct
	for _, p := range products {
		if strings.EqualFold(p.Attributes.Category, categoryName) {
			filtered = append(filtered, p)
		}
	}
	c.JSON(http.StatusOK, types.CategoryProductsResponse{
		Products: filtered,
		Category: categoryName,
		Total:    len(filtered),
	})
}

func distinctCategories(products []types.CatalogProduct) []string {
	seen := map[string]bool{}
	var categories []string
	for _, p := range products {
		if !seen[p.Attributes.Category] {
			seen[p.Attributes.Category] = true
			categories = append(categories, p.Attributes.Category)
		}
	}
	sort.Strings(categories)
	return categories
}
