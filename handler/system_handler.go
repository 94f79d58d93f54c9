package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/songwish/assistant-be/config"
	"github.com/songwish/assistant-be/service"
	"github.com/songwish/assistant-be/types"
)

type SystemHandler struct {
	cfg        *config.Config
	index      *service.IndexService
	fastspring *service.FastSpringService
}

func NewSystemHandler(cfg *config.Config, index *service.IndexService, fastspring *service.FastSpringService) *SystemHandler {
	return &SystemHandler{
		cfg:        cfg,
		index:      index,
		fastspring: fastspring,
	}
}

// HandleStatus reports the health of each collaborator without forcing an
// index build. A cold index is "not_initialized", not an error.
func (h *SystemHandler) HandleStatus(c *gin.Context) {
	environment := "development"
	if h.cfg.IsProduction {
		environment = "production"
	}

	vectorDB := "not_initialized"
	if h.index.Ready() {
		vectorDB = "ready"
	}

	embeddings := "not_configured"
	if h.cfg.OpenAIAPIKey != "" || len(h.cfg.GeminiAPIKeys) > 0 {
		embeddings = "configured"
	}

	commerceAPI := h.fastspring.Ping(c.Request.Context())

	productStatus := "unavailable"
	if products, err := h.fastspring.GetAllAvailableProducts(c.Request.Context()); err == nil {
		productStatus = fmt.Sprintf("%d available", len(products))
	}

	c.JSON(http.StatusOK, types.StatusResponse{
		Status:        "running",
		Environment:   environment,
		ContentFolder: h.cfg.DocsPath,
		VectorDB:      vectorDB,
		CommerceAPI:   commerceAPI,
		Embeddings:    embeddings,
		Products:      productStatus,
	})
}
