package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/songwish/assistant-be/middleware"
	"github.com/songwish/assistant-be/service"
	"github.com/songwish/assistant-be/types"
)

type AccountHandler struct {
	fastspring *service.FastSpringService
}

func NewAccountHandler(fastspring *service.FastSpringService) *AccountHandler {
	return &AccountHandler{
		fastspring: fastspring,
	}
}

// HandleLookupAccount aggregates the authenticated customer's commerce
// account into a single record. The email comes from the verified token,
// never from the request body.
func (h *AccountHandler) HandleLookupAccount(c *gin.Context) {
	email := middleware.UserEmail(c)
	if email == "" {
		c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "missing authenticated email"})
		return
	}
	record, err := h.fastspring.ExtractAccountProducts(c.Request.Context(), email)
	if err != nil {
		log.Printf("account lookup failed for %s: %v", email, err)
		c.JSON(accountErrorStatus(err), types.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

func accountErrorStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrNoAccount):
		return http.StatusNotFound
	case types.IsUpstreamError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
